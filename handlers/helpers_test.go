package handlers

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"krc20-indexer/model"
	"krc20-indexer/script"
	"krc20-indexer/utils"
)

var (
	testPubKey    = bytes.Repeat([]byte{0x02}, 32)
	testSignature = bytes.Repeat([]byte{0x5a}, 65)
)

// buildRedeemScript returns a commit script in the shape kasplex inscribers
// produce: pubkey CHECKSIG FALSE IF "kasplex" 0 <payload> ENDIF.
func buildRedeemScript(t *testing.T, payload []byte) []byte {
	t.Helper()

	redeem, err := script.NewBuilder().
		AddData(testPubKey).
		AddOp(script.OpCheckSig).
		AddOp(script.OpFalse).
		AddOp(script.OpIf).
		AddData([]byte("kasplex")).
		AddOp(script.Op0).
		AddData(payload).
		AddOp(script.OpEndIf).
		Script()
	require.NoError(t, err)
	return redeem
}

// buildSignatureScript returns <signature> <redeem script>.
func buildSignatureScript(t *testing.T, payload []byte) []byte {
	t.Helper()

	sigScript, err := script.NewBuilder().
		AddData(testSignature).
		AddData(buildRedeemScript(t, payload)).
		Script()
	require.NoError(t, err)
	return sigScript
}

func p2pkScript(t *testing.T) []byte {
	t.Helper()

	spk, err := script.NewBuilder().AddData(testPubKey).AddOp(script.OpCheckSig).Script()
	require.NoError(t, err)
	return spk
}

func newTx(t *testing.T, sigScript []byte) model.LocalTx {
	t.Helper()

	return model.NewLocalTx(&model.Transaction{
		ID: "tx",
		Inputs: []*model.TransactionInput{
			{SignatureScript: sigScript},
		},
		Outputs: []*model.TransactionOutput{
			{Value: 1, ScriptPublicKey: model.ScriptPublicKey{Script: p2pkScript(t)}},
		},
	}, utils.PrefixTestnet)
}

func newRpcTx(t *testing.T, id string, sigScript []byte) *model.RpcTransaction {
	t.Helper()

	return &model.RpcTransaction{
		Inputs: []*model.RpcTransactionInput{
			{SignatureScript: sigScript},
		},
		Outputs: []*model.RpcTransactionOutput{
			{
				Amount: 1,
				ScriptPublicKey: &model.RpcScriptPublicKey{
					ScriptPublicKey: p2pkScript(t),
				},
			},
		},
		VerboseData: &model.RpcTransactionVerboseData{TransactionID: id},
	}
}

func mintPayload(tick string) []byte {
	return []byte(`{"p":"krc-20","op":"mint","tick":"` + tick + `"}`)
}
