package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"krc20-indexer/model"
	"krc20-indexer/utils"
)

func testBlock(t *testing.T, hash string) *model.RpcBlock {
	t.Helper()

	coinbase := &model.RpcTransaction{
		Outputs: []*model.RpcTransactionOutput{
			{Amount: 50, ScriptPublicKey: &model.RpcScriptPublicKey{ScriptPublicKey: p2pkScript(t)}},
		},
	}

	return &model.RpcBlock{
		Header: &model.RpcBlockHeader{
			Timestamp: 1_700_000_000_000,
			DaaScore:  42,
		},
		Transactions: []*model.RpcTransaction{
			coinbase,
			newRpcTx(t, "plain", []byte("nothing to see here, move along")),
			newRpcTx(t, "deploy", buildSignatureScript(t, []byte(`{"p":"krc-20","op":"deploy","tick":"KASP","max":"100","lim":"10"}`))),
			newRpcTx(t, "mint", buildSignatureScript(t, mintPayload("KASP"))),
		},
		VerboseData: &model.RpcBlockVerboseData{Hash: hash},
	}
}

func TestFilterCoinbase(t *testing.T) {
	t.Parallel()

	block := testBlock(t, "h")
	txs := FilterCoinbase(block.Transactions)
	require.Len(t, txs, 3)
	for _, tx := range txs {
		require.False(t, tx.IsCoinbase())
	}
	require.Equal(t, "plain", txs[0].ID())
}

func TestProcessBlock(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	processor := NewProcessor(utils.PrefixTestnet, 2, time.Minute, metrics)

	record, err := processor.ProcessBlock(context.Background(), testBlock(t, "block-1"))
	require.NoError(t, err)
	require.NotNil(t, record)

	require.Equal(t, "block-1", record.Hash)
	require.Equal(t, uint64(42), record.DaaScore)
	require.Equal(t, time.UnixMilli(1_700_000_000_000), record.Timestamp)
	require.Equal(t, 3, record.Transactions)
	require.Len(t, record.Operations, 2)
	require.NotEmpty(t, record.MerkleRoot)

	receiver, err := utils.ExtractScriptPubKeyAddress(p2pkScript(t), 0, utils.PrefixTestnet)
	require.NoError(t, err)

	deploy := record.Operations[0]
	require.Equal(t, uint32(1), deploy.TxIndex)
	require.Equal(t, "deploy", deploy.TxID)
	require.Equal(t, receiver, deploy.Receiver)
	require.Equal(t, model.OpDeploy, deploy.Op.Op)

	mint := record.Operations[1]
	require.Equal(t, uint32(2), mint.TxIndex)
	require.Equal(t, "mint", mint.TxID)
	require.Equal(t, model.OpMint, mint.Op.Op)

	require.Equal(t, 3.0, testutil.ToFloat64(metrics.TxScanned))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.OpsDetected.WithLabelValues("deploy")))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.OpsDetected.WithLabelValues("mint")))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.NoMatch.WithLabelValues("no_namespace_header")))

	// The same block again is a duplicate.
	record, err = processor.ProcessBlock(context.Background(), testBlock(t, "block-1"))
	require.NoError(t, err)
	require.Nil(t, record)
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.DuplicateBlocks))
}

func TestProcessBlockRetryAfterCancel(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics(prometheus.NewRegistry())
	processor := NewProcessor(utils.PrefixTestnet, 2, time.Minute, metrics)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	record, err := processor.ProcessBlock(ctx, testBlock(t, "retry"))
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, record)

	record, err = processor.ProcessBlock(context.Background(), testBlock(t, "retry"))
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Len(t, record.Operations, 2)
	require.Equal(t, 0.0, testutil.ToFloat64(metrics.DuplicateBlocks))

	record, err = processor.ProcessBlock(context.Background(), testBlock(t, "retry"))
	require.NoError(t, err)
	require.Nil(t, record)
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.DuplicateBlocks))
}

func TestProcessBlocksMerkleRoot(t *testing.T) {
	t.Parallel()

	processor := NewProcessor(utils.PrefixTestnet, 1, 0, nil)

	empty := &model.RpcBlock{
		Header:       &model.RpcBlockHeader{DaaScore: 1},
		Transactions: []*model.RpcTransaction{newRpcTx(t, "plain", []byte("no envelope"))},
		VerboseData:  &model.RpcBlockVerboseData{Hash: "empty"},
	}

	records, err := processor.ProcessBlocks(context.Background(), []*model.RpcBlock{
		testBlock(t, "a"),
		empty,
		testBlock(t, "a"),
		testBlock(t, "b"),
	})
	require.NoError(t, err)
	require.Len(t, records, 3)

	require.Equal(t, "a", records[0].Hash)
	require.Equal(t, "empty", records[1].Hash)
	require.Empty(t, records[1].MerkleRoot)
	require.Empty(t, records[1].Operations)
	require.Equal(t, "b", records[2].Hash)

	// Same operations in the same order commit to the same root.
	require.Equal(t, records[0].MerkleRoot, records[2].MerkleRoot)
}

func TestProcessBlockWrongNetworkReceiver(t *testing.T) {
	t.Parallel()

	block := testBlock(t, "c")
	mainnetAddress, err := utils.ExtractScriptPubKeyAddress(p2pkScript(t), 0, utils.PrefixMainnet)
	require.NoError(t, err)
	block.Transactions[3].Outputs[0].VerboseData = &model.RpcTransactionOutputVerboseData{
		ScriptPublicKeyAddress: mainnetAddress,
	}

	processor := NewProcessor(utils.PrefixTestnet, 1, time.Minute, nil)
	record, err := processor.ProcessBlock(context.Background(), block)
	require.NoError(t, err)
	require.Len(t, record.Operations, 2)

	// The operation is kept, only its receiver is unknown.
	require.Empty(t, record.Operations[1].Receiver)
	require.NotEmpty(t, record.Operations[0].Receiver)
}

func TestNoMatchReason(t *testing.T) {
	t.Parallel()

	require.Equal(t, "none", NoMatchReason(nil))
	require.Equal(t, "carrier_not_push", NoMatchReason(ErrCarrierNotPush))
	require.Equal(t, "unknown", NoMatchReason(context.Canceled))
}
