package model

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"krc20-indexer/utils"
)

// HexBytes is a byte slice carried as a hex string in node RPC JSON.
type HexBytes []byte

func (h HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(h))
}

func (h *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid hex: %w", err)
	}
	*h = decoded
	return nil
}

// The Rpc* types mirror the JSON a kaspa node returns for getBlocks with
// transactions included.

type RpcBlock struct {
	Header       *RpcBlockHeader      `json:"header"`
	Transactions []*RpcTransaction    `json:"transactions"`
	VerboseData  *RpcBlockVerboseData `json:"verboseData,omitempty"`
}

type RpcBlockHeader struct {
	Version   uint16 `json:"version"`
	Timestamp int64  `json:"timestamp"`
	DaaScore  uint64 `json:"daaScore"`
	BlueScore uint64 `json:"blueScore"`
}

type RpcBlockVerboseData struct {
	Hash string `json:"hash"`
}

type RpcTransaction struct {
	Version     uint16                     `json:"version"`
	Inputs      []*RpcTransactionInput     `json:"inputs"`
	Outputs     []*RpcTransactionOutput    `json:"outputs"`
	VerboseData *RpcTransactionVerboseData `json:"verboseData,omitempty"`
}

type RpcTransactionInput struct {
	PreviousOutpoint *RpcOutpoint `json:"previousOutpoint"`
	SignatureScript  HexBytes     `json:"signatureScript"`
	Sequence         uint64       `json:"sequence"`
	SigOpCount       byte         `json:"sigOpCount"`
}

type RpcOutpoint struct {
	TransactionID string `json:"transactionId"`
	Index         uint32 `json:"index"`
}

type RpcTransactionOutput struct {
	Amount          uint64                           `json:"amount"`
	ScriptPublicKey *RpcScriptPublicKey              `json:"scriptPublicKey"`
	VerboseData     *RpcTransactionOutputVerboseData `json:"verboseData,omitempty"`
}

type RpcScriptPublicKey struct {
	Version         uint16   `json:"version"`
	ScriptPublicKey HexBytes `json:"scriptPublicKey"`
}

type RpcTransactionOutputVerboseData struct {
	ScriptPublicKeyType    string `json:"scriptPublicKeyType"`
	ScriptPublicKeyAddress string `json:"scriptPublicKeyAddress"`
}

type RpcTransactionVerboseData struct {
	TransactionID string `json:"transactionId"`
	Hash          string `json:"hash"`
	BlockHash     string `json:"blockHash"`
	BlockTime     uint64 `json:"blockTime"`
}

// Hash returns the block hash, or an empty string when verbose data is missing.
func (b *RpcBlock) Hash() string {
	if b.VerboseData == nil {
		return ""
	}
	return b.VerboseData.Hash
}

// ID returns the transaction id, or an empty string when verbose data is
// missing.
func (tx *RpcTransaction) ID() string {
	if tx.VerboseData == nil {
		return ""
	}
	return tx.VerboseData.TransactionID
}

// IsCoinbase reports whether the transaction is a generation transaction.
func (tx *RpcTransaction) IsCoinbase() bool {
	return len(tx.Inputs) == 0
}

// RpcTx adapts an RpcTransaction. Addresses reported by the node are checked
// against the configured network; outputs without one are encoded locally.
type RpcTx struct {
	Tx     *RpcTransaction
	Prefix utils.Prefix
}

func NewRpcTx(tx *RpcTransaction, prefix utils.Prefix) RpcTx {
	return RpcTx{Tx: tx, Prefix: prefix}
}

func (t RpcTx) SignatureScript() ([]byte, bool) {
	if len(t.Tx.Inputs) == 0 {
		return nil, false
	}
	return t.Tx.Inputs[0].SignatureScript, true
}

func (t RpcTx) Rcv() (string, error) {
	if len(t.Tx.Outputs) == 0 {
		return "", ErrNoOutputs
	}
	output := t.Tx.Outputs[0]

	if output.VerboseData != nil && output.VerboseData.ScriptPublicKeyAddress != "" {
		address := output.VerboseData.ScriptPublicKeyAddress
		prefix, _, _, err := utils.DecodeAddress(address)
		if err != nil {
			return "", err
		}
		if prefix != t.Prefix {
			return "", fmt.Errorf("%w: address %s is not on %s",
				utils.ErrUnknownPrefix, address, t.Prefix)
		}
		return address, nil
	}

	if output.ScriptPublicKey == nil {
		return "", fmt.Errorf("transaction %s: %w", t.Tx.ID(), utils.ErrNonStandardScript)
	}
	address, err := utils.ExtractScriptPubKeyAddress(output.ScriptPublicKey.ScriptPublicKey,
		output.ScriptPublicKey.Version, t.Prefix)
	if err != nil {
		return "", fmt.Errorf("transaction %s: %w", t.Tx.ID(), err)
	}
	return address, nil
}

// ToTransaction converts the node representation into a local Transaction.
func (tx *RpcTransaction) ToTransaction() *Transaction {
	local := &Transaction{
		ID:      tx.ID(),
		Version: tx.Version,
	}
	for _, input := range tx.Inputs {
		in := &TransactionInput{
			SignatureScript: input.SignatureScript,
			Sequence:        input.Sequence,
			SigOpCount:      input.SigOpCount,
		}
		if input.PreviousOutpoint != nil {
			in.PreviousOutpoint = Outpoint{
				TransactionID: input.PreviousOutpoint.TransactionID,
				Index:         input.PreviousOutpoint.Index,
			}
		}
		local.Inputs = append(local.Inputs, in)
	}
	for _, output := range tx.Outputs {
		out := &TransactionOutput{Value: output.Amount}
		if output.ScriptPublicKey != nil {
			out.ScriptPublicKey = ScriptPublicKey{
				Version: output.ScriptPublicKey.Version,
				Script:  output.ScriptPublicKey.ScriptPublicKey,
			}
		}
		local.Outputs = append(local.Outputs, out)
	}
	return local
}
