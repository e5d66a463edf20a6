package model

import (
	"errors"
	"fmt"

	"krc20-indexer/utils"
)

var ErrNoOutputs = errors.New("transaction has no outputs")

// Tx is the view of a transaction the KRC-20 extractor needs. One adapter
// exists per concrete transaction representation.
type Tx interface {
	// SignatureScript returns the unlocking script of the first input. It
	// reports false for transactions without inputs.
	SignatureScript() ([]byte, bool)

	// Rcv returns the address receiving the primary output.
	Rcv() (string, error)
}

// Outpoint references an output of a previous transaction.
type Outpoint struct {
	TransactionID string
	Index         uint32
}

type ScriptPublicKey struct {
	Version uint16
	Script  []byte
}

type TransactionInput struct {
	PreviousOutpoint Outpoint
	SignatureScript  []byte
	Sequence         uint64
	SigOpCount       byte
}

type TransactionOutput struct {
	Value           uint64
	ScriptPublicKey ScriptPublicKey
}

// Transaction is a transaction constructed locally, with raw scripts.
type Transaction struct {
	ID      string
	Version uint16
	Inputs  []*TransactionInput
	Outputs []*TransactionOutput
}

// IsCoinbase reports whether the transaction is a generation transaction.
func (tx *Transaction) IsCoinbase() bool {
	return len(tx.Inputs) == 0
}

// LocalTx adapts a Transaction, resolving addresses on the given network.
type LocalTx struct {
	Tx     *Transaction
	Prefix utils.Prefix
}

func NewLocalTx(tx *Transaction, prefix utils.Prefix) LocalTx {
	return LocalTx{Tx: tx, Prefix: prefix}
}

func (t LocalTx) SignatureScript() ([]byte, bool) {
	if len(t.Tx.Inputs) == 0 {
		return nil, false
	}
	return t.Tx.Inputs[0].SignatureScript, true
}

func (t LocalTx) Rcv() (string, error) {
	if len(t.Tx.Outputs) == 0 {
		return "", ErrNoOutputs
	}
	spk := t.Tx.Outputs[0].ScriptPublicKey
	address, err := utils.ExtractScriptPubKeyAddress(spk.Script, spk.Version, t.Prefix)
	if err != nil {
		return "", fmt.Errorf("transaction %s: %w", t.Tx.ID, err)
	}
	return address, nil
}
