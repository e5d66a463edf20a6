package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"krc20-indexer/logger"
	"krc20-indexer/model"
	"krc20-indexer/script"
)

// Reasons a transaction carries no KRC-20 operation. None of them is a
// processing failure: they only explain why nothing was detected.
var (
	ErrNoInput           = errors.New("transaction has no inputs")
	ErrNoNamespaceHeader = errors.New("kasplex header not found")
	ErrNoCarrier         = errors.New("signature script has no second opcode")
	ErrCarrierNotPush    = errors.New("second opcode is not a data push")
	ErrNoProtocolHeader  = errors.New("krc-20 header not found")
	ErrShortEnvelope     = errors.New("envelope has fewer than two opcodes")
	ErrBadPayloadOpcode  = errors.New("payload opcode failed to decode")
	ErrBadPayload        = errors.New("payload is not a valid KRC-20 operation")
)

const (
	// Position of the envelope carrier in the signature script. Position 0
	// holds the signature.
	carrierIndex = 1

	// Distance of the payload from the end of the envelope. The last opcode
	// is the envelope terminator.
	payloadFromEnd = 2
)

// Inspect extracts the KRC-20 operation carried by tx. A nil operation is
// always accompanied by one of the Err* reasons above.
func Inspect(tx model.Tx) (*model.TokenOperation, error) {
	signatureScript, ok := tx.SignatureScript()
	if !ok {
		return nil, ErrNoInput
	}

	if !DetectKasplexHeader(signatureScript) {
		return nil, ErrNoNamespaceHeader
	}

	// Only the first two opcodes matter, so stop decoding after them.
	tokenizer := script.MakeTokenizer(signatureScript)
	for i := 0; i <= carrierIndex; i++ {
		if !tokenizer.Next() {
			if err := tokenizer.Err(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrNoCarrier, err)
			}
			return nil, ErrNoCarrier
		}
	}
	carrier := script.Opcode{Value: tokenizer.Opcode(), Data: tokenizer.Data()}

	if carrier.IsEmpty() || !carrier.IsPush() {
		return nil, ErrCarrierNotPush
	}

	if !DetectKRC20Header(carrier.Data) {
		return nil, ErrNoProtocolHeader
	}

	envelope := script.Parse(carrier.Data)
	if len(envelope) < payloadFromEnd {
		return nil, ErrShortEnvelope
	}

	payload := envelope[len(envelope)-payloadFromEnd]
	if payload.Err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayloadOpcode, payload.Err)
	}

	var op model.TokenOperation
	if err := json.Unmarshal(payload.Opcode.Data, &op); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return &op, nil
}

// DetectKRC20 returns the KRC-20 operation carried by tx, if any. Reasons for
// not finding one are logged at debug level and otherwise dropped.
func DetectKRC20(tx model.Tx) (*model.TokenOperation, bool) {
	op, err := Inspect(tx)
	if err != nil {
		if logger.GetLogger().IsLevelEnabled(logrus.DebugLevel) &&
			!errors.Is(err, ErrNoNamespaceHeader) {
			logger.GetLogger().WithError(err).Debug("no krc-20 operation")
		}
		return nil, false
	}
	return op, true
}

// DetectKRC20Receiver returns the address receiving the primary output of tx.
func DetectKRC20Receiver(tx model.Tx) (string, error) {
	return tx.Rcv()
}
