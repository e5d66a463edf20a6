package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"lukechampine.com/uint128"
)

const (
	ProtocolNamespace = "kasplex"
	ProtocolID        = "KRC-20"

	SompiPerKaspa = 100_000_000
	FeeDeploy     = 1_000 * SompiPerKaspa
	FeeMint       = SompiPerKaspa
)

// Op is a KRC-20 operation kind.
type Op int

const (
	OpDeploy Op = iota
	OpMint
	OpTransfer
)

func (o Op) String() string {
	switch o {
	case OpDeploy:
		return "deploy"
	case OpMint:
		return "mint"
	case OpTransfer:
		return "transfer"
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// ParseOp converts the textual form of an operation, ignoring case.
func ParseOp(s string) (Op, error) {
	switch strings.ToLower(s) {
	case "deploy":
		return OpDeploy, nil
	case "mint":
		return OpMint, nil
	case "transfer":
		return OpTransfer, nil
	}
	return 0, fmt.Errorf("invalid KRC20 operation: %q", s)
}

func (o Op) MarshalText() ([]byte, error) {
	switch o {
	case OpDeploy, OpMint, OpTransfer:
		return []byte(o.String()), nil
	}
	return nil, fmt.Errorf("invalid KRC20 operation: %d", int(o))
}

func (o *Op) UnmarshalText(text []byte) error {
	op, err := ParseOp(string(text))
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// TokenOperation is a KRC-20 operation decoded from an inscription payload.
// A nil optional field was absent from the payload.
type TokenOperation struct {
	Op   Op
	Tick string

	Max    *uint128.Uint128
	Limit  *uint128.Uint128
	Dec    *uint128.Uint128
	Amount *uint128.Uint128
	Pre    *uint128.Uint128

	From *string
	To   *string

	OpScore *uint64

	HashRev  *string
	FeeRev   *string
	TxAccept *string
	OpAccept *string
	OpError  *string
	MtsAdd   *string
	MtsMod   *string
}

// HasTick reports whether the operation is for tick, ignoring case.
func (t *TokenOperation) HasTick(tick string) bool {
	return strings.EqualFold(t.Tick, tick)
}

// tokenOperationJSON is the wire shape. Numbers travel as decimal strings so
// that 128-bit values keep full precision.
type tokenOperationJSON struct {
	Op       *string `json:"op"`
	Tick     *string `json:"tick"`
	Max      *string `json:"max,omitempty"`
	Limit    *string `json:"lim,omitempty"`
	Dec      *string `json:"dec,omitempty"`
	Amount   *string `json:"amt,omitempty"`
	Pre      *string `json:"pre,omitempty"`
	From     *string `json:"from,omitempty"`
	To       *string `json:"to,omitempty"`
	OpScore  *string `json:"opScore,omitempty"`
	HashRev  *string `json:"hashRev,omitempty"`
	FeeRev   *string `json:"feeRev,omitempty"`
	TxAccept *string `json:"txAccept,omitempty"`
	OpAccept *string `json:"opAccept,omitempty"`
	OpError  *string `json:"opError,omitempty"`
	MtsAdd   *string `json:"mtsAdd,omitempty"`
	MtsMod   *string `json:"mtsMod,omitempty"`
}

var wireKeys = []string{
	"op", "tick", "max", "lim", "dec", "amt", "pre", "from", "to", "opScore",
	"hashRev", "feeRev", "txAccept", "opAccept", "opError", "mtsAdd", "mtsMod",
}

// checkWireKeys rejects keys that only differ from a wire key by case, which
// encoding/json would otherwise bind to that field. Other unknown keys are
// ignored.
func checkWireKeys(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for key := range fields {
		for _, wireKey := range wireKeys {
			if key != wireKey && strings.EqualFold(key, wireKey) {
				return fmt.Errorf("unknown field `%s`, expected `%s`", key, wireKey)
			}
		}
	}
	return nil
}

func (t TokenOperation) MarshalJSON() ([]byte, error) {
	op, err := t.Op.MarshalText()
	if err != nil {
		return nil, err
	}
	opStr := string(op)
	tick := t.Tick

	wire := tokenOperationJSON{
		Op:       &opStr,
		Tick:     &tick,
		Max:      formatUint128(t.Max),
		Limit:    formatUint128(t.Limit),
		Dec:      formatUint128(t.Dec),
		Amount:   formatUint128(t.Amount),
		Pre:      formatUint128(t.Pre),
		From:     t.From,
		To:       t.To,
		HashRev:  t.HashRev,
		FeeRev:   t.FeeRev,
		TxAccept: t.TxAccept,
		OpAccept: t.OpAccept,
		OpError:  t.OpError,
		MtsAdd:   t.MtsAdd,
		MtsMod:   t.MtsMod,
	}
	if t.OpScore != nil {
		s := strconv.FormatUint(*t.OpScore, 10)
		wire.OpScore = &s
	}
	return json.Marshal(wire)
}

func (t *TokenOperation) UnmarshalJSON(data []byte) error {
	if !utf8.Valid(data) {
		return errors.New("payload is not valid UTF-8")
	}
	if err := checkWireKeys(data); err != nil {
		return err
	}

	var wire tokenOperationJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.Op == nil {
		return errors.New("missing field `op`")
	}
	if wire.Tick == nil {
		return errors.New("missing field `tick`")
	}

	op, err := ParseOp(*wire.Op)
	if err != nil {
		return err
	}

	decoded := TokenOperation{
		Op:       op,
		Tick:     *wire.Tick,
		From:     wire.From,
		To:       wire.To,
		HashRev:  wire.HashRev,
		FeeRev:   wire.FeeRev,
		TxAccept: wire.TxAccept,
		OpAccept: wire.OpAccept,
		OpError:  wire.OpError,
		MtsAdd:   wire.MtsAdd,
		MtsMod:   wire.MtsMod,
	}

	fields := []struct {
		name string
		src  *string
		dst  **uint128.Uint128
	}{
		{"max", wire.Max, &decoded.Max},
		{"lim", wire.Limit, &decoded.Limit},
		{"dec", wire.Dec, &decoded.Dec},
		{"amt", wire.Amount, &decoded.Amount},
		{"pre", wire.Pre, &decoded.Pre},
	}
	for _, field := range fields {
		if field.src == nil {
			continue
		}
		v, err := ParseUint128(*field.src)
		if err != nil {
			return fmt.Errorf("field `%s`: %w", field.name, err)
		}
		*field.dst = &v
	}

	if wire.OpScore != nil {
		if !isDecimal(*wire.OpScore) {
			return fmt.Errorf("field `opScore`: invalid number %q", *wire.OpScore)
		}
		v, err := strconv.ParseUint(*wire.OpScore, 10, 64)
		if err != nil {
			return fmt.Errorf("field `opScore`: %w", err)
		}
		decoded.OpScore = &v
	}

	*t = decoded
	return nil
}

// ParseUint128 parses an unsigned base 10 number of at most 128 bits. Signs,
// whitespace and base prefixes are rejected. Leading zeros are allowed and
// never switch the base.
func ParseUint128(s string) (uint128.Uint128, error) {
	if !isDecimal(s) {
		return uint128.Zero, fmt.Errorf("invalid number %q", s)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return uint128.Zero, fmt.Errorf("invalid number %q", s)
	}
	if v.BitLen() > 128 {
		return uint128.Zero, fmt.Errorf("invalid number %q: value overflows 128 bits", s)
	}
	return uint128.FromBig(v), nil
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func formatUint128(v *uint128.Uint128) *string {
	if v == nil {
		return nil
	}
	s := v.String()
	return &s
}

// TokenOperationList is the response shape of an operation listing.
type TokenOperationList struct {
	Message string           `json:"message"`
	Result  []TokenOperation `json:"result"`
}
