// Package script tokenizes kaspa transaction scripts.
//
// Only opcode framing is implemented: the tokenizer knows how many bytes every
// opcode occupies and which opcodes push data, but it never executes a script.
package script

import (
	"encoding/hex"
	"fmt"
)

// These constants are the values of the kaspa script opcodes this package
// needs to reason about. Every value not listed here is a single byte opcode.
const (
	Op0             = 0x00 // 0
	OpFalse         = 0x00 // 0 - AKA Op0
	OpData1         = 0x01 // 1
	OpData32        = 0x20 // 32
	OpData33        = 0x21 // 33
	OpData75        = 0x4b // 75
	OpPushData1     = 0x4c // 76
	OpPushData2     = 0x4d // 77
	OpPushData4     = 0x4e // 78
	Op1Negate       = 0x4f // 79
	OpReserved      = 0x50 // 80
	Op1             = 0x51 // 81 - AKA OpTrue
	OpTrue          = 0x51 // 81
	Op16            = 0x60 // 96
	OpIf            = 0x63 // 99
	OpEndIf         = 0x68 // 104
	OpEqual         = 0x87 // 135
	OpBlake2b       = 0xaa // 170
	OpCheckSigECDSA = 0xab // 171
	OpCheckSig      = 0xac // 172
)

// Opcode is a single decoded script instruction together with the bytes it
// pushes, if any.
type Opcode struct {
	Value byte
	Data  []byte
}

// IsPush reports whether the opcode only places a value on the stack. Every
// opcode up to and including OP_16 is a push opcode.
func (o Opcode) IsPush() bool {
	return o.Value <= Op16
}

// IsEmpty reports whether the opcode carries no pushed bytes.
func (o Opcode) IsEmpty() bool {
	return len(o.Data) == 0
}

func (o Opcode) String() string {
	name := opcodeName(o.Value)
	if len(o.Data) == 0 {
		return name
	}
	return name + " 0x" + hex.EncodeToString(o.Data)
}

// opcodeName returns the human-readable name of an opcode.
func opcodeName(value byte) string {
	switch {
	case value == Op0:
		return "OP_0"
	case value >= OpData1 && value <= OpData75:
		return fmt.Sprintf("OP_DATA_%d", value)
	case value == OpPushData1:
		return "OP_PUSHDATA1"
	case value == OpPushData2:
		return "OP_PUSHDATA2"
	case value == OpPushData4:
		return "OP_PUSHDATA4"
	case value == Op1Negate:
		return "OP_1NEGATE"
	case value == OpReserved:
		return "OP_RESERVED"
	case value >= Op1 && value <= Op16:
		return fmt.Sprintf("OP_%d", value-(Op1-1))
	case value == OpIf:
		return "OP_IF"
	case value == OpEndIf:
		return "OP_ENDIF"
	case value == OpEqual:
		return "OP_EQUAL"
	case value == OpBlake2b:
		return "OP_BLAKE2B"
	case value == OpCheckSigECDSA:
		return "OP_CHECKSIGECDSA"
	case value == OpCheckSig:
		return "OP_CHECKSIG"
	}
	return fmt.Sprintf("OP_UNKNOWN%d", value)
}

// pushLength returns the framing of an opcode the same way the kaspad opcode
// table does: a positive value is the total size of the opcode including its
// data, a negative value is the size of the little-endian length prefix that
// follows the opcode byte.
func pushLength(value byte) int {
	switch {
	case value >= OpData1 && value <= OpData75:
		return int(value) + 1
	case value == OpPushData1:
		return -1
	case value == OpPushData2:
		return -2
	case value == OpPushData4:
		return -4
	}
	return 1
}
