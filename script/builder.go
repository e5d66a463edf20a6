package script

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Builder assembles scripts from opcodes and data pushes, always choosing
// the smallest push encoding for the data.
//
//	builder := NewBuilder()
//	builder.AddOp(OpFalse).AddOp(OpIf).AddData([]byte("kasplex")).AddOp(OpEndIf)
//	script, err := builder.Script()
type Builder struct {
	script []byte
	err    error
}

// NewBuilder returns an empty script builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddOp appends a single opcode.
func (b *Builder) AddOp(op byte) *Builder {
	if b.err != nil {
		return b
	}
	b.script = append(b.script, op)
	return b
}

// AddOps appends the opcodes in order.
func (b *Builder) AddOps(ops ...byte) *Builder {
	for _, op := range ops {
		b.AddOp(op)
	}
	return b
}

// AddData appends a push of data. Empty data is pushed as OP_0.
func (b *Builder) AddData(data []byte) *Builder {
	if b.err != nil {
		return b
	}

	dataLen := len(data)
	switch {
	case dataLen == 0:
		b.script = append(b.script, Op0)
		return b
	case dataLen <= OpData75:
		b.script = append(b.script, byte(OpData1-1+dataLen))
	case dataLen <= math.MaxUint8:
		b.script = append(b.script, OpPushData1, byte(dataLen))
	case dataLen <= math.MaxUint16:
		var buf [2]byte
		binary.LittleEndian.PutUint16(buf[:], uint16(dataLen))
		b.script = append(b.script, OpPushData2)
		b.script = append(b.script, buf[:]...)
	case uint64(dataLen) <= math.MaxUint32:
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], uint32(dataLen))
		b.script = append(b.script, OpPushData4)
		b.script = append(b.script, buf[:]...)
	default:
		b.err = scriptError(ErrScriptTooBig, fmt.Sprintf("data push of "+
			"%d bytes exceeds the maximum push size", dataLen))
		return b
	}
	b.script = append(b.script, data...)
	return b
}

// AddRaw appends bytes verbatim, without any push framing.
func (b *Builder) AddRaw(raw []byte) *Builder {
	if b.err != nil {
		return b
	}
	b.script = append(b.script, raw...)
	return b
}

// Script returns the assembled script or the first error encountered.
func (b *Builder) Script() ([]byte, error) {
	return b.script, b.err
}
