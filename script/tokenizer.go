package script

import (
	"encoding/binary"
	"fmt"
)

// Tokenizer walks a script one opcode at a time. It halts at the first
// malformed opcode and never resynchronizes past it.
//
// Typical usage:
//
//	tokenizer := MakeTokenizer(script)
//	for tokenizer.Next() {
//		// use tokenizer.Opcode() and tokenizer.Data()
//	}
//	if err := tokenizer.Err(); err != nil {
//		return err
//	}
type Tokenizer struct {
	script []byte
	offset int
	op     byte
	data   []byte
	err    error
}

// MakeTokenizer returns a tokenizer positioned before the first opcode of the
// provided script.
func MakeTokenizer(script []byte) Tokenizer {
	return Tokenizer{script: script}
}

// Done returns true when either all opcodes have been exhausted or a decoding
// failure was encountered.
func (t *Tokenizer) Done() bool {
	return t.err != nil || t.offset >= len(t.script)
}

// Next attempts to decode the next opcode and reports whether it succeeded.
func (t *Tokenizer) Next() bool {
	if t.Done() {
		return false
	}

	op := t.script[t.offset]
	switch length := pushLength(op); {
	case length == 1:
		t.offset++
		t.op = op
		t.data = nil
		return true

	case length > 1:
		script := t.script[t.offset:]
		if len(script) < length {
			t.err = scriptError(ErrMalformedPush, fmt.Sprintf("opcode %s "+
				"requires %d bytes, but script only has %d remaining",
				opcodeName(op), length, len(script)))
			return false
		}
		t.offset += length
		t.op = op
		t.data = script[1:length]
		return true

	default:
		script := t.script[t.offset+1:]
		prefix := -length
		if len(script) < prefix {
			t.err = scriptError(ErrMalformedPush, fmt.Sprintf("opcode %s "+
				"requires %d bytes, but script only has %d remaining",
				opcodeName(op), prefix, len(script)))
			return false
		}

		var dataLen uint64
		switch prefix {
		case 1:
			dataLen = uint64(script[0])
		case 2:
			dataLen = uint64(binary.LittleEndian.Uint16(script[:2]))
		case 4:
			dataLen = uint64(binary.LittleEndian.Uint32(script[:4]))
		}

		script = script[prefix:]
		if uint64(len(script)) < dataLen {
			t.err = scriptError(ErrMalformedPush, fmt.Sprintf("opcode %s "+
				"pushes %d bytes, but script only has %d remaining",
				opcodeName(op), dataLen, len(script)))
			return false
		}

		t.offset += 1 + prefix + int(dataLen)
		t.op = op
		t.data = script[:dataLen]
		return true
	}
}

// Opcode returns the current opcode.
func (t *Tokenizer) Opcode() byte {
	return t.op
}

// Data returns the data pushed by the current opcode, or nil.
func (t *Tokenizer) Data() []byte {
	return t.data
}

// ByteIndex returns the offset of the next opcode to decode.
func (t *Tokenizer) ByteIndex() int {
	return t.offset
}

// Err returns the decoding failure that stopped the tokenizer, if any.
func (t *Tokenizer) Err() error {
	return t.err
}

// Result is one entry of a parsed script: either a decoded opcode or the
// failure that terminated decoding.
type Result struct {
	Opcode Opcode
	Err    error
}

// Parse decodes the whole script into an ordered list. A decoding failure is
// recorded as the final entry, so callers indexing from the end see the same
// positions a lazy consumer would.
func Parse(script []byte) []Result {
	var results []Result
	tokenizer := MakeTokenizer(script)
	for tokenizer.Next() {
		results = append(results, Result{Opcode: Opcode{
			Value: tokenizer.Opcode(),
			Data:  tokenizer.Data(),
		}})
	}
	if err := tokenizer.Err(); err != nil {
		results = append(results, Result{Err: err})
	}
	return results
}

// ParseOpcodes decodes the whole script and returns the opcodes decoded
// before any failure along with that failure.
func ParseOpcodes(script []byte) ([]Opcode, error) {
	var opcodes []Opcode
	tokenizer := MakeTokenizer(script)
	for tokenizer.Next() {
		opcodes = append(opcodes, Opcode{
			Value: tokenizer.Opcode(),
			Data:  tokenizer.Data(),
		})
	}
	return opcodes, tokenizer.Err()
}
