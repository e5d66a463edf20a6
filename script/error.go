package script

import "fmt"

// ErrorCode identifies a kind of script decoding error.
type ErrorCode int

const (
	// ErrMalformedPush is returned when a data push opcode claims more
	// bytes than remain in the script, including a truncated length prefix.
	ErrMalformedPush ErrorCode = iota

	// ErrScriptTooBig is returned by the builder when a push would exceed
	// the addressable size of OP_PUSHDATA4.
	ErrScriptTooBig
)

var errorCodeStrings = map[ErrorCode]string{
	ErrMalformedPush: "ErrMalformedPush",
	ErrScriptTooBig:  "ErrScriptTooBig",
}

func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error identifies a script-related error. Description carries the details.
type Error struct {
	ErrorCode   ErrorCode
	Description string
}

func (e Error) Error() string {
	return e.Description
}

func scriptError(c ErrorCode, desc string) Error {
	return Error{ErrorCode: c, Description: desc}
}

// IsErrorCode returns whether or not the provided error is a script error with
// the provided error code.
func IsErrorCode(err error, c ErrorCode) bool {
	serr, ok := err.(Error)
	return ok && serr.ErrorCode == c
}
