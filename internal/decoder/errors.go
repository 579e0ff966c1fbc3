package decoder

import (
	"errors"
	"fmt"
)

// Failure kinds. A *DecodeError always wraps exactly one of these.
var (
	ErrUnsupportedOpcode = errors.New("unsupported opcode")
	ErrMalformedOperand  = errors.New("malformed operand encoding")
	ErrTruncatedInput    = errors.New("truncated input")
	ErrUndefinedPrefix   = errors.New("undefined prefix combination")
	ErrIOFailure         = errors.New("i/o failure")
)

// DecodeError reports where decoding stopped and why.
type DecodeError struct {
	Offset int  // offset of the opcode byte being decoded
	Opcode byte // value of that opcode byte
	Err    error
	Detail string
}

func (e *DecodeError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("offset %d (opcode %#04x): %v", e.Offset, e.Opcode, e.Err)
	}
	return fmt.Sprintf("offset %d (opcode %#04x): %v: %s", e.Offset, e.Opcode, e.Err, e.Detail)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Kind returns a short name for the wrapped failure, for logs.
func (e *DecodeError) Kind() string {
	switch {
	case errors.Is(e.Err, ErrUnsupportedOpcode):
		return "UnsupportedOpcode"
	case errors.Is(e.Err, ErrMalformedOperand):
		return "MalformedOperandEncoding"
	case errors.Is(e.Err, ErrTruncatedInput):
		return "TruncatedInput"
	case errors.Is(e.Err, ErrUndefinedPrefix):
		return "UndefinedPrefixCombination"
	case errors.Is(e.Err, ErrIOFailure):
		return "IOFailure"
	}
	return "Unknown"
}
