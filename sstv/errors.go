package sstv

import "fmt"

// ErrorKind classifies a decode failure.
type ErrorKind int

const (
	// UnknownMode means a VIS code was decoded but no catalogue entry
	// matches it.
	UnknownMode ErrorKind = iota
	// VisParityMismatch means the VIS parity bit doesn't match the
	// assembled code.
	VisParityMismatch
	// UnexpectedMode means the detected mode differs from the caller's
	// expected mode and fallback was disabled.
	UnexpectedMode
	// EmptyInput means the PCM buffer is too short to cover the
	// VOX+VIS header.
	EmptyInput
	// PixelProviderMissing means the encoder was asked to delegate a
	// scan but no pixel provider is set. Non-fatal: the encoder
	// substitutes the test pattern (or silence) and logs.
	PixelProviderMissing
)

func (k ErrorKind) String() string {
	switch k {
	case UnknownMode:
		return "unknown mode"
	case VisParityMismatch:
		return "VIS parity mismatch"
	case UnexpectedMode:
		return "unexpected mode"
	case EmptyInput:
		return "empty input"
	case PixelProviderMissing:
		return "pixel provider missing"
	default:
		return "unknown error kind"
	}
}

// DecodeError reports why DecodeSamples stopped before producing pixels.
type DecodeError struct {
	Kind ErrorKind
	Msg  string
}

func (e *DecodeError) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func newDecodeError(kind ErrorKind, format string, args ...any) *DecodeError {
	return &DecodeError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
