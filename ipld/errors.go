package ipld

import "fmt"

// ErrorKind names one of the failure reasons shared across codecs.
// See the DecodeError and EncodeError doc comments for which kinds each
// one carries.
type ErrorKind string

// The error kinds codecs in this module report. Names match spec section
// 7's taxonomy so that callers can switch on Kind without caring which
// codec produced the error.
const (
	UnexpectedEOF     ErrorKind = "unexpected_eof"
	TrailingBytes     ErrorKind = "trailing_bytes"
	InvalidUTF8       ErrorKind = "invalid_utf8"
	NotCanonical      ErrorKind = "not_canonical"
	UnsupportedTag    ErrorKind = "unsupported_tag"
	UnsupportedType   ErrorKind = "unsupported_type"
	DuplicateKey      ErrorKind = "duplicate_key"
	IntegerOutOfRange ErrorKind = "integer_out_of_range"
	FloatNotFinite    ErrorKind = "float_not_finite"
	InvalidCid        ErrorKind = "invalid_cid"
	LengthMismatch    ErrorKind = "length_mismatch"
	DepthExceeded     ErrorKind = "depth_exceeded"
	SchemaViolation   ErrorKind = "schema_violation"
)

// DecodeError is returned by a codec's Decode or References when input
// bytes cannot be accepted. Decoders never partially succeed: on any
// error the caller gets a DecodeError and no partial Node.
type DecodeError struct {
	Kind ErrorKind
	// Offset is the byte offset into the input where the problem was
	// detected, when the codec tracked one. -1 means "not tracked".
	Offset int
	Msg    string
	// Err wraps an underlying error (e.g. from a varint library) when
	// one exists, so errors.Is/errors.As can still reach it.
	Err error
}

func (e *DecodeError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("ipld: decode: %s at offset %d: %s", e.Kind, e.Offset, e.Msg)
	}
	return fmt.Sprintf("ipld: decode: %s: %s", e.Kind, e.Msg)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// NewDecodeError builds a DecodeError with no tracked offset.
func NewDecodeError(kind ErrorKind, msg string) *DecodeError {
	return &DecodeError{Kind: kind, Offset: -1, Msg: msg}
}

// NewDecodeErrorAt builds a DecodeError with a tracked byte offset.
func NewDecodeErrorAt(kind ErrorKind, offset int, msg string) *DecodeError {
	return &DecodeError{Kind: kind, Offset: offset, Msg: msg}
}

// EncodeError is returned by a codec's Encode. Its Kind is
// IntegerOutOfRange or FloatNotFinite for a number the codec cannot
// carry, SchemaViolation for a value whose shape the codec cannot
// represent, or NotCanonical for dagpb Links out of order.
type EncodeError struct {
	Kind ErrorKind
	Msg  string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("ipld: encode: %s: %s", e.Kind, e.Msg)
}

// NewEncodeError builds an EncodeError.
func NewEncodeError(kind ErrorKind, msg string) *EncodeError {
	return &EncodeError{Kind: kind, Msg: msg}
}
