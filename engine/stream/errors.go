package stream

import (
	"github.com/pkg/errors"
)

var (
	// ErrStringTooLong is the cause of encoding a string whose length does not fit a short length prefix
	ErrStringTooLong = errors.New("string too long for short length prefix")
	// ErrBytesTooLong is the cause of encoding bytes whose length does not fit a packed length
	ErrBytesTooLong = errors.New("bytes too long for packed length")
	// ErrShortRead is the cause of reading past the end of the buffer
	ErrShortRead = errors.New("not enough bytes")
	// ErrBadLength is the cause of reading a length prefix no writer produces
	ErrBadLength = errors.New("malformed length prefix")
	// ErrInvalidUTF8 is the cause of writing a non UTF-8 string where only text can be stored
	ErrInvalidUTF8 = errors.New("string is not valid UTF-8")
)

// EncodingError is returned when a value cannot be represented in the wire format
type EncodingError struct {
	Field string
	Err   error
}

func (e *EncodingError) Error() string {
	if e.Field == "" {
		return "encoding error: " + e.Err.Error()
	}
	return "encoding error: " + e.Field + ": " + e.Err.Error()
}

// Cause returns the underlying error
func (e *EncodingError) Cause() error {
	return e.Err
}

// DecodingError is returned when input is malformed or truncated
type DecodingError struct {
	Field string
	Err   error
}

func (e *DecodingError) Error() string {
	if e.Field == "" {
		return "decoding error: " + e.Err.Error()
	}
	return "decoding error: " + e.Field + ": " + e.Err.Error()
}

// Cause returns the underlying error
func (e *DecodingError) Cause() error {
	return e.Err
}

func encodingErrorf(cause error, format string, args ...interface{}) error {
	return &EncodingError{Err: errors.Wrapf(cause, format, args...)}
}

func decodingErrorf(cause error, format string, args ...interface{}) error {
	return &DecodingError{Err: errors.Wrapf(cause, format, args...)}
}

// WithField returns a copy of an EncodingError or DecodingError labelled with the field being processed.
// Other errors are returned unchanged.
func WithField(err error, field string) error {
	switch e := err.(type) {
	case *EncodingError:
		return &EncodingError{Field: field, Err: e.Err}
	case *DecodingError:
		return &DecodingError{Field: field, Err: e.Err}
	}
	return err
}

// IsEncodingError reports whether err is an EncodingError
func IsEncodingError(err error) bool {
	_, ok := err.(*EncodingError)
	return ok
}

// IsDecodingError reports whether err is a DecodingError
func IsDecodingError(err error) bool {
	_, ok := err.(*DecodingError)
	return ok
}
