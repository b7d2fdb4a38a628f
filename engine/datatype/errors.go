package datatype

import (
	"github.com/pkg/errors"
	"github.com/xiaonanln/gwdatatype/engine/stream"
)

// EncodingError is returned when a value cannot be represented in the target format
type EncodingError = stream.EncodingError

// DecodingError is returned when a stream or document is malformed or truncated
type DecodingError = stream.DecodingError

var (
	// ErrTrailingKey is the cause of a stream ending after a key with no value
	ErrTrailingKey = errors.New("mapping key without value")
	// ErrMissingField is the cause of a document lacking a required field
	ErrMissingField = errors.New("missing field")
	// ErrIntOverflow is the cause of a document int that does not fit 32 bits
	ErrIntOverflow = errors.New("int out of int32 range")
	// ErrWrongType is the cause of a value of the wrong Go type passed to a DataType,
	// or of a document field holding the wrong kind of value
	ErrWrongType = errors.New("wrong value type")
)

// IsEncodingError reports whether err is an EncodingError
func IsEncodingError(err error) bool {
	return stream.IsEncodingError(err)
}

// IsDecodingError reports whether err is a DecodingError
func IsDecodingError(err error) bool {
	return stream.IsDecodingError(err)
}

func decodingError(field string, cause error, format string, args ...interface{}) error {
	return &DecodingError{Field: field, Err: errors.Wrapf(cause, format, args...)}
}

func encodingError(field string, cause error, format string, args ...interface{}) error {
	return &EncodingError{Field: field, Err: errors.Wrapf(cause, format, args...)}
}
