package datatype

import (
	"github.com/xiaonanln/gwdatatype/engine/section"
)

// StreamToSection decodes b from the stream layout and writes it under node.
// Errors from either step are returned as is.
func StreamToSection(b []byte, node section.DataSection) error {
	v, err := DecodeStream(b)
	if err != nil {
		return err
	}
	return EncodeSection(v, node)
}

// SectionToStream decodes a value from node and encodes it in the stream layout.
// Errors from either step are returned as is.
func SectionToStream(node section.DataSection) ([]byte, error) {
	v, err := DecodeSection(node)
	if err != nil {
		return nil, err
	}
	return EncodeStream(v)
}
