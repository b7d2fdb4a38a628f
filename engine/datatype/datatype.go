// Package datatype implements StructuredValue and its three encodings: a flat
// byte stream, a named-field document (section) and a relational schema
// declaration, plus the conversions between stream and document.
package datatype

import (
	"github.com/xiaonanln/gwdatatype/engine/schema"
	"github.com/xiaonanln/gwdatatype/engine/section"
	"github.com/xiaonanln/gwdatatype/engine/stream"
)

// DataType is the set of operations a property type offers to the engine
type DataType interface {
	Name() string
	IsSameType(v interface{}) bool
	DefaultValue() interface{}

	// AddToStream appends v to s as one length-framed blob
	AddToStream(v interface{}, s *stream.Stream) error
	// CreateFromStream reads one blob written by AddToStream
	CreateFromStream(s *stream.Stream) (interface{}, error)
	AddToSection(v interface{}, node section.DataSection) error
	CreateFromSection(node section.DataSection) (interface{}, error)
	FromStreamToSection(s *stream.Stream, node section.DataSection) error
	FromSectionToStream(node section.DataSection, s *stream.Stream) error

	BindSchema(b schema.Binder)
	// Digest fingerprints the type name and storage shape
	Digest() uint64
}

// StructuredType is the DataType of *StructuredValue
type StructuredType struct {
	name string
}

var _ DataType = (*StructuredType)(nil)

// NewStructuredType creates the DataType of *StructuredValue registered under name
func NewStructuredType(name string) *StructuredType {
	return &StructuredType{name: name}
}

// Name returns the type name
func (t *StructuredType) Name() string {
	return t.name
}

// IsSameType returns if v is a *StructuredValue
func (t *StructuredType) IsSameType(v interface{}) bool {
	_, ok := v.(*StructuredValue)
	return ok
}

// DefaultValue returns a fresh DefaultValue()
func (t *StructuredType) DefaultValue() interface{} {
	return DefaultValue()
}

// valueOf accepts a *StructuredValue or nil
func (t *StructuredType) valueOf(v interface{}) (*StructuredValue, error) {
	if v == nil {
		return nil, nil
	}
	sv, ok := v.(*StructuredValue)
	if !ok {
		return nil, encodingError("", ErrWrongType, "%s expects *StructuredValue, got %T", t.name, v)
	}
	return sv, nil
}

// AddToStream encodes v and appends it as one packed-length blob
func (t *StructuredType) AddToStream(v interface{}, s *stream.Stream) error {
	sv, err := t.valueOf(v)
	if err != nil {
		return err
	}
	b, err := EncodeStream(sv)
	if err != nil {
		return err
	}
	return s.AppendPackedBytes(b)
}

// CreateFromStream reads one blob and decodes it
func (t *StructuredType) CreateFromStream(s *stream.Stream) (interface{}, error) {
	b, err := s.ReadPackedBytes()
	if err != nil {
		return nil, err
	}
	return DecodeStream(b)
}

// AddToSection writes v under node
func (t *StructuredType) AddToSection(v interface{}, node section.DataSection) error {
	sv, err := t.valueOf(v)
	if err != nil {
		return err
	}
	return EncodeSection(sv, node)
}

// CreateFromSection reads a value from node
func (t *StructuredType) CreateFromSection(node section.DataSection) (interface{}, error) {
	return DecodeSection(node)
}

// FromStreamToSection converts one framed blob of s into fields of node
func (t *StructuredType) FromStreamToSection(s *stream.Stream, node section.DataSection) error {
	b, err := s.ReadPackedBytes()
	if err != nil {
		return err
	}
	return StreamToSection(b, node)
}

// FromSectionToStream converts node into one framed blob appended to s
func (t *StructuredType) FromSectionToStream(node section.DataSection, s *stream.Stream) error {
	b, err := SectionToStream(node)
	if err != nil {
		return err
	}
	return s.AppendPackedBytes(b)
}

// BindSchema declares the storage shape
func (t *StructuredType) BindSchema(b schema.Binder) {
	BindSchema(b)
}

// Schema returns the recorded storage declaration, rooted at a table named after the type
func (t *StructuredType) Schema() (*schema.Table, error) {
	r := schema.NewRecorder(t.name)
	t.BindSchema(r)
	return r.Table()
}

// Digest fingerprints the type name and storage shape
func (t *StructuredType) Digest() uint64 {
	tbl, err := t.Schema()
	if err != nil {
		// the declaration is static; a failure here is a programming error
		panic(err)
	}
	return tbl.Digest()
}
