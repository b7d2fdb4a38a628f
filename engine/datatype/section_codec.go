package datatype

import (
	"math"

	"github.com/xiaonanln/gwdatatype/engine/section"
)

// Field names shared by the document layout and the schema declaration
const (
	FIELD_INT_VALUE    = "intValue"
	FIELD_STRING_VALUE = "stringValue"
	FIELD_DICT_VALUE   = "dictValue"
	FIELD_KEY          = "key"
	FIELD_VALUE        = "value"
)

// EncodeSection writes v under node. A nil v encodes DefaultValue().
// Only the intValue, stringValue and dictValue entries of node are written;
// dictValue is replaced with one child per mapping entry, in ascending key order.
func EncodeSection(v *StructuredValue, node section.DataSection) error {
	if v == nil {
		v = DefaultValue()
	}
	node.WriteInt(FIELD_INT_VALUE, int64(v.IntValue))
	node.WriteString(FIELD_STRING_VALUE, v.StringValue)
	coll := node.CreateChildCollection(FIELD_DICT_VALUE)
	for _, k := range v.SortedKeys() {
		item := coll.NewChild(section.DEFAULT_CHILD_NAME)
		item.WriteString(FIELD_KEY, k)
		item.WriteString(FIELD_VALUE, v.DictValue[k])
	}
	return nil
}

// DecodeSection reads a value from node.
//
// A node without intValue decodes as DefaultValue(). Once intValue is present
// the rest of the value is required: a missing stringValue, or a dictValue child
// missing key or value, fails with a DecodingError. A field holding the wrong
// kind of value fails the same way, including an intValue that is not a whole
// number. A missing dictValue collection decodes as an empty mapping.
func DecodeSection(node section.DataSection) (*StructuredValue, error) {
	n, ok := node.ReadInt(FIELD_INT_VALUE)
	if !ok {
		if node.HasKey(FIELD_INT_VALUE) {
			return nil, decodingError(FIELD_INT_VALUE, ErrWrongType, "section %s: not a whole number in int64 range", node.Name())
		}
		return DefaultValue(), nil
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return nil, decodingError(FIELD_INT_VALUE, ErrIntOverflow, "value %d", n)
	}

	s, ok := node.ReadString(FIELD_STRING_VALUE)
	if !ok {
		if node.HasKey(FIELD_STRING_VALUE) {
			return nil, decodingError(FIELD_STRING_VALUE, ErrWrongType, "section %s: not a string", node.Name())
		}
		return nil, decodingError(FIELD_STRING_VALUE, ErrMissingField, "section %s", node.Name())
	}

	v := &StructuredValue{
		IntValue:    int32(n),
		StringValue: s,
		DictValue:   map[string]string{},
	}
	children, ok := node.Children(FIELD_DICT_VALUE)
	if !ok && node.HasKey(FIELD_DICT_VALUE) {
		return nil, decodingError(FIELD_DICT_VALUE, ErrWrongType, "section %s: not a collection", node.Name())
	}
	for i, child := range children {
		k, ok := child.ReadString(FIELD_KEY)
		if !ok {
			return nil, decodingError(FIELD_DICT_VALUE, ErrMissingField, "child %d has no %s", i, FIELD_KEY)
		}
		val, ok := child.ReadString(FIELD_VALUE)
		if !ok {
			return nil, decodingError(FIELD_DICT_VALUE, ErrMissingField, "child %d (%q) has no %s", i, k, FIELD_VALUE)
		}
		v.DictValue[k] = val
	}
	return v, nil
}
