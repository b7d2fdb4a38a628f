package datatype

import (
	"fmt"
	"sort"
	"strings"
)

// StructuredValue is one int, one string and a string to string mapping.
//
// Values are treated as immutable once constructed: codecs never modify the
// value they are given, and values they return are not shared.
type StructuredValue struct {
	IntValue    int32
	StringValue string
	DictValue   map[string]string
}

// NewStructuredValue creates a StructuredValue, copying dict
func NewStructuredValue(intValue int32, stringValue string, dict map[string]string) *StructuredValue {
	v := &StructuredValue{
		IntValue:    intValue,
		StringValue: stringValue,
		DictValue:   make(map[string]string, len(dict)),
	}
	for k, val := range dict {
		v.DictValue[k] = val
	}
	return v
}

// DefaultValue returns the canonical value used when no data is available.
// Every call returns a fresh value with equal content.
func DefaultValue() *StructuredValue {
	return &StructuredValue{
		IntValue:    100,
		StringValue: "Blah",
		DictValue:   map[string]string{"happy": "sad"},
	}
}

// Clone returns a deep copy of v
func (v *StructuredValue) Clone() *StructuredValue {
	return NewStructuredValue(v.IntValue, v.StringValue, v.DictValue)
}

// Equal returns if both values have the same fields and the same set of pairs
func (v *StructuredValue) Equal(other *StructuredValue) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.IntValue != other.IntValue || v.StringValue != other.StringValue {
		return false
	}
	if len(v.DictValue) != len(other.DictValue) {
		return false
	}
	for k, val := range v.DictValue {
		if otherVal, ok := other.DictValue[k]; !ok || otherVal != val {
			return false
		}
	}
	return true
}

// SortedKeys returns the mapping keys in ascending byte order
func (v *StructuredValue) SortedKeys() []string {
	keys := make([]string, 0, len(v.DictValue))
	for k := range v.DictValue {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (v *StructuredValue) String() string {
	if v == nil {
		return "StructuredValue<nil>"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "StructuredValue{IntValue: %d, StringValue: %q, DictValue: {", v.IntValue, v.StringValue)
	for i, k := range v.SortedKeys() {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q: %q", k, v.DictValue[k])
	}
	sb.WriteString("}}")
	return sb.String()
}
