package schema

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/xiaonanln/gwdatatype/engine/section"
	"github.com/xiaonanln/gwdatatype/engine/stream"
)

var (
	// ErrColumnTooLong is the cause of a string or blob longer than its declared column
	ErrColumnTooLong = errors.New("value longer than its column")
	// ErrColumnRange is the cause of an int outside the range of its column type
	ErrColumnRange = errors.New("value out of column range")
	// ErrMissingColumn is the cause of a document lacking a declared column
	ErrMissingColumn = errors.New("missing column")
)

var intRanges = map[ColumnType][2]int64{
	INT8:   {math.MinInt8, math.MaxInt8},
	INT16:  {math.MinInt16, math.MaxInt16},
	INT32:  {math.MinInt32, math.MaxInt32},
	INT64:  {math.MinInt64, math.MaxInt64},
	UINT8:  {0, math.MaxUint8},
	UINT16: {0, math.MaxUint16},
	UINT32: {0, math.MaxUint32},
	UINT64: {0, math.MaxInt64},
}

func columnError(field string, cause error, format string, args ...interface{}) error {
	return &stream.EncodingError{Field: field, Err: errors.Wrapf(cause, format, args...)}
}

// CheckInt returns an EncodingError labelled field if n does not fit the column
func (c *Column) CheckInt(field string, n int64) error {
	r, ok := intRanges[c.Type]
	if !ok {
		return nil
	}
	if n < r[0] || n > r[1] {
		return columnError(field, ErrColumnRange, "%d in %s column", n, c.Type)
	}
	return nil
}

// CheckString returns an EncodingError labelled field if s does not fit the column.
// STRING columns hold UTF-8 text only.
func (c *Column) CheckString(field string, s string) error {
	if c.Type == STRING && !utf8.ValidString(s) {
		return columnError(field, stream.ErrInvalidUTF8, "%s column", c.Type)
	}
	if c.Type.IsVariableLength() && c.MaxLength > 0 && len(s) > c.MaxLength {
		return columnError(field, ErrColumnTooLong, "%d bytes in %s(%d) column", len(s), c.Type, c.MaxLength)
	}
	return nil
}

// Check returns an EncodingError for the first value of node that the declaration cannot store.
// Sub-table rows are the children of the collection named after the sub-table;
// their fields are labelled like dictValue[0].key.
func (t *Table) Check(node section.DataSection) error {
	return t.check(node, "")
}

func (t *Table) check(node section.DataSection, prefix string) error {
	for i := range t.Columns {
		c := &t.Columns[i]
		field := prefix + c.Name
		var err error
		if c.Type.IsInt() {
			n, ok := node.ReadInt(c.Name)
			if !ok {
				return columnError(field, ErrMissingColumn, "table %s", t.Name)
			}
			err = c.CheckInt(field, n)
		} else if c.Type.IsVariableLength() {
			s, ok := node.ReadString(c.Name)
			if !ok {
				return columnError(field, ErrMissingColumn, "table %s", t.Name)
			}
			err = c.CheckString(field, s)
		}
		if err != nil {
			return err
		}
	}

	for _, st := range t.SubTables {
		children, _ := node.Children(st.Name)
		for i, child := range children {
			if err := st.check(child, fmt.Sprintf("%s%s[%d].", prefix, st.Name, i)); err != nil {
				return err
			}
		}
	}
	return nil
}
