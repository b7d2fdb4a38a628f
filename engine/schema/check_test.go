package schema

import (
	"strings"
	"testing"

	"github.com/bmizerany/assert"
	"github.com/pkg/errors"
	"github.com/xiaonanln/gwdatatype/engine/section"
	"github.com/xiaonanln/gwdatatype/engine/stream"
)

func sampleTable(t *testing.T) *Table {
	r := NewRecorder("Avatar")
	r.BindColumn("level", INT8, 0)
	r.BindColumn("name", STRING, 10)
	r.BindColumn("icon", BLOB, 4)
	r.BeginSubTable("friends")
	r.BindColumn("key", STRING, 10)
	r.EndSubTable()
	tbl, err := r.Table()
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func sampleNode(level int64, name string, icon string, friends ...string) *section.MapSection {
	node := section.NewMapSection("avatar")
	node.WriteInt("level", level)
	node.WriteString("name", name)
	node.WriteString("icon", icon)
	coll := node.CreateChildCollection("friends")
	for _, f := range friends {
		coll.NewChild(section.DEFAULT_CHILD_NAME).WriteString("key", f)
	}
	return node
}

func TestTableCheck(t *testing.T) {
	tbl := sampleTable(t)
	assert.Equal(t, nil, tbl.Check(sampleNode(127, strings.Repeat("n", 10), "\xff\xfe\x00\x01", "a", "ü")))

	cases := []struct {
		node  *section.MapSection
		field string
		cause error
	}{
		{sampleNode(128, "n", ""), "level", ErrColumnRange},
		{sampleNode(-129, "n", ""), "level", ErrColumnRange},
		{sampleNode(1, strings.Repeat("n", 11), ""), "name", ErrColumnTooLong},
		{sampleNode(1, "\xff", ""), "name", stream.ErrInvalidUTF8},
		{sampleNode(1, "n", "12345"), "icon", ErrColumnTooLong},
		{sampleNode(1, "n", "", "ok", "\x80"), "friends[1].key", stream.ErrInvalidUTF8},
		{sampleNode(1, "n", "", strings.Repeat("f", 11)), "friends[0].key", ErrColumnTooLong},
	}
	for _, c := range cases {
		err := tbl.Check(c.node)
		assert.T(t, stream.IsEncodingError(err), c.field, err)
		assert.Equal(t, c.field, err.(*stream.EncodingError).Field)
		assert.Equal(t, c.cause, errors.Cause(err))
	}

	node := sampleNode(1, "n", "")
	node.Delete("name")
	err := tbl.Check(node)
	assert.Equal(t, ErrMissingColumn, errors.Cause(err))
}

func TestColumnTypeIsInt(t *testing.T) {
	for _, typ := range []ColumnType{INT8, INT16, INT32, INT64, UINT8, UINT16, UINT32, UINT64} {
		assert.T(t, typ.IsInt(), typ)
	}
	for _, typ := range []ColumnType{FLOAT32, FLOAT64, STRING, BLOB} {
		assert.T(t, !typ.IsInt(), typ)
	}
	c := Column{Name: "u", Type: UINT16}
	assert.Equal(t, nil, c.CheckInt("u", 65535))
	assert.Equal(t, ErrColumnRange, errors.Cause(c.CheckInt("u", -1)))
}
