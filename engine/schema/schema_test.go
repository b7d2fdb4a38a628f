package schema

import (
	"strings"
	"testing"

	"github.com/bmizerany/assert"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder("Avatar")
	r.BindColumn("level", INT32, 0)
	r.BindColumn("name", STRING, 50)
	r.BeginSubTable("friends")
	r.BindColumn("key", STRING, 50)
	r.BindColumn("value", STRING, 50)
	r.EndSubTable()

	tbl, err := r.Table()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "Avatar", tbl.Name)
	assert.Equal(t, 2, len(tbl.Columns))
	assert.Equal(t, Column{Name: "level", Type: INT32}, tbl.Columns[0])
	assert.Equal(t, Column{Name: "name", Type: STRING, MaxLength: 50}, *tbl.Column("name"))
	assert.T(t, tbl.Column("missing") == nil, "missing column")

	sub := tbl.SubTable("friends")
	assert.T(t, sub != nil, "sub-table recorded")
	assert.Equal(t, 2, len(sub.Columns))
	assert.Equal(t, 0, len(sub.SubTables))

	text := tbl.String()
	assert.T(t, strings.Contains(text, "name STRING(50)"), text)
	assert.T(t, strings.Contains(text, "\tTABLE friends"), text)
}

func TestRecorderErrors(t *testing.T) {
	r := NewRecorder("T")
	r.BindColumn("a", INT32, 0)
	r.BindColumn("a", INT64, 0)
	_, err := r.Table()
	assert.T(t, err != nil, "duplicate column")

	r = NewRecorder("T")
	r.BindColumn("s", STRING, 0)
	_, err = r.Table()
	assert.T(t, err != nil, "string needs length")

	r = NewRecorder("T")
	r.BeginSubTable("sub")
	_, err = r.Table()
	assert.T(t, err != nil, "unclosed sub-table")

	r = NewRecorder("T")
	r.EndSubTable()
	_, err = r.Table()
	assert.T(t, err != nil, "unbalanced EndSubTable")
}

func TestDigest(t *testing.T) {
	declare := func(width int) *Table {
		r := NewRecorder("T")
		r.BindColumn("s", STRING, width)
		tbl, err := r.Table()
		if err != nil {
			t.Fatal(err)
		}
		return tbl
	}
	assert.Equal(t, declare(50).Digest(), declare(50).Digest())
	assert.NotEqual(t, declare(50).Digest(), declare(51).Digest())
	assert.Equal(t, "STRING", STRING.String())
	assert.Equal(t, "ColumnType(99)", ColumnType(99).String())
}
