// Package schema describes the relational storage shape of a data type.
//
// Data types declare their shape to a Binder; nothing in this package reads
// or writes a database.
package schema

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ColumnType is the primitive storage type of a column
type ColumnType int

const (
	INT8 ColumnType = iota + 1
	INT16
	INT32
	INT64
	UINT8
	UINT16
	UINT32
	UINT64
	FLOAT32
	FLOAT64
	STRING
	BLOB
)

var columnTypeNames = map[ColumnType]string{
	INT8:    "INT8",
	INT16:   "INT16",
	INT32:   "INT32",
	INT64:   "INT64",
	UINT8:   "UINT8",
	UINT16:  "UINT16",
	UINT32:  "UINT32",
	UINT64:  "UINT64",
	FLOAT32: "FLOAT32",
	FLOAT64: "FLOAT64",
	STRING:  "STRING",
	BLOB:    "BLOB",
}

func (t ColumnType) String() string {
	if name, ok := columnTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ColumnType(%d)", int(t))
}

// IsInt returns if the type is one of the integer types
func (t ColumnType) IsInt() bool {
	return t >= INT8 && t <= UINT64
}

// IsVariableLength returns if columns of the type carry a maximum length
func (t ColumnType) IsVariableLength() bool {
	return t == STRING || t == BLOB
}

// Binder receives the storage declaration of a data type
type Binder interface {
	// BindColumn declares a column. maxLength is only meaningful for variable length types.
	BindColumn(name string, typ ColumnType, maxLength int)
	// BeginSubTable opens a one-to-many sub-table keyed by the owning record;
	// columns bound until the matching EndSubTable belong to it
	BeginSubTable(name string)
	// EndSubTable closes the innermost open sub-table
	EndSubTable()
}

// Column is one declared column
type Column struct {
	Name      string
	Type      ColumnType
	MaxLength int
}

// Table is a declared table with its columns and sub-tables in declaration order
type Table struct {
	Name      string
	Columns   []Column
	SubTables []*Table
}

// Column returns the named column, or nil
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// SubTable returns the named sub-table, or nil
func (t *Table) SubTable(name string) *Table {
	for _, st := range t.SubTables {
		if st.Name == name {
			return st
		}
	}
	return nil
}

// String returns the canonical text form of the table declaration
func (t *Table) String() string {
	var sb strings.Builder
	t.writeTo(&sb, 0)
	return sb.String()
}

func (t *Table) writeTo(sb *strings.Builder, depth int) {
	indent := strings.Repeat("\t", depth)
	fmt.Fprintf(sb, "%sTABLE %s\n", indent, t.Name)
	for _, c := range t.Columns {
		if c.Type.IsVariableLength() {
			fmt.Fprintf(sb, "%s\t%s %s(%d)\n", indent, c.Name, c.Type, c.MaxLength)
		} else {
			fmt.Fprintf(sb, "%s\t%s %s\n", indent, c.Name, c.Type)
		}
	}
	for _, st := range t.SubTables {
		st.writeTo(sb, depth+1)
	}
}

// Digest fingerprints the declaration so a stored layout can be checked against the current one
func (t *Table) Digest() uint64 {
	return xxhash.Sum64String(t.String())
}
