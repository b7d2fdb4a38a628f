package schema

import (
	"github.com/pkg/errors"
)

// Recorder is a Binder that records declarations into a Table tree
type Recorder struct {
	root  *Table
	stack []*Table
	err   error
}

// NewRecorder creates a Recorder whose root table is named name
func NewRecorder(name string) *Recorder {
	root := &Table{Name: name}
	return &Recorder{
		root:  root,
		stack: []*Table{root},
	}
}

func (r *Recorder) current() *Table {
	return r.stack[len(r.stack)-1]
}

func (r *Recorder) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Recorder) checkName(t *Table, name string) bool {
	if name == "" {
		r.fail(errors.Errorf("table %s: empty name", t.Name))
		return false
	}
	if t.Column(name) != nil || t.SubTable(name) != nil {
		r.fail(errors.Errorf("table %s: %s declared twice", t.Name, name))
		return false
	}
	return true
}

// BindColumn records a column in the innermost open table
func (r *Recorder) BindColumn(name string, typ ColumnType, maxLength int) {
	t := r.current()
	if !r.checkName(t, name) {
		return
	}
	if typ.IsVariableLength() && maxLength <= 0 {
		r.fail(errors.Errorf("table %s: column %s of type %s needs a positive max length", t.Name, name, typ))
		return
	}
	if !typ.IsVariableLength() {
		maxLength = 0
	}
	t.Columns = append(t.Columns, Column{Name: name, Type: typ, MaxLength: maxLength})
}

// BeginSubTable opens a sub-table in the innermost open table
func (r *Recorder) BeginSubTable(name string) {
	t := r.current()
	st := &Table{Name: name}
	if r.checkName(t, name) {
		t.SubTables = append(t.SubTables, st)
	}
	// push even when rejected so the matching EndSubTable stays balanced
	r.stack = append(r.stack, st)
}

// EndSubTable closes the innermost open sub-table
func (r *Recorder) EndSubTable() {
	if len(r.stack) == 1 {
		r.fail(errors.Errorf("table %s: EndSubTable without BeginSubTable", r.root.Name))
		return
	}
	r.stack = r.stack[:len(r.stack)-1]
}

// Table returns the recorded declaration, or the first declaration error
func (r *Recorder) Table() (*Table, error) {
	if r.err != nil {
		return nil, r.err
	}
	if len(r.stack) != 1 {
		return nil, errors.Errorf("table %s: sub-table %s is not closed", r.root.Name, r.current().Name)
	}
	return r.root, nil
}
