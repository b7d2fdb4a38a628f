package datatype

import (
	"github.com/xiaonanln/gwdatatype/engine/consts"
	"github.com/xiaonanln/gwdatatype/engine/schema"
)

// BindSchema declares the storage shape of StructuredValue to b.
// It is pure declaration and is never part of encoding or decoding.
func BindSchema(b schema.Binder) {
	b.BindColumn(FIELD_INT_VALUE, schema.INT32, 0)
	b.BindColumn(FIELD_STRING_VALUE, schema.STRING, consts.SCHEMA_STRING_MAX_LENGTH)
	b.BeginSubTable(FIELD_DICT_VALUE)
	b.BindColumn(FIELD_KEY, schema.STRING, consts.SCHEMA_STRING_MAX_LENGTH)
	b.BindColumn(FIELD_VALUE, schema.STRING, consts.SCHEMA_STRING_MAX_LENGTH)
	b.EndSubTable()
}
