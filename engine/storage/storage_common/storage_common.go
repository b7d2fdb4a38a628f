package storagecommon

import (
	"github.com/xiaonanln/gwdatatype/engine/common"
	"github.com/xiaonanln/gwdatatype/engine/datatype"
	"github.com/xiaonanln/gwdatatype/engine/schema"
	"github.com/xiaonanln/gwdatatype/engine/section"
)

// EntityStorage defines the interface of entity storage backends
//
// Every backend stores values of one data type per typeName and reads them back
// through the same codecs that wrote them.
type EntityStorage interface {
	List(typeName string) ([]common.EntityID, error)
	Write(typeName string, entityID common.EntityID, data *datatype.StructuredValue) error
	// Read returns nil, nil if the entity is not stored
	Read(typeName string, entityID common.EntityID) (*datatype.StructuredValue, error)
	Exists(typeName string, entityID common.EntityID) (bool, error)
	Close()
	// IsEOF returns if err means the connection is lost and the storage must be reopened
	IsEOF(err error) bool
}

// EntityKey returns the key of an entity in key-value backends
func EntityKey(typeName string, entityID common.EntityID) string {
	return typeName + "$" + string(entityID)
}

// EntityKeyPrefix returns the prefix shared by keys of one type
func EntityKeyPrefix(typeName string) string {
	return typeName + "$"
}

// CheckStorable returns the EncodingError a value fails with in any backend: it must
// encode in the stream layout, and every string must be UTF-8 that fits the column
// the type declares for it. Every backend calls it before writing, so all backends
// accept the same values and read back exactly what they stored.
func CheckStorable(data *datatype.StructuredValue) error {
	if _, err := datatype.EncodeStream(data); err != nil {
		return err
	}
	node := section.NewMapSection("value")
	if err := datatype.EncodeSection(data, node); err != nil {
		return err
	}
	return storedShape.Check(node)
}

var storedShape = func() *schema.Table {
	r := schema.NewRecorder("StructuredValue")
	datatype.BindSchema(r)
	t, err := r.Table()
	if err != nil {
		panic(err)
	}
	return t
}()
