package entitystoragepebble

import (
	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"
	"github.com/xiaonanln/gwdatatype/engine/common"
	"github.com/xiaonanln/gwdatatype/engine/datatype"
	"github.com/xiaonanln/gwdatatype/engine/gwlog"
	"github.com/xiaonanln/gwdatatype/engine/storage/storage_common"
)

type pebbleEntityStorage struct {
	db *pebble.DB
}

// OpenPebble opens an embedded pebble database in directory as entity storage.
// Values are stored as stream encoded bytes under "<type>$<id>" keys.
func OpenPebble(directory string) (storagecommon.EntityStorage, error) {
	db, err := pebble.Open(directory, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open pebble %s", directory)
	}
	return &pebbleEntityStorage{db: db}, nil
}

// prefixUpperBound returns the smallest key greater than every key with the prefix
func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil // no upper bound
}

func (es *pebbleEntityStorage) List(typeName string) ([]common.EntityID, error) {
	prefix := []byte(storagecommon.EntityKeyPrefix(typeName))
	iter, err := es.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return nil, err
	}

	var eids []common.EntityID
	for iter.First(); iter.Valid(); iter.Next() {
		eids = append(eids, common.EntityID(iter.Key()[len(prefix):]))
	}
	if err := iter.Error(); err != nil {
		iter.Close()
		return nil, err
	}
	return eids, iter.Close()
}

func (es *pebbleEntityStorage) Write(typeName string, entityID common.EntityID, data *datatype.StructuredValue) error {
	if err := storagecommon.CheckStorable(data); err != nil {
		return err
	}
	b, err := datatype.EncodeStream(data)
	if err != nil {
		return err
	}
	return es.db.Set([]byte(storagecommon.EntityKey(typeName, entityID)), b, pebble.Sync)
}

func (es *pebbleEntityStorage) get(typeName string, entityID common.EntityID) ([]byte, error) {
	val, closer, err := es.db.Get([]byte(storagecommon.EntityKey(typeName, entityID)))
	if err == pebble.ErrNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	// val is only valid until closer is closed
	b := append([]byte{}, val...)
	closer.Close()
	return b, nil
}

func (es *pebbleEntityStorage) Read(typeName string, entityID common.EntityID) (*datatype.StructuredValue, error) {
	b, err := es.get(typeName, entityID)
	if err != nil || b == nil {
		return nil, err
	}
	return datatype.DecodeStream(b)
}

func (es *pebbleEntityStorage) Exists(typeName string, entityID common.EntityID) (bool, error) {
	b, err := es.get(typeName, entityID)
	return b != nil, err
}

func (es *pebbleEntityStorage) Close() {
	if err := es.db.Close(); err != nil {
		gwlog.Errorf("close pebble failed: %s", err)
	}
}

func (es *pebbleEntityStorage) IsEOF(err error) bool {
	return err == pebble.ErrClosed
}
