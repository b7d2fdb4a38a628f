package entitystoragemongodb

import (
	"io"

	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"

	"github.com/pkg/errors"
	"github.com/xiaonanln/gwdatatype/engine/common"
	"github.com/xiaonanln/gwdatatype/engine/datatype"
	"github.com/xiaonanln/gwdatatype/engine/gwlog"
	"github.com/xiaonanln/gwdatatype/engine/section"
	"github.com/xiaonanln/gwdatatype/engine/storage/storage_common"
)

const (
	_DEFAULT_DB_NAME = "gwdatatype"
	_SECTION_NAME    = "data"
)

type mongoDBEntityStorge struct {
	db *mgo.Database
}

// OpenMongoDB opens mongodb as entity storage. Values are stored as documents: {_id, data: {intValue, stringValue, dictValue: [...]}}
func OpenMongoDB(url string, dbname string) (storagecommon.EntityStorage, error) {
	gwlog.Debugf("Connecting MongoDB ...")
	session, err := mgo.Dial(url)
	if err != nil {
		return nil, err
	}

	session.SetMode(mgo.Monotonic, true)
	if dbname == "" {
		// if db is not specified, use default
		dbname = _DEFAULT_DB_NAME
	}
	return &mongoDBEntityStorge{
		db: session.DB(dbname),
	}, nil
}

func (es *mongoDBEntityStorge) Write(typeName string, entityID common.EntityID, data *datatype.StructuredValue) error {
	if err := storagecommon.CheckStorable(data); err != nil {
		return err
	}
	node := section.NewMapSection(_SECTION_NAME)
	if err := datatype.EncodeSection(data, node); err != nil {
		return err
	}

	col := es.getCollection(typeName)
	_, err := col.UpsertId(string(entityID), bson.M{
		"data": node.ToMap(),
	})
	return err
}

func (es *mongoDBEntityStorge) Read(typeName string, entityID common.EntityID) (*datatype.StructuredValue, error) {
	col := es.getCollection(typeName)
	q := col.FindId(string(entityID))
	var doc bson.M
	err := q.One(&doc)
	if err == mgo.ErrNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var data map[string]interface{}
	switch m := doc["data"].(type) {
	case bson.M:
		data = convertM2Map(m)
	case map[string]interface{}:
		convertM2MapInMap(m)
		data = m
	case nil:
		data = map[string]interface{}{}
	default:
		return nil, errors.Errorf("%s %s: data is %T, not a document", typeName, entityID, m)
	}
	return datatype.DecodeSection(section.FromMap(_SECTION_NAME, data))
}

func convertM2Map(m bson.M) map[string]interface{} {
	ma := map[string]interface{}(m)
	convertM2MapInMap(ma)
	return ma
}

func convertM2MapInMap(m map[string]interface{}) {
	for k, v := range m {
		switch im := v.(type) {
		case bson.M:
			m[k] = convertM2Map(im)
		case map[string]interface{}:
			convertM2MapInMap(im)
		case []interface{}:
			convertM2MapInList(im)
		}
	}
}

func convertM2MapInList(l []interface{}) {
	for i, v := range l {
		switch im := v.(type) {
		case bson.M:
			l[i] = convertM2Map(im)
		case map[string]interface{}:
			convertM2MapInMap(im)
		case []interface{}:
			convertM2MapInList(im)
		}
	}
}

func (es *mongoDBEntityStorge) getCollection(typeName string) *mgo.Collection {
	return es.db.C(typeName)
}

func (es *mongoDBEntityStorge) List(typeName string) ([]common.EntityID, error) {
	col := es.getCollection(typeName)
	var docs []bson.M
	err := col.Find(nil).Select(bson.M{"_id": 1}).All(&docs)
	if err != nil {
		return nil, err
	}

	entityIDs := make([]common.EntityID, 0, len(docs))
	for _, doc := range docs {
		if id, ok := doc["_id"].(string); ok {
			entityIDs = append(entityIDs, common.EntityID(id))
		}
	}
	return entityIDs, nil
}

func (es *mongoDBEntityStorge) Exists(typeName string, entityID common.EntityID) (bool, error) {
	n, err := es.getCollection(typeName).FindId(string(entityID)).Count()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (es *mongoDBEntityStorge) Close() {
	es.db.Session.Close()
}

func (es *mongoDBEntityStorge) IsEOF(err error) bool {
	return err == io.EOF || err == io.ErrUnexpectedEOF
}
