package entitystoragemongodb

import (
	"testing"
	"time"

	"github.com/bmizerany/assert"
	"github.com/xiaonanln/gwdatatype/engine/storage/storagetest"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

func TestMongoDBEntityStorage(t *testing.T) {
	session, err := mgo.DialWithTimeout("mongodb://localhost:27017/gwdatatype", time.Second)
	if err != nil {
		t.Skipf("mongodb is not available: %s", err)
	}
	session.Close()

	es, err := OpenMongoDB("mongodb://localhost:27017/gwdatatype", "gwdatatype")
	if err != nil {
		t.Fatal(err)
	}
	defer es.Close()
	storagetest.TestEntityStorage(t, es, "TestDataType")
	storagetest.TestEncodingErrorNotStored(t, es, "TestDataType")
}

func TestConvertM2Map(t *testing.T) {
	m := convertM2Map(bson.M{
		"intValue": 1,
		"dictValue": []interface{}{
			bson.M{"key": "k", "value": "v"},
		},
		"nested": bson.M{"inner": bson.M{"x": 1}},
	})
	item, ok := m["dictValue"].([]interface{})[0].(map[string]interface{})
	assert.T(t, ok, "list items converted")
	assert.Equal(t, "k", item["key"])
	_, ok = m["nested"].(map[string]interface{})["inner"].(map[string]interface{})
	assert.T(t, ok, "nested documents converted")
}
