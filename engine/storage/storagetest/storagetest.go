// Package storagetest checks an EntityStorage backend against the storage contract
package storagetest

import (
	"strings"
	"testing"

	"github.com/bmizerany/assert"
	"github.com/xiaonanln/gwdatatype/engine/common"
	"github.com/xiaonanln/gwdatatype/engine/datatype"
	"github.com/xiaonanln/gwdatatype/engine/gwlog"
	"github.com/xiaonanln/gwdatatype/engine/storage/storage_common"
)

// TestEntityStorage writes, reads, overwrites and lists values of typeName through es
func TestEntityStorage(t *testing.T, es storagecommon.EntityStorage, typeName string) {
	entityID := common.GenEntityID()
	gwlog.Infof("TESTING ENTITYID: %s", entityID)

	data, err := es.Read(typeName, entityID)
	assert.Equal(t, nil, err)
	assert.T(t, data == nil, "should be nil")
	exists, err := es.Exists(typeName, entityID)
	assert.Equal(t, nil, err)
	assert.T(t, !exists, "should not exist")

	testData := datatype.NewStructuredValue(-7, "Blah", map[string]string{"happy": "sad", "a": "", "": "empty key"})
	if err := es.Write(typeName, entityID, testData); err != nil {
		t.Fatal(err)
	}

	verifyData, err := es.Read(typeName, entityID)
	if err != nil {
		t.Fatal(err)
	}
	if !testData.Equal(verifyData) {
		t.Errorf("read wrong data: %s", verifyData)
	}
	exists, err = es.Exists(typeName, entityID)
	assert.Equal(t, nil, err)
	assert.T(t, exists, "should exist")

	// overwrite replaces the whole value, including the mapping
	testData = datatype.NewStructuredValue(1, "", map[string]string{"k": "v"})
	if err := es.Write(typeName, entityID, testData); err != nil {
		t.Fatal(err)
	}
	verifyData, err = es.Read(typeName, entityID)
	assert.Equal(t, nil, err)
	assert.T(t, testData.Equal(verifyData), verifyData)

	// strings at the declared width, multi-byte text and control bytes come back exactly
	dict := map[string]string{}
	dict[strings.Repeat("k", 50)] = strings.Repeat("v", 50)
	dict["ключ"] = "значение"
	dict["\x00\t\n"] = "\x7f"
	testData = datatype.NewStructuredValue(-1<<31, strings.Repeat("é", 25), dict)
	if err := es.Write(typeName, entityID, testData); err != nil {
		t.Fatal(err)
	}
	verifyData, err = es.Read(typeName, entityID)
	assert.Equal(t, nil, err)
	assert.T(t, testData.Equal(verifyData), verifyData)

	// nil is stored as the default value
	defaultID := common.GenEntityID()
	assert.Equal(t, nil, es.Write(typeName, defaultID, nil))
	verifyData, err = es.Read(typeName, defaultID)
	assert.Equal(t, nil, err)
	assert.T(t, datatype.DefaultValue().Equal(verifyData), verifyData)

	entityIDs, err := es.List(typeName)
	if err != nil {
		t.Fatal(err)
	}
	found := common.StringSet{}
	for _, id := range entityIDs {
		found.Add(string(id))
	}
	assert.T(t, found.Contains(string(entityID)), "written entity not listed")
	assert.T(t, found.Contains(string(defaultID)), "written entity not listed")

	gwlog.Infof("Found %d %s saved", len(entityIDs), typeName)
}

// TestEncodingErrorNotStored checks values no backend can store fail with an EncodingError
// and leave no record behind, and that a failed overwrite keeps the stored value
func TestEncodingErrorNotStored(t *testing.T, es storagecommon.EntityStorage, typeName string) {
	unstorable := []*datatype.StructuredValue{
		datatype.NewStructuredValue(1, strings.Repeat("s", 200), nil),
		datatype.NewStructuredValue(1, strings.Repeat("s", 51), nil),
		datatype.NewStructuredValue(1, strings.Repeat("s", 127), nil),
		datatype.NewStructuredValue(1, "ok", map[string]string{strings.Repeat("k", 80): "v"}),
		datatype.NewStructuredValue(1, "ok", map[string]string{"k": strings.Repeat("v", 100)}),
		datatype.NewStructuredValue(1, "\xff\xfe", nil),
		datatype.NewStructuredValue(1, "ok", map[string]string{"k": "\x80"}),
		datatype.NewStructuredValue(1, "ok", map[string]string{"\xc3": "v"}),
	}
	for _, v := range unstorable {
		entityID := common.GenEntityID()
		err := es.Write(typeName, entityID, v)
		assert.T(t, datatype.IsEncodingError(err), "must not be stored:", v, err)
		exists, err := es.Exists(typeName, entityID)
		assert.Equal(t, nil, err)
		assert.T(t, !exists, "failed write left a record:", v)
	}

	entityID := common.GenEntityID()
	stored := datatype.NewStructuredValue(2, "kept", map[string]string{"k": "v"})
	if err := es.Write(typeName, entityID, stored); err != nil {
		t.Fatal(err)
	}
	for _, v := range unstorable {
		assert.T(t, es.Write(typeName, entityID, v) != nil, "overwrite must fail:", v)
	}
	verifyData, err := es.Read(typeName, entityID)
	assert.Equal(t, nil, err)
	assert.T(t, stored.Equal(verifyData), verifyData)
}
