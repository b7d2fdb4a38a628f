package entitystoragefilesystem

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bmizerany/assert"
	"github.com/xiaonanln/gwdatatype/engine/common"
	"github.com/xiaonanln/gwdatatype/engine/datatype"
	"github.com/xiaonanln/gwdatatype/engine/storage/storagetest"
)

func TestFileSystemEntityStorage(t *testing.T) {
	es, err := OpenDirectory(filepath.Join(t.TempDir(), "test_entity_storage"))
	if err != nil {
		t.Fatal(err)
	}
	defer es.Close()
	storagetest.TestEntityStorage(t, es, "TestDataType")
	storagetest.TestEncodingErrorNotStored(t, es, "TestDataType")
}

func TestFileSystemDocumentLayout(t *testing.T) {
	dir := t.TempDir()
	es, _ := OpenDirectory(dir)
	entityID := common.GenEntityID()
	assert.Equal(t, nil, es.Write("TestDataType", entityID, datatype.DefaultValue()))

	b, err := os.ReadFile(filepath.Join(dir, getFileName("TestDataType", entityID)))
	assert.Equal(t, nil, err)
	text := string(b)
	assert.T(t, strings.Contains(text, `"intValue": 100`), text)
	assert.T(t, strings.Contains(text, `"stringValue": "Blah"`), text)
	assert.T(t, strings.Contains(text, `"key": "happy"`), text)
}

func TestFileSystemReadHandWritten(t *testing.T) {
	dir := t.TempDir()
	es, _ := OpenDirectory(dir)

	// a document without intValue reads as the default value
	emptyID := common.GenEntityID()
	assert.Equal(t, nil, os.WriteFile(filepath.Join(dir, getFileName("T", emptyID)), []byte("{}"), 0644))
	v, err := es.Read("T", emptyID)
	assert.Equal(t, nil, err)
	assert.T(t, datatype.DefaultValue().Equal(v), v)

	brokenID := common.GenEntityID()
	assert.Equal(t, nil, os.WriteFile(filepath.Join(dir, getFileName("T", brokenID)), []byte(`{"intValue": 1}`), 0644))
	_, err = es.Read("T", brokenID)
	assert.T(t, datatype.IsDecodingError(err), "missing stringValue:", err)

	ids, err := es.List("T")
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(ids))
	ids, _ = es.List("Other")
	assert.Equal(t, 0, len(ids))
}
