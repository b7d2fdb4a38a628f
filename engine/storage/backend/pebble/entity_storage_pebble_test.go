package entitystoragepebble

import (
	"testing"

	"github.com/bmizerany/assert"
	"github.com/xiaonanln/gwdatatype/engine/common"
	"github.com/xiaonanln/gwdatatype/engine/datatype"
	"github.com/xiaonanln/gwdatatype/engine/storage/storagetest"
)

func TestPebbleEntityStorage(t *testing.T) {
	es, err := OpenPebble(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer es.Close()
	storagetest.TestEntityStorage(t, es, "TestDataType")
	storagetest.TestEncodingErrorNotStored(t, es, "TestDataType")
}

func TestPebbleListByType(t *testing.T) {
	es, err := OpenPebble(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer es.Close()

	a, b := common.GenEntityID(), common.GenEntityID()
	assert.Equal(t, nil, es.Write("A", a, datatype.DefaultValue()))
	assert.Equal(t, nil, es.Write("AB", b, datatype.DefaultValue()))

	ids, err := es.List("A")
	assert.Equal(t, nil, err)
	assert.Equal(t, []common.EntityID{a}, ids)
	ids, _ = es.List("AB")
	assert.Equal(t, []common.EntityID{b}, ids)
}

func TestPebbleReopen(t *testing.T) {
	dir := t.TempDir()
	es, err := OpenPebble(dir)
	if err != nil {
		t.Fatal(err)
	}
	id := common.GenEntityID()
	v := datatype.NewStructuredValue(3, "three", map[string]string{"x": "y"})
	assert.Equal(t, nil, es.Write("T", id, v))
	es.Close()

	es, err = OpenPebble(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer es.Close()
	read, err := es.Read("T", id)
	assert.Equal(t, nil, err)
	assert.T(t, v.Equal(read), read)
}

func TestPrefixUpperBound(t *testing.T) {
	assert.Equal(t, []byte("A%"), prefixUpperBound([]byte("A$")))
	assert.Equal(t, []byte{0x02}, prefixUpperBound([]byte{0x01, 0xFF}))
	assert.T(t, prefixUpperBound([]byte{0xFF}) == nil, "no bound")
}
