package entitystorageredis

import (
	"testing"

	"github.com/xiaonanln/gwdatatype/engine/storage/storagetest"
)

func TestRedisEntityStorage(t *testing.T) {
	es, err := OpenRedis("redis://localhost:6379", 0)
	if err != nil {
		t.Skipf("redis is not available: %s", err)
	}
	defer es.Close()
	storagetest.TestEntityStorage(t, es, "TestDataType")
	storagetest.TestEncodingErrorNotStored(t, es, "TestDataType")
}
