package entitystoragerediscluster

import (
	"io"
	"time"

	rediscluster "github.com/chasex/redis-go-cluster"
	"github.com/garyburd/redigo/redis"
	"github.com/pkg/errors"
	"github.com/xiaonanln/gwdatatype/engine/common"
	"github.com/xiaonanln/gwdatatype/engine/datatype"
	"github.com/xiaonanln/gwdatatype/engine/storage/storage_common"
)

type redisClusterEntityStorage struct {
	c *rediscluster.Cluster
}

// OpenRedisCluster opens redis cluster as entity storage.
//
// SCAN does not span cluster nodes, so every type keeps a set of its IDs under idSetKey.
func OpenRedisCluster(startNodes []string) (storagecommon.EntityStorage, error) {
	c, err := rediscluster.NewCluster(&rediscluster.Options{
		StartNodes:   startNodes,
		ConnTimeout:  10 * time.Second, // Connection timeout
		ReadTimeout:  60 * time.Second, // Read timeout
		WriteTimeout: 60 * time.Second, // Write timeout
		KeepAlive:    1,                // Maximum keep alive connecion in each node
		AliveTime:    10 * time.Minute, // Keep alive timeout
	})

	if err != nil {
		return nil, errors.Wrap(err, "connect redis cluster failed")
	}

	es := &redisClusterEntityStorage{
		c: c,
	}

	return es, nil
}

func idSetKey(typeName string) string {
	return storagecommon.EntityKeyPrefix(typeName) + "$ids"
}

func (es *redisClusterEntityStorage) List(typeName string) ([]common.EntityID, error) {
	ids, err := redis.Strings(es.c.Do("SMEMBERS", idSetKey(typeName)))
	if err != nil {
		return nil, err
	}
	eids := make([]common.EntityID, len(ids))
	for i, id := range ids {
		eids[i] = common.EntityID(id)
	}
	return eids, nil
}

func (es *redisClusterEntityStorage) Write(typeName string, entityID common.EntityID, data *datatype.StructuredValue) error {
	if err := storagecommon.CheckStorable(data); err != nil {
		return err
	}
	b, err := datatype.EncodeStream(data)
	if err != nil {
		return err
	}

	if _, err = es.c.Do("SET", storagecommon.EntityKey(typeName, entityID), b); err != nil {
		return err
	}
	_, err = es.c.Do("SADD", idSetKey(typeName), string(entityID))
	return err
}

func (es *redisClusterEntityStorage) Read(typeName string, entityID common.EntityID) (*datatype.StructuredValue, error) {
	b, err := redis.Bytes(es.c.Do("GET", storagecommon.EntityKey(typeName, entityID)))
	if err == redis.ErrNil {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return datatype.DecodeStream(b)
}

func (es *redisClusterEntityStorage) Exists(typeName string, entityID common.EntityID) (bool, error) {
	return redis.Bool(es.c.Do("EXISTS", storagecommon.EntityKey(typeName, entityID)))
}

func (es *redisClusterEntityStorage) Close() {
	es.c.Close()
}

func (es *redisClusterEntityStorage) IsEOF(err error) bool {
	return err == io.EOF || err == io.ErrUnexpectedEOF
}
