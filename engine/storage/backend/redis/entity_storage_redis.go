package entitystorageredis

import (
	"io"
	"strings"

	"github.com/garyburd/redigo/redis"
	"github.com/pkg/errors"
	"github.com/xiaonanln/gwdatatype/engine/common"
	"github.com/xiaonanln/gwdatatype/engine/datatype"
	"github.com/xiaonanln/gwdatatype/engine/storage/storage_common"
)

const _SCAN_COUNT = 10000

type redisEntityStorage struct {
	c redis.Conn
}

// OpenRedis opens redis as entity storage. Values are stored as stream encoded bytes.
func OpenRedis(url string, dbindex int) (storagecommon.EntityStorage, error) {
	var c redis.Conn
	var err error
	if strings.HasPrefix(url, "redis://") {
		c, err = redis.DialURL(url)
	} else {
		c, err = redis.Dial("tcp", url)
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis dail failed")
	}

	if _, err := c.Do("SELECT", dbindex); err != nil {
		c.Close()
		return nil, errors.Wrap(err, "redis select db failed")
	}

	es := &redisEntityStorage{
		c: c,
	}

	return es, nil
}

func (es *redisEntityStorage) List(typeName string) ([]common.EntityID, error) {
	prefix := storagecommon.EntityKeyPrefix(typeName)
	keyMatch := prefix + "*"
	var eids []common.EntityID
	cursor := "0"
	for {
		r, err := redis.Values(es.c.Do("SCAN", cursor, "MATCH", keyMatch, "COUNT", _SCAN_COUNT))
		if err != nil {
			return nil, err
		}
		cursor, err = redis.String(r[0], nil)
		if err != nil {
			return nil, err
		}
		keys, err := redis.Strings(r[1], nil)
		if err != nil {
			return nil, err
		}

		for _, key := range keys {
			eids = append(eids, common.EntityID(key[len(prefix):]))
		}

		if cursor == "0" {
			break
		}
	}
	return eids, nil
}

func (es *redisEntityStorage) Write(typeName string, entityID common.EntityID, data *datatype.StructuredValue) error {
	if err := storagecommon.CheckStorable(data); err != nil {
		return err
	}
	b, err := datatype.EncodeStream(data)
	if err != nil {
		return err
	}

	_, err = es.c.Do("SET", storagecommon.EntityKey(typeName, entityID), b)
	return err
}

func (es *redisEntityStorage) Read(typeName string, entityID common.EntityID) (*datatype.StructuredValue, error) {
	b, err := redis.Bytes(es.c.Do("GET", storagecommon.EntityKey(typeName, entityID)))
	if err == redis.ErrNil {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return datatype.DecodeStream(b)
}

func (es *redisEntityStorage) Exists(typeName string, entityID common.EntityID) (bool, error) {
	return redis.Bool(es.c.Do("EXISTS", storagecommon.EntityKey(typeName, entityID)))
}

func (es *redisEntityStorage) Close() {
	es.c.Close()
}

func (es *redisEntityStorage) IsEOF(err error) bool {
	return err == io.EOF || err == io.ErrUnexpectedEOF || es.c.Err() != nil
}
