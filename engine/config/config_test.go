package config

import (
	"testing"

	"github.com/bmizerany/assert"
	"github.com/xiaonanln/gwdatatype/engine/gwlog"
)

func init() {
	SetConfigFile("../../gwdatatype.ini.sample")
}

func TestLoad(t *testing.T) {
	config := Get()
	gwlog.Debugf("gwdatatype config: \n%s", DumpPretty(config))
	assert.Equal(t, "gwdatatype.log", config.Log.LogFile)
	assert.Equal(t, "info", config.Log.LogLevel)
	assert.Equal(t, STORAGE_FILESYSTEM, config.Storage.Type)
	assert.Equal(t, "_entity_storage", config.Storage.Directory)
	assert.Equal(t, "TestDataType", config.Storage.TypeName)
}

func TestReload(t *testing.T) {
	first := Get()
	config := Reload()
	assert.T(t, first != config, "reload should read the file again")
	assert.Equal(t, first.Storage.Type, config.Storage.Type)
}

func TestGetStorage(t *testing.T) {
	cfg := GetStorage()
	assert.T(t, cfg != nil, "storage config not found")
	assert.T(t, GetLog() != nil, "log config not found")
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadBytes([]byte(""))
	assert.Equal(t, nil, err)
	assert.Equal(t, STORAGE_FILESYSTEM, cfg.Storage.Type)
	assert.Equal(t, _DEFAULT_STORAGE_DIRECTORY, cfg.Storage.Directory)
	assert.Equal(t, _DEFAULT_TYPE_NAME, cfg.Storage.TypeName)
	assert.Equal(t, true, cfg.Log.LogStderr)
}

func TestRedisDefaultDB(t *testing.T) {
	cfg, err := LoadBytes([]byte("[storage]\ntype = redis\nurl = redis://127.0.0.1:6379\n"))
	assert.Equal(t, nil, err)
	assert.Equal(t, "0", cfg.Storage.DB)

	_, err = LoadBytes([]byte("[storage]\ntype = redis\nurl = redis://127.0.0.1:6379\ndb = x\n"))
	assert.T(t, err != nil, "redis db must be integer")
}

func TestRedisClusterStartNodes(t *testing.T) {
	cfg, err := LoadBytes([]byte("[storage]\ntype = redis_cluster\nstart_nodes_1 = 127.0.0.1:7000\nstart_nodes_2 = 127.0.0.1:7001\n"))
	assert.Equal(t, nil, err)
	assert.Equal(t, []string{"127.0.0.1:7000", "127.0.0.1:7001"}, cfg.Storage.StartNodes.ToList())

	_, err = LoadBytes([]byte("[storage]\ntype = redis_cluster\n"))
	assert.T(t, err != nil, "redis_cluster without start nodes")
}

func TestInvalidConfig(t *testing.T) {
	for _, text := range []string{
		"[storage]\ntype = cassandra\n",
		"[storage]\nunknown_key = 1\n",
		"[log]\nlog_color = true\n",
		"[game1]\nport = 1\n",
		"[storage]\ntype = mongodb\n",
		"[storage]\ntype = mysql\n",
		"stray = 1\n",
	} {
		_, err := LoadBytes([]byte(text))
		assert.T(t, err != nil, "config should be rejected:", text)
	}
}
