package config

import (
	"strconv"
	"strings"
	"sync"

	"encoding/json"

	"path"

	"github.com/go-ini/ini"
	"github.com/pkg/errors"
	"github.com/xiaonanln/gwdatatype/engine/common"
	"github.com/xiaonanln/gwdatatype/engine/gwlog"
)

const (
	_DEFAULT_CONFIG_FILE       = "gwdatatype.ini"
	_DEFAULT_LOG_LEVEL         = "info"
	_DEFAULT_STORAGE_TYPE      = "filesystem"
	_DEFAULT_STORAGE_DIRECTORY = "_entity_storage"
	_DEFAULT_STORAGE_DB        = "gwdatatype"
	_DEFAULT_SQL_DRIVER        = "mysql"
	_DEFAULT_TYPE_NAME         = "TestDataType"
)

// Storage types
const (
	STORAGE_FILESYSTEM    = "filesystem"
	STORAGE_REDIS         = "redis"
	STORAGE_REDIS_CLUSTER = "redis_cluster"
	STORAGE_MONGODB       = "mongodb"
	STORAGE_MYSQL         = "mysql"
	STORAGE_PEBBLE        = "pebble"
)

var (
	configFilePath = _DEFAULT_CONFIG_FILE
	dataTypeConfig *GwDataTypeConfig
	configLock     sync.Mutex
)

// LogConfig defines fields of the [log] section
type LogConfig struct {
	LogFile   string
	LogStderr bool
	LogLevel  string
}

// StorageConfig defines fields of storage config
type StorageConfig struct {
	Type       string // Type of storage (filesystem, redis, redis_cluster, mongodb, mysql, pebble)
	Directory  string // Directory of file based storage (filesystem, pebble)
	Url        string // Connection URL (mongodb, redis, mysql)
	DB         string // Database name (mongodb, redis)
	Driver     string // SQL Driver name (mysql)
	StartNodes common.StringSet
	TypeName   string // Name of the stored data type, used as table / collection / key prefix
}

// GwDataTypeConfig defines the total config file structure
type GwDataTypeConfig struct {
	Log     LogConfig
	Storage StorageConfig
}

// SetConfigFile sets the config file path (gwdatatype.ini by default)
func SetConfigFile(f string) {
	configLock.Lock()
	configFilePath = f
	dataTypeConfig = nil
	configLock.Unlock()
}

// GetConfigDir returns the directory of the config file
func GetConfigDir() string {
	dir, _ := path.Split(configFilePath)
	return dir
}

// GetConfigFilePath returns the config file path
func GetConfigFilePath() string {
	return configFilePath
}

// Get returns the total config, panics if the config file is invalid
func Get() *GwDataTypeConfig {
	configLock.Lock()
	defer configLock.Unlock()
	if dataTypeConfig == nil {
		cfg, err := LoadFile(configFilePath)
		if err != nil {
			gwlog.Panic(err)
		}
		dataTypeConfig = cfg
	}
	return dataTypeConfig
}

// Reload forces to reload the whole config
func Reload() *GwDataTypeConfig {
	configLock.Lock()
	dataTypeConfig = nil
	configLock.Unlock()

	return Get()
}

// GetLog returns the log config
func GetLog() *LogConfig {
	return &Get().Log
}

// GetStorage returns the storage config
func GetStorage() *StorageConfig {
	return &Get().Storage
}

// DumpPretty format config to string in pretty format
func DumpPretty(cfg interface{}) string {
	s, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return err.Error()
	}
	return string(s)
}

// LoadFile reads a config file without touching the global config
func LoadFile(filename string) (*GwDataTypeConfig, error) {
	gwlog.Infof("Using config file: %s", filename)
	iniFile, err := ini.Load(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "load config file %s", filename)
	}
	return readConfig(iniFile)
}

// LoadBytes reads config from ini text
func LoadBytes(data []byte) (*GwDataTypeConfig, error) {
	iniFile, err := ini.Load(data)
	if err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	return readConfig(iniFile)
}

func readConfig(iniFile *ini.File) (*GwDataTypeConfig, error) {
	var config GwDataTypeConfig
	setLogDefaults(&config.Log)
	setStorageDefaults(&config.Storage)

	for _, sec := range iniFile.Sections() {
		secName := strings.ToLower(sec.Name())
		var err error
		if sec.Name() == ini.DefaultSection {
			if len(sec.Keys()) > 0 {
				err = errors.Errorf("keys outside of any section: %s", strings.Join(sec.KeyStrings(), ", "))
			}
		} else if secName == "log" {
			err = readLogConfig(sec, &config.Log)
		} else if secName == "storage" {
			err = readStorageConfig(sec, &config.Storage)
		} else {
			err = errors.Errorf("unknown section: %s", sec.Name())
		}
		if err != nil {
			return nil, err
		}
	}

	if err := validateStorageConfig(&config.Storage); err != nil {
		return nil, err
	}
	return &config, nil
}

func setLogDefaults(config *LogConfig) {
	config.LogFile = ""
	config.LogStderr = true
	config.LogLevel = _DEFAULT_LOG_LEVEL
}

func readLogConfig(sec *ini.Section, config *LogConfig) error {
	for _, key := range sec.Keys() {
		name := strings.ToLower(key.Name())
		if name == "log_file" {
			config.LogFile = key.MustString(config.LogFile)
		} else if name == "log_stderr" {
			config.LogStderr = key.MustBool(config.LogStderr)
		} else if name == "log_level" {
			config.LogLevel = key.MustString(config.LogLevel)
		} else {
			return errors.Errorf("section %s has unknown key: %s", sec.Name(), key.Name())
		}
	}
	return nil
}

func setStorageDefaults(config *StorageConfig) {
	config.Type = _DEFAULT_STORAGE_TYPE
	config.Directory = _DEFAULT_STORAGE_DIRECTORY
	config.DB = _DEFAULT_STORAGE_DB
	config.Url = ""
	config.Driver = _DEFAULT_SQL_DRIVER
	config.StartNodes = common.StringSet{}
	config.TypeName = _DEFAULT_TYPE_NAME
}

func readStorageConfig(sec *ini.Section, config *StorageConfig) error {
	dbSet := false
	for _, key := range sec.Keys() {
		name := strings.ToLower(key.Name())
		if name == "type" {
			config.Type = strings.ToLower(key.MustString(config.Type))
		} else if name == "directory" {
			config.Directory = key.MustString(config.Directory)
		} else if name == "url" {
			config.Url = key.MustString(config.Url)
		} else if name == "db" {
			config.DB = key.MustString(config.DB)
			dbSet = true
		} else if name == "driver" {
			config.Driver = key.MustString(config.Driver)
		} else if strings.HasPrefix(name, "start_nodes_") {
			config.StartNodes.Add(key.MustString(""))
		} else if name == "type_name" {
			config.TypeName = key.MustString(config.TypeName)
		} else {
			return errors.Errorf("section %s has unknown key: %s", sec.Name(), key.Name())
		}
	}
	if config.Type == STORAGE_REDIS && !dbSet {
		config.DB = "0"
	}
	return nil
}

func validateStorageConfig(config *StorageConfig) error {
	if config.TypeName == "" {
		return errors.Errorf("type_name must not be empty")
	}

	switch config.Type {
	case STORAGE_FILESYSTEM, STORAGE_PEBBLE:
		if config.Directory == "" {
			return errors.Errorf("%s storage directory is not set", config.Type)
		}
	case STORAGE_MONGODB:
		if config.Url == "" || config.DB == "" {
			return errors.Errorf("invalid %s storage config: %s", config.Type, DumpPretty(config))
		}
	case STORAGE_REDIS:
		if config.Url == "" {
			return errors.Errorf("redis host is not set")
		}
		if _, err := strconv.Atoi(config.DB); err != nil {
			return errors.Wrap(err, "redis db must be integer")
		}
	case STORAGE_REDIS_CLUSTER:
		if len(config.StartNodes) == 0 {
			return errors.Errorf("must have at least 1 start_nodes for [storage].redis_cluster")
		}
		for s := range config.StartNodes {
			if s == "" {
				return errors.Errorf("start_nodes must not be empty")
			}
		}
	case STORAGE_MYSQL:
		if config.Driver == "" {
			return errors.Errorf("sql driver is not set")
		}
		if config.Url == "" {
			return errors.Errorf("db url is not set")
		}
	default:
		return errors.Errorf("unknown storage type: %s", config.Type)
	}
	return nil
}
