package entitystoragefilesystem

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/xiaonanln/gwdatatype/engine/common"
	"github.com/xiaonanln/gwdatatype/engine/consts"
	"github.com/xiaonanln/gwdatatype/engine/datatype"
	"github.com/xiaonanln/gwdatatype/engine/gwlog"
	"github.com/xiaonanln/gwdatatype/engine/section"
	. "github.com/xiaonanln/gwdatatype/engine/storage/storage_common"
)

const _SECTION_NAME = "entity"

// FileSystemEntityStorage stores every value as one JSON document file
type FileSystemEntityStorage struct {
	directory string
}

func getFileName(name string, entityID common.EntityID) string {
	return EntityKeyPrefix(name) + base64.URLEncoding.EncodeToString([]byte(entityID))
}

func (es *FileSystemEntityStorage) getFilePath(typeName string, entityID common.EntityID) string {
	return filepath.Join(es.directory, getFileName(typeName, entityID))
}

// Write stores data as a JSON document. The file is replaced atomically.
func (es *FileSystemEntityStorage) Write(typeName string, entityID common.EntityID, data *datatype.StructuredValue) error {
	if err := CheckStorable(data); err != nil {
		return err
	}
	node := section.NewMapSection(_SECTION_NAME)
	if err := datatype.EncodeSection(data, node); err != nil {
		return err
	}
	dataBytes, err := section.Marshal(node, section.JSON)
	if err != nil {
		return err
	}

	saveFile := es.getFilePath(typeName, entityID)
	if consts.DEBUG_SAVE_LOAD {
		gwlog.Debugf("Saving to file %s: %s", saveFile, string(dataBytes))
	}
	tmpFile := saveFile + ".tmp"
	if err := os.WriteFile(tmpFile, dataBytes, 0644); err != nil {
		return err
	}
	return os.Rename(tmpFile, saveFile)
}

// Read loads the JSON document of the entity, nil if the file does not exist
func (es *FileSystemEntityStorage) Read(typeName string, entityID common.EntityID) (*datatype.StructuredValue, error) {
	saveFile := es.getFilePath(typeName, entityID)
	dataBytes, err := os.ReadFile(saveFile)
	if err != nil {
		if os.IsNotExist(err) {
			// file not exist
			return nil, nil
		}
		return nil, err
	}

	node, err := section.Unmarshal(_SECTION_NAME, dataBytes, section.JSON)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", saveFile)
	}
	return datatype.DecodeSection(node)
}

// Exists checks the file of the entity
func (es *FileSystemEntityStorage) Exists(typeName string, entityID common.EntityID) (bool, error) {
	_, err := os.Stat(es.getFilePath(typeName, entityID))
	if err == nil {
		return true, nil
	} else if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// List returns IDs of all files of the type
func (es *FileSystemEntityStorage) List(typeName string) ([]common.EntityID, error) {
	prefix := EntityKeyPrefix(typeName)
	pat := filepath.Join(es.directory, prefix+"*")
	files, err := filepath.Glob(pat)
	if err != nil {
		return nil, err
	}
	res := make([]common.EntityID, 0, len(files))
	prefixLen := len(prefix)
	for _, fpath := range files {
		_, fn := filepath.Split(fpath)
		if !strings.HasPrefix(fn, prefix) || strings.HasSuffix(fn, ".tmp") {
			continue
		}
		idbytes, err := base64.URLEncoding.DecodeString(fn[prefixLen:])
		if err != nil {
			gwlog.TraceError("fail to parse file %s", fpath)
			continue
		}

		res = append(res, common.EntityID(idbytes))
	}
	return res, nil
}

// Close does nothing
func (es *FileSystemEntityStorage) Close() {
	// need to do nothing
}

// IsEOF is always false
func (es *FileSystemEntityStorage) IsEOF(err error) bool {
	return false
}

// OpenDirectory opens a directory as entity storage, creating it if needed
func OpenDirectory(directory string) (EntityStorage, error) {
	if err := os.MkdirAll(directory, 0755); err != nil {
		return nil, err
	}

	return &FileSystemEntityStorage{
		directory: directory,
	}, nil
}
