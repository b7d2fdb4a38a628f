package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/xiaonanln/gwdatatype/engine/common"
	"github.com/xiaonanln/gwdatatype/engine/config"
	"github.com/xiaonanln/gwdatatype/engine/datatype"
	"github.com/xiaonanln/gwdatatype/engine/gwlog"
	"github.com/xiaonanln/gwdatatype/engine/opmon"
	"github.com/xiaonanln/gwdatatype/engine/post"
	"github.com/xiaonanln/gwdatatype/engine/section"
	"github.com/xiaonanln/gwdatatype/engine/storage"
)

// storageTypeName returns the configured type name, or the default one when no config file is usable
func storageTypeName() string {
	if args.configFile == "" {
		if _, err := os.Stat(config.GetConfigFilePath()); err != nil {
			return datatype.NewStructuredType("TestDataType").Name()
		}
	}
	return config.GetStorage().TypeName
}

func setupLogging(cfg *config.LogConfig) {
	if cfg.LogFile != "" {
		gwlog.SetOutputFile(cfg.LogFile, cfg.LogStderr)
	}
	if !args.verbose {
		gwlog.SetLevel(gwlog.StringToLevel(cfg.LogLevel))
	}
}

// withStorage runs f with the configured storage routine started, and stops it afterwards
func withStorage(f func(cfg *config.StorageConfig) error) error {
	setupLogging(config.GetLog())
	cfg := config.GetStorage()
	if err := storage.Initialize(cfg); err != nil {
		return err
	}
	err := f(cfg)
	storage.Shutdown()
	post.Tick()
	if args.verbose {
		opmon.Dump(os.Stderr)
	}
	gwlog.Sync()
	return err
}

// wait runs posted callbacks until done is closed
func wait(done chan struct{}) {
	for {
		post.Tick()
		select {
		case <-done:
			post.Tick()
			return
		case <-time.After(time.Millisecond * 10):
		}
	}
}

func save(out io.Writer, id string, s string) error {
	b, err := decodeHex(s)
	if err != nil {
		return err
	}
	value, err := datatype.DecodeStream(b)
	if err != nil {
		return err
	}
	var entityID common.EntityID
	if id == "new" {
		entityID = common.GenEntityID()
	} else if entityID, err = common.ParseEntityID(id); err != nil {
		return err
	}

	return withStorage(func(cfg *config.StorageConfig) error {
		done := make(chan struct{})
		var saveErr error
		storage.Save(cfg.TypeName, entityID, value, func(err error) {
			saveErr = err
			close(done)
		})
		wait(done)
		if saveErr == nil {
			fmt.Fprintln(out, entityID)
		}
		return saveErr
	})
}

func load(out io.Writer, id string, format section.Format) error {
	entityID, err := common.ParseEntityID(id)
	if err != nil {
		return err
	}

	return withStorage(func(cfg *config.StorageConfig) error {
		done := make(chan struct{})
		var value *datatype.StructuredValue
		var loadErr error
		storage.Load(cfg.TypeName, entityID, func(data *datatype.StructuredValue, err error) {
			value, loadErr = data, err
			close(done)
		})
		wait(done)
		if loadErr != nil {
			return loadErr
		}
		if value == nil {
			return errors.Errorf("%s %s not found", cfg.TypeName, entityID)
		}
		node := section.NewMapSection(_DOCUMENT_NAME)
		if err := datatype.EncodeSection(value, node); err != nil {
			return err
		}
		return writeDocument(out, node, format)
	})
}

func list(out io.Writer) error {
	return withStorage(func(cfg *config.StorageConfig) error {
		done := make(chan struct{})
		var ids []common.EntityID
		var listErr error
		storage.ListEntityIDs(cfg.TypeName, func(eids []common.EntityID, err error) {
			ids, listErr = eids, err
			close(done)
		})
		wait(done)
		for _, id := range ids {
			fmt.Fprintln(out, id)
		}
		return listErr
	})
}
