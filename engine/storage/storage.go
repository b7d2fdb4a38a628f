// Package storage saves and loads StructuredValues on a background goroutine.
//
// Requests are queued and served in order by one storage routine; callbacks are
// posted back through the post package and run by post.Tick.
package storage

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/xiaonanln/go-xnsyncutil/xnsyncutil"
	"github.com/xiaonanln/gwdatatype/engine/common"
	"github.com/xiaonanln/gwdatatype/engine/config"
	"github.com/xiaonanln/gwdatatype/engine/consts"
	"github.com/xiaonanln/gwdatatype/engine/datatype"
	"github.com/xiaonanln/gwdatatype/engine/gwlog"
	"github.com/xiaonanln/gwdatatype/engine/opmon"
	"github.com/xiaonanln/gwdatatype/engine/post"
	"github.com/xiaonanln/gwdatatype/engine/storage/backend/filesystem"
	"github.com/xiaonanln/gwdatatype/engine/storage/backend/mongodb"
	"github.com/xiaonanln/gwdatatype/engine/storage/backend/mysql"
	"github.com/xiaonanln/gwdatatype/engine/storage/backend/pebble"
	"github.com/xiaonanln/gwdatatype/engine/storage/backend/redis"
	"github.com/xiaonanln/gwdatatype/engine/storage/backend/redis_cluster"
	"github.com/xiaonanln/gwdatatype/engine/storage/storage_common"
)

const _SAVE_MAX_RETRY = 3

var (
	storageConfig            *config.StorageConfig
	storageEngine            storagecommon.EntityStorage
	operationQueue           *xnsyncutil.SyncQueue
	storageRoutineTerminated *xnsyncutil.OneTimeCond
)

type saveRequest struct {
	TypeName string
	EntityID common.EntityID
	Data     *datatype.StructuredValue
	Callback SaveCallbackFunc
}

type loadRequest struct {
	TypeName string
	EntityID common.EntityID
	Callback LoadCallbackFunc
}

type existsRequest struct {
	TypeName string
	EntityID common.EntityID
	Callback ExistsCallbackFunc
}

type listEntityIDsRequest struct {
	TypeName string
	Callback ListCallbackFunc
}

// SaveCallbackFunc is the callback type of storage Save
type SaveCallbackFunc func(err error)

// LoadCallbackFunc is the callback type of storage Load, data is nil if the entity is not stored
type LoadCallbackFunc func(data *datatype.StructuredValue, err error)

// ExistsCallbackFunc is the callback type of storage Exists
type ExistsCallbackFunc func(exists bool, err error)

// ListCallbackFunc is the callback type of storage List
type ListCallbackFunc func([]common.EntityID, error)

// Open opens the storage backend the config names
func Open(cfg *config.StorageConfig) (storagecommon.EntityStorage, error) {
	switch cfg.Type {
	case config.STORAGE_FILESYSTEM:
		return entitystoragefilesystem.OpenDirectory(cfg.Directory)
	case config.STORAGE_MONGODB:
		return entitystoragemongodb.OpenMongoDB(cfg.Url, cfg.DB)
	case config.STORAGE_REDIS:
		dbindex, err := strconv.Atoi(cfg.DB)
		if err != nil {
			return nil, errors.Wrap(err, "redis db must be integer")
		}
		return entitystorageredis.OpenRedis(cfg.Url, dbindex)
	case config.STORAGE_REDIS_CLUSTER:
		return entitystoragerediscluster.OpenRedisCluster(cfg.StartNodes.ToList())
	case config.STORAGE_MYSQL:
		return entitystoragemysql.OpenMySQL(cfg.Driver, cfg.Url)
	case config.STORAGE_PEBBLE:
		return entitystoragepebble.OpenPebble(cfg.Directory)
	}
	return nil, errors.Errorf("unknown storage type: %s", cfg.Type)
}

// Save saves entity data to storage
func Save(typeName string, entityID common.EntityID, data *datatype.StructuredValue, callback SaveCallbackFunc) {
	operationQueue.Push(saveRequest{
		TypeName: typeName,
		EntityID: entityID,
		Data:     data,
		Callback: callback,
	})
	checkOperationQueueLen()
}

// Load loads entity data from storage
func Load(typeName string, entityID common.EntityID, callback LoadCallbackFunc) {
	operationQueue.Push(loadRequest{
		TypeName: typeName,
		EntityID: entityID,
		Callback: callback,
	})
	checkOperationQueueLen()
}

// Exists checks if entity of specified ID exists in storage
func Exists(typeName string, entityID common.EntityID, callback ExistsCallbackFunc) {
	operationQueue.Push(existsRequest{
		TypeName: typeName,
		EntityID: entityID,
		Callback: callback,
	})
	checkOperationQueueLen()
}

// ListEntityIDs returns all entity IDs in storage
//
// Return values can be large for common entity types
func ListEntityIDs(typeName string, callback ListCallbackFunc) {
	operationQueue.Push(listEntityIDsRequest{
		TypeName: typeName,
		Callback: callback,
	})
	checkOperationQueueLen()
}

var recentWarnedQueueLen = 0

func checkOperationQueueLen() {
	qlen := operationQueue.Len()
	if qlen > consts.STORAGE_QUEUE_WARN_STEP && qlen%consts.STORAGE_QUEUE_WARN_STEP == 0 && recentWarnedQueueLen != qlen {
		gwlog.Warnf("Storage operation queue length = %d", qlen)
		recentWarnedQueueLen = qlen
	}
}

// Shutdown serves all queued requests, then closes the storage
func Shutdown() {
	operationQueue.Close()
	storageRoutineTerminated.Wait()
}

// Initialize opens the configured storage and starts the storage routine.
// A storage that reports a lost connection is reopened from cfg.
func Initialize(cfg *config.StorageConfig) error {
	storageConfig = cfg
	storageEngine = nil
	if err := assureStorageEngineReady(); err != nil {
		return errors.Wrap(err, "storage engine is not ready")
	}
	start()
	return nil
}

// InitializeWithStorage starts the storage routine on an opened storage, which is never reopened
func InitializeWithStorage(es storagecommon.EntityStorage) {
	storageConfig = nil
	storageEngine = es
	start()
}

func start() {
	operationQueue = xnsyncutil.NewSyncQueue()
	storageRoutineTerminated = xnsyncutil.NewOneTimeCond()
	go storageRoutine()
}

func assureStorageEngineReady() (err error) {
	if storageEngine != nil {
		return
	}
	if storageConfig == nil {
		return errors.Errorf("storage is closed and can not be reopened")
	}

	storageEngine, err = Open(storageConfig)
	return
}

func closeOnEOF(err error) {
	if err != nil && storageEngine != nil && storageEngine.IsEOF(err) {
		storageEngine.Close()
		storageEngine = nil
	}
}

func storageRoutine() {
	defer func() {
		err := recover()
		if err != nil {
			gwlog.TraceError("storage routine paniced: %s, restarting ...", err)
			go storageRoutine() // restart the storage routine
		} else {
			// normal quit
			if storageEngine != nil {
				storageEngine.Close()
				storageEngine = nil
			}
			storageRoutineTerminated.Signal()
		}
	}()

	for {
		op := operationQueue.Pop()
		if op == nil { // entity storage closed
			break
		}

		for {
			err := assureStorageEngineReady()
			if err == nil {
				break
			}
			gwlog.Errorf("Storage engine is not ready: %s", err)
			if storageConfig == nil {
				break
			}
			time.Sleep(time.Second)
		}

		switch req := op.(type) {
		case saveRequest:
			handleSave(req)
		case loadRequest:
			handleLoad(req)
		case existsRequest:
			handleExists(req)
		case listEntityIDsRequest:
			handleList(req)
		default:
			gwlog.Panicf("storage: unknown operation: %v", op)
		}
	}
}

func notReady() error {
	return errors.Errorf("storage engine is not ready")
}

func handleSave(saveReq saveRequest) {
	monop := opmon.StartOperation("storage.save")
	var err error
	for try := 0; try < _SAVE_MAX_RETRY; try++ {
		if consts.DEBUG_SAVE_LOAD {
			gwlog.Debugf("storage: SAVING %s %s ...", saveReq.TypeName, saveReq.EntityID)
		}
		if err = assureStorageEngineReady(); err != nil {
			time.Sleep(time.Second)
			continue
		}

		err = storageEngine.Write(saveReq.TypeName, saveReq.EntityID, saveReq.Data)
		if err == nil || !storageEngine.IsEOF(err) {
			break
		}
		// connection lost: reopen and retry
		gwlog.Errorf("storage: save %s %s failed: %s, retrying ...", saveReq.TypeName, saveReq.EntityID, err)
		closeOnEOF(err)
	}
	if err != nil {
		gwlog.Errorf("storage: save %s %s failed: %s", saveReq.TypeName, saveReq.EntityID, err)
	}
	monop.Finish(time.Millisecond * 100)
	if saveReq.Callback != nil {
		post.Post(func() {
			saveReq.Callback(err)
		})
	}
}

func handleLoad(loadReq loadRequest) {
	if consts.DEBUG_SAVE_LOAD {
		gwlog.Debugf("storage: LOADING %s %s ...", loadReq.TypeName, loadReq.EntityID)
	}
	monop := opmon.StartOperation("storage.load")
	var data *datatype.StructuredValue
	var err error
	if storageEngine == nil {
		err = notReady()
	} else {
		data, err = storageEngine.Read(loadReq.TypeName, loadReq.EntityID)
	}
	if err != nil {
		gwlog.TraceError("storage: load %s %s failed: %s", loadReq.TypeName, loadReq.EntityID, err)
		data = nil
	}
	monop.Finish(time.Millisecond * 100)
	if loadReq.Callback != nil {
		post.Post(func() {
			loadReq.Callback(data, err)
		})
	}
	closeOnEOF(err)
}

func handleExists(existsReq existsRequest) {
	monop := opmon.StartOperation("storage.exists")
	var exists bool
	var err error
	if storageEngine == nil {
		err = notReady()
	} else {
		exists, err = storageEngine.Exists(existsReq.TypeName, existsReq.EntityID)
	}
	monop.Finish(time.Millisecond * 100)
	if existsReq.Callback != nil {
		post.Post(func() {
			existsReq.Callback(exists, err)
		})
	}
	closeOnEOF(err)
}

func handleList(listReq listEntityIDsRequest) {
	monop := opmon.StartOperation("storage.list")
	var eids []common.EntityID
	var err error
	if storageEngine == nil {
		err = notReady()
	} else {
		eids, err = storageEngine.List(listReq.TypeName)
	}
	if err != nil {
		gwlog.TraceError("ListEntityIDs %s failed: %s", listReq.TypeName, err)
	}
	monop.Finish(time.Millisecond * 1000)
	if listReq.Callback != nil {
		post.Post(func() {
			listReq.Callback(eids, err)
		})
	}
	closeOnEOF(err)
}
