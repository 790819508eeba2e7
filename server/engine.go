package server

import (
	"github.com/emberdb/ember/buffer"
	"github.com/emberdb/ember/file"
	"github.com/emberdb/ember/log"
	"github.com/emberdb/ember/metadata"
	"github.com/emberdb/ember/plan_impl"
	"github.com/emberdb/ember/tx"
	"github.com/emberdb/ember/tx/concurrency"
	"github.com/rs/zerolog"
)

const (
	blockSize  = 400
	bufferSize = 8
	logFile    = "ember.log"
)

// Logger is the structured logger used for engine lifecycle events (startup,
// recovery). It defaults to a no-op logger; callers that want output should
// assign their own zerolog.Logger before calling NewEngine.
var Logger = zerolog.Nop()

type Engine struct {
	fileManager     *file.Manager
	bufferManager   *buffer.Manager
	logManager      *log.Manager
	metadataManager *metadata.Manager
	lockTable       *concurrency.LockTable
	queryPlanner    plan_impl.QueryPlanner
	updatePlanner   plan_impl.UpdatePlanner
	planner         *plan_impl.Planner
}

// NewEngineWithOptions is a constructor that is mostly useful for debugging purposes.
func NewEngineWithOptions(dirName string, blockSize, bufferSize int) (*Engine, error) {
	db := &Engine{}
	var err error

	if db.fileManager, err = file.NewManager(dirName, blockSize); err != nil {
		return nil, err
	}
	if db.logManager, err = log.NewManager(db.fileManager, logFile); err != nil {
		return nil, err
	}
	db.bufferManager = buffer.NewManager(db.fileManager, db.logManager, bufferSize)
	db.lockTable = concurrency.NewLockTable()

	return db, nil
}

// NewEngine creates a new Engine instance. Use this constructor for production code.
func NewEngine(dirName string) (*Engine, error) {
	db, err := NewEngineWithOptions(dirName, blockSize, bufferSize)
	if err != nil {
		return nil, err
	}

	transaction := db.NewTx()
	isNew := db.fileManager.IsNew()

	if isNew {
		Logger.Info().Str("dir", dirName).Msg("creating new database")
	} else {
		Logger.Info().Str("dir", dirName).Msg("recovering existing database")
		if err := transaction.Recover(); err != nil {
			return nil, err
		}
	}

	if db.metadataManager, err = metadata.NewManager(isNew, transaction); err != nil {
		return nil, err
	}

	db.queryPlanner = plan_impl.NewHeuristicQueryPlanner(db.metadataManager)
	db.updatePlanner = plan_impl.NewIndexUpdatePlanner(db.metadataManager)
	db.planner = plan_impl.NewPlanner(db.queryPlanner, db.updatePlanner)

	err = transaction.Commit()
	return db, err
}

func (db *Engine) NewTx() *tx.Transaction {
	return tx.NewTransaction(db.fileManager, db.logManager, db.bufferManager, db.lockTable)
}

func (db *Engine) MetadataManager() *metadata.Manager {
	return db.metadataManager
}

func (db *Engine) Planner() *plan_impl.Planner {
	return db.planner
}

func (db *Engine) FileManager() *file.Manager {
	return db.fileManager
}

func (db *Engine) LogManager() *log.Manager {
	return db.logManager
}

func (db *Engine) BufferManager() *buffer.Manager {
	return db.bufferManager
}
