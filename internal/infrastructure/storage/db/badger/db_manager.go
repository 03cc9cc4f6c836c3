package dbbadger

import (
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"
)

// DbManager holds the badger store the wallet metadata is persisted into.
type DbManager struct {
	Store *badgerhold.Store
}

// NewDbManager opens (or creates) the badger store under the given datadir.
// An empty datadir opens an in-memory store, useful for tests.
func NewDbManager(dbDir string, logger badger.Logger) (*DbManager, error) {
	store, err := createDb(dbDir, logger)
	if err != nil {
		return nil, err
	}
	return &DbManager{Store: store}, nil
}

// Close releases the underlying badger resources.
func (d *DbManager) Close() error {
	return d.Store.Close()
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger
	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Dir = filepath.Clean(dbDir)
		opts.ValueDir = opts.Dir
	}

	return badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
