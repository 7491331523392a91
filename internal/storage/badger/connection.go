// Package badger implements the record store on BadgerDB via badgerhold.
package badger

import (
	"fmt"
	"os"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/capsa/internal/common"
)

// BadgerDB manages the Badger database connection
type BadgerDB struct {
	store  *badgerhold.Store
	logger arbor.ILogger
	config *common.StorageConfig
}

// NewBadgerDB creates a new Badger database connection
func NewBadgerDB(logger arbor.ILogger, config *common.StorageConfig) (*BadgerDB, error) {
	// If reset_on_startup is enabled, delete the existing database
	if config.ResetOnStartup {
		if _, err := os.Stat(config.Dir); err == nil {
			logger.Debug().Str("dir", config.Dir).Msg("Deleting existing database (reset_on_startup=true)")
			if err := os.RemoveAll(config.Dir); err != nil {
				logger.Warn().Err(err).Str("dir", config.Dir).Msg("Failed to delete database directory")
			}
		}
	}

	if err := os.MkdirAll(config.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	logger.Debug().Str("dir", config.Dir).Msg("Opening Badger database connection")

	options := badgerhold.DefaultOptions
	options.Dir = config.Dir
	options.ValueDir = config.Dir
	options.Logger = nil // Disable default badger logger to use arbor

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Debug().Str("dir", config.Dir).Msg("Badger database initialized")

	return &BadgerDB{
		store:  store,
		logger: logger,
		config: config,
	}, nil
}

// Store returns the underlying badgerhold store
func (b *BadgerDB) Store() *badgerhold.Store {
	return b.store
}

// RunValueLogGC reclaims space in the value log. Badger leaves GC to the
// caller; each pass rewrites at most one log file, so loop until badger
// reports nothing left to rewrite. Returns the number of rewritten files.
func (b *BadgerDB) RunValueLogGC() int {
	rewritten := 0
	for {
		err := b.store.Badger().RunValueLogGC(0.5)
		if err != nil {
			if err != badgerdb.ErrNoRewrite {
				b.logger.Warn().Err(err).Msg("Value log GC pass failed")
			}
			return rewritten
		}
		rewritten++
	}
}

// Close closes the database connection
func (b *BadgerDB) Close() error {
	if b.store != nil {
		return b.store.Close()
	}
	return nil
}
