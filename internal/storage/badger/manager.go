package badger

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/capsa/internal/common"
	"github.com/ternarybob/capsa/internal/interfaces"
)

// gcInterval is how often the value log GC sweep runs
const gcInterval = 10 * time.Minute

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db     *BadgerDB
	item   interfaces.ItemStorage
	logger arbor.ILogger
}

var _ interfaces.StorageManager = (*Manager)(nil)

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.StorageConfig) (*Manager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:     db,
		item:   NewItemStorage(db, logger),
		logger: logger,
	}

	logger.Info().Str("dir", config.Dir).Msg("Badger storage manager initialized")

	return manager, nil
}

// ItemStorage returns the Item storage interface
func (m *Manager) ItemStorage() interfaces.ItemStorage {
	return m.item
}

// StartMaintenance runs periodic value log GC until the context is
// cancelled. Call once after startup.
func (m *Manager) StartMaintenance(ctx context.Context) {
	common.SafeGoWithContext(ctx, m.logger, "badgerMaintenance", func() {
		ticker := time.NewTicker(gcInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if rewritten := m.db.RunValueLogGC(); rewritten > 0 {
					m.logger.Debug().Int("rewritten_files", rewritten).Msg("Value log GC completed")
				}
			}
		}
	})
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
