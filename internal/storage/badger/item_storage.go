package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/capsa/internal/interfaces"
	"github.com/ternarybob/capsa/internal/models"
)

// ItemStorage implements the ItemStorage interface for Badger
type ItemStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

var _ interfaces.ItemStorage = (*ItemStorage)(nil)

// NewItemStorage creates a new ItemStorage instance
func NewItemStorage(db *BadgerDB, logger arbor.ILogger) *ItemStorage {
	return &ItemStorage{
		db:     db,
		logger: logger,
	}
}

// Save persists an item, upserting by id.
func (s *ItemStorage) Save(ctx context.Context, item *models.Item) error {
	if item.ID == "" {
		return fmt.Errorf("item ID is required")
	}

	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	if err := s.db.Store().Upsert(item.ID, item); err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}
	return nil
}

// Get returns the item with the given id.
func (s *ItemStorage) Get(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	if err := s.db.Store().Get(id, &item); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("%w: item %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

// List returns items newest first. An empty kind means no filter; limit <= 0
// means no limit.
func (s *ItemStorage) List(ctx context.Context, kind models.SourceKind, limit int) ([]*models.Item, error) {
	query := badgerhold.Where("ID").Ne("")
	if kind != "" {
		query = query.And("SourceKind").Eq(kind)
	}
	query = query.SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var items []models.Item
	if err := s.db.Store().Find(&items, query); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	result := make([]*models.Item, len(items))
	for i := range items {
		result[i] = &items[i]
	}
	return result, nil
}

// Delete removes the item with the given id.
func (s *ItemStorage) Delete(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.Item{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("%w: item %s", models.ErrNotFound, id)
		}
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// Count returns the number of stored items.
func (s *ItemStorage) Count(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Item{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return int(count), nil
}
