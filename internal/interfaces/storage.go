package interfaces

import (
	"context"

	"github.com/ternarybob/capsa/internal/models"
)

// ItemStorage - record store for ingested items
type ItemStorage interface {
	// Save persists an item (upsert by id)
	Save(ctx context.Context, item *models.Item) error

	// Get returns the item with the given id, or models.ErrNotFound
	Get(ctx context.Context, id string) (*models.Item, error)

	// List returns items newest first. An empty kind means no filter;
	// limit <= 0 means no limit.
	List(ctx context.Context, kind models.SourceKind, limit int) ([]*models.Item, error)

	// Delete removes the item with the given id, or models.ErrNotFound
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored items
	Count(ctx context.Context) (int, error)
}

// StorageManager owns the database connection and hands out typed storages
type StorageManager interface {
	ItemStorage() ItemStorage
	Close() error
}
