package interfaces

import (
	"context"

	"github.com/ternarybob/capsa/internal/models"
)

// EventHandler is a function that handles published events
type EventHandler func(ctx context.Context, event models.Event) error

// EventService manages the in-process pub/sub event bus. Publishing is
// fire-and-forget: handlers run asynchronously and must never block the
// publisher.
type EventService interface {
	// Subscribe registers a handler for an event type
	Subscribe(eventType string, handler EventHandler)

	// Publish sends an event to all subscribers asynchronously
	Publish(ctx context.Context, event models.Event)

	// Close shuts down the event service
	Close() error
}
