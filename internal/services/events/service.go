// Package events provides the in-process pub/sub bus behind the websocket
// event stream. Events are best-effort notifications: publishing never
// blocks the pipeline and a failed handler only logs.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/capsa/internal/common"
	"github.com/ternarybob/capsa/internal/interfaces"
	"github.com/ternarybob/capsa/internal/models"
)

// Service implements EventService with a subscriber map guarded by an
// RWMutex. Handlers run in panic-protected goroutines.
type Service struct {
	subscribers map[string][]interfaces.EventHandler
	mu          sync.RWMutex
	closed      bool
	logger      arbor.ILogger
}

var _ interfaces.EventService = (*Service)(nil)

// NewService creates a new event service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		subscribers: make(map[string][]interfaces.EventHandler),
		logger:      logger,
	}
}

// Subscribe registers a handler for an event type. Nil handlers are ignored.
func (s *Service) Subscribe(eventType string, handler interfaces.EventHandler) {
	if handler == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.subscribers[eventType] = append(s.subscribers[eventType], handler)

	s.logger.Debug().
		Str("event_type", eventType).
		Int("subscriber_count", len(s.subscribers[eventType])).
		Msg("Event handler subscribed")
}

// Publish sends an event to all subscribers asynchronously. The publisher
// never waits for handlers and never observes their errors.
func (s *Service) Publish(ctx context.Context, event models.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return
	}
	handlers := make([]interfaces.EventHandler, len(s.subscribers[event.Type]))
	copy(handlers, s.subscribers[event.Type])
	s.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	s.logger.Debug().
		Str("event_type", event.Type).
		Int("subscriber_count", len(handlers)).
		Msg("Publishing event")

	for _, handler := range handlers {
		h := handler
		common.SafeGo(s.logger, "eventHandler:"+event.Type, func() {
			if err := h(ctx, event); err != nil {
				s.logger.Warn().
					Err(err).
					Str("event_type", event.Type).
					Msg("Event handler failed")
			}
		})
	}
}

// Close drops all subscribers and stops accepting publishes.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.subscribers = make(map[string][]interfaces.EventHandler)
	return nil
}
