// Package scheduler runs the periodic url refresh sweep that keeps stored
// pages from going stale.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/capsa/internal/common"
	"github.com/ternarybob/capsa/internal/interfaces"
	"github.com/ternarybob/capsa/internal/models"
)

// defaultSchedule runs the sweep nightly at 03:00
const defaultSchedule = "0 3 * * *"

// sweepTimeout bounds one whole sweep, not one item
const sweepTimeout = 30 * time.Minute

// Service implements the SchedulerService interface
type Service struct {
	config  *common.SchedulerConfig
	ingest  interfaces.IngestService
	storage interfaces.ItemStorage
	cron    *cron.Cron
	logger  arbor.ILogger

	mu sync.Mutex // one sweep at a time
}

var _ interfaces.SchedulerService = (*Service)(nil)

// NewService creates the refresh scheduler. It does nothing until Start is
// called, and stays idle when the scheduler is disabled in config.
func NewService(config *common.Config, ingest interfaces.IngestService, storage interfaces.ItemStorage, logger arbor.ILogger) *Service {
	return &Service{
		config:  &config.Scheduler,
		ingest:  ingest,
		storage: storage,
		cron:    cron.New(),
		logger:  logger,
	}
}

// Start registers the sweep with the cron runner
func (s *Service) Start() error {
	if !s.config.Enabled {
		s.logger.Debug().Msg("Refresh scheduler disabled")
		return nil
	}

	schedule := s.config.RefreshSchedule
	if schedule == "" {
		schedule = defaultSchedule
	}

	if _, err := s.cron.AddFunc(schedule, s.RunSweep); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}

	s.cron.Start()
	s.logger.Info().
		Str("schedule", schedule).
		Msg("Refresh scheduler started")

	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish
func (s *Service) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Refresh scheduler stopped")
}

// RunSweep re-ingests every url item through the normal pipeline. Failures
// are logged per item and never abort the sweep; a page that is down today
// keeps its stale copy and gets another chance tomorrow.
func (s *Service) RunSweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	start := time.Now()

	items, err := s.storage.List(ctx, models.SourceURL, 0)
	if err != nil {
		s.logger.Error().Err(err).Msg("Refresh sweep could not list url items")
		return
	}

	refreshed, failed := 0, 0
	for _, item := range items {
		if ctx.Err() != nil {
			s.logger.Warn().
				Int("remaining", len(items)-refreshed-failed).
				Msg("Refresh sweep ran out of time")
			break
		}

		if _, err := s.ingest.Refresh(ctx, item.ID); err != nil {
			failed++
			s.logger.Warn().
				Err(err).
				Str("item_id", item.ID).
				Str("url", item.OriginURL).
				Msg("Failed to refresh url item")
			continue
		}
		refreshed++
	}

	s.logger.Info().
		Int("refreshed", refreshed).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Refresh sweep completed")
}
