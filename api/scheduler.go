/*
scheduler.go - Periodic holiday calendar sync

PURPOSE:
  Re-imports the configured iCalendar feed (HOLIDAY_ICS) on an interval so
  that holidays published after startup reach the next bulletin. Imports are
  idempotent: event UIDs map to stable holiday IDs.

DESIGN:
  - Runs a background goroutine with a configurable interval
  - Syncs once immediately on Start
  - A failed fetch is logged and retried on the next tick; bulletins keep
    using whatever holidays are already stored

USAGE:
  scheduler := NewHolidaySyncScheduler(handler, "https://example.com/br.ics", "acme")
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: ImportCalendar, POST /api/holidays/import
  - calendar/ics.go: FetchICS
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// HolidaySyncScheduler periodically imports an iCalendar feed.
type HolidaySyncScheduler struct {
	Handler   *Handler
	Source    string
	CompanyID string
	Interval  time.Duration
	Enabled   bool

	// Timeout bounds one fetch and store pass.
	Timeout time.Duration

	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	lastRun time.Time
	lastErr error
}

// NewHolidaySyncScheduler creates a scheduler syncing once a day.
// An empty source disables it.
func NewHolidaySyncScheduler(handler *Handler, source, companyID string) *HolidaySyncScheduler {
	return &HolidaySyncScheduler{
		Handler:   handler,
		Source:    source,
		CompanyID: companyID,
		Interval:  24 * time.Hour,
		Enabled:   source != "",
		Timeout:   time.Minute,
		stop:      make(chan struct{}),
	}
}

// Start begins the scheduler.
func (s *HolidaySyncScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := s.Handler.Logger
	if !s.Enabled {
		logger.Info("holiday sync disabled")
		return
	}
	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.Interval)
	s.wg.Add(1)

	go s.run(s.ticker.C)

	logger.Info("holiday sync started",
		slog.String("source", s.Source),
		slog.Duration("interval", s.Interval))
}

// Stop stops the scheduler and waits for a running sync to finish.
func (s *HolidaySyncScheduler) Stop() {
	s.mu.Lock()
	ticker := s.ticker
	s.ticker = nil
	s.mu.Unlock()

	if ticker == nil {
		return
	}
	ticker.Stop()
	close(s.stop)
	s.wg.Wait()
	s.Handler.Logger.Info("holiday sync stopped")
}

func (s *HolidaySyncScheduler) run(ticks <-chan time.Time) {
	defer s.wg.Done()

	// Run immediately on start
	s.RunNow()

	for {
		select {
		case <-ticks:
			s.RunNow()
		case <-s.stop:
			return
		}
	}
}

// RunNow performs one sync and returns the number of holidays stored.
func (s *HolidaySyncScheduler) RunNow() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	count, err := s.Handler.ImportCalendar(ctx, s.Source, s.CompanyID)
	if err != nil {
		s.Handler.Logger.Warn("holiday sync failed",
			slog.String("source", s.Source),
			slog.Any("error", err))
	}

	s.mu.Lock()
	s.lastRun = time.Now()
	s.lastErr = err
	s.mu.Unlock()

	return count, err
}

// LastRun returns when the last sync finished and its error, if any.
func (s *HolidaySyncScheduler) LastRun() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastErr
}

// GetNextRunTime returns when the next scheduled sync will occur.
func (s *HolidaySyncScheduler) GetNextRunTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastRun.IsZero() {
		return time.Now()
	}
	return s.lastRun.Add(s.Interval)
}
