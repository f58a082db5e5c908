/*
scheduler.go - Automated settlement scheduler

PURPOSE:
  Periodically archives the most recently closed settlement cycle so the
  totals of a finished pay cycle are frozen even if records are deleted later.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Each tick calls Book.SettleDue for today
  - Cycles that were already archived are skipped by SettleDue

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewSettlementScheduler(book)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: Settle endpoint (manual settlement)
  - payroll/settlement.go: SettleDue
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/Chung0221/salary-tracker/generic"
	"github.com/Chung0221/salary-tracker/payroll"
	"github.com/rs/zerolog/log"
)

// SettlementScheduler archives closed settlement cycles in the background.
type SettlementScheduler struct {
	Book          *payroll.Book
	CheckInterval time.Duration
	Enabled       bool

	// Today returns the current date; replaced in tests.
	Today func() generic.TimePoint

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSettlementScheduler creates a new scheduler.
func NewSettlementScheduler(book *payroll.Book) *SettlementScheduler {
	return &SettlementScheduler{
		Book:          book,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		Today:         generic.Today,
	}
}

// Start begins the scheduler.
func (s *SettlementScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		log.Info().Msg("settlement scheduler disabled, not starting")
		return
	}
	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.stop = make(chan struct{})
	s.wg.Add(1)
	go s.run(s.ticker.C, s.stop)

	log.Info().Dur("interval", s.CheckInterval).Msg("settlement scheduler started")
}

// Stop stops the scheduler and waits for an in-flight check to finish.
func (s *SettlementScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.ticker = nil
		log.Info().Msg("settlement scheduler stopped")
	}
}

func (s *SettlementScheduler) run(tick <-chan time.Time, stop <-chan struct{}) {
	defer s.wg.Done()

	// Run immediately on start
	s.check()

	for {
		select {
		case <-tick:
			s.check()
		case <-stop:
			return
		}
	}
}

func (s *SettlementScheduler) check() {
	if _, err := s.RunNow(context.Background()); err != nil {
		log.Error().Err(err).Msg("settlement check failed")
	}
}

// RunNow settles the last closed cycle if needed. It returns nil when the
// cycle was already archived.
func (s *SettlementScheduler) RunNow(ctx context.Context) (*payroll.SettlementRun, error) {
	today := s.Today()
	log.Debug().Str("today", today.String()).Msg("checking for closed settlement cycle")

	run, err := s.Book.SettleDue(ctx, today)
	if err != nil {
		return nil, err
	}
	if run == nil {
		log.Debug().Msg("no settlement due")
	}
	return run, nil
}
