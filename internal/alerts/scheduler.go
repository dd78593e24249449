package alerts

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultInterval is how often bins are evaluated when not configured.
const DefaultInterval = 5 * time.Minute

// Runner is anything that performs one evaluation pass.
type Runner interface {
	Run(ctx context.Context) Result
}

// Scheduler runs the evaluator on a fixed interval and on demand. Both paths
// share one lock so that runs never overlap.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewScheduler(runner Runner, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{runner: runner, interval: interval}
}

// Start runs an immediate pass and then one per interval until Stop is
// called or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	log.Printf("⏰ Alert scheduler started (every %s)", s.interval)

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.tick(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for a run in flight to finish.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	log.Println("⏰ Alert scheduler stopped")
}

// TriggerNow runs a pass immediately, waiting for any run in flight.
func (s *Scheduler) TriggerNow(ctx context.Context) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runner.Run(ctx)
}

// tick skips when a run is already in flight.
func (s *Scheduler) tick(ctx context.Context) {
	if !s.mu.TryLock() {
		log.Debug("Alert evaluation already running, skipping tick")
		return
	}
	defer s.mu.Unlock()

	start := time.Now()
	result := s.runner.Run(ctx)
	log.WithField("duration", time.Since(start)).Infof("✅ Alert evaluation: %d evaluated, %d created, %d refreshed, %d failed",
		result.Evaluated, len(result.Created), len(result.Refreshed), result.Failed)
}
