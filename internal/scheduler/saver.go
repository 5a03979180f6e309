package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/startpage/internal/logger"
)

// Flusher writes in-memory state to disk.
type Flusher interface {
	SaveAll() error
}

// Saver flushes state on a fixed interval, independent of request traffic.
type Saver struct {
	target   Flusher
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
	done     chan struct{}
}

// NewSaver creates a periodic saver
func NewSaver(target Flusher, log logger.Logger, interval time.Duration) *Saver {
	return &Saver{
		target:   target,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the periodic save loop. The first save happens one interval
// after Start.
func (s *Saver) Start(ctx context.Context) error {
	s.started.Store(true)
	ticker := time.NewTicker(s.interval)
	go func() {
		defer close(s.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Save()
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Save runs one flush and logs a failure. Errors are not fatal; the next
// tick or mutation writes again.
func (s *Saver) Save() {
	start := time.Now()
	if err := s.target.SaveAll(); err != nil {
		s.logger.Error("periodic save failed", logger.Error(err))
		return
	}
	s.logger.Debug("state saved", logger.Duration("took", time.Since(start)))
}

// Stop ends the loop and waits for an in-flight save to finish. Safe to
// call more than once, and before Start.
func (s *Saver) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	if s.started.Load() {
		<-s.done
	}
}
