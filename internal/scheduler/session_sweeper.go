package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/startpage/internal/logger"
)

// Sweeper removes expired sessions.
type Sweeper interface {
	SweepSessions() (int, error)
}

// SessionSweeper periodically drops sessions that expired without ever
// being presented again, so the sessions file does not grow forever.
type SessionSweeper struct {
	target   Sweeper
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewSessionSweeper creates a new session sweeper
func NewSessionSweeper(target Sweeper, log logger.Logger, interval time.Duration) *SessionSweeper {
	return &SessionSweeper{
		target:   target,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep
func (ss *SessionSweeper) Start(ctx context.Context) error {
	ticker := time.NewTicker(ss.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ss.Sweep()
			case <-ss.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the sweeper
func (ss *SessionSweeper) Stop() {
	ss.stopOnce.Do(func() { close(ss.stopCh) })
}

// Sweep runs one pass and returns how many sessions were removed.
func (ss *SessionSweeper) Sweep() int {
	removed, err := ss.target.SweepSessions()
	if err != nil {
		ss.logger.Error("session sweep failed",
			logger.Int("removed", removed),
			logger.Error(err))
		return removed
	}

	if removed > 0 {
		ss.logger.Info("expired sessions removed",
			logger.Int("count", removed))
	} else {
		ss.logger.Debug("no expired sessions")
	}
	return removed
}
