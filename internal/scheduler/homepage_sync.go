package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/startpage/internal/domain"
	"github.com/MrSnakeDoc/startpage/internal/logger"
	"github.com/MrSnakeDoc/startpage/internal/sources/homepage"
)

// Importer merges bookmarks into a profile, skipping URLs it already has.
type Importer interface {
	ImportBookmarks(profile string, bookmarks []domain.Bookmark) (int, string, error)
}

// SyncStatus describes the last sync run.
type SyncStatus struct {
	File     string     `json:"file"`
	Profile  string     `json:"profile"`
	LastRun  *time.Time `json:"last_run,omitempty"` // nil until the first run
	Imported int        `json:"imported"`
	Error    string     `json:"error,omitempty"`
}

// HomepageSync keeps a profile fed from a Homepage bookmarks.yaml or
// services.yaml file. New URLs are appended; entries removed from the file
// stay in the profile, since the user may have edited them since.
type HomepageSync struct {
	file          string
	kind          homepage.Kind
	profile       string
	importer      Importer
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}

	mu     sync.Mutex
	status SyncStatus
}

// NewHomepageSync creates a new homepage sync job
func NewHomepageSync(
	file string,
	kind homepage.Kind,
	profile string,
	importer Importer,
	log logger.Logger,
	interval time.Duration,
) *HomepageSync {
	return &HomepageSync{
		file:          file,
		kind:          kind,
		profile:       profile,
		importer:      importer,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: make(chan struct{}, 1),
		status:        SyncStatus{File: file, Profile: profile},
	}
}

// Start syncs once, failing if the file cannot be imported, then keeps
// syncing on the interval and on Trigger.
func (hs *HomepageSync) Start(ctx context.Context) error {
	if err := hs.Sync(); err != nil {
		return fmt.Errorf("initial homepage sync failed: %w", err)
	}

	ticker := time.NewTicker(hs.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := hs.Sync(); err != nil {
					hs.logger.Error("failed to sync homepage file",
						logger.Error(err))
				}
			case <-hs.manualTrigger:
				hs.logger.Info("manual homepage sync triggered")
				if err := hs.Sync(); err != nil {
					hs.logger.Error("failed to sync homepage file",
						logger.Error(err))
				}
			case <-hs.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the sync loop
func (hs *HomepageSync) Stop() {
	hs.stopOnce.Do(func() { close(hs.stopCh) })
}

// Trigger queues a sync. It returns false when one is already queued.
func (hs *HomepageSync) Trigger() bool {
	select {
	case hs.manualTrigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Status returns a copy of the last run's outcome.
func (hs *HomepageSync) Status() SyncStatus {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	return hs.status
}

// Sync imports the file once.
func (hs *HomepageSync) Sync() error {
	added, err := hs.sync()

	now := time.Now()
	hs.mu.Lock()
	hs.status.LastRun = &now
	hs.status.Imported = added
	hs.status.Error = ""
	if err != nil {
		hs.status.Error = err.Error()
	}
	hs.mu.Unlock()

	return err
}

func (hs *HomepageSync) sync() (int, error) {
	bookmarks, err := homepage.LoadFile(hs.kind, hs.file)
	if err != nil {
		return 0, fmt.Errorf("failed to load %s: %w", hs.file, err)
	}

	added, version, err := hs.importer.ImportBookmarks(hs.profile, bookmarks)
	if err != nil {
		return 0, fmt.Errorf("failed to import into %q: %w", hs.profile, err)
	}

	if added > 0 {
		hs.logger.Info("homepage bookmarks imported",
			logger.String("file", hs.file),
			logger.String("profile", hs.profile),
			logger.Int("added", added),
			logger.String("version", version))
	} else {
		hs.logger.Debug("homepage file unchanged",
			logger.String("file", hs.file),
			logger.Int("entries", len(bookmarks)))
	}
	return added, nil
}
