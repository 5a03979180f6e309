// Package storage owns every piece of mutable state: the persisted config,
// the profile collection and the session store.
//
// All access goes through one mutex. Every mutation rewrites the affected
// JSON file before the lock is released, so no caller can observe an
// in-memory change whose write has not started.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/MrSnakeDoc/startpage/internal/domain"
	"github.com/MrSnakeDoc/startpage/internal/logger"
	"github.com/MrSnakeDoc/startpage/internal/profile"
	"github.com/MrSnakeDoc/startpage/internal/session"
	"github.com/MrSnakeDoc/startpage/internal/utils"
)

const (
	ConfigFile   = "config.json"
	ProfilesFile = "profiles.json"
	SessionsFile = "sessions.json"

	IconsDir       = "icons"
	BackgroundsDir = "backgrounds"

	dirPerm  = 0o755
	filePerm = 0o644
)

// Options configures Open.
type Options struct {
	Dir       string // holds the three JSON documents
	AssetsDir string // holds icons/ and backgrounds/; defaults to Dir/assets

	// Seed credentials written to a fresh config file.
	DefaultUsername string
	DefaultPassword string

	Logger logger.Logger
	Now    func() time.Time // for testing, defaults to time.Now
}

// Storage is the single point of exclusive access to application state.
type Storage struct {
	mu       sync.Mutex
	config   domain.Config
	profiles *profile.Collection
	sessions *session.Store

	dir       string
	assetsDir string
	log       logger.Logger
	now       func() time.Time
}

// Stats is a point-in-time summary used by readiness checks.
type Stats struct {
	Profiles    int  `json:"profiles"`
	Sessions    int  `json:"sessions"`
	AuthEnabled bool `json:"auth_enabled"`
}

// Open seeds missing files with defaults, loads everything into memory and
// drops sessions that expired while the process was down.
func Open(opts Options) (*Storage, error) {
	if opts.Dir == "" {
		return nil, errors.New("storage dir is required")
	}
	if opts.AssetsDir == "" {
		opts.AssetsDir = filepath.Join(opts.Dir, "assets")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		return nil, errors.New("storage logger is required")
	}

	s := &Storage{
		dir:       opts.Dir,
		assetsDir: opts.AssetsDir,
		log:       opts.Logger,
		now:       opts.Now,
	}

	defaults := domain.NewDefaultConfig(opts.DefaultUsername, opts.DefaultPassword)
	if err := s.ensureFiles(defaults); err != nil {
		return nil, err
	}
	if err := s.load(defaults); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if removed := s.sessions.Sweep(); removed > 0 {
		s.log.Info("dropped expired sessions",
			logger.Int("count", removed))
		if err := s.saveSessionsLocked(); err != nil {
			return nil, err
		}
	}

	s.log.Info("storage loaded",
		logger.String("dir", s.dir),
		logger.Int("profiles", s.profiles.Len()),
		logger.Int("sessions", s.sessions.Len()),
		logger.Bool("auth_enabled", s.config.Auth.Enabled))

	return s, nil
}

func (s *Storage) path(name string) string {
	return filepath.Join(s.dir, name)
}

// ensureFiles writes default documents for any file that does not exist.
func (s *Storage) ensureFiles(defaults domain.Config) error {
	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	seeds := []struct {
		name string
		doc  any
	}{
		{ConfigFile, defaults},
		{ProfilesFile, []domain.Profile{domain.NewDefaultProfile()}},
		{SessionsFile, session.NewStore(s.now)},
	}

	for _, seed := range seeds {
		p := s.path(seed.name)
		_, err := os.Stat(p)
		if err == nil {
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to stat %s: %w", seed.name, err)
		}
		if err := writeJSON(p, seed.doc); err != nil {
			return err
		}
		s.log.Info("seeded default file",
			logger.String("file", p))
	}
	return nil
}

func (s *Storage) load(defaults domain.Config) error {
	cfg := defaults
	if err := readJSON(s.path(ConfigFile), &cfg); err != nil {
		return err
	}

	var profiles []domain.Profile
	if err := readJSON(s.path(ProfilesFile), &profiles); err != nil {
		return err
	}

	sessions := session.NewStore(s.now)
	if err := readJSON(s.path(SessionsFile), sessions); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
	s.profiles = profile.NewCollection(profiles)
	s.sessions = sessions
	return nil
}

// SaveAll rewrites the sessions and profiles files. It is what the periodic
// task and the shutdown hook call; running it twice is harmless.
func (s *Storage) SaveAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessErr := s.saveSessionsLocked()
	profErr := s.saveProfilesLocked()
	return errors.Join(sessErr, profErr)
}

// Stats returns collection sizes.
func (s *Storage) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Profiles:    s.profiles.Len(),
		Sessions:    s.sessions.Len(),
		AuthEnabled: s.config.Auth.Enabled,
	}
}

// AssetsDir is the root served under /images.
func (s *Storage) AssetsDir() string {
	return s.assetsDir
}

func (s *Storage) saveProfilesLocked() error {
	return writeJSON(s.path(ProfilesFile), s.profiles.Snapshot())
}

func (s *Storage) saveSessionsLocked() error {
	return writeJSON(s.path(SessionsFile), s.sessions)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeJSON replaces path with the pretty-printed document. The data goes to
// a temp file in the same directory first and is renamed into place, so a
// crash mid-write never leaves a truncated file behind.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	return writeFileAtomic(path, data)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", filepath.Base(path), err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		utils.Close(tmp)
		cleanup()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Sync(); err != nil {
		utils.Close(tmp)
		cleanup()
		return fmt.Errorf("failed to sync %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		cleanup()
		return fmt.Errorf("failed to chmod %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
