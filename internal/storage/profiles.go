package storage

import (
	"fmt"

	"github.com/MrSnakeDoc/startpage/internal/domain"
	"github.com/MrSnakeDoc/startpage/internal/logger"
)

// Profile returns the named profile, or the first one when name is empty or
// unknown. The store is seeded with the default profile if it is empty, and
// profiles written before versions existed get one; either change is saved.
func (s *Storage) Profile(name string) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dirty := false
	p, ok := domain.Profile{}, false
	if name != "" {
		p, ok = s.profiles.Get(name)
	}
	if !ok {
		var created bool
		p, created = s.profiles.GetOrCreateDefault()
		dirty = created
	}

	if s.profiles.EnsureVersion(p.Name) {
		dirty = true
		p, _ = s.profiles.Get(p.Name)
	}

	if dirty {
		if err := s.saveProfilesLocked(); err != nil {
			return domain.Profile{}, err
		}
	}
	return p, nil
}

// ProfileNames lists profile names in display order.
func (s *Storage) ProfileNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profiles.Names()
}

// CreateProfile adds a new profile. A missing version is generated.
func (s *Storage) CreateProfile(p domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.EnsureVersion()
	if err := s.profiles.Create(p); err != nil {
		return err
	}
	s.log.Info("profile created", logger.String("profile", p.Name))
	return s.saveProfilesLocked()
}

// DeleteProfile removes a profile; the last one cannot be removed.
func (s *Storage) DeleteProfile(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.profiles.Delete(name); err != nil {
		return err
	}
	s.log.Info("profile deleted", logger.String("profile", name))
	return s.saveProfilesLocked()
}

// UpdateProfile replaces a profile wholesale, subject to the version check.
// An unknown name is ignored. The returned profile is zero in that case.
func (s *Storage) UpdateProfile(p domain.Profile) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, ok, err := s.profiles.Update(p)
	if err != nil {
		return domain.Profile{}, err
	}
	if !ok {
		s.log.Debug("update for unknown profile ignored", logger.String("profile", p.Name))
	}
	if err := s.saveProfilesLocked(); err != nil {
		return domain.Profile{}, err
	}
	return updated, nil
}

// RenameProfile renames oldName and returns its new version, or "" when
// oldName does not exist.
func (s *Storage) RenameProfile(oldName, newName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	version, err := s.profiles.Rename(oldName, newName)
	if err != nil {
		return "", err
	}
	if err := s.saveProfilesLocked(); err != nil {
		return "", err
	}
	return version, nil
}

// ReorderProfiles sets the display order.
func (s *Storage) ReorderProfiles(names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.profiles.Reorder(names); err != nil {
		return err
	}
	return s.saveProfilesLocked()
}

// ImportBookmarks appends bookmarks to a profile and returns how many were
// added along with the profile version.
func (s *Storage) ImportBookmarks(profileName string, bookmarks []domain.Bookmark) (int, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added, version, err := s.profiles.ImportBookmarks(profileName, bookmarks)
	if err != nil {
		return 0, "", err
	}
	if added == 0 {
		return 0, version, nil
	}
	if err := s.saveProfilesLocked(); err != nil {
		return 0, "", fmt.Errorf("failed to persist import: %w", err)
	}
	s.log.Info("bookmarks imported",
		logger.String("profile", profileName),
		logger.Int("count", added))
	return added, version, nil
}
