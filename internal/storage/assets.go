package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/startpage/internal/domain"
	"github.com/MrSnakeDoc/startpage/internal/logger"
)

// Asset is an already validated upload. The caller detects the format and
// orientation; storage only names and writes the bytes.
type Asset struct {
	Data        []byte
	Ext         string // canonical extension without the dot, e.g. "png"
	Orientation domain.Orientation
}

func (a Asset) validate() error {
	if len(a.Data) == 0 {
		return fmt.Errorf("empty upload: %w", domain.ErrBadRequest)
	}
	if a.Ext == "" || strings.ContainsAny(a.Ext, `/\.`) {
		return fmt.Errorf("extension %q: %w", a.Ext, domain.ErrInvalidImageFormat)
	}
	return nil
}

// BackgroundImages lists a profile's background images.
func (s *Storage) BackgroundImages(profileName string) ([]domain.BackgroundImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles.Get(profileName)
	if !ok {
		return nil, fmt.Errorf("%q: %w", profileName, domain.ErrProfileNotFound)
	}
	if p.BackgroundImages == nil {
		return []domain.BackgroundImage{}, nil
	}
	return p.BackgroundImages, nil
}

// AddBackgroundImage stores the file under a fresh id and records it on the
// profile. It returns the record and the profile's new version.
func (s *Storage) AddBackgroundImage(profileName string, asset Asset) (domain.BackgroundImage, string, error) {
	if err := asset.validate(); err != nil {
		return domain.BackgroundImage{}, "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles.Get(profileName); !ok {
		return domain.BackgroundImage{}, "", fmt.Errorf("%q: %w", profileName, domain.ErrProfileNotFound)
	}

	dir := filepath.Join(s.assetsDir, BackgroundsDir)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return domain.BackgroundImage{}, "", fmt.Errorf("failed to create backgrounds dir: %w", err)
	}

	id := uuid.New()
	img := domain.BackgroundImage{
		ID:          id,
		Filename:    id.String() + "." + asset.Ext,
		Orientation: asset.Orientation,
	}
	path := filepath.Join(dir, img.Filename)
	if err := os.WriteFile(path, asset.Data, filePerm); err != nil {
		return domain.BackgroundImage{}, "", fmt.Errorf("failed to write background image: %w", err)
	}

	version, err := s.profiles.AddBackgroundImage(profileName, img)
	if err != nil {
		_ = os.Remove(path)
		return domain.BackgroundImage{}, "", err
	}
	if err := s.saveProfilesLocked(); err != nil {
		return domain.BackgroundImage{}, "", err
	}

	s.log.Info("background image added",
		logger.String("profile", profileName),
		logger.String("file", img.Filename),
		logger.String("orientation", string(img.Orientation)))
	return img, version, nil
}

// DeleteBackgroundImage removes the record and its file, returning the
// profile's new version. An unknown id is ErrBadRequest.
func (s *Storage) DeleteBackgroundImage(profileName string, id uuid.UUID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	img, version, err := s.profiles.RemoveBackgroundImage(profileName, id)
	if err != nil {
		return "", err
	}

	s.removeAsset(BackgroundsDir, img.Filename)

	if err := s.saveProfilesLocked(); err != nil {
		return "", err
	}
	return version, nil
}

// SetBookmarkIcon writes the icon as <bookmark id>.<ext>, drops a previous
// icon file with a different name and returns the owning profile's version.
func (s *Storage) SetBookmarkIcon(bookmarkID uuid.UUID, asset Asset) (string, error) {
	if err := asset.validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles.FindBookmark(bookmarkID); !ok {
		return "", fmt.Errorf("bookmark %s: %w", bookmarkID, domain.ErrBookmarkNotFound)
	}

	dir := filepath.Join(s.assetsDir, IconsDir)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("failed to create icons dir: %w", err)
	}

	filename := bookmarkID.String() + "." + asset.Ext
	if err := os.WriteFile(filepath.Join(dir, filename), asset.Data, filePerm); err != nil {
		return "", fmt.Errorf("failed to write icon: %w", err)
	}

	previous, version, err := s.profiles.SetBookmarkIcon(bookmarkID, filename)
	if err != nil {
		return "", err
	}
	if previous != "" && previous != filename {
		s.removeAsset(IconsDir, previous)
	}

	if err := s.saveProfilesLocked(); err != nil {
		return "", err
	}
	return version, nil
}

// removeAsset deletes a stored file, best effort. Names are reduced to their
// base so a crafted filename cannot escape the assets dir.
func (s *Storage) removeAsset(subdir, filename string) {
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) {
		return
	}
	path := filepath.Join(s.assetsDir, subdir, name)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("failed to remove asset",
			logger.String("file", path),
			logger.Error(err))
	}
}
