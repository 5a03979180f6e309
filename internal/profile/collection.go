// Package profile keeps the ordered profile collection and enforces
// optimistic concurrency on updates.
//
// Collection is not safe for concurrent use; the owner serializes access.
package profile

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/startpage/internal/domain"
)

// Collection is the ordered list of profiles. It always holds at least one
// profile once GetOrCreateDefault has run.
type Collection struct {
	profiles []domain.Profile
}

// NewCollection wraps profiles, normalizing nil slices.
func NewCollection(profiles []domain.Profile) *Collection {
	c := &Collection{profiles: make([]domain.Profile, 0, len(profiles))}
	for _, p := range profiles {
		p.Normalize()
		c.profiles = append(c.profiles, p)
	}
	return c
}

// Len returns the number of profiles.
func (c *Collection) Len() int {
	return len(c.profiles)
}

// Snapshot returns a deep copy of every profile, in order.
func (c *Collection) Snapshot() []domain.Profile {
	out := make([]domain.Profile, len(c.profiles))
	for i, p := range c.profiles {
		out[i] = p.Clone()
	}
	return out
}

// Names returns profile names in order.
func (c *Collection) Names() []string {
	names := make([]string, len(c.profiles))
	for i, p := range c.profiles {
		names[i] = p.Name
	}
	return names
}

func (c *Collection) indexOf(name string) int {
	for i := range c.profiles {
		if c.profiles[i].Name == name {
			return i
		}
	}
	return -1
}

// Get returns a copy of the first profile named name.
func (c *Collection) Get(name string) (domain.Profile, bool) {
	i := c.indexOf(name)
	if i < 0 {
		return domain.Profile{}, false
	}
	return c.profiles[i].Clone(), true
}

// GetOrCreateDefault returns the first profile, seeding the default one when
// the collection is empty. created reports whether seeding happened.
func (c *Collection) GetOrCreateDefault() (p domain.Profile, created bool) {
	if len(c.profiles) == 0 {
		c.profiles = append(c.profiles, domain.NewDefaultProfile())
		created = true
	}
	return c.profiles[0].Clone(), created
}

// EnsureVersion gives the named profile a version if it has none and
// reports whether one was generated.
func (c *Collection) EnsureVersion(name string) bool {
	i := c.indexOf(name)
	if i < 0 {
		return false
	}
	return c.profiles[i].EnsureVersion()
}

// Create appends p. Names must be unique and non-empty. A missing search
// engine gets the default template.
func (c *Collection) Create(p domain.Profile) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("profile name is required: %w", domain.ErrBadRequest)
	}
	if c.indexOf(p.Name) >= 0 {
		return fmt.Errorf("%q: %w", p.Name, domain.ErrAlreadyExists)
	}
	p = p.Clone()
	p.Normalize()
	if strings.TrimSpace(p.SearchEngine) == "" {
		p.SearchEngine = domain.DefaultSearchEngine
	}
	c.profiles = append(c.profiles, p)
	return nil
}

// Delete removes the first profile named name. The last profile can never be
// removed; an unknown name is a no-op.
func (c *Collection) Delete(name string) error {
	if len(c.profiles) <= 1 {
		return domain.ErrCannotDeleteLast
	}
	if i := c.indexOf(name); i >= 0 {
		c.profiles = append(c.profiles[:i], c.profiles[i+1:]...)
	}
	return nil
}

// Rename changes oldName to newName and returns the new version. When
// oldName does not exist nothing happens and the version is empty.
func (c *Collection) Rename(oldName, newName string) (string, error) {
	if c.indexOf(newName) >= 0 {
		return "", fmt.Errorf("%q: %w", newName, domain.ErrAlreadyExists)
	}
	i := c.indexOf(oldName)
	if i < 0 {
		return "", nil
	}
	c.profiles[i].Name = newName
	c.profiles[i].RegenerateVersion()
	return c.profiles[i].Version, nil
}

// Update replaces the stored profile with the same name as incoming.
//
// The write is rejected with ErrVersionConflict when both sides carry a
// version and they differ. Background images are always taken from the
// stored profile. An unknown name is silently ignored and updated is false.
func (c *Collection) Update(incoming domain.Profile) (p domain.Profile, updated bool, err error) {
	i := c.indexOf(incoming.Name)
	if i < 0 {
		return domain.Profile{}, false, nil
	}
	stored := &c.profiles[i]

	if incoming.Version != "" && stored.Version != "" && incoming.Version != stored.Version {
		return domain.Profile{}, false, fmt.Errorf("%q: %w", incoming.Name, domain.ErrVersionConflict)
	}

	next := incoming.Clone()
	next.BackgroundImages = stored.Clone().BackgroundImages
	next.Normalize()
	next.RegenerateVersion()
	*stored = next

	return stored.Clone(), true, nil
}

// Reorder rearranges the collection to match names, which must be exactly a
// permutation of the current names.
func (c *Collection) Reorder(names []string) error {
	if len(names) != len(c.profiles) {
		return domain.ErrInvalidOrder
	}
	reordered := make([]domain.Profile, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		i := c.indexOf(name)
		if i < 0 || seen[name] {
			return fmt.Errorf("%q: %w", name, domain.ErrInvalidOrder)
		}
		seen[name] = true
		reordered = append(reordered, c.profiles[i])
	}
	c.profiles = reordered
	return nil
}

// AddBackgroundImage appends img to the named profile and returns the
// profile's new version.
func (c *Collection) AddBackgroundImage(profileName string, img domain.BackgroundImage) (string, error) {
	i := c.indexOf(profileName)
	if i < 0 {
		return "", fmt.Errorf("%q: %w", profileName, domain.ErrProfileNotFound)
	}
	c.profiles[i].BackgroundImages = append(c.profiles[i].BackgroundImages, img)
	c.profiles[i].RegenerateVersion()
	return c.profiles[i].Version, nil
}

// RemoveBackgroundImage removes the image with id from the named profile and
// returns the removed record and the new version. Unlike Update, an unknown
// image id is an error.
func (c *Collection) RemoveBackgroundImage(profileName string, id uuid.UUID) (domain.BackgroundImage, string, error) {
	i := c.indexOf(profileName)
	if i < 0 {
		return domain.BackgroundImage{}, "", fmt.Errorf("%q: %w", profileName, domain.ErrProfileNotFound)
	}
	p := &c.profiles[i]
	for j, img := range p.BackgroundImages {
		if img.ID != id {
			continue
		}
		p.BackgroundImages = append(p.BackgroundImages[:j], p.BackgroundImages[j+1:]...)
		if len(p.BackgroundImages) == 0 {
			p.BackgroundImages = nil
		}
		p.RegenerateVersion()
		return img, p.Version, nil
	}
	return domain.BackgroundImage{}, "", fmt.Errorf("background image %s: %w", id, domain.ErrBadRequest)
}

// FindBookmark returns the first bookmark with id across all profiles.
func (c *Collection) FindBookmark(id uuid.UUID) (domain.Bookmark, bool) {
	for _, p := range c.profiles {
		for _, b := range p.Bookmarks {
			if b.ID == id {
				return b, true
			}
		}
	}
	return domain.Bookmark{}, false
}

// SetBookmarkIcon points the first bookmark with id at filename. It returns
// the previous filename and the owning profile's new version.
func (c *Collection) SetBookmarkIcon(id uuid.UUID, filename string) (previous, version string, err error) {
	for i := range c.profiles {
		p := &c.profiles[i]
		for j := range p.Bookmarks {
			if p.Bookmarks[j].ID != id {
				continue
			}
			previous = p.Bookmarks[j].Icon
			p.Bookmarks[j].Icon = filename
			p.RegenerateVersion()
			return previous, p.Version, nil
		}
	}
	return "", "", fmt.Errorf("bookmark %s: %w", id, domain.ErrBookmarkNotFound)
}

// ImportBookmarks appends bookmarks to the named profile, skipping URLs the
// profile already has, and merges their tags into the profile tag list.
// It returns how many were added and the new version (unchanged when
// nothing was added).
func (c *Collection) ImportBookmarks(profileName string, bookmarks []domain.Bookmark) (int, string, error) {
	i := c.indexOf(profileName)
	if i < 0 {
		return 0, "", fmt.Errorf("%q: %w", profileName, domain.ErrProfileNotFound)
	}
	p := &c.profiles[i]

	known := make(map[string]bool, len(p.Bookmarks))
	for _, b := range p.Bookmarks {
		known[b.URL] = true
	}
	tags := make(map[string]bool, len(p.Tags))
	for _, t := range p.Tags {
		tags[t] = true
	}

	added := 0
	for _, b := range bookmarks {
		if b.URL == "" || known[b.URL] {
			continue
		}
		known[b.URL] = true
		if b.ID == uuid.Nil {
			b.ID = uuid.New()
		}
		b.Normalize()
		for _, t := range b.Tags {
			if !tags[t] {
				tags[t] = true
				p.Tags = append(p.Tags, t)
			}
		}
		p.Bookmarks = append(p.Bookmarks, b)
		added++
	}

	if added > 0 {
		p.RegenerateVersion()
	}
	return added, p.Version, nil
}
