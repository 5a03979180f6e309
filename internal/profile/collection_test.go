package profile

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/startpage/internal/domain"
)

func named(name string) domain.Profile {
	p := domain.NewDefaultProfile()
	p.Name = name
	return p
}

func seeded(t *testing.T, names ...string) *Collection {
	t.Helper()
	c := NewCollection(nil)
	for _, n := range names {
		require.NoError(t, c.Create(named(n)))
	}
	return c
}

func TestGetOrCreateDefault(t *testing.T) {
	c := NewCollection(nil)

	p, created := c.GetOrCreateDefault()
	assert.True(t, created)
	assert.Equal(t, domain.DefaultProfileName, p.Name)
	assert.Equal(t, domain.DefaultSearchEngine, p.SearchEngine)
	assert.NotEmpty(t, p.Version)
	assert.Equal(t, 1, c.Len())

	again, created := c.GetOrCreateDefault()
	assert.False(t, created)
	assert.Equal(t, p.Version, again.Version, "returning the first profile must not mutate it")
	assert.Equal(t, 1, c.Len())
}

func TestCreateDuplicate(t *testing.T) {
	c := seeded(t, "Home")

	err := c.Create(named("Home"))
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	assert.Equal(t, 1, c.Len())
}

func TestCreateDefaultsSearchEngine(t *testing.T) {
	c := NewCollection(nil)
	require.NoError(t, c.Create(domain.Profile{Name: "Bare"}))
	require.NoError(t, c.Create(domain.Profile{Name: "Ddg", SearchEngine: "https://duckduckgo.com/?q={}"}))

	bare, ok := c.Get("Bare")
	require.True(t, ok)
	assert.Equal(t, domain.DefaultSearchEngine, bare.SearchEngine)
	assert.Equal(t, []domain.Bookmark{}, bare.Bookmarks)

	ddg, ok := c.Get("Ddg")
	require.True(t, ok)
	assert.Equal(t, "https://duckduckgo.com/?q={}", ddg.SearchEngine)
}

func TestCreateEmptyName(t *testing.T) {
	c := NewCollection(nil)
	assert.ErrorIs(t, c.Create(named("  ")), domain.ErrBadRequest)
	assert.Equal(t, 0, c.Len())
}

func TestDeleteLast(t *testing.T) {
	c := seeded(t, "Only")

	assert.ErrorIs(t, c.Delete("Only"), domain.ErrCannotDeleteLast)
	assert.Equal(t, 1, c.Len())
}

func TestDelete(t *testing.T) {
	c := seeded(t, "A", "B")

	require.NoError(t, c.Delete("missing"))
	assert.Equal(t, 2, c.Len())

	require.NoError(t, c.Delete("A"))
	assert.Equal(t, []string{"B"}, c.Names())
}

func TestRename(t *testing.T) {
	c := seeded(t, "A", "B")
	before, _ := c.Get("A")

	_, err := c.Rename("A", "B")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	version, err := c.Rename("missing", "C")
	require.NoError(t, err)
	assert.Empty(t, version)
	assert.Equal(t, []string{"A", "B"}, c.Names())

	version, err = c.Rename("A", "C")
	require.NoError(t, err)
	assert.NotEmpty(t, version)
	assert.NotEqual(t, before.Version, version)

	renamed, ok := c.Get("C")
	require.True(t, ok)
	assert.Equal(t, version, renamed.Version)
	assert.Equal(t, []string{"C", "B"}, c.Names())
}

func TestUpdateVersionConflict(t *testing.T) {
	c := seeded(t, "Home")
	before, _ := c.Get("Home")

	incoming := before.Clone()
	incoming.SearchEngine = "https://duckduckgo.com/?q={}"
	incoming.Version = "stale"

	_, updated, err := c.Update(incoming)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
	assert.False(t, updated)

	after, _ := c.Get("Home")
	assert.Equal(t, before, after, "rejected update must leave the profile untouched")
}

func TestUpdateRegeneratesVersion(t *testing.T) {
	c := seeded(t, "Home")
	before, _ := c.Get("Home")

	incoming := before.Clone()
	incoming.Tags = []string{"work"}

	first, updated, err := c.Update(incoming)
	require.NoError(t, err)
	require.True(t, updated)
	assert.NotEqual(t, before.Version, first.Version)
	assert.Equal(t, []string{"work"}, first.Tags)

	// Absent version skips the check.
	incoming = first.Clone()
	incoming.Version = ""
	second, updated, err := c.Update(incoming)
	require.NoError(t, err)
	require.True(t, updated)
	assert.NotEqual(t, first.Version, second.Version)
	assert.NotEqual(t, before.Version, second.Version)
}

func TestUpdatePreservesBackgroundImages(t *testing.T) {
	c := seeded(t, "Home")
	img := domain.BackgroundImage{ID: uuid.New(), Filename: "a.png", Orientation: domain.Landscape}
	_, err := c.AddBackgroundImage("Home", img)
	require.NoError(t, err)
	before, _ := c.Get("Home")

	incoming := before.Clone()
	incoming.BackgroundImages = []domain.BackgroundImage{{ID: uuid.New(), Filename: "evil.png"}}

	got, _, err := c.Update(incoming)
	require.NoError(t, err)
	assert.Equal(t, before.BackgroundImages, got.BackgroundImages)

	incoming = got.Clone()
	incoming.BackgroundImages = nil
	got, _, err = c.Update(incoming)
	require.NoError(t, err)
	assert.Equal(t, before.BackgroundImages, got.BackgroundImages)
}

func TestUpdateUnknownIsNoop(t *testing.T) {
	c := seeded(t, "Home")
	before := c.Snapshot()

	_, updated, err := c.Update(named("Ghost"))
	require.NoError(t, err)
	assert.False(t, updated)
	assert.Equal(t, before, c.Snapshot())
}

func TestReorder(t *testing.T) {
	c := seeded(t, "A", "B", "C")

	assert.ErrorIs(t, c.Reorder([]string{"A", "B"}), domain.ErrInvalidOrder)
	assert.ErrorIs(t, c.Reorder([]string{"A", "B", "X"}), domain.ErrInvalidOrder)
	assert.ErrorIs(t, c.Reorder([]string{"A", "A", "B"}), domain.ErrInvalidOrder)
	assert.Equal(t, []string{"A", "B", "C"}, c.Names())

	require.NoError(t, c.Reorder([]string{"C", "A", "B"}))
	assert.Equal(t, []string{"C", "A", "B"}, c.Names())
}

func TestBackgroundImages(t *testing.T) {
	c := seeded(t, "Home")
	before, _ := c.Get("Home")
	img := domain.BackgroundImage{ID: uuid.New(), Filename: "x.jpg", Orientation: domain.Portrait}

	_, err := c.AddBackgroundImage("Missing", img)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)

	v1, err := c.AddBackgroundImage("Home", img)
	require.NoError(t, err)
	assert.NotEqual(t, before.Version, v1)

	_, _, err = c.RemoveBackgroundImage("Home", uuid.New())
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	removed, v2, err := c.RemoveBackgroundImage("Home", img.ID)
	require.NoError(t, err)
	assert.Equal(t, img, removed)
	assert.NotEqual(t, v1, v2)

	after, _ := c.Get("Home")
	assert.Empty(t, after.BackgroundImages)
}

func TestSetBookmarkIcon(t *testing.T) {
	c := seeded(t, "Home")
	p, _ := c.Get("Home")
	id := uuid.New()
	p.Bookmarks = []domain.Bookmark{{ID: id, Title: "Go", URL: "https://go.dev"}}
	_, _, err := c.Update(p)
	require.NoError(t, err)

	_, _, err = c.SetBookmarkIcon(uuid.New(), "x.png")
	assert.ErrorIs(t, err, domain.ErrBookmarkNotFound)

	prev, version, err := c.SetBookmarkIcon(id, id.String()+".png")
	require.NoError(t, err)
	assert.Empty(t, prev)
	assert.NotEmpty(t, version)

	b, ok := c.FindBookmark(id)
	require.True(t, ok)
	assert.Equal(t, id.String()+".png", b.Icon)
}

func TestImportBookmarks(t *testing.T) {
	c := seeded(t, "Home")
	before, _ := c.Get("Home")

	n, version, err := c.ImportBookmarks("Home", []domain.Bookmark{
		{Title: "Go", URL: "https://go.dev", Tags: []string{"dev"}},
		{Title: "Go again", URL: "https://go.dev"},
		{Title: "No URL"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NotEqual(t, before.Version, version)

	p, _ := c.Get("Home")
	require.Len(t, p.Bookmarks, 1)
	assert.NotEqual(t, uuid.Nil, p.Bookmarks[0].ID)
	assert.Equal(t, []string{"dev"}, p.Tags)

	n, same, err := c.ImportBookmarks("Home", []domain.Bookmark{{Title: "Go", URL: "https://go.dev"}})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, version, same)
}
