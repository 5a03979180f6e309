package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrSnakeDoc/startpage/internal/domain"
	"github.com/MrSnakeDoc/startpage/internal/logger"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func openAt(t *testing.T, dir string, c *clock) *Storage {
	t.Helper()
	s, err := Open(Options{
		Dir:             dir,
		DefaultUsername: "admin",
		DefaultPassword: "admin",
		Logger:          logger.NewNop(),
		Now:             c.Now,
	})
	require.NoError(t, err)
	return s
}

func writeConfig(t *testing.T, dir string, cfg domain.Config) {
	t.Helper()
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), data, 0o644))
}

func enabledConfig(password string, secs int64) domain.Config {
	cfg := domain.NewDefaultConfig("alice", password)
	cfg.Auth.Enabled = true
	cfg.Auth.SessionDurationSecs = secs
	return cfg
}

func TestOpenSeedsDefaults(t *testing.T) {
	dir := t.TempDir()
	s := openAt(t, dir, newClock())

	for _, name := range []string{ConfigFile, ProfilesFile, SessionsFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	cfg := s.Config()
	assert.Equal(t, "admin", cfg.Auth.Username)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, int64(domain.DefaultSessionDurationSecs), cfg.Auth.SessionDurationSecs)

	assert.Equal(t, []string{domain.DefaultProfileName}, s.ProfileNames())

	raw, err := os.ReadFile(filepath.Join(dir, SessionsFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{"sessions":{}}`, string(raw))
}

func TestOpenRequiresDirAndLogger(t *testing.T) {
	_, err := Open(Options{Logger: logger.NewNop()})
	assert.Error(t, err)

	_, err = Open(Options{Dir: t.TempDir()})
	assert.Error(t, err)
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProfilesFile), []byte("{not json"), 0o644))

	_, err := Open(Options{Dir: dir, Logger: logger.NewNop()})
	assert.ErrorContains(t, err, ProfilesFile)
}

func TestProfileFallbackAndVersionBackfill(t *testing.T) {
	dir := t.TempDir()
	legacy := `[{"name":"Work","bookmarks":[],"tags":[],"search_engine":"https://duckduckgo.com/?q={}"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProfilesFile), []byte(legacy), 0o644))

	s := openAt(t, dir, newClock())

	p, err := s.Profile("Missing")
	require.NoError(t, err)
	assert.Equal(t, "Work", p.Name)
	assert.NotEmpty(t, p.Version)

	// The generated version is persisted and stable.
	again, err := s.Profile("Work")
	require.NoError(t, err)
	assert.Equal(t, p.Version, again.Version)

	var onDisk []domain.Profile
	raw, err := os.ReadFile(filepath.Join(dir, ProfilesFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	assert.Equal(t, p.Version, onDisk[0].Version)
}

func TestProfileSeedsDefaultWhenEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProfilesFile), []byte(`[]`), 0o644))

	s := openAt(t, dir, newClock())

	p, err := s.Profile("")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultProfileName, p.Name)
	assert.Equal(t, []string{domain.DefaultProfileName}, s.ProfileNames())
}

func TestCreateDeleteProfile(t *testing.T) {
	s := openAt(t, t.TempDir(), newClock())

	require.NoError(t, s.CreateProfile(domain.Profile{Name: "Work"}))
	assert.ErrorIs(t, s.CreateProfile(domain.Profile{Name: "Work"}), domain.ErrAlreadyExists)
	assert.Equal(t, []string{domain.DefaultProfileName, "Work"}, s.ProfileNames())

	p, err := s.Profile("Work")
	require.NoError(t, err)
	assert.NotEmpty(t, p.Version)

	require.NoError(t, s.DeleteProfile(domain.DefaultProfileName))
	assert.ErrorIs(t, s.DeleteProfile("Work"), domain.ErrCannotDeleteLast)
	assert.Equal(t, []string{"Work"}, s.ProfileNames())
}

func TestUpdateProfileVersionCheck(t *testing.T) {
	s := openAt(t, t.TempDir(), newClock())

	current, err := s.Profile("")
	require.NoError(t, err)

	edit := current
	edit.Tags = []string{"dev"}
	updated, err := s.UpdateProfile(edit)
	require.NoError(t, err)
	assert.NotEqual(t, current.Version, updated.Version)
	assert.Equal(t, []string{"dev"}, updated.Tags)

	// A second writer holding the old version loses.
	stale := current
	stale.Tags = []string{"ops"}
	_, err = s.UpdateProfile(stale)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)

	after, err := s.Profile("")
	require.NoError(t, err)
	assert.Equal(t, updated.Version, after.Version)
	assert.Equal(t, []string{"dev"}, after.Tags)
}

func TestRenameAndReorder(t *testing.T) {
	s := openAt(t, t.TempDir(), newClock())
	require.NoError(t, s.CreateProfile(domain.Profile{Name: "Work"}))

	v, err := s.RenameProfile("Work", "Office")
	require.NoError(t, err)
	assert.NotEmpty(t, v)

	_, err = s.RenameProfile("Office", domain.DefaultProfileName)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	v, err = s.RenameProfile("Nope", "Other")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.ReorderProfiles([]string{"Office", domain.DefaultProfileName}))
	assert.Equal(t, []string{"Office", domain.DefaultProfileName}, s.ProfileNames())

	assert.ErrorIs(t, s.ReorderProfiles([]string{"Office"}), domain.ErrInvalidOrder)
	assert.ErrorIs(t, s.ReorderProfiles([]string{"Office", "Ghost"}), domain.ErrInvalidOrder)
	assert.Equal(t, []string{"Office", domain.DefaultProfileName}, s.ProfileNames())
}

func TestLoginDisabled(t *testing.T) {
	s := openAt(t, t.TempDir(), newClock())

	res, err := s.Login("whoever", "whatever")
	require.NoError(t, err)
	assert.False(t, res.Enabled)
	assert.Empty(t, res.SessionID)
	assert.Equal(t, 0, s.Stats().Sessions)

	auth, err := s.Authenticate("")
	require.NoError(t, err)
	assert.True(t, auth.Admitted)
}

func TestLoginAndSlidingSession(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, enabledConfig("secret", 60))
	c := newClock()
	s := openAt(t, dir, c)

	_, err := s.Login("alice", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	res, err := s.Login("alice", "secret")
	require.NoError(t, err)
	require.NotEmpty(t, res.SessionID)
	assert.Equal(t, int64(60), res.MaxAge)

	// Touching the session every 50s keeps it alive well past 60s.
	for i := 0; i < 3; i++ {
		c.Advance(50 * time.Second)
		auth, err := s.Authenticate(res.SessionID)
		require.NoError(t, err)
		assert.True(t, auth.Admitted, "touch %d", i)
	}

	c.Advance(61 * time.Second)
	auth, err := s.Authenticate(res.SessionID)
	require.NoError(t, err)
	assert.False(t, auth.Admitted)
	assert.Equal(t, 0, s.Stats().Sessions)

	auth, err = s.Authenticate("")
	require.NoError(t, err)
	assert.False(t, auth.Admitted)
}

func TestLoginWithBcryptPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	dir := t.TempDir()
	writeConfig(t, dir, enabledConfig(string(hash), 60))
	s := openAt(t, dir, newClock())

	_, err = s.Login("alice", string(hash))
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	res, err := s.Login("alice", "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, res.SessionID)
}

func TestLogout(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, enabledConfig("secret", 60))
	s := openAt(t, dir, newClock())

	res, err := s.Login("alice", "secret")
	require.NoError(t, err)

	require.NoError(t, s.Logout(res.SessionID))
	require.NoError(t, s.Logout(res.SessionID))
	require.NoError(t, s.Logout(""))

	auth, err := s.Authenticate(res.SessionID)
	require.NoError(t, err)
	assert.False(t, auth.Admitted)
}

func TestReloadDropsExpiredSessions(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, enabledConfig("secret", 60))
	c := newClock()
	s := openAt(t, dir, c)

	short, err := s.Login("alice", "secret")
	require.NoError(t, err)
	c.Advance(40 * time.Second)
	long, err := s.Login("alice", "secret")
	require.NoError(t, err)

	require.NoError(t, s.CreateProfile(domain.Profile{Name: "Work", Tags: []string{"dev"}}))
	before, err := s.Profile("Work")
	require.NoError(t, err)
	require.NoError(t, s.SaveAll())

	// 70s after the first login: the first session is gone, the second lives.
	c.Advance(30 * time.Second)
	reopened := openAt(t, dir, c)

	assert.Equal(t, 1, reopened.Stats().Sessions)
	auth, err := reopened.Authenticate(short.SessionID)
	require.NoError(t, err)
	assert.False(t, auth.Admitted)
	auth, err = reopened.Authenticate(long.SessionID)
	require.NoError(t, err)
	assert.True(t, auth.Admitted)

	after, err := reopened.Profile("Work")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestImportBookmarks(t *testing.T) {
	s := openAt(t, t.TempDir(), newClock())
	start, err := s.Profile("")
	require.NoError(t, err)

	bms := []domain.Bookmark{
		{Title: "Go", URL: "https://go.dev", Tags: []string{"dev"}},
		{Title: "Go again", URL: "https://go.dev"},
	}
	added, version, err := s.ImportBookmarks(domain.DefaultProfileName, bms)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.NotEqual(t, start.Version, version)

	added, again, err := s.ImportBookmarks(domain.DefaultProfileName, bms)
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Equal(t, version, again)

	_, _, err = s.ImportBookmarks("Ghost", bms)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestBackgroundImages(t *testing.T) {
	dir := t.TempDir()
	s := openAt(t, dir, newClock())

	img, version, err := s.AddBackgroundImage(domain.DefaultProfileName, Asset{
		Data:        []byte("fake-png"),
		Ext:         "png",
		Orientation: domain.Landscape,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, version)
	assert.Equal(t, img.ID.String()+".png", img.Filename)

	path := filepath.Join(s.AssetsDir(), BackgroundsDir, img.Filename)
	assert.FileExists(t, path)

	list, err := s.BackgroundImages(domain.DefaultProfileName)
	require.NoError(t, err)
	assert.Equal(t, []domain.BackgroundImage{img}, list)

	_, _, err = s.AddBackgroundImage("Ghost", Asset{Data: []byte("x"), Ext: "png"})
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
	_, _, err = s.AddBackgroundImage(domain.DefaultProfileName, Asset{Data: []byte("x"), Ext: "../png"})
	assert.ErrorIs(t, err, domain.ErrInvalidImageFormat)

	_, err = s.DeleteBackgroundImage(domain.DefaultProfileName, uuid.New())
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	next, err := s.DeleteBackgroundImage(domain.DefaultProfileName, img.ID)
	require.NoError(t, err)
	assert.NotEqual(t, version, next)
	assert.NoFileExists(t, path)

	list, err = s.BackgroundImages(domain.DefaultProfileName)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateProfileKeepsBackgroundImages(t *testing.T) {
	s := openAt(t, t.TempDir(), newClock())

	img, version, err := s.AddBackgroundImage(domain.DefaultProfileName, Asset{Data: []byte("x"), Ext: "jpg"})
	require.NoError(t, err)

	p, err := s.Profile("")
	require.NoError(t, err)
	require.Equal(t, version, p.Version)

	p.BackgroundImages = nil
	updated, err := s.UpdateProfile(p)
	require.NoError(t, err)
	assert.Equal(t, []domain.BackgroundImage{img}, updated.BackgroundImages)
}

func TestSetBookmarkIcon(t *testing.T) {
	s := openAt(t, t.TempDir(), newClock())

	id := uuid.New()
	_, _, err := s.ImportBookmarks(domain.DefaultProfileName, []domain.Bookmark{
		{ID: id, Title: "Go", URL: "https://go.dev"},
	})
	require.NoError(t, err)

	v1, err := s.SetBookmarkIcon(id, Asset{Data: []byte("png"), Ext: "png"})
	require.NoError(t, err)
	pngPath := filepath.Join(s.AssetsDir(), IconsDir, id.String()+".png")
	assert.FileExists(t, pngPath)

	v2, err := s.SetBookmarkIcon(id, Asset{Data: []byte("svg"), Ext: "svg"})
	require.NoError(t, err)
	assert.NotEqual(t, v1, v2)
	assert.NoFileExists(t, pngPath)
	assert.FileExists(t, filepath.Join(s.AssetsDir(), IconsDir, id.String()+".svg"))

	p, err := s.Profile("")
	require.NoError(t, err)
	require.Len(t, p.Bookmarks, 1)
	assert.Equal(t, id.String()+".svg", p.Bookmarks[0].Icon)
	assert.Equal(t, v2, p.Version)

	_, err = s.SetBookmarkIcon(uuid.New(), Asset{Data: []byte("png"), Ext: "png"})
	assert.ErrorIs(t, err, domain.ErrBookmarkNotFound)
}

func TestWriteFailureSurfaces(t *testing.T) {
	dir := t.TempDir()
	s := openAt(t, dir, newClock())

	// A non-empty directory in place of the file makes the rename fail.
	target := filepath.Join(dir, ProfilesFile)
	require.NoError(t, os.Remove(target))
	require.NoError(t, os.MkdirAll(filepath.Join(target, "blocker"), 0o755))

	err := s.CreateProfile(domain.Profile{Name: "Work"})
	assert.ErrorContains(t, err, ProfilesFile)
	assert.Error(t, s.SaveAll())
}

func TestConcurrentMutationsSerialize(t *testing.T) {
	dir := t.TempDir()
	s := openAt(t, dir, newClock())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := s.ImportBookmarks(domain.DefaultProfileName, []domain.Bookmark{
				{Title: "b", URL: "https://example.com/" + uuid.NewString()},
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	p, err := s.Profile("")
	require.NoError(t, err)
	assert.Len(t, p.Bookmarks, 20)

	var onDisk []domain.Profile
	raw, err := os.ReadFile(filepath.Join(dir, ProfilesFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	assert.Len(t, onDisk[0].Bookmarks, 20)
}

func TestSweepSessions(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, enabledConfig("secret", 60))
	c := newClock()
	s := openAt(t, dir, c)

	_, err := s.Login("alice", "secret")
	require.NoError(t, err)
	c.Advance(45 * time.Second)
	kept, err := s.Login("alice", "secret")
	require.NoError(t, err)

	removed, err := s.SweepSessions()
	require.NoError(t, err)
	assert.Zero(t, removed)

	c.Advance(30 * time.Second)
	removed, err = s.SweepSessions()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	var onDisk struct {
		Sessions map[string]json.RawMessage `json:"sessions"`
	}
	data, err := os.ReadFile(filepath.Join(dir, SessionsFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Len(t, onDisk.Sessions, 1)
	assert.Contains(t, onDisk.Sessions, kept.SessionID)
}
