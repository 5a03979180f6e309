package redis

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client), mr
}

func TestFaviconKey(t *testing.T) {
	k := FaviconKey("https://example.com")
	assert.True(t, strings.HasPrefix(k, KeyPrefixFavicon))
	assert.Len(t, k, len(KeyPrefixFavicon)+64)
	assert.Equal(t, k, FaviconKey("  https://example.com "))
	assert.NotEqual(t, k, FaviconKey("https://example.org"))
}

func TestFaviconRoundTrip(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.GetFavicon(ctx, "https://example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SaveFavicon(ctx, "https://example.com", []byte(`{"icons":[]}`), time.Minute))

	data, ok, err := s.GetFavicon(ctx, "https://example.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"icons":[]}`, string(data))

	mr.FastForward(2 * time.Minute)
	_, ok, err = s.GetFavicon(ctx, "https://example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveFaviconDefaultTTL(t *testing.T) {
	s, mr := newTestStore(t)
	require.NoError(t, s.SaveFavicon(context.Background(), "https://example.com", []byte("x"), 0))
	assert.Equal(t, DefaultFaviconTTL, mr.TTL(FaviconKey("https://example.com")))
}

func TestInvalidateAndFlush(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	for _, u := range []string{"https://a.example", "https://b.example", "https://c.example"} {
		require.NoError(t, s.SaveFavicon(ctx, u, []byte("x"), time.Hour))
	}
	require.NoError(t, mr.Set("unrelated", "keep"))

	require.NoError(t, s.InvalidateFavicon(ctx, "https://a.example"))
	_, ok, err := s.GetFavicon(ctx, "https://a.example")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := s.FlushFavicons(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, mr.Exists("unrelated"))
}

func TestGetFaviconSurfacesErrors(t *testing.T) {
	s, mr := newTestStore(t)
	mr.SetError("LOADING")

	_, _, err := s.GetFavicon(context.Background(), "https://example.com")
	assert.Error(t, err)
	assert.Error(t, s.Ping(context.Background()))
}
