package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultFaviconTTL applies when SaveFavicon is given a non-positive ttl.
const DefaultFaviconTTL = 24 * time.Hour

// SaveFavicon caches the encoded lookup result for pageURL.
func (s *Store) SaveFavicon(ctx context.Context, pageURL string, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultFaviconTTL
	}
	if err := s.client.Set(ctx, FaviconKey(pageURL), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache favicon: %w", err)
	}
	return nil
}

// GetFavicon returns the cached payload. A miss is (nil, false, nil).
func (s *Store) GetFavicon(ctx context.Context, pageURL string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, FaviconKey(pageURL)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cached favicon: %w", err)
	}
	return data, true, nil
}

// InvalidateFavicon removes one cached lookup.
func (s *Store) InvalidateFavicon(ctx context.Context, pageURL string) error {
	if err := s.client.Del(ctx, FaviconKey(pageURL)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate favicon: %w", err)
	}
	return nil
}

// FlushFavicons removes every cached lookup and returns how many keys went.
func (s *Store) FlushFavicons(ctx context.Context) (int, error) {
	removed := 0
	iter := s.client.Scan(ctx, 0, KeyPrefixFavicon+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, fmt.Errorf("failed to delete favicon key: %w", err)
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("failed to flush favicons: %w", err)
	}
	return removed, nil
}
