package redis

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	// KeyPrefixFavicon is the prefix for cached favicon lookups
	KeyPrefixFavicon = "startpage:favicon:"
)

// FaviconKey returns the Redis key for a page URL. The URL is hashed so
// arbitrary user input never ends up in a key verbatim.
func FaviconKey(pageURL string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(pageURL)))
	return KeyPrefixFavicon + hex.EncodeToString(sum[:])
}
