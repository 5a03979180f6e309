// Package homepage imports bookmarks from gethomepage.dev configuration
// files (bookmarks.yaml and services.yaml).
package homepage

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/startpage/internal/domain"
)

// Kind selects which Homepage file layout to parse.
type Kind string

const (
	KindBookmarks Kind = "bookmarks"
	KindServices  Kind = "services"
)

// ParseKind accepts "bookmarks" (the default for an empty string) or
// "services".
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "", KindBookmarks:
		return KindBookmarks, nil
	case KindServices:
		return KindServices, nil
	default:
		return "", fmt.Errorf("unknown homepage file kind %q: %w", s, domain.ErrBadRequest)
	}
}

var templateVar = regexp.MustCompile(`\{\{[^}]+\}\}`)

// Parse decodes a Homepage YAML document into bookmarks. A document without
// a single usable entry is rejected with ErrBadRequest.
func Parse(kind Kind, data []byte) ([]domain.Bookmark, error) {
	// Strip Homepage template variables ({{HOMEPAGE_VAR_...}})
	data = stripTemplateVariables(data)

	var (
		bookmarks []domain.Bookmark
		err       error
	)
	switch kind {
	case KindBookmarks:
		var cfg BookmarksConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse bookmarks yaml: %v: %w", err, domain.ErrBadRequest)
		}
		bookmarks, err = MapBookmarks(cfg)
	case KindServices:
		var cfg ServicesConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse services yaml: %v: %w", err, domain.ErrBadRequest)
		}
		bookmarks, err = MapServices(cfg)
	default:
		return nil, fmt.Errorf("unknown homepage file kind %q: %w", kind, domain.ErrBadRequest)
	}
	if err != nil {
		return nil, err
	}
	return bookmarks, nil
}

// LoadFile reads and parses a Homepage file from disk.
func LoadFile(kind Kind, path string) ([]domain.Bookmark, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s file: %w", kind, err)
	}
	return Parse(kind, data)
}

// stripTemplateVariables removes Homepage template variables from YAML
// Example: {{HOMEPAGE_VAR_ADGUARD_USER}} -> ""
func stripTemplateVariables(data []byte) []byte {
	return templateVar.ReplaceAll(data, []byte(`""`))
}
