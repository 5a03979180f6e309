package homepage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/MrSnakeDoc/startpage/internal/domain"
)

const bookmarksYAML = `---
- Developer:
    - Github:
        - abbr: GH
          href: https://github.com/
    - Go Docs:
        - icon: go.png
          href: https://go.dev/doc
- Social:
    - Reddit:
        - abbr: RE
          href: https://reddit.com/
`

const servicesYAML = `---
- Infrastructure:
    - AdGuard Home:
        icon: adguard-home.svg
        href: https://adguard.domain.ext
        description: Network-wide ads & trackers blocking DNS server
    - Secret:
        href: {{HOMEPAGE_VAR_SECRET_URL}}
`

func TestParseBookmarks(t *testing.T) {
	bookmarks, err := Parse(KindBookmarks, []byte(bookmarksYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(bookmarks) != 3 {
		t.Fatalf("Parse() returned %d bookmarks, want 3", len(bookmarks))
	}

	gh := bookmarks[0]
	if gh.Title != "Github" || gh.SearchTitle != "GH" || gh.URL != "https://github.com/" {
		t.Errorf("first bookmark = %+v", gh)
	}
	if len(gh.Tags) != 1 || gh.Tags[0] != "Developer" {
		t.Errorf("first bookmark tags = %v, want [Developer]", gh.Tags)
	}

	docs := bookmarks[1]
	if docs.SearchTitle != "" {
		t.Errorf("SearchTitle = %q, want empty when no abbr", docs.SearchTitle)
	}
	if docs.Icon != "" {
		t.Errorf("Icon = %q, homepage icons are not imported", docs.Icon)
	}
}

func TestParseServicesStripsTemplates(t *testing.T) {
	bookmarks, err := Parse(KindServices, []byte(servicesYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(bookmarks) != 1 {
		t.Fatalf("Parse() returned %d bookmarks, want 1 (templated href skipped)", len(bookmarks))
	}
	if bookmarks[0].SearchTitle != "adguard" {
		t.Errorf("SearchTitle = %q, want adguard", bookmarks[0].SearchTitle)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		data string
	}{
		{"invalid yaml", KindBookmarks, "- : : :\n\t-"},
		{"wrong shape", KindBookmarks, "key: value"},
		{"no entries", KindServices, "[]"},
		{"unknown kind", Kind("widgets"), bookmarksYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.kind, []byte(tt.data))
			if !errors.Is(err, domain.ErrBadRequest) {
				t.Errorf("Parse() error = %v, want ErrBadRequest", err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks.yaml")
	if err := os.WriteFile(path, []byte(bookmarksYAML), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}

	bookmarks, err := LoadFile(KindBookmarks, path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(bookmarks) != 3 {
		t.Errorf("LoadFile() returned %d bookmarks, want 3", len(bookmarks))
	}

	if _, err := LoadFile(KindBookmarks, "/nonexistent/path/bookmarks.yaml"); err == nil {
		t.Error("LoadFile() with non-existent file should return error")
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"", KindBookmarks, false},
		{"Bookmarks", KindBookmarks, false},
		{" services ", KindServices, false},
		{"widgets", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKind(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStripTemplateVariablesFunc(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "single template variable",
			input:    []byte("url: {{HOMEPAGE_VAR_URL}}"),
			expected: "url: \"\"",
		},
		{
			name:     "no template variables",
			input:    []byte("plain text"),
			expected: "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := stripTemplateVariables(tt.input)
			if string(result) != tt.expected {
				t.Errorf("stripTemplateVariables() = %q, want %q", string(result), tt.expected)
			}
		})
	}
}
