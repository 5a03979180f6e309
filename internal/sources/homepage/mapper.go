package homepage

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/MrSnakeDoc/startpage/internal/domain"
)

// MapBookmarks converts bookmarks.yaml entries. The category becomes the
// bookmark's tag and a non-empty abbr becomes its search title.
func MapBookmarks(cfg BookmarksConfig) ([]domain.Bookmark, error) {
	bookmarks := make([]domain.Bookmark, 0)

	for _, category := range cfg {
		for _, categoryName := range sortedKeys(category) {
			for _, bookmarkMap := range category[categoryName] {
				for _, name := range sortedKeys(bookmarkMap) {
					entries := bookmarkMap[name]
					// Each bookmark has a list with a single entry
					if len(entries) == 0 {
						continue
					}
					entry := entries[0]

					if !validHref(entry.Href) {
						continue
					}

					bookmarks = append(bookmarks, newBookmark(name, entry.Abbr, entry.Href, categoryName))
				}
			}
		}
	}

	if len(bookmarks) == 0 {
		return nil, fmt.Errorf("no valid bookmarks found in config: %w", domain.ErrBadRequest)
	}
	return bookmarks, nil
}

// MapServices converts services.yaml entries. The group becomes the tag and
// the first DNS label of the host becomes the search title.
func MapServices(cfg ServicesConfig) ([]domain.Bookmark, error) {
	bookmarks := make([]domain.Bookmark, 0)

	for _, groupMap := range cfg {
		for _, groupName := range sortedKeys(groupMap) {
			for _, serviceMap := range groupMap[groupName] {
				for _, serviceName := range sortedKeys(serviceMap) {
					props := serviceMap[serviceName]
					if !validHref(props.Href) {
						continue
					}

					parsed, _ := url.Parse(props.Href)
					short := extractServiceName(parsed.Hostname())

					bookmarks = append(bookmarks, newBookmark(serviceName, short, props.Href, groupName))
				}
			}
		}
	}

	if len(bookmarks) == 0 {
		return nil, fmt.Errorf("no valid services found in homepage config: %w", domain.ErrBadRequest)
	}
	return bookmarks, nil
}

// newBookmark leaves the id unset; the profile assigns one on import.
func newBookmark(title, searchTitle, href, tag string) domain.Bookmark {
	b := domain.Bookmark{
		Title: strings.TrimSpace(title),
		URL:   href,
		Tags:  []string{},
	}
	if st := strings.TrimSpace(searchTitle); st != "" && !strings.EqualFold(st, b.Title) {
		b.SearchTitle = st
	}
	if t := strings.TrimSpace(tag); t != "" {
		b.Tags = append(b.Tags, t)
	}
	return b
}

// validHref accepts absolute http(s) URLs only.
func validHref(href string) bool {
	if href == "" {
		return false
	}
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Hostname() != ""
}

// extractServiceName extracts the first DNS label as service name
// Example: "jellyfin.domain.ext" -> "jellyfin"
func extractServiceName(hostname string) string {
	parts := strings.Split(hostname, ".")
	if len(parts) > 0 {
		return parts[0]
	}
	return hostname
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
