package domain

import (
	"net/url"
	"sort"
	"strings"
)

const (
	// Scoring weights
	ScoreExactMatch     = 100.0
	ScorePrefixMatch    = 75.0
	ScoreSubstringMatch = 50.0
	ScoreFuzzyMatch     = 25.0

	// Earlier substring matches get up to this much extra
	ScorePositionBonus = 10.0

	// Tag hits count less than title hits
	ScoreTagWeight = 0.6
	// Host hits count less than tag hits
	ScoreHostWeight = 0.4
)

// BookmarkMatch is a bookmark with its search score.
type BookmarkMatch struct {
	Bookmark Bookmark `json:"bookmark"`
	Score    float64  `json:"score"`
}

// ScoreBookmark scores a bookmark against a query. Titles weigh the most,
// then tags, then the URL host. Zero means no match.
func ScoreBookmark(query string, b Bookmark) float64 {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return 0.0
	}

	best := scoreLabel(query, b.Title)
	if s := scoreLabel(query, b.SearchTitle); s > best {
		best = s
	}
	for _, tag := range b.Tags {
		if s := scoreLabel(query, tag) * ScoreTagWeight; s > best {
			best = s
		}
	}
	if s := scoreLabel(query, hostOf(b.URL)) * ScoreHostWeight; s > best {
		best = s
	}
	return best
}

// scoreLabel scores a normalized query against one label.
func scoreLabel(query, label string) float64 {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return 0.0
	}

	if query == label {
		return ScoreExactMatch
	}

	if strings.HasPrefix(label, query) {
		return ScorePrefixMatch
	}

	if idx := strings.Index(label, query); idx >= 0 {
		bonus := ScorePositionBonus * (1.0 - float64(idx)/float64(len(label)))
		return ScoreSubstringMatch + bonus
	}

	// Every query word somewhere in the label
	words := strings.Fields(query)
	if len(words) > 1 {
		all := true
		for _, w := range words {
			if !strings.Contains(label, w) {
				all = false
				break
			}
		}
		if all {
			return ScoreFuzzyMatch
		}
	}

	// Query characters appear in order ("gthb" finds "github")
	if isSubsequence(strings.ReplaceAll(query, " ", ""), label) {
		return ScoreFuzzyMatch * 0.8
	}

	return 0.0
}

func isSubsequence(needle, haystack string) bool {
	if needle == "" {
		return false
	}
	n := []rune(needle)
	i := 0
	for _, c := range haystack {
		if c == n[i] {
			i++
			if i == len(n) {
				return true
			}
		}
	}
	return false
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// RankBookmarks returns matching bookmarks, best first. Ties keep the
// profile order so results stay stable between calls.
func RankBookmarks(query string, bookmarks []Bookmark, limit int) []BookmarkMatch {
	matches := make([]BookmarkMatch, 0, len(bookmarks))
	for _, b := range bookmarks {
		score := ScoreBookmark(query, b)
		if score == 0.0 {
			continue
		}
		matches = append(matches, BookmarkMatch{Bookmark: b, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
