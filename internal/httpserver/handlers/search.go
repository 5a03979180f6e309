package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/startpage/internal/domain"
	"github.com/MrSnakeDoc/startpage/internal/httpserver/deps"
	"github.com/MrSnakeDoc/startpage/internal/logger"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 100
)

type searchResponse struct {
	Query   string                 `json:"query"`
	Profile string                 `json:"profile"`
	Results []domain.BookmarkMatch `json:"results"`
}

// Search ranks the profile's bookmarks against ?q. With ?redirect=1 it
// jumps straight to the best match, or to the profile's search engine when
// nothing matches.
func Search(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query := strings.TrimSpace(q.Get("q"))

		limit := defaultSearchLimit
		if raw := q.Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			limit = min(n, maxSearchLimit)
		}

		p, err := d.Storage.Profile(q.Get("profile"))
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		var results []domain.BookmarkMatch
		if query != "" {
			results = domain.RankBookmarks(query, p.Bookmarks, limit)
		} else {
			results = []domain.BookmarkMatch{}
		}

		d.Logger.Debug("search request",
			logger.String("query", query),
			logger.String("profile", p.Name),
			logger.Int("results", len(results)))

		if wantsRedirect(q.Get("redirect")) {
			http.Redirect(w, r, redirectTarget(query, p, results), http.StatusFound)
			return
		}

		writeJSON(w, http.StatusOK, searchResponse{
			Query:   query,
			Profile: p.Name,
			Results: results,
		})
	}
}

func wantsRedirect(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// redirectTarget picks the best match or falls back to the search engine
// template, with {} replaced by the escaped query.
func redirectTarget(query string, p domain.Profile, results []domain.BookmarkMatch) string {
	if len(results) > 0 {
		return results[0].Bookmark.URL
	}
	engine := p.SearchEngine
	if engine == "" {
		engine = domain.DefaultSearchEngine
	}
	return strings.ReplaceAll(engine, "{}", url.QueryEscape(query))
}
