package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/MrSnakeDoc/startpage/internal/domain"
	"github.com/MrSnakeDoc/startpage/internal/httpserver/deps"
	"github.com/MrSnakeDoc/startpage/internal/sources/homepage"
)

// GetProfile returns the profile named by ?profile, falling back to the
// first profile when the name is missing or unknown.
func GetProfile(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := d.Storage.Profile(r.URL.Query().Get("profile"))
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func CreateProfile(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p domain.Profile
		if err := decodeJSON(w, r, &p); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		if p.Name == "" {
			writeError(w, r, d.Logger, fmt.Errorf("profile name is required: %w", domain.ErrBadRequest))
			return
		}
		if err := d.Storage.CreateProfile(p); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// UpdateProfile replaces a profile. The response is the stored result;
// an update naming an unknown profile is accepted and does nothing.
func UpdateProfile(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p domain.Profile
		if err := decodeJSON(w, r, &p); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		updated, err := d.Storage.UpdateProfile(p)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		if updated.Name == "" {
			w.WriteHeader(http.StatusOK)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteProfile(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("profile")
		if name == "" {
			writeError(w, r, d.Logger, fmt.Errorf("profile is required: %w", domain.ErrBadRequest))
			return
		}
		if err := d.Storage.DeleteProfile(name); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

type renameRequest struct {
	Name    string `json:"name"`
	NewName string `json:"new_name"`
}

// RenameProfile answers {"version": null} when the old name is unknown.
func RenameProfile(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req renameRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		if req.NewName == "" {
			writeError(w, r, d.Logger, fmt.Errorf("new_name is required: %w", domain.ErrBadRequest))
			return
		}
		version, err := d.Storage.RenameProfile(req.Name, req.NewName)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, newVersionResponse(version))
	}
}

func ProfileNames(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Storage.ProfileNames())
	}
}

// SortProfiles takes the complete list of names in the wanted order.
func SortProfiles(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var names []string
		if err := decodeJSON(w, r, &names); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		if err := d.Storage.ReorderProfiles(names); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

type importResponse struct {
	Imported int     `json:"imported"`
	Version  *string `json:"version"`
}

// ImportProfile merges a Homepage bookmarks.yaml (or services.yaml with
// ?kind=services) posted as the request body into ?profile, or into the
// first profile when none is named.
func ImportProfile(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		kind, err := homepage.ParseKind(q.Get("kind"))
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
		if err != nil {
			writeError(w, r, d.Logger, fmt.Errorf("%w: %v", domain.ErrBadRequest, err))
			return
		}
		bookmarks, err := homepage.Parse(kind, body)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		name := q.Get("profile")
		if name == "" {
			fallback, err := d.Storage.Profile("")
			if err != nil {
				writeError(w, r, d.Logger, err)
				return
			}
			name = fallback.Name
		}
		added, version, err := d.Storage.ImportBookmarks(name, bookmarks)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, importResponse{
			Imported: added,
			Version:  newVersionResponse(version).Version,
		})
	}
}
