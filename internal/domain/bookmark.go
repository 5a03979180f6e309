package domain

import "github.com/google/uuid"

// Bookmark is a single link on a profile's start page.
// Bookmarks have no lifecycle of their own: they live and die with the
// profile that contains them.
type Bookmark struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	// ID is chosen by the client and also names the icon file.
	ID uuid.UUID `json:"id"`

	// Title is what the card shows.
	Title string `json:"title"`

	// SearchTitle is an alternative label used by the search box.
	SearchTitle string `json:"search_title,omitempty"`

	// ─────────────────────────────
	// Targets
	// ─────────────────────────────

	URL string `json:"url"`

	// IntranetURL is opened instead of URL when the profile's
	// intranet check succeeds on the client.
	IntranetURL string `json:"intranet_url,omitempty"`

	// SearchURL overrides the profile search engine for this bookmark.
	SearchURL string `json:"search_url,omitempty"`

	// ─────────────────────────────
	// Presentation
	// ─────────────────────────────

	Tags []string `json:"tags"`

	// Icon is the filename of the icon under the icons asset directory.
	Icon string `json:"icon,omitempty"`
}

// Normalize replaces nil slices so the bookmark never serializes a null.
func (b *Bookmark) Normalize() {
	if b.Tags == nil {
		b.Tags = []string{}
	}
}

// Orientation of a background image, decided once at upload time.
type Orientation string

const (
	Landscape Orientation = "Landscape"
	Portrait  Orientation = "Portrait"
)

// OrientationFor returns Landscape when the image is strictly wider than tall.
func OrientationFor(width, height int) Orientation {
	if width > height {
		return Landscape
	}
	return Portrait
}

// BackgroundImage is an uploaded wallpaper owned by a profile.
type BackgroundImage struct {
	ID          uuid.UUID   `json:"id"`
	Filename    string      `json:"filename"`
	Orientation Orientation `json:"orientation"`
}
