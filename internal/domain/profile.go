package domain

import "github.com/google/uuid"

const (
	// DefaultProfileName is used for the profile seeded on first run.
	DefaultProfileName = "Default"
	// DefaultSearchEngine is a URL template; {} is replaced by the query.
	DefaultSearchEngine = "https://www.google.com/search?q={}"
)

// Profile is a named, independently addressable set of bookmarks.
//
// Version is an opaque token regenerated on every mutation. Clients echo
// it back on update so a stale copy cannot silently overwrite a newer one.
// An empty Version means "absent" and disables the check.
type Profile struct {
	// Name is unique across the store.
	Name string `json:"name"`

	Bookmarks []Bookmark `json:"bookmarks"`
	Tags      []string   `json:"tags"`

	// SearchEngine is a URL template with {} as the query placeholder.
	SearchEngine string `json:"search_engine"`

	// IntranetCheckURL is probed by the client to detect the intranet.
	IntranetCheckURL string `json:"intranet_check_url,omitempty"`

	// BackgroundImages are only changed through the dedicated upload and
	// delete operations, never through a whole-profile update.
	BackgroundImages []BackgroundImage `json:"background_images,omitempty"`

	Version string `json:"version,omitempty"`
}

// NewDefaultProfile returns the profile seeded when the store is empty.
func NewDefaultProfile() Profile {
	return Profile{
		Name:         DefaultProfileName,
		Bookmarks:    []Bookmark{},
		Tags:         []string{},
		SearchEngine: DefaultSearchEngine,
		Version:      NewVersion(),
	}
}

// NewVersion mints a fresh version token.
func NewVersion() string {
	return uuid.NewString()
}

// RegenerateVersion replaces the version after a mutation.
func (p *Profile) RegenerateVersion() {
	p.Version = NewVersion()
}

// EnsureVersion assigns a version to profiles written before versions
// existed. It reports whether a version was generated.
func (p *Profile) EnsureVersion() bool {
	if p.Version != "" {
		return false
	}
	p.RegenerateVersion()
	return true
}

// Normalize replaces nil slices so the profile never serializes a null.
func (p *Profile) Normalize() {
	if p.Bookmarks == nil {
		p.Bookmarks = []Bookmark{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	for i := range p.Bookmarks {
		p.Bookmarks[i].Normalize()
	}
}

// Clone returns a deep copy so callers never alias stored slices.
func (p Profile) Clone() Profile {
	out := p
	out.Bookmarks = make([]Bookmark, len(p.Bookmarks))
	for i, b := range p.Bookmarks {
		b.Tags = append([]string(nil), b.Tags...)
		if b.Tags == nil {
			b.Tags = []string{}
		}
		out.Bookmarks[i] = b
	}
	out.Tags = append([]string{}, p.Tags...)
	if p.BackgroundImages != nil {
		out.BackgroundImages = append([]BackgroundImage{}, p.BackgroundImages...)
	}
	return out
}
