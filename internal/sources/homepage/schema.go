package homepage

// BookmarksConfig is the root structure of bookmarks.yaml:
//
//	- Category:
//	    - Bookmark Name:
//	        - abbr: BN
//	          href: https://example.com
//
// Each bookmark name maps to a list holding a single entry.
type BookmarksConfig []map[string][]map[string][]BookmarkEntry

// BookmarkEntry represents a single bookmark entry in the YAML
type BookmarkEntry struct {
	Icon        string `yaml:"icon"`
	Abbr        string `yaml:"abbr"`
	Href        string `yaml:"href"`
	Description string `yaml:"description,omitempty"`
}

// ServicesConfig represents the top-level structure of services.yaml
// Homepage uses dynamic keys, so we parse as []map[string][]map[string]ServiceProps
type ServicesConfig []map[string][]map[string]ServiceProps

// ServiceProps contains the service properties we read. Widgets and
// monitors are ignored.
type ServiceProps struct {
	Href        string `yaml:"href"`
	Icon        string `yaml:"icon,omitempty"`
	Description string `yaml:"description,omitempty"`
}
