// Package version holds build metadata set through -ldflags, e.g.
//
//	go build -ldflags "-X github.com/MrSnakeDoc/startpage/internal/version.Version=v1.2.0"
package version

import (
	"fmt"
	"runtime"
	"time"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = ""
)

// Info is a snapshot of the build metadata.
type Info struct {
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
}

// Get returns the build metadata. An unset build date reports the process
// start instead.
func Get() Info {
	built := BuildDate
	if built == "" {
		built = started
	}
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: built,
		GoVersion: runtime.Version(),
	}
}

var started = time.Now().UTC().Format(time.RFC3339)

func (i Info) String() string {
	return fmt.Sprintf("startpage %s (commit=%s, built=%s, go=%s)", i.Version, i.Commit, i.BuildDate, i.GoVersion)
}
