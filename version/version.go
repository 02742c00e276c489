// Package version holds build information, populated via ldflags
package version

import "fmt"

var (
	// Version is the semantic version, set at build time
	Version = "dev"
	// Commit is the git commit hash, set at build time
	Commit = "unknown"
	// Date is the build date, set at build time
	Date = "unknown"
)

// Info describes the build
type Info struct {
	Version string
	Commit  string
	Date    string
}

// Get returns the current build information
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

func (i Info) String() string {
	return fmt.Sprintf("glb2step %s (commit %s, built %s)", i.Version, i.Commit, i.Date)
}
