// Package version holds build metadata injected via ldflags:
//
//	-X github.com/kailas-cloud/docintel/internal/version.Version=v1.2.0
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the metadata for `docintel version`.
func String() string {
	return fmt.Sprintf("docintel %s (commit %s, built %s)", Version, Commit, Date)
}

// IsRelease reports whether the binary was stamped with a version.
func IsRelease() bool {
	return Version != "dev"
}
