// Package version carries build metadata injected with ldflags:
//
//	go build -ldflags "-X git.home.luguber.info/inful/sitekit/internal/version.Version=v0.3.0"
package version

import "fmt"

// Version is the release version.
var Version = "dev"

// Build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String formats the version line printed by --version.
func String() string {
	return fmt.Sprintf("sitekit %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
