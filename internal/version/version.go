// Package version exposes build metadata stamped at release time.
package version

// Overridden via -ldflags "-X" by the release build.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
