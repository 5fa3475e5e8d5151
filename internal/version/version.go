// Package version carries build-time version information.
package version

// Set via -ldflags "-X github.com/lexhaus/lexchat/internal/version.Version=... ".
var (
	Version = "dev"
	Commit  = "unknown"
)
