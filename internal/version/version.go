// Package version carries the build stamp shown in the About dialog and
// the composetool version subcommand.
package version

// Overridden at build time via -ldflags "-X terrain-composer/internal/version.Version=...".
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
