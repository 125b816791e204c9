package p2p

import (
	"fmt"
	"runtime"
)

var (
	// Version is the library semantic version (injected at build time optionally).
	Version = "v1.0.0"
	// GitCommit is the git SHA (inject via -ldflags at build time).
	GitCommit = "unknown"
	// GoVersion records the Go toolchain version used.
	GoVersion = runtime.Version()
)

func userAgent() string {
	return fmt.Sprintf("p2p-go/%s", Version)
}

// GetVersion returns a human-readable version string.
func GetVersion() string {
	return fmt.Sprintf("p2p-go %s (commit: %s, go: %s)", Version, GitCommit, GoVersion)
}
