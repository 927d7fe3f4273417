// Package version holds build metadata injected via ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Set at build time with -ldflags "-X github.com/Norgate-AV/xcb/internal/version.Version=..."
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// String returns the one line version banner
func String() string {
	return fmt.Sprintf("%s (%s) %s %s/%s", Version, Commit, BuildTime, runtime.GOOS, runtime.GOARCH)
}
