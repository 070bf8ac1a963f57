// Package version reports the dayof build.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time via -ldflags "-X github.com/example/dayof/internal/version.Commit=...".
var (
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns the version line printed by `dayof --version`.
func String() string {
	commit, built := Commit, BuildTime
	if commit == "unknown" {
		commit, built = fromBuildInfo(built)
	}
	return fmt.Sprintf("dayof dev (commit: %s, built: %s)", short(commit), built)
}

// fromBuildInfo reads the VCS stamp go build embeds when ldflags were not set.
func fromBuildInfo(built string) (string, string) {
	commit := "unknown"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return commit, built
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			commit = s.Value
		case "vcs.time":
			if built == "unknown" {
				built = s.Value
			}
		}
	}
	return commit, built
}

func short(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
