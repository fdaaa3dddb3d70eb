package version

import (
	"fmt"
	"runtime/debug"
)

// These variables are set at build time via ldflags
var (
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns the version string (commit-hash based, no semver).
// Without ldflags the commit comes from the module's VCS build info.
func String() string {
	commit, built := Commit, BuildTime
	if commit == "unknown" {
		commit, built = fromBuildInfo(built)
	}
	return fmt.Sprintf("routecard dev (commit: %s, built: %s)", short(commit), built)
}

func fromBuildInfo(built string) (string, string) {
	commit := "unknown"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return commit, built
	}
	dirty := false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			commit = s.Value
		case "vcs.time":
			if built == "unknown" {
				built = s.Value
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if dirty && commit != "unknown" {
		commit = short(commit) + "-dirty"
	}
	return commit, built
}

func short(commit string) string {
	if len(commit) > 7 && commit[7] != '-' {
		return commit[:7]
	}
	return commit
}
