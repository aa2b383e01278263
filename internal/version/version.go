// Package version holds the build version for tixmail.
package version

import "runtime/debug"

// Version is set at build time via -ldflags.
var Version = "dev"

// Commit is the git commit SHA, set at build time via -ldflags.
var Commit = ""

// FullVersion returns the version string with commit if available.
// Format: "vX.Y.Z (commit <shortsha>)". Binaries built with `go install`
// report their module version when -ldflags were not used.
func FullVersion() string {
	v := Version
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	if Commit != "" {
		return v + " (commit " + Commit + ")"
	}
	return v
}
