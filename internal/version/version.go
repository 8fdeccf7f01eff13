// Package version carries build identity, overridable at link time.
package version

var (
	// Version is the semantic release version.
	Version = "0.1.0"

	// GitCommit is set via -ldflags at build time.
	GitCommit = ""
)

// Full returns the version with the commit suffix when known.
func Full() string {
	if GitCommit == "" {
		return Version
	}
	return Version + " (" + GitCommit + ")"
}
