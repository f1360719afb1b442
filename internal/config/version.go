package config

// Version information (set via -ldflags during build)
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// FullVersion returns the version with its commit.
func FullVersion() string {
	return Version + " (commit: " + GitCommit + ")"
}
