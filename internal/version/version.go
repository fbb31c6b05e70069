package version

import "fmt"

// Version is set via build-time ldflags in release builds:
// go build -ldflags "-X github.com/kota65535/javadoc-merger-maven-plugin/internal/version.Version=v1.2.0".
var Version = "unknown"

// Build metadata, also injected through ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by --version.
func String() string {
	return fmt.Sprintf("apidocmerge %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
