// Package buildinfo exposes the version stamped into augment binaries.
//
// The variables are overridden at link time:
//
//	go build -ldflags "-X github.com/matzehuels/augment/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/augment/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/augment/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/augment
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build information reported by the CLI and the health endpoint.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the current build information.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the version template for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (%s, built %s)\n", Version, Commit, Date)
}

// UserAgent identifies the server in HTTP responses, e.g. "augment/v0.3.0".
func UserAgent() string {
	return "augment/" + Version
}
