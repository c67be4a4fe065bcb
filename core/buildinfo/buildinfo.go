// Package buildinfo holds release metadata stamped in at link time:
//
//	go build -ldflags "-X 'github.com/m3rciful/todobot/core/buildinfo.Version=v1.2.3' \
//	  -X 'github.com/m3rciful/todobot/core/buildinfo.Commit=abcdef0' \
//	  -X 'github.com/m3rciful/todobot/core/buildinfo.Date=2025-08-30T12:00:00Z'"
package buildinfo

var (
	// Version is the release tag.
	Version = "dev"
	// Commit is the source revision.
	Commit = "local"
	// Date is the RFC3339 build time; empty for local builds.
	Date = ""
)

// Short renders "version (commit)" for user-facing output.
func Short() string {
	if Commit == "" {
		return Version
	}
	c := Commit
	if len(c) > 7 {
		c = c[:7]
	}
	return Version + " (" + c + ")"
}
