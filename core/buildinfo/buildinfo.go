package buildinfo

import "strings"

// Set via -ldflags at build time:
//
//	-X 'github.com/m3rciful/gamegate/core/buildinfo.Version=v1.2.3'
//	-X 'github.com/m3rciful/gamegate/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/gamegate/core/buildinfo.Date=2026-10-01T09:00:00Z'
var (
	Version = "dev"
	Commit  = "local"
	// Date is RFC3339; empty for local builds.
	Date = ""
)

// Info is the JSON shape served by the ops health endpoint.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date,omitempty"`
}

// Current returns the values baked into this binary.
func Current() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// String renders "version (commit, date)".
func (i Info) String() string {
	var b strings.Builder
	b.WriteString(i.Version)
	b.WriteString(" (")
	b.WriteString(i.Commit)
	if i.Date != "" {
		b.WriteString(", ")
		b.WriteString(i.Date)
	}
	b.WriteByte(')')
	return b.String()
}
