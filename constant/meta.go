// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Playctl is the canonical application identifier used for filesystem paths and CLI branding.
	Playctl = "playctl"

	// Version is the current application semantic version string.
	Version = "0.1.0"

	// UserAgent is the default HTTP User-Agent string used for backend requests.
	UserAgent = "playctl/" + Version
)

// Build metadata, injected through -ldflags at release time.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
