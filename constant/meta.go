// Package constant defines immutable application-level identifiers and build metadata.
package constant

const (
	// Playspan is the canonical application identifier used for filesystem paths and CLI branding.
	Playspan = "playspan"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// UserAgent is sent with every HTTP stream request.
	UserAgent = Playspan + "/" + Version
)

// Build metadata, overridden with -ldflags at release time.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
