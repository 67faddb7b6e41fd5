// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Dashreel is the canonical application identifier used for filesystem paths and CLI branding.
	Dashreel = "dashreel"

	// Repository is the GitHub owner/name pair releases are published under.
	Repository = "dashreel/dashreel"

	// Version is the current application semantic version string.
	Version = "0.3.1"

	// UserAgent is the default HTTP User-Agent sent when resolving stream URLs.
	UserAgent = "dashreel/" + Version
)

// Build metadata, set with -ldflags at release time.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
