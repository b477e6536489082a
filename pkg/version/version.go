// Package version exposes the build version string.
package version

// Version is the application version, overridable at build time with
// -ldflags "-X hihimaps/pkg/version.Version=...".
var Version = "1.0"
