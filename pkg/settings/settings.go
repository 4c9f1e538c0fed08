// Package settings provides build metadata, runtime configuration, and
// context helpers used across the filtx CLI and library packages.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "filtx"

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// SchemaSource holds configuration options for determining where the filter
// schema comes from. It specifies whether the schema is supplied by an
// embedding host or loaded from a file given on the command line.
type SchemaSource struct {
	FromHost bool
	FromCli  bool
	Path     string
}

// VersionInfo holds metadata about the build, including the commit hash,
// build version, and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds configuration settings for a single execution of the application.
// It includes options for logging, schema source configuration, output
// formatting, and error handling behavior.
type Run struct {
	MinLogLevel  int8
	SchemaSource SchemaSource
	IsQuiet      bool
	NoColor      bool
	ExitOnError  bool
}

// NewCliParams initializes and returns a pointer to a Run struct with default
// CLI parameters. It sets logging level to 0, configures the schema source for
// CLI usage, and sets default flags for quiet mode, color output, and error
// handling.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		SchemaSource: SchemaSource{
			FromHost: false,
			FromCli:  true,
		},
		IsQuiet:     false,
		NoColor:     false,
		ExitOnError: true,
	}
}
