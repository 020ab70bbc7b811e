// Package cmd implements the tmg subcommands: compile, ast, rules, init,
// repl and version.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// of the configuration file written by init.
	ConfigIdentifier = "config"

	// FormatIdentifier is the kong variable identifier listing the output
	// formats accepted by compile.
	FormatIdentifier = "formatEnum"
)
