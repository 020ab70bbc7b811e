// Package cli contains the command line interface for tmg.
//
// # Commands
//
//	tmg [compile] [flags] <source>   compile a grammar (default command)
//	tmg ast <source>                 print the declaration tree
//	tmg rules <source>               list repository rules
//	tmg repl <source>                author match expressions interactively
//	tmg init                         write the configuration file
//	tmg version
//
// A source of "-" reads stdin.
//
// # Configuration
//
// Flag defaults are read from config.yaml in the user configuration
// directory, then from config.json beside it. The YAML file maps flag
// names to values; nested mappings join their keys with "-":
//
//	format: json
//	log:
//	  level: debug
//	include:
//	  - ./grammars/common
//
// Command-line flags override config file values. tmg init writes the
// current flag values to the file.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// Logs are written to stderr.
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: the pprof
//     directory under the user cache directory)
package cli
