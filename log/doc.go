// Package log is the structured logger used throughout tmg. It wraps
// [log/slog] with functional options and an extra [LevelTrace] for
// per-node compiler output.
//
// A [Logger] is a value. Its zero value discards everything, so types that
// embed one need no setup in tests:
//
//	l := log.Make(os.Stderr, log.WithLevel(log.LevelDebug))
//	l.Debug("rule defined", slog.String("name", "ident"))
//
// [Logger.Wrap] derives a logger with different options and
// [Logger.With] one that adds attributes to every record:
//
//	l = l.With(slog.String("file", "foo.tmg"))
//
// Every level has a Context variant. The plain variants use
// [DefaultContextProvider].
//
// # Package-level logging
//
// [Trace], [Debug], [Info], [Warn], [Error] and their Context variants
// write through a default logger on stderr so that compiled grammars on
// stdout are never interleaved with diagnostics. [Config] reconfigures it
// and [Default] returns it for injection into loaders and compilers.
//
// # Output
//
// [FormatText] is the default; [FormatJSON] emits one object per record.
// With [WithPretty] (on by default) both are colored with lipgloss, and
// color is dropped when the output is not a terminal. [WithTimeLayout]
// accepts [time] layout names ("RFC3339", "kitchen", "ms") or a literal
// layout; "none" omits timestamps. [WithCaller] adds the source location of
// the code that called the logging function.
package log
