// Package profile provides optional runtime profiling for tmg.
//
// Profiling wraps [github.com/pkg/profile] and is compiled in only when the
// binary is built with the "pprof" tag:
//
//	go build -tags pprof .
//
// Without the tag every [Profiler] is a no-op and [Modes] is empty.
//
//	p := profile.Profiler{}.With(
//		profile.WithMode("cpu"),
//		profile.WithPath("/tmp/tmg"),
//	)
//	defer p.Start().Stop()
//
// Profiles land in the configured directory as <mode>.pprof and can be
// inspected with `go tool pprof`. Building with the tag also registers the
// net/http/pprof handlers.
//
// Large grammars with many mutually referencing rules are the main reason to
// profile: every rule reference expands the referenced rule again.
package profile
