package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/ardnew/tmgrammar/grammar"
	"github.com/ardnew/tmgrammar/lang"
	"github.com/ardnew/tmgrammar/log"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdout returns the writer kong was configured with, or os.Stdout.
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// Source selects the grammar source and how it is loaded. It is embedded
// by every command that reads a grammar.
type Source struct {
	Path    string   `arg:"" default:"-" help:"Grammar source file or '-' for stdin." name:"source"`
	Include []string `help:"Additional import search directories." short:"I" type:"path"`
	Strict  bool     `help:"Treat duplicate rule definitions as errors."`
}

// loader returns a loader configured from s.
func (s *Source) loader() *lang.Loader {
	return lang.NewLoader(
		lang.WithLogger(log.Default()),
		lang.WithStrict(s.Strict),
		lang.WithSearchPath(s.Include...),
	)
}

// read returns the path and text of the source. Imports from stdin
// resolve against the working directory.
func (s *Source) read() (path, src string, err error) {
	if s.Path != stdinSource {
		data, err := os.ReadFile(s.Path)
		if err != nil {
			return "", "", ErrReadSource.Wrap(err).With(slog.String("source", s.Path))
		}

		return s.Path, string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", "", ErrReadSource.Wrap(err).With(slog.String("source", s.Path))
	}

	return stdinPath(), string(data), nil
}

func stdinPath() string {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	return filepath.Join(wd, "<stdin>")
}

// load reads the grammar declared by the source. Match expressions are left
// unresolved.
func (s *Source) load(ctx context.Context) (*grammar.Grammar, error) {
	log.DebugContext(ctx, "load grammar",
		slog.String("source", s.Path),
		slog.Any("include", s.Include),
		slog.Bool("strict", s.Strict),
	)

	path, src, err := s.read()
	if err != nil {
		return nil, err
	}

	return s.loader().LoadSource(ctx, path, src)
}

// parse reads the root source file without following imports.
func (s *Source) parse(ctx context.Context) (*lang.File, error) {
	if s.Path == stdinSource {
		return lang.ParseReader(ctx, "<stdin>", os.Stdin)
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, ErrReadSource.Wrap(err).With(slog.String("source", s.Path))
	}
	defer f.Close()

	return lang.ParseReader(ctx, s.Path, f)
}

// Resolve holds the options that control match compilation.
type Resolve struct {
	NumberedRefs bool `help:"Emit unnamed groups for rule references, registered by group number." name:"numbered-refs"`
}

func (r Resolve) options() []grammar.Option {
	return []grammar.Option{
		grammar.WithLogger(log.Default()),
		grammar.WithNumberedReferences(r.NumberedRefs),
	}
}
