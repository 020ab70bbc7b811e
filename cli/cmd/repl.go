package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/tmgrammar/cli/cmd/repl"
	"github.com/ardnew/tmgrammar/grammar"
	"github.com/ardnew/tmgrammar/log"
)

// Repl starts an interactive session for authoring match expressions
// against the rules of a grammar.
type Repl struct {
	Source  `embed:""`
	Resolve `embed:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	cache := os.TempDir()
	if ktx := kongContextFrom(ctx); ktx != nil {
		if dir, ok := ktx.Model.Vars()[CacheIdentifier]; ok && dir != "" {
			cache = dir
		}
	}

	if err := os.MkdirAll(cache, 0o700); err != nil {
		return ErrCacheDir.Wrap(err).With(slog.String("dir", cache))
	}

	path, src, err := r.read()
	if err != nil {
		return err
	}

	fromStdin := r.Path == stdinSource
	if fromStdin {
		path = ""
	}

	loader := r.loader()

	return repl.Run(ctx, repl.Config{
		Path:   path,
		Source: src,
		Load: func(ctx context.Context, path, src string) (*grammar.Grammar, error) {
			if path == "" {
				path = stdinPath()
			}

			return loader.LoadSource(ctx, path, src)
		},
		Options:  r.options(),
		CacheDir: cache,
		InputTTY: fromStdin,
		Logger:   log.Default(),
	})
}
