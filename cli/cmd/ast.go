package cmd

import (
	"context"
)

// AST prints the declaration tree of a source file.
type AST struct {
	Path string `arg:"" default:"-" help:"Grammar source file or '-' for stdin." name:"source"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src := Source{Path: a.Path}

	f, err := src.parse(ctx)
	if err != nil {
		return err
	}

	return f.Dump(stdout(ctx))
}
