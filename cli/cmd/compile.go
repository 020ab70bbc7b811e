package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/tmgrammar/generate"
	"github.com/ardnew/tmgrammar/grammar"
	"github.com/ardnew/tmgrammar/log"
)

// Compile loads a grammar source and writes the TextMate grammar.
type Compile struct {
	Source  `embed:""`
	Resolve `embed:""`

	Format     string   `default:"xml" enum:"${formatEnum}" help:"Output format (${enum})." short:"f"`
	Rule       []string `                                   help:"Emit only the named repository rule as a top-level pattern (repeatable)." short:"r"`
	Indent     int      `default:"1"                        help:"Indent repetitions per nesting level."`
	IndentText string   `default:"\t"                       help:"Text repeated to indent one level." name:"indent-text"`
	Output     string   `default:"-"                        help:"Output file or '-' for stdout." short:"o" type:"path"`
}

// Run executes the compile command.
func (c *Compile) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	format, err := generate.ParseFormat(c.Format)
	if err != nil {
		return err
	}

	if c.Indent < 0 {
		return ErrInvalidIndent.With(slog.Int("indent", c.Indent))
	}

	g, err := c.load(ctx)
	if err != nil {
		return err
	}

	if err := grammar.ResolveMatches(g, c.options()...); err != nil {
		return ErrResolve.Wrap(err).With(slog.String("source", c.Path))
	}

	var w io.Writer = stdout(ctx)

	if c.Output != stdinSource {
		f, err := os.Create(c.Output)
		if err != nil {
			return ErrWriteOutput.Wrap(err).With(slog.String("file", c.Output))
		}
		defer f.Close()

		w = f
	}

	err = generate.Write(ctx, w, g, format, generate.Options{
		Rules:      c.Rule,
		Indent:     c.Indent,
		IndentText: c.IndentText,
	})
	if err != nil {
		return ErrWriteOutput.Wrap(err).With(
			slog.String("file", c.Output),
			slog.String("format", format.String()),
		)
	}

	log.DebugContext(ctx, "grammar written",
		slog.String("scope", g.ScopeName()),
		slog.String("format", format.String()),
		slog.String("file", c.Output),
		slog.Int("rules", g.NumRules()),
	)

	return nil
}
