package grammar

import (
	"log/slog"

	"github.com/ardnew/tmgrammar/log"
)

// ResolveMatches compiles every unresolved match, begin and end expression
// reachable from g and stores the result in place.
//
// Top-level patterns are visited first, then repository rules in insertion
// order. Nested patterns and capture patterns are visited depth first. Each
// pattern is compiled at most once. The first error aborts the walk.
func ResolveMatches(g *Grammar, opts ...Option) error {
	r := resolver{
		opts:    opts,
		logger:  apply(options{}, opts...).logger,
		visited: make(map[*Pattern]struct{}),
	}

	for _, p := range g.Patterns {
		if err := r.pattern(p); err != nil {
			return err
		}
	}

	for name, p := range g.Rules() {
		if err := r.pattern(p); err != nil {
			return WrapError(err).With(slog.String("repository", name))
		}
	}

	return nil
}

type resolver struct {
	opts    []Option
	logger  log.Logger
	visited map[*Pattern]struct{}
}

func (r *resolver) pattern(p *Pattern) error {
	if p == nil {
		return nil
	}

	if _, ok := r.visited[p]; ok {
		return nil
	}

	r.visited[p] = struct{}{}

	fields := []struct {
		expr  *Expr
		table *CaptureTable
		key   string
	}{
		{p.Match, &p.Captures, "match"},
		{p.Begin, &p.BeginCaptures, "begin"},
		{p.End, &p.EndCaptures, "end"},
	}

	for _, f := range fields {
		if f.expr == nil || f.expr.Resolved() {
			continue
		}

		src, err := NewCompiler(p, f.table, r.opts...).Compile(f.expr.Node(), false)
		if err != nil {
			return WrapError(err).With(
				slog.String("field", f.key),
				slog.String("pattern", p.Name),
			)
		}

		f.expr.resolve(src)

		r.logger.Trace("resolve match",
			slog.String("field", f.key),
			slog.String("pattern", p.Name),
			slog.String("source", src))
	}

	for _, q := range p.Patterns {
		if err := r.pattern(q); err != nil {
			return err
		}
	}

	for _, t := range []*CaptureTable{&p.Captures, &p.BeginCaptures, &p.EndCaptures} {
		for _, key := range t.Sorted() {
			c, _ := t.Get(key)
			if c == nil {
				continue
			}

			for _, q := range c.Patterns {
				if err := r.pattern(q); err != nil {
					return err
				}
			}
		}
	}

	return nil
}
