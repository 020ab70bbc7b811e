package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/tmgrammar/grammar"
)

var ruleNameStyle = lipgloss.NewStyle().Bold(true)

// Rules lists the repository rules of a grammar with their compiled regex.
type Rules struct {
	Source  `embed:""`
	Resolve `embed:""`
}

// Run executes the rules command.
func (r *Rules) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	g, err := r.load(ctx)
	if err != nil {
		return err
	}

	if err := grammar.ResolveMatches(g, r.options()...); err != nil {
		return ErrResolve.Wrap(err).With(slog.String("source", r.Path))
	}

	w := stdout(ctx)

	for _, line := range ruleLines(g, ruleNameStyle) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}

// ruleLines renders one line per rule. The name column is padded by style
// itself so that escape sequences do not skew the alignment.
func ruleLines(g *grammar.Grammar, style lipgloss.Style) []string {
	width := 0
	for name := range g.Rules() {
		width = max(width, lipgloss.Width(name))
	}

	col := style.Width(width + 2)

	var lines []string
	for name, p := range g.Rules() {
		lines = append(lines, col.Render(name)+describe(p))
	}

	return lines
}

// describe summarizes what a rule matches.
func describe(p *grammar.Pattern) string {
	switch {
	case p.Match != nil:
		return "match " + p.Match.String()
	case p.Begin != nil || p.End != nil:
		return fmt.Sprintf("begin %s end %s", p.Begin, p.End)
	case p.Include != "":
		return "include " + p.Include
	case len(p.Patterns) > 0:
		return fmt.Sprintf("%d patterns", len(p.Patterns))
	default:
		return "(empty)"
	}
}

