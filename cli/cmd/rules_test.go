package cmd

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/ardnew/tmgrammar/grammar"
)

func TestRuleLines_AlignedWithEscapes(t *testing.T) {
	g := grammar.New("source.foo")

	for name, match := range map[string]string{"ws": `\s+`, "identifier": "[a-z]+"} {
		if _, err := grammar.DefineRule(g, name, func(p *grammar.Pattern) error {
			p.Match = grammar.NewExpr(grammar.Literal(match))

			return nil
		}); err != nil {
			t.Fatal(err)
		}
	}

	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.ANSI)

	lines := ruleLines(g, r.NewStyle().Bold(true))
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}

	col := -1

	for _, line := range lines {
		if !strings.Contains(line, "\x1b[") {
			t.Errorf("line %q is not styled", line)
		}

		i := strings.Index(line, "match ")
		if i < 0 {
			t.Fatalf("line %q has no description", line)
		}

		if w := lipgloss.Width(line[:i]); col < 0 {
			col = w
		} else if w != col {
			t.Errorf("description starts at column %d, want %d: %q", w, col, line)
		}
	}

	if want := len("identifier") + 2; col != want {
		t.Errorf("column = %d, want %d", col, want)
	}
}
