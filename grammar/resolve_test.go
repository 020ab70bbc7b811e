package grammar

import (
	"errors"
	"testing"
)

func TestResolveMatches(t *testing.T) {
	g := New("source.foo")

	_, _ = DefineRule(g, "ident", func(p *Pattern) error {
		p.Match = NewExpr(Literal(`[a-z]+`))

		return nil
	})

	_, _ = DefineRule(g, "call", func(p *Pattern) error {
		p.Name = "meta.call.foo"
		p.Match = NewExpr(Seq(p.Reference("ident"), Literal(`\(`)))

		return nil
	})

	block, _ := DefinePattern(g, "meta.block.foo", func(p *Pattern) error {
		p.Begin = NewExpr(Seq(p.Reference("ident"), Literal(`\s*\{`)))
		p.End = NewExpr(Literal(`\}`))

		_, err := DefinePattern(p, "", func(q *Pattern) error {
			q.Match = NewExpr(OneOrMore(q.Reference("call")))

			return nil
		})

		return err
	})

	if err := ResolveMatches(g); err != nil {
		t.Fatalf("ResolveMatches: %v", err)
	}

	tests := []struct {
		name string
		expr *Expr
		want string
	}{
		{"begin", block.Begin, `(?<ident>[a-z]+)\s*\{`},
		{"end", block.End, `\}`},
		{"nested", block.Patterns[0].Match, `(?<call>(?:(?:[a-z]+)\()+)`},
		{"repository", mustRule(t, g, "call").Match, `(?<ident>[a-z]+)\(`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.expr.Resolved() {
				t.Fatal("expression not resolved")
			}

			if got := tt.expr.String(); got != tt.want {
				t.Errorf("resolved = %q, want %q", got, tt.want)
			}
		})
	}

	if _, ok := block.BeginCaptures.Get(Name("ident")); !ok {
		t.Error("expected begin capture for ident")
	}

	if block.Captures.Len() != 0 {
		t.Errorf("captures = %d entries, want 0", block.Captures.Len())
	}

	if _, ok := block.Patterns[0].Captures.Get(Name("call")); !ok {
		t.Error("expected nested capture for call")
	}
}

func TestResolveMatches_KeepsAuthoredNode(t *testing.T) {
	g := New("source.foo")

	rule, _ := DefineRule(g, "word", func(p *Pattern) error {
		p.Match = NewExpr(Seq(Literal(`\w`), Capturing(Literal(`\d`))))

		return nil
	})

	p, _ := DefinePattern(g, "", func(p *Pattern) error {
		p.Match = NewExpr(p.Reference("word"))

		return nil
	})

	if err := ResolveMatches(g); err != nil {
		t.Fatal(err)
	}

	if got, want := rule.Match.String(), `\w(\d)`; got != want {
		t.Errorf("rule = %q, want %q", got, want)
	}

	// The reference expands the authored rule, so the inner group degrades.
	if got, want := p.Match.String(), `(?<word>\w(?:\d))`; got != want {
		t.Errorf("pattern = %q, want %q", got, want)
	}

	if err := ResolveMatches(g); err != nil {
		t.Fatalf("second ResolveMatches: %v", err)
	}

	if got, want := p.Match.String(), `(?<word>\w(?:\d))`; got != want {
		t.Errorf("after second pass = %q, want %q", got, want)
	}
}

func TestResolveMatches_Undeclared(t *testing.T) {
	g := New("source.foo")

	_, _ = DefinePattern(g, "", func(p *Pattern) error {
		p.Match = NewExpr(p.Reference("nope"))

		return nil
	})

	if err := ResolveMatches(g); !errors.Is(err, ErrUndeclaredRule) {
		t.Fatalf("error = %v, want %v", err, ErrUndeclaredRule)
	}
}

func mustRule(t *testing.T, g *Grammar, name string) *Pattern {
	t.Helper()

	p, ok := g.Rule(name)
	if !ok {
		t.Fatalf("rule %q not found", name)
	}

	return p
}
