package grammar

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

// fixture returns a grammar with rule "rule" matching "foo" and a top-level
// pattern to author expressions in.
func fixture(t *testing.T) (*Grammar, *Pattern) {
	t.Helper()

	g := New("source.foo")

	if _, err := DefineRule(g, "rule", func(p *Pattern) error {
		p.Match = NewExpr(Literal("foo"))

		return nil
	}); err != nil {
		t.Fatalf("DefineRule: %v", err)
	}

	p, err := DefinePattern(g, "", nil)
	if err != nil {
		t.Fatalf("DefinePattern: %v", err)
	}

	return g, p
}

func compile(t *testing.T, p *Pattern, n Node, opts ...Option) string {
	t.Helper()

	s, err := CompileString(p, n, opts...)
	if err != nil {
		t.Fatalf("compile %s: %v", Format(n), err)
	}

	return s
}

func TestCompile_Nodes(t *testing.T) {
	_, p := fixture(t)

	tests := []struct {
		name string
		node func() Node
		want string
	}{
		{
			name: "literal",
			node: func() Node { return Literal(`\w+`) },
			want: `\w+`,
		},
		{
			name: "regexp",
			node: func() Node { return Regexp(`[a-z]`) },
			want: `[a-z]`,
		},
		{
			name: "and",
			node: func() Node { return And{Literal("left"), Literal("right")} },
			want: "leftright",
		},
		{
			name: "unnamed capture of term",
			node: func() Node { return Capturing(Term{Literal("foo")}) },
			want: "(foo)",
		},
		{
			name: "named capture of term",
			node: func() Node { return NamedCapturing("bar", Term{Literal("foo")}) },
			want: "(?<bar>foo)",
		},
		{
			name: "rule reference",
			node: func() Node { return p.Reference("rule") },
			want: "(?<rule>foo)",
		},
		{
			name: "one or more rule reference",
			node: func() Node { return OneOrMore(p.Reference("rule")) },
			want: "(?<rule>(?:foo)+)",
		},
		{
			name: "zero or more rule reference",
			node: func() Node { return ZeroOrMore(p.Reference("rule")) },
			want: "(?<rule>(?:foo)*)",
		},
		{
			name: "optional rule reference",
			node: func() Node { return Optional(p.Reference("rule")) },
			want: "(?:(?<rule>foo))?",
		},
		{
			name: "or",
			node: func() Node { return Or{Term{Literal("left")}, Term{Literal("right")}} },
			want: "(?:left|right)",
		},
		{
			name: "word boundary",
			node: func() Node { return WordBoundary{Term{Literal("foo")}} },
			want: `\bfoo\b`,
		},
		{
			name: "group",
			node: func() Node { return Group{Literal("a|b")} },
			want: "(?:a|b)",
		},
		{
			name: "repetition of literal",
			node: func() Node { return OneOrMore(Literal(`\d`)) },
			want: `(?:\d)+`,
		},
		{
			name: "pattern as node",
			node: func() Node {
				r, _ := p.Grammar().Rule("rule")

				return r
			},
			want: "foo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := compile(t, p, tt.node()); got != tt.want {
				t.Errorf("compile = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompile_RuleReference_RegistersCapture(t *testing.T) {
	_, p := fixture(t)

	compile(t, p, p.Reference("rule"))

	c, ok := p.Captures.Get(Name("rule"))
	if !ok {
		t.Fatal("expected capture registered under \"rule\"")
	}

	if len(c.Patterns) != 1 || c.Patterns[0].Include != "#rule" {
		t.Errorf("capture patterns = %+v, want single include #rule", c.Patterns)
	}
}

func TestCompile_Concatenation_IsAssociative(t *testing.T) {
	_, p := fixture(t)

	a, b, c := Literal("a"), Capturing(Literal("b")), Or{Literal("c"), Literal("d")}

	left := compile(t, p, And{And{a, b}, c})
	right := compile(t, p, And{a, And{b, c}})

	if left != right {
		t.Errorf("(a+b)+c = %q, a+(b+c) = %q", left, right)
	}
}

func TestCompile_Literal_Idempotent(t *testing.T) {
	_, p := fixture(t)

	once := compile(t, p, Seq(Literal("x"), OneOrMore(p.Reference("rule"))))
	twice := compile(t, p, Literal(once))

	if once != twice {
		t.Errorf("recompiled = %q, want %q", twice, once)
	}
}

func TestCompile_NamedGroupCollision(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, g *Grammar, p *Pattern) Node
		want  string
	}{
		{
			name: "alternation of same rule",
			setup: func(_ *testing.T, _ *Grammar, p *Pattern) Node {
				return Alt(p.Reference("rule"), p.Reference("rule"))
			},
			want: "(?:(?<rule>foo)|(?:foo))",
		},
		{
			name: "rule nested in expansion",
			setup: func(t *testing.T, g *Grammar, p *Pattern) Node {
				t.Helper()

				if _, err := DefineRule(g, "outer", func(q *Pattern) error {
					q.Match = NewExpr(Seq(Literal("a"), q.Reference("rule")))

					return nil
				}); err != nil {
					t.Fatal(err)
				}

				return Seq(p.Reference("outer"), p.Reference("rule"))
			},
			want: "(?<outer>a(?:foo))(?<rule>foo)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, p := fixture(t)

			got := compile(t, p, tt.setup(t, g, p))
			if got != tt.want {
				t.Errorf("compile = %q, want %q", got, tt.want)
			}

			if n := strings.Count(got, "(?<rule>"); n != 1 {
				t.Errorf("found %d named groups for rule, want 1", n)
			}
		})
	}
}

func TestCompile_NumberedReferences_Deterministic(t *testing.T) {
	g, _ := fixture(t)

	if _, err := DefineRule(g, "other", func(p *Pattern) error {
		p.Match = NewExpr(Literal("bar"))

		return nil
	}); err != nil {
		t.Fatal(err)
	}

	keys := func() []string {
		p, _ := DefinePattern(g, "", nil)
		n := Seq(p.Reference("rule"), Capturing(Literal("x")), p.Reference("other"))

		if got := compile(t, p, n, WithNumberedReferences(true)); got != "(foo)(x)(bar)" {
			t.Errorf("compile = %q, want %q", got, "(foo)(x)(bar)")
		}

		var out []string
		for k, c := range p.Captures.All() {
			out = append(out, k.String()+"="+c.Patterns[0].Include)
		}

		return out
	}

	first, second := keys(), keys()
	want := []string{"1=#rule", "3=#other"}

	if !slices.Equal(first, want) {
		t.Errorf("captures = %v, want %v", first, want)
	}

	if !slices.Equal(first, second) {
		t.Errorf("captures differ between identical patterns: %v != %v", first, second)
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(g *Grammar, p *Pattern) Node
		want  error
	}{
		{
			name:  "undeclared rule",
			setup: func(_ *Grammar, p *Pattern) Node { return p.Reference("missing") },
			want:  ErrUndeclaredRule,
		},
		{
			name: "undeclared rule under repetition",
			setup: func(_ *Grammar, p *Pattern) Node {
				return Seq(Literal("a"), ZeroOrMore(p.Reference("missing")))
			},
			want: ErrUndeclaredRule,
		},
		{
			name:  "unhandled node",
			setup: func(_ *Grammar, _ *Pattern) Node { return nil },
			want:  ErrUnhandledNode,
		},
		{
			name: "recursive rule",
			setup: func(g *Grammar, p *Pattern) Node {
				_, _ = DefineRule(g, "loop", func(q *Pattern) error {
					q.Match = NewExpr(Seq(Literal("x"), Optional(q.Reference("loop"))))

					return nil
				})

				return p.Reference("loop")
			},
			want: ErrRecursiveRule,
		},
		{
			name: "rule without match",
			setup: func(g *Grammar, p *Pattern) Node {
				_, _ = DefineRule(g, "block", func(q *Pattern) error {
					q.Begin = NewExpr(Literal("{"))
					q.End = NewExpr(Literal("}"))

					return nil
				})

				return p.Reference("block")
			},
			want: ErrEmptyRule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, p := fixture(t)

			_, err := CompileString(p, tt.setup(g, p))
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCompile_UndeclaredRule_NamesRule(t *testing.T) {
	_, p := fixture(t)

	_, err := CompileString(p, p.Reference("missing"))
	if err == nil || !strings.Contains(err.Error(), "missing") {
		t.Errorf("error = %v, want mention of rule name", err)
	}
}

func TestCompile_ReferenceAfterAuthoredCapture(t *testing.T) {
	_, p := fixture(t)

	got := compile(t, p, Seq(NamedCapturing("rule", Literal("z")), p.Reference("rule")))

	if want := "(?<rule>z)(?:foo)"; got != want {
		t.Errorf("compile = %q, want %q", got, want)
	}

	if _, ok := p.Captures.Get(Name("rule")); ok {
		t.Error("include #rule registered for the authored group")
	}
}

func TestCompile_ReferenceKeepsDefinedCapture(t *testing.T) {
	_, p := fixture(t)

	if _, err := DefineCapture(p, Name("rule"), "entity.name.foo", nil); err != nil {
		t.Fatalf("DefineCapture: %v", err)
	}

	if got, want := compile(t, p, p.Reference("rule")), "(?<rule>foo)"; got != want {
		t.Errorf("compile = %q, want %q", got, want)
	}

	c, _ := p.Captures.Get(Name("rule"))
	if c.Name != "entity.name.foo" || len(c.Patterns) != 0 {
		t.Errorf("defined capture replaced: %+v", c)
	}
}

func TestCompile_RepeatedReference_RegistersOnce(t *testing.T) {
	_, p := fixture(t)

	got := compile(t, p, Seq(p.Reference("rule"), Literal(","), p.Reference("rule")))

	if want := "(?<rule>foo),(?:foo)"; got != want {
		t.Errorf("compile = %q, want %q", got, want)
	}

	if p.Captures.Len() != 1 {
		t.Errorf("captures = %d, want 1", p.Captures.Len())
	}
}
