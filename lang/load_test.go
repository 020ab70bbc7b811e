package lang

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/tmgrammar/grammar"
	"github.com/ardnew/tmgrammar/log"
)

const fooSource = `grammar "source.foo" {
  name: "Foo"
  fileTypes: ["foo", "f"]
  uuid: "0C3868E4-F96B-4E55-B204-1DCB5A20748B"

  pattern "meta.declaration.foo" {
    match: word("let") + ws + ident
    capture let "keyword.other.foo"
  }

  pattern { include: "#ident" }

  rule ws { match: ` + "`\\s+`" + ` }
  rule ident {
    name: "variable.other.foo"
    match: "[a-z]+"
  }
}
`

func load(t *testing.T, src string, opts ...Option) (*grammar.Grammar, error) {
	t.Helper()

	opts = append([]Option{WithLogger(log.Logger{})}, opts...)

	return NewLoader(opts...).LoadSource(context.Background(), "test.tmg", src)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}

	return path
}

func TestLoadSource(t *testing.T) {
	g, err := load(t, fooSource)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if g.ScopeName() != "source.foo" || g.Name != "Foo" {
		t.Errorf("grammar = %q %q", g.ScopeName(), g.Name)
	}

	if !slices.Equal(g.FileTypes, []string{"foo", "f"}) {
		t.Errorf("fileTypes = %v", g.FileTypes)
	}

	if g.UUID != "0C3868E4-F96B-4E55-B204-1DCB5A20748B" {
		t.Errorf("uuid = %q", g.UUID)
	}

	if len(g.Patterns) != 2 {
		t.Fatalf("expected 2 patterns, got %d", len(g.Patterns))
	}

	if got := g.Patterns[1].Include; got != "#ident" {
		t.Errorf("include = %q", got)
	}

	if got := g.RuleNames(); !slices.Equal(got, []string{"ws", "ident"}) {
		t.Errorf("rules = %v", got)
	}

	if err := grammar.ResolveMatches(g); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	decl := g.Patterns[0]

	want := `\b(?<let>let)\b(?<ws>\s+)(?<ident>[a-z]+)`
	if got := decl.Match.String(); got != want {
		t.Errorf("match = %q, want %q", got, want)
	}

	var keys []string
	for k := range decl.Captures.All() {
		keys = append(keys, k.String())
	}

	if !slices.Equal(keys, []string{"let", "ws", "ident"}) {
		t.Errorf("capture keys = %v", keys)
	}

	if c, ok := decl.Captures.Get(grammar.Name("let")); !ok || c.Name != "keyword.other.foo" {
		t.Errorf("capture let = %+v", c)
	}

	c, ok := decl.Captures.Get(grammar.Name("ws"))
	if !ok || len(c.Patterns) != 1 || c.Patterns[0].Include != "#ws" {
		t.Errorf("capture ws = %+v", c)
	}

	ident, _ := g.Rule("ident")
	if ident.Name != "variable.other.foo" || ident.Match.String() != "[a-z]+" {
		t.Errorf("rule ident = %q %q", ident.Name, ident.Match)
	}
}

func TestLoadSource_Properties(t *testing.T) {
	g, err := load(t, `grammar "source.p" {
  comment: "generated"
  firstLineMatch: "^#!.*foo"
  pattern {
    name: "meta.block.foo"
    contentName: "meta.body.foo"
    comment: "block"
    disabled: true
    begin: "\\{"
    end: "\\}"
    beginCapture 0 "punctuation.begin.foo"
    endCapture 0 "punctuation.end.foo"
    pattern { include: "$self" }
  }
}`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if g.Comment != "generated" || g.FirstLineMatch != "^#!.*foo" {
		t.Errorf("grammar = %q %q", g.Comment, g.FirstLineMatch)
	}

	p := g.Patterns[0]

	if p.Name != "meta.block.foo" || p.ContentName != "meta.body.foo" ||
		p.Comment != "block" || !p.Disabled {
		t.Errorf("pattern = %+v", p)
	}

	if p.Begin.String() != `\{` || p.End.String() != `\}` {
		t.Errorf("begin/end = %q %q", p.Begin, p.End)
	}

	if c, ok := p.BeginCaptures.Get(grammar.Number(0)); !ok || c.Name != "punctuation.begin.foo" {
		t.Errorf("beginCaptures[0] = %+v", c)
	}

	if c, ok := p.EndCaptures.Get(grammar.Number(0)); !ok || c.Name != "punctuation.end.foo" {
		t.Errorf("endCaptures[0] = %+v", c)
	}

	if len(p.Patterns) != 1 || p.Patterns[0].Include != "$self" {
		t.Errorf("nested patterns = %+v", p.Patterns)
	}
}

func TestLoadSource_CapturePatterns(t *testing.T) {
	g, err := load(t, `grammar "source.c" {
  pattern {
    match: "(a)"
    capture 1 "outer" {
      name: "renamed"
      pattern { include: "#inner" }
    }
  }
}`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	c, ok := g.Patterns[0].Captures.Get(grammar.Number(1))
	if !ok {
		t.Fatal("capture 1 missing")
	}

	if c.Name != "renamed" || len(c.Patterns) != 1 || c.Patterns[0].Include != "#inner" {
		t.Errorf("capture = %+v", c)
	}
}

func TestLoadSource_Traits(t *testing.T) {
	g, err := load(t, `trait idents {
  rule ident { match: "[a-z]+" }
}

trait keyword {
  name: "keyword.control.foo"
}

grammar "source.t" {
  mixin idents
  pattern {
    mixin keyword
    match: ident
  }
}`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if _, ok := g.Rule("ident"); !ok {
		t.Error("rule ident not mixed in")
	}

	if got := g.Patterns[0].Name; got != "keyword.control.foo" {
		t.Errorf("pattern name = %q", got)
	}
}

func TestLoad_Imports(t *testing.T) {
	dir := t.TempDir()
	lib := t.TempDir()

	writeFile(t, lib, "common.tmg", `
import "more"
trait ws { rule ws { match: "\\s+" } }
grammar "source.ignored" {}
`)
	writeFile(t, dir, "more.tmg", `trait num { rule num { match: "\\d+" } }`)
	writeFile(t, lib, "more.tmg", `trait num { rule num { match: "[0-9]" } }`)

	root := writeFile(t, dir, "root.tmg", `
import "common"
import "more.tmg"
grammar "source.root" {
  mixin ws
  mixin num
  pattern { match: ws + num }
}`)

	l := NewLoader(WithLogger(log.Logger{}), WithSearchPath(lib))

	g, err := l.Load(context.Background(), root)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if g.ScopeName() != "source.root" {
		t.Errorf("scope = %q", g.ScopeName())
	}

	if err := grammar.ResolveMatches(g); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	// The more.tmg beside root replaces the trait of lib/more.tmg.
	if got, want := g.Patterns[0].Match.String(), `(?<ws>\s+)(?<num>\d+)`; got != want {
		t.Errorf("match = %q, want %q", got, want)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"no grammar", `trait t {}`, ErrNoGrammar},
		{"two grammars", `grammar "a" {}
grammar "b" {}`, ErrMultipleGrammars},
		{"undefined trait", `grammar "a" { mixin nope }`, ErrUndefinedTrait},
		{"mixin cycle", `trait a { mixin b }
trait b { mixin a }
grammar "g" { mixin a }`, ErrMixinCycle},
		{"unknown property", `grammar "a" { color: "red" }`, ErrUnknownProperty},
		{"unknown pattern property", `grammar "a" { pattern { color: "red" } }`, ErrUnknownProperty},
		{"rule in pattern", `grammar "a" { pattern { rule r { match: "x" } } }`, ErrUnexpectedStmt},
		{"capture in grammar", `grammar "a" { capture 1 "x" }`, ErrUnexpectedStmt},
		{"pattern at top level", `pattern {}`, ErrUnexpectedStmt},
		{"string expected", `grammar "a" { name: 42 }`, ErrInvalidValueType},
		{"bad match", `grammar "a" { pattern { match: 1 + } }`, ErrExprCompile},
		{"missing import", `import "nope"
grammar "a" {}`, ErrImportNotFound},
		{"parse", `grammar "a" {`, ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(t, tt.src)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoad_ErrorLocation(t *testing.T) {
	_, err := load(t, "grammar \"a\" {\n  pattern {\n    color: \"red\"\n  }\n}")
	if err == nil {
		t.Fatal("expected error")
	}

	if got := err.Error(); !strings.HasPrefix(got, "test.tmg:3:5: unknown property") {
		t.Errorf("error = %q", got)
	}
}

func TestLoad_ImportCycle(t *testing.T) {
	dir := t.TempDir()

	a := writeFile(t, dir, "a.tmg", `import "b"
grammar "source.a" {}`)
	writeFile(t, dir, "b.tmg", `import "a"`)

	_, err := NewLoader(WithLogger(log.Logger{})).Load(context.Background(), a)
	if !errors.Is(err, ErrImportCycle) {
		t.Errorf("error = %v, want %v", err, ErrImportCycle)
	}
}

func TestLoad_DuplicateRule(t *testing.T) {
	src := `grammar "a" {
  rule r { match: "x" }
  rule r { match: "y" }
}`

	g, err := load(t, src)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if r, _ := g.Rule("r"); r.Match.String() != "y" || g.NumRules() != 1 {
		t.Errorf("rule r = %q (%d rules)", r.Match, g.NumRules())
	}

	if _, err := load(t, src, WithStrict(true)); !errors.Is(err, grammar.ErrDuplicateRule) {
		t.Errorf("strict error = %v, want %v", err, grammar.ErrDuplicateRule)
	}
}

func TestLoader_SearchPathOrder(t *testing.T) {
	t.Setenv(SearchPathEnv, "/env")

	l := NewLoader(WithSearchPath("/lib1", "/lib2"))

	got := l.searchPath("/src")
	want := []string{"/src", "/lib1", "/lib2", "/env"}

	if !slices.Equal(got, want) {
		t.Errorf("searchPath = %v, want %v", got, want)
	}
}

func TestCaptureKey(t *testing.T) {
	tests := []struct {
		in   string
		want grammar.CaptureKey
		err  error
	}{
		{"0", grammar.Number(0), nil},
		{"12", grammar.Number(12), nil},
		{"ident", grammar.Name("ident"), nil},
		{"", grammar.Name(""), grammar.ErrInvalidCaptureKey},
		{"-1", grammar.Number(-1), grammar.ErrInvalidCaptureKey},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := captureKey(tt.in)
			if !errors.Is(err, tt.err) {
				t.Fatalf("error = %v, want %v", err, tt.err)
			}

			if got != tt.want {
				t.Errorf("key = %v, want %v", got, tt.want)
			}
		})
	}
}
