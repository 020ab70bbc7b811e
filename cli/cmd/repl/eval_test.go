package repl

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/tmgrammar/grammar"
	"github.com/ardnew/tmgrammar/log"
)

func evalFixture(t *testing.T) *grammar.Grammar {
	t.Helper()

	g := grammar.New("source.foo")

	for _, r := range []struct{ name, match string }{
		{"ws", `\s+`},
		{"ident", `[a-z]+`},
	} {
		if _, err := grammar.DefineRule(g, r.name, func(p *grammar.Pattern) error {
			p.Match = grammar.NewExpr(grammar.Literal(r.match))

			return nil
		}); err != nil {
			t.Fatalf("DefineRule: %v", err)
		}
	}

	return g
}

func TestEvaluate(t *testing.T) {
	g := evalFixture(t)

	res, err := evaluate(g, `ident + "="`, log.Logger{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if want := `(?<ident>[a-z]+)=`; res.regex != want {
		t.Errorf("regex = %q, want %q", res.regex, want)
	}

	if want := `ident + "="`; res.tree != want {
		t.Errorf("tree = %q, want %q", res.tree, want)
	}

	if len(res.captures) != 1 {
		t.Fatalf("captures = %v, want one", res.captures)
	}

	c := res.captures[0]
	if c.key != "ident" || !slices.Equal(c.includes, []string{"#ident"}) {
		t.Errorf("capture = %+v, want ident including #ident", c)
	}

	// The scratch pattern never joins the grammar.
	if len(g.Patterns) != 0 {
		t.Errorf("grammar gained %d patterns", len(g.Patterns))
	}

	out := res.render()
	for _, part := range []string{res.regex, "#ident"} {
		if !strings.Contains(out, part) {
			t.Errorf("render() = %q, missing %q", out, part)
		}
	}
}

func TestEvaluate_NumberedReferences(t *testing.T) {
	g := evalFixture(t)

	res, err := evaluate(g, `ws + ident`, log.Logger{},
		grammar.WithNumberedReferences(true))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	var keys []string
	for _, c := range res.captures {
		keys = append(keys, c.key)
	}

	if !slices.Equal(keys, []string{"1", "2"}) {
		t.Errorf("capture keys = %v, want [1 2]", keys)
	}

	if strings.Contains(res.regex, "?<") {
		t.Errorf("regex %q has named groups", res.regex)
	}
}

func TestEvaluate_Errors(t *testing.T) {
	g := evalFixture(t)

	for _, src := range []string{
		`ident +`,      // syntax
		`capture(1, 2)`, // bad argument
		`missing`,       // unknown rule
	} {
		if _, err := evaluate(g, src, log.Logger{}); err == nil {
			t.Errorf("evaluate(%q) succeeded", src)
		}
	}
}

func testModel(t *testing.T) model {
	t.Helper()

	g := evalFixture(t)
	h := NewHistory(filepath.Join(t.TempDir(), baseHistory))

	return newModel(t.Context(), Config{Logger: log.Logger{}}, g, h)
}

func typeText(m model, s string) model {
	for _, r := range s {
		m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	return m
}

func TestModel_ModeToggle(t *testing.T) {
	m := testModel(t)
	m = typeText(m, "ws")

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeCtrl || m.input.Value() != "" {
		t.Fatalf("after Esc: mode %d input %q", m.mode, m.input.Value())
	}

	m = typeText(m, "li")

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeMatch || m.input.Value() != "ws" {
		t.Errorf("after second Esc: mode %d input %q", m.mode, m.input.Value())
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if m.input.Value() != "li" {
		t.Errorf("ctrl input not restored: %q", m.input.Value())
	}
}

func TestModel_TabCompletion(t *testing.T) {
	m := testModel(t)
	m = typeText(m, "ide")

	if len(m.matches) == 0 {
		t.Fatal("no completion candidates for ide")
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyTab})
	if got := m.input.Value(); got != "ident" {
		t.Errorf("after Tab: input %q, want ident", got)
	}
}

func TestModel_HistoryNavigation(t *testing.T) {
	m := testModel(t)

	for _, e := range []HistoryEntry{
		{"ws", modeMatch},
		{"list", modeCtrl},
		{"ident", modeMatch},
	} {
		if err := m.history.Add(e.Line, e.Mode); err != nil {
			t.Fatal(err)
		}
	}

	m.historyIdx = m.history.Len()

	up := tea.KeyMsg{Type: tea.KeyUp}

	m, _ = m.handleKey(up)
	if m.input.Value() != "ident" || m.mode != modeMatch {
		t.Fatalf("first Up: %q mode %d", m.input.Value(), m.mode)
	}

	m, _ = m.handleKey(up)
	if m.input.Value() != "list" || m.mode != modeCtrl {
		t.Fatalf("second Up: %q mode %d", m.input.Value(), m.mode)
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyShiftUp})
	if m.historyIdx != 1 {
		t.Errorf("Shift+Up left command history: index %d", m.historyIdx)
	}

	down := tea.KeyMsg{Type: tea.KeyDown}

	m, _ = m.handleKey(down)
	m, _ = m.handleKey(down)

	if m.input.Value() != "" || m.historyIdx != m.history.Len() {
		t.Errorf("past newest: %q index %d", m.input.Value(), m.historyIdx)
	}
}
