package grammar

import (
	"iter"
	"slices"
)

// Container is implemented by every tree node that owns nested patterns.
type Container interface {
	AddPattern(p *Pattern)
	Grammar() *Grammar
}

// Grammar is the root of a compiled grammar.
type Grammar struct {
	Name               string
	Comment            string
	FirstLineMatch     string
	FoldingStartMarker string
	FoldingStopMarker  string
	KeyEquivalent      string
	UUID               string
	FileTypes          []string

	// Patterns are the top-level patterns in output order.
	Patterns []*Pattern

	scopeName string
	rules     map[string]*Pattern
	order     []string
}

// New returns an empty grammar with the given scope name.
func New(scopeName string) *Grammar {
	return &Grammar{
		scopeName: scopeName,
		rules:     make(map[string]*Pattern),
	}
}

// ScopeName returns the scope name the grammar was created with.
func (g *Grammar) ScopeName() string { return g.scopeName }

// Grammar returns g. It lets a Grammar act as a [Container].
func (g *Grammar) Grammar() *Grammar { return g }

// NewPattern returns a detached pattern owned by g.
func (g *Grammar) NewPattern() *Pattern {
	return &Pattern{grammar: g}
}

// AddPattern appends a top-level pattern.
func (g *Grammar) AddPattern(p *Pattern) {
	g.Patterns = append(g.Patterns, p)
}

// AddRule stores p in the repository under name.
//
// A rule that already exists is replaced in place, keeping its position in
// the repository order, and the replaced pattern is returned.
func (g *Grammar) AddRule(name string, p *Pattern) (replaced *Pattern) {
	if g.rules == nil {
		g.rules = make(map[string]*Pattern)
	}

	replaced, ok := g.rules[name]
	if !ok {
		g.order = append(g.order, name)
	}

	g.rules[name] = p

	return replaced
}

// Rule returns the repository rule with the given name.
func (g *Grammar) Rule(name string) (*Pattern, bool) {
	p, ok := g.rules[name]

	return p, ok
}

// Rules iterates the repository in insertion order.
func (g *Grammar) Rules() iter.Seq2[string, *Pattern] {
	return func(yield func(string, *Pattern) bool) {
		for _, name := range g.order {
			if !yield(name, g.rules[name]) {
				return
			}
		}
	}
}

// RuleNames returns the repository rule names in insertion order.
func (g *Grammar) RuleNames() []string {
	return slices.Clone(g.order)
}

// NumRules returns the number of repository rules.
func (g *Grammar) NumRules() int { return len(g.order) }
