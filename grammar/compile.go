package grammar

import (
	"log/slog"
	"slices"

	"github.com/ardnew/tmgrammar/log"
)

// Option applies a configuration option to a [Compiler].
type Option func(options) options

type options struct {
	logger   log.Logger
	numbered bool
}

func apply(o options, opts ...Option) options {
	for _, opt := range opts {
		o = opt(o)
	}

	return o
}

// WithLogger sets the logger used to trace compilation.
func WithLogger(logger log.Logger) Option {
	return func(o options) options {
		o.logger = logger

		return o
	}
}

// WithNumberedReferences makes top-level rule references emit unnamed
// groups registered under their group number instead of named groups.
func WithNumberedReferences(enable bool) Option {
	return func(o options) options {
		o.numbered = enable

		return o
	}
}

// Compiler turns a match expression tree into regex source.
//
// A Compiler is bound to one field of one pattern. Synthetic captures for
// rule references authored in that pattern are registered in table.
type Compiler struct {
	pattern *Pattern
	table   *CaptureTable
	opts    options

	// named maps each group name emitted so far to whether a rule
	// reference (rather than an authored capture) opened it.
	named  map[string]bool
	active []string
}

// NewCompiler returns a compiler for an expression of p whose captures are
// recorded in table. A nil table selects p.Captures.
func NewCompiler(p *Pattern, table *CaptureTable, opts ...Option) *Compiler {
	if table == nil && p != nil {
		table = &p.Captures
	}

	if table == nil {
		table = &CaptureTable{}
	}

	return &Compiler{
		pattern: p,
		table:   table,
		opts:    apply(options{}, opts...),
		named:   make(map[string]bool),
	}
}

// Compile returns the regex source of n. When top is true, capturing
// groups introduced by n are emitted as non-capturing groups.
func (c *Compiler) Compile(n Node, top bool) (string, error) {
	switch v := n.(type) {
	case And:
		l, err := c.Compile(v.Left, top)
		if err != nil {
			return "", err
		}

		r, err := c.Compile(v.Right, top)
		if err != nil {
			return "", err
		}

		return l + r, nil

	case Or:
		l, err := c.Compile(v.Left, top)
		if err != nil {
			return "", err
		}

		r, err := c.Compile(v.Right, top)
		if err != nil {
			return "", err
		}

		return "(?:" + l + "|" + r + ")", nil

	case Group:
		inner, err := c.Compile(v.Node, top)
		if err != nil {
			return "", err
		}

		return "(?:" + inner + ")", nil

	case CaptureGroup:
		return c.group(v.Name, v.Node, top)

	case Repetition:
		return c.repetition(v, top)

	case *RuleReference:
		rule, err := c.lookup(v)
		if err != nil {
			return "", err
		}

		return c.reference(v, rule, top)

	case WordBoundary:
		inner, err := c.Compile(v.Node, top)
		if err != nil {
			return "", err
		}

		return `\b` + inner + `\b`, nil

	case Term:
		return c.Compile(v.Value, false)

	case Literal:
		return string(v), nil

	case Regexp:
		return string(v), nil

	case *Pattern:
		if v == nil || v.Match == nil || v.Match.Node() == nil {
			return "", ErrEmptyRule
		}

		return c.Compile(v.Match.Node(), top)

	default:
		return "", ErrUnhandledNode.With(slog.String("node", Format(n)))
	}
}

// group emits a capturing group around n, or a non-capturing one when top
// is set or name was already used in this expression.
func (c *Compiler) group(name string, n Node, top bool) (string, error) {
	open := c.open(name, top)

	inner, err := c.Compile(n, top)
	if err != nil {
		return "", err
	}

	return open + inner + ")", nil
}

// open returns the opening delimiter of a group and advances the group
// counter if the group captures.
func (c *Compiler) open(name string, top bool) string {
	if top {
		return "(?:"
	}

	if name == "" {
		c.table.Next()

		return "("
	}

	if _, dup := c.named[name]; dup {
		return "(?:"
	}

	c.named[name] = false
	c.table.Next()

	return "(?<" + name + ">"
}

func (c *Compiler) repetition(r Repetition, top bool) (string, error) {
	suffix := r.Kind.Suffix()

	if ref, ok := r.Node.(*RuleReference); ok && r.Kind != Opt {
		rule, err := c.lookup(ref)
		if err != nil {
			return "", err
		}

		return c.reference(ref, And{Group{rule}, Literal(suffix)}, top)
	}

	inner, err := c.Compile(Group{r.Node}, top)
	if err != nil {
		return "", err
	}

	return inner + suffix, nil
}

func (c *Compiler) lookup(ref *RuleReference) (*Pattern, error) {
	g := c.grammarOf(ref)
	if g == nil {
		return nil, ErrUndeclaredRule.With(slog.String("rule", ref.Rule))
	}

	rule, ok := g.Rule(ref.Rule)
	if !ok {
		return nil, ErrUndeclaredRule.With(slog.String("rule", ref.Rule))
	}

	if rule.Match == nil || rule.Match.Node() == nil {
		return nil, ErrEmptyRule.With(slog.String("rule", ref.Rule))
	}

	return rule, nil
}

func (c *Compiler) grammarOf(ref *RuleReference) *Grammar {
	if ref.Containing != nil && ref.Containing.grammar != nil {
		return ref.Containing.grammar
	}

	if c.pattern != nil {
		return c.pattern.grammar
	}

	return nil
}

// reference emits the group for a rule reference whose expansion is
// referenced, registering the synthetic capture that includes the rule.
func (c *Compiler) reference(
	ref *RuleReference,
	referenced Node,
	top bool,
) (string, error) {
	if slices.Contains(c.active, ref.Rule) {
		return "", ErrRecursiveRule.With(slog.String("rule", ref.Rule))
	}

	var open string

	switch {
	case top:
		open = "(?:"
		if !c.opts.numbered {
			c.register(ref, Name(ref.Rule))
		}

	case c.opts.numbered:
		open = "("
		c.register(ref, Number(c.table.Next()))

	default:
		if byRef, seen := c.named[ref.Rule]; seen && !byRef {
			c.opts.logger.Warn("rule reference shadowed by capture",
				slog.String("rule", ref.Rule))

			open = "(?:"

			break
		}

		c.register(ref, Name(ref.Rule))
		open = c.open(ref.Rule, false)
		c.named[ref.Rule] = true
	}

	c.active = append(c.active, ref.Rule)
	inner, err := c.Compile(referenced, true)
	c.active = c.active[:len(c.active)-1]

	if err != nil {
		return "", err
	}

	return open + inner + ")", nil
}

func (c *Compiler) register(ref *RuleReference, key CaptureKey) {
	table := c.table
	if !key.IsNumber() && ref.Containing != nil && ref.Containing != c.pattern {
		table = &ref.Containing.Captures
	}

	if prev, ok := table.Get(key); ok && !includesOnly(prev, ref.Rule) {
		c.opts.logger.Warn("rule capture not registered over authored capture",
			slog.String("rule", ref.Rule),
			slog.String("key", key.String()))

		return
	}

	g := c.grammarOf(ref)
	include := &Pattern{Include: "#" + ref.Rule, grammar: g}
	table.Set(key, &Capture{Patterns: []*Pattern{include}, grammar: g})

	c.opts.logger.Trace("register rule capture",
		slog.String("rule", ref.Rule),
		slog.String("key", key.String()))
}

// includesOnly reports whether c is the capture registered for a reference
// to rule.
func includesOnly(c *Capture, rule string) bool {
	return c.Name == "" && len(c.Patterns) == 1 && c.Patterns[0].Include == "#"+rule
}

// CompileString compiles n as a non-top-level expression of p.
func CompileString(p *Pattern, n Node, opts ...Option) (string, error) {
	return NewCompiler(p, nil, opts...).Compile(n, false)
}
