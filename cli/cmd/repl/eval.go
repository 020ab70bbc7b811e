package repl

import (
	"fmt"
	"strings"

	"github.com/ardnew/tmgrammar/grammar"
	"github.com/ardnew/tmgrammar/lang"
	"github.com/ardnew/tmgrammar/log"
)

// result is the outcome of compiling one match expression.
type result struct {
	tree     string
	regex    string
	captures []capture
}

// capture describes a synthetic capture registered by the expression.
type capture struct {
	key      string
	name     string
	includes []string
}

// evaluate compiles src as a match expression of a scratch pattern of g.
// The pattern is never added to g.
func evaluate(
	g *grammar.Grammar,
	src string,
	logger log.Logger,
	opts ...grammar.Option,
) (result, error) {
	p := g.NewPattern()

	n, err := lang.CompileMatch(p, src, logger)
	if err != nil {
		return result{}, err
	}

	regex, err := grammar.CompileString(p, n, opts...)
	if err != nil {
		return result{}, err
	}

	res := result{tree: grammar.Format(n), regex: regex}

	for key, c := range p.Captures.All() {
		rc := capture{key: key.String(), name: c.Name}

		for _, q := range c.Patterns {
			rc.includes = append(rc.includes, q.Include)
		}

		res.captures = append(res.captures, rc)
	}

	return res, nil
}

func (r result) render() string {
	var b strings.Builder

	b.WriteString(hintStyle.Render(r.tree))
	b.WriteString("\n")
	b.WriteString(resultStyle.Render(r.regex))

	for _, c := range r.captures {
		desc := strings.Join(c.includes, " ")
		if c.name != "" {
			desc = strings.TrimSpace(c.name + " " + desc)
		}

		fmt.Fprintf(&b, "\n  %s %s", captureStyle.Render(c.key), hintStyle.Render(desc))
	}

	return b.String()
}
