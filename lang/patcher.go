package lang

import (
	"fmt"
	"log/slog"

	"github.com/expr-lang/expr/ast"

	"github.com/ardnew/tmgrammar/log"
)

// hyphenPatcher reconstructs hyphenated rule names from BinaryNode("-")
// subtraction chains created by expr-lang's parser.
//
// Rule names may contain hyphens (e.g., "all-types"), which expr-lang parses
// as subtraction. Subtraction has no meaning in a match expression, so every
// identifier chain joined by '-' is rewritten to a single identifier.
//
// ast.Walk visits children first, so "a-b-c" is rebuilt as "a-b" and then
// "a-b-c" during a single walk.
type hyphenPatcher struct {
	logger log.Logger
}

// Visit implements ast.Visitor for hyphenPatcher.
func (p *hyphenPatcher) Visit(node *ast.Node) {
	binNode, ok := (*node).(*ast.BinaryNode)
	if !ok || binNode.Operator != "-" {
		return
	}

	left, ok := binNode.Left.(*ast.IdentifierNode)
	if !ok {
		return
	}

	right, ok := binNode.Right.(*ast.IdentifierNode)
	if !ok {
		return
	}

	combined := left.Value + "-" + right.Value

	ast.Patch(node, &ast.IdentifierNode{Value: combined})

	p.logger.Trace("patch hyphenated",
		slog.String("combined_name", combined))
}

// rulePatcher rewrites every identifier that does not name a builder
// function into a call rule("<identifier>").
type rulePatcher struct {
	funcs  map[string]bool
	logger log.Logger
}

// Visit implements ast.Visitor for rulePatcher.
func (p *rulePatcher) Visit(node *ast.Node) {
	ident, ok := (*node).(*ast.IdentifierNode)
	if !ok || p.funcs[ident.Value] {
		return
	}

	ast.Patch(node, &ast.CallNode{
		Callee:    &ast.IdentifierNode{Value: "rule"},
		Arguments: []ast.Node{&ast.StringNode{Value: ident.Value}},
	})

	p.logger.Trace("patch rule reference",
		slog.String("rule", ident.Value))
}

// stringArgChecker rejects a match expression passed to a builder that only
// accepts strings, such as word(ident). expr-lang cannot catch this itself
// because builders return the grammar.Node interface, which its checker
// treats as assignable to anything.
type stringArgChecker struct {
	funcs      map[string]bool
	stringOnly map[string]bool
	err        error
}

// Visit implements ast.Visitor for stringArgChecker.
func (c *stringArgChecker) Visit(node *ast.Node) {
	call, ok := (*node).(*ast.CallNode)
	if !ok || c.err != nil {
		return
	}

	callee, ok := call.Callee.(*ast.IdentifierNode)
	if !ok || !c.stringOnly[callee.Value] {
		return
	}

	for _, arg := range call.Arguments {
		inner, ok := arg.(*ast.CallNode)
		if !ok {
			continue
		}

		if id, ok := inner.Callee.(*ast.IdentifierNode); ok && c.funcs[id.Value] {
			c.err = fmt.Errorf("%s: expected a string, got %s(...)",
				callee.Value, id.Value)

			return
		}
	}
}
