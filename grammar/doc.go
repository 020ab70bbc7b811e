// Package grammar models a TextMate grammar and compiles its match
// expressions into regular-expression source.
//
// # Tree
//
// A [Grammar] owns an ordered list of top-level [Pattern] values and a
// repository of named rules. A [Pattern] owns its match/begin/end
// expressions ([Expr]), three capture tables ([CaptureTable]) and nested
// patterns. A [Capture] names the scope of a captured group and may carry
// nested patterns of its own.
//
// # Match expressions
//
// A match-bearing field holds either a literal ([Literal], [Regexp]) or a
// tree of [Node] values:
//
//	And, Or, Group, CaptureGroup, Repetition,
//	RuleReference, WordBoundary, Term
//
// [ResolveMatches] walks a grammar and replaces every such tree with the
// string produced by a [Compiler]. Compiling a [RuleReference] registers a
// synthetic [Capture] on the pattern that authored it; the capture includes
// "#<rule>" so that highlighters can correlate the group with the rule.
//
//	g := grammar.New("source.foo")
//	grammar.DefineRule(g, "digits", func(p *grammar.Pattern) error {
//		p.Match = grammar.NewExpr(grammar.Literal(`\d+`))
//		return nil
//	})
//	p, _ := grammar.DefinePattern(g, "constant.numeric.foo", func(p *grammar.Pattern) error {
//		p.Match = grammar.NewExpr(grammar.OneOrMore(p.Reference("digits")))
//		return nil
//	})
//	_ = grammar.ResolveMatches(g)
//	fmt.Println(p.Match) // (?<digits>(?:\d+)+)
package grammar
