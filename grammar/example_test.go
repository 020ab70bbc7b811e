package grammar_test

import (
	"fmt"

	"github.com/ardnew/tmgrammar/grammar"
)

func Example() {
	g := grammar.New("source.foo")

	grammar.DefineRule(g, "digits", func(p *grammar.Pattern) error {
		p.Match = grammar.NewExpr(grammar.Literal(`\d+`))

		return nil
	})

	p, _ := grammar.DefinePattern(g, "constant.numeric.foo", func(p *grammar.Pattern) error {
		p.Match = grammar.NewExpr(grammar.OneOrMore(p.Reference("digits")))

		return nil
	})

	if err := grammar.ResolveMatches(g); err != nil {
		fmt.Println(err)

		return
	}

	fmt.Println(p.Match)

	for key, c := range p.Captures.All() {
		fmt.Println(key, c.Patterns[0].Include)
	}

	// Output:
	// (?<digits>(?:\d+)+)
	// digits #digits
}

func ExampleFormat() {
	n := grammar.Seq(
		grammar.Literal("a"),
		grammar.Alt(grammar.Literal("b"), grammar.Literal("c")),
		grammar.Optional(grammar.NamedCapturing("d", grammar.Literal("d"))),
	)

	fmt.Println(grammar.Format(n))

	// Output:
	// "a" + ("b" || "c") + optional(capture("d", "d"))
}
