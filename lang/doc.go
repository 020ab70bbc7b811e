// Package lang reads grammar sources and builds [grammar.Grammar] values.
//
// Every value in a source file is an expr-lang expression. Match-bearing
// properties (match, begin, end) are evaluated with the match builder,
// which turns them into Match AST nodes; other properties are plain
// expr-lang values.
//
// # Grammar
//
// Informal EBNF:
//
//	File     → Stmt* EOF
//	Stmt     → Property | Import | Trait | Grammar | Pattern | Rule
//	         | Capture | Mixin
//	Property → Identifier ':' Expression
//	Import   → 'import' String
//	Trait    → 'trait' Identifier Block
//	Grammar  → 'grammar' String Block
//	Pattern  → 'pattern' String? Block
//	Rule     → 'rule' Identifier Block
//	Capture  → ('capture' | 'beginCapture' | 'endCapture') Key String? Block?
//	Mixin    → 'mixin' Identifier
//	Block    → '{' Stmt* '}'
//
// An expression ends at ';', at an unbalanced closer, or at a newline
// outside brackets. A line ending in an operator, or followed by a line
// starting with '+' or '|', continues the expression.
//
// # Match expressions
//
// Strings are regular-expression source. '+' concatenates, '||' (or 'or')
// alternates, and bare identifiers reference repository rules:
//
//	grammar "source.foo" {
//	  rule ident { match: `[A-Za-z_][\w-]*` }
//	  rule ws    { match: `\s+` }
//
//	  pattern "meta.declaration.foo" {
//	    match: word("let") + ws + ident + opt(ws + "=")
//	  }
//	}
//
// See [Builtins] for the available functions. Each rule reference compiles
// to a capture group registered on the pattern; see [grammar.Compiler].
//
// # Imports and traits
//
// An import loads the traits of another file, searched relative to the
// importing file, then in the [WithSearchPath] directories and $TMG_PATH.
// A trait is a named list of statements spliced in place by 'mixin'.
package lang
