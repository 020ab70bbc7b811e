package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"reflect"
	"slices"

	"github.com/expr-lang/expr"

	"github.com/ardnew/tmgrammar/grammar"
	"github.com/ardnew/tmgrammar/log"
)

// builderFunc is the shape of every function exposed to match expressions.
type builderFunc func(p *grammar.Pattern, args ...any) (any, error)

// builtin describes a match builder function.
type builtin struct {
	fn    builderFunc
	types []any
	usage string
}

var (
	unary    = new(func(any) grammar.Node)
	variadic = new(func(...any) grammar.Node)
)

// builtins lists the functions available in match expressions.
//
// then and either back the overloaded '+' and '||' operators, so their
// types must all take exactly two arguments.
var builtins = map[string]builtin{
	"seq": {fn: seqFunc, types: []any{variadic},
		usage: "seq(x, ...) concatenates its arguments"},
	"alt": {fn: altFunc, types: []any{variadic},
		usage: "alt(x, ...) matches any one of its arguments"},
	"group": {fn: groupFunc, types: []any{unary},
		usage: "group(x) wraps x in a non-capturing group"},
	"capture": {fn: captureFunc, types: []any{variadic},
		usage: "capture([name,] x) wraps x in a capturing group"},
	"optional": {fn: repeatFunc(grammar.Optional), types: []any{unary},
		usage: "optional(x) matches x zero or one time"},
	"opt": {fn: repeatFunc(grammar.Optional), types: []any{unary},
		usage: "opt(x) is short for optional(x)"},
	"zeroOrMore": {fn: repeatFunc(grammar.ZeroOrMore), types: []any{unary},
		usage: "zeroOrMore(x) matches x any number of times"},
	"many": {fn: repeatFunc(grammar.ZeroOrMore), types: []any{unary},
		usage: "many(x) is short for zeroOrMore(x)"},
	"oneOrMore": {fn: repeatFunc(grammar.OneOrMore), types: []any{unary},
		usage: "oneOrMore(x) matches x at least once"},
	"some": {fn: repeatFunc(grammar.OneOrMore), types: []any{unary},
		usage: "some(x) is short for oneOrMore(x)"},
	"wb": {fn: wbFunc, types: []any{unary},
		usage: "wb(x) or wb({name: x}) wraps x in word boundaries"},
	"word": {fn: wordFunc, types: []any{new(func(string) grammar.Node)},
		usage: `word(s) matches s as a whole word captured as s`},
	"term": {fn: termFunc, types: []any{unary},
		usage: "term(x) compiles x without naming its rule references"},
	"re": {fn: reFunc, types: []any{new(func(string) grammar.Node)},
		usage: "re(s) is a regular expression used verbatim"},
	"rule": {fn: ruleFunc, types: []any{new(func(string) grammar.Node)},
		usage: "rule(name) references a repository rule"},
	"then": {fn: seqFunc, types: []any{
		new(func(grammar.Node, grammar.Node) grammar.Node),
		new(func(string, grammar.Node) grammar.Node),
		new(func(grammar.Node, string) grammar.Node),
	}, usage: "a + b concatenates a and b"},
	"either": {fn: altFunc, types: []any{
		new(func(grammar.Node, grammar.Node) grammar.Node),
		new(func(string, grammar.Node) grammar.Node),
		new(func(grammar.Node, string) grammar.Node),
		new(func(string, string) grammar.Node),
	}, usage: "a || b (or a or b) matches a or b"},
}

// stringOnly lists the builders whose every signature takes only strings.
var stringOnly = func() map[string]bool {
	str := reflect.TypeFor[string]()
	only := make(map[string]bool)

	for name, b := range builtins {
		only[name] = len(b.types) > 0 && !slices.ContainsFunc(b.types, func(t any) bool {
			fn := reflect.TypeOf(t).Elem()
			for i := range fn.NumIn() {
				if fn.In(i) != str {
					return true
				}
			}

			return false
		})
	}

	return only
}()

// Builtins returns the names of the match builder functions in sorted order.
func Builtins() []string {
	return slices.Sorted(maps.Keys(builtins))
}

// Usage returns a one-line description of the named builder function.
func Usage(name string) (string, bool) {
	b, ok := builtins[name]

	return b.usage, ok
}

// CompileMatch evaluates the match expression src authored in pattern p and
// returns its Match AST. String results become [grammar.Literal].
func CompileMatch(p *grammar.Pattern, src string, logger log.Logger) (grammar.Node, error) {
	funcs := make(map[string]bool, len(builtins))
	args := &stringArgChecker{funcs: funcs, stringOnly: stringOnly}
	opts := []expr.Option{
		expr.DisableAllBuiltins(),
		expr.Patch(&hyphenPatcher{logger: logger}),
		expr.Patch(&rulePatcher{funcs: funcs, logger: logger}),
		expr.Patch(args),
	}

	for name, b := range builtins {
		funcs[name] = true
		opts = append(opts, expr.Function(name,
			func(args ...any) (any, error) { return b.fn(p, args...) },
			b.types...))
	}

	opts = append(opts,
		expr.Operator("+", "then"),
		expr.Operator("||", "either"),
		expr.Operator("or", "either"),
	)

	program, err := expr.Compile(src, opts...)
	if err == nil {
		err = args.err
	}

	if err != nil {
		return nil, ErrExprCompile.Wrap(err).With(slog.String("source", src))
	}

	out, err := expr.Run(program, nil)
	if err != nil {
		return nil, ErrExprEvaluate.Wrap(err).With(slog.String("source", src))
	}

	n, err := toNode(out)
	if err != nil {
		return nil, ErrInvalidMatch.Wrap(err).With(slog.String("source", src))
	}

	return n, nil
}

// EvalValue evaluates a property expression. Only the expr-lang builtins
// and env(name) are available.
func EvalValue(src string) (any, error) {
	env := map[string]any{"env": os.Getenv}

	program, err := expr.Compile(src, expr.Env(env))
	if err != nil {
		return nil, ErrExprCompile.Wrap(err).With(slog.String("source", src))
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return nil, ErrExprEvaluate.Wrap(err).With(slog.String("source", src))
	}

	return out, nil
}

func toNode(v any) (grammar.Node, error) {
	switch n := v.(type) {
	case string:
		return grammar.Literal(n), nil
	case grammar.Node:
		if n == nil || reflect.ValueOf(n).Kind() == reflect.Pointer &&
			reflect.ValueOf(n).IsNil() {
			break
		}

		return n, nil
	}

	return nil, fmt.Errorf("%w: %T", ErrInvalidValueType, v)
}

func toNodes(args []any) ([]grammar.Node, error) {
	nodes := make([]grammar.Node, len(args))

	for i, a := range args {
		n, err := toNode(a)
		if err != nil {
			return nil, err
		}

		nodes[i] = n
	}

	return nodes, nil
}

func arity(name string, args []any, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s: expected %d argument(s), got %d", name, n, len(args))
	}

	return nil
}

func seqFunc(_ *grammar.Pattern, args ...any) (any, error) {
	nodes, err := toNodes(args)
	if err != nil {
		return nil, err
	}

	if len(nodes) == 0 {
		return nil, errors.New("seq: no arguments")
	}

	return grammar.Seq(nodes...), nil
}

func altFunc(_ *grammar.Pattern, args ...any) (any, error) {
	nodes, err := toNodes(args)
	if err != nil {
		return nil, err
	}

	if len(nodes) == 0 {
		return nil, errors.New("alt: no arguments")
	}

	return grammar.Alt(nodes...), nil
}

func groupFunc(_ *grammar.Pattern, args ...any) (any, error) {
	if err := arity("group", args, 1); err != nil {
		return nil, err
	}

	n, err := toNode(args[0])
	if err != nil {
		return nil, err
	}

	return grammar.Group{Node: n}, nil
}

func captureFunc(_ *grammar.Pattern, args ...any) (any, error) {
	switch len(args) {
	case 1:
		n, err := toNode(args[0])
		if err != nil {
			return nil, err
		}

		return grammar.Capturing(n), nil

	case 2:
		name, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("capture: name must be a string, got %T", args[0])
		}

		n, err := toNode(args[1])
		if err != nil {
			return nil, err
		}

		return grammar.NamedCapturing(name, n), nil
	}

	return nil, fmt.Errorf("capture: expected 1 or 2 arguments, got %d", len(args))
}

func repeatFunc(wrap func(grammar.Node) grammar.Node) builderFunc {
	return func(_ *grammar.Pattern, args ...any) (any, error) {
		if err := arity("repetition", args, 1); err != nil {
			return nil, err
		}

		n, err := toNode(args[0])
		if err != nil {
			return nil, err
		}

		return wrap(n), nil
	}
}

// wbFunc wraps its argument in word boundaries. A single-entry map names
// the capture: wb({kw: "if"}) is \b(?<kw>if)\b.
func wbFunc(_ *grammar.Pattern, args ...any) (any, error) {
	if err := arity("wb", args, 1); err != nil {
		return nil, err
	}

	if m, ok := args[0].(map[string]any); ok {
		if len(m) != 1 {
			return nil, fmt.Errorf("wb: expected a single name, got %d", len(m))
		}

		for name, v := range m {
			n, err := toNode(v)
			if err != nil {
				return nil, err
			}

			return grammar.WordBoundary{Node: grammar.NamedCapturing(name, n)}, nil
		}
	}

	n, err := toNode(args[0])
	if err != nil {
		return nil, err
	}

	return grammar.WordBoundary{Node: n}, nil
}

func wordFunc(_ *grammar.Pattern, args ...any) (any, error) {
	if err := arity("word", args, 1); err != nil {
		return nil, err
	}

	s, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("word: expected a string, got %T", args[0])
	}

	return grammar.WordBoundary{
		Node: grammar.NamedCapturing(s, grammar.Literal(s)),
	}, nil
}

func termFunc(_ *grammar.Pattern, args ...any) (any, error) {
	if err := arity("term", args, 1); err != nil {
		return nil, err
	}

	n, err := toNode(args[0])
	if err != nil {
		return nil, err
	}

	return grammar.Term{Value: n}, nil
}

func reFunc(_ *grammar.Pattern, args ...any) (any, error) {
	if err := arity("re", args, 1); err != nil {
		return nil, err
	}

	s, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("re: expected a string, got %T", args[0])
	}

	return grammar.Regexp(s), nil
}

func ruleFunc(p *grammar.Pattern, args ...any) (any, error) {
	if err := arity("rule", args, 1); err != nil {
		return nil, err
	}

	s, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("rule: expected a string, got %T", args[0])
	}

	return p.Reference(s), nil
}
