package grammar

import (
	"strconv"
	"strings"
)

// Node is an element of a match expression tree.
//
// The set of implementations is closed: And, Or, Group, CaptureGroup,
// Repetition, RuleReference, WordBoundary, Term, Literal, Regexp and
// *Pattern.
type Node interface {
	node()
}

type (
	// And matches Left followed immediately by Right.
	And struct{ Left, Right Node }

	// Or matches either Left or Right.
	Or struct{ Left, Right Node }

	// Group wraps Node in a non-capturing group.
	Group struct{ Node Node }

	// CaptureGroup wraps Node in a capturing group. An empty Name produces
	// an unnamed group.
	CaptureGroup struct {
		Node Node
		Name string
	}

	// Repetition applies a quantifier to Node.
	Repetition struct {
		Node Node
		Kind Quantifier
	}

	// RuleReference names a repository rule from within the pattern that
	// authored it.
	RuleReference struct {
		Rule       string
		Containing *Pattern
	}

	// WordBoundary surrounds Node with \b anchors.
	WordBoundary struct{ Node Node }

	// Term compiles Node as if it were not referenced from a top level
	// expression.
	Term struct{ Value Node }

	// Literal is regex source emitted verbatim.
	Literal string

	// Regexp is regex source emitted verbatim.
	Regexp string
)

func (And) node()            {}
func (Or) node()             {}
func (Group) node()          {}
func (CaptureGroup) node()   {}
func (Repetition) node()     {}
func (*RuleReference) node() {}
func (WordBoundary) node()   {}
func (Term) node()           {}
func (Literal) node()        {}
func (Regexp) node()         {}
func (*Pattern) node()       {}

// Quantifier is the kind of a [Repetition].
type Quantifier int

// Quantifier kinds.
const (
	Opt Quantifier = iota
	ZeroOrMoreTimes
	OneOrMoreTimes
)

// Suffix returns the regex quantifier.
func (q Quantifier) Suffix() string {
	switch q {
	case Opt:
		return "?"
	case ZeroOrMoreTimes:
		return "*"
	case OneOrMoreTimes:
		return "+"
	default:
		return ""
	}
}

// String returns the builder name of q.
func (q Quantifier) String() string {
	switch q {
	case Opt:
		return "optional"
	case ZeroOrMoreTimes:
		return "zeroOrMore"
	case OneOrMoreTimes:
		return "oneOrMore"
	default:
		return "Quantifier(" + strconv.Itoa(int(q)) + ")"
	}
}

// Seq folds nodes left-associatively into And nodes.
// It returns nil when nodes is empty.
func Seq(nodes ...Node) Node { return fold(nodes, func(l, r Node) Node { return And{l, r} }) }

// Alt folds nodes left-associatively into Or nodes.
// It returns nil when nodes is empty.
func Alt(nodes ...Node) Node { return fold(nodes, func(l, r Node) Node { return Or{l, r} }) }

func fold(nodes []Node, join func(l, r Node) Node) Node {
	if len(nodes) == 0 {
		return nil
	}

	acc := nodes[0]
	for _, n := range nodes[1:] {
		acc = join(acc, n)
	}

	return acc
}

// Optional returns n?.
func Optional(n Node) Node { return Repetition{Node: n, Kind: Opt} }

// ZeroOrMore returns n*.
func ZeroOrMore(n Node) Node { return Repetition{Node: n, Kind: ZeroOrMoreTimes} }

// OneOrMore returns n+.
func OneOrMore(n Node) Node { return Repetition{Node: n, Kind: OneOrMoreTimes} }

// Capturing returns an unnamed capturing group around n.
func Capturing(n Node) Node { return CaptureGroup{Node: n} }

// NamedCapturing returns a capturing group named name around n.
func NamedCapturing(name string, n Node) Node { return CaptureGroup{Node: n, Name: name} }

// Format renders n as a builder expression. It is meant for diagnostics.
func Format(n Node) string {
	var sb strings.Builder

	format(&sb, n)

	return sb.String()
}

func format(sb *strings.Builder, n Node) {
	call := func(name string, args ...Node) {
		sb.WriteString(name)
		sb.WriteByte('(')

		for i, a := range args {
			if i > 0 {
				sb.WriteString(", ")
			}

			format(sb, a)
		}

		sb.WriteByte(')')
	}

	switch v := n.(type) {
	case nil:
		sb.WriteString("nil")
	case And:
		format(sb, v.Left)
		sb.WriteString(" + ")
		format(sb, v.Right)
	case Or:
		sb.WriteByte('(')
		format(sb, v.Left)
		sb.WriteString(" || ")
		format(sb, v.Right)
		sb.WriteByte(')')
	case Group:
		call("group", v.Node)
	case CaptureGroup:
		if v.Name == "" {
			call("capture", v.Node)
		} else {
			sb.WriteString("capture(")
			sb.WriteString(strconv.Quote(v.Name))
			sb.WriteString(", ")
			format(sb, v.Node)
			sb.WriteByte(')')
		}
	case Repetition:
		call(v.Kind.String(), v.Node)
	case *RuleReference:
		sb.WriteString(v.Rule)
	case WordBoundary:
		call("wb", v.Node)
	case Term:
		call("term", v.Value)
	case Literal:
		sb.WriteString(strconv.Quote(string(v)))
	case Regexp:
		sb.WriteString(strconv.Quote(string(v)))
	case *Pattern:
		if v.Match != nil {
			format(sb, v.Match.Node())
		} else {
			sb.WriteString("pattern")
		}
	default:
		sb.WriteString("?")
	}
}
