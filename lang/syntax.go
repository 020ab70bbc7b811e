package lang

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Position identifies a location in a source file.
type Position struct {
	Offset int
	Line   int
	Column int
}

// String returns "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Kind classifies a [Stmt].
type Kind int

// Statement kinds.
const (
	KindProperty Kind = iota
	KindImport
	KindTrait
	KindGrammar
	KindPattern
	KindRule
	KindCapture
	KindBeginCapture
	KindEndCapture
	KindMixin
)

var kindName = [...]string{
	KindProperty:     "property",
	KindImport:       "import",
	KindTrait:        "trait",
	KindGrammar:      "grammar",
	KindPattern:      "pattern",
	KindRule:         "rule",
	KindCapture:      "capture",
	KindBeginCapture: "beginCapture",
	KindEndCapture:   "endCapture",
	KindMixin:        "mixin",
}

// String returns the keyword that introduces k.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindName) {
		return kindName[k]
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// keyword maps statement keywords to their kind.
var keyword = map[string]Kind{
	"import":       KindImport,
	"trait":        KindTrait,
	"grammar":      KindGrammar,
	"pattern":      KindPattern,
	"rule":         KindRule,
	"capture":      KindCapture,
	"beginCapture": KindBeginCapture,
	"endCapture":   KindEndCapture,
	"mixin":        KindMixin,
}

// Stmt is a single declaration.
//
// The meaning of Name and Scope depends on Kind:
//
//	property      Name=key        Value=expression source
//	import        Name=path
//	trait, rule   Name=identifier
//	mixin         Name=trait
//	grammar       Name=scope name
//	pattern       Scope=scope name (optional)
//	*capture      Name=group key  Scope=scope name (optional)
type Stmt struct {
	Kind  Kind
	Pos   Position
	Name  string
	Scope string
	Value string
	Body  []*Stmt
}

// File is a parsed source file.
type File struct {
	Path   string
	Source string
	Stmts  []*Stmt
}

// Dump writes an indented outline of f to w.
func (f *File) Dump(w io.Writer) error {
	var sb strings.Builder

	var dump func(stmts []*Stmt, depth int)
	dump = func(stmts []*Stmt, depth int) {
		for _, s := range stmts {
			sb.WriteString(strings.Repeat("  ", depth))
			sb.WriteString(s.Pos.String())
			sb.WriteByte(' ')
			sb.WriteString(s.Kind.String())

			switch s.Kind {
			case KindProperty:
				fmt.Fprintf(&sb, " %s: %s", s.Name, s.Value)
			case KindPattern:
				if s.Scope != "" {
					sb.WriteString(" " + strconv.Quote(s.Scope))
				}
			case KindCapture, KindBeginCapture, KindEndCapture:
				sb.WriteString(" " + s.Name)

				if s.Scope != "" {
					sb.WriteString(" " + strconv.Quote(s.Scope))
				}
			case KindImport, KindGrammar:
				sb.WriteString(" " + strconv.Quote(s.Name))
			default:
				sb.WriteString(" " + s.Name)
			}

			sb.WriteByte('\n')
			dump(s.Body, depth+1)
		}
	}

	dump(f.Stmts, 0)

	_, err := io.WriteString(w, sb.String())

	return err
}
