package generate

import (
	"context"
	"io"
	"iter"
	"slices"
	"strings"

	"github.com/ardnew/tmgrammar/grammar"
	"github.com/ardnew/tmgrammar/pkg"
)

// Format selects an output encoding.
type Format int

// Supported output formats.
const (
	FormatXML Format = iota
	FormatPlist
	FormatJSON
	FormatYAML
)

var formatName = [...]string{
	FormatXML:   "xml",
	FormatPlist: "plist",
	FormatJSON:  "json",
	FormatYAML:  "yaml",
}

// String returns the name used to select f on the command line.
func (f Format) String() string {
	if f >= 0 && int(f) < len(formatName) {
		return formatName[f]
	}

	return "unknown"
}

// Formats returns an iterator over all supported format names.
func Formats() iter.Seq[string] { return slices.Values(formatName[:]) }

// ParseFormat returns the format named s, ignoring case.
func ParseFormat(s string) (Format, error) {
	for f, name := range formatName {
		if strings.EqualFold(s, name) {
			return Format(f), nil
		}
	}

	return 0, pkg.ErrInvalidFormat.Wrapf(
		"%q (expected one of %s)", s, strings.Join(formatName[:], ", "))
}

// Options controls what is written and how it is indented.
type Options struct {
	// Rules selects repository rules to emit as top-level patterns. When
	// set, only scopeName, uuid and the selected rules are written.
	Rules []string
	// Indent is the number of IndentText repetitions per nesting level.
	Indent int
	// IndentText is the text repeated to indent one level.
	IndentText string
}

// DefaultOptions returns one tab per nesting level.
func DefaultOptions() Options {
	return Options{Indent: 1, IndentText: "\t"}
}

func (o Options) unit() string {
	return strings.Repeat(o.IndentText, max(o.Indent, 0))
}

// Write encodes g in format f. Every match expression of g must already
// be resolved; see [grammar.ResolveMatches].
func Write(
	ctx context.Context,
	w io.Writer,
	g *grammar.Grammar,
	f Format,
	opts Options,
) error {
	l := textLayout
	if f == FormatXML {
		l = xmlLayout
	}

	doc, err := build(g, opts, l)
	if err != nil {
		return err
	}

	switch f {
	case FormatXML:
		err = writeXML(w, doc, opts)
	case FormatPlist:
		err = writePlist(w, doc, opts)
	case FormatJSON:
		err = writeJSON(w, doc, opts)
	case FormatYAML:
		err = writeYAML(ctx, w, doc, opts)
	default:
		return pkg.ErrInvalidFormat.Wrapf("%d", int(f))
	}

	if err != nil {
		return pkg.ErrWriteOutput.Wrap(err)
	}

	return nil
}
