package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrParse            = NewError("parse error")
	ErrReadInput        = NewError("failed to read input")
	ErrImportNotFound   = NewError("import not found")
	ErrImportCycle      = NewError("import cycle")
	ErrUndefinedTrait   = NewError("undefined trait")
	ErrMixinCycle       = NewError("mixin cycle")
	ErrMultipleGrammars = NewError("more than one grammar declared")
	ErrNoGrammar        = NewError("no grammar declared")
	ErrUnexpectedStmt   = NewError("statement not allowed here")
	ErrUnknownProperty  = NewError("unknown property")
	ErrExprCompile      = NewError("expression compilation failed")
	ErrExprEvaluate     = NewError("expression evaluation failed")
	ErrInvalidValueType = NewError("invalid value type")
	ErrInvalidMatch     = NewError("invalid match expression")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error
	file  string
	pos   Position
	attrs []slog.Attr
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	var ee *Error
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
//
// The format is "[file:line:col: ]<msg>: <err>", omitting empty parts.
func (e *Error) Error() string {
	part := make([]string, 0, 3)

	if loc := e.location(); loc != "" {
		part = append(part, loc)
	}

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	for _, a := range e.attrs {
		switch a.Key {
		case "name", "rule", "trait", "property", "path":
			part = append(part, a.Value.String())
		}
	}

	return strings.Join(part, ": ")
}

func (e *Error) location() string {
	var sb strings.Builder

	sb.WriteString(e.file)

	if e.pos.Line > 0 {
		if sb.Len() > 0 {
			sb.WriteByte(':')
		}

		sb.WriteString(e.pos.String())
	}

	return sb.String()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.msg != "" && t.msg == e.msg && t.err == nil
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+3)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	if loc := e.location(); loc != "" {
		attrs = append(attrs, slog.String("at", loc))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.err = err

	return &c
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance; the receiver is not modified.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := *e
	c.attrs = make([]slog.Attr, 0, len(e.attrs)+len(attrs))
	c.attrs = append(append(c.attrs, e.attrs...), attrs...)

	return &c
}

// WithPosition returns a copy of e located at pos.
func (e *Error) WithPosition(pos Position) *Error {
	c := *e
	c.pos = pos

	return &c
}

// InFile returns a copy of e located in file. An existing file is kept.
func (e *Error) InFile(file string) *Error {
	c := *e
	if c.file == "" {
		c.file = file
	}

	return &c
}

// ParseError is a syntax error with enough context to show the offending
// source line.
type ParseError struct {
	File     string
	Source   string
	Pos      Position
	Msg      string
	Expected []string
}

// Error renders the message followed by the source line and a caret.
func (e *ParseError) Error() string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteByte(':')
	}

	sb.WriteString(e.Pos.String())
	sb.WriteString(": ")
	sb.WriteString(e.Msg)

	if len(e.Expected) > 0 {
		exp := make([]string, len(e.Expected))
		for i, s := range e.Expected {
			exp[i] = strconv.Quote(s)
		}

		sb.WriteString(" (expected ")
		sb.WriteString(strings.Join(exp, ", "))
		sb.WriteByte(')')
	}

	lines := strings.Split(e.Source, "\n")
	if e.Pos.Line < 1 || e.Pos.Line > len(lines) {
		return sb.String()
	}

	num := strconv.Itoa(e.Pos.Line)

	sb.WriteString("\n  ")
	sb.WriteString(num)
	sb.WriteString(" | ")
	sb.WriteString(lines[e.Pos.Line-1])
	sb.WriteByte('\n')
	// 2 leading spaces and " | " precede the line text.
	sb.WriteString(strings.Repeat(" ", len(num)+5+max(e.Pos.Column-1, 0)))
	sb.WriteByte('^')

	return sb.String()
}

// Unwrap makes every ParseError match [ErrParse].
func (e *ParseError) Unwrap() error { return ErrParse }
