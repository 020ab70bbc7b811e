package cmd

import (
	"log/slog"
	"strings"
)

// Error is returned by command Run methods. Its message names the failed
// step, the wrapped error says why, and the attributes say where.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Error renders "<msg>: <err> (<key>=<value> ...)", omitting empty parts.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.msg)

	if e.err != nil {
		if b.Len() > 0 {
			b.WriteString(": ")
		}

		b.WriteString(e.err.Error())
	}

	if len(e.attrs) == 0 {
		return b.String()
	}

	if b.Len() > 0 {
		b.WriteByte(' ')
	}

	b.WriteByte('(')

	for i, a := range e.attrs {
		if i > 0 {
			b.WriteByte(' ')
		}

		b.WriteString(a.Key + "=" + a.Value.Resolve().String())
	}

	b.WriteByte(')')

	return b.String()
}

func (e *Error) Unwrap() error { return e.err }

// Is matches a sentinel with the same message, so that errors derived from
// it with Wrap or With still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.err == nil && t.msg != "" && t.msg == e.msg
}

func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e with err as its cause.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: e.attrs}
}

// With returns a copy of e carrying attrs in addition to its own.
func (e *Error) With(attrs ...slog.Attr) *Error {
	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: append(e.attrs[:len(e.attrs):len(e.attrs)], attrs...),
	}
}

var (
	ErrReadSource    = NewError("read grammar source")
	ErrResolve       = NewError("resolve match expressions")
	ErrWriteOutput   = NewError("write grammar")
	ErrYAMLMarshal   = NewError("marshal YAML")
	ErrWriteConfig   = NewError("write configuration file")
	ErrFileExists    = NewError("file exists (use --force to overwrite)")
	ErrInvalidIndent = NewError("invalid indent")
	ErrCacheDir      = NewError("create cache directory")
)
