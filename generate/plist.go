package generate

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// plistWriter emits an old-style (NeXTSTEP) property list.
type plistWriter struct {
	w    *bufio.Writer
	unit string
	err  error
}

func writePlist(w io.Writer, doc *dict, opts Options) error {
	p := &plistWriter{w: bufio.NewWriter(w), unit: opts.unit()}

	p.dict(0, doc)
	p.raw(0, "\n")

	if p.err != nil {
		return p.err
	}

	return p.w.Flush()
}

func (p *plistWriter) raw(level int, s string) {
	if p.err != nil {
		return
	}

	if _, p.err = p.w.WriteString(strings.Repeat(p.unit, level)); p.err != nil {
		return
	}

	_, p.err = p.w.WriteString(s)
}

// dict writes the braces of d; the opening brace is not indented.
func (p *plistWriter) dict(level int, d *dict) {
	p.raw(0, "{\n")

	for _, e := range d.entries {
		p.raw(level+1, plistKey(e.key)+" = ")
		p.value(level+1, e.val)
		p.raw(0, ";\n")
	}

	p.raw(level, "}")
}

func (p *plistWriter) value(level int, v any) {
	switch v := v.(type) {
	case string:
		p.raw(0, plistQuote(v))
	case int:
		p.raw(0, strconv.Itoa(v))
	case *dict:
		p.dict(level, v)
	case []any:
		p.raw(0, "(\n")

		for i, elem := range v {
			if i > 0 {
				p.raw(0, ",\n")
			}

			p.raw(level+1, "")
			p.value(level+1, elem)
		}

		p.raw(0, "\n")
		p.raw(level, ")")
	}
}

func plistKey(s string) string {
	if s != "" && strings.IndexFunc(s, func(r rune) bool {
		return !(r == '_' || r == '.' || r == '$' ||
			'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9')
	}) < 0 {
		return s
	}

	return plistQuote(s)
}

// plistQuote prefers single quotes, which need no escaping of regex
// backslashes. Values containing a single quote are double quoted.
func plistQuote(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}

	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)

	return `"` + r.Replace(s) + `"`
}
