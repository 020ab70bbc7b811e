package generate

import (
	"bufio"
	"encoding/xml"
	"io"
	"strconv"
	"strings"
)

const (
	xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
		`<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" ` +
		`"http://www.apple.com/DTDs/PropertyList-1.0.dtd">` + "\n" +
		`<plist version="1.0">` + "\n"
	xmlFooter = "\n</plist>\n"
)

// xmlWriter emits an XML property list.
type xmlWriter struct {
	w    *bufio.Writer
	unit string
	err  error
}

func writeXML(w io.Writer, doc *dict, opts Options) error {
	x := &xmlWriter{w: bufio.NewWriter(w), unit: opts.unit()}

	x.raw(0, xmlHeader)
	x.dict(0, doc)
	x.raw(0, xmlFooter)

	if x.err != nil {
		return x.err
	}

	return x.w.Flush()
}

func (x *xmlWriter) raw(level int, s string) {
	if x.err != nil {
		return
	}

	if _, x.err = x.w.WriteString(strings.Repeat(x.unit, level)); x.err != nil {
		return
	}

	_, x.err = x.w.WriteString(s)
}

func (x *xmlWriter) escaped(s string) string {
	var sb strings.Builder
	if err := xml.EscapeText(&sb, []byte(s)); err != nil && x.err == nil {
		x.err = err
	}

	return sb.String()
}

// dict writes d without a trailing newline.
func (x *xmlWriter) dict(level int, d *dict) {
	x.raw(level, "<dict>\n")

	for _, e := range d.entries {
		x.raw(level+1, "<key>"+x.escaped(e.key)+"</key>\n")
		x.value(level+1, e.val)
		x.raw(0, "\n")
	}

	x.raw(level, "</dict>")
}

func (x *xmlWriter) value(level int, v any) {
	switch v := v.(type) {
	case string:
		x.raw(level, "<string>"+x.escaped(v)+"</string>")
	case int:
		x.raw(level, "<integer>"+strconv.Itoa(v)+"</integer>")
	case *dict:
		x.dict(level, v)
	case []any:
		x.raw(level, "<array>\n")

		for _, elem := range v {
			x.value(level+1, elem)
			x.raw(0, "\n")
		}

		x.raw(level, "</array>")
	}
}
