package generate

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/ardnew/tmgrammar/pkg"
)

// MarshalJSON encodes d as an object, keeping key order.
func (d *dict) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, e := range d.entries {
		if i > 0 {
			buf.WriteByte(',')
		}

		k, err := marshalJSON(e.key)
		if err != nil {
			return nil, err
		}

		v, err := marshalJSON(e.val)
		if err != nil {
			return nil, err
		}

		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// marshalJSON leaves '<', '>' and '&' unescaped; named groups are common.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func writeJSON(w io.Writer, doc *dict, opts Options) error {
	raw, err := marshalJSON(doc)
	if err != nil {
		return pkg.ErrJSONMarshal.Wrap(err)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", opts.unit()); err != nil {
		return pkg.ErrJSONMarshal.Wrap(err)
	}

	out.WriteByte('\n')

	_, err = out.WriteTo(w)

	return err
}
