package generate

import (
	"context"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/tmgrammar/pkg"
)

// mapSlice converts d to an ordered YAML mapping.
func (d *dict) mapSlice() yaml.MapSlice {
	ms := make(yaml.MapSlice, len(d.entries))

	for i, e := range d.entries {
		ms[i] = yaml.MapItem{Key: e.key, Value: yamlValue(e.val)}
	}

	return ms
}

func yamlValue(v any) any {
	switch v := v.(type) {
	case *dict:
		return v.mapSlice()
	case []any:
		s := make([]any, len(v))
		for i, elem := range v {
			s[i] = yamlValue(elem)
		}

		return s
	default:
		return v
	}
}

// writeYAML indents with spaces; YAML forbids tabs. Each indent level is
// two spaces per Indent.
func writeYAML(ctx context.Context, w io.Writer, doc *dict, opts Options) error {
	indent := 2 * max(opts.Indent, 1)

	b, err := yaml.MarshalContext(ctx, doc.mapSlice(),
		yaml.Indent(indent),
		yaml.IndentSequence(true),
	)
	if err != nil {
		return pkg.ErrYAMLMarshal.Wrap(err)
	}

	_, err = w.Write(b)

	return err
}
