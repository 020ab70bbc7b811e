package generate

import (
	"slices"

	"github.com/ardnew/tmgrammar/grammar"
	"github.com/ardnew/tmgrammar/pkg"
)

// dict is an ordered dictionary. Values are string, int, []any or *dict.
type dict struct {
	entries []entry
}

type entry struct {
	key string
	val any
}

// set appends key unless v is empty.
func (d *dict) set(key string, v any) {
	switch v := v.(type) {
	case nil:
		return
	case string:
		if v == "" {
			return
		}
	case []any:
		if len(v) == 0 {
			return
		}
	case *dict:
		if v == nil || len(v.entries) == 0 {
			return
		}
	}

	d.entries = append(d.entries, entry{key: key, val: v})
}

// layout is the key order of one output format.
type layout struct {
	grammar []string
	pattern []string
	// sorted orders the keys of repository and capture dictionaries.
	sorted bool
}

var (
	xmlLayout = layout{
		grammar: []string{
			"comment", "fileTypes", "firstLineMatch", "keyEquivalent", "name",
			"patterns", "repository", "foldingStartMarker", "foldingStopMarker",
			"scopeName", "uuid",
		},
		pattern: []string{
			"begin", "beginCaptures", "captures", "comment", "contentName",
			"disabled", "end", "endCaptures", "include", "match", "name",
			"patterns",
		},
		sorted: true,
	}

	textLayout = layout{
		grammar: []string{
			"scopeName", "name", "fileTypes", "foldingStartMarker",
			"foldingStopMarker", "firstLineMatch", "keyEquivalent", "comment",
			"patterns", "repository", "uuid",
		},
		pattern: []string{
			"name", "match", "begin", "end", "contentName", "comment",
			"disabled", "include", "captures", "beginCaptures", "endCaptures",
			"patterns",
		},
	}
)

// ordered builds a dict from fields following keys.
func ordered(keys []string, fields map[string]any) *dict {
	d := new(dict)

	for _, k := range keys {
		d.set(k, fields[k])
	}

	return d
}

func build(g *grammar.Grammar, opts Options, l layout) (*dict, error) {
	if len(opts.Rules) > 0 {
		patterns := make([]any, 0, len(opts.Rules))

		for _, name := range opts.Rules {
			p, ok := g.Rule(name)
			if !ok {
				return nil, pkg.ErrUnknownRule.Wrapf("%q", name)
			}

			d, err := l.patternDict(p)
			if err != nil {
				return nil, err
			}

			patterns = append(patterns, d)
		}

		return ordered(l.grammar, map[string]any{
			"scopeName": g.ScopeName(),
			"patterns":  patterns,
			"uuid":      g.UUID,
		}), nil
	}

	patterns, err := l.patternList(g.Patterns)
	if err != nil {
		return nil, err
	}

	repo := new(dict)

	names := g.RuleNames()
	if l.sorted {
		names = sortedCopy(names)
	}

	for _, name := range names {
		p, _ := g.Rule(name)

		d, err := l.patternDict(p)
		if err != nil {
			return nil, err
		}

		// An empty rule is still written so that includes resolve.
		repo.entries = append(repo.entries, entry{key: name, val: d})
	}

	fileTypes := make([]any, len(g.FileTypes))
	for i, s := range g.FileTypes {
		fileTypes[i] = s
	}

	return ordered(l.grammar, map[string]any{
		"comment":            g.Comment,
		"fileTypes":          fileTypes,
		"firstLineMatch":     g.FirstLineMatch,
		"keyEquivalent":      g.KeyEquivalent,
		"name":               g.Name,
		"patterns":           patterns,
		"repository":         repo,
		"foldingStartMarker": g.FoldingStartMarker,
		"foldingStopMarker":  g.FoldingStopMarker,
		"scopeName":          g.ScopeName(),
		"uuid":               g.UUID,
	}), nil
}

func (l layout) patternList(ps []*grammar.Pattern) ([]any, error) {
	list := make([]any, 0, len(ps))

	for _, p := range ps {
		d, err := l.patternDict(p)
		if err != nil {
			return nil, err
		}

		list = append(list, d)
	}

	return list, nil
}

func (l layout) patternDict(p *grammar.Pattern) (*dict, error) {
	fields := map[string]any{
		"name":        p.Name,
		"contentName": p.ContentName,
		"comment":     p.Comment,
		"include":     p.Include,
	}

	if p.Disabled {
		fields["disabled"] = 1
	}

	for key, e := range map[string]*grammar.Expr{
		"match": p.Match, "begin": p.Begin, "end": p.End,
	} {
		if e == nil {
			continue
		}

		if !e.Resolved() {
			return nil, pkg.ErrWriteOutput.Wrapf(
				"unresolved %s expression in pattern %q", key, p.Name)
		}

		fields[key] = e.String()
	}

	for key, t := range map[string]*grammar.CaptureTable{
		"captures":      &p.Captures,
		"beginCaptures": &p.BeginCaptures,
		"endCaptures":   &p.EndCaptures,
	} {
		d, err := l.captureTable(t)
		if err != nil {
			return nil, err
		}

		fields[key] = d
	}

	patterns, err := l.patternList(p.Patterns)
	if err != nil {
		return nil, err
	}

	fields["patterns"] = patterns

	return ordered(l.pattern, fields), nil
}

func (l layout) captureTable(t *grammar.CaptureTable) (*dict, error) {
	d := new(dict)

	keys := t.Sorted()
	if !l.sorted {
		keys = keys[:0]
		for k := range t.All() {
			keys = append(keys, k)
		}
	}

	for _, k := range keys {
		c, _ := t.Get(k)

		patterns, err := l.patternList(c.Patterns)
		if err != nil {
			return nil, err
		}

		cd := new(dict)
		cd.set("name", c.Name)
		cd.set("patterns", patterns)

		d.entries = append(d.entries, entry{key: k.String(), val: cd})
	}

	return d, nil
}

func sortedCopy(s []string) []string {
	c := make([]string, len(s))
	copy(c, s)
	slices.Sort(c)

	return c
}
