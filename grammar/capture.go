package grammar

import (
	"iter"
	"slices"
	"strconv"
)

// Capture assigns a scope to a captured group.
type Capture struct {
	Name     string
	Patterns []*Pattern

	grammar *Grammar
}

// NewCapture returns a capture owned by g.
func NewCapture(g *Grammar, name string) *Capture {
	return &Capture{Name: name, grammar: g}
}

// Grammar returns the grammar that owns c.
func (c *Capture) Grammar() *Grammar { return c.grammar }

// AddPattern appends a nested pattern.
func (c *Capture) AddPattern(p *Pattern) {
	c.Patterns = append(c.Patterns, p)
}

// CaptureKey identifies a captured group either by number or by name.
// Numbered and named keys never compare equal, even Number(0) and Name("").
type CaptureKey struct {
	name  string
	num   int
	named bool
}

// Number returns the key of the numbered group n.
func Number(n int) CaptureKey { return CaptureKey{num: n} }

// Name returns the key of the named group s.
func Name(s string) CaptureKey { return CaptureKey{name: s, named: true} }

// IsNumber reports whether k refers to a group by number.
func (k CaptureKey) IsNumber() bool { return !k.named }

// Valid reports whether k can name a group: a non-negative number (0 is the
// whole match) or a non-empty name.
func (k CaptureKey) Valid() bool {
	if k.named {
		return k.name != ""
	}

	return k.num >= 0
}

// Int returns the group number, or 0 for named keys.
func (k CaptureKey) Int() int { return k.num }

// String returns the key as written in a capture dictionary.
func (k CaptureKey) String() string {
	if k.IsNumber() {
		return strconv.Itoa(k.num)
	}

	return k.name
}

// CaptureTable is an insertion-ordered map of captures.
// The zero value is ready to use.
type CaptureTable struct {
	keys []CaptureKey
	caps map[CaptureKey]*Capture
	next int
}

// Set stores c under key. An existing key keeps its position.
func (t *CaptureTable) Set(key CaptureKey, c *Capture) {
	if t.caps == nil {
		t.caps = make(map[CaptureKey]*Capture)
	}

	if _, ok := t.caps[key]; !ok {
		t.keys = append(t.keys, key)
	}

	t.caps[key] = c
}

// Get returns the capture stored under key.
func (t *CaptureTable) Get(key CaptureKey) (*Capture, bool) {
	c, ok := t.caps[key]

	return c, ok
}

// Len returns the number of entries.
func (t *CaptureTable) Len() int { return len(t.keys) }

// All iterates the entries in insertion order.
func (t *CaptureTable) All() iter.Seq2[CaptureKey, *Capture] {
	return func(yield func(CaptureKey, *Capture) bool) {
		for _, k := range t.keys {
			if !yield(k, t.caps[k]) {
				return
			}
		}
	}
}

// Sorted returns the keys ordered by their string form.
func (t *CaptureTable) Sorted() []CaptureKey {
	keys := slices.Clone(t.keys)
	slices.SortFunc(keys, func(a, b CaptureKey) int {
		switch as, bs := a.String(), b.String(); {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	})

	return keys
}

// Next returns the next group number, starting at 1, and advances it.
func (t *CaptureTable) Next() int {
	t.next++

	return t.next
}
