package lang

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/tmgrammar/log"
)

func TestParseCached(t *testing.T) {
	t.Cleanup(ClearCache)

	ctx := context.Background()
	src := `trait ws { rule ws { match: "\\s+" } }`

	a, err := parseCached(ctx, "a.tmg", src, log.Logger{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	b, _ := parseCached(ctx, "a.tmg", src, log.Logger{})
	if a != b {
		t.Error("same path and source parsed twice")
	}

	c, _ := parseCached(ctx, "b.tmg", src, log.Logger{})
	if c == a || c.Path != "b.tmg" {
		t.Errorf("different path shared entry: %q", c.Path)
	}

	ClearCache()

	d, _ := parseCached(ctx, "a.tmg", src, log.Logger{})
	if d == a {
		t.Error("ClearCache kept entry")
	}
}

func TestParseCached_Error(t *testing.T) {
	t.Cleanup(ClearCache)

	ctx := context.Background()

	_, err1 := parseCached(ctx, "bad.tmg", `}`, log.Logger{})
	_, err2 := parseCached(ctx, "bad.tmg", `}`, log.Logger{})

	var pe *ParseError
	if !errors.As(err1, &pe) {
		t.Fatalf("error = %v, want *ParseError", err1)
	}

	if err1 != err2 {
		t.Error("syntax error not cached")
	}
}

func TestCacheKey(t *testing.T) {
	if cacheKey("ab", "c") == cacheKey("a", "bc") {
		t.Error("path and source boundary not part of key")
	}
}

func TestParseReader(t *testing.T) {
	f, err := ParseReader(context.Background(), "foo.tmg", strings.NewReader(sample))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if f.Source != sample || len(f.Stmts) != 2 {
		t.Errorf("got %d statements", len(f.Stmts))
	}
}
