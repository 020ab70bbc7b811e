package repl

import (
	"strings"
	"testing"

	"github.com/ardnew/tmgrammar/lang"
)

func TestDetectFunctionCall(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		cursor     int
		wantName   string
		wantIndex  int
		wantInCall bool
	}{
		{"no call", "ident", 5, "", 0, false},
		{"open paren", "capture(", 8, "capture", 0, true},
		{"first arg", `capture("num"`, 13, "capture", 0, true},
		{"second arg", `capture("num", `, 15, "capture", 1, true},
		{"closed call", `opt(ws) + `, 10, "", 0, false},
		{"nested inner", `seq("a", opt(`, 13, "opt", 0, true},
		{"nested back to outer", `seq("a", opt(ws), `, 18, "seq", 2, true},
		{"paren in string", `word("(", `, 9, "word", 1, true},
		{"comma in string", `seq("a,b"`, 9, "seq", 0, true},
		{"raw string paren", "re(`(a|b)`", 10, "re", 0, true},
		{"escaped quote", `word("\")", `, 11, "word", 1, true},
		{"bare group", `("a" || `, 8, "", 0, false},
		{"hyphenated callee", `all-types(`, 10, "all-types", 0, true},
		{"cursor before call", `opt(ws)`, 2, "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectFunctionCall(tt.input, tt.cursor)
			if got.name != tt.wantName || got.argIndex != tt.wantIndex ||
				got.inCall != tt.wantInCall {
				t.Errorf("detectFunctionCall(%q, %d) = {%q, %d, %v}, want {%q, %d, %v}",
					tt.input, tt.cursor, got.name, got.argIndex, got.inCall,
					tt.wantName, tt.wantIndex, tt.wantInCall)
			}
		})
	}
}

func TestGetSignature(t *testing.T) {
	tests := []struct {
		name       string
		funcName   string
		wantSig    string
		wantParams int
	}{
		{"variadic", "seq", "seq(...x)", 1},
		{"two params", "capture", "capture(name, x)", 2},
		{"string param", "word", "word(s)", 1},
		{"unknown", "ident", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, params := getSignature(tt.funcName)
			if sig != tt.wantSig || len(params) != tt.wantParams {
				t.Errorf("getSignature(%q) = (%q, %v), want (%q, %d params)",
					tt.funcName, sig, params, tt.wantSig, tt.wantParams)
			}
		})
	}
}

// Every callable builder has a parameter list and a usage line.
func TestBuilderParamsCoverBuiltins(t *testing.T) {
	for _, name := range lang.Builtins() {
		if name == "then" || name == "either" {
			continue
		}

		if _, ok := builderParams[name]; !ok {
			t.Errorf("builder %q has no parameter list", name)
		}

		if usageHint(name) == "" {
			t.Errorf("builder %q has no usage hint", name)
		}
	}

	for name := range builderParams {
		if _, ok := lang.Usage(name); !ok {
			t.Errorf("parameter list for unknown builder %q", name)
		}
	}
}

func TestUsageHint(t *testing.T) {
	if got, want := usageHint("group"), "wraps x in a non-capturing group"; got != want {
		t.Errorf("usageHint(group) = %q, want %q", got, want)
	}

	if got := usageHint("ident"); got != "" {
		t.Errorf("usageHint(ident) = %q, want empty", got)
	}
}

func TestRenderSignatureHint(t *testing.T) {
	sig, params := getSignature("capture")

	for i := range 3 {
		out := renderSignatureHint(sig, params, i)

		for _, part := range []string{"capture", "name", "x"} {
			if !strings.Contains(out, part) {
				t.Errorf("arg %d: hint %q missing %q", i, out, part)
			}
		}
	}

	if out := renderSignatureHint("", nil, 0); out != "" {
		t.Errorf("empty signature rendered %q", out)
	}
}
