package log

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestPrettyText_WithAttrs_Persist(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatText), WithTimeLayout("none"))
	logger = logger.With(slog.String("file", "foo.tmg"))
	logger.Info("loaded", slog.Int("rules", 3))

	out := buf.String()
	for _, want := range []string{"level=INFO", "msg=loaded", "file=foo.tmg", "rules=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}

	if strings.Contains(out, "\x1b[") {
		t.Errorf("expected no escape sequences for a non-terminal writer: %q", out)
	}
}

type valuer struct{}

func (valuer) LogValue() slog.Value {
	return slog.GroupValue(slog.String("error", "undeclared rule"), slog.String("rule", "x"))
}

func TestPrettyText_ResolvesLogValuer(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatText), WithTimeLayout("none"))
	logger.Error("failed", slog.Any("err", valuer{}), slog.Any("cause", errors.New("boom")))

	out := buf.String()
	for _, want := range []string{"err.error=undeclared rule", "err.rule=x", "cause=boom", "level=ERROR"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestPrettyJSON_Fields(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatJSON), WithLevel(LevelTrace))
	logger.Trace("walk", slog.Group("pattern", slog.String("name", "string.quoted")))

	out := buf.String()
	for _, want := range []string{"level: TRACE", "msg: walk", "pattern: {", "name: string.quoted"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelTrace, "trace"},
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LevelInfo + 2, "info+2"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}
