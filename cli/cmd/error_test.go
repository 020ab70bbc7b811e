package cmd

import (
	"errors"
	"io/fs"
	"log/slog"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "message only",
			err:  ErrResolve,
			want: "resolve match expressions",
		},
		{
			name: "wrapped",
			err:  ErrReadSource.Wrap(fs.ErrNotExist),
			want: "read grammar source: file does not exist",
		},
		{
			name: "wrapped with attributes",
			err: ErrWriteOutput.Wrap(fs.ErrPermission).
				With(slog.String("file", "out.json"), slog.Int("indent", 2)),
			want: "write grammar: permission denied (file=out.json indent=2)",
		},
		{
			name: "attributes without cause",
			err:  ErrInvalidIndent.With(slog.Int("indent", -1)),
			want: "invalid indent (indent=-1)",
		},
		{
			name: "cause without message",
			err:  NewError("").Wrap(fs.ErrClosed).With(slog.String("source", "a.yaml")),
			want: "file already closed (source=a.yaml)",
		},
		{
			name: "empty",
			err:  NewError(""),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_IsSentinel(t *testing.T) {
	err := ErrInvalidIndent.With(slog.Int("indent", 99))

	if !errors.Is(err, ErrInvalidIndent) {
		t.Errorf("errors.Is(%v, ErrInvalidIndent) = false", err)
	}

	if errors.Is(err, ErrResolve) {
		t.Errorf("errors.Is(%v, ErrResolve) = true", err)
	}

	wrapped := ErrWriteConfig.Wrap(ErrFileExists)
	if !errors.Is(wrapped, ErrFileExists) {
		t.Errorf("errors.Is(%v, ErrFileExists) = false", wrapped)
	}
}

func TestError_WithDoesNotAlias(t *testing.T) {
	base := ErrResolve.With(slog.String("source", "a.yaml"))
	a := base.With(slog.String("rule", "x"))
	b := base.With(slog.String("rule", "y"))

	if got, want := a.Error(), "resolve match expressions (source=a.yaml rule=x)"; got != want {
		t.Errorf("a.Error() = %q, want %q", got, want)
	}

	if got, want := b.Error(), "resolve match expressions (source=a.yaml rule=y)"; got != want {
		t.Errorf("b.Error() = %q, want %q", got, want)
	}
}
