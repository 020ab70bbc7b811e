package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// initContext returns a context carrying a kong context parsed from args
// with the config path variable set to confPath.
func initContext(t *testing.T, cli any, confPath string, args ...string) context.Context {
	t.Helper()

	parser, err := kong.New(cli, kong.Vars{
		ConfigIdentifier: confPath,
	})
	if err != nil {
		t.Fatal(err)
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(context.Background(), kctx)
}

func TestInitRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		force   bool
		setup   func(t *testing.T, path string)
		wantErr error
	}{
		{
			name:  "create_new_config",
			force: false,
		},
		{
			name:  "overwrite_existing_with_force",
			force: true,
			setup: func(t *testing.T, path string) {
				if err := os.WriteFile(path, []byte("existing: content\n"), 0o600); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name:  "fail_without_force",
			force: false,
			setup: func(t *testing.T, path string) {
				if err := os.WriteFile(path, []byte("existing: content\n"), 0o600); err != nil {
					t.Fatal(err)
				}
			},
			wantErr: ErrFileExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			confPath := filepath.Join(t.TempDir(), "config.yaml")

			if tt.setup != nil {
				tt.setup(t, confPath)
			}

			var cli struct {
				Format string `default:"xml"`
			}

			ctx := initContext(t, &cli, confPath)

			err := (&Init{Force: tt.force}).Run(ctx)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Init.Run() error = %v, want %v", err, tt.wantErr)
			}

			if tt.wantErr != nil {
				return
			}

			content, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			var got map[string]any
			if err := yaml.Unmarshal(content, &got); err != nil {
				t.Fatalf("generated config is not valid YAML: %v\n%s", err, content)
			}

			if got["format"] != "xml" {
				t.Errorf("format = %v, want xml", got["format"])
			}

			if _, ok := got["existing"]; ok {
				t.Error("existing content was not replaced")
			}
		})
	}
}

func TestInitFlagValues(t *testing.T) {
	t.Parallel()

	var cli struct {
		Verbose bool     `help:"Enable verbose output"`
		Output  string   `help:"Output file"`
		Count   int      `help:"Number of items"`
		Include []string `help:"Search paths"`
		Secret  string   `hidden:""`
		Pprof   string   `name:"pprof-mode"`
	}

	ctx := initContext(t, &cli, "unused",
		"--verbose", "--count=5", "--secret=x", "--pprof-mode=cpu")

	values := (&Init{}).flagValues(ctx)

	var keys []string
	for _, item := range values {
		keys = append(keys, item.Key.(string))
	}

	want := []string{"verbose", "count"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}

	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys = %v, want %v", keys, want)
		}
	}
}

func TestInitWithInvalidPath(t *testing.T) {
	t.Parallel()

	invalidPath := filepath.Join(t.TempDir(), "missing", "config.yaml")

	var cli struct{}

	ctx := initContext(t, &cli, invalidPath)

	if err := (&Init{}).Run(ctx); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Init.Run() error = %v, want a missing directory", err)
	}
}

func TestInitFormatOutput(t *testing.T) {
	t.Parallel()

	confPath := filepath.Join(t.TempDir(), "config.yaml")

	var cli struct {
		Include []string `help:"Search paths"`
	}

	ctx := initContext(t, &cli, confPath, "--include=a", "--include=b")

	if err := (&Init{}).Run(ctx); err != nil {
		t.Fatalf("Init.Run() unexpected error = %v", err)
	}

	content, err := os.ReadFile(confPath)
	if err != nil {
		t.Fatal(err)
	}

	want := "include:\n- a\n- b\n"
	if string(content) != want {
		t.Errorf("config =\n%s\nwant\n%s", content, want)
	}
}
