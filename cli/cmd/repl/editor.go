package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/tmgrammar/grammar"
	"github.com/ardnew/tmgrammar/log"
	"github.com/ardnew/tmgrammar/pkg"
)

const defaultEditor = "vi"

// editSourceCommand implements [tea.ExecCommand] for the edit-load-retry
// loop. A source read from a file is edited in place; a source read from
// stdin is edited in a temp file. On a load error the user is prompted to
// re-edit; declining exits the program.
type editSourceCommand struct {
	path    string
	source  string
	load    Loader
	ctxFunc func() context.Context
	logger  log.Logger

	grammar *grammar.Grammar
	edited  string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editSourceCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editSourceCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editSourceCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-load-retry loop. If the user declines to re-edit,
// it returns [ErrEditDeclined].
func (c *editSourceCommand) Run() error {
	ctx := c.ctxFunc()

	file := c.path
	if file == "" {
		f, err := os.CreateTemp(os.TempDir(), pkg.Name+"-repl-*"+pkg.SourceExt)
		if err != nil {
			return err
		}

		file = f.Name()
		f.Close()

		defer os.Remove(file)

		if err := os.WriteFile(file, []byte(c.source), 0o600); err != nil {
			return err
		}
	}

	for {
		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, file); err != nil {
			return err
		}

		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}

		// An emptied file cancels the edit.
		if strings.TrimSpace(string(data)) == "" {
			return nil
		}

		g, loadErr := c.load(ctx, c.path, string(data))
		c.logger.TraceContext(
			ctx,
			"editor load attempt",
			slog.String("file", file),
			slog.Int("content_length", len(data)),
			slog.Bool("success", loadErr == nil),
		)

		if loadErr == nil {
			c.grammar = g
			c.edited = string(data)

			return nil
		}

		fmt.Fprintf(c.stderr, "\nLoad error: %s\n", loadErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}
	}
}

// runEditor launches $EDITOR, or vi, on the given file path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	// EDITOR may carry arguments, e.g. "code --wait".
	args := append(strings.Fields(editor), path)

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
