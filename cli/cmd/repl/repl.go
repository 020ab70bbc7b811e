package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/tmgrammar/grammar"
	"github.com/ardnew/tmgrammar/log"
)

// Loader loads the grammar declared by src. The path is empty when the
// source was read from stdin.
type Loader func(ctx context.Context, path, src string) (*grammar.Grammar, error)

// Config configures a REPL session.
type Config struct {
	// Path is the source file, or "" when the source was read from stdin.
	Path string
	// Source is the text of the grammar source.
	Source string
	// Load turns source text into a grammar. It is called again after edit.
	Load Loader
	// Options control how match expressions are compiled.
	Options []grammar.Option
	// CacheDir holds the history file.
	CacheDir string
	// InputTTY reads keys from the terminal instead of stdin.
	InputTTY bool
	Logger   log.Logger
}

// editDoneMsg is sent when editing produced a grammar that loads.
type editDoneMsg struct {
	grammar *grammar.Grammar
	source  string
}

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a load
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process encounters a non-load error.
type editErrorMsg struct{ err error }

const (
	matchPrompt = "➜ "
	ctrlPrompt  = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help     Print this help
  list     List repository rules
  edit     Edit the grammar source in $EDITOR and reload it
  clear    Clear screen
  quit     Exit REPL

Usage:
  Type a match expression to compile it, e.g. word("let") + ws + ident
  Rule names and builder functions complete as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between match and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Use Alt+Up/Alt+Down to navigate command history
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeMatch inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	captureStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// echo formats the echo line of a submitted input.
func echo(mode inputMode, input string) string {
	if mode == modeCtrl {
		return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
	}

	return promptStyle.Render(matchPrompt) + inputStyle.Render(input)
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc    func() context.Context
	input      textinput.Model
	cfg        Config
	grammar    *grammar.Grammar
	source     string
	logger     log.Logger
	history    *History
	historyIdx int

	matches      fuzzy.Matches // current fuzzy match results
	candidates   []string      // backing candidate list
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began

	altNavActive bool // whether user is in Alt+Up/Down navigation
	altNavOrig   savedInput

	width    int
	quitting bool
	mode     inputMode
	saved    [2]savedInput // per-mode input while the other mode is active
}

// savedInput is the text and cursor of an input line.
type savedInput struct {
	mode   inputMode
	text   string
	cursor int
}

// Run loads the grammar and starts the REPL.
func Run(ctx context.Context, cfg Config) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := cfg.Logger

	logger.TraceContext(
		ctx,
		"repl start",
		slog.String("cache_dir", cfg.CacheDir),
		slog.String("source", cfg.Path),
	)

	if cfg.Load == nil {
		return ErrNoLoader
	}

	g, err := cfg.Load(ctx, cfg.Path, cfg.Source)
	if err != nil {
		return err
	}

	logger.TraceContext(
		ctx,
		"repl grammar loaded",
		slog.String("scope", g.ScopeName()),
		slog.Int("rule_count", g.NumRules()),
	)

	history := NewHistory(filepath.Join(cfg.CacheDir, baseHistory))
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("error", err.Error()))
	}

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.InputTTY {
		opts = append(opts, tea.WithInputTTY())
	}

	_, err = tea.NewProgram(newModel(ctx, cfg, g, history), opts...).Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	cfg Config,
	g *grammar.Grammar,
	history *History,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(matchPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		cfg:        cfg,
		grammar:    g,
		source:     cfg.Source,
		logger:     cfg.Logger,
		history:    history,
		historyIdx: history.Len(),
		width:      defaultWidth,
		mode:       modeMatch,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(matchPrompt) - 2

		return m, nil

	case editDoneMsg:
		m.grammar = msg.grammar
		m.source = msg.source
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl edit complete",
			slog.Int("rule_count", m.grammar.NumRules()),
		)

		return m, tea.Println(resultStyle.Render("✔ grammar reloaded"))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.hintLine())
	b.WriteString("\n")

	return b.String()
}

// hintLine renders the line below the input.
func (m model) hintLine() string {
	input := m.input.Value()

	if m.historyIdx < m.history.Len() {
		pos := lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx + 1))

		return hintStyle.Render(fmt.Sprintf("%s/%d", pos, m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		if m.mode == modeMatch {
			return hintStyle.Render("Type a match expression or press Esc for commands")
		}

		return hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") +
			" (press Esc to return)")
	}

	if len(m.matches) > 0 {
		return renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width)
	}

	if call := detectFunctionCall(input, m.input.Position()); call.inCall && m.mode == modeMatch {
		if signature, params := getSignature(call.name); signature != "" {
			return renderSignatureHint(signature, params, call.argIndex) +
				"  " + hintStyle.Render(usageHint(call.name))
		}
	}

	return ""
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.tabActive = false
		m.altNavActive = false
		m.historyIdx = m.history.Len()
		m.setInput("")

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		m.altNavActive = false

		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		if msg.Alt {
			return m.historyCtrl(-1), nil
		}

		return m.historyStep(-1, false), nil

	case tea.KeyDown:
		if msg.Alt {
			return m.historyCtrl(1), nil
		}

		return m.historyStep(1, false), nil

	case tea.KeyShiftUp:
		return m.historyStep(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyStep(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		m.altNavActive = false

		if m.mode == modeMatch {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeMatch), nil

	case tea.KeyRunes, tea.KeySpace:
		// Space breaks out of tab-cycling and keeps the candidate.
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// Editing and cursor keys recompute matches without auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.altNavActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by dir through the current candidates.
func (m model) cycle(dir int) model {
	n := len(m.matches)

	switch {
	case n == 0:
		return m
	case n == 1:
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	case m.tabActive:
		m.suggIdx = (m.suggIdx + dir + n) % n
	default:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if dir < 0 {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	newInput := input[:m.wordStart] + replacement + input[m.wordEnd:]
	newCursor := m.wordStart + len(replacement)

	m.input.SetValue(newInput)
	m.input.SetCursor(newCursor)

	m.wordEnd = newCursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also confirms the completion when exactly
// one candidate remains and the typed word already equals it.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	candidate := m.matches[0].Str
	if m.input.Value()[m.wordStart:m.wordEnd] == candidate {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

// setInput replaces the input line and moves the cursor to its end.
func (m *model) setInput(s string) {
	m.input.SetValue(s)
	m.input.SetCursor(len(s))
	refreshMatches(m, false)
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	mode := m.mode
	m.saved = [2]savedInput{}
	m.input.SetValue("")

	if err := m.history.Add(input, mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not write history",
			slog.String("error", err.Error()))
	}

	m.historyIdx = m.history.Len()

	if mode == modeCtrl {
		return m.executeCommand(input)
	}

	m.logger.TraceContext(m.ctxFunc(), "repl match", slog.String("input", input))

	echoCmd := tea.Println(echo(modeMatch, input))

	res, err := evaluate(m.grammar, input, m.logger, m.cfg.Options...)
	if err != nil {
		return m, tea.Sequence(
			echoCmd,
			tea.Println(errorStyle.Render("error: "+err.Error())),
		)
	}

	return m, tea.Sequence(echoCmd, tea.Println(res.render()))
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	echoCmd := tea.Println(echo(modeCtrl, input))

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl command",
		slog.String("command", parts[0]),
		slog.Any("args", parts[1:]),
	)

	switch parts[0] {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echoCmd, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echoCmd, tea.Println(helpMessage()))

	case "l", "list":
		return m, tea.Sequence(echoCmd, tea.Println(m.listRules()))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echoCmd, m.edit())

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + parts[0] + " (try 'help')"),
		)
	}
}

func (m model) edit() tea.Cmd {
	cmd := &editSourceCommand{
		path:    m.cfg.Path,
		source:  m.source,
		load:    m.cfg.Load,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case cmd.grammar == nil:
			return editCancelledMsg{}
		default:
			return editDoneMsg{grammar: cmd.grammar, source: cmd.edited}
		}
	})
}

// historyStep moves through history by dir (-1 older, +1 newer). With
// inMode set only entries of the current mode are visited. Stepping past
// the newest entry clears the input.
func (m model) historyStep(dir int, inMode bool) model {
	mode := m.mode

	next, ok := m.recall(dir, func(e HistoryEntry) bool {
		return !inMode || e.Mode == mode
	})
	if ok {
		return next
	}

	if dir > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.setInput("")
	}

	return m
}

// historyCtrl walks command history only. The input and mode in effect
// before the walk are restored when it runs off either end.
func (m model) historyCtrl(dir int) model {
	if !m.altNavActive {
		m.altNavActive = true
		m.altNavOrig = savedInput{
			mode:   m.mode,
			text:   m.input.Value(),
			cursor: m.input.Position(),
		}
		m = m.switchToMode(modeCtrl)
	}

	next, ok := m.recall(dir, func(e HistoryEntry) bool { return e.Mode == modeCtrl })
	if ok {
		return next
	}

	m.altNavActive = false
	m = m.switchToMode(m.altNavOrig.mode)
	m.input.SetValue(m.altNavOrig.text)
	m.input.SetCursor(m.altNavOrig.cursor)
	m.historyIdx = m.history.Len()
	refreshMatches(&m, false)

	return m
}

// recall loads the nearest history entry in direction dir accepted by keep,
// switching modes to match it.
func (m model) recall(dir int, keep func(HistoryEntry) bool) (model, bool) {
	for i := m.historyIdx + dir; i >= 0 && i < m.history.Len(); i += dir {
		e, err := m.history.Entry(i)
		if err != nil || !keep(e) {
			continue
		}

		m.historyIdx = i
		if m.mode != e.Mode {
			m = m.switchToMode(e.Mode)
		}

		m.setInput(e.Line)

		return m, true
	}

	return m, false
}

// switchToMode switches to the specified mode, preserving each mode's
// input.
func (m model) switchToMode(mode inputMode) model {
	m.saved[m.mode] = savedInput{
		mode:   m.mode,
		text:   m.input.Value(),
		cursor: m.input.Position(),
	}

	m.mode = mode
	if mode == modeMatch {
		m.input.Prompt = promptStyle.Render(matchPrompt)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
	}

	m.input.SetValue(m.saved[mode].text)
	m.input.SetCursor(m.saved[mode].cursor)
	refreshMatches(&m, false)

	return m
}

func (m model) listRules() string {
	var b strings.Builder

	for name, p := range m.grammar.Rules() {
		fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render(formatPreview(p)))
	}

	if b.Len() == 0 {
		return hintStyle.Render("  (no rules)")
	}

	return b.String()
}
