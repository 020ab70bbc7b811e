package repl

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/tmgrammar/grammar"
	"github.com/ardnew/tmgrammar/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "edit", "clear", "quit"}

// operatorBuiltins back the + and || operators and are not called by name.
var operatorBuiltins = []string{"then", "either"}

// isWordBoundary returns true if the rune is a word delimiter for completion
// purposes. Hyphens are not delimiters because rule names may contain them
// (e.g., all-types).
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'(', ')', '[', ']', '{', '}',
		'+', '*', '/', '%',
		'<', '>', '=', '!',
		'&', '|', ',', '?', ':', ';',
		'"', '`', '\'':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input.
// Returns an empty word when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// inString reports whether offset pos of input lies inside a string
// literal.
func inString(input string, pos int) bool {
	var quote rune

	for i, r := range input[:min(pos, len(input))] {
		switch {
		case quote == 0 && (r == '"' || r == '`' || r == '\''):
			quote = r
		case quote != 0 && r == quote && (r == '`' || i == 0 || input[i-1] != '\\'):
			quote = 0
		}
	}

	return quote != 0
}

// matchCandidates returns the repository rule names of g followed by the
// callable builder functions.
func matchCandidates(g *grammar.Grammar) []string {
	var names []string

	if g != nil {
		names = g.RuleNames()
	}

	for _, name := range lang.Builtins() {
		if !slices.Contains(operatorBuiltins, name) {
			names = append(names, name)
		}
	}

	return names
}

// computeMatches computes fuzzy matches for the word under the cursor.
// It returns the matches (ranked best-first), the candidate list, and the word
// boundaries.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, wordStart, wordEnd := wordBounds(input, cursor)
	if word == "" {
		return nil, nil, wordStart, wordEnd
	}

	if m.mode == modeCtrl {
		candidates = ctrlCommands
	} else {
		if inString(input, wordStart) {
			return nil, nil, wordStart, wordEnd
		}

		candidates = matchCandidates(m.grammar)
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. The selected candidate (when tabbing) uses
// the selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		selected := tabActive && i == suggIdx
		rendered := renderCandidate(match, selected)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted. Builder functions are displayed with a "()" suffix.
func renderCandidate(match fuzzy.Match, selected bool) string {
	baseStyle := suggestionStyle
	highlightStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true)
	}

	matchSet := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matchSet[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matchSet[i] {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	if isFunction(match.Str) {
		b.WriteString(baseStyle.Render("()"))
	}

	return b.String()
}

// isFunction reports whether name is a builder function.
func isFunction(name string) bool {
	_, ok := lang.Usage(name)

	return ok
}

// formatPreview summarizes what a rule matches, truncated for display.
func formatPreview(p *grammar.Pattern) string {
	var s string

	switch {
	case p.Match != nil:
		s = grammar.Format(p.Match.Node())
	case p.Begin != nil:
		s = fmt.Sprintf("begin %s end %s",
			grammar.Format(p.Begin.Node()), grammar.Format(p.End.Node()))
	case p.Include != "":
		s = "include " + p.Include
	default:
		s = fmt.Sprintf("{ %d patterns }", len(p.Patterns))
	}

	if len(s) > 60 {
		return s[:57] + "..."
	}

	return s
}
