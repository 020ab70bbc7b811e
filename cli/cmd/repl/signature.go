package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/tmgrammar/lang"
)

// builderParams lists the parameter names of each builder function. A
// leading "..." marks a variadic parameter.
var builderParams = map[string][]string{
	"seq":        {"...x"},
	"alt":        {"...x"},
	"group":      {"x"},
	"capture":    {"name", "x"},
	"optional":   {"x"},
	"opt":        {"x"},
	"zeroOrMore": {"x"},
	"many":       {"x"},
	"oneOrMore":  {"x"},
	"some":       {"x"},
	"wb":         {"x"},
	"word":       {"s"},
	"term":       {"x"},
	"re":         {"s"},
	"rule":       {"name"},
}

// signatureHintStyle styles for parameter hints.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
	signatureSeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// functionCall represents a detected function call in the input.
type functionCall struct {
	name     string // function name (e.g., "capture")
	argIndex int    // current argument index (0-based)
	inCall   bool   // true if cursor is inside parameter list
}

// detectFunctionCall reports the innermost builder call whose argument
// list contains the cursor. Parentheses and commas inside string literals
// are ignored, as regex sources often contain both.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(max(cursor, 0), len(input))

	type frame struct {
		name string
		args int
	}

	var (
		stack []frame
		quote rune
		prev  rune
	)

	for i, r := range input[:cursor] {
		switch {
		case quote != 0:
			if r == quote && (quote == '`' || prev != '\\') {
				quote = 0
			}
		case r == '"' || r == '`' || r == '\'':
			quote = r
		case r == '(':
			stack = append(stack, frame{name: calleeBefore(input, i)})
		case r == ')':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case r == ',':
			if len(stack) > 0 {
				stack[len(stack)-1].args++
			}
		}

		// An escaped backslash does not escape the next quote.
		if prev == '\\' && r == '\\' {
			r = 0
		}

		prev = r
	}

	if len(stack) == 0 || stack[len(stack)-1].name == "" {
		return functionCall{}
	}

	top := stack[len(stack)-1]

	return functionCall{name: top.name, argIndex: top.args, inCall: true}
}

// calleeBefore returns the identifier immediately preceding offset open.
func calleeBefore(input string, open int) string {
	start := open

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if r != '_' && r != '-' &&
			(r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			break
		}

		start -= size
	}

	return input[start:open]
}

// getSignature returns the signature of the builder function funcName and
// its parameter names, or "" if funcName is not a builder.
func getSignature(funcName string) (signature string, params []string) {
	params, ok := builderParams[funcName]
	if !ok {
		return "", nil
	}

	return funcName + "(" + strings.Join(params, ", ") + ")", params
}

// usageHint returns the description of a builder without its signature.
func usageHint(funcName string) string {
	usage, ok := lang.Usage(funcName)
	if !ok {
		return ""
	}

	if _, rest, found := strings.Cut(usage, ") "); found {
		return rest
	}

	return usage
}

// renderSignatureHint renders the function signature with the current
// parameter highlighted.
func renderSignatureHint(
	signature string,
	params []string,
	currentArgIdx int,
) string {
	if signature == "" {
		return ""
	}

	// Parse signature: "funcName(param1, param2, ...)"
	openParen := strings.Index(signature, "(")
	if openParen == -1 {
		return signatureStyle.Render(signature)
	}

	funcName := signature[:openParen]

	closeParen := strings.LastIndex(signature, ")")
	if closeParen == -1 {
		return signatureStyle.Render(signature)
	}

	// If no parameters, just render the signature
	if len(params) == 0 {
		return signatureNameStyle.Render(funcName) +
			signatureStyle.Render("()")
	}

	// Build the signature with highlighted current parameter
	var b strings.Builder
	b.WriteString(signatureNameStyle.Render(funcName))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureSeparatorStyle.Render(", "))
		}

		// Check if this is a variadic parameter
		isVariadic := strings.HasPrefix(param, "...")

		// Highlight the current parameter
		// For variadic parameters, highlight if we're at or beyond that index
		if (isVariadic && currentArgIdx >= i) ||
			(!isVariadic && currentArgIdx == i) {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
