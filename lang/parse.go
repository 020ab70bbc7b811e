package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/klauspost/readahead"

	"github.com/ardnew/tmgrammar/log"
)

// ParseReader parses a source file from an io.Reader. The reader is drained
// by a read-ahead goroutine.
func ParseReader(
	ctx context.Context,
	path string,
	r io.Reader,
	opts ...Option,
) (*File, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).InFile(path)
	}

	return ParseString(ctx, path, string(data), opts...)
}

// ParseString parses a source file held in s. The path is only used in
// error messages and to resolve relative imports.
func ParseString(
	ctx context.Context,
	path, s string,
	opts ...Option,
) (*File, error) {
	l := NewLoader(opts...)

	p := &parser{
		file:   path,
		input:  []byte(s),
		line:   1,
		col:    1,
		logger: l.logger,
	}

	stmts, err := p.parseStmts(false)
	if err != nil {
		return nil, err
	}

	p.logger.TraceContext(ctx, "parse complete",
		slog.String("path", path),
		slog.Int("statements", len(stmts)))

	return &File{Path: path, Source: s, Stmts: stmts}, nil
}

// parser holds the parser state.
type parser struct {
	file   string
	input  []byte
	pos    int
	line   int
	col    int
	logger log.Logger
}

// parseStmts parses statements until EOF, or until the closing '}' of a
// block when nested is set. The closing brace is consumed.
func (p *parser) parseStmts(nested bool) ([]*Stmt, error) {
	stmts := make([]*Stmt, 0)

	for {
		p.skipWhitespaceAndComments()

		if p.eof() {
			if nested {
				return nil, p.errorf("unexpected end of input", "}")
			}

			return stmts, nil
		}

		if p.peek() == '}' {
			if !nested {
				return nil, p.errorf("unbalanced '}'")
			}

			p.advance()

			return stmts, nil
		}

		if p.peek() == ';' {
			p.advance()

			continue
		}

		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, s)
	}
}

// parseStmt parses a single keyword statement or property.
func (p *parser) parseStmt() (*Stmt, error) {
	pos := p.position()

	word, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}

	p.skipSpace()

	if p.peek() == ':' {
		p.advance()
		p.skipSpace()

		value, err := p.captureExpression()
		if err != nil {
			return nil, err
		}

		if value == "" {
			return nil, p.errorf("missing value for "+strconv.Quote(word),
				"expression")
		}

		return &Stmt{Kind: KindProperty, Pos: pos, Name: word, Value: value}, nil
	}

	kind, ok := keyword[word]
	if !ok {
		p.rewind(pos)

		return nil, p.errorf("unknown statement "+strconv.Quote(word), ":")
	}

	s := &Stmt{Kind: kind, Pos: pos}

	switch kind {
	case KindImport, KindGrammar:
		if s.Name, err = p.parseString(); err != nil {
			return nil, err
		}

	case KindTrait, KindRule, KindMixin:
		p.skipSpace()

		if s.Name, err = p.parseIdentifier(); err != nil {
			return nil, err
		}

	case KindPattern:
		p.skipSpace()

		if p.isQuote(p.peek()) {
			if s.Scope, err = p.parseString(); err != nil {
				return nil, err
			}
		}

	case KindCapture, KindBeginCapture, KindEndCapture:
		if s.Name, err = p.parseCaptureKey(); err != nil {
			return nil, err
		}

		p.skipSpace()

		if p.isQuote(p.peek()) {
			if s.Scope, err = p.parseString(); err != nil {
				return nil, err
			}
		}
	}

	switch kind {
	case KindImport, KindMixin:
		return s, nil

	case KindCapture, KindBeginCapture, KindEndCapture:
		// The body of a capture is optional.
		p.skipSpace()

		if p.peek() != '{' {
			return s, nil
		}
	}

	p.skipWhitespaceAndComments()

	if !p.expect('{') {
		return nil, p.errorf("missing block after "+kind.String(), "{")
	}

	if s.Body, err = p.parseStmts(true); err != nil {
		return nil, err
	}

	return s, nil
}

// parseCaptureKey parses a group number or a group name.
func (p *parser) parseCaptureKey() (string, error) {
	p.skipSpace()

	start := p.pos

	if ch := p.peek(); ch >= '0' && ch <= '9' {
		for !p.eof() && p.peek() >= '0' && p.peek() <= '9' {
			p.advance()
		}

		return string(p.input[start:p.pos]), nil
	}

	if !isIdentifierStart(p.peek()) {
		return "", p.errorf("invalid capture key", "number", "identifier")
	}

	return p.parseIdentifier()
}

// parseString parses a double-quoted or raw string literal.
func (p *parser) parseString() (string, error) {
	p.skipSpace()

	pos := p.position()
	start := p.pos

	if ch := p.peek(); ch != '"' && ch != '`' {
		return "", p.errorf("expected string", `"`)
	}

	if err := p.skipString(p.peek()); err != nil {
		return "", err
	}

	s, err := strconv.Unquote(string(p.input[start:p.pos]))
	if err != nil {
		p.rewind(pos)

		return "", p.errorf("invalid string: " + err.Error())
	}

	return s, nil
}

// captureExpression captures raw expression text.
//
// The expression ends at an unbalanced closer, a ';' or a newline outside
// any brackets. A newline does not end it when the line ends with a binary
// operator or comma, or when the next line starts with '+' or '|'.
func (p *parser) captureExpression() (string, error) {
	start := p.pos
	depth := 0

	for p.pos < len(p.input) {
		ch := p.peek()

		if p.isQuote(ch) || ch == '\'' {
			err := p.skipString(ch)
			if err != nil {
				return "", err
			}

			continue
		}

		if ch == '/' && (p.peekN(2) == "//" || p.peekN(2) == "/*") ||
			ch == '#' {
			if depth == 0 && p.endsAfterComment(start) {
				goto done
			}

			p.skipComment()

			continue
		}

		switch ch {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth == 0 {
				goto done
			}

			depth--
		case ';':
			if depth == 0 {
				goto done
			}
		case '\n':
			if depth == 0 && !p.continues(start) {
				goto done
			}
		}

		p.advance()
	}

done:
	return stripComments(string(p.input[start:p.pos])), nil
}

// endsAfterComment reports whether the expression begun at start ends at
// the comment under the cursor.
func (p *parser) endsAfterComment(start int) bool {
	saved := *p
	p.skipComment()

	ends := p.pos > 0 && p.input[p.pos-1] == '\n' && !p.continuesFrom(start,
		saved.pos)

	*p = saved

	return ends
}

// continues reports whether the newline under the cursor continues the
// expression begun at start.
func (p *parser) continues(start int) bool {
	return p.continuesFrom(start, p.pos)
}

func (p *parser) continuesFrom(start, end int) bool {
	last := strings.TrimRightFunc(
		stripComments(string(p.input[start:end])), unicode.IsSpace)
	if last == "" {
		return true
	}

	if strings.ContainsRune("+|&,(-*", rune(last[len(last)-1])) {
		return true
	}

	rest := string(p.input[end:])
	for {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)

		switch {
		case strings.HasPrefix(rest, "//"), strings.HasPrefix(rest, "#"):
			_, after, ok := strings.Cut(rest, "\n")
			if !ok {
				return false
			}

			rest = after

			continue

		case strings.HasPrefix(rest, "or "):
			return true
		}

		return rest != "" && strings.ContainsRune("+|", rune(rest[0]))
	}
}

// parseIdentifier parses an identifier token. Identifiers may contain
// internal '-' and '.' separators.
func (p *parser) parseIdentifier() (string, error) {
	start := p.pos

	if !isIdentifierStart(p.peek()) {
		return "", p.errorf("expected identifier", "identifier")
	}

	p.advance()

	for !p.eof() {
		ch := p.peek()
		if isIdentifierContinue(ch) {
			p.advance()

			continue
		}

		if (ch == '-' || ch == '.') && p.pos+1 < len(p.input) &&
			isIdentifierContinue(rune(p.input[p.pos+1])) {
			p.advance()

			continue
		}

		break
	}

	return string(p.input[start:p.pos]), nil
}

func (p *parser) errorf(msg string, expected ...string) *ParseError {
	return &ParseError{
		File:     p.file,
		Source:   string(p.input),
		Pos:      p.position(),
		Msg:      msg,
		Expected: expected,
	}
}

// Helper methods

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(p.input[p.pos:])

	return r
}

func (p *parser) peekN(n int) string {
	if p.pos+n > len(p.input) {
		return string(p.input[p.pos:])
	}

	return string(p.input[p.pos : p.pos+n])
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	r, size := utf8.DecodeRune(p.input[p.pos:])

	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

func (p *parser) rewind(pos Position) {
	p.pos, p.line, p.col = pos.Offset, pos.Line, pos.Column
}

func (p *parser) expect(ch rune) bool {
	if p.peek() == ch {
		p.advance()

		return true
	}

	return false
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) isQuote(ch rune) bool {
	return ch == '"' || ch == '`'
}

func (p *parser) position() Position {
	return Position{
		Offset: p.pos,
		Line:   p.line,
		Column: p.col,
	}
}

// skipSpace skips blanks on the current line.
func (p *parser) skipSpace() {
	for !p.eof() && (p.peek() == ' ' || p.peek() == '\t') {
		p.advance()
	}
}

func (p *parser) skipWhitespace() {
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.advance()
	}
}

func (p *parser) skipWhitespaceAndComments() {
	for {
		p.skipWhitespace()

		if p.eof() {
			return
		}

		if p.peek() == '#' || p.peek() == '/' &&
			(p.peekN(2) == "//" || p.peekN(2) == "/*") {
			p.skipComment()

			continue
		}

		break
	}
}

func (p *parser) skipComment() {
	if p.peekN(2) == "/*" {
		p.skipBlockComment()
	} else {
		p.skipLineComment()
	}
}

func (p *parser) skipLineComment() {
	for !p.eof() && p.peek() != '\n' {
		p.advance()
	}

	if !p.eof() {
		p.advance() // skip '\n'
	}
}

func (p *parser) skipBlockComment() {
	p.advance() // skip '/'
	p.advance() // skip '*'

	for !p.eof() {
		if p.peek() == '*' && p.peekN(2) == "*/" {
			p.advance() // skip '*'
			p.advance() // skip '/'

			return
		}

		p.advance()
	}
}

func (p *parser) skipString(quote rune) error {
	pos := p.position()

	p.advance() // skip opening quote

	for !p.eof() {
		ch := p.peek()
		if ch == '\\' && quote != '`' {
			p.advance() // skip backslash

			if !p.eof() {
				p.advance() // skip escaped char
			}

			continue
		}

		if ch == quote {
			p.advance() // skip closing quote

			return nil
		}

		p.advance()
	}

	p.rewind(pos)

	return p.errorf("unterminated string", string(quote))
}

// Character classification

func isIdentifierStart(r rune) bool {
	return unicode.In(r,
		unicode.L,  // Letter
		unicode.Nl, // Letter, Number
		unicode.Other_ID_Start,
	) || r == '_'
}

func isIdentifierContinue(r rune) bool {
	return unicode.In(r,
		unicode.L,  // Letter
		unicode.Nl, // Letter, Number
		unicode.Other_ID_Start,
		unicode.Mn, // Mark, Nonspacing
		unicode.Mc, // Mark, Spacing Combining
		unicode.Nd, // Number, Decimal Digit
		unicode.Pc, // Punctuation, Connector
		unicode.Other_ID_Continue,
	)
}

// stripComments removes comments outside string literals and trims
// surrounding whitespace.
func stripComments(s string) string {
	var sb strings.Builder

	var quote byte

	for i := 0; i < len(s); i++ {
		ch := s[i]

		switch {
		case quote != 0:
			sb.WriteByte(ch)

			if ch == '\\' && quote != '`' && i+1 < len(s) {
				i++
				sb.WriteByte(s[i])
			} else if ch == quote {
				quote = 0
			}

			continue

		case ch == '"' || ch == '\'' || ch == '`':
			quote = ch

		case ch == '#' || ch == '/' && i+1 < len(s) && s[i+1] == '/':
			for i < len(s) && s[i] != '\n' {
				i++
			}

			if i < len(s) {
				sb.WriteByte('\n')
			}

			continue

		case ch == '/' && i+1 < len(s) && s[i+1] == '*':
			i += 2
			for i < len(s) && (s[i] != '*' || i+1 >= len(s) || s[i+1] != '/') {
				i++
			}

			i++ // land on '/'

			continue
		}

		sb.WriteByte(ch)
	}

	return strings.TrimSpace(sb.String())
}
