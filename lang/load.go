package lang

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/ardnew/mung"

	"github.com/ardnew/tmgrammar/grammar"
	"github.com/ardnew/tmgrammar/log"
	"github.com/ardnew/tmgrammar/pkg"
)

// SearchPathEnv names the environment variable listing extra directories
// searched for imports ($TMG_PATH).
var SearchPathEnv = pkg.EnvVar("path")

// Option configures a [Loader].
type Option func(*Loader)

// WithLogger sets the logger used while loading.
func WithLogger(logger log.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// WithStrict turns recoverable problems, such as a redefined rule, into
// errors.
func WithStrict(strict bool) Option {
	return func(l *Loader) { l.strict = strict }
}

// WithSearchPath appends directories searched for imports after the
// directory of the importing file.
func WithSearchPath(dirs ...string) Option {
	return func(l *Loader) { l.search = append(l.search, dirs...) }
}

// Loader builds a [grammar.Grammar] from source files.
//
// A Loader is not safe for concurrent use. Each call to [Loader.Load]
// starts from an empty trait registry.
type Loader struct {
	logger log.Logger
	strict bool
	search []string

	traits  map[string]trait
	loaded  map[string]bool
	loading []string
	mixing  []string
}

// trait is a named statement list together with the file declaring it.
type trait struct {
	file *File
	stmt *Stmt
}

// NewLoader returns a Loader configured with opts.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{logger: log.Default()}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load parses the file at path with its imports and builds the grammar it
// declares. Match expressions are left unresolved; see
// [grammar.ResolveMatches].
func (l *Loader) Load(ctx context.Context, path string) (*grammar.Grammar, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).InFile(path)
	}

	return l.LoadSource(ctx, path, string(src))
}

// LoadSource is like [Loader.Load] but reads the root file from src.
func (l *Loader) LoadSource(
	ctx context.Context,
	path, src string,
) (*grammar.Grammar, error) {
	l.traits = make(map[string]trait)
	l.loaded = make(map[string]bool)
	l.loading = l.loading[:0]
	l.mixing = l.mixing[:0]

	f, err := parseCached(ctx, path, src, l.logger)
	if err != nil {
		return nil, err
	}

	if abs, err := filepath.Abs(path); err == nil {
		l.loaded[abs] = true
		l.loading = append(l.loading, abs)
	}

	decl, err := l.declare(ctx, f, true)
	if err != nil {
		return nil, err
	}

	if decl == nil {
		return nil, ErrNoGrammar.InFile(path)
	}

	g := grammar.New(decl.Name)

	if err := l.apply(ctx, f, g, decl.Body); err != nil {
		return nil, err
	}

	l.logger.DebugContext(ctx, "grammar loaded",
		slog.String("scope", g.ScopeName()),
		slog.Int("patterns", len(g.Patterns)),
		slog.Int("rules", g.NumRules()))

	return g, nil
}

// declare registers the imports and traits of f and returns its grammar
// statement. The grammar of an imported file is ignored.
func (l *Loader) declare(ctx context.Context, f *File, root bool) (*Stmt, error) {
	var decl *Stmt

	for _, s := range f.Stmts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch s.Kind {
		case KindImport:
			if err := l.importFile(ctx, f, s); err != nil {
				return nil, err
			}

		case KindTrait:
			if prev, ok := l.traits[s.Name]; ok {
				l.logger.DebugContext(ctx, "trait redefined",
					slog.String("trait", s.Name),
					slog.String("previous", prev.file.Path+":"+prev.stmt.Pos.String()))
			}

			l.traits[s.Name] = trait{file: f, stmt: s}

		case KindGrammar:
			switch {
			case !root:
				l.logger.DebugContext(ctx, "ignoring grammar in imported file",
					slog.String("path", f.Path),
					slog.String("scope", s.Name))
			case decl != nil:
				return nil, l.fail(f, s, ErrMultipleGrammars.With(
					slog.String("name", s.Name)))
			default:
				decl = s
			}

		default:
			return nil, l.fail(f, s, ErrUnexpectedStmt.With(
				slog.String("name", s.Kind.String())))
		}
	}

	return decl, nil
}

// importFile loads the traits of the file named by an import statement.
// A file already imported is skipped.
func (l *Loader) importFile(ctx context.Context, from *File, s *Stmt) error {
	path, err := l.findImport(filepath.Dir(from.Path), s.Name)
	if err != nil {
		return l.fail(from, s, err)
	}

	if slices.Contains(l.loading, path) {
		return l.fail(from, s, ErrImportCycle.With(slog.String("path", path)))
	}

	if l.loaded[path] {
		l.logger.TraceContext(ctx, "import already loaded",
			slog.String("path", path))

		return nil
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return l.fail(from, s, ErrReadInput.Wrap(err).InFile(path))
	}

	f, err := parseCached(ctx, path, string(src), l.logger)
	if err != nil {
		return err
	}

	l.logger.DebugContext(ctx, "import", slog.String("path", path))

	l.loaded[path] = true
	l.loading = append(l.loading, path)

	defer func() { l.loading = l.loading[:len(l.loading)-1] }()

	_, err = l.declare(ctx, f, false)

	return err
}

// searchPath returns the directories searched for an import made from dir:
// dir itself, the loader search path, then the directories listed in
// $TMG_PATH.
func (l *Loader) searchPath(dir string) []string {
	// mung places the trailing prefix item first.
	prefix := append([]string{dir}, l.search...)
	slices.Reverse(prefix)

	list := mung.Make(
		mung.WithSubjectItems(os.Getenv(SearchPathEnv)),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String()

	return slices.DeleteFunc(filepath.SplitList(list),
		func(s string) bool { return s == "" })
}

// findImport resolves an import name to an absolute file path. The source
// extension is appended when name has none.
func (l *Loader) findImport(dir, name string) (string, error) {
	if filepath.Ext(name) == "" {
		name += pkg.SourceExt
	}

	candidates := []string{name}
	if !filepath.IsAbs(name) {
		candidates = candidates[:0]
		for _, d := range l.searchPath(dir) {
			candidates = append(candidates, filepath.Join(d, name))
		}
	}

	for _, c := range candidates {
		info, err := os.Stat(c)
		if err != nil || info.IsDir() {
			continue
		}

		abs, err := filepath.Abs(c)
		if err != nil {
			return "", ErrImportNotFound.Wrap(err).With(slog.String("path", name))
		}

		return abs, nil
	}

	return "", ErrImportNotFound.With(slog.String("path", name))
}

// apply executes stmts against tgt, which is a *grammar.Grammar,
// *grammar.Pattern or *grammar.Capture.
func (l *Loader) apply(ctx context.Context, f *File, tgt any, stmts []*Stmt) error {
	for _, s := range stmts {
		if err := l.stmt(ctx, f, tgt, s); err != nil {
			return err
		}
	}

	return nil
}

func (l *Loader) stmt(ctx context.Context, f *File, tgt any, s *Stmt) error {
	switch s.Kind {
	case KindProperty:
		if err := l.property(ctx, tgt, s); err != nil {
			return l.fail(f, s, err)
		}

		return nil

	case KindMixin:
		return l.mixin(ctx, f, tgt, s)

	case KindPattern:
		parent, ok := tgt.(grammar.Container)
		if !ok {
			break
		}

		_, err := grammar.DefinePattern(parent, s.Scope,
			func(p *grammar.Pattern) error {
				return l.apply(ctx, f, p, s.Body)
			})

		return err

	case KindRule:
		g, ok := tgt.(*grammar.Grammar)
		if !ok {
			break
		}

		if _, dup := g.Rule(s.Name); dup {
			if l.strict {
				return l.fail(f, s, grammar.ErrDuplicateRule.With(
					slog.String("rule", s.Name)))
			}

			l.logger.WarnContext(ctx, "rule redefined",
				slog.String("rule", s.Name),
				slog.String("at", f.Path+":"+s.Pos.String()))
		}

		_, err := grammar.DefineRule(g, s.Name, func(p *grammar.Pattern) error {
			return l.apply(ctx, f, p, s.Body)
		})

		return err

	case KindCapture, KindBeginCapture, KindEndCapture:
		p, ok := tgt.(*grammar.Pattern)
		if !ok {
			break
		}

		define := map[Kind]func(
			*grammar.Pattern, grammar.CaptureKey, string, func(*grammar.Capture) error,
		) (*grammar.Capture, error){
			KindCapture:      grammar.DefineCapture,
			KindBeginCapture: grammar.DefineBeginCapture,
			KindEndCapture:   grammar.DefineEndCapture,
		}[s.Kind]

		key, err := captureKey(s.Name)
		if err != nil {
			return l.fail(f, s, err)
		}

		_, err = define(p, key, s.Scope,
			func(c *grammar.Capture) error {
				return l.apply(ctx, f, c, s.Body)
			})

		return err
	}

	return l.fail(f, s, ErrUnexpectedStmt.With(slog.String("name", s.Kind.String())))
}

// mixin applies the body of a trait to tgt.
func (l *Loader) mixin(ctx context.Context, f *File, tgt any, s *Stmt) error {
	t, ok := l.traits[s.Name]
	if !ok {
		return l.fail(f, s, ErrUndefinedTrait.With(slog.String("trait", s.Name)))
	}

	if slices.Contains(l.mixing, s.Name) {
		return l.fail(f, s, ErrMixinCycle.With(
			slog.String("trait", strings.Join(append(l.mixing, s.Name), " -> "))))
	}

	l.logger.TraceContext(ctx, "mixin", slog.String("trait", s.Name))

	l.mixing = append(l.mixing, s.Name)
	defer func() { l.mixing = l.mixing[:len(l.mixing)-1] }()

	return l.apply(ctx, t.file, tgt, t.stmt.Body)
}

// property assigns the value of a property statement to the matching field
// of tgt.
func (l *Loader) property(ctx context.Context, tgt any, s *Stmt) error {
	l.logger.TraceContext(ctx, "property",
		slog.String("key", s.Name),
		slog.String("value", s.Value))

	switch t := tgt.(type) {
	case *grammar.Grammar:
		return grammarProperty(t, s)
	case *grammar.Pattern:
		return l.patternProperty(t, s)
	case *grammar.Capture:
		if s.Name == "name" {
			return assignString(&t.Name, s.Value)
		}
	}

	return ErrUnknownProperty.With(slog.String("property", s.Name))
}

func grammarProperty(g *grammar.Grammar, s *Stmt) error {
	field := map[string]*string{
		"name":               &g.Name,
		"comment":            &g.Comment,
		"firstLineMatch":     &g.FirstLineMatch,
		"foldingStartMarker": &g.FoldingStartMarker,
		"foldingStopMarker":  &g.FoldingStopMarker,
		"keyEquivalent":      &g.KeyEquivalent,
		"uuid":               &g.UUID,
	}

	if ptr, ok := field[s.Name]; ok {
		return assignString(ptr, s.Value)
	}

	if s.Name != "fileTypes" {
		return ErrUnknownProperty.With(slog.String("property", s.Name))
	}

	v, err := EvalValue(s.Value)
	if err != nil {
		return err
	}

	switch v := v.(type) {
	case string:
		g.FileTypes = []string{v}
	case []any:
		g.FileTypes = make([]string, 0, len(v))
		for _, e := range v {
			str, ok := e.(string)
			if !ok {
				return ErrInvalidValueType.With(
					slog.String("property", s.Name),
					slog.String("element", strconv.Quote(s.Value)))
			}

			g.FileTypes = append(g.FileTypes, str)
		}
	default:
		return ErrInvalidValueType.With(slog.String("property", s.Name))
	}

	return nil
}

func (l *Loader) patternProperty(p *grammar.Pattern, s *Stmt) error {
	switch s.Name {
	case "name":
		return assignString(&p.Name, s.Value)
	case "contentName":
		return assignString(&p.ContentName, s.Value)
	case "comment":
		return assignString(&p.Comment, s.Value)
	case "include":
		return assignString(&p.Include, s.Value)

	case "disabled":
		v, err := EvalValue(s.Value)
		if err != nil {
			return err
		}

		switch v := v.(type) {
		case bool:
			p.Disabled = v
		case int:
			p.Disabled = v != 0
		default:
			return ErrInvalidValueType.With(slog.String("property", s.Name))
		}

		return nil

	case "match", "begin", "end":
		n, err := CompileMatch(p, s.Value, l.logger)
		if err != nil {
			return err
		}

		e := grammar.NewExpr(n)

		switch s.Name {
		case "match":
			p.Match = e
		case "begin":
			p.Begin = e
		default:
			p.End = e
		}

		return nil
	}

	return ErrUnknownProperty.With(slog.String("property", s.Name))
}

func assignString(dst *string, src string) error {
	v, err := EvalValue(src)
	if err != nil {
		return err
	}

	s, ok := v.(string)
	if !ok {
		return ErrInvalidValueType.With(slog.String("value", src))
	}

	*dst = s

	return nil
}

// captureKey interprets a capture statement key: digits select a group
// number (0 is the whole match), anything else a group name.
func captureKey(s string) (grammar.CaptureKey, error) {
	key := grammar.Name(s)

	if n, err := strconv.Atoi(s); err == nil {
		key = grammar.Number(n)
	}

	if !key.Valid() {
		return key, grammar.ErrInvalidCaptureKey.With(slog.String("key", s))
	}

	return key, nil
}

// fail locates err at statement s of file f, unless err already carries a
// location.
func (l *Loader) fail(f *File, s *Stmt, err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		return err
	}

	e, ok := err.(*Error)
	if !ok {
		e = &Error{err: err}
	}

	if e.pos.Line > 0 {
		return e
	}

	return e.WithPosition(s.Pos).InFile(f.Path)
}
