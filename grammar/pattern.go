package grammar

// Pattern is a single entry of a `patterns` array or a repository rule.
type Pattern struct {
	Name        string
	ContentName string
	Comment     string
	Include     string
	Disabled    bool

	Match *Expr
	Begin *Expr
	End   *Expr

	Captures      CaptureTable
	BeginCaptures CaptureTable
	EndCaptures   CaptureTable

	Patterns []*Pattern

	// grammar is a back-reference used to resolve rule names.
	grammar *Grammar
}

// Grammar returns the grammar that owns p.
func (p *Pattern) Grammar() *Grammar { return p.grammar }

// AddPattern appends a nested pattern.
func (p *Pattern) AddPattern(q *Pattern) {
	p.Patterns = append(p.Patterns, q)
}

// AddCapture registers c in the `captures` table under key.
func (p *Pattern) AddCapture(key CaptureKey, c *Capture) {
	p.Captures.Set(key, c)
}

// AddBeginCapture registers c in the `beginCaptures` table under key.
func (p *Pattern) AddBeginCapture(key CaptureKey, c *Capture) {
	p.BeginCaptures.Set(key, c)
}

// AddEndCapture registers c in the `endCaptures` table under key.
func (p *Pattern) AddEndCapture(key CaptureKey, c *Capture) {
	p.EndCaptures.Set(key, c)
}

// NextCaptureNumber returns the next unused group number of the `captures`
// table and advances it.
func (p *Pattern) NextCaptureNumber() int {
	return p.Captures.Next()
}

// Reference returns a rule reference authored in p.
func (p *Pattern) Reference(rule string) *RuleReference {
	return &RuleReference{Rule: rule, Containing: p}
}

// Resolved reports whether every match-bearing field of p is final.
func (p *Pattern) Resolved() bool {
	for _, e := range []*Expr{p.Match, p.Begin, p.End} {
		if e != nil && !e.Resolved() {
			return false
		}
	}

	return true
}

// Expr is the value of a match, begin or end field.
//
// It keeps the authored node even after resolution so that rule references
// always expand from the authored expression.
type Expr struct {
	node     Node
	source   string
	resolved bool
}

// NewExpr wraps an authored node. Literal leaves are final immediately.
func NewExpr(n Node) *Expr {
	e := &Expr{node: n}

	switch v := n.(type) {
	case Literal:
		e.resolve(string(v))
	case Regexp:
		e.resolve(string(v))
	}

	return e
}

// Node returns the authored node.
func (e *Expr) Node() Node {
	if e == nil {
		return nil
	}

	return e.node
}

// Resolved reports whether the compiled source is available.
func (e *Expr) Resolved() bool { return e != nil && e.resolved }

// String returns the compiled source, or "" if unresolved.
func (e *Expr) String() string {
	if e == nil {
		return ""
	}

	return e.source
}

func (e *Expr) resolve(source string) {
	e.source = source
	e.resolved = true
}
