package grammar

import "log/slog"

// DefinePattern creates a pattern named name, populates it with build and
// appends it to parent.
//
// The pattern is not appended if build fails.
func DefinePattern(
	parent Container,
	name string,
	build func(*Pattern) error,
) (*Pattern, error) {
	p := &Pattern{Name: name, grammar: parent.Grammar()}

	if build != nil {
		if err := build(p); err != nil {
			return nil, err
		}
	}

	parent.AddPattern(p)

	return p, nil
}

// DefineRule creates a pattern, populates it with build and stores it in
// the repository of g under name. A rule with the same name is replaced.
func DefineRule(
	g *Grammar,
	name string,
	build func(*Pattern) error,
) (*Pattern, error) {
	p := g.NewPattern()

	if build != nil {
		if err := build(p); err != nil {
			return nil, err
		}
	}

	g.AddRule(name, p)

	return p, nil
}

// DefineCapture registers a capture in the `captures` table of p.
func DefineCapture(
	p *Pattern,
	key CaptureKey,
	name string,
	build func(*Capture) error,
) (*Capture, error) {
	return defineCapture(p, &p.Captures, key, name, build)
}

// DefineBeginCapture registers a capture in the `beginCaptures` table of p.
func DefineBeginCapture(
	p *Pattern,
	key CaptureKey,
	name string,
	build func(*Capture) error,
) (*Capture, error) {
	return defineCapture(p, &p.BeginCaptures, key, name, build)
}

// DefineEndCapture registers a capture in the `endCaptures` table of p.
func DefineEndCapture(
	p *Pattern,
	key CaptureKey,
	name string,
	build func(*Capture) error,
) (*Capture, error) {
	return defineCapture(p, &p.EndCaptures, key, name, build)
}

func defineCapture(
	p *Pattern,
	table *CaptureTable,
	key CaptureKey,
	name string,
	build func(*Capture) error,
) (*Capture, error) {
	if !key.Valid() {
		return nil, ErrInvalidCaptureKey.With(slog.String("key", key.String()))
	}

	c := NewCapture(p.grammar, name)

	if build != nil {
		if err := build(c); err != nil {
			return nil, err
		}
	}

	table.Set(key, c)

	return c, nil
}
