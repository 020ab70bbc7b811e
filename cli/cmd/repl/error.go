package repl

import "errors"

// ErrNoLoader is returned by [Run] when [Config.Load] is nil.
var ErrNoLoader = errors.New("no grammar loader configured")

// ErrEditDeclined reports that the user abandoned an edit whose grammar
// failed to load.
var ErrEditDeclined = errors.New("grammar edit declined")

// ErrOutOfBounds is returned for a history index outside the stored entries.
var ErrOutOfBounds = errors.New("history index out of range")
