//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of tmg embedded at build time.
var Version = strings.TrimSpace(version)

const (
	// Name is the command name. It also names the config directory and the
	// prefix of environment variables.
	Name = "tmg"
	// Description is a short summary used in help output.
	Description = "TextMate grammar compiler"
	// SourceExt is the file extension of grammar sources.
	SourceExt = ".tmg"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project.
//
//nolint:gochecknoglobals
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
