// Package generate writes a resolved [grammar.Grammar] as a TextMate
// grammar file.
//
// Four encodings are supported. [FormatXML] is the XML property list read
// by TextMate and most editors. [FormatPlist] is the old-style bracketed
// property list. [FormatJSON] and [FormatYAML] carry the same document for
// tools such as VS Code.
//
// Keys are written in a fixed order per format so that output is stable
// across runs.
package generate
