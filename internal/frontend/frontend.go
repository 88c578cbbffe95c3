// Package frontend defines the view of a parsed C++ translation unit that the
// declaration extractor walks. Concrete front-ends (libclang, tree-sitter)
// live in sub-packages.
package frontend

import (
	"context"
	"fmt"
)

// Severity mirrors the libclang diagnostic severities.
type Severity int

const (
	SeverityIgnored Severity = iota
	SeverityNote
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityIgnored:
		return "ignored"
	case SeverityNote:
		return "note"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Diagnostic is a compiler-style message attached to a translation unit.
type Diagnostic struct {
	Severity Severity
	File     string
	Line     int
	Column   int
	Message  string
}

// String formats the diagnostic the way clang prints it on the terminal.
func (d Diagnostic) String() string {
	if d.File == "" {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Line, d.Column, d.Severity, d.Message)
}

// Kind classifies a cursor. Only the kinds the extractor cares about are
// distinguished.
type Kind int

const (
	KindOther Kind = iota
	KindStruct
	KindField
)

func (k Kind) String() string {
	switch k {
	case KindStruct:
		return "StructDecl"
	case KindField:
		return "FieldDecl"
	default:
		return "Other"
	}
}

// Cursor is a declaration in the syntax tree.
type Cursor interface {
	Kind() Kind
	DisplayName() string
	// USR is the unified symbol resolution string of the declaration.
	USR() string
	// File is the name of the file declaring the cursor, empty for builtins.
	File() string
	// IsDefinition reports whether the cursor is a definition rather than a
	// forward declaration.
	IsDefinition() bool
	// TypeSpelling is the textual type of the declaration as printed by the
	// front-end.
	TypeSpelling() string
	// BriefComment is the brief documentation comment attached to the
	// declaration, empty when there is none.
	BriefComment() string
	// Children returns the direct children of the cursor in source order.
	Children() []Cursor
}

// TranslationUnit is the result of parsing one file.
type TranslationUnit interface {
	Root() Cursor
	Diagnostics() []Diagnostic
	// Dispose releases the resources held by the front-end. Cursors obtained
	// from the unit must not be used afterwards.
	Dispose()
}

// Frontend parses a source file with the given compiler arguments.
type Frontend interface {
	Parse(ctx context.Context, path string, args []string) (TranslationUnit, error)
}
