//go:build !nolibclang

// Package libclang is the front-end backed by libclang through go-clang.
package libclang

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/charis-optgen/internal/frontend"
	"github.com/go-clang/clang-v15/clang"
)

// Available reports whether this build links libclang.
const Available = true

// Frontend creates a libclang index per parse. libclang indexes are not safe
// for concurrent use, so parses are serialized.
type Frontend struct {
	mu sync.Mutex
}

// New creates a libclang front-end.
func New() *Frontend {
	return &Frontend{}
}

// Parse implements frontend.Frontend.
func (f *Frontend) Parse(ctx context.Context, path string, args []string) (frontend.TranslationUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	idx := clang.NewIndex(0, 0)
	tu := idx.ParseTranslationUnit(path, args, nil, uint32(clang.TranslationUnit_DetailedPreprocessingRecord))
	if !tu.IsValid() {
		idx.Dispose()
		return nil, fmt.Errorf("libclang could not create a translation unit for %s", path)
	}
	return &unit{index: idx, tu: tu}, nil
}

type unit struct {
	index clang.Index
	tu    clang.TranslationUnit
	once  sync.Once
}

func (u *unit) Root() frontend.Cursor {
	return cursor{c: u.tu.TranslationUnitCursor()}
}

func (u *unit) Diagnostics() []frontend.Diagnostic {
	diags := u.tu.Diagnostics()
	res := make([]frontend.Diagnostic, 0, len(diags))
	for _, d := range diags {
		file, line, col, _ := d.Location().FileLocation()
		res = append(res, frontend.Diagnostic{
			Severity: severity(d.Severity()),
			File:     file.Name(),
			Line:     int(line),
			Column:   int(col),
			Message:  d.Spelling(),
		})
		d.Dispose()
	}
	return res
}

func (u *unit) Dispose() {
	u.once.Do(func() {
		u.tu.Dispose()
		u.index.Dispose()
	})
}

func severity(s clang.DiagnosticSeverity) frontend.Severity {
	switch s {
	case clang.Diagnostic_Note:
		return frontend.SeverityNote
	case clang.Diagnostic_Warning:
		return frontend.SeverityWarning
	case clang.Diagnostic_Error:
		return frontend.SeverityError
	case clang.Diagnostic_Fatal:
		return frontend.SeverityFatal
	}
	return frontend.SeverityIgnored
}

type cursor struct {
	c clang.Cursor
}

func (c cursor) Kind() frontend.Kind {
	switch c.c.Kind() {
	case clang.Cursor_StructDecl:
		return frontend.KindStruct
	case clang.Cursor_FieldDecl:
		return frontend.KindField
	}
	return frontend.KindOther
}

func (c cursor) DisplayName() string  { return c.c.DisplayName() }
func (c cursor) USR() string          { return c.c.USR() }
func (c cursor) IsDefinition() bool   { return c.c.IsCursorDefinition() }
func (c cursor) TypeSpelling() string { return c.c.Type().Spelling() }
func (c cursor) BriefComment() string { return c.c.BriefCommentText() }

func (c cursor) File() string {
	file, _, _, _ := c.c.Location().FileLocation()
	return file.Name()
}

func (c cursor) Children() []frontend.Cursor {
	var res []frontend.Cursor
	c.c.Visit(func(child, _ clang.Cursor) clang.ChildVisitResult {
		res = append(res, cursor{c: child})
		return clang.ChildVisit_Continue
	})
	return res
}
