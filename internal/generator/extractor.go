package generator

import (
	"context"
	"path/filepath"

	"github.com/example/charis-optgen/internal/frontend"
	"go.uber.org/zap"
)

// SourceParser produces translation units. *index.Index implements it.
type SourceParser interface {
	Parse(ctx context.Context, path string) (frontend.TranslationUnit, error)
}

// Extractor extracts struct declarations from a header.
type Extractor struct {
	parser SourceParser
	logger *zap.Logger
}

// NewExtractor creates a new extractor
func NewExtractor(parser SourceParser, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		parser: parser,
		logger: logger,
	}
}

// Extract parses path and returns every struct declared at the top level of
// that file, keyed by USR. Nothing is returned when the parse fails.
func (e *Extractor) Extract(ctx context.Context, path string) (Declarations, error) {
	tu, err := e.parser.Parse(ctx, path)
	if err != nil {
		return nil, err
	}
	defer tu.Dispose()

	decls := ExtractDeclarations(tu.Root(), path)
	e.logger.Debug("extracted declarations", zap.String("file", path), zap.Strings("usrs", decls.USRs()))
	return decls, nil
}

// ExtractDeclarations walks the direct children of root. Struct declarations
// located in path are kept; declarations from other files or without a file
// are skipped. When a USR is seen more than once a definition is never
// replaced by a forward declaration.
func ExtractDeclarations(root frontend.Cursor, path string) Declarations {
	decls := make(Declarations)
	defined := make(map[string]bool)
	want := filepath.Clean(path)

	for _, c := range root.Children() {
		if c.Kind() != frontend.KindStruct {
			continue
		}
		if c.File() == "" || filepath.Clean(c.File()) != want {
			continue
		}

		usr := c.USR()
		if defined[usr] && !c.IsDefinition() {
			continue
		}
		decls[usr] = extractStruct(c)
		defined[usr] = c.IsDefinition()
	}

	return decls
}

func extractStruct(c frontend.Cursor) *Struct {
	res := &Struct{
		Name:   c.DisplayName(),
		Fields: make(map[string]*Field),
	}
	for _, child := range c.Children() {
		if child.Kind() != frontend.KindField {
			continue
		}
		f := extractField(child)
		res.addField(&f)
	}
	return res
}

func extractField(c frontend.Cursor) Field {
	return FieldFromTags(c.DisplayName(), c.TypeSpelling(), ParseTags(c.BriefComment()))
}
