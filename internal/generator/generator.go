// Package generator extracts annotated struct declarations from C++ headers
// and renders fort::options parsers for them.
package generator

import (
	"context"

	"go.uber.org/zap"
)

// CheckFunc inspects the extracted declarations before a parser is rendered
// for the struct named name.
type CheckFunc func(decls Declarations, name string) error

// Generator runs the whole pipeline: extraction, optional checks and
// rendering.
type Generator struct {
	extractor *Extractor
	parser    *ParserGenerator
	checks    []CheckFunc
	logger    *zap.Logger
}

// New creates a new generator
func New(source SourceParser, parser *ParserGenerator, logger *zap.Logger, checks ...CheckFunc) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if parser == nil {
		parser = &ParserGenerator{}
	}
	return &Generator{
		extractor: NewExtractor(source, logger),
		parser:    parser,
		checks:    checks,
		logger:    logger,
	}
}

// Generate renders the parser of the struct named name declared in header.
func (g *Generator) Generate(ctx context.Context, header, name string) (string, error) {
	decls, err := g.extractor.Extract(ctx, header)
	if err != nil {
		return "", err
	}

	for _, check := range g.checks {
		if err := check(decls, name); err != nil {
			return "", err
		}
	}

	code, err := g.parser.Generate(decls, name)
	if err != nil {
		return "", err
	}
	g.logger.Debug("rendered parser", zap.String("struct", name), zap.Int("bytes", len(code)))
	return code, nil
}

// Extract returns the declarations of header without rendering anything.
func (g *Generator) Extract(ctx context.Context, header string) (Declarations, error) {
	return g.extractor.Extract(ctx, header)
}
