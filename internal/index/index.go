// Package index turns a header path into a translation unit. It assembles the
// front-end command line, runs the front-end and rejects translation units
// carrying errors.
package index

import (
	"context"
	"fmt"

	"github.com/example/charis-optgen/internal/frontend"
	"go.uber.org/zap"
)

// ParseError reports a diagnostic above warning severity.
type ParseError struct {
	File       string
	Diagnostic string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse '%s': %s", e.File, e.Diagnostic)
}

// Index parses files with a front-end.
type Index struct {
	frontend frontend.Frontend
	args     ArgsProvider
	extra    []string
	logger   *zap.Logger
}

// Option configures an Index.
type Option func(*Index)

// WithArgs replaces the process-wide argument cache.
func WithArgs(p ArgsProvider) Option {
	return func(x *Index) { x.args = p }
}

// WithExtraArgs appends arguments after the discovered ones.
func WithExtraArgs(args ...string) Option {
	return func(x *Index) { x.extra = append(x.extra, args...) }
}

// WithLogger sets the logger receiving non-fatal diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(x *Index) {
		if l != nil {
			x.logger = l
		}
	}
}

// New creates an Index. Without options it discovers include paths with the
// default compiler and discards diagnostics.
func New(fe frontend.Frontend, opts ...Option) *Index {
	x := &Index{
		frontend: fe,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(x)
	}
	if x.args == nil {
		x.args = SharedArgsCache(DefaultCompiler)
	}
	return x
}

// Parse parses path. Diagnostics up to warning severity are logged; the first
// error or fatal diagnostic aborts with a *ParseError and no unit is returned.
func (x *Index) Parse(ctx context.Context, path string) (frontend.TranslationUnit, error) {
	args, err := x.args.Args(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover include paths: %w", err)
	}
	args = append(args, x.extra...)

	x.logger.Debug("parsing", zap.String("file", path), zap.Strings("args", args))

	tu, err := x.frontend.Parse(ctx, path, args)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	for _, d := range tu.Diagnostics() {
		if d.Severity > frontend.SeverityWarning {
			tu.Dispose()
			return nil, &ParseError{File: path, Diagnostic: d.String()}
		}
		if d.Severity == frontend.SeverityWarning {
			x.logger.Warn(d.Message, zap.String("file", d.File), zap.Int("line", d.Line), zap.Int("column", d.Column))
		} else {
			x.logger.Info(d.Message, zap.String("file", d.File), zap.Int("line", d.Line), zap.Int("column", d.Column))
		}
	}

	return tu, nil
}
