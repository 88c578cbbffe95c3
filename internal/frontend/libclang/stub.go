//go:build nolibclang

package libclang

import (
	"context"
	"errors"

	"github.com/example/charis-optgen/internal/frontend"
)

// Available reports whether this build links libclang.
const Available = false

// ErrUnavailable is returned by Parse in builds without libclang.
var ErrUnavailable = errors.New("built without libclang (nolibclang tag); use --frontend treesitter")

// Frontend is a placeholder for builds without libclang.
type Frontend struct{}

// New creates a front-end whose Parse always fails.
func New() *Frontend {
	return &Frontend{}
}

// Parse implements frontend.Frontend.
func (f *Frontend) Parse(context.Context, string, []string) (frontend.TranslationUnit, error) {
	return nil, ErrUnavailable
}
