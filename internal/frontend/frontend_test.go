package frontend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiagnosticString(t *testing.T) {
	tests := []struct {
		name string
		diag Diagnostic
		want string
	}{
		{
			name: "with location",
			diag: Diagnostic{Severity: SeverityError, File: "flat.hpp", Line: 3, Column: 7, Message: "expected ';'"},
			want: "flat.hpp:3:7: error: expected ';'",
		},
		{
			name: "without file",
			diag: Diagnostic{Severity: SeverityWarning, Message: "argument unused during compilation"},
			want: "warning: argument unused during compilation",
		},
		{
			name: "fatal",
			diag: Diagnostic{Severity: SeverityFatal, File: "a.hpp", Line: 1, Column: 10, Message: "'missing.h' file not found"},
			want: "a.hpp:1:10: fatal error: 'missing.h' file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.diag.String())
		})
	}
}

func TestSeverityOrdering(t *testing.T) {
	assert.Less(t, SeverityNote, SeverityWarning)
	assert.Greater(t, SeverityError, SeverityWarning)
	assert.Greater(t, SeverityFatal, SeverityError)
	assert.Equal(t, "severity(42)", Severity(42).String())
}

func TestNodeChildren(t *testing.T) {
	root := &Node{
		Nodes: []*Node{
			{NodeKind: KindStruct, Name: "A"},
			{NodeKind: KindOther, Name: "ns"},
		},
	}

	children := root.Children()
	if assert.Len(t, children, 2) {
		assert.Equal(t, KindStruct, children[0].Kind())
		assert.Equal(t, "A", children[0].DisplayName())
		assert.Equal(t, "Other", children[1].Kind().String())
	}

	u := &Unit{RootNode: root}
	u.Dispose()
	assert.True(t, u.Disposed)
}
