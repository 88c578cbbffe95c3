package treesitter

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/example/charis-optgen/internal/frontend"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var headers = filepath.Join("..", "..", "..", "testdata", "headers")

func parseFile(t *testing.T, fs afero.Fs, path string) *frontend.Unit {
	t.Helper()
	tu, err := New(fs).Parse(context.Background(), path, nil)
	require.NoError(t, err)
	unit, ok := tu.(*frontend.Unit)
	require.True(t, ok)
	return unit
}

func parseSource(t *testing.T, src string) *frontend.Unit {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "inline.hpp", []byte(src), 0o644))
	return parseFile(t, fs, "inline.hpp")
}

func TestParseFlatHeader(t *testing.T) {
	path := filepath.Join(headers, "flat.hpp")
	unit := parseFile(t, afero.NewOsFs(), path)
	require.Empty(t, unit.Diagnostics())

	require.Len(t, unit.RootNode.Nodes, 1)
	s := unit.RootNode.Nodes[0]
	assert.Equal(t, frontend.KindStruct, s.Kind())
	assert.Equal(t, "Options", s.DisplayName())
	assert.Equal(t, "c:@S@Options", s.USR())
	assert.Equal(t, path, s.File())
	assert.True(t, s.IsDefinition())

	type fieldView struct{ Name, Type, Comment string }
	var got []fieldView
	for _, f := range s.Nodes {
		assert.Equal(t, frontend.KindField, f.Kind())
		got = append(got, fieldView{f.Name, f.Type, f.Comment})
	}
	assert.Equal(t, []fieldView{
		{"AnInt", "int", `long:"integer" short:"I" description:"An Integer"`},
		{"ADouble", "double", `long:"double" short:"d" description:"A double" required:"true"`},
		{"AString", "std::string", `long:"string" description:"A String" required:"false"`},
		{"AVectorOfInt", "std::vector<int>", `long:"repeat" short:"R" description:"a repeatable" required:"false"`},
	}, got)
}

func TestParseIncludesAreNotExpanded(t *testing.T) {
	unit := parseFile(t, afero.NewOsFs(), filepath.Join(headers, "with_include.hpp"))
	require.Empty(t, unit.Diagnostics())

	require.Len(t, unit.RootNode.Nodes, 1)
	assert.Equal(t, "Local", unit.RootNode.Nodes[0].Name)
}

func TestParseGuardedHeader(t *testing.T) {
	unit := parseFile(t, afero.NewOsFs(), filepath.Join(headers, "guarded.hpp"))
	require.Empty(t, unit.Diagnostics())

	var usrs []string
	for _, s := range unit.RootNode.Nodes {
		usrs = append(usrs, s.Usr)
	}
	// every branch is reported since conditions are not evaluated
	assert.Equal(t, []string{"c:@S@Options", "c:@S@Extra"}, usrs)

	opts := unit.RootNode.Nodes[0]
	assert.True(t, opts.Definition)
	type fieldView struct{ Name, Type, Comment string }
	var got []fieldView
	for _, f := range opts.Nodes {
		got = append(got, fieldView{f.Name, f.Type, f.Comment})
	}
	assert.Equal(t, []fieldView{
		{"Name", "std::string", `long:"name" short:"n" description:"the name"`},
		{"Debug", "bool", `long:"debug"`},
		{"Quiet", "bool", `long:"quiet"`},
	}, got)
}

func TestParseBrokenHeader(t *testing.T) {
	unit := parseFile(t, afero.NewOsFs(), filepath.Join(headers, "broken.hpp"))

	require.NotEmpty(t, unit.Diagnostics())
	for _, d := range unit.Diagnostics() {
		assert.Equal(t, frontend.SeverityError, d.Severity)
		assert.Positive(t, d.Line)
	}
}

func TestParseMissingFile(t *testing.T) {
	_, err := New(afero.NewMemMapFs()).Parse(context.Background(), "nope.hpp", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.hpp")
}

func TestParseDeclarators(t *testing.T) {
	unit := parseSource(t, heredoc.Doc(`
		struct Options {
			int a, *b;
			const char *name;
			double values[3];
			static int counter;
			void method();
			int &ref;
		};
	`))
	require.Empty(t, unit.Diagnostics())
	require.Len(t, unit.RootNode.Nodes, 1)

	types := map[string]string{}
	var order []string
	for _, f := range unit.RootNode.Nodes[0].Nodes {
		types[f.Name] = f.Type
		order = append(order, f.Name)
	}
	assert.Equal(t, []string{"a", "b", "name", "values", "ref"}, order)
	assert.Equal(t, "int", types["a"])
	assert.Equal(t, "int *", types["b"])
	assert.Equal(t, "const char *", types["name"])
	assert.Equal(t, "double[3]", types["values"])
	assert.Equal(t, "int &", types["ref"])
}

func TestParseDeclarationsKinds(t *testing.T) {
	unit := parseSource(t, heredoc.Doc(`
		struct Forward;
		struct Forward { int x; };
		struct { int y; } anonymous;
		namespace fort { struct Hidden { int z; }; }
		enum Color { Red };
	`))
	require.Empty(t, unit.Diagnostics())

	nodes := unit.RootNode.Nodes
	require.Len(t, nodes, 3)
	assert.Equal(t, "c:@S@Forward", nodes[0].Usr)
	assert.False(t, nodes[0].Definition)
	assert.Equal(t, "c:@S@Forward", nodes[1].Usr)
	assert.True(t, nodes[1].Definition)
	assert.Empty(t, nodes[2].Name)
	assert.Contains(t, nodes[2].Usr, "c:inline.hpp@")
}

func TestParseComments(t *testing.T) {
	unit := parseSource(t, heredoc.Doc(`
		struct Options {
			// plain comment
			int Plain;
			/// long:"line"
			int Line;
			int Trailing; ///< long:"trailing"
			/*!
			 * long:"bang"
			 * short:"b"
			 */
			int Bang;
		};
	`))
	require.Empty(t, unit.Diagnostics())

	comments := map[string]string{}
	for _, f := range unit.RootNode.Nodes[0].Nodes {
		comments[f.Name] = f.Comment
	}
	assert.Equal(t, map[string]string{
		"Plain":    "",
		"Line":     `long:"line"`,
		"Trailing": `long:"trailing"`,
		"Bang":     `long:"bang" short:"b"`,
	}, comments)
}

func TestDocText(t *testing.T) {
	tests := []struct {
		raw      string
		trailing bool
		want     string
		ok       bool
	}{
		{`/** long:"a" */`, false, `long:"a"`, true},
		{`/**long:"a"*/`, false, `long:"a"`, true},
		{`/// long:"a"`, false, `long:"a"`, true},
		{`//! long:"a"`, false, `long:"a"`, true},
		{`///< long:"a"`, true, `long:"a"`, true},
		{`/**< long:"a" */`, true, `long:"a"`, true},
		{`///< long:"a"`, false, "", false},
		{`/// long:"a"`, true, "", false},
		{`// long:"a"`, false, "", false},
		{`/* long:"a" */`, false, "", false},
		{`//// banner`, false, "", false},
		{"/**\n * first\n *\n * second\n */", false, "first", true},
	}
	for _, tt := range tests {
		got, ok := docText(tt.raw, tt.trailing)
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}
