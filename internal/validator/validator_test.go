package validator

import (
	"testing"

	"github.com/example/charis-optgen/internal/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func structOf(name string, fields ...*generator.Field) *generator.Struct {
	s := &generator.Struct{Name: name, Fields: map[string]*generator.Field{}}
	for _, f := range fields {
		s.Fields[f.Name] = f
		s.Order = append(s.Order, f.Name)
	}
	return s
}

func declsOf(structs ...*generator.Struct) generator.Declarations {
	d := generator.Declarations{}
	for _, s := range structs {
		d[generator.StructUSR(s.Name)] = s
	}
	return d
}

func TestValidateAcceptsFlatOptions(t *testing.T) {
	decls := declsOf(structOf("Options",
		&generator.Field{Name: "AnInt", Type: "int", Short: "I", Long: "integer"},
		&generator.Field{Name: "ADouble", Type: "double", Short: "d", Long: "double"},
		&generator.Field{Name: "AString", Type: "std::string", Long: "string"},
		&generator.Field{Name: "Untagged", Type: "int"},
	))

	assert.NoError(t, Validate(decls, "Options"))
}

func TestValidateUnknownStruct(t *testing.T) {
	err := Validate(declsOf(), "foo")
	var nf *generator.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestValidateViolations(t *testing.T) {
	tests := []struct {
		name  string
		field *generator.Field
		rule  string
		flag  string
	}{
		{"short too long", &generator.Field{Name: "A", Short: "ab"}, "len", "short"},
		{"short punctuation", &generator.Field{Name: "A", Short: "-"}, "alphanum", "short"},
		{"long with space", &generator.Field{Name: "A", Long: "two words"}, "optname", "long"},
		{"long with dot", &generator.Field{Name: "A", Long: "a.b"}, "optname", "long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(declsOf(structOf("Options", tt.field)), "Options")
			var verrs *ValidationErrors
			require.ErrorAs(t, err, &verrs)
			require.Len(t, verrs.Violations, 1)
			assert.Equal(t, tt.rule, verrs.Violations[0].Rule)
			assert.Equal(t, tt.flag, verrs.Violations[0].Flag)
			assert.Equal(t, "A", verrs.Violations[0].Path)
		})
	}
}

func TestValidateDuplicateShortAcrossGroups(t *testing.T) {
	decls := declsOf(
		structOf("Resolution",
			&generator.Field{Name: "Width", Type: "int", Short: "v", Long: "width"},
		),
		structOf("Options",
			&generator.Field{Name: "Verbose", Type: "bool", Short: "v", Long: "verbose"},
			&generator.Field{Name: "Resolution", Type: "Resolution", Long: "resolution"},
		),
	)

	err := Validate(decls, "Options")
	var verrs *ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs.Violations, 1)
	assert.Equal(t, Violation{Path: "Resolution.Width", Flag: "short", Rule: "duplicate", Value: "v"}, verrs.Violations[0])
	assert.Contains(t, err.Error(), "invalid options in structure 'Options':")
	assert.Contains(t, err.Error(), `Resolution.Width: short flag "v" is already used`)
}

func TestValidateLongUniquePerGroup(t *testing.T) {
	decls := declsOf(
		structOf("Sub",
			&generator.Field{Name: "Name", Type: "int", Long: "name"},
		),
		structOf("Options",
			&generator.Field{Name: "Name", Type: "int", Long: "name"},
			&generator.Field{Name: "Other", Type: "int", Long: "name"},
			&generator.Field{Name: "Sub", Type: "struct Sub"},
		),
	)

	err := Validate(decls, "Options")
	var verrs *ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs.Violations, 1)
	assert.Equal(t, "Other", verrs.Violations[0].Path)
	assert.Equal(t, "long", verrs.Violations[0].Flag)
}

func TestValidateToleratesCycles(t *testing.T) {
	decls := declsOf(
		structOf("A", &generator.Field{Name: "B", Type: "B"}),
		structOf("B", &generator.Field{Name: "A", Type: "A"}),
	)
	assert.NoError(t, Validate(decls, "A"))
}
