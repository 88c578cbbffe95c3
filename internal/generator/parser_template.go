package generator

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// ToolName is written in the header of generated files.
const ToolName = "charis-optgen"

// noShort is the fort::options constant for an option without short flag.
const noShort = "fort::options::NO_SHORT"

const parserTemplate = `// this file was automatically generated with {{ .Tool }}, do not modify it
#pragma once

#include <fort/options/Options.hpp>
{{- if .Include }}
#include {{ cpp .Include }}
{{- end }}

inline fort::options::OptionParser::Ptr Create{{ .Name }}Parser({{ .Name }} &opts) {
	auto parser = fort::options::OptionParser::Create({{ cpp .Program }}, {{ cpp .Description }});
{{- range .Statements }}
{{- if .Group }}
	auto {{ .Group.Var }} = {{ .Group.Owner }}->AddGroup({{ cpp .Group.Name }}, {{ cpp .Group.Description }});
{{- else }}
	{{ .Option.Owner }}->AddOption(
	    {
	        .ShortFlag   = {{ .Option.Short }},
	        .Name        = {{ cpp .Option.Name }},
	        .Description = {{ cpp .Option.Description }},
	        .Required    = {{ .Option.Required }},
	    },
	    {{ .Option.Target }}
	);
{{- end }}
{{- end }}
	return parser;
}
`

var parserTmpl = template.Must(template.New("parser").Funcs(template.FuncMap{
	"cpp": cppString,
}).Parse(parserTemplate))

// ParserGenerator renders a C++ function building a fort::options parser
// bound to the fields of a struct.
type ParserGenerator struct {
	Include     string // header declaring the struct, omitted when empty
	Program     string
	Description string
}

// NewParserGenerator creates a generator including the given header.
func NewParserGenerator(include string) *ParserGenerator {
	return &ParserGenerator{Include: include}
}

type groupStatement struct {
	Var         string
	Owner       string
	Name        string
	Description string
}

type optionStatement struct {
	Owner       string
	Short       string
	Name        string
	Description string
	Required    bool
	Target      string
}

type statement struct {
	Group  *groupStatement
	Option *optionStatement
}

type parserView struct {
	Tool        string
	Include     string
	Name        string
	Program     string
	Description string
	Statements  []statement
}

// Generate renders the parser constructor for the struct named name. Fields
// whose type is another struct of decls become option groups.
func (g *ParserGenerator) Generate(decls Declarations, name string) (string, error) {
	root, err := decls.Lookup(name)
	if err != nil {
		return "", err
	}

	view := parserView{
		Tool:        ToolName,
		Include:     g.Include,
		Name:        root.Name,
		Program:     g.Program,
		Description: g.Description,
	}

	w := &statementWriter{
		decls:    decls,
		visiting: map[string]bool{root.Name: true},
		vars:     map[string]bool{},
	}
	if err := w.write(root, "parser", "opts", nil); err != nil {
		return "", err
	}
	view.Statements = w.statements

	var buf bytes.Buffer
	if err := parserTmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render parser for %s: %w", name, err)
	}
	return buf.String(), nil
}

type statementWriter struct {
	decls      Declarations
	visiting   map[string]bool
	vars       map[string]bool
	statements []statement
}

// groupVar names the C++ variable of the group at path. Names are unique
// within one parser.
func (w *statementWriter) groupVar(path []string) string {
	base := "group" + strings.Join(path, "_")
	name := base
	for i := 2; w.vars[name]; i++ {
		name = fmt.Sprintf("%s%d", base, i)
	}
	w.vars[name] = true
	return name
}

func (w *statementWriter) write(s *Struct, owner, target string, path []string) error {
	for _, f := range s.OrderedFields() {
		fieldPath := append(append([]string{}, path...), f.Name)

		sub := w.decls.Nested(f.Type)
		if sub == nil {
			w.statements = append(w.statements, statement{Option: &optionStatement{
				Owner:       owner,
				Short:       shortLiteral(f),
				Name:        f.FlagName(),
				Description: f.Description,
				Required:    f.Required,
				Target:      target + "." + f.Name,
			}})
			continue
		}

		if w.visiting[sub.Name] {
			return &RecursionError{Path: fieldPath}
		}
		group := &groupStatement{
			Var:         w.groupVar(fieldPath),
			Owner:       owner,
			Name:        f.FlagName(),
			Description: f.Description,
		}
		w.statements = append(w.statements, statement{Group: group})

		w.visiting[sub.Name] = true
		err := w.write(sub, group.Var, target+"."+f.Name, fieldPath)
		delete(w.visiting, sub.Name)
		if err != nil {
			return err
		}
	}
	return nil
}

func shortLiteral(f *Field) string {
	if !f.HasShort() {
		return noShort
	}
	switch f.Short {
	case `'`:
		return `'\''`
	case `\`:
		return `'\\'`
	}
	return "'" + f.Short + "'"
}

var cppEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\t", `\t`,
	"\r", `\r`,
)

func cppString(s string) string {
	return `"` + cppEscaper.Replace(s) + `"`
}
