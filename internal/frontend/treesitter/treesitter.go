// Package treesitter is a front-end that does not need libclang. It parses a
// single header with the tree-sitter C++ grammar: includes are not expanded
// and declarations of the header itself are the only ones reported.
package treesitter

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/example/charis-optgen/internal/frontend"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/spf13/afero"
)

// Frontend parses headers read from an afero filesystem.
type Frontend struct {
	fs afero.Fs
}

// New creates a front-end reading files from fs. A nil fs reads the OS
// filesystem.
func New(fs afero.Fs) *Frontend {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Frontend{fs: fs}
}

// Parse implements frontend.Frontend. Compiler arguments are accepted and
// ignored.
func (f *Frontend) Parse(ctx context.Context, path string, _ []string) (frontend.TranslationUnit, error) {
	src, err := afero.ReadFile(f.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(cpp.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter: %w", err)
	}
	defer tree.Close()

	b := &builder{path: path, src: src}
	root := b.translationUnit(tree.RootNode())
	return &frontend.Unit{RootNode: root, Diags: b.diags}, nil
}

type builder struct {
	path  string
	src   []byte
	diags []frontend.Diagnostic
}

func (b *builder) text(n *sitter.Node) string {
	return n.Content(b.src)
}

func (b *builder) translationUnit(n *sitter.Node) *frontend.Node {
	root := &frontend.Node{FileName: b.path}
	b.collectErrors(n)
	b.topLevel(n, root)
	return root
}

// topLevel appends the structs declared among the children of n. Conditional
// blocks such as include guards are transparent; namespaces and extern "C"
// blocks are not entered.
func (b *builder) topLevel(n *sitter.Node, root *frontend.Node) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "struct_specifier":
			if s := b.structDecl(child); s != nil {
				root.Nodes = append(root.Nodes, s)
			}
		case "declaration", "type_definition":
			// struct Foo {...} foo; and typedef struct Foo {...} Foo;
			if t := child.ChildByFieldName("type"); t != nil && t.Type() == "struct_specifier" {
				if s := b.structDecl(t); s != nil {
					root.Nodes = append(root.Nodes, s)
				}
			}
		default:
			if isConditional(child) {
				b.topLevel(child, root)
			}
		}
	}
}

func isConditional(n *sitter.Node) bool {
	switch n.Type() {
	case "preproc_if", "preproc_ifdef", "preproc_else", "preproc_elif", "preproc_elifdef":
		return true
	}
	return false
}

func (b *builder) structDecl(n *sitter.Node) *frontend.Node {
	body := n.ChildByFieldName("body")
	res := &frontend.Node{
		NodeKind:   frontend.KindStruct,
		FileName:   b.path,
		Definition: body != nil,
	}

	if name := n.ChildByFieldName("name"); name != nil {
		res.Name = b.text(name)
		res.Usr = "c:@S@" + res.Name
	} else {
		if body == nil {
			return nil
		}
		res.Usr = fmt.Sprintf("c:%s@%d@S@", filepath.Base(b.path), n.StartByte())
	}

	if body != nil {
		res.Nodes = b.fields(body)
	}
	return res
}

func (b *builder) fields(body *sitter.Node) []*frontend.Node {
	var res []*frontend.Node
	count := int(body.ChildCount())
	for i := 0; i < count; i++ {
		child := body.Child(i)
		if isConditional(child) {
			res = append(res, b.fields(child)...)
			continue
		}
		if child.Type() != "field_declaration" || b.isStatic(child) {
			continue
		}
		typ := child.ChildByFieldName("type")
		if typ == nil {
			continue
		}
		base := b.typeSpelling(child, typ)
		comment := b.briefComment(child)

		for j := 0; j < int(child.NamedChildCount()); j++ {
			name, suffix, ok := b.declarator(child.NamedChild(j))
			if !ok {
				continue
			}
			res = append(res, &frontend.Node{
				NodeKind: frontend.KindField,
				Name:     name,
				FileName: b.path,
				Type:     base + suffix,
				Comment:  comment,
			})
		}
	}
	return res
}

// declarator returns the field name of a data member declarator and the type
// suffix it contributes. Member functions are not fields.
func (b *builder) declarator(n *sitter.Node) (name, suffix string, ok bool) {
	switch n.Type() {
	case "field_identifier":
		return b.text(n), "", true
	case "pointer_declarator", "reference_declarator", "array_declarator":
		var inner *sitter.Node
		if d := n.ChildByFieldName("declarator"); d != nil {
			inner = d
		} else if n.NamedChildCount() > 0 {
			inner = n.NamedChild(0)
		}
		if inner == nil {
			return "", "", false
		}
		name, suffix, ok = b.declarator(inner)
		if !ok {
			return "", "", false
		}
		switch n.Type() {
		case "pointer_declarator":
			return name, " *" + suffix, true
		case "reference_declarator":
			return name, " &" + suffix, true
		default:
			size := ""
			if s := n.ChildByFieldName("size"); s != nil {
				size = b.text(s)
			}
			return name, suffix + "[" + size + "]", true
		}
	}
	return "", "", false
}

var spaceRx = regexp.MustCompile(`\s+`)

func (b *builder) typeSpelling(decl, typ *sitter.Node) string {
	var parts []string
	for i := 0; i < int(decl.ChildCount()); i++ {
		if c := decl.Child(i); c.Type() == "type_qualifier" && c.StartByte() < typ.StartByte() {
			parts = append(parts, b.text(c))
		}
	}
	spelling := spaceRx.ReplaceAllString(b.text(typ), " ")
	spelling = strings.ReplaceAll(spelling, "< ", "<")
	spelling = strings.ReplaceAll(spelling, " >", ">")
	return strings.Join(append(parts, spelling), " ")
}

func (b *builder) isStatic(decl *sitter.Node) bool {
	for i := 0; i < int(decl.ChildCount()); i++ {
		c := decl.Child(i)
		if c.Type() == "storage_class_specifier" && b.text(c) == "static" {
			return true
		}
	}
	return false
}

// briefComment returns the doc comment attached to a field: the comment
// right before it, or a trailing ///< or /**< on the same line.
func (b *builder) briefComment(decl *sitter.Node) string {
	if next := decl.NextSibling(); next != nil && next.Type() == "comment" &&
		next.StartPoint().Row == decl.EndPoint().Row {
		if text, ok := docText(b.text(next), true); ok {
			return text
		}
	}
	if prev := decl.PrevSibling(); prev != nil && prev.Type() == "comment" {
		if text, ok := docText(b.text(prev), false); ok {
			return text
		}
	}
	return ""
}

var (
	blockRx    = regexp.MustCompile(`^/\*[*!](<)?([\s\S]*?)\*/$`)
	lineRx     = regexp.MustCompile(`^//[/!](<)?(.*)$`)
	leadStarRx = regexp.MustCompile(`(?m)^[ \t]*\*+ ?`)
)

// docText strips comment markers from a doxygen comment and joins its first
// paragraph into a single line. Plain comments are not documentation.
func docText(raw string, trailing bool) (string, bool) {
	raw = strings.TrimSpace(raw)
	var body string
	switch {
	case blockRx.MatchString(raw):
		m := blockRx.FindStringSubmatch(raw)
		if (m[1] == "<") != trailing {
			return "", false
		}
		body = leadStarRx.ReplaceAllString(m[2], "")
	case lineRx.MatchString(raw):
		m := lineRx.FindStringSubmatch(raw)
		if (m[1] == "<") != trailing || strings.HasPrefix(raw, "////") {
			return "", false
		}
		body = m[2]
	default:
		return "", false
	}

	paragraph, _, _ := strings.Cut(strings.TrimSpace(body), "\n\n")
	return strings.Join(strings.Fields(paragraph), " "), true
}

func (b *builder) collectErrors(n *sitter.Node) {
	if !n.HasError() && !n.IsMissing() {
		return
	}
	if n.Type() == "ERROR" || n.IsMissing() {
		msg := "syntax error"
		if n.IsMissing() {
			msg = fmt.Sprintf("expected '%s'", n.Type())
		}
		p := n.StartPoint()
		b.diags = append(b.diags, frontend.Diagnostic{
			Severity: frontend.SeverityError,
			File:     b.path,
			Line:     int(p.Row) + 1,
			Column:   int(p.Column) + 1,
			Message:  msg,
		})
		if n.Type() == "ERROR" {
			return
		}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		b.collectErrors(n.Child(i))
	}
}
