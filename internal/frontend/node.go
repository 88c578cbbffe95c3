package frontend

// Node is an in-memory Cursor. The tree-sitter front-end materializes its
// results as Nodes, and tests use them to build translation units by hand.
type Node struct {
	NodeKind   Kind
	Name       string
	Usr        string
	FileName   string
	Definition bool
	Type       string
	Comment    string
	Nodes      []*Node
}

func (n *Node) Kind() Kind           { return n.NodeKind }
func (n *Node) DisplayName() string  { return n.Name }
func (n *Node) USR() string          { return n.Usr }
func (n *Node) File() string         { return n.FileName }
func (n *Node) IsDefinition() bool   { return n.Definition }
func (n *Node) TypeSpelling() string { return n.Type }
func (n *Node) BriefComment() string { return n.Comment }

func (n *Node) Children() []Cursor {
	res := make([]Cursor, 0, len(n.Nodes))
	for _, c := range n.Nodes {
		res = append(res, c)
	}
	return res
}

// Unit is an in-memory TranslationUnit.
type Unit struct {
	RootNode *Node
	Diags    []Diagnostic
	Disposed bool
}

func (u *Unit) Root() Cursor              { return u.RootNode }
func (u *Unit) Diagnostics() []Diagnostic { return u.Diags }
func (u *Unit) Dispose()                  { u.Disposed = true }
