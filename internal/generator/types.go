package generator

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Field is a data member of a C++ struct together with its flag metadata.
type Field struct {
	Name        string            `json:"name" yaml:"name"`
	Type        string            `json:"type" yaml:"type"`
	Short       string            `json:"short,omitempty" yaml:"short,omitempty"` // empty when absent
	Long        string            `json:"long" yaml:"long"`
	Description string            `json:"description" yaml:"description"`
	Required    bool              `json:"required" yaml:"required"`
	Tags        map[string]string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// HasShort reports whether the field carries a short flag alias.
func (f Field) HasShort() bool {
	return f.Short != ""
}

// FlagName is the long flag name, falling back to the field name.
func (f Field) FlagName() string {
	if f.Long != "" {
		return f.Long
	}
	return f.Name
}

// Struct is an extracted struct declaration.
type Struct struct {
	Name   string            `json:"name" yaml:"name"`
	Fields map[string]*Field `json:"fields" yaml:"fields"`
	// Order lists field names in declaration order.
	Order []string `json:"order" yaml:"order"`
}

// OrderedFields returns the fields in declaration order.
func (s *Struct) OrderedFields() []*Field {
	res := make([]*Field, 0, len(s.Order))
	for _, name := range s.Order {
		if f, ok := s.Fields[name]; ok {
			res = append(res, f)
		}
	}
	return res
}

func (s *Struct) addField(f *Field) {
	if _, ok := s.Fields[f.Name]; !ok {
		s.Order = append(s.Order, f.Name)
	}
	s.Fields[f.Name] = f
}

// Declarations maps a declaration USR to its extracted struct.
type Declarations map[string]*Struct

// StructUSR is the USR clang assigns to a struct declared at global scope.
func StructUSR(name string) string {
	return "c:@S@" + name
}

// USRs returns the keys of the set, sorted.
func (d Declarations) USRs() []string {
	keys := lo.Keys(d)
	slices.Sort(keys)
	return keys
}

// ByUSR returns the struct declared with usr.
func (d Declarations) ByUSR(usr string) (*Struct, bool) {
	s, ok := d[usr]
	return s, ok
}

// Lookup finds a struct by display name. A global-scope declaration wins over
// same-named declarations elsewhere; among the others the smallest USR wins.
func (d Declarations) Lookup(name string) (*Struct, error) {
	if s, ok := d[StructUSR(name)]; ok {
		return s, nil
	}
	for _, usr := range d.USRs() {
		if d[usr].Name == name {
			return d[usr], nil
		}
	}
	return nil, &NotFoundError{Name: name}
}

// Nested returns the struct a field of type typ refers to, or nil when typ
// does not name a struct of the set.
func (d Declarations) Nested(typ string) *Struct {
	s, err := d.Lookup(strings.TrimPrefix(typ, "struct "))
	if err != nil {
		return nil
	}
	return s
}
