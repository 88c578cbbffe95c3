// Package validator checks extracted structs before a parser is generated for
// them: flag names must be accepted by the fort::options runtime and must not
// collide.
package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/example/charis-optgen/internal/generator"
	"github.com/go-playground/validator/v10"
)

// validate is configured to report flag names rather than Go field names.
var validate *validator.Validate

// optionNameRx is the check OptionGroup::checkName performs at runtime.
var optionNameRx = regexp.MustCompile(`^[a-zA-Z\-_0-9]+$`)

func init() {
	validate = validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("flag"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := validate.RegisterValidation("optname", func(fl validator.FieldLevel) bool {
		return optionNameRx.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
}

type flagSpec struct {
	Short string `flag:"short" validate:"omitempty,len=1,alphanum"`
	Long  string `flag:"long" validate:"required,optname"`
}

// Violation is a single rejected field.
type Violation struct {
	Path  string // dotted field path from the root struct
	Flag  string // short or long
	Rule  string
	Value string
}

func (v Violation) String() string {
	switch v.Rule {
	case "duplicate":
		return fmt.Sprintf("%s: %s flag %q is already used", v.Path, v.Flag, v.Value)
	case "optname":
		return fmt.Sprintf("%s: %s flag %q may only contain letters, digits, '-' and '_'", v.Path, v.Flag, v.Value)
	case "len", "alphanum":
		return fmt.Sprintf("%s: %s flag %q must be a single letter or digit", v.Path, v.Flag, v.Value)
	}
	return fmt.Sprintf("%s: %s flag %q fails %s", v.Path, v.Flag, v.Value, v.Rule)
}

// ValidationErrors aggregates every violation found in a struct tree.
type ValidationErrors struct {
	Struct     string
	Violations []Violation
}

func (e *ValidationErrors) Error() string {
	lines := make([]string, 0, len(e.Violations)+1)
	lines = append(lines, fmt.Sprintf("invalid options in structure '%s':", e.Struct))
	for _, v := range e.Violations {
		lines = append(lines, "  "+v.String())
	}
	return strings.Join(lines, "\n")
}

// Validate checks the struct named name and every struct reachable through
// nested fields. Short flags are unique over the whole parser, long flags and
// group names within their group.
func Validate(decls generator.Declarations, name string) error {
	root, err := decls.Lookup(name)
	if err != nil {
		return err
	}

	w := &walker{
		decls:    decls,
		shorts:   make(map[string]string),
		visiting: map[string]bool{root.Name: true},
	}
	w.group(root, "")

	if len(w.violations) == 0 {
		return nil
	}
	return &ValidationErrors{Struct: root.Name, Violations: w.violations}
}

type walker struct {
	decls      generator.Declarations
	shorts     map[string]string
	visiting   map[string]bool
	violations []Violation
}

func (w *walker) group(s *generator.Struct, prefix string) {
	longs := make(map[string]string)

	for _, f := range s.OrderedFields() {
		path := f.Name
		if prefix != "" {
			path = prefix + "." + f.Name
		}

		w.check(f, path)

		if _, ok := longs[f.FlagName()]; ok {
			w.add(Violation{Path: path, Flag: "long", Rule: "duplicate", Value: f.FlagName()})
		} else {
			longs[f.FlagName()] = path
		}

		sub := w.decls.Nested(f.Type)
		if sub == nil {
			if f.HasShort() {
				if _, ok := w.shorts[f.Short]; ok {
					w.add(Violation{Path: path, Flag: "short", Rule: "duplicate", Value: f.Short})
				} else {
					w.shorts[f.Short] = path
				}
			}
			continue
		}
		// cycles are reported by the generator
		if w.visiting[sub.Name] {
			continue
		}
		w.visiting[sub.Name] = true
		w.group(sub, path)
		delete(w.visiting, sub.Name)
	}
}

func (w *walker) check(f *generator.Field, path string) {
	err := validate.Struct(flagSpec{Short: f.Short, Long: f.FlagName()})
	if err == nil {
		return
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		w.add(Violation{Path: path, Flag: "long", Rule: err.Error(), Value: f.FlagName()})
		return
	}
	for _, fe := range verrs {
		w.add(Violation{Path: path, Flag: fe.Field(), Rule: fe.Tag(), Value: fmt.Sprint(fe.Value())})
	}
}

func (w *walker) add(v Violation) {
	w.violations = append(w.violations, v)
}
