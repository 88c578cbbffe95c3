package generator

import "fmt"

// NotFoundError is returned when a structure looked up by name is not part of
// the declaration set.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("could not find structure '%s'", e.Name)
}

// RecursionError is returned when a struct contains itself through a chain of
// nested struct fields.
type RecursionError struct {
	Path []string
}

func (e *RecursionError) Error() string {
	return fmt.Sprintf("recursive structure through %v", e.Path)
}
