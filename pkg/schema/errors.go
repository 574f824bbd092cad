package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRecursiveSchema is returned for a schema that refers back to itself.
// Generators are strict, so a recursive schema would never terminate.
var ErrRecursiveSchema = errors.New("recursive schema")

// UnsupportedSchemaError is returned when a schema uses a construct that
// cannot be turned into a generator.
type UnsupportedSchemaError struct {
	Path   string
	Reason string
}

func (e *UnsupportedSchemaError) Error() string {
	return fmt.Sprintf("unsupported schema at %s: %s", e.Path, e.Reason)
}

// ComponentNotFoundError is returned when a named component schema does not
// exist in the document.
type ComponentNotFoundError struct {
	Name      string
	Available []string
}

func (e *ComponentNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("component schema '%s' not found: document has no component schemas", e.Name)
	}
	return fmt.Sprintf("component schema '%s' not found (available: %s)", e.Name, strings.Join(e.Available, ", "))
}
