// Package catalog keeps the named generators that the CLI and the MCP server
// can sample from.
package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/nomagicln/seedgen/pkg/gen"
	"github.com/nomagicln/seedgen/pkg/schema"
)

// Sources of catalog entries.
const (
	SourceBuiltin = "builtin"
	SourceSchema  = "schema"
)

var namePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.-]*$`)

var (
	// ErrDuplicateEntry is returned when an entry name is already registered.
	ErrDuplicateEntry = errors.New("entry already registered")
	// ErrInvalidName is returned for entry names that are not identifiers.
	ErrInvalidName = errors.New("invalid entry name")
)

// Entry is a named generator.
type Entry struct {
	Name        string
	Description string
	Source      string
	Gen         gen.Generator[any]
}

// NotFoundError is returned when no entry has the requested name.
type NotFoundError struct {
	Name      string
	Available []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("generator '%s' not found", e.Name)
}

// Registry is a concurrency-safe set of entries.
type Registry struct {
	entries map[string]Entry
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// NewDefaultRegistry creates a registry holding the builtin entries.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, e := range Builtins() {
		if err := r.Register(e); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds an entry.
func (r *Registry) Register(e Entry) error {
	if !namePattern.MatchString(e.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, e.Name)
	}
	if e.Gen == nil {
		return fmt.Errorf("entry %q has no generator", e.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[e.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateEntry, e.Name)
	}
	r.entries[e.Name] = e
	return nil
}

// Lookup returns the entry with the given name.
func (r *Registry) Lookup(name string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return Entry{}, &NotFoundError{Name: name, Available: r.namesLocked()}
	}
	return e, nil
}

// Names returns all entry names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns all entries sorted by name.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b Entry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// LoadReport describes the outcome of RegisterDocument.
type LoadReport struct {
	Registered []string
	Skipped    map[string]error
}

// RegisterDocument compiles component schemas of doc and registers each as
// "<prefix>.<component>".
//
// When components is empty every component is tried and the ones that cannot
// be compiled are reported as skipped. When components are named, any failure
// aborts the load and nothing is registered.
func (r *Registry) RegisterDocument(prefix string, doc *openapi3.T, components ...string) (*LoadReport, error) {
	report := &LoadReport{Skipped: make(map[string]error)}

	explicit := len(components) > 0
	if !explicit {
		components = schema.ComponentNames(doc)
	}

	var entries []Entry
	for _, name := range components {
		g, err := schema.CompileComponent(doc, name)
		if err != nil {
			if explicit {
				return nil, fmt.Errorf("failed to compile component '%s': %w", name, err)
			}
			report.Skipped[name] = err
			continue
		}
		entries = append(entries, Entry{
			Name:        prefix + "." + name,
			Description: componentDescription(doc, name),
			Source:      SourceSchema,
			Gen:         g,
		})
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range entries {
		if !namePattern.MatchString(e.Name) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidName, e.Name)
		}
		if _, ok := r.entries[e.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateEntry, e.Name)
		}
	}
	for _, e := range entries {
		r.entries[e.Name] = e
		report.Registered = append(report.Registered, e.Name)
	}
	return report, nil
}

func componentDescription(doc *openapi3.T, name string) string {
	ref := doc.Components.Schemas[name]
	if ref.Value != nil {
		if ref.Value.Description != "" {
			return ref.Value.Description
		}
		if ref.Value.Title != "" {
			return ref.Value.Title
		}
	}
	return "Component schema " + name
}
