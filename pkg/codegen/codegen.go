// Package codegen renders generated values as source code: fixture literals
// for Go, Python and Node.js test suites, or curl commands that post each
// value to an API.
package codegen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/nomagicln/seedgen/pkg/filter"
)

// OutputFormat represents the target language/tool for code generation.
type OutputFormat string

const (
	FormatCurl   OutputFormat = "curl"
	FormatNodeJS OutputFormat = "nodejs"
	FormatGo     OutputFormat = "go"
	FormatPython OutputFormat = "python"
)

// Options contains configuration for code generation.
type Options struct {
	// Name is the generator the values came from. Fixture variables are
	// named after it.
	Name string

	// Package is the Go package clause. Defaults to "fixtures".
	Package string

	// URL and Method are the target of curl commands. Method defaults to
	// POST.
	URL    string
	Method string
}

// Generator defines the interface for code generation from values.
type Generator interface {
	// Generate produces code for values. Values are normalized to their
	// JSON form first, so records become string-keyed maps with sorted keys.
	Generate(values []any) (string, error)
}

// GeneratorFactory is a function type that creates a new Generator instance.
type GeneratorFactory func(opts Options) Generator

// registry maps output formats to their corresponding generator factories.
var registry = make(map[OutputFormat]GeneratorFactory)

func init() {
	register(FormatCurl, func(opts Options) Generator {
		return NewCurlGenerator(opts)
	})
	register(FormatNodeJS, func(opts Options) Generator {
		return NewNodeJSGenerator(opts)
	})
	register(FormatGo, func(opts Options) Generator {
		return NewGoGenerator(opts)
	})
	register(FormatPython, func(opts Options) Generator {
		return NewPythonGenerator(opts)
	})
}

// register registers a new code generator factory for the specified format.
func register(format OutputFormat, factory GeneratorFactory) {
	if factory == nil {
		panic(fmt.Sprintf("generator factory for format %s cannot be nil", format))
	}
	registry[format] = factory
}

// NewGenerator creates a new code generator for the specified format.
func NewGenerator(format OutputFormat, opts Options) (Generator, error) {
	factory, ok := registry[format]
	if !ok {
		return nil, fmt.Errorf("unsupported code format: %s", format)
	}
	return factory(opts), nil
}

// ValidateFormat checks if the given format is valid.
func ValidateFormat(format string) bool {
	_, ok := registry[OutputFormat(format)]
	return ok
}

// ListFormats returns all registered output formats, sorted.
func ListFormats() []string {
	formats := make([]string, 0, len(registry))
	for format := range registry {
		formats = append(formats, string(format))
	}
	sort.Strings(formats)
	return formats
}

func normalize(values []any) ([]any, error) {
	norm, err := filter.Normalize(values)
	if err != nil {
		return nil, err
	}
	rows, _ := norm.([]any)
	return rows, nil
}

// words splits a generator name such as "petstore.Pet" or "full-name" into
// its alphanumeric parts.
func words(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// camelIdent returns a lowerCamelCase identifier for name.
func camelIdent(name string) string {
	parts := words(name)
	if len(parts) == 0 {
		return "values"
	}

	var sb strings.Builder
	for i, p := range parts {
		if i == 0 {
			sb.WriteString(strings.ToLower(p[:1]) + p[1:])
			continue
		}
		sb.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	return leadingLetter(sb.String())
}

// snakeIdent returns a snake_case identifier for name.
func snakeIdent(name string) string {
	parts := words(name)
	if len(parts) == 0 {
		return "values"
	}
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return leadingLetter(strings.Join(parts, "_"))
}

func leadingLetter(ident string) string {
	if unicode.IsDigit(rune(ident[0])) {
		return "v" + ident
	}
	return ident
}

// jsonString quotes s as a JSON string without HTML escaping. The result is
// also a valid Python and JavaScript literal.
func jsonString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func indent(buf *bytes.Buffer, unit string, depth int) {
	for range depth {
		buf.WriteString(unit)
	}
}
