// Package completion provides shell completion support for seedgen.
package completion

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/nomagicln/seedgen/pkg/catalog"
	"github.com/nomagicln/seedgen/pkg/codegen"
	"github.com/nomagicln/seedgen/pkg/config"
	"github.com/nomagicln/seedgen/pkg/filter"
	"github.com/nomagicln/seedgen/pkg/schema"
)

// Provider provides completion suggestions for commands and arguments.
type Provider struct {
	registry *catalog.Registry
	loader   *schema.Loader

	mu   sync.Mutex
	docs map[string]*openapi3.T
}

// NewProvider creates a new completion provider.
func NewProvider(registry *catalog.Registry, loader *schema.Loader) *Provider {
	return &Provider{
		registry: registry,
		loader:   loader,
		docs:     make(map[string]*openapi3.T),
	}
}

// CompleteGeneratorNames returns the catalog names starting with prefix.
func (p *Provider) CompleteGeneratorNames(prefix string) []string {
	return filterPrefix(p.registry.Names(), prefix)
}

// CompleteComponents returns the component schema names of the document at
// source. Documents are loaded once per provider.
func (p *Provider) CompleteComponents(ctx context.Context, source, prefix string) []string {
	doc, err := p.loadDocument(ctx, source)
	if err != nil {
		return nil
	}
	return filterPrefix(schema.ComponentNames(doc), prefix)
}

func (p *Provider) loadDocument(ctx context.Context, source string) (*openapi3.T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if doc, ok := p.docs[source]; ok {
		return doc, nil
	}
	doc, err := p.loader.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	p.docs[source] = doc
	return doc, nil
}

// CompleteWhere completes the filter function name being typed at the end of
// expr. Suggestions keep the text before it and end with an opening
// parenthesis.
func (p *Provider) CompleteWhere(expr string) []string {
	start := strings.LastIndexFunc(expr, func(r rune) bool {
		return !isIdentRune(r)
	}) + 1
	head, word := expr[:start], expr[start:]

	var suggestions []string
	for _, fn := range filterPrefix(filter.Functions(), word) {
		suggestions = append(suggestions, head+fn+"(")
	}
	return suggestions
}

func isIdentRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// CompleteFlagValues returns the accepted values of an enumerated flag.
func (p *Provider) CompleteFlagValues(flagName, prefix string) []string {
	var values []string
	switch cleanFlagName(flagName) {
	case "output", "o":
		values = config.OutputFormats
	case "emit":
		values = codegen.ListFormats()
	case "transport", "t":
		values = []string{"stdio", "sse"}
	case "source":
		values = []string{catalog.SourceBuiltin, catalog.SourceSchema}
	}
	return filterPrefix(values, prefix)
}

// cleanFlagName removes leading dashes from a flag name.
func cleanFlagName(flagName string) string {
	return strings.TrimLeft(flagName, "-")
}

// filterPrefix returns the sorted values starting with prefix.
func filterPrefix(values []string, prefix string) []string {
	matches := make([]string, 0, len(values))
	for _, v := range values {
		if prefix == "" || strings.HasPrefix(v, prefix) {
			matches = append(matches, v)
		}
	}
	sort.Strings(matches)
	return matches
}
