// Package cli provides output formatting, error reporting and catalog
// assembly for the seedgen command line.
package cli

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/nomagicln/seedgen/pkg/catalog"
	"github.com/nomagicln/seedgen/pkg/config"
	"github.com/nomagicln/seedgen/pkg/filter"
	"github.com/nomagicln/seedgen/pkg/gen"
	"github.com/nomagicln/seedgen/pkg/sampler"
	"github.com/nomagicln/seedgen/pkg/schema"
)

// ErrorFormatter provides user-friendly error messages.
type ErrorFormatter struct{}

// NewErrorFormatter creates a new error formatter.
func NewErrorFormatter() *ErrorFormatter {
	return &ErrorFormatter{}
}

// FormatError formats an error into a user-friendly message.
func (f *ErrorFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	var (
		notFound      *catalog.NotFoundError
		cfgErr        *gen.ConfigError
		invariantErr  *gen.InvariantError
		exprErr       *filter.ExpressionError
		unsupported   *schema.UnsupportedSchemaError
		componentErr  *schema.ComponentNotFoundError
		validationErr *config.ValidationError
		urlErr        *url.Error
		opErr         *net.OpError
	)

	switch {
	case errors.As(err, &notFound):
		return f.formatNotFoundError(notFound)
	case errors.As(err, &invariantErr):
		return f.formatInvariantError(invariantErr)
	case errors.As(err, &cfgErr):
		return f.formatConfigError(cfgErr)
	case errors.As(err, &exprErr):
		return f.formatExpressionError(exprErr)
	case errors.Is(err, sampler.ErrFilterExhausted):
		return f.formatFilterExhausted(err)
	case errors.Is(err, schema.ErrRecursiveSchema):
		return fmt.Sprintf("Error: %s.\n\nRecursive schemas would generate values without end; "+
			"list the components you need under 'components' in the config instead.", err)
	case errors.As(err, &unsupported):
		return fmt.Sprintf("Error: %s.\n\nExclude this component by listing the supported ones under 'components' in the config.", err)
	case errors.As(err, &componentErr):
		return f.formatComponentNotFound(componentErr)
	case errors.As(err, &validationErr):
		return fmt.Sprintf("Error: %s.\n\nTo inspect the active configuration, use:\n  seedgen config show", validationErr)
	case errors.As(err, &urlErr):
		return f.formatNetworkError(urlErr)
	case errors.As(err, &opErr):
		return f.formatNetworkError(opErr)
	default:
		return fmt.Sprintf("Error: %s", err)
	}
}

func (f *ErrorFormatter) formatNotFoundError(err *catalog.NotFoundError) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: Generator '%s' not found.\n\n", err.Name)

	if suggestions := f.SuggestSimilar(err.Name, err.Available); len(suggestions) > 0 {
		sb.WriteString("Did you mean:\n")
		for _, s := range suggestions {
			fmt.Fprintf(&sb, "  %s\n", s)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("To see all generators, use:\n")
	sb.WriteString("  seedgen list")
	return sb.String()
}

func (f *ErrorFormatter) formatComponentNotFound(err *schema.ComponentNotFoundError) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: Component schema '%s' not found.\n", err.Name)

	if suggestions := f.SuggestSimilar(err.Name, err.Available); len(suggestions) > 0 {
		sb.WriteString("\nDid you mean:\n")
		for _, s := range suggestions {
			fmt.Fprintf(&sb, "  %s\n", s)
		}
	}
	if len(err.Available) > 0 {
		fmt.Fprintf(&sb, "\nAvailable components: %s", strings.Join(err.Available, ", "))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (f *ErrorFormatter) formatConfigError(err *gen.ConfigError) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: Invalid generator configuration in %s: %v.\n", err.Op, err.Err)

	switch {
	case errors.Is(err, gen.ErrNegativeSize):
		sb.WriteString("\n--size must be zero or greater.")
	case errors.Is(err, gen.ErrNegativeLength):
		sb.WriteString("\n--count must be zero or greater.")
	case errors.Is(err, gen.ErrEmptyChoice):
		sb.WriteString("\nA choice needs at least one alternative.")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (f *ErrorFormatter) formatInvariantError(err *gen.InvariantError) string {
	return fmt.Sprintf("Error: %s.\n\nThis is a bug in seedgen. Please report it together with the command you ran.", err)
}

func (f *ErrorFormatter) formatExpressionError(err *filter.ExpressionError) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s.\n\n", err)
	sb.WriteString("Available functions:\n")
	fmt.Fprintf(&sb, "  %s\n\n", strings.Join(filter.Functions(), ", "))
	sb.WriteString("Combine them with &&, || and !. Example:\n")
	sb.WriteString(`  --where 'Gt("age", 18) && HasPrefix("name", "A")'`)
	return sb.String()
}

func (f *ErrorFormatter) formatFilterExhausted(err error) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s.\n\n", err)
	sb.WriteString("The filter matches too few values. Try:\n")
	sb.WriteString("  - loosening the --where expression\n")
	sb.WriteString("  - requesting fewer values with --count\n")
	sb.WriteString("  - changing --size so more values fall in range")
	return sb.String()
}

// formatNetworkError formats errors fetching remote schema documents.
func (f *ErrorFormatter) formatNetworkError(err error) string {
	var sb strings.Builder
	sb.WriteString("Error: Network connectivity issue.\n\n")

	var target string
	switch e := err.(type) {
	case *url.Error:
		target = e.URL
		fmt.Fprintf(&sb, "Failed to fetch: %s\n", target)
		if e.Timeout() {
			sb.WriteString("Reason: Connection timeout\n\n")
		} else {
			fmt.Fprintf(&sb, "Reason: %v\n\n", e.Err)
		}
	case *net.OpError:
		if e.Addr != nil {
			target = e.Addr.String()
			fmt.Fprintf(&sb, "Failed to connect to: %s\n", target)
		}
		fmt.Fprintf(&sb, "Reason: %v\n\n", e.Err)
	}

	sb.WriteString("Troubleshooting:\n")
	sb.WriteString("  - Check your internet connection\n")
	sb.WriteString("  - Verify the schema URL in the config is correct\n")
	if target != "" {
		fmt.Fprintf(&sb, "  - Try accessing %s in a browser\n", target)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// SuggestSimilar suggests candidates that look like a mistyped name.
func (f *ErrorFormatter) SuggestSimilar(name string, candidates []string) []string {
	if len(candidates) == 0 || name == "" {
		return nil
	}

	var suggestions []string
	nameLower := strings.ToLower(name)

	for _, c := range candidates {
		cLower := strings.ToLower(c)

		if nameLower == cLower {
			return []string{c}
		}

		if strings.HasPrefix(cLower, nameLower) || strings.Contains(cLower, nameLower) {
			suggestions = append(suggestions, c)
			continue
		}

		if levenshteinDistance(nameLower, cLower) <= 2 {
			suggestions = append(suggestions, c)
		}
	}

	return suggestions
}

func levenshteinDistance(s1, s2 string) int {
	a, b := []rune(s1), []rune(s2)
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}

	return prev[len(b)]
}
