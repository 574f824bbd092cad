package codegen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// CurlGenerator generates one curl command per value, each sending the value
// as a JSON request body.
type CurlGenerator struct {
	opts Options
}

// NewCurlGenerator creates a new curl code generator.
func NewCurlGenerator(opts Options) *CurlGenerator {
	return &CurlGenerator{opts: opts}
}

// Generate produces the curl commands separated by blank lines.
func (g *CurlGenerator) Generate(values []any) (string, error) {
	if g.opts.URL == "" {
		return "", errors.New("curl output requires a target URL")
	}

	rows, err := normalize(values)
	if err != nil {
		return "", err
	}

	method := g.opts.Method
	if method == "" {
		method = "POST"
	}

	var buf bytes.Buffer
	for i, v := range rows {
		if i > 0 {
			buf.WriteString("\n")
		}
		body, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to encode value %d: %w", i, err)
		}

		buf.WriteString("curl -X ")
		buf.WriteString(strings.ToUpper(method))
		buf.WriteString(" '")
		buf.WriteString(shellEscape(g.opts.URL))
		buf.WriteString("'")
		buf.WriteString(" \\\n  -H 'Content-Type: application/json'")
		buf.WriteString(" \\\n  -d '")
		buf.WriteString(shellEscape(string(body)))
		buf.WriteString("'\n")
	}

	return buf.String(), nil
}

// shellEscape escapes s for use inside single quotes.
func shellEscape(s string) string {
	return strings.ReplaceAll(s, "'", "'\\''")
}
