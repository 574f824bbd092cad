package codegen

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NodeJSGenerator generates a CommonJS module exporting the values.
type NodeJSGenerator struct {
	opts Options
}

// NewNodeJSGenerator creates a new Node.js code generator.
func NewNodeJSGenerator(opts Options) *NodeJSGenerator {
	return &NodeJSGenerator{opts: opts}
}

// Generate produces a module with one const and its export.
func (g *NodeJSGenerator) Generate(values []any) (string, error) {
	rows, err := normalize(values)
	if err != nil {
		return "", err
	}

	var data bytes.Buffer
	enc := json.NewEncoder(&data)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return "", fmt.Errorf("failed to encode values: %w", err)
	}

	ident := camelIdent(g.opts.Name)

	var buf bytes.Buffer
	buf.WriteString("const ")
	buf.WriteString(ident)
	buf.WriteString(" = ")
	buf.Write(bytes.TrimSuffix(data.Bytes(), []byte("\n")))
	buf.WriteString(";\n\n")
	buf.WriteString("module.exports = { ")
	buf.WriteString(ident)
	buf.WriteString(" };\n")

	return buf.String(), nil
}
