package codegen

import (
	"bytes"
	"fmt"
	"strconv"
)

// GoGenerator generates a Go source file declaring the values as a slice.
type GoGenerator struct {
	opts Options
}

// NewGoGenerator creates a new Go code generator.
func NewGoGenerator(opts Options) *GoGenerator {
	return &GoGenerator{opts: opts}
}

// Generate produces a Go file with one []any variable.
func (g *GoGenerator) Generate(values []any) (string, error) {
	rows, err := normalize(values)
	if err != nil {
		return "", err
	}

	pkg := g.opts.Package
	if pkg == "" {
		pkg = "fixtures"
	}

	var buf bytes.Buffer
	buf.WriteString("package ")
	buf.WriteString(pkg)
	buf.WriteString("\n\n")

	buf.WriteString("var ")
	buf.WriteString(camelIdent(g.opts.Name))
	buf.WriteString(" = ")
	if err := g.writeValue(&buf, rows, 0); err != nil {
		return "", err
	}
	buf.WriteString("\n")

	return buf.String(), nil
}

func (g *GoGenerator) writeValue(buf *bytes.Buffer, v any, depth int) error {
	switch v := v.(type) {
	case nil:
		buf.WriteString("nil")
	case bool:
		buf.WriteString(strconv.FormatBool(v))
	case float64:
		buf.WriteString(formatNumber(v))
	case string:
		buf.WriteString(strconv.Quote(v))
	case []any:
		if len(v) == 0 {
			buf.WriteString("[]any{}")
			return nil
		}
		buf.WriteString("[]any{\n")
		for _, item := range v {
			indent(buf, "\t", depth+1)
			if err := g.writeValue(buf, item, depth+1); err != nil {
				return err
			}
			buf.WriteString(",\n")
		}
		indent(buf, "\t", depth)
		buf.WriteString("}")
	case map[string]any:
		if len(v) == 0 {
			buf.WriteString("map[string]any{}")
			return nil
		}
		buf.WriteString("map[string]any{\n")
		for _, k := range sortedKeys(v) {
			indent(buf, "\t", depth+1)
			buf.WriteString(strconv.Quote(k))
			buf.WriteString(": ")
			if err := g.writeValue(buf, v[k], depth+1); err != nil {
				return err
			}
			buf.WriteString(",\n")
		}
		indent(buf, "\t", depth)
		buf.WriteString("}")
	default:
		return fmt.Errorf("cannot render %T as Go", v)
	}
	return nil
}
