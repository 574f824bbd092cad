package codegen

import (
	"bytes"
	"fmt"
)

// PythonGenerator generates a Python module assigning the values to a list.
type PythonGenerator struct {
	opts Options
}

// NewPythonGenerator creates a new Python code generator.
func NewPythonGenerator(opts Options) *PythonGenerator {
	return &PythonGenerator{opts: opts}
}

// Generate produces Python source with one list assignment.
func (g *PythonGenerator) Generate(values []any) (string, error) {
	rows, err := normalize(values)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.WriteString(snakeIdent(g.opts.Name))
	buf.WriteString(" = ")
	if err := g.writeValue(&buf, rows, 0); err != nil {
		return "", err
	}
	buf.WriteString("\n")

	return buf.String(), nil
}

func (g *PythonGenerator) writeValue(buf *bytes.Buffer, v any, depth int) error {
	switch v := v.(type) {
	case nil:
		buf.WriteString("None")
	case bool:
		if v {
			buf.WriteString("True")
		} else {
			buf.WriteString("False")
		}
	case float64:
		buf.WriteString(formatNumber(v))
	case string:
		buf.WriteString(jsonString(v))
	case []any:
		if len(v) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteString("[\n")
		for _, item := range v {
			indent(buf, "    ", depth+1)
			if err := g.writeValue(buf, item, depth+1); err != nil {
				return err
			}
			buf.WriteString(",\n")
		}
		indent(buf, "    ", depth)
		buf.WriteString("]")
	case map[string]any:
		if len(v) == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteString("{\n")
		for _, k := range sortedKeys(v) {
			indent(buf, "    ", depth+1)
			buf.WriteString(jsonString(k))
			buf.WriteString(": ")
			if err := g.writeValue(buf, v[k], depth+1); err != nil {
				return err
			}
			buf.WriteString(",\n")
		}
		indent(buf, "    ", depth)
		buf.WriteString("}")
	default:
		return fmt.Errorf("cannot render %T as Python", v)
	}
	return nil
}
