package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/nomagicln/seedgen/pkg/catalog"
	"github.com/nomagicln/seedgen/pkg/config"
	"github.com/nomagicln/seedgen/pkg/filter"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// maxCellWidth truncates table cells.
const maxCellWidth = 40

// Formatter renders values in one of the config.OutputFormats.
type Formatter struct {
	styled bool
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithStyle enables terminal styling of table headers.
func WithStyle(styled bool) FormatterOption {
	return func(f *Formatter) {
		f.styled = styled
	}
}

// NewFormatter creates a Formatter.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// FormatValues renders generated values.
//
//   - json and yaml render the list of values
//   - text renders one value per line, strings verbatim, others as compact JSON
//   - table renders records as columns, anything else as INDEX/VALUE rows
func (f *Formatter) FormatValues(values []any, format string) (string, error) {
	if err := config.ValidateOutput(format); err != nil {
		return "", err
	}

	norm, err := filter.Normalize(values)
	if err != nil {
		return "", err
	}
	rows, _ := norm.([]any)

	switch format {
	case "json":
		return marshalJSON(rows)
	case "yaml":
		return marshalYAML(rows)
	case "text":
		lines := make([]string, len(rows))
		for i, v := range rows {
			lines[i] = textOf(v)
		}
		return strings.Join(lines, "\n"), nil
	default:
		return f.formatTable(rows), nil
	}
}

// FormatValue renders a single generated value. Tables render it as a
// one-row table.
func (f *Formatter) FormatValue(value any, format string) (string, error) {
	if err := config.ValidateOutput(format); err != nil {
		return "", err
	}

	norm, err := filter.Normalize(value)
	if err != nil {
		return "", err
	}

	switch format {
	case "json":
		return marshalJSON(norm)
	case "yaml":
		return marshalYAML(norm)
	case "text":
		return textOf(norm), nil
	default:
		return f.formatTable([]any{norm}), nil
	}
}

// MarshalConfig renders a configuration as YAML.
func MarshalConfig(cfg *config.Config) (string, error) {
	return marshalYAML(cfg)
}

// EntryInfo is the serialized form of a catalog entry.
type EntryInfo struct {
	Name        string `json:"name" yaml:"name"`
	Source      string `json:"source" yaml:"source"`
	Description string `json:"description" yaml:"description"`
}

// FormatEntries renders catalog entries for the list command.
func (f *Formatter) FormatEntries(entries []catalog.Entry, format string) (string, error) {
	if err := config.ValidateOutput(format); err != nil {
		return "", err
	}

	infos := make([]EntryInfo, len(entries))
	for i, e := range entries {
		infos[i] = EntryInfo{Name: e.Name, Source: e.Source, Description: e.Description}
	}

	switch format {
	case "json":
		return marshalJSON(infos)
	case "yaml":
		return marshalYAML(infos)
	case "text":
		names := make([]string, len(infos))
		for i, e := range infos {
			names[i] = e.Name
		}
		return strings.Join(names, "\n"), nil
	default:
		if len(infos) == 0 {
			return "No generators registered.", nil
		}
		rows := make([][]string, len(infos))
		for i, e := range infos {
			rows[i] = []string{e.Name, e.Source, e.Description}
		}
		return f.renderTable([]string{"NAME", "SOURCE", "DESCRIPTION"}, rows), nil
	}
}

func (f *Formatter) formatTable(values []any) string {
	if len(values) == 0 {
		return "No values"
	}

	columns, ok := recordColumns(values)
	if !ok {
		rows := make([][]string, len(values))
		for i, v := range values {
			rows[i] = []string{strconv.Itoa(i), cell(v)}
		}
		return f.renderTable([]string{"#", "VALUE"}, rows)
	}

	headers := append([]string{"#"}, columns...)
	rows := make([][]string, len(values))
	for i, v := range values {
		record := v.(map[string]any)
		row := []string{strconv.Itoa(i)}
		for _, c := range columns {
			val, present := record[c]
			if !present {
				row = append(row, "-")
				continue
			}
			row = append(row, cell(val))
		}
		rows[i] = row
	}
	for i := range headers[1:] {
		headers[i+1] = strings.ToUpper(headers[i+1])
	}
	return f.renderTable(headers, rows)
}

// recordColumns returns the sorted union of keys when every value is a record.
func recordColumns(values []any) ([]string, bool) {
	keys := make(map[string]bool)
	for _, v := range values {
		record, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		for k := range record {
			keys[k] = true
		}
	}
	columns := make([]string, 0, len(keys))
	for k := range keys {
		columns = append(columns, k)
	}
	sort.Strings(columns)
	return columns, len(columns) > 0
}

func (f *Formatter) renderTable(headers []string, rows [][]string) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	rules := make([]string, len(headers))
	for i, h := range headers {
		rules[i] = strings.Repeat("-", len(h))
	}
	_, _ = fmt.Fprintln(w, strings.Join(headers, "\t"))
	_, _ = fmt.Fprintln(w, strings.Join(rules, "\t"))
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()

	out := strings.TrimRight(buf.String(), "\n")
	if !f.styled {
		return out
	}

	// style after alignment so escape codes do not skew the columns
	lines := strings.Split(out, "\n")
	lines[0] = headerStyle.Render(lines[0])
	lines[1] = dimStyle.Render(lines[1])
	return strings.Join(lines, "\n")
}

func cell(v any) string {
	s := textOf(v)
	s = strings.NewReplacer("\t", " ", "\n", " ").Replace(s)
	if r := []rune(s); len(r) > maxCellWidth {
		s = string(r[:maxCellWidth-3]) + "..."
	}
	return s
}

func textOf(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

func marshalJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format output: %w", err)
	}
	return string(data), nil
}

func marshalYAML(v any) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to format output: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}
