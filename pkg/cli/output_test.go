package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomagicln/seedgen/internal/testutil"
	"github.com/nomagicln/seedgen/pkg/catalog"
	"github.com/nomagicln/seedgen/pkg/config"
	"github.com/nomagicln/seedgen/pkg/gen"
	"github.com/nomagicln/seedgen/pkg/schema"
)

func TestFormatValuesJSON(t *testing.T) {
	out, err := NewFormatter().FormatValues([]any{-9, 3, gen.Record{"a": true}}, "json")
	require.NoError(t, err)
	assert.JSONEq(t, `[-9, 3, {"a": true}]`, out)
}

func TestFormatValuesYAML(t *testing.T) {
	out, err := NewFormatter().FormatValues([]any{map[string]any{"name": "Ada", "age": 36}}, "yaml")
	require.NoError(t, err)
	assert.Equal(t, "- age: 36\n  name: Ada", out)
}

func TestFormatValuesText(t *testing.T) {
	out, err := NewFormatter().FormatValues([]any{"plain", 4, []string{"a"}, nil}, "text")
	require.NoError(t, err)
	assert.Equal(t, "plain\n4\n[\"a\"]\nnull", out)
}

func TestFormatValuesTableScalars(t *testing.T) {
	out, err := NewFormatter().FormatValues([]any{43, 2075653}, "table")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"#", "VALUE"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"0", "43"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"1", "2075653"}, strings.Fields(lines[3]))
}

func TestFormatValuesTableRecords(t *testing.T) {
	values := []any{
		map[string]any{"name": "Ada", "age": 36},
		map[string]any{"name": "Bob", "tags": []string{"x"}},
	}

	out, err := NewFormatter().FormatValues(values, "table")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"#", "AGE", "NAME", "TAGS"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"0", "36", "Ada", "-"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"1", "-", "Bob", `["x"]`}, strings.Fields(lines[3]))
}

func TestFormatValuesTableTruncatesCells(t *testing.T) {
	out, err := NewFormatter().FormatValues([]any{strings.Repeat("x", 100)}, "table")
	require.NoError(t, err)
	assert.Contains(t, out, strings.Repeat("x", maxCellWidth-3)+"...")
	assert.NotContains(t, out, strings.Repeat("x", maxCellWidth))
}

func TestFormatValuesEmpty(t *testing.T) {
	f := NewFormatter()

	out, err := f.FormatValues([]any{}, "json")
	require.NoError(t, err)
	assert.Equal(t, "[]", out)

	out, err = f.FormatValues([]any{}, "table")
	require.NoError(t, err)
	assert.Equal(t, "No values", out)
}

func TestFormatValuesUnknownFormat(t *testing.T) {
	_, err := NewFormatter().FormatValues([]any{1}, "xml")
	assert.Error(t, err)
}

func TestFormatValuesStyled(t *testing.T) {
	plain, err := NewFormatter().FormatValues([]any{1}, "table")
	require.NoError(t, err)
	styled, err := NewFormatter(WithStyle(true)).FormatValues([]any{1}, "table")
	require.NoError(t, err)

	// the value row is never styled
	assert.Equal(t, strings.Split(plain, "\n")[2], strings.Split(styled, "\n")[2])
}

func TestFormatEntries(t *testing.T) {
	entries := catalog.NewDefaultRegistry().List()
	f := NewFormatter()

	out, err := f.FormatEntries(entries, "table")
	require.NoError(t, err)
	assert.Equal(t, []string{"NAME", "SOURCE", "DESCRIPTION"}, strings.Fields(strings.Split(out, "\n")[0]))
	assert.Contains(t, out, "person")

	out, err = f.FormatEntries(entries[:2], "text")
	require.NoError(t, err)
	assert.Equal(t, "bool\nchar", out)

	out, err = f.FormatEntries(entries[:1], "json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name": "bool", "source": "builtin", "description": "Boolean"}]`, out)

	out, err = f.FormatEntries(nil, "table")
	require.NoError(t, err)
	assert.Equal(t, "No generators registered.", out)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}

func TestBuildRegistry(t *testing.T) {
	dir := t.TempDir()
	mgr, err := config.NewManager(config.WithConfigDir(dir))
	require.NoError(t, err)

	specPath := testutil.TempOpenAPISpec(t, testutil.PetstoreOpenAPISpec)
	cfg := config.Default()
	cfg.Schemas = []config.SchemaSource{{Name: "petstore", Source: specPath}}

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	registry, err := BuildRegistry(context.Background(), mgr, cfg, schema.NewLoader(), logger)
	require.NoError(t, err)

	names := registry.Names()
	assert.Contains(t, names, "person")
	assert.Contains(t, names, "petstore.Pet")
	assert.NotContains(t, names, "petstore.Code")
	assert.Contains(t, logs.String(), "component=Code")
}

func TestBuildRegistryLoadFailure(t *testing.T) {
	mgr, err := config.NewManager(config.WithConfigDir(t.TempDir()))
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Schemas = []config.SchemaSource{{Name: "missing", Source: "missing.yaml"}}

	_, err = BuildRegistry(context.Background(), mgr, cfg, schema.NewLoader(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load schema 'missing'")
}

func TestFormatValue(t *testing.T) {
	f := NewFormatter()

	out, err := f.FormatValue(gen.Record{"name": "Rlfpinbks", "age": 3}, "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": "Rlfpinbks", "age": 3}`, out)

	out, err = f.FormatValue(43, "text")
	require.NoError(t, err)
	assert.Equal(t, "43", out)

	_, err = f.FormatValue(43, "xml")
	assert.Error(t, err)
}

func TestMarshalConfig(t *testing.T) {
	out, err := MarshalConfig(config.Default())
	require.NoError(t, err)
	assert.Contains(t, out, "defaults:")
}
