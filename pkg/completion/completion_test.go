package completion

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomagicln/seedgen/internal/testutil"
	"github.com/nomagicln/seedgen/pkg/catalog"
	"github.com/nomagicln/seedgen/pkg/schema"
)

func newTestProvider() *Provider {
	return NewProvider(catalog.NewDefaultRegistry(), schema.NewLoader())
}

func TestCompleteGeneratorNames(t *testing.T) {
	p := newTestProvider()

	assert.Equal(t, []string{"full-name"}, p.CompleteGeneratorNames("fu"))
	assert.Equal(t, []string{"person", "prefixed-name"}, p.CompleteGeneratorNames("p"))
	assert.Empty(t, p.CompleteGeneratorNames("zzz"))
	assert.Len(t, p.CompleteGeneratorNames(""), len(catalog.Builtins()))
}

func TestCompleteComponents(t *testing.T) {
	p := newTestProvider()
	specPath := testutil.TempOpenAPISpec(t, testutil.PetstoreOpenAPISpec)

	assert.Equal(t, []string{"Code", "Contact"}, p.CompleteComponents(context.Background(), specPath, "Co"))

	// cached documents are served without reloading
	p.docs[specPath].Components.Schemas = nil
	assert.Empty(t, p.CompleteComponents(context.Background(), specPath, ""))
}

func TestCompleteComponentsMissingDocument(t *testing.T) {
	p := newTestProvider()
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	assert.Nil(t, p.CompleteComponents(context.Background(), missing, ""))
}

func TestCompleteWhere(t *testing.T) {
	p := newTestProvider()

	tests := []struct {
		expr string
		want []string
	}{
		{"G", []string{"Ge(", "Gt("}},
		{"Has", []string{"Has(", "HasPrefix(", "HasSuffix("}},
		{`Gt("age", 1) && Len`, []string{`Gt("age", 1) && LenEq(`, `Gt("age", 1) && LenGt(`, `Gt("age", 1) && LenLt(`}},
		{"!Is", []string{"!IsNull("}},
		{"Nope", nil},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, p.CompleteWhere(tt.expr))
		})
	}
}

func TestCompleteFlagValues(t *testing.T) {
	p := newTestProvider()

	tests := []struct {
		flag   string
		prefix string
		want   []string
	}{
		{"--output", "", []string{"json", "table", "text", "yaml"}},
		{"-o", "t", []string{"table", "text"}},
		{"emit", "", []string{"curl", "go", "nodejs", "python"}},
		{"transport", "s", []string{"sse", "stdio"}},
		{"source", "", []string{"builtin", "schema"}},
		{"seed", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			got := p.CompleteFlagValues(tt.flag, tt.prefix)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}
