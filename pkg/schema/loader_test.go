package schema

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomagicln/seedgen/internal/testutil"
)

func TestNewLoaderWithOptions(t *testing.T) {
	client := &http.Client{Timeout: time.Second}
	l := NewLoader(WithHTTPClient(client))

	assert.Same(t, client, l.client)
	assert.NotNil(t, l.loader)
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"https://example.com/spec.yaml", true},
		{"http://localhost:8080/api.json", true},
		{"/path/to/file.yaml", false},
		{"./relative/path.json", false},
		{"file.yaml", false},
		{"", false},
		{"ftp://example.com/spec.yaml", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, isURL(tt.input))
		})
	}
}

func TestDetectVersion(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected SpecVersion
	}{
		{"OpenAPI 3.1 JSON", `{"openapi": "3.1.0", "info": {}}`, Version31},
		{"OpenAPI 3.0 YAML", "openapi: 3.0.3\ninfo: {}", Version30},
		{"Swagger 2.0 JSON", `{"swagger": "2.0"}`, Version20},
		{"Swagger 2.0 YAML", "swagger: \"2.0\"", Version20},
		{"unknown", `{"title": "nothing"}`, VersionUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, detectVersion([]byte(tt.content)))
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := testutil.TempOpenAPISpec(t, testutil.PetstoreOpenAPISpec)

	doc, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "Petstore API", doc.Info.Title)
	assert.Contains(t, ComponentNames(doc), "Pet")
}

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()
	l := NewLoader()

	t.Run("missing file", func(t *testing.T) {
		_, err := l.Load(ctx, "/does/not/exist.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read spec file")
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := l.Load(ctx, testutil.TempFile(t, "empty.yaml", ""))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is empty")
	})

	t.Run("empty data", func(t *testing.T) {
		_, err := l.LoadData(ctx, nil)
		require.Error(t, err)
	})

	t.Run("not a document", func(t *testing.T) {
		_, err := l.LoadData(ctx, []byte("- just\n- a list\n"))
		require.Error(t, err)
	})
}

func TestLoadFromURL(t *testing.T) {
	srv := testutil.NewSpecServer(t, map[string]string{
		"/petstore.yaml": testutil.PetstoreOpenAPISpec,
	})
	ctx := context.Background()

	doc, err := NewLoader().Load(ctx, srv.URLFor("/petstore.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", doc.Info.Version)

	_, err = NewLoader().Load(ctx, srv.URLFor("/missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestLoadSwagger(t *testing.T) {
	doc, err := NewLoader().LoadData(context.Background(), []byte(testutil.SwaggerSpec))
	require.NoError(t, err)

	assert.Equal(t, []string{"Item"}, ComponentNames(doc))
}
