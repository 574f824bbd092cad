// Package schema compiles OpenAPI and Swagger schemas into generators.
package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// SpecVersion represents the OpenAPI specification version.
type SpecVersion string

const (
	// VersionUnknown indicates an unknown or invalid version.
	VersionUnknown SpecVersion = "unknown"
	// Version20 represents OpenAPI/Swagger 2.0.
	Version20 SpecVersion = "2.0"
	// Version30 represents OpenAPI 3.0.x.
	Version30 SpecVersion = "3.0"
	// Version31 represents OpenAPI 3.1.x.
	Version31 SpecVersion = "3.1"
)

// Loader loads OpenAPI documents from files or URLs.
type Loader struct {
	client *http.Client
	loader *openapi3.Loader
}

// LoaderOption is a function that configures a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient sets a custom HTTP client for fetching remote documents.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) {
		l.client = client
	}
}

// NewLoader creates a new Loader with the given options.
func NewLoader(opts ...LoaderOption) *Loader {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true

	l := &Loader{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		loader: loader,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load loads a document from a file path or URL. Swagger 2.0 documents are
// converted to OpenAPI 3.
func (l *Loader) Load(ctx context.Context, source string) (*openapi3.T, error) {
	if isURL(source) {
		return l.loadFromURL(ctx, source)
	}
	return l.loadFromFile(ctx, source)
}

// LoadData parses a document held in memory.
func (l *Loader) LoadData(ctx context.Context, data []byte) (*openapi3.T, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("document is empty")
	}
	return l.parse(ctx, data, nil)
}

func (l *Loader) loadFromFile(ctx context.Context, path string) (*openapi3.T, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec file '%s': %w", path, err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("spec file '%s' is empty", path)
	}

	return l.parse(ctx, data, &url.URL{Path: filepath.ToSlash(absPath)})
}

func (l *Loader) loadFromURL(ctx context.Context, specURL string) (*openapi3.T, error) {
	parsedURL, err := url.Parse(specURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, specURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml, text/yaml, */*")
	req.Header.Set("User-Agent", "seedgen/1.0")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch spec from '%s': %w", specURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch spec from '%s': HTTP %d %s", specURL, resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("received empty response from '%s'", specURL)
	}

	return l.parse(ctx, data, parsedURL)
}

// parse detects the version and dispatches. base resolves relative refs and
// may be nil.
func (l *Loader) parse(ctx context.Context, data []byte, base *url.URL) (*openapi3.T, error) {
	switch detectVersion(data) {
	case Version20:
		return l.parseSwagger(ctx, data)
	case Version30, Version31:
		return l.parseOpenAPI3(ctx, data, base)
	default:
		doc, err := l.parseOpenAPI3(ctx, data, base)
		if err == nil {
			return doc, nil
		}
		return l.parseSwagger(ctx, data)
	}
}

func (l *Loader) parseOpenAPI3(ctx context.Context, data []byte, base *url.URL) (*openapi3.T, error) {
	var (
		doc *openapi3.T
		err error
	)
	if base != nil {
		doc, err = l.loader.LoadFromDataWithPath(data, base)
	} else {
		doc, err = l.loader.LoadFromData(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI 3.x spec: %w", err)
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("OpenAPI 3.x validation failed: %w", err)
	}

	return doc, nil
}

func (l *Loader) parseSwagger(ctx context.Context, data []byte) (*openapi3.T, error) {
	jsonData, err := toJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Swagger 2.0 spec: %w", err)
	}

	var swagger openapi2.T
	if err := json.Unmarshal(jsonData, &swagger); err != nil {
		return nil, fmt.Errorf("failed to parse Swagger 2.0 spec: %w", err)
	}

	doc, err := openapi2conv.ToV3(&swagger)
	if err != nil {
		return nil, fmt.Errorf("failed to convert Swagger 2.0 to OpenAPI 3.0: %w", err)
	}
	if doc.Paths == nil {
		doc.Paths = openapi3.NewPaths()
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("converted OpenAPI 3.0 validation failed: %w", err)
	}

	return doc, nil
}

// toJSON returns data unchanged when it is JSON and re-encodes YAML otherwise.
func toJSON(data []byte) ([]byte, error) {
	if json.Valid(data) {
		return data, nil
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// detectVersion detects the specification version from raw content.
func detectVersion(data []byte) SpecVersion {
	content := string(data)

	if strings.Contains(content, `"openapi"`) || strings.Contains(content, "openapi:") {
		if strings.Contains(content, `"3.1`) || strings.Contains(content, "3.1.") {
			return Version31
		}
		if strings.Contains(content, `"3.0`) || strings.Contains(content, "3.0.") {
			return Version30
		}
	}

	if strings.Contains(content, `"swagger"`) || strings.Contains(content, "swagger:") {
		if strings.Contains(content, "2.0") {
			return Version20
		}
	}

	return VersionUnknown
}

// isURL checks if a string is a URL.
func isURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
