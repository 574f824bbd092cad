// Package testutil provides testing utilities for seedgen.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// SpecServer serves documents over HTTP for loader tests.
type SpecServer struct {
	*httptest.Server
	docs map[string]string
}

// NewSpecServer starts a server that serves docs keyed by URL path. Unknown
// paths answer 404. The server is closed when the test ends.
func NewSpecServer(t *testing.T, docs map[string]string) *SpecServer {
	t.Helper()

	s := &SpecServer{docs: docs}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		doc, ok := s.docs[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write([]byte(doc))
	}))
	t.Cleanup(s.Close)

	return s
}

// URLFor returns the absolute URL of a served path.
func (s *SpecServer) URLFor(path string) string {
	return s.URL + path
}

// TempOpenAPISpec writes spec to a temporary file and returns its path.
func TempOpenAPISpec(t *testing.T, spec string) string {
	t.Helper()
	return TempFile(t, "spec.yaml", spec)
}

// TempFile writes content to name inside a fresh temporary directory.
func TempFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

// PetstoreOpenAPISpec is an OpenAPI 3.0 document whose component schemas
// cover every construct the schema compiler supports.
const PetstoreOpenAPISpec = `
openapi: "3.0.0"
info:
  title: Petstore API
  version: "1.0.0"
paths: {}
components:
  schemas:
    Pet:
      type: object
      required:
        - name
      properties:
        id:
          type: integer
          format: int64
          minimum: 1
          maximum: 1000
        name:
          type: string
          minLength: 1
          maxLength: 12
        status:
          type: string
          enum:
            - available
            - pending
            - sold
        tags:
          type: array
          maxItems: 3
          items:
            $ref: '#/components/schemas/Tag'
        weight:
          type: number
          minimum: 0.5
          maximum: 80
        vaccinated:
          type: boolean
    Tag:
      type: object
      properties:
        label:
          type: string
          maxLength: 6
    Owner:
      type: object
      properties:
        id:
          type: string
          format: uuid
        email:
          type: string
          format: email
        joined:
          type: string
          format: date-time
        birthday:
          type: string
          format: date
          nullable: true
        address:
          type: string
          format: ipv4
    Contact:
      oneOf:
        - $ref: '#/components/schemas/Owner'
        - type: string
          format: email
    Adoption:
      allOf:
        - $ref: '#/components/schemas/Pet'
        - type: object
          properties:
            adoptedBy:
              $ref: '#/components/schemas/Owner'
    Even:
      type: integer
      minimum: 0
      maximum: 20
      multipleOf: 2
    Code:
      type: string
      pattern: '^[A-Z]{3}$'
`

// SwaggerSpec is a Swagger 2.0 document with a single definition.
const SwaggerSpec = `
swagger: "2.0"
info:
  title: Legacy API
  version: "1.0.0"
paths: {}
definitions:
  Item:
    type: object
    properties:
      sku:
        type: string
        maxLength: 8
      quantity:
        type: integer
        minimum: 0
        maximum: 50
`
