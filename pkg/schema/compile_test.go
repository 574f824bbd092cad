package schema

import (
	"context"
	"errors"
	"net/netip"
	"regexp"
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomagicln/seedgen/internal/testutil"
	"github.com/nomagicln/seedgen/pkg/gen"
	"github.com/nomagicln/seedgen/pkg/lcg"
)

func loadPetstore(t *testing.T) *openapi3.T {
	t.Helper()
	doc, err := NewLoader().LoadData(context.Background(), []byte(testutil.PetstoreOpenAPISpec))
	require.NoError(t, err)
	return doc
}

func sampleComponent(t *testing.T, doc *openapi3.T, name string, seed int64, count int) []any {
	t.Helper()
	g, err := CompileComponent(doc, name)
	require.NoError(t, err)
	return gen.GenerateSample(g, lcg.MkSeed(seed), gen.WithCount(count))
}

func TestComponentNames(t *testing.T) {
	doc := loadPetstore(t)
	assert.Equal(t,
		[]string{"Adoption", "Code", "Contact", "Even", "Owner", "Pet", "Tag"},
		ComponentNames(doc))
	assert.Nil(t, ComponentNames(nil))
}

func TestCompileComponentNotFound(t *testing.T) {
	doc := loadPetstore(t)

	_, err := CompileComponent(doc, "Dog")
	var nf *ComponentNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Dog", nf.Name)
	assert.Contains(t, nf.Available, "Pet")
	assert.Contains(t, err.Error(), "available:")
}

func TestCompileKnownValues(t *testing.T) {
	doc := loadPetstore(t)

	assert.Equal(t, []any{20, 16, 0, 14, 2}, sampleComponent(t, doc, "Even", 42, 5))
	assert.Equal(t, []any{
		map[string]any{"label": "}"},
		map[string]any{"label": "iC:n"},
		map[string]any{"label": "q0{h}I"},
	}, sampleComponent(t, doc, "Tag", 42, 3))
}

func TestCompileSwaggerDefinition(t *testing.T) {
	doc, err := NewLoader().LoadData(context.Background(), []byte(testutil.SwaggerSpec))
	require.NoError(t, err)

	assert.Equal(t, []any{
		map[string]any{"quantity": 8, "sku": `"zJoJ`},
		map[string]any{"quantity": 42, "sku": "B"},
		map[string]any{"quantity": 38, "sku": "Ziz0V#(`"},
	}, sampleComponent(t, doc, "Item", 7, 3))
}

func TestCompilePetHonoursConstraints(t *testing.T) {
	doc := loadPetstore(t)

	for _, v := range sampleComponent(t, doc, "Pet", 99, 200) {
		pet, ok := v.(map[string]any)
		require.True(t, ok)

		id := pet["id"].(int)
		assert.GreaterOrEqual(t, id, 1)
		assert.LessOrEqual(t, id, 1000)

		name := pet["name"].(string)
		assert.GreaterOrEqual(t, len(name), 1)
		assert.LessOrEqual(t, len(name), 10)

		assert.Contains(t, []any{"available", "pending", "sold"}, pet["status"])

		tags := pet["tags"].([]any)
		assert.LessOrEqual(t, len(tags), 3)
		for _, tag := range tags {
			assert.LessOrEqual(t, len(tag.(map[string]any)["label"].(string)), 6)
		}

		weight := pet["weight"].(float64)
		assert.GreaterOrEqual(t, weight, 0.5)
		assert.LessOrEqual(t, weight, 80.0)

		assert.IsType(t, true, pet["vaccinated"])
	}
}

func TestCompileFormats(t *testing.T) {
	doc := loadPetstore(t)
	emailPattern := regexp.MustCompile(`^[a-z]{1,8}@example\.(com|net|org)$`)

	sawNullBirthday := false
	for _, v := range sampleComponent(t, doc, "Owner", 5, 100) {
		owner := v.(map[string]any)

		id, err := uuid.Parse(owner["id"].(string))
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(4), id.Version())

		assert.Regexp(t, emailPattern, owner["email"])

		joined, err := time.Parse(time.RFC3339, owner["joined"].(string))
		require.NoError(t, err)
		assert.False(t, joined.Before(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)))
		assert.False(t, joined.After(time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)))

		if owner["birthday"] == nil {
			sawNullBirthday = true
		} else {
			_, err := time.Parse(time.DateOnly, owner["birthday"].(string))
			require.NoError(t, err)
		}

		addr, err := netip.ParseAddr(owner["address"].(string))
		require.NoError(t, err)
		assert.True(t, addr.Is4())
	}
	assert.True(t, sawNullBirthday, "nullable field never drew null")
}

func TestCompileOneOf(t *testing.T) {
	doc := loadPetstore(t)

	var objects, strings int
	for _, v := range sampleComponent(t, doc, "Contact", 11, 100) {
		switch v.(type) {
		case map[string]any:
			objects++
		case string:
			strings++
		default:
			t.Fatalf("unexpected contact value %#v", v)
		}
	}
	assert.Positive(t, objects)
	assert.Positive(t, strings)
}

func TestCompileAllOfMergesProperties(t *testing.T) {
	doc := loadPetstore(t)

	values := sampleComponent(t, doc, "Adoption", 3, 5)
	for _, v := range values {
		adoption := v.(map[string]any)
		assert.Len(t, adoption, 7)
		assert.Contains(t, adoption, "name")
		assert.IsType(t, map[string]any{}, adoption["adoptedBy"])
	}
}

func TestCompileUnsupported(t *testing.T) {
	doc := loadPetstore(t)

	_, err := CompileComponent(doc, "Code")
	var unsupported *UnsupportedSchemaError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "#/components/schemas/Code", unsupported.Path)
	assert.Contains(t, unsupported.Reason, "pattern")

	tests := []struct {
		name   string
		schema *openapi3.Schema
		reason string
	}{
		{
			name:   "array without items",
			schema: &openapi3.Schema{Type: &openapi3.Types{"array"}},
			reason: "no items",
		},
		{
			name:   "unique items",
			schema: &openapi3.Schema{Type: &openapi3.Types{"array"}, Items: openapi3.NewStringSchema().NewRef(), UniqueItems: true},
			reason: "uniqueItems",
		},
		{
			name:   "empty integer range",
			schema: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Min: ptr(5.0), Max: ptr(4.5)},
			reason: "no integer",
		},
		{
			name:   "fractional multipleOf",
			schema: &openapi3.Schema{Type: &openapi3.Types{"integer"}, MultipleOf: ptr(0.5)},
			reason: "multipleOf",
		},
		{
			name:   "inverted length",
			schema: &openapi3.Schema{Type: &openapi3.Types{"string"}, MinLength: 4, MaxLength: ptr(uint64(2))},
			reason: "below minimum",
		},
		{
			name:   "unknown type",
			schema: &openapi3.Schema{Type: &openapi3.Types{"file"}},
			reason: "unknown type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.schema.NewRef())
			var unsupported *UnsupportedSchemaError
			require.ErrorAs(t, err, &unsupported)
			assert.Contains(t, unsupported.Reason, tt.reason)
		})
	}
}

func TestCompileRecursive(t *testing.T) {
	node := &openapi3.Schema{Type: &openapi3.Types{"object"}}
	node.Properties = openapi3.Schemas{
		"value": openapi3.NewIntegerSchema().NewRef(),
		"next":  &openapi3.SchemaRef{Ref: "#/components/schemas/Node", Value: node},
	}

	_, err := Compile(node.NewRef())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRecursiveSchema))
	assert.Contains(t, err.Error(), "#/properties/next")
}

func TestCompileSharedSchemaIsNotRecursive(t *testing.T) {
	tag := openapi3.NewStringSchema()
	pair := &openapi3.Schema{
		Type: &openapi3.Types{"object"},
		Properties: openapi3.Schemas{
			"left":  tag.NewRef(),
			"right": tag.NewRef(),
		},
	}

	_, err := Compile(pair.NewRef())
	require.NoError(t, err)
}

func TestCompileUnboundedDrawsLikeCore(t *testing.T) {
	seed := lcg.MkSeed(42)

	g, err := Compile(openapi3.NewStringSchema().NewRef())
	require.NoError(t, err)

	want := gen.GenerateSample(gen.String(), seed, gen.WithCount(5))
	got := gen.GenerateSample(g, seed, gen.WithCount(5))
	for i := range want {
		assert.Equal(t, want[i], got[i])
	}

	ig, err := Compile(openapi3.NewIntegerSchema().NewRef())
	require.NoError(t, err)
	wantInts := gen.GenerateSample(gen.Int(), seed, gen.WithCount(5))
	gotInts := gen.GenerateSample(ig, seed, gen.WithCount(5))
	for i := range wantInts {
		assert.Equal(t, wantInts[i], gotInts[i])
	}
}

func TestCompileDeterministic(t *testing.T) {
	doc := loadPetstore(t)
	for _, name := range []string{"Pet", "Owner", "Adoption", "Contact"} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, sampleComponent(t, doc, name, 1234, 20), sampleComponent(t, doc, name, 1234, 20))
		})
	}
}

func TestCompileOneSidedBounds(t *testing.T) {
	g, err := Compile(openapi3.NewIntegerSchema().WithMin(500).NewRef())
	require.NoError(t, err)
	for _, v := range gen.GenerateSample(g, lcg.MkSeed(8), gen.WithCount(100)) {
		n := v.(int)
		assert.GreaterOrEqual(t, n, 500)
		assert.LessOrEqual(t, n, 700)
	}

	f, err := Compile(openapi3.NewFloat64Schema().WithMax(-10).NewRef())
	require.NoError(t, err)
	for _, v := range gen.GenerateSample(f, lcg.MkSeed(8), gen.WithCount(100)) {
		x := v.(float64)
		assert.GreaterOrEqual(t, x, -210.0)
		assert.LessOrEqual(t, x, -10.0)
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestCompileExclusiveIntegerBounds(t *testing.T) {
	s := openapi3.NewIntegerSchema().WithMin(0).WithMax(2).WithExclusiveMin(true).WithExclusiveMax(true)
	g, err := Compile(s.NewRef())
	require.NoError(t, err)
	for _, v := range gen.GenerateSample(g, lcg.MkSeed(42), gen.WithCount(30)) {
		assert.Equal(t, 1, v)
	}

	frac := openapi3.NewIntegerSchema().WithMin(0.5).WithMax(3.5).WithExclusiveMin(true).WithExclusiveMax(true)
	g, err = Compile(frac.NewRef())
	require.NoError(t, err)
	for _, v := range gen.GenerateSample(g, lcg.MkSeed(42), gen.WithCount(30)) {
		assert.Contains(t, []int{1, 2, 3}, v)
	}

	_, err = Compile(openapi3.NewIntegerSchema().WithMin(1).WithMax(2).WithExclusiveMin(true).WithExclusiveMax(true).NewRef())
	var unsupported *UnsupportedSchemaError
	assert.ErrorAs(t, err, &unsupported)
}

func TestCompileExclusiveNumberBounds(t *testing.T) {
	s := openapi3.NewFloat64Schema().WithMin(0).WithMax(1).WithExclusiveMin(true).WithExclusiveMax(true)
	g, err := Compile(s.NewRef())
	require.NoError(t, err)
	for _, v := range gen.GenerateSample(g, lcg.MkSeed(42), gen.WithCount(100)) {
		x := v.(float64)
		assert.Greater(t, x, 0.0)
		assert.Less(t, x, 1.0)
	}

	_, err = Compile(openapi3.NewFloat64Schema().WithMin(1).WithMax(1).WithExclusiveMax(true).NewRef())
	var unsupported *UnsupportedSchemaError
	assert.ErrorAs(t, err, &unsupported)
}
