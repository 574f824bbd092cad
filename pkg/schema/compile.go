package schema

import (
	"fmt"
	"math"
	"net/netip"
	"slices"
	"sort"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/uuid"

	"github.com/nomagicln/seedgen/pkg/gen"
)

// Bounds of the instants drawn for date and date-time formats.
var (
	minInstant = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
	maxInstant = time.Date(2030, time.December, 31, 23, 59, 59, 0, time.UTC).Unix()
)

const (
	typeNull    = "null"
	typeBoolean = "boolean"
	typeInteger = "integer"
	typeNumber  = "number"
	typeString  = "string"
	typeArray   = "array"
	typeObject  = "object"
)

var emailDomains = []string{"example.com", "example.net", "example.org"}

// defaultSpan is the width of a numeric range that only has one bound.
const defaultSpan = gen.DefaultMax - gen.DefaultMin

// ComponentNames returns the names of the document's component schemas in
// sorted order.
func ComponentNames(doc *openapi3.T) []string {
	if doc == nil || doc.Components == nil {
		return nil
	}
	names := make([]string, 0, len(doc.Components.Schemas))
	for name := range doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CompileComponent compiles the component schema with the given name.
func CompileComponent(doc *openapi3.T, name string) (gen.Generator[any], error) {
	var ref *openapi3.SchemaRef
	if doc != nil && doc.Components != nil {
		ref = doc.Components.Schemas[name]
	}
	if ref == nil {
		return nil, &ComponentNotFoundError{Name: name, Available: ComponentNames(doc)}
	}
	return compileAt(ref, "#/components/schemas/"+name)
}

// Compile turns a schema into a generator of JSON-shaped values: nil, bool,
// int, float64, string, []any and map[string]any.
//
// Object properties are drawn in property-name order so the same document
// always yields the same values for a seed.
func Compile(ref *openapi3.SchemaRef) (gen.Generator[any], error) {
	return compileAt(ref, "#")
}

func compileAt(ref *openapi3.SchemaRef, path string) (gen.Generator[any], error) {
	c := &compiler{visiting: make(map[*openapi3.Schema]bool)}
	return c.compileRef(ref, path)
}

type compiler struct {
	visiting map[*openapi3.Schema]bool
}

func (c *compiler) compileRef(ref *openapi3.SchemaRef, path string) (gen.Generator[any], error) {
	if ref == nil || ref.Value == nil {
		if ref != nil && ref.Ref != "" {
			return nil, &UnsupportedSchemaError{Path: path, Reason: fmt.Sprintf("unresolved reference %q", ref.Ref)}
		}
		return nil, &UnsupportedSchemaError{Path: path, Reason: "missing schema"}
	}

	schema := ref.Value
	if c.visiting[schema] {
		return nil, fmt.Errorf("%s: %w", path, ErrRecursiveSchema)
	}
	c.visiting[schema] = true
	defer delete(c.visiting, schema)

	g, err := c.compileSchema(schema, path)
	if err != nil {
		return nil, err
	}
	if schema.Nullable {
		g = nullable(g)
	}
	return g, nil
}

func (c *compiler) compileSchema(schema *openapi3.Schema, path string) (gen.Generator[any], error) {
	if len(schema.Enum) > 0 {
		return gen.Elements(slices.Clone(schema.Enum)...), nil
	}
	if len(schema.OneOf) > 0 {
		return c.compileChoice(schema.OneOf, path+"/oneOf")
	}
	if len(schema.AnyOf) > 0 {
		return c.compileChoice(schema.AnyOf, path+"/anyOf")
	}
	if len(schema.AllOf) > 0 {
		return c.compileAllOf(schema, path)
	}

	types, null := typesOf(schema)
	var g gen.Generator[any]
	switch len(types) {
	case 0:
		g = gen.Of[any](nil)
	case 1:
		var err error
		if g, err = c.compileType(schema, types[0], path); err != nil {
			return nil, err
		}
	default:
		gens := make([]gen.Generator[any], 0, len(types))
		for _, typ := range types {
			tg, err := c.compileType(schema, typ, path)
			if err != nil {
				return nil, err
			}
			gens = append(gens, tg)
		}
		g = gen.OneOf(gens...)
	}

	if null {
		g = nullable(g)
	}
	return g, nil
}

// typesOf lists the non-null types of a schema, inferring object and array
// from their keywords when no type is declared.
func typesOf(schema *openapi3.Schema) (types []string, null bool) {
	if schema.Type != nil {
		for _, typ := range *schema.Type {
			if typ == typeNull {
				null = true
				continue
			}
			types = append(types, typ)
		}
	}
	if len(types) == 0 {
		switch {
		case len(schema.Properties) > 0:
			types = []string{typeObject}
		case schema.Items != nil:
			types = []string{typeArray}
		}
	}
	return types, null
}

func (c *compiler) compileType(schema *openapi3.Schema, typ, path string) (gen.Generator[any], error) {
	switch typ {
	case typeBoolean:
		return gen.Any(gen.Bool()), nil
	case typeInteger:
		return compileInteger(schema, path)
	case typeNumber:
		return compileNumber(schema, path)
	case typeString:
		return compileString(schema, path)
	case typeArray:
		return c.compileArray(schema, path)
	case typeObject:
		return c.compileObject(schema.Properties, path)
	default:
		return nil, &UnsupportedSchemaError{Path: path, Reason: fmt.Sprintf("unknown type %q", typ)}
	}
}

func (c *compiler) compileChoice(refs openapi3.SchemaRefs, path string) (gen.Generator[any], error) {
	gens := make([]gen.Generator[any], len(refs))
	for i, ref := range refs {
		g, err := c.compileRef(ref, fmt.Sprintf("%s/%d", path, i))
		if err != nil {
			return nil, err
		}
		gens[i] = g
	}
	return gen.OneOf(gens...), nil
}

// compileAllOf merges the properties of every object in the intersection.
// A single-element allOf is the usual way to attach metadata to a $ref.
func (c *compiler) compileAllOf(schema *openapi3.Schema, path string) (gen.Generator[any], error) {
	if len(schema.AllOf) == 1 && len(schema.Properties) == 0 {
		return c.compileRef(schema.AllOf[0], path+"/allOf/0")
	}

	merged := make(openapi3.Schemas)
	for name, prop := range schema.Properties {
		merged[name] = prop
	}
	for i, ref := range schema.AllOf {
		sub := fmt.Sprintf("%s/allOf/%d", path, i)
		if ref == nil || ref.Value == nil {
			return nil, &UnsupportedSchemaError{Path: sub, Reason: "missing schema"}
		}
		if c.visiting[ref.Value] {
			return nil, fmt.Errorf("%s: %w", sub, ErrRecursiveSchema)
		}
		types, _ := typesOf(ref.Value)
		if len(types) != 1 || types[0] != typeObject {
			return nil, &UnsupportedSchemaError{Path: sub, Reason: "allOf can only combine object schemas"}
		}
		for name, prop := range ref.Value.Properties {
			merged[name] = prop
		}
	}
	return c.compileObject(merged, path)
}

func (c *compiler) compileObject(props openapi3.Schemas, path string) (gen.Generator[any], error) {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]gen.Field, len(names))
	for i, name := range names {
		g, err := c.compileRef(props[name], path+"/properties/"+name)
		if err != nil {
			return nil, err
		}
		fields[i] = gen.Field{Name: name, Gen: g}
	}

	return gen.Any(gen.Map(gen.RecordOf(fields...), func(r gen.Record) map[string]any {
		return r
	})), nil
}

func (c *compiler) compileArray(schema *openapi3.Schema, path string) (gen.Generator[any], error) {
	if schema.Items == nil {
		return nil, &UnsupportedSchemaError{Path: path, Reason: "array schema has no items"}
	}
	if schema.UniqueItems {
		return nil, &UnsupportedSchemaError{Path: path, Reason: "uniqueItems is not supported"}
	}
	item, err := c.compileRef(schema.Items, path+"/items")
	if err != nil {
		return nil, err
	}

	length, err := sizedLength(schema.MinItems, schema.MaxItems, path)
	if err != nil {
		return nil, err
	}
	return gen.Any(gen.Chain(length, func(n int) gen.Generator[[]any] {
		return gen.VectorOf(n, item)
	})), nil
}

func compileInteger(schema *openapi3.Schema, path string) (gen.Generator[any], error) {
	lo, hi := int64(gen.DefaultMin), int64(gen.DefaultMax)
	switch {
	case schema.Min != nil && schema.Max != nil:
		lo, hi = intLower(*schema.Min, schema.ExclusiveMin), intUpper(*schema.Max, schema.ExclusiveMax)
	case schema.Min != nil:
		lo = intLower(*schema.Min, schema.ExclusiveMin)
		hi = lo + defaultSpan
	case schema.Max != nil:
		hi = intUpper(*schema.Max, schema.ExclusiveMax)
		lo = hi - defaultSpan
	}
	if lo > hi {
		return nil, &UnsupportedSchemaError{Path: path, Reason: fmt.Sprintf("no integer in [%v, %v]", lo, hi)}
	}

	step := int64(1)
	if schema.MultipleOf != nil {
		m := *schema.MultipleOf
		if m <= 0 || m != math.Trunc(m) {
			return nil, &UnsupportedSchemaError{Path: path, Reason: fmt.Sprintf("multipleOf %v is not a positive integer", m)}
		}
		step = int64(m)
		lo, hi = ceilDiv(lo, step), floorDiv(hi, step)
		if lo > hi {
			return nil, &UnsupportedSchemaError{Path: path, Reason: fmt.Sprintf("no multiple of %d in range", step)}
		}
	}

	return gen.Any(gen.Map(gen.IntBetween(int(lo), int(hi)), func(n int) int {
		return n * int(step)
	})), nil
}

// intLower is the smallest integer allowed by a minimum.
func intLower(bound float64, exclusive bool) int64 {
	if exclusive {
		return int64(math.Floor(bound)) + 1
	}
	return int64(math.Ceil(bound))
}

// intUpper is the largest integer allowed by a maximum.
func intUpper(bound float64, exclusive bool) int64 {
	if exclusive {
		return int64(math.Ceil(bound)) - 1
	}
	return int64(math.Floor(bound))
}

func compileNumber(schema *openapi3.Schema, path string) (gen.Generator[any], error) {
	if schema.MultipleOf != nil {
		return nil, &UnsupportedSchemaError{Path: path, Reason: "multipleOf is not supported for numbers"}
	}
	lo, hi := float64(gen.DefaultMin), float64(gen.DefaultMax)
	switch {
	case schema.Min != nil && schema.Max != nil:
		lo, hi = *schema.Min, *schema.Max
	case schema.Min != nil:
		lo = *schema.Min
		hi = lo + defaultSpan
	case schema.Max != nil:
		hi = *schema.Max
		lo = hi - defaultSpan
	}
	if schema.Min != nil && schema.ExclusiveMin {
		lo = math.Nextafter(lo, math.Inf(1))
	}
	if schema.Max != nil && schema.ExclusiveMax {
		hi = math.Nextafter(hi, math.Inf(-1))
	}
	if lo > hi {
		return nil, &UnsupportedSchemaError{Path: path, Reason: fmt.Sprintf("no number in [%v, %v]", lo, hi)}
	}
	return gen.Any(gen.FloatBetween(lo, hi)), nil
}

func compileString(schema *openapi3.Schema, path string) (gen.Generator[any], error) {
	switch schema.Format {
	case "date-time":
		return gen.Any(instant(time.RFC3339)), nil
	case "date":
		return gen.Any(instant(time.DateOnly)), nil
	case "uuid":
		return gen.Any(uuidString()), nil
	case "email":
		return gen.Any(email()), nil
	case "ipv4":
		return gen.Any(ipv4()), nil
	}

	if schema.Pattern != "" {
		return nil, &UnsupportedSchemaError{Path: path, Reason: "pattern is not supported"}
	}

	length, err := sizedLength(schema.MinLength, schema.MaxLength, path)
	if err != nil {
		return nil, err
	}
	return gen.Any(gen.Chain(length, func(n int) gen.Generator[string] {
		return gen.Map(gen.VectorOf(n, gen.Char()), func(rs []rune) string {
			return string(rs)
		})
	})), nil
}

// sizedLength draws a length in [min, max], where max defaults to the ambient
// size and never exceeds it unless min does. With no bounds this draws
// exactly like gen.ArrayOf.
func sizedLength(minLen uint64, maxLen *uint64, path string) (gen.Generator[int], error) {
	if maxLen != nil && *maxLen < minLen {
		return nil, &UnsupportedSchemaError{Path: path, Reason: fmt.Sprintf("maximum length %d is below minimum %d", *maxLen, minLen)}
	}
	lo := int(minLen)
	return gen.Chain(gen.Sized(), func(size int) gen.Generator[int] {
		hi := size
		if maxLen != nil && int(*maxLen) < hi {
			hi = int(*maxLen)
		}
		if hi < lo {
			hi = lo
		}
		return gen.IntBetween(lo, hi)
	}), nil
}

func nullable(g gen.Generator[any]) gen.Generator[any] {
	return gen.OneOf(gen.Of[any](nil), g)
}

func instant(layout string) gen.Generator[string] {
	return gen.Map(gen.IntBetween(int(minInstant), int(maxInstant)), func(n int) string {
		return time.Unix(int64(n), 0).UTC().Format(layout)
	})
}

func uuidString() gen.Generator[string] {
	return gen.Map(gen.VectorOf(16, gen.IntBetween(0, 255)), func(bs []int) string {
		var u uuid.UUID
		for i, b := range bs {
			u[i] = byte(b)
		}
		u[6] = (u[6] & 0x0f) | 0x40
		u[8] = (u[8] & 0x3f) | 0x80
		return u.String()
	})
}

func email() gen.Generator[string] {
	lower := gen.Char(gen.WithFrom('a'), gen.WithTo('z'))
	local := gen.Chain(gen.IntBetween(1, 8), func(n int) gen.Generator[[]rune] {
		return gen.VectorOf(n, lower)
	})
	return gen.Map2(local, gen.Elements(emailDomains...), func(l []rune, domain string) string {
		return string(l) + "@" + domain
	})
}

func ipv4() gen.Generator[string] {
	return gen.Map(gen.VectorOf(4, gen.IntBetween(0, 255)), func(bs []int) string {
		var octets [4]byte
		for i, b := range bs {
			octets[i] = byte(b)
		}
		return netip.AddrFrom4(octets).String()
	})
}

func ceilDiv(n, d int64) int64 {
	q := n / d
	if n%d != 0 && n > 0 {
		q++
	}
	return q
}

func floorDiv(n, d int64) int64 {
	q := n / d
	if n%d != 0 && n < 0 {
		q--
	}
	return q
}
