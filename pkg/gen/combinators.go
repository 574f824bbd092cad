package gen

import (
	"fmt"
	"reflect"
	"strings"
)

// =============================================================================
// Tuples
// =============================================================================

// Pair is the result of PairOf.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Triple is the result of TripleOf.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// PairOf runs a then b.
func PairOf[A, B any](a Generator[A], b Generator[B]) Generator[Pair[A, B]] {
	return Map2(a, b, func(va A, vb B) Pair[A, B] {
		return Pair[A, B]{First: va, Second: vb}
	})
}

// TripleOf runs a, b and c in that order.
func TripleOf[A, B, C any](a Generator[A], b Generator[B], c Generator[C]) Generator[Triple[A, B, C]] {
	return func(s State) (Triple[A, B, C], State) {
		va, s1 := a(s)
		vb, s2 := b(s1)
		vc, s3 := c(s2)
		return Triple[A, B, C]{First: va, Second: vb, Third: vc}, s3
	}
}

// Tuple is the fixed-arity result of TupleOf; slot i holds the value of the
// i-th generator.
type Tuple []any

// TupleOf runs the generators in argument order.
func TupleOf(gens ...Generator[any]) Generator[Tuple] {
	return func(s State) (Tuple, State) {
		out := make(Tuple, len(gens))
		for i, g := range gens {
			out[i], s = g(s)
		}
		return out, s
	}
}

// =============================================================================
// Records
// =============================================================================

// Field is a named child generator of RecordOf or StructOf.
type Field struct {
	Name string
	Gen  Generator[any]

	typ reflect.Type
}

// FieldOf creates a Field, remembering T so StructOf can check it against the
// target struct field.
func FieldOf[T any](name string, g Generator[T]) Field {
	return Field{Name: name, Gen: Any(g), typ: reflect.TypeFor[T]()}
}

// Record is the result of RecordOf.
type Record map[string]any

// RecordOf runs the field generators in argument order and collects their
// values by name. Panics if two fields share a name.
func RecordOf(fields ...Field) Generator[Record] {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Name] {
			panic(configError("RecordOf", fmt.Errorf("%w: %q", ErrDuplicateField, f.Name)))
		}
		seen[f.Name] = true
	}

	return func(s State) (Record, State) {
		out := make(Record, len(fields))
		for _, f := range fields {
			out[f.Name], s = f.Gen(s)
		}
		return out, s
	}
}

// StructOf is RecordOf for a struct target: the same draws in the same order,
// assigned to the fields of T. A field name matches a `gen:"name"` tag first,
// then the exact Go field name, then the name ignoring case.
//
// Panics at construction if T is not a struct, a name matches no exported
// field, or a field's generator type is not assignable to the struct field.
func StructOf[T any](fields ...Field) Generator[T] {
	typ := reflect.TypeFor[T]()
	if typ.Kind() != reflect.Struct {
		panic(configError("StructOf", fmt.Errorf("%w: %s is not a struct", ErrInvalidStruct, typ)))
	}

	index := make([]int, len(fields))
	for i, f := range fields {
		sf, ok := lookupField(typ, f.Name)
		if !ok {
			panic(configError("StructOf", fmt.Errorf("%w: %s has no field %q", ErrInvalidStruct, typ, f.Name)))
		}
		if f.typ != nil && f.typ.Kind() != reflect.Interface && !f.typ.AssignableTo(sf.Type) {
			panic(configError("StructOf", fmt.Errorf("%w: field %q is %s, generator yields %s",
				ErrInvalidStruct, f.Name, sf.Type, f.typ)))
		}
		index[i] = sf.Index[0]
	}

	record := RecordOf(fields...)
	return func(s State) (T, State) {
		values, next := record(s)

		var out T
		dst := reflect.ValueOf(&out).Elem()
		for i, f := range fields {
			v := values[f.Name]
			if v == nil {
				continue
			}
			field := dst.Field(index[i])
			rv := reflect.ValueOf(v)
			if !rv.Type().AssignableTo(field.Type()) {
				panic(configError("StructOf", fmt.Errorf("%w: field %q is %s, got %s",
					ErrInvalidStruct, f.Name, field.Type(), rv.Type())))
			}
			field.Set(rv)
		}
		return out, next
	}
}

func lookupField(typ reflect.Type, name string) (reflect.StructField, bool) {
	var exact, folded *reflect.StructField
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}
		if tag, _, _ := strings.Cut(sf.Tag.Get("gen"), ","); tag == name {
			return sf, true
		}
		if exact == nil && sf.Name == name {
			exact = &sf
		}
		if folded == nil && strings.EqualFold(sf.Name, name) {
			folded = &sf
		}
	}
	if exact != nil {
		return *exact, true
	}
	if folded != nil {
		return *folded, true
	}
	return reflect.StructField{}, false
}

// =============================================================================
// Collections
// =============================================================================

// VectorOf runs g exactly n times and returns the values in draw order.
// n == 0 yields an empty slice without drawing. Panics if n is negative.
func VectorOf[T any](n int, g Generator[T]) Generator[[]T] {
	if n < 0 {
		panic(configError("VectorOf", fmt.Errorf("%w: %d", ErrNegativeLength, n)))
	}
	return func(s State) ([]T, State) {
		out := make([]T, n)
		for i := range out {
			out[i], s = g(s)
		}
		return out, s
	}
}

// ArrayOf draws a length in [0, size] and then that many values of g.
func ArrayOf[T any](g Generator[T]) Generator[[]T] {
	return Chain(Sized(), func(size int) Generator[[]T] {
		return Chain(IntBetween(0, size), func(n int) Generator[[]T] {
			return VectorOf(n, g)
		})
	})
}

// String draws a size-bounded string of characters from Char(opts...).
func String(opts ...CharOption) Generator[string] {
	return Map(ArrayOf(Char(opts...)), func(rs []rune) string {
		return string(rs)
	})
}

// =============================================================================
// Choice
// =============================================================================

// OneOf picks one of gens uniformly and runs it. Panics if gens is empty.
func OneOf[T any](gens ...Generator[T]) Generator[T] {
	if len(gens) == 0 {
		panic(configError("OneOf", ErrEmptyChoice))
	}
	choices := append([]Generator[T](nil), gens...)
	return Chain(IntBetween(0, len(choices)-1), func(i int) Generator[T] {
		if i < 0 || i >= len(choices) {
			panic(&InvariantError{Op: "OneOf", Index: i, Len: len(choices)})
		}
		return choices[i]
	})
}

// Elements picks one of values uniformly. Panics if values is empty.
func Elements[T any](values ...T) Generator[T] {
	if len(values) == 0 {
		panic(configError("Elements", ErrEmptyChoice))
	}
	gens := make([]Generator[T], len(values))
	for i, v := range values {
		gens[i] = Of(v)
	}
	return OneOf(gens...)
}
