package catalog

import (
	"github.com/nomagicln/seedgen/pkg/gen"
)

// Builtins returns the entries every registry starts with.
func Builtins() []Entry {
	return []Entry{
		builtin("int", "Integer in [-100, 100]", gen.Int()),
		builtin("float", "Float in [-100, 100]", gen.Float()),
		builtin("bool", "Boolean", gen.Bool()),
		builtin("char", "Printable ASCII character", gen.Map(gen.Char(), func(r rune) string {
			return string(r)
		})),
		builtin("string", "Printable ASCII string no longer than the size", gen.String()),
		builtin("raw", "Raw generator output in [1, 2147483646]", gen.RawStep()),
		builtin("uniform", "Float in [0, 1] derived from one raw draw", gen.Uniform()),
		builtin("name", "Capitalised lowercase word", Name()),
		builtin("full-name", "Two names separated by a space", FullName()),
		builtin("prefixed-name", "Full name with an optional title", PrefixedName()),
		builtin("person", "Person record with name, age, hobbies, height and details", Person()),
	}
}

func builtin[T any](name, description string, g gen.Generator[T]) Entry {
	return Entry{Name: name, Description: description, Source: SourceBuiltin, Gen: gen.Any(g)}
}

// Name draws an upper-case letter followed by a lower-case string.
func Name() gen.Generator[string] {
	return gen.Chain(gen.Char(gen.WithFrom('A'), gen.WithTo('Z')), func(first rune) gen.Generator[string] {
		return gen.Map(gen.String(gen.WithFrom('a'), gen.WithTo('z')), func(rest string) string {
			return string(first) + rest
		})
	})
}

// FullName draws two names.
func FullName() gen.Generator[string] {
	return gen.Map2(Name(), Name(), func(first, last string) string {
		return first + " " + last
	})
}

// PrefixedName draws "Dr. ", "Prof. " or no title, then a full name.
func PrefixedName() gen.Generator[string] {
	return gen.Map2(gen.Elements("Dr. ", "Prof. ", ""), FullName(), func(title, name string) string {
		return title + name
	})
}

// Person draws a nested record.
func Person() gen.Generator[map[string]any] {
	details := gen.RecordOf(
		gen.FieldOf("active", gen.Bool()),
		gen.FieldOf("trusted", gen.Bool()),
	)
	person := gen.RecordOf(
		gen.FieldOf("name", gen.String()),
		gen.FieldOf("age", gen.IntBetween(0, 100)),
		gen.FieldOf("hobbies", gen.ArrayOf(gen.String())),
		gen.FieldOf("height", gen.FloatBetween(0, 2)),
		gen.FieldOf("details", gen.Map(details, func(r gen.Record) map[string]any {
			return r
		})),
	)
	return gen.Map(person, func(r gen.Record) map[string]any {
		return r
	})
}
