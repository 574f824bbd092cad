package proptest

import (
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
)

// Identifier generates valid catalog and field names.
func Identifier() gopter.Gen {
	return gen.Identifier()
}

// Printable generates characters in the printable ASCII range.
func Printable() gopter.Gen {
	return gen.RuneRange(' ', '~')
}

// Choices generates the number of alternatives handed to a choice
// combinator, always at least one.
func Choices() gopter.Gen {
	return gen.IntRange(1, 12)
}
