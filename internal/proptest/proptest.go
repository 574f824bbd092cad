// Package proptest provides property-based testing infrastructure and
// gopter generators for seeds, sizes and bounds.
package proptest

import (
	"os"
	"strconv"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/nomagicln/seedgen/pkg/lcg"
)

// fixedSeed keeps property runs reproducible; PROPTEST_SEED overrides it.
const fixedSeed int64 = 1337

// TestParameters returns the standard test parameters for property tests.
// Default: 1000 iterations for a good balance between coverage and speed.
func TestParameters() *gopter.TestParameters {
	params := gopter.DefaultTestParametersWithSeed(seed())
	params.MinSuccessfulTests = 1000
	return params
}

// FastTestParameters returns parameters for cheaper properties run on every
// `go test`, including -short.
func FastTestParameters() *gopter.TestParameters {
	params := gopter.DefaultTestParametersWithSeed(seed())
	params.MinSuccessfulTests = 100
	return params
}

func seed() int64 {
	if env := os.Getenv("PROPTEST_SEED"); env != "" {
		if n, err := strconv.ParseInt(env, 10, 64); err == nil {
			return n
		}
	}
	return fixedSeed
}

// RawSeed generates integers in [lcg.SeedMin, lcg.SeedMax].
func RawSeed() gopter.Gen {
	return gen.Int64Range(lcg.SeedMin, lcg.SeedMax)
}

// AnyInt64 generates arbitrary int64 values, including negatives.
func AnyInt64() gopter.Gen {
	return gen.Int64()
}

// Size generates ambient sizes in [0, 30].
func Size() gopter.Gen {
	return gen.IntRange(0, 30)
}

// Count generates sample counts in [0, 20].
func Count() gopter.Gen {
	return gen.IntRange(0, 20)
}

// IntBound generates bounds for ranged integer generators.
func IntBound() gopter.Gen {
	return gen.IntRange(-1_000_000, 1_000_000)
}

// FloatBound generates bounds for ranged float generators.
func FloatBound() gopter.Gen {
	return gen.Float64Range(-1e6, 1e6)
}
