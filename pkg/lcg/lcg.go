// Package lcg provides the deterministic seed primitive used by the generator
// engine: a multiplicative linear congruential generator over the prime
// modulus 2^31-1.
//
// A Seed is an immutable value. Step extracts the raw integer held by a seed
// and returns the seed that follows it. Perturb mixes an arbitrary displacement
// into a seed without drawing from it.
package lcg

import "strconv"

const (
	// Modulus is the prime modulus of the recurrence (2^31 - 1).
	Modulus int64 = 2147483647
	// Multiplier is the recurrence multiplier.
	Multiplier int64 = 48271
	// Increment is the additive constant applied by Next.
	Increment int64 = 0

	// SeedMin is the smallest raw integer a seed can hold.
	SeedMin int64 = 1
	// SeedMax is the largest raw integer a seed can hold.
	SeedMax int64 = Modulus - 1
)

// Seed is an opaque seed value in [SeedMin, SeedMax].
type Seed struct {
	n int64
}

// MkSeed builds a seed from an arbitrary integer, folding it into
// [SeedMin, SeedMax].
func MkSeed(n int64) Seed {
	return Seed{n: mod(n, SeedMax-SeedMin) + SeedMin}
}

// Value returns the raw integer held by the seed.
func (s Seed) Value() int64 {
	return s.n
}

// IsZero reports whether s is the zero Seed, which no constructor produces.
func (s Seed) IsZero() bool {
	return s.n == 0
}

// String renders the raw value.
func (s Seed) String() string {
	return strconv.FormatInt(s.n, 10)
}

// Step returns the raw integer held by s together with the next seed.
func Step(s Seed) (int64, Seed) {
	return s.n, Next(s)
}

// Next advances s by one step of the recurrence.
func Next(s Seed) Seed {
	return Perturb(Increment, s)
}

// Perturb advances s by one step with delta added to the product, which
// decorrelates the resulting stream from the one Next would produce.
func Perturb(delta int64, s Seed) Seed {
	// Multiplier * SeedMax stays well below 2^63, and folding delta first keeps
	// the sum in range for any input.
	n := mod(Multiplier*s.n+mod(delta, Modulus), Modulus)
	if n == 0 {
		// zero is a fixed point of the recurrence
		n = SeedMax
	}
	return Seed{n: n}
}

// mod is the non-negative remainder of a divided by m.
func mod(a, m int64) int64 {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}
