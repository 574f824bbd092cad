package gen

import "github.com/nomagicln/seedgen/pkg/lcg"

const (
	// DefaultMin is the lower bound Int and Float use when none is given.
	DefaultMin = -100
	// DefaultMax is the upper bound Int and Float use when none is given.
	DefaultMax = 100

	// DefaultFrom is the first character Char and String draw from.
	DefaultFrom = ' '
	// DefaultTo is the last character Char and String draw from.
	DefaultTo = '~'
)

// Number is the set of types a Range can bound.
type Number interface {
	~int | ~float64
}

// Range holds the bounds of a ranged generator.
type Range[N Number] struct {
	Min N
	Max N
}

// RangeOption configures a Range.
type RangeOption[N Number] func(*Range[N])

// WithMin sets the lower bound. Pass a float literal (0.0) when configuring Float.
func WithMin[N Number](n N) RangeOption[N] {
	return func(r *Range[N]) {
		r.Min = n
	}
}

// WithMax sets the upper bound.
func WithMax[N Number](n N) RangeOption[N] {
	return func(r *Range[N]) {
		r.Max = n
	}
}

func newRange[N Number](opts []RangeOption[N]) Range[N] {
	r := Range[N]{Min: DefaultMin, Max: DefaultMax}
	for _, opt := range opts {
		opt(&r)
	}
	if r.Min > r.Max {
		r.Min, r.Max = r.Max, r.Min
	}
	return r
}

// RawStep draws once from the primitive and returns the raw integer held by
// the current seed. Every other generator derives its randomness from here.
func RawStep() Generator[int64] {
	return func(s State) (int64, State) {
		n, next := lcg.Step(s.Seed)
		return n, State{Seed: next, Size: s.Size}
	}
}

// Uniform draws a float64 in [0, 1] from a single raw step.
func Uniform() Generator[float64] {
	return Map(RawStep(), func(n int64) float64 {
		return float64(n-lcg.SeedMin) / float64(lcg.SeedMax-lcg.SeedMin)
	})
}

// Int draws an int in [min, max], defaulting to [-100, 100]. Swapped bounds
// are normalised.
//
// The value is low + raw mod (high-low+1), so uniformity degrades once the
// span approaches the primitive's output range.
func Int(opts ...RangeOption[int]) Generator[int] {
	r := newRange(opts)
	low, high := r.Min, r.Max
	// unsigned arithmetic keeps spans wider than MaxInt well defined
	span := uint64(high) - uint64(low) + 1
	return Map(RawStep(), func(n int64) int {
		offset := uint64(n)
		if span != 0 {
			offset %= span
		}
		return low + int(offset)
	})
}

// IntBetween is shorthand for Int(WithMin(min), WithMax(max)).
func IntBetween(min, max int) Generator[int] {
	return Int(WithMin(min), WithMax(max))
}

// Float draws a float64 in [min, max], defaulting to [-100, 100]. Reversed
// bounds are swapped, so WithMin(10), WithMax(0) draws from [0, 10] rather
// than from [10, 20] as min + u*|max-min| would.
func Float(opts ...RangeOption[float64]) Generator[float64] {
	r := newRange(opts)
	low, high := r.Min, r.Max
	diff := high - low
	return Map(Uniform(), func(u float64) float64 {
		// rounding may push the top of the range one ulp past high
		return min(low+u*diff, high)
	})
}

// FloatBetween is shorthand for Float(WithMin(min), WithMax(max)).
func FloatBetween(min, max float64) Generator[float64] {
	return Float(WithMin(min), WithMax(max))
}

// Bool flips a fair coin.
func Bool() Generator[bool] {
	return OneOf(Of(false), Of(true))
}

// CharRange holds the inclusive character bounds of Char and String.
type CharRange struct {
	From rune
	To   rune
}

// CharOption configures a CharRange.
type CharOption func(*CharRange)

// WithFrom sets the first character of the range.
func WithFrom(r rune) CharOption {
	return func(c *CharRange) {
		c.From = r
	}
}

// WithTo sets the last character of the range.
func WithTo(r rune) CharOption {
	return func(c *CharRange) {
		c.To = r
	}
}

// Char draws a single character in [from, to], defaulting to the printable
// ASCII range ' '..'~'.
func Char(opts ...CharOption) Generator[rune] {
	c := CharRange{From: DefaultFrom, To: DefaultTo}
	for _, opt := range opts {
		opt(&c)
	}
	return Map(IntBetween(int(c.From), int(c.To)), func(n int) rune {
		return rune(n)
	})
}

// Sized reads the ambient size without drawing.
func Sized() Generator[int] {
	return func(s State) (int, State) {
		return s.Size, s
	}
}

// Resize runs g with the size replaced by n, then restores the ambient size.
func Resize[T any](n int, g Generator[T]) Generator[T] {
	if n < 0 {
		panic(configError("Resize", ErrNegativeSize))
	}
	return func(s State) (T, State) {
		v, next := g(State{Seed: s.Seed, Size: n})
		return v, State{Seed: next.Seed, Size: s.Size}
	}
}

// Perturb mixes delta into the current seed without drawing a value. Use it
// to decorrelate a sub-generator's stream from a sibling's.
func Perturb(delta int64) Generator[struct{}] {
	return func(s State) (struct{}, State) {
		return struct{}{}, State{Seed: lcg.Perturb(delta, s.Seed), Size: s.Size}
	}
}
