package gen

import (
	"fmt"

	"github.com/nomagicln/seedgen/pkg/lcg"
)

const (
	// DefaultSize is the size Generate and GenerateSample use when none is given.
	DefaultSize = 10
	// DefaultCount is the number of values GenerateSample produces by default.
	DefaultCount = 10
)

// RunConfig holds the resolved options of a run.
type RunConfig struct {
	Size  int
	Count int
}

// RunOption configures Generate and GenerateSample.
type RunOption func(*RunConfig)

// WithSize sets the ambient size of the run.
func WithSize(n int) RunOption {
	return func(c *RunConfig) {
		c.Size = n
	}
}

// WithCount sets the number of values GenerateSample produces. Generate
// ignores it.
func WithCount(n int) RunOption {
	return func(c *RunConfig) {
		c.Count = n
	}
}

func newRunConfig(op string, seed lcg.Seed, opts []RunOption) RunConfig {
	cfg := RunConfig{Size: DefaultSize, Count: DefaultCount}
	for _, opt := range opts {
		opt(&cfg)
	}
	if seed.IsZero() {
		panic(configError(op, ErrZeroSeed))
	}
	if cfg.Size < 0 {
		panic(configError(op, fmt.Errorf("%w: %d", ErrNegativeSize, cfg.Size)))
	}
	if cfg.Count < 0 {
		panic(configError(op, fmt.Errorf("%w: count %d", ErrNegativeLength, cfg.Count)))
	}
	return cfg
}

// Evaluate runs g against s and discards the final state.
func Evaluate[T any](s State, g Generator[T]) T {
	v, _ := g(s)
	return v
}

// Generate runs g once from the given seed.
func Generate[T any](g Generator[T], seed lcg.Seed, opts ...RunOption) T {
	cfg := newRunConfig("Generate", seed, opts)
	return Evaluate(NewState(seed, cfg.Size), g)
}

// GenerateSample produces count values of g from the given seed. The samples
// are chained: each one starts from the state the previous one left behind,
// so a seed reproduces a whole sequence of distinct values.
func GenerateSample[T any](g Generator[T], seed lcg.Seed, opts ...RunOption) []T {
	cfg := newRunConfig("GenerateSample", seed, opts)
	return Evaluate(NewState(seed, cfg.Size), VectorOf(cfg.Count, g))
}
