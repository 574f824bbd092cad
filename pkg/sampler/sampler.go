// Package sampler runs catalog generators on behalf of the CLI and the MCP
// server.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/nomagicln/seedgen/pkg/catalog"
	"github.com/nomagicln/seedgen/pkg/filter"
	"github.com/nomagicln/seedgen/pkg/gen"
	"github.com/nomagicln/seedgen/pkg/lcg"
)

// DefaultMaxAttempts bounds the draws per requested value when filtering.
const DefaultMaxAttempts = 1000

// maxPrealloc caps the capacity reserved for the kept values of a filtered run.
const maxPrealloc = 1024

// ErrFilterExhausted is returned when too few drawn values satisfy a filter.
var ErrFilterExhausted = errors.New("filter rejected too many values")

// Request describes one sampling run. Seed is an arbitrary integer that is
// turned into a generator seed with lcg.MkSeed.
type Request struct {
	Name  string
	Seed  int64
	Size  int
	Count int
	Where string
}

// Result holds the values of a run together with the inputs that reproduce
// it.
type Result struct {
	Name   string `json:"name" yaml:"name"`
	Seed   int64  `json:"seed" yaml:"seed"`
	Size   int    `json:"size" yaml:"size"`
	Count  int    `json:"count" yaml:"count"`
	Where  string `json:"where,omitempty" yaml:"where,omitempty"`
	Drawn  int    `json:"drawn" yaml:"drawn"`
	Values []any  `json:"values" yaml:"values"`
}

// Sampler draws values from the generators of a registry.
type Sampler struct {
	registry    *catalog.Registry
	logger      *slog.Logger
	maxAttempts int
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithLogger sets the logger used for run diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sampler) {
		s.logger = logger
	}
}

// WithMaxAttempts sets how many draws per requested value a filtered run may
// spend.
func WithMaxAttempts(n int) Option {
	return func(s *Sampler) {
		s.maxAttempts = n
	}
}

// New creates a Sampler over registry.
func New(registry *catalog.Registry, opts ...Option) *Sampler {
	s := &Sampler{
		registry:    registry,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the registry the sampler draws from.
func (s *Sampler) Registry() *catalog.Registry {
	return s.registry
}

// Sample runs req. Without a filter the values equal
// gen.GenerateSample(entry, lcg.MkSeed(req.Seed), size, count). With one,
// values are drawn from the same stream and only matches are kept.
func (s *Sampler) Sample(ctx context.Context, req Request) (*Result, error) {
	entry, err := s.registry.Lookup(req.Name)
	if err != nil {
		return nil, err
	}

	var matcher *filter.Matcher
	if req.Where != "" {
		if matcher, err = filter.Compile(req.Where); err != nil {
			return nil, err
		}
	}

	seed := lcg.MkSeed(req.Seed)
	result := &Result{
		Name:  req.Name,
		Seed:  req.Seed,
		Size:  req.Size,
		Count: req.Count,
		Where: req.Where,
	}

	s.logger.Debug("sampling",
		"generator", req.Name,
		"seed", req.Seed,
		"state_seed", seed.Value(),
		"size", req.Size,
		"count", req.Count,
		"where", req.Where)

	if matcher == nil {
		values, err := gen.Recover(func() []any {
			return gen.GenerateSample(entry.Gen, seed, gen.WithSize(req.Size), gen.WithCount(req.Count))
		})
		if err != nil {
			return nil, err
		}
		result.Values = values
		result.Drawn = len(values)
		return result, nil
	}

	values, drawn, err := s.sampleFiltered(ctx, entry.Gen, seed, req, matcher)
	result.Values = values
	result.Drawn = drawn
	if err != nil {
		return result, err
	}

	s.logger.Debug("filtered sample complete", "generator", req.Name, "drawn", drawn, "kept", len(values))
	return result, nil
}

// Generate draws a single value of req.Name at req.Size. Count and Where are
// ignored.
func (s *Sampler) Generate(ctx context.Context, req Request) (any, error) {
	entry, err := s.registry.Lookup(req.Name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seed := lcg.MkSeed(req.Seed)
	s.logger.Debug("generating",
		"generator", req.Name,
		"seed", req.Seed,
		"state_seed", seed.Value(),
		"size", req.Size)

	return gen.Recover(func() any {
		return gen.Generate(entry.Gen, seed, gen.WithSize(req.Size))
	})
}

// attemptBudget is count*perValue, saturating at math.MaxInt.
func attemptBudget(count, perValue int) int {
	if perValue <= 0 || count <= 0 {
		return 0
	}
	if count > math.MaxInt/perValue {
		return math.MaxInt
	}
	return count * perValue
}

func (s *Sampler) sampleFiltered(ctx context.Context, g gen.Generator[any], seed lcg.Seed, req Request, m *filter.Matcher) ([]any, int, error) {
	if req.Size < 0 {
		return nil, 0, &gen.ConfigError{Op: "Sample", Err: fmt.Errorf("%w: %d", gen.ErrNegativeSize, req.Size)}
	}
	if req.Count < 0 {
		return nil, 0, &gen.ConfigError{Op: "Sample", Err: fmt.Errorf("%w: count %d", gen.ErrNegativeLength, req.Count)}
	}

	budget := attemptBudget(req.Count, s.maxAttempts)
	values := make([]any, 0, min(req.Count, maxPrealloc))
	state := gen.NewState(seed, req.Size)

	drawn := 0
	for len(values) < req.Count {
		if drawn >= budget {
			return values, drawn, fmt.Errorf("%w: kept %d of %d after %d draws with %q",
				ErrFilterExhausted, len(values), req.Count, drawn, m.String())
		}
		if err := ctx.Err(); err != nil {
			return values, drawn, err
		}

		v, next, err := step(g, state)
		if err != nil {
			return values, drawn, err
		}
		state = next
		drawn++

		ok, err := m.Match(v)
		if err != nil {
			return values, drawn, err
		}
		if ok {
			values = append(values, v)
		}
	}
	return values, drawn, nil
}

func step(g gen.Generator[any], s gen.State) (any, gen.State, error) {
	var next gen.State
	v, err := gen.Recover(func() any {
		var v any
		v, next = g(s)
		return v
	})
	return v, next, err
}
