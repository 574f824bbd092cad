package gen

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by ConfigError.
var (
	ErrEmptyChoice    = errors.New("no generators to choose from")
	ErrNegativeLength = errors.New("length must not be negative")
	ErrNegativeSize   = errors.New("size must not be negative")
	ErrZeroSeed       = errors.New("seed was not created with lcg.MkSeed")
	ErrDuplicateField = errors.New("duplicate field name")
	ErrInvalidStruct  = errors.New("invalid struct target")
)

// ConfigError reports misuse of a combinator at its call site, such as
// calling OneOf with no generators. Combinators panic with a *ConfigError.
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("gen: %s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configError(op string, err error) *ConfigError {
	return &ConfigError{Op: op, Err: err}
}

// InvariantError reports an internal inconsistency: a drawn index fell
// outside the collection it was drawn for. It indicates a bug in the ranged
// integer generator, never a caller mistake.
type InvariantError struct {
	Op    string
	Index int
	Len   int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("gen: %s: internal error: index %d out of range [0, %d)", e.Op, e.Index, e.Len)
}

// Recover runs fn and converts a *ConfigError or *InvariantError panic into a
// returned error. Any other panic is propagated unchanged.
func Recover[T any](fn func() T) (v T, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		switch e := r.(type) {
		case *ConfigError:
			err = e
		case *InvariantError:
			err = e
		default:
			panic(r)
		}
	}()
	return fn(), nil
}
