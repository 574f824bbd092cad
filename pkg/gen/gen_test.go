package gen

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/prop"
	"github.com/nomagicln/seedgen/internal/proptest"
	"github.com/nomagicln/seedgen/pkg/lcg"
	"github.com/stretchr/testify/assert"
)

func stateOf(n int64, size int) State {
	return NewState(lcg.MkSeed(n), size)
}

func TestOfLeavesStateUntouched(t *testing.T) {
	s := stateOf(42, 7)
	v, next := Of("x").Run(s)

	assert.Equal(t, "x", v)
	assert.Equal(t, s, next)
}

func TestMapKeepsState(t *testing.T) {
	s := stateOf(42, 10)
	_, want := RawStep().Run(s)

	v, next := Map(RawStep(), func(n int64) int64 { return n * 2 }).Run(s)
	assert.Equal(t, int64(86), v)
	assert.Equal(t, want, next)
}

func TestChainThreadsState(t *testing.T) {
	g := Chain(RawStep(), func(first int64) Generator[[2]int64] {
		return Map(RawStep(), func(second int64) [2]int64 {
			return [2]int64{first, second}
		})
	})

	v, _ := g.Run(stateOf(42, 10))
	assert.Equal(t, [2]int64{43, 2075653}, v)
}

func TestMap2AndThen(t *testing.T) {
	s := stateOf(42, 10)

	sum, _ := Map2(RawStep(), RawStep(), func(a, b int64) int64 { return a + b }).Run(s)
	assert.Equal(t, int64(43+2075653), sum)

	second, _ := Then(RawStep(), RawStep()).Run(s)
	assert.Equal(t, int64(2075653), second)
}

func TestConstructionDoesNotDraw(t *testing.T) {
	s := stateOf(42, 10)
	g := RecordOf(
		FieldOf("a", Int()),
		FieldOf("b", ArrayOf(String())),
	)
	_ = Map(g, func(r Record) int { return len(r) })

	v, _ := RawStep().Run(s)
	assert.Equal(t, int64(43), v)
}

// The monad laws hold up to the (value, state) pair a generator returns.
func TestPropertyMonadLaws(t *testing.T) {
	properties := gopter.NewProperties(proptest.FastTestParameters())

	f := func(n int) Generator[int] {
		return Map(IntBetween(0, n%50+1), func(m int) int { return m + n })
	}
	g := func(n int) Generator[int] {
		return Chain(Sized(), func(size int) Generator[int] {
			return Map(IntBetween(-size, size), func(m int) int { return m * n })
		})
	}

	properties.Property("left identity: Chain(Of(a), f) == f(a)", prop.ForAll(
		func(seed int64, size, a int) bool {
			s := stateOf(seed, size)
			lv, ls := Chain(Of(a), f).Run(s)
			rv, rs := f(a).Run(s)
			return lv == rv && ls == rs
		},
		proptest.AnyInt64(),
		proptest.Size(),
		proptest.IntBound(),
	))

	properties.Property("right identity: Chain(m, Of) == m", prop.ForAll(
		func(seed int64, size int) bool {
			s := stateOf(seed, size)
			m := Int()
			lv, ls := Chain(m, Of[int]).Run(s)
			rv, rs := m.Run(s)
			return lv == rv && ls == rs
		},
		proptest.AnyInt64(),
		proptest.Size(),
	))

	properties.Property("associativity of Chain", prop.ForAll(
		func(seed int64, size int) bool {
			s := stateOf(seed, size)
			m := Int()
			lv, ls := Chain(Chain(m, f), g).Run(s)
			rv, rs := Chain(m, func(x int) Generator[int] { return Chain(f(x), g) }).Run(s)
			return lv == rv && ls == rs
		},
		proptest.AnyInt64(),
		proptest.Size(),
	))

	properties.TestingRun(t)
}
