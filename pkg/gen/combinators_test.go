package gen

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/prop"
	"github.com/nomagicln/seedgen/internal/proptest"
	"github.com/nomagicln/seedgen/pkg/lcg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// panicsWith runs fn and returns the recovered panic value.
func panicsWith(t *testing.T, fn func()) (r any) {
	t.Helper()
	defer func() { r = recover() }()
	fn()
	t.Fatal("expected panic")
	return nil
}

func TestTuples(t *testing.T) {
	seed := lcg.MkSeed(42)

	pair := Generate(PairOf(RawStep(), RawStep()), seed)
	assert.Equal(t, Pair[int64, int64]{First: 43, Second: 2075653}, pair)

	triple := Generate(TripleOf(RawStep(), Of("x"), RawStep()), seed)
	assert.Equal(t, Triple[int64, string, int64]{First: 43, Second: "x", Third: 2075653}, triple)

	tuple := Generate(TupleOf(Any(RawStep()), Any(Of(true)), Any(RawStep())), seed)
	assert.Equal(t, Tuple{int64(43), true, int64(2075653)}, tuple)

	assert.Empty(t, Generate(TupleOf(), seed))
}

func TestRecordFieldOrderChangesValues(t *testing.T) {
	seed := lcg.MkSeed(42)

	ab := Generate(RecordOf(
		FieldOf("a", IntBetween(0, 100)),
		FieldOf("b", Bool()),
	), seed)
	ba := Generate(RecordOf(
		FieldOf("b", Bool()),
		FieldOf("a", IntBetween(0, 100)),
	), seed)

	assert.Equal(t, Record{"a": 43, "b": true}, ab)
	assert.Equal(t, Record{"a": 2, "b": true}, ba)
}

func TestRecordDrawOrder(t *testing.T) {
	// the record consumes every draw of a, then every draw of b
	s := stateOf(42, 10)
	rec, recNext := RecordOf(
		FieldOf("a", VectorOf(3, RawStep())),
		FieldOf("b", RawStep()),
	).Run(s)

	raws, rawNext := VectorOf(4, RawStep()).Run(s)
	assert.Equal(t, raws[:3], rec["a"])
	assert.Equal(t, raws[3], rec["b"])
	assert.Equal(t, rawNext, recNext)
}

func TestRecordDuplicateField(t *testing.T) {
	r := panicsWith(t, func() {
		RecordOf(FieldOf("a", Int()), FieldOf("a", Bool()))
	})

	err, ok := r.(*ConfigError)
	require.True(t, ok)
	assert.ErrorIs(t, err, ErrDuplicateField)
}

type point struct {
	X     int
	Label string `gen:"name"`
	Tags  []string
	Extra any
	skip  int
}

func TestStructOf(t *testing.T) {
	seed := lcg.MkSeed(42)
	fields := []Field{
		FieldOf("x", IntBetween(0, 100)),
		FieldOf("name", Of("p")),
		FieldOf("Tags", VectorOf(2, Of("t"))),
	}

	p := Generate(StructOf[point](fields...), seed)
	assert.Equal(t, point{X: 43, Label: "p", Tags: []string{"t", "t"}}, p)

	rec := Generate(RecordOf(fields...), seed)
	assert.Equal(t, rec["x"], p.X)
}

func TestStructOfInterfaceField(t *testing.T) {
	p := Generate(StructOf[point](FieldOf("Extra", Any(Of(3)))), lcg.MkSeed(1))
	assert.Equal(t, 3, p.Extra)
}

func TestStructOfMisuse(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"not a struct", func() { StructOf[int](FieldOf("x", Int())) }},
		{"unknown field", func() { StructOf[point](FieldOf("missing", Int())) }},
		{"unexported field", func() { StructOf[point](FieldOf("skip", Int())) }},
		{"wrong type", func() { StructOf[point](FieldOf("X", String())) }},
		{"wrong dynamic type", func() {
			Generate(StructOf[point](FieldOf("X", Any(String()))), lcg.MkSeed(1))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err, ok := panicsWith(t, tt.fn).(*ConfigError)
			require.True(t, ok)
			assert.ErrorIs(t, err, ErrInvalidStruct)
		})
	}
}

func TestVectorOf(t *testing.T) {
	s := stateOf(42, 10)

	empty, next := VectorOf(0, RawStep()).Run(s)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
	assert.Equal(t, s, next)

	three, _ := VectorOf(3, RawStep()).Run(s)
	assert.Equal(t, []int64{43, 2075653, 1409598201}, three)

	err, ok := panicsWith(t, func() { VectorOf(-1, Int()) }).(*ConfigError)
	require.True(t, ok)
	assert.ErrorIs(t, err, ErrNegativeLength)
}

func TestArrayOf(t *testing.T) {
	got := GenerateSample(ArrayOf(Int()), lcg.MkSeed(42), WithSize(3), WithCount(3))
	assert.Equal(t, [][]int{{27, -25, 22}, {73}, {-84}}, got)

	zero := GenerateSample(ArrayOf(Int()), lcg.MkSeed(42), WithSize(0))
	for _, v := range zero {
		assert.NotNil(t, v)
		assert.Empty(t, v)
	}
}

func TestString(t *testing.T) {
	got := GenerateSample(String(), lcg.MkSeed(42), WithCount(3))
	assert.Equal(t, []string{"}liC:noq0{", "", "I=o<UZ"}, got)

	assert.Equal(t, "", Generate(String(), lcg.MkSeed(42), WithSize(0)))
}

func TestOneOf(t *testing.T) {
	got := GenerateSample(OneOf(Of("a"), Of("b"), Of("c")), lcg.MkSeed(42), WithCount(8))
	assert.Equal(t, []string{"b", "b", "a", "c", "c", "c", "a", "b"}, got)

	assert.Equal(t, got, GenerateSample(Elements("a", "b", "c"), lcg.MkSeed(42), WithCount(8)))
}

func TestOneOfEmpty(t *testing.T) {
	err, ok := panicsWith(t, func() { OneOf[int]() }).(*ConfigError)
	require.True(t, ok)
	assert.ErrorIs(t, err, ErrEmptyChoice)

	err, ok = panicsWith(t, func() { Elements[int]() }).(*ConfigError)
	require.True(t, ok)
	assert.True(t, errors.Is(err, ErrEmptyChoice))
}

func TestOneOfDoesNotAliasInput(t *testing.T) {
	gens := []Generator[string]{Of("a"), Of("b")}
	g := OneOf(gens...)
	gens[0], gens[1] = Of("x"), Of("x")

	for _, v := range GenerateSample(g, lcg.MkSeed(42)) {
		assert.Contains(t, []string{"a", "b"}, v)
	}
}

func TestPropertyStructuralContracts(t *testing.T) {
	properties := gopter.NewProperties(proptest.FastTestParameters())

	properties.Property("VectorOf yields exactly n values", prop.ForAll(
		func(seed int64, n int) bool {
			return len(Generate(VectorOf(n, Int()), lcg.MkSeed(seed))) == n
		},
		proptest.AnyInt64(),
		proptest.Count(),
	))

	properties.Property("ArrayOf length is bounded by size", prop.ForAll(
		func(seed int64, size int) bool {
			n := len(Generate(ArrayOf(Bool()), lcg.MkSeed(seed), WithSize(size)))
			return n >= 0 && n <= size
		},
		proptest.AnyInt64(),
		proptest.Size(),
	))

	properties.Property("OneOf selects within [0, k-1]", prop.ForAll(
		func(seed int64, k int) bool {
			gens := make([]Generator[int], k)
			for i := range gens {
				gens[i] = Of(i)
			}
			for _, i := range GenerateSample(OneOf(gens...), lcg.MkSeed(seed)) {
				if i < 0 || i >= k {
					return false
				}
			}
			return true
		},
		proptest.AnyInt64(),
		proptest.Choices(),
	))

	properties.Property("shared children are independent across parents", prop.ForAll(
		func(seed int64) bool {
			child := Int()
			got := Generate(PairOf(child, child), lcg.MkSeed(seed))
			want := Generate(PairOf(Int(), Int()), lcg.MkSeed(seed))
			return got == want
		},
		proptest.AnyInt64(),
	))

	properties.TestingRun(t)
}
