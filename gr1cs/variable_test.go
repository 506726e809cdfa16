package gr1cs

import (
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestVariableKinds(t *testing.T) {
	assert := require.New(t)

	cases := []struct {
		v     Variable
		kind  VarKind
		index int
		str   string
	}{
		{Zero(), KindZero, 0, "0"},
		{One(), KindOne, 0, "1"},
		{NewInstance(3), KindInstance, 3, "x3"},
		{NewWitness(7), KindWitness, 7, "w7"},
		{newSymbolicLc(2), KindSymbolicLc, 2, "lc2"},
	}
	for _, c := range cases {
		assert.Equal(c.kind, c.v.Kind(), c.str)
		assert.Equal(c.index, c.v.Index(), c.str)
		assert.Equal(c.str, c.v.String())
	}

	assert.True(Zero().IsZero())
	assert.True(One().IsOne())
	assert.True(NewInstance(1).IsInstance())
	assert.True(NewWitness(0).IsWitness())
	assert.True(newSymbolicLc(0).IsSymbolicLc())
	assert.False(NewWitness(0).IsInstance())

	idx, ok := newSymbolicLc(5).LcIndex()
	assert.True(ok)
	assert.Equal(LcIndex(5), idx)
	_, ok = NewWitness(5).LcIndex()
	assert.False(ok)
}

func TestVariableOrder(t *testing.T) {
	vs := []Variable{
		newSymbolicLc(0),
		NewWitness(0),
		NewInstance(2),
		NewInstance(1),
		One(),
		Zero(),
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i] < vs[j] })

	want := []Variable{Zero(), One(), NewInstance(1), NewInstance(2), NewWitness(0), newSymbolicLc(0)}
	for i := range want {
		if vs[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], vs[i])
		}
	}
}

func TestVariableColumn(t *testing.T) {
	assert := require.New(t)
	const nbInstance = 4

	col, ok := One().column(nbInstance)
	assert.True(ok)
	assert.Equal(0, col)

	col, ok = NewInstance(3).column(nbInstance)
	assert.True(ok)
	assert.Equal(3, col)

	col, ok = NewWitness(2).column(nbInstance)
	assert.True(ok)
	assert.Equal(6, col)

	_, ok = Zero().column(nbInstance)
	assert.False(ok)
	_, ok = newSymbolicLc(0).column(nbInstance)
	assert.False(ok)
}

func TestVariableIndexOutOfRange(t *testing.T) {
	require.Panics(t, func() { NewInstance(-1) })
	require.Panics(t, func() { NewWitness(int(indexMask) + 1) })
}

func TestVariableProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	properties.Property("witness index round trips", prop.ForAll(
		func(i int64) bool {
			v := NewWitness(int(i))
			return v.IsWitness() && v.Index() == int(i)
		},
		gen.Int64Range(0, int64(indexMask)),
	))

	properties.Property("instance sorts before witness", prop.ForAll(
		func(i, j int64) bool {
			return NewInstance(int(i)) < NewWitness(int(j))
		},
		gen.Int64Range(0, int64(indexMask)),
		gen.Int64Range(0, int64(indexMask)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
