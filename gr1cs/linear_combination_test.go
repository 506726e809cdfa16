package gr1cs

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestCompactify(t *testing.T) {
	w0, w1 := NewWitness(0), NewWitness(1)
	x1 := NewInstance(1)

	lc := LinearCombination[U32]{
		{Coeff: U32{3}, Variable: w1},
		{Coeff: U32{1}, Variable: x1},
		{Coeff: U32{2}, Variable: w1},
		{Coeff: U32{5}, Variable: w0},
	}
	got := compactify(tf, lc)
	want := LinearCombination[U32]{
		{Coeff: U32{1}, Variable: x1},
		{Coeff: U32{5}, Variable: w0},
		{Coeff: U32{5}, Variable: w1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected combination (-want +got):\n%s", diff)
	}
}

func TestCompactifyKeepsZeroFold(t *testing.T) {
	assert := require.New(t)
	w := NewWitness(0)

	lc := LinearCombination[U32]{
		{Coeff: U32{3}, Variable: w},
		{Coeff: tf.Neg(U32{3}), Variable: w},
	}
	got := compactify(tf, lc)
	assert.Len(got, 1)
	assert.True(got[0].Coeff.IsZero())
	assert.Equal(w, got[0].Variable)
}

func TestSumDiffVars(t *testing.T) {
	w0 := NewWitness(0)
	x1 := NewInstance(1)

	got := SumVars(tf, w0, w0, x1)
	want := LinearCombination[U32]{
		{Coeff: U32{1}, Variable: x1},
		{Coeff: U32{2}, Variable: w0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected sum (-want +got):\n%s", diff)
	}

	got = DiffVars(tf, x1, w0)
	want = LinearCombination[U32]{
		{Coeff: U32{1}, Variable: x1},
		{Coeff: tf.Neg(U32{1}), Variable: w0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected difference (-want +got):\n%s", diff)
	}
}

func TestLinearCombinationString(t *testing.T) {
	assert := require.New(t)

	lc := LinearCombination[U32]{
		{Coeff: U32{2}, Variable: NewWitness(0)},
		{Coeff: U32{1}, Variable: NewInstance(1)},
	}
	assert.Equal("2*w0 + x1", lc.String(tf))
	assert.Equal("0", LinearCombination[U32]{}.String(tf))
}

func TestLinearCombinationClone(t *testing.T) {
	assert := require.New(t)

	lc := LinearCombination[U32]{{Coeff: U32{2}, Variable: NewWitness(0)}}
	cp := lc.Clone()
	cp[0].Coeff = U32{9}
	assert.Equal(U32{2}, lc[0].Coeff)
}
