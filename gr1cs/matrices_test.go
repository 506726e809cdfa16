package gr1cs_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/snarkcore/relations/gr1cs"
	cs "github.com/snarkcore/relations/gr1cs/bn254"
)

func TestToMatrices(t *testing.T) {
	assert := require.New(t)
	f := cs.NewField()
	ccs := cs.NewConstraintSystem()

	x1, err := ccs.NewInputVariable(value(f, 3)) // column 1
	assert.NoError(err)
	w0, err := ccs.NewWitnessVariable(value(f, 9)) // column 2
	assert.NoError(err)

	// s = 2*x1 + 1 = 7; s*x1 = 3*w0 - 6 reads 21 = 21
	s, err := ccs.NewLinearCombination(ccs.Term(2, x1), ccs.Term(1, gr1cs.One()))
	assert.NoError(err)
	assert.NoError(ccs.EnforceConstraint(gr1cs.R1CSPredicateLabel,
		lcOf(f, s),
		lcOf(f, x1),
		gr1cs.LinearCombination[gr1cs.U64]{ccs.Term(3, w0), ccs.Term(-6, gr1cs.One())},
	))
	assert.NoError(ccs.Finalize())

	ok, err := ccs.IsSatisfied()
	assert.NoError(err)
	assert.True(ok)

	got, err := ccs.ToMatrices()
	assert.NoError(err)

	want := map[string][]gr1cs.Matrix[gr1cs.U64]{
		gr1cs.R1CSPredicateLabel: {
			{{{Coeff: f.One(), Column: 0}, {Coeff: f.FromInterface(2), Column: 1}}},
			{{{Coeff: f.One(), Column: 1}}},
			{{{Coeff: f.FromInterface(-6), Column: 0}, {Coeff: f.FromInterface(3), Column: 2}}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected matrices (-want +got):\n%s", diff)
	}

	assert.Equal(2, got[gr1cs.R1CSPredicateLabel][0].NbNonZero())
	assert.Equal(1, got[gr1cs.R1CSPredicateLabel][1].NbNonZero())
}

func TestToMatricesDropsZeroTerms(t *testing.T) {
	assert := require.New(t)
	f := cs.NewField()
	ccs := cs.NewConstraintSystem(gr1cs.WithMode(gr1cs.Setup))

	w, err := ccs.NewWitnessVariable(nil)
	assert.NoError(err)

	// w - w folds to a zero coefficient, the zero variable never gets a column
	cancelled := gr1cs.LinearCombination[gr1cs.U64]{ccs.Term(1, w), ccs.Term(-1, w)}
	zeroVar := gr1cs.LinearCombination[gr1cs.U64]{{Coeff: f.One(), Variable: gr1cs.Zero()}}
	assert.NoError(ccs.EnforceConstraint(gr1cs.R1CSPredicateLabel, cancelled, zeroVar, lcOf(f, w)))
	assert.NoError(ccs.Finalize())

	ms, err := ccs.ToMatrices()
	assert.NoError(err)
	rs := ms[gr1cs.R1CSPredicateLabel]
	assert.Len(rs[0][0], 0)
	assert.Len(rs[1][0], 0)
	assert.Equal(1, rs[2].NbNonZero())
}

func TestToMatricesWithoutConstruction(t *testing.T) {
	assert := require.New(t)
	f := cs.NewField()
	ccs := cs.NewConstraintSystem(gr1cs.WithoutMatrices())
	assert.False(ccs.ShouldConstructMatrices())

	x, err := ccs.NewInputVariable(value(f, 2))
	assert.NoError(err)
	w, err := ccs.NewWitnessVariable(value(f, 4))
	assert.NoError(err)
	assert.NoError(ccs.EnforceConstraint(gr1cs.R1CSPredicateLabel, lcOf(f, x), lcOf(f, x), lcOf(f, w)))
	assert.NoError(ccs.Finalize())

	// satisfaction checking still works through the value cache
	ok, err := ccs.IsSatisfied()
	assert.NoError(err)
	assert.True(ok)

	_, err = ccs.ToMatrices()
	assert.Error(err)
}
