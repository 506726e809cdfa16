package gr1cs_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/snarkcore/relations/gr1cs"
	babybearcs "github.com/snarkcore/relations/gr1cs/babybear"
	cs "github.com/snarkcore/relations/gr1cs/bn254"
)

// richSystem builds a system touching every serialized section: two
// predicates besides the built-in one, a lookup table, shared combinations
// and a handful of distinct coefficients.
func richSystem(t *testing.T) *gr1cs.ConstraintSystem[gr1cs.U64] {
	t.Helper()
	assert := require.New(t)
	ccs := cs.NewConstraintSystem(gr1cs.WithOptimizationGoal(gr1cs.GoalWeight))
	f := ccs.Field()

	xor, err := xorPredicate(f)
	assert.NoError(err)
	assert.NoError(ccs.RegisterPredicate("XOR", xor))
	assert.NoError(ccs.RegisterPredicate(gr1cs.SR1CSPredicateLabel, gr1cs.NewSR1CSPredicate(f)))

	x1, err := ccs.NewInputVariable(value(f, 3))
	assert.NoError(err)
	w0, err := ccs.NewWitnessVariable(value(f, 4))
	assert.NoError(err)
	w1, err := ccs.NewWitnessVariable(value(f, 144))
	assert.NoError(err)
	bit, err := ccs.NewWitnessVariable(value(f, 1))
	assert.NoError(err)

	s, err := ccs.NewLinearCombination(ccs.Term(2, x1), ccs.Term(5, w0), ccs.Term(-14, gr1cs.One()))
	assert.NoError(err)

	// s = 12, s*s = 144
	assert.NoError(ccs.EnforceConstraint(gr1cs.R1CSPredicateLabel, lcOf(f, s), lcOf(f, s), lcOf(f, w1)))
	assert.NoError(ccs.EnforceConstraint(gr1cs.SR1CSPredicateLabel, lcOf(f, s), lcOf(f, w1)))
	assert.NoError(ccs.EnforceConstraint("XOR", lcOf(f, bit), lcOf(f, bit), gr1cs.LinearCombination[gr1cs.U64]{}))
	assert.NoError(ccs.Finalize())

	ok, err := ccs.IsSatisfied()
	assert.NoError(err)
	assert.True(ok)
	return ccs
}

func TestSerializationRoundTrip(t *testing.T) {
	assert := require.New(t)
	ccs := richSystem(t)

	var buf bytes.Buffer
	n, err := ccs.WriteTo(&buf)
	assert.NoError(err)
	assert.Equal(int64(buf.Len()), n)

	reread := cs.NewConstraintSystem(gr1cs.WithMode(gr1cs.Setup))
	m, err := reread.ReadFrom(bytes.NewReader(buf.Bytes()))
	assert.NoError(err)
	assert.Equal(n, m)

	assert.True(reread.IsFinalized())
	assert.Equal(gr1cs.Setup, reread.Mode())
	assert.True(reread.ShouldConstructMatrices())
	assert.Equal(ccs.OptimizationGoal(), reread.OptimizationGoal())
	assert.Equal(ccs.NbInstanceVariables(), reread.NbInstanceVariables())
	assert.Equal(ccs.NbWitnessVariables(), reread.NbWitnessVariables())
	assert.Equal(ccs.NbConstraints(), reread.NbConstraints())
	assert.Equal(ccs.NbLinearCombinations(), reread.NbLinearCombinations())
	assert.Equal(ccs.NbCoefficients(), reread.NbCoefficients())
	assert.Equal(ccs.PredicateLabels(), reread.PredicateLabels())
	for _, label := range ccs.PredicateLabels() {
		assert.Equal(ccs.NbPredicateConstraints(label), reread.NbPredicateConstraints(label))
		assert.Equal(ccs.PredicateConstraints(label), reread.PredicateConstraints(label))
	}

	want, err := ccs.ToMatrices()
	assert.NoError(err)
	got, err := reread.ToMatrices()
	assert.NoError(err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("matrices differ after round trip (-want +got):\n%s", diff)
	}

	// no assignment travels with the relation
	_, err = reread.InstanceAssignment()
	assert.ErrorIs(err, gr1cs.ErrAssignmentMissing)
}

func TestSerializationSmallField(t *testing.T) {
	assert := require.New(t)
	f := babybearcs.NewField()
	sys := babybearcs.NewConstraintSystem(gr1cs.WithMode(gr1cs.Setup))

	x, err := sys.NewInputVariable(nil)
	assert.NoError(err)
	w, err := sys.NewWitnessVariable(nil)
	assert.NoError(err)
	lc := gr1cs.LinearCombination[gr1cs.U32]{{Coeff: f.FromInterface(7), Variable: x}}
	out := gr1cs.LinearCombination[gr1cs.U32]{{Coeff: f.One(), Variable: w}}
	assert.NoError(sys.EnforceConstraint(gr1cs.R1CSPredicateLabel, lc, lc, out))
	assert.NoError(sys.Finalize())

	data, err := sys.ToBytes()
	assert.NoError(err)

	q, err := gr1cs.PeekModulus(data)
	assert.NoError(err)
	assert.Equal(0, q.Cmp(f.Modulus()))

	reread := babybearcs.NewConstraintSystem(gr1cs.WithMode(gr1cs.Setup))
	n, err := reread.FromBytes(data)
	assert.NoError(err)
	assert.Equal(len(data), n)
	assert.Equal(sys.NbConstraints(), reread.NbConstraints())
	assert.Equal(sys.NbCoefficients(), reread.NbCoefficients())
}

func TestPeekModulus(t *testing.T) {
	assert := require.New(t)
	ccs := richSystem(t)

	data, err := ccs.ToBytes()
	assert.NoError(err)

	q, err := gr1cs.PeekModulus(data)
	assert.NoError(err)
	assert.Equal(0, q.Cmp(ccs.Modulus()))

	_, err = gr1cs.PeekModulus(data[:8])
	assert.Error(err)
}

func TestSerializationFieldMismatch(t *testing.T) {
	assert := require.New(t)
	ccs := richSystem(t)

	data, err := ccs.ToBytes()
	assert.NoError(err)

	other := babybearcs.NewConstraintSystem(gr1cs.WithMode(gr1cs.Setup))
	_, err = other.FromBytes(data)
	assert.Error(err, "modulus mismatch must be rejected")
}

func TestSerializationErrors(t *testing.T) {
	assert := require.New(t)
	f := cs.NewField()

	// not finalized
	fresh := cs.NewConstraintSystem()
	_, err := fresh.ToBytes()
	assert.Error(err)

	// finalized without matrices
	bare := cs.NewConstraintSystem(gr1cs.WithoutMatrices())
	x, err := bare.NewInputVariable(value(f, 2))
	assert.NoError(err)
	w, err := bare.NewWitnessVariable(value(f, 4))
	assert.NoError(err)
	assert.NoError(bare.EnforceConstraint(gr1cs.R1CSPredicateLabel, lcOf(f, x), lcOf(f, x), lcOf(f, w)))
	assert.NoError(bare.Finalize())
	_, err = bare.ToBytes()
	assert.Error(err)

	// truncated payload
	ccs := richSystem(t)
	data, err := ccs.ToBytes()
	assert.NoError(err)
	reread := cs.NewConstraintSystem(gr1cs.WithMode(gr1cs.Setup))
	_, err = reread.FromBytes(data[:16])
	assert.Error(err)
	_, err = reread.FromBytes(data[:len(data)-1])
	assert.Error(err)
}
