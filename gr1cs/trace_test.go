package gr1cs_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/snarkcore/relations/gr1cs"
	cs "github.com/snarkcore/relations/gr1cs/bn254"
)

func TestTracing(t *testing.T) {
	assert := require.New(t)
	f := cs.NewField()
	ccs := cs.NewConstraintSystem(gr1cs.WithTracing())

	x, err := ccs.NewInputVariable(value(f, 2))
	assert.NoError(err)
	w, err := ccs.NewWitnessVariable(value(f, 4))
	assert.NoError(err)
	bad, err := ccs.NewWitnessVariable(value(f, 5))
	assert.NoError(err)

	// x*x = w holds, the constraint inside the namespaces does not
	assert.NoError(ccs.EnforceConstraint(gr1cs.R1CSPredicateLabel, lcOf(f, x), lcOf(f, x), lcOf(f, w)))
	ccs.EnterNamespace("mul")
	ccs.EnterNamespace("check")
	assert.NoError(ccs.EnforceConstraint(gr1cs.R1CSPredicateLabel, lcOf(f, x), lcOf(f, x), lcOf(f, bad)))
	ccs.LeaveNamespace()
	ccs.LeaveNamespace()
	assert.NoError(ccs.Finalize())

	desc, found, err := ccs.WhichIsUnsatisfied()
	assert.NoError(err)
	assert.True(found)
	assert.True(strings.HasPrefix(desc, "R1CS - 1"), desc)
	assert.Contains(desc, "in mul/check")
}

func TestTracingDisabled(t *testing.T) {
	assert := require.New(t)
	f := cs.NewField()
	ccs := cs.NewConstraintSystem()

	x, err := ccs.NewInputVariable(value(f, 2))
	assert.NoError(err)
	bad, err := ccs.NewWitnessVariable(value(f, 5))
	assert.NoError(err)

	// namespaces are a no-op without tracing
	ccs.EnterNamespace("mul")
	assert.NoError(ccs.EnforceConstraint(gr1cs.R1CSPredicateLabel, lcOf(f, x), lcOf(f, x), lcOf(f, bad)))
	ccs.LeaveNamespace()
	assert.NoError(ccs.Finalize())

	desc, found, err := ccs.WhichIsUnsatisfied()
	assert.NoError(err)
	assert.True(found)
	assert.Equal("R1CS - 0", desc)
}
