package gr1cs

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestCoeffTableReserved(t *testing.T) {
	assert := require.New(t)
	table := NewCoeffTable(tf, 8)

	assert.Equal(int(NbReservedCoeffIds), table.Len())
	assert.Equal(CoeffIdOne, table.AddCoeff(tf, tf.One()))
	assert.Equal(CoeffIdMinusOne, table.AddCoeff(tf, tf.Neg(tf.One())))
	assert.Equal(int(NbReservedCoeffIds), table.Len(), "reserved values must not grow the table")

	assert.True(tf.IsOne(table.Coeff(CoeffIdOne)))
	assert.Equal(tf.Neg(tf.One()), table.Coeff(CoeffIdMinusOne))
}

func TestCoeffTableDedupe(t *testing.T) {
	assert := require.New(t)
	table := NewCoeffTable(tf, 8)

	a := table.AddCoeff(tf, U32{42})
	b := table.AddCoeff(tf, U32{7})
	assert.Equal(NbReservedCoeffIds, a)
	assert.Equal(NbReservedCoeffIds+1, b)

	assert.Equal(a, table.AddCoeff(tf, U32{42}), "interning must be idempotent")
	assert.Equal(int(NbReservedCoeffIds)+2, table.Len())

	assert.Equal(U32{42}, table.Coeff(a))
	assert.Equal(U32{7}, table.Coeff(b))
}

func TestCoeffTableInterningProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("interning is idempotent for all field values", prop.ForAll(
		func(v uint64) bool {
			table := NewCoeffTable(tf, 4)
			fv := tf.FromInterface(v)
			t1 := table.AddCoeff(tf, fv)
			n := table.Len()
			t2 := table.AddCoeff(tf, fv)
			return t1 == t2 && table.Len() == n && table.Coeff(t1) == fv
		},
		gen.UInt64(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
