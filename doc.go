// Package relations provides the constraint-definition front end shared by
// SNARK proving backends: circuits declare variables and algebraic relations
// through a generalized rank-1 constraint system (GR1CS) builder, which
// deduplicates coefficients and linear combinations, dispatches constraints to
// named fixed-arity predicates (polynomial relations or table lookups), and
// exports sparse matrices and satisfying assignments.
//
// The builder lives in the gr1cs package; per-field instantiations are under
// gr1cs/bn254, gr1cs/bls12-381 and gr1cs/babybear.
package relations

import (
	"math/big"

	"github.com/blang/semver/v4"
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/field/babybear"
)

var Version = semver.MustParse("0.2.0")

// ScalarFields returns the moduli of the wide (multi-limb) scalar fields the
// library ships constraint-system instantiations for.
func ScalarFields() []*big.Int {
	return []*big.Int{
		ecc.BN254.ScalarField(),
		ecc.BLS12_381.ScalarField(),
	}
}

// SmallFields returns the moduli of the single-limb fields the library ships
// constraint-system instantiations for.
func SmallFields() []*big.Int {
	return []*big.Int{
		babybear.Modulus(),
	}
}
