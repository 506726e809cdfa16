package gr1cs

import (
	"math/big"
	"strconv"

	"github.com/snarkcore/relations/internal/utils"
)

// testModulus is the largest prime below 2^16, small enough that test
// expectations stay readable in decimal.
const testModulus = 65521

// modField implements Field[U32] over testModulus so the package tests run
// without pulling in a per-curve instantiation.
type modField struct{}

var tf Field[U32] = modField{}

func (modField) FromInterface(i interface{}) U32 {
	b := utils.FromInterface(i)
	b.Mod(&b, big.NewInt(testModulus))
	return U32{uint32(b.Uint64())}
}

func (modField) ToBigInt(e U32) *big.Int {
	return new(big.Int).SetUint64(uint64(e[0]))
}

func (modField) Mul(a, b U32) U32 {
	return U32{uint32(uint64(a[0]) * uint64(b[0]) % testModulus)}
}

func (modField) Add(a, b U32) U32 {
	return U32{(a[0] + b[0]) % testModulus}
}

func (modField) Sub(a, b U32) U32 {
	return U32{(a[0] + testModulus - b[0]) % testModulus}
}

func (modField) Neg(a U32) U32 {
	return U32{(testModulus - a[0]) % testModulus}
}

func (modField) Inverse(a U32) (U32, bool) {
	if a[0] == 0 {
		return a, false
	}
	r := new(big.Int).ModInverse(new(big.Int).SetUint64(uint64(a[0])), big.NewInt(testModulus))
	return U32{uint32(r.Uint64())}, true
}

func (modField) One() U32 { return U32{1} }

func (modField) IsOne(e U32) bool { return e[0] == 1 }

func (modField) String(e U32) string { return strconv.FormatUint(uint64(e[0]), 10) }

func (modField) Uint64(e U32) (uint64, bool) { return uint64(e[0]), true }

func (modField) Modulus() *big.Int { return big.NewInt(testModulus) }
