// Package cs instantiates constraint systems over the BLS12-381 scalar field.
package cs

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/snarkcore/relations/gr1cs"
	"github.com/snarkcore/relations/internal/utils"
)

// NewConstraintSystem builds an empty system over the BLS12-381 scalar field.
func NewConstraintSystem(opts ...gr1cs.Option) *gr1cs.ConstraintSystem[gr1cs.U64] {
	return gr1cs.NewConstraintSystem(NewField(), opts...)
}

// NewField returns the BLS12-381 scalar field arithmetic.
func NewField() gr1cs.Field[gr1cs.U64] {
	return &field{}
}

type field struct{}

var _ gr1cs.Field[gr1cs.U64] = &field{}

func toElement(c gr1cs.U64) fr.Element {
	var e fr.Element
	copy(e[:], c[:fr.Limbs])
	return e
}

func fromElement(e fr.Element) gr1cs.U64 {
	var c gr1cs.U64
	copy(c[:], e[:])
	return c
}

func (engine *field) FromInterface(i interface{}) gr1cs.U64 {
	var e fr.Element
	if _, err := e.SetInterface(i); err != nil {
		// need to clean the input before mapping it to a field element
		b := utils.FromInterface(i)
		e.SetBigInt(&b)
	}
	return fromElement(e)
}

func (engine *field) ToBigInt(c gr1cs.U64) *big.Int {
	e := toElement(c)
	r := new(big.Int)
	e.BigInt(r)
	return r
}

func (engine *field) Mul(a, b gr1cs.U64) gr1cs.U64 {
	ea, eb := toElement(a), toElement(b)
	ea.Mul(&ea, &eb)
	return fromElement(ea)
}

func (engine *field) Add(a, b gr1cs.U64) gr1cs.U64 {
	ea, eb := toElement(a), toElement(b)
	ea.Add(&ea, &eb)
	return fromElement(ea)
}

func (engine *field) Sub(a, b gr1cs.U64) gr1cs.U64 {
	ea, eb := toElement(a), toElement(b)
	ea.Sub(&ea, &eb)
	return fromElement(ea)
}

func (engine *field) Neg(a gr1cs.U64) gr1cs.U64 {
	e := toElement(a)
	e.Neg(&e)
	return fromElement(e)
}

func (engine *field) Inverse(a gr1cs.U64) (gr1cs.U64, bool) {
	if a.IsZero() {
		return a, false
	}
	e := toElement(a)
	e.Inverse(&e)
	return fromElement(e), true
}

func (engine *field) One() gr1cs.U64 {
	var e fr.Element
	e.SetOne()
	return fromElement(e)
}

func (engine *field) IsOne(a gr1cs.U64) bool {
	e := toElement(a)
	return e.IsOne()
}

func (engine *field) String(a gr1cs.U64) string {
	e := toElement(a)
	return e.String()
}

func (engine *field) Uint64(a gr1cs.U64) (uint64, bool) {
	e := toElement(a)
	if !e.IsUint64() {
		return 0, false
	}
	return e.Uint64(), true
}

func (engine *field) Modulus() *big.Int {
	return fr.Modulus()
}
