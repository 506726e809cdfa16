// Package cs instantiates constraint systems over the BabyBear field, a
// 31-bit prime field carried on a single uint32 limb.
package cs

import (
	"math/big"

	"github.com/consensys/gnark-crypto/field/babybear"

	"github.com/snarkcore/relations/gr1cs"
	"github.com/snarkcore/relations/internal/utils"
)

// NewConstraintSystem builds an empty system over the BabyBear field.
func NewConstraintSystem(opts ...gr1cs.Option) *gr1cs.ConstraintSystem[gr1cs.U32] {
	return gr1cs.NewConstraintSystem(NewField(), opts...)
}

// NewField returns the BabyBear field arithmetic.
func NewField() gr1cs.Field[gr1cs.U32] {
	return &field{}
}

type field struct{}

var _ gr1cs.Field[gr1cs.U32] = &field{}

func toElement(c gr1cs.U32) babybear.Element {
	var e babybear.Element
	copy(e[:], c[:babybear.Limbs])
	return e
}

func fromElement(e babybear.Element) gr1cs.U32 {
	var c gr1cs.U32
	copy(c[:], e[:])
	return c
}

func (engine *field) FromInterface(i interface{}) gr1cs.U32 {
	var e babybear.Element
	if _, err := e.SetInterface(i); err != nil {
		// need to clean the input before mapping it to a field element
		b := utils.FromInterface(i)
		e.SetBigInt(&b)
	}
	return fromElement(e)
}

func (engine *field) ToBigInt(c gr1cs.U32) *big.Int {
	e := toElement(c)
	r := new(big.Int)
	e.BigInt(r)
	return r
}

func (engine *field) Mul(a, b gr1cs.U32) gr1cs.U32 {
	ea, eb := toElement(a), toElement(b)
	ea.Mul(&ea, &eb)
	return fromElement(ea)
}

func (engine *field) Add(a, b gr1cs.U32) gr1cs.U32 {
	ea, eb := toElement(a), toElement(b)
	ea.Add(&ea, &eb)
	return fromElement(ea)
}

func (engine *field) Sub(a, b gr1cs.U32) gr1cs.U32 {
	ea, eb := toElement(a), toElement(b)
	ea.Sub(&ea, &eb)
	return fromElement(ea)
}

func (engine *field) Neg(a gr1cs.U32) gr1cs.U32 {
	e := toElement(a)
	e.Neg(&e)
	return fromElement(e)
}

func (engine *field) Inverse(a gr1cs.U32) (gr1cs.U32, bool) {
	if a.IsZero() {
		return a, false
	}
	e := toElement(a)
	e.Inverse(&e)
	return fromElement(e), true
}

func (engine *field) One() gr1cs.U32 {
	var e babybear.Element
	e.SetOne()
	return fromElement(e)
}

func (engine *field) IsOne(a gr1cs.U32) bool {
	e := toElement(a)
	return e.IsOne()
}

func (engine *field) String(a gr1cs.U32) string {
	e := toElement(a)
	return e.String()
}

func (engine *field) Uint64(a gr1cs.U32) (uint64, bool) {
	e := toElement(a)
	if !e.IsUint64() {
		return 0, false
	}
	return e.Uint64(), true
}

func (engine *field) Modulus() *big.Int {
	return babybear.Modulus()
}
