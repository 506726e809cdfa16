package gr1cs

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/snarkcore/relations"
)

// U32 represents a field element on a single uint32 limb.
type U32 [1]uint32

// U64 represents a field element on 6 uint64 limbs. This fits all the wide
// scalar fields the library instantiates; concrete fields may use fewer limbs
// and leave the rest zero.
type U64 [6]uint64

// Element is the generic constraint for the coefficient representation a
// constraint system is instantiated with. It is implemented by U32 and U64.
type Element interface {
	U32 | U64
	// IsZero returns true if the element == 0
	IsZero() bool
	// Bytes returns the element as a big-endian byte slice of length 4 for
	// U32 and 48 for U64.
	Bytes() []byte
}

// NewElement creates an element from a big-endian byte slice of length 4 for
// U32 and 48 for U64. It panics on a wrong length.
//
// This is a free function rather than a method on Element so the constraint
// stays usable with value (non-pointer) type parameters.
func NewElement[E Element](b []byte) E {
	var e E
	switch t := any(&e).(type) {
	case *U32:
		if len(b) != 4 {
			panic(fmt.Sprintf("wrong length, expected 4 got %d", len(b)))
		}
		t[0] = binary.BigEndian.Uint32(b[0:4])
	case *U64:
		if len(b) != 48 {
			panic(fmt.Sprintf("wrong length, expected 48 got %d", len(b)))
		}
		t[0] = binary.BigEndian.Uint64(b[40:48])
		t[1] = binary.BigEndian.Uint64(b[32:40])
		t[2] = binary.BigEndian.Uint64(b[24:32])
		t[3] = binary.BigEndian.Uint64(b[16:24])
		t[4] = binary.BigEndian.Uint64(b[8:16])
		t[5] = binary.BigEndian.Uint64(b[0:8])
	default:
		panic(fmt.Sprintf("unsupported type %T", t))
	}
	return e
}

// FitsElement returns true if the given modulus is one of the fields the
// element representation E is meant for. Useful to type-switch at runtime
// when deserializing a system of unknown field.
func FitsElement[E Element](modulus *big.Int) bool {
	var e E
	switch any(e).(type) {
	case U32:
		for _, q := range relations.SmallFields() {
			if modulus.Cmp(q) == 0 {
				return true
			}
		}
		return false
	case U64:
		for _, q := range relations.ScalarFields() {
			if modulus.Cmp(q) == 0 {
				return true
			}
		}
		return false
	default:
		panic("unsupported type")
	}
}

// IsZero returns true if the element == 0
func (z U64) IsZero() bool {
	return (z[5] | z[4] | z[3] | z[2] | z[1] | z[0]) == 0
}

// Bytes returns the element as a big-endian byte slice
func (z U64) Bytes() []byte {
	var b [48]byte
	binary.BigEndian.PutUint64(b[40:48], z[0])
	binary.BigEndian.PutUint64(b[32:40], z[1])
	binary.BigEndian.PutUint64(b[24:32], z[2])
	binary.BigEndian.PutUint64(b[16:24], z[3])
	binary.BigEndian.PutUint64(b[8:16], z[4])
	binary.BigEndian.PutUint64(b[0:8], z[5])
	return b[:]
}

// IsZero returns true if the element == 0
func (z U32) IsZero() bool {
	return (z[0]) == 0
}

// Bytes returns the element as a big-endian byte slice
func (z U32) Bytes() []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[0:4], z[0])
	return b[:]
}

// Field is the arithmetic a constraint system needs on its coefficient
// representation. Implementations delegate to a concrete field (see the
// bn254, bls12-381 and babybear subpackages); the builder itself never looks
// inside an element.
type Field[E Element] interface {
	FromInterface(interface{}) E
	ToBigInt(E) *big.Int
	Mul(a, b E) E
	Add(a, b E) E
	Sub(a, b E) E
	Neg(a E) E
	Inverse(a E) (E, bool)
	One() E
	IsOne(E) bool
	String(E) string
	Uint64(E) (uint64, bool)
	// Modulus returns the field's modulus. It identifies the field in logs
	// and serialized headers.
	Modulus() *big.Int
}
