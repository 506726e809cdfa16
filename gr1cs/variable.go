package gr1cs

import (
	"fmt"
	"strconv"
)

// LcIndex addresses a linear combination in the system's append-only table.
type LcIndex uint32

// VarKind discriminates the five kinds of Variable.
type VarKind uint8

const (
	KindZero VarKind = iota
	KindOne
	KindInstance
	KindWitness
	KindSymbolicLc
)

// Variable identifies a quantity a circuit can reference: the additive or
// multiplicative identity, a public (instance) input, a private (witness)
// input, or a symbolic reference to a linear combination.
//
// It is packed in a single uint64 with the kind in the top 3 bits and the
// index in the low 61 bits, so the natural integer order is
// Zero < One < Instance < Witness < SymbolicLc, each bucket ordered by index.
// Matrix column numbering relies on this order.
type Variable uint64

const (
	kindBits  = 3
	kindShift = 64 - kindBits
	indexMask = uint64(1)<<kindShift - 1
)

// Zero returns the additive identity variable.
func Zero() Variable { return Variable(uint64(KindZero) << kindShift) }

// One returns the multiplicative identity variable. It occupies matrix
// column 0.
func One() Variable { return Variable(uint64(KindOne) << kindShift) }

// NewInstance returns the instance (public input) variable with the given
// index. Instance indices start at 1; index 0 is the constant One, so an
// instance variable's index is also its matrix column.
func NewInstance(index int) Variable { return pack(KindInstance, index) }

// NewWitness returns the witness (private input) variable with the given
// index. Witness indices start at 0.
func NewWitness(index int) Variable { return pack(KindWitness, index) }

func newSymbolicLc(idx LcIndex) Variable { return pack(KindSymbolicLc, int(idx)) }

func pack(k VarKind, index int) Variable {
	if index < 0 || uint64(index) > indexMask {
		panic(fmt.Sprintf("gr1cs: variable index %d out of range", index))
	}
	return Variable(uint64(k)<<kindShift | uint64(index))
}

// Kind returns the variable's kind tag.
func (v Variable) Kind() VarKind { return VarKind(uint64(v) >> kindShift) }

// Index returns the variable's index within its kind. It is 0 for Zero and
// One.
func (v Variable) Index() int { return int(uint64(v) & indexMask) }

// LcIndex returns the linear combination index a SymbolicLc variable wraps,
// and false for any other kind.
func (v Variable) LcIndex() (LcIndex, bool) {
	if v.Kind() != KindSymbolicLc {
		return 0, false
	}
	return LcIndex(v.Index()), true
}

// IsZero reports whether v is the additive identity.
func (v Variable) IsZero() bool { return v.Kind() == KindZero }

// IsOne reports whether v is the multiplicative identity.
func (v Variable) IsOne() bool { return v.Kind() == KindOne }

// IsInstance reports whether v is an instance variable.
func (v Variable) IsInstance() bool { return v.Kind() == KindInstance }

// IsWitness reports whether v is a witness variable.
func (v Variable) IsWitness() bool { return v.Kind() == KindWitness }

// IsSymbolicLc reports whether v references a linear combination.
func (v Variable) IsSymbolicLc() bool { return v.Kind() == KindSymbolicLc }

// column returns the matrix column of v given the number of instance columns
// (the constant One included). Zero and SymbolicLc variables have no column.
func (v Variable) column(nbInstance int) (int, bool) {
	switch v.Kind() {
	case KindOne:
		return 0, true
	case KindInstance:
		return v.Index(), true
	case KindWitness:
		return v.Index() + nbInstance, true
	default:
		return 0, false
	}
}

func (v Variable) String() string {
	switch v.Kind() {
	case KindZero:
		return "0"
	case KindOne:
		return "1"
	case KindInstance:
		return "x" + strconv.Itoa(v.Index())
	case KindWitness:
		return "w" + strconv.Itoa(v.Index())
	case KindSymbolicLc:
		return "lc" + strconv.Itoa(v.Index())
	default:
		return "<invalid>"
	}
}
