package gr1cs

// Reserved coefficient tokens. They are answered without a table lookup and
// are the same in every constraint system.
const (
	// CoeffIdOne is the token of the multiplicative identity.
	CoeffIdOne uint32 = iota
	// CoeffIdMinusOne is the token of the additive inverse of one.
	CoeffIdMinusOne

	NbReservedCoeffIds
)

// CoeffTable deduplicates the coefficient values of a constraint system and
// stands for each by a small uint32 token. Tokens are dense, insertion
// ordered and meaningless outside the owning table.
type CoeffTable[E Element] struct {
	coefficients []E
	mCoeffs      map[E]uint32
	minusOne     E
}

// NewCoeffTable returns a table with the reserved tokens populated.
func NewCoeffTable[E Element](f Field[E], capacity int) CoeffTable[E] {
	t := CoeffTable[E]{
		coefficients: make([]E, NbReservedCoeffIds, int(NbReservedCoeffIds)+capacity),
		mCoeffs:      make(map[E]uint32, capacity),
		minusOne:     f.Neg(f.One()),
	}
	t.coefficients[CoeffIdOne] = f.One()
	t.coefficients[CoeffIdMinusOne] = t.minusOne
	return t
}

// AddCoeff interns a coefficient value and returns its token. Interning is
// idempotent; +1 and -1 hit the reserved tokens without growing the table.
func (t *CoeffTable[E]) AddCoeff(f Field[E], c E) uint32 {
	if f.IsOne(c) {
		return CoeffIdOne
	}
	if c == t.minusOne {
		return CoeffIdMinusOne
	}
	if id, ok := t.mCoeffs[c]; ok {
		return id
	}
	id := uint32(len(t.coefficients))
	t.coefficients = append(t.coefficients, c)
	t.mCoeffs[c] = id
	return id
}

// Coeff returns the value behind a token. The token must come from this
// table; a dangling token is an internal invariant violation and panics.
func (t *CoeffTable[E]) Coeff(cid uint32) E {
	return t.coefficients[cid]
}

// Len returns the number of distinct coefficients, reserved tokens included.
func (t *CoeffTable[E]) Len() int {
	return len(t.coefficients)
}
