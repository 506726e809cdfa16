package gr1cs

import "fmt"

// Well-known predicate labels. Fresh systems pre-register the plain rank-1
// relation under R1CSPredicateLabel.
const (
	R1CSPredicateLabel  = "R1CS"
	SR1CSPredicateLabel = "SR1CS"
)

// PredicateKind discriminates the two relation kinds.
type PredicateKind uint8

const (
	// PredicateKindPolynomial relations require a multivariate polynomial
	// over the slot values to evaluate to zero.
	PredicateKindPolynomial PredicateKind = iota
	// PredicateKindLookup relations require the tuple of slot values to
	// belong to a fixed table.
	PredicateKindLookup
)

// Exponent is one factor of a monomial: argument slot raised to a power.
type Exponent struct {
	Slot  int
	Power int
}

// Monomial is one addend of a polynomial relation.
type Monomial[E Element] struct {
	Coeff   E
	Factors []Exponent
}

// Predicate is a named relation of fixed arity, either a polynomial that must
// vanish on the slot values or a lookup into a fixed table. The set of kinds
// is closed; all dispatch is a switch on Kind.
type Predicate[E Element] struct {
	arity int
	kind  PredicateKind
	poly  []Monomial[E]
	table [][]E
}

// NewPolynomialPredicate returns a polynomial relation of the given arity.
// Every monomial factor must reference a slot in [0, arity).
func NewPolynomialPredicate[E Element](arity int, monomials ...Monomial[E]) (Predicate[E], error) {
	if arity < 1 {
		return Predicate[E]{}, fmt.Errorf("predicate arity must be positive, got %d", arity)
	}
	for i, m := range monomials {
		for _, fac := range m.Factors {
			if fac.Slot < 0 || fac.Slot >= arity {
				return Predicate[E]{}, fmt.Errorf("monomial %d references slot %d, arity is %d", i, fac.Slot, arity)
			}
			if fac.Power < 0 {
				return Predicate[E]{}, fmt.Errorf("monomial %d has negative power %d", i, fac.Power)
			}
		}
	}
	return Predicate[E]{arity: arity, kind: PredicateKindPolynomial, poly: monomials}, nil
}

// NewLookupPredicate returns a lookup relation of the given arity. Every
// table row must have exactly arity entries.
func NewLookupPredicate[E Element](arity int, table [][]E) (Predicate[E], error) {
	if arity < 1 {
		return Predicate[E]{}, fmt.Errorf("predicate arity must be positive, got %d", arity)
	}
	for i, row := range table {
		if len(row) != arity {
			return Predicate[E]{}, fmt.Errorf("table row %d has %d entries, arity is %d", i, len(row), arity)
		}
	}
	return Predicate[E]{arity: arity, kind: PredicateKindLookup, table: table}, nil
}

// NewR1CSPredicate returns the plain rank-1 relation
// slot0*slot1 - slot2 = 0.
func NewR1CSPredicate[E Element](f Field[E]) Predicate[E] {
	p, err := NewPolynomialPredicate(3,
		Monomial[E]{Coeff: f.One(), Factors: []Exponent{{Slot: 0, Power: 1}, {Slot: 1, Power: 1}}},
		Monomial[E]{Coeff: f.Neg(f.One()), Factors: []Exponent{{Slot: 2, Power: 1}}},
	)
	if err != nil {
		panic(err)
	}
	return p
}

// NewSR1CSPredicate returns the square rank-1 relation slot0^2 - slot1 = 0.
// An equality x == w is expressed by sending x-w to slot 0 and the empty
// combination to slot 1.
func NewSR1CSPredicate[E Element](f Field[E]) Predicate[E] {
	p, err := NewPolynomialPredicate(2,
		Monomial[E]{Coeff: f.One(), Factors: []Exponent{{Slot: 0, Power: 2}}},
		Monomial[E]{Coeff: f.Neg(f.One()), Factors: []Exponent{{Slot: 1, Power: 1}}},
	)
	if err != nil {
		panic(err)
	}
	return p
}

// Arity returns the number of argument slots of the relation.
func (p *Predicate[E]) Arity() int { return p.arity }

// Kind returns the relation kind.
func (p *Predicate[E]) Kind() PredicateKind { return p.kind }

func (p *Predicate[E]) String() string {
	switch p.kind {
	case PredicateKindPolynomial:
		return fmt.Sprintf("polynomial relation of arity %d, %d monomials", p.arity, len(p.poly))
	case PredicateKindLookup:
		return fmt.Sprintf("lookup relation of arity %d, table of %d rows", p.arity, len(p.table))
	default:
		return "<invalid predicate>"
	}
}

// evalPolynomial evaluates the polynomial on the slot values.
func (p *Predicate[E]) evalPolynomial(f Field[E], slots []E) E {
	var acc E
	for _, m := range p.poly {
		term := m.Coeff
		for _, fac := range m.Factors {
			term = f.Mul(term, fieldPow(f, slots[fac.Slot], fac.Power))
		}
		acc = f.Add(acc, term)
	}
	return acc
}

func fieldPow[E Element](f Field[E], base E, power int) E {
	if power == 0 {
		return f.One()
	}
	r := base
	for i := 1; i < power; i++ {
		r = f.Mul(r, base)
	}
	return r
}

// predicateSystem is a registered predicate together with the constraints
// enforced on it. Constraints are stored column-major: one LcIndex slice per
// argument slot, all of equal length.
type predicateSystem[E Element] struct {
	predicate Predicate[E]
	slots     [][]LcIndex

	// lookup membership set, built on first satisfaction check
	tableSet map[string]struct{}
}

func newPredicateSystem[E Element](p Predicate[E]) *predicateSystem[E] {
	return &predicateSystem[E]{
		predicate: p,
		slots:     make([][]LcIndex, p.arity),
	}
}

func (ps *predicateSystem[E]) nbConstraints() int {
	return len(ps.slots[0])
}

// enforce appends one constraint. Arity is validated by the caller.
func (ps *predicateSystem[E]) enforce(indices []LcIndex) {
	for j, idx := range indices {
		ps.slots[j] = append(ps.slots[j], idx)
	}
}

// constraint returns the row view of constraint i, appended to buf.
func (ps *predicateSystem[E]) constraint(i int, buf []LcIndex) []LcIndex {
	for j := range ps.slots {
		buf = append(buf, ps.slots[j][i])
	}
	return buf
}

// isSatisfied evaluates one tuple of slot values against the relation.
func (ps *predicateSystem[E]) isSatisfied(f Field[E], slots []E) bool {
	switch ps.predicate.kind {
	case PredicateKindPolynomial:
		return ps.predicate.evalPolynomial(f, slots).IsZero()
	case PredicateKindLookup:
		if ps.tableSet == nil {
			ps.tableSet = make(map[string]struct{}, len(ps.predicate.table))
			for _, row := range ps.predicate.table {
				ps.tableSet[tupleKey(row)] = struct{}{}
			}
		}
		_, ok := ps.tableSet[tupleKey(slots)]
		return ok
	default:
		panic(fmt.Sprintf("gr1cs: unknown predicate kind %d", ps.predicate.kind))
	}
}

func tupleKey[E Element](slots []E) string {
	var key []byte
	for _, s := range slots {
		key = append(key, s.Bytes()...)
	}
	return string(key)
}

// whichIsUnsatisfied returns the index of the first constraint whose relation
// does not hold, or false if all constraints are satisfied.
func (ps *predicateSystem[E]) whichIsUnsatisfied(cs *ConstraintSystem[E]) (int, bool) {
	n := ps.nbConstraints()
	slots := make([]E, ps.predicate.arity)
	for i := 0; i < n; i++ {
		for j := range ps.slots {
			slots[j] = cs.lcValue(ps.slots[j][i])
		}
		if !ps.isSatisfied(cs.field, slots) {
			return i, true
		}
	}
	return 0, false
}
