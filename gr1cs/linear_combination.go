package gr1cs

import (
	"sort"
	"strings"
)

// Term is one addend of a linear combination: a coefficient times a variable.
type Term[E Element] struct {
	Coeff    E
	Variable Variable
}

// LinearCombination is the builder-facing form of a weighted sum of
// variables. The stored form inside a constraint system is interned and
// addressed by LcIndex; see ConstraintSystem.NewLinearCombination.
type LinearCombination[E Element] []Term[E]

// Clone returns a deep copy of the linear combination.
func (l LinearCombination[E]) Clone() LinearCombination[E] {
	out := make(LinearCombination[E], len(l))
	copy(out, l)
	return out
}

// String renders the combination for diagnostics, resolving coefficient
// values through the field.
func (l LinearCombination[E]) String(f Field[E]) string {
	if len(l) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, t := range l {
		if i > 0 {
			sb.WriteString(" + ")
		}
		if !f.IsOne(t.Coeff) {
			sb.WriteString(f.String(t.Coeff))
			sb.WriteString("*")
		}
		sb.WriteString(t.Variable.String())
	}
	return sb.String()
}

// compactify sorts terms by variable order and folds duplicate variables by
// summing their coefficients. It mutates l and returns the shortened slice.
// Zero coefficients are kept; matrix export drops them.
func compactify[E Element](f Field[E], l LinearCombination[E]) LinearCombination[E] {
	if len(l) <= 1 {
		return l
	}
	sort.Slice(l, func(i, j int) bool { return l[i].Variable < l[j].Variable })
	j := 0
	for i := 1; i < len(l); i++ {
		if l[i].Variable == l[j].Variable {
			l[j].Coeff = f.Add(l[j].Coeff, l[i].Coeff)
			continue
		}
		j++
		l[j] = l[i]
	}
	return l[:j+1]
}

// SumVars returns the linear combination summing the given variables with
// unit coefficients.
func SumVars[E Element](f Field[E], vs ...Variable) LinearCombination[E] {
	l := make(LinearCombination[E], 0, len(vs))
	one := f.One()
	for _, v := range vs {
		l = append(l, Term[E]{Coeff: one, Variable: v})
	}
	return compactify(f, l)
}

// DiffVars returns the linear combination a - b.
func DiffVars[E Element](f Field[E], a, b Variable) LinearCombination[E] {
	l := LinearCombination[E]{
		{Coeff: f.One(), Variable: a},
		{Coeff: f.Neg(f.One()), Variable: b},
	}
	return compactify(f, l)
}
