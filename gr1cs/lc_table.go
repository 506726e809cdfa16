package gr1cs

import "fmt"

// lcTable is the append-only arena holding every linear combination of a
// constraint system in compressed sparse form: parallel slices of interned
// coefficient tokens and variables, plus per-combination offsets.
// offsets[0] is always 0 and len(offsets) is the number of combinations
// plus one, so combination i spans [offsets[i], offsets[i+1]).
type lcTable struct {
	coeffs  []uint32
	vars    []Variable
	offsets []uint64
}

func newLcTable(capacity int) lcTable {
	return lcTable{
		coeffs:  make([]uint32, 0, capacity),
		vars:    make([]Variable, 0, capacity),
		offsets: append(make([]uint64, 0, capacity+1), 0),
	}
}

// push appends one combination and returns its index. cids and vs are
// parallel and already canonicalized.
func (t *lcTable) push(cids []uint32, vs []Variable) LcIndex {
	t.coeffs = append(t.coeffs, cids...)
	t.vars = append(t.vars, vs...)
	t.offsets = append(t.offsets, uint64(len(t.coeffs)))
	return LcIndex(len(t.offsets) - 2)
}

// terms returns the token and variable subslices of combination i. The
// slices alias the arena; callers must not grow them.
func (t *lcTable) terms(i LcIndex) ([]uint32, []Variable) {
	if int(i) >= t.len() {
		panic(fmt.Sprintf("gr1cs: dangling LcIndex %d (table has %d entries)", i, t.len()))
	}
	start, end := t.offsets[i], t.offsets[i+1]
	return t.coeffs[start:end], t.vars[start:end]
}

// len returns the number of stored combinations.
func (t *lcTable) len() int {
	return len(t.offsets) - 1
}

// nbTerms returns the total number of stored terms across all combinations.
func (t *lcTable) nbTerms() int {
	return len(t.coeffs)
}

// rewriteVariables applies fn to every stored variable in place. Used by
// instance outlining to redirect instance references to witnesses.
func (t *lcTable) rewriteVariables(fn func(Variable) Variable) {
	for i := range t.vars {
		t.vars[i] = fn(t.vars[i])
	}
}
