package gr1cs

import (
	"github.com/bits-and-blooms/bitset"
)

// inlineAllLcs rewrites the arena so every combination contains only
// concrete variables, substituting symbolic references through the already
// rewritten prefix. Indices and count are preserved, so constraint slots and
// the value cache stay valid.
func (cs *ConstraintSystem[E]) inlineAllLcs() {
	old := cs.lcs
	nw := newLcTable(old.nbTerms())
	for i := 0; i < old.len(); i++ {
		lc := cs.flatten(&old, &nw, LcIndex(i))
		cs.pushFlat(&nw, lc)
	}
	cs.lcs = nw
}

// flatten expands entry i of old against the rewritten prefix held in nw.
// References point strictly backwards, so one level of substitution through
// nw is always enough.
func (cs *ConstraintSystem[E]) flatten(old, nw *lcTable, i LcIndex) LinearCombination[E] {
	cids, vars := old.terms(i)
	lc := make(LinearCombination[E], 0, len(cids))
	for k := range cids {
		c := cs.coeffs.Coeff(cids[k])
		idx, ok := vars[k].LcIndex()
		if !ok {
			lc = append(lc, Term[E]{Coeff: c, Variable: vars[k]})
			continue
		}
		ncids, nvars := nw.terms(idx)
		for m := range ncids {
			lc = append(lc, Term[E]{
				Coeff:    cs.field.Mul(c, cs.coeffs.Coeff(ncids[m])),
				Variable: nvars[m],
			})
		}
	}
	return compactify(cs.field, lc)
}

// pushFlat interns a builder-form combination into a table without touching
// the value cache.
func (cs *ConstraintSystem[E]) pushFlat(t *lcTable, lc LinearCombination[E]) LcIndex {
	cs.scratchCids = cs.scratchCids[:0]
	cs.scratchVars = cs.scratchVars[:0]
	for _, term := range lc {
		cs.scratchCids = append(cs.scratchCids, cs.coeffs.AddCoeff(cs.field, term.Coeff))
		cs.scratchVars = append(cs.scratchVars, term.Variable)
	}
	return t.push(cs.scratchCids, cs.scratchVars)
}

// outlineLcs is the GoalWeight finalize pass. Walking the arena in creation
// order, each combination is flattened; a combination of inlined length l
// with u uses (references from other combinations plus constraint slots) is
// materialized behind a fresh witness when u*l > u+l+2, its arena entry
// rewritten to 1*w and a definition constraint lc*1 = w appended on the
// plain rank-1 predicate. Everything else is inlined. The decision depends
// only on the arena, so prove-only runs allocate the same witnesses as a
// setup run of the same circuit.
func (cs *ConstraintSystem[E]) outlineLcs() error {
	if !cs.HasPredicate(R1CSPredicateLabel) {
		// no definition relation to target; inlining preserves semantics
		cs.log.Warn().Str("predicate", R1CSPredicateLabel).
			Msg("definition predicate not registered, outlining degraded to inlining")
		cs.inlineAllLcs()
		return nil
	}

	uses := make([]uint32, cs.lcs.len())
	for _, v := range cs.lcs.vars {
		if i, ok := v.LcIndex(); ok {
			uses[i]++
		}
	}
	for _, ps := range cs.predicates {
		for _, slot := range ps.slots {
			for _, idx := range slot {
				uses[idx]++
			}
		}
	}

	type definition struct {
		lc      LinearCombination[E]
		witness Variable
	}
	var defs []definition

	old := cs.lcs
	nw := newLcTable(old.nbTerms())
	one := cs.field.One()
	for i := 0; i < old.len(); i++ {
		lc := cs.flatten(&old, &nw, LcIndex(i))
		u, l := int(uses[i]), len(lc)
		if u*l > u+l+2 {
			val := one
			if cs.generatesAssignments() {
				val = cs.evalTerms(lc)
			}
			w, err := cs.NewWitnessVariable(func() (E, error) { return val, nil })
			if err != nil {
				return err
			}
			defs = append(defs, definition{lc: lc, witness: w})
			cs.pushFlat(&nw, LinearCombination[E]{{Coeff: one, Variable: w}})
			continue
		}
		cs.pushFlat(&nw, lc)
	}
	cs.lcs = nw

	for _, d := range defs {
		err := cs.EnforceConstraint(R1CSPredicateLabel,
			d.lc,
			LinearCombination[E]{{Coeff: one, Variable: One()}},
			LinearCombination[E]{{Coeff: one, Variable: d.witness}},
		)
		if err != nil {
			return err
		}
	}
	if len(defs) > 0 {
		cs.log.Debug().Int("nbOutlined", len(defs)).Msg("materialized shared linear combinations")
	}
	return nil
}

// warnUnconstrained logs the witness variables that appear in no constraint.
// Combinations are walked through symbolic references, so the check is exact
// even on a system whose arena was never inlined.
func (cs *ConstraintSystem[E]) warnUnconstrained() {
	if cs.nbWitness == 0 {
		return
	}
	seen := bitset.New(uint(cs.nbWitness))
	visited := bitset.New(uint(cs.lcs.len()))
	var work []LcIndex
	for _, ps := range cs.predicates {
		for _, slot := range ps.slots {
			work = append(work, slot...)
		}
	}
	for len(work) > 0 {
		idx := work[len(work)-1]
		work = work[:len(work)-1]
		if visited.Test(uint(idx)) {
			continue
		}
		visited.Set(uint(idx))
		_, vars := cs.lcs.terms(idx)
		for _, v := range vars {
			if ref, ok := v.LcIndex(); ok {
				work = append(work, ref)
				continue
			}
			if v.IsWitness() {
				seen.Set(uint(v.Index()))
			}
		}
	}
	if n := uint(cs.nbWitness) - seen.Count(); n > 0 {
		first, _ := seen.NextClear(0)
		cs.log.Warn().
			Uint("nbUnconstrained", n).
			Str("first", NewWitness(int(first)).String()).
			Msg("witness variables appear in no constraint")
	}
}
