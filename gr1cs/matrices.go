package gr1cs

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// MatrixEntry is one nonzero coefficient of a sparse matrix row.
type MatrixEntry[E Element] struct {
	Coeff  E
	Column int
}

// Matrix is a sparse matrix in row-major form. Entries within a row are
// ordered by ascending column.
type Matrix[E Element] [][]MatrixEntry[E]

// NbNonZero returns the number of stored entries.
func (m Matrix[E]) NbNonZero() int {
	n := 0
	for _, row := range m {
		n += len(row)
	}
	return n
}

// ToMatrices exports the finalized system in sparse form, one matrix group
// per registered predicate: an arity-k predicate with n constraints yields k
// matrices of n rows each, where row i of matrix j expands the combination
// enforced in slot j of constraint i. Column 0 is the constant one, columns
// 1..NbInstanceVariables-1 are the instance and the remaining columns the
// witness, matching InstanceAssignment and WitnessAssignment.
func (cs *ConstraintSystem[E]) ToMatrices() (map[string][]Matrix[E], error) {
	if cs == nil {
		return nil, ErrMissingConstraintSystem
	}
	if !cs.constructMatrices {
		return nil, fmt.Errorf("matrices were not constructed in this run")
	}

	results := make([][]Matrix[E], len(cs.labels))
	var g errgroup.Group
	for li := range cs.labels {
		g.Go(func() error {
			results[li] = cs.predicateMatrices(cs.predicates[cs.labels[li]])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string][]Matrix[E], len(cs.labels))
	for li, label := range cs.labels {
		out[label] = results[li]
	}
	return out, nil
}

func (cs *ConstraintSystem[E]) predicateMatrices(ps *predicateSystem[E]) []Matrix[E] {
	n := ps.nbConstraints()
	ms := make([]Matrix[E], ps.predicate.arity)
	for j := range ms {
		m := make(Matrix[E], n)
		for i := 0; i < n; i++ {
			m[i] = cs.makeRow(ps.slots[j][i])
		}
		ms[j] = m
	}
	return ms
}

// makeRow expands one stored combination into matrix-row form, dropping zero
// coefficients and terms on the zero variable. Symbolic references must have
// been eliminated by Finalize.
func (cs *ConstraintSystem[E]) makeRow(idx LcIndex) []MatrixEntry[E] {
	cids, vars := cs.lcs.terms(idx)
	row := make([]MatrixEntry[E], 0, len(cids))
	for k := range cids {
		c := cs.coeffs.Coeff(cids[k])
		if c.IsZero() {
			continue
		}
		col, ok := vars[k].column(cs.nbInstance)
		if !ok {
			if vars[k].Kind() == KindZero {
				continue
			}
			panic(fmt.Sprintf("gr1cs: symbolic reference %s in exported row, finalize the system first", vars[k]))
		}
		row = append(row, MatrixEntry[E]{Coeff: c, Column: col})
	}
	return row
}
