package gr1cs

import "fmt"

// InstanceOutliner reconciles the instance variables a sub-circuit
// introduced with the parent circuit's values: at finalize, every instance
// column (the constant One included) gets a shadowing witness, all stored
// combinations are rewritten to reference the witnesses, and Func emits one
// equality constraint per pair on PredicateLabel. Without this step a
// malicious sub-circuit prover could substitute a different public value.
type InstanceOutliner[E Element] struct {
	// PredicateLabel is the relation the equality constraints target. It
	// must be registered when Finalize runs.
	PredicateLabel string
	// Func receives the system and the instance-to-witness mapping;
	// mapping[0] shadows the constant One, mapping[i] shadows instance i.
	Func func(cs *ConstraintSystem[E], instanceToWitness []Variable) error
}

// outlineInstances is the finalize-time pass driving the outliner.
func (cs *ConstraintSystem[E]) outlineInstances() error {
	o := cs.outliner
	if !cs.HasPredicate(o.PredicateLabel) {
		return fmt.Errorf("instance outliner predicate %q is not registered", o.PredicateLabel)
	}

	mapping := make([]Variable, cs.nbInstance)
	wOne, err := cs.NewWitnessVariable(func() (E, error) { return cs.field.One(), nil })
	if err != nil {
		return err
	}
	mapping[0] = wOne
	for i := 1; i < len(mapping); i++ {
		idx := i
		w, err := cs.NewWitnessVariable(func() (E, error) {
			var zero E
			if idx >= len(cs.instanceAssignment) {
				return zero, ErrAssignmentMissing
			}
			return cs.instanceAssignment[idx], nil
		})
		if err != nil {
			return err
		}
		mapping[idx] = w
	}

	// redirect every stored reference before Func emits the equality
	// constraints, so only those constraints keep real instance references
	cs.lcs.rewriteVariables(func(v Variable) Variable {
		switch v.Kind() {
		case KindOne:
			return mapping[0]
		case KindInstance:
			return mapping[v.Index()]
		default:
			return v
		}
	})

	return o.Func(cs, mapping)
}

// OutlineR1CS emits the equality constraints on the plain rank-1 relation:
// w_one * w_i = x_i per instance pair, and w_one * w_one = 1 for the
// constant One pair.
func OutlineR1CS[E Element](cs *ConstraintSystem[E], instanceToWitness []Variable) error {
	f := cs.Field()
	one := f.One()
	wOne := instanceToWitness[0]
	for i, w := range instanceToWitness {
		x := One()
		if i > 0 {
			x = NewInstance(i)
		}
		err := cs.EnforceConstraint(R1CSPredicateLabel,
			LinearCombination[E]{{Coeff: one, Variable: wOne}},
			LinearCombination[E]{{Coeff: one, Variable: w}},
			LinearCombination[E]{{Coeff: one, Variable: x}},
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// OutlineSR1CS emits the equality constraints on the square rank-1
// relation: x_i - w_i in slot 0 and the empty combination in slot 1, so the
// relation reads (x_i - w_i)^2 = 0.
func OutlineSR1CS[E Element](cs *ConstraintSystem[E], instanceToWitness []Variable) error {
	f := cs.Field()
	for i, w := range instanceToWitness {
		x := One()
		if i > 0 {
			x = NewInstance(i)
		}
		err := cs.EnforceConstraint(SR1CSPredicateLabel,
			DiffVars(f, x, w),
			LinearCombination[E]{},
		)
		if err != nil {
			return err
		}
	}
	return nil
}
