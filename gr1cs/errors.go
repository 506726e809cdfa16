package gr1cs

import "errors"

// Errors a synthesis run can surface to the caller. They are returned, never
// panicked; synthesis stops at the first one and the caller discards the
// system. Internal bookkeeping violations (dangling indices, unknown
// predicate labels) are not part of this taxonomy and panic instead.
var (
	// ErrAssignmentMissing is returned when a value function invoked in
	// prove mode cannot produce a value. Value functions may also return it
	// themselves; in setup mode they are never invoked.
	ErrAssignmentMissing = errors.New("an assignment for a variable could not be computed")

	// ErrArityMismatch is returned when a constraint is enforced with a
	// number of linear combinations different from the predicate's arity.
	// The predicate is left untouched.
	ErrArityMismatch = errors.New("number of linear combinations does not match the predicate arity")

	// ErrMissingConstraintSystem is returned by operations on a nil system
	// handle.
	ErrMissingConstraintSystem = errors.New("missing constraint system")

	// ErrDivisionByZero is surfaced from field inversions performed while
	// computing assignments.
	ErrDivisionByZero = errors.New("division by zero during evaluation")
)
