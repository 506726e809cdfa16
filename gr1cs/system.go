// Package gr1cs implements a generalized rank-1 constraint system (GR1CS)
// builder: circuits allocate variables and linear combinations and enforce
// constraints against named fixed-arity predicates (polynomial relations or
// table lookups). Plain R1CS is the pre-registered degenerate case
// slot0*slot1 - slot2 = 0.
//
// The builder is generic over the coefficient representation; the bn254,
// bls12-381 and babybear subpackages provide ready-made instantiations.
package gr1cs

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/rs/zerolog"
	"github.com/snarkcore/relations/internal/kvstore"
	"github.com/snarkcore/relations/logger"
)

// SynthesisMode selects what a synthesis run produces.
type SynthesisMode uint8

const (
	// Prove computes concrete assignments; matrix construction is on unless
	// WithoutMatrices is set.
	Prove SynthesisMode = iota
	// Setup constructs matrices only; value functions are never invoked.
	Setup
)

func (m SynthesisMode) String() string {
	switch m {
	case Prove:
		return "prove"
	case Setup:
		return "setup"
	default:
		return "unknown"
	}
}

// OptimizationGoal selects how symbolic linear-combination references are
// compiled into the exported matrices. The satisfiability semantics are the
// same under every goal; only constraint counts and matrix density differ.
type OptimizationGoal uint8

const (
	// GoalNone stores every combination exactly as given.
	GoalNone OptimizationGoal = iota
	// GoalConstraints substitutes symbolic references at enforce time, so a
	// combination reused by k constraints is expanded k times. Fewest
	// constraints, densest rows.
	GoalConstraints
	// GoalWeight shares combinations behind a single LcIndex and, at
	// finalize, materializes the heavily used ones behind a witness plus one
	// definition constraint. Fewest nonzero terms.
	GoalWeight
)

func (g OptimizationGoal) String() string {
	switch g {
	case GoalNone:
		return "none"
	case GoalConstraints:
		return "constraints"
	case GoalWeight:
		return "weight"
	default:
		return "unknown"
	}
}

// ConstraintSynthesizer is the contract between a circuit author and the
// builder: given a handle to a constraint system, populate it.
type ConstraintSynthesizer[E Element] interface {
	GenerateConstraints(cs *ConstraintSystem[E]) error
}

// Synthesize runs a circuit against the system and finalizes it.
func Synthesize[E Element](cs *ConstraintSystem[E], circuit ConstraintSynthesizer[E]) error {
	if cs == nil {
		return ErrMissingConstraintSystem
	}
	if err := circuit.GenerateConstraints(cs); err != nil {
		return err
	}
	return cs.Finalize()
}

type config struct {
	mode                SynthesisMode
	constructMatrices   bool
	goal                OptimizationGoal
	capacity            int
	tracing             bool
	ignoreUnconstrained bool
}

// Option configures a constraint system at construction. Both configuration
// axes (mode, optimization goal) are fixed for the lifetime of the system.
type Option func(*config)

// WithMode sets the synthesis mode. The default is Prove.
func WithMode(m SynthesisMode) Option {
	return func(c *config) { c.mode = m }
}

// WithoutMatrices skips matrix construction in Prove mode, for callers that
// already hold the matrices and only need the assignment.
func WithoutMatrices() Option {
	return func(c *config) { c.constructMatrices = false }
}

// WithOptimizationGoal sets the expression-compilation strategy. The default
// is GoalNone.
func WithOptimizationGoal(g OptimizationGoal) Option {
	return func(c *config) { c.goal = g }
}

// WithCapacity pre-sizes the internal tables for the expected number of
// constraints.
func WithCapacity(n int) Option {
	return func(c *config) { c.capacity = n }
}

// WithTracing records per-constraint provenance (namespace chain, and call
// stacks in builds with the debug tag). Tracing never affects the produced
// matrices or assignment.
func WithTracing() Option {
	return func(c *config) { c.tracing = true }
}

// IgnoreUnconstrained disables the finalize-time warning about witness
// variables that appear in no constraint.
func IgnoreUnconstrained() Option {
	return func(c *config) { c.ignoreUnconstrained = true }
}

// ConstraintSystem owns every artifact of one synthesis run: variable
// counters, the coefficient interner, the linear-combination arena, the
// predicate registry, assignments and run configuration. It is mutated by
// exactly one goroutine during synthesis, finalized once, then read-only.
//
// The embedded kvstore.Store lets gadgets cache computation results across
// calls sharing the same system.
type ConstraintSystem[E Element] struct {
	kvstore.Store

	field Field[E]

	mode              SynthesisMode
	constructMatrices bool
	goal              OptimizationGoal

	// nbInstance counts the constant One at index 0, so an instance
	// variable's index is also its matrix column.
	nbInstance int
	nbWitness  int

	coeffs CoeffTable[E]
	lcs    lcTable

	predicates map[string]*predicateSystem[E]
	labels     []string // sorted

	instanceAssignment []E
	witnessAssignment  []E
	lcAssignment       []E

	outliner  *InstanceOutliner[E]
	finalized bool

	ignoreUnconstrained bool

	traces *traceStore

	// scratch buffers reused across appendLc calls
	scratchCids []uint32
	scratchVars []Variable

	log zerolog.Logger
}

// NewConstraintSystem returns an empty system over the given field, with the
// plain rank-1 predicate pre-registered under R1CSPredicateLabel.
func NewConstraintSystem[E Element](f Field[E], opts ...Option) *ConstraintSystem[E] {
	cfg := config{
		mode:              Prove,
		constructMatrices: true,
		goal:              GoalNone,
		capacity:          64,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	cs := &ConstraintSystem[E]{
		Store:               kvstore.New(),
		field:               f,
		mode:                cfg.mode,
		constructMatrices:   cfg.constructMatrices || cfg.mode == Setup,
		goal:                cfg.goal,
		nbInstance:          1,
		coeffs:              NewCoeffTable(f, cfg.capacity),
		lcs:                 newLcTable(3 * cfg.capacity),
		predicates:          make(map[string]*predicateSystem[E]),
		ignoreUnconstrained: cfg.ignoreUnconstrained,
		log:                 logger.ForField(f.Modulus().BitLen()),
	}
	if cs.generatesAssignments() {
		cs.instanceAssignment = append(make([]E, 0, cfg.capacity+1), f.One())
		cs.witnessAssignment = make([]E, 0, cfg.capacity)
		cs.lcAssignment = make([]E, 0, 3*cfg.capacity)
	}
	if cfg.tracing {
		cs.traces = newTraceStore()
	}
	if err := cs.RegisterPredicate(R1CSPredicateLabel, NewR1CSPredicate(f)); err != nil {
		panic(err)
	}
	return cs
}

// Field returns the arithmetic the system was instantiated with.
func (cs *ConstraintSystem[E]) Field() Field[E] { return cs.field }

// Mode returns the synthesis mode.
func (cs *ConstraintSystem[E]) Mode() SynthesisMode { return cs.mode }

// OptimizationGoal returns the configured expression-compilation strategy.
func (cs *ConstraintSystem[E]) OptimizationGoal() OptimizationGoal { return cs.goal }

// ShouldConstructMatrices reports whether this run materializes matrices.
func (cs *ConstraintSystem[E]) ShouldConstructMatrices() bool { return cs.constructMatrices }

// IsFinalized reports whether Finalize has run.
func (cs *ConstraintSystem[E]) IsFinalized() bool { return cs.finalized }

func (cs *ConstraintSystem[E]) generatesAssignments() bool { return cs.mode == Prove }

func (cs *ConstraintSystem[E]) assertMutable() {
	if cs.finalized {
		panic("gr1cs: system mutated after finalize")
	}
}

// NbInstanceVariables returns the number of instance columns, the constant
// One included.
func (cs *ConstraintSystem[E]) NbInstanceVariables() int { return cs.nbInstance }

// NbWitnessVariables returns the number of witness variables.
func (cs *ConstraintSystem[E]) NbWitnessVariables() int { return cs.nbWitness }

// NbLinearCombinations returns the number of stored linear combinations.
func (cs *ConstraintSystem[E]) NbLinearCombinations() int { return cs.lcs.len() }

// NbCoefficients returns the number of distinct interned coefficients,
// reserved tokens included.
func (cs *ConstraintSystem[E]) NbCoefficients() int { return cs.coeffs.Len() }

// NbConstraints returns the total number of constraints across predicates.
func (cs *ConstraintSystem[E]) NbConstraints() int {
	n := 0
	for _, ps := range cs.predicates {
		n += ps.nbConstraints()
	}
	return n
}

// NewInputVariable allocates an instance (public input) variable. In Prove
// mode the value function is invoked immediately; in Setup mode it is never
// invoked and may be nil.
func (cs *ConstraintSystem[E]) NewInputVariable(value func() (E, error)) (Variable, error) {
	if cs == nil {
		return Zero(), ErrMissingConstraintSystem
	}
	cs.assertMutable()
	if cs.generatesAssignments() {
		v, err := cs.callValue(value)
		if err != nil {
			return Zero(), fmt.Errorf("instance variable %d: %w", cs.nbInstance, err)
		}
		cs.instanceAssignment = append(cs.instanceAssignment, v)
	}
	v := NewInstance(cs.nbInstance)
	cs.nbInstance++
	return v, nil
}

// NewWitnessVariable allocates a witness (private input) variable. Value
// function semantics are the same as NewInputVariable.
func (cs *ConstraintSystem[E]) NewWitnessVariable(value func() (E, error)) (Variable, error) {
	if cs == nil {
		return Zero(), ErrMissingConstraintSystem
	}
	cs.assertMutable()
	if cs.generatesAssignments() {
		v, err := cs.callValue(value)
		if err != nil {
			return Zero(), fmt.Errorf("witness variable %d: %w", cs.nbWitness, err)
		}
		cs.witnessAssignment = append(cs.witnessAssignment, v)
	}
	v := NewWitness(cs.nbWitness)
	cs.nbWitness++
	return v, nil
}

func (cs *ConstraintSystem[E]) callValue(value func() (E, error)) (E, error) {
	var zero E
	if value == nil {
		return zero, ErrAssignmentMissing
	}
	return value()
}

// Term builds one linear-combination term, coercing coeff with the field's
// FromInterface.
func (cs *ConstraintSystem[E]) Term(coeff interface{}, v Variable) Term[E] {
	return Term[E]{Coeff: cs.field.FromInterface(coeff), Variable: v}
}

// NewLinearCombination canonicalizes terms (variable order, duplicates
// folded), appends the combination to the arena and returns a SymbolicLc
// variable wrapping its index. In Prove mode the combination is evaluated
// immediately into the cache. Terms may reference earlier combinations but
// never later ones.
func (cs *ConstraintSystem[E]) NewLinearCombination(terms ...Term[E]) (Variable, error) {
	if cs == nil {
		return Zero(), ErrMissingConstraintSystem
	}
	cs.assertMutable()
	lc := compactify(cs.field, LinearCombination[E](terms).Clone())
	return newSymbolicLc(cs.appendLc(lc)), nil
}

// appendLc interns and stores a canonical combination, evaluating it in
// Prove mode. Forward references violate the arena invariant and panic.
func (cs *ConstraintSystem[E]) appendLc(lc LinearCombination[E]) LcIndex {
	next := LcIndex(cs.lcs.len())
	cs.scratchCids = cs.scratchCids[:0]
	cs.scratchVars = cs.scratchVars[:0]
	for _, t := range lc {
		if i, ok := t.Variable.LcIndex(); ok && i >= next {
			panic(fmt.Sprintf("gr1cs: forward reference to lc%d from lc%d", i, next))
		}
		cs.scratchCids = append(cs.scratchCids, cs.coeffs.AddCoeff(cs.field, t.Coeff))
		cs.scratchVars = append(cs.scratchVars, t.Variable)
	}
	idx := cs.lcs.push(cs.scratchCids, cs.scratchVars)
	if cs.generatesAssignments() {
		cs.lcAssignment = append(cs.lcAssignment, cs.evalStored(idx))
	}
	return idx
}

// evalStored computes the value of stored combination idx. Nested symbolic
// references are strictly older than idx, so they resolve through the cache
// without recursing.
func (cs *ConstraintSystem[E]) evalStored(idx LcIndex) E {
	cids, vars := cs.lcs.terms(idx)
	var acc E
	for k := range cids {
		acc = cs.field.Add(acc, cs.field.Mul(cs.coeffs.Coeff(cids[k]), cs.mustAssignedValue(vars[k])))
	}
	return acc
}

// evalTerms computes the value of a builder-form combination whose variables
// are all concrete (no symbolic references needed beyond the cache).
func (cs *ConstraintSystem[E]) evalTerms(lc LinearCombination[E]) E {
	var acc E
	for _, t := range lc {
		acc = cs.field.Add(acc, cs.field.Mul(t.Coeff, cs.mustAssignedValue(t.Variable)))
	}
	return acc
}

// AssignedValue returns the concrete value of a variable. It returns false
// in Setup mode and for out-of-range variables.
func (cs *ConstraintSystem[E]) AssignedValue(v Variable) (E, bool) {
	var zero E
	if cs == nil || !cs.generatesAssignments() {
		return zero, false
	}
	switch v.Kind() {
	case KindZero:
		return zero, true
	case KindOne:
		return cs.field.One(), true
	case KindInstance:
		if v.Index() >= len(cs.instanceAssignment) {
			return zero, false
		}
		return cs.instanceAssignment[v.Index()], true
	case KindWitness:
		if v.Index() >= len(cs.witnessAssignment) {
			return zero, false
		}
		return cs.witnessAssignment[v.Index()], true
	case KindSymbolicLc:
		if v.Index() >= len(cs.lcAssignment) {
			return zero, false
		}
		return cs.lcAssignment[v.Index()], true
	default:
		return zero, false
	}
}

func (cs *ConstraintSystem[E]) mustAssignedValue(v Variable) E {
	val, ok := cs.AssignedValue(v)
	if !ok {
		panic(fmt.Sprintf("gr1cs: no assigned value for %s", v))
	}
	return val
}

// lcValue returns the cached value of combination idx.
func (cs *ConstraintSystem[E]) lcValue(idx LcIndex) E {
	return cs.lcAssignment[idx]
}

// GetLinearCombination materializes stored combination idx back into builder
// form, with concrete coefficient values. Intended for diagnostics and
// tests; a dangling index panics.
func (cs *ConstraintSystem[E]) GetLinearCombination(idx LcIndex) LinearCombination[E] {
	cids, vars := cs.lcs.terms(idx)
	lc := make(LinearCombination[E], 0, len(cids))
	for k := range cids {
		lc = append(lc, Term[E]{Coeff: cs.coeffs.Coeff(cids[k]), Variable: vars[k]})
	}
	return lc
}

// RegisterPredicate registers a relation under a label. Registering an
// already-used label is an error; use RemovePredicate first to replace one.
func (cs *ConstraintSystem[E]) RegisterPredicate(label string, p Predicate[E]) error {
	if cs == nil {
		return ErrMissingConstraintSystem
	}
	cs.assertMutable()
	if p.arity < 1 {
		return fmt.Errorf("predicate %q has no relation", label)
	}
	if _, ok := cs.predicates[label]; ok {
		return fmt.Errorf("predicate %q already registered", label)
	}
	cs.predicates[label] = newPredicateSystem(p)
	i := sort.SearchStrings(cs.labels, label)
	cs.labels = append(cs.labels, "")
	copy(cs.labels[i+1:], cs.labels[i:])
	cs.labels[i] = label
	return nil
}

// RemovePredicate drops a predicate and its constraints. Removing an
// unregistered label is a no-op.
func (cs *ConstraintSystem[E]) RemovePredicate(label string) {
	if cs == nil {
		return
	}
	cs.assertMutable()
	if _, ok := cs.predicates[label]; !ok {
		return
	}
	delete(cs.predicates, label)
	i := sort.SearchStrings(cs.labels, label)
	cs.labels = append(cs.labels[:i], cs.labels[i+1:]...)
	if cs.traces != nil {
		delete(cs.traces.entries, label)
	}
}

// HasPredicate reports whether a label is registered.
func (cs *ConstraintSystem[E]) HasPredicate(label string) bool {
	if cs == nil {
		return false
	}
	_, ok := cs.predicates[label]
	return ok
}

// NbPredicates returns the number of registered predicates.
func (cs *ConstraintSystem[E]) NbPredicates() int { return len(cs.predicates) }

// PredicateLabels returns the registered labels in lexicographic order.
func (cs *ConstraintSystem[E]) PredicateLabels() []string {
	out := make([]string, len(cs.labels))
	copy(out, cs.labels)
	return out
}

// PredicateArity returns the arity of a registered predicate, 0 if the label
// is unknown.
func (cs *ConstraintSystem[E]) PredicateArity(label string) int {
	ps, ok := cs.predicates[label]
	if !ok {
		return 0
	}
	return ps.predicate.arity
}

// NbPredicateConstraints returns the number of constraints enforced on a
// predicate, 0 if the label is unknown.
func (cs *ConstraintSystem[E]) NbPredicateConstraints(label string) int {
	ps, ok := cs.predicates[label]
	if !ok {
		return 0
	}
	return ps.nbConstraints()
}

// PredicateConstraints returns the constraints of a predicate, row-major:
// one []LcIndex of length arity per constraint.
func (cs *ConstraintSystem[E]) PredicateConstraints(label string) [][]LcIndex {
	ps, ok := cs.predicates[label]
	if !ok {
		return nil
	}
	n := ps.nbConstraints()
	out := make([][]LcIndex, n)
	for i := 0; i < n; i++ {
		out[i] = ps.constraint(i, make([]LcIndex, 0, ps.predicate.arity))
	}
	return out
}

// EnforceConstraint appends one constraint to the named predicate, resolving
// each slot combination to an LcIndex per the configured optimization goal.
// The number of combinations must equal the predicate's arity; on mismatch
// the predicate is left untouched. Enforcing against an unregistered label
// is an internal invariant violation and panics.
func (cs *ConstraintSystem[E]) EnforceConstraint(label string, lcs ...LinearCombination[E]) error {
	if cs == nil {
		return ErrMissingConstraintSystem
	}
	cs.assertMutable()
	ps, ok := cs.predicates[label]
	if !ok {
		panic(fmt.Sprintf("gr1cs: unknown predicate %q", label))
	}
	if len(lcs) != ps.predicate.arity {
		return fmt.Errorf("predicate %q expects %d linear combinations, got %d: %w",
			label, ps.predicate.arity, len(lcs), ErrArityMismatch)
	}

	indices := make([]LcIndex, len(lcs))
	for i, lc := range lcs {
		lc = compactify(cs.field, lc.Clone())
		switch cs.goal {
		case GoalConstraints:
			indices[i] = cs.appendLc(cs.expand(lc))
		case GoalWeight:
			if idx, ok := sharedRef(cs.field, lc); ok {
				indices[i] = idx
				break
			}
			indices[i] = cs.appendLc(lc)
		default: // GoalNone
			indices[i] = cs.appendLc(lc)
		}
	}
	ps.enforce(indices)
	cs.recordTrace(label)
	return nil
}

// sharedRef reports whether lc is exactly +1 times a symbolic reference, in
// which case the existing index is reused instead of a fresh one.
func sharedRef[E Element](f Field[E], lc LinearCombination[E]) (LcIndex, bool) {
	if len(lc) != 1 {
		return 0, false
	}
	idx, ok := lc[0].Variable.LcIndex()
	if !ok || !f.IsOne(lc[0].Coeff) {
		return 0, false
	}
	return idx, true
}

// expand substitutes every symbolic reference in lc with the referenced
// stored terms, recursively, and canonicalizes the result.
func (cs *ConstraintSystem[E]) expand(lc LinearCombination[E]) LinearCombination[E] {
	out := make(LinearCombination[E], 0, len(lc))
	type frame struct {
		scale E
		idx   LcIndex
	}
	var stack []frame
	for _, t := range lc {
		if idx, ok := t.Variable.LcIndex(); ok {
			stack = append(stack, frame{scale: t.Coeff, idx: idx})
			continue
		}
		out = append(out, t)
	}
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cids, vars := cs.lcs.terms(fr.idx)
		for k := range cids {
			c := cs.field.Mul(fr.scale, cs.coeffs.Coeff(cids[k]))
			if idx, ok := vars[k].LcIndex(); ok {
				stack = append(stack, frame{scale: c, idx: idx})
				continue
			}
			out = append(out, Term[E]{Coeff: c, Variable: vars[k]})
		}
	}
	return compactify(cs.field, out)
}

// SetInstanceOutliner installs the finalize-time hook reconciling this
// system's instance variables with a parent circuit's witnesses. Must be
// called before Finalize.
func (cs *ConstraintSystem[E]) SetInstanceOutliner(o InstanceOutliner[E]) {
	cs.assertMutable()
	cs.outliner = &o
}

// InstanceOutliner returns the installed outliner, if any.
func (cs *ConstraintSystem[E]) InstanceOutliner() (InstanceOutliner[E], bool) {
	if cs.outliner == nil {
		return InstanceOutliner[E]{}, false
	}
	return *cs.outliner, true
}

// Finalize runs the goal's deferred transform, then instance outlining, and
// marks the system read-only. It is idempotent; the second and later calls
// are no-ops.
func (cs *ConstraintSystem[E]) Finalize() error {
	if cs == nil {
		return ErrMissingConstraintSystem
	}
	if cs.finalized {
		return nil
	}

	switch cs.goal {
	case GoalNone:
		// a prove-only run never expands rows, the cache has every value
		if cs.constructMatrices {
			cs.inlineAllLcs()
		}
	case GoalWeight:
		if err := cs.outlineLcs(); err != nil {
			return err
		}
	case GoalConstraints:
		// references were substituted at enforce time
	}

	if cs.outliner != nil {
		if err := cs.outlineInstances(); err != nil {
			return err
		}
	}
	if !cs.ignoreUnconstrained {
		cs.warnUnconstrained()
	}

	cs.finalized = true
	cs.log.Info().
		Int("nbConstraints", cs.NbConstraints()).
		Int("nbPredicates", cs.NbPredicates()).
		Int("nbInstance", cs.nbInstance).
		Int("nbWitness", cs.nbWitness).
		Int("nbLcs", cs.lcs.len()).
		Str("goal", cs.goal.String()).
		Msg("constraint system finalized")
	return nil
}

// IsSatisfied reports whether every constraint of every predicate holds
// under the computed assignment. In Setup mode there is no assignment and
// ErrAssignmentMissing is returned.
func (cs *ConstraintSystem[E]) IsSatisfied() (bool, error) {
	_, found, err := cs.WhichIsUnsatisfied()
	return !found, err
}

// WhichIsUnsatisfied returns a description of the first unsatisfied
// constraint ("label - index", decorated with provenance when tracing is
// on), or found == false if the system is satisfied. Predicates are checked
// in label order.
func (cs *ConstraintSystem[E]) WhichIsUnsatisfied() (string, bool, error) {
	if cs == nil {
		return "", false, ErrMissingConstraintSystem
	}
	if !cs.generatesAssignments() {
		return "", false, ErrAssignmentMissing
	}
	for _, label := range cs.labels {
		ps := cs.predicates[label]
		i, bad := ps.whichIsUnsatisfied(cs)
		if !bad {
			continue
		}
		desc := fmt.Sprintf("%s - %d", label, i)
		if prov := cs.traceOf(label, i); prov != "" {
			desc += " (" + prov + ")"
		}
		return desc, true, nil
	}
	return "", false, nil
}

// InstanceAssignment returns the dense instance vector, index 0 holding the
// constant 1, indexed exactly as the matrix columns describe.
func (cs *ConstraintSystem[E]) InstanceAssignment() ([]E, error) {
	if cs == nil {
		return nil, ErrMissingConstraintSystem
	}
	if !cs.generatesAssignments() {
		return nil, ErrAssignmentMissing
	}
	out := make([]E, len(cs.instanceAssignment))
	copy(out, cs.instanceAssignment)
	return out, nil
}

// WitnessAssignment returns the dense witness vector, indexed exactly as the
// matrix columns describe (witness i is column nbInstance+i).
func (cs *ConstraintSystem[E]) WitnessAssignment() ([]E, error) {
	if cs == nil {
		return nil, ErrMissingConstraintSystem
	}
	if !cs.generatesAssignments() {
		return nil, ErrAssignmentMissing
	}
	out := make([]E, len(cs.witnessAssignment))
	copy(out, cs.witnessAssignment)
	return out, nil
}

// Modulus returns the field modulus of the system.
func (cs *ConstraintSystem[E]) Modulus() *big.Int {
	return cs.field.Modulus()
}
