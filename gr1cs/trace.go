package gr1cs

import (
	"strings"

	"github.com/snarkcore/relations/debug"
)

// traceStore holds per-constraint provenance: the namespace chain active at
// enforce time and, in builds with the debug tag, a compacted call stack.
// Entries per label align with the predicate's constraint order.
type traceStore struct {
	st      debug.SymbolTable
	ns      []string
	entries map[string][]traceEntry
}

type traceEntry struct {
	namespace string
	stack     []int
}

func newTraceStore() *traceStore {
	return &traceStore{
		st:      debug.NewSymbolTable(),
		entries: make(map[string][]traceEntry),
	}
}

// EnterNamespace pushes a label onto the provenance chain recorded with
// every subsequently enforced constraint. A no-op unless the system was
// built WithTracing.
func (cs *ConstraintSystem[E]) EnterNamespace(name string) {
	if cs.traces == nil {
		return
	}
	cs.traces.ns = append(cs.traces.ns, name)
}

// LeaveNamespace pops the innermost namespace label.
func (cs *ConstraintSystem[E]) LeaveNamespace() {
	if cs.traces == nil || len(cs.traces.ns) == 0 {
		return
	}
	cs.traces.ns = cs.traces.ns[:len(cs.traces.ns)-1]
}

// recordTrace captures provenance for the constraint just appended to label.
func (cs *ConstraintSystem[E]) recordTrace(label string) {
	t := cs.traces
	if t == nil {
		return
	}
	e := traceEntry{namespace: strings.Join(t.ns, "/")}
	if debug.Debug {
		e.stack = t.st.CollectStack()
	}
	t.entries[label] = append(t.entries[label], e)
}

// traceOf renders the provenance of constraint i of a predicate, or "" when
// nothing was recorded.
func (cs *ConstraintSystem[E]) traceOf(label string, i int) string {
	t := cs.traces
	if t == nil {
		return ""
	}
	es := t.entries[label]
	if i >= len(es) {
		return ""
	}
	var sb strings.Builder
	if es[i].namespace != "" {
		sb.WriteString("in ")
		sb.WriteString(es[i].namespace)
	}
	if len(es[i].stack) > 0 {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString("at ")
		sb.WriteString(t.st.StackToString(es[i].stack))
	}
	return sb.String()
}
