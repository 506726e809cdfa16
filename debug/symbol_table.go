// Package debug collects call-site information while a constraint system is
// being built. Stack collection is capped to two frames unless the binary is
// compiled with the debug tag.
package debug

import (
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// SymbolTable interns the call sites seen while building a constraint
// system, so that constraints enforced from the same line share one
// Location entry.
type SymbolTable struct {
	Locations []Location
	Functions []Function

	mFunctions map[string]int // frame.File+frame.Function to id in Functions
	mLocations map[uint64]int // frame PC to location id in Locations
}

// Location is one interned call site.
type Location struct {
	FunctionID int
	Line       int64
}

// Function is one interned function.
type Function struct {
	Name       string
	SystemName string
	Filename   string
}

func NewSymbolTable() SymbolTable {
	return SymbolTable{
		mFunctions: map[string]int{},
		mLocations: map[uint64]int{},
	}
}

// CollectStack walks the caller stack and returns interned location ids,
// innermost frame first.
func (st *SymbolTable) CollectStack() []int {
	var r []int
	if Debug {
		r = make([]int, 0, 5)
	} else {
		r = make([]int, 0, 2)
	}
	// derived from: https://golang.org/pkg/runtime/#example_Frames
	// we stop when the func name ends in GenerateConstraints as it is where
	// the circuit code should start

	var pc [20]uintptr
	n := runtime.Callers(4, pc[:])
	if n == 0 {
		// No pcs available. Stop now.
		// This can happen if the first argument to runtime.Callers is large.
		return r
	}
	frames := runtime.CallersFrames(pc[:n]) // pass only valid pcs to runtime.CallersFrames
	cpt := 0
	// Loop to get frames.
	// A fixed number of pcs can expand to an indefinite number of Frames.
	for {
		frame, more := frames.Next()
		fe := strings.Split(frame.Function, "/")
		function := fe[len(fe)-1]

		if !Debug {
			if cpt == 2 {
				// limit stack size to 2 when the debug tag is not set
				break
			}
			if strings.Contains(function, "runtime.gopanic") {
				continue
			}
			if strings.Contains(function, "gr1cs.(*ConstraintSystem") {
				continue
			}
			if strings.Contains(frame.File, "relations/gr1cs") {
				continue
			}
			frame.File = filepath.Base(frame.File)
		}

		r = append(r, st.locationID(&frame))
		cpt++

		if !more {
			break
		}
		if strings.HasSuffix(function, "GenerateConstraints") {
			break
		}
	}
	return r
}

// StackToString renders collected location ids on one line, innermost frame
// first.
func (st *SymbolTable) StackToString(stack []int) string {
	var sb strings.Builder
	for i, lID := range stack {
		if i > 0 {
			sb.WriteString(" > ")
		}
		loc := st.Locations[lID]
		fn := st.Functions[loc.FunctionID]
		sb.WriteString(fn.Name)
		sb.WriteByte(' ')
		sb.WriteString(fn.Filename)
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatInt(loc.Line, 10))
	}
	return sb.String()
}

func (st *SymbolTable) locationID(frame *runtime.Frame) int {
	lID, ok := st.mLocations[uint64(frame.PC)]
	if !ok {
		// first let's see if we have the function.
		fID, ok := st.mFunctions[frame.File+frame.Function]
		if !ok {
			fe := strings.Split(frame.Function, "/")
			fName := fe[len(fe)-1]
			f := Function{
				Name:       fName,
				SystemName: frame.Function,
				Filename:   frame.File,
			}

			st.Functions = append(st.Functions, f)
			fID = len(st.Functions) - 1
			st.mFunctions[frame.File+frame.Function] = fID
		}

		l := Location{FunctionID: fID, Line: int64(frame.Line)}

		st.Locations = append(st.Locations, l)
		lID = len(st.Locations) - 1
		st.mLocations[uint64(frame.PC)] = lID
	}

	return lID
}
