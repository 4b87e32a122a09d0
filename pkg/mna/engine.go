package mna

import (
	"sync/atomic"

	"github.com/wiredge/mnacore/pkg/matrix"
)

const groundNode = 0

// defaultTimeStep is the engine's tick size when the caller does not
// override it, matching the reference implementation's 5 microseconds.
const defaultTimeStep = 5e-6

// defaultSubiterCount bounds the Newton sub-iterations attempted per
// tick before the engine gives up and reports a convergence failure.
const defaultSubiterCount = 5000

// nodeRecord is one entry of the resolved node list: position 0 is
// always ground.
type nodeRecord struct {
	meshID   int64
	internal bool
}

// Engine is the Modified Nodal Analysis engine: it owns the element
// list, the resolved node topology, the working matrices and the
// simulated clock, and drives one simulation tick per call to Update.
//
// Engine is not safe for concurrent use: it is single-threaded and
// synchronous, and every method runs to completion on the caller's
// goroutine.
type Engine struct {
	elements []Element

	// leadMesh[elmIdx][lead] is the 64-bit mesh ID bound to that lead by
	// Connect, or -1 if unassigned. Only equality matters; the IDs
	// themselves are opaque.
	leadMesh [][]int64
	// leadNodeIdx[elmIdx][lead] is the resolved node-list position once
	// analyze has run; used by the validator's graph traversal.
	leadNodeIdx [][]int

	nextMeshID int64

	nodeList []nodeRecord
	vsOwners []Element // voltageSources[k] -> owning element

	matrixSize int // full size, pre-simplification
	newSize    int // compacted size, post-simplification

	rows []rowInfo

	origMatrix    *matrix.Dense
	circuitMatrix *matrix.Dense
	pivots        []int

	circuitNonLinear bool
	circuitNeedsMap  bool

	dirty        bool
	errorMessage string
	errorElement Element

	time     float64
	timeStep float64

	subiterCount int

	observers map[Element]*ScopeBuffer

	// converged is set false by elements (via SetConverged) when their
	// local Newton residual exceeds tolerance, or by the engine itself
	// when distribution hits a NaN.
	converged bool
}

// NewEngine constructs an empty engine with the default 5us time step.
func NewEngine() *Engine {
	return &Engine{
		timeStep:     defaultTimeStep,
		subiterCount: defaultSubiterCount,
		dirty:        true,
		observers:    make(map[Element]*ScopeBuffer),
		nextMeshID:   1, // 0 is reserved for ground
	}
}

// AddElement registers elm in insertion order. Adding the same element
// twice is a no-op. Registration allocates elm's lead-mesh slots but does
// not resolve topology; that happens lazily on the next analyze.
func (e *Engine) AddElement(elm Element) {
	for _, existing := range e.elements {
		if existing == elm {
			return
		}
	}
	n := elm.LeadCount() + elm.InternalLeadCount()
	mesh := make([]int64, n)
	for i := range mesh {
		mesh[i] = -1
	}
	e.elements = append(e.elements, elm)
	e.leadMesh = append(e.leadMesh, mesh)
	e.leadNodeIdx = append(e.leadNodeIdx, make([]int, n))
	e.dirty = true
}

// allocMeshID hands out a fresh 64-bit mesh ID. Any unique source would
// do (the spec leaves generation unspecified); a monotonic counter is
// sufficient since only equality of IDs is ever tested.
func (e *Engine) allocMeshID() int64 {
	return atomic.AddInt64(&e.nextMeshID, 1)
}

// Connect joins two leads into the same electrical node. Policy:
//   - both unassigned: allocate a fresh mesh ID for both.
//   - one unassigned: the unassigned lead adopts the other's ID.
//   - both assigned: the right lead's slot is overwritten with the left's
//     ID. This does not rewrite other leads that had already adopted the
//     right lead's old ID — see the package-level Open Question note in
//     DESIGN.md; this reproduces that single-write behavior deliberately
//     rather than guessing at a union-find fix.
func (e *Engine) Connect(left, right Lead) {
	li := e.leadIndex(left)
	ri := e.leadIndex(right)

	lv := e.leadMesh[li.elm][li.lead]
	rv := e.leadMesh[ri.elm][ri.lead]

	switch {
	case lv == -1 && rv == -1:
		id := e.allocMeshID()
		e.leadMesh[li.elm][li.lead] = id
		e.leadMesh[ri.elm][ri.lead] = id
	case lv == -1:
		e.leadMesh[li.elm][li.lead] = rv
	case rv == -1:
		e.leadMesh[ri.elm][ri.lead] = lv
	default:
		e.leadMesh[ri.elm][ri.lead] = lv
	}
	e.dirty = true
}

type elmLead struct {
	elm  int
	lead int
}

func (e *Engine) leadIndex(l Lead) elmLead {
	for i, existing := range e.elements {
		if existing == l.Elm {
			return elmLead{elm: i, lead: l.Term}
		}
	}
	// Element was never registered via AddElement; register it now so
	// Connect can still be used standalone, matching the forgiving style
	// of the reference engine's element bookkeeping.
	e.AddElement(l.Elm)
	return elmLead{elm: len(e.elements) - 1, lead: l.Term}
}

// Watch returns the append-only sample buffer for component, creating it
// on first use. Buffers grow monotonically and are never truncated by
// the engine.
func (e *Engine) Watch(component Element) *ScopeBuffer {
	if buf, ok := e.observers[component]; ok {
		return buf
	}
	buf := &ScopeBuffer{}
	e.observers[component] = buf
	return buf
}

// NeedAnalyze reports whether the next Update call will re-run analyze
// before stepping.
func (e *Engine) NeedAnalyze() bool { return e.dirty }

// MarkDirty forces the next Update to re-run analyze even if nothing
// else changed.
func (e *Engine) MarkDirty() { e.dirty = true }

// ResetTime zeros the simulated clock without forcing a re-analyze.
func (e *Engine) ResetTime() { e.time = 0 }

// Time returns the engine's simulated clock.
func (e *Engine) Time() float64 { return e.time }

// TimeStep returns the configured tick size.
func (e *Engine) TimeStep() float64 { return e.timeStep }

// SetTimeStep changes the tick size used by subsequent Update calls.
func (e *Engine) SetTimeStep(dt float64) { e.timeStep = dt }

// ErrorMessage returns the last fatal error's message, or "" if the
// circuit is currently healthy.
func (e *Engine) ErrorMessage() string { return e.errorMessage }

// ErrorElement returns the element implicated in the last fatal error,
// if any.
func (e *Engine) ErrorElement() Element { return e.errorElement }

// NodeCount returns the number of resolved nodes, including ground.
func (e *Engine) NodeCount() int { return len(e.nodeList) }

// GetElm returns the i-th registered element.
func (e *Engine) GetElm(i int) Element { return e.elements[i] }

// ElementCount returns the number of registered elements.
func (e *Engine) ElementCount() int { return len(e.elements) }

// GetNodeID returns the opaque mesh ID of the node at list position i.
func (e *Engine) GetNodeID(i int) int64 { return e.nodeList[i].meshID }

// NodeVoltage returns the solved voltage at node-list position idx (0
// for ground), or 0 if the circuit has no valid solution.
func (e *Engine) NodeVoltage(idx int) float64 {
	if idx <= 0 {
		return 0
	}
	if e.circuitMatrix == nil {
		return 0
	}
	ri := e.rows[idx-1]
	return e.rowValue(ri)
}

// rowValue reads the solved value of the unknown ri represents: a
// stored constant for CONST rows, or the solved column for a live
// unknown (NORMAL, or EQUAL sharing its alias target's column) — the
// solution vector is indexed by column position, not row position.
func (e *Engine) rowValue(ri rowInfo) float64 {
	if ri.tag == rowConst {
		return ri.value
	}
	return e.circuitMatrix.B[ri.mapCol]
}

func (e *Engine) fail(err error, elm Element) error {
	e.errorMessage = err.Error()
	e.errorElement = elm
	e.circuitMatrix = nil
	e.dirty = true
	return err
}

func (e *Engine) clearError() {
	e.errorMessage = ""
	e.errorElement = nil
}

// SetConverged lets an element flag that its local Newton residual has
// not yet settled; the stepper keeps iterating until every element
// leaves this true for one full sub-iteration.
func (e *Engine) SetConverged(v bool) {
	if !v {
		e.converged = false
	}
}
