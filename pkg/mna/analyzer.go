package mna

import "github.com/wiredge/mnacore/pkg/matrix"

// unconnectedTieResistance is the value stamped between ground and any
// node left unreachable after the closure pass, simulating a
// near-infinite impedance tie to ground rather than leaving a singular
// row.
const unconnectedTieResistance = 1e8

// analyze implements the analyzer (C6): resolve topology and stamp,
// close the reachable-from-ground set and patch unreachable nodes,
// validate, simplify, and pre-factor if the circuit is linear.
func (e *Engine) analyze() error {
	e.clearError()

	if err := e.resolve(); err != nil {
		return err
	}

	e.closeUnconnected()

	if err := e.validate(); err != nil {
		return err
	}

	compact, newSize := simplify(e.circuitMatrix, e.rows)
	e.origMatrix = compact.Clone()
	e.circuitMatrix = compact
	e.newSize = newSize
	e.circuitNeedsMap = true
	e.pivots = make([]int, newSize)

	if !e.circuitNonLinear {
		if !matrix.Factor(e.circuitMatrix.A, e.circuitMatrix.Size, e.pivots) {
			return e.fail(ErrSingularMatrix, nil)
		}
	}

	e.dirty = false
	return nil
}

// closeUnconnected computes the set of nodes reachable from ground
// through element pairs whose leads are mutually connected (or tied to
// ground), and stamps a high-value resistor from ground to the first
// unreached external node for every node left out, repeating until the
// whole external node set is covered. Internal nodes are exempt.
func (e *Engine) closeUnconnected() {
	patched := map[int]bool{}
	for {
		reachable := e.reachableFromGround(patched)

		unreached := -1
		for i, nr := range e.nodeList {
			if i == groundNode || nr.internal {
				continue
			}
			if !reachable[i] {
				unreached = i
				break
			}
		}
		if unreached == -1 {
			return
		}
		e.StampResistor(groundNode, unreached, unconnectedTieResistance)
		patched[unreached] = true
	}
}

// reachableFromGround returns the closure of ground plus every node
// already tied to ground by closeUnconnected.
func (e *Engine) reachableFromGround(patched map[int]bool) map[int]bool {
	reachable := map[int]bool{groundNode: true}
	for n := range patched {
		reachable[n] = true
	}
	for {
		progressed := false
		for elmIdx, elm := range e.elements {
			n := elm.LeadCount()
			for i := 0; i < n; i++ {
				ni := e.leadNodeIdx[elmIdx][i]
				if !reachable[ni] && !elm.LeadIsGround(i) {
					continue
				}
				for j := 0; j < n; j++ {
					if i == j {
						continue
					}
					nj := e.leadNodeIdx[elmIdx][j]
					if reachable[nj] {
						continue
					}
					if elm.LeadsAreConnected(i, j) || elm.LeadIsGround(j) {
						reachable[nj] = true
						progressed = true
					}
				}
			}
		}
		if !progressed {
			return reachable
		}
	}
}
