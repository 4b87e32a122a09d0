package mna

import (
	"math"

	"github.com/wiredge/mnacore/pkg/matrix"
)

// timeRoundingDecimals bounds floating-point drift in the simulated
// clock: time is rounded to this many decimal places after every tick.
const timeRoundingDecimals = 12

// Update runs exactly one simulation tick of size e.TimeStep(). It
// re-analyzes first if the topology or any connection changed since the
// last tick, then performs the Newton sub-iteration loop (C7) described
// in the stepper design: begin-step, repeated re-stamp/factor/solve/
// distribute until converged, then time advances and watched components
// are sampled.
func (e *Engine) Update() error {
	if len(e.elements) == 0 {
		return nil
	}
	if e.dirty {
		if err := e.analyze(); err != nil {
			return err
		}
	}
	if e.errorMessage != "" {
		return nil
	}

	for _, elm := range e.elements {
		elm.BeginStep(e)
	}

	converged := false
	for subiter := 0; subiter < e.subiterCount; subiter++ {
		e.converged = true
		copy(e.circuitMatrix.B, e.origMatrix.B)
		if e.circuitNonLinear {
			e.circuitMatrix.CopyFrom(e.origMatrix)
		}

		for _, elm := range e.elements {
			if err := elm.Step(e); err != nil {
				return e.fail(err, elm)
			}
		}

		if e.circuitMatrix.HasNonFinite() {
			return e.fail(ErrNonFiniteMatrix, nil)
		}

		if e.circuitNonLinear {
			if e.converged && subiter > 0 {
				// Last sub-iteration's solve already satisfied every
				// element's residual tolerance; nothing changed since,
				// so there is nothing further to solve.
				converged = true
				break
			}
			if !matrix.Factor(e.circuitMatrix.A, e.circuitMatrix.Size, e.pivots) {
				return e.fail(ErrSingularMatrix, nil)
			}
		}

		matrix.Solve(e.circuitMatrix.A, e.circuitMatrix.Size, e.pivots, e.circuitMatrix.B)
		e.distribute()

		if !e.circuitNonLinear {
			converged = true
			break
		}
	}

	if !converged {
		return e.fail(ErrConvergenceFailed, nil)
	}

	e.time = round(e.time+e.timeStep, timeRoundingDecimals)
	e.sample()
	return nil
}

// distribute broadcasts the solved values back onto element leads
// (regular nodes) and voltage-source owners (branch currents), per the
// full pre-simplification column order so CONST/EQUAL columns resolve
// to their folded values rather than a compacted-matrix slot. A NaN
// among the solved values flips converged false and stops the
// broadcast early; the Newton loop simply tries again next sub-iteration.
func (e *Engine) distribute() {
	extNodes := len(e.nodeList) - 1

	for j := 0; j < e.matrixSize; j++ {
		ri := e.rows[j]
		val := e.rowValue(ri)
		if math.IsNaN(val) {
			e.converged = false
			return
		}

		if j < extNodes {
			meshID := e.nodeList[j+1].meshID
			for elmIdx, elm := range e.elements {
				for term := 0; term < elm.LeadCount()+elm.InternalLeadCount(); term++ {
					if e.leadMesh[elmIdx][term] == meshID {
						elm.SetLeadVoltage(term, val)
					}
				}
			}
		} else {
			vs := j - extNodes
			e.vsOwners[vs].SetCurrent(vs, val)
		}
	}
}

func round(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
