package mna

// This file is the stamp kernel (C1): the primitive accumulators
// elements use from Stamp/Step to contribute to the shared matrix. All
// row/column arguments are 1-based node indices: 0 means ground and is
// always ignored, and indices >= NodeCount() address voltage-source
// rows. Once the row simplifier has run (circuitNeedsMap == true), the
// kernel transparently remaps every access through rowInfo.mapRow /
// mapCol; before that it writes straight into the full-size scratch
// matrix built during the single initial stamp pass.

// StampMatrix adds x to M[i-1, j-1]. A folded-constant column subtracts
// its contribution into the right side instead of writing a zero
// column, per the constant-folding rule the row simplifier relies on.
func (e *Engine) StampMatrix(i, j int, x float64) {
	if i == 0 || j == 0 || x == 0 {
		return
	}
	if !e.circuitNeedsMap {
		e.circuitMatrix.Add(i-1, j-1, x)
		return
	}
	ri := e.rows[i-1]
	if ri.dropRow {
		return
	}
	rj := e.rows[j-1]
	if rj.tag == rowConst {
		e.circuitMatrix.AddRHS(ri.mapRow, -x*rj.value)
		return
	}
	e.circuitMatrix.Add(ri.mapRow, rj.mapCol, x)
}

// StampRightSide adds x to b[i-1].
func (e *Engine) StampRightSide(i int, x float64) {
	if i == 0 {
		return
	}
	if !e.circuitNeedsMap {
		e.circuitMatrix.AddRHS(i-1, x)
		return
	}
	ri := e.rows[i-1]
	if ri.dropRow {
		return
	}
	e.circuitMatrix.AddRHS(ri.mapRow, x)
}

// StampRightSideVar marks row i as having a right side that changes
// every Newton sub-iteration (a time-varying source updated through
// UpdateVoltageSource), so the row simplifier leaves it alone.
func (e *Engine) StampRightSideVar(i int) {
	if i == 0 {
		return
	}
	e.rows[i-1].rsChanges = true
}

// StampNonLinear marks row i as having a left side that changes every
// Newton sub-iteration.
func (e *Engine) StampNonLinear(i int) {
	if i == 0 {
		return
	}
	e.rows[i-1].lsChanges = true
}

// StampResistor applies the symmetric conductance stamp for a resistor
// of value R ohms between n1 and n2.
func (e *Engine) StampResistor(n1, n2 int, r float64) {
	e.StampConductance(n1, n2, 1.0/r)
}

// StampConductance applies the symmetric stamp for a conductance g
// (siemens) directly, without the 1/R division.
func (e *Engine) StampConductance(n1, n2 int, g float64) {
	if n1 != 0 {
		e.StampMatrix(n1, n1, g)
	}
	if n2 != 0 {
		e.StampMatrix(n2, n2, g)
	}
	if n1 != 0 && n2 != 0 {
		e.StampMatrix(n1, n2, -g)
		e.StampMatrix(n2, n1, -g)
	}
}

// vsRow returns the 1-based node-index argument that addresses the
// branch row for voltage source vs (0-based global index): nodeList.size
// + vs, per the matrix-row convention in the spec.
func (e *Engine) vsRow(vs int) int {
	return len(e.nodeList) + vs
}

// StampVoltageSource writes the +-1 node/branch couplings for a DC
// voltage source of value v between n1 (+) and n2 (-), owned by branch
// vs.
func (e *Engine) StampVoltageSource(n1, n2, vs int, v float64) {
	e.stampVoltageSourceCoupling(n1, n2, vs)
	e.StampRightSide(e.vsRow(vs), v)
}

// StampVoltageSourceVar writes the same couplings for a time-varying
// voltage source, marking its right side mutable instead of writing a
// DC value.
func (e *Engine) StampVoltageSourceVar(n1, n2, vs int) {
	e.stampVoltageSourceCoupling(n1, n2, vs)
	e.StampRightSideVar(e.vsRow(vs))
}

func (e *Engine) stampVoltageSourceCoupling(n1, n2, vs int) {
	vn := e.vsRow(vs)
	if n1 != 0 {
		e.StampMatrix(vn, n1, 1)
		e.StampMatrix(n1, vn, 1)
	}
	if n2 != 0 {
		e.StampMatrix(vn, n2, -1)
		e.StampMatrix(n2, vn, -1)
	}
}

// UpdateVoltageSource sets (not accumulates) the right side of branch
// vs's row to v, called from Step once per Newton sub-iteration for a
// source whose value depends on time or on the current solution.
func (e *Engine) UpdateVoltageSource(vs int, v float64) {
	vn := e.vsRow(vs)
	ri := e.rows[vn-1]
	if ri.dropRow {
		return
	}
	e.circuitMatrix.SetRHS(ri.mapRow, v)
}

// UpdateOrigRightSide adds delta to row i's entry in the pristine
// (pre-Newton-loop) right side, origMatrix.B. Companion models for
// reactive devices (capacitor/inductor) call this once per tick, from
// BeginStep, to refresh their history term: the Newton loop resets
// circuitRightSide from origRightSide at the start of every
// sub-iteration, so a change made here is what every sub-iteration of
// this tick actually solves against. Callers are responsible for
// tracking and subtracting their own previous contribution so repeated
// calls don't accumulate across ticks.
func (e *Engine) UpdateOrigRightSide(i int, delta float64) {
	if i == 0 {
		return
	}
	ri := e.rows[i-1]
	if ri.dropRow {
		return
	}
	e.origMatrix.AddRHS(ri.mapRow, delta)
}

// StampVCVS stamps a voltage-controlled voltage source: V(on1)-V(on2) =
// gain * (V(cn1)-V(cn2)), owned by branch vs.
func (e *Engine) StampVCVS(on1, on2, cn1, cn2, vs int, gain float64) {
	vn := e.vsRow(vs)
	if on1 != 0 {
		e.StampMatrix(vn, on1, 1)
		e.StampMatrix(on1, vn, 1)
	}
	if on2 != 0 {
		e.StampMatrix(vn, on2, -1)
		e.StampMatrix(on2, vn, -1)
	}
	if cn1 != 0 {
		e.StampMatrix(vn, cn1, -gain)
	}
	if cn2 != 0 {
		e.StampMatrix(vn, cn2, gain)
	}
}

// StampVCCurrentSource stamps a voltage-controlled current source (VCCS)
// driving current gain*(V(vn1)-V(vn2)) from cn1 to cn2.
func (e *Engine) StampVCCurrentSource(cn1, cn2, vn1, vn2 int, gain float64) {
	if cn1 != 0 {
		if vn1 != 0 {
			e.StampMatrix(cn1, vn1, gain)
		}
		if vn2 != 0 {
			e.StampMatrix(cn1, vn2, -gain)
		}
	}
	if cn2 != 0 {
		if vn1 != 0 {
			e.StampMatrix(cn2, vn1, -gain)
		}
		if vn2 != 0 {
			e.StampMatrix(cn2, vn2, gain)
		}
	}
}

// StampCCCS stamps a current-controlled current source: output current
// gain*I(controlVS) flows from n1 to n2.
func (e *Engine) StampCCCS(n1, n2, controlVS int, gain float64) {
	vn := e.vsRow(controlVS)
	if n1 != 0 {
		e.StampMatrix(n1, vn, gain)
	}
	if n2 != 0 {
		e.StampMatrix(n2, vn, -gain)
	}
}

// StampCurrentSource stamps an independent current source of magnitude i
// flowing from n1 to n2.
func (e *Engine) StampCurrentSource(n1, n2 int, i float64) {
	e.StampRightSide(n1, -i)
	e.StampRightSide(n2, i)
}
