package mna

import (
	"math"

	"github.com/wiredge/mnacore/pkg/matrix"
)

// rowTag classifies an original (pre-simplification) matrix row once the
// row simplifier has looked at its shape.
type rowTag int

const (
	rowNormal rowTag = iota // kept as a live unknown in the compacted system
	rowConst                // x[row] is a known constant, folded into RHS
	rowEqual                // x[row] == x[nodeEq] (possibly via a chain)
)

// rowInfo tracks, for one original row/column, how the row simplifier
// classified it and where it landed in the compacted matrix.
type rowInfo struct {
	tag   rowTag
	value float64 // valid when tag == rowConst
	nodeEq int     // valid when tag == rowEqual: row this one equals

	dropRow   bool // this row was eliminated entirely
	lsChanges bool // left side is rewritten every Newton sub-iteration
	rsChanges bool // right side is rewritten every Newton sub-iteration

	mapRow int // row in the compacted matrix, valid when !dropRow
	mapCol int // column in the compacted matrix, valid when tag is rowNormal or rowEqual (an EQUAL row shares its target's column)
}

// simplify implements the row simplifier (C5): it detects constant and
// equal-chain rows in full and compacts the matrix down to newSize before
// handing back the compacted matrices the solver will factor.
//
// full is the matrix produced by the single initial stamp pass, sized
// matrixSize x matrixSize. rows is indexed the same way and is mutated in
// place with the discovered classification.
func simplify(full *matrix.Dense, rows []rowInfo) (compact *matrix.Dense, newSize int) {
	n := full.Size

	// Single-pass fixpoint scan for constant/equal rows. Re-scan from the
	// start whenever a row is newly classified, since folding one row can
	// turn its neighbor into a recognizable shape.
	for {
		progressed := false
		for i := 0; i < n; i++ {
			if rows[i].dropRow || rows[i].lsChanges || rows[i].rsChanges {
				continue
			}
			if rows[i].tag != rowNormal {
				continue
			}
			if tryConstantRow(full, rows, i) {
				progressed = true
				continue
			}
			if tryEqualRow(full, rows, i) {
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}

	resolveEqualChains(rows)

	// Assign mapCol densely over surviving NORMAL rows, then let every
	// EQUAL row inherit its (already chain-resolved) alias target's
	// mapCol, so a read against an EQUAL row's column lands on the same
	// solved unknown as its target.
	nextCol := 0
	for i := 0; i < n; i++ {
		if rows[i].tag == rowNormal {
			rows[i].mapCol = nextCol
			nextCol++
		} else {
			rows[i].mapCol = -1
		}
	}
	for i := 0; i < n; i++ {
		if rows[i].tag == rowEqual {
			rows[i].mapCol = rows[rows[i].nodeEq].mapCol
		}
	}

	// Assign mapRow densely over rows that were not dropped.
	nextRow := 0
	for i := 0; i < n; i++ {
		if !rows[i].dropRow {
			rows[i].mapRow = nextRow
			nextRow++
		}
	}
	newSize = nextRow

	compact = matrix.NewDense(newSize)
	for i := 0; i < n; i++ {
		if rows[i].dropRow {
			continue
		}
		mr := rows[i].mapRow
		for j := 0; j < n; j++ {
			v := full.A[i][j]
			if v == 0 {
				continue
			}
			switch rows[j].tag {
			case rowConst:
				compact.B[mr] -= v * rows[j].value
			case rowNormal, rowEqual:
				// EQUAL columns now carry their alias target's mapCol, so
				// both tags fold into the same compacted column.
				compact.A[mr][rows[j].mapCol] += v
			}
		}
		compact.B[mr] += full.B[i]
	}

	return compact, newSize
}

// tryConstantRow recognizes a row with exactly one NORMAL-column nonzero
// entry (any number of CONST-column entries, folded into rsadd). If
// found, the NORMAL column is reclassified CONST and this row dropped.
func tryConstantRow(full *matrix.Dense, rows []rowInfo, i int) bool {
	qp := -1
	q := 0.0
	rsadd := 0.0

	for j := 0; j < full.Size; j++ {
		v := full.A[i][j]
		if v == 0 {
			continue
		}
		switch {
		case rows[j].tag == rowConst:
			rsadd -= v * rows[j].value
		case rows[j].tag == rowNormal && !rows[j].lsChanges && !rows[j].rsChanges:
			if qp != -1 {
				return false // more than one live unknown
			}
			qp = j
			q = v
		default:
			return false // not a foldable shape (EQUAL, or a row that still varies)
		}
	}
	if qp == -1 || q == 0 {
		return false
	}

	value := (full.B[i] + rsadd) / q
	rows[qp] = rowInfo{tag: rowConst, value: value}
	rows[i].dropRow = true
	return true
}

// tryEqualRow recognizes a row with exactly two nonzero entries of equal
// magnitude and opposite sign in two NORMAL columns, and zero RHS: an
// ideal equality constraint x[qp] == x[qm].
func tryEqualRow(full *matrix.Dense, rows []rowInfo, i int) bool {
	qp, qm := -1, -1
	var qpv, qmv float64
	rsadd := 0.0

	for j := 0; j < full.Size; j++ {
		v := full.A[i][j]
		if v == 0 {
			continue
		}
		switch {
		case rows[j].tag == rowConst:
			rsadd -= v * rows[j].value
		case rows[j].tag == rowNormal && !rows[j].lsChanges && !rows[j].rsChanges:
			if qp == -1 {
				qp, qpv = j, v
			} else if qm == -1 {
				qm, qmv = j, v
			} else {
				return false
			}
		default:
			return false
		}
	}
	if qp == -1 || qm == -1 {
		return false
	}
	if math.Abs(qpv+qmv) > 1e-12 {
		return false // not equal-and-opposite
	}
	if math.Abs(full.B[i]+rsadd) > 1e-12 {
		return false
	}

	from, to := qp, qm
	if rows[from].tag != rowNormal {
		from, to = qm, qp
	}
	if rows[from].tag != rowNormal {
		return false
	}
	rows[from] = rowInfo{tag: rowEqual, nodeEq: to}
	rows[i].dropRow = true
	return true
}

// resolveEqualChains follows nodeEq up to 100 hops to its terminal row,
// breaking cycles by reverting to NORMAL and inheriting CONST if the
// chain lands on a constant row.
func resolveEqualChains(rows []rowInfo) {
	for i := range rows {
		if rows[i].tag != rowEqual {
			continue
		}
		cur := i
		seen := map[int]bool{i: true}
		hops := 0
		for rows[cur].tag == rowEqual && hops < 100 {
			next := rows[cur].nodeEq
			if seen[next] {
				rows[i].tag = rowNormal
				cur = i
				break
			}
			seen[next] = true
			cur = next
			hops++
		}
		switch rows[cur].tag {
		case rowConst:
			rows[i].tag = rowConst
			rows[i].value = rows[cur].value
		case rowNormal:
			rows[i].nodeEq = cur
		}
	}
}
