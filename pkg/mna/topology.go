package mna

import "github.com/wiredge/mnacore/pkg/matrix"

// railElement is an optional marker a voltage-source-like element can
// implement to declare itself a rail: a source with one explicit
// terminal whose other terminal is implicitly ground.
type railElement interface {
	IsRail() bool
}

func isRail(el Element) bool {
	if m, ok := el.(railElement); ok {
		return m.IsRail()
	}
	return false
}

func hasDeclaredGround(el Element) bool {
	for i := 0; i < el.LeadCount(); i++ {
		if el.LeadIsGround(i) {
			return true
		}
	}
	return false
}

// resolve implements the topology resolver (C3): it converts the
// lead-adjacency mesh built up by Connect calls into the ordered node
// list, assigns voltage-source rows, allocates internal nodes, and
// performs the single initial stamp pass.
func (e *Engine) resolve() error {
	e.nodeList = e.nodeList[:0]
	e.vsOwners = e.vsOwners[:0]

	meshToNode := make(map[int64]int)

	groundID := e.chooseGroundID()
	e.nodeList = append(e.nodeList, nodeRecord{meshID: groundID})
	meshToNode[groundID] = groundNode

	// Leads declared ground adopt groundID outright, and every lead
	// Connect had merged into the same mesh follows them onto groundID,
	// so the whole group resolves to node 0.
	for elmIdx, elm := range e.elements {
		for term := 0; term < elm.LeadCount(); term++ {
			if !elm.LeadIsGround(term) {
				continue
			}
			old := e.leadMesh[elmIdx][term]
			e.leadMesh[elmIdx][term] = groundID
			if old == -1 || old == groundID {
				continue
			}
			for _, mesh := range e.leadMesh {
				for k := range mesh {
					if mesh[k] == old {
						mesh[k] = groundID
					}
				}
			}
		}
	}

	// External terminals: element insertion order determines
	// enumeration, and node index within an element follows terminal
	// ordinal, per the resolver's tie-break rule.
	for elmIdx, elm := range e.elements {
		for term := 0; term < elm.LeadCount(); term++ {
			meshID := e.leadMesh[elmIdx][term]
			if meshID == -1 {
				meshID = e.allocMeshID()
				e.leadMesh[elmIdx][term] = meshID
			}

			idx, ok := meshToNode[meshID]
			if !ok {
				idx = len(e.nodeList)
				e.nodeList = append(e.nodeList, nodeRecord{meshID: meshID})
				meshToNode[meshID] = idx
			}

			e.leadNodeIdx[elmIdx][term] = idx
			elm.SetLeadNode(term, idx)
			if idx == groundNode {
				elm.SetLeadVoltage(term, 0)
			}
		}
	}

	// Internal terminals: always fresh, engine-injected nodes exempt
	// from the unconnected-node repair.
	for elmIdx, elm := range e.elements {
		base := elm.LeadCount()
		for k := 0; k < elm.InternalLeadCount(); k++ {
			term := base + k
			meshID := e.allocMeshID()
			idx := len(e.nodeList)
			e.nodeList = append(e.nodeList, nodeRecord{meshID: meshID, internal: true})
			meshToNode[meshID] = idx

			e.leadMesh[elmIdx][term] = meshID
			e.leadNodeIdx[elmIdx][term] = idx
			elm.SetLeadNode(term, idx)
		}
	}

	// Voltage-source registry.
	e.circuitNonLinear = false
	for _, elm := range e.elements {
		if elm.NonLinear() {
			e.circuitNonLinear = true
		}
		for ordinal := 0; ordinal < elm.VoltageSourceCount(); ordinal++ {
			global := len(e.vsOwners)
			e.vsOwners = append(e.vsOwners, elm)
			elm.SetVoltageSource(ordinal, global)
		}
	}

	e.matrixSize = len(e.nodeList) - 1 + len(e.vsOwners)
	e.rows = make([]rowInfo, e.matrixSize)
	e.circuitMatrix = matrix.NewDense(e.matrixSize)
	e.circuitNeedsMap = false
	e.pivots = make([]int, e.matrixSize)

	for _, elm := range e.elements {
		if err := elm.Stamp(e); err != nil {
			return e.fail(err, elm)
		}
	}

	return nil
}

// chooseGroundID picks node index 0's mesh ID per the resolver's
// priority: an element that declares a ground lead or rail wins over a
// bare two-terminal voltage source's first terminal, which in turn wins
// over allocating a fresh, unconnected ground.
func (e *Engine) chooseGroundID() int64 {
	for _, elm := range e.elements {
		if hasDeclaredGround(elm) || isRail(elm) {
			return e.allocMeshID()
		}
	}
	for elmIdx, elm := range e.elements {
		if elm.VoltageSourceCount() > 0 && elm.LeadCount() == 2 {
			id := e.leadMesh[elmIdx][0]
			if id != -1 {
				return id
			}
		}
	}
	return e.allocMeshID()
}
