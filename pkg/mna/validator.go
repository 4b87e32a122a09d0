package mna

import (
	"errors"
	"math"
	"strconv"

	"github.com/katalvlaran/lvlath/graph"
)

// PathType restricts which elements the validator (C4) may step through
// while searching for a path between two resolved nodes.
type PathType int

const (
	// PathInduct allows any element except current sources: is there a
	// return path for an inductor's current?
	PathInduct PathType = iota
	// PathVoltage allows only wires and voltage sources: a zero-resistance
	// loop across a voltage source?
	PathVoltage
	// PathShort allows only wires: is a capacitor shorted out?
	PathShort
	// PathCapV allows wires, capacitors and voltage sources: is a
	// capacitor trapped in a voltage-source loop with no resistor?
	PathCapV
)

// inductPathBoundedDepth is the shallow search attempted before the
// validator falls back to an unbounded one, per the inductor-path rule.
const inductPathBoundedDepth = 5

// inductorMarker is an optional interface an inductor element implements
// so FindPath can recognize it for the current-matching rule without a
// central type switch.
type inductorMarker interface {
	IsInductor() bool
}

// capacitorMarker is the equivalent optional marker for capacitors.
type capacitorMarker interface {
	IsCapacitor() bool
}

// currentSourceMarker is the equivalent optional marker for independent
// current sources.
type currentSourceMarker interface {
	IsCurrentSource() bool
}

func isInductor(el Element) bool {
	m, ok := el.(inductorMarker)
	return ok && m.IsInductor()
}

func isCapacitor(el Element) bool {
	m, ok := el.(capacitorMarker)
	return ok && m.IsCapacitor()
}

func isCurrentSource(el Element) bool {
	m, ok := el.(currentSourceMarker)
	return ok && m.IsCurrentSource()
}

// admissible reports whether pt allows traversal through el.
func admissible(pt PathType, el Element) bool {
	switch pt {
	case PathInduct:
		return !isCurrentSource(el)
	case PathVoltage:
		return el.IsWire() || el.VoltageSourceCount() > 0
	case PathShort:
		return el.IsWire()
	case PathCapV:
		return el.IsWire() || el.VoltageSourceCount() > 0 || isCapacitor(el)
	default:
		return false
	}
}

var errPathFound = errors.New("path found")

func vertexID(nodeIdx int) string {
	return strconv.Itoa(nodeIdx)
}

// buildPathGraph constructs the ephemeral directed graph FindPath
// traverses: one vertex per resolved node, one edge per admissible
// lead-pair of every element but firstElm. Admissibility is resolved at
// construction time, including the inductor current-matching rule, so
// the traversal itself needs no per-edge bookkeeping.
func (e *Engine) buildPathGraph(pt PathType, firstElm Element, wantCurrent float64) *graph.Graph {
	g := graph.NewGraph(true, false)
	for i := range e.nodeList {
		g.AddVertex(&graph.Vertex{ID: vertexID(i), Metadata: map[string]interface{}{}})
	}

	for elmIdx, elm := range e.elements {
		if elm == firstElm {
			continue
		}
		n := elm.LeadCount()
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i == j || !elm.LeadsAreConnected(i, j) {
					continue
				}
				ni := e.leadNodeIdx[elmIdx][i]
				nj := e.leadNodeIdx[elmIdx][j]

				switch {
				case admissible(pt, elm):
					if pt == PathInduct && isInductor(elm) {
						sign := 1.0
						if i == 1 {
							sign = -1.0
						}
						if math.Abs(elm.GetCurrent()*sign-wantCurrent) > 1e-10 {
							continue
						}
					}
					g.AddEdge(vertexID(ni), vertexID(nj), 0)
				case elm.LeadIsGround(i) || elm.LeadIsGround(j):
					// Ground-bus bypass: a lead tied to ground may carry the
					// search onward through an otherwise inadmissible
					// element without that element being modeled as a
					// regular traversable edge.
					g.AddEdge(vertexID(ni), vertexID(nj), 0)
				}
			}
		}
	}
	return g
}

// findPathBounded runs a depth-capped DFS by hand, since lvlath's DFS
// only exposes a global abort (via OnVisit's error return) and cannot
// prune a single over-deep branch while continuing its siblings.
func findPathBounded(g *graph.Graph, startID, destID string, maxDepth int) bool {
	visited := map[string]bool{startID: true}
	var walk func(id string, depth int) bool
	walk = func(id string, depth int) bool {
		if id == destID {
			return true
		}
		if depth >= maxDepth {
			return false
		}
		for _, nbr := range g.Neighbors(id) {
			if visited[nbr.ID] {
				continue
			}
			visited[nbr.ID] = true
			if walk(nbr.ID, depth+1) {
				return true
			}
			visited[nbr.ID] = false
		}
		return false
	}
	return walk(startID, 0)
}

func findPathUnbounded(g *graph.Graph, startID, destID string) bool {
	if !g.HasVertex(startID) || !g.HasVertex(destID) {
		return false
	}
	_, err := g.DFS(startID, &graph.DFSOptions{
		OnVisit: func(v *graph.Vertex, depth int) error {
			if v.ID == destID {
				return errPathFound
			}
			return nil
		},
	})
	return errors.Is(err, errPathFound)
}

// FindPath reports whether destNode is reachable from startNode through
// elements admissible for pt, excluding firstElm (the element under
// test). wantCurrent is only consulted for PathInduct; pass 0 otherwise.
func (e *Engine) FindPath(pt PathType, startNode, destNode int, firstElm Element, wantCurrent float64) bool {
	if startNode == destNode {
		return true
	}
	g := e.buildPathGraph(pt, firstElm, wantCurrent)
	startID, destID := vertexID(startNode), vertexID(destNode)

	if pt == PathInduct {
		if findPathBounded(g, startID, destID, inductPathBoundedDepth) {
			return true
		}
	}
	return findPathUnbounded(g, startID, destID)
}

// validate implements C4's analyze-time checks: inductor return paths,
// current-source paths, voltage-source/wire loops and shorted/trapped
// capacitors. It returns a fatal error for any condition the spec marks
// fatal; non-fatal conditions are handled in place (element.Reset()) and
// return nil so the analyzer can proceed.
func (e *Engine) validate() error {
	for elmIdx, elm := range e.elements {
		switch {
		case isInductor(elm):
			if elm.LeadCount() != 2 {
				continue
			}
			n1, n2 := e.leadNodeIdx[elmIdx][0], e.leadNodeIdx[elmIdx][1]
			if !e.FindPath(PathInduct, n1, n2, elm, elm.GetCurrent()) {
				elm.Reset()
			}

		case isCurrentSource(elm):
			if elm.LeadCount() != 2 {
				continue
			}
			n1, n2 := e.leadNodeIdx[elmIdx][0], e.leadNodeIdx[elmIdx][1]
			if !e.FindPath(PathInduct, n1, n2, elm, 0) {
				return e.fail(ErrNoCurrentSourcePath, elm)
			}

		case elm.VoltageSourceCount() > 0:
			if elm.LeadCount() != 2 {
				continue
			}
			n1, n2 := e.leadNodeIdx[elmIdx][0], e.leadNodeIdx[elmIdx][1]
			if e.FindPath(PathVoltage, n1, n2, elm, 0) {
				return e.fail(ErrVoltageSourceLoop, elm)
			}

		case isCapacitor(elm):
			if elm.LeadCount() != 2 {
				continue
			}
			n1, n2 := e.leadNodeIdx[elmIdx][0], e.leadNodeIdx[elmIdx][1]
			if e.FindPath(PathShort, n1, n2, elm, 0) {
				elm.Reset()
			} else if e.FindPath(PathCapV, n1, n2, elm, 0) {
				return e.fail(ErrCapacitorLoop, elm)
			}
		}
	}
	return nil
}
