// Package device is the reference element catalog the engine exercises
// through the mna.Element interface: resistors, sources, reactive
// components, a diode and a small digital chip. None of this is core
// to the simulator — it exists so the engine has something concrete to
// stamp, step and validate against.
package device

import "github.com/wiredge/mnacore/pkg/mna"

// Base holds the lead/voltage-source bookkeeping every element needs so
// the engine can bind terminals and distribute solved values, leaving
// concrete types to implement only Stamp (and, for reactive/nonlinear
// parts, BeginStep/Step/Reset).
type Base struct {
	Name string

	leads         int
	internalLeads int
	vsCount       int
	nonlinear     bool
	wire          bool

	leadNode    []int
	leadVoltage []float64
	vsGlobal    []int
	vsCurrent   []float64
}

// NewBase allocates a Base for an element with the given terminal
// shape. internalLeads and vsCount are usually 0 for passive two-lead
// parts.
func NewBase(name string, leads, internalLeads, vsCount int, nonlinear, wire bool) Base {
	n := leads + internalLeads
	return Base{
		Name:          name,
		leads:         leads,
		internalLeads: internalLeads,
		vsCount:       vsCount,
		nonlinear:     nonlinear,
		wire:          wire,
		leadNode:      make([]int, n),
		leadVoltage:   make([]float64, n),
		vsGlobal:      make([]int, vsCount),
		vsCurrent:     make([]float64, vsCount),
	}
}

func (b *Base) LeadCount() int            { return b.leads }
func (b *Base) InternalLeadCount() int     { return b.internalLeads }
func (b *Base) VoltageSourceCount() int    { return b.vsCount }
func (b *Base) NonLinear() bool            { return b.nonlinear }
func (b *Base) IsWire() bool               { return b.wire }
func (b *Base) LeadIsGround(i int) bool    { return false }
func (b *Base) LeadsAreConnected(i, j int) bool {
	// The default two-terminal assumption: current that enters one lead
	// leaves the other. Elements with any other lead count (chips, rails)
	// report no internal coupling.
	return b.leads == 2 && i != j
}

func (b *Base) SetLeadNode(i, nodeIndex int)     { b.leadNode[i] = nodeIndex }
func (b *Base) SetLeadVoltage(i int, v float64)   { b.leadVoltage[i] = v }
func (b *Base) SetVoltageSource(ordinal, globalIndex int) {
	b.vsGlobal[ordinal] = globalIndex
}
func (b *Base) SetCurrent(vs int, current float64) {
	for ord, g := range b.vsGlobal {
		if g == vs {
			b.vsCurrent[ord] = current
			return
		}
	}
}

// Voltage returns the solved voltage most recently distributed to lead i.
func (b *Base) Voltage(i int) float64 { return b.leadVoltage[i] }

// VDiff is the common two-terminal convenience: V(0) - V(1).
func (b *Base) VDiff() float64 {
	if b.leads < 2 {
		return 0
	}
	return b.leadVoltage[0] - b.leadVoltage[1]
}

// GetCurrent returns the current through this element's first (usually
// only) owned voltage source branch, or 0 if it owns none.
func (b *Base) GetCurrent() float64 {
	if len(b.vsCurrent) == 0 {
		return 0
	}
	return b.vsCurrent[0]
}

func (b *Base) BeginStep(e *mna.Engine) {}
func (b *Base) Step(e *mna.Engine) error { return nil }
func (b *Base) Reset()                   {}

// Node is a 1-based node-index accessor the kernel expects: lead i's
// resolved node, or 0 before analyze has run.
func (b *Base) Node(i int) int {
	// leadNode holds the 0-based nodeList position; the kernel's 1-based
	// convention for "node i" is the nodeList position itself (0 already
	// means ground in both schemes).
	return b.leadNode[i]
}

// VSRow is the 1-based node-index argument addressing this element's
// ordinal-th owned voltage-source row.
func (b *Base) VSRow(e *mna.Engine, ordinal int) int {
	return e.NodeCount() + b.vsGlobal[ordinal]
}
