// Package mna implements the Modified Nodal Analysis engine: it turns a
// netlist of user-connected Element leads into a sparse-ish node topology,
// stamps a linear system, simplifies it, factors it, and steps it forward
// in time with Newton-Raphson for nonlinear devices.
//
// The engine never imports a concrete device. It only depends on the
// Element capability set below; the catalog of resistors, capacitors,
// diodes and so on lives in a separate package (pkg/device) and is wired
// in by the caller.
package mna

// Element is the capability set the engine requires of anything it
// stamps into the matrix. Concrete devices (resistors, diodes, logic
// chips, ...) implement it; the engine never type-switches on a concrete
// device type.
type Element interface {
	// LeadCount returns the number of external terminals.
	LeadCount() int
	// InternalLeadCount returns the number of engine-injected internal
	// terminals the element needs (e.g. a BJT's internal base node).
	InternalLeadCount() int
	// VoltageSourceCount returns how many MNA branch rows this element
	// owns (0 for passive elements, 1 for a simple voltage source or
	// wire, 2+ for things like a transformer).
	VoltageSourceCount() int

	// NonLinear reports whether Step must be called every Newton
	// sub-iteration (and the matrix re-factored) rather than once.
	NonLinear() bool
	// IsWire reports whether this element is an ideal, zero-resistance
	// connection — relevant to the SHORT and VOLTAGE path checks.
	IsWire() bool

	// LeadIsGround reports whether terminal i is declared, by the
	// element's own type, to be a ground connection. This is a
	// declarative property of the element (e.g. GroundElm always
	// answers true for its one lead) independent of whatever node index
	// it has actually been bound to.
	LeadIsGround(i int) bool
	// LeadsAreConnected reports whether the element internally couples
	// terminals i and j (i.e. whether current can flow between them
	// through this element). Used by the path validator.
	LeadsAreConnected(i, j int) bool

	// Stamp contributes this element's linear (or Jacobian-linearized)
	// MNA entries. Called once per analyze.
	Stamp(e *Engine) error
	// BeginStep runs once per tick, before the Newton loop, to let
	// reactive devices precompute their companion model from the
	// previous tick's state.
	BeginStep(e *Engine)
	// Step runs at least once per tick, once per Newton sub-iteration
	// for nonlinear devices. Linear devices typically just push a
	// time-varying source value through UpdateVoltageSource here.
	Step(e *Engine) error

	// SetLeadNode binds terminal i to node index nodeIndex (its row in
	// the post-resolve node list). Called before Stamp.
	SetLeadNode(i, nodeIndex int)
	// SetLeadVoltage pushes the solved voltage at terminal i back into
	// the element, once per Newton sub-iteration.
	SetLeadVoltage(i int, v float64)
	// SetVoltageSource binds this element's ordinal-th owned voltage
	// source to the engine's global voltage-source index k.
	SetVoltageSource(ordinal, globalIndex int)
	// SetCurrent records the solved branch current for the owned voltage
	// source whose global index is vs.
	SetCurrent(vs int, current float64)

	// Reset clears element-local history (used/invoked when the
	// validator finds the element's path is degenerate, e.g. a shorted
	// capacitor or an inductor with no return path).
	Reset()
	// GetCurrent returns the element's most recently solved current,
	// used by the inductor path-matching rule in the validator.
	GetCurrent() float64
}

// Lead identifies one terminal of one element: a connection point a
// caller can pass to Engine.Connect.
type Lead struct {
	Elm  Element
	Term int
}
