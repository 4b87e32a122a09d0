package device

import "github.com/wiredge/mnacore/pkg/mna"

// Leads of HalfAdderElm, in terminal-ordinal order.
const (
	haLeadA = iota
	haLeadB
	haLeadSum
	haLeadCarry
)

// HalfAdderElm is a four-terminal digital chip: A and B are logic
// inputs, Sum and Carry are ideal-voltage-source outputs driven from
// them. The engine has no notion of logic levels; this element reads
// whatever voltage last settled on its input leads and drives its
// outputs accordingly — which means, since the part is linear, each
// tick's outputs reflect the *previous* tick's inputs. That one-tick
// lag is an accurate model of real combinational-logic chip latency
// at this level of abstraction, not a bug.
type HalfAdderElm struct {
	Base
	HighVolts float64
}

func NewHalfAdderElm(name string) *HalfAdderElm {
	return &HalfAdderElm{Base: NewBase(name, 4, 0, 2, false, false), HighVolts: 5.0}
}

// hasReset exists for parity with chip-like elements that the catalog
// may grow, but nothing in the core calls it; HalfAdderElm has no
// internal state worth clearing on a validator reset.
func (h *HalfAdderElm) hasReset() bool { return false }

func (h *HalfAdderElm) logicHigh(v float64) bool { return v >= h.HighVolts/2 }

func (h *HalfAdderElm) level(on bool) float64 {
	if on {
		return h.HighVolts
	}
	return 0
}

func (h *HalfAdderElm) Stamp(e *mna.Engine) error {
	e.StampVoltageSourceVar(h.Node(haLeadSum), 0, h.vsGlobal[0])
	e.StampVoltageSourceVar(h.Node(haLeadCarry), 0, h.vsGlobal[1])
	return nil
}

func (h *HalfAdderElm) Step(e *mna.Engine) error {
	a := h.logicHigh(h.Voltage(haLeadA))
	b := h.logicHigh(h.Voltage(haLeadB))

	sum := a != b   // XOR
	carry := a && b // AND

	e.UpdateVoltageSource(h.vsGlobal[0], h.level(sum))
	e.UpdateVoltageSource(h.vsGlobal[1], h.level(carry))
	return nil
}
