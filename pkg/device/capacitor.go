package device

import (
	"github.com/wiredge/mnacore/pkg/mna"
	"github.com/wiredge/mnacore/pkg/util"
)

// Capacitor uses the backward-Euler companion model: a conductance
// geq = C/dt in parallel with a history current source ceq = geq*v0,
// where v0 is the terminal voltage left over from the previous tick.
// The 1/dt factor comes from the order-1 Gear (BDF1) coefficient table
// in pkg/util, which is exactly backward-Euler; geq is constant for a
// fixed time step and is stamped once at analyze time, while ceq is
// refreshed every tick from BeginStep.
type Capacitor struct {
	Base
	Farads float64

	prevCeq float64
}

func NewCapacitor(name string, farads float64) *Capacitor {
	return &Capacitor{Base: NewBase(name, 2, 0, 0, false, false), Farads: farads}
}

func (c *Capacitor) IsCapacitor() bool { return true }

func (c *Capacitor) geq(e *mna.Engine) float64 {
	return c.Farads * util.GetIntegratorCoeffs(util.GearMethod, 1, e.TimeStep())[0]
}

func (c *Capacitor) Stamp(e *mna.Engine) error {
	geq := c.geq(e)
	n1, n2 := c.Node(0), c.Node(1)
	e.StampConductance(n1, n2, geq)
	// The history term on these rows changes every tick; exempt them
	// from being folded as if they were permanently constant or equal.
	if n1 != 0 {
		e.StampRightSideVar(n1)
	}
	if n2 != 0 {
		e.StampRightSideVar(n2)
	}
	return nil
}

func (c *Capacitor) BeginStep(e *mna.Engine) {
	geq := c.geq(e)
	v0 := c.VDiff()
	ceq := geq * v0

	delta := ceq - c.prevCeq
	c.prevCeq = ceq

	e.UpdateOrigRightSide(c.Node(0), delta)
	e.UpdateOrigRightSide(c.Node(1), -delta)
}

// Reset zeros the companion-model history, used when the validator
// finds this capacitor shorted by a wire: its voltage collapses to 0
// and the next tick should not carry over a stale history current.
func (c *Capacitor) Reset() {
	c.prevCeq = 0
	c.leadVoltage[0] = 0
	c.leadVoltage[1] = 0
}
