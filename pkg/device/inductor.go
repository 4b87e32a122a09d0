package device

import (
	"github.com/wiredge/mnacore/pkg/mna"
	"github.com/wiredge/mnacore/pkg/util"
)

// Inductor uses the backward-Euler companion model: a series resistance
// req = L/dt carrying the inductor's own branch current (so its current
// is a direct unknown, like a voltage source's), plus a history voltage
// veq = req*i0 refreshed every tick from BeginStep and entered as -veq on
// the branch row's right side (V1 - V2 - req*i = -req*i0). The 1/dt factor is
// the order-1 Gear (BDF1) coefficient from pkg/util, same as Capacitor.
type Inductor struct {
	Base
	Henries float64

	prevVeq float64
}

func NewInductor(name string, henries float64) *Inductor {
	return &Inductor{Base: NewBase(name, 2, 0, 1, false, false), Henries: henries}
}

func (l *Inductor) IsInductor() bool { return true }

func (l *Inductor) req(e *mna.Engine) float64 {
	return l.Henries * util.GetIntegratorCoeffs(util.GearMethod, 1, e.TimeStep())[0]
}

func (l *Inductor) Stamp(e *mna.Engine) error {
	vn := l.VSRow(e, 0)
	n1, n2 := l.Node(0), l.Node(1)

	e.StampVoltageSource(n1, n2, l.vsGlobal[0], 0)
	req := l.req(e)
	e.StampMatrix(vn, vn, -req)
	e.StampRightSideVar(vn)
	return nil
}

func (l *Inductor) BeginStep(e *mna.Engine) {
	req := l.req(e)
	i0 := l.GetCurrent()
	veq := req * i0

	delta := veq - l.prevVeq
	l.prevVeq = veq

	e.UpdateOrigRightSide(l.VSRow(e, 0), -delta)
}

// Reset zeros the companion-model history, used when the validator
// cannot find a return path for this inductor's current.
func (l *Inductor) Reset() {
	l.prevVeq = 0
	l.vsCurrent[0] = 0
}
