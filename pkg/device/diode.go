package device

import (
	"math"

	"github.com/wiredge/mnacore/internal/consts"
	"github.com/wiredge/mnacore/pkg/mna"
)

// diodeConvergenceTolerance bounds how much a diode's estimated junction
// voltage may move between Newton sub-iterations before the circuit is
// considered still-unsettled.
const diodeConvergenceTolerance = 1e-6

// Diode is the one nonlinear two-terminal device in the catalog: an
// exponential I-V junction linearized around its present operating
// point each Newton sub-iteration (the conductance method), exactly the
// companion model a SPICE-style nonlinear stamp uses.
type Diode struct {
	Base

	Is   float64 // saturation current
	N    float64 // emission coefficient
	Bv   float64 // breakdown voltage
	Gmin float64 // minimum conductance, keeps the Jacobian nonsingular

	tempKelvin float64

	vd, id, gd float64
	vdPrev     float64
}

func NewDiode(name string) *Diode {
	return &Diode{
		Base:       NewBase(name, 2, 0, 0, true, false),
		Is:         1e-14,
		N:          1.0,
		Bv:         100.0,
		Gmin:       1e-12,
		tempKelvin: 300.15,
	}
}

func (d *Diode) thermalVoltage() float64 {
	return consts.BOLTZMANN * d.tempKelvin / consts.CHARGE
}

func (d *Diode) current(vd, vt float64) float64 {
	if vd >= -5*vt {
		arg := vd / (d.N * vt)
		if arg > 40 {
			arg = 40
		}
		return d.Is * (math.Exp(arg) - 1)
	}
	if vd < -d.Bv {
		return -d.Is * (1 + (vd+d.Bv)/vt)
	}
	return -d.Is
}

func (d *Diode) conductance(vd, id, vt float64) float64 {
	if vd >= -5*vt {
		return (id+d.Is)/(d.N*vt) + d.Gmin
	}
	if vd < -d.Bv {
		return d.Is/vt + d.Gmin
	}
	return d.Gmin
}

func (d *Diode) Stamp(e *mna.Engine) error {
	n1, n2 := d.Node(0), d.Node(1)
	if n1 != 0 {
		e.StampNonLinear(n1)
	}
	if n2 != 0 {
		e.StampNonLinear(n2)
	}
	return d.restamp(e)
}

func (d *Diode) Step(e *mna.Engine) error {
	d.vd = d.VDiff()
	if math.Abs(d.vd-d.vdPrev) > diodeConvergenceTolerance {
		e.SetConverged(false)
	}
	d.vdPrev = d.vd
	return d.restamp(e)
}

// restamp linearizes the junction around d.vd: the companion
// conductance gd in parallel with a current-source correction
// id - gd*vd, the standard Newton-Raphson stamp for an exponential
// device.
func (d *Diode) restamp(e *mna.Engine) error {
	vt := d.thermalVoltage()
	d.id = d.current(d.vd, vt)
	d.gd = d.conductance(d.vd, d.id, vt)

	n1, n2 := d.Node(0), d.Node(1)
	e.StampConductance(n1, n2, d.gd)

	ieq := d.id - d.gd*d.vd
	e.StampRightSide(n1, -ieq)
	e.StampRightSide(n2, ieq)
	return nil
}
