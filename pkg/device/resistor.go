package device

import "github.com/wiredge/mnacore/pkg/mna"

// Resistor is a linear two-terminal conductance stamp; it never
// changes once stamped, so it contributes nothing at Step time.
type Resistor struct {
	Base
	Ohms float64
}

func NewResistor(name string, ohms float64) *Resistor {
	return &Resistor{Base: NewBase(name, 2, 0, 0, false, false), Ohms: ohms}
}

func (r *Resistor) Stamp(e *mna.Engine) error {
	e.StampResistor(r.Node(0), r.Node(1), r.Ohms)
	return nil
}

// GetScopeFrame implements the observer's scopeSource interface:
// terminal voltage drop and the current it implies by Ohm's law.
func (r *Resistor) GetScopeFrame(t float64) []float64 {
	v := r.VDiff()
	return []float64{v, v / r.Ohms}
}
