package device

import "github.com/wiredge/mnacore/pkg/mna"

// Wire is an ideal zero-resistance connection, modeled as a 0V voltage
// source so its branch row is the classic EQUAL shape the row
// simplifier collapses away. IsWire reports true so the validator
// treats it as admissible for SHORT and VOLTAGE path searches.
type Wire struct {
	Base
}

func NewWire(name string) *Wire {
	w := &Wire{Base: NewBase(name, 2, 0, 1, false, true)}
	return w
}

func (w *Wire) Stamp(e *mna.Engine) error {
	e.StampVoltageSource(w.Node(0), w.Node(1), w.vsGlobal[0], 0)
	return nil
}
