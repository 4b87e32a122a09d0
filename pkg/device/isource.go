package device

import "github.com/wiredge/mnacore/pkg/mna"

// CurrentSource is a two-terminal independent DC current source,
// flowing from lead 0 to lead 1. It implements the validator's
// currentSourceMarker so FindPath excludes it from INDUCT traversal and
// requires a return path of its own.
type CurrentSource struct {
	Base
	Amps float64
}

func NewCurrentSource(name string, amps float64) *CurrentSource {
	return &CurrentSource{Base: NewBase(name, 2, 0, 0, false, false), Amps: amps}
}

func (c *CurrentSource) IsCurrentSource() bool { return true }

func (c *CurrentSource) Stamp(e *mna.Engine) error {
	e.StampCurrentSource(c.Node(0), c.Node(1), c.Amps)
	return nil
}
