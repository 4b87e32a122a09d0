package device

import "github.com/wiredge/mnacore/pkg/mna"

// GroundElm has a single lead declared as the reference node; connecting
// it to anything pins that mesh to node 0 during topology resolution.
// It contributes no matrix entries of its own.
type GroundElm struct {
	Base
}

func NewGroundElm(name string) *GroundElm {
	return &GroundElm{Base: NewBase(name, 1, 0, 0, false, false)}
}

func (g *GroundElm) LeadIsGround(i int) bool { return i == 0 }

func (g *GroundElm) Stamp(e *mna.Engine) error { return nil }
