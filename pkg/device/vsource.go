package device

import (
	"math"

	"github.com/wiredge/mnacore/pkg/mna"
)

// waveform is the time-to-voltage function a source evaluates each
// analyze/step; DC sources use a constant function, SIN sources a
// sinusoid, matching the source-type split the reference vsource model
// distinguishes by a VoltageType tag.
type waveform func(t float64) float64

func dcWaveform(v float64) waveform {
	return func(float64) float64 { return v }
}

func sinWaveform(offset, amplitude, freqHz, phaseDeg float64) waveform {
	phaseRad := phaseDeg * math.Pi / 180.0
	return func(t float64) float64 {
		return offset + amplitude*math.Sin(2*math.Pi*freqHz*t+phaseRad)
	}
}

// VoltageSource is a two-terminal ideal voltage source. A DC source
// stamps a constant right side once and is never re-stamped; any other
// waveform marks its row mutable and refreshes it every Step via
// UpdateVoltageSource.
type VoltageSource struct {
	Base
	wave        waveform
	timeVarying bool
}

func NewDCVoltageSource(name string, volts float64) *VoltageSource {
	return &VoltageSource{Base: NewBase(name, 2, 0, 1, false, false), wave: dcWaveform(volts)}
}

func NewSinVoltageSource(name string, offset, amplitude, freqHz, phaseDeg float64) *VoltageSource {
	return &VoltageSource{
		Base:        NewBase(name, 2, 0, 1, false, false),
		wave:        sinWaveform(offset, amplitude, freqHz, phaseDeg),
		timeVarying: true,
	}
}

func (v *VoltageSource) Stamp(e *mna.Engine) error {
	if v.timeVarying {
		e.StampVoltageSourceVar(v.Node(0), v.Node(1), v.vsGlobal[0])
		return nil
	}
	e.StampVoltageSource(v.Node(0), v.Node(1), v.vsGlobal[0], v.wave(0))
	return nil
}

func (v *VoltageSource) Step(e *mna.Engine) error {
	if v.timeVarying {
		// The tick being solved ends at Time()+TimeStep(), the time the
		// solution is reported at once Update advances the clock.
		e.UpdateVoltageSource(v.vsGlobal[0], v.wave(e.Time()+e.TimeStep()))
	}
	return nil
}

// RailSource is a one-terminal DC source: its implicit other terminal is
// ground, and it declares itself a rail so the topology resolver may
// pick its node as the reference (0) when no explicit GroundElm exists.
type RailSource struct {
	Base
	volts float64
}

func NewRailSource(name string, volts float64) *RailSource {
	return &RailSource{Base: NewBase(name, 1, 0, 1, false, false), volts: volts}
}

func (r *RailSource) IsRail() bool { return true }

func (r *RailSource) Stamp(e *mna.Engine) error {
	e.StampVoltageSource(r.Node(0), 0, r.vsGlobal[0], r.volts)
	return nil
}
