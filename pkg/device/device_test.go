package device_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wiredge/mnacore/pkg/device"
	"github.com/wiredge/mnacore/pkg/mna"
)

// Resistor's drop matches Ohm's law across a simple source/resistor
// loop with a second resistor providing the return path to ground.
func TestResistorDropsByOhmsLaw(t *testing.T) {
	e := mna.NewEngine()
	battery := device.NewDCVoltageSource("V1", 9.0)
	r1 := device.NewResistor("R1", 3e3)
	r2 := device.NewResistor("R2", 6e3)
	gnd := device.NewGroundElm("GND")

	e.AddElement(battery)
	e.AddElement(r1)
	e.AddElement(r2)
	e.AddElement(gnd)

	e.Connect(mna.Lead{Elm: gnd, Term: 0}, mna.Lead{Elm: battery, Term: 1})
	e.Connect(mna.Lead{Elm: battery, Term: 0}, mna.Lead{Elm: r1, Term: 0})
	e.Connect(mna.Lead{Elm: r1, Term: 1}, mna.Lead{Elm: r2, Term: 0})
	e.Connect(mna.Lead{Elm: r2, Term: 1}, mna.Lead{Elm: gnd, Term: 0})

	require.NoError(t, e.Update())
	require.Empty(t, e.ErrorMessage())

	// 3k/6k divider of a 9V source: 3V across R1, 6V across R2.
	require.InDelta(t, 3.0, r1.VDiff(), 1e-9)
	require.InDelta(t, 6.0, r2.VDiff(), 1e-9)
}

// A wire from the resistor's far end to ground carries no voltage drop
// of its own: its branch row pins that end to ground's 0V, and the two
// wire leads read identical voltages.
func TestWireTiesLeadsToEqualVoltage(t *testing.T) {
	e := mna.NewEngine()
	battery := device.NewDCVoltageSource("V1", 5.0)
	r := device.NewResistor("R1", 1e3)
	w := device.NewWire("W1")
	gnd := device.NewGroundElm("GND")

	e.AddElement(battery)
	e.AddElement(r)
	e.AddElement(w)
	e.AddElement(gnd)

	e.Connect(mna.Lead{Elm: gnd, Term: 0}, mna.Lead{Elm: battery, Term: 1})
	e.Connect(mna.Lead{Elm: battery, Term: 0}, mna.Lead{Elm: r, Term: 0})
	e.Connect(mna.Lead{Elm: r, Term: 1}, mna.Lead{Elm: w, Term: 0})
	e.Connect(mna.Lead{Elm: w, Term: 1}, mna.Lead{Elm: gnd, Term: 0})

	require.NoError(t, e.Update())
	require.Empty(t, e.ErrorMessage())
	require.InDelta(t, w.Voltage(0), w.Voltage(1), 1e-9)
	require.InDelta(t, 0, w.VDiff(), 1e-9)
}

// A capacitor charging through a resistor tracks the backward-Euler
// companion model tick by tick, not just at the asymptote: each step's
// voltage should strictly increase toward the supply and never
// overshoot it.
func TestCapacitorChargesMonotonically(t *testing.T) {
	e := mna.NewEngine()
	battery := device.NewDCVoltageSource("V1", 5.0)
	r := device.NewResistor("R1", 1e3)
	c := device.NewCapacitor("C1", 1e-6)
	gnd := device.NewGroundElm("GND")

	e.AddElement(battery)
	e.AddElement(r)
	e.AddElement(c)
	e.AddElement(gnd)

	e.Connect(mna.Lead{Elm: gnd, Term: 0}, mna.Lead{Elm: battery, Term: 1})
	e.Connect(mna.Lead{Elm: battery, Term: 0}, mna.Lead{Elm: r, Term: 0})
	e.Connect(mna.Lead{Elm: r, Term: 1}, mna.Lead{Elm: c, Term: 0})
	e.Connect(mna.Lead{Elm: c, Term: 1}, mna.Lead{Elm: gnd, Term: 0})

	prev := 0.0
	for i := 0; i < 50; i++ {
		require.NoError(t, e.Update())
		require.Empty(t, e.ErrorMessage())
		v := c.Voltage(0)
		require.GreaterOrEqual(t, v, prev)
		require.LessOrEqual(t, v, 5.0+1e-9)
		prev = v
	}
}

// An inductor in series with a resistor driven by a step input ramps
// current up from zero, asymptoting toward V/R, the classic L/R
// charging curve.
func TestInductorCurrentRampsTowardSteadyState(t *testing.T) {
	e := mna.NewEngine()
	battery := device.NewDCVoltageSource("V1", 5.0)
	l := device.NewInductor("L1", 1e-3)
	r := device.NewResistor("R1", 100)
	gnd := device.NewGroundElm("GND")

	e.AddElement(battery)
	e.AddElement(l)
	e.AddElement(r)
	e.AddElement(gnd)

	e.Connect(mna.Lead{Elm: gnd, Term: 0}, mna.Lead{Elm: battery, Term: 1})
	e.Connect(mna.Lead{Elm: battery, Term: 0}, mna.Lead{Elm: l, Term: 0})
	e.Connect(mna.Lead{Elm: l, Term: 1}, mna.Lead{Elm: r, Term: 0})
	e.Connect(mna.Lead{Elm: r, Term: 1}, mna.Lead{Elm: gnd, Term: 0})

	var prev float64
	for i := 0; i < 500; i++ {
		require.NoError(t, e.Update())
		require.Empty(t, e.ErrorMessage())
		cur := math.Abs(l.GetCurrent())
		require.GreaterOrEqual(t, cur+1e-12, prev)
		prev = cur
	}

	steady := 5.0 / 100
	require.InDelta(t, steady, prev, steady*0.05)
}

// A diode forward-biased through a series resistor drops close to its
// junction's characteristic turn-on voltage, not the full supply.
func TestDiodeForwardDropIsSmallFractionOfSupply(t *testing.T) {
	e := mna.NewEngine()
	battery := device.NewDCVoltageSource("V1", 5.0)
	d := device.NewDiode("D1")
	r := device.NewResistor("R1", 1e3)
	gnd := device.NewGroundElm("GND")

	e.AddElement(battery)
	e.AddElement(d)
	e.AddElement(r)
	e.AddElement(gnd)

	e.Connect(mna.Lead{Elm: gnd, Term: 0}, mna.Lead{Elm: battery, Term: 1})
	e.Connect(mna.Lead{Elm: battery, Term: 0}, mna.Lead{Elm: d, Term: 0})
	e.Connect(mna.Lead{Elm: d, Term: 1}, mna.Lead{Elm: r, Term: 0})
	e.Connect(mna.Lead{Elm: r, Term: 1}, mna.Lead{Elm: gnd, Term: 0})

	require.NoError(t, e.Update())
	require.Empty(t, e.ErrorMessage())

	drop := d.VDiff()
	require.Greater(t, drop, 0.0)
	require.Less(t, drop, 1.0)
}

// A current source draws its declared current out of the node through
// the resistor from ground, so the node voltage settles to -I*R by Ohm's
// law.
func TestCurrentSourceDrivesIRDrop(t *testing.T) {
	e := mna.NewEngine()
	src := device.NewCurrentSource("I1", 1e-3)
	r := device.NewResistor("R1", 1e3)
	gnd := device.NewGroundElm("GND")

	e.AddElement(src)
	e.AddElement(r)
	e.AddElement(gnd)

	e.Connect(mna.Lead{Elm: src, Term: 0}, mna.Lead{Elm: r, Term: 0})
	e.Connect(mna.Lead{Elm: r, Term: 1}, mna.Lead{Elm: gnd, Term: 0})
	e.Connect(mna.Lead{Elm: src, Term: 1}, mna.Lead{Elm: gnd, Term: 0})

	require.NoError(t, e.Update())
	require.Empty(t, e.ErrorMessage())
	require.InDelta(t, -1.0, r.Voltage(0), 1e-9)
}

// A rail source needs no explicit GroundElm: its own implicit second
// terminal seats the reference node.
func TestRailSourceNeedsNoGroundElement(t *testing.T) {
	e := mna.NewEngine()
	rail := device.NewRailSource("V1", 3.3)
	r := device.NewResistor("R1", 1e3)

	e.AddElement(rail)
	e.AddElement(r)

	e.Connect(mna.Lead{Elm: rail, Term: 0}, mna.Lead{Elm: r, Term: 0})

	require.NoError(t, e.Update())
	require.Empty(t, e.ErrorMessage())
	require.InDelta(t, 3.3, r.Voltage(0), 1e-9)
}

// A sinusoidal source's terminal voltage follows its waveform once
// Step has had a chance to refresh the time-varying row.
func TestSinVoltageSourceTracksWaveform(t *testing.T) {
	e := mna.NewEngine()
	const freq = 1e3
	src := device.NewSinVoltageSource("V1", 0, 1.0, freq, 0)
	r := device.NewResistor("R1", 1e3)
	gnd := device.NewGroundElm("GND")

	e.AddElement(src)
	e.AddElement(r)
	e.AddElement(gnd)

	e.Connect(mna.Lead{Elm: gnd, Term: 0}, mna.Lead{Elm: src, Term: 1})
	e.Connect(mna.Lead{Elm: src, Term: 0}, mna.Lead{Elm: r, Term: 0})
	e.Connect(mna.Lead{Elm: r, Term: 1}, mna.Lead{Elm: gnd, Term: 0})

	e.SetTimeStep(1e-6)
	require.NoError(t, e.Update())
	require.Empty(t, e.ErrorMessage())

	want := math.Sin(2 * math.Pi * freq * e.Time())
	require.InDelta(t, want, src.Voltage(0), 1e-6)
}
