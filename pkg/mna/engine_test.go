package mna_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wiredge/mnacore/pkg/device"
	"github.com/wiredge/mnacore/pkg/mna"
)

// S1 — Voltage divider.
func TestVoltageDividerMidpoint(t *testing.T) {
	e := mna.NewEngine()
	battery := device.NewDCVoltageSource("V1", 10.0)
	r1 := device.NewResistor("R1", 10e3)
	r2 := device.NewResistor("R2", 10e3)
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
	require.InDelta(t, 5.0, r1.Voltage(1), 1e-9)
}

// S2 — RC charge.
func TestRCChargeApproachesAnalytical(t *testing.T) {
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

	for i := 0; i < 200; i++ {
		require.NoError(t, e.Update())
		require.Empty(t, e.ErrorMessage())
	}

	tau := 1e3 * 1e-6
	want := 5.0 * (1 - math.Exp(-e.Time()/tau))
	require.InDelta(t, want, c.Voltage(0), want*0.01)
}

// S3 — Shorted capacitor.
func TestShortedCapacitorResets(t *testing.T) {
	e := mna.NewEngine()
	battery := device.NewDCVoltageSource("V1", 5.0)
	r := device.NewResistor("R1", 1e3)
	c := device.NewCapacitor("C1", 1e-6)
	w := device.NewWire("W1")
	gnd := device.NewGroundElm("GND")

	e.AddElement(battery)
	e.AddElement(r)
	e.AddElement(c)
	e.AddElement(w)
	e.AddElement(gnd)

	e.Connect(mna.Lead{Elm: gnd, Term: 0}, mna.Lead{Elm: battery, Term: 1})
	e.Connect(mna.Lead{Elm: battery, Term: 0}, mna.Lead{Elm: r, Term: 0})
	e.Connect(mna.Lead{Elm: r, Term: 1}, mna.Lead{Elm: c, Term: 0})
	e.Connect(mna.Lead{Elm: c, Term: 1}, mna.Lead{Elm: gnd, Term: 0})
	e.Connect(mna.Lead{Elm: w, Term: 0}, mna.Lead{Elm: c, Term: 0})
	e.Connect(mna.Lead{Elm: w, Term: 1}, mna.Lead{Elm: c, Term: 1})

	require.NoError(t, e.Update())
	require.Empty(t, e.ErrorMessage())
	require.InDelta(t, 0, c.Voltage(0), 1e-9)
}

// S4 — Voltage-source loop.
func TestParallelBatteriesFatal(t *testing.T) {
	e := mna.NewEngine()
	v1 := device.NewDCVoltageSource("V1", 5.0)
	v2 := device.NewDCVoltageSource("V2", 9.0)
	gnd := device.NewGroundElm("GND")

	e.AddElement(v1)
	e.AddElement(v2)
	e.AddElement(gnd)

	e.Connect(mna.Lead{Elm: gnd, Term: 0}, mna.Lead{Elm: v1, Term: 1})
	e.Connect(mna.Lead{Elm: v1, Term: 1}, mna.Lead{Elm: v2, Term: 1})
	e.Connect(mna.Lead{Elm: v1, Term: 0}, mna.Lead{Elm: v2, Term: 0})

	err := e.Update()
	require.ErrorIs(t, err, mna.ErrVoltageSourceLoop)
	require.NotEmpty(t, e.ErrorMessage())
}

// S5 — Half-adder chip.
func TestHalfAdderSumCarry(t *testing.T) {
	e := mna.NewEngine()
	gnd := device.NewGroundElm("GND")
	highA := device.NewRailSource("VA", 5.0)
	highB := device.NewRailSource("VB", 5.0)
	adder := device.NewHalfAdderElm("U1")
	sumLoad := device.NewResistor("RSUM", 1e6)
	carryLoad := device.NewResistor("RCARRY", 1e6)

	e.AddElement(gnd)
	e.AddElement(highA)
	e.AddElement(highB)
	e.AddElement(adder)
	e.AddElement(sumLoad)
	e.AddElement(carryLoad)

	e.Connect(mna.Lead{Elm: highA, Term: 0}, mna.Lead{Elm: adder, Term: 0})
	e.Connect(mna.Lead{Elm: highB, Term: 0}, mna.Lead{Elm: adder, Term: 1})
	e.Connect(mna.Lead{Elm: adder, Term: 2}, mna.Lead{Elm: sumLoad, Term: 0})
	e.Connect(mna.Lead{Elm: sumLoad, Term: 1}, mna.Lead{Elm: gnd, Term: 0})
	e.Connect(mna.Lead{Elm: adder, Term: 3}, mna.Lead{Elm: carryLoad, Term: 0})
	e.Connect(mna.Lead{Elm: carryLoad, Term: 1}, mna.Lead{Elm: gnd, Term: 0})

	// First tick: inputs settle, chip has not yet reacted (outputs 0).
	require.NoError(t, e.Update())
	require.Empty(t, e.ErrorMessage())

	// Second tick: chip reacts to the now-settled A=1,B=1 inputs.
	require.NoError(t, e.Update())
	require.Empty(t, e.ErrorMessage())
	require.InDelta(t, 0.0, adder.Voltage(2), 1e-6)
	require.InDelta(t, 5.0, adder.Voltage(3), 1e-6)
}

// S6 — Diode rectifier.
func TestDiodeRectifierClampsReverseHalf(t *testing.T) {
	e := mna.NewEngine()
	src := device.NewSinVoltageSource("V1", 0, 5.0, 1e3, 0)
	d := device.NewDiode("D1")
	r := device.NewResistor("R1", 1e3)
	gnd := device.NewGroundElm("GND")

	e.AddElement(src)
	e.AddElement(d)
	e.AddElement(r)
	e.AddElement(gnd)

	e.Connect(mna.Lead{Elm: gnd, Term: 0}, mna.Lead{Elm: src, Term: 1})
	e.Connect(mna.Lead{Elm: src, Term: 0}, mna.Lead{Elm: d, Term: 0})
	e.Connect(mna.Lead{Elm: d, Term: 1}, mna.Lead{Elm: r, Term: 0})
	e.Connect(mna.Lead{Elm: r, Term: 1}, mna.Lead{Elm: gnd, Term: 0})

	e.SetTimeStep(1e-5)
	period := 1e-3
	steps := int(period / e.TimeStep())

	var positiveSum float64
	for i := 0; i < steps; i++ {
		require.NoError(t, e.Update())
		require.Empty(t, e.ErrorMessage())
		v := r.Voltage(0) - r.Voltage(1)
		if v > 0 {
			positiveSum += v
		}
	}
	require.Greater(t, positiveSum, 0.0)
}

// S8/S9 (spec §8 boundary properties).
func TestZeroElementsUpdateIsNoop(t *testing.T) {
	e := mna.NewEngine()
	require.NoError(t, e.Update())
	require.Zero(t, e.Time())
}

func TestFloatingWireGetsTiedToGround(t *testing.T) {
	e := mna.NewEngine()
	w := device.NewWire("W1")
	gnd := device.NewGroundElm("GND")
	e.AddElement(w)
	e.AddElement(gnd)

	require.NoError(t, e.Update())
	require.Empty(t, e.ErrorMessage())
	require.InDelta(t, 0, w.Voltage(0), 1e-6)
	require.InDelta(t, 0, w.Voltage(1), 1e-6)
}

func TestTimeAdvancesExactlyByStepCount(t *testing.T) {
	e := mna.NewEngine()
	gnd := device.NewGroundElm("GND")
	src := device.NewRailSource("V1", 1.0)
	e.AddElement(gnd)
	e.AddElement(src)

	const n = 37
	for i := 0; i < n; i++ {
		require.NoError(t, e.Update())
	}
	require.InDelta(t, float64(n)*e.TimeStep(), e.Time(), 1e-15)
}

// Watch records one scope frame per tick for a watched device that
// implements GetScopeFrame.
func TestWatchRecordsScopeFrames(t *testing.T) {
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

	buf := e.Watch(r1)
	require.Empty(t, buf.Frames)

	const ticks = 5
	for i := 0; i < ticks; i++ {
		require.NoError(t, e.Update())
		require.Empty(t, e.ErrorMessage())
	}

	require.Len(t, buf.Frames, ticks)
	last, ok := buf.Last()
	require.True(t, ok)
	require.InDelta(t, 3.0, last.Values[0], 1e-9)
	require.InDelta(t, 3.0/3e3, last.Values[1], 1e-12)

	// Watching r1 again returns the existing buffer, not a new one.
	require.Same(t, buf, e.Watch(r1))
}

func TestAnalyzeIsIdempotentOnUnchangedTopology(t *testing.T) {
	e := mna.NewEngine()
	battery := device.NewDCVoltageSource("V1", 5.0)
	r := device.NewResistor("R1", 1e3)
	gnd := device.NewGroundElm("GND")
	e.AddElement(battery)
	e.AddElement(r)
	e.AddElement(gnd)
	e.Connect(mna.Lead{Elm: gnd, Term: 0}, mna.Lead{Elm: battery, Term: 1})
	e.Connect(mna.Lead{Elm: battery, Term: 0}, mna.Lead{Elm: r, Term: 0})
	e.Connect(mna.Lead{Elm: r, Term: 1}, mna.Lead{Elm: gnd, Term: 0})

	require.NoError(t, e.Update())
	v1 := r.Voltage(0)
	e.MarkDirty()
	require.NoError(t, e.Update())
	v2 := r.Voltage(0)
	require.InDelta(t, v1, v2, 1e-12)
}
