// Command rccharge drives a battery/resistor/capacitor series circuit
// for 200 ticks at the engine's default 5µs step (1ms total) and prints
// the capacitor's charging curve against the analytical RC exponential
// — exercising BeginStep's companion-model refresh across many ticks.
package main

import (
	"fmt"
	"log"
	"math"

	"github.com/wiredge/mnacore/pkg/device"
	"github.com/wiredge/mnacore/pkg/mna"
	"github.com/wiredge/mnacore/pkg/util"
)

const (
	supplyVolts = 5.0
	seriesOhms  = 1e3
	farads      = 1e-6
	ticks       = 200
)

func main() {
	e := mna.NewEngine()

	battery := device.NewDCVoltageSource("V1", supplyVolts)
	r := device.NewResistor("R1", seriesOhms)
	c := device.NewCapacitor("C1", farads)
	gnd := device.NewGroundElm("GND")

	e.AddElement(battery)
	e.AddElement(r)
	e.AddElement(c)
	e.AddElement(gnd)

	e.Connect(mna.Lead{Elm: gnd, Term: 0}, mna.Lead{Elm: battery, Term: 1})
	e.Connect(mna.Lead{Elm: battery, Term: 0}, mna.Lead{Elm: r, Term: 0})
	e.Connect(mna.Lead{Elm: r, Term: 1}, mna.Lead{Elm: c, Term: 0})
	e.Connect(mna.Lead{Elm: c, Term: 1}, mna.Lead{Elm: gnd, Term: 0})

	for i := 0; i < ticks; i++ {
		if err := e.Update(); err != nil {
			log.Fatalf("tick %d failed: %v", i, err)
		}
		if msg := e.ErrorMessage(); msg != "" {
			log.Fatalf("circuit error at tick %d: %s", i, msg)
		}
	}

	tau := seriesOhms * farads
	analytical := supplyVolts * (1 - math.Exp(-e.Time()/tau))

	fmt.Printf("t=%s  capacitor voltage: %s  (analytical: %s)\n",
		util.FormatValueFactor(e.Time(), "s"),
		util.FormatValueFactor(c.Voltage(0), "V"),
		util.FormatValueFactor(analytical, "V"))
}
