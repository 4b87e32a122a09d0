// Command voltagedivider wires a 10V battery across two 10kΩ resistors
// in series to ground and prints the settled midpoint voltage — the
// smallest possible exercise of the MNA engine's node resolution, row
// simplifier and linear fast path.
package main

import (
	"fmt"
	"log"

	"github.com/wiredge/mnacore/pkg/device"
	"github.com/wiredge/mnacore/pkg/mna"
	"github.com/wiredge/mnacore/pkg/util"
)

func main() {
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

	if err := e.Update(); err != nil {
		log.Fatalf("tick failed: %v", err)
	}
	if msg := e.ErrorMessage(); msg != "" {
		log.Fatalf("circuit error: %s", msg)
	}

	mid := r1.Voltage(1)
	fmt.Printf("midpoint voltage: %s\n", util.FormatValueFactor(mid, "V"))
}
