package mna

import "errors"

// Sentinel fatal conditions the validator, solver and stepper can raise.
// All of them are "fatal" per the error-handling design: the engine nulls
// its circuit matrix, records errorMessage/errorElement, and marks itself
// dirty so the next edit re-triggers analyze.
var (
	ErrNoCurrentSourcePath = errors.New("No path for current source!")
	ErrVoltageSourceLoop   = errors.New("Voltage source/wire loop with no resistance!")
	ErrCapacitorLoop       = errors.New("Capacitor loop with no resistance!")
	ErrSingularMatrix      = errors.New("Singular matrix!")
	ErrNonFiniteMatrix     = errors.New("NaN/Infinite matrix!")
	ErrConvergenceFailed   = errors.New("Convergence failed!")
)
