package mna

// scopeSource is an optional interface an element implements to expose
// per-tick sample data to an oscilloscope-style observer. Elements that
// don't implement it simply produce no samples when watched.
type scopeSource interface {
	// GetScopeFrame returns the values to record for the tick at time t,
	// in whatever units and count the element defines (e.g. terminal
	// voltage and branch current).
	GetScopeFrame(t float64) []float64
}

// ScopeFrame is one recorded sample: the simulated time it was taken at
// and the element-defined values captured then.
type ScopeFrame struct {
	Time   float64
	Values []float64
}

// ScopeBuffer is the append-only sample history for one watched
// component. Buffers grow monotonically for the engine's lifetime; the
// core does not truncate or roll them over.
type ScopeBuffer struct {
	Frames []ScopeFrame
}

func (b *ScopeBuffer) append(t float64, values []float64) {
	if values == nil {
		return
	}
	cp := make([]float64, len(values))
	copy(cp, values)
	b.Frames = append(b.Frames, ScopeFrame{Time: t, Values: cp})
}

// Last returns the most recently recorded frame and true, or a zero
// frame and false if nothing has been sampled yet.
func (b *ScopeBuffer) Last() (ScopeFrame, bool) {
	if len(b.Frames) == 0 {
		return ScopeFrame{}, false
	}
	return b.Frames[len(b.Frames)-1], true
}

// sample appends one frame per tick for every watched element that
// implements scopeSource, called from the stepper once a tick commits.
func (e *Engine) sample() {
	for elm, buf := range e.observers {
		src, ok := elm.(scopeSource)
		if !ok {
			continue
		}
		buf.append(e.time, src.GetScopeFrame(e.time))
	}
}
