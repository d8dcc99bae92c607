package trace

import "errors"

// MultiTracer fans events out to several tracers, e.g. a ring buffer for
// failure dumps next to a live stream.
type MultiTracer struct {
	tracers []Tracer
	level   Level
}

// NewMultiTracer combines tracers under one level.
func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	return &MultiTracer{tracers: tracers, level: level}
}

func (t *MultiTracer) Emit(ev Event) {
	for _, tr := range t.tracers {
		tr.Emit(ev)
	}
}

// Flush flushes every tracer and joins their errors.
func (t *MultiTracer) Flush() error { return t.each(Tracer.Flush) }

// Close closes every tracer and joins their errors.
func (t *MultiTracer) Close() error { return t.each(Tracer.Close) }

func (t *MultiTracer) each(fn func(Tracer) error) error {
	var errs []error
	for _, tr := range t.tracers {
		errs = append(errs, fn(tr))
	}
	return errors.Join(errs...)
}

func (t *MultiTracer) Level() Level  { return t.level }
func (t *MultiTracer) Enabled() bool { return t.level > LevelOff }
