package trace

import (
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// NextSeq returns the next event sequence number. Sequence numbers are
// shared by all tracers of the process, so merged outputs keep their order.
func NextSeq() uint64 { return seqCounter.Add(1) }

// Span tracks one logical operation between Begin and End. A span that is
// filtered out by the tracer level is still safe to use; every method is a
// no-op on it.
type Span struct {
	tracer   Tracer
	id       uint64
	parentID uint64
	scope    Scope
	name     string
	started  time.Time
	extra    map[string]string
}

// Begin opens a span. parent is 0 for a root span.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return &Span{parentID: parent}
	}
	s := &Span{
		tracer:   t,
		id:       spanCounter.Add(1),
		parentID: parent,
		scope:    scope,
		name:     name,
		started:  time.Now(),
	}
	s.emit(KindSpanBegin, scope, name, "", nil, s.parentID)
	return s
}

func (s *Span) live() bool {
	return s != nil && s.tracer != nil && s.tracer.Enabled()
}

func (s *Span) emit(kind Kind, scope Scope, name, detail string, extra map[string]string, parent uint64) {
	s.tracer.Emit(Event{
		Time:     time.Now(),
		Kind:     kind,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: parent,
		Name:     name,
		Detail:   detail,
		Extra:    extra,
	})
}

// End closes the span and returns its duration.
func (s *Span) End(detail string) time.Duration {
	if !s.live() {
		return 0
	}
	s.emit(KindSpanEnd, s.scope, s.name, detail, s.extra, s.parentID)
	return time.Since(s.started)
}

// WithExtra attaches a key/value pair to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if !s.live() {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// Point emits an instant event under the span.
func (s *Span) Point(scope Scope, name, detail string) {
	if s.Emits(scope) {
		s.emit(KindPoint, scope, name, detail, nil, s.id)
	}
}

// ID returns the span id (0 for spans that are not recorded).
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Emits reports whether Point calls for scope would be recorded, so callers
// can skip building details nobody reads.
func (s *Span) Emits(scope Scope) bool {
	return s.live() && s.tracer.Level().ShouldEmit(scope)
}
