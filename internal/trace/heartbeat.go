package trace

import (
	"strconv"
	"sync"
	"time"
)

// Heartbeat emits periodic events. A trace where heartbeats keep coming
// but a pass span never ends points at a retry loop that cannot find a
// free id.
type Heartbeat struct {
	tracer Tracer
	stop   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// StartHeartbeat starts emitting every interval; it returns nil when
// tracing is off or interval is not positive.
func StartHeartbeat(t Tracer, interval time.Duration) *Heartbeat {
	if t == nil || !t.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{tracer: t, stop: make(chan struct{})}
	h.wg.Add(1)
	go h.run(interval)
	return h
}

func (h *Heartbeat) run(interval time.Duration) {
	defer h.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	var n uint64
	for {
		select {
		case <-ticker.C:
			n++
			h.tracer.Emit(Event{
				Time:   time.Now(),
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				Name:   "heartbeat",
				Detail: "#" + strconv.FormatUint(n, 10),
			})
		case <-h.stop:
			return
		}
	}
}

// Stop ends the heartbeat and waits for the goroutine to exit.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	h.wg.Wait()
}
