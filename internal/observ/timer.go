// Package observ measures how long the phases of an assignment run take.
package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Phase is one measured step.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer collects phases. Module and chunk passes run concurrently, so
// Begin and End may be called from several goroutines.
type Timer struct {
	mu     sync.Mutex
	phases []Phase
}

// NewTimer returns an empty timer.
func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 8)} }

// Begin starts a phase and returns its index for End.
func (t *Timer) Begin(name string) int {
	if t == nil {
		return -1
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End finishes the phase at idx.
func (t *Timer) End(idx int, note string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
}

// PhaseReport is the serializable form of a phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report is the serializable form of a timer. WallMS spans from the first
// phase start to the last phase end; phases may overlap.
type Report struct {
	WallMS float64       `json:"wall_ms"`
	Phases []PhaseReport `json:"phases"`
}

// Report snapshots the recorded phases.
func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.phases) == 0 {
		return Report{}
	}
	r := Report{Phases: make([]PhaseReport, len(t.phases))}
	first := t.phases[0].Start
	var last time.Time
	for i, p := range t.phases {
		if p.Start.Before(first) {
			first = p.Start
		}
		if end := p.Start.Add(p.Dur); end.After(last) {
			last = end
		}
		r.Phases[i] = PhaseReport{Name: p.Name, DurationMS: millis(p.Dur), Note: p.Note}
	}
	r.WallMS = millis(last.Sub(first))
	return r
}

// Summary renders the report as an aligned text block.
func (t *Timer) Summary() string {
	r := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range r.Phases {
		fmt.Fprintf(&sb, "  %-20s %7.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			sb.WriteString("  // " + p.Note)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "  %-20s %7.2f ms\n", "wall", r.WallMS)
	return sb.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
