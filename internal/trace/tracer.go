package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Tracer receives trace events. Implementations must be goroutine-safe:
// module and chunk passes may run at the same time.
type Tracer interface {
	Emit(ev Event)
	Flush() error
	Close() error
	Level() Level
	Enabled() bool
}

// Config selects and configures a tracer.
type Config struct {
	Level      Level
	Format     Format
	Output     io.Writer     // takes precedence over OutputPath
	OutputPath string        // "-" or "" for stderr
	RingSize   int           // events kept for failure dumps (default 1024)
	Heartbeat  time.Duration // 0 disables heartbeats
}

// New builds a tracer for cfg. LevelOff yields Nop; LevelError yields a
// ring buffer only; higher levels stream and keep a ring for dumps.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.RingSize <= 0 {
		cfg.RingSize = 1024
	}
	ring := NewRingTracer(cfg.RingSize, cfg.Level)
	if cfg.Level == LevelError {
		return ring, nil
	}

	format := cfg.Format
	if format == FormatAuto {
		format = FormatText
		if strings.HasSuffix(cfg.OutputPath, ".ndjson") || strings.HasSuffix(cfg.OutputPath, ".jsonl") {
			format = FormatNDJSON
		}
	}
	w, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}
	return NewMultiTracer(cfg.Level, NewStreamTracer(w, cfg.Level, format), ring), nil
}

func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return os.Stderr, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}

// Ring returns the ring buffer behind t, if any.
func Ring(t Tracer) (*RingTracer, bool) {
	switch tt := t.(type) {
	case *RingTracer:
		return tt, true
	case *MultiTracer:
		for _, inner := range tt.tracers {
			if r, ok := Ring(inner); ok {
				return r, true
			}
		}
	}
	return nil, false
}
