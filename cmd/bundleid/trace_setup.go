package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bundleid/internal/trace"
)

// traceConfig reads the persistent --trace* flags. --trace without a level
// means phase tracing.
func traceConfig(cmd *cobra.Command) (trace.Config, error) {
	flags := cmd.Root().PersistentFlags()
	var (
		cfg           trace.Config
		level, format string
		err           error
	)
	if cfg.OutputPath, err = flags.GetString("trace"); err != nil {
		return cfg, err
	}
	if level, err = flags.GetString("trace-level"); err != nil {
		return cfg, err
	}
	if format, err = flags.GetString("trace-format"); err != nil {
		return cfg, err
	}
	if cfg.RingSize, err = flags.GetInt("trace-ring-size"); err != nil {
		return cfg, err
	}
	if cfg.Heartbeat, err = flags.GetDuration("trace-heartbeat"); err != nil {
		return cfg, err
	}
	if cfg.Level, err = trace.ParseLevel(level); err != nil {
		return cfg, err
	}
	if cfg.Format, err = trace.ParseFormat(format); err != nil {
		return cfg, err
	}
	if cfg.Level == trace.LevelOff && cfg.OutputPath != "" {
		cfg.Level = trace.LevelPhase
	}
	return cfg, nil
}

// setupTracing installs the tracer on the command context. The returned
// cleanup stops the heartbeat and flushes and closes the tracer.
func setupTracing(cmd *cobra.Command) (func(), error) {
	cfg, err := traceConfig(cmd)
	if err != nil {
		return nil, err
	}
	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))
	if tracer == trace.Nop {
		return func() {}, nil
	}

	heartbeat := trace.StartHeartbeat(tracer, cfg.Heartbeat)
	return func() {
		heartbeat.Stop()
		for _, step := range []struct {
			name string
			fn   func() error
		}{{"flush", tracer.Flush}, {"close", tracer.Close}} {
			if err := step.fn(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "trace: %s error: %v\n", step.name, err)
			}
		}
	}, nil
}

// dumpTrace writes the ring buffer of the context tracer to stderr so a
// failed run shows what led up to the failure.
func dumpTrace(cmd *cobra.Command) {
	ring, ok := trace.Ring(trace.FromContext(cmd.Context()))
	if !ok {
		return
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "trace: last events before failure:")
	if err := ring.Dump(cmd.ErrOrStderr(), trace.FormatText); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
	}
}
