// Package pipeline runs a complete assignment: restore recorded ids, run the
// module and chunk passes, then record the result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"bundleid/internal/assign"
	"bundleid/internal/graph"
	"bundleid/internal/ids"
	"bundleid/internal/observ"
	"bundleid/internal/records"
	"bundleid/internal/trace"
)

// Request configures one run.
type Request struct {
	Graph *graph.Graph
	Table *ids.Table // existing ids; a fresh table when nil
	RunID string     // generated when empty

	Options         assign.Options
	ReservedModules ids.Reserved
	ReservedChunks  ids.Reserved

	Records  *records.Store // nil disables restore and capture
	Progress ProgressSink
	Timer    *observ.Timer
}

// Result captures the filled table and per-stage statistics.
type Result struct {
	RunID    string
	Table    *ids.Table
	Restored records.RestoreStats
	Modules  assign.Stats
	Chunks   assign.Stats
	Timings  Timings
}

// Run assigns ids to every module and chunk of req.Graph. The module and
// chunk passes write disjoint parts of the table and run concurrently.
//
// On error result.Table is partial: it holds restored ids and those of a
// pass that finished. A deterministic pass that hits a conflict commits
// nothing. Records are only saved after both passes succeed.
func Run(ctx context.Context, req *Request) (result Result, err error) {
	if req == nil || req.Graph == nil {
		return result, errors.New("missing graph")
	}
	if err = req.Options.Validate(); err != nil {
		return result, err
	}
	tab := req.Table
	if tab == nil {
		tab = ids.NewTable()
	}
	result.Table = tab
	result.RunID = req.RunID
	if result.RunID == "" {
		result.RunID = uuid.NewString()
	}

	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "assign", trace.CurrentSpan(ctx)).
		WithExtra("run", result.RunID)
	ctx = trace.WithSpan(ctx, span)
	clock := &stageClock{}
	defer func() {
		result.Timings = clock.timings()
	}()

	if req.Records != nil {
		rec, found, err := runStage(req, clock, StageRestore, func() (*records.Records, bool, error) {
			return req.Records.Load(ctx)
		})
		if err != nil {
			span.End("restore failed")
			return result, fmt.Errorf("failed to load records: %w", err)
		}
		if found {
			result.Restored = records.Restore(req.Graph, tab, rec, req.ReservedModules, req.ReservedChunks, req.Options.Filter)
			span.Point(trace.ScopePass, "restore", fmt.Sprintf("modules=%d chunks=%d dropped=%d",
				result.Restored.Modules, result.Restored.Chunks, result.Restored.Dropped))
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := runPass(gctx, req, clock, StageModules, func(ctx context.Context) (assign.Stats, error) {
			return assign.Modules(ctx, req.Graph, tab, req.ReservedModules, req.Options)
		})
		result.Modules = stats
		return err
	})
	g.Go(func() error {
		stats, err := runPass(gctx, req, clock, StageChunks, func(ctx context.Context) (assign.Stats, error) {
			return assign.Chunks(ctx, req.Graph, tab, req.ReservedChunks, req.Options)
		})
		result.Chunks = stats
		return err
	})
	if err = g.Wait(); err != nil {
		span.End("failed")
		return result, err
	}

	if req.Records != nil {
		_, _, err := runStage(req, clock, StageCapture, func() (struct{}, bool, error) {
			return struct{}{}, true, req.Records.Save(ctx, records.Capture(req.Graph, tab))
		})
		if err != nil {
			span.End("capture failed")
			return result, fmt.Errorf("failed to save records: %w", err)
		}
	}

	span.WithExtra("modules", fmt.Sprint(tab.ModuleCount())).
		WithExtra("chunks", fmt.Sprint(tab.ChunkCount()))
	span.End("")
	return result, nil
}

func runPass(ctx context.Context, req *Request, clock *stageClock, stage Stage, pass func(context.Context) (assign.Stats, error)) (assign.Stats, error) {
	select {
	case <-ctx.Done():
		return assign.Stats{}, ctx.Err()
	default:
	}
	stats, _, err := runStage(req, clock, stage, func() (assign.Stats, bool, error) {
		stats, err := pass(ctx)
		return stats, true, err
	})
	if err != nil {
		return stats, fmt.Errorf("%s pass: %w", stage, err)
	}
	return stats, nil
}

// runStage times fn under stage and reports progress. ok=false marks the
// stage skipped.
func runStage[T any](req *Request, clock *stageClock, stage Stage, fn func() (T, bool, error)) (T, bool, error) {
	emit(req.Progress, Event{Stage: stage, Status: StatusWorking})
	idx := req.Timer.Begin(string(stage))
	clock.start(stage)
	out, ok, err := fn()
	elapsed := clock.stop(stage)

	status := StatusDone
	switch {
	case err != nil:
		status = StatusError
	case !ok:
		status = StatusSkipped
	}
	req.Timer.End(idx, string(status))
	emit(req.Progress, Event{Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	return out, ok, err
}

// stageClock records stage durations from concurrent passes.
type stageClock struct {
	mu      sync.Mutex
	started map[Stage]time.Time
	done    Timings
}

func (c *stageClock) start(stage Stage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started == nil {
		c.started = make(map[Stage]time.Time)
		c.done = make(Timings)
	}
	c.started[stage] = time.Now()
}

// stop records the duration of stage and returns it.
func (c *stageClock) stop(stage Stage) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := time.Since(c.started[stage])
	c.done[stage] = d
	return d
}

func (c *stageClock) timings() Timings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.done)
}
