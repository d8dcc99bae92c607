// Package trace records what an id assignment run did and when.
//
// # Usage
//
//	bundleid assign --trace=- --trace-level=detail
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: events are kept only for a failure dump
//   - LevelPhase: driver and pass boundaries
//   - LevelDetail: adds per-pass statistics
//   - LevelDebug: adds per-item events (assignments, id collisions)
//
// # Scopes
//
//   - ScopeDriver: CLI command, config load, records I/O
//   - ScopePass: one module or chunk assignment pass
//   - ScopeItem: a single module or chunk inside a pass
//
// Tracers travel through a run in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "module-ids", parent)
//	defer span.End("")
package trace
