package assign

import (
	"context"
	"fmt"
	"slices"

	"bundleid/internal/graph"
	"bundleid/internal/ids"
	"bundleid/internal/naming"
	"bundleid/internal/trace"
)

// Chunks assigns an id (and a one-element alias list) to every chunk that
// has none yet. reserved holds usedChunkIds; it is not modified.
func Chunks(ctx context.Context, g *graph.Graph, tab *ids.Table, reserved ids.Reserved, opts Options) (Stats, error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "chunk-ids", trace.CurrentSpan(ctx))
	used := tab.UsedChunkIDs(reserved)
	var candidates []graph.ChunkHandle
	stats := Stats{Strategy: opts.Chunks}
	for _, ch := range g.Chunks() {
		if tab.HasChunkID(ch) {
			stats.Skipped++
			continue
		}
		candidates = append(candidates, ch)
	}
	before := tab.ChunkCount()

	set := func(ch graph.ChunkHandle, id ids.ID) {
		tab.SetChunkID(ch, id)
		if span.Emits(trace.ScopeItem) {
			span.Point(trace.ScopeItem, "chunk", naming.ChunkFullName(g, ch)+" => "+string(id))
		}
	}
	setNum := func(ch graph.ChunkHandle, n int64) { set(ch, numericID(n)) }
	collided := func(ch graph.ChunkHandle, c ids.Collision) {
		if span.Emits(trace.ScopeItem) {
			span.Point(trace.ScopeItem, "collision", fmt.Sprintf("%s attempt %d hit taken id %d", naming.ChunkFullName(g, ch), c.Attempt, c.ID))
		}
	}

	var err error
	switch opts.Chunks {
	case Natural:
		ordered := slices.Clone(candidates)
		slices.SortStableFunc(ordered, g.CompareChunksNatural)
		ids.AssignAscending(ordered, used, tab.HasChunkID, setNum)

	case Named:
		unnamed := ids.AssignNames(candidates,
			func(ch graph.ChunkHandle) string {
				if name := g.Chunk(ch).Name; name != "" {
					return name
				}
				return naming.ChunkShortName(g, ch, opts.Delimiter)
			},
			func(ch graph.ChunkHandle, _ string) string {
				if name := g.Chunk(ch).Name; name != "" {
					return name
				}
				return naming.ChunkLongName(g, ch, opts.Delimiter)
			},
			g.CompareChunksNatural,
			used,
			func(ch graph.ChunkHandle, name string) { set(ch, ids.ID(name)) },
		)
		if len(unnamed) > 0 {
			stats.Fallback = len(unnamed)
			ids.AssignAscending(unnamed, tab.UsedChunkIDs(reserved), tab.HasChunkID, setNum)
		}

	case Deterministic:
		stats.Retries, err = ids.AssignDeterministic(candidates,
			func(ch graph.ChunkHandle) string { return naming.ChunkFullName(g, ch) + opts.Salt },
			g.CompareChunksNatural,
			ids.DeterministicOptions{MaxLength: opts.ChunkMaxLength, FailOnConflict: opts.FailOnConflict},
			used,
			setNum,
			collided,
		)

	default:
		_, err = ParseStrategy(string(opts.Chunks), true)
	}

	stats.Assigned = tab.ChunkCount() - before
	stats.annotate(span)
	span.End(string(opts.Chunks))
	return stats, err
}

func sortedModules(ms []graph.ModuleHandle, cmp graph.ModuleCompare) []graph.ModuleHandle {
	out := slices.Clone(ms)
	slices.SortStableFunc(out, cmp)
	return out
}
