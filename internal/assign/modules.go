package assign

import (
	"context"
	"fmt"

	"bundleid/internal/graph"
	"bundleid/internal/ids"
	"bundleid/internal/naming"
	"bundleid/internal/trace"
)

// Modules assigns ids to every module that needs one and has none yet.
// reserved holds ids pinned outside the table (usedModuleIds); it is not
// modified.
func Modules(ctx context.Context, g *graph.Graph, tab *ids.Table, reserved ids.Reserved, opts Options) (Stats, error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "module-ids", trace.CurrentSpan(ctx))
	used, candidates, skipped := moduleCandidates(g, tab, reserved, opts.Filter)
	stats := Stats{Strategy: opts.Modules, Skipped: skipped}
	before := tab.ModuleCount()

	set := func(m graph.ModuleHandle, id ids.ID) {
		tab.SetModuleID(m, id)
		if span.Emits(trace.ScopeItem) {
			span.Point(trace.ScopeItem, "module", naming.ModuleFullName(g, m)+" => "+string(id))
		}
	}
	setNum := func(m graph.ModuleHandle, n int64) { set(m, numericID(n)) }
	collided := func(m graph.ModuleHandle, c ids.Collision) {
		if span.Emits(trace.ScopeItem) {
			span.Point(trace.ScopeItem, "collision", fmt.Sprintf("%s attempt %d hit taken id %d", naming.ModuleFullName(g, m), c.Attempt, c.ID))
		}
	}

	var err error
	switch opts.Modules {
	case Natural:
		ordered := sortedModules(candidates, g.CompareModulesByOrder)
		ids.AssignAscending(ordered, used, tab.HasModuleID, setNum)

	case Named:
		unnamed := ids.AssignNames(candidates,
			func(m graph.ModuleHandle) string { return naming.ModuleShortName(g, m) },
			func(m graph.ModuleHandle, short string) string { return naming.ModuleLongName(g, m, short) },
			g.CompareModulesByIdentifier,
			used,
			func(m graph.ModuleHandle, name string) { set(m, ids.ID(name)) },
		)
		if len(unnamed) > 0 {
			stats.Fallback = len(unnamed)
			ids.AssignAscending(unnamed, tab.UsedModuleIDs(reserved), tab.HasModuleID, setNum)
		}

	case Deterministic:
		stats.Retries, err = ids.AssignDeterministic(candidates,
			func(m graph.ModuleHandle) string { return naming.ModuleFullName(g, m) + opts.Salt },
			g.CompareModulesByOrder,
			ids.DeterministicOptions{MaxLength: opts.MaxLength, FailOnConflict: opts.FailOnConflict},
			used,
			setNum,
			collided,
		)

	case Hashed:
		ids.AssignHashed(candidates,
			func(m graph.ModuleHandle) string { return naming.ModuleFullName(g, m) },
			g.CompareModulesByOrder,
			opts.HashDigestLength,
			used,
			func(m graph.ModuleHandle, id string) { set(m, ids.ID(id)) },
		)

	default:
		_, err = ParseStrategy(string(opts.Modules), false)
	}

	stats.Assigned = tab.ModuleCount() - before
	stats.annotate(span)
	span.End(string(opts.Modules))
	return stats, err
}

// moduleCandidates collects the used id set (reserved ids plus ids already
// in the table) and the modules still lacking an id. Modules that never
// need an id or belong to no chunk are left out.
func moduleCandidates(g *graph.Graph, tab *ids.Table, reserved ids.Reserved, filter func(*graph.Module) bool) (ids.Reserved, []graph.ModuleHandle, int) {
	used := tab.UsedModuleIDs(reserved)
	var out []graph.ModuleHandle
	skipped := 0
	for _, m := range g.Modules() {
		mod := g.Module(m)
		if mod.NoID {
			continue
		}
		if tab.HasModuleID(m) {
			skipped++
			continue
		}
		if filter != nil && !filter(mod) {
			continue
		}
		if g.ModuleChunkCount(m) == 0 {
			continue
		}
		out = append(out, m)
	}
	return used, out, skipped
}
