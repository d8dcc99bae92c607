// Package records keeps the ids of a previous build so that a rebuild can
// hand the same modules and chunks the same ids.
package records

import (
	"errors"
	"fmt"
	"strings"

	"bundleid/internal/graph"
	"bundleid/internal/ids"
)

// Current schema version - increment when the Records layout changes.
const schemaVersion uint16 = 1

// ErrSchema is returned when stored records were written by another schema.
var ErrSchema = errors.New("records: schema mismatch")

// Records map stable keys to previously assigned ids.
type Records struct {
	Schema  uint16
	Modules map[string]ids.ID // module identifier -> id
	Chunks  map[string]ids.ID // chunk key -> id
}

// New returns empty records of the current schema.
func New() *Records {
	return &Records{
		Schema:  schemaVersion,
		Modules: make(map[string]ids.ID),
		Chunks:  make(map[string]ids.ID),
	}
}

// ChunkKey identifies a chunk across builds: its preset name, or the
// comma-joined identifiers of its root modules in identifier order.
func ChunkKey(g *graph.Graph, ch graph.ChunkHandle) string {
	c := g.Chunk(ch)
	if c.Name != "" {
		return c.Name
	}
	roots := make([]string, len(c.Roots))
	for i, m := range c.Roots {
		roots[i] = g.Module(m).Identifier
	}
	return strings.Join(roots, ",")
}

// RestoreStats count what Restore pinned and what it had to drop.
type RestoreStats struct {
	Modules int
	Chunks  int
	Dropped int // recorded ids that are reserved or already taken
}

// Restore pins recorded ids into tab before any pass runs. A recorded id is
// dropped when it is reserved, already used in tab, or when the item has an
// id already; the item then goes through the normal passes. Modules the
// passes would not assign (no chunk, NoID, rejected by filter) get nothing
// restored, so their records lapse at the next capture.
func Restore(g *graph.Graph, tab *ids.Table, rec *Records, reservedModules, reservedChunks ids.Reserved, filter func(*graph.Module) bool) RestoreStats {
	var stats RestoreStats
	if rec == nil {
		return stats
	}

	usedModules := tab.UsedModuleIDs(reservedModules)
	for _, m := range g.Modules() {
		mod := g.Module(m)
		id, ok := rec.Modules[mod.Identifier]
		if !ok || mod.NoID || tab.HasModuleID(m) || g.ModuleChunkCount(m) == 0 {
			continue
		}
		if filter != nil && !filter(mod) {
			continue
		}
		if usedModules.Has(string(id)) {
			stats.Dropped++
			continue
		}
		tab.SetModuleID(m, id)
		usedModules.Add(string(id))
		stats.Modules++
	}

	usedChunks := tab.UsedChunkIDs(reservedChunks)
	for _, ch := range g.Chunks() {
		id, ok := rec.Chunks[ChunkKey(g, ch)]
		if !ok || tab.HasChunkID(ch) {
			continue
		}
		if usedChunks.Has(string(id)) {
			stats.Dropped++
			continue
		}
		tab.SetChunkID(ch, id)
		usedChunks.Add(string(id))
		stats.Chunks++
	}
	return stats
}

// Capture records every id in tab. Chunks whose key is shared by another
// chunk are left out since a later build could not tell them apart.
func Capture(g *graph.Graph, tab *ids.Table) *Records {
	rec := New()
	for _, m := range g.Modules() {
		if id, ok := tab.ModuleID(m); ok {
			rec.Modules[g.Module(m).Identifier] = id
		}
	}

	keys := make(map[string]int, g.NumChunks())
	for _, ch := range g.Chunks() {
		keys[ChunkKey(g, ch)]++
	}
	for _, ch := range g.Chunks() {
		key := ChunkKey(g, ch)
		if key == "" || keys[key] > 1 {
			continue
		}
		if id, ok := tab.ChunkID(ch); ok {
			rec.Chunks[key] = id
		}
	}
	return rec
}

func (r *Records) check() error {
	if r.Schema != schemaVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrSchema, r.Schema, schemaVersion)
	}
	if r.Modules == nil {
		r.Modules = make(map[string]ids.ID)
	}
	if r.Chunks == nil {
		r.Chunks = make(map[string]ids.ID)
	}
	return nil
}
