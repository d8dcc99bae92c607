// Package ids assigns unique, reproducible ids and names to modules and
// chunks. Assigned values live in side tables owned by this package; the
// graph itself stays read-only.
package ids

import (
	"slices"
	"strconv"

	"bundleid/internal/graph"
)

// ID is an opaque id token. Numeric ids are stored in decimal form, so the
// string form is also the key used for reservation checks.
type ID string

// Num returns the ID of a numeric id.
func Num(n int64) ID { return ID(strconv.FormatInt(n, 10)) }

// Number reports the numeric value of id when it is a canonical decimal.
func (id ID) Number() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil || strconv.FormatInt(n, 10) != string(id) {
		return 0, false
	}
	return n, true
}

// Reserved is a set of ids (string form) that must not be handed out again.
type Reserved map[string]struct{}

// NewReserved builds a set from the given ids.
func NewReserved(values ...string) Reserved {
	r := make(Reserved, len(values))
	for _, v := range values {
		r[v] = struct{}{}
	}
	return r
}

// Has reports whether v is reserved.
func (r Reserved) Has(v string) bool {
	_, ok := r[v]
	return ok
}

// Add reserves v.
func (r Reserved) Add(v string) { r[v] = struct{}{} }

// Len returns the number of reserved values.
func (r Reserved) Len() int { return len(r) }

// Clone returns an independent copy; a nil set clones to an empty one.
func (r Reserved) Clone() Reserved {
	out := make(Reserved, len(r))
	for v := range r {
		out[v] = struct{}{}
	}
	return out
}

// Sorted returns the reserved values in ascending order.
func (r Reserved) Sorted() []string {
	out := make([]string, 0, len(r))
	for v := range r {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

type chunkEntry struct {
	id      ID
	aliases []ID
}

// Table holds the ids committed for one graph. The module side and the
// chunk side are independent maps and may be written from different
// goroutines; neither side is safe for concurrent writers.
type Table struct {
	modules map[graph.ModuleHandle]ID
	chunks  map[graph.ChunkHandle]chunkEntry
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		modules: make(map[graph.ModuleHandle]ID),
		chunks:  make(map[graph.ChunkHandle]chunkEntry),
	}
}

// ModuleID returns the id committed for m.
func (t *Table) ModuleID(m graph.ModuleHandle) (ID, bool) {
	id, ok := t.modules[m]
	return id, ok
}

// HasModuleID reports whether m already carries an id.
func (t *Table) HasModuleID(m graph.ModuleHandle) bool {
	_, ok := t.modules[m]
	return ok
}

// SetModuleID commits id for m.
func (t *Table) SetModuleID(m graph.ModuleHandle, id ID) {
	t.modules[m] = id
}

// ChunkID returns the primary id committed for ch.
func (t *Table) ChunkID(ch graph.ChunkHandle) (ID, bool) {
	e, ok := t.chunks[ch]
	return e.id, ok
}

// HasChunkID reports whether ch already carries an id.
func (t *Table) HasChunkID(ch graph.ChunkHandle) bool {
	_, ok := t.chunks[ch]
	return ok
}

// ChunkIDs returns every alias of ch, primary id first.
func (t *Table) ChunkIDs(ch graph.ChunkHandle) []ID {
	return slices.Clone(t.chunks[ch].aliases)
}

// SetChunkID commits id for ch with a single-element alias list.
func (t *Table) SetChunkID(ch graph.ChunkHandle, id ID) {
	t.chunks[ch] = chunkEntry{id: id, aliases: []ID{id}}
}

// AddChunkAlias appends an alias to a chunk that already has an id.
func (t *Table) AddChunkAlias(ch graph.ChunkHandle, alias ID) bool {
	e, ok := t.chunks[ch]
	if !ok || slices.Contains(e.aliases, alias) {
		return false
	}
	e.aliases = append(e.aliases, alias)
	t.chunks[ch] = e
	return true
}

// UsedModuleIDs returns base extended with every module id in the table.
func (t *Table) UsedModuleIDs(base Reserved) Reserved {
	used := base.Clone()
	for _, id := range t.modules {
		used.Add(string(id))
	}
	return used
}

// UsedChunkIDs returns base extended with every chunk id and alias in the
// table.
func (t *Table) UsedChunkIDs(base Reserved) Reserved {
	used := base.Clone()
	for _, e := range t.chunks {
		used.Add(string(e.id))
		for _, a := range e.aliases {
			used.Add(string(a))
		}
	}
	return used
}

// ModuleCount returns the number of modules with an id.
func (t *Table) ModuleCount() int { return len(t.modules) }

// ChunkCount returns the number of chunks with an id.
func (t *Table) ChunkCount() int { return len(t.chunks) }
