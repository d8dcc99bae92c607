// Package graph holds the read-only view of the module and chunk graphs
// that id assignment consumes. Modules and chunks live in an arena and are
// addressed by stable integer handles; ids are never stored here.
package graph

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"fortio.org/safecast"
)

// ModuleHandle addresses a module in a Graph.
type ModuleHandle uint32

// ChunkHandle addresses a chunk in a Graph.
type ChunkHandle uint32

// Module is a unit of bundled source code.
type Module struct {
	Identifier string // globally unique, absolute path plus loader info
	LibIdent   string // optional identity relative to the context directory
	Order      int    // pre-order index in the module graph
	NoID       bool   // runtime glue that is never referenced by id
}

// Chunk is an output unit of the chunk graph.
type Chunk struct {
	Name        string         // preset name, may be empty
	IDNameHints []string       // free-form hints, e.g. entry names
	Roots       []ModuleHandle // sorted by module identifier
	Modules     []ModuleHandle // sorted by module identifier
}

var (
	// ErrDuplicateModule reports two modules sharing one identifier.
	ErrDuplicateModule = errors.New("duplicate module identifier")
	// ErrUnknownModule reports a chunk referencing a module that was never added.
	ErrUnknownModule = errors.New("unknown module")
)

// Graph is the finalized module/chunk relation.
type Graph struct {
	Context string

	modules      []Module
	chunks       []Chunk
	byIdentifier map[string]ModuleHandle
	moduleChunks []int
}

// Module returns the module behind h.
func (g *Graph) Module(h ModuleHandle) *Module { return &g.modules[h] }

// Chunk returns the chunk behind h.
func (g *Graph) Chunk(h ChunkHandle) *Chunk { return &g.chunks[h] }

// NumModules returns the arena size for modules.
func (g *Graph) NumModules() int { return len(g.modules) }

// NumChunks returns the arena size for chunks.
func (g *Graph) NumChunks() int { return len(g.chunks) }

// Modules returns all module handles in handle order (sorted by identifier).
func (g *Graph) Modules() []ModuleHandle {
	out := make([]ModuleHandle, len(g.modules))
	for i := range out {
		out[i] = ModuleHandle(i)
	}
	return out
}

// Chunks returns all chunk handles in creation order.
func (g *Graph) Chunks() []ChunkHandle {
	out := make([]ChunkHandle, len(g.chunks))
	for i := range out {
		out[i] = ChunkHandle(i)
	}
	return out
}

// RootModules returns the modules anchoring the identity of ch.
func (g *Graph) RootModules(ch ChunkHandle) []ModuleHandle {
	return g.chunks[ch].Roots
}

// ModuleChunkCount reports how many chunks contain m.
func (g *Graph) ModuleChunkCount(m ModuleHandle) int {
	return g.moduleChunks[m]
}

// LookupModule finds a module by identifier.
func (g *Graph) LookupModule(identifier string) (ModuleHandle, bool) {
	h, ok := g.byIdentifier[identifier]
	return h, ok
}

// ChunkSpec describes a chunk in terms of module identifiers.
type ChunkSpec struct {
	Name    string
	Hints   []string
	Roots   []string
	Modules []string // defaults to Roots when empty
}

// Builder collects modules and chunks and assigns handles.
type Builder struct {
	Context string
	modules []Module
	chunks  []ChunkSpec
}

// NewBuilder returns an empty builder for the given context directory.
func NewBuilder(context string) *Builder {
	return &Builder{Context: context}
}

// AddModule registers a module. Its Order is its insertion index.
func (b *Builder) AddModule(m Module) {
	m.Order = len(b.modules)
	b.modules = append(b.modules, m)
}

// AddChunk registers a chunk. Chunk handles follow insertion order.
func (b *Builder) AddChunk(spec ChunkSpec) {
	b.chunks = append(b.chunks, spec)
}

// Build sorts module identifiers, hands out handles in that order and
// resolves chunk membership.
func (b *Builder) Build() (*Graph, error) {
	mods := slices.Clone(b.modules)
	sort.SliceStable(mods, func(i, j int) bool {
		return mods[i].Identifier < mods[j].Identifier
	})

	g := &Graph{
		Context:      b.Context,
		modules:      mods,
		byIdentifier: make(map[string]ModuleHandle, len(mods)),
		moduleChunks: make([]int, len(mods)),
	}
	for i, m := range mods {
		if _, dup := g.byIdentifier[m.Identifier]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateModule, m.Identifier)
		}
		h, err := safecast.Conv[uint32](i)
		if err != nil {
			return nil, fmt.Errorf("module handle overflow: %w", err)
		}
		g.byIdentifier[m.Identifier] = ModuleHandle(h)
	}

	g.chunks = make([]Chunk, 0, len(b.chunks))
	for _, spec := range b.chunks {
		roots, err := g.resolve(spec.Roots)
		if err != nil {
			return nil, fmt.Errorf("chunk %q roots: %w", spec.Name, err)
		}
		members := roots
		if len(spec.Modules) > 0 {
			members, err = g.resolve(spec.Modules)
			if err != nil {
				return nil, fmt.Errorf("chunk %q modules: %w", spec.Name, err)
			}
		}
		for _, m := range members {
			g.moduleChunks[m]++
		}
		g.chunks = append(g.chunks, Chunk{
			Name:        spec.Name,
			IDNameHints: slices.Clone(spec.Hints),
			Roots:       roots,
			Modules:     members,
		})
	}
	return g, nil
}

// resolve maps identifiers to handles, deduplicated and sorted.
func (g *Graph) resolve(identifiers []string) ([]ModuleHandle, error) {
	out := make([]ModuleHandle, 0, len(identifiers))
	for _, ident := range identifiers {
		h, ok := g.byIdentifier[ident]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownModule, ident)
		}
		out = append(out, h)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}
