package graph

import (
	"cmp"
	"slices"
	"strings"
)

// ModuleCompare orders modules. It must be a total order.
type ModuleCompare func(a, b ModuleHandle) int

// ChunkCompare orders chunks. It must be a total order.
type ChunkCompare func(a, b ChunkHandle) int

// CompareModulesByIdentifier orders modules by identifier.
func (g *Graph) CompareModulesByIdentifier(a, b ModuleHandle) int {
	return strings.Compare(g.modules[a].Identifier, g.modules[b].Identifier)
}

// CompareModulesByOrder orders modules by pre-order index, falling back to
// identifier.
func (g *Graph) CompareModulesByOrder(a, b ModuleHandle) int {
	if c := cmp.Compare(g.modules[a].Order, g.modules[b].Order); c != 0 {
		return c
	}
	return g.CompareModulesByIdentifier(a, b)
}

// CompareChunksNatural orders chunks by name, then by the identifiers of
// their root modules, then by hints. Chunks equal on all of those keep
// creation order.
func (g *Graph) CompareChunksNatural(a, b ChunkHandle) int {
	ca, cb := &g.chunks[a], &g.chunks[b]
	if c := strings.Compare(ca.Name, cb.Name); c != 0 {
		return c
	}
	if c := slices.CompareFunc(ca.Roots, cb.Roots, g.CompareModulesByIdentifier); c != 0 {
		return c
	}
	if c := slices.Compare(ca.IDNameHints, cb.IDNameHints); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}
