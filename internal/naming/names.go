package naming

import (
	"slices"
	"strings"
	"unicode/utf8"

	"bundleid/internal/graph"
	"bundleid/internal/hashing"
)

const (
	// maxChunkNameLength is the length from which chunk names get shortened.
	maxChunkNameLength = 100
	// chunkNameHashLength is the digest suffix length of a shortened name.
	chunkNameHashLength = 6
	// longNameHashLength is the digest suffix length of a long module name.
	longNameHashLength = 4
)

// ModuleShortName is the human-readable identity of m relative to the
// graph context.
func ModuleShortName(g *graph.Graph, m graph.ModuleHandle) string {
	mod := g.Module(m)
	ident := mod.LibIdent
	if ident == "" {
		ident = Contextify(g.Context, mod.Identifier)
	}
	return AvoidNumber(ident)
}

// ModuleFullName is the module identifier made relative to the context.
func ModuleFullName(g *graph.Graph, m graph.ModuleHandle) string {
	return Contextify(g.Context, g.Module(m).Identifier)
}

// ModuleLongName disambiguates a short name with a hash of the full name.
func ModuleLongName(g *graph.Graph, m graph.ModuleHandle, shortName string) string {
	return shortName + "?" + hashing.ShortHash(ModuleFullName(g, m), longNameHashLength)
}

// ChunkShortName joins the sorted hints of ch and the sanitized short names
// of its root modules.
func ChunkShortName(g *graph.Graph, ch graph.ChunkHandle, delimiter string) string {
	roots := g.RootModules(ch)
	parts := sortedHints(g, ch)
	for _, m := range roots {
		parts = append(parts, RequestToID(ModuleShortName(g, m)))
	}
	return ShortenLongString(joinNonEmpty(parts, delimiter), delimiter)
}

// ChunkLongName is ChunkShortName followed by the sanitized long names of
// the root modules.
func ChunkLongName(g *graph.Graph, ch graph.ChunkHandle, delimiter string) string {
	roots := g.RootModules(ch)
	parts := sortedHints(g, ch)
	shorts := make([]string, len(roots))
	for i, m := range roots {
		shorts[i] = ModuleShortName(g, m)
		parts = append(parts, RequestToID(shorts[i]))
	}
	for i, m := range roots {
		parts = append(parts, RequestToID(ModuleLongName(g, m, shorts[i])))
	}
	return ShortenLongString(joinNonEmpty(parts, delimiter), delimiter)
}

// ChunkFullName is the preset chunk name when there is one, otherwise the
// comma-joined full names of the root modules. It feeds hashing only.
func ChunkFullName(g *graph.Graph, ch graph.ChunkHandle) string {
	if name := g.Chunk(ch).Name; name != "" {
		return name
	}
	roots := g.RootModules(ch)
	full := make([]string, len(roots))
	for i, m := range roots {
		full[i] = ModuleFullName(g, m)
	}
	return strings.Join(full, ",")
}

// ShortenLongString keeps s when it is shorter than 100 bytes. Longer
// strings are cut to 94-len(delimiter) bytes and suffixed with the
// delimiter and a 6 character hash of the whole of s.
func ShortenLongString(s, delimiter string) string {
	if len(s) < maxChunkNameLength {
		return s
	}
	cut := maxChunkNameLength - chunkNameHashLength - len(delimiter)
	if cut < 0 {
		cut = 0
	}
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + delimiter + hashing.ShortHash(s, chunkNameHashLength)
}

func sortedHints(g *graph.Graph, ch graph.ChunkHandle) []string {
	hints := slices.Clone(g.Chunk(ch).IDNameHints)
	slices.Sort(hints)
	return slices.Compact(hints)
}

func joinNonEmpty(parts []string, delimiter string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, delimiter)
}
