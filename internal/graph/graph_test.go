package graph

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func identifiers(g *Graph, hs []ModuleHandle) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = g.Module(h).Identifier
	}
	return out
}

func TestBuildAssignsHandlesByIdentifier(t *testing.T) {
	b := NewBuilder("/app")
	b.AddModule(Module{Identifier: "/app/src/z.js"})
	b.AddModule(Module{Identifier: "/app/src/a.js"})
	b.AddModule(Module{Identifier: "/app/src/m.js"})
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []string{"/app/src/a.js", "/app/src/m.js", "/app/src/z.js"}
	if got := identifiers(g, g.Modules()); !slices.Equal(got, want) {
		t.Fatalf("modules = %v, want %v", got, want)
	}
	if g.Module(0).Order != 1 || g.Module(2).Order != 0 {
		t.Fatalf("pre-order index lost: a=%d z=%d", g.Module(0).Order, g.Module(2).Order)
	}
	if h, ok := g.LookupModule("/app/src/m.js"); !ok || h != 1 {
		t.Fatalf("LookupModule = %v, %v, want 1, true", h, ok)
	}
}

func TestBuildResolvesChunkMembership(t *testing.T) {
	b := NewBuilder("/app")
	b.AddModule(Module{Identifier: "/app/b.js"})
	b.AddModule(Module{Identifier: "/app/a.js"})
	b.AddModule(Module{Identifier: "/app/orphan.js"})
	b.AddChunk(ChunkSpec{Name: "main", Roots: []string{"/app/b.js", "/app/a.js"}})
	b.AddChunk(ChunkSpec{Roots: []string{"/app/b.js"}, Modules: []string{"/app/b.js", "/app/b.js"}})
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	roots := identifiers(g, g.RootModules(0))
	if want := []string{"/app/a.js", "/app/b.js"}; !slices.Equal(roots, want) {
		t.Fatalf("roots = %v, want %v", roots, want)
	}
	a, _ := g.LookupModule("/app/a.js")
	bh, _ := g.LookupModule("/app/b.js")
	orphan, _ := g.LookupModule("/app/orphan.js")
	if g.ModuleChunkCount(a) != 1 || g.ModuleChunkCount(bh) != 2 || g.ModuleChunkCount(orphan) != 0 {
		t.Fatalf("chunk counts a=%d b=%d orphan=%d", g.ModuleChunkCount(a), g.ModuleChunkCount(bh), g.ModuleChunkCount(orphan))
	}
}

func TestBuildRejectsDuplicatesAndUnknownModules(t *testing.T) {
	b := NewBuilder("")
	b.AddModule(Module{Identifier: "/x.js"})
	b.AddModule(Module{Identifier: "/x.js"})
	if _, err := b.Build(); !errors.Is(err, ErrDuplicateModule) {
		t.Fatalf("err = %v, want ErrDuplicateModule", err)
	}

	b = NewBuilder("")
	b.AddModule(Module{Identifier: "/x.js"})
	b.AddChunk(ChunkSpec{Name: "c", Roots: []string{"/y.js"}})
	if _, err := b.Build(); !errors.Is(err, ErrUnknownModule) {
		t.Fatalf("err = %v, want ErrUnknownModule", err)
	}
}

func TestCompareChunksNaturalIsTotal(t *testing.T) {
	b := NewBuilder("")
	b.AddModule(Module{Identifier: "/a.js"})
	b.AddModule(Module{Identifier: "/b.js"})
	b.AddChunk(ChunkSpec{Roots: []string{"/b.js"}})
	b.AddChunk(ChunkSpec{Name: "vendor", Roots: []string{"/a.js"}})
	b.AddChunk(ChunkSpec{Roots: []string{"/a.js"}})
	b.AddChunk(ChunkSpec{Roots: []string{"/a.js"}})
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	chunks := g.Chunks()
	slices.Reverse(chunks)
	slices.SortFunc(chunks, g.CompareChunksNatural)
	want := []ChunkHandle{2, 3, 0, 1}
	if !slices.Equal(chunks, want) {
		t.Fatalf("order = %v, want %v", chunks, want)
	}
}

func TestDecodeManifest(t *testing.T) {
	g, err := DecodeManifest(`
context = "/proj"

[[module]]
identifier = "/proj/src/index.js"
lib_ident = "./src/index.js"

[[module]]
identifier = "/proj/runtime"
no_id = true

[[chunk]]
name = "main"
hints = ["entry"]
roots = ["/proj/src/index.js"]
`)
	if err != nil {
		t.Fatalf("DecodeManifest: %v", err)
	}
	if g.Context != "/proj" || g.NumModules() != 2 || g.NumChunks() != 1 {
		t.Fatalf("unexpected graph: context=%q modules=%d chunks=%d", g.Context, g.NumModules(), g.NumChunks())
	}
	rt, _ := g.LookupModule("/proj/runtime")
	if !g.Module(rt).NoID {
		t.Fatalf("no_id not decoded")
	}
	if c := g.Chunk(0); c.Name != "main" || len(c.IDNameHints) != 1 || len(c.Modules) != 1 {
		t.Fatalf("unexpected chunk %+v", c)
	}
}

func TestDecodeManifestYAML(t *testing.T) {
	g, err := DecodeManifestYAML([]byte(`
context: /proj
modules:
  - identifier: /proj/src/index.js
    lib_ident: ./src/index.js
  - identifier: /proj/runtime
    no_id: true
chunks:
  - name: main
    roots: [/proj/src/index.js]
`))
	if err != nil {
		t.Fatalf("DecodeManifestYAML: %v", err)
	}
	if g.Context != "/proj" || g.NumModules() != 2 || g.NumChunks() != 1 {
		t.Fatalf("unexpected graph: context=%q modules=%d chunks=%d", g.Context, g.NumModules(), g.NumChunks())
	}
	rt, _ := g.LookupModule("/proj/runtime")
	if !g.Module(rt).NoID {
		t.Fatalf("no_id not decoded")
	}
}

func TestDecodeManifestYAMLRejectsUnknownKeys(t *testing.T) {
	_, err := DecodeManifestYAML([]byte("context: /proj\nmodule:\n  - identifier: /proj/a.js\n"))
	if err == nil || !strings.Contains(err.Error(), "module") {
		t.Fatalf("err = %v, want unknown field error", err)
	}
}

func TestLoadManifestPicksDecoderByExtension(t *testing.T) {
	dir := t.TempDir()
	yml := filepath.Join(dir, "graph.yml")
	if err := os.WriteFile(yml, []byte("modules:\n  - identifier: /proj/a.js\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	tml := filepath.Join(dir, "graph.toml")
	if err := os.WriteFile(tml, []byte("[[module]]\nidentifier = \"/proj/a.js\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{yml, tml} {
		g, err := LoadManifest(path)
		if err != nil {
			t.Fatalf("LoadManifest(%s): %v", path, err)
		}
		if g.NumModules() != 1 {
			t.Fatalf("%s: modules = %d, want 1", path, g.NumModules())
		}
	}
}
