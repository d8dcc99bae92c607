package records

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/vmihailenco/msgpack/v5"

	"bundleid/internal/graph"
	"bundleid/internal/ids"
)

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder("/proj")
	b.AddModule(graph.Module{Identifier: "/proj/a.js"})
	b.AddModule(graph.Module{Identifier: "/proj/b.js"})
	b.AddModule(graph.Module{Identifier: "/proj/c.js"})
	b.AddChunk(graph.ChunkSpec{Name: "main", Roots: []string{"/proj/a.js"}})
	b.AddChunk(graph.ChunkSpec{Roots: []string{"/proj/c.js", "/proj/b.js"}})
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestChunkKey(t *testing.T) {
	g := testGraph(t)
	if got := ChunkKey(g, 0); got != "main" {
		t.Fatalf("ChunkKey(named) = %q, want main", got)
	}
	if got := ChunkKey(g, 1); got != "/proj/b.js,/proj/c.js" {
		t.Fatalf("ChunkKey(unnamed) = %q, want sorted roots", got)
	}
}

func TestCaptureThenRestore(t *testing.T) {
	g := testGraph(t)
	tab := ids.NewTable()
	tab.SetModuleID(0, "10")
	tab.SetModuleID(2, "12")
	tab.SetChunkID(0, "0")
	tab.SetChunkID(1, "7")

	rec := Capture(g, tab)
	want := &Records{
		Schema:  schemaVersion,
		Modules: map[string]ids.ID{"/proj/a.js": "10", "/proj/c.js": "12"},
		Chunks:  map[string]ids.ID{"main": "0", "/proj/b.js,/proj/c.js": "7"},
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Fatalf("Capture mismatch (-want +got):\n%s", diff)
	}

	fresh := ids.NewTable()
	stats := Restore(g, fresh, rec, nil, nil, nil)
	if stats != (RestoreStats{Modules: 2, Chunks: 2}) {
		t.Fatalf("stats = %+v", stats)
	}
	if id, _ := fresh.ModuleID(2); id != "12" {
		t.Fatalf("module c id = %q, want 12", id)
	}
	if fresh.HasModuleID(1) {
		t.Fatalf("module b must stay unassigned")
	}
	if id, _ := fresh.ChunkID(1); id != "7" {
		t.Fatalf("chunk id = %q, want 7", id)
	}
}

func TestRestoreDropsReservedAndTakenIDs(t *testing.T) {
	g := testGraph(t)
	rec := New()
	rec.Modules["/proj/a.js"] = "1"
	rec.Modules["/proj/b.js"] = "2"
	rec.Modules["/proj/c.js"] = "3"
	rec.Chunks["main"] = "x"

	tab := ids.NewTable()
	tab.SetModuleID(2, "2")
	stats := Restore(g, tab, rec, ids.NewReserved("1"), ids.NewReserved("x"), nil)
	if stats != (RestoreStats{Dropped: 3}) {
		t.Fatalf("stats = %+v, want 3 dropped", stats)
	}
	if tab.HasModuleID(0) || tab.HasModuleID(1) {
		t.Fatalf("reserved or taken ids were restored")
	}
	if id, _ := tab.ModuleID(2); id != "2" {
		t.Fatalf("existing id overwritten: %q", id)
	}
}

func TestRestoreSkipsModulesThePassesWouldNotAssign(t *testing.T) {
	b := graph.NewBuilder("/p")
	b.AddModule(graph.Module{Identifier: "/p/a.js"})
	b.AddModule(graph.Module{Identifier: "/p/orphan.js"})
	b.AddModule(graph.Module{Identifier: "/p/vendor.js"})
	b.AddChunk(graph.ChunkSpec{Name: "main", Roots: []string{"/p/a.js", "/p/vendor.js"}})
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	rec := New()
	rec.Modules["/p/a.js"] = "1"
	rec.Modules["/p/orphan.js"] = "7"
	rec.Modules["/p/vendor.js"] = "9"

	tab := ids.NewTable()
	noVendor := func(m *graph.Module) bool { return !strings.Contains(m.Identifier, "vendor") }
	stats := Restore(g, tab, rec, nil, nil, noVendor)
	if stats != (RestoreStats{Modules: 1}) {
		t.Fatalf("stats = %+v, want 1 module restored", stats)
	}
	orphan, _ := g.LookupModule("/p/orphan.js")
	vendor, _ := g.LookupModule("/p/vendor.js")
	if tab.HasModuleID(orphan) || tab.HasModuleID(vendor) {
		t.Fatalf("orphan or filtered module got its recorded id back")
	}
	if diff := cmp.Diff(map[string]ids.ID{"/p/a.js": "1"}, Capture(g, tab).Modules); diff != "" {
		t.Fatalf("recaptured modules (-want +got):\n%s", diff)
	}
}

func TestCaptureSkipsAmbiguousChunkKeys(t *testing.T) {
	b := graph.NewBuilder("/proj")
	b.AddModule(graph.Module{Identifier: "/proj/a.js"})
	b.AddChunk(graph.ChunkSpec{Roots: []string{"/proj/a.js"}})
	b.AddChunk(graph.ChunkSpec{Roots: []string{"/proj/a.js"}})
	b.AddChunk(graph.ChunkSpec{})
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	tab := ids.NewTable()
	tab.SetChunkID(0, "0")
	tab.SetChunkID(1, "1")
	tab.SetChunkID(2, "2")
	if rec := Capture(g, tab); len(rec.Chunks) != 0 {
		t.Fatalf("ambiguous chunks recorded: %v", rec.Chunks)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "ids.mp")
	store := Open(path)

	if _, found, err := store.Load(ctx); err != nil || found {
		t.Fatalf("Load on missing file = found %v, err %v", found, err)
	}

	rec := New()
	rec.Modules["/proj/a.js"] = "5"
	rec.Chunks["main"] = "main"
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, found, err := store.Load(ctx)
	if err != nil || !found {
		t.Fatalf("Load = found %v, err %v", found, err)
	}
	if diff := cmp.Diff(rec, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".records-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestStoreHonorsLockOfOtherStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.mp")
	holder := Open(path)
	unlock, err := holder.lock(context.Background())
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if err := Open(path).Save(ctx, New()); !errors.Is(err, ErrLocked) {
		t.Fatalf("Save err = %v, want ErrLocked", err)
	}
}

func TestDecodeRejectsOtherSchema(t *testing.T) {
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(&Records{Schema: schemaVersion + 1}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := Decode(&buf); !errors.Is(err, ErrSchema) {
		t.Fatalf("Decode err = %v, want ErrSchema", err)
	}
}

func TestDecodeFillsMissingMaps(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, &Records{}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	rec, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if rec.Modules == nil || rec.Chunks == nil {
		t.Fatalf("maps not initialized: %+v", rec)
	}
}
