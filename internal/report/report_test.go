package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"bundleid/internal/graph"
	"bundleid/internal/ids"
)

func sampleDoc(t *testing.T) Document {
	t.Helper()
	b := graph.NewBuilder("/proj")
	b.AddModule(graph.Module{Identifier: "/proj/a.js"})
	b.AddModule(graph.Module{Identifier: "/proj/b.js"})
	b.AddChunk(graph.ChunkSpec{Name: "main", Roots: []string{"/proj/a.js"}})
	b.AddChunk(graph.ChunkSpec{Roots: []string{"/proj/b.js"}})
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	tab := ids.NewTable()
	tab.SetModuleID(0, "17")
	tab.SetChunkID(0, "main")
	tab.SetChunkID(1, "3")
	tab.AddChunkAlias(1, "lazy")
	return Build(g, tab, "mylib")
}

func TestBuild(t *testing.T) {
	want := Document{
		Library: "mylib",
		Modules: []ModuleEntry{{Identifier: "/proj/a.js", ID: "17"}, {Identifier: "/proj/b.js"}},
		Chunks: []ChunkEntry{
			{Name: "main", ID: "main", IDs: []string{"main"}},
			{Name: "./b.js", ID: "3", IDs: []string{"3", "lazy"}},
		},
	}
	if diff := cmp.Diff(want, sampleDoc(t)); diff != "" {
		t.Fatalf("Build mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleDoc(t), FormatJSON, Options{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	mods := got["modules"].([]any)
	if first := mods[0].(map[string]any); first["identifier"] != "/proj/a.js" || first["id"] != "17" {
		t.Fatalf("modules[0] = %v", first)
	}
	if _, ok := mods[1].(map[string]any)["id"]; ok {
		t.Fatalf("unassigned module must omit id: %v", mods[1])
	}
	chunks := got["chunks"].([]any)
	if ids := chunks[1].(map[string]any)["ids"].([]any); len(ids) != 2 {
		t.Fatalf("chunk aliases = %v", ids)
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleDoc(t), FormatTable, Options{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := strings.Join([]string{
		"modules",
		"  17  /proj/a.js",
		"  -   /proj/b.js",
		"",
		"chunks",
		"  main    main",
		"  3,lazy  ./b.js",
		"",
	}, "\n")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatTable, "table": FormatTable, "JSON": FormatJSON} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("yaml"); err == nil {
		t.Fatalf("expected error for yaml")
	}
}
