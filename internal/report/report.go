// Package report renders assigned ids for people (table) and tools (json).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"bundleid/internal/graph"
	"bundleid/internal/ids"
	"bundleid/internal/naming"
)

// Format selects the output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected: table|json)", s)
	}
}

// ModuleEntry is one module row. ID is empty for modules without an id.
type ModuleEntry struct {
	Identifier string `json:"identifier"`
	ID         string `json:"id,omitempty"`
}

// ChunkEntry is one chunk row. IDs lists the chunk's aliases.
type ChunkEntry struct {
	Name string   `json:"name"`
	ID   string   `json:"id,omitempty"`
	IDs  []string `json:"ids"`
}

// Document is the complete assignment in handle order.
type Document struct {
	Library string        `json:"library,omitempty"`
	Modules []ModuleEntry `json:"modules"`
	Chunks  []ChunkEntry  `json:"chunks"`
}

// Build collects the ids of tab for every module and chunk of g.
func Build(g *graph.Graph, tab *ids.Table, library string) Document {
	doc := Document{
		Library: library,
		Modules: make([]ModuleEntry, 0, g.NumModules()),
		Chunks:  make([]ChunkEntry, 0, g.NumChunks()),
	}
	for _, m := range g.Modules() {
		id, _ := tab.ModuleID(m)
		doc.Modules = append(doc.Modules, ModuleEntry{Identifier: g.Module(m).Identifier, ID: string(id)})
	}
	for _, ch := range g.Chunks() {
		id, _ := tab.ChunkID(ch)
		aliases := tab.ChunkIDs(ch)
		entry := ChunkEntry{Name: naming.ChunkFullName(g, ch), ID: string(id), IDs: make([]string, len(aliases))}
		for i, a := range aliases {
			entry.IDs[i] = string(a)
		}
		doc.Chunks = append(doc.Chunks, entry)
	}
	return doc
}

// Options tune table output.
type Options struct {
	Color bool
}

// Write renders doc to w.
func Write(w io.Writer, doc Document, format Format, opts Options) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatTable, "":
		_, err := io.WriteString(w, renderTable(doc, opts))
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func renderTable(doc Document, opts Options) string {
	header := func(s string) string { return s }
	idText := func(s string) string { return s }
	if opts.Color {
		style := lipgloss.NewStyle().Bold(true).Underline(true)
		header = func(s string) string { return style.Render(s) }
		cyan := color.New(color.FgCyan)
		cyan.EnableColor()
		idText = func(s string) string { return cyan.Sprint(s) }
	}

	var sb strings.Builder
	rows := make([][2]string, len(doc.Modules))
	for i, m := range doc.Modules {
		rows[i] = [2]string{m.ID, m.Identifier}
	}
	writeSection(&sb, "modules", rows, header, idText)

	rows = make([][2]string, len(doc.Chunks))
	for i, ch := range doc.Chunks {
		id := ch.ID
		if len(ch.IDs) > 1 {
			id = strings.Join(ch.IDs, ",")
		}
		rows[i] = [2]string{id, ch.Name}
	}
	sb.WriteString("\n")
	writeSection(&sb, "chunks", rows, header, idText)
	return sb.String()
}

// writeSection prints "id  name" rows with the id column padded to the
// widest id, measured in terminal cells.
func writeSection(sb *strings.Builder, title string, rows [][2]string, header, idText func(string) string) {
	width := runewidth.StringWidth("id")
	for _, r := range rows {
		width = max(width, runewidth.StringWidth(r[0]))
	}
	sb.WriteString(header(title))
	sb.WriteString("\n")
	for _, r := range rows {
		id := r[0]
		if id == "" {
			id = "-"
		}
		pad := width - runewidth.StringWidth(id)
		sb.WriteString("  ")
		sb.WriteString(idText(id))
		sb.WriteString(strings.Repeat(" ", pad))
		sb.WriteString("  ")
		sb.WriteString(r[1])
		sb.WriteString("\n")
	}
}
