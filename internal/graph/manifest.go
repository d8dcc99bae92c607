package graph

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type manifestFile struct {
	Context string           `toml:"context" yaml:"context"`
	Modules []manifestModule `toml:"module" yaml:"modules"`
	Chunks  []manifestChunk  `toml:"chunk" yaml:"chunks"`
}

type manifestModule struct {
	Identifier string `toml:"identifier" yaml:"identifier"`
	LibIdent   string `toml:"lib_ident" yaml:"lib_ident"`
	NoID       bool   `toml:"no_id" yaml:"no_id"`
}

type manifestChunk struct {
	Name    string   `toml:"name" yaml:"name"`
	Hints   []string `toml:"hints" yaml:"hints"`
	Roots   []string `toml:"roots" yaml:"roots"`
	Modules []string `toml:"modules" yaml:"modules"`
}

// LoadManifest reads a graph manifest written by the chunk graph builder.
// Files ending in .yaml or .yml are YAML, everything else is TOML.
// Module order in the file is the module pre-order; chunk order is creation
// order.
func LoadManifest(path string) (*Graph, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		mf, err := parseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return buildManifest(path, mf)
	}
	var mf manifestFile
	if _, err := toml.DecodeFile(path, &mf); err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	return buildManifest(path, mf)
}

// DecodeManifestYAML parses a graph manifest from YAML. Unknown keys are
// rejected.
func DecodeManifestYAML(data []byte) (*Graph, error) {
	mf, err := parseYAML(data)
	if err != nil {
		return nil, err
	}
	return buildManifest("<inline>", mf)
}

func parseYAML(data []byte) (manifestFile, error) {
	var mf manifestFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&mf); err != nil {
		return mf, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return mf, nil
}

// DecodeManifest parses a graph manifest from a TOML string.
func DecodeManifest(data string) (*Graph, error) {
	var mf manifestFile
	if _, err := toml.Decode(data, &mf); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return buildManifest("<inline>", mf)
}

func buildManifest(path string, mf manifestFile) (*Graph, error) {
	b := NewBuilder(strings.TrimSpace(mf.Context))
	for i, m := range mf.Modules {
		ident := strings.TrimSpace(m.Identifier)
		if ident == "" {
			return nil, fmt.Errorf("%s: module #%d missing identifier", path, i+1)
		}
		b.AddModule(Module{Identifier: ident, LibIdent: m.LibIdent, NoID: m.NoID})
	}
	for _, c := range mf.Chunks {
		b.AddChunk(ChunkSpec{
			Name:    strings.TrimSpace(c.Name),
			Hints:   c.Hints,
			Roots:   c.Roots,
			Modules: c.Modules,
		})
	}
	g, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
