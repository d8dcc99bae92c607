// Package config loads bundleid.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"bundleid/internal/assign"
	"bundleid/internal/ids"
)

// FileName is the configuration file looked up from the working directory.
const FileName = "bundleid.toml"

var (
	// ErrInvalid marks configuration values no build can run with.
	ErrInvalid = errors.New("invalid configuration")
	// ErrUnknownKey indicates a key bundleid does not understand.
	ErrUnknownKey = errors.New("unknown configuration key")
)

// Config is a validated bundleid.toml.
type Config struct {
	Path    string // empty for defaults
	Context string // absolute context directory for relative names
	Library string

	IDs             assign.Options
	ReservedModules ids.Reserved
	ReservedChunks  ids.Reserved

	RecordsPath string // absolute; empty disables records
}

type fileConfig struct {
	Output struct {
		Context string `toml:"context"`
		Library any    `toml:"library"`
	} `toml:"output"`
	IDs struct {
		Modules          string `toml:"modules"`
		Chunks           string `toml:"chunks"`
		MaxLength        int    `toml:"max_length"`
		ChunkMaxLength   int    `toml:"chunk_max_length"`
		FailOnConflict   bool   `toml:"fail_on_conflict"`
		HashDigestLength int    `toml:"hash_digest_length"`
		Delimiter        string `toml:"delimiter"`
		Salt             string `toml:"salt"`
	} `toml:"ids"`
	Reserved struct {
		Modules []any `toml:"modules"`
		Chunks  []any `toml:"chunks"`
	} `toml:"reserved"`
	Records struct {
		Path string `toml:"path"`
	} `toml:"records"`
}

// Default returns the configuration used when no bundleid.toml exists.
func Default(dir string) *Config {
	return &Config{
		Context:         dir,
		IDs:             assign.DefaultOptions(),
		ReservedModules: ids.NewReserved(),
		ReservedChunks:  ids.NewReserved(),
	}
}

// Find walks up from startDir to locate bundleid.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads and validates the file at path. Relative paths inside it are
// resolved against its directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	cfg, err := Decode(string(data), filepath.Dir(abs))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = abs
	return cfg, nil
}

// Decode parses TOML text. baseDir anchors relative paths and is the
// default context.
func Decode(data, baseDir string) (*Config, error) {
	var raw fileConfig
	meta, err := toml.Decode(data, &raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	cfg := Default(baseDir)

	if meta.IsDefined("output", "context") {
		cfg.Context = anchor(baseDir, raw.Output.Context)
	}
	if meta.IsDefined("output", "library") {
		lib, ok := raw.Output.Library.(string)
		if !ok {
			return nil, fmt.Errorf("%w: [output].library must be a string, got %T", ErrInvalid, raw.Output.Library)
		}
		cfg.Library = lib
	}

	opts := &cfg.IDs
	if meta.IsDefined("ids", "modules") {
		st, err := assign.ParseStrategy(strings.TrimSpace(raw.IDs.Modules), false)
		if err != nil {
			return nil, fmt.Errorf("%w: [ids].modules: %w", ErrInvalid, err)
		}
		opts.Modules = st
	}
	if meta.IsDefined("ids", "chunks") {
		st, err := assign.ParseStrategy(strings.TrimSpace(raw.IDs.Chunks), true)
		if err != nil {
			return nil, fmt.Errorf("%w: [ids].chunks: %w", ErrInvalid, err)
		}
		opts.Chunks = st
	}
	if meta.IsDefined("ids", "max_length") {
		opts.MaxLength = raw.IDs.MaxLength
	}
	if meta.IsDefined("ids", "chunk_max_length") {
		opts.ChunkMaxLength = raw.IDs.ChunkMaxLength
	}
	if meta.IsDefined("ids", "hash_digest_length") {
		opts.HashDigestLength = raw.IDs.HashDigestLength
	}
	if meta.IsDefined("ids", "delimiter") {
		opts.Delimiter = raw.IDs.Delimiter
	}
	opts.FailOnConflict = raw.IDs.FailOnConflict
	opts.Salt = raw.IDs.Salt
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: [ids]: %w", ErrInvalid, err)
	}

	if cfg.ReservedModules, err = reservedSet("modules", raw.Reserved.Modules); err != nil {
		return nil, err
	}
	if cfg.ReservedChunks, err = reservedSet("chunks", raw.Reserved.Chunks); err != nil {
		return nil, err
	}

	if p := strings.TrimSpace(raw.Records.Path); p != "" {
		cfg.RecordsPath = anchor(baseDir, p)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// reservedSet accepts ids written as strings or integers.
func reservedSet(key string, values []any) (ids.Reserved, error) {
	out := ids.NewReserved()
	for i, v := range values {
		switch val := v.(type) {
		case string:
			if val == "" {
				return nil, fmt.Errorf("%w: [reserved].%s[%d] is empty", ErrInvalid, key, i)
			}
			out.Add(val)
		case int64:
			out.Add(strconv.FormatInt(val, 10))
		default:
			return nil, fmt.Errorf("%w: [reserved].%s[%d] must be a string or integer, got %T", ErrInvalid, key, i, v)
		}
	}
	return out, nil
}

func anchor(baseDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, filepath.FromSlash(p))
}
