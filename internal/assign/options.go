// Package assign runs module and chunk id passes over a graph. A pass
// reserves every id that is already committed, picks the items that still
// need one, and hands them to the strategy's assigner from package ids.
package assign

import (
	"fmt"
	"strconv"

	"bundleid/internal/graph"
	"bundleid/internal/hashing"
	"bundleid/internal/ids"
	"bundleid/internal/trace"
)

// Strategy selects how ids are produced.
type Strategy string

const (
	// Natural hands out ascending numbers in module/chunk order.
	Natural Strategy = "natural"
	// Named uses readable names derived from paths and hints.
	Named Strategy = "named"
	// Deterministic derives short numbers from content hashes.
	Deterministic Strategy = "deterministic"
	// Hashed uses the shortest free prefix of a hex digest (modules only).
	Hashed Strategy = "hashed"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string, forChunks bool) (Strategy, error) {
	switch st := Strategy(s); st {
	case Natural, Named, Deterministic:
		return st, nil
	case Hashed:
		if !forChunks {
			return st, nil
		}
	}
	if forChunks {
		return "", fmt.Errorf("unknown chunk id strategy %q (expected: natural|named|deterministic)", s)
	}
	return "", fmt.Errorf("unknown module id strategy %q (expected: natural|named|deterministic|hashed)", s)
}

// Options configure both passes.
type Options struct {
	Modules          Strategy
	Chunks           Strategy
	MaxLength        int    // module deterministic width request
	ChunkMaxLength   int    // chunk deterministic width request
	FailOnConflict   bool   // deterministic: stop instead of probing
	HashDigestLength int    // hashed: initial prefix length
	Delimiter        string // named chunks: join delimiter
	Salt             string // deterministic: appended to hashed names

	// Filter limits which modules a pass may assign; nil admits all.
	Filter func(*graph.Module) bool
}

// DefaultOptions mirrors the defaults of bundleid.toml.
func DefaultOptions() Options {
	return Options{
		Modules:          Deterministic,
		Chunks:           Deterministic,
		MaxLength:        3,
		ChunkMaxLength:   3,
		HashDigestLength: 4,
		Delimiter:        "-",
	}
}

// Validate reports option values no pass can work with.
func (o Options) Validate() error {
	if _, err := ParseStrategy(string(o.Modules), false); err != nil {
		return err
	}
	if _, err := ParseStrategy(string(o.Chunks), true); err != nil {
		return err
	}
	if o.MaxLength < 0 || o.MaxLength > hashing.MaxDigits {
		return fmt.Errorf("max_length %d out of range [0, %d]", o.MaxLength, hashing.MaxDigits)
	}
	if o.ChunkMaxLength < 0 || o.ChunkMaxLength > hashing.MaxDigits {
		return fmt.Errorf("chunk_max_length %d out of range [0, %d]", o.ChunkMaxLength, hashing.MaxDigits)
	}
	if o.HashDigestLength < 1 || o.HashDigestLength > hashing.DigestLength {
		return fmt.Errorf("hash_digest_length %d out of range [1, %d]", o.HashDigestLength, hashing.DigestLength)
	}
	if o.Chunks == Named && o.Delimiter == "" {
		return fmt.Errorf("named chunk ids need a non-empty delimiter")
	}
	return nil
}

// Stats summarize one pass.
type Stats struct {
	Strategy Strategy
	Assigned int // ids committed by this pass
	Fallback int // items that got an ascending id after naming failed
	Retries  int // extra deterministic hash attempts
	Skipped  int // items that already had an id
}

func (s Stats) annotate(span *trace.Span) {
	span.WithExtra("assigned", strconv.Itoa(s.Assigned)).
		WithExtra("fallback", strconv.Itoa(s.Fallback)).
		WithExtra("retries", strconv.Itoa(s.Retries)).
		WithExtra("skipped", strconv.Itoa(s.Skipped))
}

func numericID(n int64) ids.ID { return ids.Num(n) }
