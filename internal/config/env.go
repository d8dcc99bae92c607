package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"bundleid/internal/assign"
)

// EnvPrefix names the environment overrides, e.g. BUNDLEID_MODULES.
const EnvPrefix = "BUNDLEID"

// envOverrides holds the variables that may replace file settings. Nil
// fields were not set.
type envOverrides struct {
	Modules        *string
	Chunks         *string
	Library        *string
	Salt           *string
	Records        *string
	FailOnConflict *bool `split_words:"true"`
}

// ApplyEnv overrides cfg with BUNDLEID_* variables and validates the result.
// An empty BUNDLEID_RECORDS disables records; a relative one is resolved
// against the working directory.
func ApplyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("%w: environment: %w", ErrInvalid, err)
	}
	opts := &cfg.IDs
	if env.Modules != nil {
		st, err := assign.ParseStrategy(strings.TrimSpace(*env.Modules), false)
		if err != nil {
			return fmt.Errorf("%w: %s_MODULES: %w", ErrInvalid, EnvPrefix, err)
		}
		opts.Modules = st
	}
	if env.Chunks != nil {
		st, err := assign.ParseStrategy(strings.TrimSpace(*env.Chunks), true)
		if err != nil {
			return fmt.Errorf("%w: %s_CHUNKS: %w", ErrInvalid, EnvPrefix, err)
		}
		opts.Chunks = st
	}
	if env.Salt != nil {
		opts.Salt = *env.Salt
	}
	if env.FailOnConflict != nil {
		opts.FailOnConflict = *env.FailOnConflict
	}
	if env.Library != nil {
		cfg.Library = *env.Library
	}
	if env.Records != nil {
		p := strings.TrimSpace(*env.Records)
		if p != "" {
			abs, err := filepath.Abs(p)
			if err != nil {
				return fmt.Errorf("failed to resolve %s_RECORDS: %w", EnvPrefix, err)
			}
			p = abs
		}
		cfg.RecordsPath = p
	}
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("%w: environment: %w", ErrInvalid, err)
	}
	return nil
}
