package config

import (
	"errors"
	"path/filepath"
	"testing"

	"bundleid/internal/assign"
)

func TestApplyEnvOverridesFile(t *testing.T) {
	cfg, err := Decode("[ids]\nmodules = \"natural\"\n\n[records]\npath = \"ids.mp\"\n", "/proj")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	dir := t.TempDir()
	t.Setenv("BUNDLEID_MODULES", "hashed")
	t.Setenv("BUNDLEID_SALT", "pepper")
	t.Setenv("BUNDLEID_FAIL_ON_CONFLICT", "true")
	t.Setenv("BUNDLEID_RECORDS", filepath.Join(dir, "cache", "ids.mp"))

	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.IDs.Modules != assign.Hashed || cfg.IDs.Salt != "pepper" || !cfg.IDs.FailOnConflict {
		t.Fatalf("IDs = %+v", cfg.IDs)
	}
	if want := filepath.Join(dir, "cache", "ids.mp"); cfg.RecordsPath != want {
		t.Fatalf("RecordsPath = %q, want %q", cfg.RecordsPath, want)
	}
}

func TestApplyEnvLeavesUnsetValues(t *testing.T) {
	cfg := Default("/proj")
	cfg.Library = "mylib"
	cfg.RecordsPath = "/proj/ids.mp"
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Library != "mylib" || cfg.RecordsPath != "/proj/ids.mp" {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
}

func TestApplyEnvEmptyRecordsDisables(t *testing.T) {
	cfg := Default("/proj")
	cfg.RecordsPath = "/proj/ids.mp"
	t.Setenv("BUNDLEID_RECORDS", "")
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.RecordsPath != "" {
		t.Fatalf("RecordsPath = %q, want empty", cfg.RecordsPath)
	}
}

func TestApplyEnvRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"BUNDLEID_MODULES":          "named-ish",
		"BUNDLEID_CHUNKS":           "bogus",
		"BUNDLEID_FAIL_ON_CONFLICT": "maybe",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if err := ApplyEnv(Default("/proj")); !errors.Is(err, ErrInvalid) {
				t.Fatalf("err = %v, want ErrInvalid", err)
			}
		})
	}
}
