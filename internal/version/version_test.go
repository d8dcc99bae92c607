package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersionDefault(t *testing.T) {
	if Version == "" {
		t.Fatalf("Version should have a default value")
	}
}

func TestColoredWithoutColor(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = orig }()

	for _, v := range []string{"0.1.0-dev", "1.2.3", "1.2.3-rc.1+build.5", "dev"} {
		if got := Colored(v); got != v {
			t.Fatalf("Colored(%q) = %q, want unchanged", v, got)
		}
	}
}

func TestColoredHighlightsComponents(t *testing.T) {
	orig := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = orig }()

	got := Colored("1.2.3-dev")
	if got == "1.2.3-dev" {
		t.Fatalf("expected escape sequences in %q", got)
	}
}

func TestCurrentAndFull(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	defer func() { Version, GitCommit = origVersion, origCommit }()

	Version, GitCommit = "  ", "abc123 "
	info := Current()
	if info.Version != "dev" || info.GitCommit != "abc123" || info.Tool != "bundleid" {
		t.Fatalf("Current() = %+v", info)
	}
	full := info.Full()
	if full.GitCommit != "abc123" || full.BuildDate != "unknown" {
		t.Fatalf("Full() = %+v", full)
	}
}
