package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota // no tracing
	LevelError               // keep events for failure dumps only
	LevelPhase               // driver + pass boundaries
	LevelDetail              // pass statistics
	LevelDebug               // everything including single items
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a flag value to a Level. Empty means off.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LevelOff, nil
	}
	for i, name := range levelNames {
		if name == s {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope pass this level. LevelError
// records everything; only the ring buffer runs at that level.
func (l Level) ShouldEmit(scope Scope) bool {
	switch {
	case l == LevelOff:
		return false
	case l == LevelPhase || l == LevelDetail:
		return scope <= ScopePass
	default:
		return true
	}
}
