package ids

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"

	"bundleid/internal/hashing"
)

// ErrConflict is returned by AssignDeterministic when FailOnConflict is set
// and an item's first candidate id is already taken.
var ErrConflict = errors.New("deterministic id conflict")

// DeterministicOptions tunes AssignDeterministic.
type DeterministicOptions struct {
	// MaxLength requests a decimal width; it is capped at hashing.MaxDigits
	// and never narrower than the width that keeps the id space at most
	// about 80% full.
	MaxLength int
	// FailOnConflict stops at the first item whose first id is taken.
	FailOnConflict bool
}

// Collision reports an attempt of AssignDeterministic that hit a taken id.
// Attempt is the counter suffix that produced id.
type Collision struct {
	Name    string
	ID      int64
	Attempt int
}

// OptimalLength is the smallest decimal width holding count items at a
// fill ratio of at most 80%.
func OptimalLength(count int) int {
	return int(math.Ceil(math.Log10(float64(count)*1.25 + 1)))
}

// DeterministicWidth returns the width AssignDeterministic uses for count
// items.
func DeterministicWidth(count, maxLength int) int {
	return max(min(maxLength, hashing.MaxDigits), OptimalLength(count))
}

// AssignDeterministic gives each item a numeric id derived from the hash of
// its name. Items are visited in compare order; when an id is taken, the
// name is re-hashed with an increasing counter suffix until a free id
// turns up. The loop has no retry bound: a reserved set that fills the
// whole id space never terminates unless FailOnConflict is set.
//
// used is not modified. onCollision, when not nil, sees every attempt that
// hit a taken id. Ids are handed to assign only once every item has one, so
// a conflict error leaves nothing assigned. The number of retries is
// returned.
func AssignDeterministic[T any](
	items []T,
	name func(T) string,
	compare func(a, b T) int,
	opts DeterministicOptions,
	used Reserved,
	assign func(T, int64),
	onCollision func(T, Collision),
) (int, error) {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, compare)

	width := DeterministicWidth(len(sorted), opts.MaxLength)
	taken := used.Clone()
	picked := make([]int64, len(sorted))
	retries := 0
	for n, item := range sorted {
		base := name(item)
		i := 0
		id := hashing.BoundedInt(base+"0", width)
		for taken.Has(strconv.FormatInt(id, 10)) {
			if onCollision != nil {
				onCollision(item, Collision{Name: base, ID: id, Attempt: i})
			}
			if opts.FailOnConflict {
				return retries, fmt.Errorf("%w: %q hashes to taken id %d", ErrConflict, base, id)
			}
			i++
			retries++
			id = hashing.BoundedInt(base+strconv.Itoa(i), width)
		}
		picked[n] = id
		taken.Add(strconv.FormatInt(id, 10))
	}
	for n, item := range sorted {
		assign(item, picked[n])
	}
	return retries, nil
}
