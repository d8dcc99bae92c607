package ids

import (
	"slices"
	"strconv"

	"bundleid/internal/hashing"
)

// AssignAscending hands out 0, 1, 2, ... in item order to items that do not
// have an id yet, skipping every value found in used.
func AssignAscending[T any](items []T, used Reserved, hasID func(T) bool, assign func(T, int64)) {
	var next int64
	for _, item := range items {
		if hasID(item) {
			continue
		}
		if used.Len() > 0 {
			for used.Has(strconv.FormatInt(next, 10)) {
				next++
			}
		}
		assign(item, next)
		next++
	}
}

// AssignHashed gives each item the shortest prefix of the hex digest of
// its name, starting at digestLength characters, that is not taken yet.
func AssignHashed[T any](
	items []T,
	name func(T) string,
	compare func(a, b T) int,
	digestLength int,
	used Reserved,
	assign func(T, string),
) {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, compare)

	taken := used.Clone()
	for _, item := range sorted {
		digest := hashing.Digest(name(item))
		n := min(max(digestLength, 1), len(digest))
		for n < len(digest) && taken.Has(digest[:n]) {
			n++
		}
		id := digest[:n]
		assign(item, id)
		taken.Add(id)
	}
}
