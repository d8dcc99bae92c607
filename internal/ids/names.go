package ids

import (
	"slices"
	"strconv"
)

// AssignNames gives every item a unique name. Items whose short name is
// unique keep it; the rest are regrouped by long name. A long name shared
// by several items, or already reserved, is suffixed with the smallest
// free counter in compare order. Items whose candidate is empty are not
// named and come back sorted by compare for a fallback strategy.
//
// used is not modified; the pass works on a copy.
func AssignNames[T any](
	items []T,
	shortName func(T) string,
	longName func(item T, shortName string) string,
	compare func(a, b T) int,
	used Reserved,
	assign func(T, string),
) []T {
	byShort := make(map[string][]T)
	for _, item := range items {
		name := shortName(item)
		byShort[name] = append(byShort[name], item)
	}

	byName := make(map[string][]T, len(byShort))
	for _, short := range sortedKeys(byShort) {
		group := byShort[short]
		if len(group) > 1 || short == "" {
			for _, item := range group {
				long := longName(item, short)
				byName[long] = append(byName[long], item)
			}
			continue
		}
		byName[short] = append(byName[short], group[0])
	}

	taken := used.Clone()
	var unnamed []T
	for _, name := range sortedKeys(byName) {
		group := byName[name]
		if name == "" {
			unnamed = append(unnamed, group...)
			continue
		}
		if len(group) == 1 && !taken.Has(name) {
			assign(group[0], name)
			taken.Add(name)
			continue
		}
		slices.SortStableFunc(group, compare)
		i := 0
		for _, item := range group {
			candidate := name + strconv.Itoa(i)
			for taken.Has(candidate) || isBucket(byName, candidate) {
				i++
				candidate = name + strconv.Itoa(i)
			}
			assign(item, candidate)
			taken.Add(candidate)
			i++
		}
	}

	slices.SortStableFunc(unnamed, compare)
	return unnamed
}

func isBucket[T any](buckets map[string][]T, name string) bool {
	_, ok := buckets[name]
	return ok
}

func sortedKeys[T any](m map[string][]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
