package repository

import "sort"

// LockOrder returns ids deduplicated and sorted ascending. Every backend
// acquires account locks in this order so that concurrent write groups
// touching the same accounts cannot deadlock.
func LockOrder(ids ...int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
