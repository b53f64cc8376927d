package scifi

import "sort"

// SweepStrategy configures Sweep.
type SweepStrategy[T any] struct {
	// Less gives the order in which items are visited.
	Less func(a, b T) bool
	// Linked reports whether two items belong to the same physical hit.
	Linked func(a, b T) bool
	// Better picks the representative of a cluster. Optional.
	Better func(a, b T) bool
}

type SweepCluster struct {
	// Members are item indices in visiting order.
	Members        []int
	Representative int
}

// Sweep groups items into clusters. Each item, in Less order, joins the
// open cluster holding a member it is linked to; an item linked to several
// clusters merges them into the oldest one. The result is a partition of
// the items, in cluster creation order.
func Sweep[T any](items []T, s SweepStrategy[T]) []SweepCluster {
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	if s.Less != nil {
		sort.SliceStable(order, func(a, b int) bool {
			return s.Less(items[order[a]], items[order[b]])
		})
	}
	rank := make([]int, len(items))
	for r, idx := range order {
		rank[idx] = r
	}

	var clusters [][]int
	alive := make([]bool, 0)
	for _, idx := range order {
		target := -1
		for c, members := range clusters {
			if !alive[c] || !anyLinked(items, members, idx, s.Linked) {
				continue
			}
			if target == -1 {
				target = c
				continue
			}
			clusters[target] = append(clusters[target], members...)
			clusters[c] = nil
			alive[c] = false
		}
		if target == -1 {
			clusters = append(clusters, []int{idx})
			alive = append(alive, true)
			continue
		}
		clusters[target] = append(clusters[target], idx)
	}

	result := make([]SweepCluster, 0, len(clusters))
	for c, members := range clusters {
		if !alive[c] {
			continue
		}
		sort.Slice(members, func(a, b int) bool {
			return rank[members[a]] < rank[members[b]]
		})
		representative := members[0]
		if s.Better != nil {
			for _, m := range members[1:] {
				if s.Better(items[m], items[representative]) {
					representative = m
				}
			}
		}
		result = append(result, SweepCluster{Members: members, Representative: representative})
	}
	return result
}

func anyLinked[T any](items []T, members []int, idx int, linked func(a, b T) bool) bool {
	for _, m := range members {
		if linked(items[idx], items[m]) {
			return true
		}
	}
	return false
}
