package scifi

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func within(d int) func(a, b int) bool {
	return func(a, b int) bool {
		return absInt(a-b) <= d
	}
}

func TestSweep(t *testing.T) {
	t.Parallel()
	items := []int{5, 1, 2, 9, 3, 10}
	got := Sweep(items, SweepStrategy[int]{
		Less:   func(a, b int) bool { return a < b },
		Linked: within(1),
	})
	want := []SweepCluster{
		{Members: []int{1, 2, 4}, Representative: 1},
		{Members: []int{0}, Representative: 0},
		{Members: []int{3, 5}, Representative: 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("clusters mismatch (-want +got):\n%s", diff)
	}
}

func TestSweepMergesBridgedClusters(t *testing.T) {
	t.Parallel()
	items := []int{0, 10, 5}
	got := Sweep(items, SweepStrategy[int]{
		Linked: within(5),
		Better: func(a, b int) bool { return a > b },
	})
	want := []SweepCluster{{Members: []int{0, 1, 2}, Representative: 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("clusters mismatch (-want +got):\n%s", diff)
	}
}

func TestSweepPartitionsItems(t *testing.T) {
	t.Parallel()
	items := []int{14, 3, 7, 8, 21, 1, 22, 23, 15, 40}
	clusters := Sweep(items, SweepStrategy[int]{
		Less:   func(a, b int) bool { return a < b },
		Linked: within(2),
	})

	seen := make(map[int]int)
	for _, c := range clusters {
		assert.Contains(t, c.Members, c.Representative)
		for _, m := range c.Members {
			seen[m]++
		}
	}
	assert.Len(t, seen, len(items))
	for idx, n := range seen {
		assert.Equal(t, 1, n, "item %d", idx)
	}
	assert.Empty(t, Sweep([]int{}, SweepStrategy[int]{Linked: within(1)}))
}
