package scifi

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

type tripleCandidate struct {
	clusters [NumFamilies]ClusterIndex
	group    int
	residual float64
	spread   float64
}

type pairCandidate struct {
	a, b  ClusterIndex
	group int
	dt    float64
}

// MatchClusters combines clusters of the three families into hit groups.
//
// Triples need pairwise time differences below DeltaTime and a stereo root
// of the helical pair within Tolerance transverse channels of the
// transverse cluster. The largest set of disjoint triples is kept, so a
// looser DeltaTime never yields fewer triples. Leftover clusters are then
// paired by time coincidence only. Every cluster is used at most once and
// unmatched clusters are dropped.
func MatchClusters(ev *Event, cat *Catalog, p MatchParams) []HitGroup {
	var byFamily [NumFamilies][]ClusterIndex
	for i := range ev.Clusters {
		cluster := &ev.Clusters[i]
		if !cluster.Valid {
			continue
		}
		if cluster.Group < 0 || cluster.Group >= len(cat.Groups) {
			panic(fmt.Sprintf("cluster %d claims unknown reconstruction group %d", i, cluster.Group))
		}
		byFamily[cluster.Family] = append(byFamily[cluster.Family], ClusterIndex(i))
	}

	used := make([]bool, len(ev.Clusters))
	hitGroups := make([]HitGroup, 0)

	triples := selectTriples(ev.ID, tripleCandidates(ev, byFamily, p), p.SearchLimit)
	for _, t := range triples {
		hg := NewHitGroup(t.group)
		hg.Clusters = t.clusters
		for _, c := range t.clusters {
			used[c] = true
		}
		hitGroups = append(hitGroups, hg)
	}

	pairings := [][2]Family{
		{LeftHelical, RightHelical},
		{LeftHelical, Transverse},
		{RightHelical, Transverse},
	}
	for _, pairing := range pairings {
		fa, fb := pairing[0], pairing[1]
		candidates := make([]pairCandidate, 0)
		for _, a := range byFamily[fa] {
			if used[a] {
				continue
			}
			for _, b := range byFamily[fb] {
				if used[b] {
					continue
				}
				ca, cb := ev.Cluster(a), ev.Cluster(b)
				if ca.Group != cb.Group {
					continue
				}
				dt := math.Abs(ca.Summary.Time - cb.Summary.Time)
				if dt < p.DeltaTime {
					candidates = append(candidates, pairCandidate{a: a, b: b, group: ca.Group, dt: dt})
				}
			}
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].dt < candidates[j].dt
		})
		for _, c := range candidates {
			if used[c.a] || used[c.b] {
				continue
			}
			used[c.a] = true
			used[c.b] = true
			hg := NewHitGroup(c.group)
			hg.Clusters[fa] = c.a
			hg.Clusters[fb] = c.b
			hitGroups = append(hitGroups, hg)
		}
	}

	if verbosity > 2 {
		dropped := 0
		for i := range ev.Clusters {
			if !used[i] {
				dropped++
			}
		}
		message := fmt.Sprintf("Event %d: %d hit groups (%d triples), %d clusters unmatched",
			ev.ID, len(hitGroups), len(triples), dropped)
		logger.Info(message, "matcher")
	}
	return hitGroups
}

// TripleConsistent reports whether a left, right and transverse cluster
// summary agree in time and geometry. The residual is the distance, in
// transverse channels, between the transverse cluster and the closer
// stereo root.
func TripleConsistent(sL, sR, sT ClusterSummary, p MatchParams) (residual float64, ok bool) {
	if math.Abs(sL.Time-sR.Time) >= p.DeltaTime ||
		math.Abs(sL.Time-sT.Time) >= p.DeltaTime ||
		math.Abs(sR.Time-sT.Time) >= p.DeltaTime {
		return math.Inf(1), false
	}
	f1, f2 := StereoRoots(sL.Fraction, sR.Fraction)
	d := math.Min(CircularDistance(f1, sT.Fraction), CircularDistance(f2, sT.Fraction))
	residual = d * float64(sT.NChannels)
	return residual, residual <= p.Tolerance
}

func tripleCandidates(ev *Event, byFamily [NumFamilies][]ClusterIndex, p MatchParams) []tripleCandidate {
	candidates := make([]tripleCandidate, 0)
	for _, l := range byFamily[LeftHelical] {
		cl := ev.Cluster(l)
		for _, r := range byFamily[RightHelical] {
			cr := ev.Cluster(r)
			if cr.Group != cl.Group {
				continue
			}
			for _, t := range byFamily[Transverse] {
				ct := ev.Cluster(t)
				if ct.Group != cl.Group {
					continue
				}
				residual, ok := TripleConsistent(cl.Summary, cr.Summary, ct.Summary, p)
				if !ok {
					continue
				}
				times := []float64{cl.Summary.Time, cr.Summary.Time, ct.Summary.Time}
				sort.Float64s(times)
				candidates = append(candidates, tripleCandidate{
					clusters: [NumFamilies]ClusterIndex{l, r, t},
					group:    cl.Group,
					residual: residual,
					spread:   times[2] - times[0],
				})
			}
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].residual != candidates[j].residual {
			return candidates[i].residual < candidates[j].residual
		}
		return candidates[i].spread < candidates[j].spread
	})
	return candidates
}

type tripleSearch struct {
	candidates []tripleCandidate
	used       []bool
	mark       []int
	degree     []int
	stamp      int
	current    []int
	best       []int
	nodes      int
	limit      int
}

// selectTriples finds the largest set of candidates sharing no cluster.
// Candidates sharing clusters form components that are searched
// independently. Each search starts from the greedy selection in candidate
// order and only replaces it with a strictly larger set, so low residuals
// win ties. A component exceeding the node limit keeps the best set found
// so far.
func selectTriples(eventID int32, candidates []tripleCandidate, limit int) []tripleCandidate {
	if len(candidates) == 0 {
		return nil
	}
	size := 0
	for _, c := range candidates {
		for _, idx := range c.clusters {
			size = max(size, int(idx)+1)
		}
	}

	selected := make([]tripleCandidate, 0)
	for _, component := range conflictComponents(candidates) {
		s := &tripleSearch{
			candidates: component,
			used:       make([]bool, size),
			mark:       make([]int, size),
			degree:     make([]int, size),
			limit:      limit,
		}
		for i, c := range component {
			if s.free(c) {
				s.take(c, true)
				s.best = append(s.best, i)
			}
		}
		clear(s.used)
		s.search()
		if s.limit > 0 && s.nodes >= s.limit {
			message := fmt.Sprintf("Event %d: triple search stopped after %d nodes on %d candidates, keeping %d triples",
				eventID, s.nodes, len(component), len(s.best))
			logger.Info(message, "matcher")
		}
		for _, c := range s.best {
			selected = append(selected, component[c])
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].clusters[LeftHelical] < selected[j].clusters[LeftHelical]
	})
	return selected
}

// conflictComponents splits the candidates into groups connected through
// shared clusters. Candidate order is kept inside each group and groups
// are ordered by their first candidate.
func conflictComponents(candidates []tripleCandidate) [][]tripleCandidate {
	g := simple.NewUndirectedGraph()
	for _, c := range candidates {
		for k := 1; k < NumFamilies; k++ {
			g.SetEdge(g.NewEdge(simple.Node(c.clusters[0]), simple.Node(c.clusters[k])))
		}
	}
	componentOf := make(map[int64]int)
	for k, nodes := range topo.ConnectedComponents(g) {
		for _, n := range nodes {
			componentOf[n.ID()] = k
		}
	}

	position := make(map[int]int)
	components := make([][]tripleCandidate, 0)
	for _, c := range candidates {
		id := componentOf[int64(c.clusters[0])]
		k, ok := position[id]
		if !ok {
			k = len(components)
			position[id] = k
			components = append(components, nil)
		}
		components[k] = append(components[k], c)
	}
	return components
}

// search branches on the free cluster of the scarcest family that the
// fewest live candidates share: either one of those candidates is taken or
// the cluster stays unmatched.
func (s *tripleSearch) search() {
	if len(s.current) > len(s.best) {
		s.best = append(s.best[:0], s.current...)
	}
	if s.limit > 0 && s.nodes >= s.limit {
		return
	}
	s.nodes++

	s.stamp++
	live := make([]int, 0)
	var counts [NumFamilies]int
	for i, c := range s.candidates {
		if !s.free(c) {
			continue
		}
		live = append(live, i)
		for f, idx := range c.clusters {
			if s.mark[idx] != s.stamp {
				s.mark[idx] = s.stamp
				s.degree[idx] = 0
				counts[f]++
			}
			s.degree[idx]++
		}
	}
	// Disjoint triples use distinct clusters of every family.
	bound := min(counts[LeftHelical], counts[RightHelical], counts[Transverse])
	if len(s.current)+bound <= len(s.best) {
		return
	}
	for _, pair := range [][2]Family{{LeftHelical, RightHelical}, {LeftHelical, Transverse}, {RightHelical, Transverse}} {
		bound = min(bound, s.pairMatching(live, pair[0], pair[1]))
		if len(s.current)+bound <= len(s.best) {
			return
		}
	}

	family := LeftHelical
	for f := RightHelical; f <= Transverse; f++ {
		if counts[f] < counts[family] {
			family = f
		}
	}
	pivot := ClusterIndex(-1)
	for _, i := range live {
		idx := s.candidates[i].clusters[family]
		if pivot < 0 || s.degree[idx] < s.degree[pivot] {
			pivot = idx
		}
	}

	for _, i := range live {
		c := s.candidates[i]
		if c.clusters[family] != pivot {
			continue
		}
		s.take(c, true)
		s.current = append(s.current, i)
		s.search()
		s.current = s.current[:len(s.current)-1]
		s.take(c, false)
	}
	s.used[pivot] = true
	s.search()
	s.used[pivot] = false
}

// pairMatching is the size of a maximum matching between the clusters of
// two families linked by live candidates.
func (s *tripleSearch) pairMatching(live []int, a, b Family) int {
	adjacent := make(map[ClusterIndex][]ClusterIndex)
	order := make([]ClusterIndex, 0)
	for _, i := range live {
		c := s.candidates[i]
		if _, ok := adjacent[c.clusters[a]]; !ok {
			order = append(order, c.clusters[a])
		}
		adjacent[c.clusters[a]] = append(adjacent[c.clusters[a]], c.clusters[b])
	}

	matched := make(map[ClusterIndex]ClusterIndex)
	var augment func(x ClusterIndex, seen map[ClusterIndex]bool) bool
	augment = func(x ClusterIndex, seen map[ClusterIndex]bool) bool {
		for _, y := range adjacent[x] {
			if seen[y] {
				continue
			}
			seen[y] = true
			owner, ok := matched[y]
			if !ok || augment(owner, seen) {
				matched[y] = x
				return true
			}
		}
		return false
	}
	size := 0
	for _, x := range order {
		if augment(x, make(map[ClusterIndex]bool)) {
			size++
		}
	}
	return size
}

func (s *tripleSearch) free(c tripleCandidate) bool {
	for _, idx := range c.clusters {
		if s.used[idx] {
			return false
		}
	}
	return true
}

func (s *tripleSearch) take(c tripleCandidate, used bool) {
	for _, idx := range c.clusters {
		s.used[idx] = used
	}
}
