package scenario

// DegreeCentrality computes deg(v)/(n-1) for every node over the undirected
// edge set. Repeated links and self-loops count once and not at all
// respectively. A lone node scores 0.
func DegreeCentrality(nodes []NodeSpec, edges []EdgeSpec) map[string]float64 {
	centrality := make(map[string]float64, len(nodes))
	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n.ID] = true
		centrality[n.ID] = 0
	}
	if len(known) < 2 {
		return centrality
	}

	type link struct{ a, b string }
	degree := make(map[string]int, len(nodes))
	seen := make(map[link]bool, len(edges))
	for _, e := range edges {
		if e.Src == e.Dst || !known[e.Src] || !known[e.Dst] {
			continue
		}
		l := link{e.Src, e.Dst}
		if l.b < l.a {
			l.a, l.b = l.b, l.a
		}
		if seen[l] {
			continue
		}
		seen[l] = true
		degree[l.a]++
		degree[l.b]++
	}

	denom := float64(len(known) - 1)
	for id := range known {
		centrality[id] = float64(degree[id]) / denom
	}
	return centrality
}
