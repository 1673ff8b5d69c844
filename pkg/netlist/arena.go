package netlist

// arena interns coordinates into dense indices in first-seen order and keeps
// a union-find over those indices.
type arena struct {
	index  map[Point]int
	points []Point
	parent []int
	rank   []int
}

func newArena() *arena {
	return &arena{index: make(map[Point]int)}
}

// add registers p as a singleton if it is new and returns its index.
func (a *arena) add(p Point) int {
	if i, ok := a.index[p]; ok {
		return i
	}
	i := len(a.points)
	a.index[p] = i
	a.points = append(a.points, p)
	a.parent = append(a.parent, i)
	a.rank = append(a.rank, 0)
	return i
}

func (a *arena) find(i int) int {
	for a.parent[i] != i {
		a.parent[i] = a.parent[a.parent[i]]
		i = a.parent[i]
	}
	return i
}

func (a *arena) union(i, j int) {
	ri, rj := a.find(i), a.find(j)
	if ri == rj {
		return
	}
	switch {
	case a.rank[ri] < a.rank[rj]:
		a.parent[ri] = rj
	case a.rank[ri] > a.rank[rj]:
		a.parent[rj] = ri
	default:
		a.parent[rj] = ri
		a.rank[ri]++
	}
}

func (a *arena) len() int { return len(a.points) }
