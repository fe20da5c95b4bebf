package graph

// starts returns the traversal roots: the root if set, otherwise every vertex without parents.
func (g *Graph) starts() []VertexID {
	if g.root != 0 {
		return []VertexID{g.root}
	}
	referenced := make(map[VertexID]bool)
	for _, v := range g.vertices {
		for _, child := range v.children() {
			referenced[child] = true
		}
	}
	var out []VertexID
	for _, id := range g.Vertices() {
		if !referenced[id] {
			out = append(out, id)
		}
	}
	return out
}

// DepthFirst returns vertices in post-order: every operand, left to right, before its owner.
// Each vertex is listed once, even if shared.
func (g *Graph) DepthFirst() []VertexID {
	out := make([]VertexID, 0, len(g.vertices))
	visited := make(map[VertexID]bool, len(g.vertices))
	var visit func(id VertexID)
	visit = func(id VertexID) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, child := range g.vertices[id].children() {
			visit(child)
		}
		out = append(out, id)
	}
	for _, start := range g.starts() {
		visit(start)
	}
	return out
}

// TopDown returns vertices in topological order, every vertex before its operands.
func (g *Graph) TopDown() []VertexID {
	indegree := make(map[VertexID]int, len(g.vertices))
	reachable := g.reachable()
	for id := range reachable {
		for _, child := range g.vertices[id].children() {
			indegree[child]++
		}
	}

	out := make([]VertexID, 0, len(reachable))
	queue := append([]VertexID{}, g.starts()...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		out = append(out, id)
		for _, child := range g.vertices[id].children() {
			indegree[child]--
			if indegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	return out
}

// BottomUp returns vertices in topological order, every operand before the vertices using it.
func (g *Graph) BottomUp() []VertexID {
	out := g.TopDown()
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Arbitrary returns reachable vertices in ascending handle order.
func (g *Graph) Arbitrary() []VertexID {
	reachable := g.reachable()
	out := make([]VertexID, 0, len(reachable))
	g.live.Ascend(func(id VertexID) bool {
		if reachable[id] {
			out = append(out, id)
		}
		return true
	})
	return out
}

func (g *Graph) reachable() map[VertexID]bool {
	out := make(map[VertexID]bool, len(g.vertices))
	var mark func(id VertexID)
	mark = func(id VertexID) {
		if out[id] {
			return
		}
		out[id] = true
		for _, child := range g.vertices[id].children() {
			mark(child)
		}
	}
	for _, start := range g.starts() {
		mark(start)
	}
	return out
}
