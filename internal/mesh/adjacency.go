package mesh

// Edge is an undirected edge key: the two vertex indices in ascending order
type Edge struct {
	A, B int
}

// MakeEdge builds the canonical undirected key for the edge (a, b)
func MakeEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{a, b}
}

// AdjacencyGraph maps each face to its edge-sharing neighbors. It is a
// derived structure: it reflects the mesh at the time BuildAdjacency ran
// and must be rebuilt after the face list changes.
type AdjacencyGraph struct {
	// EdgeFaces maps each undirected edge to the faces containing it
	EdgeFaces map[Edge][]int
	// Neighbors lists, per face, the faces sharing at least one edge
	Neighbors [][]int
}

// BuildAdjacency constructs the face-adjacency graph for the mesh
func BuildAdjacency(m *Mesh) *AdjacencyGraph {
	g := &AdjacencyGraph{
		EdgeFaces: make(map[Edge][]int, len(m.Faces)*3/2),
		Neighbors: make([][]int, len(m.Faces)),
	}
	for f, face := range m.Faces {
		for i := 0; i < 3; i++ {
			e := MakeEdge(face[i], face[(i+1)%3])
			g.EdgeFaces[e] = append(g.EdgeFaces[e], f)
		}
	}
	for f, face := range m.Faces {
		for i := 0; i < 3; i++ {
			e := MakeEdge(face[i], face[(i+1)%3])
			for _, other := range g.EdgeFaces[e] {
				if other != f {
					g.Neighbors[f] = append(g.Neighbors[f], other)
				}
			}
		}
	}
	return g
}

// Components returns the connected components of the face-adjacency graph
// as lists of face indices. Traversal uses an explicit worklist so deep
// meshes cannot exhaust the call stack.
func (g *AdjacencyGraph) Components() [][]int {
	visited := make([]bool, len(g.Neighbors))
	var components [][]int
	for seed := range g.Neighbors {
		if visited[seed] {
			continue
		}
		var component []int
		queue := []int{seed}
		visited[seed] = true
		for len(queue) > 0 {
			f := queue[0]
			queue = queue[1:]
			component = append(component, f)
			for _, n := range g.Neighbors[f] {
				if !visited[n] {
					visited[n] = true
					queue = append(queue, n)
				}
			}
		}
		components = append(components, component)
	}
	return components
}

// BoundaryEdges returns the directed boundary edges of the mesh: edges that
// belong to exactly one face, in the direction they appear in that face.
func (g *AdjacencyGraph) BoundaryEdges(m *Mesh) [][2]int {
	var edges [][2]int
	for _, face := range m.Faces {
		for i := 0; i < 3; i++ {
			a, b := face[i], face[(i+1)%3]
			if len(g.EdgeFaces[MakeEdge(a, b)]) == 1 {
				edges = append(edges, [2]int{a, b})
			}
		}
	}
	return edges
}

// IsWatertight reports whether every edge is shared by exactly two faces
func (g *AdjacencyGraph) IsWatertight() bool {
	for _, faces := range g.EdgeFaces {
		if len(faces) != 2 {
			return false
		}
	}
	return true
}
