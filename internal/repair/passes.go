package repair

import (
	"github.com/philipparndt/glb2step/internal/mesh"
)

// degenerateArea is the area below which a triangle counts as degenerate
const degenerateArea = 1e-12

// removeDegenerate drops triangles with repeated vertex indices or
// (numerically) zero area and returns the number removed
func removeDegenerate(m *mesh.Mesh) int {
	kept := m.Faces[:0]
	removed := 0
	for f := range m.Faces {
		face := m.Faces[f]
		if face[0] == face[1] || face[1] == face[2] || face[0] == face[2] {
			removed++
			continue
		}
		if m.FaceArea(f) < degenerateArea {
			removed++
			continue
		}
		kept = append(kept, face)
	}
	m.Faces = kept
	return removed
}

// removeSmallComponents drops connected components whose triangle count is
// below fraction of the total. The largest component always survives, so a
// mesh is never emptied by an aggressive threshold.
func removeSmallComponents(m *mesh.Mesh, g *mesh.AdjacencyGraph, fraction float64) (components, faces int) {
	comps := g.Components()
	if len(comps) < 2 {
		return 0, 0
	}

	limit := fraction * float64(len(m.Faces))
	largest := 0
	for i, c := range comps {
		if len(c) > len(comps[largest]) {
			largest = i
		}
	}

	drop := make([]bool, len(m.Faces))
	for i, c := range comps {
		if i == largest || float64(len(c)) >= limit {
			continue
		}
		components++
		faces += len(c)
		for _, f := range c {
			drop[f] = true
		}
	}
	if components == 0 {
		return 0, 0
	}

	kept := m.Faces[:0]
	for f := range m.Faces {
		if !drop[f] {
			kept = append(kept, m.Faces[f])
		}
	}
	m.Faces = kept
	return components, faces
}

// sharesOrientedEdge reports whether face contains the directed edge a->b
func sharesOrientedEdge(face [3]int, a, b int) bool {
	for i := 0; i < 3; i++ {
		if face[i] == a && face[(i+1)%3] == b {
			return true
		}
	}
	return false
}

// fixWinding makes the winding order consistent within every connected
// component. It flood-fills from a seed triangle over shared edges with an
// explicit worklist, flipping any neighbor whose orientation disagrees with
// the already-visited side. Two faces agree when their shared edge runs in
// opposite directions in the two windings.
func fixWinding(m *mesh.Mesh, g *mesh.AdjacencyGraph) int {
	visited := make([]bool, len(m.Faces))
	flipped := 0

	for seed := range m.Faces {
		if visited[seed] {
			continue
		}
		visited[seed] = true
		queue := []int{seed}
		for len(queue) > 0 {
			f := queue[0]
			queue = queue[1:]
			face := m.Faces[f]
			for i := 0; i < 3; i++ {
				a, b := face[i], face[(i+1)%3]
				for _, n := range g.EdgeFaces[mesh.MakeEdge(a, b)] {
					if n == f || visited[n] {
						continue
					}
					// a neighbor wound consistently contains b->a,
					// not a->b
					if sharesOrientedEdge(m.Faces[n], a, b) {
						m.FlipFace(n)
						flipped++
					}
					visited[n] = true
					queue = append(queue, n)
				}
			}
		}
	}
	return flipped
}
