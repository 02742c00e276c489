package repair

import (
	"github.com/philipparndt/glb2step/internal/mesh"
)

// fillHoles identifies boundary loops and closes each one with a
// triangulated patch, wound to match the surrounding surface. Loops that
// cannot be closed (open chains at non-manifold junctions, or loops larger
// than maxEdges) are skipped and counted.
func fillHoles(m *mesh.Mesh, g *mesh.AdjacencyGraph, maxEdges int) (closed, skipped, facesAdded int) {
	loops, open := boundaryLoops(m, g)
	skipped += open

	for _, loop := range loops {
		if len(loop) > maxEdges {
			skipped++
			continue
		}
		patch := triangulateLoop(m, loop)
		if len(patch) == 0 {
			skipped++
			continue
		}
		m.Faces = append(m.Faces, patch...)
		facesAdded += len(patch)
		closed++
	}
	return closed, skipped, facesAdded
}

// boundaryLoops chains the directed boundary edges into closed loops.
// A boundary edge runs a->b as it appears in its only face, so following
// successor edges walks each hole's rim in surface order. Loops passing
// through a non-manifold junction are split at the junction; fragments
// that do not close are counted as open chains.
func boundaryLoops(m *mesh.Mesh, g *mesh.AdjacencyGraph) (loops [][]int, open int) {
	next := make(map[int][]int)
	for _, e := range g.BoundaryEdges(m) {
		next[e[0]] = append(next[e[0]], e[1])
	}

	take := func(v int) (int, bool) {
		out := next[v]
		if len(out) == 0 {
			return 0, false
		}
		w := out[len(out)-1]
		next[v] = out[:len(out)-1]
		return w, true
	}

	for start, out := range next {
		for len(out) > 0 {
			path := []int{start}
			pos := map[int]int{start: 0}
			for {
				cur := path[len(path)-1]
				w, ok := take(cur)
				if !ok {
					// dead end: the remaining chain cannot close
					if len(path) > 1 {
						open++
					}
					break
				}
				if i, seen := pos[w]; seen {
					// closed a cycle back to path[i]; split it off
					cycle := append([]int(nil), path[i:]...)
					if len(cycle) >= 3 {
						loops = append(loops, cycle)
					} else {
						open++
					}
					for _, v := range path[i+1:] {
						delete(pos, v)
					}
					path = path[:i+1]
					if len(path) == 1 && len(next[start]) == 0 {
						break
					}
					continue
				}
				pos[w] = len(path)
				path = append(path, w)
			}
			out = next[start]
		}
	}
	return loops, open
}

// triangulateLoop builds a patch spanning the boundary loop. The loop
// arrives in boundary direction; the patch is triangulated over the
// reversed loop so every new triangle opposes the existing directed edge
// it touches, giving the patch the winding of the surrounding surface.
// Ear clipping handles non-convex rims; if no ear can be found the
// remainder falls back to a fan.
func triangulateLoop(m *mesh.Mesh, loop []int) [][3]int {
	if len(loop) < 3 {
		return nil
	}
	poly := make([]int, len(loop))
	for i, v := range loop {
		poly[len(loop)-1-i] = v
	}
	if len(poly) == 3 {
		return [][3]int{{poly[0], poly[1], poly[2]}}
	}

	normal := loopNormal(m, poly)
	var patch [][3]int
	for len(poly) > 3 {
		ear := findEar(m, poly, normal)
		if ear < 0 {
			// numerically stuck: fan out the rest
			for i := 1; i+1 < len(poly); i++ {
				patch = append(patch, [3]int{poly[0], poly[i], poly[i+1]})
			}
			return patch
		}
		prev := poly[(ear+len(poly)-1)%len(poly)]
		nxt := poly[(ear+1)%len(poly)]
		patch = append(patch, [3]int{prev, poly[ear], nxt})
		poly = append(poly[:ear], poly[ear+1:]...)
	}
	patch = append(patch, [3]int{poly[0], poly[1], poly[2]})
	return patch
}

// loopNormal computes the polygon normal with Newell's method
func loopNormal(m *mesh.Mesh, poly []int) mesh.Vector3 {
	var n mesh.Vector3
	for i := range poly {
		a := m.Vertices[poly[i]]
		b := m.Vertices[poly[(i+1)%len(poly)]]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n.Normalize()
}

// findEar returns the index of a clippable ear vertex, or -1
func findEar(m *mesh.Mesh, poly []int, normal mesh.Vector3) int {
	n := len(poly)
	for i := 0; i < n; i++ {
		a := m.Vertices[poly[(i+n-1)%n]]
		b := m.Vertices[poly[i]]
		c := m.Vertices[poly[(i+1)%n]]

		// reflex corners cannot be clipped
		if b.Sub(a).Cross(c.Sub(b)).Dot(normal) <= degenerateArea {
			continue
		}
		if containsAnyVertex(m, poly, i, a, b, c, normal) {
			continue
		}
		return i
	}
	return -1
}

// containsAnyVertex reports whether any other loop vertex lies strictly
// inside the candidate ear triangle
func containsAnyVertex(m *mesh.Mesh, poly []int, ear int, a, b, c, normal mesh.Vector3) bool {
	n := len(poly)
	for j := 0; j < n; j++ {
		if j == ear || j == (ear+n-1)%n || j == (ear+1)%n {
			continue
		}
		p := m.Vertices[poly[j]]
		if b.Sub(a).Cross(p.Sub(a)).Dot(normal) > degenerateArea &&
			c.Sub(b).Cross(p.Sub(b)).Dot(normal) > degenerateArea &&
			a.Sub(c).Cross(p.Sub(c)).Dot(normal) > degenerateArea {
			return true
		}
	}
	return false
}
