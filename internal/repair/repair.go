// Package repair cleans triangle meshes with a fixed pipeline of
// best-effort passes: degenerate removal, small-component removal, winding
// consistency and hole filling. The passes never fail hard; anything that
// cannot be fixed is recorded in the Report and left for the downstream
// solid backends to cope with.
package repair

import (
	"fmt"
	"strings"

	"github.com/philipparndt/glb2step/internal/mesh"
)

// DefaultComponentFraction is the default small-component threshold:
// connected components with fewer triangles than this fraction of the
// total are treated as noise and removed. Tunable, not contractual.
const DefaultComponentFraction = 0.01

// DefaultMaxHoleEdges is the default upper bound on the size of a boundary
// loop that hole filling will close. Larger loops are usually open
// surfaces rather than defects; filling them would fabricate geometry.
const DefaultMaxHoleEdges = 64

// Options holds the tunable parameters of the repair pipeline
type Options struct {
	// ComponentFraction is the small-component threshold as a fraction
	// of the total triangle count
	ComponentFraction float64
	// MaxHoleEdges limits the size of boundary loops that get filled
	MaxHoleEdges int
}

// DefaultOptions returns the documented default tuning
func DefaultOptions() Options {
	return Options{
		ComponentFraction: DefaultComponentFraction,
		MaxHoleEdges:      DefaultMaxHoleEdges,
	}
}

// Report counts what the repair pipeline did to a mesh
type Report struct {
	DegenerateRemoved int // zero-area or index-repeating triangles dropped
	ComponentsRemoved int // small connected components dropped
	ComponentFaces    int // triangles dropped with those components
	FacesFlipped      int // triangles re-wound for consistent orientation
	LoopsClosed       int // boundary loops closed by hole filling
	LoopsSkipped      int // boundary loops left open
	FacesAdded        int // patch triangles added by hole filling
}

// Clean reports whether the pipeline found nothing to do
func (r Report) Clean() bool {
	return r == Report{}
}

// Summary returns a short human-readable account of the repair work
func (r Report) Summary() string {
	if r.Clean() {
		return "mesh was already clean"
	}
	var parts []string
	if r.DegenerateRemoved > 0 {
		parts = append(parts, fmt.Sprintf("%d degenerate triangles removed", r.DegenerateRemoved))
	}
	if r.ComponentsRemoved > 0 {
		parts = append(parts, fmt.Sprintf("%d small components (%d triangles) removed", r.ComponentsRemoved, r.ComponentFaces))
	}
	if r.FacesFlipped > 0 {
		parts = append(parts, fmt.Sprintf("%d triangles re-wound", r.FacesFlipped))
	}
	if r.LoopsClosed > 0 {
		parts = append(parts, fmt.Sprintf("%d holes filled with %d triangles", r.LoopsClosed, r.FacesAdded))
	}
	if r.LoopsSkipped > 0 {
		parts = append(parts, fmt.Sprintf("%d boundary loops left open", r.LoopsSkipped))
	}
	return strings.Join(parts, ", ")
}

// Repair runs the four passes in order, mutating the mesh in place.
// Each pass assumes the invariants established by the previous one.
func Repair(m *mesh.Mesh, opts Options) Report {
	if opts.ComponentFraction == 0 {
		opts.ComponentFraction = DefaultComponentFraction
	}
	if opts.MaxHoleEdges == 0 {
		opts.MaxHoleEdges = DefaultMaxHoleEdges
	}

	var report Report
	report.DegenerateRemoved = removeDegenerate(m)

	g := mesh.BuildAdjacency(m)
	report.ComponentsRemoved, report.ComponentFaces = removeSmallComponents(m, g, opts.ComponentFraction)

	// face removal invalidates the adjacency graph
	g = mesh.BuildAdjacency(m)
	report.FacesFlipped = fixWinding(m, g)

	// flips keep undirected adjacency intact; no rebuild needed
	report.LoopsClosed, report.LoopsSkipped, report.FacesAdded = fillHoles(m, g, opts.MaxHoleEdges)

	if len(m.Normals) > 0 || !report.Clean() {
		m.RecomputeNormals()
	}
	return report
}
