package backend

import (
	"context"
	"fmt"
	"math"

	"github.com/philipparndt/glb2step/internal/mesh"
	"github.com/philipparndt/glb2step/internal/step"
)

// DefaultSewingTolerance is the default vertex-matching tolerance for face
// sewing, in model units
const DefaultSewingTolerance = 1e-6

// SewingBackend reconstructs a solid in-process: it sews the triangle
// faces into shells by tolerance-based vertex welding, verifies the result
// is a closed orientable manifold and exports it as a FACETED_BREP.
type SewingBackend struct {
	// Tolerance is the vertex-matching distance for sewing
	Tolerance float64
	writer    *step.Writer
}

// NewSewingBackend creates the precise solid backend
func NewSewingBackend(tolerance float64) *SewingBackend {
	if tolerance <= 0 {
		tolerance = DefaultSewingTolerance
	}
	return &SewingBackend{Tolerance: tolerance, writer: step.NewWriter()}
}

// Name implements Backend
func (b *SewingBackend) Name() string { return "sewing" }

// Available implements Backend. Sewing runs in-process and has no runtime
// dependency.
func (b *SewingBackend) Available() error { return nil }

// Convert implements Backend
func (b *SewingBackend) Convert(ctx context.Context, req Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if req.Mesh == nil || len(req.Mesh.Faces) == 0 {
		return &SolidError{Reason: "mesh has no faces"}
	}

	sewn := b.sew(req.Mesh)
	if err := validateSolid(sewn); err != nil {
		return err
	}

	// orient the solid outward
	if sewn.Volume() < 0 {
		for f := range sewn.Faces {
			sewn.FlipFace(f)
		}
	}

	if err := b.writer.Write(sewn, req.StepPath); err != nil {
		return fmt.Errorf("STEP export failed: %w", err)
	}
	return nil
}

// sew welds vertices that coincide within tolerance and returns a new
// mesh; the input mesh is read-only at this stage of the pipeline.
// Welding uses a quantized grid so matching is a single map lookup.
func (b *SewingBackend) sew(m *mesh.Mesh) *mesh.Mesh {
	type cell [3]int64
	quantize := func(v mesh.Vector3) cell {
		return cell{
			int64(math.Round(v.X / b.Tolerance)),
			int64(math.Round(v.Y / b.Tolerance)),
			int64(math.Round(v.Z / b.Tolerance)),
		}
	}

	out := &mesh.Mesh{}
	index := make(map[cell]int, len(m.Vertices))
	remap := make([]int, len(m.Vertices))
	for i, v := range m.Vertices {
		c := quantize(v)
		if j, ok := index[c]; ok {
			remap[i] = j
			continue
		}
		j := len(out.Vertices)
		index[c] = j
		out.Vertices = append(out.Vertices, v)
		remap[i] = j
	}

	for _, face := range m.Faces {
		a, b2, c := remap[face[0]], remap[face[1]], remap[face[2]]
		if a == b2 || b2 == c || a == c {
			// triangle collapsed by welding
			continue
		}
		out.Faces = append(out.Faces, [3]int{a, b2, c})
	}
	return out
}

// validateSolid checks that the sewn shell set closes into a valid solid:
// every edge shared by exactly two faces, with opposite orientation on the
// two sides
func validateSolid(m *mesh.Mesh) error {
	if len(m.Faces) == 0 {
		return &SolidError{Reason: "sewing collapsed every face"}
	}

	g := mesh.BuildAdjacency(m)

	open := 0
	for _, faces := range g.EdgeFaces {
		switch {
		case len(faces) == 1:
			open++
		case len(faces) > 2:
			return &SolidError{Reason: "non-manifold edge shared by more than two faces"}
		}
	}
	if open > 0 {
		return &SewingError{OpenEdges: open}
	}

	// orientation check: each directed edge must appear exactly once
	directed := make(map[[2]int]bool, len(m.Faces)*3)
	for _, face := range m.Faces {
		for i := 0; i < 3; i++ {
			e := [2]int{face[i], face[(i+1)%3]}
			if directed[e] {
				return &SolidError{Reason: "inconsistent face orientation"}
			}
			directed[e] = true
		}
	}

	if math.Abs(m.Volume()) < 1e-12 {
		return &SolidError{Reason: "shell encloses no volume"}
	}
	return nil
}
