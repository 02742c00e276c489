// Package inspect reports mesh statistics for GLB/glTF and STL files
package inspect

import (
	"fmt"
	"os"

	"github.com/philipparndt/glb2step/internal/convert"
	"github.com/philipparndt/glb2step/internal/mesh"
	"github.com/philipparndt/glb2step/internal/ui"
)

// Inspector provides functionality to inspect mesh files
type Inspector struct{}

// NewInspector creates a new Inspector
func NewInspector() *Inspector {
	return &Inspector{}
}

// Stats summarizes the topology of a mesh
type Stats struct {
	Vertices      int
	Triangles     int
	Components    int
	BoundaryEdges int
	Watertight    bool
	Bounds        mesh.BoundingBox
}

// Collect computes the statistics of a mesh
func Collect(m *mesh.Mesh) Stats {
	g := mesh.BuildAdjacency(m)
	return Stats{
		Vertices:      len(m.Vertices),
		Triangles:     len(m.Faces),
		Components:    len(g.Components()),
		BoundaryEdges: len(g.BoundaryEdges(m)),
		Watertight:    g.IsWatertight(),
		Bounds:        m.Bounds(),
	}
}

// Inspect loads a mesh file and prints its statistics
func (i *Inspector) Inspect(filename string) error {
	if _, err := os.Stat(filename); err != nil {
		return fmt.Errorf("file not found: %s", filename)
	}

	m, err := convert.LoadMesh(filename)
	if err != nil {
		return fmt.Errorf("error reading mesh: %w", err)
	}
	stats := Collect(m)

	ui.PrintHeader(fmt.Sprintf("Inspecting: %s", filename))
	ui.PrintKeyValue("Vertices", fmt.Sprintf("%d", stats.Vertices))
	ui.PrintKeyValue("Triangles", fmt.Sprintf("%d", stats.Triangles))
	ui.PrintKeyValue("Components", fmt.Sprintf("%d", stats.Components))
	ui.PrintKeyValue("Boundary edges", fmt.Sprintf("%d", stats.BoundaryEdges))
	if stats.Watertight {
		ui.PrintSuccess("Mesh is watertight")
	} else {
		ui.PrintWarning("Mesh is not watertight")
	}
	b := stats.Bounds
	ui.PrintKeyValue("Bounding box", fmt.Sprintf("%.3f × %.3f × %.3f",
		b.Width(), b.Height(), b.Depth()))
	return nil
}
