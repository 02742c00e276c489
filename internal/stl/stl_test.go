package stl

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/philipparndt/glb2step/internal/mesh"
)

func cube() *mesh.Mesh {
	return &mesh.Mesh{
		Vertices: []mesh.Vector3{
			{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
			{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
		},
		Faces: [][3]int{
			{0, 2, 1}, {0, 3, 2},
			{4, 5, 6}, {4, 6, 7},
			{0, 1, 5}, {0, 5, 4},
			{2, 3, 7}, {2, 7, 6},
			{1, 2, 6}, {1, 6, 5},
			{3, 0, 4}, {3, 4, 7},
		},
	}
}

func TestWriteParseRoundTrip(t *testing.T) {
	m := cube()
	path := filepath.Join(t.TempDir(), "cube.stl")

	if err := NewWriter().Write(m, path); err != nil {
		t.Fatalf("Write: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if want := int64(84 + 50*12); info.Size() != want {
		t.Errorf("file size = %d, want %d", info.Size(), want)
	}

	parsed, err := NewParser().Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(parsed.Faces) != 12 {
		t.Errorf("faces = %d, want 12", len(parsed.Faces))
	}
	// shared vertices must be re-merged on parse
	if len(parsed.Vertices) != 8 {
		t.Errorf("vertices = %d, want 8", len(parsed.Vertices))
	}
	if vol := parsed.Volume(); math.Abs(vol-1) > 1e-6 {
		t.Errorf("round-tripped volume = %v, want 1", vol)
	}
	// the parser re-indexes vertices in first-seen order; compare as sets
	less := func(a, b mesh.Vector3) bool {
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	}
	if diff := cmp.Diff(m.Vertices, parsed.Vertices, cmpopts.SortSlices(less)); diff != "" {
		t.Errorf("vertices mismatch (-want +got):\n%s", diff)
	}
}

func TestParseASCII(t *testing.T) {
	content := `solid tri
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
endsolid tri
`
	path := filepath.Join(t.TempDir(), "tri.stl")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := NewParser().Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(m.Faces) != 1 || len(m.Vertices) != 3 {
		t.Errorf("faces = %d vertices = %d, want 1/3", len(m.Faces), len(m.Vertices))
	}
	if got := (mesh.Vector3{X: 1, Y: 0, Z: 0}); m.Vertices[1] != got {
		t.Errorf("vertex 1 = %+v, want %+v", m.Vertices[1], got)
	}
}

func TestParseMissingFile(t *testing.T) {
	if _, err := NewParser().Parse(filepath.Join(t.TempDir(), "nope.stl")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseTruncatedBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trunc.stl")
	// header + count announcing 5 triangles, but no triangle data
	data := make([]byte, 84)
	data[80] = 5
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewParser().Parse(path); err == nil {
		t.Error("expected error for truncated binary STL")
	}
}
