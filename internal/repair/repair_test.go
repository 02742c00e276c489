package repair

import (
	"testing"

	"github.com/philipparndt/glb2step/internal/mesh"
)

// cube returns a watertight 12-triangle cube spanning [0,1]^3 with
// consistent outward winding
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

// openBox returns the cube with its top removed: a single rectangular
// 4-edge boundary loop
func openBox() *mesh.Mesh {
	m := cube()
	m.Faces = append(m.Faces[:2], m.Faces[4:]...)
	return m
}

// windingConsistent reports whether every directed edge appears at most once
func windingConsistent(m *mesh.Mesh) bool {
	seen := make(map[[2]int]bool)
	for _, face := range m.Faces {
		for i := 0; i < 3; i++ {
			e := [2]int{face[i], face[(i+1)%3]}
			if seen[e] {
				return false
			}
			seen[e] = true
		}
	}
	return true
}

func TestRepairCleanMeshIsNoOp(t *testing.T) {
	m := cube()
	report := Repair(m, DefaultOptions())
	if !report.Clean() {
		t.Errorf("repair of a clean cube reported work: %+v", report)
	}
	if len(m.Faces) != 12 {
		t.Errorf("faces = %d, want 12", len(m.Faces))
	}
}

func TestDegenerateRemoval(t *testing.T) {
	m := cube()
	m.Faces = append(m.Faces,
		[3]int{0, 0, 1}, // repeated index
		[3]int{0, 1, 1}, // repeated index
	)
	// zero-area triangle over three collinear points
	base := len(m.Vertices)
	m.Vertices = append(m.Vertices,
		mesh.Vector3{X: 5, Y: 0, Z: 0}, mesh.Vector3{X: 6, Y: 0, Z: 0}, mesh.Vector3{X: 7, Y: 0, Z: 0})
	m.Faces = append(m.Faces, [3]int{base, base + 1, base + 2})

	report := Repair(m, DefaultOptions())
	if report.DegenerateRemoved != 3 {
		t.Errorf("DegenerateRemoved = %d, want 3", report.DegenerateRemoved)
	}
	if len(m.Faces) != 12 {
		t.Errorf("faces = %d, want 12", len(m.Faces))
	}
}

// fan builds a connected component of n triangles sharing a hub vertex
func fan(m *mesh.Mesh, n int, offset mesh.Vector3) {
	hub := len(m.Vertices)
	m.Vertices = append(m.Vertices, offset)
	for i := 0; i <= n; i++ {
		m.Vertices = append(m.Vertices, mesh.Vector3{
			X: offset.X + 1 + float64(i)*0.01, Y: offset.Y + float64(i), Z: offset.Z,
		})
	}
	for i := 0; i < n; i++ {
		m.Faces = append(m.Faces, [3]int{hub, hub + 1 + i, hub + 2 + i})
	}
}

func TestSmallComponentRemoval(t *testing.T) {
	m := &mesh.Mesh{}
	fan(m, 1000, mesh.Vector3{})

	// one isolated triangle far away
	base := len(m.Vertices)
	m.Vertices = append(m.Vertices,
		mesh.Vector3{X: 100, Y: 100, Z: 100},
		mesh.Vector3{X: 101, Y: 100, Z: 100},
		mesh.Vector3{X: 100, Y: 101, Z: 100})
	m.Faces = append(m.Faces, [3]int{base, base + 1, base + 2})

	opts := DefaultOptions()
	opts.ComponentFraction = 0.01
	opts.MaxHoleEdges = 3 // keep hole filling away from the fan's rim
	report := Repair(m, opts)

	if report.ComponentsRemoved != 1 {
		t.Errorf("ComponentsRemoved = %d, want 1", report.ComponentsRemoved)
	}
	if report.ComponentFaces != 1 {
		t.Errorf("ComponentFaces = %d, want 1", report.ComponentFaces)
	}
	if len(m.Faces) != 1000 {
		t.Errorf("faces = %d, want the 1000-triangle cluster intact", len(m.Faces))
	}
}

func TestLargestComponentSurvivesAggressiveThreshold(t *testing.T) {
	m := &mesh.Mesh{}
	fan(m, 10, mesh.Vector3{})
	fan(m, 5, mesh.Vector3{X: 1000})

	opts := DefaultOptions()
	opts.ComponentFraction = 0.99
	opts.MaxHoleEdges = 3
	Repair(m, opts)

	if len(m.Faces) != 10 {
		t.Errorf("faces = %d, want the larger fan to survive", len(m.Faces))
	}
}

func TestWindingRepair(t *testing.T) {
	m := cube()
	m.FlipFace(7)
	if windingConsistent(m) {
		t.Fatal("fixture should start inconsistent")
	}

	report := Repair(m, DefaultOptions())
	if report.FacesFlipped != 1 {
		t.Errorf("FacesFlipped = %d, want 1", report.FacesFlipped)
	}
	if !windingConsistent(m) {
		t.Error("winding still inconsistent after repair")
	}
}

func TestHoleFillingRectangularLoop(t *testing.T) {
	m := openBox()

	report := Repair(m, DefaultOptions())
	if report.LoopsClosed != 1 {
		t.Errorf("LoopsClosed = %d, want 1", report.LoopsClosed)
	}
	if report.FacesAdded != 2 {
		t.Errorf("FacesAdded = %d, want exactly 2 for a 4-edge loop", report.FacesAdded)
	}
	if len(m.Faces) != 12 {
		t.Errorf("faces = %d, want 12", len(m.Faces))
	}

	g := mesh.BuildAdjacency(m)
	if got := len(g.BoundaryEdges(m)); got != 0 {
		t.Errorf("boundary edges after filling = %d, want 0", got)
	}
	if !windingConsistent(m) {
		t.Error("patch winding disagrees with the surrounding surface")
	}
	if vol := m.Volume(); vol < 0.99 || vol > 1.01 {
		t.Errorf("volume = %v, want 1 (outward-consistent closed cube)", vol)
	}
}

func TestHoleLoopSizeLimit(t *testing.T) {
	m := openBox()

	opts := DefaultOptions()
	opts.MaxHoleEdges = 3
	report := Repair(m, opts)

	if report.LoopsClosed != 0 || report.FacesAdded != 0 {
		t.Errorf("4-edge loop filled despite limit 3: %+v", report)
	}
	if report.LoopsSkipped != 1 {
		t.Errorf("LoopsSkipped = %d, want 1", report.LoopsSkipped)
	}
}

func TestRepairIdempotent(t *testing.T) {
	m := openBox()
	m.FlipFace(3)

	first := Repair(m, DefaultOptions())
	if first.Clean() {
		t.Fatal("first run should have work to do")
	}

	before := make([][3]int, len(m.Faces))
	copy(before, m.Faces)

	second := Repair(m, DefaultOptions())
	if !second.Clean() {
		t.Errorf("second run reported work: %+v", second)
	}
	if len(m.Faces) != len(before) {
		t.Fatalf("face count changed on second run: %d != %d", len(m.Faces), len(before))
	}
	for i := range before {
		if m.Faces[i] != before[i] {
			t.Fatalf("face %d changed on second run", i)
		}
	}
}

func TestBoundaryLoopsOpenChainSkipped(t *testing.T) {
	// two triangles sharing only a vertex: a non-manifold junction with
	// boundary chains that cannot close into a single loop
	m := &mesh.Mesh{
		Vertices: []mesh.Vector3{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0},
			{X: -1, Y: 0, Z: 0}, {X: 0, Y: -1, Z: 0},
		},
		Faces: [][3]int{{0, 1, 2}, {0, 3, 4}},
	}
	g := mesh.BuildAdjacency(m)
	loops, _ := boundaryLoops(m, g)
	if len(loops) != 2 {
		t.Errorf("loops = %d, want the junction split into 2 triangle rims", len(loops))
	}
	for _, loop := range loops {
		if len(loop) != 3 {
			t.Errorf("loop size = %d, want 3", len(loop))
		}
	}
}
