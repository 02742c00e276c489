package backend

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/philipparndt/glb2step/internal/mesh"
	"github.com/philipparndt/glb2step/internal/step"
)

// cubeSoup returns a cube as unindexed triangle soup: every triangle
// carries its own three vertices, so sewing has to weld 36 down to 8
func cubeSoup() *mesh.Mesh {
	corners := []mesh.Vector3{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
	}
	faces := [][3]int{
		{0, 2, 1}, {0, 3, 2},
		{4, 5, 6}, {4, 6, 7},
		{0, 1, 5}, {0, 5, 4},
		{2, 3, 7}, {2, 7, 6},
		{1, 2, 6}, {1, 6, 5},
		{3, 0, 4}, {3, 4, 7},
	}
	m := &mesh.Mesh{}
	for _, f := range faces {
		base := len(m.Vertices)
		m.Vertices = append(m.Vertices, corners[f[0]], corners[f[1]], corners[f[2]])
		m.Faces = append(m.Faces, [3]int{base, base + 1, base + 2})
	}
	return m
}

func TestSewingConvertsCubeSoup(t *testing.T) {
	b := NewSewingBackend(0)
	stepPath := filepath.Join(t.TempDir(), "cube.step")

	err := b.Convert(context.Background(), Request{Mesh: cubeSoup(), StepPath: stepPath})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if err := step.Validate(stepPath); err != nil {
		t.Errorf("produced STEP failed validation: %v", err)
	}
}

func TestSewingWeldsWithinTolerance(t *testing.T) {
	m := cubeSoup()
	// nudge a vertex by far less than tolerance; welding must absorb it
	m.Vertices[0].X += 1e-9

	b := NewSewingBackend(1e-6)
	sewn := b.sew(m)
	if len(sewn.Vertices) != 8 {
		t.Errorf("welded vertices = %d, want 8", len(sewn.Vertices))
	}
	if len(sewn.Faces) != 12 {
		t.Errorf("faces = %d, want 12", len(sewn.Faces))
	}
}

func TestSewingOpenMeshFails(t *testing.T) {
	// single triangle: all edges open
	m := &mesh.Mesh{
		Vertices: []mesh.Vector3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
		Faces:    [][3]int{{0, 1, 2}},
	}

	err := NewSewingBackend(0).Convert(context.Background(),
		Request{Mesh: m, StepPath: filepath.Join(t.TempDir(), "open.step")})

	var sewErr *SewingError
	if !errors.As(err, &sewErr) {
		t.Fatalf("err = %v, want SewingError", err)
	}
	if sewErr.OpenEdges != 3 {
		t.Errorf("OpenEdges = %d, want 3", sewErr.OpenEdges)
	}
}

func TestSewingInconsistentWindingFails(t *testing.T) {
	m := cubeSoup()
	m.FlipFace(7)

	err := NewSewingBackend(0).Convert(context.Background(),
		Request{Mesh: m, StepPath: filepath.Join(t.TempDir(), "bad.step")})

	var solidErr *SolidError
	if !errors.As(err, &solidErr) {
		t.Fatalf("err = %v, want SolidError", err)
	}
}

func TestSewingOrientsInvertedSolidOutward(t *testing.T) {
	m := cubeSoup()
	for f := range m.Faces {
		m.FlipFace(f)
	}

	stepPath := filepath.Join(t.TempDir(), "inv.step")
	if err := NewSewingBackend(0).Convert(context.Background(), Request{Mesh: m, StepPath: stepPath}); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if err := step.Validate(stepPath); err != nil {
		t.Errorf("produced STEP failed validation: %v", err)
	}
}

func TestSewingDoesNotMutateInput(t *testing.T) {
	m := cubeSoup()
	before := len(m.Vertices)

	_ = NewSewingBackend(0).Convert(context.Background(),
		Request{Mesh: m, StepPath: filepath.Join(t.TempDir(), "cube.step")})

	if len(m.Vertices) != before {
		t.Error("Convert mutated the input mesh")
	}
}
