// Package backend reconstructs CAD solids from repaired triangle meshes.
// Backends share one interface so the orchestrator can walk an ordered
// list and fall through on failure; adding a backend is a pure extension.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/philipparndt/glb2step/internal/mesh"
)

// ErrUnavailable marks a backend whose runtime dependency is missing in
// the current environment
var ErrUnavailable = errors.New("backend unavailable")

// ErrTimeout marks an external process that exceeded its bounded wait
var ErrTimeout = errors.New("external process timed out")

// SewingError reports that face sewing left open boundary beyond tolerance
type SewingError struct {
	OpenEdges int
}

func (e *SewingError) Error() string {
	return fmt.Sprintf("sewing left %d open boundary edges", e.OpenEdges)
}

// SolidError reports a shape that failed the solid-validity check
type SolidError struct {
	Reason string
}

func (e *SolidError) Error() string {
	return "shape is not a valid solid: " + e.Reason
}

// Request carries the inputs of one reconstruction attempt. Mesh is the
// repaired in-memory mesh; STLPath points at the already-written STL
// artifact for backends that speak files rather than an API. STLPath may
// be empty when the STL write failed.
type Request struct {
	Mesh     *mesh.Mesh
	STLPath  string
	StepPath string
}

// Backend attempts to reconstruct a solid and export it as STEP
type Backend interface {
	// Name identifies the backend in reasons and console output
	Name() string
	// Available reports whether the backend can run in this environment
	Available() error
	// Convert writes a STEP file to req.StepPath or explains why it cannot
	Convert(ctx context.Context, req Request) error
}
