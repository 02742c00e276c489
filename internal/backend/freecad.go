package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/philipparndt/glb2step/internal/step"
)

// DefaultFreeCADTimeout bounds the headless FreeCAD invocation
const DefaultFreeCADTimeout = 300 * time.Second

// freecadBinaries is the discovery order for the headless FreeCAD binary
var freecadBinaries = []string{"FreeCADCmd", "freecadcmd", "freecad"}

// FreeCADBackend drives a full FreeCAD installation in headless mode: it
// imports the STL artifact, runs FreeCAD's own shape healing and exports
// STEP. It speaks files, not an API, so it needs the STL on disk.
type FreeCADBackend struct {
	// Binary overrides binary discovery when non-empty
	Binary string
	// Timeout bounds the external process; zero means the default
	Timeout time.Duration
}

// NewFreeCADBackend creates the fallback solid backend
func NewFreeCADBackend(binary string, timeout time.Duration) *FreeCADBackend {
	if timeout <= 0 {
		timeout = DefaultFreeCADTimeout
	}
	return &FreeCADBackend{Binary: binary, Timeout: timeout}
}

// Name implements Backend
func (b *FreeCADBackend) Name() string { return "freecad" }

// Available implements Backend
func (b *FreeCADBackend) Available() error {
	if _, err := b.findBinary(); err != nil {
		return err
	}
	return nil
}

func (b *FreeCADBackend) findBinary() (string, error) {
	if b.Binary != "" {
		if path, err := exec.LookPath(b.Binary); err == nil {
			return path, nil
		}
		return "", fmt.Errorf("%w: %s not found in PATH", ErrUnavailable, b.Binary)
	}
	for _, name := range freecadBinaries {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: no FreeCAD binary found in PATH", ErrUnavailable)
}

// Convert implements Backend
func (b *FreeCADBackend) Convert(ctx context.Context, req Request) error {
	binary, err := b.findBinary()
	if err != nil {
		return err
	}
	if req.STLPath == "" {
		return fmt.Errorf("no STL artifact available for import")
	}
	if _, err := os.Stat(req.STLPath); err != nil {
		return fmt.Errorf("STL artifact missing: %w", err)
	}

	script, err := writeHealScript(req.STLPath, req.StepPath)
	if err != nil {
		return fmt.Errorf("cannot write FreeCAD script: %w", err)
	}
	defer os.Remove(script)

	runCtx, cancel := context.WithTimeout(ctx, b.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, binary, script)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err = cmd.Run()
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, b.Timeout)
	}
	if err != nil {
		return fmt.Errorf("FreeCAD failed: %w (%s)", err, firstLine(stderr.String()))
	}

	// never trust the exit status alone
	if err := step.Validate(req.StepPath); err != nil {
		return fmt.Errorf("FreeCAD produced an invalid STEP file: %w", err)
	}
	return nil
}

// writeHealScript generates the FreeCAD python that imports the STL,
// heals the shape and exports STEP. A temporary on-disk script avoids
// shell escaping trouble.
func writeHealScript(stlPath, stepPath string) (string, error) {
	file, err := os.CreateTemp("", "glb2step-freecad-*.py")
	if err != nil {
		return "", err
	}
	script := fmt.Sprintf(`import Mesh
import MeshPart
import Part

m = Mesh.Mesh(%q)
m.harmonizeNormals()
m.fillupHoles()
m.removeDuplicatedPoints()
shape = MeshPart.meshToShape(m)
try:
    shell = Part.Shell(list(shape.Faces))
    solid = Part.Solid(shell)
    Part.export([solid], %q)
except Exception:
    Part.export([shape], %q)
`, stlPath, stepPath, stepPath)

	if _, err := file.WriteString(script); err != nil {
		file.Close()
		os.Remove(file.Name())
		return "", err
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", err
	}
	return file.Name(), nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return "no stderr output"
	}
	return s
}
