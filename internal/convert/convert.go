// Package convert sequences the conversion pipeline: load, repair, write
// STL, then try each solid backend in order. A single conversion is
// synchronous and single-threaded; independent conversions may run
// concurrently because every job gets its own workspace namespace.
package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/philipparndt/glb2step/internal/backend"
	"github.com/philipparndt/glb2step/internal/gltfload"
	"github.com/philipparndt/glb2step/internal/mesh"
	"github.com/philipparndt/glb2step/internal/repair"
	"github.com/philipparndt/glb2step/internal/stl"
)

// Options enumerates the tunable parameters of a conversion
type Options struct {
	// ComponentFraction is the small-component removal threshold
	// (fraction of total triangles)
	ComponentFraction float64
	// MaxHoleEdges is the hole-loop size limit for hole filling
	MaxHoleEdges int
	// SewingTolerance is the vertex-matching tolerance of the precise
	// backend, in model units
	SewingTolerance float64
	// FallbackTimeout bounds the external fallback backend
	FallbackTimeout time.Duration
	// FreeCADBinary overrides FreeCAD binary discovery
	FreeCADBinary string
	// WorkDir is the temporary-file area used when no output path is
	// given; each job gets a unique namespace below it
	WorkDir string
}

// Converter runs conversions with a fixed options set and backend order
type Converter struct {
	opts     Options
	backends []backend.Backend
	writer   *stl.Writer

	// Progress, when set, observes state transitions
	Progress func(state State, detail string)
}

// New creates a Converter with the standard backend order: the in-process
// sewing backend first, the external FreeCAD backend as fallback.
func New(opts Options) *Converter {
	return NewWithBackends(opts,
		backend.NewSewingBackend(opts.SewingTolerance),
		backend.NewFreeCADBackend(opts.FreeCADBinary, opts.FallbackTimeout),
	)
}

// NewWithBackends creates a Converter with an explicit backend list,
// tried in order
func NewWithBackends(opts Options, backends ...backend.Backend) *Converter {
	return &Converter{opts: opts, backends: backends, writer: stl.NewWriter()}
}

// Convert runs the pipeline on one input file. stepPath may be empty, in
// which case the artifacts land in a fresh job workspace. The returned
// error is non-nil only for the hard-failure case (nothing loadable); all
// downstream trouble degrades into the Result instead.
func (c *Converter) Convert(ctx context.Context, inputPath, stepPath string) (*Result, error) {
	c.enter(StateLoad, inputPath)
	m, err := gltfload.Load(inputPath)
	if err != nil {
		c.enter(StateFailed, err.Error())
		return &Result{Status: StatusFailed, Reason: err.Error()}, err
	}

	if stepPath == "" {
		dir, err := newWorkspace(c.opts.WorkDir)
		if err != nil {
			c.enter(StateFailed, err.Error())
			return &Result{Status: StatusFailed, Reason: err.Error()}, err
		}
		base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
		stepPath = filepath.Join(dir, base+".step")
	}
	stlPath := strings.TrimSuffix(stepPath, filepath.Ext(stepPath)) + ".stl"

	c.enter(StateRepair, fmt.Sprintf("%d triangles", m.TriangleCount()))
	report := repair.Repair(m, repair.Options{
		ComponentFraction: c.opts.ComponentFraction,
		MaxHoleEdges:      c.opts.MaxHoleEdges,
	})

	result := &Result{Report: report, StepPath: stepPath}
	var reasons []string

	c.enter(StateWriteSTL, stlPath)
	if err := c.writer.Write(m, stlPath); err != nil {
		// keep going: STEP reconstruction can still work from memory
		reasons = append(reasons, fmt.Sprintf("STL write failed: %v", err))
		stlPath = ""
	}
	result.STLPath = stlPath

	req := backend.Request{Mesh: m, STLPath: stlPath, StepPath: stepPath}
	for i, b := range c.backends {
		if err := ctx.Err(); err != nil {
			reasons = append(reasons, fmt.Sprintf("%s: canceled", b.Name()))
			break
		}
		state := StateTryPrecise
		if i > 0 {
			state = StateTryFallback
		}
		c.enter(state, b.Name())

		if err := b.Available(); err != nil {
			reasons = append(reasons, fmt.Sprintf("%s: %v", b.Name(), err))
			continue
		}
		if err := b.Convert(ctx, req); err != nil {
			reasons = append(reasons, fmt.Sprintf("%s: %v", b.Name(), err))
			continue
		}

		c.enter(StateDoneStep, stepPath)
		result.Status = StatusStep
		result.Reason = report.Summary()
		return result, nil
	}

	if !report.Clean() {
		reasons = append(reasons, "repair: "+report.Summary())
	}
	result.Status = StatusSTLOnly
	result.StepPath = ""
	result.Reason = strings.Join(reasons, "; ")
	if stlPath == "" {
		// no artifact at all survived
		result.Status = StatusFailed
		c.enter(StateFailed, result.Reason)
		return result, fmt.Errorf("conversion produced no artifact: %s", result.Reason)
	}
	c.enter(StateDoneSTLOnly, result.Reason)
	return result, nil
}

func (c *Converter) enter(state State, detail string) {
	if c.Progress != nil {
		c.Progress(state, detail)
	}
}

// LoadMesh reads a mesh from a GLB/glTF or STL file, picking the parser by
// extension. Exposed for the inspect command so it shares the loader's
// error taxonomy.
func LoadMesh(path string) (*mesh.Mesh, error) {
	if strings.EqualFold(filepath.Ext(path), ".stl") {
		return stl.NewParser().Parse(path)
	}
	return gltfload.Load(path)
}
