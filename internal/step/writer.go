// Package step writes and validates STEP (ISO 10303-21) files. The writer
// produces an AP214 faceted boundary representation: one planar face per
// triangle, collected into a closed shell and a FACETED_BREP solid.
package step

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/philipparndt/glb2step/internal/mesh"
)

// Writer serializes welded triangle meshes as STEP AP214
type Writer struct{}

// NewWriter creates a new STEP writer
func NewWriter() *Writer {
	return &Writer{}
}

// Write exports the mesh as a FACETED_BREP solid. The caller is expected
// to have validated that the mesh is a closed, consistently wound manifold;
// Write itself only serializes.
func (w *Writer) Write(m *mesh.Mesh, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create STEP file: %w", err)
	}
	defer file.Close()

	out := bufio.NewWriter(file)
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	e := &emitter{out: out}
	w.writeHeader(e, filename)
	w.writeData(e, m, name)
	e.raw("END-ISO-10303-21;\n")

	if e.err != nil {
		return fmt.Errorf("error writing STEP data: %w", e.err)
	}
	if err := out.Flush(); err != nil {
		return fmt.Errorf("error flushing STEP file: %w", err)
	}
	return nil
}

// emitter numbers entity instances and tracks the first write error
type emitter struct {
	out  *bufio.Writer
	next int
	err  error
}

// entity writes one instance and returns its id
func (e *emitter) entity(format string, args ...interface{}) int {
	e.next++
	e.raw(fmt.Sprintf("#%d=%s;\n", e.next, fmt.Sprintf(format, args...)))
	return e.next
}

func (e *emitter) raw(s string) {
	if e.err != nil {
		return
	}
	_, e.err = e.out.WriteString(s)
}

func (w *Writer) writeHeader(e *emitter, filename string) {
	e.raw("ISO-10303-21;\n")
	e.raw("HEADER;\n")
	e.raw("FILE_DESCRIPTION(('faceted brep converted from triangle mesh'),'2;1');\n")
	e.raw(fmt.Sprintf("FILE_NAME('%s','%s',('glb2step'),(''),'glb2step','','');\n",
		escape(filepath.Base(filename)), time.Now().UTC().Format("2006-01-02T15:04:05")))
	e.raw("FILE_SCHEMA(('AUTOMOTIVE_DESIGN { 1 0 10303 214 1 1 1 1 }'));\n")
	e.raw("ENDSEC;\n")
	e.raw("DATA;\n")
}

func (w *Writer) writeData(e *emitter, m *mesh.Mesh, name string) {
	app := e.entity("APPLICATION_CONTEXT('automotive design')")
	e.entity("APPLICATION_PROTOCOL_DEFINITION('international standard','automotive_design',2010,#%d)", app)
	prodCtx := e.entity("PRODUCT_CONTEXT('',#%d,'mechanical')", app)
	product := e.entity("PRODUCT('%s','%s','',(#%d))", escape(name), escape(name), prodCtx)
	formation := e.entity("PRODUCT_DEFINITION_FORMATION('','',#%d)", product)
	defCtx := e.entity("PRODUCT_DEFINITION_CONTEXT('part definition',#%d,'design')", app)
	definition := e.entity("PRODUCT_DEFINITION('design','',#%d,#%d)", formation, defCtx)
	shape := e.entity("PRODUCT_DEFINITION_SHAPE('','',#%d)", definition)

	lengthUnit := e.entity("(LENGTH_UNIT()NAMED_UNIT(*)SI_UNIT(.MILLI.,.METRE.))")
	angleUnit := e.entity("(NAMED_UNIT(*)PLANE_ANGLE_UNIT()SI_UNIT($,.RADIAN.))")
	solidUnit := e.entity("(NAMED_UNIT(*)SI_UNIT($,.STERADIAN.)SOLID_ANGLE_UNIT())")
	uncertainty := e.entity(
		"UNCERTAINTY_MEASURE_WITH_UNIT(LENGTH_MEASURE(1.E-6),#%d,'distance_accuracy_value','')",
		lengthUnit)
	geomCtx := e.entity(
		"(GEOMETRIC_REPRESENTATION_CONTEXT(3)GLOBAL_UNCERTAINTY_ASSIGNED_CONTEXT((#%d))GLOBAL_UNIT_ASSIGNED_CONTEXT((#%d,#%d,#%d))REPRESENTATION_CONTEXT('',''))",
		uncertainty, lengthUnit, angleUnit, solidUnit)

	// shared vertex points
	points := make([]int, len(m.Vertices))
	for i, v := range m.Vertices {
		points[i] = e.entity("CARTESIAN_POINT('',(%s,%s,%s))",
			coord(v.X), coord(v.Y), coord(v.Z))
	}

	// one planar face per triangle
	faceIDs := make([]string, 0, len(m.Faces))
	for _, face := range m.Faces {
		loop := e.entity("POLY_LOOP('',(#%d,#%d,#%d))",
			points[face[0]], points[face[1]], points[face[2]])
		bound := e.entity("FACE_OUTER_BOUND('',#%d,.T.)", loop)
		f := e.entity("FACE('',(#%d))", bound)
		faceIDs = append(faceIDs, fmt.Sprintf("#%d", f))
	}

	shell := e.entity("CLOSED_SHELL('',(%s))", strings.Join(faceIDs, ","))
	brep := e.entity("FACETED_BREP('',#%d)", shell)

	origin := e.entity("CARTESIAN_POINT('',(0.,0.,0.))")
	zAxis := e.entity("DIRECTION('',(0.,0.,1.))")
	xAxis := e.entity("DIRECTION('',(1.,0.,0.))")
	placement := e.entity("AXIS2_PLACEMENT_3D('',#%d,#%d,#%d)", origin, zAxis, xAxis)
	repr := e.entity("FACETED_BREP_SHAPE_REPRESENTATION('%s',(#%d,#%d),#%d)",
		escape(name), placement, brep, geomCtx)
	e.entity("SHAPE_DEFINITION_REPRESENTATION(#%d,#%d)", shape, repr)

	e.raw("ENDSEC;\n")
}

// coord formats a coordinate as a STEP real (always with a decimal point)
func coord(v float64) string {
	s := fmt.Sprintf("%g", v)
	if !strings.ContainsAny(s, ".eE") {
		s += "."
	}
	return s
}

// escape quotes apostrophes per part 21 string encoding
func escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
