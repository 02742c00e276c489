// Package stl reads and writes STL files. STL is the universal safety
// artifact of the conversion pipeline: it is written right after repair,
// before any solid reconstruction is attempted.
package stl

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/philipparndt/glb2step/internal/mesh"
)

// Writer serializes meshes as binary STL
type Writer struct{}

// NewWriter creates a new STL writer
func NewWriter() *Writer {
	return &Writer{}
}

// binaryTriangle matches the 50-byte binary STL facet record
type binaryTriangle struct {
	Normal     [3]float32
	V1, V2, V3 [3]float32
	Attribute  uint16
}

// Write serializes the mesh to a binary STL file
func (w *Writer) Write(m *mesh.Mesh, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create STL file: %w", err)
	}
	defer file.Close()

	out := bufio.NewWriter(file)

	var header [80]byte
	copy(header[:], "glb2step binary STL")
	if _, err := out.Write(header[:]); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}
	if err := binary.Write(out, binary.LittleEndian, uint32(len(m.Faces))); err != nil {
		return fmt.Errorf("error writing triangle count: %w", err)
	}

	for f := range m.Faces {
		n := m.FaceNormal(f).Normalize()
		tri := binaryTriangle{
			Normal: [3]float32{float32(n.X), float32(n.Y), float32(n.Z)},
			V1:     toFloat32(m.Vertices[m.Faces[f][0]]),
			V2:     toFloat32(m.Vertices[m.Faces[f][1]]),
			V3:     toFloat32(m.Vertices[m.Faces[f][2]]),
		}
		if err := binary.Write(out, binary.LittleEndian, &tri); err != nil {
			return fmt.Errorf("error writing triangle %d: %w", f, err)
		}
	}

	if err := out.Flush(); err != nil {
		return fmt.Errorf("error flushing STL file: %w", err)
	}
	return nil
}

func toFloat32(v mesh.Vector3) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

// Parser parses STL files into indexed meshes
type Parser struct{}

// NewParser creates a new STL parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads an ASCII or binary STL file. Identical vertex positions are
// merged so the result is an indexed mesh with shared vertices.
func (p *Parser) Parse(filename string) (*mesh.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open file: %w", err)
	}
	defer file.Close()

	// Read the first bytes to detect the format
	header := make([]byte, 80)
	n, err := io.ReadFull(file, header)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("error reading header: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("error seeking: %w", err)
	}

	// ASCII STL starts with "solid"
	if strings.HasPrefix(string(header[:n]), "solid") && !looksBinary(filename) {
		return p.parseASCII(file)
	}
	return p.parseBinary(file)
}

// looksBinary distinguishes binary STL files whose header happens to start
// with "solid" by checking the declared triangle count against the size
func looksBinary(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	file, err := os.Open(filename)
	if err != nil {
		return false
	}
	defer file.Close()
	if _, err := file.Seek(80, io.SeekStart); err != nil {
		return false
	}
	var count uint32
	if err := binary.Read(file, binary.LittleEndian, &count); err != nil {
		return false
	}
	return info.Size() == int64(84+50*count)
}

type indexer struct {
	m     *mesh.Mesh
	index map[[3]float32]int
}

func newIndexer() *indexer {
	return &indexer{m: &mesh.Mesh{}, index: make(map[[3]float32]int)}
}

func (ix *indexer) vertex(v [3]float32) int {
	if i, ok := ix.index[v]; ok {
		return i
	}
	i := len(ix.m.Vertices)
	ix.index[v] = i
	ix.m.Vertices = append(ix.m.Vertices, mesh.Vector3{
		X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2]),
	})
	return i
}

func (ix *indexer) triangle(v1, v2, v3 [3]float32) {
	ix.m.Faces = append(ix.m.Faces, [3]int{ix.vertex(v1), ix.vertex(v2), ix.vertex(v3)})
}

func (p *Parser) parseASCII(reader io.Reader) (*mesh.Mesh, error) {
	scanner := bufio.NewScanner(reader)
	ix := newIndexer()

	var verts [][3]float32
	for scanner.Scan() {
		fields := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "vertex":
			if len(fields) >= 4 {
				var v [3]float32
				fmt.Sscanf(strings.Join(fields[1:4], " "), "%f %f %f", &v[0], &v[1], &v[2])
				verts = append(verts, v)
			}
		case "endfacet":
			if len(verts) == 3 {
				ix.triangle(verts[0], verts[1], verts[2])
			}
			verts = verts[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return ix.m, nil
}

func (p *Parser) parseBinary(reader io.Reader) (*mesh.Mesh, error) {
	header := make([]byte, 80)
	if _, err := io.ReadFull(reader, header); err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}

	var count uint32
	if err := binary.Read(reader, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("error reading triangle count: %w", err)
	}

	ix := newIndexer()
	for i := uint32(0); i < count; i++ {
		var tri binaryTriangle
		if err := binary.Read(reader, binary.LittleEndian, &tri); err != nil {
			return nil, fmt.Errorf("error reading triangle %d: %w", i, err)
		}
		ix.triangle(tri.V1, tri.V2, tri.V3)
	}
	return ix.m, nil
}
