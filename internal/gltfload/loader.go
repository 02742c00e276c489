// Package gltfload reads GLB / glTF 2.0 assets and flattens them into a
// single indexed triangle mesh in a common coordinate frame.
package gltfload

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/philipparndt/glb2step/internal/mesh"
)

// LoadError marks an input that cannot be converted at all: the file is not
// valid glTF/GLB, or it contains no triangle geometry. This is the only
// fatal failure class in the conversion pipeline.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cannot load mesh from %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads a GLB or glTF file, applies each node's transform to its mesh
// primitives and merges all triangle primitives into one mesh.
func Load(path string) (*mesh.Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	m, err := Flatten(doc)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return m, nil
}

// nodeRef is a worklist entry: a node index plus the accumulated transform
// of its ancestors.
type nodeRef struct {
	index     int
	transform matrix4
}

// Flatten merges all triangle primitives of a glTF document into a single
// mesh, with node transforms applied. It fails when the document contains
// no triangles.
func Flatten(doc *gltf.Document) (*mesh.Mesh, error) {
	out := &mesh.Mesh{}

	var worklist []nodeRef
	for _, root := range sceneRoots(doc) {
		worklist = append(worklist, nodeRef{index: root, transform: identity()})
	}

	// valid glTF node graphs are disjoint trees; a revisited node means a
	// cycle, which would spin the worklist forever
	visited := make([]bool, len(doc.Nodes))

	for len(worklist) > 0 {
		ref := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if ref.index < 0 || ref.index >= len(doc.Nodes) {
			return nil, fmt.Errorf("node index %d out of range", ref.index)
		}
		if visited[ref.index] {
			return nil, fmt.Errorf("node graph contains a cycle at node %d", ref.index)
		}
		visited[ref.index] = true
		node := doc.Nodes[ref.index]
		world := ref.transform.mul(nodeTransform(node))

		if node.Mesh != nil {
			if *node.Mesh < 0 || *node.Mesh >= len(doc.Meshes) {
				return nil, fmt.Errorf("mesh index %d out of range", *node.Mesh)
			}
			if err := appendMesh(out, doc, doc.Meshes[*node.Mesh], world); err != nil {
				return nil, err
			}
		}
		for _, child := range node.Children {
			worklist = append(worklist, nodeRef{index: child, transform: world})
		}
	}

	if len(out.Faces) == 0 {
		return nil, fmt.Errorf("document contains no triangle primitives")
	}
	return out, nil
}

// sceneRoots returns the root nodes of the default scene. Documents without
// scenes fall back to every node that is not a child of another node.
func sceneRoots(doc *gltf.Document) []int {
	scene := -1
	if doc.Scene != nil {
		scene = *doc.Scene
	} else if len(doc.Scenes) > 0 {
		scene = 0
	}
	if scene >= 0 && scene < len(doc.Scenes) {
		return doc.Scenes[scene].Nodes
	}

	child := make(map[int]bool)
	for _, node := range doc.Nodes {
		for _, c := range node.Children {
			child[c] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !child[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func appendMesh(out *mesh.Mesh, doc *gltf.Document, gm *gltf.Mesh, world matrix4) error {
	for _, prim := range gm.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			// points, lines, strips and fans carry no face topology we can use
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		if posIdx < 0 || posIdx >= len(doc.Accessors) {
			return fmt.Errorf("position accessor %d out of range", posIdx)
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return fmt.Errorf("reading positions: %w", err)
		}

		var indices []uint32
		if prim.Indices != nil {
			if *prim.Indices < 0 || *prim.Indices >= len(doc.Accessors) {
				return fmt.Errorf("index accessor %d out of range", *prim.Indices)
			}
			indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return fmt.Errorf("reading indices: %w", err)
			}
		} else {
			// non-indexed primitive: implicit sequential indices
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}
		if len(indices)%3 != 0 {
			return fmt.Errorf("triangle primitive has %d indices", len(indices))
		}

		base := len(out.Vertices)
		for _, p := range positions {
			v := world.apply(mesh.Vector3{
				X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2]),
			})
			out.Vertices = append(out.Vertices, v)
		}
		for i := 0; i+2 < len(indices); i += 3 {
			a := base + int(indices[i])
			b := base + int(indices[i+1])
			c := base + int(indices[i+2])
			if a >= len(out.Vertices) || b >= len(out.Vertices) || c >= len(out.Vertices) {
				return fmt.Errorf("triangle index out of range")
			}
			out.Faces = append(out.Faces, [3]int{a, b, c})
		}
	}
	return nil
}
