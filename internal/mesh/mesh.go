package mesh

import "math"

// Vector3 represents a 3D vector or point
type Vector3 struct {
	X, Y, Z float64
}

// Add returns the component-wise sum of two vectors
func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns the component-wise difference of two vectors
func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns the vector scaled by s
func (v Vector3) Scale(s float64) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product of two vectors
func (v Vector3) Dot(o Vector3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Cross returns the cross product of two vectors
func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Length returns the Euclidean length of the vector
func (v Vector3) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalize returns the unit vector in the direction of v.
// The zero vector is returned unchanged.
func (v Vector3) Normalize() Vector3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Mesh represents an indexed triangle mesh. Faces reference Vertices by
// index; every index must be in range. Normals are optional per-vertex
// normals and may be nil.
type Mesh struct {
	Vertices []Vector3
	Faces    [][3]int
	Normals  []Vector3
}

// TriangleCount returns the number of faces in the mesh
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// FaceNormal returns the (unnormalized) normal of face f,
// following the right-hand rule over the winding order
func (m *Mesh) FaceNormal(f int) Vector3 {
	a := m.Vertices[m.Faces[f][0]]
	b := m.Vertices[m.Faces[f][1]]
	c := m.Vertices[m.Faces[f][2]]
	return b.Sub(a).Cross(c.Sub(a))
}

// FaceArea returns the area of face f
func (m *Mesh) FaceArea(f int) float64 {
	return m.FaceNormal(f).Length() * 0.5
}

// Volume returns the signed volume enclosed by the mesh, computed as the
// sum of signed tetrahedron volumes against the origin. Only meaningful
// for closed meshes; a consistently outward-wound solid has positive volume.
func (m *Mesh) Volume() float64 {
	var vol float64
	for _, f := range m.Faces {
		a := m.Vertices[f[0]]
		b := m.Vertices[f[1]]
		c := m.Vertices[f[2]]
		vol += a.Dot(b.Cross(c))
	}
	return vol / 6
}

// FlipFace reverses the winding order of face f
func (m *Mesh) FlipFace(f int) {
	m.Faces[f][1], m.Faces[f][2] = m.Faces[f][2], m.Faces[f][1]
}

// RecomputeNormals replaces the per-vertex normals with area-weighted
// averages of the adjacent face normals
func (m *Mesh) RecomputeNormals() {
	normals := make([]Vector3, len(m.Vertices))
	for f := range m.Faces {
		n := m.FaceNormal(f)
		for _, v := range m.Faces[f] {
			normals[v] = normals[v].Add(n)
		}
	}
	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	m.Normals = normals
}

// BoundingBox represents an axis-aligned 3D bounding box
type BoundingBox struct {
	Min, Max Vector3
}

// Width returns the X dimension of the bounding box
func (b *BoundingBox) Width() float64 { return b.Max.X - b.Min.X }

// Height returns the Y dimension of the bounding box
func (b *BoundingBox) Height() float64 { return b.Max.Y - b.Min.Y }

// Depth returns the Z dimension of the bounding box
func (b *BoundingBox) Depth() float64 { return b.Max.Z - b.Min.Z }

// Bounds returns the axis-aligned bounding box of all vertices.
// An empty mesh yields the zero box.
func (m *Mesh) Bounds() BoundingBox {
	if len(m.Vertices) == 0 {
		return BoundingBox{}
	}
	b := BoundingBox{Min: m.Vertices[0], Max: m.Vertices[0]}
	for _, v := range m.Vertices[1:] {
		b.Min.X = math.Min(b.Min.X, v.X)
		b.Min.Y = math.Min(b.Min.Y, v.Y)
		b.Min.Z = math.Min(b.Min.Z, v.Z)
		b.Max.X = math.Max(b.Max.X, v.X)
		b.Max.Y = math.Max(b.Max.Y, v.Y)
		b.Max.Z = math.Max(b.Max.Z, v.Z)
	}
	return b
}
