package gltfload

import (
	"github.com/qmuntal/gltf"

	"github.com/philipparndt/glb2step/internal/mesh"
)

// matrix4 is a 4x4 transform in row-major order
type matrix4 [16]float64

func identity() matrix4 {
	return matrix4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// mul returns m * o (o is applied first)
func (m matrix4) mul(o matrix4) matrix4 {
	var r matrix4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[row*4+k] * o[k*4+col]
			}
			r[row*4+col] = sum
		}
	}
	return r
}

// apply transforms a point (w = 1)
func (m matrix4) apply(v mesh.Vector3) mesh.Vector3 {
	return mesh.Vector3{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z + m[3],
		Y: m[4]*v.X + m[5]*v.Y + m[6]*v.Z + m[7],
		Z: m[8]*v.X + m[9]*v.Y + m[10]*v.Z + m[11],
	}
}

// nodeTransform builds the local transform of a glTF node. A node carries
// either an explicit column-major matrix or a translation/rotation/scale
// triple; zero values are treated as the glTF defaults so both parsed and
// hand-built documents work.
func nodeTransform(n *gltf.Node) matrix4 {
	if n.Matrix != ([16]float64{}) && !isGLTFIdentity(n.Matrix) {
		// glTF matrices are column-major; transpose into row-major
		var m matrix4
		for row := 0; row < 4; row++ {
			for col := 0; col < 4; col++ {
				m[row*4+col] = n.Matrix[col*4+row]
			}
		}
		return m
	}

	t := n.Translation
	r := n.Rotation
	if r == ([4]float64{}) {
		r = [4]float64{0, 0, 0, 1}
	}
	s := n.Scale
	if s == ([3]float64{}) {
		s = [3]float64{1, 1, 1}
	}

	// rotation matrix from the unit quaternion (x, y, z, w)
	x, y, z, w := r[0], r[1], r[2], r[3]
	rot := matrix4{
		1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w), 0,
		2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w), 0,
		2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y), 0,
		0, 0, 0, 1,
	}
	scale := matrix4{
		s[0], 0, 0, 0,
		0, s[1], 0, 0,
		0, 0, s[2], 0,
		0, 0, 0, 1,
	}
	translate := matrix4{
		1, 0, 0, t[0],
		0, 1, 0, t[1],
		0, 0, 1, t[2],
		0, 0, 0, 1,
	}
	return translate.mul(rot).mul(scale)
}

func isGLTFIdentity(m [16]float64) bool {
	return m == [16]float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}
