package broadphase

import (
	"math"

	"github.com/golang/geo/r3"
)

// RotationMatrix is a row-major 3x3 rotation matrix.
type RotationMatrix [3][3]float64

// IdentityRotation is the no-rotation matrix.
var IdentityRotation = RotationMatrix{
	{1, 0, 0},
	{0, 1, 0},
	{0, 0, 1},
}

// IsIdentity reports whether r is (numerically) the identity rotation. Grid
// traversal takes a cheaper axis-aligned path when this holds.
func (r RotationMatrix) IsIdentity() bool {
	const eps = 1e-12
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(r[i][j]-want) > eps {
				return false
			}
		}
	}
	return true
}

// Row returns row i of the matrix as a vector.
func (r RotationMatrix) Row(i int) r3.Vector {
	return r3.Vector{X: r[i][0], Y: r[i][1], Z: r[i][2]}
}

// Apply rotates v by r.
func (r RotationMatrix) Apply(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: r[0][0]*v.X + r[0][1]*v.Y + r[0][2]*v.Z,
		Y: r[1][0]*v.X + r[1][1]*v.Y + r[1][2]*v.Z,
		Z: r[2][0]*v.X + r[2][1]*v.Y + r[2][2]*v.Z,
	}
}

// Pose is a rigid transform: rotation followed by translation.
type Pose struct {
	Translation r3.Vector
	Rotation    RotationMatrix
}

// IdentityPose is the zero transform.
var IdentityPose = Pose{Rotation: IdentityRotation}

// IsIdentityRotation reports whether p's rotation component is identity,
// gating the fast axis-aligned grid-traversal path.
func (p Pose) IsIdentityRotation() bool {
	return p.Rotation.IsIdentity()
}

// TransformAABB translates b by p's translation and ignores p's rotation,
// so the result encloses the transformed box only when the rotation is
// identity; an AABB cannot represent a rotated box exactly (see obb.go for
// the oriented case).
func (p Pose) TransformAABB(b AABB) AABB {
	return b.Translated(p.Translation)
}
