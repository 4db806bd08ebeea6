package broadphase

import "github.com/golang/geo/r3"

// sphereObject is the simplest Object implementation used across tests: a
// named point with a fixed radius, mirroring the two-sphere scenario in
// original_source/test/broadphase_dynamic_AABB_tree.cpp.
type sphereObject struct {
	name   string
	center r3.Vector
	radius float64
	free   bool
}

func newSphere(name string, center r3.Vector, radius float64) *sphereObject {
	return &sphereObject{name: name, center: center, radius: radius}
}

func (s *sphereObject) AABB() AABB {
	r := r3.Vector{X: s.radius, Y: s.radius, Z: s.radius}
	return AABB{Min: s.center.Sub(r), Max: s.center.Add(r)}
}

func (s *sphereObject) Transform() Pose {
	return Pose{Translation: s.center, Rotation: IdentityRotation}
}

func (s *sphereObject) GeometryKind() GeometryKind {
	return GeometryGeneric
}

func (s *sphereObject) IsFree() bool {
	return s.free
}

func (s *sphereObject) moveTo(center r3.Vector) {
	s.center = center
}

// sphereDistance returns the exact surface-to-surface distance between
// two spheres, 0 if they overlap. This is the "narrow phase" a real
// caller would supply to DistanceCallback.
func sphereDistance(a, b *sphereObject) float64 {
	d := a.center.Sub(b.center).Norm() - a.radius - b.radius
	if d < 0 {
		return 0
	}
	return d
}
