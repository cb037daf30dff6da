package geometry

import (
	"math"

	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/material"
)

// Quad represents a rectangular surface defined by a corner and two edge vectors.
// The outward normal is U × V.
type Quad struct {
	Corner    core.Vec3 // One corner of the quad
	U         core.Vec3 // First edge vector
	V         core.Vec3 // Second edge vector
	Normal    core.Vec3 // Unit normal (U × V normalized)
	D         float64   // Plane equation constant: normal · p = D
	W         core.Vec3 // Cached cross product for barycentric coordinates
	Material  material.Material
	AreaLight material.AreaEmitter
}

// NewQuad creates a new quad from a corner point and two edge vectors
func NewQuad(corner, u, v core.Vec3, mat material.Material) *Quad {
	cross := u.Cross(v)
	normal := cross.Normalize()

	return &Quad{
		Corner:   corner,
		U:        u,
		V:        v,
		Normal:   normal,
		D:        normal.Dot(corner),
		W:        normal.Multiply(1.0 / normal.Dot(cross)),
		Material: mat,
	}
}

// SetAreaLight attaches an emitter to the quad's surface
func (q *Quad) SetAreaLight(light material.AreaEmitter) {
	q.AreaLight = light
}

// Hit tests if a ray intersects with the quad
func (q *Quad) Hit(ray core.Ray, tMin, tMax float64, si *material.SurfaceInteraction) bool {
	denominator := ray.Direction.Dot(q.Normal)

	// Parallel to the plane
	if math.Abs(denominator) < 1e-12 {
		return false
	}

	t := (q.D - ray.Origin.Dot(q.Normal)) / denominator
	if t <= tMin || t >= tMax {
		return false
	}

	hitPoint := ray.At(t)
	hitVector := hitPoint.Subtract(q.Corner)

	// Barycentric coordinates along U and V
	alpha := q.W.Dot(hitVector.Cross(q.V))
	beta := q.W.Dot(q.U.Cross(hitVector))
	if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
		return false
	}

	*si = material.SurfaceInteraction{
		Point:     hitPoint,
		T:         t,
		UV:        core.NewVec2(alpha, beta),
		Material:  q.Material,
		AreaLight: q.AreaLight,
	}
	si.SetFaceNormal(ray, q.Normal)
	return true
}

// BoundingBox returns the axis-aligned bounding box for this quad, padded so
// axis-aligned quads still have volume
func (q *Quad) BoundingBox() core.AABB {
	return core.NewAABBFromPoints(
		q.Corner,
		q.Corner.Add(q.U),
		q.Corner.Add(q.V),
		q.Corner.Add(q.U).Add(q.V),
	).Expand(1e-4)
}

// Area returns the surface area
func (q *Quad) Area() float64 {
	return q.U.Cross(q.V).Length()
}

// PointAt returns the point at barycentric position uv
func (q *Quad) PointAt(uv core.Vec2) core.Vec3 {
	return q.Corner.Add(q.U.Multiply(uv.X)).Add(q.V.Multiply(uv.Y))
}
