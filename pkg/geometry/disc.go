package geometry

import (
	"math"

	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/material"
)

// Disc is a flat circular surface
type Disc struct {
	Center   core.Vec3 // Center of the disc
	Normal   core.Vec3 // Unit normal
	Radius   float64
	Right    core.Vec3 // In-plane axis where u's angle is zero
	Up       core.Vec3 // Normal × Right
	Material material.Material
}

// NewDisc creates a disc facing normal
func NewDisc(center, normal core.Vec3, radius float64, mat material.Material) *Disc {
	n := normal.Normalize()
	right := core.NewVec3(1, 0, 0)
	if math.Abs(n.X) > 0.1 {
		right = core.NewVec3(0, 1, 0)
	}
	right = right.Cross(n).Normalize()
	return &Disc{
		Center:   center,
		Normal:   n,
		Radius:   radius,
		Right:    right,
		Up:       n.Cross(right),
		Material: mat,
	}
}

// Hit intersects the disc's plane and keeps hits within the radius. UV is
// (distance from the center / radius, angle / 2π).
func (d *Disc) Hit(ray core.Ray, tMin, tMax float64, si *material.SurfaceInteraction) bool {
	denom := d.Normal.Dot(ray.Direction)
	if math.Abs(denom) < 1e-12 {
		return false
	}
	t := d.Normal.Dot(d.Center.Subtract(ray.Origin)) / denom
	if t <= tMin || t >= tMax {
		return false
	}
	p := ray.At(t)
	offset := p.Subtract(d.Center)
	dist2 := offset.LengthSquared()
	if dist2 > d.Radius*d.Radius {
		return false
	}

	phi := math.Atan2(offset.Dot(d.Up), offset.Dot(d.Right))
	if phi < 0 {
		phi += 2 * math.Pi
	}
	*si = material.SurfaceInteraction{
		Point:    p,
		T:        t,
		UV:       core.NewVec2(math.Sqrt(dist2)/d.Radius, phi/(2*math.Pi)),
		Material: d.Material,
	}
	si.SetFaceNormal(ray, d.Normal)
	return true
}

// BoundingBox returns the box around the disc's rim, padded for axis-aligned
// discs
func (d *Disc) BoundingBox() core.AABB {
	r := d.Right.Multiply(d.Radius)
	u := d.Up.Multiply(d.Radius)
	return core.NewAABBFromPoints(
		d.Center.Add(r).Add(u),
		d.Center.Add(r).Subtract(u),
		d.Center.Subtract(r).Add(u),
		d.Center.Subtract(r).Subtract(u),
	).Expand(1e-4)
}
