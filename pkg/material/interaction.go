package material

import (
	"github.com/df07/go-path-integrator/pkg/core"
)

// RayOffset is how far spawned rays are pushed off the surface to avoid
// re-hitting it
const RayOffset = 1e-4

// ShadowEpsilon shortens shadow segments so they stop short of their target
const ShadowEpsilon = 1e-4

// SurfaceInteraction contains information about a ray-surface intersection.
// Normal is the outward geometric normal; it is not flipped toward the ray.
type SurfaceInteraction struct {
	Point         core.Vec3 // Point of intersection
	Normal        core.Vec3 // Outward geometric normal
	ShadingNormal core.Vec3 // Normal used for shading, same hemisphere as Normal
	Wo            core.Vec3 // Direction back toward the ray origin
	T             float64   // Parameter t along the ray
	FrontFace     bool      // Whether the ray arrived from outside
	UV            core.Vec2 // Surface parameterization

	Material  Material    // nil for non-scattering boundaries
	AreaLight AreaEmitter // nil unless the surface emits

	// Set by ComputeScatteringFunctions, valid for a single bounce
	BSDF   Response
	BSSRDF BSSRDF
}

// SetFaceNormal records the outward normal and which side the ray hit
func (si *SurfaceInteraction) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	si.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	si.Normal = outwardNormal
	si.ShadingNormal = outwardNormal
	si.Wo = ray.Direction.Negate().Normalize()
}

// OffsetOrigin returns the hit point pushed off the surface toward the side w leaves on
func (si *SurfaceInteraction) OffsetOrigin(w core.Vec3) core.Vec3 {
	offset := si.Normal.Multiply(RayOffset)
	if w.Dot(si.Normal) < 0 {
		offset = offset.Negate()
	}
	return si.Point.Add(offset)
}

// SpawnRay starts a new unbounded ray leaving the surface in direction d
func (si *SurfaceInteraction) SpawnRay(d core.Vec3) core.Ray {
	return core.NewRay(si.OffsetOrigin(d), d)
}

// SpawnRayTo starts a segment toward p that stops just short of it
func (si *SurfaceInteraction) SpawnRayTo(p core.Vec3) core.Ray {
	origin := si.OffsetOrigin(p.Subtract(si.Point))
	return core.NewSegment(origin, p.Subtract(origin), 1-ShadowEpsilon)
}

// Le returns emitted radiance leaving the surface in direction w
func (si *SurfaceInteraction) Le(w core.Vec3) core.Vec3 {
	if si.AreaLight == nil {
		return core.Vec3{}
	}
	return si.AreaLight.L(si, w)
}

// ComputeScatteringFunctions builds BSDF and BSSRDF from the material.
// Both stay nil when the surface has no material.
func (si *SurfaceInteraction) ComputeScatteringFunctions(arena *Arena, mode TransportMode, allowMultipleLobes bool) {
	si.BSDF = nil
	si.BSSRDF = nil
	if si.Material == nil {
		return
	}
	si.Material.ComputeScatteringFunctions(si, arena, mode, allowMultipleLobes)
}
