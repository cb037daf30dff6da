package lights

import (
	"math"

	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/geometry"
	"github.com/df07/go-path-integrator/pkg/material"
)

// SphereLight represents a spherical diffuse area light
type SphereLight struct {
	*geometry.Sphere // Embed sphere for hit testing
	Emission         core.Vec3
	TwoSided         bool
}

// NewSphereLight creates a new spherical light and attaches it to its sphere.
// The sphere may carry a material so it also reflects light.
func NewSphereLight(center core.Vec3, radius float64, emission core.Vec3, mat material.Material) *SphereLight {
	sl := &SphereLight{
		Sphere:   geometry.NewSphere(center, radius, mat),
		Emission: emission,
	}
	sl.Sphere.SetAreaLight(sl)
	return sl
}

func (sl *SphereLight) Type() LightType {
	return LightTypeArea
}

// L returns the emitted radiance leaving si in direction w
func (sl *SphereLight) L(si *material.SurfaceInteraction, w core.Vec3) core.Vec3 {
	return diffuseEmission(sl.Emission, sl.TwoSided, si.Normal, w)
}

// SampleLi samples the cone the sphere subtends from outside, or the whole
// surface when ref lies inside
func (sl *SphereLight) SampleLi(ref *material.SurfaceInteraction, u core.Vec2) LightSample {
	toCenter := sl.Center.Subtract(ref.Point)
	distanceToCenter := toCenter.Length()

	if distanceToCenter <= sl.Radius {
		return sl.sampleUniform(ref, u)
	}

	sinThetaMax := sl.Radius / distanceToCenter
	cosThetaMax := math.Sqrt(math.Max(0, 1.0-sinThetaMax*sinThetaMax))
	wi := core.SampleCone(toCenter.Multiply(1/distanceToCenter), cosThetaMax, u)

	// Find the visible point on the sphere along wi
	var hit material.SurfaceInteraction
	ray := core.NewRay(ref.Point, wi)
	if !sl.Sphere.Hit(ray, 0, math.Inf(1), &hit) {
		// Grazing directions can miss through rounding; use the tangent point
		t := wi.Dot(toCenter)
		hit.Point = ray.At(t)
		hit.Normal = hit.Point.Subtract(sl.Center).Normalize()
	}

	return LightSample{
		Wi:       wi,
		PDF:      core.UniformConePDF(cosThetaMax),
		Radiance: diffuseEmission(sl.Emission, sl.TwoSided, hit.Normal, wi.Negate()),
		Vis:      VisibilityTester{From: ref, To: hit.Point},
	}
}

// sampleUniform picks a point uniformly on the surface and converts to solid angle
func (sl *SphereLight) sampleUniform(ref *material.SurfaceInteraction, u core.Vec2) LightSample {
	normal := core.SampleOnUnitSphere(u)
	point := sl.Center.Add(normal.Multiply(sl.Radius))

	toLight := point.Subtract(ref.Point)
	dist2 := toLight.LengthSquared()
	if dist2 == 0 {
		return LightSample{}
	}
	wi := toLight.Normalize()
	cos := math.Abs(normal.Dot(wi))
	if cos == 0 {
		return LightSample{}
	}

	return LightSample{
		Wi:       wi,
		PDF:      dist2 / (cos * sl.Area()),
		Radiance: diffuseEmission(sl.Emission, sl.TwoSided, normal, wi.Negate()),
		Vis:      VisibilityTester{From: ref, To: point},
	}
}

// PdfLi returns the solid-angle density of sampling wi from ref
func (sl *SphereLight) PdfLi(ref *material.SurfaceInteraction, wi core.Vec3) float64 {
	toCenter := sl.Center.Subtract(ref.Point)
	distanceToCenter := toCenter.Length()

	var hit material.SurfaceInteraction
	if !sl.Sphere.Hit(core.NewRay(ref.Point, wi), 0, math.Inf(1), &hit) {
		return 0
	}

	if distanceToCenter <= sl.Radius {
		cos := math.Abs(hit.Normal.Dot(wi))
		if cos == 0 {
			return 0
		}
		return hit.T * hit.T * wi.LengthSquared() / (cos * sl.Area())
	}

	sinThetaMax := sl.Radius / distanceToCenter
	cosThetaMax := math.Sqrt(math.Max(0, 1.0-sinThetaMax*sinThetaMax))
	return core.UniformConePDF(cosThetaMax)
}

// Le is zero; area lights are found by intersecting their shape
func (sl *SphereLight) Le(ray core.Ray) core.Vec3 {
	return core.Vec3{}
}

// Power is the emitted flux of a Lambertian emitter over the surface
func (sl *SphereLight) Power() core.Vec3 {
	sides := 1.0
	if sl.TwoSided {
		sides = 2
	}
	return sl.Emission.Multiply(sides * sl.Area() * math.Pi)
}

// diffuseEmission returns emission leaving a surface with normal n in direction w
func diffuseEmission(emission core.Vec3, twoSided bool, n, w core.Vec3) core.Vec3 {
	if !twoSided && n.Dot(w) <= 0 {
		return core.Vec3{}
	}
	return emission
}
