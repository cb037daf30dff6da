package lights

import (
	"math"

	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/geometry"
	"github.com/df07/go-path-integrator/pkg/material"
)

// QuadLight represents a rectangular diffuse area light. It emits on the
// side its normal U × V points to unless TwoSided is set.
type QuadLight struct {
	*geometry.Quad // Embed quad for hit testing
	Emission       core.Vec3
	TwoSided       bool
}

// NewQuadLight creates a new rectangular light and attaches it to its quad
func NewQuadLight(corner, u, v core.Vec3, emission core.Vec3, mat material.Material) *QuadLight {
	ql := &QuadLight{
		Quad:     geometry.NewQuad(corner, u, v, mat),
		Emission: emission,
	}
	ql.Quad.SetAreaLight(ql)
	return ql
}

func (ql *QuadLight) Type() LightType {
	return LightTypeArea
}

// L returns the emitted radiance leaving si in direction w
func (ql *QuadLight) L(si *material.SurfaceInteraction, w core.Vec3) core.Vec3 {
	return diffuseEmission(ql.Emission, ql.TwoSided, si.Normal, w)
}

// SampleLi picks a point uniformly over the quad's area
func (ql *QuadLight) SampleLi(ref *material.SurfaceInteraction, u core.Vec2) LightSample {
	point := ql.PointAt(u)
	toLight := point.Subtract(ref.Point)
	dist2 := toLight.LengthSquared()
	if dist2 == 0 {
		return LightSample{}
	}
	wi := toLight.Normalize()
	cos := math.Abs(ql.Quad.Normal.Dot(wi))
	if cos < 1e-12 {
		return LightSample{}
	}

	return LightSample{
		Wi:       wi,
		PDF:      dist2 / (cos * ql.Area()),
		Radiance: diffuseEmission(ql.Emission, ql.TwoSided, ql.Quad.Normal, wi.Negate()),
		Vis:      VisibilityTester{From: ref, To: point},
	}
}

// PdfLi converts the uniform area density to solid angle along wi
func (ql *QuadLight) PdfLi(ref *material.SurfaceInteraction, wi core.Vec3) float64 {
	var hit material.SurfaceInteraction
	ray := core.NewRay(ref.Point, wi)
	if !ql.Quad.Hit(ray, 0, math.Inf(1), &hit) {
		return 0
	}
	cos := math.Abs(ql.Quad.Normal.Dot(wi.Normalize()))
	if cos < 1e-12 {
		return 0
	}
	dist2 := hit.Point.Subtract(ref.Point).LengthSquared()
	return dist2 / (cos * ql.Area())
}

// Le is zero; area lights are found by intersecting their shape
func (ql *QuadLight) Le(ray core.Ray) core.Vec3 {
	return core.Vec3{}
}

// Power is the emitted flux of a Lambertian emitter over the surface
func (ql *QuadLight) Power() core.Vec3 {
	sides := 1.0
	if ql.TwoSided {
		sides = 2
	}
	return ql.Emission.Multiply(sides * ql.Area() * math.Pi)
}
