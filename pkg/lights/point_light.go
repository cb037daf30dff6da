package lights

import (
	"math"

	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/material"
)

// PointLight emits uniformly in all directions from a single point
type PointLight struct {
	Position  core.Vec3
	Intensity core.Vec3 // Radiant intensity, falls off with the squared distance
}

// NewPointLight creates a new point light
func NewPointLight(position, intensity core.Vec3) *PointLight {
	return &PointLight{Position: position, Intensity: intensity}
}

func (pl *PointLight) Type() LightType {
	return LightTypePoint
}

// SampleLi returns the only direction that reaches the light
func (pl *PointLight) SampleLi(ref *material.SurfaceInteraction, u core.Vec2) LightSample {
	toLight := pl.Position.Subtract(ref.Point)
	dist2 := toLight.LengthSquared()
	if dist2 == 0 {
		return LightSample{}
	}
	return LightSample{
		Wi:       toLight.Normalize(),
		PDF:      1,
		Radiance: pl.Intensity.Multiply(1 / dist2),
		Vis:      VisibilityTester{From: ref, To: pl.Position},
	}
}

// PdfLi is zero: no direction sampled from elsewhere can hit a point
func (pl *PointLight) PdfLi(ref *material.SurfaceInteraction, wi core.Vec3) float64 {
	return 0
}

// Le is zero; point lights cannot be hit by rays
func (pl *PointLight) Le(ray core.Ray) core.Vec3 {
	return core.Vec3{}
}

// Power integrates the intensity over the sphere of directions
func (pl *PointLight) Power() core.Vec3 {
	return pl.Intensity.Multiply(4 * math.Pi)
}
