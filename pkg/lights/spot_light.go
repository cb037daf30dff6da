package lights

import (
	"math"

	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/material"
)

// SpotLight is a point light restricted to a cone. Intensity is full inside
// the inner cone and falls off smoothly to zero at the outer edge.
type SpotLight struct {
	Position        core.Vec3
	Direction       core.Vec3 // Unit axis of the cone
	Intensity       core.Vec3
	cosTotalWidth   float64 // Cosine of the outer cone angle
	cosFalloffStart float64 // Cosine of the angle where falloff begins
}

// NewSpotLight aims a spot light from "from" at "to". coneAngle is the
// outer half-angle and coneDelta the width of the falloff band, in degrees.
func NewSpotLight(from, to, intensity core.Vec3, coneAngle, coneDelta float64) *SpotLight {
	return &SpotLight{
		Position:        from,
		Direction:       to.Subtract(from).Normalize(),
		Intensity:       intensity,
		cosTotalWidth:   math.Cos(coneAngle * math.Pi / 180),
		cosFalloffStart: math.Cos((coneAngle - coneDelta) * math.Pi / 180),
	}
}

func (sl *SpotLight) Type() LightType {
	return LightTypePoint
}

// falloff scales the intensity for a direction leaving the light
func (sl *SpotLight) falloff(w core.Vec3) float64 {
	cosTheta := sl.Direction.Dot(w)
	switch {
	case cosTheta < sl.cosTotalWidth:
		return 0
	case cosTheta >= sl.cosFalloffStart:
		return 1
	}
	delta := (cosTheta - sl.cosTotalWidth) / (sl.cosFalloffStart - sl.cosTotalWidth)
	return (delta * delta) * (delta * delta)
}

// SampleLi returns the only direction that reaches the light
func (sl *SpotLight) SampleLi(ref *material.SurfaceInteraction, u core.Vec2) LightSample {
	toLight := sl.Position.Subtract(ref.Point)
	dist2 := toLight.LengthSquared()
	if dist2 == 0 {
		return LightSample{}
	}
	wi := toLight.Normalize()
	return LightSample{
		Wi:       wi,
		PDF:      1,
		Radiance: sl.Intensity.Multiply(sl.falloff(wi.Negate()) / dist2),
		Vis:      VisibilityTester{From: ref, To: sl.Position},
	}
}

func (sl *SpotLight) PdfLi(ref *material.SurfaceInteraction, wi core.Vec3) float64 {
	return 0
}

func (sl *SpotLight) Le(ray core.Ray) core.Vec3 {
	return core.Vec3{}
}

// Power approximates the falloff band as half of full intensity
func (sl *SpotLight) Power() core.Vec3 {
	return sl.Intensity.Multiply(2 * math.Pi * (1 - 0.5*(sl.cosFalloffStart+sl.cosTotalWidth)))
}
