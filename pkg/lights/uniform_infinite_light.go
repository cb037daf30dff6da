package lights

import (
	"math"

	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/material"
)

// UniformInfiniteLight represents a uniform infinite area light (constant emission in all directions)
type UniformInfiniteLight struct {
	emission    core.Vec3
	worldCenter core.Vec3 // Finite scene center from BVH
	worldRadius float64   // Finite scene radius from BVH
}

// NewUniformInfiniteLight creates a new uniform infinite light
func NewUniformInfiniteLight(emission core.Vec3) *UniformInfiniteLight {
	return &UniformInfiniteLight{emission: emission}
}

func (uil *UniformInfiniteLight) Type() LightType {
	return LightTypeInfinite
}

// SampleLi samples a direction toward the environment
func (uil *UniformInfiniteLight) SampleLi(ref *material.SurfaceInteraction, u core.Vec2) LightSample {
	wi, pdf := sampleEnvironmentDirection(ref, u)
	if pdf == 0 {
		return LightSample{}
	}
	return LightSample{
		Wi:       wi,
		PDF:      pdf,
		Radiance: uil.emission,
		Vis:      environmentVisibility(ref, wi, uil.worldCenter, uil.worldRadius),
	}
}

func (uil *UniformInfiniteLight) PdfLi(ref *material.SurfaceInteraction, wi core.Vec3) float64 {
	return environmentDirectionPDF(ref, wi)
}

// Le returns the constant emission for every escaping ray
func (uil *UniformInfiniteLight) Le(ray core.Ray) core.Vec3 {
	return uil.emission
}

// Power is the flux through the disk that the scene presents to the environment
func (uil *UniformInfiniteLight) Power() core.Vec3 {
	return uil.emission.Multiply(math.Pi * uil.worldRadius * uil.worldRadius)
}

// Preprocess implements the Preprocessor interface - sets world bounds from scene
func (uil *UniformInfiniteLight) Preprocess(worldCenter core.Vec3, worldRadius float64) error {
	uil.worldCenter = worldCenter
	uil.worldRadius = worldRadius
	return nil
}

// sampleEnvironmentDirection draws a cosine-weighted direction around the
// shading normal on the side ref is viewed from. Without a normal, as when
// estimating light contributions at arbitrary points, it samples the sphere.
func sampleEnvironmentDirection(ref *material.SurfaceInteraction, u core.Vec2) (core.Vec3, float64) {
	n, ok := environmentNormal(ref)
	if !ok {
		return core.SampleOnUnitSphere(u), core.UniformSpherePDF()
	}
	wi := core.SampleCosineHemisphere(n, u)
	return wi, core.CosineHemispherePDF(max(0, wi.Dot(n)))
}

func environmentDirectionPDF(ref *material.SurfaceInteraction, wi core.Vec3) float64 {
	n, ok := environmentNormal(ref)
	if !ok {
		return core.UniformSpherePDF()
	}
	cos := wi.Normalize().Dot(n)
	if cos <= 0 {
		return 0
	}
	return core.CosineHemispherePDF(cos)
}

func environmentNormal(ref *material.SurfaceInteraction) (core.Vec3, bool) {
	if ref.ShadingNormal.IsBlack() {
		return core.Vec3{}, false
	}
	if ref.Wo.IsBlack() {
		return ref.ShadingNormal, true
	}
	return ref.ShadingNormal.FaceForward(ref.Wo), true
}

// environmentVisibility tests a segment long enough to leave the scene bounds
func environmentVisibility(ref *material.SurfaceInteraction, wi, worldCenter core.Vec3, worldRadius float64) VisibilityTester {
	far := 2 * (worldRadius + ref.Point.Subtract(worldCenter).Length() + 1)
	return VisibilityTester{From: ref, To: ref.Point.Add(wi.Multiply(far))}
}
