package lights

import (
	"math"

	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/material"
)

// GradientInfiniteLight is a sky that blends from bottomColor straight down
// to topColor straight up
type GradientInfiniteLight struct {
	topColor    core.Vec3
	bottomColor core.Vec3
	worldCenter core.Vec3
	worldRadius float64
}

// NewGradientInfiniteLight creates a new gradient infinite light
func NewGradientInfiniteLight(topColor, bottomColor core.Vec3) *GradientInfiniteLight {
	return &GradientInfiniteLight{topColor: topColor, bottomColor: bottomColor}
}

func (gil *GradientInfiniteLight) Type() LightType {
	return LightTypeInfinite
}

// emissionForDirection maps direction.Y from [-1,1] to a blend factor in [0,1]
func (gil *GradientInfiniteLight) emissionForDirection(direction core.Vec3) core.Vec3 {
	t := 0.5 * (direction.Normalize().Y + 1.0)
	return gil.bottomColor.Multiply(1.0 - t).Add(gil.topColor.Multiply(t))
}

// SampleLi samples a direction toward the sky
func (gil *GradientInfiniteLight) SampleLi(ref *material.SurfaceInteraction, u core.Vec2) LightSample {
	wi, pdf := sampleEnvironmentDirection(ref, u)
	if pdf == 0 {
		return LightSample{}
	}
	return LightSample{
		Wi:       wi,
		PDF:      pdf,
		Radiance: gil.emissionForDirection(wi),
		Vis:      environmentVisibility(ref, wi, gil.worldCenter, gil.worldRadius),
	}
}

func (gil *GradientInfiniteLight) PdfLi(ref *material.SurfaceInteraction, wi core.Vec3) float64 {
	return environmentDirectionPDF(ref, wi)
}

// Le evaluates the gradient in the ray direction
func (gil *GradientInfiniteLight) Le(ray core.Ray) core.Vec3 {
	return gil.emissionForDirection(ray.Direction)
}

// Power uses the average sky color
func (gil *GradientInfiniteLight) Power() core.Vec3 {
	avg := gil.topColor.Add(gil.bottomColor).Multiply(0.5)
	return avg.Multiply(math.Pi * gil.worldRadius * gil.worldRadius)
}

// Preprocess implements the Preprocessor interface - sets world bounds from scene
func (gil *GradientInfiniteLight) Preprocess(worldCenter core.Vec3, worldRadius float64) error {
	gil.worldCenter = worldCenter
	gil.worldRadius = worldRadius
	return nil
}
