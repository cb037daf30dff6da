package material

import (
	"math"

	"github.com/df07/go-path-integrator/pkg/core"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo ColorSource // Base color/reflectance (can be solid or textured)
}

// NewLambertian creates a new lambertian material with solid color
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{Albedo: NewSolidColor(albedo)}
}

// NewTexturedLambertian creates a new lambertian material with texture
func NewTexturedLambertian(albedoTexture ColorSource) *Lambertian {
	return &Lambertian{Albedo: albedoTexture}
}

// ComputeScatteringFunctions implements Material. A black albedo leaves the
// BSDF without lobes, so the surface absorbs everything.
func (l *Lambertian) ComputeScatteringFunctions(si *SurfaceInteraction, arena *Arena, mode TransportMode, allowMultipleLobes bool) {
	bsdf := arena.NewBSDF(si, 1)
	albedo := l.Albedo.Evaluate(si.UV, si.Point).Clamp(0, math.Inf(1))
	if !albedo.IsBlack() {
		bsdf.Add(LambertianReflection{R: albedo})
	}
	si.BSDF = bsdf
}
