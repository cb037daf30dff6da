package material

import (
	"github.com/df07/go-path-integrator/pkg/core"
)

// Mirror represents a perfectly specular metallic surface
type Mirror struct {
	Albedo core.Vec3 // Tint applied to the reflection
}

// NewMirror creates a new mirror material
func NewMirror(albedo core.Vec3) *Mirror {
	return &Mirror{Albedo: albedo.Clamp(0, 1)}
}

// ComputeScatteringFunctions implements Material
func (m *Mirror) ComputeScatteringFunctions(si *SurfaceInteraction, arena *Arena, mode TransportMode, allowMultipleLobes bool) {
	bsdf := arena.NewBSDF(si, 1)
	if !m.Albedo.IsBlack() {
		bsdf.Add(SpecularReflection{R: m.Albedo, Fresnel: FresnelNoOp{}})
	}
	si.BSDF = bsdf
}
