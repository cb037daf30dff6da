package material

import (
	"github.com/df07/go-path-integrator/pkg/core"
)

// Subsurface is a translucent dielectric whose interior scatters light so it
// leaves at a different point than it entered
type Subsurface struct {
	Eta          float64
	Albedo       core.Vec3 // Total diffuse reflectance of the medium
	MeanFreePath core.Vec3 // Average distance light travels inside, per channel
	Scale        float64   // Scene units per mean free path unit
}

// NewSubsurface creates a subsurface material
func NewSubsurface(eta float64, albedo, meanFreePath core.Vec3) *Subsurface {
	return &Subsurface{Eta: eta, Albedo: albedo, MeanFreePath: meanFreePath, Scale: 1}
}

// Sigma returns the per-channel extinction, the inverse of the scaled mean free path
func (m *Subsurface) Sigma() core.Vec3 {
	inv := func(d float64) float64 {
		if d <= 0 {
			return 0
		}
		return 1 / (d * m.Scale)
	}
	return core.NewVec3(inv(m.MeanFreePath.X), inv(m.MeanFreePath.Y), inv(m.MeanFreePath.Z))
}

// ComputeScatteringFunctions implements Material. The boundary itself is a
// smooth dielectric; light that transmits through it continues through the BSSRDF.
func (m *Subsurface) ComputeScatteringFunctions(si *SurfaceInteraction, arena *Arena, mode TransportMode, allowMultipleLobes bool) {
	bsdf := arena.NewBSDF(si, m.Eta)
	addSpecularLobes(bsdf, core.Gray(1), core.Gray(1), m.Eta, mode, allowMultipleLobes)
	si.BSDF = bsdf
	si.BSSRDF = arena.NewSeparableBSSRDF(si, m.Eta, m, m.Sigma(), m.Albedo.Clamp(0, 1))
}
