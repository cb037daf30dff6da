package material

import (
	"github.com/df07/go-path-integrator/pkg/core"
)

// Dielectric represents a transparent material like glass that can both reflect and refract
type Dielectric struct {
	RefractiveIndex float64   // Index of refraction (e.g., 1.5 for glass)
	Reflectance     core.Vec3 // Tint of the reflected part
	Transmittance   core.Vec3 // Tint of the refracted part
}

// NewDielectric creates a new clear dielectric material
func NewDielectric(refractiveIndex float64) *Dielectric {
	return &Dielectric{
		RefractiveIndex: refractiveIndex,
		Reflectance:     core.Gray(1),
		Transmittance:   core.Gray(1),
	}
}

// ComputeScatteringFunctions implements Material. With multiple lobes allowed
// the Fresnel split is a single stochastic lobe; otherwise reflection and
// transmission are separate lobes, which the Whitted integrator needs.
func (d *Dielectric) ComputeScatteringFunctions(si *SurfaceInteraction, arena *Arena, mode TransportMode, allowMultipleLobes bool) {
	bsdf := arena.NewBSDF(si, d.RefractiveIndex)
	addSpecularLobes(bsdf, d.Reflectance, d.Transmittance, d.RefractiveIndex, mode, allowMultipleLobes)
	si.BSDF = bsdf
}

func addSpecularLobes(bsdf *BSDF, r, t core.Vec3, eta float64, mode TransportMode, allowMultipleLobes bool) {
	if r.IsBlack() && t.IsBlack() {
		return
	}
	if allowMultipleLobes {
		bsdf.Add(FresnelSpecular{R: r, T: t, EtaA: 1, EtaB: eta, Mode: mode})
		return
	}
	if !r.IsBlack() {
		bsdf.Add(SpecularReflection{R: r, Fresnel: FresnelDielectric{EtaI: 1, EtaT: eta}})
	}
	if !t.IsBlack() {
		bsdf.Add(SpecularTransmission{T: t, EtaA: 1, EtaB: eta, Mode: mode})
	}
}
