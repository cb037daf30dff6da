package material

import (
	"math"

	"github.com/df07/go-path-integrator/pkg/core"
)

// LambertianReflection scatters equally in all directions of the hemisphere
type LambertianReflection struct {
	R core.Vec3
}

func (l LambertianReflection) Type() BxDFType { return BSDFReflection | BSDFDiffuse }

// F is constant: albedo / π
func (l LambertianReflection) F(wo, wi core.Vec3) core.Vec3 {
	return l.R.Multiply(1 / math.Pi)
}

// SampleF draws a cosine-weighted direction on wo's side of the surface
func (l LambertianReflection) SampleF(wo core.Vec3, u core.Vec2) (core.Vec3, core.Vec3, float64, BxDFType) {
	wi := core.CosineSampleHemisphere(u)
	if wo.Z < 0 {
		wi.Z = -wi.Z
	}
	return wi, l.F(wo, wi), l.Pdf(wo, wi), l.Type()
}

func (l LambertianReflection) Pdf(wo, wi core.Vec3) float64 {
	if !sameHemisphere(wo, wi) {
		return 0
	}
	return core.CosineHemispherePDF(absCosTheta(wi))
}

// SpecularReflection is a perfect mirror lobe scaled by a Fresnel term
type SpecularReflection struct {
	R       core.Vec3
	Fresnel Fresnel
}

func (s SpecularReflection) Type() BxDFType { return BSDFReflection | BSDFSpecular }

// F is zero for every direction pair; only SampleF can produce the mirror direction
func (s SpecularReflection) F(wo, wi core.Vec3) core.Vec3 { return core.Vec3{} }

func (s SpecularReflection) SampleF(wo core.Vec3, u core.Vec2) (core.Vec3, core.Vec3, float64, BxDFType) {
	wi := core.NewVec3(-wo.X, -wo.Y, wo.Z)
	cos := absCosTheta(wi)
	if cos == 0 {
		return wi, core.Vec3{}, 0, s.Type()
	}
	f := s.Fresnel.Evaluate(cosTheta(wi)).MultiplyVec(s.R).Multiply(1 / cos)
	return wi, f, 1, s.Type()
}

func (s SpecularReflection) Pdf(wo, wi core.Vec3) float64 { return 0 }

// SpecularTransmission refracts through a dielectric boundary. EtaA is the
// index above the surface (+Z side), EtaB below.
type SpecularTransmission struct {
	T          core.Vec3
	EtaA, EtaB float64
	Mode       TransportMode
}

func (s SpecularTransmission) Type() BxDFType { return BSDFTransmission | BSDFSpecular }

func (s SpecularTransmission) F(wo, wi core.Vec3) core.Vec3 { return core.Vec3{} }

func (s SpecularTransmission) SampleF(wo core.Vec3, u core.Vec2) (core.Vec3, core.Vec3, float64, BxDFType) {
	etaI, etaT := s.EtaA, s.EtaB
	n := core.NewVec3(0, 0, 1)
	if cosTheta(wo) <= 0 {
		etaI, etaT = etaT, etaI
		n = n.Negate()
	}
	wi, ok := refract(wo, n, etaI/etaT)
	if !ok {
		return core.Vec3{}, core.Vec3{}, 0, s.Type()
	}
	ft := s.T.Multiply(1 - FrDielectric(cosTheta(wi), s.EtaA, s.EtaB))
	if s.Mode == Radiance {
		ft = ft.Multiply((etaI * etaI) / (etaT * etaT))
	}
	return wi, ft.Multiply(1 / absCosTheta(wi)), 1, s.Type()
}

func (s SpecularTransmission) Pdf(wo, wi core.Vec3) float64 { return 0 }

// FresnelSpecular chooses between mirror reflection and refraction in
// proportion to the Fresnel reflectance
type FresnelSpecular struct {
	R, T       core.Vec3
	EtaA, EtaB float64
	Mode       TransportMode
}

func (s FresnelSpecular) Type() BxDFType {
	return BSDFReflection | BSDFTransmission | BSDFSpecular
}

func (s FresnelSpecular) F(wo, wi core.Vec3) core.Vec3 { return core.Vec3{} }

func (s FresnelSpecular) SampleF(wo core.Vec3, u core.Vec2) (core.Vec3, core.Vec3, float64, BxDFType) {
	fr := FrDielectric(cosTheta(wo), s.EtaA, s.EtaB)
	if u.X < fr {
		wi := core.NewVec3(-wo.X, -wo.Y, wo.Z)
		f := s.R.Multiply(fr / absCosTheta(wi))
		return wi, f, fr, BSDFReflection | BSDFSpecular
	}

	etaI, etaT := s.EtaA, s.EtaB
	n := core.NewVec3(0, 0, 1)
	if cosTheta(wo) <= 0 {
		etaI, etaT = etaT, etaI
		n = n.Negate()
	}
	wi, ok := refract(wo, n, etaI/etaT)
	if !ok {
		return core.Vec3{}, core.Vec3{}, 0, BSDFTransmission | BSDFSpecular
	}
	ft := s.T.Multiply(1 - fr)
	if s.Mode == Radiance {
		ft = ft.Multiply((etaI * etaI) / (etaT * etaT))
	}
	return wi, ft.Multiply(1 / absCosTheta(wi)), 1 - fr, BSDFTransmission | BSDFSpecular
}

func (s FresnelSpecular) Pdf(wo, wi core.Vec3) float64 { return 0 }
