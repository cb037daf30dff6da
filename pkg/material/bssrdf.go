package material

import (
	"math"

	"github.com/df07/go-path-integrator/pkg/core"
)

// profileCDFMax is the fraction of the radial profile kept inside the
// sampling radius; radii are drawn from the truncated profile
const profileCDFMax = 0.999

// profileRadiusMax is where the normalized exponential profile reaches
// profileCDFMax, in units of 1/sigma
var profileRadiusMax = solveProfileCDF(profileCDFMax)

// maxProbeHits bounds the number of surface crossings collected per probe
const maxProbeHits = 16

// SeparableBSSRDF models subsurface transport as a product of a Fresnel
// term at the entry point, a radial profile Sp(r) = R σ² e^{-σr} / 2π over
// the distance between entry and exit, and a diffuse exit lobe.
type SeparableBSSRDF struct {
	po          *SurfaceInteraction
	ns, ss, ts  core.Vec3
	eta         float64
	material    Material
	sigma       core.Vec3 // Extinction per channel, inverse mean free path
	reflectance core.Vec3 // Total diffuse reflectance R per channel
}

func (s *SeparableBSSRDF) init(po *SurfaceInteraction, eta float64, m Material, sigma, reflectance core.Vec3) {
	s.po = po
	s.ns = po.ShadingNormal
	s.ss, s.ts = core.CoordinateSystem(s.ns)
	s.eta = eta
	s.material = m
	s.sigma = sigma
	s.reflectance = reflectance
}

// Sr evaluates the radial profile at distance r for every channel
func (s *SeparableBSSRDF) Sr(r float64) core.Vec3 {
	eval := func(sigma, refl float64) float64 {
		if sigma <= 0 {
			return 0
		}
		return refl * sigma * sigma * math.Exp(-sigma*r) / (2 * math.Pi)
	}
	return core.NewVec3(
		eval(s.sigma.X, s.reflectance.X),
		eval(s.sigma.Y, s.reflectance.Y),
		eval(s.sigma.Z, s.reflectance.Z),
	)
}

// SampleS implements BSSRDF. u1 picks the projection axis, the color
// channel and finally one of the probe hits; u2 picks radius and angle.
func (s *SeparableBSSRDF) SampleS(scene Intersector, u1 float64, u2 core.Vec2, arena *Arena) (core.Vec3, *SurfaceInteraction, float64) {
	// Probe axis: half the time along the normal, otherwise a tangent
	var vx, vy, vz core.Vec3
	switch {
	case u1 < 0.5:
		vx, vy, vz = s.ss, s.ts, s.ns
		u1 *= 2
	case u1 < 0.75:
		vx, vy, vz = s.ts, s.ns, s.ss
		u1 = (u1 - 0.5) * 4
	default:
		vx, vy, vz = s.ns, s.ss, s.ts
		u1 = (u1 - 0.75) * 4
	}

	// Channel
	ch := min(int(u1*3), 2)
	u1 = min(u1*3-float64(ch), core.OneMinusEpsilon)
	sigma := s.sigma.Component(ch)
	if sigma <= 0 {
		return core.Vec3{}, nil, 0
	}

	r := solveProfileCDF(u2.X*profileCDFMax) / sigma
	rMax := profileRadiusMax / sigma
	if r < 0 || r >= rMax {
		return core.Vec3{}, nil, 0
	}
	phi := 2 * math.Pi * u2.Y

	// Probe segment through the sphere of radius rMax around po
	l := 2 * math.Sqrt(rMax*rMax-r*r)
	base := s.po.Point.Add(vx.Multiply(r * math.Cos(phi)).Add(vy.Multiply(r * math.Sin(phi))))
	start := base.Subtract(vz.Multiply(l / 2))
	target := start.Add(vz.Multiply(l))

	var hits [maxProbeHits]*SurfaceInteraction
	found := 0
	origin := start
	for found < maxProbeHits {
		ray := core.NewSegment(origin, target.Subtract(origin), 1)
		hit := arena.NewInteraction()
		if !scene.Intersect(ray, hit) {
			break
		}
		if hit.Material == s.material {
			hits[found] = hit
			found++
		}
		origin = hit.OffsetOrigin(target.Subtract(hit.Point))
		if target.Subtract(origin).Dot(vz) <= 0 {
			break
		}
	}
	if found == 0 {
		return core.Vec3{}, nil, 0
	}

	pick := min(int(u1*float64(found)), found-1)
	pi := hits[pick]
	pdf := s.pdfSp(pi) / float64(found)
	sp := s.Sr(s.po.Point.Subtract(pi.Point).Length())
	if sp.IsBlack() || pdf == 0 {
		return core.Vec3{}, nil, 0
	}

	bsdf := arena.NewBSDF(pi, 1)
	bsdf.Add(BSSRDFAdapter{eta: s.eta})
	pi.BSDF = bsdf
	pi.BSSRDF = nil
	pi.Wo = pi.ShadingNormal
	return sp, pi, pdf
}

// pdfSp is the combined area density of choosing pi over every axis and channel
func (s *SeparableBSSRDF) pdfSp(pi *SurfaceInteraction) float64 {
	d := s.po.Point.Subtract(pi.Point)
	dLocal := core.NewVec3(s.ss.Dot(d), s.ts.Dot(d), s.ns.Dot(d))
	nLocal := core.NewVec3(s.ss.Dot(pi.ShadingNormal), s.ts.Dot(pi.ShadingNormal), s.ns.Dot(pi.ShadingNormal))

	rProj := [3]float64{
		math.Sqrt(dLocal.Y*dLocal.Y + dLocal.Z*dLocal.Z),
		math.Sqrt(dLocal.Z*dLocal.Z + dLocal.X*dLocal.X),
		math.Sqrt(dLocal.X*dLocal.X + dLocal.Y*dLocal.Y),
	}
	axisProb := [3]float64{0.25, 0.25, 0.5}
	const chProb = 1.0 / 3

	pdf := 0.0
	for axis := 0; axis < 3; axis++ {
		for ch := 0; ch < 3; ch++ {
			pdf += s.pdfSr(ch, rProj[axis]) * math.Abs(nLocal.Component(axis)) * chProb * axisProb[axis]
		}
	}
	return pdf
}

// pdfSr is the planar density of the truncated profile for one channel
func (s *SeparableBSSRDF) pdfSr(ch int, r float64) float64 {
	sigma := s.sigma.Component(ch)
	if sigma <= 0 || r >= profileRadiusMax/sigma {
		return 0
	}
	return sigma * sigma * math.Exp(-sigma*r) / (2 * math.Pi * profileCDFMax)
}

// BSSRDFAdapter is the diffuse exit lobe of a SeparableBSSRDF
type BSSRDFAdapter struct {
	eta float64
}

func (a BSSRDFAdapter) Type() BxDFType { return BSDFReflection | BSDFDiffuse }

// F is the normalized Fresnel transmittance into the exit direction
func (a BSSRDFAdapter) F(wo, wi core.Vec3) core.Vec3 {
	c := 1 - 2*FresnelMoment1(1/a.eta)
	return core.Gray((1 - FrDielectric(cosTheta(wi), 1, a.eta)) / (c * math.Pi))
}

func (a BSSRDFAdapter) SampleF(wo core.Vec3, u core.Vec2) (core.Vec3, core.Vec3, float64, BxDFType) {
	wi := core.CosineSampleHemisphere(u)
	if wo.Z < 0 {
		wi.Z = -wi.Z
	}
	return wi, a.F(wo, wi), a.Pdf(wo, wi), a.Type()
}

func (a BSSRDFAdapter) Pdf(wo, wi core.Vec3) float64 {
	if !sameHemisphere(wo, wi) {
		return 0
	}
	return core.CosineHemispherePDF(absCosTheta(wi))
}

// profileCDF is the CDF of the radial density x e^{-x} with σ = 1
func profileCDF(x float64) float64 {
	return 1 - (1+x)*math.Exp(-x)
}

// solveProfileCDF inverts profileCDF with safeguarded Newton iterations
func solveProfileCDF(u float64) float64 {
	lo, hi := 0.0, 50.0
	x := 1.0
	for i := 0; i < 64; i++ {
		f := profileCDF(x) - u
		if math.Abs(f) < 1e-12 {
			break
		}
		if f < 0 {
			lo = x
		} else {
			hi = x
		}
		next := x - f/(x*math.Exp(-x))
		if next <= lo || next >= hi || math.IsNaN(next) {
			next = (lo + hi) / 2
		}
		x = next
	}
	return x
}
