package material

import (
	"math"

	"github.com/df07/go-path-integrator/pkg/core"
)

// BxDFType flags describe the lobe a BxDF or a sample belongs to
type BxDFType int

const (
	BSDFReflection BxDFType = 1 << iota
	BSDFTransmission
	BSDFDiffuse
	BSDFGlossy
	BSDFSpecular

	BSDFAll = BSDFReflection | BSDFTransmission | BSDFDiffuse | BSDFGlossy | BSDFSpecular
)

// Matches reports whether every bit of t is contained in flags
func (t BxDFType) Matches(flags BxDFType) bool {
	return t&flags == t
}

// BxDF is a single scattering lobe expressed in the local shading frame,
// where the shading normal is +Z
type BxDF interface {
	Type() BxDFType
	F(wo, wi core.Vec3) core.Vec3
	SampleF(wo core.Vec3, u core.Vec2) (wi core.Vec3, f core.Vec3, pdf float64, sampled BxDFType)
	Pdf(wo, wi core.Vec3) float64
}

// MaxBxDFs is the number of lobes a single BSDF can hold
const MaxBxDFs = 8

// BSDF combines BxDFs in a shading frame built around the interaction's
// shading normal. It implements Response.
type BSDF struct {
	eta    float64
	ns, ng core.Vec3
	ss, ts core.Vec3
	bxdfs  [MaxBxDFs]BxDF
	count  int
}

// Init sets up the shading frame at si. eta is 1 for opaque surfaces.
func (b *BSDF) Init(si *SurfaceInteraction, eta float64) {
	b.eta = eta
	b.ns = si.ShadingNormal
	b.ng = si.Normal
	b.ss, b.ts = core.CoordinateSystem(b.ns)
	b.count = 0
}

// Add appends a lobe; lobes past MaxBxDFs are dropped
func (b *BSDF) Add(x BxDF) {
	if b.count == MaxBxDFs {
		return
	}
	b.bxdfs[b.count] = x
	b.count++
}

// Eta returns the relative index of refraction
func (b *BSDF) Eta() float64 {
	return b.eta
}

// NumComponents counts lobes matching flags
func (b *BSDF) NumComponents(flags BxDFType) int {
	n := 0
	for i := 0; i < b.count; i++ {
		if b.bxdfs[i].Type().Matches(flags) {
			n++
		}
	}
	return n
}

// HasNonSpecular reports whether any lobe is non-delta
func (b *BSDF) HasNonSpecular() bool {
	return b.NumComponents(BSDFAll&^BSDFSpecular) > 0
}

func (b *BSDF) worldToLocal(v core.Vec3) core.Vec3 {
	return core.NewVec3(v.Dot(b.ss), v.Dot(b.ts), v.Dot(b.ns))
}

func (b *BSDF) localToWorld(v core.Vec3) core.Vec3 {
	return b.ss.Multiply(v.X).Add(b.ts.Multiply(v.Y)).Add(b.ns.Multiply(v.Z))
}

// Evaluate sums every lobe on the side of the surface wi lies on
func (b *BSDF) Evaluate(woW, wiW core.Vec3) core.Vec3 {
	return b.evaluate(woW, wiW, BSDFAll)
}

func (b *BSDF) evaluate(woW, wiW core.Vec3, flags BxDFType) core.Vec3 {
	wo, wi := b.worldToLocal(woW), b.worldToLocal(wiW)
	if wo.Z == 0 {
		return core.Vec3{}
	}
	reflect := wiW.Dot(b.ng)*woW.Dot(b.ng) > 0

	var f core.Vec3
	for i := 0; i < b.count; i++ {
		t := b.bxdfs[i].Type()
		if !t.Matches(flags) {
			continue
		}
		if (reflect && t&BSDFReflection != 0) || (!reflect && t&BSDFTransmission != 0) {
			f = f.Add(b.bxdfs[i].F(wo, wi))
		}
	}
	return f
}

// PDF averages the lobe densities; delta lobes contribute zero
func (b *BSDF) PDF(woW, wiW core.Vec3) float64 {
	if b.count == 0 {
		return 0
	}
	wo, wi := b.worldToLocal(woW), b.worldToLocal(wiW)
	if wo.Z == 0 {
		return 0
	}
	pdf := 0.0
	matching := 0
	for i := 0; i < b.count; i++ {
		matching++
		pdf += b.bxdfs[i].Pdf(wo, wi)
	}
	return pdf / float64(matching)
}

// Sample picks one lobe uniformly and samples it
func (b *BSDF) Sample(wo core.Vec3, u core.Vec2) ScatterSample {
	return b.SampleMatching(wo, u, BSDFAll)
}

// SampleMatching samples among the lobes matching flags. The returned value
// and density account for every matching lobe unless the sampled lobe is specular.
func (b *BSDF) SampleMatching(woW core.Vec3, u core.Vec2, flags BxDFType) ScatterSample {
	matching := b.NumComponents(flags)
	if matching == 0 {
		return ScatterSample{}
	}

	// Choose a lobe with u.X, then stretch u.X back to [0,1)
	comp := min(int(math.Floor(u.X*float64(matching))), matching-1)
	chosen := -1
	count := comp
	for i := 0; i < b.count; i++ {
		if b.bxdfs[i].Type().Matches(flags) {
			if count == 0 {
				chosen = i
				break
			}
			count--
		}
	}
	bxdf := b.bxdfs[chosen]
	uRemapped := core.NewVec2(min(u.X*float64(matching)-float64(comp), core.OneMinusEpsilon), u.Y)

	wo := b.worldToLocal(woW)
	if wo.Z == 0 {
		return ScatterSample{}
	}
	wi, f, pdf, sampled := bxdf.SampleF(wo, uRemapped)
	if pdf == 0 {
		return ScatterSample{Type: sampled}
	}
	wiW := b.localToWorld(wi)

	if bxdf.Type()&BSDFSpecular == 0 && matching > 1 {
		for i := 0; i < b.count; i++ {
			if i != chosen && b.bxdfs[i].Type().Matches(flags) {
				pdf += b.bxdfs[i].Pdf(wo, wi)
			}
		}
	}
	if matching > 1 {
		pdf /= float64(matching)
	}

	if bxdf.Type()&BSDFSpecular == 0 {
		f = b.evaluate(woW, wiW, flags)
	}
	return ScatterSample{Wi: wiW, F: f, PDF: pdf, Type: sampled}
}

// Local shading frame helpers
func cosTheta(w core.Vec3) float64    { return w.Z }
func absCosTheta(w core.Vec3) float64 { return math.Abs(w.Z) }

func sameHemisphere(w, wp core.Vec3) bool {
	return w.Z*wp.Z > 0
}
