package integrator

import (
	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/lights"
	"github.com/df07/go-path-integrator/pkg/material"
	"github.com/df07/go-path-integrator/pkg/scene"
)

// UniformSampleOneLight estimates direct lighting at si from a single light
// picked with distrib. A nil distrib picks uniformly. The estimate is divided
// by the probability of the pick.
func UniformSampleOneLight(si *material.SurfaceInteraction, s *scene.Scene, arena *material.Arena, sampler core.Sampler, handleMIS bool, distrib *core.Distribution1D) core.Vec3 {
	nLights := len(s.Lights)
	if nLights == 0 {
		return core.Vec3{}
	}

	var index int
	var pmf float64
	if distrib != nil && distrib.Count() == nLights {
		index, pmf, _ = distrib.SampleDiscrete(sampler.Get1D())
		if pmf == 0 {
			return core.Vec3{}
		}
	} else {
		index = min(int(sampler.Get1D()*float64(nLights)), nLights-1)
		pmf = 1 / float64(nLights)
	}

	light := s.Lights[index]
	uLight := sampler.Get2D()
	uScattering := sampler.Get2D()
	return EstimateDirect(si, uScattering, light, uLight, s, arena, handleMIS).Multiply(1 / pmf)
}

// EstimateDirect computes the radiance reflected at si toward si.Wo from one
// light sample. With handleMIS it adds a BSDF-sampled estimate and weights
// both with the power heuristic; delta lights only ever use the light sample.
func EstimateDirect(si *material.SurfaceInteraction, uScattering core.Vec2, light lights.Light, uLight core.Vec2, s *scene.Scene, arena *material.Arena, handleMIS bool) core.Vec3 {
	var ld core.Vec3
	bsdf := si.BSDF
	ns := si.ShadingNormal

	ls := light.SampleLi(si, uLight)
	if ls.PDF > 0 && !ls.Radiance.IsBlack() {
		f := bsdf.Evaluate(si.Wo, ls.Wi).Multiply(ls.Wi.AbsDot(ns))
		if !f.IsBlack() && ls.Vis.Unoccluded(s) {
			contribution := f.MultiplyVec(ls.Radiance).Multiply(1 / ls.PDF)
			if handleMIS && !lights.IsDelta(light) {
				scatteringPDF := bsdf.PDF(si.Wo, ls.Wi)
				contribution = contribution.Multiply(core.PowerHeuristic(1, ls.PDF, 1, scatteringPDF))
			}
			ld = ld.Add(contribution)
		}
	}

	if !handleMIS || lights.IsDelta(light) {
		return ld
	}

	bs := bsdf.SampleMatching(si.Wo, uScattering, material.BSDFAll&^material.BSDFSpecular)
	if !bs.Ok() {
		return ld
	}
	f := bs.F.Multiply(bs.Wi.AbsDot(ns))
	weight := 1.0
	if !bs.IsSpecular() {
		lightPDF := light.PdfLi(si, bs.Wi)
		if lightPDF == 0 {
			return ld
		}
		weight = core.PowerHeuristic(1, bs.PDF, 1, lightPDF)
	}

	// Only radiance from this light counts toward its estimate
	var li core.Vec3
	ray := si.SpawnRay(bs.Wi)
	hit := arena.NewInteraction()
	if s.Intersect(ray, hit) {
		if emitter, ok := light.(material.AreaEmitter); ok && hit.AreaLight == emitter {
			li = hit.Le(bs.Wi.Negate())
		}
	} else {
		li = light.Le(ray)
	}
	if !li.IsBlack() {
		ld = ld.Add(f.MultiplyVec(li).Multiply(weight / bs.PDF))
	}
	return ld
}
