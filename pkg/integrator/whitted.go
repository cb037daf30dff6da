package integrator

import (
	"context"
	"image"

	"github.com/golang/glog"

	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/material"
	"github.com/df07/go-path-integrator/pkg/scene"
)

// WhittedIntegrator computes direct lighting from every light and follows
// perfectly specular reflection and transmission up to a fixed depth. It
// never terminates paths randomly.
type WhittedIntegrator struct {
	config WhittedConfig
}

// NewWhittedIntegrator creates a Whitted integrator
func NewWhittedIntegrator(config WhittedConfig) *WhittedIntegrator {
	return &WhittedIntegrator{config: config}
}

// Name implements Integrator
func (w *WhittedIntegrator) Name() string { return "whitted" }

// PixelBounds implements Integrator
func (w *WhittedIntegrator) PixelBounds() image.Rectangle { return w.config.PixelBounds }

// Preprocess implements Integrator. Whitted needs no light distribution.
func (w *WhittedIntegrator) Preprocess(ctx context.Context, s *scene.Scene) error {
	glog.Infof("Whitted integrator: maxdepth %d, %d lights", w.config.MaxDepth, len(s.Lights))
	return nil
}

// Li implements Integrator
func (w *WhittedIntegrator) Li(ray core.Ray, s *scene.Scene, sampler core.Sampler, arena *material.Arena) core.Vec3 {
	return w.li(ray, s, sampler, arena, 0)
}

func (w *WhittedIntegrator) li(ray core.Ray, s *scene.Scene, sampler core.Sampler, arena *material.Arena, depth int) core.Vec3 {
	var L core.Vec3
	si := arena.NewInteraction()
	if !s.Intersect(ray, si) {
		for _, light := range s.Lights {
			L = L.Add(light.Le(ray))
		}
		return L
	}

	si.ComputeScatteringFunctions(arena, material.Radiance, false)
	if si.BSDF == nil {
		return w.li(si.SpawnRay(ray.Direction), s, sampler, arena, depth)
	}

	wo := si.Wo
	n := si.ShadingNormal
	L = L.Add(si.Le(wo))

	for _, light := range s.Lights {
		ls := light.SampleLi(si, sampler.Get2D())
		if ls.Radiance.IsBlack() || ls.PDF == 0 {
			continue
		}
		f := si.BSDF.Evaluate(wo, ls.Wi)
		if !f.IsBlack() && ls.Vis.Unoccluded(s) {
			L = L.Add(f.MultiplyVec(ls.Radiance).Multiply(ls.Wi.AbsDot(n) / ls.PDF))
		}
	}

	if depth+1 < w.config.MaxDepth {
		L = L.Add(w.specular(si, s, sampler, arena, depth, material.BSDFReflection|material.BSDFSpecular))
		L = L.Add(w.specular(si, s, sampler, arena, depth, material.BSDFTransmission|material.BSDFSpecular))
	}
	return L
}

// specular follows the specular lobe of si selected by flags and returns the
// radiance it brings back
func (w *WhittedIntegrator) specular(si *material.SurfaceInteraction, s *scene.Scene, sampler core.Sampler, arena *material.Arena, depth int, flags material.BxDFType) core.Vec3 {
	bs := si.BSDF.SampleMatching(si.Wo, sampler.Get2D(), flags)
	cos := bs.Wi.AbsDot(si.ShadingNormal)
	if bs.PDF <= 0 || bs.F.IsBlack() || cos == 0 {
		return core.Vec3{}
	}
	li := w.li(si.SpawnRay(bs.Wi), s, sampler, arena, depth+1)
	return bs.F.MultiplyVec(li).Multiply(cos / bs.PDF)
}
