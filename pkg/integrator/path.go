package integrator

import (
	"context"
	"fmt"
	"image"

	"github.com/golang/glog"

	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/lights"
	"github.com/df07/go-path-integrator/pkg/material"
	"github.com/df07/go-path-integrator/pkg/scene"
)

// flatAmbient is added for camera rays that miss everything when
// FlatAmbientFallback is set
var flatAmbient = core.NewVec3(0, 0.15, 0)

// PathIntegrator implements unidirectional path tracing with next-event
// estimation at every non-specular vertex and Russian roulette
type PathIntegrator struct {
	config   PathConfig
	observer PathObserver // optional
	distrib  lights.LightDistribution
	recorder pathRecorder
}

// NewPathIntegrator creates a path integrator. observer may be nil.
func NewPathIntegrator(config PathConfig, observer PathObserver) *PathIntegrator {
	return &PathIntegrator{
		config:   config,
		observer: observer,
		recorder: newPathRecorder("path"),
	}
}

// Name implements Integrator
func (p *PathIntegrator) Name() string { return "path" }

// Config returns the configuration the integrator was created with
func (p *PathIntegrator) Config() PathConfig { return p.config }

// PixelBounds implements Integrator
func (p *PathIntegrator) PixelBounds() image.Rectangle { return p.config.PixelBounds }

// Preprocess builds the light importance distribution for the scene
func (p *PathIntegrator) Preprocess(ctx context.Context, s *scene.Scene) error {
	distrib, err := lights.NewLightDistribution(ctx, p.config.LightSampleStrategy, s.Lights, s.Bounds())
	if err != nil {
		return fmt.Errorf("while building %q light distribution: %w", p.config.LightSampleStrategy, err)
	}
	p.distrib = distrib
	glog.Infof("Path integrator: maxdepth %d, rrthreshold %g, %d lights sampled with %T",
		p.config.MaxDepth, p.config.RRThreshold, len(s.Lights), distrib)
	return nil
}

func (p *PathIntegrator) lookup(pt core.Vec3) *core.Distribution1D {
	if p.distrib == nil {
		return nil
	}
	return p.distrib.Lookup(pt)
}

// Li implements Integrator
func (p *PathIntegrator) Li(ray core.Ray, s *scene.Scene, sampler core.Sampler, arena *material.Arena) core.Vec3 {
	var L core.Vec3
	beta := core.Gray(1)
	etaScale := 1.0
	specularBounce := false
	observed := false
	directEstimates, zeroRadiance := 0, 0

	bounces := 0
	for ; ; bounces++ {
		si := arena.NewInteraction()
		found := s.Intersect(ray, si)

		// Emission at path vertices after a non-specular bounce was already
		// counted by direct lighting
		if bounces == 0 || specularBounce {
			switch {
			case found:
				L = L.Add(beta.MultiplyVec(si.Le(ray.Direction.Negate())))
				glog.V(2).Infof("Added Le -> L = %v", L)
			case bounces == 0 && p.config.FlatAmbientFallback:
				L = L.Add(flatAmbient)
			default:
				for _, light := range s.InfiniteLights {
					L = L.Add(beta.MultiplyVec(light.Le(ray)))
				}
				glog.V(2).Infof("Added infinite area lights -> L = %v", L)
			}
		}

		if found && bounces == 0 && !observed && p.config.WriteDebugFaces && p.observer != nil {
			pixel, index := samplePosition(sampler)
			p.observer.ObservePath(pixel, index, si, si.Material)
			observed = true
		}

		if !found || bounces >= p.config.MaxDepth {
			break
		}

		si.ComputeScatteringFunctions(arena, material.Radiance, true)
		if si.BSDF == nil {
			glog.V(2).Infof("Skipping intersection due to null bsdf")
			ray = si.SpawnRay(ray.Direction)
			bounces--
			continue
		}

		if si.BSDF.HasNonSpecular() {
			directEstimates++
			ld := beta.MultiplyVec(UniformSampleOneLight(si, s, arena, sampler, false, p.lookup(si.Point)))
			glog.V(2).Infof("Sampled direct lighting Ld = %v", ld)
			if ld.IsBlack() {
				zeroRadiance++
			}
			L = L.Add(ld)
		}

		bs := si.BSDF.Sample(si.Wo, sampler.Get2D())
		glog.V(2).Infof("Sampled BSDF, f = %v, pdf = %g", bs.F, bs.PDF)
		if bs.F.IsBlack() || bs.PDF < minPDF {
			break
		}
		beta = checkThroughput(beta.MultiplyVec(bs.F).Multiply(bs.Wi.AbsDot(si.ShadingNormal)/bs.PDF), "BSDF sampling")
		glog.V(2).Infof("Updated beta = %v", beta)
		specularBounce = bs.IsSpecular()
		if bs.IsSpecular() && bs.IsTransmission() {
			etaScale = updateEtaScale(etaScale, si.BSDF.Eta(), si.Wo, si.Normal)
		}
		ray = si.SpawnRay(bs.Wi)

		if si.BSSRDF != nil && bs.IsTransmission() {
			exit, ok := p.sampleSubsurface(si, s, sampler, arena, beta)
			L = L.Add(exit.direct)
			if !ok {
				break
			}
			beta, ray, specularBounce = exit.beta, exit.ray, exit.specularBounce
		}

		var alive bool
		if beta, alive = russianRoulette(beta, etaScale, bounces, p.config.RRThreshold, sampler); !alive {
			break
		}
	}

	p.recorder.record(bounces, directEstimates, zeroRadiance)
	return L
}

// updateEtaScale accounts for the radiance scaling of a specular
// transmission through a boundary with relative index eta. n is the
// outward geometric normal, so wo·n > 0 means the path enters the medium.
func updateEtaScale(etaScale, eta float64, wo, n core.Vec3) float64 {
	if wo.Dot(n) > 0 {
		return etaScale * eta * eta
	}
	return etaScale / (eta * eta)
}
