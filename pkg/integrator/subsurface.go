package integrator

import (
	"github.com/golang/glog"

	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/material"
	"github.com/df07/go-path-integrator/pkg/scene"
)

// subsurfaceExit is where a path continues after crossing a scattering
// medium
type subsurfaceExit struct {
	ray            core.Ray
	beta           core.Vec3
	specularBounce bool
	direct         core.Vec3 // Direct lighting at the exit point, already weighted
}

// sampleSubsurface picks an exit point for light that transmitted into the
// medium behind si, adds direct lighting there and samples the direction
// the path leaves in. The direct term is valid even when ok is false.
func (p *PathIntegrator) sampleSubsurface(si *material.SurfaceInteraction, s *scene.Scene, sampler core.Sampler, arena *material.Arena, beta core.Vec3) (subsurfaceExit, bool) {
	var exit subsurfaceExit

	S, pi, pdf := si.BSSRDF.SampleS(s, sampler.Get1D(), sampler.Get2D(), arena)
	if S.IsBlack() || pdf < minPDF || pi == nil {
		return exit, false
	}
	beta = checkThroughput(beta.MultiplyVec(S).Multiply(1/pdf), "BSSRDF sampling")

	exit.direct = beta.MultiplyVec(UniformSampleOneLight(pi, s, arena, sampler, false, p.lookup(pi.Point)))

	bs := pi.BSDF.Sample(pi.Wo, sampler.Get2D())
	if bs.F.IsBlack() || bs.PDF < minPDF {
		return exit, false
	}
	exit.beta = checkThroughput(beta.MultiplyVec(bs.F).Multiply(bs.Wi.AbsDot(pi.ShadingNormal)/bs.PDF), "BSSRDF exit")
	exit.specularBounce = bs.IsSpecular()
	exit.ray = pi.SpawnRay(bs.Wi)
	glog.V(2).Infof("Subsurface exit at %v, beta = %v", pi.Point, exit.beta)
	return exit, true
}
