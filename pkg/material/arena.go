package material

import (
	"github.com/df07/go-path-integrator/pkg/core"
)

// Arena owns the per-sample scattering objects. Everything it hands out is
// released together by Reset, which the renderer calls after each camera
// sample. An Arena belongs to a single worker.
type Arena struct {
	bsdfs        core.Slab[BSDF]
	interactions core.Slab[SurfaceInteraction]
	bssrdfs      core.Slab[SeparableBSSRDF]
}

// NewArena creates an empty arena
func NewArena() *Arena {
	return &Arena{}
}

// NewBSDF allocates a BSDF framed at si
func (a *Arena) NewBSDF(si *SurfaceInteraction, eta float64) *BSDF {
	b := a.bsdfs.Alloc()
	b.Init(si, eta)
	return b
}

// NewInteraction allocates a zero interaction
func (a *Arena) NewInteraction() *SurfaceInteraction {
	return a.interactions.Alloc()
}

// NewSeparableBSSRDF allocates a BSSRDF for light entering at po
func (a *Arena) NewSeparableBSSRDF(po *SurfaceInteraction, eta float64, m Material, sigma, reflectance core.Vec3) *SeparableBSSRDF {
	s := a.bssrdfs.Alloc()
	s.init(po, eta, m, sigma, reflectance)
	return s
}

// Live reports how many objects are currently allocated
func (a *Arena) Live() int {
	return a.bsdfs.Len() + a.interactions.Len() + a.bssrdfs.Len()
}

// Reset releases everything allocated since the last Reset
func (a *Arena) Reset() {
	a.bsdfs.Reset()
	a.interactions.Reset()
	a.bssrdfs.Reset()
}
