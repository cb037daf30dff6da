package scene

import (
	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/geometry"
	"github.com/df07/go-path-integrator/pkg/material"
)

// NewSubsurfaceScene places translucent spheres of increasing mean free
// path in the Cornell box, so the effect of the scattering distance is
// visible side by side
func NewSubsurfaceScene() *Scene {
	s := newCornellBox()

	albedo := core.NewVec3(0.9, 0.6, 0.4) // Skin-like
	for i, mfp := range []float64{2, 10, 40} {
		m := material.NewSubsurface(1.33, albedo, core.NewVec3(1.0, 0.5, 0.25).Multiply(mfp))
		center := core.NewVec3(120+float64(i)*157.5, 70, 278)
		s.Shapes = append(s.Shapes, geometry.NewSphere(center, 70, m))
	}
	return s
}
