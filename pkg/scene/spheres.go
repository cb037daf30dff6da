package scene

import (
	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/geometry"
	"github.com/df07/go-path-integrator/pkg/material"
)

// NewSpheresScene creates spheres of every material on a checkered ground
// under a gradient sky and a distant sun
func NewSpheresScene() *Scene {
	cameraConfig := geometry.CameraConfig{
		Center:      core.NewVec3(0, 0.75, 2),
		LookAt:      core.NewVec3(0, 0.5, -1),
		Up:          core.NewVec3(0, 1, 0),
		Width:       400,
		AspectRatio: 16.0 / 9.0,
		VFov:        40.0,
		Aperture:    0.02,
	}

	s := &Scene{
		Camera:         geometry.NewCamera(cameraConfig),
		CameraConfig:   cameraConfig,
		SamplingConfig: SamplingConfig{SamplesPerPixel: 64},
	}

	checker := material.NewTexturedLambertian(material.NewCheckerboard(
		core.NewVec3(0.8, 0.8, 0.8).Multiply(0.6),
		core.NewVec3(0.2, 0.3, 0.1),
		2000,
	))
	blue := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	silver := material.NewMirror(core.NewVec3(0.8, 0.8, 0.8))
	glass := material.NewDielectric(1.5)
	jade := material.NewSubsurface(1.33, core.NewVec3(0.3, 0.8, 0.5), core.NewVec3(0.05, 0.02, 0.04))

	s.Shapes = append(s.Shapes,
		NewGroundQuad(core.NewVec3(0, 0, 0), 1000.0, checker),
		geometry.NewSphere(core.NewVec3(0, 0.5, -1), 0.5, blue),
		geometry.NewSphere(core.NewVec3(-1, 0.5, -1), 0.5, silver),
		geometry.NewSphere(core.NewVec3(1, 0.5, -1), 0.5, jade),
		geometry.NewSphere(core.NewVec3(0.5, 0.25, -0.3), 0.25, glass),
	)

	s.AddSphereLight(core.NewVec3(30, 30.5, 15), 10, core.NewVec3(15.0, 14.0, 13.0), nil)
	s.AddGradientInfiniteLight(
		core.NewVec3(0.5, 0.7, 1.0), // Blue sky
		core.NewVec3(1.0, 1.0, 1.0), // White ground
	)
	return s
}
