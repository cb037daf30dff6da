package scene

import (
	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/geometry"
	"github.com/df07/go-path-integrator/pkg/material"
)

// cornellBoxSize is the edge length of the standard 555 unit Cornell box
const cornellBoxSize = 555.0

// NewCornellScene creates a classic Cornell box with a ceiling area light,
// a mirror sphere and a glass sphere
func NewCornellScene() *Scene {
	s := newCornellBox()

	s.Shapes = append(s.Shapes,
		geometry.NewSphere(core.NewVec3(185, 82.5, 169), 82.5, material.NewMirror(core.NewVec3(0.8, 0.8, 0.9))),
		geometry.NewSphere(core.NewVec3(370, 90, 351), 90, material.NewDielectric(1.5)),
	)
	return s
}

// newCornellBox builds the five walls and the ceiling light
func newCornellBox() *Scene {
	cameraConfig := geometry.CameraConfig{
		Center:      core.NewVec3(278, 278, -800), // Outside the open front of the box
		LookAt:      core.NewVec3(278, 278, 0),
		Up:          core.NewVec3(0, 1, 0),
		Width:       400,
		AspectRatio: 1.0,
		VFov:        40.0,
	}

	s := &Scene{
		Camera:         geometry.NewCamera(cameraConfig),
		CameraConfig:   cameraConfig,
		SamplingConfig: SamplingConfig{SamplesPerPixel: 64},
	}

	white := material.NewLambertian(core.NewVec3(0.73, 0.73, 0.73))
	red := material.NewLambertian(core.NewVec3(0.65, 0.05, 0.05))
	green := material.NewLambertian(core.NewVec3(0.12, 0.45, 0.15))

	size := cornellBoxSize
	s.Shapes = append(s.Shapes,
		// Floor, facing up
		geometry.NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, size), core.NewVec3(size, 0, 0), white),
		// Ceiling, facing down
		geometry.NewQuad(core.NewVec3(0, size, 0), core.NewVec3(size, 0, 0), core.NewVec3(0, 0, size), white),
		// Back wall, facing the camera
		geometry.NewQuad(core.NewVec3(0, 0, size), core.NewVec3(0, size, 0), core.NewVec3(size, 0, 0), white),
		// Left wall (red), facing +X
		geometry.NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(0, size, 0), core.NewVec3(0, 0, size), red),
		// Right wall (green), facing -X
		geometry.NewQuad(core.NewVec3(size, 0, 0), core.NewVec3(0, 0, size), core.NewVec3(0, size, 0), green),
	)

	// Ceiling light slightly below the ceiling, emitting downward
	lightSize := 130.0
	lightOffset := (size - lightSize) / 2.0
	s.AddQuadLight(
		core.NewVec3(lightOffset, size-1, lightOffset),
		core.NewVec3(lightSize, 0, 0),
		core.NewVec3(0, 0, lightSize),
		core.NewVec3(15.0, 15.0, 15.0),
		nil,
	)
	return s
}
