package scene

import (
	"math"

	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/geometry"
	"github.com/df07/go-path-integrator/pkg/material"
)

// oklchToRGB converts OKLCH color values to linear RGB.
// l: lightness (0-1), c: chroma (0-0.4), h: hue in degrees
func oklchToRGB(l, c, h float64) core.Vec3 {
	hRad := h * math.Pi / 180.0
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// OKLAB to LMS, then cube
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b
	l_, m_, s_ = l_*l_*l_, m_*m_*m_, s_*s_*s_

	rgb := core.NewVec3(
		+4.0767416621*l_-3.3077115913*m_+0.2309699292*s_,
		-1.2684380046*l_+2.6097574011*m_-0.3413193965*s_,
		-0.0041960863*l_-0.7034186147*m_+1.7076147010*s_,
	)
	return rgb.Clamp(0, 1)
}

// NewSphereGridScene creates a grid of colored spheres lit by a small point
// light above every row. With many lights of which only a few matter at any
// point, it is the scene the spatial light distribution is meant for.
func NewSphereGridScene() *Scene {
	cameraConfig := geometry.CameraConfig{
		Center:      core.NewVec3(4.5, 6, 18),
		LookAt:      core.NewVec3(4.5, 0.8, 4.5),
		Up:          core.NewVec3(0, 1, 0),
		Width:       640,
		AspectRatio: 16.0 / 9.0,
		VFov:        40.0,
	}

	s := &Scene{
		Camera:         geometry.NewCamera(cameraConfig),
		CameraConfig:   cameraConfig,
		SamplingConfig: SamplingConfig{SamplesPerPixel: 32},
	}

	s.Shapes = append(s.Shapes, NewGroundQuad(core.NewVec3(4.5, 0, 4.5), 100, material.NewLambertian(core.Gray(0.5))))

	const gridSize = 10
	const targetArea = 9.0
	spacing := targetArea / float64(gridSize-1)
	radius := spacing * 0.35

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			x := float64(i)*spacing - targetArea/2 + 4.5
			z := float64(j)*spacing - targetArea/2 + 4.5

			// Hue across X, chroma across Z
			hue := float64(i) / float64(gridSize-1) * 360
			chroma := 0.05 + float64(j)/float64(gridSize-1)*0.2
			color := oklchToRGB(0.65+0.1*math.Sin(float64(i+j)*0.5), chroma, hue)

			var m material.Material = material.NewLambertian(color)
			if (i+j)%4 == 0 {
				m = material.NewMirror(color)
			}
			s.Shapes = append(s.Shapes, geometry.NewSphere(core.NewVec3(x, radius, z), radius, m))
		}

		x := float64(i)*spacing - targetArea/2 + 4.5
		warmth := float64(i) / float64(gridSize-1)
		s.AddPointLight(core.NewVec3(x, 1.5, 4.5), core.NewVec3(2+warmth, 2, 3-warmth))
	}

	s.AddUniformInfiniteLight(core.Gray(0.05))
	return s
}
