package scene

import (
	"github.com/golang/glog"

	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/geometry"
	"github.com/df07/go-path-integrator/pkg/lights"
	"github.com/df07/go-path-integrator/pkg/loaders"
	"github.com/df07/go-path-integrator/pkg/material"
)

// minHitDistance rejects self-intersections closer than this along a ray
const minHitDistance = 1e-7

// Scene contains all the elements needed for rendering. After Preprocess it
// is read-only and safe for concurrent queries.
type Scene struct {
	Camera         *geometry.Camera
	CameraConfig   geometry.CameraConfig
	Shapes         []geometry.Shape // Objects in the scene
	Lights         []lights.Light   // Every light, including infinite ones
	InfiniteLights []lights.Light   // Lights seen by rays that escape the scene
	SamplingConfig SamplingConfig

	// IntegratorName and IntegratorParams come from the Integrator directive
	// of a scene file and are empty for builtin scenes
	IntegratorName   string
	IntegratorParams loaders.ParamSet

	BVH *geometry.BVH // Acceleration structure for ray-object intersection
}

// SamplingConfig contains image and sample counts
type SamplingConfig struct {
	Width           int // Image width
	Height          int // Image height
	SamplesPerPixel int // Camera samples per pixel
}

// NewGroundQuad creates a large horizontal quad facing +Y centered at center
func NewGroundQuad(center core.Vec3, size float64, mat material.Material) *geometry.Quad {
	corner := core.NewVec3(center.X-size/2, center.Y, center.Z-size/2)
	// (0,0,size) × (size,0,0) points up
	return geometry.NewQuad(corner, core.NewVec3(0, 0, size), core.NewVec3(size, 0, 0), mat)
}

// Preprocess builds the BVH and hands the scene bounds to lights that need
// them. It must be called before rendering.
func (s *Scene) Preprocess() error {
	s.BVH = geometry.NewBVH(s.Shapes)
	if s.Camera == nil {
		s.Camera = geometry.NewCamera(s.CameraConfig)
	}
	if s.SamplingConfig.Width == 0 {
		s.SamplingConfig.Width = s.Camera.Width()
	}
	if s.SamplingConfig.Height == 0 {
		s.SamplingConfig.Height = s.Camera.Height()
	}

	s.InfiniteLights = s.InfiniteLights[:0]
	for _, light := range s.Lights {
		if preprocessor, ok := light.(lights.Preprocessor); ok {
			if err := preprocessor.Preprocess(s.BVH.Center, s.BVH.Radius); err != nil {
				return err
			}
		}
		if light.Type() == lights.LightTypeInfinite {
			s.InfiniteLights = append(s.InfiniteLights, light)
		}
	}

	glog.Infof("Scene: %d shapes, %d lights (%d infinite), bounds %v", len(s.Shapes), len(s.Lights), len(s.InfiniteLights), s.Bounds())
	return nil
}

// Intersect finds the closest surface along ray within its extent
func (s *Scene) Intersect(ray core.Ray, si *material.SurfaceInteraction) bool {
	return s.BVH.Hit(ray, minHitDistance, ray.Extent(), si)
}

// IntersectP reports whether anything lies along ray within its extent
func (s *Scene) IntersectP(ray core.Ray) bool {
	return s.BVH.HitAny(ray, minHitDistance, ray.Extent())
}

// Bounds returns the bounding box of all shapes
func (s *Scene) Bounds() core.AABB {
	if s.BVH == nil {
		return core.EmptyAABB()
	}
	return s.BVH.BoundingBox()
}

// AddSphereLight adds a spherical area light to the scene. mat may be nil
// for a pure emitter.
func (s *Scene) AddSphereLight(center core.Vec3, radius float64, emission core.Vec3, mat material.Material) *lights.SphereLight {
	sphereLight := lights.NewSphereLight(center, radius, emission, mat)
	s.Lights = append(s.Lights, sphereLight)
	s.Shapes = append(s.Shapes, sphereLight.Sphere)
	return sphereLight
}

// AddQuadLight adds a rectangular area light emitting toward u × v
func (s *Scene) AddQuadLight(corner, u, v core.Vec3, emission core.Vec3, mat material.Material) *lights.QuadLight {
	quadLight := lights.NewQuadLight(corner, u, v, emission, mat)
	s.Lights = append(s.Lights, quadLight)
	s.Shapes = append(s.Shapes, quadLight.Quad)
	return quadLight
}

// AddPointLight adds an isotropic point light
func (s *Scene) AddPointLight(position, intensity core.Vec3) {
	s.Lights = append(s.Lights, lights.NewPointLight(position, intensity))
}

// AddSpotLight adds a spot light at from aimed at to. Angles are in degrees.
func (s *Scene) AddSpotLight(from, to, intensity core.Vec3, coneAngle, coneDelta float64) {
	s.Lights = append(s.Lights, lights.NewSpotLight(from, to, intensity, coneAngle, coneDelta))
}

// AddUniformInfiniteLight adds a uniform infinite light to the scene
func (s *Scene) AddUniformInfiniteLight(emission core.Vec3) {
	s.Lights = append(s.Lights, lights.NewUniformInfiniteLight(emission))
}

// AddGradientInfiniteLight adds a gradient infinite light to the scene
func (s *Scene) AddGradientInfiniteLight(topColor, bottomColor core.Vec3) {
	s.Lights = append(s.Lights, lights.NewGradientInfiniteLight(topColor, bottomColor))
}
