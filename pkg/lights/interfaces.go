package lights

import (
	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/material"
)

type LightType string

const (
	LightTypeArea     LightType = "area"
	LightTypePoint    LightType = "point"
	LightTypeInfinite LightType = "infinite"
)

// Light interface for objects that can be sampled for direct lighting
type Light interface {
	Type() LightType

	// SampleLi samples incident radiance at ref. The returned direction
	// points from ref toward the light and the pdf is in solid angle
	// (1 for delta lights).
	SampleLi(ref *material.SurfaceInteraction, u core.Vec2) LightSample

	// PdfLi is the solid-angle density with which SampleLi would choose wi
	PdfLi(ref *material.SurfaceInteraction, wi core.Vec3) float64

	// Le is the radiance carried by a ray that escapes the scene. Only
	// infinite lights return non-zero values.
	Le(ray core.Ray) core.Vec3

	// Power is the total emitted power, used to build importance distributions
	Power() core.Vec3
}

// AreaLight is a light attached to a shape's surface
type AreaLight interface {
	Light
	material.AreaEmitter
}

// Preprocessor interface for lights that need the scene bounds before rendering
type Preprocessor interface {
	Preprocess(worldCenter core.Vec3, worldRadius float64) error
}

// IsDelta reports whether the light can only be reached by sampling it
func IsDelta(l Light) bool {
	return l.Type() == LightTypePoint
}

// LightSample contains the result of sampling incident radiance from a light
type LightSample struct {
	Wi       core.Vec3        // Unit direction from the reference point toward the light
	PDF      float64          // Solid-angle density, 1 for delta lights
	Radiance core.Vec3        // Incident radiance arriving along Wi
	Vis      VisibilityTester // Segment that must be unoccluded for the sample to count
}

// Occluder answers whether anything blocks a ray segment
type Occluder interface {
	IntersectP(ray core.Ray) bool
}

// VisibilityTester checks the segment between a surface point and a light sample
type VisibilityTester struct {
	From *material.SurfaceInteraction
	To   core.Vec3
}

// Unoccluded reports whether the segment is free of blockers
func (v VisibilityTester) Unoccluded(scene Occluder) bool {
	if v.From == nil {
		return true
	}
	return !scene.IntersectP(v.From.SpawnRayTo(v.To))
}
