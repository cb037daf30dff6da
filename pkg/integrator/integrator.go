package integrator

import (
	"context"
	"image"

	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/material"
	"github.com/df07/go-path-integrator/pkg/scene"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// Name identifies the algorithm in logs and statistics
	Name() string

	// Preprocess runs once after the scene is preprocessed and before any Li call
	Preprocess(ctx context.Context, s *scene.Scene) error

	// Li estimates the radiance arriving at the ray origin along the ray.
	// Everything it allocates comes from arena, which the caller resets
	// between camera samples. Li is safe for concurrent use with distinct
	// samplers and arenas.
	Li(ray core.Ray, s *scene.Scene, sampler core.Sampler, arena *material.Arena) core.Vec3

	// PixelBounds is the part of the image the integrator renders
	PixelBounds() image.Rectangle
}

// minPDF is the density below which a sample is treated as a failure
const minPDF = 1e-12
