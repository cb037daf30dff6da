package geometry

import (
	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/material"
)

// Shape interface for objects that can be hit by rays
type Shape interface {
	// Hit fills si and returns true when the ray hits within (tMin, tMax).
	// si is left untouched on a miss.
	Hit(ray core.Ray, tMin, tMax float64, si *material.SurfaceInteraction) bool
	BoundingBox() core.AABB
}

// Emissive is implemented by shapes that can carry an area light
type Emissive interface {
	Shape
	SetAreaLight(light material.AreaEmitter)
}
