package material

import (
	"math"

	"github.com/df07/go-path-integrator/pkg/core"
)

// ColorSource provides spatially-varying colors for materials
type ColorSource interface {
	// Evaluate returns color at given UV coordinates and 3D point
	Evaluate(uv core.Vec2, point core.Vec3) core.Vec3
}

// SolidColor provides uniform color
type SolidColor struct {
	Color core.Vec3
}

// NewSolidColor creates a new solid color source
func NewSolidColor(color core.Vec3) *SolidColor {
	return &SolidColor{Color: color}
}

// Evaluate returns the solid color regardless of UV or position
func (s *SolidColor) Evaluate(uv core.Vec2, point core.Vec3) core.Vec3 {
	return s.Color
}

// Checkerboard alternates two colors in UV space
type Checkerboard struct {
	Even, Odd core.Vec3
	Checks    float64 // Number of checks along each UV axis
}

// NewCheckerboard creates a checkerboard with the given number of checks per side
func NewCheckerboard(even, odd core.Vec3, checks float64) *Checkerboard {
	return &Checkerboard{Even: even, Odd: odd, Checks: checks}
}

// Evaluate picks the color of the check containing uv
func (c *Checkerboard) Evaluate(uv core.Vec2, point core.Vec3) core.Vec3 {
	i := int(math.Floor(uv.X * c.Checks))
	j := int(math.Floor(uv.Y * c.Checks))
	if (i+j)%2 == 0 {
		return c.Even
	}
	return c.Odd
}
