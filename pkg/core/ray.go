package core

import "math"

// Ray represents a ray with an origin and direction. TMax bounds the
// parametric extent; zero means unbounded.
type Ray struct {
	Origin    Vec3
	Direction Vec3
	TMax      float64

	// Differential is optional offset ray information for texture filtering
	Differential *RayDifferential
}

// RayDifferential holds the origins and directions of the two offset rays
// one pixel over in x and y.
type RayDifferential struct {
	RxOrigin, RyOrigin       Vec3
	RxDirection, RyDirection Vec3
}

// NewRay creates a new unbounded ray
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction, TMax: math.Inf(1)}
}

// NewSegment creates a ray that ends at tMax
func NewSegment(origin, direction Vec3, tMax float64) Ray {
	return Ray{Origin: origin, Direction: direction, TMax: tMax}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// Extent returns TMax, treating the zero value as unbounded
func (r Ray) Extent() float64 {
	if r.TMax == 0 {
		return math.Inf(1)
	}
	return r.TMax
}

// ScaleDifferentials shrinks the differential offsets, used when a pixel takes
// several samples
func (r *Ray) ScaleDifferentials(s float64) {
	if r.Differential == nil {
		return
	}
	d := r.Differential
	d.RxOrigin = r.Origin.Add(d.RxOrigin.Subtract(r.Origin).Multiply(s))
	d.RyOrigin = r.Origin.Add(d.RyOrigin.Subtract(r.Origin).Multiply(s))
	d.RxDirection = r.Direction.Add(d.RxDirection.Subtract(r.Direction).Multiply(s))
	d.RyDirection = r.Direction.Add(d.RyDirection.Subtract(r.Direction).Multiply(s))
}
