package material

import (
	"github.com/df07/go-path-integrator/pkg/core"
)

// Material builds the scattering functions for a surface point. A nil
// Material on a surface marks a boundary that does not scatter light, such
// as the container of a participating medium; rays pass straight through.
type Material interface {
	ComputeScatteringFunctions(si *SurfaceInteraction, arena *Arena, mode TransportMode, allowMultipleLobes bool)
}

// Response is the local scattering function of a surface point
type Response interface {
	// NumComponents counts the components whose type is fully contained in flags
	NumComponents(flags BxDFType) int

	// HasNonSpecular reports whether some component can be evaluated for
	// arbitrary direction pairs, i.e. next-event estimation is meaningful
	HasNonSpecular() bool

	// Sample draws an incident direction for the outgoing direction wo
	Sample(wo core.Vec3, u core.Vec2) ScatterSample

	// SampleMatching is Sample restricted to components matching flags
	SampleMatching(wo core.Vec3, u core.Vec2, flags BxDFType) ScatterSample

	// Evaluate returns the value of the scattering function for a direction pair
	Evaluate(wo, wi core.Vec3) core.Vec3

	// PDF returns the density with which Sample would choose wi
	PDF(wo, wi core.Vec3) float64

	// Eta is the relative index of refraction across the boundary, 1 for opaque surfaces
	Eta() float64
}

// AreaEmitter is implemented by lights attached to a surface
type AreaEmitter interface {
	// L returns the radiance leaving the surface point si in direction w
	L(si *SurfaceInteraction, w core.Vec3) core.Vec3
}

// Intersector is the scene query used while probing for subsurface exit points
type Intersector interface {
	Intersect(ray core.Ray, si *SurfaceInteraction) bool
}

// BSSRDF describes light entering a surface at one point and leaving at another
type BSSRDF interface {
	// SampleS picks an exit point pi. It returns the BSSRDF value, the exit
	// interaction (whose BSDF describes the exit direction distribution),
	// and the density of the choice. A black value or zero pdf means failure.
	SampleS(scene Intersector, u1 float64, u2 core.Vec2, arena *Arena) (core.Vec3, *SurfaceInteraction, float64)
}

// TransportMode tells a BxDF whether radiance or importance flows along the path
type TransportMode int

const (
	Radiance TransportMode = iota
	Importance
)

// ScatterSample is the result of sampling a Response
type ScatterSample struct {
	Wi   core.Vec3 // Sampled incident direction, world space
	F    core.Vec3 // Value of the scattering function for (wo, Wi)
	PDF  float64   // Density of Wi; 1 for specular components
	Type BxDFType  // Type of the component that produced the sample
}

// IsSpecular returns true if the sample came from a delta distribution
func (s ScatterSample) IsSpecular() bool {
	return s.Type&BSDFSpecular != 0
}

// IsTransmission returns true if the sample crossed the surface
func (s ScatterSample) IsTransmission() bool {
	return s.Type&BSDFTransmission != 0
}

// Ok returns false when the sample carries no energy
func (s ScatterSample) Ok() bool {
	return !s.F.IsBlack() && s.PDF > 0
}
