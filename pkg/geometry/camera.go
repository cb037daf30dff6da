package geometry

import (
	"math"

	"github.com/df07/go-path-integrator/pkg/core"
)

// CameraConfig describes a thin-lens perspective camera
type CameraConfig struct {
	Center        core.Vec3 // Eye position
	LookAt        core.Vec3 // Point the camera looks at
	Up            core.Vec3 // Up direction
	Width         int       // Image width in pixels
	AspectRatio   float64   // Width / height
	VFov          float64   // Vertical field of view in degrees
	Aperture      float64   // Lens diameter, 0 for a pinhole
	FocusDistance float64   // Distance to the focal plane, 0 means |LookAt - Center|
}

// Camera generates primary rays. It is immutable and safe for concurrent use.
type Camera struct {
	config     CameraConfig
	height     int
	origin     core.Vec3
	upperLeft  core.Vec3 // Top-left corner of the focal plane
	horizontal core.Vec3 // Full focal plane width
	vertical   core.Vec3 // Full focal plane height, pointing down
	u, v       core.Vec3 // Lens basis
	lensRadius float64
}

// NewCamera creates a camera from its configuration
func NewCamera(config CameraConfig) *Camera {
	if config.AspectRatio <= 0 {
		config.AspectRatio = 1
	}
	if config.Up.IsBlack() {
		config.Up = core.NewVec3(0, 1, 0)
	}
	height := max(1, int(float64(config.Width)/config.AspectRatio))

	focus := config.FocusDistance
	if focus <= 0 {
		focus = config.LookAt.Subtract(config.Center).Length()
	}
	if focus <= 0 {
		focus = 1
	}

	theta := config.VFov * math.Pi / 180
	viewportHeight := 2 * math.Tan(theta/2) * focus
	viewportWidth := viewportHeight * float64(config.Width) / float64(height)

	w := config.Center.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	horizontal := u.Multiply(viewportWidth)
	vertical := v.Multiply(-viewportHeight)
	center := config.Center.Subtract(w.Multiply(focus))
	upperLeft := center.Subtract(horizontal.Multiply(0.5)).Subtract(vertical.Multiply(0.5))

	return &Camera{
		config:     config,
		height:     height,
		origin:     config.Center,
		upperLeft:  upperLeft,
		horizontal: horizontal,
		vertical:   vertical,
		u:          u,
		v:          v,
		lensRadius: config.Aperture / 2,
	}
}

// Width returns the image width in pixels
func (c *Camera) Width() int { return c.config.Width }

// Height returns the image height in pixels
func (c *Camera) Height() int { return c.height }

// GetRay generates a ray through the film position (x, y), measured in pixels
// from the top-left corner. The ray carries differentials for offsets of one
// pixel in x and y.
func (c *Camera) GetRay(x, y float64, lens core.Vec2) core.Ray {
	origin := c.origin
	if c.lensRadius > 0 {
		d := core.ConcentricSampleDisk(lens)
		origin = origin.Add(c.u.Multiply(d.X * c.lensRadius)).Add(c.v.Multiply(d.Y * c.lensRadius))
	}

	ray := core.NewRay(origin, c.direction(origin, x, y))
	ray.Differential = &core.RayDifferential{
		RxOrigin:    origin,
		RyOrigin:    origin,
		RxDirection: c.direction(origin, x+1, y),
		RyDirection: c.direction(origin, x, y+1),
	}
	return ray
}

func (c *Camera) direction(origin core.Vec3, x, y float64) core.Vec3 {
	s := x / float64(c.config.Width)
	t := y / float64(c.height)
	target := c.upperLeft.Add(c.horizontal.Multiply(s)).Add(c.vertical.Multiply(t))
	return target.Subtract(origin).Normalize()
}
