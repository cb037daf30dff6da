package integrator

import (
	"image"

	"github.com/golang/glog"

	"github.com/df07/go-path-integrator/pkg/lights"
	"github.com/df07/go-path-integrator/pkg/loaders"
)

// Defaults for integrator parameters missing from the scene description
const (
	DefaultMaxDepth            = 5
	DefaultRRThreshold         = 1.0
	DefaultLightSampleStrategy = lights.StrategySpatial
)

// PathConfig configures a PathIntegrator
type PathConfig struct {
	MaxDepth            int     // Bounces after which the path stops
	RRThreshold         float64 // Russian roulette starts when beta*etaScale drops below this
	LightSampleStrategy string  // uniform, power or spatial
	PixelBounds         image.Rectangle

	// WriteDebugFaces hands the first visible hit of every path to the
	// integrator's PathObserver, usually a FaceWriter
	WriteDebugFaces bool
	// FlatAmbientFallback replaces the infinite lights seen by camera rays
	// that miss everything with a flat green
	FlatAmbientFallback bool
}

// NewPathConfig reads the Integrator parameters. Problems are logged and
// replaced by defaults; sampleBounds is the fallback for pixel bounds.
func NewPathConfig(params loaders.ParamSet, sampleBounds image.Rectangle) PathConfig {
	return PathConfig{
		MaxDepth:            maxDepthParam(params),
		RRThreshold:         params.FindOneFloat("rrthreshold", DefaultRRThreshold),
		LightSampleStrategy: params.FindOneString("lightsamplestrategy", DefaultLightSampleStrategy),
		PixelBounds:         pixelBoundsParam(params, sampleBounds),
	}
}

// WhittedConfig configures a WhittedIntegrator
type WhittedConfig struct {
	MaxDepth    int // Specular recursion depth
	PixelBounds image.Rectangle
}

// NewWhittedConfig reads the Integrator parameters of a whitted integrator
func NewWhittedConfig(params loaders.ParamSet, sampleBounds image.Rectangle) WhittedConfig {
	return WhittedConfig{
		MaxDepth:    maxDepthParam(params),
		PixelBounds: pixelBoundsParam(params, sampleBounds),
	}
}

func maxDepthParam(params loaders.ParamSet) int {
	depth := params.FindOneInt("maxdepth", DefaultMaxDepth)
	if depth < 0 {
		glog.Errorf("\"maxdepth\" must not be negative, got %d. Using %d.", depth, DefaultMaxDepth)
		return DefaultMaxDepth
	}
	return depth
}

// pixelBoundsParam reads "pixelbounds" [x0 x1 y0 y1] and clips it to the
// sample bounds
func pixelBoundsParam(params loaders.ParamSet, sampleBounds image.Rectangle) image.Rectangle {
	pb := params.FindInt("pixelbounds")
	if len(pb) == 0 {
		return sampleBounds
	}
	if len(pb) != 4 {
		glog.Errorf("Expected four values for \"pixelbounds\" parameter. Got %d.", len(pb))
		return sampleBounds
	}
	bounds := image.Rect(pb[0], pb[2], pb[1], pb[3]).Intersect(sampleBounds)
	if bounds.Empty() {
		glog.Errorf("Degenerate \"pixelbounds\" specified. Using the full image.")
		return sampleBounds
	}
	return bounds
}
