package renderer

import (
	"image"

	"github.com/df07/go-path-integrator/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels    int // Pixels rendered
	TotalSamples   int // Camera samples taken
	InvalidSamples int // Samples whose radiance was negative or not finite and got dropped
	TilesRendered  int // Tiles that ran to completion
}

// Merge adds the counts of other
func (s *RenderStats) Merge(other RenderStats) {
	s.TotalPixels += other.TotalPixels
	s.TotalSamples += other.TotalSamples
	s.InvalidSamples += other.InvalidSamples
	s.TilesRendered += other.TilesRendered
}

// AverageSamples returns the mean number of samples per rendered pixel
func (s RenderStats) AverageSamples() float64 {
	if s.TotalPixels == 0 {
		return 0
	}
	return float64(s.TotalSamples) / float64(s.TotalPixels)
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance of an 8-bit image
func CalculateAverageLuminance(img image.Image) float64 {
	b := img.Bounds()
	if b.Empty() {
		return 0
	}
	sum := 0.0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			c := core.NewVec3(float64(r), float64(g), float64(bl)).Multiply(1.0 / 0xffff)
			sum += c.Luminance()
		}
	}
	return sum / float64(b.Dx()*b.Dy())
}
