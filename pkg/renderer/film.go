package renderer

import (
	"image"
	"image/color"
	"sync"

	"github.com/df07/go-path-integrator/pkg/core"
)

// Film accumulates radiance samples per pixel. Workers render into their own
// FilmTile and merge it with MergeTile, which is the only method that needs
// the lock.
type Film struct {
	Width, Height int

	mu     sync.Mutex
	sums   []core.Vec3 // Row-major radiance sums
	counts []float64   // Samples per pixel
}

// NewFilm creates an empty film
func NewFilm(width, height int) *Film {
	return &Film{
		Width:  width,
		Height: height,
		sums:   make([]core.Vec3, width*height),
		counts: make([]float64, width*height),
	}
}

// Bounds returns the full pixel rectangle of the film
func (f *Film) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

func (f *Film) index(x, y int) int {
	return y*f.Width + x
}

// Pixel returns the radiance sum and sample count at (x, y)
func (f *Film) Pixel(x, y int) (core.Vec3, float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(x, y)
	return f.sums[i], f.counts[i]
}

// Color returns the mean radiance at (x, y), black before the first sample
func (f *Film) Color(x, y int) core.Vec3 {
	sum, count := f.Pixel(x, y)
	if count == 0 {
		return core.Vec3{}
	}
	return sum.Multiply(1 / count)
}

// MinSamples returns the smallest sample count over bounds
func (f *Film) MinSamples(bounds image.Rectangle) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	bounds = bounds.Intersect(f.Bounds())
	if bounds.Empty() {
		return 0
	}
	least := -1.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if c := f.counts[f.index(x, y)]; least < 0 || c < least {
				least = c
			}
		}
	}
	return int(least)
}

// MergeTile adds the samples of a rendered tile to the film
func (f *Film) MergeTile(t *FilmTile) {
	bounds := t.Bounds.Intersect(f.Bounds())
	f.mu.Lock()
	defer f.mu.Unlock()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			src := t.index(x, y)
			dst := f.index(x, y)
			f.sums[dst] = f.sums[dst].Add(t.sums[src])
			f.counts[dst] += t.counts[src]
		}
	}
}

// Image converts the film to 8-bit RGB with gamma 2 and clamping
func (f *Film) Image() *image.RGBA {
	img := image.NewRGBA(f.Bounds())
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			img.SetRGBA(x, y, toRGBA(f.Color(x, y)))
		}
	}
	return img
}

func toRGBA(c core.Vec3) color.RGBA {
	c = c.GammaCorrect(2.0).Clamp(0.0, 1.0)
	return color.RGBA{
		R: uint8(255 * c.X),
		G: uint8(255 * c.Y),
		B: uint8(255 * c.Z),
		A: 255,
	}
}

// FilmTile is the private accumulation buffer of one tile
type FilmTile struct {
	Bounds image.Rectangle
	sums   []core.Vec3
	counts []float64
}

// NewFilmTile creates an empty tile buffer covering bounds
func NewFilmTile(bounds image.Rectangle) *FilmTile {
	n := bounds.Dx() * bounds.Dy()
	return &FilmTile{
		Bounds: bounds,
		sums:   make([]core.Vec3, n),
		counts: make([]float64, n),
	}
}

func (t *FilmTile) index(x, y int) int {
	return (y-t.Bounds.Min.Y)*t.Bounds.Dx() + (x - t.Bounds.Min.X)
}

// AddSample records one radiance sample for pixel p, which must lie in the tile
func (t *FilmTile) AddSample(p image.Point, L core.Vec3) {
	i := t.index(p.X, p.Y)
	t.sums[i] = t.sums[i].Add(L)
	t.counts[i]++
}
