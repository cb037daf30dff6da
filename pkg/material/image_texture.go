package material

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"github.com/df07/go-path-integrator/pkg/core"
)

// ImageTexture looks colors up in a decoded image by UV
type ImageTexture struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Row-major: Pixels[y*Width + x], linear
}

// NewImageTexture converts img to linear colors, undoing the gamma 2 encoding
// the film uses when it writes images
func NewImageTexture(img image.Image) *ImageTexture {
	b := img.Bounds()
	t := &ImageTexture{Width: b.Dx(), Height: b.Dy(), Pixels: make([]core.Vec3, b.Dx()*b.Dy())}
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			c := core.NewVec3(float64(r), float64(g), float64(bl)).Multiply(1.0 / 0xffff)
			t.Pixels[y*t.Width+x] = c.MultiplyVec(c)
		}
	}
	return t
}

// LoadImageTexture decodes a PNG or JPEG file
func LoadImageTexture(path string) (*ImageTexture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("while decoding %s: %w", path, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("texture %s is empty", path)
	}
	return NewImageTexture(img), nil
}

// Evaluate returns the nearest pixel. UVs wrap, and v = 0 is the bottom row.
func (t *ImageTexture) Evaluate(uv core.Vec2, point core.Vec3) core.Vec3 {
	u := uv.X - math.Floor(uv.X)
	v := uv.Y - math.Floor(uv.Y)
	x := min(int(u*float64(t.Width)), t.Width-1)
	y := min(int((1-v)*float64(t.Height)), t.Height-1)
	return t.Pixels[y*t.Width+x]
}
