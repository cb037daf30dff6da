package material

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-path-integrator/pkg/core"
)

// checkerImage is white in the top-left and bottom-right pixels
func checkerImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	white := color.NRGBA{255, 255, 255, 255}
	black := color.NRGBA{0, 0, 0, 255}
	img.Set(0, 0, white)
	img.Set(1, 0, black)
	img.Set(0, 1, black)
	img.Set(1, 1, white)
	return img
}

func TestImageTexture_Evaluate(t *testing.T) {
	texture := NewImageTexture(checkerImage())
	white, black := core.Gray(1), core.Gray(0)

	tests := []struct {
		name string
		uv   core.Vec2
		want core.Vec3
	}{
		{"bottom left", core.NewVec2(0.1, 0.1), black},
		{"bottom right", core.NewVec2(0.9, 0.1), white},
		{"top left", core.NewVec2(0.1, 0.9), white},
		{"top right", core.NewVec2(0.9, 0.9), black},
		{"wraps positive", core.NewVec2(1.1, 1.9), white},
		{"wraps negative", core.NewVec2(-0.1, -0.9), white},
		{"upper edge", core.NewVec2(1, 1), black},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := texture.Evaluate(tt.uv, core.Vec3{}); got != tt.want {
				t.Errorf("Evaluate(%v) = %v, want %v", tt.uv, got, tt.want)
			}
		})
	}
}

func TestImageTexture_Linearizes(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.Gray{Y: 0x80})
	got := NewImageTexture(img).Pixels[0]
	// 0x80 is about half, which decodes to about a quarter
	if got.X < 0.24 || got.X > 0.26 || got.X != got.Y || got.Y != got.Z {
		t.Errorf("Pixel = %v, want about (0.25, 0.25, 0.25)", got)
	}
}

func TestLoadImageTexture(t *testing.T) {
	name := filepath.Join(t.TempDir(), "checker.png")
	f, err := os.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, checkerImage()); err != nil {
		t.Fatal(err)
	}
	f.Close()

	texture, err := LoadImageTexture(name)
	if err != nil {
		t.Fatalf("LoadImageTexture() error: %v", err)
	}
	if texture.Width != 2 || texture.Height != 2 {
		t.Errorf("Size = %dx%d, want 2x2", texture.Width, texture.Height)
	}

	if _, err := LoadImageTexture(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("Expected an error for a missing file")
	}
	garbage := filepath.Join(t.TempDir(), "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadImageTexture(garbage); err == nil {
		t.Error("Expected an error for an undecodable file")
	}
}
