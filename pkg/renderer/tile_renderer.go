package renderer

import (
	"context"
	"image"
	"math"
	"math/rand"

	"github.com/golang/glog"

	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/integrator"
	"github.com/df07/go-path-integrator/pkg/material"
	"github.com/df07/go-path-integrator/pkg/scene"
)

// Tile is a rectangle of pixels rendered by a single worker
type Tile struct {
	ID     int
	Bounds image.Rectangle
	Random *rand.Rand // Tile-specific random generator for deterministic results
}

// NewTile creates a tile whose random stream depends only on its ID and seed
func NewTile(id int, bounds image.Rectangle, seed int64) *Tile {
	return &Tile{
		ID:     id,
		Bounds: bounds,
		Random: rand.New(rand.NewSource(seed + int64(id) + 42)), // +42 to avoid seed 0
	}
}

// NewTileGrid covers bounds with tiles of at most tileSize×tileSize pixels
func NewTileGrid(bounds image.Rectangle, tileSize int, seed int64) []*Tile {
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}
	var tiles []*Tile
	for y0 := bounds.Min.Y; y0 < bounds.Max.Y; y0 += tileSize {
		for x0 := bounds.Min.X; x0 < bounds.Max.X; x0 += tileSize {
			x1 := min(x0+tileSize, bounds.Max.X)
			y1 := min(y0+tileSize, bounds.Max.Y)
			tiles = append(tiles, NewTile(len(tiles), image.Rect(x0, y0, x1, y1), seed))
		}
	}
	return tiles
}

// TileRenderer renders tiles of a scene with an integrator
type TileRenderer struct {
	scene      *scene.Scene
	integrator integrator.Integrator
}

// NewTileRenderer creates a new tile renderer with the given scene and integrator
func NewTileRenderer(s *scene.Scene, integ integrator.Integrator) *TileRenderer {
	return &TileRenderer{scene: s, integrator: integ}
}

// RenderTile takes spp camera samples in every pixel of the tile. Sample
// indices start at firstSample so resumed renders continue the sequence.
// ctx is checked between samples; on cancellation the partial tile is
// returned together with the context error.
func (tr *TileRenderer) RenderTile(ctx context.Context, tile *Tile, spp, firstSample int) (*FilmTile, RenderStats, error) {
	camera := tr.scene.Camera
	sampler := core.NewRandomSampler(tile.Random)
	arena := material.NewArena()
	ft := NewFilmTile(tile.Bounds)
	stats := RenderStats{}
	differentialScale := 1 / math.Sqrt(math.Max(1, float64(spp)))

	for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
		for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
			pixel := image.Pt(x, y)
			for i := 0; i < spp; i++ {
				if err := ctx.Err(); err != nil {
					return ft, stats, err
				}
				sampler.StartPixelSample(pixel, firstSample+i)
				filmX := float64(x) + sampler.Get1D()
				filmY := float64(y) + sampler.Get1D()
				ray := camera.GetRay(filmX, filmY, sampler.Get2D())
				ray.ScaleDifferentials(differentialScale)

				L := tr.integrator.Li(ray, tr.scene, sampler, arena)
				arena.Reset()
				if !L.IsFinite() || L.HasNegative() {
					glog.Errorf("Invalid radiance %v returned for pixel (%d, %d), sample %d. Setting to black.", L, x, y, firstSample+i)
					L = core.Vec3{}
					stats.InvalidSamples++
				}
				ft.AddSample(pixel, L)
				stats.TotalSamples++
			}
			stats.TotalPixels++
		}
	}
	stats.TilesRendered = 1
	return ft, stats, nil
}
