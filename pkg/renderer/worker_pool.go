package renderer

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/df07/go-path-integrator/pkg/integrator"
	"github.com/df07/go-path-integrator/pkg/scene"
)

// DefaultTileSize is the tile edge used when Config.TileSize is unset
const DefaultTileSize = 32

// Config controls how an image is split up and sampled
type Config struct {
	SamplesPerPixel int   // Samples added to every pixel by one Render call
	TileSize        int   // Edge length of a tile in pixels
	NumWorkers      int   // Tiles rendered at once, 0 means the number of CPUs
	Seed            int64 // Offsets every tile's random stream
}

// Renderer renders the integrator's pixel bounds into a film, one tile per
// task. Tiles run concurrently, each with its own sampler and arena, and
// merge into the film when they finish.
type Renderer struct {
	tiles  *TileRenderer
	integ  integrator.Integrator
	config Config
}

// New creates a renderer. The scene and integrator must be preprocessed.
func New(s *scene.Scene, integ integrator.Integrator, config Config) *Renderer {
	if config.NumWorkers <= 0 {
		config.NumWorkers = runtime.NumCPU()
	}
	if config.TileSize <= 0 {
		config.TileSize = DefaultTileSize
	}
	return &Renderer{
		tiles:  NewTileRenderer(s, integ),
		integ:  integ,
		config: config,
	}
}

// Render adds SamplesPerPixel samples to every pixel of the integrator's
// pixel bounds. Samples already in the film are kept. On cancellation the
// tiles finished so far, and the partial ones, are merged and the context
// error is returned.
func (r *Renderer) Render(ctx context.Context, film *Film) (RenderStats, error) {
	bounds := r.integ.PixelBounds().Intersect(film.Bounds())
	if bounds.Empty() {
		return RenderStats{}, fmt.Errorf("pixel bounds %v do not overlap the %dx%d film", r.integ.PixelBounds(), film.Width, film.Height)
	}
	firstSample := film.MinSamples(bounds)
	// Resumed renders must not replay the random streams of earlier ones
	tiles := NewTileGrid(bounds, r.config.TileSize, r.config.Seed+int64(firstSample)<<32)
	glog.Infof("Rendering %v with %s: %d tiles, %d spp from sample %d, %d workers",
		bounds, r.integ.Name(), len(tiles), r.config.SamplesPerPixel, firstSample, r.config.NumWorkers)
	start := time.Now()

	var mu sync.Mutex
	var total RenderStats

	eg, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(r.config.NumWorkers))
	var acquireErr error
	for _, tile := range tiles {
		tile := tile
		if err := sem.Acquire(gctx, 1); err != nil {
			acquireErr = fmt.Errorf("while waiting for a tile worker: %w", err)
			break
		}
		eg.Go(func() error {
			defer sem.Release(1)
			ft, stats, err := r.tiles.RenderTile(gctx, tile, r.config.SamplesPerPixel, firstSample)
			film.MergeTile(ft)

			mu.Lock()
			total.Merge(stats)
			mu.Unlock()
			if err != nil {
				return fmt.Errorf("while rendering tile %d %v: %w", tile.ID, tile.Bounds, err)
			}
			glog.V(1).Infof("Tile %d %v done", tile.ID, tile.Bounds)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return total, err
	}
	if acquireErr != nil {
		return total, acquireErr
	}

	glog.Infof("Rendered %d samples in %v (%.1f spp average, %d invalid)",
		total.TotalSamples, time.Since(start).Round(time.Millisecond), total.AverageSamples(), total.InvalidSamples)
	return total, nil
}
