package lights

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/material"
)

// LightDistribution gives, for a point in the scene, a distribution over the
// scene's lights to choose one for direct lighting. Implementations are
// immutable after construction and safe for concurrent Lookup.
type LightDistribution interface {
	Lookup(p core.Vec3) *core.Distribution1D
}

// Strategy names accepted by NewLightDistribution
const (
	StrategyUniform = "uniform"
	StrategyPower   = "power"
	StrategySpatial = "spatial"
)

// NewLightDistribution builds the distribution named by strategy. Unknown
// names are reported and replaced by the spatial strategy. A single light
// always gets the uniform distribution.
func NewLightDistribution(ctx context.Context, strategy string, lights []Light, bounds core.AABB) (LightDistribution, error) {
	if strategy == StrategyUniform || len(lights) == 1 {
		return NewUniformLightDistribution(lights), nil
	}
	switch strategy {
	case StrategyPower:
		return NewPowerLightDistribution(lights), nil
	case StrategySpatial:
	default:
		glog.Errorf("Light sample distribution type %q unknown. Using \"spatial\".", strategy)
	}
	return NewSpatialLightDistribution(ctx, lights, bounds, defaultMaxVoxels)
}

// UniformLightDistribution picks every light with equal probability
type UniformLightDistribution struct {
	distrib *core.Distribution1D
}

// NewUniformLightDistribution creates a uniform distribution over lights
func NewUniformLightDistribution(lights []Light) *UniformLightDistribution {
	weights := make([]float64, len(lights))
	for i := range weights {
		weights[i] = 1
	}
	return &UniformLightDistribution{distrib: core.NewDistribution1D(weights)}
}

func (u *UniformLightDistribution) Lookup(p core.Vec3) *core.Distribution1D {
	return u.distrib
}

// PowerLightDistribution picks lights in proportion to their emitted power
type PowerLightDistribution struct {
	distrib *core.Distribution1D
}

// NewPowerLightDistribution weights each light by the luminance of its power
func NewPowerLightDistribution(lights []Light) *PowerLightDistribution {
	weights := make([]float64, len(lights))
	for i, light := range lights {
		weights[i] = math.Max(0, light.Power().Luminance())
	}
	return &PowerLightDistribution{distrib: core.NewDistribution1D(weights)}
}

func (d *PowerLightDistribution) Lookup(p core.Vec3) *core.Distribution1D {
	return d.distrib
}

// defaultMaxVoxels is the voxel count along the longest axis of the scene bounds
const defaultMaxVoxels = 16

// spatialSamples is the number of points estimated per voxel
const spatialSamples = 128

// SpatialLightDistribution partitions the scene bounds into voxels and
// weights lights by their estimated contribution inside each voxel. Every
// voxel is computed up front so lookups never write.
type SpatialLightDistribution struct {
	bounds  core.AABB
	nVoxels [3]int
	voxels  []*core.Distribution1D
}

// NewSpatialLightDistribution estimates a distribution for every voxel in
// parallel. It fails only when ctx is cancelled.
func NewSpatialLightDistribution(ctx context.Context, lights []Light, bounds core.AABB, maxVoxels int) (*SpatialLightDistribution, error) {
	d := &SpatialLightDistribution{bounds: bounds}

	diag := bounds.Size()
	maxExtent := diag.Component(bounds.LongestAxis())
	for i := 0; i < 3; i++ {
		n := 1
		if bounds.IsValid() && maxExtent > 0 {
			n = int(math.Round(diag.Component(i) / maxExtent * float64(maxVoxels)))
		}
		d.nVoxels[i] = max(1, n)
	}
	d.voxels = make([]*core.Distribution1D, d.nVoxels[0]*d.nVoxels[1]*d.nVoxels[2])
	glog.V(1).Infof("spatial light distribution: %d x %d x %d voxels, %d lights", d.nVoxels[0], d.nVoxels[1], d.nVoxels[2], len(lights))

	// One task per z slice, bounded by the number of CPUs
	eg, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(runtime.NumCPU()))
	for z := 0; z < d.nVoxels[2]; z++ {
		z := z
		if err := sem.Acquire(gctx, 1); err != nil {
			// Slices already started still write into d.voxels
			eg.Wait()
			return nil, fmt.Errorf("while acquiring voxel worker semaphore: %w", err)
		}
		eg.Go(func() error {
			defer sem.Release(1)
			for y := 0; y < d.nVoxels[1]; y++ {
				if err := gctx.Err(); err != nil {
					return fmt.Errorf("while computing voxel slice z=%d: %w", z, err)
				}
				for x := 0; x < d.nVoxels[0]; x++ {
					d.voxels[d.index(x, y, z)] = d.computeVoxel(lights, [3]int{x, y, z})
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("while waiting for light distribution workers: %w", err)
	}
	return d, nil
}

func (d *SpatialLightDistribution) index(x, y, z int) int {
	return (z*d.nVoxels[1]+y)*d.nVoxels[0] + x
}

// computeVoxel estimates each light's contribution at low-discrepancy points
// inside the voxel. No light is given zero probability, since the estimate
// can miss a light that still contributes.
func (d *SpatialLightDistribution) computeVoxel(lights []Light, v [3]int) *core.Distribution1D {
	voxelMin := core.NewVec3(
		float64(v[0])/float64(d.nVoxels[0]),
		float64(v[1])/float64(d.nVoxels[1]),
		float64(v[2])/float64(d.nVoxels[2]),
	)
	voxelSize := core.NewVec3(1/float64(d.nVoxels[0]), 1/float64(d.nVoxels[1]), 1/float64(d.nVoxels[2]))

	contrib := make([]float64, len(lights))
	for i := uint64(0); i < spatialSamples; i++ {
		offset := core.NewVec3(core.RadicalInverse(2, i), core.RadicalInverse(3, i), core.RadicalInverse(5, i))
		p := d.bounds.Lerp(voxelMin.Add(offset.MultiplyVec(voxelSize)))
		ref := &material.SurfaceInteraction{Point: p}
		u := core.NewVec2(core.RadicalInverse(7, i), core.RadicalInverse(11, i))
		for j, light := range lights {
			ls := light.SampleLi(ref, u)
			if ls.PDF > 0 {
				if lum := ls.Radiance.Luminance(); lum > 0 {
					contrib[j] += lum / ls.PDF
				}
			}
		}
	}

	sum := 0.0
	for _, c := range contrib {
		sum += c
	}
	avg := sum / float64(spatialSamples*max(1, len(contrib)))
	minContrib := 1.0
	if avg > 0 {
		minContrib = 0.001 * avg
	}
	for j := range contrib {
		contrib[j] = math.Max(contrib[j], minContrib)
	}
	return core.NewDistribution1D(contrib)
}

// Lookup returns the distribution of the voxel containing p. Points outside
// the bounds use the nearest voxel.
func (d *SpatialLightDistribution) Lookup(p core.Vec3) *core.Distribution1D {
	offset := d.bounds.Offset(p)
	var vi [3]int
	for i := 0; i < 3; i++ {
		vi[i] = max(0, min(int(offset.Component(i)*float64(d.nVoxels[i])), d.nVoxels[i]-1))
	}
	return d.voxels[d.index(vi[0], vi[1], vi[2])]
}
