package integrator

import (
	"context"

	"github.com/golang/glog"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

// maxPathLengthBucket is the largest path length with its own histogram bucket
const maxPathLengthBucket = 64

var (
	keyIntegrator = tag.MustNewKey("integrator")

	MeasurePathLength        = stats.Int64("integrator/path_length", "Bounces taken before a path terminated", stats.UnitDimensionless)
	MeasureTotalPaths        = stats.Int64("integrator/total_paths", "Direct lighting estimates", stats.UnitDimensionless)
	MeasureZeroRadiancePaths = stats.Int64("integrator/zero_radiance_paths", "Direct lighting estimates that returned black", stats.UnitDimensionless)
	MeasureInvalidThroughput = stats.Int64("integrator/invalid_throughput", "Path weights clamped for being negative or not finite", stats.UnitDimensionless)

	PathLengthView = &view.View{
		Name:        "integrator/path_length",
		Description: "Distribution of path lengths",
		TagKeys:     []tag.Key{keyIntegrator},
		Measure:     MeasurePathLength,
		Aggregation: view.Distribution(pathLengthBuckets()...),
	}
	TotalPathsView = &view.View{
		Name:        "integrator/total_paths",
		Description: "Number of direct lighting estimates",
		TagKeys:     []tag.Key{keyIntegrator},
		Measure:     MeasureTotalPaths,
		Aggregation: view.Sum(),
	}
	ZeroRadiancePathsView = &view.View{
		Name:        "integrator/zero_radiance_paths",
		Description: "Number of direct lighting estimates that found no light",
		TagKeys:     []tag.Key{keyIntegrator},
		Measure:     MeasureZeroRadiancePaths,
		Aggregation: view.Sum(),
	}
	InvalidThroughputView = &view.View{
		Name:        "integrator/invalid_throughput",
		Description: "Number of path weights clamped to black",
		Measure:     MeasureInvalidThroughput,
		Aggregation: view.Sum(),
	}
)

func pathLengthBuckets() []float64 {
	bounds := make([]float64, maxPathLengthBucket)
	for i := range bounds {
		bounds[i] = float64(i + 1)
	}
	return bounds
}

// RegisterViews enables aggregation of the path statistics
func RegisterViews() error {
	return view.Register(PathLengthView, TotalPathsView, ZeroRadiancePathsView, InvalidThroughputView)
}

// UnregisterViews stops aggregation and drops collected data
func UnregisterViews() {
	view.Unregister(PathLengthView, TotalPathsView, ZeroRadiancePathsView, InvalidThroughputView)
}

// LogStats writes the aggregated path statistics to the info log
func LogStats() {
	for _, v := range []*view.View{PathLengthView, TotalPathsView, ZeroRadiancePathsView, InvalidThroughputView} {
		rows, err := view.RetrieveData(v.Name)
		if err != nil {
			glog.Warningf("Stats %s unavailable: %v", v.Name, err)
			continue
		}
		for _, row := range rows {
			name := ""
			for _, t := range row.Tags {
				if t.Key == keyIntegrator {
					name = t.Value
				}
			}
			switch data := row.Data.(type) {
			case *view.DistributionData:
				glog.Infof("%s [%s]: count=%d mean=%.3f min=%.0f max=%.0f", v.Name, name, data.Count, data.Mean, data.Min, data.Max)
			case *view.SumData:
				glog.Infof("%s [%s]: %.0f", v.Name, name, data.Value)
			}
		}
	}
}

// pathRecorder records per-path statistics tagged with the integrator name
type pathRecorder struct {
	ctx context.Context
}

func newPathRecorder(name string) pathRecorder {
	ctx, err := tag.New(context.Background(), tag.Upsert(keyIntegrator, name))
	if err != nil {
		glog.Errorf("while tagging stats for %s: %v", name, err)
		ctx = context.Background()
	}
	return pathRecorder{ctx: ctx}
}

// record reports the length of one path and its direct lighting counts
func (r pathRecorder) record(length, directEstimates, zeroRadiance int) {
	stats.Record(r.ctx,
		MeasurePathLength.M(int64(length)),
		MeasureTotalPaths.M(int64(directEstimates)),
		MeasureZeroRadiancePaths.M(int64(zeroRadiance)))
}
