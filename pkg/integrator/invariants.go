//go:build !debugchecks
// +build !debugchecks

package integrator

import (
	"context"

	"github.com/golang/glog"
	"go.opencensus.io/stats"

	"github.com/df07/go-path-integrator/pkg/core"
)

// checkThroughput clamps an invalid path weight to black, which ends the
// path at the next black-weight check. Every clamp is counted in
// MeasureInvalidThroughput.
func checkThroughput(beta core.Vec3, where string) core.Vec3 {
	if beta.HasNegative() || !beta.IsFinite() {
		glog.V(1).Infof("Invalid throughput %v after %s, terminating path", beta, where)
		stats.Record(context.Background(), MeasureInvalidThroughput.M(1))
		return core.Vec3{}
	}
	return beta
}
