package integrator

import (
	"math"
	"testing"

	"github.com/df07/go-path-integrator/pkg/core"
)

func TestRussianRoulette_Decisions(t *testing.T) {
	tests := []struct {
		name      string
		beta      core.Vec3
		etaScale  float64
		bounces   int
		u         float64
		wantAlive bool
		wantBeta  core.Vec3
	}{
		{"warm-up bounce", core.Gray(0.01), 1, 3, 0, true, core.Gray(0.01)},
		{"above threshold", core.Gray(1.5), 1, 10, 0, true, core.Gray(1.5)},
		{"eta scale lifts weight over threshold", core.Gray(0.5), 2.25, 10, 0, true, core.Gray(0.5)},
		{"terminated", core.Gray(0.2), 1, 4, 0.5, false, core.Gray(0.2)},
		{"survives and is boosted", core.Gray(0.2), 1, 4, 0.9, true, core.Gray(1)},
		{"minimum termination probability", core.Gray(0.99), 1, 4, 0.5, true, core.Gray(0.99 / 0.95)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotBeta, gotAlive := russianRoulette(tt.beta, tt.etaScale, tt.bounces, 1, &fixedSampler{values: []float64{tt.u}})
			if gotAlive != tt.wantAlive {
				t.Fatalf("russianRoulette() alive = %v, want %v", gotAlive, tt.wantAlive)
			}
			if gotAlive && !vecClose(gotBeta, tt.wantBeta, 1e-12) {
				t.Errorf("russianRoulette() beta = %v, want %v", gotBeta, tt.wantBeta)
			}
		})
	}
}

func TestRussianRoulette_Unbiased(t *testing.T) {
	betas := []core.Vec3{
		core.NewVec3(0.2, 0.1, 0.05),
		core.NewVec3(0.6, 0.6, 0.6),
		core.NewVec3(0.02, 0.9, 0.3),
	}
	const n = 200000
	for _, beta := range betas {
		sampler := newRandomSampler(23)
		var sum core.Vec3
		for i := 0; i < n; i++ {
			if got, alive := russianRoulette(beta, 1, 5, 1, sampler); alive {
				sum = sum.Add(got)
			}
		}
		mean := sum.Multiply(1.0 / n)
		for axis := 0; axis < 3; axis++ {
			want := beta.Component(axis)
			if math.Abs(mean.Component(axis)-want) > 0.02*math.Max(want, 0.05) {
				t.Errorf("beta %v: mean after roulette = %v, want %v", beta, mean, beta)
				break
			}
		}
	}
}
