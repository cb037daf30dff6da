//go:build !debugchecks
// +build !debugchecks

package integrator

import (
	"math"
	"testing"

	"github.com/df07/go-path-integrator/pkg/core"
)

func TestCheckThroughput(t *testing.T) {
	tests := []struct {
		name string
		beta core.Vec3
		want core.Vec3
	}{
		{"valid", core.NewVec3(0.5, 1, 2), core.NewVec3(0.5, 1, 2)},
		{"black", core.Vec3{}, core.Vec3{}},
		{"negative", core.NewVec3(0.5, -1e-9, 2), core.Vec3{}},
		{"NaN", core.NewVec3(math.NaN(), 1, 1), core.Vec3{}},
		{"infinite", core.NewVec3(1, math.Inf(1), 1), core.Vec3{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checkThroughput(tt.beta, "test"); got != tt.want {
				t.Errorf("checkThroughput(%v) = %v, want %v", tt.beta, got, tt.want)
			}
		})
	}
}

func TestCheckThroughput_CountsClamps(t *testing.T) {
	if err := RegisterViews(); err != nil {
		t.Fatalf("RegisterViews() error: %v", err)
	}
	defer UnregisterViews()

	checkThroughput(core.NewVec3(1, 1, 1), "valid")
	checkThroughput(core.NewVec3(-1, 1, 1), "negative")
	checkThroughput(core.NewVec3(math.NaN(), 1, 1), "NaN")
	if got := invalidThroughputs(t); got != 2 {
		t.Errorf("counted %g invalid weights, want 2", got)
	}
}
