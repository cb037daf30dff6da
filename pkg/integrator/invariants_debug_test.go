//go:build debugchecks
// +build debugchecks

package integrator

import (
	"math"
	"testing"

	"github.com/df07/go-path-integrator/pkg/core"
)

func TestCheckThroughput_Panics(t *testing.T) {
	tests := []struct {
		name      string
		beta      core.Vec3
		wantPanic bool
	}{
		{"valid", core.NewVec3(0.5, 1, 2), false},
		{"black", core.Vec3{}, false},
		{"negative", core.NewVec3(0.5, -1e-9, 2), true},
		{"NaN", core.NewVec3(math.NaN(), 1, 1), true},
		{"infinite", core.NewVec3(1, math.Inf(1), 1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); (r != nil) != tt.wantPanic {
					t.Errorf("checkThroughput(%v) panic = %v, want panic %v", tt.beta, r, tt.wantPanic)
				}
			}()
			if got := checkThroughput(tt.beta, "test"); got != tt.beta {
				t.Errorf("checkThroughput(%v) = %v, want it unchanged", tt.beta, got)
			}
		})
	}
}
