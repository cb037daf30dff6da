package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/material"
)

func TestDisc_Hit(t *testing.T) {
	// Unit disc at the origin facing +Y
	disc := NewDisc(core.NewVec3(0, 0, 0), core.NewVec3(0, 2, 0), 1, nil)

	tests := []struct {
		name      string
		ray       core.Ray
		wantHit   bool
		wantT     float64
		wantFront bool
		wantUV    core.Vec2
	}{
		{
			name:      "center from above",
			ray:       core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0)),
			wantHit:   true,
			wantT:     1,
			wantFront: true,
			wantUV:    core.NewVec2(0, 0),
		},
		{
			name:    "off center from below",
			ray:     core.NewRay(core.NewVec3(0.5, -2, 0), core.NewVec3(0, 1, 0)),
			wantHit: true,
			wantT:   2,
			wantUV:  core.NewVec2(0.5, 0.25),
		},
		{
			name: "outside radius",
			ray:  core.NewRay(core.NewVec3(1.1, 1, 0), core.NewVec3(0, -1, 0)),
		},
		{
			name: "parallel",
			ray:  core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(1, 0, 0)),
		},
		{
			name: "segment too short",
			ray:  core.NewSegment(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0), 0.5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var si material.SurfaceInteraction
			hit := disc.Hit(tt.ray, 1e-7, tt.ray.Extent(), &si)
			if hit != tt.wantHit {
				t.Fatalf("Hit = %v, want %v", hit, tt.wantHit)
			}
			if !hit {
				return
			}
			if math.Abs(si.T-tt.wantT) > 1e-9 {
				t.Errorf("T = %v, want %v", si.T, tt.wantT)
			}
			if si.FrontFace != tt.wantFront {
				t.Errorf("FrontFace = %v, want %v", si.FrontFace, tt.wantFront)
			}
			if math.Abs(si.UV.X-tt.wantUV.X) > 1e-9 || math.Abs(si.UV.Y-tt.wantUV.Y) > 1e-9 {
				t.Errorf("UV = %v, want %v", si.UV, tt.wantUV)
			}
			if si.Normal != core.NewVec3(0, 1, 0) {
				t.Errorf("Expected outward normal +Y, got %v", si.Normal)
			}
		})
	}
}

func TestDisc_BoundingBox(t *testing.T) {
	disc := NewDisc(core.NewVec3(1, 2, 3), core.NewVec3(0, 0, 1), 2, nil)
	box := disc.BoundingBox()
	for _, p := range []core.Vec3{core.NewVec3(3, 2, 3), core.NewVec3(-1, 2, 3), core.NewVec3(1, 4, 3), core.NewVec3(1, 0, 3)} {
		for axis := 0; axis < 3; axis++ {
			if p.Component(axis) < box.Min.Component(axis) || p.Component(axis) > box.Max.Component(axis) {
				t.Errorf("Rim point %v outside bounding box %v", p, box)
			}
		}
	}
	if box.Max.Z-box.Min.Z <= 0 {
		t.Errorf("Flat disc box has no depth: %v", box)
	}
}
