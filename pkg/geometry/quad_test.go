package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/material"
)

func TestQuad_Hit(t *testing.T) {
	// Unit square in the z=0 plane, normal +Z
	quad := NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), nil)

	tests := []struct {
		name      string
		ray       core.Ray
		wantHit   bool
		wantFront bool
		wantUV    core.Vec2
	}{
		{
			name:      "center from above",
			ray:       core.NewRay(core.NewVec3(0.5, 0.5, 1), core.NewVec3(0, 0, -1)),
			wantHit:   true,
			wantFront: true,
			wantUV:    core.NewVec2(0.5, 0.5),
		},
		{
			name:    "corner from below",
			ray:     core.NewRay(core.NewVec3(0.25, 0.75, -1), core.NewVec3(0, 0, 1)),
			wantHit: true,
			wantUV:  core.NewVec2(0.25, 0.75),
		},
		{
			name: "outside bounds",
			ray:  core.NewRay(core.NewVec3(1.5, 0.5, 1), core.NewVec3(0, 0, -1)),
		},
		{
			name: "parallel",
			ray:  core.NewRay(core.NewVec3(0.5, 0.5, 1), core.NewVec3(1, 0, 0)),
		},
		{
			name: "segment too short",
			ray:  core.NewSegment(core.NewVec3(0.5, 0.5, 1), core.NewVec3(0, 0, -1), 0.5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var si material.SurfaceInteraction
			hit := quad.Hit(tt.ray, 1e-7, tt.ray.Extent(), &si)
			if hit != tt.wantHit {
				t.Fatalf("Hit = %v, want %v", hit, tt.wantHit)
			}
			if !hit {
				return
			}
			if si.FrontFace != tt.wantFront {
				t.Errorf("FrontFace = %v, want %v", si.FrontFace, tt.wantFront)
			}
			if math.Abs(si.UV.X-tt.wantUV.X) > 1e-9 || math.Abs(si.UV.Y-tt.wantUV.Y) > 1e-9 {
				t.Errorf("UV = %v, want %v", si.UV, tt.wantUV)
			}
			if si.Normal != core.NewVec3(0, 0, 1) {
				t.Errorf("Expected outward normal +Z, got %v", si.Normal)
			}
		})
	}
}

func TestQuad_AreaAndBounds(t *testing.T) {
	quad := NewQuad(core.NewVec3(1, 2, 3), core.NewVec3(2, 0, 0), core.NewVec3(0, 0, 3), nil)
	if math.Abs(quad.Area()-6) > 1e-12 {
		t.Errorf("Expected area 6, got %f", quad.Area())
	}
	box := quad.BoundingBox()
	if box.Size().Y <= 0 {
		t.Errorf("Expected padded bounds for a flat quad, got %v", box)
	}
	if p := quad.PointAt(core.NewVec2(1, 1)); p != core.NewVec3(3, 2, 6) {
		t.Errorf("PointAt(1,1) = %v, want (3,2,6)", p)
	}
}
