package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/material"
)

// mockShape reports a hit at a fixed t for rays travelling along +X
type mockShape struct {
	boundingBox core.AABB
	t           float64 // 0 never hits
}

func (m mockShape) Hit(ray core.Ray, tMin, tMax float64, si *material.SurfaceInteraction) bool {
	if m.t == 0 || ray.Direction.X <= 0 || m.t <= tMin || m.t >= tMax {
		return false
	}
	*si = material.SurfaceInteraction{T: m.t, Point: ray.At(m.t)}
	return true
}

func (m mockShape) BoundingBox() core.AABB {
	return m.boundingBox
}

func unitBoxAt(x float64) core.AABB {
	return core.NewAABB(core.NewVec3(x, 0, 0), core.NewVec3(x+1, 1, 1))
}

func TestBVH_LeafThresholdBoundary(t *testing.T) {
	shapes := make([]Shape, leafThreshold)
	for i := range shapes {
		shapes[i] = mockShape{boundingBox: unitBoxAt(float64(i))}
	}

	stats := NewBVH(shapes).getStats()
	if stats.totalNodes != 1 || stats.leafNodes != 1 {
		t.Errorf("Expected a single leaf for %d shapes, got %d nodes", len(shapes), stats.totalNodes)
	}

	shapes = append(shapes, mockShape{boundingBox: unitBoxAt(leafThreshold)})
	stats = NewBVH(shapes).getStats()
	if stats.totalNodes == 1 {
		t.Errorf("Expected split for %d shapes, but got single node", len(shapes))
	}
	if stats.leafNodes < 2 {
		t.Errorf("Expected at least 2 leaf nodes after split, got %d", stats.leafNodes)
	}
	if stats.totalShapes != len(shapes) {
		t.Errorf("Expected %d shapes in leaves, got %d", len(shapes), stats.totalShapes)
	}
}

func TestBVH_EmptyScene(t *testing.T) {
	bvh := NewBVH(nil)
	if bvh.Root != nil {
		t.Error("Expected nil root for empty BVH")
	}

	var si material.SurfaceInteraction
	ray := core.NewRay(core.Vec3{}, core.NewVec3(1, 0, 0))
	if bvh.Hit(ray, 1e-7, math.Inf(1), &si) || bvh.HitAny(ray, 1e-7, math.Inf(1)) {
		t.Error("Expected no hit for empty BVH")
	}
	if bvh.BoundingBox().IsValid() {
		t.Error("Expected empty bounds for empty BVH")
	}
}

func TestBVH_ClosestHitAcrossNodes(t *testing.T) {
	// Enough shapes to force internal nodes; each hitting shape reports the
	// distance to its box center along the ray
	var shapes []Shape
	for i := 0; i < 20; i++ {
		hitT := 0.0
		if i == 12 || i == 15 || i == 18 {
			hitT = float64(i) + 1.5
		}
		shapes = append(shapes, mockShape{boundingBox: unitBoxAt(float64(i)), t: hitT})
	}

	bvh := NewBVH(shapes)
	ray := core.NewRay(core.NewVec3(-1, 0.5, 0.5), core.NewVec3(1, 0, 0))

	var si material.SurfaceInteraction
	if !bvh.Hit(ray, 1e-7, math.Inf(1), &si) {
		t.Fatal("Expected hit")
	}
	if math.Abs(si.T-13.5) > 1e-9 {
		t.Errorf("Expected closest hit at t=13.5, got t=%f", si.T)
	}

	// Bounded segments exclude farther hits
	if bvh.Hit(ray, 1e-7, 10, &si) {
		t.Errorf("Expected no hit before t=10, got t=%f", si.T)
	}
	if !bvh.HitAny(ray, 1e-7, 17) {
		t.Error("Expected HitAny to find an occluder before t=17")
	}
}

func TestBVH_RealShapes(t *testing.T) {
	mat := material.NewLambertian(core.Gray(0.5))
	near := NewSphere(core.NewVec3(0, 0, -3), 1, mat)
	far := NewSphere(core.NewVec3(0, 0, -10), 1, mat)
	floor := NewQuad(core.NewVec3(-5, -1, -20), core.NewVec3(10, 0, 0), core.NewVec3(0, 0, 25), mat)

	bvh := NewBVH([]Shape{far, floor, near})
	var si material.SurfaceInteraction
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1))
	if !bvh.Hit(ray, 1e-7, math.Inf(1), &si) {
		t.Fatal("Expected hit")
	}
	if math.Abs(si.T-2) > 1e-9 {
		t.Errorf("Expected the near sphere at t=2, got %f", si.T)
	}
	if si.Material != material.Material(mat) {
		t.Error("Expected the sphere's material on the interaction")
	}
}
