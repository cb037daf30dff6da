package geometry

import (
	"fmt"

	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/material"
)

// TriangleMesh is an indexed triangle list with its own BVH, so the scene
// BVH sees it as a single shape
type TriangleMesh struct {
	triangles []Shape
	bvh       *BVH
	bbox      core.AABB
}

// NewTriangleMesh builds a mesh from vertices and indices, three per
// triangle. Degenerate triangles are skipped.
func NewTriangleMesh(vertices []core.Vec3, indices []int, mat material.Material) (*TriangleMesh, error) {
	if len(indices) == 0 || len(indices)%3 != 0 {
		return nil, fmt.Errorf("index count must be a positive multiple of 3, got %d", len(indices))
	}
	for _, i := range indices {
		if i < 0 || i >= len(vertices) {
			return nil, fmt.Errorf("index %d out of range for %d vertices", i, len(vertices))
		}
	}

	triangles := make([]Shape, 0, len(indices)/3)
	bbox := core.EmptyAABB()
	for i := 0; i < len(indices); i += 3 {
		v0, v1, v2 := vertices[indices[i]], vertices[indices[i+1]], vertices[indices[i+2]]
		if v1.Subtract(v0).Cross(v2.Subtract(v0)).IsBlack() {
			continue
		}
		triangle := NewTriangle(v0, v1, v2, mat)
		triangles = append(triangles, triangle)
		bbox = bbox.Union(triangle.BoundingBox())
	}
	if len(triangles) == 0 {
		return nil, fmt.Errorf("all %d triangles are degenerate", len(indices)/3)
	}

	return &TriangleMesh{
		triangles: triangles,
		bvh:       NewBVH(triangles),
		bbox:      bbox,
	}, nil
}

// Hit finds the closest triangle hit through the mesh's BVH
func (tm *TriangleMesh) Hit(ray core.Ray, tMin, tMax float64, si *material.SurfaceInteraction) bool {
	return tm.bvh.Hit(ray, tMin, tMax, si)
}

// BoundingBox returns the axis-aligned bounding box for the entire mesh
func (tm *TriangleMesh) BoundingBox() core.AABB {
	return tm.bbox
}

// TriangleCount returns the number of non-degenerate triangles
func (tm *TriangleMesh) TriangleCount() int {
	return len(tm.triangles)
}
