package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/geometry"
	"github.com/df07/go-path-integrator/pkg/lights"
	"github.com/df07/go-path-integrator/pkg/material"
	"github.com/df07/go-path-integrator/pkg/scene"
)

// InspectResponse describes the first surface seen through a pixel
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType"`
	GeometryType string                 `json:"geometryType"`
	Emitter      bool                   `json:"emitter"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties"`
}

func vec(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c core.Vec3) string {
	c = c.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// extractMaterialInfo names a material and lists its parameters
func extractMaterialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})
	switch m := mat.(type) {
	case nil:
		return "none", properties
	case *material.Lambertian:
		if solid, ok := m.Albedo.(*material.SolidColor); ok {
			properties["albedo"] = vec(solid.Color)
			properties["color"] = hexColor(solid.Color)
		} else {
			properties["albedo"] = "textured"
		}
		return "lambertian", properties
	case *material.Mirror:
		properties["albedo"] = vec(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		return "mirror", properties
	case *material.Dielectric:
		properties["refractiveIndex"] = m.RefractiveIndex
		properties["reflectance"] = vec(m.Reflectance)
		properties["transmittance"] = vec(m.Transmittance)
		return "dielectric", properties
	case *material.Subsurface:
		properties["eta"] = m.Eta
		properties["albedo"] = vec(m.Albedo)
		properties["meanFreePath"] = vec(m.MeanFreePath)
		properties["scale"] = m.Scale
		properties["color"] = hexColor(m.Albedo)
		return "subsurface", properties
	}
	return "unknown", properties
}

// extractGeometryInfo names a shape and lists its parameters
func extractGeometryInfo(shape geometry.Shape, emitter material.AreaEmitter) (string, map[string]interface{}) {
	properties := make(map[string]interface{})
	switch l := emitter.(type) {
	case *lights.SphereLight:
		properties["emission"] = vec(l.Emission)
		properties["twoSided"] = l.TwoSided
	case *lights.QuadLight:
		properties["emission"] = vec(l.Emission)
		properties["twoSided"] = l.TwoSided
	}

	switch geom := shape.(type) {
	case *geometry.Sphere:
		properties["center"] = vec(geom.Center)
		properties["radius"] = geom.Radius
		return "sphere", properties
	case *geometry.Quad:
		properties["corner"] = vec(geom.Corner)
		properties["u"] = vec(geom.U)
		properties["v"] = vec(geom.V)
		properties["normal"] = vec(geom.Normal)
		return "quad", properties
	case *geometry.Disc:
		properties["center"] = vec(geom.Center)
		properties["normal"] = vec(geom.Normal)
		properties["radius"] = geom.Radius
		return "disk", properties
	case *geometry.TriangleMesh:
		properties["triangles"] = geom.TriangleCount()
		return "trianglemesh", properties
	}
	return "unknown", properties
}

// InspectResult is the first surface hit through a pixel center
type InspectResult struct {
	Hit         bool
	Interaction material.SurfaceInteraction
	Shape       geometry.Shape // nil if no single shape reproduces the hit
}

// inspectPixel casts a ray through the center of pixel (x, y) and finds the
// closest surface. The scene must be preprocessed.
func inspectPixel(sc *scene.Scene, x, y int) InspectResult {
	ray := sc.Camera.GetRay(float64(x)+0.5, float64(y)+0.5, core.NewVec2(0.5, 0.5))
	var si material.SurfaceInteraction
	if !sc.Intersect(ray, &si) {
		return InspectResult{}
	}

	// The BVH does not report which shape it hit, so find the shape whose own
	// intersection lands at the same distance
	for _, shape := range sc.Shapes {
		var shapeSI material.SurfaceInteraction
		if shape.Hit(ray, 1e-7, si.T*(1+1e-9)+1e-9, &shapeSI) && math.Abs(shapeSI.T-si.T) <= 1e-9*math.Max(1, si.T) {
			return InspectResult{Hit: true, Interaction: si, Shape: shape}
		}
	}
	return InspectResult{Hit: true, Interaction: si}
}

// handleInspect reports what the camera sees through one pixel
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	req, err := parseSceneParams(values)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid scene parameters: " + err.Error()})
		return
	}
	x, err := strconv.Atoi(values.Get("x"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid x coordinate"})
		return
	}
	y, err := strconv.Atoi(values.Get("y"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid y coordinate"})
		return
	}

	sc, err := createScene(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if x < 0 || x >= sc.SamplingConfig.Width || y < 0 || y >= sc.SamplingConfig.Height {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Pixel coordinates out of bounds"})
		return
	}

	result := inspectPixel(sc, x, y)
	if !result.Hit {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false})
		return
	}

	si := result.Interaction
	materialType, materialProps := extractMaterialInfo(si.Material)
	geometryType, geometryProps := extractGeometryInfo(result.Shape, si.AreaLight)
	writeJSON(w, http.StatusOK, InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: geometryType,
		Emitter:      si.AreaLight != nil,
		Point:        vec(si.Point),
		Normal:       vec(si.Normal),
		Distance:     si.T,
		FrontFace:    si.FrontFace,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": geometryProps,
		},
	})
}
