package scene

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/geometry"
	"github.com/df07/go-path-integrator/pkg/lights"
	"github.com/df07/go-path-integrator/pkg/loaders"
	"github.com/df07/go-path-integrator/pkg/material"
)

func twoSphereScene(t *testing.T) *Scene {
	t.Helper()
	gray := material.NewLambertian(core.Gray(0.5))
	s := &Scene{
		CameraConfig: geometry.CameraConfig{LookAt: core.NewVec3(0, 0, 1), Width: 8, AspectRatio: 1, VFov: 60},
		Shapes: []geometry.Shape{
			geometry.NewSphere(core.NewVec3(0, 0, 5), 1, gray),
			geometry.NewSphere(core.NewVec3(0, 0, 10), 1, gray),
		},
	}
	s.AddPointLight(core.NewVec3(0, 5, 0), core.Gray(1))
	s.AddUniformInfiniteLight(core.Gray(0.1))
	if err := s.Preprocess(); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	return s
}

func TestScene_Preprocess(t *testing.T) {
	s := twoSphereScene(t)
	if len(s.InfiniteLights) != 1 || s.InfiniteLights[0].Type() != lights.LightTypeInfinite {
		t.Errorf("Expected exactly the infinite light, got %v", s.InfiniteLights)
	}
	if s.SamplingConfig.Width != 8 || s.SamplingConfig.Height != 8 {
		t.Errorf("Expected image size from the camera, got %+v", s.SamplingConfig)
	}
	want := core.NewAABB(core.NewVec3(-1, -1, 4), core.NewVec3(1, 1, 11))
	if diff := cmp.Diff(s.Bounds(), want); diff != "" {
		t.Errorf("Bad bounds; diff (-got +want)\n%s", diff)
	}

	// A second Preprocess does not duplicate lights
	if err := s.Preprocess(); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if len(s.InfiniteLights) != 1 {
		t.Errorf("Expected 1 infinite light after re-preprocessing, got %d", len(s.InfiniteLights))
	}
}

func TestScene_Intersect(t *testing.T) {
	s := twoSphereScene(t)

	var si material.SurfaceInteraction
	if !s.Intersect(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1)), &si) {
		t.Fatal("Expected hit")
	}
	if math.Abs(si.T-4) > 1e-9 || !si.FrontFace {
		t.Errorf("Expected front hit at t=4, got t=%f front=%v", si.T, si.FrontFace)
	}
	if s.Intersect(core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0)), &si) {
		t.Error("Expected miss straight up")
	}

	tests := []struct {
		name string
		ray  core.Ray
		want bool
	}{
		{"unbounded", core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1)), true},
		{"segment short of the sphere", core.NewSegment(core.Vec3{}, core.NewVec3(0, 0, 1), 3.9), false},
		{"segment reaching the sphere", core.NewSegment(core.Vec3{}, core.NewVec3(0, 0, 1), 4.1), true},
		{"away from everything", core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.IntersectP(tt.ray); got != tt.want {
				t.Errorf("IntersectP = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuiltinScenes(t *testing.T) {
	if diff := cmp.Diff(BuiltinNames(), []string{"cornell", "spheregrid", "spheres", "subsurface"}); diff != "" {
		t.Errorf("Bad builtin names; diff (-got +want)\n%s", diff)
	}
	for _, name := range BuiltinNames() {
		t.Run(name, func(t *testing.T) {
			s, err := Builtin(name)
			if err != nil {
				t.Fatalf("Builtin(%q): %v", name, err)
			}
			if err := s.Preprocess(); err != nil {
				t.Fatalf("Preprocess: %v", err)
			}
			if len(s.Lights) == 0 || len(s.Shapes) == 0 {
				t.Errorf("Expected lights and shapes, got %d lights %d shapes", len(s.Lights), len(s.Shapes))
			}
			// The camera looks at something
			ray := s.Camera.GetRay(float64(s.Camera.Width())/2, float64(s.Camera.Height())/2, core.NewVec2(0.5, 0.5))
			var si material.SurfaceInteraction
			if !s.Intersect(ray, &si) {
				t.Error("Expected the center pixel to see geometry")
			}
		})
	}
	if _, err := Builtin("nope"); err == nil {
		t.Error("Expected an error for an unknown scene")
	}
}

func TestCornellLightFacesDown(t *testing.T) {
	s := NewCornellScene()
	quad, ok := s.Lights[0].(*lights.QuadLight)
	if !ok {
		t.Fatalf("Expected a quad light, got %T", s.Lights[0])
	}
	if quad.Quad.Normal.Y > -0.999 {
		t.Errorf("Expected the ceiling light to face down, got %v", quad.Quad.Normal)
	}
}

const describedScene = `LookAt 0 0 -5  0 0 0  0 1 0
Camera "perspective" "float fov" 45
Film "image" "integer xresolution" 32 "integer yresolution" 16
Sampler "random" "integer pixelsamples" 4
Integrator "path" "integer maxdepth" 3
WorldBegin
LightSource "point" "rgb I" [5 5 5] "point3 from" [0 4 0]
LightSource "infinite" "rgb top" [0 0 1] "rgb bottom" [1 1 1]
Material "matte" "rgb Kd" [.2 .4 .6]
Shape "sphere" "float radius" 1
Shape "sphere" "float radius" 0.5 "point3 center" [2 0 0]
AttributeBegin
  AreaLightSource "diffuse" "rgb L" [3 3 3] "bool twosided" true
  Material "none"
  Shape "quad" "point3 corner" [-1 3 -1] "vector3 u" [2 0 0] "vector3 v" [0 0 2]
AttributeEnd
Material "subsurface" "float eta" 1.4 "rgb mfp" [1 2 3] "float scale" 0.5
Shape "sphere" "float radius" 0.25 "point3 center" [-2 0 0]
WorldEnd
`

func TestFromDescription(t *testing.T) {
	desc, err := loaders.ParseScene(strings.NewReader(describedScene))
	if err != nil {
		t.Fatalf("ParseScene: %v", err)
	}
	s, err := FromDescription(desc)
	if err != nil {
		t.Fatalf("FromDescription: %v", err)
	}

	if s.CameraConfig.Width != 32 || s.CameraConfig.AspectRatio != 2 || s.CameraConfig.VFov != 45 {
		t.Errorf("Bad camera config %+v", s.CameraConfig)
	}
	if s.SamplingConfig.SamplesPerPixel != 4 {
		t.Errorf("Expected 4 samples per pixel, got %d", s.SamplingConfig.SamplesPerPixel)
	}
	if s.IntegratorName != "path" {
		t.Errorf("Expected integrator name \"path\", got %q", s.IntegratorName)
	}
	if got := s.IntegratorParams.FindOneInt("maxdepth", 5); got != 3 {
		t.Errorf("Expected integrator params to be carried, maxdepth = %d", got)
	}
	if len(s.Shapes) != 4 || len(s.Lights) != 3 {
		t.Fatalf("Expected 4 shapes and 3 lights, got %d and %d", len(s.Shapes), len(s.Lights))
	}

	first := s.Shapes[0].(*geometry.Sphere)
	second := s.Shapes[1].(*geometry.Sphere)
	if first.Material != second.Material {
		t.Error("Expected shapes under one Material directive to share it")
	}
	// Area lights are added with their shapes, before the standalone lights
	quad := s.Lights[0].(*lights.QuadLight)
	if !quad.TwoSided || quad.Quad.Material != nil {
		t.Errorf("Expected a two-sided emitter without material, got %+v", quad)
	}
	if _, ok := s.Lights[2].(*lights.GradientInfiniteLight); !ok {
		t.Errorf("Expected a gradient sky, got %T", s.Lights[2])
	}
	sss := s.Shapes[3].(*geometry.Sphere).Material.(*material.Subsurface)
	if sss.Eta != 1.4 || sss.Scale != 0.5 || sss.MeanFreePath != core.NewVec3(1, 2, 3) {
		t.Errorf("Bad subsurface material %+v", sss)
	}
}

func TestFromDescription_SpotLight(t *testing.T) {
	content := `WorldBegin
LightSource "spot" "rgb I" [4 4 4] "point3 from" [0 5 0] "point3 to" [0 0 0] "float coneangle" 20
`
	desc, err := loaders.ParseScene(strings.NewReader(content))
	if err != nil {
		t.Fatalf("ParseScene: %v", err)
	}
	s, err := FromDescription(desc)
	if err != nil {
		t.Fatalf("FromDescription: %v", err)
	}
	spot, ok := s.Lights[0].(*lights.SpotLight)
	if !ok {
		t.Fatalf("Light is %T, want a spot light", s.Lights[0])
	}
	want := &lights.SpotLight{Position: core.NewVec3(0, 5, 0), Direction: core.NewVec3(0, -1, 0), Intensity: core.Gray(4)}
	if diff := cmp.Diff(spot, want, cmpopts.IgnoreUnexported(lights.SpotLight{})); diff != "" {
		t.Errorf("Spot light mismatch (-got +want):\n%s", diff)
	}
}

func TestFromDescription_MeshesAndDisks(t *testing.T) {
	content := `WorldBegin
Material "matte"
Shape "trianglemesh" "integer indices" [0 1 2 0 2 3] "point3 P" [0 0 0 1 0 0 1 1 0 0 1 0]
Shape "trianglemesh" "point3 P" [0 0 1 1 0 1 0 1 1]
Shape "disk" "point3 center" [0 0 2] "vector3 normal" [0 0 -1] "float radius" 0.5
`
	desc, err := loaders.ParseScene(strings.NewReader(content))
	if err != nil {
		t.Fatalf("ParseScene: %v", err)
	}
	s, err := FromDescription(desc)
	if err != nil {
		t.Fatalf("FromDescription: %v", err)
	}
	if len(s.Shapes) != 3 {
		t.Fatalf("Expected 3 shapes, got %d", len(s.Shapes))
	}
	if disc, ok := s.Shapes[2].(*geometry.Disc); !ok || disc.Radius != 0.5 || disc.Normal != core.NewVec3(0, 0, -1) {
		t.Errorf("Shape 2 = %+v, want a disc of radius 0.5 facing -Z", s.Shapes[2])
	}
	for i, want := range []int{2, 1} {
		mesh, ok := s.Shapes[i].(*geometry.TriangleMesh)
		if !ok {
			t.Fatalf("Shape %d is %T, want a triangle mesh", i, s.Shapes[i])
		}
		if mesh.TriangleCount() != want {
			t.Errorf("Mesh %d has %d triangles, want %d", i, mesh.TriangleCount(), want)
		}
	}
}

func TestFromDescription_TexturedMatte(t *testing.T) {
	name := filepath.Join(t.TempDir(), "red.png")
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	f, err := os.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	content := "WorldBegin\nMaterial \"matte\" \"string Kd_map\" \"" + name + "\"\nShape \"sphere\"\n"
	desc, err := loaders.ParseScene(strings.NewReader(content))
	if err != nil {
		t.Fatalf("ParseScene: %v", err)
	}
	s, err := FromDescription(desc)
	if err != nil {
		t.Fatalf("FromDescription: %v", err)
	}
	sphere := s.Shapes[0].(*geometry.Sphere)
	lambertian, ok := sphere.Material.(*material.Lambertian)
	if !ok {
		t.Fatalf("Material is %T, want a lambertian", sphere.Material)
	}
	if got := lambertian.Albedo.Evaluate(core.NewVec2(0.5, 0.5), core.Vec3{}); got != core.NewVec3(1, 0, 0) {
		t.Errorf("Albedo = %v, want red", got)
	}
}

func TestLoadFile_PLYMeshRelativeToScene(t *testing.T) {
	dir := t.TempDir()
	ply := `ply
format ascii 1.0
element vertex 4
property float x
property float y
property float z
element face 1
property list uchar int vertex_indices
end_header
0 0 0
1 0 0
1 1 0
0 1 0
4 0 1 2 3
`
	if err := os.WriteFile(filepath.Join(dir, "square.ply"), []byte(ply), 0644); err != nil {
		t.Fatal(err)
	}
	content := "WorldBegin\nShape \"plymesh\" \"string filename\" \"square.ply\"\n"
	if err := os.WriteFile(filepath.Join(dir, "mesh.pbrt"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadFile(filepath.Join(dir, "mesh.pbrt"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	mesh, ok := s.Shapes[0].(*geometry.TriangleMesh)
	if !ok {
		t.Fatalf("Shape is %T, want a triangle mesh", s.Shapes[0])
	}
	if mesh.TriangleCount() != 2 {
		t.Errorf("Mesh has %d triangles, want 2", mesh.TriangleCount())
	}
}

func TestFromDescription_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown material", "WorldBegin\nMaterial \"plastic\"\nShape \"sphere\"\n", "unknown material"},
		{"unknown shape", "WorldBegin\nShape \"torus\"\n", "unknown shape"},
		{"unknown light", "WorldBegin\nLightSource \"goniometric\"\n", "unknown light"},
		{"degenerate spot", "WorldBegin\nLightSource \"spot\" \"point3 from\" [0 1 0] \"point3 to\" [0 1 0]\n", "distinct"},
		{"bad integrator", "Integrator \"bdpt\"\nWorldBegin\n", "unsupported integrator"},
		{"mesh index out of range", "WorldBegin\nShape \"trianglemesh\" \"integer indices\" [0 1 5] \"point3 P\" [0 0 0 1 0 0 0 1 0]\n", "out of range"},
		{"emissive mesh", "WorldBegin\nAreaLightSource \"diffuse\"\nShape \"trianglemesh\" \"point3 P\" [0 0 0 1 0 0 0 1 0]\n", "not supported"},
		{"missing texture", "WorldBegin\nMaterial \"matte\" \"string Kd_map\" \"missing.png\"\nShape \"sphere\"\n", "Kd_map"},
		{"plymesh without file", "WorldBegin\nShape \"plymesh\"\n", "filename"},
		{"missing plymesh", "WorldBegin\nShape \"plymesh\" \"string filename\" \"missing.ply\"\n", "missing.ply"},
		{"flat disk", "WorldBegin\nShape \"disk\" \"float radius\" 0\n", "positive radius"},
		{"degenerate quad", "WorldBegin\nShape \"quad\" \"point3 corner\" [0 0 0] \"vector3 u\" [1 0 0] \"vector3 v\" [2 0 0]\n", "parallel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, err := loaders.ParseScene(strings.NewReader(tt.content))
			if err != nil {
				t.Fatalf("ParseScene: %v", err)
			}
			if _, err := FromDescription(desc); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
