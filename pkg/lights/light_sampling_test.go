package lights

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/material"
)

// blockAll is an occluder that blocks every segment
type blockAll bool

func (b blockAll) IntersectP(ray core.Ray) bool { return bool(b) }

func refAt(p, n core.Vec3) *material.SurfaceInteraction {
	return &material.SurfaceInteraction{Point: p, Normal: n, ShadingNormal: n, Wo: n}
}

func TestPointLight_InverseSquare(t *testing.T) {
	light := NewPointLight(core.NewVec3(0, 2, 0), core.Gray(8))
	ref := refAt(core.Vec3{}, core.NewVec3(0, 1, 0))

	ls := light.SampleLi(ref, core.NewVec2(0.5, 0.5))
	if ls.PDF != 1 {
		t.Errorf("Expected delta pdf 1, got %f", ls.PDF)
	}
	if ls.Radiance != core.Gray(2) {
		t.Errorf("Expected radiance 8/2² = 2, got %v", ls.Radiance)
	}
	if ls.Wi != core.NewVec3(0, 1, 0) {
		t.Errorf("Expected direction +Y, got %v", ls.Wi)
	}
	if !IsDelta(light) || light.PdfLi(ref, ls.Wi) != 0 {
		t.Error("Expected point light to be a delta light")
	}
	if !ls.Vis.Unoccluded(blockAll(false)) || ls.Vis.Unoccluded(blockAll(true)) {
		t.Error("Visibility tester did not follow the occluder")
	}
}

func TestQuadLight_SamplePDFMatchesPdfLi(t *testing.T) {
	// 2x2 light at y=2 facing down
	light := NewQuadLight(core.NewVec3(-1, 2, -1), core.NewVec3(2, 0, 0), core.NewVec3(0, 0, 2), core.Gray(4), nil)
	if light.Quad.Normal.Y >= 0 {
		t.Fatalf("Expected a downward-facing light, got normal %v", light.Quad.Normal)
	}
	ref := refAt(core.Vec3{}, core.NewVec3(0, 1, 0))
	random := rand.New(rand.NewSource(1))

	for i := 0; i < 50; i++ {
		ls := light.SampleLi(ref, core.NewVec2(random.Float64(), random.Float64()))
		if ls.PDF <= 0 {
			t.Fatalf("Expected positive pdf, got %f", ls.PDF)
		}
		if ls.Radiance != core.Gray(4) {
			t.Errorf("Expected emission facing the reference point, got %v", ls.Radiance)
		}
		if pdf := light.PdfLi(ref, ls.Wi); math.Abs(pdf-ls.PDF) > 1e-6*ls.PDF {
			t.Errorf("PdfLi = %f, sampled pdf %f", pdf, ls.PDF)
		}
	}

	// From above the light, its back faces the point
	ls := light.SampleLi(refAt(core.NewVec3(0, 5, 0), core.NewVec3(0, -1, 0)), core.NewVec2(0.5, 0.5))
	if !ls.Radiance.IsBlack() {
		t.Errorf("Expected no emission from the back, got %v", ls.Radiance)
	}
}

func TestAreaLightPower(t *testing.T) {
	quad := NewQuadLight(core.Vec3{}, core.NewVec3(2, 0, 0), core.NewVec3(0, 0, 3), core.Gray(1), nil)
	if got := quad.Power().X; math.Abs(got-6*math.Pi) > 1e-9 {
		t.Errorf("Quad power = %f, want %f", got, 6*math.Pi)
	}
	quad.TwoSided = true
	if got := quad.Power().X; math.Abs(got-12*math.Pi) > 1e-9 {
		t.Errorf("Two-sided quad power = %f, want %f", got, 12*math.Pi)
	}
	sphere := NewSphereLight(core.Vec3{}, 1, core.Gray(2), nil)
	if got := sphere.Power().X; math.Abs(got-8*math.Pi*math.Pi) > 1e-9 {
		t.Errorf("Sphere power = %f, want %f", got, 8*math.Pi*math.Pi)
	}
}

func TestSphereLight_ConeSampling(t *testing.T) {
	light := NewSphereLight(core.NewVec3(0, 5, 0), 1, core.Gray(3), nil)
	ref := refAt(core.Vec3{}, core.NewVec3(0, 1, 0))
	random := rand.New(rand.NewSource(9))

	cosThetaMax := math.Sqrt(1 - 1.0/25)
	wantPDF := 1 / (2 * math.Pi * (1 - cosThetaMax))
	for i := 0; i < 50; i++ {
		ls := light.SampleLi(ref, core.NewVec2(random.Float64(), random.Float64()))
		if math.Abs(ls.PDF-wantPDF) > 1e-9 {
			t.Fatalf("Expected cone pdf %f, got %f", wantPDF, ls.PDF)
		}
		if ls.Wi.Y < cosThetaMax-1e-9 {
			t.Errorf("Direction %v outside the subtended cone", ls.Wi)
		}
		if ls.Radiance != core.Gray(3) {
			t.Errorf("Expected visible emission, got %v", ls.Radiance)
		}
		if pdf := light.PdfLi(ref, ls.Wi); math.Abs(pdf-wantPDF) > 1e-9 {
			t.Errorf("PdfLi = %f, want %f", pdf, wantPDF)
		}
	}
	if light.PdfLi(ref, core.NewVec3(1, 0, 0)) != 0 {
		t.Error("Expected zero pdf for directions missing the sphere")
	}
}

func TestSphereLight_AttachedToShape(t *testing.T) {
	light := NewSphereLight(core.Vec3{}, 1, core.Gray(2), nil)
	var si material.SurfaceInteraction
	if !light.Hit(core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1)), 1e-7, math.Inf(1), &si) {
		t.Fatal("Expected hit")
	}
	if got := si.Le(si.Wo); got != core.Gray(2) {
		t.Errorf("Expected emitted radiance from the hit surface, got %v", got)
	}
	// Inside looking at the inner wall sees nothing
	if !light.Hit(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1)), 1e-7, math.Inf(1), &si) {
		t.Fatal("Expected hit from inside")
	}
	if got := si.Le(si.Wo); !got.IsBlack() {
		t.Errorf("Expected no emission on the inside, got %v", got)
	}
}

func TestInfiniteLights(t *testing.T) {
	uniform := NewUniformInfiniteLight(core.Gray(0.5))
	gradient := NewGradientInfiniteLight(core.NewVec3(0, 0, 1), core.NewVec3(1, 0, 0))
	for _, l := range []Light{uniform, gradient} {
		if err := l.(Preprocessor).Preprocess(core.Vec3{}, 10); err != nil {
			t.Fatalf("Preprocess: %v", err)
		}
	}

	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0))
	if uniform.Le(ray) != core.Gray(0.5) {
		t.Errorf("Uniform Le = %v", uniform.Le(ray))
	}
	if gradient.Le(ray) != core.NewVec3(0, 0, 1) {
		t.Errorf("Expected top color straight up, got %v", gradient.Le(ray))
	}

	ref := refAt(core.Vec3{}, core.NewVec3(0, 1, 0))
	random := rand.New(rand.NewSource(2))
	for i := 0; i < 50; i++ {
		ls := uniform.SampleLi(ref, core.NewVec2(random.Float64(), random.Float64()))
		if ls.Wi.Y < 0 {
			t.Fatalf("Expected a direction above the surface, got %v", ls.Wi)
		}
		if math.Abs(uniform.PdfLi(ref, ls.Wi)-ls.PDF) > 1e-9 {
			t.Errorf("PdfLi disagrees with sampled pdf")
		}
		if ls.Vis.To.Length() < 20 {
			t.Errorf("Expected visibility target outside the scene, got %v", ls.Vis.To)
		}
	}

	// Without a normal the whole sphere is sampled
	ls := uniform.SampleLi(&material.SurfaceInteraction{}, core.NewVec2(0.9, 0.1))
	if math.Abs(ls.PDF-core.UniformSpherePDF()) > 1e-12 {
		t.Errorf("Expected uniform sphere pdf, got %f", ls.PDF)
	}
}
