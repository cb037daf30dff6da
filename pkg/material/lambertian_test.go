package material

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-path-integrator/pkg/core"
)

// surfaceAt builds an interaction at the origin facing +Z
func surfaceAt(m Material) *SurfaceInteraction {
	normal := core.NewVec3(0, 0, 1)
	return &SurfaceInteraction{
		Point:         core.NewVec3(0, 0, 0),
		Normal:        normal,
		ShadingNormal: normal,
		FrontFace:     true,
		Material:      m,
	}
}

func TestLambertian_PDFCalculation(t *testing.T) {
	lambertian := NewLambertian(core.NewVec3(0.8, 0.8, 0.8))
	si := surfaceAt(lambertian)
	si.ComputeScatteringFunctions(NewArena(), Radiance, true)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))
	wo := core.NewVec3(0, 0, 1)

	for i := 0; i < 100; i++ {
		s := si.BSDF.Sample(wo, sampler.Get2D())
		if !s.Ok() {
			t.Fatal("Lambertian should always scatter")
		}
		expectedPDF := s.Wi.Dot(si.Normal) / math.Pi
		if math.Abs(s.PDF-expectedPDF) > 1e-10 {
			t.Errorf("PDF mismatch: got %f, expected %f", s.PDF, expectedPDF)
		}
		if math.Abs(si.BSDF.PDF(wo, s.Wi)-s.PDF) > 1e-10 {
			t.Errorf("PDF() disagrees with sampled pdf: %f vs %f", si.BSDF.PDF(wo, s.Wi), s.PDF)
		}
	}
}

func TestLambertian_EnergyConservation(t *testing.T) {
	albedo := core.NewVec3(0.5, 0.7, 0.9)
	si := surfaceAt(NewLambertian(albedo))
	si.ComputeScatteringFunctions(NewArena(), Radiance, true)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))
	wo := core.NewVec3(0.3, 0, 1).Normalize()

	const n = 2000
	var sum core.Vec3
	for i := 0; i < n; i++ {
		s := si.BSDF.Sample(wo, sampler.Get2D())
		sum = sum.Add(s.F.Multiply(s.Wi.AbsDot(si.ShadingNormal) / s.PDF))
	}
	mean := sum.Multiply(1.0 / n)

	// Cosine sampling makes every weight exactly albedo
	tolerance := 1e-9
	if math.Abs(mean.X-albedo.X) > tolerance || math.Abs(mean.Y-albedo.Y) > tolerance || math.Abs(mean.Z-albedo.Z) > tolerance {
		t.Errorf("Expected mean throughput %v, got %v", albedo, mean)
	}
}

func TestLambertian_SamplesOnOutgoingSide(t *testing.T) {
	si := surfaceAt(NewLambertian(core.Gray(0.5)))
	si.ComputeScatteringFunctions(NewArena(), Radiance, true)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(3)))

	// Viewed from below the surface the lobe flips
	wo := core.NewVec3(0, 0.2, -1).Normalize()
	for i := 0; i < 100; i++ {
		s := si.BSDF.Sample(wo, sampler.Get2D())
		if s.Wi.Z > 0 {
			t.Fatalf("Expected sample below the surface, got %v", s.Wi)
		}
	}
}

func TestLambertian_BlackAlbedoAbsorbs(t *testing.T) {
	si := surfaceAt(NewLambertian(core.Vec3{}))
	si.ComputeScatteringFunctions(NewArena(), Radiance, true)

	if si.BSDF == nil {
		t.Fatal("Expected a BSDF even for black albedo")
	}
	if si.BSDF.HasNonSpecular() {
		t.Error("Expected no lobes for black albedo")
	}
	if s := si.BSDF.Sample(core.NewVec3(0, 0, 1), core.NewVec2(0.3, 0.3)); s.Ok() {
		t.Errorf("Expected an empty sample, got %+v", s)
	}
}

func TestCheckerboard_Alternates(t *testing.T) {
	checker := NewCheckerboard(core.Gray(1), core.Gray(0), 4)
	tests := []struct {
		uv   core.Vec2
		want core.Vec3
	}{
		{core.NewVec2(0.1, 0.1), core.Gray(1)},
		{core.NewVec2(0.3, 0.1), core.Gray(0)},
		{core.NewVec2(0.3, 0.3), core.Gray(1)},
	}
	for _, tt := range tests {
		if got := checker.Evaluate(tt.uv, core.Vec3{}); got != tt.want {
			t.Errorf("Evaluate(%v) = %v, want %v", tt.uv, got, tt.want)
		}
	}
}
