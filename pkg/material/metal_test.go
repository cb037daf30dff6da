package material

import (
	"testing"

	"github.com/df07/go-path-integrator/pkg/core"
)

func TestNewMirror_AlbedoClamp(t *testing.T) {
	tests := []struct {
		name  string
		input core.Vec3
		want  core.Vec3
	}{
		{"in range", core.NewVec3(0.2, 0.5, 1), core.NewVec3(0.2, 0.5, 1)},
		{"clamp above 1", core.NewVec3(1.5, 2, 0.5), core.NewVec3(1, 1, 0.5)},
		{"clamp below 0", core.NewVec3(-0.5, 0.3, -10), core.NewVec3(0, 0.3, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewMirror(tt.input).Albedo; got != tt.want {
				t.Errorf("Expected albedo %v, got %v", tt.want, got)
			}
		})
	}
}

func TestMirror_ReflectsWithAlbedo(t *testing.T) {
	albedo := core.NewVec3(0.9, 0.5, 0.2)
	si := surfaceAt(NewMirror(albedo))
	si.ComputeScatteringFunctions(NewArena(), Radiance, true)

	wo := core.NewVec3(0.5, 0.5, 1).Normalize()
	s := si.BSDF.Sample(wo, core.NewVec2(0.7, 0.1))
	if !s.IsSpecular() || s.IsTransmission() {
		t.Fatalf("Expected specular reflection, got type %b", s.Type)
	}
	want := core.NewVec3(-0.5, -0.5, 1).Normalize()
	if s.Wi.Subtract(want).Length() > 1e-9 {
		t.Errorf("Expected %v, got %v", want, s.Wi)
	}
	weight := s.F.Multiply(s.Wi.AbsDot(si.ShadingNormal) / s.PDF)
	if weight.Subtract(albedo).Length() > 1e-9 {
		t.Errorf("Expected weight %v, got %v", albedo, weight)
	}
	// Delta lobes never match a fixed direction pair
	if !si.BSDF.Evaluate(wo, s.Wi).IsBlack() || si.BSDF.PDF(wo, s.Wi) != 0 {
		t.Error("Expected zero Evaluate and PDF for a delta lobe")
	}
}

func TestMirror_BlackAbsorbs(t *testing.T) {
	si := surfaceAt(NewMirror(core.Vec3{}))
	si.ComputeScatteringFunctions(NewArena(), Radiance, true)

	if n := si.BSDF.NumComponents(BSDFAll); n != 0 {
		t.Errorf("Expected no lobes for a black mirror, got %d", n)
	}
	if s := si.BSDF.Sample(core.NewVec3(0, 0, 1), core.NewVec2(0.5, 0.5)); s.Ok() {
		t.Errorf("Expected no sample from a black mirror, got %+v", s)
	}
}
