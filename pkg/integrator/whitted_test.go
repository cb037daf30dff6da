package integrator

import (
	"context"
	"testing"

	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/geometry"
	"github.com/df07/go-path-integrator/pkg/lights"
	"github.com/df07/go-path-integrator/pkg/material"
	"github.com/df07/go-path-integrator/pkg/scene"
)

func newTestWhitted(t *testing.T, s *scene.Scene, maxDepth int) *WhittedIntegrator {
	t.Helper()
	w := NewWhittedIntegrator(WhittedConfig{MaxDepth: maxDepth})
	if err := w.Preprocess(context.Background(), s); err != nil {
		t.Fatalf("WhittedIntegrator.Preprocess() error: %v", err)
	}
	return w
}

func TestWhittedIntegrator_Mirror(t *testing.T) {
	mirror := scene.NewGroundQuad(core.Vec3{}, 10, material.NewMirror(core.Gray(0.9)))
	sky := lights.NewUniformInfiniteLight(core.Gray(0.5))
	s := newTestScene(t, []geometry.Shape{mirror}, []lights.Light{sky})
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0.3, -1, 0.1).Normalize())

	tests := []struct {
		name     string
		maxDepth int
		want     core.Vec3
	}{
		{"no recursion budget", 1, core.Vec3{}},
		{"one reflection", 2, core.Gray(0.45)},
		{"deeper budget", 5, core.Gray(0.45)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWhitted(t, s, tt.maxDepth)
			got := w.Li(ray, s, newRandomSampler(1), material.NewArena())
			if !vecClose(got, tt.want, 1e-9) {
				t.Errorf("Li() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWhittedIntegrator_PointLitSphere(t *testing.T) {
	s := pointLitSphere(t)
	w := newTestWhitted(t, s, 5)

	lit := w.Li(core.NewRay(core.NewVec3(0, 3, 0), core.NewVec3(0, -1, 0)), s, newRandomSampler(1), material.NewArena())
	if !vecClose(lit, core.Gray(pointLitTop), 1e-6) {
		t.Errorf("lit Li() = %v, want %v", lit, pointLitTop)
	}
	unlit := w.Li(core.NewRay(core.NewVec3(0, -3, 0), core.NewVec3(0, 1, 0)), s, newRandomSampler(1), material.NewArena())
	if unlit != (core.Vec3{}) {
		t.Errorf("unlit Li() = %v, want black", unlit)
	}
}

func TestWhittedIntegrator_MissSumsAllLights(t *testing.T) {
	uniform := lights.NewUniformInfiniteLight(core.NewVec3(0.1, 0.2, 0.3))
	gradient := lights.NewGradientInfiniteLight(core.Gray(1), core.Gray(0))
	s := newTestScene(t, []geometry.Shape{
		geometry.NewSphere(core.NewVec3(0, 0, 10), 1, material.NewLambertian(core.Gray(0.5))),
	}, []lights.Light{uniform, gradient})
	w := newTestWhitted(t, s, 5)

	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0))
	want := uniform.Le(ray).Add(gradient.Le(ray))
	if got := w.Li(ray, s, noSampler{t}, material.NewArena()); !vecClose(got, want, 1e-12) {
		t.Errorf("Li() = %v, want %v", got, want)
	}
}
