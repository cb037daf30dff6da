package core

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestSampleCosineHemisphere_StaysAboveSurface(t *testing.T) {
	random := rand.New(rand.NewSource(7))
	normal := NewVec3(0.2, 0.9, -0.1).Normalize()

	for i := 0; i < 1000; i++ {
		dir := SampleCosineHemisphere(normal, NewVec2(random.Float64(), random.Float64()))
		if dir.Dot(normal) < -1e-9 {
			t.Fatalf("Sample %d below the surface: %v", i, dir)
		}
		if math.Abs(dir.Length()-1) > 1e-9 {
			t.Fatalf("Sample %d not unit length: %f", i, dir.Length())
		}
	}
}

func TestDistribution1D_SampleDiscrete(t *testing.T) {
	d := NewDistribution1D([]float64{1, 0, 3})

	tests := []struct {
		u       float64
		wantIdx int
		wantPMF float64
	}{
		{u: 0.0, wantIdx: 0, wantPMF: 0.25},
		{u: 0.2, wantIdx: 0, wantPMF: 0.25},
		{u: 0.25, wantIdx: 2, wantPMF: 0.75},
		{u: 0.99, wantIdx: 2, wantPMF: 0.75},
	}

	for _, tt := range tests {
		idx, pmf, remapped := d.SampleDiscrete(tt.u)
		if idx != tt.wantIdx {
			t.Errorf("SampleDiscrete(%v) index = %d, want %d", tt.u, idx, tt.wantIdx)
		}
		if math.Abs(pmf-tt.wantPMF) > 1e-12 {
			t.Errorf("SampleDiscrete(%v) pmf = %f, want %f", tt.u, pmf, tt.wantPMF)
		}
		if remapped < 0 || remapped >= 1 {
			t.Errorf("SampleDiscrete(%v) remapped %f outside [0,1)", tt.u, remapped)
		}
	}
}

func TestDistribution1D_AllZeroIsUniform(t *testing.T) {
	d := NewDistribution1D([]float64{0, 0, 0, 0})
	got := []float64{d.DiscretePDF(0), d.DiscretePDF(1), d.DiscretePDF(2), d.DiscretePDF(3)}
	want := []float64{0.25, 0.25, 0.25, 0.25}
	if diff := cmp.Diff(got, want, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Bad pmf; diff (-got +want)\n%s", diff)
	}
	if idx, _, _ := d.SampleDiscrete(0.6); idx != 2 {
		t.Errorf("Expected index 2 for u=0.6, got %d", idx)
	}
}

func TestDistribution1D_FrequenciesMatchWeights(t *testing.T) {
	weights := []float64{2, 5, 1, 2}
	d := NewDistribution1D(weights)
	random := rand.New(rand.NewSource(42))

	const n = 200000
	counts := make([]float64, len(weights))
	for i := 0; i < n; i++ {
		idx, _, _ := d.SampleDiscrete(random.Float64())
		counts[idx]++
	}
	for i := range counts {
		counts[i] /= n
	}
	want := []float64{0.2, 0.5, 0.1, 0.2}
	if diff := cmp.Diff(counts, want, cmpopts.EquateApprox(0, 0.01)); diff != "" {
		t.Errorf("Bad sample frequencies; diff (-got +want)\n%s", diff)
	}
}

func TestPowerHeuristic(t *testing.T) {
	if w := PowerHeuristic(1, 0, 1, 0); w != 0 {
		t.Errorf("Expected zero weight for zero pdfs, got %f", w)
	}
	a := PowerHeuristic(1, 0.3, 1, 0.7)
	b := PowerHeuristic(1, 0.7, 1, 0.3)
	if math.Abs(a+b-1) > 1e-12 {
		t.Errorf("Expected complementary weights to sum to 1, got %f", a+b)
	}
}

func TestSlab_ResetReusesStorage(t *testing.T) {
	type item struct{ v int }
	var s Slab[item]

	ptrs := make([]*item, 0, 100)
	for i := 0; i < 100; i++ {
		p := s.Alloc()
		p.v = i + 1
		ptrs = append(ptrs, p)
	}
	if s.Len() != 100 {
		t.Fatalf("Expected 100 live values, got %d", s.Len())
	}
	// Earlier pointers are not invalidated by growth
	for i, p := range ptrs {
		if p.v != i+1 {
			t.Fatalf("Value %d corrupted: got %d", i, p.v)
		}
	}

	s.Reset()
	if s.Len() != 0 {
		t.Fatalf("Expected empty slab after reset, got %d", s.Len())
	}
	first := s.Alloc()
	if first != ptrs[0] {
		t.Errorf("Expected storage reuse after reset")
	}
	if first.v != 0 {
		t.Errorf("Expected zeroed value after reset, got %d", first.v)
	}
}

func TestRadicalInverse(t *testing.T) {
	got := []float64{RadicalInverse(2, 1), RadicalInverse(2, 2), RadicalInverse(2, 3), RadicalInverse(3, 1), RadicalInverse(3, 4)}
	want := []float64{0.5, 0.25, 0.75, 1.0 / 3, 4.0 / 9}
	if diff := cmp.Diff(got, want, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Bad radical inverse; diff (-got +want)\n%s", diff)
	}
}
