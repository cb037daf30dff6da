package core

import (
	"image"
	"math"
	"math/rand"
	"sort"
)

// OneMinusEpsilon is the largest float64 below 1
const OneMinusEpsilon = 0x1.fffffffffffffp-1

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}

// PixelSampler is implemented by samplers that know which pixel sample they
// are currently generating values for
type PixelSampler interface {
	CurrentPixel() image.Point
	CurrentSampleIndex() int
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random      *rand.Rand
	pixel       image.Point
	sampleIndex int
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// StartPixelSample records the pixel and sample index the following values belong to
func (r *RandomSampler) StartPixelSample(pixel image.Point, index int) {
	r.pixel = pixel
	r.sampleIndex = index
}

// CurrentPixel returns the pixel passed to the last StartPixelSample
func (r *RandomSampler) CurrentPixel() image.Point {
	return r.pixel
}

// CurrentSampleIndex returns the sample index passed to the last StartPixelSample
func (r *RandomSampler) CurrentSampleIndex() int {
	return r.sampleIndex
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// Get3D returns three random float64 values in [0, 1)
func (r *RandomSampler) Get3D() Vec3 {
	return NewVec3(r.random.Float64(), r.random.Float64(), r.random.Float64())
}

// SampleCosineHemisphere generates a cosine-weighted random direction in hemisphere around normal
func SampleCosineHemisphere(normal Vec3, sample Vec2) Vec3 {
	local := CosineSampleHemisphere(sample)
	tangent, bitangent := CoordinateSystem(normal)
	return tangent.Multiply(local.X).Add(bitangent.Multiply(local.Y)).Add(normal.Multiply(local.Z))
}

// CosineSampleHemisphere samples the +Z hemisphere with density cos(θ)/π
func CosineSampleHemisphere(sample Vec2) Vec3 {
	d := ConcentricSampleDisk(sample)
	z := math.Sqrt(math.Max(0, 1-d.X*d.X-d.Y*d.Y))
	return NewVec3(d.X, d.Y, z)
}

// CosineHemispherePDF returns the density of CosineSampleHemisphere
func CosineHemispherePDF(cosTheta float64) float64 {
	return cosTheta / math.Pi
}

// ConcentricSampleDisk maps the unit square to the unit disk preserving stratification
func ConcentricSampleDisk(sample Vec2) Vec2 {
	// Map sample to [-1,1]² and handle degeneracy at the origin
	ox, oy := 2*sample.X-1, 2*sample.Y-1
	if ox == 0 && oy == 0 {
		return Vec2{}
	}

	var theta, r float64
	if math.Abs(ox) > math.Abs(oy) {
		r = ox
		theta = math.Pi / 4 * (oy / ox)
	} else {
		r = oy
		theta = math.Pi/2 - math.Pi/4*(ox/oy)
	}
	return NewVec2(r*math.Cos(theta), r*math.Sin(theta))
}

// SampleOnUnitSphere generates a uniform random direction on the unit sphere
func SampleOnUnitSphere(sample Vec2) Vec3 {
	z := 1.0 - 2.0*sample.X // z ∈ [-1, 1]
	r := math.Sqrt(math.Max(0, 1.0-z*z))
	phi := 2.0 * math.Pi * sample.Y
	return NewVec3(r*math.Cos(phi), r*math.Sin(phi), z)
}

// UniformSpherePDF is the density of SampleOnUnitSphere
func UniformSpherePDF() float64 {
	return 1 / (4 * math.Pi)
}

// SampleCone samples a direction uniformly within a cone
func SampleCone(direction Vec3, cosThetaMax float64, sample Vec2) Vec3 {
	u, v := CoordinateSystem(direction)

	cosTheta := 1.0 - sample.X*(1.0-cosThetaMax)
	sinTheta := math.Sqrt(math.Max(0, 1.0-cosTheta*cosTheta))
	phi := 2.0 * math.Pi * sample.Y

	return u.Multiply(sinTheta * math.Cos(phi)).
		Add(v.Multiply(sinTheta * math.Sin(phi))).
		Add(direction.Multiply(cosTheta))
}

// UniformConePDF calculates the PDF for uniform sampling within a cone
func UniformConePDF(cosThetaMax float64) float64 {
	return 1.0 / (2.0 * math.Pi * (1.0 - cosThetaMax))
}

// PowerHeuristic computes the power heuristic (β=2) weight for MIS
func PowerHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	if f == 0 && g == 0 {
		return 0
	}
	return (f * f) / (f*f + g*g)
}

// Distribution1D is a piecewise-constant 1D distribution used to pick among
// a discrete set of choices in proportion to their weights
type Distribution1D struct {
	Func    []float64
	CDF     []float64
	FuncInt float64
}

// NewDistribution1D builds a distribution from non-negative weights
func NewDistribution1D(f []float64) *Distribution1D {
	n := len(f)
	d := &Distribution1D{
		Func: append([]float64(nil), f...),
		CDF:  make([]float64, n+1),
	}
	for i := 1; i <= n; i++ {
		d.CDF[i] = d.CDF[i-1] + d.Func[i-1]/float64(n)
	}
	d.FuncInt = d.CDF[n]
	if d.FuncInt == 0 {
		for i := 1; i <= n; i++ {
			d.CDF[i] = float64(i) / float64(n)
		}
	} else {
		for i := 1; i <= n; i++ {
			d.CDF[i] /= d.FuncInt
		}
	}
	return d
}

// Count returns the number of choices
func (d *Distribution1D) Count() int {
	return len(d.Func)
}

// SampleDiscrete picks an index with probability proportional to its weight.
// It returns the index, its probability mass, and u remapped to [0,1).
func (d *Distribution1D) SampleDiscrete(u float64) (int, float64, float64) {
	n := len(d.Func)
	if n == 0 {
		return -1, 0, u
	}
	// First CDF entry strictly greater than u, minus one
	offset := sort.Search(len(d.CDF), func(i int) bool { return d.CDF[i] > u }) - 1
	offset = max(0, min(offset, n-1))

	pmf := d.DiscretePDF(offset)
	du := u - d.CDF[offset]
	if width := d.CDF[offset+1] - d.CDF[offset]; width > 0 {
		du /= width
	}
	return offset, pmf, du
}

// DiscretePDF returns the probability of choosing index i
func (d *Distribution1D) DiscretePDF(i int) float64 {
	if i < 0 || i >= len(d.Func) {
		return 0
	}
	if d.FuncInt == 0 {
		return 1 / float64(len(d.Func))
	}
	return d.Func[i] / (d.FuncInt * float64(len(d.Func)))
}

// RadicalInverse mirrors the base-b digits of a around the radix point,
// giving the a-th point of the van der Corput sequence in that base
func RadicalInverse(base, a uint64) float64 {
	invBase := 1 / float64(base)
	invBaseN := 1.0
	var reversed uint64
	for a > 0 {
		next := a / base
		digit := a - next*base
		reversed = reversed*base + digit
		invBaseN *= invBase
		a = next
	}
	return min(float64(reversed)*invBaseN, OneMinusEpsilon)
}
