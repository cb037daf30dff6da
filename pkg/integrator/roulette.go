package integrator

import (
	"math"

	"github.com/df07/go-path-integrator/pkg/core"
)

// rouletteMinBounces is the number of bounces that are never terminated
const rouletteMinBounces = 3

// russianRoulette randomly ends paths whose weight, with the refraction
// scale factored back in, fell below threshold. Surviving paths are
// reweighted by 1/(1-q) so the estimate stays unbiased. It returns false
// when the path should end.
func russianRoulette(beta core.Vec3, etaScale float64, bounces int, threshold float64, sampler core.Sampler) (core.Vec3, bool) {
	rrBeta := beta.Multiply(etaScale).MaxComponent()
	if rrBeta >= threshold || bounces <= rouletteMinBounces {
		return beta, true
	}
	q := math.Max(0.05, 1-rrBeta)
	if sampler.Get1D() < q {
		return beta, false
	}
	return checkThroughput(beta.Multiply(1/(1-q)), "russian roulette"), true
}
