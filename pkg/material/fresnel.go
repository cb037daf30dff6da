package material

import (
	"math"

	"github.com/df07/go-path-integrator/pkg/core"
)

// Fresnel returns the fraction of light reflected at a boundary
type Fresnel interface {
	Evaluate(cosThetaI float64) core.Vec3
}

// FresnelDielectric is the unpolarized Fresnel reflectance between two dielectrics
type FresnelDielectric struct {
	EtaI, EtaT float64
}

// Evaluate implements Fresnel
func (f FresnelDielectric) Evaluate(cosThetaI float64) core.Vec3 {
	return core.Gray(FrDielectric(cosThetaI, f.EtaI, f.EtaT))
}

// FresnelNoOp reflects everything, used for perfect mirrors
type FresnelNoOp struct{}

// Evaluate implements Fresnel
func (FresnelNoOp) Evaluate(float64) core.Vec3 {
	return core.Gray(1)
}

// FrDielectric computes the Fresnel reflectance for light arriving at cosThetaI
// from the etaI side. Negative cosines mean the light arrives from inside, so
// the indices are swapped.
func FrDielectric(cosThetaI, etaI, etaT float64) float64 {
	cosThetaI = max(-1, min(1, cosThetaI))
	if cosThetaI < 0 {
		etaI, etaT = etaT, etaI
		cosThetaI = -cosThetaI
	}

	sinThetaI := math.Sqrt(math.Max(0, 1-cosThetaI*cosThetaI))
	sinThetaT := etaI / etaT * sinThetaI
	if sinThetaT >= 1 {
		// Total internal reflection
		return 1
	}
	cosThetaT := math.Sqrt(math.Max(0, 1-sinThetaT*sinThetaT))

	rParl := (etaT*cosThetaI - etaI*cosThetaT) / (etaT*cosThetaI + etaI*cosThetaT)
	rPerp := (etaI*cosThetaI - etaT*cosThetaT) / (etaI*cosThetaI + etaT*cosThetaT)
	return (rParl*rParl + rPerp*rPerp) / 2
}

// FresnelMoment1 is the first angular moment of the dielectric Fresnel
// reflectance, as a polynomial fit in eta
func FresnelMoment1(eta float64) float64 {
	eta2, eta3, eta4, eta5 := eta*eta, eta*eta*eta, eta*eta*eta*eta, eta*eta*eta*eta*eta
	if eta < 1 {
		return 0.45966 - 1.73965*eta + 3.37668*eta2 - 3.904945*eta3 + 2.49277*eta4 - 0.68441*eta5
	}
	return -4.61686 + 11.1136*eta - 10.4646*eta2 + 5.11455*eta3 - 1.27198*eta4 + 0.12746*eta5
}

// reflect mirrors wo about n
func reflect(wo, n core.Vec3) core.Vec3 {
	return wo.Negate().Add(n.Multiply(2 * wo.Dot(n)))
}

// refract bends wi through a boundary with normal n on wi's side, where eta
// is the ratio of the incident index over the transmitted index. It returns
// false on total internal reflection.
func refract(wi, n core.Vec3, eta float64) (core.Vec3, bool) {
	cosThetaI := n.Dot(wi)
	sin2ThetaI := math.Max(0, 1-cosThetaI*cosThetaI)
	sin2ThetaT := eta * eta * sin2ThetaI
	if sin2ThetaT >= 1 {
		return core.Vec3{}, false
	}
	cosThetaT := math.Sqrt(1 - sin2ThetaT)
	return wi.Negate().Multiply(eta).Add(n.Multiply(eta*cosThetaI - cosThetaT)), true
}
