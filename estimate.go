package quadsim

import (
	"fmt"
	"os"

	"github.com/ChristopherRabotin/gokalman"
	kitlog "github.com/go-kit/kit/log"
	"github.com/gonum/matrix/mat64"
)

// AdaptiveEstimate carries the online estimate of the residual disturbance
// force: the parameter vector â linearly combining the feature basis per
// axis, and its uncertainty covariance P. Updated exactly once per control
// tick, strictly after the tick's motor command has been computed from the
// previous â. Never reset during a run.
type AdaptiveEstimate struct {
	AHat   *mat64.Vector // parameter estimate, ℝ⁹
	P      *mat64.Dense  // covariance, ℝ⁹ˣ⁹, kept symmetric
	λ      float64       // forgetting rate
	Q      *mat64.Dense  // process-noise weight
	Rinv   *mat64.Dense  // inverse measurement-noise weight
	logger kitlog.Logger
}

// NewAdaptiveEstimate returns an estimator with the reference tuning:
// λ=1e-3, P₀=1e-3·I, Q=1e-3·I, R=I.
func NewAdaptiveEstimate(name string) *AdaptiveEstimate {
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	klog = kitlog.With(klog, "estimate", name)
	klog.Log("level", "info", "subsys", "adaptive", "λ", 1e-3, "P0", 1e-3, "Q", 1e-3)
	R := gokalman.DenseIdentity(FeatureOutputSize)
	Rinv := mat64.NewDense(FeatureOutputSize, FeatureOutputSize, nil)
	if err := Rinv.Inverse(R); err != nil {
		panic(fmt.Errorf("measurement-noise weight is singular: %s", err))
	}
	return &AdaptiveEstimate{
		AHat:   mat64.NewVector(EstimateSize, nil),
		P:      gokalman.ScaledDenseIdentity(EstimateSize, 1e-3),
		λ:      1e-3,
		Q:      gokalman.ScaledDenseIdentity(EstimateSize, 1e-3),
		Rinv:   Rinv,
		logger: klog,
	}
}

// Update advances â and P by one explicit Euler step of the composite
// adaptation law, driven by the regressor Φ, the tracking-error surrogate s
// and the disturbance signal. In this simulation the disturbance is the true
// wind; a real system substitutes a measured residual here.
func (e *AdaptiveEstimate) Update(Φ *mat64.Dense, s, disturbance []float64, dt float64) {
	var PΦt mat64.Dense
	PΦt.Mul(e.P, Φ.T())

	// â̇ = -λ·â + P·Φᵀ·s - P·Φᵀ·R⁻¹·(Φ·â - disturbance)
	var drive mat64.Vector
	drive.MulVec(&PΦt, mat64.NewVector(len(s), s))

	var resid mat64.Vector
	resid.MulVec(Φ, e.AHat)
	for i := 0; i < FeatureOutputSize; i++ {
		resid.SetVec(i, resid.At(i, 0)-disturbance[i])
	}
	var weighted, correction mat64.Vector
	weighted.MulVec(e.Rinv, &resid)
	correction.MulVec(&PΦt, &weighted)

	for i := 0; i < EstimateSize; i++ {
		aDot := -e.λ*e.AHat.At(i, 0) + drive.At(i, 0) - correction.At(i, 0)
		e.AHat.SetVec(i, e.AHat.At(i, 0)+aDot*dt)
	}

	// Ṗ = -2λ·P + Q - P·Φᵀ·R⁻¹·Φ·P
	var gain, gainΦ, quad mat64.Dense
	gain.Mul(&PΦt, e.Rinv)
	gainΦ.Mul(&gain, Φ)
	quad.Mul(&gainΦ, e.P)
	for i := 0; i < EstimateSize; i++ {
		for j := 0; j < EstimateSize; j++ {
			pDot := -2*e.λ*e.P.At(i, j) + e.Q.At(i, j) - quad.At(i, j)
			e.P.Set(i, j, e.P.At(i, j)+pDot*dt)
		}
	}
	// Defensive re-symmetrization: the discrete Riccati step drifts P off
	// symmetric over long runs.
	for i := 0; i < EstimateSize; i++ {
		for j := i + 1; j < EstimateSize; j++ {
			sym := 0.5 * (e.P.At(i, j) + e.P.At(j, i))
			e.P.Set(i, j, sym)
			e.P.Set(j, i, sym)
		}
	}
}

// Modeled returns Φ·â, the disturbance currently explained by the estimate.
func (e *AdaptiveEstimate) Modeled(Φ *mat64.Dense) []float64 {
	var d mat64.Vector
	d.MulVec(Φ, e.AHat)
	return []float64{d.At(0, 0), d.At(1, 0), d.At(2, 0)}
}

// Covariance returns a copy of P.
func (e *AdaptiveEstimate) Covariance() *mat64.Dense {
	out := mat64.NewDense(EstimateSize, EstimateSize, nil)
	out.Copy(e.P)
	return out
}
