package quadsim

import (
	"math"

	"github.com/gonum/matrix/mat64"
)

const (
	// FeatureInputSize is the length of the reduced state descriptor fed to a
	// feature map: velocity (3), attitude quaternion (4), last commanded
	// motor speeds (4).
	FeatureInputSize = 11
	// FeatureOutputSize is the length of the basis-function vector.
	FeatureOutputSize = 3
	// EstimateSize is the number of adaptive parameters (one feature block
	// per translational axis).
	EstimateSize = FeatureOutputSize * 3
)

// FeatureMap evaluates a fixed basis-function vector from a reduced state
// descriptor. Implementations must be side-effect free; how the mapping was
// produced (trained or synthetic) is of no concern to the simulation.
type FeatureMap interface {
	Phi(x []float64) []float64
}

// Regressor replicates the basis-function vector φ block-diagonally across
// the three translational axes, yielding the 3x9 regressor Φ such that the
// modeled disturbance is Φ·â.
func Regressor(φ []float64) *mat64.Dense {
	Φ := mat64.NewDense(FeatureOutputSize, EstimateSize, nil)
	for i := 0; i < FeatureOutputSize; i++ {
		for j, val := range φ {
			Φ.Set(i, i*FeatureOutputSize+j, val)
		}
	}
	return Φ
}

// SyntheticFeatures is a smooth stand-in for a trained feature network: a
// fixed linear projection of the reduced state squashed through tanh. It
// keeps the module runnable end to end when no trained artifact is injected.
type SyntheticFeatures struct {
	weights *mat64.Dense
	bias    []float64
}

// NewSyntheticFeatures returns the default synthetic feature map.
func NewSyntheticFeatures() *SyntheticFeatures {
	w := mat64.NewDense(FeatureOutputSize, FeatureInputSize, nil)
	// Deterministic quasi-random projection, fixed so runs are reproducible.
	for i := 0; i < FeatureOutputSize; i++ {
		for j := 0; j < FeatureInputSize; j++ {
			w.Set(i, j, 0.3*math.Sin(float64(3*i+5*j+1)))
		}
	}
	return &SyntheticFeatures{weights: w, bias: []float64{0.1, -0.2, 0.3}}
}

// Phi implements FeatureMap.
func (s *SyntheticFeatures) Phi(x []float64) []float64 {
	xVec := mat64.NewVector(FeatureInputSize, x)
	var proj mat64.Vector
	proj.MulVec(s.weights, xVec)
	φ := make([]float64, FeatureOutputSize)
	for i := range φ {
		φ[i] = math.Tanh(proj.At(i, 0) + s.bias[i])
	}
	return φ
}
