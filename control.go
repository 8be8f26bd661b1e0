package quadsim

import (
	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
)

// Controller gains of the reference cascade.
const (
	gainPosition = 2.0   // k_p, position loop
	gainVelocity = 5.0   // k_d, velocity loop
	gainAttitude = 20.0  // k_q, attitude loop
	gainRate     = 100.0 // k_ω, angular-rate loop
)

// Controller implements the cascaded position/attitude control law with an
// optional composite adaptive correction: position PD → desired specific
// force → minimal-rotation attitude reference → angular-rate command →
// torque → motor allocation.
type Controller struct {
	quad     *Quadrotor
	features FeatureMap
	Estimate *AdaptiveEstimate
	adaptive bool
	kP, kD   float64
	kQ, kΩ   float64
	prevV    []float64 // previous tick's velocity, for the acceleration proxy
	prevPd   []float64 // previous tick's reference, to finite-difference v_d
	vD       []float64 // derived desired velocity
	qRef     []float64 // last attitude reference, held on degenerate force
	motors   []float64 // last commanded motor speeds
}

// NewController returns a controller for the given vehicle. The feature map
// is only consulted when the adaptive correction is enabled.
func NewController(name string, quad *Quadrotor, features FeatureMap, adaptive bool) *Controller {
	if adaptive && features == nil {
		panic("adaptive control requires a feature map")
	}
	return &Controller{
		quad:     quad,
		features: features,
		Estimate: NewAdaptiveEstimate(name),
		adaptive: adaptive,
		kP:       gainPosition,
		kD:       gainVelocity,
		kQ:       gainAttitude,
		kΩ:       gainRate,
		prevV:    make([]float64, 3),
		prevPd:   make([]float64, 3),
		vD:       make([]float64, 3),
		qRef:     []float64{1, 0, 0, 0},
		motors:   make([]float64, 4),
	}
}

// Control computes the motor command driving the vehicle toward the desired
// position pD. The estimator state is advanced as a side effect, strictly
// after the command has been computed from the previous estimate. The wind
// sample stands in for a measured disturbance signal (simulation privilege).
func (c *Controller) Control(st VehicleState, pD, wind []float64, dt float64) []float64 {
	p, v := st.Position, st.Velocity

	// Position loop.
	s := make([]float64, 3)
	a := make([]float64, 3)
	for i := 0; i < 3; i++ {
		vR := -c.kP * (p[i] - pD[i])
		s[i] = v[i] - vR
		a[i] = -c.kD * s[i]
	}
	a[2] += Gravity

	// Adaptive correction: subtract the learned disturbance, add the
	// empirically observed acceleration.
	var Φ *mat64.Dense
	if c.adaptive {
		Φ = Regressor(c.features.Phi(c.featureInput(st)))
		modeled := c.Estimate.Modeled(Φ)
		for i := 0; i < 3; i++ {
			a[i] += (v[i]-c.prevV[i])/dt - modeled[i]
		}
	}

	// Desired specific force to body-frame thrust.
	f := []float64{c.quad.Mass * a[0], c.quad.Mass * a[1], c.quad.Mass * a[2]}
	fB := MtxV33(DCM(st.Quaternion), f)
	thrust := 0.0
	if fB[2] > 0 {
		thrust = fB[2]
	}

	// Attitude loop: minimal rotation mapping body +z onto the force
	// direction. A vanishing force leaves no defined direction, so the
	// previous attitude reference is held.
	if !floats.EqualWithinAbs(norm(f), 0, 1e-9) {
		c.qRef = QuatFromVectors([]float64{0, 0, 1}, f)
	}
	qErr := QuatMult(QuatConjugate(c.qRef), st.Quaternion)
	if qErr[0] < 0 {
		for i := range qErr {
			qErr[i] = -qErr[i]
		}
	}
	α := make([]float64, 3)
	for i := 0; i < 3; i++ {
		ωRef := -c.kQ * 2 * qErr[i+1]
		α[i] = -c.kΩ * (st.Omega[i] - ωRef)
	}
	τ := MxV33(c.quad.J, α)

	motors := c.quad.Allocate(thrust, τ)

	// Bookkeeping for the next tick.
	for i := 0; i < 3; i++ {
		c.vD[i] = (pD[i] - c.prevPd[i]) / dt
		c.prevPd[i] = pD[i]
	}
	copy(c.motors, motors)

	if c.adaptive {
		c.Estimate.Update(Φ, s, wind, dt)
		copy(c.prevV, v)
	}
	return motors
}

// featureInput assembles the reduced state descriptor [v q motors].
func (c *Controller) featureInput(st VehicleState) []float64 {
	x := make([]float64, 0, FeatureInputSize)
	x = append(x, st.Velocity...)
	x = append(x, st.Quaternion...)
	x = append(x, c.motors...)
	return x
}

// DesiredVelocity returns the reference velocity derived by finite
// differencing consecutive desired positions.
func (c *Controller) DesiredVelocity() []float64 {
	out := make([]float64, 3)
	copy(out, c.vD)
	return out
}

// MotorSpeeds returns the last commanded motor speeds.
func (c *Controller) MotorSpeeds() []float64 {
	out := make([]float64, 4)
	copy(out, c.motors)
	return out
}

// Adaptive returns whether the adaptive correction is enabled.
func (c *Controller) Adaptive() bool {
	return c.adaptive
}
