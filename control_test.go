package quadsim

import (
	"testing"

	"github.com/gonum/floats"
)

func hoverState() VehicleState {
	return VehicleState{
		Position:   []float64{1, 0, 1},
		Velocity:   []float64{0, 0, 0},
		Quaternion: []float64{1, 0, 0, 0},
		Omega:      []float64{0, 0, 0},
	}
}

func TestControlHoverEquilibrium(t *testing.T) {
	quad := NewQuadrotor()
	ctrl := NewController("hover-eq", quad, nil, false)
	dt := 1 / DefaultControlFrequency
	motors := ctrl.Control(hoverState(), []float64{1, 0, 1}, []float64{0, 0, 0}, dt)
	// On target with zero velocity the demand is pure gravity compensation.
	for i, w := range motors {
		if w < 0 {
			t.Fatalf("motor %d negative: %f", i, w)
		}
		if !floats.EqualWithinAbs(w, motors[0], 1e-9) {
			t.Fatal("hover command must be symmetric")
		}
	}
	if !floats.EqualWithinAbs(quad.Thrust(motors), quad.Mass*Gravity, 1e-9) {
		t.Fatalf("hover thrust %f, want %f", quad.Thrust(motors), quad.Mass*Gravity)
	}
}

func TestControlDegenerateForce(t *testing.T) {
	quad := NewQuadrotor()
	ctrl := NewController("degenerate", quad, nil, false)
	dt := 1 / DefaultControlFrequency
	// Climbing at exactly g/k_d on target cancels the specific force to zero.
	st := hoverState()
	st.Velocity = []float64{0, 0, Gravity / gainVelocity}
	motors := ctrl.Control(st, []float64{1, 0, 1}, []float64{0, 0, 0}, dt)
	for i, w := range motors {
		if !floats.EqualWithinAbs(w, 0, 1e-5) {
			t.Fatalf("motor %d nonzero on degenerate force: %f", i, w)
		}
	}
	// The previous attitude reference must be held, not replaced.
	if !vectorsEqual(ctrl.qRef, []float64{1, 0, 0, 0}) {
		t.Fatalf("attitude reference not held: %+v", ctrl.qRef)
	}
}

func TestControlNonNegativeThrust(t *testing.T) {
	quad := NewQuadrotor()
	ctrl := NewController("clamp", quad, nil, false)
	dt := 1 / DefaultControlFrequency
	// Far above the target and falling: the desired force points down, so
	// the body-z thrust demand is negative and must clamp to zero.
	st := hoverState()
	st.Position = []float64{1, 0, 10}
	st.Velocity = []float64{0, 0, 5}
	motors := ctrl.Control(st, []float64{1, 0, 1}, []float64{0, 0, 0}, dt)
	for i, w := range motors {
		if w < 0 {
			t.Fatalf("motor %d negative: %f", i, w)
		}
	}
}

func TestControlAdaptiveSideEffects(t *testing.T) {
	quad := NewQuadrotor()
	ctrl := NewController("adaptive", quad, NewSyntheticFeatures(), true)
	dt := 1 / DefaultControlFrequency
	st := hoverState()
	st.Velocity = []float64{0.3, 0, 0}
	wind := []float64{3, 0, 0}
	for i := 0; i < 100; i++ {
		ctrl.Control(st, []float64{1, 0, 1}, wind, dt)
	}
	// The estimator must have been advanced once per tick.
	var aNorm float64
	for i := 0; i < EstimateSize; i++ {
		aNorm += ctrl.Estimate.AHat.At(i, 0) * ctrl.Estimate.AHat.At(i, 0)
	}
	if aNorm == 0 {
		t.Fatal("estimator was not updated")
	}
}

func TestControlDerivedDesiredVelocity(t *testing.T) {
	quad := NewQuadrotor()
	ctrl := NewController("vd", quad, nil, false)
	dt := 1 / DefaultControlFrequency
	ctrl.Control(hoverState(), []float64{1, 0, 1}, []float64{0, 0, 0}, dt)
	ctrl.Control(hoverState(), []float64{1, 0.01, 1}, []float64{0, 0, 0}, dt)
	vd := ctrl.DesiredVelocity()
	if !floats.EqualWithinAbs(vd[1], 0.01/dt, 1e-9) {
		t.Fatalf("v_d finite difference fail: %f", vd[1])
	}
}
