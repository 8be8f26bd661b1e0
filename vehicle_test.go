package quadsim

import (
	"testing"

	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
)

func TestMixingInverse(t *testing.T) {
	quad := NewQuadrotor()
	b, bInv := quad.Mixing()
	var prod mat64.Dense
	prod.Mul(b, bInv)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if !floats.EqualWithinAbs(prod.At(i, j), want, 1e-9) {
				t.Fatalf("B·B⁻¹ != I at (%d,%d): %f", i, j, prod.At(i, j))
			}
		}
	}
}

func TestAllocate(t *testing.T) {
	quad := NewQuadrotor()
	// Pure collective thrust: four identical motors realizing the demand.
	motors := quad.Allocate(quad.Mass*Gravity, []float64{0, 0, 0})
	for i, w := range motors {
		if w < 0 {
			t.Fatalf("motor %d negative: %f", i, w)
		}
		if !floats.EqualWithinAbs(w, motors[0], 1e-9) {
			t.Fatal("hover allocation must be symmetric")
		}
	}
	if !floats.EqualWithinAbs(quad.Thrust(motors), quad.Mass*Gravity, 1e-9) {
		t.Fatalf("thrust roundtrip fail: %f", quad.Thrust(motors))
	}
	if !vectorsEqual(quad.BodyTorque(motors), []float64{0, 0, 0}) {
		t.Fatal("symmetric motors must produce no torque")
	}
	// Unrealizable demand clips speed squares at zero instead of going complex.
	motors = quad.Allocate(0, []float64{1, 1, -1})
	for i, w := range motors {
		if w < 0 {
			t.Fatalf("motor %d negative after clipping: %f", i, w)
		}
	}
}

func TestFrameMarkers(t *testing.T) {
	quad := NewQuadrotor()
	pos := []float64{2, -1, 3}
	markers := quad.FrameMarkers(pos, []float64{1, 0, 0, 0})
	// Center marker sits at the vehicle position.
	for i := 0; i < 3; i++ {
		if !floats.EqualWithinAbs(markers.At(i, 4), pos[i], 1e-12) {
			t.Fatal("center marker off position")
		}
	}
	// Front motor is one arm length ahead, top marker one height up.
	if !floats.EqualWithinAbs(markers.At(0, 0), pos[0]+quad.ArmLength, 1e-12) {
		t.Fatal("front marker off")
	}
	if !floats.EqualWithinAbs(markers.At(2, 5), pos[2]+quad.Height, 1e-12) {
		t.Fatal("top marker off")
	}
	// A 180-degree roll flips the top marker below the vehicle.
	flipped := quad.FrameMarkers(pos, []float64{0, 1, 0, 0})
	if !floats.EqualWithinAbs(flipped.At(2, 5), pos[2]-quad.Height, 1e-12) {
		t.Fatal("rotated top marker off")
	}
}
