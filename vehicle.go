package quadsim

import (
	"fmt"
	"math"

	"github.com/gonum/matrix/mat64"
)

// Quadrotor holds the fixed physical constants of the simulated vehicle and
// the motor mixing matrix derived from them. Immutable for the lifetime of a
// run. Motors are laid out in a diagonal cross: front (+x), right (+y),
// back (-x), left (-y).
type Quadrotor struct {
	Mass      float64      // total mass in kg
	ArmLength float64      // motor-to-center distance in m
	Height    float64      // height of the top marker in m
	CThrust   float64      // per-motor thrust coefficient
	CDrag     float64      // per-motor drag (yaw) coefficient
	J, Jinv   *mat64.Dense // inertia tensor and its precomputed inverse
	bodyFrame *mat64.Dense // 4x6 homogeneous marker geometry (4 motors, center, top)
	mix       *mat64.Dense // 4x4 map from [thrust τx τy τz] to motor speed squares
	mixInv    *mat64.Dense
}

// NewQuadrotor returns a quadrotor with the reference constants.
func NewQuadrotor() *Quadrotor {
	q := &Quadrotor{Mass: 1.0, ArmLength: 0.25, Height: 0.05, CThrust: 1e-3, CDrag: 1e-5}
	q.J = mat64.NewDense(3, 3, []float64{0.025, 0, 0, 0, 0.025, 0, 0, 0, 0.025})
	q.Jinv = mat64.NewDense(3, 3, nil)
	if err := q.Jinv.Inverse(q.J); err != nil {
		panic(fmt.Errorf("inertia tensor is singular: %s", err))
	}
	l := q.ArmLength
	q.bodyFrame = mat64.NewDense(4, 6, []float64{
		l, 0, -l, 0, 0, 0,
		0, l, 0, -l, 0, 0,
		0, 0, 0, 0, 0, q.Height,
		1, 1, 1, 1, 1, 1})
	q.mix = mat64.NewDense(4, 4, []float64{
		q.CThrust, q.CThrust, q.CThrust, q.CThrust,
		0, -l * q.CThrust, 0, l * q.CThrust,
		-l * q.CThrust, 0, l * q.CThrust, 0,
		q.CDrag, -q.CDrag, q.CDrag, -q.CDrag})
	q.mixInv = mat64.NewDense(4, 4, nil)
	if err := q.mixInv.Inverse(q.mix); err != nil {
		panic(fmt.Errorf("mixing matrix is singular: %s", err))
	}
	return q
}

// Mixing returns the mixing matrix and its inverse.
func (q *Quadrotor) Mixing() (b, bInv *mat64.Dense) {
	return q.mix, q.mixInv
}

// Thrust returns the total body-frame thrust for the given motor speeds.
func (q *Quadrotor) Thrust(motors []float64) float64 {
	var sq float64
	for _, w := range motors {
		sq += w * w
	}
	return q.CThrust * sq
}

// BodyTorque returns the body-frame torque generated by the given motor
// speeds: roll and pitch from the speed-square difference of opposite motor
// pairs, yaw from the drag of the alternating pair sums.
func (q *Quadrotor) BodyTorque(motors []float64) []float64 {
	τx := q.CThrust * (motors[3]*motors[3] - motors[1]*motors[1]) * 2 * q.ArmLength
	τy := q.CThrust * (motors[2]*motors[2] - motors[0]*motors[0]) * 2 * q.ArmLength
	τz := q.CDrag * (motors[0]*motors[0] - motors[1]*motors[1] + motors[2]*motors[2] - motors[3]*motors[3])
	return []float64{τx, τy, τz}
}

// Allocate solves the mixing system for the four motor speeds realizing the
// demanded collective thrust and body torque. Negative speed squares are
// clipped to zero, so the returned speeds are always real and non-negative.
func (q *Quadrotor) Allocate(thrust float64, τ []float64) []float64 {
	demand := mat64.NewVector(4, []float64{thrust, τ[0], τ[1], τ[2]})
	var squares mat64.Vector
	squares.MulVec(q.mixInv, demand)
	motors := make([]float64, 4)
	for i := 0; i < 4; i++ {
		if sq := squares.At(i, 0); sq > 0 {
			motors[i] = math.Sqrt(sq)
		}
	}
	return motors
}

// FrameMarkers returns the 3x6 world-frame positions of the vehicle frame
// markers (4 motor arms, center, top) for the given pose. This is the feed
// consumed by an external animator.
func (q *Quadrotor) FrameMarkers(position, quat []float64) *mat64.Dense {
	var world mat64.Dense
	world.Mul(Homogeneous(quat, position), q.bodyFrame)
	markers := mat64.NewDense(3, 6, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 6; j++ {
			markers.Set(i, j, world.At(i, j))
		}
	}
	return markers
}
