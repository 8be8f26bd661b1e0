package quadsim

import "github.com/ChristopherRabotin/ode"

// Euler defines an explicit fixed-step Euler solver. The reference dynamics
// and the adaptation law are both single-evaluation fixed-dt updates, so a
// higher-order scheme would change the simulated semantics.
type Euler struct {
	X0         float64        // The initial x0.
	StepSize   float64        // The step size.
	Integrator ode.Integrable // What is to be integrated.
}

// NewEuler returns a new Euler solver instance.
func NewEuler(x0 float64, stepSize float64, inte ode.Integrable) (e *Euler) {
	if stepSize <= 0 {
		panic("config StepSize must be positive")
	}
	if inte == nil {
		panic("config Integrator may not be nil")
	}
	return &Euler{X0: x0, StepSize: stepSize, Integrator: inte}
}

// Solve solves the configured problem.
// Returns the number of iterations performed and the last X_i, or an error.
func (e *Euler) Solve() (uint64, float64, error) {
	iterNum := uint64(0)
	xi := e.X0
	for !e.Integrator.Stop(xi) {
		state := e.Integrator.GetState()
		newState := make([]float64, len(state))
		for i, y := range e.Integrator.Func(xi, state) {
			newState[i] = state[i] + y*e.StepSize
		}
		e.Integrator.SetState(xi+e.StepSize, newState)
		xi += e.StepSize
		iterNum++
	}
	return iterNum, xi, nil
}
