package quadsim

import (
	"os"
	"sync"

	kitlog "github.com/go-kit/kit/log"
	"github.com/gonum/matrix/mat64"
)

/* Handles the rigid-body propagation of one vehicle. */

// State vector layout: [p(3) v(3) q(4) ω(3)].
const (
	stateSize = 13
	idxPos    = 0
	idxVel    = 3
	idxQuat   = 6
	idxOmega  = 10
)

const (
	// DefaultControlFrequency is the control loop rate in Hz.
	DefaultControlFrequency = 200.0
	// DefaultHorizon is the simulated duration of a run in seconds.
	DefaultHorizon = 15.0
)

// Status reports the terminal condition of a session.
type Status uint8

const (
	// Running means the horizon has not been reached yet.
	Running Status = iota
	// Completed means simulated time exceeded the horizon. This is the
	// normal end of a run, not a fault.
	Completed
)

func (s Status) String() string {
	if s == Completed {
		return "completed"
	}
	return "running"
}

// VehicleState is the decoded 13-dimensional rigid-body state.
type VehicleState struct {
	Position   []float64 // world frame
	Velocity   []float64 // world frame
	Quaternion []float64 // unit, scalar first
	Omega      []float64 // body frame
}

// Record is the flat per-tick log record handed to the export layer.
type Record struct {
	Tick   uint64
	T      float64
	P      []float64
	Pd     []float64
	V      []float64
	Vd     []float64
	Q      []float64
	R      *mat64.Dense
	W      []float64
	Wind   []float64
	Motors []float64
}

// Session owns one vehicle advancing monotonically in simulated time: it
// threads the reference → control → integrate sequence through each tick and
// holds all run state, so concurrent sessions are trivially safe. It
// implements ode.Integrable and is driven by the fixed-step Euler solver.
type Session struct {
	Name     string
	Quad     *Quadrotor
	Ctrl     *Controller
	Wind     Wind
	Traj     Trajectory
	state    []float64
	cmd      []float64
	pending  Record
	step     float64
	horizon  float64
	time     float64
	tick     uint64
	status   Status
	histChan chan Record
	wg       sync.WaitGroup // ties this session to its own exporter only
	logger   kitlog.Logger
}

// NewSession is the same as NewPreciseSession with the default initial
// position, control frequency and horizon.
func NewSession(name string, quad *Quadrotor, ctrl *Controller, wind Wind, traj Trajectory, conf ExportConfig) *Session {
	return NewPreciseSession(name, quad, ctrl, wind, traj, []float64{1, 0, 0}, DefaultControlFrequency, DefaultHorizon, conf)
}

// NewPreciseSession returns a new Session with a custom initial position,
// control frequency (Hz) and horizon (s).
func NewPreciseSession(name string, quad *Quadrotor, ctrl *Controller, wind Wind, traj Trajectory, initPos []float64, frequency, horizon float64, conf ExportConfig) *Session {
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	klog = kitlog.With(klog, "session", name)

	state := make([]float64, stateSize)
	copy(state[idxPos:idxPos+3], initPos)
	state[idxQuat] = 1 // identity attitude

	s := &Session{Name: name, Quad: quad, Ctrl: ctrl, Wind: wind, Traj: traj,
		state: state, cmd: make([]float64, 4), step: 1 / frequency,
		horizon: horizon, logger: klog}
	// If no output is configured, no record is streamed anywhere.
	if !conf.IsUseless() {
		s.histChan = make(chan Record, 1000) // a 1k entry buffer
		s.wg.Add(1)
		ch := s.histChan
		go func() {
			defer s.wg.Done()
			StreamRecords(conf, ch)
		}()
	}
	return s
}

// LogStatus reports the run configuration and current progress.
func (s *Session) LogStatus() {
	s.logger.Log("level", "info", "subsys", "sim", "t", s.time, "tick", s.tick,
		"traj", s.Traj, "wind", s.Wind.Kind, "mag", s.Wind.Magnitude, "adaptive", s.Ctrl.Adaptive())
}

// Propagate runs the session until the horizon is exceeded and returns the
// terminal status. Blocking.
func (s *Session) Propagate() Status {
	s.LogStatus()
	NewEuler(0, s.step, s).Solve()
	s.logger.Log("level", "notice", "subsys", "sim", "status", s.status, "t", s.time, "ticks", s.tick)
	s.wg.Wait() // Don't return until the export file is fully written.
	return s.status
}

// Step advances the session by exactly one control tick and returns the
// resulting status. Useful for callers interleaving their own per-tick work.
// The completing step runs the same stop path as Propagate, so the record
// stream is closed and flushed before Completed is returned.
func (s *Session) Step() Status {
	f := s.GetState()
	fDot := s.Func(s.time, f)
	for i := range f {
		f[i] += fDot[i] * s.step
	}
	s.SetState(s.time+s.step, f)
	if s.Stop(s.time) {
		s.wg.Wait()
	}
	return s.status
}

// GetState returns a copy of the 13-dim state vector.
func (s *Session) GetState() []float64 {
	f := make([]float64, stateSize)
	copy(f, s.state)
	return f
}

// SetState stores the next state, re-normalizing the quaternion component,
// advances simulated time, and emits the per-tick record.
func (s *Session) SetState(t float64, f []float64) {
	q := QuatUnit(f[idxQuat : idxQuat+4])
	copy(f[idxQuat:idxQuat+4], q)
	copy(s.state, f)
	s.time += s.step
	s.tick++

	if s.histChan != nil {
		rec := s.pending
		rec.Tick = s.tick
		rec.T = s.time
		s.histChan <- rec
	}
	if s.time > s.horizon && s.status == Running {
		s.status = Completed
	}
}

// Stop implements the solver stop condition: a session ends when simulated
// time exceeds the horizon.
func (s *Session) Stop(t float64) bool {
	if s.status != Completed {
		return false
	}
	if s.histChan != nil {
		close(s.histChan)
		s.histChan = nil
	}
	return true
}

// Func computes the 13-dim state derivative. One call per tick: it first
// runs the reference generator and the controller (mutating the estimator),
// then evaluates the rigid-body dynamics under the commanded motor speeds
// and the current wind.
func (s *Session) Func(t float64, f []float64) []float64 {
	st := decodeState(f)
	pD := s.Traj.Reference(s.time)
	wind := s.Wind.At(s.time)
	copy(s.cmd, s.Ctrl.Control(st, pD, wind, s.step))

	thrust := s.Quad.Thrust(s.cmd)
	τ := s.Quad.BodyTorque(s.cmd)
	R := DCM(st.Quaternion)

	fDot := make([]float64, stateSize)
	// ṗ = v
	copy(fDot[idxPos:idxPos+3], st.Velocity)
	// v̇ = R·(0,0,thrust)/m + g + wind
	fW := MxV33(R, []float64{0, 0, thrust})
	for i := 0; i < 3; i++ {
		fDot[idxVel+i] = fW[i]/s.Quad.Mass + wind[i]
	}
	fDot[idxVel+2] -= Gravity
	// q̇ = ½·q⊗(0,ω)
	qDot := QuatMult(st.Quaternion, []float64{0, st.Omega[0], st.Omega[1], st.Omega[2]})
	for i := 0; i < 4; i++ {
		fDot[idxQuat+i] = 0.5 * qDot[i]
	}
	// ω̇ = J⁻¹·((J·ω)×ω + τ)
	gyro := cross(MxV33(s.Quad.J, st.Omega), st.Omega)
	ωDot := MxV33(s.Quad.Jinv, []float64{gyro[0] + τ[0], gyro[1] + τ[1], gyro[2] + τ[2]})
	copy(fDot[idxOmega:idxOmega+3], ωDot)

	cmd := make([]float64, 4)
	copy(cmd, s.cmd)
	s.pending = Record{P: st.Position, Pd: pD, V: st.Velocity, Vd: s.Ctrl.DesiredVelocity(),
		Q: st.Quaternion, R: R, W: st.Omega, Wind: wind, Motors: cmd}
	return fDot
}

// State returns a decoded copy of the current vehicle state.
func (s *Session) State() VehicleState {
	return decodeState(s.state)
}

// Time returns the simulated time in seconds.
func (s *Session) Time() float64 { return s.time }

// Tick returns the number of completed control ticks.
func (s *Session) Tick() uint64 { return s.tick }

// Status returns the current run status.
func (s *Session) Status() Status { return s.status }

// FrameMarkers returns the render feed for the current pose.
func (s *Session) FrameMarkers() *mat64.Dense {
	st := s.State()
	return s.Quad.FrameMarkers(st.Position, st.Quaternion)
}

func decodeState(f []float64) VehicleState {
	st := VehicleState{
		Position:   make([]float64, 3),
		Velocity:   make([]float64, 3),
		Quaternion: make([]float64, 4),
		Omega:      make([]float64, 3),
	}
	copy(st.Position, f[idxPos:idxPos+3])
	copy(st.Velocity, f[idxVel:idxVel+3])
	copy(st.Quaternion, f[idxQuat:idxQuat+4])
	copy(st.Omega, f[idxOmega:idxOmega+3])
	return st
}
