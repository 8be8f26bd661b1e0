package quadsim

import (
	"fmt"
	"math"
)

// WindKind defines an enum of supported disturbance kinds.
type WindKind uint8

const (
	// ConstantWind blows along +x with a fixed magnitude.
	ConstantWind WindKind = iota + 1
	// SinusoidalWind blows along +x with a sinusoidally varying magnitude.
	SinusoidalWind
)

const (
	windFrequency = 0.5 // rad/s
	windPhase     = 0.0
)

func (k WindKind) String() string {
	switch k {
	case ConstantWind:
		return "const"
	case SinusoidalWind:
		return "sin"
	default:
		return "undefined"
	}
}

// WindFromString returns the wind kind for the given configuration name.
// Unknown names are a configuration error and must be rejected at setup.
func WindFromString(name string) (WindKind, error) {
	switch name {
	case "const", "constant":
		return ConstantWind, nil
	case "sin", "sinusoidal":
		return SinusoidalWind, nil
	default:
		return 0, fmt.Errorf("unknown wind kind `%s`", name)
	}
}

// Wind models the disturbance force per unit mass acting on the vehicle.
// Immutable for the duration of a run.
type Wind struct {
	Kind      WindKind
	Magnitude float64 // non-negative, in m/s^2
}

// At returns the world-frame disturbance at simulated time t.
func (w Wind) At(t float64) []float64 {
	if w.Magnitude == 0 {
		return []float64{0, 0, 0}
	}
	switch w.Kind {
	case ConstantWind:
		return []float64{w.Magnitude, 0, 0}
	case SinusoidalWind:
		return []float64{w.Magnitude * math.Sin(windFrequency*t+windPhase), 0, 0}
	default:
		panic(fmt.Errorf("wind kind %d not validated at setup", w.Kind))
	}
}
