package quadsim

import (
	"fmt"
	"math"
)

// Trajectory defines an enum of reference trajectory presets.
type Trajectory uint8

const (
	// Hover holds a fixed point.
	Hover Trajectory = iota + 1
	// Circle flies a radius-1 circle at height 1.
	Circle
	// Figure8 flies a figure of eight at height 1.
	Figure8
)

// trajPeriod is the period of one revolution in seconds.
const trajPeriod = 5.0

func (tr Trajectory) String() string {
	switch tr {
	case Hover:
		return "hover"
	case Circle:
		return "circle"
	case Figure8:
		return "figure8"
	default:
		return "undefined"
	}
}

// TrajectoryFromString returns the trajectory preset for the given
// configuration name. Unknown names are a configuration error.
func TrajectoryFromString(name string) (Trajectory, error) {
	switch name {
	case "hover":
		return Hover, nil
	case "circle":
		return Circle, nil
	case "figure8":
		return Figure8, nil
	default:
		return 0, fmt.Errorf("unknown trajectory `%s`", name)
	}
}

// Reference returns the desired world-frame position at simulated time t.
func (tr Trajectory) Reference(t float64) []float64 {
	r := 2 * math.Pi * t / trajPeriod
	switch tr {
	case Hover:
		return []float64{1, 0, 1}
	case Circle:
		return []float64{math.Cos(r), math.Sin(r), 1}
	case Figure8:
		return []float64{math.Cos(r / 2), math.Sin(r), 1}
	default:
		panic(fmt.Errorf("trajectory %d not validated at setup", tr))
	}
}

// Trajectories lists all valid presets, in sweep order.
func Trajectories() []Trajectory {
	return []Trajectory{Hover, Circle, Figure8}
}

// WindKinds lists all valid wind kinds, in sweep order.
func WindKinds() []WindKind {
	return []WindKind{ConstantWind, SinusoidalWind}
}

// WindMagnitudes lists the magnitudes swept during data generation.
func WindMagnitudes() []float64 {
	return []float64{0, 1, 3, 5, 10}
}
