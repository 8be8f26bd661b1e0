package main

import (
	"flag"
	"log"

	quadsim "github.com/gavin-hyl/simple-quad-sim"
)

// This binary only reads the scenario file and propagates one session.

const defaultScenario = "~~unset~~"

var (
	scenario string
	verbose  bool
)

func init() {
	// Read flags
	flag.StringVar(&scenario, "scenario", defaultScenario, "simulation scenario TOML file")
	flag.BoolVar(&verbose, "verbose", false, "log the scenario before running")
}

func main() {
	flag.Parse()
	if scenario == defaultScenario {
		log.Fatal("no scenario provided")
	}
	sc, err := quadsim.LoadScenario(scenario)
	if err != nil {
		log.Fatalf("could not load scenario: %s", err)
	}
	if verbose {
		log.Printf("[conf] traj=%s wind=%s mag=%g freq=%gHz horizon=%gs adaptive=%v",
			sc.Traj, sc.Wind.Kind, sc.Wind.Magnitude, sc.Freq, sc.Horizon, sc.Adaptive)
	}

	quad := quadsim.NewQuadrotor()
	ctrl := quadsim.NewController(sc.Name, quad, quadsim.NewSyntheticFeatures(), sc.Adaptive)
	sess := quadsim.NewPreciseSession(sc.Name, quad, ctrl, sc.Wind, sc.Traj,
		[]float64{1, 0, 0}, sc.Freq, sc.Horizon, sc.Export)
	status := sess.Propagate()
	if status != quadsim.Completed {
		log.Fatalf("session ended in unexpected status %s", status)
	}
}
