package quadsim

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Scenario is a fully validated run configuration, read from a TOML file.
type Scenario struct {
	Name     string
	Traj     Trajectory
	Wind     Wind
	Freq     float64 // control frequency in Hz
	Horizon  float64 // simulated duration in seconds
	Adaptive bool
	Export   ExportConfig
}

// LoadScenario reads and validates the scenario TOML at the given path.
// Unrecognized trajectory or wind names are configuration errors and are
// reported here, before any simulation starts.
func LoadScenario(path string) (Scenario, error) {
	name := strings.TrimSuffix(filepath.Base(path), ".toml")
	v := viper.New()
	v.SetConfigName(name)
	v.AddConfigPath(filepath.Dir(path))
	v.SetDefault("sim.frequency", DefaultControlFrequency)
	v.SetDefault("sim.horizon", DefaultHorizon)
	v.SetDefault("control.adaptive", true)
	if err := v.ReadInConfig(); err != nil {
		return Scenario{}, fmt.Errorf("%s: %s", path, err)
	}

	traj, err := TrajectoryFromString(v.GetString("sim.trajectory"))
	if err != nil {
		return Scenario{}, err
	}
	kind, err := WindFromString(v.GetString("sim.wind"))
	if err != nil {
		return Scenario{}, err
	}
	mag := v.GetFloat64("sim.windMag")
	if mag < 0 {
		return Scenario{}, fmt.Errorf("wind magnitude must be non-negative, got %g", mag)
	}
	sc := Scenario{
		Name:     name,
		Traj:     traj,
		Wind:     Wind{Kind: kind, Magnitude: mag},
		Freq:     v.GetFloat64("sim.frequency"),
		Horizon:  v.GetFloat64("sim.horizon"),
		Adaptive: v.GetBool("control.adaptive"),
	}
	if sc.Freq <= 0 {
		return Scenario{}, fmt.Errorf("control frequency must be positive, got %g", sc.Freq)
	}
	sc.Export = ExportConfig{
		AsCSV:     v.GetBool("output.csv"),
		OutputDir: v.GetString("output.dir"),
		Filename:  v.GetString("output.filename"),
		Timestamp: v.GetBool("output.timestamp"),
	}
	if sc.Export.AsCSV && sc.Export.Filename == "" {
		sc.Export.Filename = RunName(sc.Adaptive, sc.Traj, sc.Wind)
	}
	return sc, nil
}
