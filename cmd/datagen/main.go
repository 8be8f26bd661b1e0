package main

import (
	"flag"
	"log"
	"math/rand"
	"runtime"
	"sync"
	"time"

	quadsim "github.com/gavin-hyl/simple-quad-sim"
	"github.com/gonum/matrix/mat64"
	"github.com/gonum/stat/distmv"
)

/*
 * Sweeps every trajectory preset against every wind kind and magnitude and
 * records one training CSV per run. Runs share no state, so they are fanned
 * out over a worker pool.
 */

var (
	cpus     int
	outDir   string
	jitter   float64
	adaptive bool
	wg       sync.WaitGroup
)

func init() {
	// Read flags
	flag.IntVar(&cpus, "cpus", -1, "number of CPUs to use for this sweep (set to 0 for max CPUs)")
	flag.StringVar(&outDir, "outdir", "data", "directory receiving the CSV files")
	flag.Float64Var(&jitter, "jitter", 0, "std dev of the Gaussian initial-position jitter (0 disables)")
	flag.BoolVar(&adaptive, "adaptive", true, "enable the adaptive disturbance correction")
}

type run struct {
	traj quadsim.Trajectory
	wind quadsim.Wind
}

func main() {
	flag.Parse()
	availableCPUs := runtime.NumCPU()
	if cpus <= 0 || cpus > availableCPUs {
		cpus = availableCPUs
	}
	runtime.GOMAXPROCS(cpus)

	var jitterDist *distmv.Normal
	if jitter > 0 {
		seed := rand.New(rand.NewSource(time.Now().UnixNano()))
		var ok bool
		jitterDist, ok = distmv.NewNormal([]float64{0, 0, 0},
			mat64.NewSymDense(3, []float64{jitter * jitter, 0, 0, 0, jitter * jitter, 0, 0, 0, jitter * jitter}), seed)
		if !ok {
			panic("NOK in Gaussian")
		}
	}

	runChan := make(chan run, cpus)
	for w := 0; w < cpus; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range runChan {
				initPos := []float64{1, 0, 0}
				if jitterDist != nil {
					for i, δ := range jitterDist.Rand(nil) {
						initPos[i] += δ
					}
				}
				name := quadsim.RunName(adaptive, r.traj, r.wind)
				quad := quadsim.NewQuadrotor()
				ctrl := quadsim.NewController(name, quad, quadsim.NewSyntheticFeatures(), adaptive)
				conf := quadsim.ExportConfig{AsCSV: true, OutputDir: outDir, Filename: name}
				sess := quadsim.NewPreciseSession(name, quad, ctrl, r.wind, r.traj,
					initPos, quadsim.DefaultControlFrequency, quadsim.DefaultHorizon, conf)
				sess.Propagate()
			}
		}()
	}

	count := 0
	for _, traj := range quadsim.Trajectories() {
		for _, kind := range quadsim.WindKinds() {
			for _, mag := range quadsim.WindMagnitudes() {
				runChan <- run{traj: traj, wind: quadsim.Wind{Kind: kind, Magnitude: mag}}
				count++
			}
		}
	}
	close(runChan)
	wg.Wait()
	log.Printf("recorded %d runs in %s", count, outDir)
}
