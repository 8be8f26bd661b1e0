package quadsim

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gonum/matrix/mat64"
)

// ExportConfig configures the per-tick CSV recording of a session.
type ExportConfig struct {
	Filename  string
	OutputDir string
	AsCSV     bool
	Timestamp bool
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.AsCSV
}

// RunName builds the canonical output name of a run:
// <controller>_<trajectory>_<magnitude>wind<kind>.
func RunName(adaptive bool, traj Trajectory, wind Wind) string {
	ctrl := "pd"
	if adaptive {
		ctrl = "nf"
	}
	return fmt.Sprintf("%s_%s_%gwind%s", ctrl, traj, wind.Magnitude, wind.Kind)
}

// createRecordFile returns a file which requires a defer close statement!
func createRecordFile(conf ExportConfig) *os.File {
	dir := conf.OutputDir
	if dir == "" {
		dir = "."
	}
	var filename string
	if conf.Timestamp {
		t := time.Now()
		filename = fmt.Sprintf("%s/%s-%d-%02d-%02dT%02d.%02d.%02d.csv", dir, conf.Filename, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	} else {
		filename = fmt.Sprintf("%s/%s.csv", dir, conf.Filename)
	}
	f, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	return f
}

// StreamRecords drains the record channel of a session into a CSV file, one
// row per control tick. It returns once the channel is closed and the file
// is flushed.
func StreamRecords(conf ExportConfig, recChan <-chan Record) {
	f := createRecordFile(conf)
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"tick", "t", "p", "p_d", "v", "v_d", "q", "R", "w", "wind", "motors"}); err != nil {
		panic(err)
	}
	for rec := range recChan {
		row := []string{
			strconv.FormatUint(rec.Tick, 10),
			strconv.FormatFloat(rec.T, 'g', -1, 64),
			fmtVec(rec.P),
			fmtVec(rec.Pd),
			fmtVec(rec.V),
			fmtVec(rec.Vd),
			fmtVec(rec.Q),
			fmtMat(rec.R),
			fmtVec(rec.W),
			fmtVec(rec.Wind),
			fmtVec(rec.Motors),
		}
		if err := w.Write(row); err != nil {
			panic(err)
		}
	}
}

func fmtVec(v []float64) string {
	strs := make([]string, len(v))
	for i, val := range v {
		strs[i] = strconv.FormatFloat(val, 'g', -1, 64)
	}
	return "[" + strings.Join(strs, ", ") + "]"
}

func fmtMat(m *mat64.Dense) string {
	if m == nil {
		return "[]"
	}
	r, c := m.Dims()
	rows := make([]string, r)
	for i := 0; i < r; i++ {
		row := make([]float64, c)
		for j := 0; j < c; j++ {
			row[j] = m.At(i, j)
		}
		rows[i] = fmtVec(row)
	}
	return "[" + strings.Join(rows, ", ") + "]"
}
