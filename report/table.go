// Package report writes the per-cycle outputs of a run: a pass-count table as csv,
// a coverage heatmap and a histogram of the pass counts.
package report

import (
	"encoding/csv"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"mowsim/simulation"
)

// CycleTable is the state of one repetition at the end of a work cycle.
type CycleTable struct {
	Map        int
	Repetition int
	Record     simulation.CycleRecord
	// Counts are the pass counts indexed [x][y].
	Counts   [][]int
	CellSize float64
}

var header = []string{"map", "repetition", "cycle", "beginning time", "stop time", "after recharge time", "x"}

// minutes rounds a time in seconds up to whole minutes.
func minutes(seconds float64) string {
	return strconv.Itoa(int(math.Ceil(seconds / 60)))
}

func length(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteCycleCSV writes one row per field column x. The leading columns repeat the
// cycle record, with times in minutes; the trailing columns are the counts along y,
// headed by their distance from the origin.
func WriteCycleCSV(w io.Writer, table CycleTable) error {
	cw := csv.NewWriter(w)

	row := append([]string{}, header...)
	if len(table.Counts) > 0 {
		for y := range table.Counts[0] {
			row = append(row, length(float64(y)*table.CellSize))
		}
	}
	if err := cw.Write(row); err != nil {
		return err
	}

	rec := table.Record
	for x, column := range table.Counts {
		row = []string{
			strconv.Itoa(table.Map),
			strconv.Itoa(table.Repetition),
			strconv.Itoa(rec.Cycle),
			minutes(rec.Beginning),
			minutes(rec.Stop),
			minutes(rec.AfterRecharge),
			length(float64(x) * table.CellSize),
		}
		for _, count := range column {
			row = append(row, strconv.Itoa(count))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveCycle writes the table, its heatmap and its histogram under dir as
// <prefix>_cycle_<n>.csv, heatmap_<prefix>_cycle_<n>.png and histogram_<prefix>_cycle_<n>.png.
func SaveCycle(dir, prefix string, table CycleTable) (paths []string, err error) {
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return
	}
	n := table.Record.Cycle

	csvPath := filepath.Join(dir, fmt.Sprintf("%s_cycle_%d.csv", prefix, n))
	if err = writeFile(csvPath, func(w io.Writer) error {
		return WriteCycleCSV(w, table)
	}); err != nil {
		return
	}
	paths = append(paths, csvPath)

	heatPath := filepath.Join(dir, fmt.Sprintf("heatmap_%s_cycle_%d.png", prefix, n))
	if err = SavePNG(heatPath, Heatmap(Floats(table.Counts), table.CellSize)); err != nil {
		return
	}
	paths = append(paths, heatPath)

	histPath := filepath.Join(dir, fmt.Sprintf("histogram_%s_cycle_%d.png", prefix, n))
	title := fmt.Sprintf("Histogram of Counts for Cycle %d", n)
	if err = SavePNG(histPath, Histogram(table.Counts, DefaultBins, title)); err != nil {
		return
	}
	paths = append(paths, histPath)
	return
}

// SaveMean writes the heatmap of a batch's averaged pass counts.
func SaveMean(dir, prefix string, mean [][]float64, cellSize float64) (path string, err error) {
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return
	}
	path = filepath.Join(dir, fmt.Sprintf("heatmap_%s_mean.png", prefix))
	err = SavePNG(path, Heatmap(mean, cellSize))
	return
}

// EncodePNG writes img as png.
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

func SavePNG(path string, img image.Image) error {
	return writeFile(path, func(w io.Writer) error {
		return EncodePNG(w, img)
	})
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	return write(f)
}
