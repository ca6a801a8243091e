package report

import (
	"bytes"
	"encoding/csv"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"mowsim/simulation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() CycleTable {
	return CycleTable{
		Map:        1,
		Repetition: 3,
		Record: simulation.CycleRecord{
			Cycle:         2,
			Beginning:     0,
			Stop:          95,
			AfterRecharge: 155,
		},
		Counts:   [][]int{{1, 0, 2}, {0, 3, 4}},
		CellSize: 0.5,
	}
}

func TestWriteCycleCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCycleCSV(&buf, sampleTable()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"map", "repetition", "cycle", "beginning time", "stop time", "after recharge time", "x", "0", "0.5", "1"}, rows[0])
	assert.Equal(t, []string{"1", "3", "2", "0", "2", "3", "0", "1", "0", "2"}, rows[1])
	assert.Equal(t, []string{"1", "3", "2", "0", "2", "3", "0.5", "0", "3", "4"}, rows[2])
}

func TestWriteCycleCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	table := sampleTable()
	table.Counts = nil
	require.NoError(t, WriteCycleCSV(&buf, table))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, header, rows[0])
}

func TestBins(t *testing.T) {
	tests := []struct {
		name   string
		counts [][]int
		n      int
		edges  []float64
		freq   []int
	}{
		{
			name:   "spread",
			counts: [][]int{{1, 2, 3}, {4, 0, -1}},
			n:      3,
			edges:  []float64{1, 2, 3, 4},
			freq:   []int{1, 1, 2},
		},
		{
			name:   "single value",
			counts: [][]int{{5, 5}},
			n:      2,
			edges:  []float64{4.5, 5, 5.5},
			freq:   []int{0, 2},
		},
		{
			name:   "nothing cut",
			counts: [][]int{{0, 0}},
			n:      2,
			edges:  []float64{0, 0.5, 1},
			freq:   []int{0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edges, freq := Bins(tt.counts, tt.n)
			assert.InDeltaSlice(t, tt.edges, edges, 1e-9)
			assert.Equal(t, tt.freq, freq)
		})
	}
}

func TestHeatmap(t *testing.T) {
	img := Heatmap([][]float64{{0, 2}, {4, 0}}, 1)

	bounds := img.Bounds()
	assert.Equal(t, marginLeft+2*CellPixels+marginRight, bounds.Dx())
	assert.Equal(t, marginTop+2*CellPixels+marginBottom, bounds.Dy())

	at := func(x, y int) any {
		px, py := cellOrigin(x, y, 2)
		return img.RGBAAt(px+CellPixels/2, py+CellPixels/2)
	}
	assert.Equal(t, Ramp(1), at(1, 0))
	assert.Equal(t, Ramp(0), at(0, 0))
	assert.Equal(t, Ramp(0.5), at(0, 1))
	assert.Equal(t, rampHigh, Ramp(2))
	assert.Equal(t, rampLow, Ramp(-1))
}

func TestHistogram(t *testing.T) {
	img := Histogram([][]int{{1, 1, 2}, {5, 0, 9}}, DefaultBins, "Histogram of Counts for Cycle 1")

	greens := 0
	b := img.Bounds()
	for x := b.Min.X; x < b.Max.X; x++ {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			if img.RGBAAt(x, y) == green {
				greens++
			}
		}
	}
	assert.Positive(t, greens)
}

func TestSaveCycle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	paths, err := SaveCycle(dir, "map1_rep3", sampleTable())
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "map1_rep3_cycle_2.csv"),
		filepath.Join(dir, "heatmap_map1_rep3_cycle_2.png"),
		filepath.Join(dir, "histogram_map1_rep3_cycle_2.png"),
	}, paths)

	f, err := os.Open(paths[1])
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, marginLeft+2*CellPixels+marginRight, img.Bounds().Dx())

	mean, err := SaveMean(dir, "map1", [][]float64{{0.5, 1}, {2, 0}}, 0.5)
	require.NoError(t, err)
	assert.FileExists(t, mean)
}
