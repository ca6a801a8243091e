// cell_views contains views derived from the Frame view-model.
package cell_views

import (
	"fmt"
	"image/color"

	. "mowsim/models"
	"mowsim/report"
	"mowsim/simulation"
)

// Cell is one field cell, oriented in the svg coordinate system such that
// Y=0 is the top row. Fields are immediately usable as view parameters.
type Cell struct {
	X, Y  int
	Count int
	Fill  string
}

// Status summarizes the run a frame was taken from.
type Status struct {
	Run      int
	Cycle    int
	Step     int
	Autonomy string
	Robot    string
	Inside   bool
}

// Frame is the view-model of one snapshot: cells indexed [x][y] and a status.
type Frame struct {
	Cells  [][]Cell
	Status Status
}

var (
	obstacleFill  = "dimgray"
	isolatedFill  = "khaki"
	openingFill   = "orange"
	guidelineFill = "lightblue"
	dockFill      = "gold"
	robotFill     = "red"
)

// NewConverter returns the function turning snapshots of runs on grid into frames.
// Marker colours are resolved once, since the grid does not change during runs.
func NewConverter(grid *Grid) func(simulation.Snapshot) Frame {
	static := make([][]string, grid.Width)
	for x := range static {
		static[x] = make([]string, grid.Height)
		for y := range static[x] {
			static[x][y] = markerFill(grid, Pos{X: x, Y: y})
		}
	}

	return func(snap simulation.Snapshot) Frame {
		return convert(grid, static, snap)
	}
}

// Convert builds the frame of snap on grid.
func Convert(grid *Grid, snap simulation.Snapshot) Frame {
	return NewConverter(grid)(snap)
}

func convert(grid *Grid, static [][]string, snap simulation.Snapshot) (frame Frame) {
	max := 0
	for x := range snap.Counts {
		for _, c := range snap.Counts[x] {
			if c > max {
				max = c
			}
		}
	}

	frame.Cells = make([][]Cell, grid.Width)
	for x := range frame.Cells {
		frame.Cells[x] = make([]Cell, grid.Height)
		for y := range frame.Cells[x] {
			count := 0
			if x < len(snap.Counts) && y < len(snap.Counts[x]) {
				count = snap.Counts[x][y]
			}

			fill := static[x][y]
			if fill == "" || (count > 0 && fill == isolatedFill) {
				t := 0.0
				if max > 0 {
					t = float64(count) / float64(max)
				}
				fill = hex(report.Ramp(t))
			}
			if snap.Robot.X == x && snap.Robot.Y == y {
				fill = robotFill
			}

			// flip the y indices for displaying in svg coordinate system
			frame.Cells[x][y] = Cell{
				X:     x,
				Y:     grid.Height - y - 1,
				Count: count,
				Fill:  fill,
			}
		}
	}

	frame.Status = Status{
		Run:      snap.Run,
		Cycle:    snap.Cycle,
		Step:     snap.Step,
		Autonomy: fmt.Sprintf("%.1f", snap.Autonomy),
		Robot:    fmt.Sprintf("(%d, %d)", snap.Robot.X, snap.Robot.Y),
		Inside:   snap.Inside,
	}
	return
}

// markerFill is the fixed colour of a marked cell, or "" for a mowable cell.
func markerFill(grid *Grid, p Pos) (fill string) {
	switch {
	case grid.IsObstacle(p):
		fill = obstacleFill
	case grid.Has(p, Dock):
		fill = dockFill
	case grid.Has(p, Opening):
		fill = openingFill
	case grid.Has(p, IsolatedArea):
		fill = isolatedFill
	case grid.Has(p, Guideline):
		fill = guidelineFill
	}
	return
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
