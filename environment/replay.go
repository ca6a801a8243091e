package environment

import (
	"math"
	"math/rand"

	. "mowsim/models"
)

// ReplayData holds the coordinates of a previously generated layout, in cells.
type ReplayData struct {
	Circles  []Point
	Squares  []Point
	Isolated []Point
	Openings []Point
	// SquareSizes and CircleSizes split Squares and Circles into their placed regions.
	// Without them, or when they do not add up, each list is one region.
	SquareSizes []int
	CircleSizes []int

	Dock      Point
	HasDock   bool
	Anchor    Point
	HasAnchor bool
}

// Export captures the layout's placed cells for a later Replay.
func (layout *Layout) Export() ReplayData {
	return ReplayData{
		Circles:     toPoints(layout.Circles),
		Squares:     toPoints(layout.Squares),
		Isolated:    toPoints(layout.Isolated),
		Openings:    toPoints(layout.Openings),
		SquareSizes: append([]int(nil), layout.SquareSizes...),
		CircleSizes: append([]int(nil), layout.CircleSizes...),
		Dock:        toPoint(layout.Dock),
		HasDock:     layout.HasDock,
		Anchor:      toPoint(layout.Anchor),
		HasAnchor:   layout.HasAnchor,
	}
}

// Replay rebuilds a layout from explicit coordinates. Obstacle, dock and anchor
// coordinates are truncated; isolated area and opening coordinates are rounded up.
// When only one of the isolated cells or the openings is present, the isolated area
// is left out entirely. Regions are placed and wired in the order Generate places
// them; guidelines and coverage cells are derived as in Generate, and the dock is
// located by the strategy only when none is given.
func Replay(p Params, data ReplayData, rng *rand.Rand) (*Layout, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	strategy, _ := StrategyByName(p.DockStrategy)

	grid := NewGrid(p.Width, p.Height, p.CellSize)
	layout := &Layout{Grid: grid}

	anchor, hasAnchor := truncate(data.Anchor), data.HasAnchor && grid.InBounds(truncate(data.Anchor))

	if len(data.Isolated) > 0 && len(data.Openings) > 0 {
		for _, pt := range data.Isolated {
			cell := roundUp(pt)
			if grid.Add(cell, IsolatedArea) {
				layout.Isolated = append(layout.Isolated, cell)
			}
		}
		for _, pt := range data.Openings {
			cell := roundUp(pt)
			if grid.Add(cell, Opening) {
				layout.Openings = append(layout.Openings, cell)
			}
		}
		if len(layout.Openings) > 0 {
			layout.Entry = layout.Openings[rng.Intn(len(layout.Openings))]
			for _, cell := range layout.Openings {
				if hasAnchor && cell == anchor {
					layout.Entry = cell
				}
			}
			layout.HasEntry = true
		}
	}

	for _, region := range regions(data.Squares, data.SquareSizes) {
		cells := replaceObstacles(grid, region, ObstacleSquare)
		if len(cells) > 0 {
			SynthesizeGuidelines(grid, cells)
		}
		layout.addBlocked(cells, ObstacleSquare)
	}
	for _, region := range regions(data.Circles, data.CircleSizes) {
		cells := replaceObstacles(grid, region, ObstacleCircle)
		for _, cell := range cells {
			SynthesizeGuidelines(grid, []Pos{cell})
		}
		layout.addBlocked(cells, ObstacleCircle)
	}

	if dock := truncate(data.Dock); data.HasDock && canDock(grid, dock) {
		layout.Dock, layout.HasDock = dock, true
	}
	if hasAnchor {
		layout.Anchor, layout.HasAnchor = anchor, true
	}

	return layout, layout.finish(p, strategy, rng)
}

// regions splits points into consecutive runs of the passed sizes.
func regions(points []Point, sizes []int) (out [][]Point) {
	total := 0
	for _, n := range sizes {
		if n <= 0 {
			total = -1
			break
		}
		total += n
	}
	if total != len(points) {
		if len(points) > 0 {
			out = append(out, points)
		}
		return
	}
	for _, n := range sizes {
		out = append(out, points[:n])
		points = points[n:]
	}
	return
}

// replaceObstacles marks each truncated point with kind, superseding any guideline
// drawn through it by an earlier region.
func replaceObstacles(grid *Grid, points []Point, kind Kind) (cells []Pos) {
	for _, pt := range points {
		cell := truncate(pt)
		if !grid.InBounds(cell) || grid.Has(cell, kind) {
			continue
		}
		grid.Remove(cell, Guideline)
		grid.Add(cell, kind)
		cells = append(cells, cell)
	}
	return
}

func truncate(pt Point) Pos {
	return Pos{X: int(pt.X), Y: int(pt.Y)}
}

func roundUp(pt Point) Pos {
	return Pos{X: int(math.Ceil(pt.X)), Y: int(math.Ceil(pt.Y))}
}

func toPoint(p Pos) Point {
	return Point{X: float64(p.X), Y: float64(p.Y)}
}

func toPoints(cells []Pos) []Point {
	points := make([]Point, len(cells))
	for i, p := range cells {
		points[i] = toPoint(p)
	}
	return points
}
