package environment

import (
	"math/rand"

	. "mowsim/models"

	"github.com/zyedidia/generic/mapset"
)

// maxAttempts bounds every random search of the generator.
const maxAttempts = 35

// RandomFreeCell samples up to maxAttempts uniform cells, returning the first one
// that holds no obstacle, isolated area, opening or guideline.
func RandomFreeCell(grid *Grid, rng *rand.Rand) (Pos, bool) {
	for i := 0; i < maxAttempts; i++ {
		p := Pos{X: rng.Intn(grid.Width), Y: rng.Intn(grid.Height)}
		if !grid.HasAny(p, ObstacleSquare, ObstacleCircle, IsolatedArea, Opening, Guideline) {
			return p, true
		}
	}
	return Pos{}, false
}

// occupied reports whether an obstacle cell may not be placed at p.
func occupied(grid *Grid, p Pos) bool {
	return !grid.InBounds(p) ||
		grid.HasAny(p, ObstacleSquare, ObstacleCircle, IsolatedArea, Opening, Dock) ||
		grid.NearOpening(p)
}

// placeObstacle marks p with the passed obstacle kind; an obstacle supersedes
// a guideline drawn earlier through the same cell.
func placeObstacle(grid *Grid, p Pos, kind Kind) bool {
	if occupied(grid, p) {
		return false
	}
	grid.Remove(p, Guideline)
	grid.Add(p, kind)
	return true
}

// PlaceSquareObstacle fills a rectangle from origin whose extent derives from the
// width and height ranges via Variance, then synthesizes its guidelines.
// Returns the cells that received the obstacle.
func PlaceSquareObstacle(grid *Grid, origin Pos, b BlockedParams) (placed []Pos) {
	w := toCells(Variance(b.MinWidth, b.MaxWidth)+b.MinWidth, grid.CellSize)
	h := toCells(Variance(b.MinHeight, b.MaxHeight)+b.MinHeight, grid.CellSize)

	for x := origin.X; x < origin.X+w; x++ {
		for y := origin.Y; y < origin.Y+h; y++ {
			p := Pos{X: x, Y: y}
			if placeObstacle(grid, p, ObstacleSquare) {
				placed = append(placed, p)
			}
		}
	}
	if len(placed) > 0 {
		SynthesizeGuidelines(grid, placed)
	}
	return
}

// PlaceCircleObstacle fills every cell within radius cells of center. Each filled
// cell is then wired to the perimeter as if it were a one-cell region.
func PlaceCircleObstacle(grid *Grid, center Pos, radius int) (placed []Pos) {
	for i := -radius; i <= radius; i++ {
		for j := -radius; j <= radius; j++ {
			if i*i+j*j > radius*radius {
				continue
			}
			p := center.Add(i, j)
			if placeObstacle(grid, p, ObstacleCircle) {
				placed = append(placed, p)
			}
		}
	}
	for _, p := range placed {
		SynthesizeGuidelines(grid, []Pos{p})
	}
	return
}

// SynthesizeGuidelines marks the fringe of a blocked region as guideline and,
// when no fringe cell touches the field perimeter, links the fringe cell nearest
// to the perimeter to it with a line. Returns every cell marked.
func SynthesizeGuidelines(grid *Grid, region []Pos) (marked []Pos) {
	inRegion := mapset.New[Pos]()
	for _, p := range region {
		inRegion.Put(p)
	}

	seen := mapset.New[Pos]()
	var fringe []Pos
	for _, p := range region {
		for _, nb := range grid.Neighbors4(p) {
			if inRegion.Has(nb) || seen.Has(nb) {
				continue
			}
			seen.Put(nb)
			if grid.NearOpening(nb) || grid.IsBlocking(nb) || grid.Has(nb, Opening) {
				continue
			}
			fringe = append(fringe, nb)
		}
	}
	if len(fringe) == 0 {
		return
	}

	touches := false
	for _, p := range fringe {
		grid.Add(p, Guideline)
		marked = append(marked, p)
		if OnPerimeter(grid.Width, grid.Height, p) {
			touches = true
		}
	}
	if touches {
		return
	}

	var from, to Pos
	best := -1.0
	for _, p := range fringe {
		edge, d := NearestPerimeter(grid.Width, grid.Height, p)
		if best < 0 || d < best {
			from, to, best = p, edge, d
		}
	}
	marked = append(marked, DrawLine(grid, from, to)...)
	return
}
