package environment

import (
	"fmt"
	"math/rand"

	. "mowsim/models"
)

// DockStrategy proposes a dock cell. Locate retries up to maxAttempts times and
// reports false when no attempt produced a placeable cell; it never mutates the grid.
type DockStrategy interface {
	Locate(grid *Grid, biggest []Pos, rng *rand.Rand) (Pos, bool)
}

// PerimeterStrategy samples the left or the top field edge. The bottom and right
// edges are never eligible.
type PerimeterStrategy struct{}

// BiggestRandomStrategy samples a random cell of the largest blocked region.
type BiggestRandomStrategy struct{}

// BiggestCenterStrategy takes the cell of the largest blocked region nearest to the field center.
type BiggestCenterStrategy struct{}

func (PerimeterStrategy) Locate(grid *Grid, _ []Pos, rng *rand.Rand) (Pos, bool) {
	return locate(grid, func() (Pos, bool) {
		if rng.Intn(2) == 0 {
			return Pos{X: 0, Y: rng.Intn(grid.Height)}, true
		}
		return Pos{X: rng.Intn(grid.Width), Y: 0}, true
	})
}

func (BiggestRandomStrategy) Locate(grid *Grid, biggest []Pos, rng *rand.Rand) (Pos, bool) {
	return locate(grid, func() (Pos, bool) {
		if len(biggest) == 0 {
			return Pos{}, false
		}
		return biggest[rng.Intn(len(biggest))], true
	})
}

func (BiggestCenterStrategy) Locate(grid *Grid, biggest []Pos, _ *rand.Rand) (Pos, bool) {
	return locate(grid, func() (Pos, bool) {
		p, _, ok := Nearest(CentralCell(grid.Width, grid.Height), biggest)
		return p, ok
	})
}

func locate(grid *Grid, propose func() (Pos, bool)) (Pos, bool) {
	for i := 0; i < maxAttempts; i++ {
		p, ok := propose()
		if !ok {
			continue
		}
		p = ValidateDock(grid, p)
		if canDock(grid, p) {
			return p, true
		}
	}
	return Pos{}, false
}

// StrategyByName maps a configuration selector to its strategy.
func StrategyByName(name string) (DockStrategy, error) {
	switch name {
	case "perimeter":
		return PerimeterStrategy{}, nil
	case "biggest_random":
		return BiggestRandomStrategy{}, nil
	case "biggest_center":
		return BiggestCenterStrategy{}, nil
	}
	return nil, fmt.Errorf("unknown dock strategy %q: %w", name, ErrInvalidParams)
}

// ValidateDock adjusts a proposed dock position. A position out of bounds or on an
// obstacle or isolated cell is replaced by its first free in-bounds neighbor, probing
// left, right, up, down; otherwise it is returned unchanged.
func ValidateDock(grid *Grid, p Pos) Pos {
	if grid.InBounds(p) && !grid.IsObstacle(p) && !grid.Has(p, IsolatedArea) {
		return p
	}
	for _, nb := range grid.Neighbors4(p) {
		if !grid.HasAny(nb, ObstacleSquare, ObstacleCircle, IsolatedArea, Opening) {
			return nb
		}
	}
	return p
}

func canDock(grid *Grid, p Pos) bool {
	return grid.InBounds(p) &&
		!grid.HasAny(p, ObstacleSquare, ObstacleCircle, IsolatedArea, Opening, Dock)
}

// ConnectDock draws guidelines from the dock to the anchor and to the farthest field corner.
func ConnectDock(grid *Grid, dock, anchor Pos) (marked []Pos) {
	marked = DrawLine(grid, dock, anchor)
	corner := FarthestCorner(grid.Width, grid.Height, dock)
	marked = append(marked, DrawLine(grid, dock, corner)...)
	return
}

// Corners lists the field corners in the order they are probed for the farthest one.
func Corners(width, height int) []Pos {
	return []Pos{
		{X: 0, Y: height - 1},
		{X: width - 1, Y: 0},
		{X: 0, Y: 0},
		{X: width - 1, Y: height - 1},
	}
}

// FarthestCorner returns the field corner farthest from p. The search stops early
// at a corner whose distance already exceeds either field dimension.
func FarthestCorner(width, height int, p Pos) (farthest Pos) {
	best := -1.0
	for _, c := range Corners(width, height) {
		d := Distance(p, c)
		if d > best {
			farthest, best = c, d
		}
		if d > float64(width) || d > float64(height) {
			return c
		}
	}
	return
}

// RandomCorner picks one of the field corners uniformly.
func RandomCorner(width, height int, rng *rand.Rand) Pos {
	corners := Corners(width, height)
	return corners[rng.Intn(len(corners))]
}
