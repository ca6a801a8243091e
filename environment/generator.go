package environment

import (
	"math/rand"

	. "mowsim/models"
)

// Layout is the populated field handed to the simulation.
type Layout struct {
	Grid *Grid

	Dock    Pos
	HasDock bool
	// Anchor is the far end of the dock's first guideline: the isolated area entry
	// when there is one, otherwise a random field corner.
	Anchor    Pos
	HasAnchor bool
	Entry     Pos
	HasEntry  bool

	// Squares and Circles list the obstacle cells by shape, in placement order;
	// SquareSizes and CircleSizes give the cell count of each placed region.
	// Blocked is their union.
	Squares     []Pos
	Circles     []Pos
	SquareSizes []int
	CircleSizes []int
	Blocked     []Pos
	// Biggest is the largest single blocked region, as placed.
	Biggest []Pos
	// Isolated lists the whole carved region, openings included.
	Isolated []Pos
	Openings []Pos
}

// Generate builds a random field: the isolated area first, then the square and
// circular obstacles with their guidelines, then the dock and its guidelines.
// Coverage cells are marked last. A failed dock search returns the layout along
// with ErrNoDock.
func Generate(p Params, rng *rand.Rand) (*Layout, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	strategy, _ := StrategyByName(p.DockStrategy)

	grid := NewGrid(p.Width, p.Height, p.CellSize)
	layout := &Layout{Grid: grid}

	var carve Carve
	switch p.Isolated.Shape {
	case ShapeSquare:
		width := toCells(randBetween(rng, p.Isolated.MinWidth, p.Isolated.MaxWidth), p.CellSize)
		length := toCells(randBetween(rng, p.Isolated.MinLength, p.Isolated.MaxLength), p.CellSize)
		corner := RandomCorner(p.Width, p.Height, rng)
		dim := OpeningCount(width, p.Width, rng)
		carve = CarveSquare(grid, corner, width, length, dim, rng)
	case ShapeCircle:
		radius := toCells(randBetween(rng, p.Isolated.MinRadius, p.Isolated.MaxRadius), p.CellSize)
		center := RandomCorner(p.Width, p.Height, rng)
		// openings derive from the isolated width; a radius-only circle uses its diameter
		width := 2 * radius
		if p.Isolated.MaxWidth > 0 {
			width = toCells(randBetween(rng, p.Isolated.MinWidth, p.Isolated.MaxWidth), p.CellSize)
		}
		dim := OpeningCount(width, p.Width, rng)
		carve = CarveCircle(grid, center, radius, dim, rng)
	}
	layout.Isolated = carve.Region
	layout.Openings = carve.Openings
	layout.Entry, layout.HasEntry = carve.Entry, carve.HasEntry

	for i := 0; i < p.Blocked.Squares; i++ {
		origin, ok := RandomFreeCell(grid, rng)
		if !ok {
			continue
		}
		cells := PlaceSquareObstacle(grid, origin, p.Blocked)
		layout.addBlocked(cells, ObstacleSquare)
	}
	for i := 0; i < p.Blocked.Circles; i++ {
		center, ok := RandomFreeCell(grid, rng)
		if !ok {
			continue
		}
		radius := toCells(randBetween(rng, p.Blocked.MinRadius, p.Blocked.MaxRadius), p.CellSize)
		cells := PlaceCircleObstacle(grid, center, radius)
		layout.addBlocked(cells, ObstacleCircle)
	}

	return layout, layout.finish(p, strategy, rng)
}

func (layout *Layout) addBlocked(cells []Pos, kind Kind) {
	if len(cells) == 0 {
		return
	}
	if kind == ObstacleSquare {
		layout.Squares = append(layout.Squares, cells...)
		layout.SquareSizes = append(layout.SquareSizes, len(cells))
	} else {
		layout.Circles = append(layout.Circles, cells...)
		layout.CircleSizes = append(layout.CircleSizes, len(cells))
	}
	layout.Blocked = append(layout.Blocked, cells...)
	if len(cells) > len(layout.Biggest) {
		layout.Biggest = cells
	}
}

// finish places and wires the dock, applies the optional guideline supplements and
// marks the coverage cells. A dock or anchor already set on the layout is kept.
func (layout *Layout) finish(p Params, strategy DockStrategy, rng *rand.Rand) error {
	grid := layout.Grid
	defer MarkCoverageCells(grid)

	if p.PerimeterGuidelines {
		PerimeterGuidelines(grid)
	}

	if !layout.HasDock {
		dock, ok := strategy.Locate(grid, layout.Biggest, rng)
		if !ok {
			return ErrNoDock
		}
		layout.Dock, layout.HasDock = dock, true
	}
	grid.Add(layout.Dock, Dock)

	if !layout.HasAnchor {
		if layout.HasEntry {
			layout.Anchor = layout.Entry
		} else {
			layout.Anchor = RandomCorner(grid.Width, grid.Height, rng)
		}
		layout.HasAnchor = true
	}
	ConnectDock(grid, layout.Dock, layout.Anchor)

	if p.GuidelineIntoIsolated {
		GuidelineIntoIsolated(grid, layout.Dock, layout.Isolated, p.IsolatedDepth)
	}
	return nil
}
