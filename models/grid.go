package models

import (
	"fmt"
	"sort"

	"github.com/zyedidia/generic/mapset"
)

// Pos is a discrete cell coordinate of the field grid.
// The orientation follows the console: (0,0) is printed bottom left and x grows to the right.
type Pos struct {
	X, Y int
}

// Point is a continuous position in field units (cells times cell size).
type Point struct {
	X, Y float64
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Add returns the position offset by the passed delta.
func (p Pos) Add(dx, dy int) Pos {
	return Pos{X: p.X + dx, Y: p.Y + dy}
}

// Kind tags the markers a cell may hold. Markers carry no behavior beyond
// their kind and the cell they sit in, so a single enum replaces a type per marker.
type Kind uint8

// Marker kinds
const (
	ObstacleSquare Kind = iota
	ObstacleCircle
	IsolatedArea
	Opening
	Guideline
	Dock
	CoverageCell
)

var allKinds = []Kind{
	ObstacleSquare,
	ObstacleCircle,
	IsolatedArea,
	Opening,
	Guideline,
	Dock,
	CoverageCell,
}

func (k Kind) String() string {
	switch k {
	case ObstacleSquare:
		return "obstacle-square"
	case ObstacleCircle:
		return "obstacle-circle"
	case IsolatedArea:
		return "isolated-area"
	case Opening:
		return "opening"
	case Guideline:
		return "guideline"
	case Dock:
		return "dock"
	case CoverageCell:
		return "coverage-cell"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Grid is a sparse mapping from discrete cells to the set of markers occupying them.
// Cells without markers are not stored. The grid is written by the environment
// generator during setup; afterward only coverage bookkeeping touches it.
type Grid struct {
	Width, Height int
	// CellSize is the side length of one cell in field units (meters, etc).
	CellSize float64
	cells    map[Pos]mapset.Set[Kind]
}

// NewGrid returns an empty width x height grid.
func NewGrid(width, height int, cellSize float64) *Grid {
	return &Grid{
		Width:    width,
		Height:   height,
		CellSize: cellSize,
		cells:    map[Pos]mapset.Set[Kind]{},
	}
}

// InBounds reports whether p lies on the field.
func (g *Grid) InBounds(p Pos) bool {
	return InBounds(g.Width, g.Height, p)
}

// Add places a marker at p. Out of bounds positions are ignored and false is returned.
func (g *Grid) Add(p Pos, kind Kind) bool {
	if !g.InBounds(p) {
		return false
	}
	set, ok := g.cells[p]
	if !ok {
		set = mapset.New[Kind]()
		g.cells[p] = set
	}
	set.Put(kind)
	return true
}

// Remove deletes a marker from p, if present.
func (g *Grid) Remove(p Pos, kind Kind) {
	set, ok := g.cells[p]
	if !ok {
		return
	}
	set.Remove(kind)
	if set.Size() == 0 {
		delete(g.cells, p)
	}
}

// Has reports whether p holds the passed marker.
func (g *Grid) Has(p Pos, kind Kind) bool {
	set, ok := g.cells[p]
	return ok && set.Has(kind)
}

// HasAny reports whether p holds any of the passed markers.
func (g *Grid) HasAny(p Pos, kinds ...Kind) bool {
	set, ok := g.cells[p]
	if !ok {
		return false
	}
	for _, kind := range kinds {
		if set.Has(kind) {
			return true
		}
	}
	return false
}

// Kinds returns the markers at p in declaration order.
func (g *Grid) Kinds(p Pos) (kinds []Kind) {
	set, ok := g.cells[p]
	if !ok {
		return
	}
	for _, kind := range allKinds {
		if set.Has(kind) {
			kinds = append(kinds, kind)
		}
	}
	return
}

// Cells returns every cell holding the passed marker, sorted by row then column.
func (g *Grid) Cells(kind Kind) (cells []Pos) {
	for p, set := range g.cells {
		if set.Has(kind) {
			cells = append(cells, p)
		}
	}
	SortPositions(cells)
	return
}

// Count returns the number of cells holding the passed marker.
func (g *Grid) Count(kind Kind) (n int) {
	for _, set := range g.cells {
		if set.Has(kind) {
			n++
		}
	}
	return
}

// IsObstacle reports whether p holds a square or circular blocked area.
func (g *Grid) IsObstacle(p Pos) bool {
	return g.HasAny(p, ObstacleSquare, ObstacleCircle)
}

// IsBlocking reports whether a guideline line must skip p.
func (g *Grid) IsBlocking(p Pos) bool {
	return g.HasAny(p, ObstacleSquare, ObstacleCircle, IsolatedArea, Dock)
}

// NearOpening reports whether any 4-neighbor of p is an opening.
// Obstacles are kept off these cells so that isolated-area entries are never choked.
func (g *Grid) NearOpening(p Pos) bool {
	for _, nb := range g.Neighbors4(p) {
		if g.Has(nb, Opening) {
			return true
		}
	}
	return false
}

// neighborOffsets are ordered left, right, up, down.
var neighborOffsets = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// Neighbors4 returns the in-bounds orthogonal neighbors of p, ordered left, right, up, down.
func (g *Grid) Neighbors4(p Pos) (nbs []Pos) {
	nbs = make([]Pos, 0, 4)
	for _, d := range neighborOffsets {
		nb := p.Add(d[0], d[1])
		if g.InBounds(nb) {
			nbs = append(nbs, nb)
		}
	}
	return
}

// Visit calls fn for every cell that holds at least one marker, in row-major order.
func (g *Grid) Visit(fn func(p Pos, kinds []Kind)) {
	cells := make([]Pos, 0, len(g.cells))
	for p := range g.cells {
		cells = append(cells, p)
	}
	SortPositions(cells)
	for _, p := range cells {
		fn(p, g.Kinds(p))
	}
}

// SortPositions orders positions by row (y) then column (x).
func SortPositions(cells []Pos) {
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})
}
