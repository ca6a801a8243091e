package models

import "math"

// InBounds reports whether p lies within a width x height field.
func InBounds(width, height int, p Pos) bool {
	return p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height
}

// Distance is the euclidean distance between two cells.
func Distance(a, b Pos) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// PointDistance is the euclidean distance between two continuous positions.
func PointDistance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Nearest returns the first candidate with the minimum distance to target.
// The bool is false when there are no candidates.
func Nearest(target Pos, candidates []Pos) (nearest Pos, dist float64, ok bool) {
	dist = math.MaxFloat64
	for _, c := range candidates {
		if d := Distance(target, c); d < dist {
			nearest, dist, ok = c, d, true
		}
	}
	return
}

// DrawLine rasterizes a guideline from one cell to another with integer Bresenham stepping.
// Cells holding an obstacle, isolated area, opening or dock are walked over but not marked.
// The walk stops as soon as it leaves the field. Returns the cells that received
// a guideline marker, in walk order.
func DrawLine(grid *Grid, from, to Pos) (marked []Pos) {
	dx := abs(to.X - from.X)
	dy := abs(to.Y - from.Y)
	sx, sy := 1, 1
	if from.X > to.X {
		sx = -1
	}
	if from.Y > to.Y {
		sy = -1
	}

	mark := func(p Pos) {
		if !grid.IsBlocking(p) && !grid.Has(p, Opening) {
			grid.Add(p, Guideline)
			marked = append(marked, p)
		}
	}

	err := dx - dy
	cur := from
	for cur != to {
		if !grid.InBounds(cur) {
			return
		}
		mark(cur)

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			cur.X += sx
		}
		if e2 < dx {
			err += dx
			cur.Y += sy
		}
	}

	if grid.InBounds(to) {
		mark(to)
	}
	return
}

// CentralCell returns the center cell of a width x height field; for even
// extents the lower of the two middle indices is used.
func CentralCell(width, height int) Pos {
	center := func(n int) int {
		if n%2 == 1 {
			return n / 2
		}
		return n/2 - 1
	}
	return Pos{X: center(width), Y: center(height)}
}

// OnPerimeter reports whether p is an edge cell of a width x height field.
func OnPerimeter(width, height int, p Pos) bool {
	return InBounds(width, height, p) &&
		(p.X == 0 || p.Y == 0 || p.X == width-1 || p.Y == height-1)
}

// PerimeterCells lists the edge cells of the field, each once, in row-major order.
func PerimeterCells(width, height int) (cells []Pos) {
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := Pos{X: x, Y: y}
			if OnPerimeter(width, height, p) {
				cells = append(cells, p)
			}
		}
	}
	return
}

// NearestPerimeter returns the edge cell closest to p, checking the left, right,
// bottom and top edges in that order.
func NearestPerimeter(width, height int, p Pos) (Pos, float64) {
	candidates := []Pos{
		{X: 0, Y: p.Y},
		{X: width - 1, Y: p.Y},
		{X: p.X, Y: 0},
		{X: p.X, Y: height - 1},
	}
	nearest, dist, _ := Nearest(p, candidates)
	return nearest, dist
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
