package models

// Unvisited is the pass count of a coverage cell the blade never reached.
const Unvisited = -1

// MarkCoverageCells adds a CoverageCell marker to every cell that holds no obstacle,
// guideline or dock. This is done once, at the end of environment generation.
func MarkCoverageCells(grid *Grid) (n int) {
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			p := Pos{X: x, Y: y}
			if grid.HasAny(p, ObstacleSquare, ObstacleCircle, Guideline, Dock) {
				continue
			}
			grid.Add(p, CoverageCell)
			n++
		}
	}
	return
}

// Coverage holds one pass counter per coverage cell of a grid.
// A simulation run owns its Coverage exclusively; the grid it was built from is only read.
type Coverage struct {
	width, height int
	counts        map[Pos]int
}

// NewCoverage creates an unvisited counter for every CoverageCell marker in the grid.
func NewCoverage(grid *Grid) *Coverage {
	cov := &Coverage{
		width:  grid.Width,
		height: grid.Height,
		counts: map[Pos]int{},
	}
	for _, p := range grid.Cells(CoverageCell) {
		cov.counts[p] = Unvisited
	}
	return cov
}

// Cut records one blade pass over p: -1 becomes 1, anything else is incremented.
// Returns false if p has no counter.
func (cov *Coverage) Cut(p Pos) bool {
	count, ok := cov.counts[p]
	if !ok {
		return false
	}
	if count == Unvisited {
		cov.counts[p] = 1
	} else {
		cov.counts[p] = count + 1
	}
	return true
}

// Count returns the pass count at p and whether p has a counter.
func (cov *Coverage) Count(p Pos) (int, bool) {
	count, ok := cov.counts[p]
	return count, ok
}

// Len is the number of coverage cells.
func (cov *Coverage) Len() int {
	return len(cov.counts)
}

// Visited is the number of coverage cells cut at least once.
func (cov *Coverage) Visited() (n int) {
	for _, count := range cov.counts {
		if count > 0 {
			n++
		}
	}
	return
}

// Ratio is the fraction of coverage cells cut at least once.
func (cov *Coverage) Ratio() float64 {
	if len(cov.counts) == 0 {
		return 0
	}
	return float64(cov.Visited()) / float64(len(cov.counts))
}

// Each visits every counter in row-major order.
func (cov *Coverage) Each(fn func(p Pos, count int)) {
	cells := make([]Pos, 0, len(cov.counts))
	for p := range cov.counts {
		cells = append(cells, p)
	}
	SortPositions(cells)
	for _, p := range cells {
		fn(p, cov.counts[p])
	}
}

// Matrix returns the counts indexed [x][y]. Cells never visited, or without
// a counter, are reported as zero.
func (cov *Coverage) Matrix() [][]int {
	matrix := make([][]int, cov.width)
	for x := range matrix {
		matrix[x] = make([]int, cov.height)
	}
	for p, count := range cov.counts {
		if count > 0 {
			matrix[p.X][p.Y] = count
		}
	}
	return matrix
}

// Clone returns an independent copy.
func (cov *Coverage) Clone() *Coverage {
	cp := &Coverage{
		width:  cov.width,
		height: cov.height,
		counts: make(map[Pos]int, len(cov.counts)),
	}
	for p, count := range cov.counts {
		cp.counts[p] = count
	}
	return cp
}
