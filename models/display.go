package models

import (
	"fmt"
	"io"
)

// Glyph returns the console rune for a set of markers. Obstacles win over
// everything else, then the dock, openings, isolated area, guidelines and grass.
func Glyph(kinds []Kind) rune {
	has := func(kind Kind) bool {
		for _, k := range kinds {
			if k == kind {
				return true
			}
		}
		return false
	}
	switch {
	case has(ObstacleSquare):
		return '#'
	case has(ObstacleCircle):
		return 'O'
	case has(Dock):
		return 'D'
	case has(Opening):
		return 'o'
	case has(IsolatedArea):
		return '~'
	case has(Guideline):
		return '+'
	case has(CoverageCell):
		return '.'
	}
	return ' '
}

// ShowGrid prints the field, for visual reference.
// Rows are printed top down, so (0,0) lands at the bottom left.
func ShowGrid(grid *Grid, w io.Writer) {
	for _, y := range Rev(grid.Height) {
		for x := 0; x < grid.Width; x++ {
			fmt.Fprintf(w, "%c ", Glyph(grid.Kinds(Pos{X: x, Y: y})))
		}
		fmt.Fprintln(w, "")
	}
}

// ShowCoverage prints the pass counts per cell; obstacles and other cells
// without a counter print as '-'.
func ShowCoverage(grid *Grid, cov *Coverage, w io.Writer) {
	total := 0
	for _, y := range Rev(grid.Height) {
		fmt.Fprint(w, " ")
		for x := 0; x < grid.Width; x++ {
			count, ok := cov.Count(Pos{X: x, Y: y})
			switch {
			case !ok:
				fmt.Fprint(w, "  - ")
			case count == Unvisited:
				fmt.Fprint(w, "  . ")
			default:
				fmt.Fprintf(w, "%3d ", count)
				total += count
			}
		}
		fmt.Fprintln(w, "")
	}
	fmt.Fprintf(w, "Passes total: %d, visited %d/%d\n", total, cov.Visited(), cov.Len())
}

// Returns reversed indices of a slice, e.g. for ranging over.
func Rev(length int) []int {
	indices := make([]int, length)
	for i := 0; i < length; i++ {
		indices[i] = length - i - 1
	}
	return indices
}
