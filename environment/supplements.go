package environment

import (
	"math"

	. "mowsim/models"
)

// PerimeterGuidelines marks every free border cell as a guideline.
func PerimeterGuidelines(grid *Grid) (marked []Pos) {
	for _, p := range PerimeterCells(grid.Width, grid.Height) {
		if grid.IsBlocking(p) || grid.Has(p, Opening) {
			continue
		}
		grid.Add(p, Guideline)
		marked = append(marked, p)
	}
	return
}

// GuidelineIntoIsolated draws a straight spur from the dock toward the centroid of the
// isolated region, covering depth of the distance. Only free cells are marked.
func GuidelineIntoIsolated(grid *Grid, dock Pos, region []Pos, depth float64) []Pos {
	if len(region) == 0 || depth <= 0 {
		return nil
	}
	var cx, cy float64
	for _, p := range region {
		cx += float64(p.X)
		cy += float64(p.Y)
	}
	cx /= float64(len(region))
	cy /= float64(len(region))

	target := Pos{
		X: int(math.Round(float64(dock.X) + (cx-float64(dock.X))*depth)),
		Y: int(math.Round(float64(dock.Y) + (cy-float64(dock.Y))*depth)),
	}
	if target == dock {
		return nil
	}
	return DrawLine(grid, dock, target)
}
