package environment

import (
	"math"
	"math/rand"
	"sort"

	. "mowsim/models"

	"github.com/zyedidia/generic/mapset"
)

// Carve is the result of marking an isolated area.
type Carve struct {
	// Region lists every carved cell in discovery order, openings included.
	Region []Pos
	// Enclosure lists the region cells with at least one in-bounds neighbor outside the region.
	Enclosure []Pos
	Openings  []Pos
	// Entry is the opening later used to anchor the dock guideline. HasEntry is false
	// when no opening was produced, which is a valid outcome.
	Entry    Pos
	HasEntry bool
}

// CarveSquare marks a width x length isolated rectangle extending inward from
// the passed field corner, then marks the first dimOpening enclosure cells as openings.
// An opening keeps its IsolatedArea marker.
func CarveSquare(grid *Grid, corner Pos, width, length, dimOpening int, rng *rand.Rand) (carve Carve) {
	x0, y0 := 0, 0
	if corner.X != 0 {
		x0 = grid.Width - width
	}
	if corner.Y != 0 {
		y0 = grid.Height - length
	}

	for x := x0; x < x0+width; x++ {
		for y := y0; y < y0+length; y++ {
			p := Pos{X: x, Y: y}
			if grid.Add(p, IsolatedArea) {
				carve.Region = append(carve.Region, p)
			}
		}
	}
	carve.Enclosure = enclosure(grid, carve.Region)

	for i := 0; i < dimOpening && i < len(carve.Enclosure); i++ {
		p := carve.Enclosure[i]
		grid.Add(p, Opening)
		carve.Openings = append(carve.Openings, p)
	}
	if len(carve.Openings) > 0 {
		carve.Entry = carve.Openings[rng.Intn(len(carve.Openings))]
		carve.HasEntry = true
	}
	return
}

// CarveCircle marks the discretized disc of cells whose offset (i,j) from center
// satisfies i^2+j^2 <= radius^2. Openings are a contiguous run of the enclosure
// ring, walked from a random start in a random direction; the last one is the entry.
func CarveCircle(grid *Grid, center Pos, radius, dimOpening int, rng *rand.Rand) (carve Carve) {
	for i := -radius; i <= radius; i++ {
		for j := -radius; j <= radius; j++ {
			if i*i+j*j > radius*radius {
				continue
			}
			p := center.Add(i, j)
			if grid.Add(p, IsolatedArea) {
				carve.Region = append(carve.Region, p)
			}
		}
	}
	carve.Enclosure = enclosure(grid, carve.Region)
	if len(carve.Enclosure) == 0 || dimOpening <= 0 {
		return
	}

	ring := make([]Pos, len(carve.Enclosure))
	copy(ring, carve.Enclosure)
	sortByAngle(ring, center)

	start := rng.Intn(len(ring))
	dir := 1
	if rng.Intn(2) == 0 {
		dir = -1
	}
	n := len(ring)
	for k := 0; k < dimOpening && k < n; k++ {
		p := ring[((start+dir*k)%n+n)%n]
		grid.Add(p, Opening)
		carve.Openings = append(carve.Openings, p)
	}
	carve.Entry = carve.Openings[len(carve.Openings)-1]
	carve.HasEntry = true
	return
}

// enclosure returns the region cells adjacent to an in-bounds cell outside the region,
// preserving region order.
func enclosure(grid *Grid, region []Pos) (cells []Pos) {
	inRegion := mapset.New[Pos]()
	for _, p := range region {
		inRegion.Put(p)
	}
	for _, p := range region {
		for _, nb := range grid.Neighbors4(p) {
			if !inRegion.Has(nb) {
				cells = append(cells, p)
				break
			}
		}
	}
	return
}

// sortByAngle orders cells by polar angle about center, nearer cells first on ties.
func sortByAngle(cells []Pos, center Pos) {
	angle := func(p Pos) float64 {
		return math.Atan2(float64(p.Y-center.Y), float64(p.X-center.X))
	}
	sort.SliceStable(cells, func(i, j int) bool {
		ai, aj := angle(cells[i]), angle(cells[j])
		if ai != aj {
			return ai < aj
		}
		return Distance(cells[i], center) < Distance(cells[j], center)
	})
}
