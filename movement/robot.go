package movement

import (
	"fmt"
	"math"
	"math/rand"

	. "mowsim/models"
)

// BouncePolicy selects how a blocked robot picks its new heading.
type BouncePolicy string

// BounceRandom adds a random angle in [5,175] degrees to the heading.
const BounceRandom BouncePolicy = "random"

func ParseBouncePolicy(s string) (BouncePolicy, error) {
	switch BouncePolicy(s) {
	case BounceRandom, "":
		return BounceRandom, nil
	}
	return "", fmt.Errorf("unknown bounce policy %q", s)
}

// RobotParams are the caller-supplied robot scalars.
type RobotParams struct {
	// Speed in field units per second.
	Speed float64
	// Autonomy is the operating time of a full charge, in seconds.
	Autonomy float64
	// Cycles is the operating budget in seconds, consumed by every traversal
	// and by every recharge.
	Cycles        float64
	BladeDiameter float64
	Policy        BouncePolicy
}

// Robot is the mower state. The continuous position is the single source of truth;
// the discrete cell is derived on demand.
type Robot struct {
	Pos Point
	// Angle is the heading in radians.
	Angle float64
	// Inside is set while the robot travels an isolated area it entered through an opening.
	Inside bool
	// Last is the previous distinct cell visited; HasLast is false until the first move.
	Last    Pos
	HasLast bool
	// Dir is the unit vector of the last committed heading.
	Dir Point

	Autonomy      float64
	Capacity      float64
	Cycles        float64
	Speed         float64
	BladeDiameter float64
	Policy        BouncePolicy
	// Path holds every committed continuous position, starting at the dock.
	Path []Point
}

// NewRobot places a robot on the dock cell, heading in a random direction in [5,175] degrees.
func NewRobot(grid *Grid, dock Pos, p RobotParams, rng *rand.Rand) *Robot {
	pos := Point{X: float64(dock.X) * grid.CellSize, Y: float64(dock.Y) * grid.CellSize}
	angle := randomAngle(rng)
	return &Robot{
		Pos:           pos,
		Angle:         angle,
		Dir:           Point{X: math.Cos(angle), Y: math.Sin(angle)},
		Autonomy:      p.Autonomy,
		Capacity:      p.Autonomy,
		Cycles:        p.Cycles,
		Speed:         p.Speed,
		BladeDiameter: p.BladeDiameter,
		Policy:        p.Policy,
		Path:          []Point{pos},
	}
}

// Cell derives the robot's discrete cell.
func (r *Robot) Cell(grid *Grid) Pos {
	cell, ok := ToDiscrete(grid, r.Pos)
	if !ok {
		// Every committed position was validated, so this cannot happen.
		panic(fmt.Sprintf("robot position %v has no cell on a %dx%d field", r.Pos, grid.Width, grid.Height))
	}
	return cell
}

// ResetAutonomy restores a full charge.
func (r *Robot) ResetAutonomy() {
	r.Autonomy = r.Capacity
}

// ToDiscrete converts a continuous position to its cell, per axis: the coordinate
// divided by the cell size is rounded up, or down when rounding up leaves the field.
// The bool is false when neither rounding is in bounds.
func ToDiscrete(grid *Grid, p Point) (Pos, bool) {
	x, okx := round(p.X/grid.CellSize, grid.Width)
	y, oky := round(p.Y/grid.CellSize, grid.Height)
	return Pos{X: x, Y: y}, okx && oky
}

func round(v float64, extent int) (int, bool) {
	if c := int(math.Ceil(v)); c >= 0 && c < extent {
		return c, true
	}
	if f := int(math.Floor(v)); f >= 0 && f < extent {
		return f, true
	}
	return 0, false
}

// onField reports whether a continuous position lies within the field.
func onField(grid *Grid, p Point) bool {
	return p.X >= 0 && p.X < float64(grid.Width)*grid.CellSize &&
		p.Y >= 0 && p.Y < float64(grid.Height)*grid.CellSize
}

func randomAngle(rng *rand.Rand) float64 {
	return (5 + rng.Float64()*170) * math.Pi / 180
}
