package movement

import (
	"io"
	"log"
	"math"
	"math/rand"
	"os"

	. "mowsim/models"
)

var logger = log.New(os.Stderr, "movement: ", log.LstdFlags)

// SetLogger replaces the logger used for engine warnings; nil silences them.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}
	logger = l
}

// StepResult describes the outcome of one Step.
type StepResult struct {
	// Moved is set when at least one position was committed, forward or during a bounce.
	Moved bool
	// Bounced is set when the forward candidate was rejected.
	Bounced bool
	// Stalled is set when a committed traversal needed more autonomy than was left,
	// so no time elapsed.
	Stalled bool
	// Elapsed is the operating time consumed, in seconds.
	Elapsed float64
}

// Engine advances a robot over a read-only grid, cutting into its own coverage.
type Engine struct {
	Grid     *Grid
	Coverage *Coverage
	Robot    *Robot
	rng      *rand.Rand
}

func NewEngine(grid *Grid, cov *Coverage, robot *Robot, rng *rand.Rand) *Engine {
	return &Engine{
		Grid:     grid,
		Coverage: cov,
		Robot:    robot,
		rng:      rng,
	}
}

// MowingTime is the time to traverse one cell. When that exceeds the remaining
// autonomy a warning is logged and zero is returned.
func MowingTime(speed, autonomy, cellSize float64) float64 {
	t := cellSize / speed
	if t > autonomy {
		logger.Printf("warning: traversal takes %.2fs but only %.2fs of autonomy remain", t, autonomy)
		return 0
	}
	return t
}

// Step advances the robot by one cell length along its heading. A candidate off the
// field, on an obstacle, back on the previous cell, or refused by the isolated-area
// rules triggers a bounce instead.
func (e *Engine) Step() (result StepResult) {
	r := e.Robot
	next := e.ahead(r.Pos, r.Angle, 1)

	cell, ok := e.resolve(next)
	if ok && !(r.HasLast && cell == r.Last) {
		if allowed, inside := e.admit(cell); allowed {
			r.Inside = inside
			result.Moved = true
			result.Elapsed, result.Stalled = e.commit(next, cell)
			return
		}
	}

	result.Bounced = true
	result.Moved, result.Elapsed, result.Stalled = e.bounce()
	return
}

// ahead returns the position one cell length from p along angle; sign -1 steps backward.
func (e *Engine) ahead(p Point, angle float64, sign float64) Point {
	cs := e.Grid.CellSize
	return Point{
		X: p.X + sign*math.Cos(angle)*cs,
		Y: p.Y + sign*math.Sin(angle)*cs,
	}
}

// resolve maps a candidate position to its cell, failing when it is off the field
// or on an obstacle.
func (e *Engine) resolve(p Point) (Pos, bool) {
	if !onField(e.Grid, p) {
		return Pos{}, false
	}
	cell, ok := ToDiscrete(e.Grid, p)
	if !ok || e.Grid.IsObstacle(cell) {
		return Pos{}, false
	}
	return cell, true
}

// admit applies the isolated-area rules to a candidate cell, returning whether the
// move is allowed and the resulting inside flag.
func (e *Engine) admit(cell Pos) (allowed, inside bool) {
	isOpening := e.Grid.Has(cell, Opening)
	isIsolated := e.Grid.Has(cell, IsolatedArea)
	if e.Robot.Inside {
		switch {
		case isOpening:
			return true, false
		case isIsolated:
			return true, true
		}
		return false, true
	}
	return true, isOpening && isIsolated
}

// commit moves the robot to p, charging the traversal against autonomy and the
// cycle budget, and cutting.
func (e *Engine) commit(p Point, cell Pos) (elapsed float64, stalled bool) {
	r := e.Robot
	if prev := r.Cell(e.Grid); prev != cell {
		r.Last, r.HasLast = prev, true
	}
	r.Pos = p
	r.Dir = Point{X: math.Cos(r.Angle), Y: math.Sin(r.Angle)}

	elapsed = MowingTime(r.Speed, r.Autonomy, e.Grid.CellSize)
	stalled = elapsed == 0
	r.Autonomy -= elapsed
	r.Cycles -= elapsed
	r.Path = append(r.Path, p)
	e.cut()
	return
}

// cut increments every coverage cell within half a blade diameter, in cells, of
// the robot's cell. The robot's own cell is always cut.
func (e *Engine) cut() {
	center := e.Robot.Cell(e.Grid)
	radius := (e.Robot.BladeDiameter / e.Grid.CellSize) / 2
	reach := int(math.Ceil(radius))
	for dx := -reach; dx <= reach; dx++ {
		for dy := -reach; dy <= reach; dy++ {
			if (dx == 0 && dy == 0) || math.Hypot(float64(dx), float64(dy)) <= radius {
				e.Coverage.Cut(center.Add(dx, dy))
			}
		}
	}
}

// bounce backs the robot up to floor(blade/cellSize) cells along its heading, then
// turns it and tries a single forward step. Zero net displacement is a valid outcome.
func (e *Engine) bounce() (moved bool, elapsed float64, stalled bool) {
	r := e.Robot
	for i := 0; i < e.moveBackSteps(); i++ {
		back := e.ahead(r.Pos, r.Angle, -1)
		cell, ok := e.resolve(back)
		if !ok {
			break
		}
		t, s := e.commit(back, cell)
		moved, elapsed, stalled = true, elapsed+t, stalled || s
	}

	if next, cell, ok := e.redirect(); ok {
		t, s := e.commit(next, cell)
		moved, elapsed, stalled = true, elapsed+t, stalled || s
	}

	// An inside flag on a cell outside the isolated area is stale.
	if r.Inside && !e.Grid.HasAny(r.Cell(e.Grid), IsolatedArea, Opening) {
		r.Inside = false
	}
	return
}

func (e *Engine) moveBackSteps() int {
	return int(math.Floor(e.Robot.BladeDiameter / e.Grid.CellSize))
}

// redirect turns the robot by a random angle and returns the cell one step along
// the new heading, if it is on the field, free and admitted.
func (e *Engine) redirect() (Point, Pos, bool) {
	r := e.Robot
	r.Angle = math.Mod(r.Angle+randomAngle(e.rng), 2*math.Pi)

	next := e.ahead(r.Pos, r.Angle, 1)
	cell, ok := e.resolve(next)
	if !ok {
		return next, cell, false
	}
	allowed, inside := e.admit(cell)
	if !allowed {
		return next, cell, false
	}
	r.Inside = inside
	return next, cell, true
}
