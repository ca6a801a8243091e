package movement

import (
	"math"
	"math/rand"
	"testing"

	"mowsim/environment"
	. "mowsim/models"

	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	SetLogger(nil)
}

func newTestEngine(grid *Grid, pos Point, angle float64) *Engine {
	MarkCoverageCells(grid)
	robot := &Robot{
		Pos:           pos,
		Angle:         angle,
		Autonomy:      1e6,
		Capacity:      1e6,
		Cycles:        100,
		Speed:         1,
		BladeDiameter: 0.5,
		Policy:        BounceRandom,
		Path:          []Point{pos},
	}
	return NewEngine(grid, NewCoverage(grid), robot, rand.New(rand.NewSource(1)))
}

// isolatedGrid marks columns 5..9 as an isolated area entered through (5,4).
func isolatedGrid() *Grid {
	grid := NewGrid(10, 10, 1)
	for x := 5; x < 10; x++ {
		for y := 0; y < 10; y++ {
			grid.Add(Pos{X: x, Y: y}, IsolatedArea)
		}
	}
	grid.Add(Pos{X: 5, Y: 4}, Opening)
	return grid
}

func TestToDiscrete(t *testing.T) {
	Convey("Given a 10x10 field of unit cells", t, func() {
		grid := NewGrid(10, 10, 1)

		Convey("Coordinates are rounded up", func() {
			p, ok := ToDiscrete(grid, Point{X: 4.0, Y: 4.0})
			So(ok, ShouldBeTrue)
			So(p, ShouldResemble, Pos{X: 4, Y: 4})
			p, _ = ToDiscrete(grid, Point{X: 4.2, Y: 3.5})
			So(p, ShouldResemble, Pos{X: 5, Y: 4})
		})

		Convey("Rounding falls back to the floor at the far edge", func() {
			p, ok := ToDiscrete(grid, Point{X: 9.5, Y: 0})
			So(ok, ShouldBeTrue)
			So(p, ShouldResemble, Pos{X: 9, Y: 0})
		})

		Convey("Positions with no rounding on the field are rejected", func() {
			_, ok := ToDiscrete(grid, Point{X: -1.5, Y: 2})
			So(ok, ShouldBeFalse)
			_, ok = ToDiscrete(grid, Point{X: 10.5, Y: 0})
			So(ok, ShouldBeFalse)
		})

		Convey("The cell size scales the conversion", func() {
			half := NewGrid(10, 10, 0.5)
			p, ok := ToDiscrete(half, Point{X: 2.0, Y: 1.0})
			So(ok, ShouldBeTrue)
			So(p, ShouldResemble, Pos{X: 4, Y: 2})
		})
	})
}

func TestMowingTime(t *testing.T) {
	Convey("Mowing time is the cell size over the speed", t, func() {
		So(MowingTime(2, 10, 1), ShouldEqual, 0.5)
	})

	Convey("Insufficient autonomy yields zero", t, func() {
		So(MowingTime(1, 0.5, 1), ShouldEqual, 0)
	})

	Convey("A step without enough autonomy moves but stalls", t, func() {
		e := newTestEngine(NewGrid(10, 10, 1), Point{X: 4, Y: 4}, 0)
		e.Robot.Autonomy = 0.5
		result := e.Step()
		So(result.Moved, ShouldBeTrue)
		So(result.Stalled, ShouldBeTrue)
		So(result.Elapsed, ShouldEqual, 0)
		So(e.Robot.Autonomy, ShouldEqual, 0.5)
		So(e.Robot.Cycles, ShouldEqual, 100)
	})
}

func TestStep(t *testing.T) {
	Convey("Given a robot at (4,4) heading east", t, func() {
		grid := NewGrid(10, 10, 1)

		Convey("When the next cell is free", func() {
			e := newTestEngine(grid, Point{X: 4, Y: 4}, 0)
			result := e.Step()

			Convey("Then the robot advances one cell and pays for it", func() {
				So(result.Moved, ShouldBeTrue)
				So(result.Bounced, ShouldBeFalse)
				So(result.Elapsed, ShouldEqual, 1.0)
				So(e.Robot.Cell(grid), ShouldResemble, Pos{X: 5, Y: 4})
				So(e.Robot.Last, ShouldResemble, Pos{X: 4, Y: 4})
				So(e.Robot.Autonomy, ShouldEqual, 1e6-1)
				So(e.Robot.Cycles, ShouldEqual, 99)
				So(len(e.Robot.Path), ShouldEqual, 2)
				count, _ := e.Coverage.Count(Pos{X: 5, Y: 4})
				So(count, ShouldEqual, 1)
			})
		})

		Convey("When the robot runs at twice the speed", func() {
			e := newTestEngine(grid, Point{X: 4, Y: 4}, 0)
			e.Robot.Speed = 2
			result := e.Step()

			Convey("Then autonomy and the cycle budget both drop by the cell size over the speed", func() {
				So(result.Elapsed, ShouldEqual, 0.5)
				So(e.Robot.Autonomy, ShouldEqual, 1e6-0.5)
				So(e.Robot.Cycles, ShouldEqual, 99.5)
			})
		})

		Convey("When the next cell holds an obstacle", func() {
			grid.Add(Pos{X: 5, Y: 4}, ObstacleSquare)
			e := newTestEngine(grid, Point{X: 4, Y: 4}, 0)
			result := e.Step()

			Convey("Then the robot bounces elsewhere", func() {
				So(result.Bounced, ShouldBeTrue)
				So(e.Robot.Cell(grid), ShouldNotResemble, Pos{X: 5, Y: 4})
				So(e.Robot.Pos, ShouldNotResemble, Point{X: 5, Y: 4})
				So(grid.IsObstacle(e.Robot.Cell(grid)), ShouldBeFalse)
			})
		})

		Convey("When the blade spans two cells", func() {
			grid.Add(Pos{X: 5, Y: 4}, ObstacleSquare)
			e := newTestEngine(grid, Point{X: 4, Y: 4}, 0)
			e.Robot.BladeDiameter = 2
			e.Step()

			Convey("Then the robot first backs up two cells", func() {
				So(len(e.Robot.Path), ShouldBeGreaterThanOrEqualTo, 3)
				So(e.Robot.Path[1], ShouldResemble, Point{X: 3, Y: 4})
				So(e.Robot.Path[2], ShouldResemble, Point{X: 2, Y: 4})
			})
		})

		Convey("When the blade is wide", func() {
			e := newTestEngine(grid, Point{X: 4, Y: 4}, 0)
			e.Robot.BladeDiameter = 3
			e.Step()

			Convey("Then every cell within half the diameter is cut", func() {
				So(e.Coverage.Visited(), ShouldEqual, 9)
				count, _ := e.Coverage.Count(Pos{X: 6, Y: 5})
				So(count, ShouldEqual, 1)
				count, _ = e.Coverage.Count(Pos{X: 7, Y: 4})
				So(count, ShouldEqual, Unvisited)
			})
		})

		Convey("When the heading leaves the field", func() {
			e := newTestEngine(grid, Point{X: 9, Y: 4}, 0)
			result := e.Step()

			Convey("Then the robot bounces and stays on the field", func() {
				So(result.Bounced, ShouldBeTrue)
				So(grid.InBounds(e.Robot.Cell(grid)), ShouldBeTrue)
			})
		})
	})
}

func TestIsolatedArea(t *testing.T) {
	Convey("Given an isolated area entered through an opening", t, func() {
		grid := isolatedGrid()

		Convey("When the robot walks in and back out through the opening", func() {
			e := newTestEngine(grid, Point{X: 4, Y: 4}, 0)
			walk := []struct {
				angle  float64
				cell   Pos
				inside bool
			}{
				{0, Pos{X: 5, Y: 4}, true},
				{0, Pos{X: 6, Y: 4}, true},
				{math.Pi / 2, Pos{X: 6, Y: 5}, true},
				{math.Pi, Pos{X: 5, Y: 5}, true},
				{-math.Pi / 2, Pos{X: 5, Y: 4}, false},
				{math.Pi, Pos{X: 4, Y: 4}, false},
			}

			Convey("Then the inside flag follows the entry and the exit", func() {
				for _, w := range walk {
					e.Robot.Angle = w.angle
					result := e.Step()
					So(result.Bounced, ShouldBeFalse)
					So(e.Robot.Cell(grid), ShouldResemble, w.cell)
					So(e.Robot.Inside, ShouldEqual, w.inside)
				}
			})
		})

		Convey("When an inside robot heads for a wall", func() {
			e := newTestEngine(grid, Point{X: 5, Y: 6}, math.Pi)
			e.Robot.Inside = true
			result := e.Step()

			Convey("Then it bounces and stays in the area", func() {
				So(result.Bounced, ShouldBeTrue)
				So(e.Robot.Inside, ShouldBeTrue)
				So(grid.Has(e.Robot.Cell(grid), IsolatedArea), ShouldBeTrue)
			})
		})

		Convey("When the inside flag is set outside the area", func() {
			e := newTestEngine(grid, Point{X: 2, Y: 2}, 0)
			e.Robot.Inside = true
			result := e.Step()

			Convey("Then the bounce clears it", func() {
				So(result.Bounced, ShouldBeTrue)
				So(result.Moved, ShouldBeFalse)
				So(e.Robot.Inside, ShouldBeFalse)
			})
		})
	})
}

func TestCarvedArea(t *testing.T) {
	Convey("Given a 6x6 area carved from (0,0) with openings at (0,5) and (1,5)", t, func() {
		grid := NewGrid(10, 10, 1)
		carve := environment.CarveSquare(grid, Pos{X: 0, Y: 0}, 6, 6, 2, rand.New(rand.NewSource(1)))
		So(carve.Openings, ShouldResemble, []Pos{{X: 0, Y: 5}, {X: 1, Y: 5}})

		Convey("When a robot walks in through one opening and out through the same one", func() {
			e := newTestEngine(grid, Point{X: 1, Y: 6}, 0)
			walk := []struct {
				angle  float64
				cell   Pos
				inside bool
			}{
				{-math.Pi / 2, Pos{X: 1, Y: 5}, true},
				{-math.Pi / 2, Pos{X: 1, Y: 4}, true},
				{0, Pos{X: 2, Y: 4}, true},
				{math.Pi / 2, Pos{X: 2, Y: 5}, true},
				{math.Pi, Pos{X: 1, Y: 5}, false},
				{math.Pi / 2, Pos{X: 1, Y: 6}, false},
			}

			Convey("Then the inside flag is set on entry and cleared on exit", func() {
				for _, w := range walk {
					e.Robot.Angle = w.angle
					result := e.Step()
					So(result.Bounced, ShouldBeFalse)
					So(e.Robot.Cell(grid), ShouldResemble, w.cell)
					So(e.Robot.Inside, ShouldEqual, w.inside)
				}
			})
		})

		Convey("When an inside robot heads for the area's closed side", func() {
			e := newTestEngine(grid, Point{X: 5, Y: 2}, 0)
			e.Robot.Inside = true
			result := e.Step()

			Convey("Then it bounces back into the area", func() {
				So(result.Bounced, ShouldBeTrue)
				So(e.Robot.Inside, ShouldBeTrue)
				So(grid.Has(e.Robot.Cell(grid), IsolatedArea), ShouldBeTrue)
			})
		})
	})
}

func TestLongRun(t *testing.T) {
	Convey("Given a robot on a generated field", t, func() {
		rng := rand.New(rand.NewSource(21))
		layout, err := environment.Generate(environment.Params{
			Width:    50,
			Height:   50,
			CellSize: 1,
			Isolated: environment.IsolatedParams{
				Shape: environment.ShapeSquare, MinWidth: 6, MaxWidth: 10, MinLength: 6, MaxLength: 10,
			},
			Blocked: environment.BlockedParams{
				Squares: 3, MinWidth: 5, MaxWidth: 8, MinHeight: 5, MaxHeight: 8,
				Circles: 2, MinRadius: 1, MaxRadius: 3,
			},
			DockStrategy: "perimeter",
		}, rng)
		So(err, ShouldBeNil)

		grid := layout.Grid
		robot := NewRobot(grid, layout.Dock, RobotParams{
			Speed: 1, Autonomy: 1e9, Cycles: 1, BladeDiameter: 1, Policy: BounceRandom,
		}, rng)
		e := NewEngine(grid, NewCoverage(grid), robot, rng)

		Convey("When it runs for a while", func() {
			var (
				monotone     = true
				staysOnField = true
				oscillation  = false
			)
			var lastFrom Pos
			lastForwardMove := false
			for i := 0; i < 3000; i++ {
				before := e.Coverage.Clone()
				from := robot.Cell(grid)
				result := e.Step()
				cell := robot.Cell(grid)

				if !grid.InBounds(cell) || grid.IsObstacle(cell) {
					staysOnField = false
				}
				before.Each(func(p Pos, was int) {
					now, _ := e.Coverage.Count(p)
					if was == Unvisited && now != Unvisited && now < 1 {
						monotone = false
					}
					if was != Unvisited && now < was {
						monotone = false
					}
				})

				forward := result.Moved && !result.Bounced
				if forward && lastForwardMove && cell == lastFrom {
					oscillation = true
				}
				lastForwardMove = forward && cell != from
				lastFrom = from
			}

			Convey("Then it never leaves the field or enters an obstacle", func() {
				So(staysOnField, ShouldBeTrue)
			})

			Convey("Then coverage never decreases", func() {
				So(monotone, ShouldBeTrue)
				So(e.Coverage.Visited(), ShouldBeGreaterThan, 0)
			})

			Convey("Then consecutive forward moves never alternate between two cells", func() {
				So(oscillation, ShouldBeFalse)
			})
		})
	})
}

func TestRobot(t *testing.T) {
	Convey("A new robot starts on the dock heading into the field", t, func() {
		grid := NewGrid(10, 10, 0.5)
		robot := NewRobot(grid, Pos{X: 3, Y: 0}, RobotParams{Speed: 1, Autonomy: 60, Cycles: 2, BladeDiameter: 0.5}, rand.New(rand.NewSource(2)))
		So(robot.Pos, ShouldResemble, Point{X: 1.5, Y: 0})
		So(robot.Cell(grid), ShouldResemble, Pos{X: 3, Y: 0})
		So(robot.Angle, ShouldBeBetweenOrEqual, 5*math.Pi/180, 175*math.Pi/180)
		So(robot.Inside, ShouldBeFalse)
		So(robot.Path, ShouldHaveLength, 1)

		robot.Autonomy = 3
		robot.ResetAutonomy()
		So(robot.Autonomy, ShouldEqual, 60)
	})

	Convey("Only the random bounce policy is known", t, func() {
		p, err := ParseBouncePolicy("random")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, BounceRandom)
		_, err = ParseBouncePolicy("spiral")
		So(err, ShouldNotBeNil)
	})
}
