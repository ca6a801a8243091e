package terminal_view

import (
	"context"
	"errors"
	"testing"
	"time"

	. "mowsim/models"
	"mowsim/simulation"

	"github.com/gdamore/tcell/v2"
	. "github.com/smartystreets/goconvey/convey"
)

func testGrid() *Grid {
	grid := NewGrid(5, 3, 1)
	grid.Add(Pos{X: 0, Y: 0}, Dock)
	grid.Add(Pos{X: 1, Y: 0}, ObstacleSquare)
	grid.Add(Pos{X: 4, Y: 2}, IsolatedArea)
	grid.Add(Pos{X: 2, Y: 2}, Guideline)
	MarkCoverageCells(grid)
	return grid
}

func testSnapshot() simulation.Snapshot {
	counts := [][]int{{0, 0, 0}, {0, 1, 0}, {0, 4, 0}, {0, 0, 0}, {0, 0, 0}}
	return simulation.Snapshot{Run: 2, Cycle: 1, Step: 17, Robot: Pos{X: 3, Y: 1}, Counts: counts}
}

func newScreen() tcell.SimulationScreen {
	screen := tcell.NewSimulationScreen("UTF-8")
	So(screen.Init(), ShouldBeNil)
	screen.SetSize(40, 10)
	return screen
}

// at reads the rune drawn for field cell (x, y) of a 3-row grid.
func at(screen tcell.Screen, x, y int) rune {
	r, _, _, _ := screen.GetContent(2*x, 3-1-y)
	return r
}

func TestDraw(t *testing.T) {
	Convey("Given a renderer on a simulation screen", t, func() {
		screen := newScreen()
		defer screen.Fini()
		renderer := NewRenderer(screen, testGrid())
		renderer.Draw(testSnapshot())

		Convey("Markers use the console glyphs", func() {
			So(at(screen, 0, 0), ShouldEqual, 'D')
			So(at(screen, 1, 0), ShouldEqual, '#')
			So(at(screen, 4, 2), ShouldEqual, '~')
			So(at(screen, 2, 2), ShouldEqual, '+')
			So(at(screen, 0, 1), ShouldEqual, '.')
		})

		Convey("Cut cells are shaded by their share of the largest count", func() {
			So(at(screen, 2, 1), ShouldEqual, '█')
			So(at(screen, 1, 1), ShouldEqual, '░')
		})

		Convey("The robot is drawn over its cell", func() {
			So(at(screen, 3, 1), ShouldEqual, '@')
		})

		Convey("The status line follows the field", func() {
			r, _, _, _ := screen.GetContent(1, 3)
			So(r, ShouldEqual, 'r')
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running renderer", t, func() {
		screen := newScreen()
		defer screen.Fini()
		renderer := NewRenderer(screen, testGrid())

		ctx, cancel := context.WithCancel(context.Background())
		snapshots := make(chan simulation.Snapshot)
		errs := make(chan error, 1)
		go func() { errs <- renderer.Run(ctx, snapshots) }()

		Convey("Snapshots are drawn until the context ends", func() {
			snapshots <- testSnapshot()
			close(snapshots)
			cancel()

			select {
			case err := <-errs:
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			case <-time.After(2 * time.Second):
				So("renderer did not stop", ShouldBeEmpty)
			}
			So(at(screen, 3, 1), ShouldEqual, '@')
		})
	})
}
