package models

import (
	"bytes"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGrid(t *testing.T) {
	Convey("Given an empty 10x10 grid", t, func() {
		grid := NewGrid(10, 10, 1.0)

		Convey("When markers are added in bounds", func() {
			So(grid.Add(Pos{X: 2, Y: 3}, IsolatedArea), ShouldBeTrue)
			So(grid.Add(Pos{X: 2, Y: 3}, Opening), ShouldBeTrue)

			Convey("Then the cell holds both markers", func() {
				So(grid.Has(Pos{X: 2, Y: 3}, IsolatedArea), ShouldBeTrue)
				So(grid.Has(Pos{X: 2, Y: 3}, Opening), ShouldBeTrue)
				So(grid.Kinds(Pos{X: 2, Y: 3}), ShouldResemble, []Kind{IsolatedArea, Opening})
				So(grid.Count(Opening), ShouldEqual, 1)
			})

			Convey("Then removing one marker keeps the other", func() {
				grid.Remove(Pos{X: 2, Y: 3}, Opening)
				So(grid.Has(Pos{X: 2, Y: 3}, Opening), ShouldBeFalse)
				So(grid.Has(Pos{X: 2, Y: 3}, IsolatedArea), ShouldBeTrue)
			})
		})

		Convey("When a marker is added out of bounds", func() {
			So(grid.Add(Pos{X: 10, Y: 0}, Guideline), ShouldBeFalse)
			So(grid.Add(Pos{X: -1, Y: 4}, Guideline), ShouldBeFalse)

			Convey("Then nothing is stored", func() {
				So(grid.Count(Guideline), ShouldEqual, 0)
			})
		})

		Convey("When an opening is placed", func() {
			grid.Add(Pos{X: 5, Y: 5}, Opening)

			Convey("Then only its orthogonal neighbors are near it", func() {
				So(grid.NearOpening(Pos{X: 4, Y: 5}), ShouldBeTrue)
				So(grid.NearOpening(Pos{X: 5, Y: 6}), ShouldBeTrue)
				So(grid.NearOpening(Pos{X: 6, Y: 6}), ShouldBeFalse)
				So(grid.NearOpening(Pos{X: 5, Y: 5}), ShouldBeFalse)
			})
		})

		Convey("Neighbors are ordered left, right, up, down and clipped to the field", func() {
			So(grid.Neighbors4(Pos{X: 4, Y: 4}), ShouldResemble,
				[]Pos{{X: 3, Y: 4}, {X: 5, Y: 4}, {X: 4, Y: 3}, {X: 4, Y: 5}})
			So(grid.Neighbors4(Pos{X: 0, Y: 0}), ShouldResemble,
				[]Pos{{X: 1, Y: 0}, {X: 0, Y: 1}})
		})

		Convey("Cells are returned in row-major order", func() {
			grid.Add(Pos{X: 3, Y: 1}, Guideline)
			grid.Add(Pos{X: 1, Y: 2}, Guideline)
			grid.Add(Pos{X: 0, Y: 1}, Guideline)
			So(grid.Cells(Guideline), ShouldResemble,
				[]Pos{{X: 0, Y: 1}, {X: 3, Y: 1}, {X: 1, Y: 2}})
		})
	})
}

func TestDrawLine(t *testing.T) {
	Convey("When a line is drawn from (0,0) to (5,3) on an empty 10x10 field", t, func() {
		grid := NewGrid(10, 10, 1.0)
		marked := DrawLine(grid, Pos{X: 0, Y: 0}, Pos{X: 5, Y: 3})

		Convey("Then six distinct cells form a monotonic staircase", func() {
			So(len(marked), ShouldEqual, 6)
			So(grid.Count(Guideline), ShouldEqual, 6)
			So(marked[0], ShouldResemble, Pos{X: 0, Y: 0})
			So(marked[5], ShouldResemble, Pos{X: 5, Y: 3})
			for i := 1; i < len(marked); i++ {
				dx := marked[i].X - marked[i-1].X
				dy := marked[i].Y - marked[i-1].Y
				So(dx, ShouldBeBetweenOrEqual, 0, 1)
				So(dy, ShouldBeBetweenOrEqual, 0, 1)
				So(dx+dy, ShouldBeGreaterThan, 0)
			}
		})
	})

	Convey("When a line crosses an obstacle and the dock", t, func() {
		grid := NewGrid(10, 10, 1.0)
		grid.Add(Pos{X: 3, Y: 0}, ObstacleSquare)
		grid.Add(Pos{X: 6, Y: 0}, Dock)
		marked := DrawLine(grid, Pos{X: 0, Y: 0}, Pos{X: 9, Y: 0})

		Convey("Then those cells are walked over but never marked", func() {
			So(len(marked), ShouldEqual, 8)
			So(grid.Has(Pos{X: 3, Y: 0}, Guideline), ShouldBeFalse)
			So(grid.Has(Pos{X: 6, Y: 0}, Guideline), ShouldBeFalse)
			So(grid.Has(Pos{X: 9, Y: 0}, Guideline), ShouldBeTrue)
		})
	})

	Convey("When a line crosses an opening", t, func() {
		grid := NewGrid(10, 10, 1.0)
		grid.Add(Pos{X: 4, Y: 0}, Opening)
		marked := DrawLine(grid, Pos{X: 0, Y: 0}, Pos{X: 9, Y: 0})
		MarkCoverageCells(grid)

		Convey("Then the opening stays a coverage cell without a guideline", func() {
			So(len(marked), ShouldEqual, 9)
			So(marked, ShouldNotContain, Pos{X: 4, Y: 0})
			So(grid.Has(Pos{X: 4, Y: 0}, Guideline), ShouldBeFalse)
			So(grid.Has(Pos{X: 4, Y: 0}, CoverageCell), ShouldBeTrue)
		})
	})

	Convey("When a line heads off the field", t, func() {
		grid := NewGrid(5, 5, 1.0)
		marked := DrawLine(grid, Pos{X: 2, Y: 2}, Pos{X: 5, Y: 5})

		Convey("Then it stops at the edge", func() {
			So(marked, ShouldResemble, []Pos{{X: 2, Y: 2}, {X: 3, Y: 3}, {X: 4, Y: 4}})
		})
	})
}

func TestGeometry(t *testing.T) {
	Convey("Nearest returns the first closest candidate", t, func() {
		p, d, ok := Nearest(Pos{X: 0, Y: 0}, []Pos{{X: 3, Y: 4}, {X: 0, Y: 5}, {X: 5, Y: 0}})
		So(ok, ShouldBeTrue)
		So(p, ShouldResemble, Pos{X: 3, Y: 4})
		So(d, ShouldEqual, 5.0)

		_, _, ok = Nearest(Pos{}, nil)
		So(ok, ShouldBeFalse)
	})

	Convey("The central cell favors the lower middle index on even extents", t, func() {
		So(CentralCell(5, 5), ShouldResemble, Pos{X: 2, Y: 2})
		So(CentralCell(10, 7), ShouldResemble, Pos{X: 4, Y: 3})
	})

	Convey("Perimeter cells are the field's edge cells", t, func() {
		cells := PerimeterCells(4, 3)
		So(len(cells), ShouldEqual, 10)
		So(OnPerimeter(4, 3, Pos{X: 1, Y: 1}), ShouldBeFalse)
		p, d := NearestPerimeter(10, 10, Pos{X: 6, Y: 2})
		So(p, ShouldResemble, Pos{X: 6, Y: 0})
		So(d, ShouldEqual, 2.0)
	})
}

func TestCoverage(t *testing.T) {
	Convey("Given a grid with an obstacle, a guideline and the dock", t, func() {
		grid := NewGrid(4, 4, 1.0)
		grid.Add(Pos{X: 1, Y: 1}, ObstacleCircle)
		grid.Add(Pos{X: 2, Y: 2}, Guideline)
		grid.Add(Pos{X: 0, Y: 0}, Dock)
		grid.Add(Pos{X: 3, Y: 3}, IsolatedArea)

		n := MarkCoverageCells(grid)
		cov := NewCoverage(grid)

		Convey("Then every other cell gets an unvisited counter", func() {
			So(n, ShouldEqual, 13)
			So(cov.Len(), ShouldEqual, 13)
			count, ok := cov.Count(Pos{X: 3, Y: 3})
			So(ok, ShouldBeTrue)
			So(count, ShouldEqual, Unvisited)
			_, ok = cov.Count(Pos{X: 1, Y: 1})
			So(ok, ShouldBeFalse)
		})

		Convey("When a cell is cut repeatedly", func() {
			So(cov.Cut(Pos{X: 3, Y: 0}), ShouldBeTrue)
			count, _ := cov.Count(Pos{X: 3, Y: 0})
			So(count, ShouldEqual, 1)
			cov.Cut(Pos{X: 3, Y: 0})
			count, _ = cov.Count(Pos{X: 3, Y: 0})
			So(count, ShouldEqual, 2)

			Convey("Then the matrix reports visited counts and zero elsewhere", func() {
				matrix := cov.Matrix()
				So(matrix[3][0], ShouldEqual, 2)
				So(matrix[3][3], ShouldEqual, 0)
				So(cov.Visited(), ShouldEqual, 1)
			})

			Convey("Then a clone is independent", func() {
				cp := cov.Clone()
				cov.Cut(Pos{X: 3, Y: 0})
				count, _ := cp.Count(Pos{X: 3, Y: 0})
				So(count, ShouldEqual, 2)
			})
		})

		Convey("Cutting a cell without a counter is a no-op", func() {
			So(cov.Cut(Pos{X: 1, Y: 1}), ShouldBeFalse)
		})

		Convey("The console display shows each marker", func() {
			var buf bytes.Buffer
			ShowGrid(grid, &buf)
			lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
			So(len(lines), ShouldEqual, 4)
			So(lines[0], ShouldStartWith, ". . . ~")
			So(lines[3], ShouldStartWith, "D . . .")
		})
	})
}
