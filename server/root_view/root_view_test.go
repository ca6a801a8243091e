package root_view

import (
	"context"
	"html/template"
	"testing"
	"time"

	. "mowsim/models"
	"mowsim/server/fastview"
	"mowsim/simulation"

	. "github.com/smartystreets/goconvey/convey"
)

func update(id, value string) fastview.EleUpdate {
	return fastview.EleUpdate{EleId: id, Ops: []fastview.Op{{Key: "textContent", Value: value}}}
}

func TestBatchify(t *testing.T) {
	Convey("Given a batching window longer than the test", t, func() {
		done := make(chan struct{})
		defer close(done)
		source := make(chan []fastview.EleUpdate)
		batches := batchify(done, source, time.Hour)

		Convey("Updates to the same element keep only the latest, in first-seen order", func() {
			source <- []fastview.EleUpdate{update("a", "1"), update("b", "1")}
			source <- []fastview.EleUpdate{update("a", "2")}
			close(source)

			batch := <-batches
			So(batch, ShouldResemble, []fastview.EleUpdate{update("a", "2"), update("b", "1")})
			_, open := <-batches
			So(open, ShouldBeFalse)
		})
	})

	Convey("Given a short batching window", t, func() {
		done := make(chan struct{})
		defer close(done)
		source := make(chan []fastview.EleUpdate)
		batches := batchify(done, source, 5*time.Millisecond)

		Convey("A pending batch is flushed without further input", func() {
			source <- []fastview.EleUpdate{update("a", "1")}
			select {
			case batch := <-batches:
				So(batch, ShouldResemble, []fastview.EleUpdate{update("a", "1")})
			case <-time.After(2 * time.Second):
				So("no batch flushed", ShouldBeEmpty)
			}
		})
	})
}

func TestRootView(t *testing.T) {
	Convey("Given a root view over a small field", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		grid := NewGrid(3, 2, 1)
		MarkCoverageCells(grid)
		snapshots := make(chan simulation.Snapshot)

		rv, err := NewRootView(ctx, grid, snapshots)
		So(err, ShouldBeNil)

		Convey("A snapshot yields the updates of both views", func() {
			go func() {
				snapshots <- simulation.Snapshot{Run: 4, Counts: [][]int{{1, 0}, {0, 0}, {0, 2}}}
			}()

			ids := map[string]bool{}
			timeout := time.After(2 * time.Second)
			for len(ids) < 12 {
				select {
				case batch := <-rv.Updates():
					for _, u := range batch {
						ids[u.EleId] = true
					}
				case <-timeout:
					So(ids, ShouldContainKey, "status-run")
					return
				}
			}
			So(ids, ShouldContainKey, "status-run")
			So(ids, ShouldContainKey, "cell-2-0")
		})

		Convey("The page template embeds the views and the websocket bootstrap", func() {
			t := template.New("index.html")
			name, err := rv.Parse(t)
			So(err, ShouldBeNil)
			So(name, ShouldEqual, "mainpage")
		})
	})
}
