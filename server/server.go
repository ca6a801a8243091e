package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"mowsim/models"
	"mowsim/report"
	"mowsim/server/cell_views"
	"mowsim/server/fastview"
	"mowsim/server/root_view"
	"mowsim/simulation"

	"github.com/gorilla/mux"
	channerics "github.com/niceyeti/channerics/channels"
)

const shutdownWait = 5 * time.Second

// Server serves a live view of the runs on one layout: a page whose svg field is
// updated over a websocket, and the current coverage heatmap as png.
// Publish is the simulation's progress callback; the latest snapshot is kept for
// new pages and for the heatmap, and the page views are fed without blocking the run.
type Server struct {
	addr      string
	grid      *models.Grid
	rootView  *root_view.RootView
	snapshots chan simulation.Snapshot

	mu     sync.Mutex
	latest simulation.Snapshot

	hub *hub
}

// NewServer builds the views and starts distributing their updates until ctx is done.
func NewServer(
	ctx context.Context,
	addr string,
	grid *models.Grid,
) (*Server, error) {
	snapshots := make(chan simulation.Snapshot, 1)
	rootView, err := root_view.NewRootView(ctx, grid, snapshots)
	if err != nil {
		return nil, err
	}

	server := &Server{
		addr:      addr,
		grid:      grid,
		rootView:  rootView,
		snapshots: snapshots,
		latest:    simulation.Snapshot{Robot: models.Pos{X: -1, Y: -1}, Counts: emptyCounts(grid)},
		hub:       newHub(),
	}
	go server.hub.run(ctx.Done(), rootView.Updates())
	return server, nil
}

func emptyCounts(grid *models.Grid) [][]int {
	counts := make([][]int, grid.Width)
	for x := range counts {
		counts[x] = make([]int, grid.Height)
	}
	return counts
}

// Publish records snap as the latest state and offers it to the views. A snapshot
// arriving while the views are busy replaces the pending one.
func (server *Server) Publish(ctx context.Context, snap simulation.Snapshot) {
	server.mu.Lock()
	server.latest = snap
	server.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return
		case server.snapshots <- snap:
			return
		default:
		}
		// drop the stale pending snapshot
		select {
		case <-server.snapshots:
		default:
		}
	}
}

// Latest returns the most recently published snapshot.
func (server *Server) Latest() simulation.Snapshot {
	server.mu.Lock()
	defer server.mu.Unlock()
	return server.latest
}

// Router returns the server's routes.
func (server *Server) Router() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/", server.serveIndex).Methods(http.MethodGet)
	router.HandleFunc("/ws", server.serveWebsocket)
	router.HandleFunc("/coverage.png", server.serveCoverage).Methods(http.MethodGet)
	return router
}

// Serve listens until ctx is done, then shuts down.
func (server *Server) Serve(ctx context.Context) (err error) {
	srv := &http.Server{
		Addr:    server.addr,
		Handler: server.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err = srv.ListenAndServe(); errors.Is(err, http.ErrServerClosed) {
		err = nil
	} else if err != nil {
		err = fmt.Errorf("serve: %w", err)
	}
	return
}

// serveWebsocket publishes view updates to one page until it leaves.
func (server *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	id, updates := server.hub.subscribe()
	defer server.hub.unsubscribe(id)

	cli, err := fastview.NewClient(updates, w, r)
	if err != nil {
		log.Println("upgrade:", err)
		return
	}
	defer cli.Close()

	if err = cli.Sync(); err != nil {
		log.Println("sync:", err)
	}
}

func (server *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")

	frame := cell_views.Convert(server.grid, server.Latest())
	if err := renderTemplate(w, server.rootView, frame); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (server *Server) serveCoverage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	img := report.Heatmap(report.Floats(server.Latest().Counts), server.grid.CellSize)
	if err := report.EncodePNG(w, img); err != nil {
		log.Println("coverage:", err)
	}
}

func renderTemplate(
	w io.Writer,
	vc fastview.ViewComponent,
	data interface{},
) (err error) {
	t := template.New("index.html")
	var tname string
	if tname, err = vc.Parse(t); err != nil {
		return
	}
	if _, err = t.Parse(`{{ template "` + tname + `" . }}`); err != nil {
		return
	}

	err = t.Execute(w, data)
	return
}

// hub copies the page updates to every connected page. Each page holds at most one
// pending batch and a newer batch replaces it; the next snapshot restores whatever
// a dropped batch carried.
type hub struct {
	mu   sync.Mutex
	next int
	subs map[int]chan []fastview.EleUpdate
}

func newHub() *hub {
	return &hub{subs: map[int]chan []fastview.EleUpdate{}}
}

func (h *hub) subscribe() (int, <-chan []fastview.EleUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	ch := make(chan []fastview.EleUpdate, 1)
	h.subs[h.next] = ch
	return h.next, ch
}

func (h *hub) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

func (h *hub) run(done <-chan struct{}, updates <-chan []fastview.EleUpdate) {
	for batch := range channerics.OrDone(done, updates) {
		h.mu.Lock()
		for _, ch := range h.subs {
			select {
			case <-ch:
			default:
			}
			ch <- batch
		}
		h.mu.Unlock()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
