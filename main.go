/*
Mowsim simulates an autonomous lawn mower on a generated field. A layout is generated
(or replayed) from a scenario file: an isolated area behind openings, blocked areas with
the guidelines around them, and a dock. The mower then wanders the field on a random
bounce policy, cycle after cycle, recharging in between, while every cell counts how many
times it was cut. Several repetitions run concurrently on the same layout; each one writes
its per-cycle tables and images, and the batch writes its averaged coverage.

The runs can be watched live, in a browser (-serve) or in the terminal (-tui).
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"time"

	"mowsim/atomic_float"
	"mowsim/environment"
	"mowsim/models"
	"mowsim/report"
	"mowsim/server"
	"mowsim/simulation"
	"mowsim/terminal_view"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

var (
	configPath = flag.String("config", "./config.yaml", "scenario file")
	seed       = flag.Int64("seed", 0, "random seed; 0 keeps the scenario's seed")
	nworkers   = flag.Int("workers", 0, "number of concurrent repetitions; 0 keeps the scenario's, or one per cpu")
	serve      = flag.Bool("serve", false, "serve a live view of the runs")
	addr       = flag.String("addr", ":8080", "live view address")
	tui        = flag.Bool("tui", false, "draw the runs in the terminal")
	dbg        = flag.Bool("debug", false, "print the layout and the first repetition's coverage")
)

// errQuit is returned when the user leaves the terminal view.
var errQuit = errors.New("quit")

func loadConfig() (cfg *simulation.Config, err error) {
	if cfg, err = simulation.FromYaml(*configPath); err != nil {
		return
	}
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}
	if *nworkers != 0 {
		cfg.Simulation.Workers = *nworkers
	}
	if cfg.Simulation.Workers == 0 {
		cfg.Simulation.Workers = runtime.NumCPU()
	}
	err = cfg.Validate()
	return
}

func buildLayout(cfg *simulation.Config) (*environment.Layout, error) {
	rng := rand.New(rand.NewSource(cfg.Simulation.Seed))
	if data, ok := cfg.ReplayData(); ok {
		return environment.Replay(cfg.EnvironmentParams(), data, rng)
	}
	return environment.Generate(cfg.EnvironmentParams(), rng)
}

func runApp() (err error) {
	var cfg *simulation.Config
	if cfg, err = loadConfig(); err != nil {
		return
	}

	var layout *environment.Layout
	if layout, err = buildLayout(cfg); err != nil {
		return
	}
	if *dbg {
		models.ShowGrid(layout.Grid, os.Stdout)
	}

	appCtx, appCancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer appCancel()
	group, groupCtx := errgroup.WithContext(appCtx)

	var progress []simulation.ProgressFunc

	if *serve {
		var srv *server.Server
		if srv, err = server.NewServer(groupCtx, *addr, layout.Grid); err != nil {
			return
		}
		progress = append(progress, srv.Publish)
		group.Go(func() error {
			return srv.Serve(groupCtx)
		})
		fmt.Printf("live view on http://%s\n", *addr)
	}

	var frames chan simulation.Snapshot
	if *tui {
		var screen tcell.Screen
		if screen, err = tcell.NewScreen(); err != nil {
			return
		}
		if err = screen.Init(); err != nil {
			return
		}
		defer screen.Fini()

		frames = make(chan simulation.Snapshot, 1)
		progress = append(progress, func(ctx context.Context, snap simulation.Snapshot) {
			offer(ctx, frames, snap)
		})
		renderer := terminal_view.NewRenderer(screen, layout.Grid)
		group.Go(func() error {
			if runErr := renderer.Run(groupCtx, frames); runErr != nil {
				return nil
			}
			return errQuit
		})
	}

	group.Go(func() error {
		if frames != nil {
			defer close(frames)
		}
		return runBatch(groupCtx, cfg, layout, progress)
	})

	if err = group.Wait(); errors.Is(err, errQuit) {
		err = nil
	}
	return
}

// offer replaces any pending snapshot in ch with snap.
func offer(ctx context.Context, ch chan simulation.Snapshot, snap simulation.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case ch <- snap:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func runBatch(
	ctx context.Context,
	cfg *simulation.Config,
	layout *environment.Layout,
	progress []simulation.ProgressFunc,
) error {
	runCtx, cancel, err := cfg.WithDeadline(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	var progressFn simulation.ProgressFunc
	if len(progress) > 0 {
		progressFn = func(ctx context.Context, snap simulation.Snapshot) {
			for _, fn := range progress {
				fn(ctx, snap)
			}
		}
	}

	start := time.Now()
	batch, err := simulation.RunBatch(runCtx, layout, cfg, cfg.Simulation.Workers, progressFn)
	if errors.Is(err, context.DeadlineExceeded) {
		log.Printf("deadline reached: %d of %d repetitions completed\n", len(batch.Results), cfg.Simulation.Repetitions)
	} else if err != nil {
		return err
	}
	fmt.Printf("%d repetitions in %v\n", len(batch.Results), time.Since(start).Round(time.Millisecond))

	for _, result := range batch.Results {
		fmt.Printf("  rep %d: %d cycles, covered %d/%d cells (%.1f%%)\n",
			result.Run, len(result.Cycles), result.Coverage.Visited(), result.Coverage.Len(), 100*result.Coverage.Ratio())
	}
	if *dbg && len(batch.Results) > 0 {
		models.ShowCoverage(layout.Grid, batch.Results[0].Coverage, os.Stdout)
	}

	return writeReports(cfg, layout, batch)
}

func writeReports(
	cfg *simulation.Config,
	layout *environment.Layout,
	batch *simulation.Batch,
) error {
	out := cfg.Simulation.Output
	ts := time.Now().Format("20060102_150405")
	mapId := cfg.Simulation.Map

	for _, result := range batch.Results {
		prefix := fmt.Sprintf("%s_map%d_rep%d", ts, mapId, result.Run)
		for i, record := range result.Cycles {
			table := report.CycleTable{
				Map:        mapId,
				Repetition: result.Run,
				Record:     record,
				Counts:     result.Snapshots[i],
				CellSize:   layout.Grid.CellSize,
			}
			if _, err := report.SaveCycle(out, prefix, table); err != nil {
				return err
			}
		}
	}

	prefix := fmt.Sprintf("%s_map%d", ts, mapId)
	meanPath, err := report.SaveMean(out, prefix, atomic_float.Read(batch.Mean), layout.Grid.CellSize)
	if err != nil {
		return err
	}

	layoutPath := filepath.Join(out, prefix+"_layout.yaml")
	if err = writeLayout(layoutPath, layout); err != nil {
		return err
	}
	fmt.Printf("reports in %s, mean coverage %s, layout %s\n", out, meanPath, layoutPath)
	return nil
}

// writeLayout saves the layout as a replay section for a later scenario.
func writeLayout(path string, layout *environment.Layout) error {
	spec, err := yaml.Marshal(map[string]interface{}{
		"replay": simulation.ReplayConfigFrom(layout.Export()),
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, spec, 0o644)
}

func main() {
	flag.Parse()
	if err := runApp(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
