package simulation

import (
	"context"
	"math/rand"
	"sort"

	"mowsim/atomic_float"
	"mowsim/environment"

	channerics "github.com/niceyeti/channerics/channels"
)

// Batch collects the repetitions of one layout.
type Batch struct {
	Results []*Result
	// Mean is the pass count per cell averaged over the repetitions, indexed [x][y].
	Mean [][]*atomic_float.AtomicFloat64
}

type outcome struct {
	result *Result
	err    error
}

// RunBatch runs the configured repetitions of the layout on nworkers goroutines.
// Every repetition owns its robot and coverage and draws from its own source seeded
// with seed+run, so a batch is reproducible regardless of scheduling. The layout's
// grid is only read. Finished repetitions are fanned in and sorted by run; the first
// error, if any, is returned along with whatever completed.
func RunBatch(
	ctx context.Context,
	layout *environment.Layout,
	cfg *Config,
	nworkers int,
	progressFn ProgressFunc,
) (*Batch, error) {
	reps := cfg.Simulation.Repetitions
	if nworkers < 1 || nworkers > reps {
		nworkers = reps
	}
	batch := &Batch{
		Mean: atomic_float.NewMatrix(layout.Grid.Width, layout.Grid.Height),
	}

	runs := make(chan int)
	go func() {
		defer close(runs)
		for run := 0; run < reps; run++ {
			select {
			case runs <- run:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Each worker adds its share of the mean as soon as a repetition completes;
	// the atomic cells let the workers do so without coordinating.
	worker := func(done <-chan struct{}) <-chan outcome {
		outcomes := make(chan outcome)
		go func() {
			defer close(outcomes)
			for run := range runs {
				rng := rand.New(rand.NewSource(cfg.Simulation.Seed + int64(run)))
				result, err := Run(ctx, layout, cfg, run, rng, progressFn)
				if err == nil {
					accumulate(batch.Mean, result, reps)
				}

				select {
				case outcomes <- outcome{result: result, err: err}:
				case <-done:
					return
				}
			}
		}()
		return outcomes
	}

	workers := []<-chan outcome{}
	for i := 0; i < nworkers; i++ {
		workers = append(workers, worker(ctx.Done()))
	}

	var firstErr error
	for o := range channerics.Merge(ctx.Done(), workers...) {
		if o.err != nil {
			if firstErr == nil {
				firstErr = o.err
			}
			continue
		}
		batch.Results = append(batch.Results, o.result)
	}
	sort.Slice(batch.Results, func(i, j int) bool {
		return batch.Results[i].Run < batch.Results[j].Run
	})

	if firstErr == nil {
		firstErr = ctx.Err()
	}
	return batch, firstErr
}

func accumulate(mean [][]*atomic_float.AtomicFloat64, result *Result, reps int) {
	counts := result.Coverage.Matrix()
	for x := range counts {
		for y, count := range counts[x] {
			if count > 0 {
				mean[x][y].Accumulate(float64(count) / float64(reps))
			}
		}
	}
}
