package simulation

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"mowsim/environment"
	"mowsim/movement"
	. "mowsim/models"
)

// CycleRecord is the time accounting of one work cycle, in seconds from the start of the run.
type CycleRecord struct {
	Cycle         int
	Beginning     float64
	Stop          float64
	AfterRecharge float64
}

// Snapshot is a progress report published while a run is in flight.
type Snapshot struct {
	Run      int
	Cycle    int
	Step     int
	Robot    Pos
	Inside   bool
	Autonomy float64
	// Counts are the pass counts indexed [x][y], zero where never cut.
	Counts [][]int
}

// ProgressFunc is a callback by which a run lends progress details, while exercising
// some level of control over its cancellation to prevent blocking.
// ProgressFunc is synchronous/blocking and should be defined to complete quickly.
type ProgressFunc func(context.Context, Snapshot)

// Result is the outcome of one repetition.
type Result struct {
	Run    int
	Cycles []CycleRecord
	// Snapshots holds the pass counts at the end of each cycle, indexed [cycle][x][y].
	Snapshots [][][]int
	Coverage  *Coverage
	Robot     *movement.Robot
}

// Run drives one robot over the layout until its cycle budget is spent. Each work
// cycle steps the engine while at least a whole second of autonomy remains; the
// cycle also ends on a stalled step, or after the configured number of consecutive
// steps without displacement. A recharge then costs the recharge time from the
// cycle budget and autonomy is restored.
func Run(
	ctx context.Context,
	layout *environment.Layout,
	cfg *Config,
	run int,
	rng *rand.Rand,
	progressFn ProgressFunc,
) (*Result, error) {
	if !layout.HasDock {
		return nil, fmt.Errorf("run %d: %w", run, environment.ErrNoDock)
	}

	grid := layout.Grid
	cov := NewCoverage(grid)
	robot := movement.NewRobot(grid, layout.Dock, cfg.RobotParams(), rng)
	engine := movement.NewEngine(grid, cov, robot, rng)
	result := &Result{
		Run:      run,
		Coverage: cov,
		Robot:    robot,
	}

	recharge := cfg.Simulation.Recharge
	every := cfg.Simulation.SnapshotEvery
	beginning := 0.0
	steps := 0
	for cycle := 1; robot.Cycles > 0; cycle++ {
		idle := 0
		for math.Floor(robot.Autonomy) > 0 {
			// done-guard
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			default:
			}

			step := engine.Step()
			steps++
			if progressFn != nil && every > 0 && steps%every == 0 {
				progressFn(ctx, snapshot(run, cycle, steps, engine))
			}

			if step.Stalled {
				break
			}
			if step.Moved {
				idle = 0
			} else if idle++; idle >= cfg.Simulation.StallLimit {
				break
			}
		}

		robot.Cycles -= recharge
		stop := math.Ceil(robot.Capacity-robot.Autonomy) + beginning
		afterRecharge := recharge*60 + stop
		result.Cycles = append(result.Cycles, CycleRecord{
			Cycle:         cycle,
			Beginning:     beginning,
			Stop:          stop,
			AfterRecharge: afterRecharge,
		})
		result.Snapshots = append(result.Snapshots, cov.Matrix())
		beginning = afterRecharge + 60
		robot.ResetAutonomy()
	}

	if progressFn != nil {
		progressFn(ctx, snapshot(run, len(result.Cycles), steps, engine))
	}
	return result, nil
}

func snapshot(run, cycle, steps int, engine *movement.Engine) Snapshot {
	return Snapshot{
		Run:      run,
		Cycle:    cycle,
		Step:     steps,
		Robot:    engine.Robot.Cell(engine.Grid),
		Inside:   engine.Robot.Inside,
		Autonomy: engine.Robot.Autonomy,
		Counts:   engine.Coverage.Matrix(),
	}
}
