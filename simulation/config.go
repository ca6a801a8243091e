package simulation

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"mowsim/environment"
	"mowsim/movement"
	. "mowsim/models"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid config")

const (
	defaultStallLimit = 1000
	defaultOutput     = "out"
)

type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// Config is a complete scenario: the field to generate, the robot, and how to run it.
type Config struct {
	Field        FieldConfig      `yaml:"field"`
	IsolatedArea IsolatedConfig   `yaml:"isolatedarea"`
	BlockedAreas BlockedConfig    `yaml:"blockedareas"`
	Dock         DockConfig       `yaml:"dock"`
	Robot        RobotConfig      `yaml:"robot"`
	Simulation   SimulationConfig `yaml:"simulation"`
	// Replay, when present, rebuilds a previously generated layout instead of generating one.
	Replay *ReplayConfig `yaml:"replay,omitempty"`
}

type FieldConfig struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	CellSize float64 `yaml:"cellsize"`
}

type IsolatedConfig struct {
	Shape     string `yaml:"shape"`
	MinWidth  int    `yaml:"minwidth"`
	MaxWidth  int    `yaml:"maxwidth"`
	MinLength int    `yaml:"minlength"`
	MaxLength int    `yaml:"maxlength"`
	MinRadius int    `yaml:"minradius"`
	MaxRadius int    `yaml:"maxradius"`
}

type BlockedConfig struct {
	Squares   int `yaml:"squares"`
	MinWidth  int `yaml:"minwidth"`
	MaxWidth  int `yaml:"maxwidth"`
	MinHeight int `yaml:"minheight"`
	MaxHeight int `yaml:"maxheight"`
	Circles   int `yaml:"circles"`
	MinRadius int `yaml:"minradius"`
	MaxRadius int `yaml:"maxradius"`
}

type DockConfig struct {
	Strategy              string  `yaml:"strategy"`
	PerimeterGuidelines   bool    `yaml:"perimeterguidelines"`
	GuidelineIntoIsolated bool    `yaml:"guidelineintoisolated"`
	IsolatedDepth         float64 `yaml:"isolateddepth"`
}

type RobotConfig struct {
	Speed         float64 `yaml:"speed"`
	Autonomy      float64 `yaml:"autonomy"`
	Cycles        float64 `yaml:"cycles"`
	BladeDiameter float64 `yaml:"bladediameter"`
	BouncePolicy  string  `yaml:"bouncepolicy"`
}

type SimulationConfig struct {
	// Map identifies the layout in reports.
	Map int `yaml:"map"`
	// Recharge is the recharge pause in minutes; it is also what a cycle costs.
	Recharge    float64 `yaml:"recharge"`
	Repetitions int     `yaml:"repetitions"`
	Workers     int     `yaml:"workers"`
	Seed        int64   `yaml:"seed"`
	// StallLimit ends a work cycle after this many consecutive steps without displacement.
	StallLimit int `yaml:"stalllimit"`
	// Duration bounds the wall-clock time of a batch, e.g. "10m". Empty means no bound.
	Duration      string `yaml:"duration"`
	Output        string `yaml:"output"`
	SnapshotEvery int    `yaml:"snapshotevery"`
}

// ReplayConfig lists the cell coordinates of a previous layout as [x, y] pairs.
// The optional sizes split the obstacle lists into their placed regions, and the
// optional dock and anchor pin the dock and its first guideline.
type ReplayConfig struct {
	Circles     [][]float64 `yaml:"circles"`
	Squares     [][]float64 `yaml:"squares"`
	Isolated    [][]float64 `yaml:"isolated"`
	Openings    [][]float64 `yaml:"openings"`
	SquareSizes []int       `yaml:"squaresizes,omitempty"`
	CircleSizes []int       `yaml:"circlesizes,omitempty"`
	Dock        []float64   `yaml:"dock,omitempty"`
	Anchor      []float64   `yaml:"anchor,omitempty"`
}

// FromYaml reads a scenario file: viper decodes the outer kind/def envelope and
// the def is re-marshaled to yaml to decode into a Config. Viper lowercases keys,
// hence the lowercase yaml tags.
func FromYaml(path string) (*Config, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	var err error
	if err = vp.ReadInConfig(); err != nil {
		return nil, err
	}

	outerConfig := &OuterConfig{}
	if err = vp.Unmarshal(outerConfig); err != nil {
		return nil, err
	}

	var spec []byte
	if spec, err = yaml.Marshal(outerConfig.Def); err != nil {
		return nil, err
	}

	innerConfig := &Config{}
	if err = yaml.Unmarshal(spec, innerConfig); err != nil {
		return nil, err
	}
	innerConfig.applyDefaults()

	return innerConfig, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Simulation.StallLimit == 0 {
		cfg.Simulation.StallLimit = defaultStallLimit
	}
	if cfg.Simulation.Repetitions == 0 {
		cfg.Simulation.Repetitions = 1
	}
	if cfg.Simulation.Output == "" {
		cfg.Simulation.Output = defaultOutput
	}
	if cfg.Robot.BouncePolicy == "" {
		cfg.Robot.BouncePolicy = string(movement.BounceRandom)
	}
	if cfg.IsolatedArea.Shape == "" {
		cfg.IsolatedArea.Shape = string(environment.ShapeNone)
	}
	if cfg.Dock.GuidelineIntoIsolated && cfg.Dock.IsolatedDepth == 0 {
		cfg.Dock.IsolatedDepth = environment.DefaultIsolatedDepth
	}
}

// Validate checks the whole scenario, wrapping ErrInvalidConfig.
func (cfg *Config) Validate() error {
	params := cfg.EnvironmentParams()
	if err := params.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	r := cfg.Robot
	if r.Speed <= 0 || r.Autonomy <= 0 || r.Cycles <= 0 || r.BladeDiameter <= 0 {
		return fmt.Errorf("%w: robot speed, autonomy, cycles and blade diameter must be positive", ErrInvalidConfig)
	}
	if _, err := movement.ParseBouncePolicy(r.BouncePolicy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	s := cfg.Simulation
	if s.Recharge <= 0 {
		return fmt.Errorf("%w: recharge must be positive, got %v", ErrInvalidConfig, s.Recharge)
	}
	if s.Repetitions < 1 || s.Workers < 0 || s.StallLimit < 1 || s.SnapshotEvery < 0 {
		return fmt.Errorf("%w: repetitions and stall limit must be positive, workers and snapshot interval not negative", ErrInvalidConfig)
	}
	if s.Duration != "" {
		if _, err := time.ParseDuration(s.Duration); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// EnvironmentParams maps the scenario onto generator parameters.
func (cfg *Config) EnvironmentParams() environment.Params {
	return environment.Params{
		Width:    cfg.Field.Width,
		Height:   cfg.Field.Height,
		CellSize: cfg.Field.CellSize,
		Isolated: environment.IsolatedParams{
			Shape:     environment.Shape(cfg.IsolatedArea.Shape),
			MinWidth:  cfg.IsolatedArea.MinWidth,
			MaxWidth:  cfg.IsolatedArea.MaxWidth,
			MinLength: cfg.IsolatedArea.MinLength,
			MaxLength: cfg.IsolatedArea.MaxLength,
			MinRadius: cfg.IsolatedArea.MinRadius,
			MaxRadius: cfg.IsolatedArea.MaxRadius,
		},
		Blocked: environment.BlockedParams{
			Squares:   cfg.BlockedAreas.Squares,
			MinWidth:  cfg.BlockedAreas.MinWidth,
			MaxWidth:  cfg.BlockedAreas.MaxWidth,
			MinHeight: cfg.BlockedAreas.MinHeight,
			MaxHeight: cfg.BlockedAreas.MaxHeight,
			Circles:   cfg.BlockedAreas.Circles,
			MinRadius: cfg.BlockedAreas.MinRadius,
			MaxRadius: cfg.BlockedAreas.MaxRadius,
		},
		DockStrategy:          cfg.Dock.Strategy,
		PerimeterGuidelines:   cfg.Dock.PerimeterGuidelines,
		GuidelineIntoIsolated: cfg.Dock.GuidelineIntoIsolated,
		IsolatedDepth:         cfg.Dock.IsolatedDepth,
	}
}

// RobotParams maps the scenario onto robot parameters. The policy is assumed validated.
func (cfg *Config) RobotParams() movement.RobotParams {
	policy, _ := movement.ParseBouncePolicy(cfg.Robot.BouncePolicy)
	return movement.RobotParams{
		Speed:         cfg.Robot.Speed,
		Autonomy:      cfg.Robot.Autonomy,
		Cycles:        cfg.Robot.Cycles,
		BladeDiameter: cfg.Robot.BladeDiameter,
		Policy:        policy,
	}
}

// ReplayData converts the replay section, if any.
func (cfg *Config) ReplayData() (data environment.ReplayData, ok bool) {
	if cfg.Replay == nil {
		return
	}
	points := func(pairs [][]float64) (out []Point) {
		for _, pair := range pairs {
			if len(pair) == 2 {
				out = append(out, Point{X: pair[0], Y: pair[1]})
			}
		}
		return
	}
	data = environment.ReplayData{
		Circles:     points(cfg.Replay.Circles),
		Squares:     points(cfg.Replay.Squares),
		Isolated:    points(cfg.Replay.Isolated),
		Openings:    points(cfg.Replay.Openings),
		SquareSizes: cfg.Replay.SquareSizes,
		CircleSizes: cfg.Replay.CircleSizes,
	}
	if pts := points([][]float64{cfg.Replay.Dock}); len(pts) == 1 {
		data.Dock, data.HasDock = pts[0], true
	}
	if pts := points([][]float64{cfg.Replay.Anchor}); len(pts) == 1 {
		data.Anchor, data.HasAnchor = pts[0], true
	}
	return data, true
}

// WithDeadline returns a context bounded by the configured duration, if one is specified.
func (cfg *Config) WithDeadline(
	ctx context.Context,
) (context.Context, context.CancelFunc, error) {
	if val := cfg.Simulation.Duration; val != "" {
		if duration, err := time.ParseDuration(val); err != nil {
			return nil, nil, err
		} else {
			innerCtx, cancel := context.WithTimeout(ctx, duration)
			return innerCtx, cancel, nil
		}
	}
	defaultCtx, cancel := context.WithCancel(ctx)
	return defaultCtx, cancel, nil
}

// ReplayConfigFrom converts an exported layout back into a replay section.
func ReplayConfigFrom(data environment.ReplayData) *ReplayConfig {
	pairs := func(points []Point) (out [][]float64) {
		for _, p := range points {
			out = append(out, []float64{p.X, p.Y})
		}
		return
	}
	replay := &ReplayConfig{
		Circles:     pairs(data.Circles),
		Squares:     pairs(data.Squares),
		Isolated:    pairs(data.Isolated),
		Openings:    pairs(data.Openings),
		SquareSizes: data.SquareSizes,
		CircleSizes: data.CircleSizes,
	}
	if data.HasDock {
		replay.Dock = []float64{data.Dock.X, data.Dock.Y}
	}
	if data.HasAnchor {
		replay.Anchor = []float64{data.Anchor.X, data.Anchor.Y}
	}
	return replay
}
