package environment

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

var (
	// ErrInvalidParams is returned when the field cannot be generated from the passed parameters.
	ErrInvalidParams = errors.New("invalid environment parameters")
	// ErrNoDock is returned when no dock strategy attempt found a free cell.
	// The layout is still returned, with HasDock unset, so the caller may decide how to proceed.
	ErrNoDock = errors.New("no dock placement found")
)

// Shape selects the isolated area geometry.
type Shape string

const (
	ShapeNone   Shape = "none"
	ShapeSquare Shape = "square"
	ShapeCircle Shape = "circle"
)

// IsolatedParams bounds the size of the isolated area, in field units.
// Width and length apply to squares, radius to circles.
type IsolatedParams struct {
	Shape     Shape
	MinWidth  int
	MaxWidth  int
	MinLength int
	MaxLength int
	MinRadius int
	MaxRadius int
}

// BlockedParams describes the scattered obstacles, in field units.
type BlockedParams struct {
	Squares   int
	MinWidth  int
	MaxWidth  int
	MinHeight int
	MaxHeight int
	Circles   int
	MinRadius int
	MaxRadius int
}

// Params holds everything the generator consumes.
type Params struct {
	// Width and Height are the field extent in cells.
	Width, Height int
	CellSize      float64
	Isolated      IsolatedParams
	Blocked       BlockedParams
	// DockStrategy is one of perimeter, biggest_random or biggest_center.
	DockStrategy string

	// PerimeterGuidelines marks the free border cells of the field as guidelines.
	PerimeterGuidelines bool
	// GuidelineIntoIsolated draws a spur from the dock toward the isolated area,
	// covering IsolatedDepth of the distance.
	GuidelineIntoIsolated bool
	IsolatedDepth         float64
}

// DefaultIsolatedDepth is the fraction of the dock-to-isolated-area distance covered by the spur.
const DefaultIsolatedDepth = 0.25

// Validate reports the first invalid parameter, wrapping ErrInvalidParams.
func (p *Params) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("field must be positive, got %dx%d: %w", p.Width, p.Height, ErrInvalidParams)
	}
	if p.CellSize <= 0 {
		return fmt.Errorf("cell size must be positive, got %v: %w", p.CellSize, ErrInvalidParams)
	}

	switch p.Isolated.Shape {
	case ShapeNone, "":
	case ShapeSquare:
		if err := checkRange("isolated width", p.Isolated.MinWidth, p.Isolated.MaxWidth); err != nil {
			return err
		}
		if err := checkRange("isolated length", p.Isolated.MinLength, p.Isolated.MaxLength); err != nil {
			return err
		}
	case ShapeCircle:
		if err := checkRange("isolated radius", p.Isolated.MinRadius, p.Isolated.MaxRadius); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown isolated area shape %q: %w", p.Isolated.Shape, ErrInvalidParams)
	}

	b := p.Blocked
	if b.Squares < 0 || b.Circles < 0 {
		return fmt.Errorf("obstacle counts must not be negative: %w", ErrInvalidParams)
	}
	if b.Squares > 0 {
		if err := checkRange("obstacle width", b.MinWidth, b.MaxWidth); err != nil {
			return err
		}
		if err := checkRange("obstacle height", b.MinHeight, b.MaxHeight); err != nil {
			return err
		}
	}
	if b.Circles > 0 {
		if err := checkRange("obstacle radius", b.MinRadius, b.MaxRadius); err != nil {
			return err
		}
	}

	if _, err := StrategyByName(p.DockStrategy); err != nil {
		return err
	}
	if p.IsolatedDepth < 0 || p.IsolatedDepth > 1 {
		return fmt.Errorf("isolated depth must be in [0,1], got %v: %w", p.IsolatedDepth, ErrInvalidParams)
	}
	return nil
}

func checkRange(name string, min, max int) error {
	if min <= 0 || max < min {
		return fmt.Errorf("%s range [%d,%d] is invalid: %w", name, min, max, ErrInvalidParams)
	}
	return nil
}

// Variance yields a bounded pseudo-random extent from a min/max pair:
// ceil(|((a-mean)^2 + (b-mean)^2) / 2|) where mean = (a+b)/2.
func Variance(a, b int) int {
	mean := float64(a+b) / 2
	da := float64(a) - mean
	db := float64(b) - mean
	return int(math.Ceil(math.Abs((da*da + db*db) / 2)))
}

// OpeningCount derives the number of opening cells from the isolated area width:
// a random fraction of the width, modulo the field width.
func OpeningCount(isolatedWidth, fieldWidth int, rng *rand.Rand) int {
	if isolatedWidth <= 0 || fieldWidth <= 0 {
		return 0
	}
	return (1 + rng.Intn(isolatedWidth)) % fieldWidth
}

// toCells converts a length in field units to a whole number of cells, rounding up.
func toCells(length int, cellSize float64) int {
	return int(math.Ceil(float64(length) / cellSize))
}

func randBetween(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}
