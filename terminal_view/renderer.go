// terminal_view draws the field, the robot and the coverage of a run in a terminal.
package terminal_view

import (
	"context"
	"fmt"

	. "mowsim/models"
	"mowsim/simulation"

	"github.com/gdamore/tcell/v2"
)

// shades render cut cells by pass count, relative to the most cut cell.
var shades = []rune{'░', '▒', '▓', '█'}

var (
	styleDefault  = tcell.StyleDefault
	styleObstacle = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleIsolated = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleMarker   = tcell.StyleDefault.Foreground(tcell.ColorLightBlue)
	styleCut      = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleRobot    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleStatus   = tcell.StyleDefault.Reverse(true)
)

// Renderer draws snapshots of runs on one grid. Each cell takes two columns,
// as in the console display, and row 0 is the bottom of the field.
type Renderer struct {
	screen tcell.Screen
	grid   *Grid
	glyphs [][]rune
}

func NewRenderer(screen tcell.Screen, grid *Grid) *Renderer {
	glyphs := make([][]rune, grid.Width)
	for x := range glyphs {
		glyphs[x] = make([]rune, grid.Height)
		for y := range glyphs[x] {
			glyphs[x][y] = Glyph(grid.Kinds(Pos{X: x, Y: y}))
		}
	}
	return &Renderer{screen: screen, grid: grid, glyphs: glyphs}
}

// Cell returns the rune and style of field cell p in snap.
func (r *Renderer) Cell(snap simulation.Snapshot, p Pos, max int) (rune, tcell.Style) {
	if p == snap.Robot {
		return '@', styleRobot
	}

	glyph := r.glyphs[p.X][p.Y]
	count := 0
	if p.X < len(snap.Counts) && p.Y < len(snap.Counts[p.X]) {
		count = snap.Counts[p.X][p.Y]
	}

	switch glyph {
	case '.', '~':
		if count > 0 && max > 0 {
			level := (count*len(shades) - 1) / max
			return shades[level], styleCut
		}
		if glyph == '~' {
			return glyph, styleIsolated
		}
		return glyph, styleDefault
	case '#', 'O':
		return glyph, styleObstacle
	}
	return glyph, styleMarker
}

// Draw renders snap and a status line, clipped to the screen.
func (r *Renderer) Draw(snap simulation.Snapshot) {
	r.screen.Clear()
	width, height := r.screen.Size()

	max := 0
	for x := range snap.Counts {
		for _, c := range snap.Counts[x] {
			if c > max {
				max = c
			}
		}
	}

	for row, y := range Rev(r.grid.Height) {
		if row >= height-1 {
			break
		}
		for x := 0; x < r.grid.Width && 2*x < width; x++ {
			glyph, style := r.Cell(snap, Pos{X: x, Y: y}, max)
			r.screen.SetContent(2*x, row, glyph, nil, style)
		}
	}

	status := fmt.Sprintf(" run %d  cycle %d  step %d  autonomy %.1f  robot %v  (q to quit) ",
		snap.Run, snap.Cycle, snap.Step, snap.Autonomy, snap.Robot)
	statusRow := r.grid.Height
	if statusRow > height-1 {
		statusRow = height - 1
	}
	for i, c := range []rune(status) {
		if i >= width {
			break
		}
		r.screen.SetContent(i, statusRow, c, nil, styleStatus)
	}
	r.screen.Show()
}

func quits(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q'
	}
	return false
}

// Run redraws on every snapshot until ctx is done or the user quits with q or Esc.
// The last snapshot stays on screen after the channel closes. The caller owns the
// screen's Init and Fini; Fini also ends the event polling routine.
func (r *Renderer) Run(ctx context.Context, snapshots <-chan simulation.Snapshot) error {
	events := make(chan tcell.Event)
	go func() {
		for {
			ev := r.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	var last simulation.Snapshot
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap, ok := <-snapshots:
			if !ok {
				snapshots = nil
				continue
			}
			last = snap
			r.Draw(snap)
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if quits(ev) {
					return nil
				}
			case *tcell.EventResize:
				r.screen.Sync()
				r.Draw(last)
			}
		}
	}
}
