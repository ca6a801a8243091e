package cell_views

import (
	"fmt"
	"html/template"

	"mowsim/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// cellDim is the side of a cell in pixels.
const cellDim = 12

// CoverageGrid shows the field as one rect per cell, filled by marker or by pass count.
type CoverageGrid struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

func NewCoverageGrid(
	done <-chan struct{},
	frames <-chan Frame,
) (cg *CoverageGrid) {
	cg = &CoverageGrid{id: "coveragegrid"}
	cg.updates = channerics.Convert(done, frames, cg.onUpdate)
	return
}

func (cg *CoverageGrid) Updates() <-chan []fastview.EleUpdate {
	return cg.updates
}

func cellId(cell Cell) string {
	return fmt.Sprintf("cell-%d-%d", cell.X, cell.Y)
}

// onUpdate sets the fill and tooltip count of every cell.
func (cg *CoverageGrid) onUpdate(frame Frame) (ops []fastview.EleUpdate) {
	for _, column := range frame.Cells {
		for _, cell := range column {
			ops = append(ops, fastview.EleUpdate{
				EleId: cellId(cell),
				Ops: []fastview.Op{
					{Key: "fill", Value: cell.Fill},
					{Key: "data-count", Value: fmt.Sprint(cell.Count)},
				},
			})
		}
	}
	return
}

// Parse defines the grid's svg template over a Frame.
func (cg *CoverageGrid) Parse(
	t *template.Template,
) (name string, err error) {
	name = cg.id
	_, err = t.Funcs(template.FuncMap{"cellId": cellId}).Parse(
		`{{ define "` + name + `" }}
		<div style="padding:20px;">
			{{ $x_cells := len .Cells }}
			{{ $y_cells := 0 }}
			{{ if gt $x_cells 0 }}{{ $y_cells = len (index .Cells 0) }}{{ end }}
			{{ $cell_dim := ` + fmt.Sprint(cellDim) + ` }}
			<svg id="` + cg.id + `" xmlns='http://www.w3.org/2000/svg'
				width="{{ add (mult $cell_dim $x_cells) 1 }}px"
				height="{{ add (mult $cell_dim $y_cells) 1 }}px"
				style="shape-rendering: crispEdges;">
				{{ range $column := .Cells }}
					{{ range $cell := $column }}
					<rect id="{{ cellId $cell }}"
						x="{{ mult $cell.X $cell_dim }}"
						y="{{ mult $cell.Y $cell_dim }}"
						width="{{ $cell_dim }}"
						height="{{ $cell_dim }}"
						fill="{{ $cell.Fill }}"
						data-count="{{ $cell.Count }}"
						stroke="white"
						stroke-width="0.5"/>
					{{ end }}
				{{ end }}
			</svg>
		</div>
		{{ end }}`)
	return
}
