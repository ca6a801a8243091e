package cell_views

import (
	"fmt"
	"html/template"

	"mowsim/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// StatusView is a line of text fields describing the run in progress.
type StatusView struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

func NewStatusView(
	done <-chan struct{},
	frames <-chan Frame,
) (sv *StatusView) {
	sv = &StatusView{id: "status"}
	sv.updates = channerics.Convert(done, frames, sv.onUpdate)
	return
}

func (sv *StatusView) Updates() <-chan []fastview.EleUpdate {
	return sv.updates
}

func statusFields(st Status) [][2]string {
	inside := "no"
	if st.Inside {
		inside = "yes"
	}
	return [][2]string{
		{"status-run", fmt.Sprint(st.Run)},
		{"status-cycle", fmt.Sprint(st.Cycle)},
		{"status-step", fmt.Sprint(st.Step)},
		{"status-autonomy", st.Autonomy},
		{"status-robot", st.Robot},
		{"status-inside", inside},
	}
}

func (sv *StatusView) onUpdate(frame Frame) (ops []fastview.EleUpdate) {
	for _, field := range statusFields(frame.Status) {
		ops = append(ops, fastview.EleUpdate{
			EleId: field[0],
			Ops:   []fastview.Op{{Key: "textContent", Value: field[1]}},
		})
	}
	return
}

func (sv *StatusView) Parse(
	t *template.Template,
) (name string, err error) {
	name = sv.id
	_, err = t.Parse(
		`{{ define "` + name + `" }}
		<div id="` + sv.id + `" style="font-family: monospace; padding: 0 20px;">
			run <span id="status-run">{{ .Status.Run }}</span>
			cycle <span id="status-cycle">{{ .Status.Cycle }}</span>
			step <span id="status-step">{{ .Status.Step }}</span>
			autonomy <span id="status-autonomy">{{ .Status.Autonomy }}</span>
			robot <span id="status-robot">{{ .Status.Robot }}</span>
			isolated <span id="status-inside">{{ if .Status.Inside }}yes{{ else }}no{{ end }}</span>
		</div>
		{{ end }}`)
	return
}
