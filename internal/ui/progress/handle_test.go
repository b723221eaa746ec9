package progress

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bnema/modctl/internal/download"
	"github.com/bnema/modctl/internal/mods"
)

// drive feeds every event through a handle into a fresh model
func drive(t *testing.T, events ...download.Event) Model {
	t.Helper()
	var msgs []tea.Msg
	h := NewDownloadHandle(func(msg tea.Msg) { msgs = append(msgs, msg) })
	for _, e := range events {
		if err := h.Emit(e.EventName(), e); err != nil {
			t.Fatal(err)
		}
	}

	var model tea.Model = NewModel("Installing Vs. Foo")
	for _, msg := range msgs {
		model, _ = model.Update(msg)
	}
	return model.(Model)
}

func states(in *Install) []State {
	out := make([]State, len(in.Steps))
	for i, s := range in.Steps {
		out[i] = s.State
	}
	return out
}

func equalStates(a, b []State) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestHandleTracksDownloadBytes(t *testing.T) {
	m := drive(t,
		download.StartedEvent{ModID: 1, ContentLength: 4096},
		download.ProgressEvent{ModID: 1, BytesDownloaded: 2048, TotalBytes: 4096, Percentage: 50, Step: download.StepDownloading},
	)

	in := m.Install()
	want := []State{StateInProgress, StatePending, StatePending}
	if !equalStates(states(in), want) {
		t.Fatalf("got states %v, want %v", states(in), want)
	}
	if in.Transfer.Done != 2048 || in.Transfer.Total != 4096 || in.Transfer.Percent != 50 {
		t.Fatalf("unexpected transfer: %+v", in.Transfer)
	}
	if view := m.View(); !strings.Contains(view, "2.0 KB / 4.0 KB") {
		t.Fatalf("expected byte counts in view, got:\n%s", view)
	}
}

func TestHandleSkipsAheadToExtracting(t *testing.T) {
	m := drive(t,
		download.StartedEvent{ModID: 1},
		download.ProgressEvent{ModID: 1, BytesDownloaded: 10, TotalBytes: 10, Percentage: 100, Step: download.StepDownloading},
		download.ProgressEvent{ModID: 1, BytesDownloaded: 5, TotalBytes: 20, Percentage: 100, Step: download.StepExtracting},
		// Late events of an earlier step never move the view back
		download.ProgressEvent{ModID: 1, Percentage: 100, Step: download.StepDownloading},
	)

	in := m.Install()
	want := []State{StateComplete, StateInProgress, StatePending}
	if !equalStates(states(in), want) {
		t.Fatalf("got states %v, want %v", states(in), want)
	}
	if in.Transfer.Done != 5 || in.Transfer.Total != 20 {
		t.Fatalf("expected extracting bytes, got %+v", in.Transfer)
	}
}

func TestHandleFinish(t *testing.T) {
	m := drive(t,
		download.StartedEvent{ModID: 1},
		download.ProgressEvent{ModID: 1, Percentage: 100, Step: download.StepInstalling},
		download.FinishedEvent{ModID: 1, ModInfo: mods.ModInfo{ID: "x"}},
	)
	if !m.Install().Complete() {
		t.Fatalf("expected every step complete, got %v", states(m.Install()))
	}

	model, cmd := m.Update(DoneMsg{})
	if !model.(Model).IsDone() || cmd == nil {
		t.Fatal("expected DoneMsg to quit")
	}
}

func TestHandleFailure(t *testing.T) {
	m := drive(t, download.ErrorEvent{ModID: 1, Error: "download cancelled", Cancelled: true})

	in := m.Install()
	if in.Steps[0].State != StateError || in.Steps[0].Err == nil {
		t.Fatalf("expected first step failed, got %+v", in.Steps[0])
	}
	if m.GetError() == nil || m.GetError().Error() != "download cancelled" {
		t.Fatalf("unexpected error %v", m.GetError())
	}

	model, _ := m.Update(DoneMsg{Err: errors.New("later")})
	if model.(Model).GetError().Error() != "download cancelled" {
		t.Fatal("expected the step failure to be kept")
	}
}

func TestCancelKeyWaitsForDone(t *testing.T) {
	cancelled := 0
	m := NewModel("Installing").WithCancel(func() { cancelled++ })

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cancelled != 1 || cmd != nil || model.(Model).IsDone() {
		t.Fatalf("expected a single cancel without quitting, got %d", cancelled)
	}
}

func TestFormatBytes(t *testing.T) {
	cases := map[int64]string{
		512:             "512 B",
		2048:            "2.0 KB",
		5 * 1024 * 1024: "5.0 MB",
	}
	for in, want := range cases {
		if got := formatBytes(in); got != want {
			t.Fatalf("formatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
