package download

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/bnema/modctl/internal/app"
	"github.com/bnema/modctl/internal/mods"
)

type recordedEvent struct {
	name    string
	payload any
}

type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorder) Emit(event string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{name: event, payload: payload})
	return nil
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.events))
	for i, e := range r.events {
		names[i] = e.name
	}
	return names
}

type countingHooks struct {
	mu        sync.Mutex
	bytes     int64
	finished  int
	failed    int
	cancelled int
}

func (h *countingHooks) OnBytes(n int64) {
	h.mu.Lock()
	h.bytes += n
	h.mu.Unlock()
}

func (h *countingHooks) OnFinished(int64) {
	h.mu.Lock()
	h.finished++
	h.mu.Unlock()
}

func (h *countingHooks) OnFailed(_ int64, cancelled bool) {
	h.mu.Lock()
	if cancelled {
		h.cancelled++
	} else {
		h.failed++
	}
	h.mu.Unlock()
}

func newTestTracker(t *testing.T) (*Tracker, *mods.Registry, *recorder, *countingHooks) {
	t.Helper()
	registry := mods.NewRegistry()
	slot := &app.Slot{}
	rec := &recorder{}
	if err := slot.Set(rec); err != nil {
		t.Fatal(err)
	}
	hooks := &countingHooks{}
	return NewTracker(registry, slot, hooks, log.New(io.Discard)), registry, rec, hooks
}

func TestLifecycleFinished(t *testing.T) {
	tracker, registry, rec, hooks := newTestTracker(t)
	record := mods.ModInfo{ID: "42", Name: "Foo", Path: "/mods/foo", MetadataVersion: mods.Ptr(uint32(1))}

	d := tracker.Begin(42, "Foo", 1000, "http://x")
	if err := d.Progress(500, 1000, StepDownloading); err != nil {
		t.Fatalf("Progress() returned error: %v", err)
	}
	if err := d.Finish(record); err != nil {
		t.Fatalf("Finish() returned error: %v", err)
	}

	want := []string{EventStarted, EventProgress, EventFinished}
	if diff := cmp.Diff(want, rec.names()); diff != "" {
		t.Fatalf("unexpected events (-want +got):\n%s", diff)
	}

	started := rec.events[0].payload.(StartedEvent)
	if diff := cmp.Diff(StartedEvent{ModID: 42, Name: "Foo", ContentLength: 1000, ThumbnailURL: "http://x"}, started); diff != "" {
		t.Fatalf("unexpected started event (-want +got):\n%s", diff)
	}

	progress := rec.events[1].payload.(ProgressEvent)
	if progress.BytesDownloaded != 500 || progress.TotalBytes != 1000 || progress.Percentage != 50 {
		t.Fatalf("unexpected progress event: %+v", progress)
	}

	finished := rec.events[2].payload.(FinishedEvent)
	if diff := cmp.Diff(record, finished.ModInfo); diff != "" {
		t.Fatalf("unexpected finished record (-want +got):\n%s", diff)
	}

	got, err := registry.Get("42")
	if err != nil {
		t.Fatalf("expected record in registry: %v", err)
	}
	if diff := cmp.Diff(record, got); diff != "" {
		t.Fatalf("registry record mismatch (-want +got):\n%s", diff)
	}

	if hooks.finished != 1 || hooks.bytes != 500 {
		t.Fatalf("unexpected hook counts: %+v", hooks)
	}
}

func TestLifecycleError(t *testing.T) {
	tracker, registry, rec, hooks := newTestTracker(t)

	d := tracker.Begin(42, "Foo", 1000, "http://x")
	if err := d.Fail(errors.New("network timeout")); err != nil {
		t.Fatalf("Fail() returned error: %v", err)
	}

	if diff := cmp.Diff([]string{EventStarted, EventError}, rec.names()); diff != "" {
		t.Fatalf("unexpected events (-want +got):\n%s", diff)
	}
	errEvent := rec.events[1].payload.(ErrorEvent)
	if errEvent.Error != "network timeout" || errEvent.Cancelled {
		t.Fatalf("unexpected error event: %+v", errEvent)
	}
	if registry.Contains("42") {
		t.Fatal("registry must not contain a failed download")
	}
	if hooks.failed != 1 {
		t.Fatalf("expected one failure, got %d", hooks.failed)
	}
}

func TestNoEventsAfterTerminalState(t *testing.T) {
	tracker, registry, rec, _ := newTestTracker(t)

	d := tracker.Begin(1, "Foo", 0, "")
	_ = d.Cancel()

	if err := d.Progress(10, 10, StepDownloading); !errors.Is(err, ErrTerminated) {
		t.Fatalf("expected ErrTerminated from Progress(), got %v", err)
	}
	if err := d.Finish(mods.ModInfo{ID: "1"}); !errors.Is(err, ErrTerminated) {
		t.Fatalf("expected ErrTerminated from Finish(), got %v", err)
	}
	if err := d.Fail(errors.New("late")); !errors.Is(err, ErrTerminated) {
		t.Fatalf("expected ErrTerminated from Fail(), got %v", err)
	}

	if diff := cmp.Diff([]string{EventStarted, EventError}, rec.names()); diff != "" {
		t.Fatalf("unexpected events (-want +got):\n%s", diff)
	}
	if !rec.events[1].payload.(ErrorEvent).Cancelled {
		t.Fatal("expected cancelled flag on error event")
	}
	if d.State() != StateCancelled {
		t.Fatalf("expected cancelled state, got %v", d.State())
	}
	if registry.Contains("1") {
		t.Fatal("cancelled download must not register a mod")
	}
}

func TestPercentageMonotonic(t *testing.T) {
	tracker, _, rec, _ := newTestTracker(t)

	d := tracker.Begin(7, "Foo", 0, "")
	_ = d.Progress(100, 0, StepDownloading) // unknown size
	_ = d.Progress(300, 1000, StepDownloading)
	_ = d.Progress(200, 1000, StepDownloading)
	_ = d.Progress(5000, 1000, StepExtracting)
	_ = d.Progress(0, 0, StepInstalling)

	var got []uint8
	for _, e := range rec.events[1:] {
		got = append(got, e.payload.(ProgressEvent).Percentage)
	}
	if diff := cmp.Diff([]uint8{0, 30, 30, 100, 100}, got); diff != "" {
		t.Fatalf("unexpected percentages (-want +got):\n%s", diff)
	}
}

func TestFinishRejectedInsertFailsDownload(t *testing.T) {
	tracker, registry, rec, _ := newTestTracker(t)
	_ = registry.Insert("42", mods.ModInfo{Name: "old", MetadataVersion: mods.Ptr(uint32(3))})

	d := tracker.Begin(42, "Foo", 0, "")
	err := d.Finish(mods.ModInfo{ID: "42", Name: "new", MetadataVersion: mods.Ptr(uint32(1))})
	if !errors.Is(err, mods.ErrVersionDowngrade) {
		t.Fatalf("expected ErrVersionDowngrade, got %v", err)
	}

	if diff := cmp.Diff([]string{EventStarted, EventError}, rec.names()); diff != "" {
		t.Fatalf("unexpected events (-want +got):\n%s", diff)
	}
	got, _ := registry.Get("42")
	if got.Name != "old" {
		t.Fatalf("previous entry must survive a failed update, got %q", got.Name)
	}
}

func TestEmitWithoutHandleIsSkipped(t *testing.T) {
	registry := mods.NewRegistry()
	tracker := NewTracker(registry, &app.Slot{}, nil, log.New(io.Discard))

	d := tracker.Begin(1, "Foo", 10, "")
	if err := d.Progress(5, 10, StepDownloading); err != nil {
		t.Fatalf("Progress() returned error: %v", err)
	}
	if err := d.Finish(mods.ModInfo{ID: "1", Name: "Foo"}); err != nil {
		t.Fatalf("Finish() returned error: %v", err)
	}
	if !registry.Contains("1") {
		t.Fatal("expected record to be registered without a handle")
	}
}

func TestFinishKeepsProcessLinkOfRunningMod(t *testing.T) {
	tracker, registry, rec, _ := newTestTracker(t)
	if err := registry.Insert("vs-foo", mods.ModInfo{Name: "Foo", ProcessID: mods.Ptr(4242)}); err != nil {
		t.Fatal(err)
	}

	d := tracker.Begin(42, "Foo", 0, "")
	if err := d.Finish(mods.ModInfo{ID: "vs-foo", Name: "Foo v2"}); err != nil {
		t.Fatalf("Finish() returned error: %v", err)
	}

	got, err := registry.Get("vs-foo")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Foo v2" {
		t.Fatalf("expected record updated, got %q", got.Name)
	}
	if got.ProcessID == nil || *got.ProcessID != 4242 {
		t.Fatalf("expected process link kept, got %v", got.ProcessID)
	}

	finished := rec.events[len(rec.events)-1].payload.(FinishedEvent)
	if finished.ModInfo.ProcessID == nil || *finished.ModInfo.ProcessID != 4242 {
		t.Fatalf("finished event must carry the committed record, got %+v", finished.ModInfo)
	}
}
