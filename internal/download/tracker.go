package download

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/bnema/modctl/internal/app"
	"github.com/bnema/modctl/internal/mods"
)

var (
	ErrCancelled  = errors.New("download cancelled")
	ErrTerminated = errors.New("download already finished")
)

// Hooks observe download outcomes, e.g. for metrics
type Hooks interface {
	OnBytes(n int64)
	OnFinished(modID int64)
	OnFailed(modID int64, cancelled bool)
}

// Tracker creates downloads that commit into a registry and report through
// the application handle
type Tracker struct {
	registry *mods.Registry
	handle   *app.Slot
	hooks    Hooks
	log      *log.Logger
}

// NewTracker creates a tracker. hooks may be nil.
func NewTracker(registry *mods.Registry, handle *app.Slot, hooks Hooks, logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.Default()
	}
	return &Tracker{
		registry: registry,
		handle:   handle,
		hooks:    hooks,
		log:      logger,
	}
}

// State of a single download
type State int

const (
	StateStarted State = iota
	StateFinished
	StateFailed
	StateCancelled
)

// Download is the state machine of one download attempt:
// Started, then any number of Progress, then Finished or Error.
// Calls after the terminal state return ErrTerminated and emit nothing.
type Download struct {
	tracker *Tracker
	modID   int64
	name    string

	mu         sync.Mutex
	state      State
	bytes      int64
	total      int64
	percentage uint8
}

// Begin starts a download and emits its Started event
func (t *Tracker) Begin(modID int64, name string, contentLength int64, thumbnailURL string) *Download {
	if contentLength < 0 {
		contentLength = 0
	}
	d := &Download{
		tracker: t,
		modID:   modID,
		name:    name,
		total:   contentLength,
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	t.log.Debug("Download started", "mod_id", modID, "name", name, "content_length", contentLength)
	d.emit(StartedEvent{
		ModID:         modID,
		Name:          name,
		ContentLength: contentLength,
		ThumbnailURL:  thumbnailURL,
	})
	return d
}

// ModID returns the catalog id of the download
func (d *Download) ModID() int64 {
	return d.modID
}

// State returns the current state
func (d *Download) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Progress emits a progress event. total <= 0 falls back to the content
// length reported at start; when neither is known the last percentage is
// repeated.
func (d *Download) Progress(downloaded, total int64, step string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != StateStarted {
		return ErrTerminated
	}

	if total <= 0 {
		total = d.total
	}
	if step == StepDownloading && downloaded > d.bytes {
		if hooks := d.tracker.hooks; hooks != nil {
			hooks.OnBytes(downloaded - d.bytes)
		}
		d.bytes = downloaded
	}
	d.percentage = nextPercentage(d.percentage, downloaded, total)

	d.emit(ProgressEvent{
		ModID:           d.modID,
		Name:            d.name,
		BytesDownloaded: downloaded,
		TotalBytes:      total,
		Percentage:      d.percentage,
		Step:            step,
	})
	return nil
}

// Finish merges info into the registry and emits Finished with the committed
// record. A mod already running under the same id keeps its process link. If
// the merge is rejected the download fails instead and the registry is left
// as it was.
func (d *Download) Finish(info mods.ModInfo) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != StateStarted {
		return ErrTerminated
	}

	committed, err := d.tracker.registry.Merge(info)
	if err != nil {
		d.fail(fmt.Errorf("failed to register mod: %w", err), false)
		return err
	}

	d.state = StateFinished
	if hooks := d.tracker.hooks; hooks != nil {
		hooks.OnFinished(d.modID)
	}
	d.tracker.log.Info("Download finished", "mod_id", d.modID, "id", info.ID, "name", info.Name)
	d.emit(FinishedEvent{
		ModID:   d.modID,
		Name:    d.name,
		ModInfo: committed,
	})
	return nil
}

// Fail ends the download with an error event
func (d *Download) Fail(err error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != StateStarted {
		return ErrTerminated
	}
	d.fail(err, errors.Is(err, ErrCancelled))
	return nil
}

// Cancel ends the download with a cancelled error event
func (d *Download) Cancel() error {
	return d.Fail(ErrCancelled)
}

func (d *Download) fail(err error, cancelled bool) {
	if cancelled {
		d.state = StateCancelled
		d.tracker.log.Info("Download cancelled", "mod_id", d.modID, "name", d.name)
	} else {
		d.state = StateFailed
		d.tracker.log.Warn("Download failed", "mod_id", d.modID, "name", d.name, "error", err)
	}
	if hooks := d.tracker.hooks; hooks != nil {
		hooks.OnFailed(d.modID, cancelled)
	}

	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	d.emit(ErrorEvent{
		ModID:     d.modID,
		Name:      d.name,
		Error:     msg,
		Cancelled: cancelled,
	})
}

// emit must be called with d.mu held, which keeps events of one download in order
func (d *Download) emit(e Event) {
	err := d.tracker.handle.Emit(e.EventName(), e)
	if errors.Is(err, app.ErrNotInitialized) {
		d.tracker.log.Debug("No application handle, event skipped", "event", e.EventName(), "mod_id", d.modID)
		return
	}
	if err != nil {
		d.tracker.log.Debug("Failed to emit event", "event", e.EventName(), "error", err)
	}
}

func nextPercentage(prev uint8, downloaded, total int64) uint8 {
	if total <= 0 {
		return prev
	}
	if downloaded < 0 {
		downloaded = 0
	}
	pct := downloaded * 100 / total
	if pct > 100 {
		pct = 100
	}
	if uint8(pct) < prev {
		return prev
	}
	return uint8(pct)
}
