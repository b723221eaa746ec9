package download

import (
	"github.com/bnema/modctl/internal/mods"
)

// Event names as seen by observers
const (
	EventStarted  = "download-started"
	EventProgress = "download-progress"
	EventFinished = "download-finished"
	EventError    = "download-error"
)

// Step labels carried by progress events
const (
	StepDownloading = "downloading"
	StepExtracting  = "extracting"
	StepInstalling  = "installing"
)

// Event is one of the four lifecycle events
type Event interface {
	EventName() string
	DownloadID() int64
}

// StartedEvent is emitted once, before any bytes are transferred.
// ContentLength is 0 when the source does not report a size.
type StartedEvent struct {
	ModID         int64  `json:"mod_id"`
	Name          string `json:"name"`
	ContentLength int64  `json:"content_length"`
	ThumbnailURL  string `json:"thumbnail_url"`
}

// ProgressEvent reports transfer or install progress. While downloading the
// byte fields count archive bytes; while extracting and installing they count
// uncompressed bytes written into the mod folder.
type ProgressEvent struct {
	ModID           int64  `json:"mod_id"`
	Name            string `json:"name"`
	BytesDownloaded int64  `json:"bytes_downloaded"`
	TotalBytes      int64  `json:"total_bytes"`
	Percentage      uint8  `json:"percentage"` // 0-100, never decreases
	Step            string `json:"step"`
}

// FinishedEvent carries the record now present in the registry
type FinishedEvent struct {
	ModID   int64        `json:"mod_id"`
	Name    string       `json:"name"`
	ModInfo mods.ModInfo `json:"mod_info"`
}

// ErrorEvent ends a failed or cancelled download
type ErrorEvent struct {
	ModID     int64  `json:"mod_id"`
	Name      string `json:"name"`
	Error     string `json:"error"`
	Cancelled bool   `json:"cancelled,omitempty"`
}

func (e StartedEvent) EventName() string  { return EventStarted }
func (e ProgressEvent) EventName() string { return EventProgress }
func (e FinishedEvent) EventName() string { return EventFinished }
func (e ErrorEvent) EventName() string    { return EventError }

func (e StartedEvent) DownloadID() int64  { return e.ModID }
func (e ProgressEvent) DownloadID() int64 { return e.ModID }
func (e FinishedEvent) DownloadID() int64 { return e.ModID }
func (e ErrorEvent) DownloadID() int64    { return e.ModID }

