package progress

import (
	"errors"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bnema/modctl/internal/download"
)

// DownloadHandle turns download lifecycle events into Model messages.
// It satisfies app.Handle so the tracker can drive the TUI directly.
type DownloadHandle struct {
	send func(tea.Msg)
}

// NewDownloadHandle creates a handle that sends messages through send,
// usually (*tea.Program).Send
func NewDownloadHandle(send func(tea.Msg)) *DownloadHandle {
	return &DownloadHandle{send: send}
}

// Emit implements app.Handle
func (h *DownloadHandle) Emit(_ string, payload any) error {
	switch e := payload.(type) {
	case download.StartedEvent:
		h.send(StepMsg{Step: download.StepDownloading})

	case download.ProgressEvent:
		h.send(TransferMsg{
			Step: e.Step,
			Transfer: Transfer{
				Done:    e.BytesDownloaded,
				Total:   e.TotalBytes,
				Percent: float64(e.Percentage),
			},
		})

	case download.FinishedEvent:
		h.send(FinishedMsg{})

	case download.ErrorEvent:
		h.send(FailedMsg{Err: errors.New(e.Error)})
	}
	return nil
}

// formatBytes formats bytes into human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return strconv.FormatInt(bytes, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(bytes)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "B"
}
