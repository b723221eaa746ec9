package progress

import (
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/modctl/internal/download"
	"github.com/bnema/modctl/internal/ui/styles"
)

// State of one install step
type State int

const (
	StatePending State = iota
	StateInProgress
	StateComplete
	StateError
)

// Step is one phase of a mod install, keyed by the download step it tracks
type Step struct {
	Key   string // download.StepDownloading, ...
	Label string
	State State
	Err   error
}

// Transfer is the byte count of the step in progress. Archive bytes while
// downloading, uncompressed bytes while extracting.
type Transfer struct {
	Done    int64
	Total   int64
	Percent float64 // 0-100
}

// Known reports whether the total size is known
func (t Transfer) Known() bool { return t.Total > 0 }

var installSteps = []Step{
	{Key: download.StepDownloading, Label: "Downloading"},
	{Key: download.StepExtracting, Label: "Extracting"},
	{Key: download.StepInstalling, Label: "Installing"},
}

// Install is the state of one mod install as shown by Model
type Install struct {
	Title    string
	Steps    []Step
	Current  int // Index of the step in progress, -1 before the first event
	Transfer Transfer
	Note     string // e.g. "cancelling"
}

func newInstall(title string) *Install {
	steps := make([]Step, len(installSteps))
	copy(steps, installSteps)
	return &Install{Title: title, Steps: steps, Current: -1}
}

func (in *Install) index(key string) int {
	for i, s := range in.Steps {
		if s.Key == key {
			return i
		}
	}
	return -1
}

// Enter makes the step with key the one in progress, completing every
// step before it. Steps never move backwards.
func (in *Install) Enter(key string) {
	idx := in.index(key)
	if idx < 0 || idx <= in.Current {
		return
	}
	for i := max(in.Current, 0); i < idx; i++ {
		in.Steps[i].State = StateComplete
	}
	in.Current = idx
	in.Steps[idx].State = StateInProgress
	in.Transfer = Transfer{}
}

// Finish completes every step
func (in *Install) Finish() {
	for i := range in.Steps {
		in.Steps[i].State = StateComplete
	}
	in.Current = len(in.Steps)
	in.Transfer = Transfer{}
	in.Note = ""
}

// Fail marks the step in progress, or the first one, as failed
func (in *Install) Fail(err error) {
	if in.Current < 0 {
		in.Current = 0
	}
	if in.Current < len(in.Steps) {
		in.Steps[in.Current].State = StateError
		in.Steps[in.Current].Err = err
	}
}

// Complete reports whether every step finished
func (in *Install) Complete() bool {
	for _, s := range in.Steps {
		if s.State != StateComplete {
			return false
		}
	}
	return true
}

// Icons - Nerd Font with ASCII fallback
type Icons struct {
	Check   string
	Cross   string
	Pending string
	Warning string
	Spinner string
}

var (
	NerdFontIcons = Icons{
		Check:   "\uf00c",
		Cross:   "\uf00d",
		Pending: "\uf111",
		Warning: "\uf071",
		Spinner: "\uf110",
	}

	ASCIIIcons = Icons{
		Check:   "+",
		Cross:   "x",
		Pending: "o",
		Warning: "!",
		Spinner: "*",
	}
)

// GetIcons returns the Nerd Font set when MODCTL_NERD_FONTS=1
func GetIcons() Icons {
	if os.Getenv("MODCTL_NERD_FONTS") == "1" {
		return NerdFontIcons
	}
	return ASCIIIcons
}

var (
	iconComplete = lipgloss.NewStyle().Foreground(styles.Success)
	iconError    = lipgloss.NewStyle().Foreground(styles.Error)
	iconPending  = lipgloss.NewStyle().Foreground(styles.Muted)
	iconWarning  = lipgloss.NewStyle().Foreground(styles.Warning)
	iconSpinner  = lipgloss.NewStyle().Foreground(styles.Primary)
)

// StyledIcon returns the icon for state
func StyledIcon(state State) string {
	icons := GetIcons()
	switch state {
	case StateComplete:
		return iconComplete.Render(icons.Check)
	case StateError:
		return iconError.Render(icons.Cross)
	case StateInProgress:
		return iconSpinner.Render(icons.Spinner)
	default:
		return iconPending.Render(icons.Pending)
	}
}

// StepStyle returns the text style for a step in state
func StepStyle(state State) lipgloss.Style {
	switch state {
	case StateComplete:
		return styles.SuccessText
	case StateError:
		return styles.ErrorText
	case StateInProgress:
		return styles.NormalText.Bold(true)
	default:
		return styles.MutedText
	}
}
