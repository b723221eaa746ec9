package progress

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/modctl/internal/ui/styles"
)

// Messages sent by DownloadHandle
type (
	// StepMsg enters an install step
	StepMsg struct{ Step string }

	// TransferMsg reports the bytes processed by a step
	TransferMsg struct {
		Step     string
		Transfer Transfer
	}

	// FinishedMsg completes every step
	FinishedMsg struct{}

	// FailedMsg fails the step in progress
	FailedMsg struct{ Err error }

	// DoneMsg ends the program once the install call has returned
	DoneMsg struct{ Err error }
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(styles.Text).Bold(true).MarginBottom(1)
	detailStyle = lipgloss.NewStyle().Foreground(styles.Muted)
	errStyle    = lipgloss.NewStyle().Foreground(styles.Error)
)

// Model renders a mod install: its steps, a spinner on the step in
// progress and a byte bar when the size is known
type Model struct {
	install    *Install
	spinner    spinner.Model
	bar        progress.Model
	done       bool
	err        error
	onCancel   func()
	cancelling bool
}

// NewModel creates the install view titled title
func NewModel(title string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	return Model{
		install: newInstall(title),
		spinner: s,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(30),
			progress.WithoutPercentage(),
		),
	}
}

// WithCancel makes ctrl+c call fn and wait for DoneMsg instead of quitting
func (m Model) WithCancel(fn func()) Model {
	m.onCancel = fn
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.WindowSize())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() != "ctrl+c" && msg.String() != "q" {
			return m, nil
		}
		if m.onCancel == nil || m.done {
			return m, tea.Quit
		}
		if !m.cancelling {
			m.cancelling = true
			m.install.Note = "cancelling"
			m.onCancel()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-10, 40)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd

	case StepMsg:
		m.install.Enter(msg.Step)

	case TransferMsg:
		m.install.Enter(msg.Step)
		m.install.Transfer = msg.Transfer
		return m, m.bar.SetPercent(msg.Transfer.Percent / 100)

	case FinishedMsg:
		m.install.Finish()

	case FailedMsg:
		m.install.Fail(msg.Err)
		m.err = msg.Err

	case DoneMsg:
		m.done = true
		if msg.Err != nil && m.err == nil {
			m.err = msg.Err
		}
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.install.Title))
	b.WriteString("\n\n")

	for i, step := range m.install.Steps {
		icon := StyledIcon(step.State)
		if step.State == StateInProgress {
			icon = m.spinner.View()
		}
		fmt.Fprintf(&b, "  %s %s", icon, StepStyle(step.State).Render(step.Label))
		if i == m.install.Current && m.install.Note != "" {
			b.WriteString(detailStyle.Render(" - " + m.install.Note))
		}
		b.WriteString("\n")

		switch {
		case step.State == StateError && step.Err != nil:
			b.WriteString("      " + errStyle.Render(step.Err.Error()) + "\n")
		case step.State == StateInProgress && m.install.Transfer.Known():
			t := m.install.Transfer
			b.WriteString("      " + detailStyle.Render(formatBytes(t.Done)+" / "+formatBytes(t.Total)) + "\n")
			b.WriteString("    " + m.bar.View() + detailStyle.Render(fmt.Sprintf(" %3.0f%%", t.Percent)) + "\n")
		}
	}

	b.WriteString("\n")
	return b.String()
}

// GetError returns the install failure, if any
func (m Model) GetError() error {
	return m.err
}

// IsDone reports whether DoneMsg was received
func (m Model) IsDone() bool {
	return m.done
}

// Install returns the rendered install state
func (m Model) Install() *Install {
	return m.install
}
