package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	successMark = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	failMark    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")
	stepStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Step runs fn under a titled step indicator. Interactive mode shows
// an animated spinner replaced by a check or cross; headless mode
// prints plain begin/end lines.
func Step(w io.Writer, hm *HeadlessManager, title string, fn func() error) error {
	if hm.IsHeadless() {
		fmt.Fprintf(w, "%s ...\n", title)
		start := time.Now()
		err := fn()
		if err != nil {
			fmt.Fprintf(w, "%s failed after %s: %v\n", title, time.Since(start).Round(time.Millisecond), err)
			return err
		}
		fmt.Fprintf(w, "%s done (%s)\n", title, time.Since(start).Round(time.Millisecond))
		return nil
	}
	return runSpinnerStep(w, title, fn)
}

// stepDoneMsg stops the spinner program.
type stepDoneMsg struct{}

// stepModel is the bubbletea model for a single animated step.
type stepModel struct {
	spinner spinner.Model
	title   string
	done    bool
}

func newStepModel(title string) stepModel {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	return stepModel{spinner: s, title: title}
}

func (m stepModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m stepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stepDoneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m stepModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + stepStyle.Render(m.title) + "\n"
}

func runSpinnerStep(w io.Writer, title string, fn func() error) error {
	program := tea.NewProgram(newStepModel(title), tea.WithOutput(w))

	result := make(chan error, 1)
	go func() {
		result <- fn()
		program.Send(stepDoneMsg{})
	}()

	// The step's own result decides success; a spinner display failure
	// is cosmetic and must not mask it.
	_, _ = program.Run()
	return reportStep(w, title, <-result)
}

// reportStep prints the step's closing line and passes its error through.
func reportStep(w io.Writer, title string, err error) error {
	if err != nil {
		fmt.Fprintf(w, "%s %s: %v\n", failMark, title, err)
		return err
	}
	fmt.Fprintf(w, "%s %s\n", successMark, title)
	return nil
}
