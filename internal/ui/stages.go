package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// StageUI shows a spinner next to the current step of a session, keeping
// completed steps listed above it.
type StageUI struct {
	program *tea.Program
	model   *stageModel
	wg      sync.WaitGroup
}

type stageMsg string

type finishMsg struct {
	ok   bool
	text string
}

type stageModel struct {
	title     string
	spinner   spinner.Model
	current   string
	completed []string
	started   time.Time
	finished  bool
	ok        bool
	final     string
}

// NewStageUI creates a stage view titled title.
func NewStageUI(title string) *StageUI {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return &StageUI{
		model: &stageModel{
			title:   title,
			spinner: s,
			current: "Starting...",
			started: time.Now(),
		},
	}
}

// Start runs the view in the background. Output goes to out; no input is read.
func (u *StageUI) Start(out io.Writer) {
	u.program = tea.NewProgram(u.model, tea.WithOutput(out), tea.WithInput(nil))
	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		if _, err := u.program.Run(); err != nil {
			fmt.Printf("UI error: %v\n", err)
		}
	}()
}

// Stage moves the view to a new step.
func (u *StageUI) Stage(text string) {
	if u.program != nil {
		u.program.Send(stageMsg(text))
	}
}

// Finish marks the session done and waits for the view to exit.
func (u *StageUI) Finish(ok bool, text string) {
	if u.program == nil {
		return
	}
	u.program.Send(finishMsg{ok: ok, text: text})
	u.wg.Wait()
}

func (m *stageModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *stageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stageMsg:
		if m.current != "" && string(msg) != m.current {
			m.completed = append(m.completed, m.current)
		}
		m.current = string(msg)
		return m, nil

	case finishMsg:
		m.finished = true
		m.ok = msg.ok
		m.final = msg.text
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *stageModel) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(m.title))
	b.WriteString("\n")

	for _, step := range m.completed {
		b.WriteString(fmt.Sprintf("  %s %s\n", SuccessStyle.Render("✓"), MutedStyle.Render(step)))
	}

	elapsed := time.Since(m.started).Round(100 * time.Millisecond)
	switch {
	case !m.finished:
		b.WriteString(fmt.Sprintf("  %s %s %s\n", m.spinner.View(), m.current, MutedStyle.Render(elapsed.String())))
	case m.ok:
		b.WriteString(fmt.Sprintf("  %s %s\n", SuccessStyle.Render("✓"), m.current))
		b.WriteString(fmt.Sprintf("\n%s %s\n", SuccessStyle.Render(IconSuccess), m.final))
	default:
		b.WriteString(fmt.Sprintf("  %s %s\n", ErrorStyle.Render("✗"), m.current))
		b.WriteString(fmt.Sprintf("\n%s %s\n", ErrorStyle.Render(IconError), ErrorStyle.Render(m.final)))
	}

	return b.String()
}
