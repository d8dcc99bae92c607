// Package ui renders assignment progress in the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"bundleid/internal/pipeline"
)

const queued pipeline.Status = "queued"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	statusStyle = map[pipeline.Status]lipgloss.Style{
		pipeline.StatusWorking: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		pipeline.StatusDone:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		pipeline.StatusSkipped: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		pipeline.StatusError:   errorStyle,
	}
	defaultStatusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

type stageRow struct {
	stage   pipeline.Stage
	status  pipeline.Status
	elapsed time.Duration
	err     string
}

type progressModel struct {
	title   string
	events  <-chan pipeline.Event
	spinner spinner.Model
	bar     progress.Model
	rows    []stageRow
	width   int
	done    bool
}

type eventMsg pipeline.Event
type closedMsg struct{}

// NewProgressModel returns a Bubble Tea model that draws one row per stage
// and quits once events is closed.
func NewProgressModel(title string, stages []pipeline.Stage, events <-chan pipeline.Event) tea.Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(statusStyle[pipeline.StatusWorking]))
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(76))

	rows := make([]stageRow, len(stages))
	for i, stage := range stages {
		rows[i] = stageRow{stage: stage, status: queued}
	}
	return &progressModel{title: title, events: events, spinner: sp, bar: bar, rows: rows, width: 80}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(pipeline.Event(msg)), m.next())
	case closedMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 4 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	var b strings.Builder
	if m.done {
		b.WriteString(titleStyle.Render("done: " + m.title))
	} else {
		b.WriteString(m.spinner.View() + " " + titleStyle.Render(m.title))
	}
	b.WriteString("\n\n")

	for _, row := range m.rows {
		style, ok := statusStyle[row.status]
		if !ok {
			style = defaultStatusStyle
		}
		fmt.Fprintf(&b, "  %s %-8s", style.Render(fmt.Sprintf("%9s", row.status)), row.stage)
		if row.status != queued && row.status != pipeline.StatusWorking {
			fmt.Fprintf(&b, " %s", formatElapsed(row.elapsed))
		}
		b.WriteString("\n")
		if row.err != "" {
			b.WriteString("            " + errorStyle.Render(truncate(row.err, m.width-12)) + "\n")
		}
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	return b.String()
}

// next waits for the following event; a closed channel ends the program.
func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev pipeline.Event) tea.Cmd {
	for i := range m.rows {
		row := &m.rows[i]
		if row.stage != ev.Stage {
			continue
		}
		row.status = ev.Status
		row.elapsed = ev.Elapsed
		if ev.Err != nil {
			row.err = ev.Err.Error()
		}
		return m.bar.SetPercent(m.fraction())
	}
	return nil
}

// fraction counts finished stages, with running ones at half weight.
func (m *progressModel) fraction() float64 {
	if len(m.rows) == 0 {
		return 1
	}
	var total float64
	for _, row := range m.rows {
		switch row.status {
		case queued:
		case pipeline.StatusWorking:
			total += 0.5
		default:
			total++
		}
	}
	return total / float64(len(m.rows))
}

func formatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.2f ms", float64(d.Microseconds())/1000)
}

// truncate cuts value to width terminal cells, marking the cut with "..."
// when there is room for it.
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	tail := "..."
	if width <= len(tail) {
		tail = ""
	}
	return runewidth.Truncate(value, width, tail)
}
