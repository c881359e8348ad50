// Package tui renders the progress of a batch in the terminal
package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/justchokingaround/extender/internal/clipboard"
	"github.com/justchokingaround/extender/internal/extender"
	"github.com/justchokingaround/extender/internal/tui/styles"
	"github.com/justchokingaround/extender/internal/tui/utils"
)

const (
	maxLogLines     = 8
	maxFailureLines = 3
	defaultWidth    = 80
	noticeTTL       = 2500 * time.Millisecond
)

// EventMsg carries an orchestrator event into the bubbletea loop
type EventMsg extender.Event

type clearNoticeMsg struct{}

// Canceller stops the running batch
type Canceller interface {
	Cancel() error
}

// RunModel shows overall and per-file progress of one batch
type RunModel struct {
	canceller Canceller
	clipboard clipboard.Service

	title   string
	total   int
	spinner spinner.Model
	overall progress.Model
	item    progress.Model

	current    string
	overallPct int
	itemPct    int
	logLines   []string
	lastOutput string
	notice     string
	cancelling bool
	finished   bool
	success    bool
	finalText  string
	width      int
	completed  int
	failed     int
	startedAt  time.Time
	finishedAt time.Time
}

// NewRunModel creates the view for a batch of total files.
// clip may be nil, which disables copying.
func NewRunModel(canceller Canceller, clip clipboard.Service, title string, total int) RunModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.OxocarbonPurple)

	return RunModel{
		canceller: canceller,
		clipboard: clip,
		title:     title,
		total:     total,
		spinner:   s,
		overall:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		item:      progress.New(progress.WithGradient(string(styles.OxocarbonPurple), string(styles.OxocarbonBlue)), progress.WithWidth(40)),
		width:     defaultWidth,
		startedAt: time.Now(),
	}
}

// Init implements tea.Model
func (m RunModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model
func (m RunModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		barWidth := max(10, min(60, msg.Width-20))
		m.overall.Width = barWidth
		m.item.Width = barWidth
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case EventMsg:
		return m.handleEvent(extender.Event(msg))

	case clipboard.CopiedMsg:
		if msg.Err != nil {
			m.notice = "Copy failed: " + msg.Err.Error()
		} else {
			m.notice = "Copied " + filepath.Base(msg.Text) + " to clipboard"
		}
		return m, tea.Tick(noticeTTL, func(time.Time) tea.Msg { return clearNoticeMsg{} })

	case clearNoticeMsg:
		m.notice = ""
		return m, nil

	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m RunModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.finished {
			return m, tea.Quit
		}
		return m, nil

	case "q", "ctrl+c", "esc":
		if m.finished {
			return m, tea.Quit
		}
		if !m.cancelling && m.canceller != nil {
			m.cancelling = true
			_ = m.canceller.Cancel()
		}
		return m, nil

	case "y":
		if m.lastOutput == "" || m.clipboard == nil {
			return m, nil
		}
		return m, m.clipboard.Write(m.lastOutput)
	}

	return m, nil
}

func (m RunModel) handleEvent(ev extender.Event) (tea.Model, tea.Cmd) {
	switch ev.Type {
	case extender.EventStatus:
		m.appendLog(ev.Text)
		switch {
		case strings.HasPrefix(ev.Text, "Processing:"):
			m.current = ev.Path
			m.itemPct = 0
		case ev.Success:
			m.completed++
			if ev.Output != "" {
				m.lastOutput = ev.Output
			}
		case strings.HasPrefix(ev.Text, "Failed:"):
			m.failed++
		}

	case extender.EventItemProgress:
		m.itemPct = ev.Percent

	case extender.EventFileProgress:
		m.overallPct = ev.Percent

	case extender.EventFinished:
		m.finished = true
		m.success = ev.Success
		m.finalText = ev.Text
		m.current = ""
		m.finishedAt = time.Now()
	}

	return m, nil
}

func (m *RunModel) appendLog(line string) {
	m.logLines = append(m.logLines, line)
	if len(m.logLines) > maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
	}
}

// Finished reports whether the batch reached a terminal state
func (m RunModel) Finished() bool {
	return m.finished
}

// View implements tea.Model
func (m RunModel) View() string {
	var b strings.Builder
	textWidth := max(20, m.width-8)

	b.WriteString(styles.TitleStyle.Render(m.title))
	b.WriteString("\n\n")

	switch {
	case m.finished:
		style := styles.CompletedStyle
		if !m.success {
			style = styles.CancelledStyle
		}
		b.WriteString(style.Render(m.finalText))
		b.WriteString(styles.MetadataStyle.Render(" in " + m.finishedAt.Sub(m.startedAt).Round(time.Second).String()))
	case m.cancelling:
		b.WriteString(m.spinner.View() + " " + styles.CancelledStyle.Render("Cancelling..."))
	case m.current != "":
		b.WriteString(m.spinner.View() + " " + styles.SubtitleStyle.Render(utils.TruncateMiddle(m.current, textWidth-2)))
	default:
		b.WriteString(m.spinner.View() + " " + styles.MetadataStyle.Render("Starting..."))
	}
	b.WriteString("\n\n")

	done := m.completed + m.failed
	b.WriteString(styles.LabelStyle.Render("Overall"))
	b.WriteString(m.overall.ViewAs(float64(m.overallPct) / 100))
	b.WriteString(styles.MetadataStyle.Render(fmt.Sprintf("  %d/%d", done, m.total)))
	b.WriteString("\n")
	b.WriteString(styles.LabelStyle.Render("Current"))
	b.WriteString(m.item.ViewAs(float64(m.itemPct) / 100))
	b.WriteString("\n\n")

	for _, line := range m.logLines {
		text := utils.TruncateWithWidth(line, textWidth)
		if strings.HasPrefix(line, "Failed:") {
			// failures carry ffmpeg's reason, give them room
			text = utils.TruncateToLines(line, maxFailureLines, textWidth)
		}
		b.WriteString(styles.StatusLineStyle(line).Render(text))
		b.WriteString("\n")
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(styles.FooterStyle.Render(m.notice))
		b.WriteString("\n")
	}

	help := "q cancel"
	if m.finished {
		help = "q quit"
	}
	if m.lastOutput != "" && m.clipboard != nil {
		help += " • y copy last output"
	}
	b.WriteString(styles.HelpStyle.Render(help))

	return styles.AppStyle.Render(b.String())
}
