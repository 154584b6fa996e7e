// Package tui shows conversion progress in the terminal.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/wikivault/internal/convert"
	"github.com/gerunddev/wikivault/internal/styles"
)

// maxNotices is how many recent problem pages stay on screen
const maxNotices = 5

// PageMsg is sent after each page is handled
type PageMsg struct {
	Done    int
	Total   int
	Outcome convert.Outcome
	Err     error
}

// DoneMsg is sent when the run has finished
type DoneMsg struct {
	Result *convert.Result
	Err    error
}

// ConvertModel is the Bubble Tea model for the conversion progress display
type ConvertModel struct {
	spinner  spinner.Model
	progress progress.Model
	input    string
	cancel   context.CancelFunc

	done      int
	total     int
	converted int
	skipped   int
	failed    int
	current   string
	notices   []string

	stopping bool
	complete bool
	result   *convert.Result
	err      error
}

// InitConvertModel creates a progress model for converting input. cancel
// is called when the user asks to stop.
func InitConvertModel(input string, cancel context.CancelFunc) ConvertModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.TitleStyle

	return ConvertModel{
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		input:    input,
		cancel:   cancel,
	}
}

func (m ConvertModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m ConvertModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			// The run stops after the current page and sends DoneMsg
			if !m.stopping && m.cancel != nil {
				m.cancel()
			}
			m.stopping = true
			return m, nil
		}

	case PageMsg:
		m.done, m.total = msg.Done, msg.Total
		m.current = msg.Outcome.Title
		switch {
		case msg.Err != nil:
			m.failed++
			m.notice(styles.ErrorStyle.Render("✗ " + msg.Err.Error()))
		case msg.Outcome.Skipped():
			m.skipped++
		default:
			m.converted++
			if msg.Outcome.RenderFailed {
				m.notice(styles.WarningStyle.Render("⚠ " + msg.Outcome.Title + ": kept raw markup"))
			}
			if msg.Outcome.MediaFailed > 0 {
				m.notice(styles.WarningStyle.Render(fmt.Sprintf("⚠ %s: %d media not found", msg.Outcome.Title, msg.Outcome.MediaFailed)))
			}
		}
		return m, nil

	case DoneMsg:
		m.complete = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *ConvertModel) notice(line string) {
	m.notices = append(m.notices, line)
	if len(m.notices) > maxNotices {
		m.notices = m.notices[len(m.notices)-maxNotices:]
	}
}

func (m ConvertModel) View() string {
	if m.complete {
		return styles.DimStyle.Render(fmt.Sprintf("Processed %d of %d pages", m.done, m.total)) + "\n"
	}

	var b strings.Builder
	status := "Converting " + m.input
	if m.stopping {
		status = "Stopping after the current page..."
	}
	fmt.Fprintf(&b, "\n%s %s\n\n", m.spinner.View(), status)

	fraction := 0.0
	if m.total > 0 {
		fraction = float64(m.done) / float64(m.total)
	}
	fmt.Fprintf(&b, "%s %d/%d\n", m.progress.ViewAs(fraction), m.done, m.total)
	fmt.Fprintf(&b, "%s\n",
		styles.DimStyle.Render(fmt.Sprintf("%d converted, %d skipped, %d failed", m.converted, m.skipped, m.failed)))
	if m.current != "" {
		b.WriteString(styles.DimStyle.Render("Last: ") + styles.HighlightStyle.Render(m.current) + "\n")
	}

	if len(m.notices) > 0 {
		b.WriteString("\n" + strings.Join(m.notices, "\n") + "\n")
	}

	b.WriteString("\n" + styles.HelpStyle.Render("ctrl+c / q: stop") + "\n")
	return b.String()
}

// Result returns the finished run, once DoneMsg has arrived
func (m ConvertModel) Result() (*convert.Result, error) {
	return m.result, m.err
}
