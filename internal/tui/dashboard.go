package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/agentboard/internal/domain"
)

const pollInterval = 2 * time.Second

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A855F7"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C084FC")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).MarginTop(1)

	statusStyles = map[domain.Status]lipgloss.Style{
		domain.StatusIdle:          lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")),
		domain.StatusWorking:       lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E")),
		domain.StatusNeedsApproval: lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true),
		domain.StatusDone:          lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")),
	}
)

type sessionsMsg []*domain.Session

type errMsg struct{ err error }

type tickMsg time.Time

// Dashboard is the root model: a polling session list.
type Dashboard struct {
	client   *Client
	sessions []*domain.Session
	spinner  spinner.Model
	loading  bool
	err      error
	cursor   int
	width    int
}

func NewDashboard(client *Client) *Dashboard {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#A855F7"))
	return &Dashboard{
		client:  client,
		spinner: s,
		loading: true,
	}
}

func (d *Dashboard) Init() tea.Cmd {
	return tea.Batch(d.spinner.Tick, d.fetch(), tick())
}

func (d *Dashboard) fetch() tea.Cmd {
	return func() tea.Msg {
		sessions, err := d.client.GetSessions()
		if err != nil {
			return errMsg{err}
		}
		return sessionsMsg(sessions)
	}
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionsMsg:
		d.loading = false
		d.err = nil
		d.sessions = msg
		if d.cursor >= len(d.sessions) {
			d.cursor = max(0, len(d.sessions)-1)
		}
		return d, nil

	case errMsg:
		d.loading = false
		d.err = msg.err
		return d, nil

	case tickMsg:
		return d, tea.Batch(d.fetch(), tick())

	case spinner.TickMsg:
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd

	case tea.WindowSizeMsg:
		d.width = msg.Width
		return d, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return d, tea.Quit
		case "j", "down":
			if d.cursor < len(d.sessions)-1 {
				d.cursor++
			}
		case "k", "up":
			if d.cursor > 0 {
				d.cursor--
			}
		case "r":
			d.loading = true
			return d, d.fetch()
		case "c":
			if sess := d.selected(); sess != nil {
				id := sess.ID
				return d, func() tea.Msg {
					if err := d.client.CloseSession(id); err != nil {
						return errMsg{err}
					}
					sessions, err := d.client.GetSessions()
					if err != nil {
						return errMsg{err}
					}
					return sessionsMsg(sessions)
				}
			}
		case "x":
			if sess := d.selected(); sess != nil {
				id := sess.ID
				return d, func() tea.Msg {
					if err := d.client.DeleteSession(id); err != nil {
						return errMsg{err}
					}
					sessions, err := d.client.GetSessions()
					if err != nil {
						return errMsg{err}
					}
					return sessionsMsg(sessions)
				}
			}
		}
	}

	return d, nil
}

func (d *Dashboard) selected() *domain.Session {
	if d.cursor < 0 || d.cursor >= len(d.sessions) {
		return nil
	}
	return d.sessions[d.cursor]
}

func (d *Dashboard) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("AgentBoard"))
	b.WriteString("  ")
	b.WriteString(mutedStyle.Render(summarize(d.sessions)))
	b.WriteString("\n\n")

	switch {
	case d.loading:
		b.WriteString(d.spinner.View())
		b.WriteString(mutedStyle.Render(" loading sessions..."))
	case d.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("error: %v", d.err)))
	case len(d.sessions) == 0:
		b.WriteString(mutedStyle.Render("No sessions yet. Start a CLI session to see it here."))
	default:
		for i, sess := range d.sessions {
			prefix := "  "
			if i == d.cursor {
				prefix = cursorStyle.Render("> ")
			}
			b.WriteString(prefix)
			b.WriteString(renderSession(sess))
			b.WriteString("\n")
		}
	}

	b.WriteString(helpStyle.Render("j/k move  c close  x delete  r refresh  q quit"))
	return b.String()
}

func renderSession(s *domain.Session) string {
	badge := statusStyles[s.Status].Render(string(s.Status))

	name := s.ProjectName
	if name == "" {
		name = "(no project)"
	}
	desc := s.TaskDescription
	if desc == "" {
		desc = mutedStyle.Render("no task description")
	}

	line := fmt.Sprintf("%-14s %-20s %s", badge, name, desc)
	if s.IsClosed {
		line += mutedStyle.Render("  [closed]")
	}
	if s.IsSubAgent {
		line += mutedStyle.Render("  [sub-agent]")
	}
	return line
}

// summarize is the tray-style one-line overview.
func summarize(sessions []*domain.Session) string {
	var working, approval, idle int
	for _, s := range sessions {
		if s.IsClosed {
			continue
		}
		switch s.Status {
		case domain.StatusWorking:
			working++
		case domain.StatusNeedsApproval:
			approval++
		case domain.StatusIdle:
			idle++
		}
	}
	return fmt.Sprintf("%d working · %d waiting · %d idle", working, approval, idle)
}

// Run starts the program in the alternate screen.
func Run(client *Client) error {
	_, err := tea.NewProgram(NewDashboard(client), tea.WithAltScreen()).Run()
	return err
}
