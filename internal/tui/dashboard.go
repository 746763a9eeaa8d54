package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"crmdeck/internal/api"
	"crmdeck/internal/model"
)

// dashboardScreen shows the stat cards and the monthly follow-up
// outcome series.
type dashboardScreen struct {
	client *api.Client
	user   model.SessionUser

	stats   model.DashboardStats
	loaded  bool
	loadErr string

	width, height int
}

func newDashboardScreen(client *api.Client, user model.SessionUser) *dashboardScreen {
	return &dashboardScreen{client: client, user: user, width: 80, height: 24}
}

func (s *dashboardScreen) title() string   { return "Dashboard" }
func (s *dashboardScreen) capturing() bool { return false }
func (s *dashboardScreen) help() string    { return "r refresh" }

func (s *dashboardScreen) init() tea.Cmd { return s.loadCmd() }

func (s *dashboardScreen) loadCmd() tea.Cmd {
	client := s.client
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		stats, err := client.DashboardStats(ctx)
		return statsLoadedMsg{stats: stats, err: err}
	}
}

func (s *dashboardScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width, s.height = msg.Width, msg.Height
	case statsLoadedMsg:
		if msg.err != nil {
			s.loadErr = api.UserMessage(msg.err)
			return nil
		}
		s.loadErr = ""
		s.loaded = true
		s.stats = msg.stats
	case tea.KeyMsg:
		if msg.String() == "r" {
			return s.loadCmd()
		}
	}
	return nil
}

func statCard(label string, value int) string {
	return lipgloss.NewStyle().
		Foreground(colorSurfaceFg).
		Background(colorSurfaceBg).
		Padding(0, 2).
		Render(fmt.Sprintf("%s\n%d", label, value))
}

func (s *dashboardScreen) view() string {
	var b strings.Builder

	greet := "Welcome"
	if s.user.Username != "" {
		greet = "Welcome, " + s.user.Username
	}
	b.WriteString(greet)
	b.WriteString("\n\n")

	if s.loadErr != "" {
		b.WriteString(styleError().Render(s.loadErr))
		b.WriteString("\n")
		b.WriteString(styleMuted().Render("r to retry"))
		return b.String()
	}
	if !s.loaded {
		b.WriteString(styleMuted().Render("Loading…"))
		return b.String()
	}

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		statCard("Leads", s.stats.TotalLeads), "  ",
		statCard("Quotations", s.stats.TotalQuotations), "  ",
		statCard("Follow-ups", s.stats.TotalFollowUps),
	)
	b.WriteString(cards)
	b.WriteString("\n\n")

	if len(s.stats.Monthly) > 0 {
		b.WriteString("Follow-up outcomes by month\n")
		b.WriteString(s.renderMonthly())
	}
	return b.String()
}

// renderMonthly draws one line per month with stacked approved and
// rejected bars, scaled to the widest month.
func (s *dashboardScreen) renderMonthly() string {
	maxCount := 1
	for _, m := range s.stats.Monthly {
		if m.Approved > maxCount {
			maxCount = m.Approved
		}
		if m.Rejected > maxCount {
			maxCount = m.Rejected
		}
	}
	barW := s.width - 30
	if barW > 40 {
		barW = 40
	}
	if barW < 10 {
		barW = 10
	}

	okStyle := lipgloss.NewStyle().Foreground(colorSuccess)
	badStyle := lipgloss.NewStyle().Foreground(colorError)

	var lines []string
	for _, m := range s.stats.Monthly {
		ok := m.Approved * barW / maxCount
		bad := m.Rejected * barW / maxCount
		lines = append(lines, fmt.Sprintf("%-4s %s%s %s",
			m.Month,
			okStyle.Render(strings.Repeat("█", ok)),
			badStyle.Render(strings.Repeat("▒", bad)),
			styleMuted().Render(fmt.Sprintf("%d ok / %d rejected", m.Approved, m.Rejected)),
		))
	}
	return strings.Join(lines, "\n")
}
