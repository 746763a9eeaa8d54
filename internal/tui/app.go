package tui

import (
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"crmdeck/internal/api"
	"crmdeck/internal/session"
)

// Rows consumed by the app chrome around the active screen: header,
// tab bar, blank, footer.
const chromeHeight = 4

const flashTTL = 4 * time.Second

type appModel struct {
	screens []screen
	active  int

	username  string
	serverURL string

	flashText string
	flashKind flashKind
	flashSeq  int

	width, height int
}

func newAppModel(client *api.Client, sess session.Session) appModel {
	screens := []screen{
		newDashboardScreen(client, sess.User),
		newLeadsScreen(client),
		newFollowUpsScreen(client),
		newManagementScreen(assignmentSpec(), client.Assignments()),
		newUsersScreen(client),
		newManagementScreen(paymentSpec(), client.Payments()),
		newQuoteScreen(client),
		newManagementScreen(projectSpec(), client.Projects()),
		newManagementScreen(notificationSpec(), client.Notifications()),
	}
	return appModel{
		screens:   screens,
		username:  sess.User.Username,
		serverURL: client.BaseURL(),
		width:     80,
		height:    24,
	}
}

func (m appModel) Init() tea.Cmd {
	return m.screens[0].init()
}

// switchTo activates a tab and reloads it, so revisited tabs never show
// stale data. A response still in flight from an earlier visit is
// discarded by the refresh generation.
func (m *appModel) switchTo(i int) tea.Cmd {
	if i < 0 || i >= len(m.screens) {
		return nil
	}
	m.active = i
	return m.screens[i].init()
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case flashMsg:
		m.flashText = msg.text
		m.flashKind = msg.kind
		m.flashSeq++
		seq := m.flashSeq
		return m, tea.Tick(flashTTL, func(time.Time) tea.Msg { return flashDoneMsg{seq: seq} })

	case flashDoneMsg:
		if msg.seq == m.flashSeq {
			m.flashText = ""
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		inner := msg
		inner.Height = msg.Height - chromeHeight
		var cmds []tea.Cmd
		for _, s := range m.screens {
			if cmd := s.update(inner); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		active := m.screens[m.active]
		if !active.capturing() {
			switch key := msg.String(); key {
			case "q":
				return m, tea.Quit
			case "tab", "]":
				return m, m.switchTo((m.active + 1) % len(m.screens))
			case "shift+tab", "[":
				return m, m.switchTo((m.active - 1 + len(m.screens)) % len(m.screens))
			default:
				if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(m.screens) {
					return m, m.switchTo(n - 1)
				}
			}
		}
		return m, active.update(msg)
	}

	// Async completions fan out to every screen; each message type has
	// exactly one owner, so the rest ignore it.
	var cmds []tea.Cmd
	for _, s := range m.screens {
		if cmd := s.update(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m appModel) View() string {
	headStyle := lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	header := headStyle.Render("crmdeck") + "  " +
		styleMuted().Render(m.username+" @ "+m.serverURL)

	tabActive := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorAccentFg).
		Background(colorAccent).
		Padding(0, 1)
	tabIdle := lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)

	var tabs []string
	for i, s := range m.screens {
		label := strconv.Itoa(i+1) + " " + s.title()
		if i == m.active {
			tabs = append(tabs, tabActive.Render(label))
		} else {
			tabs = append(tabs, tabIdle.Render(label))
		}
	}
	tabBar := truncLine(strings.Join(tabs, " "), m.width)

	bodyH := m.height - chromeHeight
	if bodyH < 1 {
		bodyH = 1
	}
	body := lipgloss.Place(m.width, bodyH, lipgloss.Left, lipgloss.Top, m.screens[m.active].view())

	footer := styleMuted().Render(m.screens[m.active].help() + "   tab: next screen   q: quit")
	if m.flashText != "" {
		st := styleMuted()
		switch m.flashKind {
		case flashSuccess:
			st = lipgloss.NewStyle().Foreground(colorSuccess)
		case flashError:
			st = styleError()
		}
		footer = st.Render(m.flashText)
	}

	return strings.Join([]string{header, tabBar, body, truncLine(footer, m.width)}, "\n")
}
