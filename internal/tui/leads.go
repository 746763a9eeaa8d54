package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"crmdeck/internal/api"
	"crmdeck/internal/model"
)

// leadsScreen adds the assign-to-technician picker on top of the shared
// management screen. The picker fetches the assignable users on open
// and posts the chosen pairing; the created assignment shows up on the
// Assignments tab after its next refresh.
type leadsScreen struct {
	*managementScreen[model.Lead]
	client *api.Client

	pickerOpen  bool
	pickerLead  model.Lead
	techs       []model.Technician
	techCursor  int
	techLoading bool
}

func newLeadsScreen(client *api.Client) *leadsScreen {
	return &leadsScreen{
		managementScreen: newManagementScreen(leadSpec(), client.Leads()),
		client:           client,
	}
}

func (s *leadsScreen) help() string {
	return s.managementScreen.help() + "   t assign"
}

func (s *leadsScreen) capturing() bool {
	return s.pickerOpen || s.managementScreen.capturing()
}

func (s *leadsScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case techniciansLoadedMsg:
		if !s.pickerOpen {
			return nil
		}
		s.techLoading = false
		if msg.err != nil {
			s.pickerOpen = false
			return flashCmd(flashError, api.UserMessage(msg.err))
		}
		s.techs = msg.techs
		s.techCursor = 0
		return nil

	case assignDoneMsg:
		if msg.err != nil {
			return flashCmd(flashError, api.UserMessage(msg.err))
		}
		return flashCmd(flashSuccess, "Lead assigned")

	case tea.KeyMsg:
		if s.pickerOpen {
			return s.updatePicker(msg)
		}
		if !s.managementScreen.capturing() && msg.String() == "t" {
			lead, ok := s.selectedEntity()
			if !ok {
				return nil
			}
			s.pickerOpen = true
			s.pickerLead = lead
			s.techs = nil
			s.techLoading = true
			client := s.client
			return func() tea.Msg {
				ctx, cancel := withTimeout()
				defer cancel()
				techs, err := client.AssignableUsers(ctx)
				return techniciansLoadedMsg{techs: techs, err: err}
			}
		}
	}
	return s.managementScreen.update(msg)
}

func (s *leadsScreen) updatePicker(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		s.pickerOpen = false
		return nil
	case "j", "down":
		if s.techCursor < len(s.techs)-1 {
			s.techCursor++
		}
		return nil
	case "k", "up":
		if s.techCursor > 0 {
			s.techCursor--
		}
		return nil
	case "enter":
		if s.techLoading || s.techCursor >= len(s.techs) {
			return nil
		}
		leadID := s.pickerLead.ID
		techID := s.techs[s.techCursor].ID
		s.pickerOpen = false
		client := s.client
		return func() tea.Msg {
			ctx, cancel := withTimeout()
			defer cancel()
			return assignDoneMsg{err: client.AssignLead(ctx, leadID, techID)}
		}
	}
	return nil
}

func (s *leadsScreen) view() string {
	if !s.pickerOpen {
		return s.managementScreen.view()
	}

	var rows []string
	switch {
	case s.techLoading:
		rows = append(rows, styleMuted().Render("Loading users…"))
	case len(s.techs) == 0:
		rows = append(rows, styleMuted().Render("No assignable users."))
	default:
		for i, t := range s.techs {
			line := fmt.Sprintf("%-20s %s", t.Username, t.Mobile)
			if i == s.techCursor {
				line = "› " + line
			} else {
				line = "  " + line
			}
			rows = append(rows, line)
		}
	}
	rows = append(rows, "", styleMuted().Render("enter: assign   esc: cancel"))

	title := "Assign " + s.pickerLead.Name
	return s.placeCentered(renderModalBox(s.width, title, strings.Join(rows, "\n")))
}
