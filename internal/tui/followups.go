package tui

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"crmdeck/internal/api"
	"crmdeck/internal/model"
)

// followUpsScreen adds quotation-file upload on top of the shared
// management screen: a path prompt whose file is posted as multipart
// and attached to the selected follow-up.
type followUpsScreen struct {
	*managementScreen[model.FollowUp]
	client *api.Client

	uploadOpen bool
	uploadFor  model.FollowUp
	uploadErr  string
	pathInput  textinput.Model
}

func newFollowUpsScreen(client *api.Client) *followUpsScreen {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = "/path/to/quotation.pdf"
	in.CharLimit = 512
	return &followUpsScreen{
		managementScreen: newManagementScreen(followUpSpec(), client.FollowUps()),
		client:           client,
		pathInput:        in,
	}
}

func (s *followUpsScreen) help() string {
	return s.managementScreen.help() + "   u upload quote"
}

func (s *followUpsScreen) capturing() bool {
	return s.uploadOpen || s.managementScreen.capturing()
}

func (s *followUpsScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case uploadDoneMsg:
		if msg.err != nil {
			// Local file problems keep their real message; only remote
			// failures get the generic treatment.
			var pe *fs.PathError
			if errors.As(msg.err, &pe) {
				s.uploadErr = pe.Error()
			} else {
				s.uploadErr = api.UserMessage(msg.err)
			}
			return nil
		}
		s.uploadOpen = false
		return tea.Batch(flashCmd(flashSuccess, "Quotation uploaded"), refreshCmd(s.ctl))

	case tea.WindowSizeMsg:
		s.pathInput.Width = modalBodyWidth(msg.Width) - 4

	case tea.KeyMsg:
		if s.uploadOpen {
			return s.updateUpload(msg)
		}
		if !s.managementScreen.capturing() && msg.String() == "u" {
			f, ok := s.selectedEntity()
			if !ok {
				return nil
			}
			s.uploadOpen = true
			s.uploadFor = f
			s.uploadErr = ""
			s.pathInput.SetValue("")
			return s.pathInput.Focus()
		}
	}
	return s.managementScreen.update(msg)
}

func (s *followUpsScreen) updateUpload(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		s.uploadOpen = false
		s.pathInput.Blur()
		return nil
	case "enter":
		path := strings.TrimSpace(s.pathInput.Value())
		if path == "" {
			s.uploadErr = "Enter a file path."
			return nil
		}
		if strings.HasPrefix(path, "~/") {
			if home, err := os.UserHomeDir(); err == nil {
				path = filepath.Join(home, path[2:])
			}
		}
		followUpID := s.uploadFor.ID
		client := s.client
		return func() tea.Msg {
			f, err := os.Open(path)
			if err != nil {
				return uploadDoneMsg{err: err}
			}
			defer f.Close()
			ctx, cancel := withTimeout()
			defer cancel()
			ref, err := client.UploadQuotationFile(ctx, followUpID, filepath.Base(path), f)
			return uploadDoneMsg{fileRef: ref, err: err}
		}
	}
	var cmd tea.Cmd
	s.pathInput, cmd = s.pathInput.Update(msg)
	return cmd
}

func (s *followUpsScreen) view() string {
	if !s.uploadOpen {
		return s.managementScreen.view()
	}
	bodyW := modalBodyWidth(s.width)
	rows := []string{
		renderInputLine(bodyW, s.pathInput.View()),
	}
	if s.uploadErr != "" {
		rows = append(rows, styleError().Background(colorSurfaceBg).Width(bodyW).Render(s.uploadErr))
	}
	rows = append(rows, "", styleMuted().Width(bodyW).Render("enter: upload   esc: cancel"))
	title := "Upload quotation for " + s.uploadFor.ClientName
	return s.placeCentered(renderModalBox(s.width, title, strings.Join(rows, "\n")))
}
