package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"crmdeck/internal/api"
	"crmdeck/internal/listctl"
)

// screen is one tab of the console. The app model forwards key events
// to the active screen only; async completion messages go to every
// screen and are matched by their (usually generic) message type.
type screen interface {
	title() string
	init() tea.Cmd
	update(msg tea.Msg) tea.Cmd
	view() string
	// capturing reports whether the screen owns all key input right
	// now (open modal or focused search), which suppresses global
	// keybindings like tab switching.
	capturing() bool
	help() string
}

type formFieldKind int

const (
	fieldText formFieldKind = iota
	fieldSelect
)

// formField maps one entity attribute onto a form control. key matches
// the field-error keys produced by the entity's validation.
type formField[E listctl.Entity] struct {
	key     string
	label   string
	kind    formFieldKind
	options []string
	get     func(E) string
	set     func(*E, string)
}

type screenSpec[E listctl.Entity] struct {
	name     string
	singular string
	columns  []column[E]
	fields   []formField[E]
}

// managementScreen is the shared list/search/CRUD screen. All state
// transitions run through the controller; the screen only translates
// keys into controller calls and controller state into a view.
type managementScreen[E listctl.Entity] struct {
	spec screenSpec[E]
	ctl  *listctl.Controller[E]

	search    textinput.Model
	searching bool
	cursor    int

	inputs   []textinput.Model
	selIdx   []int
	focusIdx int

	confirmFocus confirmModalFocus

	width, height int
}

func newManagementScreen[E listctl.Entity](spec screenSpec[E], store listctl.Store[E]) *managementScreen[E] {
	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "search"
	search.CharLimit = 128
	return &managementScreen[E]{
		spec:   spec,
		ctl:    listctl.New(store),
		search: search,
		width:  80,
		height: 24,
	}
}

func (s *managementScreen[E]) title() string { return s.spec.name }

func (s *managementScreen[E]) init() tea.Cmd { return refreshCmd(s.ctl) }

func (s *managementScreen[E]) capturing() bool {
	if s.ctl.Form() != nil || s.searching {
		return true
	}
	_, pending := s.ctl.DeleteIntent()
	return pending
}

func (s *managementScreen[E]) help() string {
	return "/ search   a add   e edit   d delete   r refresh   h/l page   j/k move"
}

func (s *managementScreen[E]) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width, s.height = msg.Width, msg.Height
		s.search.Width = min(40, max(10, msg.Width-20))
		return nil

	case listLoadedMsg[E]:
		if s.ctl.ApplyRefresh(msg.gen, msg.items, msg.err) {
			s.clampCursor()
			return nil
		}
		// Stale generations are dropped silently; only a failure of
		// the latest refresh is worth a banner.
		if msg.err != nil && msg.gen == s.ctl.RefreshGen() {
			return flashCmd(flashError, api.UserMessage(msg.err))
		}
		return nil

	case saveDoneMsg[E]:
		refresh := s.ctl.ApplySave(msg.ticket, msg.err)
		if msg.err != nil {
			return flashCmd(flashError, api.UserMessage(msg.err))
		}
		if !refresh {
			return nil
		}
		verb := "added"
		if msg.ticket.Mode == listctl.ModeEdit {
			verb = "updated"
		}
		return tea.Batch(
			flashCmd(flashSuccess, s.spec.singular+" "+verb),
			refreshCmd(s.ctl),
		)

	case deleteDoneMsg[E]:
		refresh := s.ctl.ApplyDelete(msg.ticket, msg.err)
		if msg.err != nil {
			return flashCmd(flashError, api.UserMessage(msg.err))
		}
		if !refresh {
			return nil
		}
		s.clampCursor()
		return tea.Batch(
			flashCmd(flashSuccess, s.spec.singular+" deleted"),
			refreshCmd(s.ctl),
		)

	case tea.KeyMsg:
		if s.ctl.Form() != nil {
			return s.updateForm(msg)
		}
		if _, pending := s.ctl.DeleteIntent(); pending {
			return s.updateConfirm(msg)
		}
		if s.searching {
			return s.updateSearch(msg)
		}
		return s.updateList(msg)
	}
	return nil
}

func (s *managementScreen[E]) updateList(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "/":
		s.searching = true
		return s.search.Focus()
	case "j", "down":
		s.cursor++
		s.clampCursor()
	case "k", "up":
		s.cursor--
		s.clampCursor()
	case "h", "left":
		s.ctl.PrevPage()
		s.cursor = 0
	case "l", "right":
		s.ctl.NextPage()
		s.cursor = 0
	case "g":
		s.ctl.FirstPage()
		s.cursor = 0
	case "G":
		s.ctl.LastPage()
		s.cursor = 0
	case "r":
		return refreshCmd(s.ctl)
	case "a":
		s.ctl.BeginCreate()
		return s.openFormInputs()
	case "e", "enter":
		e, ok := s.selectedEntity()
		if !ok {
			return nil
		}
		if !s.ctl.BeginEdit(e.EntityID()) {
			return nil
		}
		return s.openFormInputs()
	case "d":
		e, ok := s.selectedEntity()
		if !ok {
			return nil
		}
		if s.ctl.BeginDelete(e.EntityID()) {
			s.confirmFocus = confirmFocusCancel
		}
	}
	return nil
}

func (s *managementScreen[E]) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		s.searching = false
		s.search.Blur()
		s.search.SetValue("")
		s.ctl.SetSearchText("")
		s.cursor = 0
		return nil
	case "enter":
		s.searching = false
		s.search.Blur()
		return nil
	}
	var cmd tea.Cmd
	s.search, cmd = s.search.Update(msg)
	// Filtering is live: every keystroke narrows the list and resets
	// the page, matching how the search box behaves on the web.
	s.ctl.SetSearchText(s.search.Value())
	s.cursor = 0
	return cmd
}

func (s *managementScreen[E]) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "left", "right", "h", "l":
		if s.confirmFocus == confirmFocusConfirm {
			s.confirmFocus = confirmFocusCancel
		} else {
			s.confirmFocus = confirmFocusConfirm
		}
		return nil
	case "esc", "n":
		s.ctl.CancelDelete()
		return nil
	case "y":
		return s.issueDelete()
	case "enter":
		if s.confirmFocus == confirmFocusConfirm {
			return s.issueDelete()
		}
		s.ctl.CancelDelete()
		return nil
	}
	return nil
}

func (s *managementScreen[E]) issueDelete() tea.Cmd {
	t, err := s.ctl.ConfirmDelete()
	if err != nil {
		if errors.Is(err, listctl.ErrBusy) {
			return flashCmd(flashError, "Another operation is still running")
		}
		return nil
	}
	return deleteCmd(s.ctl.Store(), t)
}

func (s *managementScreen[E]) updateForm(msg tea.KeyMsg) tea.Cmd {
	fields := s.spec.fields
	switch msg.String() {
	case "esc":
		s.ctl.CancelForm()
		return nil
	case "tab", "down":
		return s.focusField((s.focusIdx + 1) % len(fields))
	case "shift+tab", "up":
		return s.focusField((s.focusIdx - 1 + len(fields)) % len(fields))
	case "ctrl+s":
		return s.attemptSave()
	case "enter":
		if s.focusIdx == len(fields)-1 {
			return s.attemptSave()
		}
		return s.focusField(s.focusIdx + 1)
	}

	fld := fields[s.focusIdx]
	if fld.kind == fieldSelect {
		switch msg.String() {
		case "left", "h":
			s.selIdx[s.focusIdx] = (s.selIdx[s.focusIdx] - 1 + len(fld.options)) % len(fld.options)
		case "right", "l", " ":
			s.selIdx[s.focusIdx] = (s.selIdx[s.focusIdx] + 1) % len(fld.options)
		}
		return nil
	}

	var cmd tea.Cmd
	s.inputs[s.focusIdx], cmd = s.inputs[s.focusIdx].Update(msg)
	return cmd
}

func (s *managementScreen[E]) openFormInputs() tea.Cmd {
	f := s.ctl.Form()
	if f == nil {
		return nil
	}
	s.inputs = make([]textinput.Model, len(s.spec.fields))
	s.selIdx = make([]int, len(s.spec.fields))
	for i, fld := range s.spec.fields {
		val := fld.get(f.Draft)
		switch fld.kind {
		case fieldText:
			in := textinput.New()
			in.Prompt = ""
			in.CharLimit = 256
			in.Width = modalBodyWidth(s.width) - 4
			in.SetValue(val)
			s.inputs[i] = in
		case fieldSelect:
			s.selIdx[i] = 0
			for oi, opt := range fld.options {
				if opt == val {
					s.selIdx[i] = oi
					break
				}
			}
		}
	}
	s.focusIdx = 0
	return s.focusField(0)
}

func (s *managementScreen[E]) focusField(idx int) tea.Cmd {
	for i := range s.inputs {
		s.inputs[i].Blur()
	}
	s.focusIdx = idx
	if s.spec.fields[idx].kind == fieldText {
		return s.inputs[idx].Focus()
	}
	return nil
}

// attemptSave writes the controls back into the draft and asks the
// controller to save. Validation failures render inline; no command is
// issued for them.
func (s *managementScreen[E]) attemptSave() tea.Cmd {
	f := s.ctl.Form()
	if f == nil {
		return nil
	}
	draft := f.Draft
	for i, fld := range s.spec.fields {
		switch fld.kind {
		case fieldText:
			fld.set(&draft, strings.TrimSpace(s.inputs[i].Value()))
		case fieldSelect:
			fld.set(&draft, fld.options[s.selIdx[i]])
		}
	}
	s.ctl.SetDraft(draft)

	t, err := s.ctl.BeginSave()
	if err != nil {
		var ve *listctl.ValidationError
		if errors.As(err, &ve) {
			return nil
		}
		if errors.Is(err, listctl.ErrBusy) {
			return flashCmd(flashError, "Another operation is still running")
		}
		return nil
	}
	return saveCmd(s.ctl.Store(), t)
}

func (s *managementScreen[E]) selectedEntity() (E, bool) {
	page := s.ctl.Page()
	if s.cursor >= 0 && s.cursor < len(page.Items) {
		return page.Items[s.cursor], true
	}
	var zero E
	return zero, false
}

func (s *managementScreen[E]) clampCursor() {
	n := len(s.ctl.Page().Items)
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (s *managementScreen[E]) view() string {
	if f := s.ctl.Form(); f != nil {
		return s.viewForm(f)
	}
	if id, pending := s.ctl.DeleteIntent(); pending {
		body := fmt.Sprintf("Delete this %s?", strings.ToLower(s.spec.singular))
		if e, ok := s.ctl.Find(id); ok {
			body = fmt.Sprintf("Delete %q?", firstSearchField(e))
		}
		return s.placeCentered(renderConfirmModal(s.width, "Confirm delete", body, "Delete", "Cancel", s.confirmFocus))
	}
	return s.viewList()
}

// firstSearchField gives a human handle for confirm prompts: the first
// of the entity's searchable fields (its name, in practice).
func firstSearchField(e listctl.Entity) string {
	text := e.SearchText()
	if i := strings.IndexAny(text, " "); i > 0 {
		return text[:i]
	}
	return text
}

func (s *managementScreen[E]) viewList() string {
	var b strings.Builder

	searchLine := s.search.View()
	if !s.searching && s.search.Value() == "" {
		searchLine = styleMuted().Render("/ to search")
	}
	if s.ctl.Busy() {
		searchLine += "   " + styleMuted().Render("working…")
	}
	b.WriteString(searchLine)
	b.WriteString("\n\n")

	page := s.ctl.Page()
	if len(page.Items) == 0 {
		empty := "No records yet. Press a to add one."
		if s.ctl.SearchText() != "" {
			empty = "No matches."
		}
		b.WriteString(styleMuted().Render(empty))
	} else {
		b.WriteString(renderTable(s.spec.columns, page.Items, s.cursor, s.width-2))
	}
	b.WriteString("\n\n")
	b.WriteString(styleMuted().Render(fmt.Sprintf("page %d/%d · %d records", page.PageIndex, page.TotalPages, page.TotalMatches)))
	return b.String()
}

func (s *managementScreen[E]) viewForm(f *listctl.Form[E]) string {
	bodyW := modalBodyWidth(s.width)
	labelStyle := lipgloss.NewStyle().Foreground(colorSurfaceFg).Background(colorSurfaceBg)
	labelActive := labelStyle.Bold(true).Foreground(colorAccent)

	var rows []string
	for i, fld := range s.spec.fields {
		label := fld.label
		st := labelStyle
		if i == s.focusIdx {
			st = labelActive
		}
		rows = append(rows, st.Render(label))

		switch fld.kind {
		case fieldText:
			rows = append(rows, renderInputLine(bodyW, s.inputs[i].View()))
		case fieldSelect:
			opt := fld.options[s.selIdx[i]]
			marker := "  "
			if i == s.focusIdx {
				marker = "‹ "
				opt += " ›"
			}
			rows = append(rows, renderInputLine(bodyW, marker+opt))
		}
		if msg, ok := f.FieldErrors[fld.key]; ok {
			rows = append(rows, styleError().Background(colorSurfaceBg).Render("  "+msg))
		}
		rows = append(rows, "")
	}

	if f.RemoteErr != nil {
		rows = append(rows, styleError().Background(colorSurfaceBg).Width(bodyW).Render(api.UserMessage(f.RemoteErr)), "")
	}

	action := "Add"
	title := "New " + strings.ToLower(s.spec.singular)
	if f.Mode == listctl.ModeEdit {
		action = "Save"
		title = "Edit " + strings.ToLower(s.spec.singular)
	}
	rows = append(rows, styleMuted().Width(bodyW).Render(
		fmt.Sprintf("tab: next field   ctrl+s: %s   esc: cancel", strings.ToLower(action))))

	return s.placeCentered(renderModalBox(s.width, title, strings.Join(rows, "\n")))
}

func (s *managementScreen[E]) placeCentered(content string) string {
	h := s.height - chromeHeight
	if h < lipgloss.Height(content) {
		return content
	}
	return lipgloss.Place(s.width, h, lipgloss.Center, lipgloss.Center, content)
}
