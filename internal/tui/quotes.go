package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"crmdeck/internal/api"
	"crmdeck/internal/listctl"
	"crmdeck/internal/model"
	"crmdeck/internal/quote"
)

func quotationSpec() screenSpec[model.Quotation] {
	return screenSpec[model.Quotation]{
		name:     "Quotations",
		singular: "Quotation",
		columns: []column[model.Quotation]{
			{"Number", 18, func(q model.Quotation) string { return q.Number }},
			{"Lead", 16, func(q model.Quotation) string { return q.LeadName }},
			{"Company", 16, func(q model.Quotation) string { return q.Company }},
			{"Total", 10, func(q model.Quotation) string { return formatAmount(q.Total) }},
			{"Status", 9, func(q model.Quotation) string { return string(q.Status) }},
			{"Date", 10, func(q model.Quotation) string { return q.Date }},
		},
		// The form is the line-item editor below, not the generic one.
	}
}

// Header controls of the quotation editor, in focus order. Line-item
// cells follow after these.
type quoteHeaderField int

const (
	qhLeadName quoteHeaderField = iota
	qhCompany
	qhDate
	qhValidUntil
	qhStatus
	qhNotes
	quoteHeaderCount
)

var quoteHeaderLabels = [quoteHeaderCount]string{
	"Lead name", "Company", "Date (YYYY-MM-DD)", "Valid until (YYYY-MM-DD)", "Status", "Notes",
}

// quoteControl addresses one focusable control: a header field when
// itemID is empty, otherwise one cell of that line item.
type quoteControl struct {
	header quoteHeaderField
	itemID string
	field  quote.ItemField
}

// quoteScreen wraps the shared management screen with a line-item
// editor (replacing the generic field form) and a read-only detail
// modal with glamour-rendered notes.
type quoteScreen struct {
	*managementScreen[model.Quotation]
	calc *quote.Calculator

	input    textinput.Model
	focus    int
	statusIx int

	viewOpen bool
	viewQ    model.Quotation
}

func newQuoteScreen(client *api.Client) *quoteScreen {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 512
	return &quoteScreen{
		managementScreen: newManagementScreen(quotationSpec(), client.Quotations()),
		input:            in,
	}
}

func (s *quoteScreen) help() string {
	return "/ search   a add   e edit   v view   d delete   r refresh   h/l page   j/k move"
}

func (s *quoteScreen) capturing() bool {
	return s.viewOpen || s.managementScreen.capturing()
}

func (s *quoteScreen) update(msg tea.Msg) tea.Cmd {
	if w, ok := msg.(tea.WindowSizeMsg); ok {
		s.input.Width = modalBodyWidth(w.Width) - 4
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		if s.viewOpen {
			switch key.String() {
			case "esc", "q", "enter", "v":
				s.viewOpen = false
			}
			return nil
		}
		if s.ctl.Form() != nil {
			return s.updateEditor(key)
		}
		if !s.managementScreen.capturing() {
			switch key.String() {
			case "a":
				s.ctl.BeginCreate()
				s.openEditor(quote.NewDraft(time.Now()))
				return s.input.Focus()
			case "e", "enter":
				q, ok := s.selectedEntity()
				if !ok {
					return nil
				}
				if !s.ctl.BeginEdit(q.EntityID()) {
					return nil
				}
				s.openEditor(quote.Edit(s.ctl.Form().Draft))
				return s.input.Focus()
			case "v":
				q, ok := s.selectedEntity()
				if !ok {
					return nil
				}
				s.viewOpen = true
				s.viewQ = q
				return nil
			}
		}
	}
	return s.managementScreen.update(msg)
}

func (s *quoteScreen) openEditor(calc *quote.Calculator) {
	s.calc = calc
	s.focus = 0
	q := calc.Snapshot()
	s.statusIx = 0
	for i, st := range model.QuotationStatuses() {
		if st == q.Status {
			s.statusIx = i
		}
	}
	s.loadFocusedValue()
}

func (s *quoteScreen) controls() []quoteControl {
	out := make([]quoteControl, 0, int(quoteHeaderCount)+3*len(s.calc.Items()))
	for h := quoteHeaderField(0); h < quoteHeaderCount; h++ {
		out = append(out, quoteControl{header: h})
	}
	for _, it := range s.calc.Items() {
		out = append(out,
			quoteControl{itemID: it.ID, field: quote.FieldDescription},
			quoteControl{itemID: it.ID, field: quote.FieldQuantity},
			quoteControl{itemID: it.ID, field: quote.FieldRate},
		)
	}
	return out
}

// loadFocusedValue seeds the single shared input from the focused
// control's current value.
func (s *quoteScreen) loadFocusedValue() {
	ctrl := s.controls()[s.focus]
	q := s.calc.Snapshot()
	var v string
	if ctrl.itemID == "" {
		switch ctrl.header {
		case qhLeadName:
			v = q.LeadName
		case qhCompany:
			v = q.Company
		case qhDate:
			v = q.Date
		case qhValidUntil:
			v = q.ValidUntil
		case qhNotes:
			v = q.Notes
		case qhStatus:
			// select control, no text input
		}
	} else {
		for _, it := range q.Items {
			if it.ID != ctrl.itemID {
				continue
			}
			switch ctrl.field {
			case quote.FieldDescription:
				v = it.Description
			case quote.FieldQuantity:
				v = formatAmount(it.Quantity)
			case quote.FieldRate:
				v = formatAmount(it.Rate)
			}
		}
	}
	s.input.SetValue(v)
	s.input.CursorEnd()
}

// commitFocusedValue writes the input back into the calculator, which
// recomputes amounts and totals.
func (s *quoteScreen) commitFocusedValue() {
	ctrl := s.controls()[s.focus]
	v := s.input.Value()
	if ctrl.itemID == "" {
		switch ctrl.header {
		case qhLeadName:
			s.calc.SetLeadName(strings.TrimSpace(v))
		case qhCompany:
			s.calc.SetCompany(strings.TrimSpace(v))
		case qhDate:
			s.calc.SetDate(strings.TrimSpace(v))
		case qhValidUntil:
			s.calc.SetValidUntil(strings.TrimSpace(v))
		case qhNotes:
			s.calc.SetNotes(v)
		}
		return
	}
	s.calc.UpdateItem(ctrl.itemID, ctrl.field, v)
}

func (s *quoteScreen) moveFocus(delta int) {
	s.commitFocusedValue()
	n := len(s.controls())
	s.focus = (s.focus + delta + n) % n
	s.loadFocusedValue()
}

func (s *quoteScreen) updateEditor(msg tea.KeyMsg) tea.Cmd {
	statuses := model.QuotationStatuses()
	ctrl := s.controls()[s.focus]

	switch msg.String() {
	case "esc":
		s.ctl.CancelForm()
		s.calc = nil
		return nil
	case "tab", "down", "enter":
		s.moveFocus(1)
		return nil
	case "shift+tab", "up":
		s.moveFocus(-1)
		return nil
	case "ctrl+n":
		s.commitFocusedValue()
		it := s.calc.AddItem()
		// Jump to the new item's description cell.
		for i, c := range s.controls() {
			if c.itemID == it.ID && c.field == quote.FieldDescription {
				s.focus = i
				break
			}
		}
		s.loadFocusedValue()
		return nil
	case "ctrl+d":
		if ctrl.itemID != "" {
			s.calc.RemoveItem(ctrl.itemID)
			if s.focus >= len(s.controls()) {
				s.focus = len(s.controls()) - 1
			}
			s.loadFocusedValue()
		}
		return nil
	case "ctrl+s":
		return s.saveQuotation()
	}

	if ctrl.itemID == "" && ctrl.header == qhStatus {
		switch msg.String() {
		case "left", "h":
			s.statusIx = (s.statusIx - 1 + len(statuses)) % len(statuses)
			s.calc.SetStatus(statuses[s.statusIx])
		case "right", "l", " ":
			s.statusIx = (s.statusIx + 1) % len(statuses)
			s.calc.SetStatus(statuses[s.statusIx])
		}
		return nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return cmd
}

func (s *quoteScreen) saveQuotation() tea.Cmd {
	s.commitFocusedValue()
	s.ctl.SetDraft(s.calc.Snapshot())
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

func (s *quoteScreen) view() string {
	if s.viewOpen {
		return s.viewDetail()
	}
	if f := s.ctl.Form(); f != nil && s.calc != nil {
		return s.viewEditor(f)
	}
	return s.managementScreen.view()
}

func (s *quoteScreen) viewEditor(f *listctl.Form[model.Quotation]) string {
	bodyW := modalBodyWidth(s.width)
	labelStyle := lipgloss.NewStyle().Foreground(colorSurfaceFg).Background(colorSurfaceBg)
	labelActive := labelStyle.Bold(true).Foreground(colorAccent)
	controls := s.controls()
	focused := controls[s.focus]

	q := s.calc.Snapshot()
	headerValues := [quoteHeaderCount]string{
		q.LeadName, q.Company, q.Date, q.ValidUntil, string(q.Status), q.Notes,
	}
	errKeys := [quoteHeaderCount]string{"leadName", "company", "date", "validUntil", "status", "notes"}

	var rows []string
	rows = append(rows, labelStyle.Render("Quotation "+q.Number), "")
	for h := quoteHeaderField(0); h < quoteHeaderCount; h++ {
		st := labelStyle
		active := focused.itemID == "" && focused.header == h
		if active {
			st = labelActive
		}
		rows = append(rows, st.Render(quoteHeaderLabels[h]))
		switch {
		case h == qhStatus:
			opt := headerValues[h]
			if active {
				opt = "‹ " + opt + " ›"
			}
			rows = append(rows, renderInputLine(bodyW, opt))
		case active:
			rows = append(rows, renderInputLine(bodyW, s.input.View()))
		default:
			rows = append(rows, renderInputLine(bodyW, headerValues[h]))
		}
		if msg, ok := f.FieldErrors[errKeys[h]]; ok {
			rows = append(rows, styleError().Background(colorSurfaceBg).Render("  "+msg))
		}
	}

	rows = append(rows, "", labelStyle.Render("Items"))
	items := q.Items
	if len(items) == 0 {
		rows = append(rows, styleMuted().Render("  none · ctrl+n adds a line"))
	}
	descW := bodyW - 34
	if descW < 10 {
		descW = 10
	}
	for _, it := range items {
		cells := []string{
			padCell(it.Description, descW),
			padCell(formatAmount(it.Quantity), 8),
			padCell(formatAmount(it.Rate), 10),
			padCell(formatAmount(it.Amount), 10),
		}
		if focused.itemID == it.ID {
			ci := 0
			switch focused.field {
			case quote.FieldQuantity:
				ci = 1
			case quote.FieldRate:
				ci = 2
			}
			cells[ci] = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render(cells[ci])
		}
		rows = append(rows, "  "+strings.Join(cells, " "))
	}
	if focused.itemID != "" {
		rows = append(rows, renderInputLine(bodyW, s.input.View()))
	}

	rows = append(rows, "",
		fmt.Sprintf("%18s %s", "Subtotal", formatAmount(s.calc.Subtotal())),
		fmt.Sprintf("%18s %s", "Tax (10%)", formatAmount(s.calc.Tax())),
		lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%18s %s", "Total", formatAmount(s.calc.Total()))),
	)

	if f.RemoteErr != nil {
		rows = append(rows, "", styleError().Background(colorSurfaceBg).Width(bodyW).Render(api.UserMessage(f.RemoteErr)))
	}
	rows = append(rows, "", styleMuted().Width(bodyW).Render(
		"tab: next   ctrl+n: add item   ctrl+d: remove item   ctrl+s: save   esc: cancel"))

	title := "New quotation"
	if f.Mode == listctl.ModeEdit {
		title = "Edit quotation"
	}
	return s.placeCentered(renderModalBox(s.width, title, strings.Join(rows, "\n")))
}

func (s *quoteScreen) viewDetail() string {
	bodyW := modalBodyWidth(s.width)
	q := s.viewQ

	var rows []string
	rows = append(rows,
		fmt.Sprintf("%s · %s", q.LeadName, q.Company),
		styleMuted().Render(fmt.Sprintf("%s · valid until %s · %s", q.Date, q.ValidUntil, q.Status)),
		"")
	descW := bodyW - 34
	if descW < 10 {
		descW = 10
	}
	for _, it := range q.Items {
		rows = append(rows, fmt.Sprintf("  %s %s %s %s",
			padCell(it.Description, descW),
			padCell(formatAmount(it.Quantity), 8),
			padCell(formatAmount(it.Rate), 10),
			padCell(formatAmount(it.Amount), 10)))
	}
	rows = append(rows, "",
		fmt.Sprintf("%18s %s", "Subtotal", formatAmount(q.Subtotal)),
		fmt.Sprintf("%18s %s", "Tax (10%)", formatAmount(q.Tax)),
		fmt.Sprintf("%18s %s", "Total", formatAmount(q.Total)),
	)
	if strings.TrimSpace(q.Notes) != "" {
		rows = append(rows, "", renderMarkdown(q.Notes, bodyW))
	}
	rows = append(rows, "", styleMuted().Render("esc: close"))

	return s.placeCentered(renderModalBox(s.width, "Quotation "+q.Number, strings.Join(rows, "\n")))
}
