package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"crmdeck/internal/model"
)

type fakeLeadStore struct {
	leads  []model.Lead
	nextID int

	listCalls   int
	createCalls int
	updateCalls int
	deleteCalls int

	fail error
}

func (s *fakeLeadStore) List(context.Context) ([]model.Lead, error) {
	s.listCalls++
	if s.fail != nil {
		return nil, s.fail
	}
	return append([]model.Lead(nil), s.leads...), nil
}

func (s *fakeLeadStore) Create(_ context.Context, draft model.Lead) (model.Lead, error) {
	s.createCalls++
	if s.fail != nil {
		return model.Lead{}, s.fail
	}
	s.nextID++
	draft.ID = fmt.Sprintf("lead-%d", s.nextID)
	s.leads = append(s.leads, draft)
	return draft, nil
}

func (s *fakeLeadStore) Update(_ context.Context, draft model.Lead) (model.Lead, error) {
	s.updateCalls++
	if s.fail != nil {
		return model.Lead{}, s.fail
	}
	for i, l := range s.leads {
		if l.ID == draft.ID {
			s.leads[i] = draft
			return draft, nil
		}
	}
	return model.Lead{}, errors.New("not found")
}

func (s *fakeLeadStore) Delete(_ context.Context, id string) error {
	s.deleteCalls++
	if s.fail != nil {
		return s.fail
	}
	for i, l := range s.leads {
		if l.ID == id {
			s.leads = append(s.leads[:i], s.leads[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func seedLeads(n int) []model.Lead {
	out := make([]model.Lead, n)
	for i := range out {
		out[i] = model.Lead{
			ID:          fmt.Sprintf("lead-%d", i+1),
			Name:        fmt.Sprintf("Lead %02d", i+1),
			Email:       fmt.Sprintf("lead%d@acme.test", i+1),
			Mobile:      "1234567890",
			ProjectName: "Site",
			LeadSource:  "Referral",
		}
	}
	return out
}

// drain runs a command tree synchronously, feeding every produced
// message back into the screen, and returns the messages seen.
func drain(s screen, cmd tea.Cmd) []tea.Msg {
	var msgs []tea.Msg
	var run func(tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		msg := c()
		if msg == nil {
			return
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, bc := range batch {
				run(bc)
			}
			return
		}
		msgs = append(msgs, msg)
		run(s.update(msg))
	}
	run(cmd)
	return msgs
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loadedLeadScreen(t *testing.T, store *fakeLeadStore) *managementScreen[model.Lead] {
	t.Helper()
	s := newManagementScreen(leadSpec(), store)
	drain(s, s.init())
	if got := len(s.ctl.Collection()); got != len(store.leads) {
		t.Fatalf("expected %d leads loaded, got %d", len(store.leads), got)
	}
	return s
}

func TestSearchFiltersAndResetsPage(t *testing.T) {
	store := &fakeLeadStore{leads: seedLeads(12), nextID: 12}
	s := loadedLeadScreen(t, store)

	s.update(keyRunes("G"))
	if got := s.ctl.PageIndex(); got != 3 {
		t.Fatalf("expected page 3 after G, got %d", got)
	}

	s.update(keyRunes("/"))
	if !s.capturing() {
		t.Fatalf("expected search focus to capture input")
	}
	for _, r := range "lead 03" {
		s.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	if got := s.ctl.SearchText(); got != "lead 03" {
		t.Fatalf("expected query %q, got %q", "lead 03", got)
	}
	page := s.ctl.Page()
	if page.PageIndex != 1 {
		t.Fatalf("expected search to reset to page 1, got %d", page.PageIndex)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "lead-3" {
		t.Fatalf("expected only lead-3 to match, got %+v", page.Items)
	}

	// esc clears the query and leaves search mode.
	s.update(tea.KeyMsg{Type: tea.KeyEscape})
	if s.capturing() {
		t.Fatalf("expected esc to leave search mode")
	}
	if got := len(s.ctl.Page().Items); got != 5 {
		t.Fatalf("expected full first page again, got %d items", got)
	}
}

func TestOutOfRangePageKeysAreNoOps(t *testing.T) {
	store := &fakeLeadStore{leads: seedLeads(7), nextID: 7}
	s := loadedLeadScreen(t, store)

	s.update(keyRunes("h"))
	if got := s.ctl.PageIndex(); got != 1 {
		t.Fatalf("expected page to stay at 1, got %d", got)
	}
	s.update(keyRunes("l"))
	s.update(keyRunes("l"))
	if got := s.ctl.PageIndex(); got != 2 {
		t.Fatalf("expected page capped at 2, got %d", got)
	}
}

func TestCreateValidationBlocksSave(t *testing.T) {
	store := &fakeLeadStore{}
	s := loadedLeadScreen(t, store)

	s.update(keyRunes("a"))
	if s.ctl.Form() == nil {
		t.Fatalf("expected form to open on a")
	}

	cmd := s.update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd != nil {
		t.Fatalf("expected no command for an invalid draft")
	}
	f := s.ctl.Form()
	if f == nil {
		t.Fatalf("expected form to stay open")
	}
	if _, ok := f.FieldErrors["name"]; !ok {
		t.Fatalf("expected inline error for name, got %v", f.FieldErrors)
	}
	if store.createCalls != 0 {
		t.Fatalf("remote create must not be called, got %d calls", store.createCalls)
	}
}

func TestCreateFlowSavesAndRefreshesOnce(t *testing.T) {
	store := &fakeLeadStore{leads: seedLeads(2), nextID: 2}
	s := loadedLeadScreen(t, store)
	listBefore := store.listCalls

	s.update(keyRunes("a"))
	values := map[string]string{
		"name":        "New Lead",
		"email":       "new@acme.test",
		"mobile":      "5551234",
		"leadSource":  "Web",
		"projectName": "Portal",
	}
	for i, fld := range s.spec.fields {
		if v, ok := values[fld.key]; ok {
			s.inputs[i].SetValue(v)
		}
	}

	msgs := drain(s, s.update(tea.KeyMsg{Type: tea.KeyCtrlS}))
	if store.createCalls != 1 {
		t.Fatalf("expected one create call, got %d", store.createCalls)
	}
	if got := store.listCalls - listBefore; got != 1 {
		t.Fatalf("expected exactly one refresh after save, got %d", got)
	}
	if s.ctl.Form() != nil {
		t.Fatalf("expected form closed after successful save")
	}
	if len(s.ctl.Collection()) != 3 {
		t.Fatalf("expected refreshed collection of 3, got %d", len(s.ctl.Collection()))
	}

	var flashed bool
	for _, m := range msgs {
		if f, ok := m.(flashMsg); ok && f.kind == flashSuccess {
			flashed = true
		}
	}
	if !flashed {
		t.Fatalf("expected a success flash, got %v", msgs)
	}
}

func TestSaveFailureKeepsFormWithRemoteError(t *testing.T) {
	store := &fakeLeadStore{leads: seedLeads(1), nextID: 1}
	s := loadedLeadScreen(t, store)

	s.update(keyRunes("a"))
	values := map[string]string{
		"name": "X", "email": "x@a.b", "mobile": "1",
		"leadSource": "Web", "projectName": "P",
	}
	for i, fld := range s.spec.fields {
		if v, ok := values[fld.key]; ok {
			s.inputs[i].SetValue(v)
		}
	}

	store.fail = errors.New("boom")
	drain(s, s.update(tea.KeyMsg{Type: tea.KeyCtrlS}))

	f := s.ctl.Form()
	if f == nil {
		t.Fatalf("expected form to stay open after remote failure")
	}
	if f.RemoteErr == nil {
		t.Fatalf("expected remote error recorded on form")
	}
	if f.Draft.Name != "X" {
		t.Fatalf("expected draft preserved, got %q", f.Draft.Name)
	}
}

func TestEditPrefillsInputs(t *testing.T) {
	store := &fakeLeadStore{leads: seedLeads(3), nextID: 3}
	s := loadedLeadScreen(t, store)

	s.update(keyRunes("j")) // select second row
	s.update(keyRunes("e"))
	f := s.ctl.Form()
	if f == nil || f.TargetID != "lead-2" {
		t.Fatalf("expected edit form for lead-2, got %+v", f)
	}
	if got := s.inputs[0].Value(); got != "Lead 02" {
		t.Fatalf("expected name input prefilled, got %q", got)
	}
}

func TestDeleteConfirmDefaultsToCancel(t *testing.T) {
	store := &fakeLeadStore{leads: seedLeads(2), nextID: 2}
	s := loadedLeadScreen(t, store)

	s.update(keyRunes("d"))
	if _, pending := s.ctl.DeleteIntent(); !pending {
		t.Fatalf("expected delete intent after d")
	}
	// Enter with the default (cancel) focus must not delete.
	s.update(tea.KeyMsg{Type: tea.KeyEnter})
	if _, pending := s.ctl.DeleteIntent(); pending {
		t.Fatalf("expected intent cleared on cancel")
	}
	if store.deleteCalls != 0 {
		t.Fatalf("expected no delete call, got %d", store.deleteCalls)
	}
}

func TestDeleteConfirmed(t *testing.T) {
	store := &fakeLeadStore{leads: seedLeads(2), nextID: 2}
	s := loadedLeadScreen(t, store)

	s.update(keyRunes("d"))
	drain(s, s.update(keyRunes("y")))

	if store.deleteCalls != 1 {
		t.Fatalf("expected one delete call, got %d", store.deleteCalls)
	}
	if len(s.ctl.Collection()) != 1 {
		t.Fatalf("expected one lead left, got %d", len(s.ctl.Collection()))
	}
	if _, found := s.ctl.Find("lead-1"); found {
		t.Fatalf("expected lead-1 gone")
	}
}

func TestStaleRefreshResponseDiscarded(t *testing.T) {
	store := &fakeLeadStore{leads: seedLeads(3), nextID: 3}
	s := loadedLeadScreen(t, store)

	first := s.update(keyRunes("r"))
	second := s.update(keyRunes("r"))

	// The newer request completes first, against a grown store.
	store.leads = seedLeads(5)
	s.update(second())

	// By the time the older request completes the store shrank; its
	// response is stale and must not overwrite the newer one.
	store.leads = seedLeads(1)
	s.update(first())

	if got := len(s.ctl.Collection()); got != 5 {
		t.Fatalf("expected the newer response to win (5 leads), got %d", got)
	}
}

func TestFailedRefreshKeepsData(t *testing.T) {
	store := &fakeLeadStore{leads: seedLeads(3), nextID: 3}
	s := loadedLeadScreen(t, store)

	store.fail = errors.New("down")
	msgs := drain(s, s.update(keyRunes("r")))

	if got := len(s.ctl.Collection()); got != 3 {
		t.Fatalf("expected last-known-good collection, got %d", got)
	}
	var flashedErr bool
	for _, m := range msgs {
		if f, ok := m.(flashMsg); ok && f.kind == flashError {
			flashedErr = true
		}
	}
	if !flashedErr {
		t.Fatalf("expected an error flash, got %v", msgs)
	}
}

func TestListViewRendersPageAndFooter(t *testing.T) {
	store := &fakeLeadStore{leads: seedLeads(12), nextID: 12}
	s := loadedLeadScreen(t, store)
	s.update(tea.WindowSizeMsg{Width: 120, Height: 40})

	out := s.view()
	if !strings.Contains(out, "Lead 01") {
		t.Fatalf("expected first page rows in view:\n%s", out)
	}
	if strings.Contains(out, "Lead 06") {
		t.Fatalf("expected rows beyond the page to be hidden:\n%s", out)
	}
	if !strings.Contains(out, "page 1/3 · 12 records") {
		t.Fatalf("expected pager line in view:\n%s", out)
	}
}
