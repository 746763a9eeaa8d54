package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"crmdeck/internal/api"
	"crmdeck/internal/model"
	"crmdeck/internal/session"
)

func newTestApp() appModel {
	client := api.NewClient("http://127.0.0.1:1", func() string { return "t" })
	sess := session.Session{Token: "t", User: model.SessionUser{Username: "Admin"}}
	return newAppModel(client, sess)
}

func TestTabActivationReloads(t *testing.T) {
	m := newTestApp()

	if m.active != 0 {
		t.Fatalf("expected dashboard active first, got %d", m.active)
	}
	mAny, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m2 := mAny.(appModel)
	if m2.active != 1 {
		t.Fatalf("expected tab to advance to 1, got %d", m2.active)
	}
	if cmd == nil {
		t.Fatalf("expected activation to issue the screen's load")
	}

	// A revisited tab reloads too; its data would otherwise sit stale
	// until a manual refresh.
	mAny, _ = m2.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m3 := mAny.(appModel)
	mAny, cmd = m3.Update(tea.KeyMsg{Type: tea.KeyTab})
	m4 := mAny.(appModel)
	if m4.active != 1 {
		t.Fatalf("expected tab 1 active again, got %d", m4.active)
	}
	if cmd == nil {
		t.Fatalf("expected revisit to reload the screen")
	}
}

func TestNumberKeysJumpToTab(t *testing.T) {
	m := newTestApp()
	mAny, _ := m.Update(keyRunes("7"))
	m2 := mAny.(appModel)
	if m2.active != 6 {
		t.Fatalf("expected 7 to jump to the seventh tab, got %d", m2.active)
	}
	if got := m2.screens[m2.active].title(); got != "Quotations" {
		t.Fatalf("expected Quotations tab, got %q", got)
	}

	mAny, _ = m2.Update(keyRunes("8"))
	m3 := mAny.(appModel)
	if got := m3.screens[m3.active].title(); got != "Projects" {
		t.Fatalf("expected Projects tab, got %q", got)
	}
}

func TestQuitKeys(t *testing.T) {
	m := newTestApp()
	_, cmd := m.Update(keyRunes("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected q to quit when nothing captures input")
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected ctrl+c to always quit")
	}
}

func TestQuitSuppressedWhileScreenCaptures(t *testing.T) {
	m := newTestApp()
	mAny, _ := m.Update(keyRunes("2")) // leads tab
	m2 := mAny.(appModel)

	leads := m2.screens[1].(*leadsScreen)
	leads.searching = true

	_, cmd := m2.Update(keyRunes("q"))
	if cmd != nil {
		if _, ok := cmd().(tea.QuitMsg); ok {
			t.Fatalf("expected q to go to the focused search, not quit")
		}
	}
}

func TestFlashLifecycle(t *testing.T) {
	m := newTestApp()

	mAny, cmd := m.Update(flashMsg{kind: flashSuccess, text: "Lead added"})
	m2 := mAny.(appModel)
	if m2.flashText != "Lead added" {
		t.Fatalf("expected flash text set, got %q", m2.flashText)
	}
	if cmd == nil {
		t.Fatalf("expected expiry tick scheduled")
	}

	// A newer flash supersedes the pending expiry of the older one.
	staleSeq := m2.flashSeq
	mAny, _ = m2.Update(flashMsg{kind: flashError, text: "boom"})
	m3 := mAny.(appModel)
	mAny, _ = m3.Update(flashDoneMsg{seq: staleSeq})
	m4 := mAny.(appModel)
	if m4.flashText != "boom" {
		t.Fatalf("expected stale expiry ignored, got %q", m4.flashText)
	}

	mAny, _ = m4.Update(flashDoneMsg{seq: m4.flashSeq})
	m5 := mAny.(appModel)
	if m5.flashText != "" {
		t.Fatalf("expected current expiry to clear the flash, got %q", m5.flashText)
	}
}

func TestViewShowsTabsAndFooter(t *testing.T) {
	m := newTestApp()
	mAny, _ := m.Update(tea.WindowSizeMsg{Width: 160, Height: 48})
	m2 := mAny.(appModel)

	out := m2.View()
	for _, want := range []string{"crmdeck", "Admin", "Dashboard", "Leads", "q: quit"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in app view:\n%s", want, out)
		}
	}
}
