package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"crmdeck/internal/listctl"
	"crmdeck/internal/model"
)

// requestTimeout bounds every backend call issued from the TUI.
const requestTimeout = 15 * time.Second

// Completion messages for async backend calls. The list/save/delete
// messages are generic so that only the screen owning that entity type
// matches them; untyped messages each have exactly one owning screen.

type listLoadedMsg[E listctl.Entity] struct {
	gen   uint64
	items []E
	err   error
}

type saveDoneMsg[E listctl.Entity] struct {
	ticket listctl.SaveTicket[E]
	err    error
}

type deleteDoneMsg[E listctl.Entity] struct {
	ticket listctl.DeleteTicket
	err    error
}

type statsLoadedMsg struct {
	stats model.DashboardStats
	err   error
}

type techniciansLoadedMsg struct {
	techs []model.Technician
	err   error
}

type assignDoneMsg struct{ err error }

type toggleStatusDoneMsg struct{ err error }

type uploadDoneMsg struct {
	fileRef string
	err     error
}

// flash messages travel up to the app model, which owns the banner.

type flashKind int

const (
	flashInfo flashKind = iota
	flashSuccess
	flashError
)

type flashMsg struct {
	kind flashKind
	text string
}

type flashDoneMsg struct{ seq int }

func flashCmd(kind flashKind, text string) tea.Cmd {
	return func() tea.Msg { return flashMsg{kind: kind, text: text} }
}

func withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// refreshCmd issues a reload for the controller's collection. The
// generation token is captured before the command runs so a stale
// completion is recognizable.
func refreshCmd[E listctl.Entity](ctl *listctl.Controller[E]) tea.Cmd {
	gen := ctl.BeginRefresh()
	store := ctl.Store()
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		items, err := store.List(ctx)
		return listLoadedMsg[E]{gen: gen, items: items, err: err}
	}
}

func saveCmd[E listctl.Entity](store listctl.Store[E], t listctl.SaveTicket[E]) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		var err error
		if t.Mode == listctl.ModeCreate {
			_, err = store.Create(ctx, t.Draft)
		} else {
			_, err = store.Update(ctx, t.Draft)
		}
		return saveDoneMsg[E]{ticket: t, err: err}
	}
}

func deleteCmd[E listctl.Entity](store listctl.Store[E], t listctl.DeleteTicket) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		err := store.Delete(ctx, t.ID)
		return deleteDoneMsg[E]{ticket: t, err: err}
	}
}
