// Package listctl implements the list-management engine shared by every
// management screen: case-insensitive search filtering, fixed-size
// pagination, and create/edit/delete state that reconciles an in-memory
// collection with a remote persistence collaborator.
//
// The controller is a pure, single-threaded state machine. Remote calls
// are issued by the caller (the TUI runs them as tea.Cmds); their
// completion is fed back through the Apply* methods together with the
// ticket returned when the operation began. Refresh completions carry a
// generation token so a stale response can never overwrite fresher data.
package listctl

import (
	"context"
	"errors"
	"strings"
)

// PageSize is the number of rows per visible page on every screen.
const PageSize = 5

// Entity is one record of a homogeneous collection. SearchText returns
// the designated searchable fields joined with spaces; Validate returns
// per-field messages and an empty map when the draft is saveable.
type Entity interface {
	EntityID() string
	SearchText() string
	Validate() map[string]string
}

// Store is the remote persistence collaborator for one entity type.
type Store[E Entity] interface {
	List(ctx context.Context) ([]E, error)
	Create(ctx context.Context, draft E) (E, error)
	Update(ctx context.Context, draft E) (E, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrBusy           = errors.New("an operation is already in flight")
	ErrNoForm         = errors.New("no form is open")
	ErrNoDeleteIntent = errors.New("no delete is pending")
)

// ValidationError reports client-local field errors; the remote
// collaborator is never called when one is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation failed" }

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// Form is the transient draft behind an open create/edit modal.
type Form[E Entity] struct {
	Mode        Mode
	TargetID    string
	Draft       E
	FieldErrors map[string]string
	// RemoteErr is the last save failure for this form, kept so the
	// user can correct the draft and retry.
	RemoteErr error

	epoch uint64
}

// Page is the computed visible slice of the filtered collection.
type Page[E Entity] struct {
	Items        []E
	PageIndex    int
	TotalPages   int
	TotalMatches int
}

// SaveTicket identifies one in-flight create/update call.
type SaveTicket[E Entity] struct {
	Mode  Mode
	Draft E

	formEpoch uint64
}

// DeleteTicket identifies one in-flight delete call.
type DeleteTicket struct {
	ID string
}

type Controller[E Entity] struct {
	store Store[E]

	collection []E
	searchText string
	pageIndex  int

	form         *Form[E]
	deleteTarget string

	busy       bool
	refreshGen uint64
	formEpoch  uint64
}

func New[E Entity](store Store[E]) *Controller[E] {
	return &Controller[E]{store: store, pageIndex: 1}
}

// Store exposes the collaborator so callers can issue the remote calls
// the tickets describe.
func (c *Controller[E]) Store() Store[E] { return c.store }

func (c *Controller[E]) Busy() bool       { return c.busy }
func (c *Controller[E]) Collection() []E  { return c.collection }
func (c *Controller[E]) SearchText() string { return c.searchText }
func (c *Controller[E]) PageIndex() int   { return c.pageIndex }

// SetSearchText updates the query and resets the page to 1.
func (c *Controller[E]) SetSearchText(text string) {
	c.searchText = text
	c.pageIndex = 1
}

// SetPageIndex is a silent no-op outside [1, totalPages].
func (c *Controller[E]) SetPageIndex(n int) {
	if n < 1 || n > c.totalPages() {
		return
	}
	c.pageIndex = n
}

func (c *Controller[E]) NextPage()  { c.SetPageIndex(c.pageIndex + 1) }
func (c *Controller[E]) PrevPage()  { c.SetPageIndex(c.pageIndex - 1) }
func (c *Controller[E]) FirstPage() { c.SetPageIndex(1) }
func (c *Controller[E]) LastPage()  { c.SetPageIndex(c.totalPages()) }

func (c *Controller[E]) matches() []E {
	q := strings.ToLower(c.searchText)
	if q == "" {
		return c.collection
	}
	out := make([]E, 0, len(c.collection))
	for _, e := range c.collection {
		if strings.Contains(strings.ToLower(e.SearchText()), q) {
			out = append(out, e)
		}
	}
	return out
}

func (c *Controller[E]) totalPages() int {
	n := len(c.matches())
	pages := (n + PageSize - 1) / PageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// Page computes the visible slice. When the collection shrank under a
// previously valid page index, the effective page is clamped to the
// last page rather than showing an empty slice.
func (c *Controller[E]) Page() Page[E] {
	m := c.matches()
	total := c.totalPages()
	idx := c.pageIndex
	if idx > total {
		idx = total
	}
	lo := (idx - 1) * PageSize
	hi := lo + PageSize
	if lo > len(m) {
		lo = len(m)
	}
	if hi > len(m) {
		hi = len(m)
	}
	return Page[E]{Items: m[lo:hi], PageIndex: idx, TotalPages: total, TotalMatches: len(m)}
}

// Find returns the collection entry with the given id.
func (c *Controller[E]) Find(id string) (E, bool) {
	for _, e := range c.collection {
		if e.EntityID() == id {
			return e, true
		}
	}
	var zero E
	return zero, false
}

// RefreshGen returns the most recently issued refresh generation.
func (c *Controller[E]) RefreshGen() uint64 { return c.refreshGen }

// BeginRefresh marks a reload as issued and returns its generation
// token. Callers pass the token back to ApplyRefresh with the result.
func (c *Controller[E]) BeginRefresh() uint64 {
	c.refreshGen++
	c.busy = true
	return c.refreshGen
}

// ApplyRefresh reconciles a completed list call. Responses from any
// generation but the most recently issued one are discarded, and a
// failed refresh keeps the last-known-good collection. Reports whether
// the collection was replaced.
func (c *Controller[E]) ApplyRefresh(gen uint64, items []E, err error) bool {
	if gen != c.refreshGen {
		return false
	}
	c.busy = false
	if err != nil {
		return false
	}
	c.collection = items
	return true
}

// BeginCreate opens an empty create form.
func (c *Controller[E]) BeginCreate() {
	c.formEpoch++
	var zero E
	c.form = &Form[E]{Mode: ModeCreate, Draft: zero, epoch: c.formEpoch}
}

// BeginEdit opens an edit form pre-populated from the collection.
// No-op when the id is unknown.
func (c *Controller[E]) BeginEdit(id string) bool {
	e, ok := c.Find(id)
	if !ok {
		return false
	}
	c.formEpoch++
	c.form = &Form[E]{Mode: ModeEdit, TargetID: id, Draft: e, epoch: c.formEpoch}
	return true
}

// Form returns the open form, or nil.
func (c *Controller[E]) Form() *Form[E] { return c.form }

// SetDraft replaces the open form's draft (the UI writes its inputs
// back before saving). No-op when no form is open.
func (c *Controller[E]) SetDraft(draft E) {
	if c.form == nil {
		return
	}
	c.form.Draft = draft
}

func (c *Controller[E]) CancelForm() { c.form = nil }

// BeginSave validates the draft and, when valid, marks a create/update
// call as in flight. A *ValidationError return means the remote
// collaborator must not be called; the field errors are also recorded
// on the form for inline display.
func (c *Controller[E]) BeginSave() (SaveTicket[E], error) {
	if c.form == nil {
		return SaveTicket[E]{}, ErrNoForm
	}
	if c.busy {
		return SaveTicket[E]{}, ErrBusy
	}
	c.form.RemoteErr = nil
	if errs := c.form.Draft.Validate(); len(errs) > 0 {
		c.form.FieldErrors = errs
		return SaveTicket[E]{}, &ValidationError{Fields: errs}
	}
	c.form.FieldErrors = nil
	c.busy = true
	return SaveTicket[E]{Mode: c.form.Mode, Draft: c.form.Draft, formEpoch: c.form.epoch}, nil
}

// ApplySave reconciles a completed create/update call. On success the
// originating form is closed (if still open) and the caller should
// issue a refresh; on failure the form stays open with the error
// recorded and the draft untouched. A form opened after the call was
// issued is never disturbed.
func (c *Controller[E]) ApplySave(t SaveTicket[E], err error) (refresh bool) {
	c.busy = false
	sameForm := c.form != nil && c.form.epoch == t.formEpoch
	if err != nil {
		if sameForm {
			c.form.RemoteErr = err
		}
		return false
	}
	if sameForm {
		c.form = nil
	}
	return true
}

// BeginDelete records a delete intent for a known id.
func (c *Controller[E]) BeginDelete(id string) bool {
	if _, ok := c.Find(id); !ok {
		return false
	}
	c.deleteTarget = id
	return true
}

// DeleteIntent returns the pending delete target, if any.
func (c *Controller[E]) DeleteIntent() (string, bool) {
	return c.deleteTarget, c.deleteTarget != ""
}

func (c *Controller[E]) CancelDelete() { c.deleteTarget = "" }

// ConfirmDelete marks the pending delete as in flight.
func (c *Controller[E]) ConfirmDelete() (DeleteTicket, error) {
	if c.deleteTarget == "" {
		return DeleteTicket{}, ErrNoDeleteIntent
	}
	if c.busy {
		return DeleteTicket{}, ErrBusy
	}
	c.busy = true
	return DeleteTicket{ID: c.deleteTarget}, nil
}

// ApplyDelete reconciles a completed delete call. On success the entity
// is removed locally and the caller should issue a refresh for
// consistency with the server; on failure the collection and intent are
// left untouched so the user can retry or cancel.
func (c *Controller[E]) ApplyDelete(t DeleteTicket, err error) (refresh bool) {
	c.busy = false
	if err != nil {
		return false
	}
	kept := c.collection[:0:0]
	for _, e := range c.collection {
		if e.EntityID() != t.ID {
			kept = append(kept, e)
		}
	}
	c.collection = kept
	if c.deleteTarget == t.ID {
		c.deleteTarget = ""
	}
	return true
}
