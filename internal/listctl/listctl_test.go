package listctl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID   string
	Name string
	Tag  string
}

func (r record) EntityID() string   { return r.ID }
func (r record) SearchText() string { return r.Name + " " + r.Tag }

func (r record) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(r.Name) == "" {
		errs["name"] = "Name is required."
	}
	return errs
}

type fakeStore struct {
	items []record

	listCalls   int
	createCalls int
	updateCalls int
	deleteCalls int

	failWith error
}

func (s *fakeStore) List(context.Context) ([]record, error) {
	s.listCalls++
	if s.failWith != nil {
		return nil, s.failWith
	}
	return append([]record(nil), s.items...), nil
}

func (s *fakeStore) Create(_ context.Context, draft record) (record, error) {
	s.createCalls++
	if s.failWith != nil {
		return record{}, s.failWith
	}
	draft.ID = fmt.Sprintf("id:%d", len(s.items)+1)
	s.items = append(s.items, draft)
	return draft, nil
}

func (s *fakeStore) Update(_ context.Context, draft record) (record, error) {
	s.updateCalls++
	if s.failWith != nil {
		return record{}, s.failWith
	}
	for i, it := range s.items {
		if it.ID == draft.ID {
			s.items[i] = draft
			return draft, nil
		}
	}
	return record{}, errors.New("not found")
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	s.deleteCalls++
	if s.failWith != nil {
		return s.failWith
	}
	for i, it := range s.items {
		if it.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func seed(n int) []record {
	out := make([]record, n)
	for i := range out {
		out[i] = record{ID: fmt.Sprintf("id:%d", i+1), Name: fmt.Sprintf("record %d", i+1)}
	}
	return out
}

func loaded(t *testing.T, items []record) (*Controller[record], *fakeStore) {
	t.Helper()
	store := &fakeStore{items: items}
	c := New[record](store)
	gen := c.BeginRefresh()
	got, err := store.List(context.Background())
	require.NoError(t, err)
	require.True(t, c.ApplyRefresh(gen, got, nil))
	return c, store
}

func TestSearchFiltersCaseInsensitively(t *testing.T) {
	c, _ := loaded(t, []record{
		{ID: "id:1", Name: "John Doe", Tag: "Acme"},
		{ID: "id:2", Name: "Sarah Lee", Tag: "Globex"},
		{ID: "id:3", Name: "SARAH CONNOR", Tag: "Initech"},
	})

	c.SetSearchText("sarah")
	page := c.Page()
	require.Len(t, page.Items, 2)
	assert.Equal(t, "id:2", page.Items[0].ID)
	assert.Equal(t, "id:3", page.Items[1].ID)

	// Substring across the joined fields, not just the name.
	c.SetSearchText("glob")
	page = c.Page()
	require.Len(t, page.Items, 1)
	assert.Equal(t, "id:2", page.Items[0].ID)
}

func TestSearchDoesNotTrimQuery(t *testing.T) {
	c, _ := loaded(t, []record{{ID: "id:1", Name: "Sarah", Tag: ""}})

	// Whitespace is part of the query, never stripped.
	c.SetSearchText(" sarah")
	assert.Empty(t, c.Page().Items)
}

func TestPaginationBounds(t *testing.T) {
	c, _ := loaded(t, seed(12))

	page := c.Page()
	assert.Equal(t, 1, page.PageIndex)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 12, page.TotalMatches)
	assert.Len(t, page.Items, PageSize)

	// Out-of-range jumps are silent no-ops.
	c.SetPageIndex(4)
	assert.Equal(t, 1, c.PageIndex())
	c.SetPageIndex(0)
	assert.Equal(t, 1, c.PageIndex())

	c.SetPageIndex(3)
	page = c.Page()
	assert.Equal(t, 3, page.PageIndex)
	assert.Len(t, page.Items, 2)
}

func TestEmptyCollectionHasOnePage(t *testing.T) {
	c, _ := loaded(t, nil)
	page := c.Page()
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 1, page.PageIndex)
	assert.Empty(t, page.Items)
}

func TestSearchResetsPage(t *testing.T) {
	c, _ := loaded(t, seed(12))
	c.SetPageIndex(3)
	c.SetSearchText("record")
	assert.Equal(t, 1, c.PageIndex())
}

func TestPageClampsWhenCollectionShrinks(t *testing.T) {
	c, store := loaded(t, seed(12))
	c.SetPageIndex(3)

	store.items = seed(4)
	gen := c.BeginRefresh()
	items, _ := store.List(context.Background())
	require.True(t, c.ApplyRefresh(gen, items, nil))

	page := c.Page()
	assert.Equal(t, 1, page.PageIndex)
	assert.Len(t, page.Items, 4)
}

func TestStaleRefreshDiscarded(t *testing.T) {
	c, _ := loaded(t, seed(3))

	oldGen := c.BeginRefresh()
	newGen := c.BeginRefresh()

	// The newer response lands first.
	require.True(t, c.ApplyRefresh(newGen, seed(5), nil))
	// The stale one must not overwrite it.
	require.False(t, c.ApplyRefresh(oldGen, seed(1), nil))
	assert.Len(t, c.Collection(), 5)
}

func TestFailedRefreshKeepsCollection(t *testing.T) {
	c, _ := loaded(t, seed(3))
	gen := c.BeginRefresh()
	require.False(t, c.ApplyRefresh(gen, nil, errors.New("boom")))
	assert.Len(t, c.Collection(), 3)
	assert.False(t, c.Busy())
}

func TestValidationBlocksRemoteCall(t *testing.T) {
	c, store := loaded(t, nil)
	c.BeginCreate()
	c.SetDraft(record{Name: "   "})

	_, err := c.BeginSave()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "name")
	assert.Equal(t, ve.Fields, c.Form().FieldErrors)
	assert.Zero(t, store.createCalls)
	assert.False(t, c.Busy())
	assert.NotNil(t, c.Form(), "form stays open for correction")
}

func TestCreateFlow(t *testing.T) {
	c, store := loaded(t, seed(2))
	c.BeginCreate()
	c.SetDraft(record{Name: "New One"})

	ticket, err := c.BeginSave()
	require.NoError(t, err)
	assert.True(t, c.Busy())

	_, err = store.Create(context.Background(), ticket.Draft)
	require.NoError(t, err)
	assert.Equal(t, 1, store.createCalls)

	refresh := c.ApplySave(ticket, nil)
	assert.True(t, refresh, "exactly one refresh follows a successful save")
	assert.Nil(t, c.Form())
	assert.False(t, c.Busy())
}

func TestEditPrefillsAndUpdates(t *testing.T) {
	c, store := loaded(t, seed(3))
	require.True(t, c.BeginEdit("id:2"))
	f := c.Form()
	require.NotNil(t, f)
	assert.Equal(t, ModeEdit, f.Mode)
	assert.Equal(t, "record 2", f.Draft.Name)

	draft := f.Draft
	draft.Name = "renamed"
	c.SetDraft(draft)
	ticket, err := c.BeginSave()
	require.NoError(t, err)
	assert.Equal(t, "id:2", ticket.Draft.ID, "edit drafts carry the target id")

	_, err = store.Update(context.Background(), ticket.Draft)
	require.NoError(t, err)
	assert.True(t, c.ApplySave(ticket, nil))
}

func TestBeginEditUnknownID(t *testing.T) {
	c, _ := loaded(t, seed(2))
	assert.False(t, c.BeginEdit("id:99"))
	assert.Nil(t, c.Form())
}

func TestSaveFailureKeepsFormAndDraft(t *testing.T) {
	c, _ := loaded(t, nil)
	c.BeginCreate()
	c.SetDraft(record{Name: "keep me"})
	ticket, err := c.BeginSave()
	require.NoError(t, err)

	boom := errors.New("boom")
	refresh := c.ApplySave(ticket, boom)
	assert.False(t, refresh)
	require.NotNil(t, c.Form())
	assert.Equal(t, "keep me", c.Form().Draft.Name)
	assert.Equal(t, boom, c.Form().RemoteErr)
	assert.False(t, c.Busy())
}

func TestBusyBlocksSecondSave(t *testing.T) {
	c, _ := loaded(t, nil)
	c.BeginCreate()
	c.SetDraft(record{Name: "one"})
	_, err := c.BeginSave()
	require.NoError(t, err)

	_, err = c.BeginSave()
	assert.ErrorIs(t, err, ErrBusy)
}

func TestLateSaveResponseAfterDismissal(t *testing.T) {
	c, _ := loaded(t, nil)
	c.BeginCreate()
	c.SetDraft(record{Name: "first"})
	ticket, err := c.BeginSave()
	require.NoError(t, err)

	// The user closes the modal and opens a new form while the call is
	// still in flight.
	c.CancelForm()
	c.BeginCreate()
	c.SetDraft(record{Name: "second"})

	refresh := c.ApplySave(ticket, nil)
	assert.True(t, refresh, "collection state still reconciles")
	require.NotNil(t, c.Form(), "the new form is not disturbed")
	assert.Equal(t, "second", c.Form().Draft.Name)
	assert.Nil(t, c.Form().RemoteErr)
}

func TestDeleteFlow(t *testing.T) {
	c, store := loaded(t, seed(3))
	require.True(t, c.BeginDelete("id:2"))
	id, pending := c.DeleteIntent()
	assert.True(t, pending)
	assert.Equal(t, "id:2", id)

	ticket, err := c.ConfirmDelete()
	require.NoError(t, err)
	require.NoError(t, store.Delete(context.Background(), ticket.ID))

	refresh := c.ApplyDelete(ticket, nil)
	assert.True(t, refresh)
	_, found := c.Find("id:2")
	assert.False(t, found, "removed locally before the refresh lands")
	_, pending = c.DeleteIntent()
	assert.False(t, pending)
}

func TestDeleteUnknownIDRejected(t *testing.T) {
	c, _ := loaded(t, seed(2))
	assert.False(t, c.BeginDelete("id:99"))
	_, pending := c.DeleteIntent()
	assert.False(t, pending)
}

func TestDeleteFailureKeepsIntent(t *testing.T) {
	c, _ := loaded(t, seed(2))
	require.True(t, c.BeginDelete("id:1"))
	ticket, err := c.ConfirmDelete()
	require.NoError(t, err)

	refresh := c.ApplyDelete(ticket, errors.New("boom"))
	assert.False(t, refresh)
	assert.Len(t, c.Collection(), 2)
	_, pending := c.DeleteIntent()
	assert.True(t, pending, "user can retry or cancel")
}

func TestCancelDelete(t *testing.T) {
	c, _ := loaded(t, seed(2))
	require.True(t, c.BeginDelete("id:1"))
	c.CancelDelete()
	_, pending := c.DeleteIntent()
	assert.False(t, pending)
	_, err := c.ConfirmDelete()
	assert.ErrorIs(t, err, ErrNoDeleteIntent)
}
