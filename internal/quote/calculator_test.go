package quote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmdeck/internal/model"
)

func checkInvariants(t *testing.T, c *Calculator) {
	t.Helper()
	subtotal := 0.0
	for _, it := range c.Items() {
		assert.InDelta(t, it.Quantity*it.Rate, it.Amount, 1e-9)
		subtotal += it.Amount
	}
	assert.InDelta(t, subtotal, c.Subtotal(), 1e-9)
	assert.InDelta(t, subtotal*TaxRate, c.Tax(), 1e-9)
	assert.InDelta(t, subtotal+subtotal*TaxRate, c.Total(), 1e-9)
}

func TestNewDraftDefaults(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	c := NewDraft(now)
	q := c.Snapshot()

	assert.Contains(t, q.Number, "QT-2024-")
	assert.Equal(t, "2024-03-15", q.Date)
	assert.Equal(t, "2024-03-15", q.ValidUntil)
	assert.Equal(t, model.QuotationDraft, q.Status)
	assert.Empty(t, q.Items)
	assert.Zero(t, q.Total)
	checkInvariants(t, c)
}

func TestAddAndUpdateItemsRecomputesTotals(t *testing.T) {
	c := NewDraft(time.Now())

	a := c.AddItem()
	assert.Equal(t, 1.0, a.Quantity)
	c.UpdateItem(a.ID, FieldDescription, "Design work")
	c.UpdateItem(a.ID, FieldQuantity, "7")
	c.UpdateItem(a.ID, FieldRate, "100")
	checkInvariants(t, c)

	assert.InDelta(t, 700.0, c.Subtotal(), 1e-9)
	assert.InDelta(t, 70.0, c.Tax(), 1e-9)
	assert.InDelta(t, 770.0, c.Total(), 1e-9)

	// A second item shifts every derived figure at once.
	b := c.AddItem()
	c.UpdateItem(b.ID, FieldQuantity, "1")
	c.UpdateItem(b.ID, FieldRate, "100")
	checkInvariants(t, c)

	assert.InDelta(t, 800.0, c.Subtotal(), 1e-9)
	assert.InDelta(t, 80.0, c.Tax(), 1e-9)
	assert.InDelta(t, 880.0, c.Total(), 1e-9)
}

func TestInvalidNumericInputCoercesToZero(t *testing.T) {
	c := NewDraft(time.Now())
	it := c.AddItem()
	c.UpdateItem(it.ID, FieldRate, "50")
	c.UpdateItem(it.ID, FieldQuantity, "2")
	require.InDelta(t, 100.0, c.Subtotal(), 1e-9)

	c.UpdateItem(it.ID, FieldQuantity, "abc")
	checkInvariants(t, c)
	assert.Zero(t, c.Items()[0].Quantity)
	assert.Zero(t, c.Subtotal())

	// Negative input is treated the same as unparseable.
	c.UpdateItem(it.ID, FieldRate, "-5")
	checkInvariants(t, c)
	assert.Zero(t, c.Items()[0].Rate)
}

func TestRemoveItem(t *testing.T) {
	c := NewDraft(time.Now())
	a := c.AddItem()
	b := c.AddItem()
	c.UpdateItem(a.ID, FieldRate, "10")
	c.UpdateItem(b.ID, FieldRate, "20")

	c.RemoveItem(a.ID)
	require.Len(t, c.Items(), 1)
	assert.Equal(t, b.ID, c.Items()[0].ID)
	checkInvariants(t, c)
	assert.InDelta(t, 20.0, c.Subtotal(), 1e-9)

	// Unknown ids are ignored.
	c.RemoveItem("li-999")
	assert.Len(t, c.Items(), 1)
}

func TestUpdateUnknownItemIsNoOp(t *testing.T) {
	c := NewDraft(time.Now())
	it := c.AddItem()
	c.UpdateItem(it.ID, FieldRate, "10")
	before := c.Snapshot()

	c.UpdateItem("li-999", FieldRate, "500")
	assert.Equal(t, before, c.Snapshot())
}

func TestEditRepairsDriftedTotals(t *testing.T) {
	stored := model.Quotation{
		Number: "QT-2024-1",
		Items: []model.LineItem{
			{ID: "li-1", Description: "x", Quantity: 2, Rate: 50, Amount: 999},
		},
		Subtotal: 1, Tax: 2, Total: 3,
		Status: model.QuotationSent,
	}
	c := Edit(stored)
	checkInvariants(t, c)
	assert.InDelta(t, 100.0, c.Subtotal(), 1e-9)

	// The original value is untouched; the calculator works on a copy.
	assert.EqualValues(t, 999, stored.Items[0].Amount)
}

func TestEditContinuesItemIDSequence(t *testing.T) {
	c := Edit(model.Quotation{
		Items: []model.LineItem{{ID: "li-7", Quantity: 1, Rate: 1}},
	})
	it := c.AddItem()
	assert.Equal(t, "li-8", it.ID)
}

func TestStatusTransitionsAreUnconstrained(t *testing.T) {
	c := NewDraft(time.Now())
	for _, from := range model.QuotationStatuses() {
		c.SetStatus(from)
		for _, to := range model.QuotationStatuses() {
			c.SetStatus(to)
			assert.Equal(t, to, c.Snapshot().Status)
			c.SetStatus(from)
		}
	}

	c.SetStatus(model.QuotationAccepted)
	c.SetStatus("bogus")
	assert.Equal(t, model.QuotationAccepted, c.Snapshot().Status)
}

func TestSnapshotIsDetached(t *testing.T) {
	c := NewDraft(time.Now())
	it := c.AddItem()
	snap := c.Snapshot()
	snap.Items[0].Rate = 999

	c.UpdateItem(it.ID, FieldRate, "10")
	assert.InDelta(t, 10.0, c.Items()[0].Rate, 1e-9)
}
