// Package quote keeps a quotation's totals mathematically consistent
// with its line items: after every mutation, amount == quantity * rate
// for each item and subtotal/tax/total are recomputed from the items.
// No code path can observe or persist a stale total.
package quote

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"crmdeck/internal/model"
)

// TaxRate is applied to the subtotal: total = subtotal * (1 + TaxRate).
const TaxRate = 0.10

// ItemField names a mutable line-item field for UpdateItem.
type ItemField string

const (
	FieldDescription ItemField = "description"
	FieldQuantity    ItemField = "quantity"
	FieldRate        ItemField = "rate"
)

// Calculator owns one quotation draft. It is not safe for concurrent
// use; like the rest of the UI state it lives on the event loop.
type Calculator struct {
	q      model.Quotation
	nextID int
}

// NewDraft starts an empty quotation numbered for the given time.
func NewDraft(now time.Time) *Calculator {
	c := &Calculator{
		q: model.Quotation{
			Number:     fmt.Sprintf("QT-%d-%d", now.Year(), now.UnixMilli()),
			Date:       now.Format("2006-01-02"),
			ValidUntil: now.Format("2006-01-02"),
			Status:     model.QuotationDraft,
		},
	}
	c.recompute()
	return c
}

// Edit starts from an existing quotation. Totals are recomputed
// immediately so a snapshot whose stored totals drifted from its items
// is repaired rather than propagated.
func Edit(q model.Quotation) *Calculator {
	c := &Calculator{q: q}
	c.q.Items = append([]model.LineItem(nil), q.Items...)
	for _, it := range c.q.Items {
		if n := itemSeq(it.ID); n >= c.nextID {
			c.nextID = n
		}
	}
	c.recompute()
	return c
}

func itemSeq(id string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "li-"))
	if err != nil {
		return 0
	}
	return n
}

// AddItem appends a fresh line item (quantity 1, rate 0) and returns it.
func (c *Calculator) AddItem() model.LineItem {
	c.nextID++
	it := model.LineItem{
		ID:       fmt.Sprintf("li-%d", c.nextID),
		Quantity: 1,
		Rate:     0,
		Amount:   0,
	}
	c.q.Items = append(c.q.Items, it)
	c.recompute()
	return it
}

// UpdateItem sets one field from raw user input. Numeric fields coerce
// unparseable input to 0 — the same policy the forms have always had —
// so a half-typed number never leaves a stale amount behind. No-op when
// the item id is unknown.
func (c *Calculator) UpdateItem(id string, field ItemField, raw string) {
	for i := range c.q.Items {
		if c.q.Items[i].ID != id {
			continue
		}
		switch field {
		case FieldDescription:
			c.q.Items[i].Description = raw
		case FieldQuantity:
			c.q.Items[i].Quantity = coerceNumber(raw)
		case FieldRate:
			c.q.Items[i].Rate = coerceNumber(raw)
		}
		c.recompute()
		return
	}
}

// RemoveItem deletes a line item; no-op when the id is unknown.
func (c *Calculator) RemoveItem(id string) {
	kept := c.q.Items[:0:0]
	for _, it := range c.q.Items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	c.q.Items = kept
	c.recompute()
}

func coerceNumber(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func (c *Calculator) recompute() {
	subtotal := 0.0
	for i := range c.q.Items {
		c.q.Items[i].Amount = c.q.Items[i].Quantity * c.q.Items[i].Rate
		subtotal += c.q.Items[i].Amount
	}
	c.q.Subtotal = subtotal
	c.q.Tax = subtotal * TaxRate
	c.q.Total = subtotal + c.q.Tax
}

func (c *Calculator) SetLeadName(s string)   { c.q.LeadName = s }
func (c *Calculator) SetCompany(s string)    { c.q.Company = s }
func (c *Calculator) SetDate(s string)       { c.q.Date = s }
func (c *Calculator) SetValidUntil(s string) { c.q.ValidUntil = s }
func (c *Calculator) SetNotes(s string)      { c.q.Notes = s }

// SetStatus accepts any of the known statuses from any current status.
// The workflow is deliberately unconstrained (manual override is part
// of the observed contract); unknown values are ignored.
func (c *Calculator) SetStatus(s model.QuotationStatus) {
	for _, known := range model.QuotationStatuses() {
		if s == known {
			c.q.Status = s
			return
		}
	}
}

func (c *Calculator) Items() []model.LineItem {
	return append([]model.LineItem(nil), c.q.Items...)
}

func (c *Calculator) Subtotal() float64 { return c.q.Subtotal }
func (c *Calculator) Tax() float64      { return c.q.Tax }
func (c *Calculator) Total() float64    { return c.q.Total }

// Snapshot returns the current header, items and totals as a detached
// value ready for saving or display.
func (c *Calculator) Snapshot() model.Quotation {
	q := c.q
	q.Items = append([]model.LineItem(nil), c.q.Items...)
	return q
}
