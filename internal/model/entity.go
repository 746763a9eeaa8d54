package model

import "strings"

// EntityID / SearchText / Validate make each record type usable with the
// generic list controller. SearchText returns the designated searchable
// fields joined with spaces; the controller matches case-insensitive
// substrings against it.

func (l Lead) EntityID() string { return l.ID }
func (l Lead) SearchText() string {
	return strings.Join([]string{l.Name, l.Email, l.Mobile, l.ProjectName}, " ")
}

func (u User) EntityID() string { return u.ID }
func (u User) SearchText() string {
	return strings.Join([]string{u.Username, u.Email, u.Mobile, string(u.Role)}, " ")
}

func (p Payment) EntityID() string { return p.ID }
func (p Payment) SearchText() string {
	return strings.Join([]string{p.ClientName, p.ProjectName}, " ")
}

func (f FollowUp) EntityID() string { return f.ID }
func (f FollowUp) SearchText() string {
	return strings.Join([]string{f.ClientName, f.Email, f.ProjectName}, " ")
}

func (n Notification) EntityID() string { return n.ID }
func (n Notification) SearchText() string {
	return strings.Join([]string{n.Title, n.Description, n.Date}, " ")
}

func (a Assignment) EntityID() string { return a.ID }
func (a Assignment) SearchText() string {
	return strings.Join([]string{a.Name, a.Email, a.Mobile, a.ProjectName}, " ")
}

// The status is searchable so typing "in-progress" narrows to that
// status, standing in for a dedicated filter control.
func (p Project) EntityID() string { return p.ID }
func (p Project) SearchText() string {
	return strings.Join([]string{p.WorkID, p.Name, p.LeadName, p.QuotationNo, string(p.WorkStatus)}, " ")
}

func (q Quotation) EntityID() string { return q.ID }
func (q Quotation) SearchText() string {
	return strings.Join([]string{q.LeadName, q.Company, q.Number}, " ")
}
