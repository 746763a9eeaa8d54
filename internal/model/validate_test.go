package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validLead() Lead {
	return Lead{
		Name: "Jane", Email: "jane@acme.test", Mobile: "9876543210",
		ProjectName: "Website", LeadSource: "Referral", InterestPercentage: 50,
	}
}

func TestLeadValidation(t *testing.T) {
	assert.Empty(t, validLead().Validate())

	l := validLead()
	l.Name = "   "
	assert.Contains(t, l.Validate(), "name")

	l = validLead()
	l.Email = "not-an-email"
	assert.Equal(t, "Enter a valid email.", l.Validate()["email"])

	l = validLead()
	l.InterestPercentage = 101
	assert.Contains(t, l.Validate(), "interestPercentage")
	l.InterestPercentage = -1
	assert.Contains(t, l.Validate(), "interestPercentage")
	l.InterestPercentage = 0
	assert.Empty(t, l.Validate())
}

func TestUserValidation(t *testing.T) {
	u := User{Username: "ops", Email: "ops@acme.test", Mobile: "1234567890", Role: RoleManager}
	assert.Empty(t, u.Validate())

	u.Mobile = "12345"
	assert.Equal(t, "Enter a valid 10-digit mobile.", u.Validate()["mobile"])

	u.Mobile = "1234567890"
	u.Role = ""
	assert.Contains(t, u.Validate(), "role")
}

func TestPaymentValidation(t *testing.T) {
	p := Payment{
		ClientName: "Acme", ProjectName: "Site", GivenTo: "Finance",
		InstallmentCount: 2, PaidAmount: 100, RemainingAmount: 400,
		TotalAmount: 500, Date: "2024-01-15",
	}
	assert.Empty(t, p.Validate())

	p.InstallmentCount = 0
	assert.Contains(t, p.Validate(), "installmentCount")
	p.InstallmentCount = 1

	p.PaidAmount = -1
	assert.Contains(t, p.Validate(), "paidAmount")
	p.PaidAmount = 0

	p.TotalAmount = 0
	assert.Contains(t, p.Validate(), "totalAmount")
	p.TotalAmount = 500

	p.Date = "15/01/2024"
	assert.Equal(t, "Enter a date as YYYY-MM-DD", p.Validate()["date"])
}

func TestFollowUpValidation(t *testing.T) {
	f := FollowUp{
		ClientName: "Acme", ProjectName: "Site",
		FollowUpDate: "2024-02-01", NextFollowUp: "2024-02-10",
		FollowUpBy: "sam", Phone: "123", Email: "sam@acme.test",
	}
	assert.Empty(t, f.Validate())

	f.NextFollowUp = "soon"
	assert.Contains(t, f.Validate(), "nextFollowUp")
}

func TestQuotationValidation(t *testing.T) {
	q := Quotation{LeadName: "Jane", Company: "Acme"}
	assert.Empty(t, q.Validate())

	q.ValidUntil = "whenever"
	assert.Contains(t, q.Validate(), "validUntil")
	q.ValidUntil = "2024-06-01"
	assert.Empty(t, q.Validate())

	q.Company = ""
	assert.Contains(t, q.Validate(), "company")
}

func TestProjectValidation(t *testing.T) {
	p := Project{
		WorkID: "W-001", Name: "Website", LeadName: "Jane",
		QuotationNo: "QT-1", WorkStatus: WorkInProgress,
		StartDate: "2024-01-10", DueDate: "2024-02-10", AssignedTo: "sam",
	}
	assert.Empty(t, p.Validate())

	p.WorkID = "  "
	assert.Contains(t, p.Validate(), "workId")
	p.WorkID = "W-001"

	p.LeadName = ""
	assert.Contains(t, p.Validate(), "leadName")
	p.LeadName = "Jane"

	p.DueDate = "next week"
	assert.Equal(t, "Enter a date as YYYY-MM-DD", p.Validate()["dueDate"])

	// Dates are optional; only malformed values are rejected.
	p.StartDate, p.DueDate = "", ""
	assert.Empty(t, p.Validate())
}

func TestSearchTextJoinsDesignatedFields(t *testing.T) {
	l := Lead{Name: "Jane", Email: "j@a.b", Mobile: "123", ProjectName: "Site", Company: "Hidden Co"}
	assert.Equal(t, "Jane j@a.b 123 Site", l.SearchText())

	u := User{Username: "ops", Email: "o@a.b", Mobile: "555", Role: RoleHR}
	assert.Equal(t, "ops o@a.b 555 HR", u.SearchText())

	q := Quotation{LeadName: "Jane", Company: "Acme", Number: "QT-1"}
	assert.Equal(t, "Jane Acme QT-1", q.SearchText())

	// The work status is part of a project's search text, so searching
	// for a status narrows the list to it.
	p := Project{WorkID: "W-1", Name: "Website", LeadName: "Jane", QuotationNo: "QT-1", WorkStatus: WorkCompleted}
	assert.Equal(t, "W-1 Website Jane QT-1 completed", p.SearchText())
}
