package model

import (
	"regexp"
	"strings"
	"time"
)

var (
	emailRe  = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	mobileRe = regexp.MustCompile(`^[0-9]{10}$`)
)

func ValidEmail(s string) bool  { return emailRe.MatchString(strings.TrimSpace(s)) }
func ValidMobile(s string) bool { return mobileRe.MatchString(strings.TrimSpace(s)) }

// ValidDate accepts YYYY-MM-DD.
func ValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	return err == nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func (l Lead) Validate() FieldErrors {
	errs := FieldErrors{}
	if blank(l.Name) {
		errs["name"] = "Client name is required."
	}
	if blank(l.Email) {
		errs["email"] = "Email is required."
	} else if !ValidEmail(l.Email) {
		errs["email"] = "Enter a valid email."
	}
	if blank(l.Mobile) {
		errs["mobile"] = "Contact is required."
	}
	if blank(l.ProjectName) {
		errs["projectName"] = "Project name is required."
	}
	if blank(l.LeadSource) {
		errs["leadSource"] = "Lead source is required."
	}
	if l.InterestPercentage < 0 || l.InterestPercentage > 100 {
		errs["interestPercentage"] = "Enter a valid percentage (0-100)."
	}
	return errs
}

func (u User) Validate() FieldErrors {
	errs := FieldErrors{}
	if blank(u.Username) {
		errs["username"] = "Username is required."
	}
	if blank(u.Email) {
		errs["email"] = "Email is required."
	} else if !ValidEmail(u.Email) {
		errs["email"] = "Enter a valid email."
	}
	if blank(u.Mobile) {
		errs["mobile"] = "Phone is required."
	} else if !ValidMobile(u.Mobile) {
		errs["mobile"] = "Enter a valid 10-digit mobile."
	}
	if blank(string(u.Role)) {
		errs["role"] = "Role is required."
	}
	return errs
}

func (p Payment) Validate() FieldErrors {
	errs := FieldErrors{}
	if blank(p.ClientName) {
		errs["clientName"] = "Client Name is required"
	}
	if blank(p.ProjectName) {
		errs["projectName"] = "Project Name is required"
	}
	if blank(p.GivenTo) {
		errs["givenTo"] = "Given To is required"
	}
	if p.InstallmentCount <= 0 {
		errs["installmentCount"] = "Installments must be > 0"
	}
	if p.PaidAmount < 0 {
		errs["paidAmount"] = "Paid cannot be negative"
	}
	if p.RemainingAmount < 0 {
		errs["remainingAmount"] = "Remaining cannot be negative"
	}
	if p.TotalAmount <= 0 {
		errs["totalAmount"] = "Total Amount must be > 0"
	}
	if blank(p.Date) {
		errs["date"] = "Date is required"
	} else if !ValidDate(p.Date) {
		errs["date"] = "Enter a date as YYYY-MM-DD"
	}
	return errs
}

func (f FollowUp) Validate() FieldErrors {
	errs := FieldErrors{}
	if blank(f.ClientName) {
		errs["clientName"] = "Client name is required."
	}
	if blank(f.ProjectName) {
		errs["projectName"] = "Project name is required."
	}
	if blank(f.FollowUpDate) {
		errs["followUpDate"] = "Follow-up date is required."
	} else if !ValidDate(f.FollowUpDate) {
		errs["followUpDate"] = "Enter a date as YYYY-MM-DD"
	}
	if blank(f.NextFollowUp) {
		errs["nextFollowUp"] = "Next follow-up is required."
	} else if !ValidDate(f.NextFollowUp) {
		errs["nextFollowUp"] = "Enter a date as YYYY-MM-DD"
	}
	if blank(f.FollowUpBy) {
		errs["followUpBy"] = "Follow-up by is required."
	}
	if blank(f.Phone) {
		errs["phone"] = "Phone is required."
	}
	if blank(f.Email) {
		errs["email"] = "Email is required."
	} else if !ValidEmail(f.Email) {
		errs["email"] = "Enter a valid email."
	}
	return errs
}

func (n Notification) Validate() FieldErrors {
	errs := FieldErrors{}
	if blank(n.Title) {
		errs["title"] = "Title is required."
	}
	if blank(n.Description) {
		errs["description"] = "Description is required."
	}
	if blank(n.Date) {
		errs["date"] = "Date is required."
	} else if !ValidDate(n.Date) {
		errs["date"] = "Enter a date as YYYY-MM-DD"
	}
	return errs
}

func (a Assignment) Validate() FieldErrors {
	errs := FieldErrors{}
	if blank(a.Name) {
		errs["name"] = "Client name is required"
	}
	if blank(a.Email) {
		errs["email"] = "Email is required"
	} else if !ValidEmail(a.Email) {
		errs["email"] = "Enter a valid email"
	}
	if blank(a.Mobile) {
		errs["mobile"] = "Mobile is required"
	}
	if blank(a.ProjectName) {
		errs["projectName"] = "Project name is required"
	}
	if blank(a.AssignTask) {
		errs["assigntask"] = "Assign task is required"
	}
	if blank(a.AssignTo) {
		errs["assignTo"] = "Assign To is required"
	}
	return errs
}

func (p Project) Validate() FieldErrors {
	errs := FieldErrors{}
	if blank(p.WorkID) {
		errs["workId"] = "Work ID is required."
	}
	if blank(p.Name) {
		errs["name"] = "Project name is required."
	}
	if blank(p.LeadName) {
		errs["leadName"] = "Lead name is required."
	}
	if !blank(p.StartDate) && !ValidDate(p.StartDate) {
		errs["startDate"] = "Enter a date as YYYY-MM-DD"
	}
	if !blank(p.DueDate) && !ValidDate(p.DueDate) {
		errs["dueDate"] = "Enter a date as YYYY-MM-DD"
	}
	return errs
}

func (q Quotation) Validate() FieldErrors {
	errs := FieldErrors{}
	if blank(q.LeadName) {
		errs["leadName"] = "Lead name is required."
	}
	if blank(q.Company) {
		errs["company"] = "Company is required."
	}
	if !blank(q.ValidUntil) && !ValidDate(q.ValidUntil) {
		errs["validUntil"] = "Enter a date as YYYY-MM-DD"
	}
	return errs
}
