package tui

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"crmdeck/internal/api"
	"crmdeck/internal/model"
)

// Field parsing for numeric inputs: out-of-band values are chosen so
// the entity's own validation produces the user-facing message.

func parseIntOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseFloatOr(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return f
}

func formatInt(n int) string { return strconv.Itoa(n) }

func formatAmount(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) }

func roleOptions() []string {
	roles := model.UserRoles()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

func leadSpec() screenSpec[model.Lead] {
	return screenSpec[model.Lead]{
		name:     "Leads",
		singular: "Lead",
		columns: []column[model.Lead]{
			{"Name", 18, func(l model.Lead) string { return l.Name }},
			{"Email", 22, func(l model.Lead) string { return l.Email }},
			{"Mobile", 12, func(l model.Lead) string { return l.Mobile }},
			{"Project", 16, func(l model.Lead) string { return l.ProjectName }},
			{"Source", 12, func(l model.Lead) string { return l.LeadSource }},
			{"Interest", 8, func(l model.Lead) string { return formatInt(l.InterestPercentage) + "%" }},
		},
		fields: []formField[model.Lead]{
			{key: "name", label: "Client name", get: func(l model.Lead) string { return l.Name }, set: func(l *model.Lead, v string) { l.Name = v }},
			{key: "email", label: "Email", get: func(l model.Lead) string { return l.Email }, set: func(l *model.Lead, v string) { l.Email = v }},
			{key: "mobile", label: "Contact", get: func(l model.Lead) string { return l.Mobile }, set: func(l *model.Lead, v string) { l.Mobile = v }},
			{key: "company", label: "Company", get: func(l model.Lead) string { return l.Company }, set: func(l *model.Lead, v string) { l.Company = v }},
			{key: "leadSource", label: "Lead source", get: func(l model.Lead) string { return l.LeadSource }, set: func(l *model.Lead, v string) { l.LeadSource = v }},
			{key: "projectName", label: "Project name", get: func(l model.Lead) string { return l.ProjectName }, set: func(l *model.Lead, v string) { l.ProjectName = v }},
			{key: "interestPercentage", label: "Interest (0-100)",
				get: func(l model.Lead) string { return formatInt(l.InterestPercentage) },
				set: func(l *model.Lead, v string) { l.InterestPercentage = parseIntOr(v, -1) }},
		},
	}
}

func userSpec() screenSpec[model.User] {
	return screenSpec[model.User]{
		name:     "Users",
		singular: "User",
		columns: []column[model.User]{
			{"Username", 16, func(u model.User) string { return u.Username }},
			{"Email", 22, func(u model.User) string { return u.Email }},
			{"Mobile", 12, func(u model.User) string { return u.Mobile }},
			{"Role", 12, func(u model.User) string { return string(u.Role) }},
			{"Status", 8, func(u model.User) string { return string(u.Status) }},
		},
		fields: []formField[model.User]{
			{key: "username", label: "Username", get: func(u model.User) string { return u.Username }, set: func(u *model.User, v string) { u.Username = v }},
			{key: "email", label: "Email", get: func(u model.User) string { return u.Email }, set: func(u *model.User, v string) { u.Email = v }},
			{key: "mobile", label: "Phone (10 digits)", get: func(u model.User) string { return u.Mobile }, set: func(u *model.User, v string) { u.Mobile = v }},
			{key: "role", label: "Role", kind: fieldSelect, options: roleOptions(),
				get: func(u model.User) string { return string(u.Role) },
				set: func(u *model.User, v string) { u.Role = model.UserRole(v) }},
			{key: "status", label: "Status", kind: fieldSelect,
				options: []string{string(model.UserEnabled), string(model.UserDisabled)},
				get:     func(u model.User) string { return string(u.Status) },
				set:     func(u *model.User, v string) { u.Status = model.UserStatus(v) }},
		},
	}
}

func paymentSpec() screenSpec[model.Payment] {
	return screenSpec[model.Payment]{
		name:     "Payments",
		singular: "Payment",
		columns: []column[model.Payment]{
			{"Client", 16, func(p model.Payment) string { return p.ClientName }},
			{"Project", 16, func(p model.Payment) string { return p.ProjectName }},
			{"Method", 13, func(p model.Payment) string { return string(p.PaymentMethod) }},
			{"Total", 10, func(p model.Payment) string { return formatAmount(p.TotalAmount) }},
			{"Paid", 10, func(p model.Payment) string { return formatAmount(p.PaidAmount) }},
			{"Status", 14, func(p model.Payment) string { return string(p.Status) }},
			{"Date", 10, func(p model.Payment) string { return p.Date }},
		},
		fields: []formField[model.Payment]{
			{key: "clientName", label: "Client name", get: func(p model.Payment) string { return p.ClientName }, set: func(p *model.Payment, v string) { p.ClientName = v }},
			{key: "projectName", label: "Project name", get: func(p model.Payment) string { return p.ProjectName }, set: func(p *model.Payment, v string) { p.ProjectName = v }},
			{key: "paymentMethod", label: "Payment method", kind: fieldSelect,
				options: []string{string(model.PayCash), string(model.PayBankTransfer), string(model.PayOnline)},
				get:     func(p model.Payment) string { return string(p.PaymentMethod) },
				set:     func(p *model.Payment, v string) { p.PaymentMethod = model.PaymentMethod(v) }},
			{key: "installmentCount", label: "Installments",
				get: func(p model.Payment) string { return formatInt(p.InstallmentCount) },
				set: func(p *model.Payment, v string) { p.InstallmentCount = parseIntOr(v, 0) }},
			{key: "totalAmount", label: "Total amount",
				get: func(p model.Payment) string { return formatAmount(p.TotalAmount) },
				set: func(p *model.Payment, v string) { p.TotalAmount = parseFloatOr(v, -1) }},
			{key: "paidAmount", label: "Paid amount",
				get: func(p model.Payment) string { return formatAmount(p.PaidAmount) },
				set: func(p *model.Payment, v string) { p.PaidAmount = parseFloatOr(v, -1) }},
			{key: "remainingAmount", label: "Remaining amount",
				get: func(p model.Payment) string { return formatAmount(p.RemainingAmount) },
				set: func(p *model.Payment, v string) { p.RemainingAmount = parseFloatOr(v, -1) }},
			{key: "givenTo", label: "Given to", get: func(p model.Payment) string { return p.GivenTo }, set: func(p *model.Payment, v string) { p.GivenTo = v }},
			{key: "status", label: "Status", kind: fieldSelect,
				options: []string{string(model.PaymentPending), string(model.PaymentPartiallyPaid), string(model.PaymentCompleted)},
				get:     func(p model.Payment) string { return string(p.Status) },
				set:     func(p *model.Payment, v string) { p.Status = model.PaymentStatus(v) }},
			{key: "date", label: "Date (YYYY-MM-DD)", get: func(p model.Payment) string { return p.Date }, set: func(p *model.Payment, v string) { p.Date = v }},
		},
	}
}

func followUpSpec() screenSpec[model.FollowUp] {
	return screenSpec[model.FollowUp]{
		name:     "Follow-ups",
		singular: "Follow-up",
		columns: []column[model.FollowUp]{
			{"Client", 16, func(f model.FollowUp) string { return f.ClientName }},
			{"Project", 14, func(f model.FollowUp) string { return f.ProjectName }},
			{"Date", 10, func(f model.FollowUp) string { return f.FollowUpDate }},
			{"Next", 10, func(f model.FollowUp) string { return f.NextFollowUp }},
			{"By", 12, func(f model.FollowUp) string { return f.FollowUpBy }},
			{"Status", 9, func(f model.FollowUp) string { return string(f.Status) }},
			{"Quote", 5, func(f model.FollowUp) string {
				if f.QuotationFile != "" {
					return "yes"
				}
				return ""
			}},
		},
		fields: []formField[model.FollowUp]{
			{key: "clientName", label: "Client name", get: func(f model.FollowUp) string { return f.ClientName }, set: func(f *model.FollowUp, v string) { f.ClientName = v }},
			{key: "projectName", label: "Project name", get: func(f model.FollowUp) string { return f.ProjectName }, set: func(f *model.FollowUp, v string) { f.ProjectName = v }},
			{key: "followUpDate", label: "Follow-up date (YYYY-MM-DD)", get: func(f model.FollowUp) string { return f.FollowUpDate }, set: func(f *model.FollowUp, v string) { f.FollowUpDate = v }},
			{key: "remarks", label: "Channel", kind: fieldSelect,
				options: []string{string(model.FollowUpCall), string(model.FollowUpEmail), string(model.FollowUpWhatsApp)},
				get:     func(f model.FollowUp) string { return string(f.Remarks) },
				set:     func(f *model.FollowUp, v string) { f.Remarks = model.FollowUpChannel(v) }},
			{key: "nextFollowUp", label: "Next follow-up (YYYY-MM-DD)", get: func(f model.FollowUp) string { return f.NextFollowUp }, set: func(f *model.FollowUp, v string) { f.NextFollowUp = v }},
			{key: "followUpBy", label: "Follow-up by", get: func(f model.FollowUp) string { return f.FollowUpBy }, set: func(f *model.FollowUp, v string) { f.FollowUpBy = v }},
			{key: "status", label: "Status", kind: fieldSelect,
				options: []string{string(model.FollowUpPending), string(model.FollowUpApproved), string(model.FollowUpRejected)},
				get:     func(f model.FollowUp) string { return string(f.Status) },
				set:     func(f *model.FollowUp, v string) { f.Status = model.FollowUpStatus(v) }},
			{key: "phone", label: "Phone", get: func(f model.FollowUp) string { return f.Phone }, set: func(f *model.FollowUp, v string) { f.Phone = v }},
			{key: "email", label: "Email", get: func(f model.FollowUp) string { return f.Email }, set: func(f *model.FollowUp, v string) { f.Email = v }},
		},
	}
}

func notificationSpec() screenSpec[model.Notification] {
	return screenSpec[model.Notification]{
		name:     "Notifications",
		singular: "Notification",
		columns: []column[model.Notification]{
			{"Title", 20, func(n model.Notification) string { return n.Title }},
			{"Date", 10, func(n model.Notification) string { return n.Date }},
			{"Description", 36, func(n model.Notification) string { return n.Description }},
		},
		fields: []formField[model.Notification]{
			{key: "title", label: "Title", get: func(n model.Notification) string { return n.Title }, set: func(n *model.Notification, v string) { n.Title = v }},
			{key: "description", label: "Description", get: func(n model.Notification) string { return n.Description }, set: func(n *model.Notification, v string) { n.Description = v }},
			{key: "date", label: "Date (YYYY-MM-DD)", get: func(n model.Notification) string { return n.Date }, set: func(n *model.Notification, v string) { n.Date = v }},
		},
	}
}

func assignmentSpec() screenSpec[model.Assignment] {
	return screenSpec[model.Assignment]{
		name:     "Assignments",
		singular: "Assignment",
		columns: []column[model.Assignment]{
			{"Name", 16, func(a model.Assignment) string { return a.Name }},
			{"Project", 16, func(a model.Assignment) string { return a.ProjectName }},
			{"Assigned to", 14, func(a model.Assignment) string { return a.AssignTo }},
			{"Task", 20, func(a model.Assignment) string { return a.AssignTask }},
			{"Status", 8, func(a model.Assignment) string { return string(a.Status) }},
		},
		fields: []formField[model.Assignment]{
			{key: "name", label: "Client name", get: func(a model.Assignment) string { return a.Name }, set: func(a *model.Assignment, v string) { a.Name = v }},
			{key: "email", label: "Email", get: func(a model.Assignment) string { return a.Email }, set: func(a *model.Assignment, v string) { a.Email = v }},
			{key: "mobile", label: "Mobile", get: func(a model.Assignment) string { return a.Mobile }, set: func(a *model.Assignment, v string) { a.Mobile = v }},
			{key: "projectName", label: "Project name", get: func(a model.Assignment) string { return a.ProjectName }, set: func(a *model.Assignment, v string) { a.ProjectName = v }},
			{key: "assigntask", label: "Task", get: func(a model.Assignment) string { return a.AssignTask }, set: func(a *model.Assignment, v string) { a.AssignTask = v }},
			{key: "assignTo", label: "Assign to", get: func(a model.Assignment) string { return a.AssignTo }, set: func(a *model.Assignment, v string) { a.AssignTo = v }},
			{key: "status", label: "Status", kind: fieldSelect,
				options: []string{string(model.AssignNew), string(model.AssignPositive)},
				get:     func(a model.Assignment) string { return string(a.Status) },
				set:     func(a *model.Assignment, v string) { a.Status = model.AssignmentStatus(v) }},
			{key: "source", label: "Source", get: func(a model.Assignment) string { return a.Source }, set: func(a *model.Assignment, v string) { a.Source = v }},
			{key: "lastFollowUp", label: "Last follow-up", get: func(a model.Assignment) string { return a.LastFollowUp }, set: func(a *model.Assignment, v string) { a.LastFollowUp = v }},
		},
	}
}

func workStatusOptions() []string {
	statuses := model.WorkStatuses()
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func projectSpec() screenSpec[model.Project] {
	return screenSpec[model.Project]{
		name:     "Projects",
		singular: "Project",
		columns: []column[model.Project]{
			{"Work ID", 8, func(p model.Project) string { return p.WorkID }},
			{"Project", 18, func(p model.Project) string { return p.Name }},
			{"Lead", 14, func(p model.Project) string { return p.LeadName }},
			{"Quote #", 10, func(p model.Project) string { return p.QuotationNo }},
			{"Status", 11, func(p model.Project) string { return string(p.WorkStatus) }},
			{"Start", 10, func(p model.Project) string { return p.StartDate }},
			{"Due", 10, func(p model.Project) string { return p.DueDate }},
			{"Assigned", 12, func(p model.Project) string { return p.AssignedTo }},
		},
		fields: []formField[model.Project]{
			{key: "workId", label: "Work ID", get: func(p model.Project) string { return p.WorkID }, set: func(p *model.Project, v string) { p.WorkID = v }},
			{key: "name", label: "Project name", get: func(p model.Project) string { return p.Name }, set: func(p *model.Project, v string) { p.Name = v }},
			{key: "leadName", label: "Lead name", get: func(p model.Project) string { return p.LeadName }, set: func(p *model.Project, v string) { p.LeadName = v }},
			{key: "quotationNo", label: "Quotation number", get: func(p model.Project) string { return p.QuotationNo }, set: func(p *model.Project, v string) { p.QuotationNo = v }},
			{key: "workStatus", label: "Status", kind: fieldSelect, options: workStatusOptions(),
				get: func(p model.Project) string { return string(p.WorkStatus) },
				set: func(p *model.Project, v string) { p.WorkStatus = model.WorkStatus(v) }},
			{key: "startDate", label: "Start date (YYYY-MM-DD)", get: func(p model.Project) string { return p.StartDate }, set: func(p *model.Project, v string) { p.StartDate = v }},
			{key: "dueDate", label: "Due date (YYYY-MM-DD)", get: func(p model.Project) string { return p.DueDate }, set: func(p *model.Project, v string) { p.DueDate = v }},
			{key: "assignedTo", label: "Assigned to", get: func(p model.Project) string { return p.AssignedTo }, set: func(p *model.Project, v string) { p.AssignedTo = v }},
		},
	}
}

// usersScreen adds the enable/disable toggle on top of the shared
// management screen.
type usersScreen struct {
	*managementScreen[model.User]
	client *api.Client
}

func newUsersScreen(client *api.Client) *usersScreen {
	return &usersScreen{
		managementScreen: newManagementScreen(userSpec(), client.Users()),
		client:           client,
	}
}

func (s *usersScreen) help() string {
	return s.managementScreen.help() + "   t toggle status"
}

func (s *usersScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case toggleStatusDoneMsg:
		if msg.err != nil {
			return flashCmd(flashError, api.UserMessage(msg.err))
		}
		return tea.Batch(flashCmd(flashSuccess, "User status updated"), refreshCmd(s.ctl))

	case tea.KeyMsg:
		if !s.capturing() && msg.String() == "t" {
			u, ok := s.selectedEntity()
			if !ok {
				return nil
			}
			next := model.UserEnabled
			if u.Status == model.UserEnabled {
				next = model.UserDisabled
			}
			id := u.ID
			client := s.client
			return func() tea.Msg {
				ctx, cancel := withTimeout()
				defer cancel()
				return toggleStatusDoneMsg{err: client.ToggleUserStatus(ctx, id, next)}
			}
		}
	}
	return s.managementScreen.update(msg)
}
