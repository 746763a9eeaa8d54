package model

// FieldErrors maps a form field name to a human-readable message.
// An alias (not a named type) so entity Validate methods satisfy the
// listctl.Entity interface directly.
type FieldErrors = map[string]string

type UserRole string

const (
	RoleManager    UserRole = "Manager"
	RoleTeamLeader UserRole = "Team Leader"
	RoleTechHead   UserRole = "Tech Head"
	RoleCEO        UserRole = "CEO"
	RoleDirector   UserRole = "Director"
	RoleSalesTeam  UserRole = "Sales Team"
	RoleSalesHead  UserRole = "Sales Head"
	RoleHR         UserRole = "HR"
)

func UserRoles() []UserRole {
	return []UserRole{
		RoleManager, RoleTeamLeader, RoleTechHead, RoleCEO,
		RoleDirector, RoleSalesTeam, RoleSalesHead, RoleHR,
	}
}

type UserStatus string

const (
	UserEnabled  UserStatus = "enable"
	UserDisabled UserStatus = "disable"
)

type Lead struct {
	ID                 string `json:"id,omitempty"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Mobile             string `json:"mobile"`
	Company            string `json:"company"`
	LeadSource         string `json:"leadSource"`
	ProjectName        string `json:"projectName"`
	InterestPercentage int    `json:"interestPercentage"`
}

type User struct {
	ID       string     `json:"id,omitempty"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Mobile   string     `json:"mobile"`
	Role     UserRole   `json:"role"`
	Status   UserStatus `json:"status"`
}

type PaymentMethod string

const (
	PayCash         PaymentMethod = "Cash"
	PayBankTransfer PaymentMethod = "Bank Transfer"
	PayOnline       PaymentMethod = "Online"
)

type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "Pending"
	PaymentPartiallyPaid PaymentStatus = "Partially Paid"
	PaymentCompleted     PaymentStatus = "Completed"
)

type Payment struct {
	ID               string        `json:"id,omitempty"`
	ClientName       string        `json:"clientName"`
	ProjectName      string        `json:"projectName"`
	PaymentMethod    PaymentMethod `json:"paymentMethod"`
	InstallmentCount int           `json:"installmentCount"`
	PaidAmount       float64       `json:"paidAmount"`
	RemainingAmount  float64       `json:"remainingAmount"`
	GivenTo          string        `json:"givenTo"`
	TotalAmount      float64       `json:"totalAmount"`
	Status           PaymentStatus `json:"status"`
	Date             string        `json:"date"` // YYYY-MM-DD
}

type FollowUpChannel string

const (
	FollowUpCall     FollowUpChannel = "Call"
	FollowUpEmail    FollowUpChannel = "Email"
	FollowUpWhatsApp FollowUpChannel = "WhatsApp"
)

type FollowUpStatus string

const (
	FollowUpPending  FollowUpStatus = "Pending"
	FollowUpApproved FollowUpStatus = "Approved"
	FollowUpRejected FollowUpStatus = "Rejected"
)

type FollowUp struct {
	ID            string          `json:"id,omitempty"`
	ClientName    string          `json:"clientName"`
	ProjectName   string          `json:"projectName"`
	FollowUpDate  string          `json:"followUpDate"` // YYYY-MM-DD
	Remarks       FollowUpChannel `json:"remarks"`
	NextFollowUp  string          `json:"nextFollowUp"` // YYYY-MM-DD
	FollowUpBy    string          `json:"followUpBy"`
	Status        FollowUpStatus  `json:"status"`
	Phone         string          `json:"phone"`
	Email         string          `json:"email"`
	QuotationFile string          `json:"quotationFile,omitempty"` // server file reference
}

type Notification struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"` // YYYY-MM-DD
}

type AssignmentStatus string

const (
	AssignNew      AssignmentStatus = "New"
	AssignPositive AssignmentStatus = "Positive"
)

// Assignment is a lead handed to a technician/user with a concrete task.
type Assignment struct {
	ID           string           `json:"id,omitempty"`
	Name         string           `json:"name"`
	Email        string           `json:"email"`
	Mobile       string           `json:"mobile"`
	ProjectName  string           `json:"projectName"`
	AssignTask   string           `json:"assigntask"`
	Status       AssignmentStatus `json:"status"`
	Source       string           `json:"source"`
	LastFollowUp string           `json:"lastFollowUp"`
	AssignTo     string           `json:"assignTo"`
}

type QuotationStatus string

const (
	QuotationDraft    QuotationStatus = "draft"
	QuotationSent     QuotationStatus = "sent"
	QuotationAccepted QuotationStatus = "accepted"
	QuotationRejected QuotationStatus = "rejected"
)

func QuotationStatuses() []QuotationStatus {
	return []QuotationStatus{QuotationDraft, QuotationSent, QuotationAccepted, QuotationRejected}
}

type LineItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

type Quotation struct {
	ID         string          `json:"id,omitempty"`
	LeadName   string          `json:"leadName"`
	Company    string          `json:"company"`
	Number     string          `json:"quotationNumber"`
	Date       string          `json:"date"`       // YYYY-MM-DD
	ValidUntil string          `json:"validUntil"` // YYYY-MM-DD
	Items      []LineItem      `json:"items"`
	Subtotal   float64         `json:"subtotal"`
	Tax        float64         `json:"tax"`
	Total      float64         `json:"total"`
	Status     QuotationStatus `json:"status"`
	Notes      string          `json:"notes"`
}

type WorkStatus string

const (
	WorkNotStarted WorkStatus = "not-started"
	WorkInProgress WorkStatus = "in-progress"
	WorkCompleted  WorkStatus = "completed"
)

func WorkStatuses() []WorkStatus {
	return []WorkStatus{WorkNotStarted, WorkInProgress, WorkCompleted}
}

// Project tracks delivery of won work against its originating lead and
// quotation.
type Project struct {
	ID          string     `json:"id,omitempty"`
	WorkID      string     `json:"workId"`
	Name        string     `json:"name"`
	LeadName    string     `json:"leadName"`
	QuotationNo string     `json:"quotationNo"`
	WorkStatus  WorkStatus `json:"workStatus"`
	StartDate   string     `json:"startDate"` // YYYY-MM-DD
	DueDate     string     `json:"dueDate"`   // YYYY-MM-DD
	AssignedTo  string     `json:"assignedTo"`
}

// MonthlyFollowUps is one bar of the dashboard's approved/rejected series.
type MonthlyFollowUps struct {
	Month    string `json:"month"`
	Approved int    `json:"approved"`
	Rejected int    `json:"rejected"`
}

type DashboardStats struct {
	TotalLeads      int                `json:"totalLeads"`
	TotalQuotations int                `json:"totalQuotations"`
	TotalFollowUps  int                `json:"totalFollowUps"`
	Monthly         []MonthlyFollowUps `json:"monthly,omitempty"`
}

// Technician is the reduced user shape returned by the assignable-user
// listing, consumed by the lead assignment picker.
type Technician struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Mobile   string `json:"mobile"`
}

// SessionUser is the profile payload returned alongside a login token.
type SessionUser struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Mobile   string   `json:"mobile"`
	Role     UserRole `json:"role"`
}
