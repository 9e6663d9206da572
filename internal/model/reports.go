package model

import "time"

// DashboardStats is the aggregate snapshot shown on the admin dashboard.
type DashboardStats struct {
	TotalBooks     int   `json:"totalBooks"`
	AvailableBooks int   `json:"availableBooks"`
	TotalMembers   int   `json:"totalMembers"`
	ActiveLoans    int   `json:"activeTransactions"`
	OverdueLoans   int   `json:"overdueBooks"`
	TotalFines     int64 `json:"totalFines"`
}

// OverdueLoan is an issued loan past its due date.
type OverdueLoan struct {
	LoanView
	DaysOverdue int `json:"daysOverdue"`
}

// PopularBook counts how often a title has been issued.
type PopularBook struct {
	BookID     string `json:"bookId"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Category   string `json:"category"`
	IssueCount int    `json:"issueCount"`
}

// ActiveMember counts how many loans a member has taken.
type ActiveMember struct {
	MemberID      string `json:"memberId"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	BooksBorrowed int    `json:"booksBorrowed"`
}

// MonthlyActivity summarises circulation for one calendar month.
type MonthlyActivity struct {
	Month        string `json:"month"`
	TotalIssues  int    `json:"totalIssues"`
	TotalReturns int    `json:"totalReturns"`
	TotalFines   int64  `json:"totalFines"`
}

// CategoryShare is the size of one catalog category.
type CategoryShare struct {
	Category    string `json:"category"`
	BookCount   int    `json:"bookCount"`
	TotalCopies int    `json:"totalCopies"`
}

// QueryStatus is the state of a help-desk query.
type QueryStatus string

const (
	QueryOpen     QueryStatus = "open"
	QueryResolved QueryStatus = "resolved"
	QueryClosed   QueryStatus = "closed"
)

// Valid reports whether s is a known query status.
func (s QueryStatus) Valid() bool {
	switch s {
	case QueryOpen, QueryResolved, QueryClosed:
		return true
	}
	return false
}

// HelpQuery is a question a member sends to the library staff.
type HelpQuery struct {
	ID            string      `json:"id"`
	MemberID      string      `json:"memberId"`
	Subject       string      `json:"subject"`
	Message       string      `json:"message"`
	Status        QueryStatus `json:"status"`
	AdminResponse string      `json:"adminResponse"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// HelpQueryView is a query joined with the member who sent it.
type HelpQueryView struct {
	HelpQuery
	MemberName  string `json:"memberName"`
	MemberEmail string `json:"memberEmail"`
}

// QueryRequest is the payload for submitting a query.
type QueryRequest struct {
	Subject string `json:"subject" validate:"required,max=255"`
	Message string `json:"message" validate:"required"`
}

// QueryResponseRequest is the payload an admin uses to answer a query.
type QueryResponseRequest struct {
	AdminResponse string      `json:"adminResponse"`
	Status        QueryStatus `json:"status"`
}
