// Package model defines the core domain types for the library circulation system.
package model

import "time"

// Role is the access level of a member account.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Book is a catalog title together with its copy counts.
//
// AvailableCopies is only ever changed by the circulation ledger and by
// catalog edits that keep 0 <= AvailableCopies <= TotalCopies.
type Book struct {
	ID              string    `json:"id"`
	ISBN            *string   `json:"isbn"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Category        string    `json:"category"`
	Publisher       string    `json:"publisher"`
	PublicationYear int       `json:"publicationYear"`
	Description     string    `json:"description"`
	TotalCopies     int       `json:"totalCopies"`
	AvailableCopies int       `json:"availableCopies"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Issued returns the number of copies currently out on loan.
func (b *Book) Issued() int {
	return b.TotalCopies - b.AvailableCopies
}

// IsAvailable returns true when at least one copy can be issued.
func (b *Book) IsAvailable() bool {
	return b.AvailableCopies > 0
}

// Member is a registered library account.
type Member struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the member has the admin role.
func (m *Member) IsAdmin() bool {
	return m.Role == RoleAdmin
}

// Page describes the slice of a listing that was returned.
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPage computes the page count for total rows split into limit-sized pages.
func NewPage(page, limit, total int) Page {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Page{Page: page, Limit: limit, Total: total, Pages: pages}
}

// Offset returns the number of rows to skip for the given page.
func Offset(page, limit int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * limit
}

// BookFilter narrows a catalog listing.
type BookFilter struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

// MemberFilter narrows a member listing.
type MemberFilter struct {
	Search string
	Page   int
	Limit  int
}

// LoanFilter narrows the admin loan listing.
type LoanFilter struct {
	Status LoanStatus
	Page   int
	Limit  int
}

// BookList is a page of books.
type BookList struct {
	Books      []Book `json:"books"`
	Pagination Page   `json:"pagination"`
}

// MemberList is a page of members.
type MemberList struct {
	Members    []Member `json:"members"`
	Pagination Page     `json:"pagination"`
}

// LoanList is a page of loans.
type LoanList struct {
	Loans      []LoanView `json:"loans"`
	Pagination Page       `json:"pagination"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is returned by operations that have nothing else to report.
type MessageResponse struct {
	Message string `json:"message"`
}
