package model

import "time"

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	LoanIssued   LoanStatus = "issued"
	LoanReturned LoanStatus = "returned"
)

// Valid reports whether s is a known loan status.
func (s LoanStatus) Valid() bool {
	return s == LoanIssued || s == LoanReturned
}

// Loan records one copy of a book borrowed by a member. It is stored in the
// transactions table.
type Loan struct {
	ID         string     `json:"id"`
	MemberID   string     `json:"memberId"`
	BookID     string     `json:"bookId"`
	IssueDate  time.Time  `json:"issueDate"`
	DueDate    time.Time  `json:"dueDate"`
	ReturnDate *time.Time `json:"returnDate"`
	FineAmount int64      `json:"fineAmount"`
	Status     LoanStatus `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// IsOverdue reports whether an issued loan is past its due date at now.
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.Status == LoanIssued && l.DueDate.Before(now)
}

// LoanView is a loan joined with the book and member it refers to.
type LoanView struct {
	Loan
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	ISBN        *string `json:"isbn"`
	Category    string  `json:"category"`
	MemberName  string  `json:"memberName"`
	MemberEmail string  `json:"memberEmail"`
}

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "active"
	ReservationFulfilled ReservationStatus = "fulfilled"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Reservation is a member's advisory claim on a book with no free copies.
type Reservation struct {
	ID        string            `json:"id"`
	MemberID  string            `json:"memberId"`
	BookID    string            `json:"bookId"`
	Status    ReservationStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
}

// ReservationView is a reservation joined with its book.
type ReservationView struct {
	Reservation
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	ISBN     *string `json:"isbn"`
	Category string  `json:"category"`
}

// IssueRequest is the payload for issuing a book to a member.
type IssueRequest struct {
	MemberID     string `json:"memberId" validate:"required,uuid"`
	BookID       string `json:"bookId" validate:"required,uuid"`
	DaysToReturn int    `json:"daysToReturn" validate:"gte=0"`
}

// IssueResponse is returned after a successful issue.
type IssueResponse struct {
	Message string    `json:"message"`
	LoanID  string    `json:"loanId"`
	DueDate time.Time `json:"dueDate"`
}

// ReturnRequest is the payload for returning a loan.
type ReturnRequest struct {
	LoanID string `json:"loanId" validate:"required,uuid"`
}

// ReturnReceipt is the outcome of a successful return.
type ReturnReceipt struct {
	Message    string    `json:"message"`
	FineAmount int64     `json:"fineAmount"`
	ReturnDate time.Time `json:"returnDate"`
}

// ReserveRequest is the payload for reserving a book.
type ReserveRequest struct {
	BookID string `json:"bookId" validate:"required,uuid"`
}

// ReserveResponse is returned after a reservation is created.
type ReserveResponse struct {
	Message       string `json:"message"`
	ReservationID string `json:"reservationId"`
}
