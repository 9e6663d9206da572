// Package repository declares the storage ports the services depend on.
// Concrete implementations live in the postgres and memory subpackages.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a write collides with a unique constraint.
var ErrDuplicate = errors.New("duplicate key")

// ErrReferenced is returned when a delete is blocked by rows that still
// point at the target.
var ErrReferenced = errors.New("row is still referenced")

// ErrConflict is returned when a guarded update matched no rows, for example
// a copy-count change that would leave the allowed range.
var ErrConflict = errors.New("guarded update matched no rows")

// Store groups the per-entity repositories and the transaction scope.
type Store interface {
	Books() BookRepository
	Members() MemberRepository
	Loans() LoanRepository
	Reservations() ReservationRepository
	Queries() QueryRepository
	Reports() ReportRepository

	// WithTx runs fn against a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back when fn returns
	// an error or panics. Calling WithTx on a transaction-bound Store runs fn
	// in the existing transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// BookRepository persists catalog entries.
type BookRepository interface {
	Create(ctx context.Context, b *model.Book) error
	GetByID(ctx context.Context, id string) (*model.Book, error)
	// GetForUpdate reads a book and holds its row lock until the enclosing
	// transaction ends.
	GetForUpdate(ctx context.Context, id string) (*model.Book, error)
	List(ctx context.Context, f model.BookFilter) ([]model.Book, int, error)
	Categories(ctx context.Context) ([]string, error)
	// Update replaces every mutable column, copy counts included.
	Update(ctx context.Context, b *model.Book) error
	// AdjustAvailable adds delta to available_copies. It returns ErrConflict
	// when the result would leave [0, total_copies].
	AdjustAvailable(ctx context.Context, id string, delta int) error
	Delete(ctx context.Context, id string) error
}

// MemberRepository persists member accounts.
type MemberRepository interface {
	Create(ctx context.Context, m *model.Member) error
	GetByID(ctx context.Context, id string) (*model.Member, error)
	GetByEmail(ctx context.Context, email string) (*model.Member, error)
	// List returns accounts with the member role only.
	List(ctx context.Context, f model.MemberFilter) ([]model.Member, int, error)
	Update(ctx context.Context, m *model.Member) error
	Delete(ctx context.Context, id string) error
}

// LoanRepository persists loans (the transactions table).
type LoanRepository interface {
	Create(ctx context.Context, l *model.Loan) error
	GetForUpdate(ctx context.Context, id string) (*model.Loan, error)
	// FindIssued returns the issued loan for the pair or ErrNotFound.
	FindIssued(ctx context.Context, memberID, bookID string) (*model.Loan, error)
	MarkReturned(ctx context.Context, id string, returnedAt time.Time, fine int64) error
	CountIssuedByBook(ctx context.Context, bookID string) (int, error)
	CountByBook(ctx context.Context, bookID string) (int, error)
	CountIssuedByMember(ctx context.Context, memberID string) (int, error)
	// ListIssuedByMember orders by due date, earliest first.
	ListIssuedByMember(ctx context.Context, memberID string) ([]model.LoanView, error)
	// ListByMember orders by creation time, newest first.
	ListByMember(ctx context.Context, memberID string) ([]model.LoanView, error)
	List(ctx context.Context, f model.LoanFilter) ([]model.LoanView, int, error)
	// ListOverdue returns issued loans due before now, most overdue first.
	ListOverdue(ctx context.Context, now time.Time) ([]model.LoanView, error)
}

// ReservationRepository persists reservations.
type ReservationRepository interface {
	Create(ctx context.Context, r *model.Reservation) error
	GetForUpdate(ctx context.Context, id string) (*model.Reservation, error)
	// FindActive returns the active reservation for the pair or ErrNotFound.
	FindActive(ctx context.Context, memberID, bookID string) (*model.Reservation, error)
	SetStatus(ctx context.Context, id string, status model.ReservationStatus) error
	// ListActiveByMember orders by creation time, oldest first.
	ListActiveByMember(ctx context.Context, memberID string) ([]model.ReservationView, error)
}

// QueryRepository persists help-desk queries.
type QueryRepository interface {
	Create(ctx context.Context, q *model.HelpQuery) error
	// List returns queries newest first; an empty status means all.
	List(ctx context.Context, status model.QueryStatus) ([]model.HelpQueryView, error)
	Respond(ctx context.Context, id, response string, status model.QueryStatus, at time.Time) error
}

// ReportRepository computes read-only aggregates.
type ReportRepository interface {
	Dashboard(ctx context.Context, now time.Time) (model.DashboardStats, error)
	PopularBooks(ctx context.Context, limit int) ([]model.PopularBook, error)
	ActiveMembers(ctx context.Context, limit int) ([]model.ActiveMember, error)
	// MonthlyActivity groups loans issued at or after since by YYYY-MM,
	// newest month first.
	MonthlyActivity(ctx context.Context, since time.Time) ([]model.MonthlyActivity, error)
	CategoryDistribution(ctx context.Context) ([]model.CategoryShare, error)
}
