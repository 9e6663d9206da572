package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
	"github.com/Shivanand-hulikatti/library-circulation/internal/repository"
)

// LedgerConfig holds the circulation rules.
type LedgerConfig struct {
	LoanPeriodDays    int
	MaxLoanPeriodDays int
	FinePerDay        int64
}

// DefaultLedgerConfig is a 14 day loan, at most a year, one unit per day late.
var DefaultLedgerConfig = LedgerConfig{LoanPeriodDays: 14, MaxLoanPeriodDays: 365, FinePerDay: 1}

// LedgerService issues and returns books and manages reservations. It is the
// only writer of a book's available copy count outside catalog edits.
type LedgerService struct {
	store repository.Store
	cfg   LedgerConfig
	options
}

// NewLedgerService constructs a LedgerService.
func NewLedgerService(store repository.Store, cfg LedgerConfig, opts ...Option) *LedgerService {
	if cfg.LoanPeriodDays < 1 {
		cfg.LoanPeriodDays = DefaultLedgerConfig.LoanPeriodDays
	}
	if cfg.MaxLoanPeriodDays < cfg.LoanPeriodDays {
		cfg.MaxLoanPeriodDays = cfg.LoanPeriodDays
	}
	return &LedgerService{store: store, cfg: cfg, options: buildOptions(opts)}
}

// IssueBook lends one copy of a book to a member. days of zero selects the
// default loan period.
//
// The book row stays locked for the whole transaction, so two issues racing
// for the last copy serialise and the second sees no copies left.
func (s *LedgerService) IssueBook(ctx context.Context, memberID, bookID string, days int) (*model.Loan, error) {
	if err := checkID("memberId", &memberID); err != nil {
		return nil, err
	}
	if err := checkID("bookId", &bookID); err != nil {
		return nil, err
	}
	if days == 0 {
		days = s.cfg.LoanPeriodDays
	}
	if days < 1 || days > s.cfg.MaxLoanPeriodDays {
		return nil, Validation("daysToReturn must be between 1 and %d", s.cfg.MaxLoanPeriodDays)
	}

	var loan *model.Loan
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		book, err := tx.Books().GetForUpdate(ctx, bookID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookNotFound
			}
			return storage("lock book", err)
		}
		if _, err := tx.Members().GetByID(ctx, memberID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrMemberNotFound
			}
			return storage("get member", err)
		}

		if _, err := tx.Loans().FindIssued(ctx, memberID, bookID); err == nil {
			return ErrDuplicateLoan
		} else if !errors.Is(err, repository.ErrNotFound) {
			return storage("find issued loan", err)
		}
		if !book.IsAvailable() {
			return ErrBookUnavailable
		}

		if err := tx.Books().AdjustAvailable(ctx, bookID, -1); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrBookUnavailable
			}
			return storage("decrement copies", err)
		}

		now := s.utcNow()
		loan = &model.Loan{
			ID:        uuid.NewString(),
			MemberID:  memberID,
			BookID:    bookID,
			IssueDate: now,
			DueDate:   now.AddDate(0, 0, days),
			Status:    model.LoanIssued,
			CreatedAt: now,
		}
		if err := tx.Loans().Create(ctx, loan); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrDuplicateLoan
			}
			return storage("create loan", err)
		}

		return s.fulfilReservation(ctx, tx, memberID, bookID)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("book issued",
		"loan_id", loan.ID, "member_id", memberID, "book_id", bookID, "due", loan.DueDate)
	return loan, nil
}

func (s *LedgerService) fulfilReservation(ctx context.Context, tx repository.Store, memberID, bookID string) error {
	r, err := tx.Reservations().FindActive(ctx, memberID, bookID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return storage("find reservation", err)
	}
	if err := tx.Reservations().SetStatus(ctx, r.ID, model.ReservationFulfilled); err != nil {
		return storage("fulfil reservation", err)
	}
	return nil
}

// ReturnBook closes an issued loan, freezes its fine and puts the copy back
// on the shelf. A loan can be returned once.
func (s *LedgerService) ReturnBook(ctx context.Context, loanID string) (*model.ReturnReceipt, error) {
	if err := checkID("loanId", &loanID); err != nil {
		return nil, err
	}

	var receipt *model.ReturnReceipt
	var bookID string
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		loan, err := tx.Loans().GetForUpdate(ctx, loanID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrLoanNotFound
			}
			return storage("lock loan", err)
		}
		if loan.Status == model.LoanReturned {
			return ErrLoanAlreadyReturned
		}

		now := s.utcNow()
		fine := ComputeFine(loan.DueDate, now, s.cfg.FinePerDay)
		if err := tx.Loans().MarkReturned(ctx, loanID, now, fine); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrLoanAlreadyReturned
			}
			return storage("mark returned", err)
		}
		if err := tx.Books().AdjustAvailable(ctx, loan.BookID, 1); err != nil {
			return storage("increment copies", err)
		}

		bookID = loan.BookID
		receipt = &model.ReturnReceipt{Message: "book returned successfully", FineAmount: fine, ReturnDate: now}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("book returned", "loan_id", loanID, "book_id", bookID, "fine", receipt.FineAmount)
	return receipt, nil
}

// ComputeFine charges rate for every started day after due. Returning on or
// before due costs nothing.
func ComputeFine(due, returned time.Time, rate int64) int64 {
	late := returned.Sub(due)
	if late <= 0 || rate <= 0 {
		return 0
	}
	days := int64(late / day)
	if late%day != 0 {
		days++
	}
	return days * rate
}

// MyBooks returns the member's open loans, earliest due first.
func (s *LedgerService) MyBooks(ctx context.Context, memberID string) ([]model.LoanView, error) {
	if err := checkID("member id", &memberID); err != nil {
		return nil, err
	}
	loans, err := s.store.Loans().ListIssuedByMember(ctx, memberID)
	if err != nil {
		return nil, storage("list issued loans", err)
	}
	return nonNilLoans(loans), nil
}

// History returns every loan of the member, newest first.
func (s *LedgerService) History(ctx context.Context, memberID string) ([]model.LoanView, error) {
	if err := checkID("member id", &memberID); err != nil {
		return nil, err
	}
	loans, err := s.store.Loans().ListByMember(ctx, memberID)
	if err != nil {
		return nil, storage("list loan history", err)
	}
	return nonNilLoans(loans), nil
}

// ListLoans is the admin listing of all loans, newest first.
func (s *LedgerService) ListLoans(ctx context.Context, f model.LoanFilter) (*model.LoanList, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, Validation("status must be issued or returned")
	}
	f.Page, f.Limit = normalizePage(f.Page, f.Limit)

	loans, total, err := s.store.Loans().List(ctx, f)
	if err != nil {
		return nil, storage("list loans", err)
	}
	return &model.LoanList{Loans: nonNilLoans(loans), Pagination: model.NewPage(f.Page, f.Limit, total)}, nil
}

func nonNilLoans(loans []model.LoanView) []model.LoanView {
	if loans == nil {
		return []model.LoanView{}
	}
	return loans
}
