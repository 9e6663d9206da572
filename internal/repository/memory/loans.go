package memory

import (
	"context"
	"sort"
	"time"

	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
	"github.com/Shivanand-hulikatti/library-circulation/internal/repository"
)

type loanRepo struct{ s *Store }

func (r loanRepo) Create(ctx context.Context, l *model.Loan) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.loans[l.ID]; ok {
			return repository.ErrDuplicate
		}
		if _, ok := st.books[l.BookID]; !ok {
			return repository.ErrReferenced
		}
		if _, ok := st.members[l.MemberID]; !ok {
			return repository.ErrReferenced
		}
		if l.Status == model.LoanIssued {
			for _, other := range st.loans {
				if other.Status == model.LoanIssued && other.MemberID == l.MemberID && other.BookID == l.BookID {
					return repository.ErrDuplicate
				}
			}
		}
		st.loans[l.ID] = *l
		return nil
	})
}

func (r loanRepo) GetForUpdate(ctx context.Context, id string) (*model.Loan, error) {
	var out model.Loan
	err := r.s.do(ctx, func(st *state) error {
		l, ok := st.loans[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r loanRepo) FindIssued(ctx context.Context, memberID, bookID string) (*model.Loan, error) {
	var out model.Loan
	err := r.s.do(ctx, func(st *state) error {
		for _, l := range st.loans {
			if l.Status == model.LoanIssued && l.MemberID == memberID && l.BookID == bookID {
				out = l
				return nil
			}
		}
		return repository.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkReturned only touches issued loans; a returned loan reports ErrNotFound.
func (r loanRepo) MarkReturned(ctx context.Context, id string, returnedAt time.Time, fine int64) error {
	return r.s.do(ctx, func(st *state) error {
		l, ok := st.loans[id]
		if !ok || l.Status != model.LoanIssued {
			return repository.ErrNotFound
		}
		at := returnedAt
		l.ReturnDate = &at
		l.FineAmount = fine
		l.Status = model.LoanReturned
		st.loans[id] = l
		return nil
	})
}

func (r loanRepo) countWhere(ctx context.Context, match func(model.Loan) bool) (int, error) {
	n := 0
	err := r.s.do(ctx, func(st *state) error {
		for _, l := range st.loans {
			if match(l) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r loanRepo) CountIssuedByBook(ctx context.Context, bookID string) (int, error) {
	return r.countWhere(ctx, func(l model.Loan) bool { return l.BookID == bookID && l.Status == model.LoanIssued })
}

func (r loanRepo) CountByBook(ctx context.Context, bookID string) (int, error) {
	return r.countWhere(ctx, func(l model.Loan) bool { return l.BookID == bookID })
}

func (r loanRepo) CountIssuedByMember(ctx context.Context, memberID string) (int, error) {
	return r.countWhere(ctx, func(l model.Loan) bool { return l.MemberID == memberID && l.Status == model.LoanIssued })
}

func (r loanRepo) views(ctx context.Context, match func(model.Loan) bool, less func(a, b model.LoanView) bool) ([]model.LoanView, error) {
	var out []model.LoanView
	err := r.s.do(ctx, func(st *state) error {
		for _, l := range st.loans {
			if match(l) {
				out = append(out, st.loanView(l))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out, nil
}

func byDueAsc(a, b model.LoanView) bool {
	if !a.DueDate.Equal(b.DueDate) {
		return a.DueDate.Before(b.DueDate)
	}
	return a.ID < b.ID
}

func byCreatedDesc(a, b model.LoanView) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func (r loanRepo) ListIssuedByMember(ctx context.Context, memberID string) ([]model.LoanView, error) {
	return r.views(ctx, func(l model.Loan) bool {
		return l.MemberID == memberID && l.Status == model.LoanIssued
	}, byDueAsc)
}

func (r loanRepo) ListByMember(ctx context.Context, memberID string) ([]model.LoanView, error) {
	return r.views(ctx, func(l model.Loan) bool { return l.MemberID == memberID }, byCreatedDesc)
}

func (r loanRepo) List(ctx context.Context, f model.LoanFilter) ([]model.LoanView, int, error) {
	all, err := r.views(ctx, func(l model.Loan) bool {
		return f.Status == "" || l.Status == f.Status
	}, byCreatedDesc)
	if err != nil {
		return nil, 0, err
	}
	return paginate(all, f.Page, f.Limit), len(all), nil
}

func (r loanRepo) ListOverdue(ctx context.Context, now time.Time) ([]model.LoanView, error) {
	return r.views(ctx, func(l model.Loan) bool {
		return l.Status == model.LoanIssued && l.DueDate.Before(now)
	}, byDueAsc)
}
