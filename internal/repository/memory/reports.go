package memory

import (
	"context"
	"sort"
	"time"

	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
)

type reportRepo struct{ s *Store }

func (r reportRepo) Dashboard(ctx context.Context, now time.Time) (model.DashboardStats, error) {
	var s model.DashboardStats
	err := r.s.do(ctx, func(st *state) error {
		s.TotalBooks = len(st.books)
		for _, b := range st.books {
			s.AvailableBooks += b.AvailableCopies
		}
		for _, m := range st.members {
			if m.Role == model.RoleMember {
				s.TotalMembers++
			}
		}
		for _, l := range st.loans {
			if l.Status == model.LoanIssued {
				s.ActiveLoans++
				if l.DueDate.Before(now) {
					s.OverdueLoans++
				}
			}
			if l.FineAmount > 0 {
				s.TotalFines += l.FineAmount
			}
		}
		return nil
	})
	return s, err
}

func (r reportRepo) PopularBooks(ctx context.Context, limit int) ([]model.PopularBook, error) {
	var out []model.PopularBook
	err := r.s.do(ctx, func(st *state) error {
		counts := map[string]int{}
		for _, l := range st.loans {
			counts[l.BookID]++
		}
		for _, b := range st.books {
			out = append(out, model.PopularBook{
				BookID: b.ID, Title: b.Title, Author: b.Author, Category: b.Category,
				IssueCount: counts[b.ID],
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IssueCount != out[j].IssueCount {
			return out[i].IssueCount > out[j].IssueCount
		}
		return out[i].Title < out[j].Title
	})
	return paginate(out, 1, limit), nil
}

func (r reportRepo) ActiveMembers(ctx context.Context, limit int) ([]model.ActiveMember, error) {
	var out []model.ActiveMember
	err := r.s.do(ctx, func(st *state) error {
		counts := map[string]int{}
		for _, l := range st.loans {
			counts[l.MemberID]++
		}
		for _, m := range st.members {
			if m.Role != model.RoleMember {
				continue
			}
			out = append(out, model.ActiveMember{
				MemberID: m.ID, Name: m.Name, Email: m.Email, BooksBorrowed: counts[m.ID],
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BooksBorrowed != out[j].BooksBorrowed {
			return out[i].BooksBorrowed > out[j].BooksBorrowed
		}
		return out[i].Name < out[j].Name
	})
	return paginate(out, 1, limit), nil
}

func (r reportRepo) MonthlyActivity(ctx context.Context, since time.Time) ([]model.MonthlyActivity, error) {
	byMonth := map[string]*model.MonthlyActivity{}
	err := r.s.do(ctx, func(st *state) error {
		for _, l := range st.loans {
			if l.IssueDate.Before(since) {
				continue
			}
			key := l.IssueDate.UTC().Format("2006-01")
			m, ok := byMonth[key]
			if !ok {
				m = &model.MonthlyActivity{Month: key}
				byMonth[key] = m
			}
			m.TotalIssues++
			if l.ReturnDate != nil {
				m.TotalReturns++
			}
			m.TotalFines += l.FineAmount
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.MonthlyActivity, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out, nil
}

func (r reportRepo) CategoryDistribution(ctx context.Context) ([]model.CategoryShare, error) {
	byCat := map[string]*model.CategoryShare{}
	err := r.s.do(ctx, func(st *state) error {
		for _, b := range st.books {
			c, ok := byCat[b.Category]
			if !ok {
				c = &model.CategoryShare{Category: b.Category}
				byCat[b.Category] = c
			}
			c.BookCount++
			c.TotalCopies += b.TotalCopies
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.CategoryShare, 0, len(byCat))
	for _, c := range byCat {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BookCount != out[j].BookCount {
			return out[i].BookCount > out[j].BookCount
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}
