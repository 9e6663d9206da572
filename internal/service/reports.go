package service

import (
	"context"
	"time"

	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
	"github.com/Shivanand-hulikatti/library-circulation/internal/repository"
)

// ReportService computes read-only projections over the catalog,
// membership and loans.
type ReportService struct {
	store repository.Store
	options
}

// NewReportService constructs a ReportService.
func NewReportService(store repository.Store, opts ...Option) *ReportService {
	return &ReportService{store: store, options: buildOptions(opts)}
}

// Dashboard returns the headline counts.
func (s *ReportService) Dashboard(ctx context.Context) (model.DashboardStats, error) {
	stats, err := s.store.Reports().Dashboard(ctx, s.utcNow())
	if err != nil {
		return model.DashboardStats{}, storage("dashboard", err)
	}
	return stats, nil
}

// Overdue lists issued loans past due, most overdue first, with whole days
// overdue rounded down.
func (s *ReportService) Overdue(ctx context.Context) ([]model.OverdueLoan, error) {
	now := s.utcNow()
	loans, err := s.store.Loans().ListOverdue(ctx, now)
	if err != nil {
		return nil, storage("overdue loans", err)
	}
	out := make([]model.OverdueLoan, 0, len(loans))
	for _, l := range loans {
		out = append(out, model.OverdueLoan{LoanView: l, DaysOverdue: DaysOverdue(l.DueDate, now)})
	}
	return out, nil
}

// DaysOverdue is the number of whole days between due and now, or zero when
// now is not after due.
func DaysOverdue(due, now time.Time) int {
	if !now.After(due) {
		return 0
	}
	return int(now.Sub(due) / day)
}

// PopularBooks returns the most issued titles.
func (s *ReportService) PopularBooks(ctx context.Context) ([]model.PopularBook, error) {
	out, err := s.store.Reports().PopularBooks(ctx, reportTopN)
	if err != nil {
		return nil, storage("popular books", err)
	}
	if out == nil {
		out = []model.PopularBook{}
	}
	return out, nil
}

// ActiveMembers returns the members with the most loans.
func (s *ReportService) ActiveMembers(ctx context.Context) ([]model.ActiveMember, error) {
	out, err := s.store.Reports().ActiveMembers(ctx, reportTopN)
	if err != nil {
		return nil, storage("active members", err)
	}
	if out == nil {
		out = []model.ActiveMember{}
	}
	return out, nil
}

// MonthlyTransactions summarises the last twelve months of circulation,
// newest month first.
func (s *ReportService) MonthlyTransactions(ctx context.Context) ([]model.MonthlyActivity, error) {
	since := s.utcNow().AddDate(0, -12, 0)
	out, err := s.store.Reports().MonthlyActivity(ctx, since)
	if err != nil {
		return nil, storage("monthly transactions", err)
	}
	if out == nil {
		out = []model.MonthlyActivity{}
	}
	return out, nil
}

// CategoryDistribution returns the size of each catalog category.
func (s *ReportService) CategoryDistribution(ctx context.Context) ([]model.CategoryShare, error) {
	out, err := s.store.Reports().CategoryDistribution(ctx)
	if err != nil {
		return nil, storage("category distribution", err)
	}
	if out == nil {
		out = []model.CategoryShare{}
	}
	return out, nil
}
