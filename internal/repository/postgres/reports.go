package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
)

type reportRepo struct {
	q querier
}

// Dashboard gathers the headline counts in a single round trip.
func (r reportRepo) Dashboard(ctx context.Context, now time.Time) (model.DashboardStats, error) {
	var s model.DashboardStats
	err := r.q.QueryRow(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM books),
		   (SELECT COALESCE(SUM(available_copies), 0)::bigint FROM books),
		   (SELECT COUNT(*) FROM users WHERE role = 'member'),
		   (SELECT COUNT(*) FROM transactions WHERE status = 'issued'),
		   (SELECT COUNT(*) FROM transactions WHERE status = 'issued' AND due_date < $1),
		   (SELECT COALESCE(SUM(fine_amount), 0)::bigint FROM transactions WHERE fine_amount > 0)`,
		now,
	).Scan(&s.TotalBooks, &s.AvailableBooks, &s.TotalMembers, &s.ActiveLoans, &s.OverdueLoans, &s.TotalFines)
	if err != nil {
		return model.DashboardStats{}, mapError("dashboard stats", err)
	}
	return s, nil
}

func (r reportRepo) PopularBooks(ctx context.Context, limit int) ([]model.PopularBook, error) {
	query, args, err := dialect.From(goqu.T("books").As("b")).
		LeftJoin(goqu.T("transactions").As("t"), goqu.On(goqu.I("t.book_id").Eq(goqu.I("b.id")))).
		Select(
			goqu.I("b.id"), goqu.I("b.title"), goqu.I("b.author"), goqu.I("b.category"),
			goqu.COUNT(goqu.I("t.id")).As("issue_count"),
		).
		GroupBy(goqu.I("b.id")).
		Order(goqu.I("issue_count").Desc(), goqu.I("b.title").Asc()).
		Limit(uint(limit)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build popular books query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("popular books", err)
	}
	defer rows.Close()

	var out []model.PopularBook
	for rows.Next() {
		var p model.PopularBook
		if err := rows.Scan(&p.BookID, &p.Title, &p.Author, &p.Category, &p.IssueCount); err != nil {
			return nil, fmt.Errorf("scan popular book: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r reportRepo) ActiveMembers(ctx context.Context, limit int) ([]model.ActiveMember, error) {
	query, args, err := dialect.From(goqu.T("users").As("u")).
		LeftJoin(goqu.T("transactions").As("t"), goqu.On(goqu.I("t.user_id").Eq(goqu.I("u.id")))).
		Where(goqu.I("u.role").Eq(string(model.RoleMember))).
		Select(
			goqu.I("u.id"), goqu.I("u.name"), goqu.I("u.email"),
			goqu.COUNT(goqu.I("t.id")).As("books_borrowed"),
		).
		GroupBy(goqu.I("u.id")).
		Order(goqu.I("books_borrowed").Desc(), goqu.I("u.name").Asc()).
		Limit(uint(limit)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build active members query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("active members", err)
	}
	defer rows.Close()

	var out []model.ActiveMember
	for rows.Next() {
		var m model.ActiveMember
		if err := rows.Scan(&m.MemberID, &m.Name, &m.Email, &m.BooksBorrowed); err != nil {
			return nil, fmt.Errorf("scan active member: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r reportRepo) MonthlyActivity(ctx context.Context, since time.Time) ([]model.MonthlyActivity, error) {
	rows, err := r.q.Query(ctx,
		`SELECT to_char(issue_date AT TIME ZONE 'UTC', 'YYYY-MM') AS month,
		        COUNT(*),
		        COUNT(return_date),
		        COALESCE(SUM(fine_amount), 0)::bigint
		 FROM transactions
		 WHERE issue_date >= $1
		 GROUP BY month
		 ORDER BY month DESC`,
		since,
	)
	if err != nil {
		return nil, mapError("monthly activity", err)
	}
	defer rows.Close()

	var out []model.MonthlyActivity
	for rows.Next() {
		var m model.MonthlyActivity
		if err := rows.Scan(&m.Month, &m.TotalIssues, &m.TotalReturns, &m.TotalFines); err != nil {
			return nil, fmt.Errorf("scan monthly activity: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r reportRepo) CategoryDistribution(ctx context.Context) ([]model.CategoryShare, error) {
	rows, err := r.q.Query(ctx,
		`SELECT category, COUNT(*), COALESCE(SUM(total_copies), 0)::bigint
		 FROM books
		 GROUP BY category
		 ORDER BY COUNT(*) DESC, category ASC`,
	)
	if err != nil {
		return nil, mapError("category distribution", err)
	}
	defer rows.Close()

	var out []model.CategoryShare
	for rows.Next() {
		var c model.CategoryShare
		if err := rows.Scan(&c.Category, &c.BookCount, &c.TotalCopies); err != nil {
			return nil, fmt.Errorf("scan category share: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
