package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
)

const loanColumns = `id, user_id, book_id, issue_date, due_date, return_date, fine_amount, status, created_at`

const loanViewSelect = `
	SELECT t.id, t.user_id, t.book_id, t.issue_date, t.due_date, t.return_date,
	       t.fine_amount, t.status, t.created_at,
	       b.title, b.author, b.isbn, b.category, u.name, u.email
	FROM transactions t
	JOIN books b ON b.id = t.book_id
	JOIN users u ON u.id = t.user_id`

var loanViewColumns = []any{
	goqu.I("t.id"), goqu.I("t.user_id"), goqu.I("t.book_id"), goqu.I("t.issue_date"),
	goqu.I("t.due_date"), goqu.I("t.return_date"), goqu.I("t.fine_amount"),
	goqu.I("t.status"), goqu.I("t.created_at"),
	goqu.I("b.title"), goqu.I("b.author"), goqu.I("b.isbn"), goqu.I("b.category"),
	goqu.I("u.name"), goqu.I("u.email"),
}

type loanRepo struct {
	q querier
}

func scanLoan(row scanner, l *model.Loan) error {
	return row.Scan(
		&l.ID, &l.MemberID, &l.BookID, &l.IssueDate, &l.DueDate,
		&l.ReturnDate, &l.FineAmount, &l.Status, &l.CreatedAt,
	)
}

func scanLoanView(row scanner, v *model.LoanView) error {
	return row.Scan(
		&v.ID, &v.MemberID, &v.BookID, &v.IssueDate, &v.DueDate,
		&v.ReturnDate, &v.FineAmount, &v.Status, &v.CreatedAt,
		&v.Title, &v.Author, &v.ISBN, &v.Category, &v.MemberName, &v.MemberEmail,
	)
}

func (r loanRepo) queryViews(ctx context.Context, op, query string, args ...any) ([]model.LoanView, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	var loans []model.LoanView
	for rows.Next() {
		var v model.LoanView
		if err := scanLoanView(rows, &v); err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		loans = append(loans, v)
	}
	return loans, rows.Err()
}

// Create inserts a loan. The partial unique index on (user_id, book_id)
// WHERE status = 'issued' rejects a second open loan for the same pair.
func (r loanRepo) Create(ctx context.Context, l *model.Loan) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO transactions (`+loanColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		l.ID, l.MemberID, l.BookID, l.IssueDate, l.DueDate,
		l.ReturnDate, l.FineAmount, string(l.Status), l.CreatedAt,
	)
	if err != nil {
		return mapError("insert loan", err)
	}
	return nil
}

// GetForUpdate reads a loan and locks its row, so two returns of the same
// loan cannot both observe status = 'issued'.
func (r loanRepo) GetForUpdate(ctx context.Context, id string) (*model.Loan, error) {
	var l model.Loan
	err := scanLoan(r.q.QueryRow(ctx, `SELECT `+loanColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id), &l)
	if err != nil {
		return nil, mapError("lock loan row", err)
	}
	return &l, nil
}

// FindIssued returns the open loan for the member/book pair.
func (r loanRepo) FindIssued(ctx context.Context, memberID, bookID string) (*model.Loan, error) {
	var l model.Loan
	err := scanLoan(r.q.QueryRow(ctx,
		`SELECT `+loanColumns+` FROM transactions
		 WHERE user_id = $1 AND book_id = $2 AND status = 'issued'`,
		memberID, bookID,
	), &l)
	if err != nil {
		return nil, mapError("find issued loan", err)
	}
	return &l, nil
}

// MarkReturned closes an issued loan and freezes its fine.
func (r loanRepo) MarkReturned(ctx context.Context, id string, returnedAt time.Time, fine int64) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE transactions
		 SET return_date = $2, fine_amount = $3, status = 'returned'
		 WHERE id = $1 AND status = 'issued'`,
		id, returnedAt, fine,
	)
	if err != nil {
		return mapError("mark loan returned", err)
	}
	return expectOne(tag)
}

func (r loanRepo) countWhere(ctx context.Context, op, where string, args ...any) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE `+where, args...).Scan(&n); err != nil {
		return 0, mapError(op, err)
	}
	return n, nil
}

func (r loanRepo) CountIssuedByBook(ctx context.Context, bookID string) (int, error) {
	return r.countWhere(ctx, "count issued loans for book", `book_id = $1 AND status = 'issued'`, bookID)
}

func (r loanRepo) CountByBook(ctx context.Context, bookID string) (int, error) {
	return r.countWhere(ctx, "count loans for book", `book_id = $1`, bookID)
}

func (r loanRepo) CountIssuedByMember(ctx context.Context, memberID string) (int, error) {
	return r.countWhere(ctx, "count issued loans for member", `user_id = $1 AND status = 'issued'`, memberID)
}

// ListIssuedByMember returns the member's open loans, earliest due first.
func (r loanRepo) ListIssuedByMember(ctx context.Context, memberID string) ([]model.LoanView, error) {
	return r.queryViews(ctx, "list issued loans",
		loanViewSelect+` WHERE t.user_id = $1 AND t.status = 'issued' ORDER BY t.due_date ASC`,
		memberID,
	)
}

// ListByMember returns the member's full history, newest first.
func (r loanRepo) ListByMember(ctx context.Context, memberID string) ([]model.LoanView, error) {
	return r.queryViews(ctx, "list loan history",
		loanViewSelect+` WHERE t.user_id = $1 ORDER BY t.created_at DESC`,
		memberID,
	)
}

// List returns one page of all loans, newest first.
func (r loanRepo) List(ctx context.Context, f model.LoanFilter) ([]model.LoanView, int, error) {
	ds := dialect.From(goqu.T("transactions").As("t")).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("t.book_id")))).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("t.user_id"))))
	if f.Status != "" {
		ds = ds.Where(goqu.I("t.status").Eq(string(f.Status)))
	}

	total, err := count(ctx, r.q, ds)
	if err != nil {
		return nil, 0, err
	}

	query, args, err := page(ds.Select(loanViewColumns...).Order(goqu.I("t.created_at").Desc()), f.Page, f.Limit).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build loan list query: %w", err)
	}

	loans, err := r.queryViews(ctx, "list loans", query, args...)
	if err != nil {
		return nil, 0, err
	}
	return loans, total, nil
}

// ListOverdue returns open loans past due at now, most overdue first.
func (r loanRepo) ListOverdue(ctx context.Context, now time.Time) ([]model.LoanView, error) {
	return r.queryViews(ctx, "list overdue loans",
		loanViewSelect+` WHERE t.status = 'issued' AND t.due_date < $1 ORDER BY t.due_date ASC`,
		now,
	)
}
