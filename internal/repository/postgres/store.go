// Package postgres implements the repository ports on PostgreSQL using pgx
// directly (no ORM). Dynamic listing queries are built with goqu.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // registers the dialect
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
	"github.com/Shivanand-hulikatti/library-circulation/internal/repository"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

var dialect = goqu.Dialect("postgres")

// querier is the subset shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// Store is the pgx-backed repository.Store.
type Store struct {
	pool *pgxpool.Pool
	q    querier
	inTx bool
}

// NewStore constructs a Store on top of a connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, q: pool}
}

func (s *Store) Books() repository.BookRepository               { return bookRepo{q: s.q} }
func (s *Store) Members() repository.MemberRepository           { return memberRepo{q: s.q} }
func (s *Store) Loans() repository.LoanRepository               { return loanRepo{q: s.q} }
func (s *Store) Reservations() repository.ReservationRepository { return reservationRepo{q: s.q} }
func (s *Store) Queries() repository.QueryRepository            { return queryRepo{q: s.q} }
func (s *Store) Reports() repository.ReportRepository           { return reportRepo{q: s.q} }

// WithTx runs fn inside one database transaction.
//
// Row locks taken with SELECT … FOR UPDATE inside fn are held until the
// transaction resolves, which is what serialises concurrent issues and
// returns against the same book row.
func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Store) error) (err error) {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(&Store{pool: s.pool, q: tx, inTx: true}); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// mapError converts driver errors into repository sentinels, keeping the
// original error in the chain.
func mapError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w: %s", op, repository.ErrDuplicate, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %w: %s", op, repository.ErrReferenced, pgErr.ConstraintName)
		case pgCheckViolation:
			return fmt.Errorf("%s: %w: %s", op, repository.ErrConflict, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// expectOne turns a zero-row command tag into ErrNotFound.
func expectOne(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// count runs a COUNT(*) variant of a goqu dataset.
func count(ctx context.Context, q querier, ds *goqu.SelectDataset) (int, error) {
	query, args, err := ds.Select(goqu.COUNT(goqu.Star())).Prepared(true).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}
	var n int
	if err := q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, mapError("count rows", err)
	}
	return n, nil
}

// page applies LIMIT/OFFSET when limit is positive.
func page(ds *goqu.SelectDataset, pageNo, limit int) *goqu.SelectDataset {
	if limit <= 0 {
		return ds
	}
	return ds.Limit(uint(limit)).Offset(uint(model.Offset(pageNo, limit)))
}

func likePattern(s string) string {
	return "%" + s + "%"
}
