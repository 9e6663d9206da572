package postgres

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
)

const memberColumns = `id, email, password, name, role, phone, address, created_at, updated_at`

var memberSelect = []any{
	"id", "email", "password", "name", "role", "phone", "address", "created_at", "updated_at",
}

type memberRepo struct {
	q querier
}

func scanMember(row scanner, m *model.Member) error {
	return row.Scan(
		&m.ID, &m.Email, &m.PasswordHash, &m.Name, &m.Role,
		&m.Phone, &m.Address, &m.CreatedAt, &m.UpdatedAt,
	)
}

// Create inserts a new account.
func (r memberRepo) Create(ctx context.Context, m *model.Member) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO users (`+memberColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.Email, m.PasswordHash, m.Name, string(m.Role),
		m.Phone, m.Address, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return mapError("insert user", err)
	}
	return nil
}

// GetByID returns an account or repository.ErrNotFound.
func (r memberRepo) GetByID(ctx context.Context, id string) (*model.Member, error) {
	var m model.Member
	if err := scanMember(r.q.QueryRow(ctx, `SELECT `+memberColumns+` FROM users WHERE id = $1`, id), &m); err != nil {
		return nil, mapError("get user", err)
	}
	return &m, nil
}

// GetByEmail looks an account up by its (lower-case) email.
func (r memberRepo) GetByEmail(ctx context.Context, email string) (*model.Member, error) {
	var m model.Member
	if err := scanMember(r.q.QueryRow(ctx, `SELECT `+memberColumns+` FROM users WHERE email = $1`, email), &m); err != nil {
		return nil, mapError("get user by email", err)
	}
	return &m, nil
}

// List returns one page of member-role accounts ordered by name.
func (r memberRepo) List(ctx context.Context, f model.MemberFilter) ([]model.Member, int, error) {
	ds := dialect.From("users").Where(goqu.C("role").Eq(string(model.RoleMember)))
	if f.Search != "" {
		p := likePattern(f.Search)
		ds = ds.Where(goqu.Or(goqu.C("name").ILike(p), goqu.C("email").ILike(p)))
	}

	total, err := count(ctx, r.q, ds)
	if err != nil {
		return nil, 0, err
	}

	query, args, err := page(ds.Select(memberSelect...).Order(goqu.C("name").Asc()), f.Page, f.Limit).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build member list query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError("list users", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		var m model.Member
		if err := scanMember(rows, &m); err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		members = append(members, m)
	}
	return members, total, rows.Err()
}

// Update replaces the profile columns of an account.
func (r memberRepo) Update(ctx context.Context, m *model.Member) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE users
		 SET email = $2, name = $3, phone = $4, address = $5, updated_at = $6
		 WHERE id = $1`,
		m.ID, m.Email, m.Name, m.Phone, m.Address, m.UpdatedAt,
	)
	if err != nil {
		return mapError("update user", err)
	}
	return expectOne(tag)
}

// Delete removes an account.
func (r memberRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapError("delete user", err)
	}
	return expectOne(tag)
}
