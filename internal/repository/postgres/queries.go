package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
)

type queryRepo struct {
	q querier
}

func (r queryRepo) Create(ctx context.Context, hq *model.HelpQuery) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO queries (id, user_id, subject, message, status, admin_response, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		hq.ID, hq.MemberID, hq.Subject, hq.Message, string(hq.Status),
		hq.AdminResponse, hq.CreatedAt, hq.UpdatedAt,
	)
	if err != nil {
		return mapError("insert query", err)
	}
	return nil
}

func (r queryRepo) List(ctx context.Context, status model.QueryStatus) ([]model.HelpQueryView, error) {
	ds := dialect.From(goqu.T("queries").As("q")).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("q.user_id")))).
		Select(
			goqu.I("q.id"), goqu.I("q.user_id"), goqu.I("q.subject"), goqu.I("q.message"),
			goqu.I("q.status"), goqu.I("q.admin_response"), goqu.I("q.created_at"),
			goqu.I("q.updated_at"), goqu.I("u.name"), goqu.I("u.email"),
		).
		Order(goqu.I("q.created_at").Desc())
	if status != "" {
		ds = ds.Where(goqu.I("q.status").Eq(string(status)))
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build query list: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list queries", err)
	}
	defer rows.Close()

	var out []model.HelpQueryView
	for rows.Next() {
		var v model.HelpQueryView
		if err := rows.Scan(
			&v.ID, &v.MemberID, &v.Subject, &v.Message, &v.Status, &v.AdminResponse,
			&v.CreatedAt, &v.UpdatedAt, &v.MemberName, &v.MemberEmail,
		); err != nil {
			return nil, fmt.Errorf("scan query: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r queryRepo) Respond(ctx context.Context, id, response string, status model.QueryStatus, at time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE queries SET admin_response = $2, status = $3, updated_at = $4 WHERE id = $1`,
		id, response, string(status), at,
	)
	if err != nil {
		return mapError("respond to query", err)
	}
	return expectOne(tag)
}
