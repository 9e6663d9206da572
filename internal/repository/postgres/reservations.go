package postgres

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
)

const reservationColumns = `id, user_id, book_id, status, created_at`

type reservationRepo struct {
	q querier
}

func scanReservation(row scanner, r *model.Reservation) error {
	return row.Scan(&r.ID, &r.MemberID, &r.BookID, &r.Status, &r.CreatedAt)
}

// Create inserts a reservation. The partial unique index on (user_id, book_id)
// WHERE status = 'active' backs the one-active-reservation rule.
func (r reservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO reservations (`+reservationColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		res.ID, res.MemberID, res.BookID, string(res.Status), res.CreatedAt,
	)
	if err != nil {
		return mapError("insert reservation", err)
	}
	return nil
}

func (r reservationRepo) GetForUpdate(ctx context.Context, id string) (*model.Reservation, error) {
	var res model.Reservation
	err := scanReservation(r.q.QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`, id,
	), &res)
	if err != nil {
		return nil, mapError("lock reservation row", err)
	}
	return &res, nil
}

func (r reservationRepo) FindActive(ctx context.Context, memberID, bookID string) (*model.Reservation, error) {
	var res model.Reservation
	err := scanReservation(r.q.QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations
		 WHERE user_id = $1 AND book_id = $2 AND status = 'active'`,
		memberID, bookID,
	), &res)
	if err != nil {
		return nil, mapError("find active reservation", err)
	}
	return &res, nil
}

func (r reservationRepo) SetStatus(ctx context.Context, id string, status model.ReservationStatus) error {
	tag, err := r.q.Exec(ctx, `UPDATE reservations SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return mapError("update reservation status", err)
	}
	return expectOne(tag)
}

// ListActiveByMember returns the member's active reservations, oldest first.
func (r reservationRepo) ListActiveByMember(ctx context.Context, memberID string) ([]model.ReservationView, error) {
	rows, err := r.q.Query(ctx,
		`SELECT r.id, r.user_id, r.book_id, r.status, r.created_at,
		        b.title, b.author, b.isbn, b.category
		 FROM reservations r
		 JOIN books b ON b.id = r.book_id
		 WHERE r.user_id = $1 AND r.status = 'active'
		 ORDER BY r.created_at ASC`,
		memberID,
	)
	if err != nil {
		return nil, mapError("list reservations", err)
	}
	defer rows.Close()

	var out []model.ReservationView
	for rows.Next() {
		var v model.ReservationView
		if err := rows.Scan(
			&v.ID, &v.MemberID, &v.BookID, &v.Status, &v.CreatedAt,
			&v.Title, &v.Author, &v.ISBN, &v.Category,
		); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
