package memory

import (
	"context"
	"sort"

	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
	"github.com/Shivanand-hulikatti/library-circulation/internal/repository"
)

type reservationRepo struct{ s *Store }

func (r reservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.reservations[res.ID]; ok {
			return repository.ErrDuplicate
		}
		if _, ok := st.books[res.BookID]; !ok {
			return repository.ErrReferenced
		}
		if _, ok := st.members[res.MemberID]; !ok {
			return repository.ErrReferenced
		}
		if res.Status == model.ReservationActive {
			for _, other := range st.reservations {
				if other.Status == model.ReservationActive && other.MemberID == res.MemberID && other.BookID == res.BookID {
					return repository.ErrDuplicate
				}
			}
		}
		st.reservations[res.ID] = *res
		return nil
	})
}

func (r reservationRepo) GetForUpdate(ctx context.Context, id string) (*model.Reservation, error) {
	var out model.Reservation
	err := r.s.do(ctx, func(st *state) error {
		res, ok := st.reservations[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r reservationRepo) FindActive(ctx context.Context, memberID, bookID string) (*model.Reservation, error) {
	var out model.Reservation
	err := r.s.do(ctx, func(st *state) error {
		for _, res := range st.reservations {
			if res.Status == model.ReservationActive && res.MemberID == memberID && res.BookID == bookID {
				out = res
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

func (r reservationRepo) SetStatus(ctx context.Context, id string, status model.ReservationStatus) error {
	return r.s.do(ctx, func(st *state) error {
		res, ok := st.reservations[id]
		if !ok {
			return repository.ErrNotFound
		}
		if status == model.ReservationActive && res.Status != model.ReservationActive {
			for oid, other := range st.reservations {
				if oid != id && other.Status == model.ReservationActive &&
					other.MemberID == res.MemberID && other.BookID == res.BookID {
					return repository.ErrDuplicate
				}
			}
		}
		res.Status = status
		st.reservations[id] = res
		return nil
	})
}

func (r reservationRepo) ListActiveByMember(ctx context.Context, memberID string) ([]model.ReservationView, error) {
	var out []model.ReservationView
	err := r.s.do(ctx, func(st *state) error {
		for _, res := range st.reservations {
			if res.MemberID != memberID || res.Status != model.ReservationActive {
				continue
			}
			v := model.ReservationView{Reservation: res}
			if b, ok := st.books[res.BookID]; ok {
				v.Title, v.Author, v.ISBN, v.Category = b.Title, b.Author, b.ISBN, b.Category
			}
			out = append(out, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
