package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
	"github.com/Shivanand-hulikatti/library-circulation/internal/repository"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	MemberID string
	Role     model.Role
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

// ReserveBook records a member's claim on a book that has no free copies.
// Reservations are advisory; an admin still issues the book explicitly.
func (s *LedgerService) ReserveBook(ctx context.Context, memberID, bookID string) (*model.Reservation, error) {
	if err := checkID("memberId", &memberID); err != nil {
		return nil, err
	}
	if err := checkID("bookId", &bookID); err != nil {
		return nil, err
	}

	var res *model.Reservation
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		book, err := tx.Books().GetForUpdate(ctx, bookID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookNotFound
			}
			return storage("lock book", err)
		}
		if _, err := tx.Members().GetByID(ctx, memberID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrMemberNotFound
			}
			return storage("get member", err)
		}
		if book.IsAvailable() {
			return ErrBookCurrentlyAvailable
		}

		if _, err := tx.Reservations().FindActive(ctx, memberID, bookID); err == nil {
			return ErrDuplicateReservation
		} else if !errors.Is(err, repository.ErrNotFound) {
			return storage("find reservation", err)
		}

		res = &model.Reservation{
			ID:        uuid.NewString(),
			MemberID:  memberID,
			BookID:    bookID,
			Status:    model.ReservationActive,
			CreatedAt: s.utcNow(),
		}
		if err := tx.Reservations().Create(ctx, res); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrDuplicateReservation
			}
			return storage("create reservation", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("book reserved", "reservation_id", res.ID, "member_id", memberID, "book_id", bookID)
	return res, nil
}

// MyReservations returns the member's active reservations, oldest first.
func (s *LedgerService) MyReservations(ctx context.Context, memberID string) ([]model.ReservationView, error) {
	if err := checkID("member id", &memberID); err != nil {
		return nil, err
	}
	out, err := s.store.Reservations().ListActiveByMember(ctx, memberID)
	if err != nil {
		return nil, storage("list reservations", err)
	}
	if out == nil {
		out = []model.ReservationView{}
	}
	return out, nil
}

// CancelReservation withdraws an active reservation. Only its owner or an
// admin may cancel it.
func (s *LedgerService) CancelReservation(ctx context.Context, actor Actor, reservationID string) error {
	if err := checkID("reservation id", &reservationID); err != nil {
		return err
	}
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		r, err := tx.Reservations().GetForUpdate(ctx, reservationID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrReservationNotFound
			}
			return storage("lock reservation", err)
		}
		if r.MemberID != actor.MemberID && !actor.IsAdmin() {
			return ErrNotOwner
		}
		if r.Status != model.ReservationActive {
			return ErrReservationNotActive
		}
		if err := tx.Reservations().SetStatus(ctx, r.ID, model.ReservationCancelled); err != nil {
			return storage("cancel reservation", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("reservation cancelled", "reservation_id", reservationID, "by", actor.MemberID)
	return nil
}
