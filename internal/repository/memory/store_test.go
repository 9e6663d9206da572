package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
	"github.com/Shivanand-hulikatti/library-circulation/internal/repository"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func seedBook(t *testing.T, s *Store, copies int) *model.Book {
	t.Helper()
	b := &model.Book{
		ID: uuid.NewString(), Title: "Dune", Author: "Herbert", Category: "SciFi",
		TotalCopies: copies, AvailableCopies: copies, CreatedAt: t0, UpdatedAt: t0,
	}
	require.NoError(t, s.Books().Create(context.Background(), b))
	return b
}

func seedMember(t *testing.T, s *Store, email string) *model.Member {
	t.Helper()
	m := &model.Member{ID: uuid.NewString(), Email: email, Name: email, Role: model.RoleMember, CreatedAt: t0}
	require.NoError(t, s.Members().Create(context.Background(), m))
	return m
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	b := seedBook(t, s, 2)

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx repository.Store) error {
		require.NoError(t, tx.Books().AdjustAvailable(ctx, b.ID, -1))
		seedMember(t, tx.(*Store), "ghost@example.com")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Books().GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AvailableCopies)
	_, err = s.Members().GetByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	b := seedBook(t, s, 1)

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = s.WithTx(ctx, func(tx repository.Store) error {
			_ = tx.Books().AdjustAvailable(ctx, b.ID, -1)
			panic("kaboom")
		})
	})

	got, err := s.Books().GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AvailableCopies)

	// The lock was released.
	require.NoError(t, s.WithTx(ctx, func(tx repository.Store) error { return nil }))
}

func TestWithTxNestedReusesTransaction(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	b := seedBook(t, s, 3)

	err := s.WithTx(ctx, func(tx repository.Store) error {
		return tx.WithTx(ctx, func(inner repository.Store) error {
			return inner.Books().AdjustAvailable(ctx, b.ID, -1)
		})
	})
	require.NoError(t, err)

	got, err := s.Books().GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AvailableCopies)
}

func TestAdjustAvailableStaysInRange(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	b := seedBook(t, s, 1)

	assert.ErrorIs(t, s.Books().AdjustAvailable(ctx, b.ID, 1), repository.ErrConflict)
	require.NoError(t, s.Books().AdjustAvailable(ctx, b.ID, -1))
	assert.ErrorIs(t, s.Books().AdjustAvailable(ctx, b.ID, -1), repository.ErrConflict)
	assert.ErrorIs(t, s.Books().AdjustAvailable(ctx, uuid.NewString(), -1), repository.ErrConflict)

	b.AvailableCopies = 2
	assert.ErrorIs(t, s.Books().Update(ctx, b), repository.ErrConflict)
}

func TestUniqueConstraints(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	b := seedBook(t, s, 5)
	m := seedMember(t, s, "a@example.com")

	dup := &model.Member{ID: uuid.NewString(), Email: "a@example.com", Role: model.RoleMember}
	assert.ErrorIs(t, s.Members().Create(ctx, dup), repository.ErrDuplicate)

	isbn := "978-1"
	b.ISBN = &isbn
	require.NoError(t, s.Books().Update(ctx, b))
	other := &model.Book{ID: uuid.NewString(), ISBN: &isbn, Title: "x", TotalCopies: 1, AvailableCopies: 1}
	assert.ErrorIs(t, s.Books().Create(ctx, other), repository.ErrDuplicate)

	loan := &model.Loan{ID: uuid.NewString(), MemberID: m.ID, BookID: b.ID, DueDate: t0, Status: model.LoanIssued}
	require.NoError(t, s.Loans().Create(ctx, loan))
	again := &model.Loan{ID: uuid.NewString(), MemberID: m.ID, BookID: b.ID, DueDate: t0, Status: model.LoanIssued}
	assert.ErrorIs(t, s.Loans().Create(ctx, again), repository.ErrDuplicate)

	require.NoError(t, s.Loans().MarkReturned(ctx, loan.ID, t0, 0))
	assert.ErrorIs(t, s.Loans().MarkReturned(ctx, loan.ID, t0, 5), repository.ErrNotFound)
	require.NoError(t, s.Loans().Create(ctx, again))

	orphan := &model.Loan{ID: uuid.NewString(), MemberID: uuid.NewString(), BookID: b.ID, Status: model.LoanIssued}
	assert.ErrorIs(t, s.Loans().Create(ctx, orphan), repository.ErrReferenced)

	res := &model.Reservation{ID: uuid.NewString(), MemberID: m.ID, BookID: b.ID, Status: model.ReservationActive}
	require.NoError(t, s.Reservations().Create(ctx, res))
	res2 := &model.Reservation{ID: uuid.NewString(), MemberID: m.ID, BookID: b.ID, Status: model.ReservationActive}
	assert.ErrorIs(t, s.Reservations().Create(ctx, res2), repository.ErrDuplicate)
}

func TestBookDeleteCascadesReservations(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	b := seedBook(t, s, 1)
	m := seedMember(t, s, "a@example.com")

	res := &model.Reservation{ID: uuid.NewString(), MemberID: m.ID, BookID: b.ID, Status: model.ReservationActive, CreatedAt: t0}
	require.NoError(t, s.Reservations().Create(ctx, res))

	require.NoError(t, s.Books().Delete(ctx, b.ID))
	_, err := s.Reservations().GetForUpdate(ctx, res.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, s.Books().Delete(ctx, b.ID), repository.ErrNotFound)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewStore()

	_, err := s.Books().GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.WithTx(ctx, func(repository.Store) error { return nil }), context.Canceled)
}
