package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
	"github.com/Shivanand-hulikatti/library-circulation/internal/repository/memory"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type staticTokens struct{}

func (staticTokens) Issue(m *model.Member) (string, error) { return "token-" + m.ID, nil }

type env struct {
	ctx     context.Context
	clock   *fakeClock
	store   *memory.Store
	catalog *CatalogService
	members *MemberService
	ledger  *LedgerService
	reports *ReportService
	queries *QueryService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	clock := newFakeClock()
	store := memory.NewStore()
	opts := []Option{WithClock(clock.Now)}
	return &env{
		ctx:     context.Background(),
		clock:   clock,
		store:   store,
		catalog: NewCatalogService(store, opts...),
		members: NewMemberService(store, staticTokens{}, opts...),
		ledger:  NewLedgerService(store, DefaultLedgerConfig, opts...),
		reports: NewReportService(store, opts...),
		queries: NewQueryService(store, opts...),
	}
}

func (e *env) book(t *testing.T, title string, copies int) *model.Book {
	t.Helper()
	b, err := e.catalog.CreateBook(e.ctx, model.BookRequest{
		Title: title, Author: "Author of " + title, Category: "Fiction", TotalCopies: copies,
	})
	require.NoError(t, err)
	return b
}

func (e *env) member(t *testing.T, name string) *model.Member {
	t.Helper()
	resp, err := e.members.Register(e.ctx, model.RegisterRequest{
		Email: name + "@example.com", Password: "secret123", Name: name,
	})
	require.NoError(t, err)
	return &resp.Member
}

// assertCopies checks available = total - issued for the book.
func (e *env) assertCopies(t *testing.T, bookID string, wantAvailable int) {
	t.Helper()
	b, err := e.catalog.GetBook(e.ctx, bookID)
	require.NoError(t, err)
	issued, err := e.store.Loans().CountIssuedByBook(e.ctx, bookID)
	require.NoError(t, err)
	require.Equal(t, wantAvailable, b.AvailableCopies)
	require.Equal(t, b.TotalCopies-issued, b.AvailableCopies)
}
