// Package memory implements the repository ports in process memory. It
// enforces the same uniqueness, reference and copy-count constraints as the
// Postgres schema and is used for tests and for STORAGE=memory.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
	"github.com/Shivanand-hulikatti/library-circulation/internal/repository"
)

type state struct {
	books        map[string]model.Book
	members      map[string]model.Member
	loans        map[string]model.Loan
	reservations map[string]model.Reservation
	queries      map[string]model.HelpQuery
}

func newState() *state {
	return &state{
		books:        map[string]model.Book{},
		members:      map[string]model.Member{},
		loans:        map[string]model.Loan{},
		reservations: map[string]model.Reservation{},
		queries:      map[string]model.HelpQuery{},
	}
}

func (s *state) clone() *state {
	c := &state{
		books:        make(map[string]model.Book, len(s.books)),
		members:      make(map[string]model.Member, len(s.members)),
		loans:        make(map[string]model.Loan, len(s.loans)),
		reservations: make(map[string]model.Reservation, len(s.reservations)),
		queries:      make(map[string]model.HelpQuery, len(s.queries)),
	}
	for k, v := range s.books {
		c.books[k] = v
	}
	for k, v := range s.members {
		c.members[k] = v
	}
	for k, v := range s.loans {
		c.loans[k] = v
	}
	for k, v := range s.reservations {
		c.reservations[k] = v
	}
	for k, v := range s.queries {
		c.queries[k] = v
	}
	return c
}

// Store is an in-memory repository.Store. A transaction holds the store's
// mutex until it ends, so transactions are fully serialised.
type Store struct {
	mu   *sync.Mutex
	root **state
	inTx bool
}

// NewStore returns an empty Store.
func NewStore() *Store {
	st := newState()
	return &Store{mu: &sync.Mutex{}, root: &st}
}

func (s *Store) Books() repository.BookRepository               { return bookRepo{s} }
func (s *Store) Members() repository.MemberRepository           { return memberRepo{s} }
func (s *Store) Loans() repository.LoanRepository               { return loanRepo{s} }
func (s *Store) Reservations() repository.ReservationRepository { return reservationRepo{s} }
func (s *Store) Queries() repository.QueryRepository            { return queryRepo{s} }
func (s *Store) Reports() repository.ReportRepository           { return reportRepo{s} }

// WithTx runs fn with the store locked. On error or panic every change fn
// made is discarded.
func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Store) error) (err error) {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := (*s.root).clone()
	defer func() {
		if p := recover(); p != nil {
			*s.root = snapshot
			panic(p)
		}
		if err != nil {
			*s.root = snapshot
		}
	}()

	return fn(&Store{mu: s.mu, root: s.root, inTx: true})
}

// do runs fn against the current state, taking the lock unless the store is
// already inside a transaction.
func (s *Store) do(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(*s.root)
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// paginate slices items the way LIMIT/OFFSET would.
func paginate[T any](items []T, pageNo, limit int) []T {
	if limit <= 0 {
		return items
	}
	offset := model.Offset(pageNo, limit)
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func (st *state) loanView(l model.Loan) model.LoanView {
	v := model.LoanView{Loan: l}
	if b, ok := st.books[l.BookID]; ok {
		v.Title, v.Author, v.ISBN, v.Category = b.Title, b.Author, b.ISBN, b.Category
	}
	if m, ok := st.members[l.MemberID]; ok {
		v.MemberName, v.MemberEmail = m.Name, m.Email
	}
	return v
}
