package memory

import (
	"context"
	"sort"

	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
	"github.com/Shivanand-hulikatti/library-circulation/internal/repository"
)

type bookRepo struct{ s *Store }

func isbnTaken(st *state, b *model.Book) bool {
	if b.ISBN == nil {
		return false
	}
	for id, other := range st.books {
		if id != b.ID && other.ISBN != nil && *other.ISBN == *b.ISBN {
			return true
		}
	}
	return false
}

func validCopies(b *model.Book) bool {
	return b.AvailableCopies >= 0 && b.AvailableCopies <= b.TotalCopies
}

func (r bookRepo) Create(ctx context.Context, b *model.Book) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.books[b.ID]; ok || isbnTaken(st, b) {
			return repository.ErrDuplicate
		}
		if !validCopies(b) {
			return repository.ErrConflict
		}
		st.books[b.ID] = *b
		return nil
	})
}

func (r bookRepo) GetByID(ctx context.Context, id string) (*model.Book, error) {
	var out model.Book
	err := r.s.do(ctx, func(st *state) error {
		b, ok := st.books[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetForUpdate is GetByID; the transaction already holds the store lock.
func (r bookRepo) GetForUpdate(ctx context.Context, id string) (*model.Book, error) {
	return r.GetByID(ctx, id)
}

func (r bookRepo) List(ctx context.Context, f model.BookFilter) ([]model.Book, int, error) {
	var matched []model.Book
	err := r.s.do(ctx, func(st *state) error {
		for _, b := range st.books {
			if f.Category != "" && b.Category != f.Category {
				continue
			}
			if f.Search != "" {
				isbn := ""
				if b.ISBN != nil {
					isbn = *b.ISBN
				}
				if !contains(b.Title, f.Search) && !contains(b.Author, f.Search) && !contains(isbn, f.Search) {
					continue
				}
			}
			matched = append(matched, b)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Title != matched[j].Title {
			return matched[i].Title < matched[j].Title
		}
		return matched[i].ID < matched[j].ID
	})
	return paginate(matched, f.Page, f.Limit), len(matched), nil
}

func (r bookRepo) Categories(ctx context.Context) ([]string, error) {
	var out []string
	err := r.s.do(ctx, func(st *state) error {
		seen := map[string]bool{}
		for _, b := range st.books {
			if !seen[b.Category] {
				seen[b.Category] = true
				out = append(out, b.Category)
			}
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}

func (r bookRepo) Update(ctx context.Context, b *model.Book) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.books[b.ID]; !ok {
			return repository.ErrNotFound
		}
		if isbnTaken(st, b) {
			return repository.ErrDuplicate
		}
		if !validCopies(b) {
			return repository.ErrConflict
		}
		st.books[b.ID] = *b
		return nil
	})
}

func (r bookRepo) AdjustAvailable(ctx context.Context, id string, delta int) error {
	return r.s.do(ctx, func(st *state) error {
		b, ok := st.books[id]
		if !ok {
			return repository.ErrConflict
		}
		b.AvailableCopies += delta
		if !validCopies(&b) {
			return repository.ErrConflict
		}
		st.books[id] = b
		return nil
	})
}

// Delete refuses while any loan references the book and cascades
// reservations.
func (r bookRepo) Delete(ctx context.Context, id string) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.books[id]; !ok {
			return repository.ErrNotFound
		}
		for _, l := range st.loans {
			if l.BookID == id {
				return repository.ErrReferenced
			}
		}
		for rid, res := range st.reservations {
			if res.BookID == id {
				delete(st.reservations, rid)
			}
		}
		delete(st.books, id)
		return nil
	})
}
