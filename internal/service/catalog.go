package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
	"github.com/Shivanand-hulikatti/library-circulation/internal/repository"
)

// CatalogService manages book records.
type CatalogService struct {
	store repository.Store
	options
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(store repository.Store, opts ...Option) *CatalogService {
	return &CatalogService{store: store, options: buildOptions(opts)}
}

// CreateBook validates the request and stores a new title with every copy
// available.
func (s *CatalogService) CreateBook(ctx context.Context, req model.BookRequest) (*model.Book, error) {
	req = trimBook(req)
	if err := checkStruct(req); err != nil {
		return nil, err
	}
	if req.TotalCopies == 0 {
		req.TotalCopies = 1
	}

	now := s.utcNow()
	b := &model.Book{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	applyBook(b, req)
	b.TotalCopies = req.TotalCopies
	b.AvailableCopies = req.TotalCopies

	if err := s.store.Books().Create(ctx, b); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrISBNTaken
		}
		return nil, storage("create book", err)
	}
	s.logger.Info("book created", "book_id", b.ID, "title", b.Title, "copies", b.TotalCopies)
	return b, nil
}

// GetBook returns a single book by ID.
func (s *CatalogService) GetBook(ctx context.Context, id string) (*model.Book, error) {
	if err := checkID("book id", &id); err != nil {
		return nil, err
	}
	b, err := s.store.Books().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, storage("get book", err)
	}
	return b, nil
}

// ListBooks returns a filtered page of the catalog ordered by title.
func (s *CatalogService) ListBooks(ctx context.Context, f model.BookFilter) (*model.BookList, error) {
	f.Page, f.Limit = normalizePage(f.Page, f.Limit)
	f.Category = strings.TrimSpace(f.Category)
	f.Search = strings.TrimSpace(f.Search)

	books, total, err := s.store.Books().List(ctx, f)
	if err != nil {
		return nil, storage("list books", err)
	}
	if books == nil {
		books = []model.Book{}
	}
	return &model.BookList{Books: books, Pagination: model.NewPage(f.Page, f.Limit, total)}, nil
}

// Categories returns the distinct categories in the catalog, sorted.
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	cats, err := s.store.Books().Categories(ctx)
	if err != nil {
		return nil, storage("list categories", err)
	}
	if cats == nil {
		cats = []string{}
	}
	return cats, nil
}

// UpdateBook replaces the descriptive fields of a book. A non-zero
// TotalCopies changes the copy count; copies already out on loan stay
// issued, so the new total may not drop below that number.
func (s *CatalogService) UpdateBook(ctx context.Context, id string, req model.BookRequest) (*model.Book, error) {
	if err := checkID("book id", &id); err != nil {
		return nil, err
	}
	req = trimBook(req)
	if err := checkStruct(req); err != nil {
		return nil, err
	}

	var updated *model.Book
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		b, err := tx.Books().GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookNotFound
			}
			return storage("lock book", err)
		}

		if req.TotalCopies > 0 && req.TotalCopies != b.TotalCopies {
			issued := b.Issued()
			if req.TotalCopies < issued {
				return ErrCopiesBelowIssued
			}
			b.TotalCopies = req.TotalCopies
			b.AvailableCopies = req.TotalCopies - issued
		}
		applyBook(b, req)
		b.UpdatedAt = s.utcNow()

		if err := tx.Books().Update(ctx, b); err != nil {
			switch {
			case errors.Is(err, repository.ErrDuplicate):
				return ErrISBNTaken
			case errors.Is(err, repository.ErrConflict):
				return ErrCopiesBelowIssued
			}
			return storage("update book", err)
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("book updated", "book_id", id, "total", updated.TotalCopies, "available", updated.AvailableCopies)
	return updated, nil
}

// DeleteBook removes a title that has never been lent out. Active
// reservations go with it.
func (s *CatalogService) DeleteBook(ctx context.Context, id string) error {
	if err := checkID("book id", &id); err != nil {
		return err
	}
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Books().GetForUpdate(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookNotFound
			}
			return storage("lock book", err)
		}

		issued, err := tx.Loans().CountIssuedByBook(ctx, id)
		if err != nil {
			return storage("count issued loans", err)
		}
		if issued > 0 {
			return ErrBookHasActiveLoans
		}
		all, err := tx.Loans().CountByBook(ctx, id)
		if err != nil {
			return storage("count loans", err)
		}
		if all > 0 {
			return ErrBookHasHistory
		}

		if err := tx.Books().Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrReferenced) {
				return ErrBookHasHistory
			}
			return storage("delete book", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("book deleted", "book_id", id)
	return nil
}

var sampleBooks = []model.BookRequest{
	{ISBN: "978-0-7432-7356-5", Title: "The Da Vinci Code", Author: "Dan Brown", Category: "Fiction",
		Publisher: "Doubleday", PublicationYear: 2003, TotalCopies: 3, Description: "A mystery thriller novel"},
	{ISBN: "978-0-06-112008-4", Title: "To Kill a Mockingbird", Author: "Harper Lee", Category: "Fiction",
		Publisher: "J.B. Lippincott & Co.", PublicationYear: 1960, TotalCopies: 2, Description: "A classic American novel"},
	{ISBN: "978-0-452-28423-4", Title: "1984", Author: "George Orwell", Category: "Fiction",
		Publisher: "Secker & Warburg", PublicationYear: 1949, TotalCopies: 4, Description: "Dystopian social science fiction"},
	{ISBN: "978-0-7432-4722-4", Title: "The Catcher in the Rye", Author: "J.D. Salinger", Category: "Fiction",
		Publisher: "Little, Brown and Company", PublicationYear: 1951, TotalCopies: 2, Description: "Coming-of-age story"},
	{ISBN: "978-0-316-76948-0", Title: "The Alchemist", Author: "Paulo Coelho", Category: "Fiction",
		Publisher: "HarperCollins", PublicationYear: 1988, TotalCopies: 3, Description: "Philosophical novel"},
}

// SeedSampleBooks adds a handful of titles when the catalog is empty and
// reports how many were added.
func (s *CatalogService) SeedSampleBooks(ctx context.Context) (int, error) {
	_, total, err := s.store.Books().List(ctx, model.BookFilter{Page: 1, Limit: 1})
	if err != nil {
		return 0, storage("count books", err)
	}
	if total > 0 {
		return 0, nil
	}

	added := 0
	for _, req := range sampleBooks {
		if _, err := s.CreateBook(ctx, req); err != nil {
			if errors.Is(err, ErrISBNTaken) {
				continue
			}
			return added, err
		}
		added++
	}
	return added, nil
}

func trimBook(req model.BookRequest) model.BookRequest {
	req.ISBN = strings.TrimSpace(req.ISBN)
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	req.Category = strings.TrimSpace(req.Category)
	req.Publisher = strings.TrimSpace(req.Publisher)
	req.Description = strings.TrimSpace(req.Description)
	return req
}

// applyBook copies the descriptive fields; copy counts are handled by the
// caller.
func applyBook(b *model.Book, req model.BookRequest) {
	b.ISBN = nil
	if req.ISBN != "" {
		isbn := req.ISBN
		b.ISBN = &isbn
	}
	b.Title = req.Title
	b.Author = req.Author
	b.Category = req.Category
	b.Publisher = req.Publisher
	b.PublicationYear = req.PublicationYear
	b.Description = req.Description
}
