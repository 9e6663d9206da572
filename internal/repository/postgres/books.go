package postgres

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
	"github.com/Shivanand-hulikatti/library-circulation/internal/repository"
)

const bookColumns = `id, isbn, title, author, category, publisher, publication_year,
	description, total_copies, available_copies, created_at, updated_at`

var bookSelect = []any{
	"id", "isbn", "title", "author", "category", "publisher", "publication_year",
	"description", "total_copies", "available_copies", "created_at", "updated_at",
}

type bookRepo struct {
	q querier
}

func scanBook(row scanner, b *model.Book) error {
	return row.Scan(
		&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Category, &b.Publisher, &b.PublicationYear,
		&b.Description, &b.TotalCopies, &b.AvailableCopies, &b.CreatedAt, &b.UpdatedAt,
	)
}

// Create inserts a new book.
func (r bookRepo) Create(ctx context.Context, b *model.Book) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO books (`+bookColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		b.ID, b.ISBN, b.Title, b.Author, b.Category, b.Publisher, b.PublicationYear,
		b.Description, b.TotalCopies, b.AvailableCopies, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return mapError("insert book", err)
	}
	return nil
}

// GetByID returns a single book or repository.ErrNotFound.
func (r bookRepo) GetByID(ctx context.Context, id string) (*model.Book, error) {
	var b model.Book
	err := scanBook(r.q.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id), &b)
	if err != nil {
		return nil, mapError("get book", err)
	}
	return &b, nil
}

// GetForUpdate acquires an exclusive row lock on the book. Any other
// transaction asking for the same lock blocks until this one resolves, so
// two issues racing for the last copy are applied one after the other and
// the second sees available_copies = 0.
func (r bookRepo) GetForUpdate(ctx context.Context, id string) (*model.Book, error) {
	var b model.Book
	err := scanBook(r.q.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1 FOR UPDATE`, id), &b)
	if err != nil {
		return nil, mapError("lock book row", err)
	}
	return &b, nil
}

// List returns one page of books ordered by title plus the unpaged total.
func (r bookRepo) List(ctx context.Context, f model.BookFilter) ([]model.Book, int, error) {
	ds := dialect.From("books")
	if f.Category != "" {
		ds = ds.Where(goqu.C("category").Eq(f.Category))
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		ds = ds.Where(goqu.Or(
			goqu.C("title").ILike(p),
			goqu.C("author").ILike(p),
			goqu.C("isbn").ILike(p),
		))
	}

	total, err := count(ctx, r.q, ds)
	if err != nil {
		return nil, 0, err
	}

	query, args, err := page(ds.Select(bookSelect...).Order(goqu.C("title").Asc()), f.Page, f.Limit).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build book list query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError("list books", err)
	}
	defer rows.Close()

	var books []model.Book
	for rows.Next() {
		var b model.Book
		if err := scanBook(rows, &b); err != nil {
			return nil, 0, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	return books, total, rows.Err()
}

// Categories returns the distinct categories in alphabetical order.
func (r bookRepo) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT DISTINCT category FROM books ORDER BY category`)
	if err != nil {
		return nil, mapError("list categories", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update replaces the mutable columns of a book.
func (r bookRepo) Update(ctx context.Context, b *model.Book) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE books
		 SET isbn = $2, title = $3, author = $4, category = $5, publisher = $6,
		     publication_year = $7, description = $8, total_copies = $9,
		     available_copies = $10, updated_at = $11
		 WHERE id = $1`,
		b.ID, b.ISBN, b.Title, b.Author, b.Category, b.Publisher,
		b.PublicationYear, b.Description, b.TotalCopies,
		b.AvailableCopies, b.UpdatedAt,
	)
	if err != nil {
		return mapError("update book", err)
	}
	return expectOne(tag)
}

// AdjustAvailable shifts available_copies by delta. The WHERE clause keeps
// the count inside [0, total_copies] even if a caller skipped the lock.
func (r bookRepo) AdjustAvailable(ctx context.Context, id string, delta int) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE books
		 SET available_copies = available_copies + $2, updated_at = now()
		 WHERE id = $1
		   AND available_copies + $2 >= 0
		   AND available_copies + $2 <= total_copies`,
		id, delta,
	)
	if err != nil {
		return mapError("adjust available copies", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrConflict
	}
	return nil
}

// Delete removes a book. Active reservations cascade; loans block the delete.
func (r bookRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return mapError("delete book", err)
	}
	return expectOne(tag)
}
