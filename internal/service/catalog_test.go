package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
)

func TestCreateBook(t *testing.T) {
	e := newEnv(t)

	b, err := e.catalog.CreateBook(e.ctx, model.BookRequest{
		ISBN: " 978-1 ", Title: "  Dune ", Author: "Frank Herbert", Category: "SciFi",
	})
	require.NoError(t, err)
	assert.Equal(t, "Dune", b.Title)
	require.NotNil(t, b.ISBN)
	assert.Equal(t, "978-1", *b.ISBN)
	assert.Equal(t, 1, b.TotalCopies, "copies default to one")
	assert.Equal(t, 1, b.AvailableCopies)

	_, err = e.catalog.CreateBook(e.ctx, model.BookRequest{
		ISBN: "978-1", Title: "Dune again", Author: "Frank Herbert", Category: "SciFi",
	})
	assert.ErrorIs(t, err, ErrISBNTaken)

	// Books without an ISBN never collide.
	for range 2 {
		_, err = e.catalog.CreateBook(e.ctx, model.BookRequest{Title: "Untitled", Author: "Anon", Category: "Misc"})
		require.NoError(t, err)
	}

	_, err = e.catalog.CreateBook(e.ctx, model.BookRequest{Title: "No author", Category: "Misc"})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Contains(t, err.Error(), "author is required")
}

func TestListBooksFiltersAndPaginates(t *testing.T) {
	e := newEnv(t)
	for _, req := range []model.BookRequest{
		{Title: "Dune", Author: "Frank Herbert", Category: "SciFi"},
		{Title: "Emma", Author: "Jane Austen", Category: "Classic"},
		{Title: "Persuasion", Author: "Jane Austen", Category: "Classic"},
		{Title: "Neuromancer", Author: "William Gibson", Category: "SciFi", ISBN: "978-0441569595"},
	} {
		_, err := e.catalog.CreateBook(e.ctx, req)
		require.NoError(t, err)
	}

	list, err := e.catalog.ListBooks(e.ctx, model.BookFilter{Category: "Classic"})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Pagination.Total)
	assert.Equal(t, "Emma", list.Books[0].Title)

	list, err = e.catalog.ListBooks(e.ctx, model.BookFilter{Search: "austen"})
	require.NoError(t, err)
	assert.Len(t, list.Books, 2)

	list, err = e.catalog.ListBooks(e.ctx, model.BookFilter{Search: "0441"})
	require.NoError(t, err)
	require.Len(t, list.Books, 1)
	assert.Equal(t, "Neuromancer", list.Books[0].Title)

	list, err = e.catalog.ListBooks(e.ctx, model.BookFilter{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, model.Page{Page: 2, Limit: 3, Total: 4, Pages: 2}, list.Pagination)
	require.Len(t, list.Books, 1)
	assert.Equal(t, "Persuasion", list.Books[0].Title)

	list, err = e.catalog.ListBooks(e.ctx, model.BookFilter{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 100, list.Pagination.Limit)

	list, err = e.catalog.ListBooks(e.ctx, model.BookFilter{Search: "nothing matches"})
	require.NoError(t, err)
	assert.NotNil(t, list.Books)
	assert.Empty(t, list.Books)

	cats, err := e.catalog.Categories(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Classic", "SciFi"}, cats)
}

func TestUpdateBookKeepsCopyInvariant(t *testing.T) {
	e := newEnv(t)
	b := e.book(t, "Dune", 3)
	alice := e.member(t, "alice")
	bob := e.member(t, "bob")

	for _, m := range []*model.Member{alice, bob} {
		_, err := e.ledger.IssueBook(e.ctx, m.ID, b.ID, 0)
		require.NoError(t, err)
	}
	e.assertCopies(t, b.ID, 1)

	req := model.BookRequest{Title: "Dune", Author: "Frank Herbert", Category: "SciFi", TotalCopies: 1}
	_, err := e.catalog.UpdateBook(e.ctx, b.ID, req)
	assert.ErrorIs(t, err, ErrCopiesBelowIssued)
	e.assertCopies(t, b.ID, 1)

	req.TotalCopies = 2
	updated, err := e.catalog.UpdateBook(e.ctx, b.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.TotalCopies)
	assert.Equal(t, 0, updated.AvailableCopies)
	assert.Equal(t, "Frank Herbert", updated.Author)
	e.assertCopies(t, b.ID, 0)

	req.TotalCopies = 5
	_, err = e.catalog.UpdateBook(e.ctx, b.ID, req)
	require.NoError(t, err)
	e.assertCopies(t, b.ID, 3)

	// Zero keeps the current count.
	req.TotalCopies = 0
	req.Title = "Dune (2nd ed.)"
	updated, err = e.catalog.UpdateBook(e.ctx, b.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.TotalCopies)
	assert.Equal(t, "Dune (2nd ed.)", updated.Title)

	_, err = e.catalog.UpdateBook(e.ctx, uuid.NewString(), req)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestDeleteBook(t *testing.T) {
	e := newEnv(t)
	alice := e.member(t, "alice")

	t.Run("unused book", func(t *testing.T) {
		b := e.book(t, "Fresh", 1)
		require.NoError(t, e.catalog.DeleteBook(e.ctx, b.ID))
		_, err := e.catalog.GetBook(e.ctx, b.ID)
		assert.ErrorIs(t, err, ErrBookNotFound)
	})

	t.Run("active loan", func(t *testing.T) {
		b := e.book(t, "Lent", 1)
		loan, err := e.ledger.IssueBook(e.ctx, alice.ID, b.ID, 0)
		require.NoError(t, err)
		assert.ErrorIs(t, e.catalog.DeleteBook(e.ctx, b.ID), ErrBookHasActiveLoans)

		_, err = e.ledger.ReturnBook(e.ctx, loan.ID)
		require.NoError(t, err)
		assert.ErrorIs(t, e.catalog.DeleteBook(e.ctx, b.ID), ErrBookHasHistory)
	})

	t.Run("lent and reserved", func(t *testing.T) {
		b := e.book(t, "Reserved", 1)
		bob := e.member(t, "bob")
		_, err := e.ledger.IssueBook(e.ctx, bob.ID, b.ID, 0)
		require.NoError(t, err)
		_, err = e.ledger.ReserveBook(e.ctx, alice.ID, b.ID)
		require.NoError(t, err)
		assert.ErrorIs(t, e.catalog.DeleteBook(e.ctx, b.ID), ErrBookHasActiveLoans)
	})

	t.Run("unknown", func(t *testing.T) {
		assert.ErrorIs(t, e.catalog.DeleteBook(e.ctx, uuid.NewString()), ErrBookNotFound)
	})
}

func TestSeedSampleBooks(t *testing.T) {
	e := newEnv(t)

	added, err := e.catalog.SeedSampleBooks(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, len(sampleBooks), added)

	added, err = e.catalog.SeedSampleBooks(e.ctx)
	require.NoError(t, err)
	assert.Zero(t, added)

	list, err := e.catalog.ListBooks(e.ctx, model.BookFilter{Search: "1984"})
	require.NoError(t, err)
	require.Len(t, list.Books, 1)
	assert.Equal(t, 4, list.Books[0].AvailableCopies)
}
