package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckIDCanonicalises(t *testing.T) {
	const canonical = "c6a5d0c2-7d0a-4a0e-9d1b-0d5f3f1a2b3c"
	for _, in := range []string{
		canonical,
		strings.ToUpper(canonical),
		"urn:uuid:" + canonical,
		"{" + canonical + "}",
		strings.ReplaceAll(canonical, "-", ""),
	} {
		t.Run(in, func(t *testing.T) {
			id := in
			require.NoError(t, checkID("book id", &id))
			assert.Equal(t, canonical, id)
		})
	}

	id := "not-a-uuid"
	err := checkID("book id", &id)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "not-a-uuid", id)

	id = ""
	assert.EqualError(t, checkID("book id", &id), "book id is required")
}

func TestNonCanonicalIDsReachTheSameRows(t *testing.T) {
	e := newEnv(t)
	b := e.book(t, "Dune", 2)
	alice := e.member(t, "alice")

	for _, id := range []string{strings.ToUpper(b.ID), "urn:uuid:" + b.ID, "{" + b.ID + "}"} {
		got, err := e.catalog.GetBook(e.ctx, id)
		require.NoError(t, err, id)
		assert.Equal(t, b.ID, got.ID)
	}

	loan, err := e.ledger.IssueBook(e.ctx, strings.ToUpper(alice.ID), "urn:uuid:"+b.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, loan.MemberID)
	assert.Equal(t, b.ID, loan.BookID)

	_, err = e.ledger.IssueBook(e.ctx, alice.ID, b.ID, 0)
	assert.ErrorIs(t, err, ErrDuplicateLoan)

	mine, err := e.ledger.MyBooks(e.ctx, strings.ToUpper(alice.ID))
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	history, err := e.members.MemberHistory(e.ctx, strings.ToUpper(alice.ID))
	require.NoError(t, err)
	assert.Len(t, history, 1)

	_, err = e.ledger.ReturnBook(e.ctx, strings.ToUpper(loan.ID))
	require.NoError(t, err)
	e.assertCopies(t, b.ID, 2)
}
