package service

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
)

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)

	resp, err := e.members.Register(e.ctx, model.RegisterRequest{
		Email: " Alice@Example.COM ", Password: "secret123", Name: "Alice", Phone: "555-0100",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", resp.Member.Email)
	assert.Equal(t, model.RoleMember, resp.Member.Role)
	assert.Equal(t, "555-0100", resp.Member.Phone)
	assert.Equal(t, "token-"+resp.Member.ID, resp.Token)
	assert.NotEqual(t, "secret123", resp.Member.PasswordHash)

	_, err = e.members.Register(e.ctx, model.RegisterRequest{
		Email: "alice@example.com", Password: "another1", Name: "Alice 2",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)

	login, err := e.members.Login(e.ctx, model.LoginRequest{Email: "ALICE@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, resp.Member.ID, login.Member.ID)

	_, err = e.members.Login(e.ctx, model.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = e.members.Login(e.ctx, model.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	e := newEnv(t)
	tests := []struct {
		name string
		req  model.RegisterRequest
		msg  string
	}{
		{name: "bad email", req: model.RegisterRequest{Email: "nope", Password: "secret123", Name: "A"}, msg: "email must be a valid email address"},
		{name: "short password", req: model.RegisterRequest{Email: "a@b.com", Password: "123", Name: "A"}, msg: "password must be at least 6 characters"},
		{name: "missing name", req: model.RegisterRequest{Email: "a@b.com", Password: "secret123"}, msg: "name is required"},
		{name: "password over 72 bytes", req: model.RegisterRequest{Email: "a@b.com", Password: strings.Repeat("é", 40), Name: "A"}, msg: "password must be at most 72 bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.members.Register(e.ctx, tt.req)
			require.Error(t, err)
			assert.Equal(t, KindValidation, KindOf(err))
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestProfileAndAdminEdits(t *testing.T) {
	e := newEnv(t)
	alice := e.member(t, "alice")
	bob := e.member(t, "bob")

	m, err := e.members.UpdateProfile(e.ctx, alice.ID, model.ProfileRequest{Name: "Alice A.", Address: "1 Main St"})
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", m.Name)

	m, err = e.members.Profile(e.ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "1 Main St", m.Address)

	_, err = e.members.UpdateMember(e.ctx, alice.ID, model.MemberUpdateRequest{Name: "Alice", Email: bob.Email})
	assert.ErrorIs(t, err, ErrEmailTaken)

	m, err = e.members.UpdateMember(e.ctx, alice.ID, model.MemberUpdateRequest{Name: "Alice", Email: "alice2@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "alice2@example.com", m.Email)

	// The password survives an admin edit.
	_, err = e.members.Login(e.ctx, model.LoginRequest{Email: "alice2@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = e.members.GetMember(e.ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestListMembersExcludesAdmins(t *testing.T) {
	e := newEnv(t)
	created, err := e.members.EnsureAdmin(e.ctx, "admin@library.com", "admin123", "Admin")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = e.members.EnsureAdmin(e.ctx, "ADMIN@library.com", "other", "Admin")
	require.NoError(t, err)
	assert.False(t, created, "idempotent")

	e.member(t, "carol")
	e.member(t, "bob")

	list, err := e.members.ListMembers(e.ctx, model.MemberFilter{})
	require.NoError(t, err)
	require.Len(t, list.Members, 2)
	assert.Equal(t, "bob", list.Members[0].Name)

	list, err = e.members.ListMembers(e.ctx, model.MemberFilter{Search: "CAR"})
	require.NoError(t, err)
	require.Len(t, list.Members, 1)
	assert.Equal(t, "carol", list.Members[0].Name)

	admin, err := e.members.Login(e.ctx, model.LoginRequest{Email: "admin@library.com", Password: "admin123"})
	require.NoError(t, err)
	assert.True(t, admin.Member.IsAdmin())

	_, err = e.members.EnsureAdmin(e.ctx, "root@library.com", strings.Repeat("é", 40), "Root")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestDeleteMember(t *testing.T) {
	e := newEnv(t)
	b := e.book(t, "Dune", 2)
	alice := e.member(t, "alice")
	bob := e.member(t, "bob")

	loan, err := e.ledger.IssueBook(e.ctx, alice.ID, b.ID, 0)
	require.NoError(t, err)
	assert.ErrorIs(t, e.members.DeleteMember(e.ctx, alice.ID), ErrMemberHasActiveLoans)

	_, err = e.ledger.ReturnBook(e.ctx, loan.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, e.members.DeleteMember(e.ctx, alice.ID), ErrMemberHasHistory)

	history, err := e.members.MemberHistory(e.ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	_, err = e.queries.SubmitQuery(e.ctx, bob.ID, model.QueryRequest{Subject: "Hi", Message: "Hello"})
	require.NoError(t, err)
	require.NoError(t, e.members.DeleteMember(e.ctx, bob.ID))
	_, err = e.members.GetMember(e.ctx, bob.ID)
	assert.ErrorIs(t, err, ErrMemberNotFound)

	queries, err := e.queries.ListQueries(e.ctx, "")
	require.NoError(t, err)
	assert.Empty(t, queries, "queries go with their member")
}
