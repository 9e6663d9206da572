package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/library-circulation/internal/auth"
	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
	"github.com/Shivanand-hulikatti/library-circulation/internal/repository/memory"
	"github.com/Shivanand-hulikatti/library-circulation/internal/service"
)

type testAPI struct {
	t      *testing.T
	router http.Handler
	admin  string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := memory.NewStore()
	tokens := auth.NewTokenManager("test-secret", time.Hour, nil)
	members := service.NewMemberService(store, tokens)
	_, err := members.EnsureAdmin(context.Background(), "admin@library.com", "admin123", "Admin")
	require.NoError(t, err)

	api := &testAPI{t: t, router: NewRouter(Services{
		Catalog: service.NewCatalogService(store),
		Members: members,
		Ledger:  service.NewLedgerService(store, service.DefaultLedgerConfig),
		Reports: service.NewReportService(store),
		Queries: service.NewQueryService(store),
	}, RouterConfig{Tokens: tokens})}

	var login model.AuthResponse
	api.do(http.MethodPost, "/auth/login", "", `{"email":"admin@library.com","password":"admin123"}`, http.StatusOK, &login)
	api.admin = login.Token
	return api
}

// do sends a request, asserts the status and decodes the body into out when
// it is non-nil.
func (a *testAPI) do(method, path, token, body string, wantStatus int, out any) *httptest.ResponseRecorder {
	a.t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	require.Equal(a.t, wantStatus, rec.Code, rec.Body.String())
	if out != nil {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func (a *testAPI) register(name string) (token, id string) {
	a.t.Helper()
	var resp model.AuthResponse
	a.do(http.MethodPost, "/auth/register", "",
		`{"email":"`+name+`@example.com","password":"secret123","name":"`+name+`"}`,
		http.StatusCreated, &resp)
	return resp.Token, resp.Member.ID
}

func (a *testAPI) addBook(title string, copies int) string {
	a.t.Helper()
	var created model.CreatedResponse
	body, err := json.Marshal(model.BookRequest{Title: title, Author: "Someone", Category: "Fiction", TotalCopies: copies})
	require.NoError(a.t, err)
	a.do(http.MethodPost, "/books", a.admin, string(body), http.StatusCreated, &created)
	return created.ID
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	var out map[string]string
	api.do(http.MethodGet, "/health", "", "", http.StatusOK, &out)
	assert.Equal(t, "ok", out["status"])
}

func TestAuthGuards(t *testing.T) {
	api := newTestAPI(t)
	memberToken, _ := api.register("alice")

	var e model.ErrorResponse
	api.do(http.MethodGet, "/auth/profile", "", "", http.StatusUnauthorized, &e)
	assert.Equal(t, "access token required", e.Error)

	api.do(http.MethodGet, "/auth/profile", "not-a-token", "", http.StatusUnauthorized, &e)
	assert.Equal(t, "invalid or expired token", e.Error)

	api.do(http.MethodGet, "/members", memberToken, "", http.StatusForbidden, &e)
	assert.Equal(t, "admin access required", e.Error)

	api.do(http.MethodPost, "/books", memberToken, `{"title":"x","author":"y","category":"z"}`, http.StatusForbidden, nil)

	var profile model.Member
	api.do(http.MethodGet, "/auth/profile", memberToken, "", http.StatusOK, &profile)
	assert.Equal(t, "alice@example.com", profile.Email)

	api.do(http.MethodPost, "/auth/login", "", `{"email":"alice@example.com","password":"nope"}`, http.StatusUnauthorized, nil)
	api.do(http.MethodPost, "/auth/register", "", `{"email":"alice@example.com","password":"secret123","name":"A"}`, http.StatusConflict, nil)
}

func TestRequestBodyErrors(t *testing.T) {
	api := newTestAPI(t)

	var e model.ErrorResponse
	api.do(http.MethodPost, "/auth/register", "", `{"email":"a@b.com","password":"secret123","name":"A","role":"admin"}`, http.StatusBadRequest, &e)
	assert.Contains(t, e.Error, "invalid request body")

	api.do(http.MethodPost, "/auth/register", "", "", http.StatusBadRequest, &e)
	assert.Contains(t, e.Error, "request body is required")

	api.do(http.MethodPost, "/auth/register", "", `{"email":"a@b.com","password":"1","name":"A"}`, http.StatusBadRequest, &e)
	assert.Equal(t, "password must be at least 6 characters", e.Error)

	// Forty two-byte runes pass the rune limit but exceed the byte limit.
	api.do(http.MethodPost, "/auth/register", "", `{"email":"a@b.com","password":"`+strings.Repeat("é", 40)+`","name":"A"}`, http.StatusBadRequest, &e)
	assert.Equal(t, "password must be at most 72 bytes", e.Error)
}

func TestCirculationFlow(t *testing.T) {
	api := newTestAPI(t)
	aliceToken, aliceID := api.register("alice")
	bobToken, _ := api.register("bob")
	bookID := api.addBook("Dune", 1)

	var reserveErr model.ErrorResponse
	api.do(http.MethodPost, "/transactions/reserve", bobToken, `{"bookId":"`+bookID+`"}`, http.StatusConflict, &reserveErr)

	var issued model.IssueResponse
	api.do(http.MethodPost, "/transactions/issue", api.admin,
		`{"memberId":"`+aliceID+`","bookId":"`+bookID+`","daysToReturn":7}`, http.StatusCreated, &issued)
	assert.NotEmpty(t, issued.LoanID)
	assert.False(t, issued.DueDate.IsZero())

	var book model.Book
	api.do(http.MethodGet, "/books/"+bookID, "", "", http.StatusOK, &book)
	assert.Equal(t, 0, book.AvailableCopies)

	// Issuing requires the admin role even for the borrower.
	api.do(http.MethodPost, "/transactions/issue", aliceToken,
		`{"memberId":"`+aliceID+`","bookId":"`+bookID+`"}`, http.StatusForbidden, nil)

	var mine []model.LoanView
	api.do(http.MethodGet, "/transactions/my-books", aliceToken, "", http.StatusOK, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, "Dune", mine[0].Title)

	var reserved model.ReserveResponse
	api.do(http.MethodPost, "/transactions/reserve", bobToken, `{"bookId":"`+bookID+`"}`, http.StatusCreated, &reserved)
	api.do(http.MethodPost, "/transactions/reservations/"+reserved.ReservationID+"/cancel", aliceToken, "", http.StatusForbidden, nil)

	var receipt model.ReturnReceipt
	api.do(http.MethodPost, "/transactions/return", api.admin, `{"loanId":"`+issued.LoanID+`"}`, http.StatusOK, &receipt)
	assert.Zero(t, receipt.FineAmount)

	api.do(http.MethodPost, "/transactions/return", api.admin, `{"loanId":"`+issued.LoanID+`"}`, http.StatusConflict, nil)
	api.do(http.MethodGet, "/books/"+bookID, "", "", http.StatusOK, &book)
	assert.Equal(t, 1, book.AvailableCopies)

	var stats model.DashboardStats
	api.do(http.MethodGet, "/reports/dashboard", api.admin, "", http.StatusOK, &stats)
	assert.Equal(t, 1, stats.TotalBooks)
	assert.Equal(t, 2, stats.TotalMembers)
	assert.Zero(t, stats.ActiveLoans)
}

func TestListBooksPagination(t *testing.T) {
	api := newTestAPI(t)
	for _, title := range []string{"A", "B", "C"} {
		api.addBook(title, 1)
	}

	var list model.BookList
	api.do(http.MethodGet, "/books?page=2&limit=2", "", "", http.StatusOK, &list)
	assert.Equal(t, model.Page{Page: 2, Limit: 2, Total: 3, Pages: 2}, list.Pagination)
	require.Len(t, list.Books, 1)
	assert.Equal(t, "C", list.Books[0].Title)

	var e model.ErrorResponse
	api.do(http.MethodGet, "/books?page=two", "", "", http.StatusBadRequest, &e)
	assert.Equal(t, "page must be an integer", e.Error)

	api.do(http.MethodGet, "/books/not-a-uuid", "", "", http.StatusBadRequest, nil)
}

func TestQueriesRoutes(t *testing.T) {
	api := newTestAPI(t)
	aliceToken, _ := api.register("alice")

	var created struct {
		QueryID string `json:"queryId"`
	}
	api.do(http.MethodPost, "/queries", aliceToken, `{"subject":"Hours","message":"When?"}`, http.StatusCreated, &created)
	require.NotEmpty(t, created.QueryID)

	api.do(http.MethodGet, "/queries", aliceToken, "", http.StatusForbidden, nil)
	api.do(http.MethodPut, "/queries/"+created.QueryID, api.admin, `{"adminResponse":"9am"}`, http.StatusOK, nil)

	var open []model.HelpQueryView
	api.do(http.MethodGet, "/queries?status=open", api.admin, "", http.StatusOK, &open)
	assert.Empty(t, open)
}

func TestLegacyRouteAliases(t *testing.T) {
	api := newTestAPI(t)
	aliceToken, _ := api.register("alice")
	api.addBook("Dune", 1)

	var cats []string
	api.do(http.MethodGet, "/books/meta/categories", "", "", http.StatusOK, &cats)
	assert.Equal(t, []string{"Fiction"}, cats)

	var created struct {
		QueryID string `json:"queryId"`
	}
	api.do(http.MethodPost, "/reports/queries", aliceToken, `{"subject":"Hours","message":"When?"}`, http.StatusCreated, &created)
	api.do(http.MethodGet, "/reports/queries", aliceToken, "", http.StatusForbidden, nil)
	api.do(http.MethodGet, "/reports/dashboard", aliceToken, "", http.StatusForbidden, nil)
	api.do(http.MethodPut, "/reports/queries/"+created.QueryID, api.admin, `{"adminResponse":"9am"}`, http.StatusOK, nil)

	var resolved []model.HelpQueryView
	api.do(http.MethodGet, "/reports/queries?status=resolved", api.admin, "", http.StatusOK, &resolved)
	require.Len(t, resolved, 1)
	assert.Equal(t, "9am", resolved[0].AdminResponse)
}

func TestCORSPreflight(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodOptions, "/books", "", "", http.StatusNoContent, nil)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
