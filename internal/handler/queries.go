package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
	"github.com/Shivanand-hulikatti/library-circulation/internal/service"
)

// QueryHandler serves the help desk.
type QueryHandler struct {
	svc *service.QueryService
}

// NewQueryHandler constructs a QueryHandler.
func NewQueryHandler(svc *service.QueryService) *QueryHandler {
	return &QueryHandler{svc: svc}
}

type queryCreated struct {
	Message string `json:"message"`
	QueryID string `json:"queryId"`
}

// Submit handles POST /queries
func (h *QueryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.QueryRequest
	if !readJSON(w, r, &req) {
		return
	}
	q, err := h.svc.SubmitQuery(r.Context(), actorFrom(r).MemberID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, queryCreated{Message: "query submitted successfully", QueryID: q.ID})
}

// List handles GET /queries?status=
func (h *QueryHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListQueries(r.Context(), model.QueryStatus(r.URL.Query().Get("status")))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Respond handles PUT /queries/{id}
func (h *QueryHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req model.QueryResponseRequest
	if !readJSON(w, r, &req) {
		return
	}
	if err := h.svc.RespondQuery(r.Context(), chi.URLParam(r, "id"), req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "query updated successfully"})
}
