package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
	"github.com/Shivanand-hulikatti/library-circulation/internal/service"
)

// CirculationHandler serves issues, returns and reservations.
type CirculationHandler struct {
	svc *service.LedgerService
}

// NewCirculationHandler constructs a CirculationHandler.
func NewCirculationHandler(svc *service.LedgerService) *CirculationHandler {
	return &CirculationHandler{svc: svc}
}

// Issue handles POST /transactions/issue
func (h *CirculationHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req model.IssueRequest
	if !readJSON(w, r, &req) {
		return
	}
	loan, err := h.svc.IssueBook(r.Context(), req.MemberID, req.BookID, req.DaysToReturn)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, model.IssueResponse{
		Message: "book issued successfully",
		LoanID:  loan.ID,
		DueDate: loan.DueDate,
	})
}

// Return handles POST /transactions/return
func (h *CirculationHandler) Return(w http.ResponseWriter, r *http.Request) {
	var req model.ReturnRequest
	if !readJSON(w, r, &req) {
		return
	}
	receipt, err := h.svc.ReturnBook(r.Context(), req.LoanID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// ListLoans handles GET /transactions?status=&page=&limit=
func (h *CirculationHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pageParams(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	list, err := h.svc.ListLoans(r.Context(), model.LoanFilter{
		Status: model.LoanStatus(r.URL.Query().Get("status")),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// MyBooks handles GET /transactions/my-books
func (h *CirculationHandler) MyBooks(w http.ResponseWriter, r *http.Request) {
	loans, err := h.svc.MyBooks(r.Context(), actorFrom(r).MemberID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loans)
}

// History handles GET /transactions/history
func (h *CirculationHandler) History(w http.ResponseWriter, r *http.Request) {
	loans, err := h.svc.History(r.Context(), actorFrom(r).MemberID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loans)
}

// Reserve handles POST /transactions/reserve
func (h *CirculationHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	var req model.ReserveRequest
	if !readJSON(w, r, &req) {
		return
	}
	res, err := h.svc.ReserveBook(r.Context(), actorFrom(r).MemberID, req.BookID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, model.ReserveResponse{
		Message:       "book reserved successfully",
		ReservationID: res.ID,
	})
}

// Reservations handles GET /transactions/reservations
func (h *CirculationHandler) Reservations(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.MyReservations(r.Context(), actorFrom(r).MemberID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// CancelReservation handles POST /transactions/reservations/{id}/cancel
func (h *CirculationHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.CancelReservation(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "reservation cancelled"})
}
