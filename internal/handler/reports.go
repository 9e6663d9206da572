package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/library-circulation/internal/service"
)

// ReportHandler serves the admin reports.
type ReportHandler struct {
	svc *service.ReportService
}

// NewReportHandler constructs a ReportHandler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// report adapts a read-only projection into a handler.
func report[T any](fetch func(context.Context) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := fetch(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// Routes mounts every report under the current router.
func (h *ReportHandler) Routes(r chi.Router) {
	r.Get("/dashboard", report(h.svc.Dashboard))
	r.Get("/overdue", report(h.svc.Overdue))
	r.Get("/popular-books", report(h.svc.PopularBooks))
	r.Get("/active-members", report(h.svc.ActiveMembers))
	r.Get("/monthly-transactions", report(h.svc.MonthlyTransactions))
	r.Get("/category-distribution", report(h.svc.CategoryDistribution))
}
