package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
	"github.com/Shivanand-hulikatti/library-circulation/internal/service"
)

// Services bundles the service layer the router exposes.
type Services struct {
	Catalog *service.CatalogService
	Members *service.MemberService
	Ledger  *service.LedgerService
	Reports *service.ReportService
	Queries *service.QueryService
}

// RouterConfig holds the non-service dependencies of the router.
type RouterConfig struct {
	Tokens TokenParser
	Logger *slog.Logger
	// Throttle caps in-flight requests; zero disables it.
	Throttle int
}

// NewRouter builds the full HTTP API.
func NewRouter(svc Services, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = discardLogger
	}

	books := NewBookHandler(svc.Catalog)
	members := NewMemberHandler(svc.Members)
	circulation := NewCirculationHandler(svc.Ledger)
	reports := NewReportHandler(svc.Reports)
	queries := NewQueryHandler(svc.Queries)

	authenticated := Authenticate(cfg.Tokens)
	adminOnly := RequireRole(model.RoleAdmin)

	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(logger))          // structured access log
	r.Use(CORS)
	if cfg.Throttle > 0 {
		r.Use(chimiddleware.Throttle(cfg.Throttle))
	}

	// Health
	r.Get("/health", HealthCheck)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", members.Register)
		r.Post("/login", members.Login)
		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/profile", members.Profile)
			r.Put("/profile", members.UpdateProfile)
		})
	})

	r.Route("/books", func(r chi.Router) {
		r.Get("/", books.ListBooks)
		r.Get("/categories", books.Categories)
		r.Get("/meta/categories", books.Categories)
		r.Get("/{id}", books.GetBook)
		r.Group(func(r chi.Router) {
			r.Use(authenticated, adminOnly)
			r.Post("/", books.CreateBook)
			r.Put("/{id}", books.UpdateBook)
			r.Delete("/{id}", books.DeleteBook)
		})
	})

	r.Route("/members", func(r chi.Router) {
		r.Use(authenticated, adminOnly)
		r.Get("/", members.ListMembers)
		r.Get("/{id}", members.GetMember)
		r.Put("/{id}", members.UpdateMember)
		r.Delete("/{id}", members.DeleteMember)
		r.Get("/{id}/transactions", members.MemberHistory)
	})

	r.Route("/transactions", func(r chi.Router) {
		r.Use(authenticated)
		r.Get("/my-books", circulation.MyBooks)
		r.Get("/history", circulation.History)
		r.Post("/reserve", circulation.Reserve)
		r.Get("/reservations", circulation.Reservations)
		r.Post("/reservations/{id}/cancel", circulation.CancelReservation)
		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/", circulation.ListLoans)
			r.Post("/issue", circulation.Issue)
			r.Post("/return", circulation.Return)
		})
	})

	// The help desk is also reachable under /reports/queries.
	r.Route("/reports", func(r chi.Router) {
		r.Use(authenticated)
		r.Post("/queries", queries.Submit)
		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			reports.Routes(r)
			r.Get("/queries", queries.List)
			r.Put("/queries/{id}", queries.Respond)
		})
	})

	r.Route("/queries", func(r chi.Router) {
		r.Use(authenticated)
		r.Post("/", queries.Submit)
		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/", queries.List)
			r.Put("/{id}", queries.Respond)
		})
	})

	return r
}
