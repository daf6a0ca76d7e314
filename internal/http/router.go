package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrJamesThe3rd/tally/internal/http/balance"
	"github.com/MrJamesThe3rd/tally/internal/http/document"
	"github.com/MrJamesThe3rd/tally/internal/http/importcsv"
	"github.com/MrJamesThe3rd/tally/internal/http/matching"
	"github.com/MrJamesThe3rd/tally/internal/http/reference"
	"github.com/MrJamesThe3rd/tally/internal/http/statement"
)

type Handlers struct {
	Documents  *document.Handler
	Accounts   *balance.Handler
	Reference  *reference.Handler
	Import     *importcsv.Handler
	Matching   *matching.Handler
	Statements *statement.Handler
}

func New(h Handlers, allowedOrigins []string) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
	}))

	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/documents", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Documents.Routes(r)
		})

		r.Route("/accounts", h.Accounts.Routes)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Reference.Routes(r)
		})

		r.Route("/import", h.Import.Routes)

		r.Route("/matching", func(r chi.Router) {
			h.Matching.Routes(r)
		})

		r.Route("/statements", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Statements.Routes(r)
		})
	})

	return router
}
