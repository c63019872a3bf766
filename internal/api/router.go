package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/ledger-core/internal/api/handlers"
	"github.com/baharkarakas/ledger-core/internal/config"
	"github.com/baharkarakas/ledger-core/internal/metrics"
	"github.com/baharkarakas/ledger-core/internal/middleware"
)

func NewRouter(cfg config.Config, h *handlers.LedgerHandler, log *slog.Logger) http.Handler {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID, middleware.Recover, middleware.AccessLog(log), middleware.HTTPMetrics)
	r.Use(middleware.RateLimit(cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Timeout(timeout))

		// ---------- accounts ----------
		r.Post("/accounts", h.OpenAccount)
		r.Get("/accounts/{userID}/balance", h.Balance)
		r.Get("/accounts/{userID}/transactions", h.Transactions)

		// ---------- operations ----------
		r.Post("/deposit", h.Deposit)
		r.Post("/withdraw", h.Withdraw)
		r.Post("/transfer", h.Transfer)
	})

	return r
}
