package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ledgerline/ledgerline/internal/catalog"
	"github.com/ledgerline/ledgerline/internal/expense"
	"github.com/ledgerline/ledgerline/internal/income"
	"github.com/ledgerline/ledgerline/internal/observability"
	"github.com/ledgerline/ledgerline/internal/report"
)

// CacheInvalidator drops cached report datasets after invoice mutations.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	CatalogHandler *catalog.Handler
	IncomeHandler  *income.Handler
	ExpenseHandler *expense.Handler
	ReportHandler  *report.Handler
	Invalidator    CacheInvalidator
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		if params.Invalidator != nil {
			r.Use(invalidateOnWrite(params.Logger, params.Invalidator))
		}
		if params.IncomeHandler != nil {
			params.IncomeHandler.MountRoutes(r)
		}
		if params.CatalogHandler != nil {
			params.CatalogHandler.MountRoutes(r)
		}
		if params.ExpenseHandler != nil {
			params.ExpenseHandler.MountRoutes(r)
		}
	})

	if params.ReportHandler != nil {
		params.ReportHandler.MountRoutes(r)
	}

	return r
}

// invalidateOnWrite bumps the report cache after any successful mutation, so
// a report generated right after an invoice change reflects it.
func invalidateOnWrite(logger *slog.Logger, invalidator CacheInvalidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			rec := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(rec, r)
			if rec.Status() >= 200 && rec.Status() < 300 {
				if err := invalidator.Invalidate(r.Context()); err != nil {
					logger.Warn("report cache invalidation failed", slog.Any("error", err))
				}
			}
		})
	}
}
