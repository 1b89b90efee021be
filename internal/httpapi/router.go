package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"unlockpro/internal/content"
	"unlockpro/internal/leads"
	"unlockpro/internal/unlock"
	"unlockpro/internal/validation"
)

type UnlockService interface {
	Start(ctx context.Context, req unlock.Request) (unlock.Snapshot, validation.FieldErrors, error)
	Get(id string) (unlock.Snapshot, error)
	Check(id string) (unlock.Snapshot, error)
	Cancel(id string) (unlock.Snapshot, error)
	Restart(id string) (unlock.Snapshot, error)
}

type FormService interface {
	SubmitIMEICheck(ctx context.Context, client, imei, email string) (leads.Result, error)
	SubmitContact(ctx context.Context, fields map[string]string) (leads.Result, error)
	SubmitReview(ctx context.Context, sub content.ReviewSubmission, rating string) (leads.Result, error)
	RecordUnlock(ctx context.Context, snap unlock.Snapshot)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Dependencies struct {
	Unlock UnlockService
	Forms  FormService
	// Health is checked by /healthz; nil always reports ok.
	Health Pinger
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	applyMiddlewares(r, deps.Logger)

	unlockHandler := NewUnlockHandler(deps.Unlock, deps.Forms, deps.Logger)
	formsHandler := NewFormsHandler(deps.Forms, deps.Logger)

	r.Get("/healthz", healthHandler(deps.Health))
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	} else {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/prices", handlePrices)
		r.Get("/price", handlePrice)

		r.Post("/unlock", unlockHandler.Start)
		r.Get("/unlock/{id}", unlockHandler.Get)
		r.Post("/unlock/{id}/check", unlockHandler.Check)
		r.Post("/unlock/{id}/restart", unlockHandler.Restart)
		r.Delete("/unlock/{id}", unlockHandler.Cancel)

		r.Post("/contact", formsHandler.Contact)
		r.Post("/imei-check", formsHandler.IMEICheck)

		r.Get("/faq", handleFAQ)
		r.Get("/reviews", handleReviews)
		r.Get("/reviews/{id}", handleReview)
		r.Post("/reviews", formsHandler.Review)
	})

	return r
}

func healthHandler(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			if err := p.Ping(r.Context()); err != nil {
				Write(w, http.StatusServiceUnavailable, APIError{
					Code:    "UNHEALTHY",
					Message: err.Error(),
				})
				return
			}
		}
		Write(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
