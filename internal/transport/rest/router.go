package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Limiter is the slice of the redis cache the router needs.
type Limiter interface {
	AllowRequest(ctx context.Context, ip string, limit int, window time.Duration) (bool, error)
}

type RouterDeps struct {
	Handler *Handler

	// Limiter may be nil; rate limiting is then skipped.
	Limiter   Limiter
	RLEnabled bool
	RLLimit   int
	RLWindow  time.Duration
}

func NewRouter(d RouterDeps) http.Handler {
	if d.Handler == nil {
		panic("rest.NewRouter: nil handler")
	}

	r := chi.NewRouter()

	// Request ID + structured access log
	r.Use(RequestID)
	r.Use(HTTPLogger)

	// Panic recovery
	r.Use(middleware.Recoverer)

	// Cross-cutting
	if d.RLEnabled && d.Limiter != nil {
		r.Use(RateLimitMiddleware(d.Limiter, d.RLLimit, d.RLWindow))
	}
	r.Use(SecurityHeaders)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/users/{userID}", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Post("/", d.Handler.CreateEvent)
			r.Patch("/{eventID}", d.Handler.UpdateOwnerEvent)
			r.Get("/{eventID}/requests", d.Handler.ListEventRequests)
			r.Patch("/{eventID}/requests", d.Handler.DecideRequests)
		})

		r.Route("/requests", func(r chi.Router) {
			r.Get("/", d.Handler.ListMyRequests)
			r.Post("/", d.Handler.CreateRequest)
			r.Patch("/{requestID}/cancel", d.Handler.CancelRequest)
		})
	})

	r.Route("/admin/events/{eventID}", func(r chi.Router) {
		r.Patch("/", d.Handler.ModerateEvent)
		r.Get("/history", d.Handler.ModerationHistory)
	})

	return r
}
