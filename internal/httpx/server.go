package httpx

import (
	"net/http"
	"time"

	"github.com/ariefcatur/go-restaurant-reservations/internal/reservations"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// NewRouter builds the base router. A nil limiter disables rate limiting.
func NewRouter(limiter *rate.Limiter) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(metricsMiddleware, traceMiddleware)
	if limiter != nil {
		r.Use(rateLimitMiddleware(limiter))
	}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// traceMiddleware copies the request id into the context the reservation
// service reads when it stamps events.
func traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := reservations.WithTraceID(r.Context(), middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func rateLimitMiddleware(l *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				rateLimitRejects.Inc()
				w.Header().Set("Retry-After", "1")
				writeErrorCode(w, r, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
