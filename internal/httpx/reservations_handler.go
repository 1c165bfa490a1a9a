package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperr "github.com/ariefcatur/go-restaurant-reservations/internal/errors"
	"github.com/ariefcatur/go-restaurant-reservations/internal/reservations"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// IdempotencyHeader makes POST /reservations safe to retry.
const IdempotencyHeader = "Idempotency-Key"

// Cache is the optional read-through cache and idempotency record kept in
// Redis. Failures are logged and otherwise ignored.
type Cache interface {
	Get(ctx context.Context, id string) (reservations.Reservation, bool, error)
	Set(ctx context.Context, r reservations.Reservation) error
	Evict(ctx context.Context, id string) error
	// ClaimCreate must be atomic: of concurrent callers with one key, only
	// one gets claimed == true.
	ClaimCreate(ctx context.Context, key string) (claimed bool, id string, err error)
	RememberCreate(ctx context.Context, key, id string) error
	ReleaseCreate(ctx context.Context, key string) error
}

type ReservationsHandler struct {
	Service *reservations.Service
	Cache   Cache // may be nil
	Log     *zap.Logger
}

func (h *ReservationsHandler) Register(r chi.Router) {
	if h.Log == nil {
		h.Log = zap.NewNop()
	}
	r.Route("/reservations", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/date/{date}", h.byDate)
		r.Get("/status/{status}", h.byStatus)
		r.Get("/customer/email/{email}", h.byEmail)
		r.Get("/customer/search", h.searchByName)
		r.Get("/between", h.between)
		r.Get("/upcoming", h.upcoming)
		r.Get("/today", h.today)
		r.Get("/party-size/{min}", h.byMinPartySize)
		r.Get("/stats", h.stats)

		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
		r.Patch("/{id}/confirm", h.transition((*reservations.Service).Confirm))
		r.Patch("/{id}/cancel", h.transition((*reservations.Service).Cancel))
		r.Patch("/{id}/complete", h.transition((*reservations.Service).Complete))
		r.Patch("/{id}/no-show", h.transition((*reservations.Service).MarkNoShow))
	})
}

func withTimeout(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), d)
}

func (h *ReservationsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req reservations.Details
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "invalid json: "+err.Error())
		return
	}

	ctx, cancel := withTimeout(r, 5*time.Second)
	defer cancel()

	idemKey := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
	if idemKey == "" || h.Cache == nil {
		res, err := h.Service.Create(ctx, req)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
		return
	}

	claimed, id, err := h.Cache.ClaimCreate(ctx, idemKey)
	if err != nil {
		// Redis unavailable: serve the create without replay protection.
		h.Log.Warn("idempotency claim", zap.String("key", idemKey), zap.Error(err))
		claimed = true
	}
	if !claimed {
		h.replay(ctx, w, r, idemKey, id)
		return
	}

	res, err := h.Service.Create(ctx, req)
	if err != nil {
		if rerr := h.Cache.ReleaseCreate(ctx, idemKey); rerr != nil {
			h.Log.Warn("idempotency release", zap.String("key", idemKey), zap.Error(rerr))
		}
		h.fail(w, r, err)
		return
	}
	if err := h.Cache.RememberCreate(ctx, idemKey, res.ID); err != nil {
		h.Log.Warn("idempotency record", zap.String("key", idemKey), zap.Error(err))
	}
	writeJSON(w, http.StatusCreated, res)
}

// replay answers a create whose idempotency key is already held.
func (h *ReservationsHandler) replay(ctx context.Context, w http.ResponseWriter, r *http.Request, key, id string) {
	if id == "" {
		w.Header().Set("Retry-After", "1")
		writeError(w, r, apperr.New(apperr.ErrCodeRequestInProgress,
			"a request with this Idempotency-Key is still in progress"))
		return
	}
	res, err := h.Service.Get(ctx, id)
	if err != nil {
		h.Log.Warn("idempotency replay", zap.String("key", key), zap.String("reservation_id", id), zap.Error(err))
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReservationsHandler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, cancel := withTimeout(r, 3*time.Second)
	defer cancel()

	if h.Cache != nil {
		if res, ok, err := h.Cache.Get(ctx, id); err == nil && ok {
			writeJSON(w, http.StatusOK, res)
			return
		} else if err != nil {
			h.Log.Warn("cache get", zap.String("reservation_id", id), zap.Error(err))
		}
	}

	res, err := h.Service.Get(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if h.Cache != nil {
		if err := h.Cache.Set(ctx, res); err != nil {
			h.Log.Warn("cache set", zap.String("reservation_id", id), zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReservationsHandler) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req reservations.Details
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "invalid json: "+err.Error())
		return
	}
	ctx, cancel := withTimeout(r, 5*time.Second)
	defer cancel()

	res, err := h.Service.Update(ctx, id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.evict(ctx, id)
	writeJSON(w, http.StatusOK, res)
}

func (h *ReservationsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, cancel := withTimeout(r, 5*time.Second)
	defer cancel()

	if err := h.Service.Delete(ctx, id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.evict(ctx, id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReservationsHandler) transition(op func(*reservations.Service, context.Context, string) (reservations.Reservation, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		ctx, cancel := withTimeout(r, 5*time.Second)
		defer cancel()

		res, err := op(h.Service, ctx, id)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.evict(ctx, id)
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *ReservationsHandler) list(w http.ResponseWriter, r *http.Request) {
	h.query(w, r, func(ctx context.Context) ([]reservations.Reservation, error) {
		return h.Service.List(ctx)
	})
}

func (h *ReservationsHandler) byDate(w http.ResponseWriter, r *http.Request) {
	d, err := reservations.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	h.query(w, r, func(ctx context.Context) ([]reservations.Reservation, error) {
		return h.Service.ByDate(ctx, d)
	})
}

func (h *ReservationsHandler) byStatus(w http.ResponseWriter, r *http.Request) {
	st, err := reservations.ParseStatus(chi.URLParam(r, "status"))
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	h.query(w, r, func(ctx context.Context) ([]reservations.Reservation, error) {
		return h.Service.ByStatus(ctx, st)
	})
}

func (h *ReservationsHandler) byEmail(w http.ResponseWriter, r *http.Request) {
	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil {
		badRequest(w, r, "invalid email path segment")
		return
	}
	h.query(w, r, func(ctx context.Context) ([]reservations.Reservation, error) {
		return h.Service.ByEmail(ctx, email)
	})
}

func (h *ReservationsHandler) searchByName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	h.query(w, r, func(ctx context.Context) ([]reservations.Reservation, error) {
		return h.Service.SearchByName(ctx, name)
	})
}

func (h *ReservationsHandler) between(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := reservations.ParseDate(q.Get("startDate"))
	if err != nil {
		badRequest(w, r, "startDate: "+err.Error())
		return
	}
	to, err := reservations.ParseDate(q.Get("endDate"))
	if err != nil {
		badRequest(w, r, "endDate: "+err.Error())
		return
	}
	h.query(w, r, func(ctx context.Context) ([]reservations.Reservation, error) {
		return h.Service.Between(ctx, from, to)
	})
}

func (h *ReservationsHandler) upcoming(w http.ResponseWriter, r *http.Request) {
	h.query(w, r, h.Service.Upcoming)
}

func (h *ReservationsHandler) today(w http.ResponseWriter, r *http.Request) {
	h.query(w, r, h.Service.Today)
}

func (h *ReservationsHandler) byMinPartySize(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "min"))
	if err != nil {
		badRequest(w, r, "party size must be an integer")
		return
	}
	h.query(w, r, func(ctx context.Context) ([]reservations.Reservation, error) {
		return h.Service.ByMinPartySize(ctx, n)
	})
}

func (h *ReservationsHandler) stats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, 3*time.Second)
	defer cancel()

	st, err := h.Service.Statistics(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *ReservationsHandler) query(w http.ResponseWriter, r *http.Request, fn func(context.Context) ([]reservations.Reservation, error)) {
	ctx, cancel := withTimeout(r, 3*time.Second)
	defer cancel()

	out, err := fn(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if out == nil {
		out = []reservations.Reservation{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ReservationsHandler) evict(ctx context.Context, id string) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Evict(ctx, id); err != nil {
		h.Log.Warn("cache evict", zap.String("reservation_id", id), zap.Error(err))
	}
}

func (h *ReservationsHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if apperr.CodeOf(err) == apperr.ErrCodeInternal {
		h.Log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeError(w, r, err)
}
