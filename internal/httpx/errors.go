package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	apperr "github.com/ariefcatur/go-restaurant-reservations/internal/errors"
	"github.com/go-chi/chi/v5/middleware"
)

type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// StatusFor maps an error code to its HTTP status.
func StatusFor(code apperr.ErrorCode) int {
	switch code {
	case apperr.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case apperr.ErrCodeNotFound:
		return http.StatusNotFound
	case apperr.ErrCodeDuplicateBooking, apperr.ErrCodeAlreadyExists, apperr.ErrCodeRequestInProgress:
		return http.StatusConflict
	case apperr.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err. Internal failures are reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperr.CodeOf(err)
	msg := "internal error"
	var se *apperr.StructuredError
	if code != apperr.ErrCodeInternal && errors.As(err, &se) {
		msg = se.Message
	}
	writeErrorCode(w, r, StatusFor(code), string(code), msg)
}

func writeErrorCode(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Code:      code,
		Message:   msg,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	writeErrorCode(w, r, http.StatusBadRequest, string(apperr.ErrCodeInvalidInput), msg)
}
