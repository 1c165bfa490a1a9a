package reservations

import (
	"strings"

	apperr "github.com/ariefcatur/go-restaurant-reservations/internal/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservations_operations_total",
			Help: "Reservation service operations by outcome",
		},
		[]string{"operation", "result"},
	)

	publishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reservations_event_publish_failures_total",
			Help: "Lifecycle events that could not be handed to the publisher",
		},
	)
)

func observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = strings.ToLower(string(apperr.CodeOf(err)))
	}
	operationsTotal.WithLabelValues(op, result).Inc()
}
