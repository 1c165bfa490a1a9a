package notify

import (
	"context"
	"encoding/json"
	"fmt"

	kafkax "github.com/ariefcatur/go-restaurant-reservations/internal/kafka"
	"github.com/ariefcatur/go-restaurant-reservations/internal/reservations"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Notification is one message addressed to a customer.
type Notification struct {
	ReservationID string `json:"reservation_id"`
	Email         string `json:"email"`
	Subject       string `json:"subject"`
	Body          string `json:"body"`
}

// Deduper claims event ids so each is notified once. Forget drops a claim
// whose notification did not go out, letting the redelivery retry it.
type Deduper interface {
	FirstSeen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// LogSender writes notifications to the log instead of delivering them.
type LogSender struct{ Log *zap.Logger }

func (s LogSender) Send(_ context.Context, n Notification) error {
	s.Log.Info("notification",
		zap.String("reservation_id", n.ReservationID),
		zap.String("email", n.Email),
		zap.String("subject", n.Subject),
		zap.String("body", n.Body),
	)
	return nil
}

type Service struct {
	Dedup  Deduper
	Sender Sender
	Log    *zap.Logger
}

// HandleEvent is installed as the consumer handler. Events of other types
// and redeliveries are acknowledged without a notification.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env reservations.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// poison message: log and commit so the partition keeps moving
		s.Log.Warn("undecodable event", zap.ByteString("key", m.Key), zap.Error(err))
		return nil
	}

	compose, ok := templates[env.EventType]
	if !ok {
		return nil
	}

	first, err := s.Dedup.FirstSeen(ctx, env.EventID)
	if err != nil {
		return fmt.Errorf("dedup %s: %w", env.EventID, err)
	}
	if !first {
		s.Log.Debug("duplicate event", zap.String("event_id", env.EventID))
		return nil
	}

	p, err := kafkax.UnwrapPayload[reservations.ReservationPayload](env.Payload)
	if err != nil {
		s.Log.Warn("undecodable payload", zap.String("event_id", env.EventID), zap.Error(err))
		return nil
	}
	r := p.Reservation
	if r.CustomerEmail == "" {
		return nil
	}

	subject, body := compose(r)
	err = s.Sender.Send(ctx, Notification{
		ReservationID: r.ID,
		Email:         r.CustomerEmail,
		Subject:       subject,
		Body:          body,
	})
	if err != nil {
		if ferr := s.Dedup.Forget(ctx, env.EventID); ferr != nil {
			s.Log.Error("release dedup claim", zap.String("event_id", env.EventID), zap.Error(ferr))
		}
		return fmt.Errorf("send %s: %w", env.EventID, err)
	}
	return nil
}

var templates = map[string]func(reservations.Reservation) (string, string){
	reservations.EventReservationCreated: func(r reservations.Reservation) (string, string) {
		return "We received your reservation",
			fmt.Sprintf("Hi %s, your table for %d on %s at %s is pending confirmation. Reference: %s.",
				r.CustomerName, r.PartySize, r.Date, r.Time, r.ID)
	},
	reservations.EventReservationConfirmed: func(r reservations.Reservation) (string, string) {
		return "Your reservation is confirmed",
			fmt.Sprintf("Hi %s, see you on %s at %s. Party of %d. Reference: %s.",
				r.CustomerName, r.Date, r.Time, r.PartySize, r.ID)
	},
	reservations.EventReservationCancelled: func(r reservations.Reservation) (string, string) {
		return "Your reservation was cancelled",
			fmt.Sprintf("Hi %s, your reservation for %s at %s has been cancelled. Reference: %s.",
				r.CustomerName, r.Date, r.Time, r.ID)
	},
}
