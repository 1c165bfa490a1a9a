package reservations

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	apperr "github.com/ariefcatur/go-restaurant-reservations/internal/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service applies the booking rules around a Store.
type Service struct {
	store     Store
	ids       IDGenerator
	now       func() time.Time
	clientIDs bool
	log       *zap.Logger
	events    Publisher
	producer  string
}

type Option func(*Service)

func WithIDGenerator(g IDGenerator) Option { return func(s *Service) { s.ids = g } }

// WithClock replaces time.Now; "today" is the calendar date of the clock.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithClientIDs lets Create keep a caller-supplied Details.ID.
func WithClientIDs(enabled bool) Option { return func(s *Service) { s.clientIDs = enabled } }

func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.log = l } }

// WithPublisher emits lifecycle events to p, stamped with producer.
func WithPublisher(p Publisher, producer string) Option {
	return func(s *Service) {
		s.events = p
		s.producer = producer
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		ids:    NewSequenceIDs(DefaultIDPrefix),
		now:    time.Now,
		log:    zap.NewNop(),
		events: NopPublisher{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) today() Date { return DateOf(s.now()) }

// Create validates d, assigns an ID, rejects a clash with a confirmed
// booking for the same email, date and time, and stores the reservation
// as PENDING.
func (s *Service) Create(ctx context.Context, d Details) (res Reservation, err error) {
	defer func() { observe("create", err) }()

	if err := Validate(d, s.today()); err != nil {
		return Reservation{}, err
	}

	id := strings.TrimSpace(d.ID)
	if !s.clientIDs || id == "" {
		id = s.ids.NewID()
	}

	if err := s.checkDuplicate(ctx, d); err != nil {
		return Reservation{}, err
	}

	now := s.now()
	r := Reservation{ID: id, Status: StatusPending, CreatedAt: now, UpdatedAt: now}
	r.apply(d)

	if err := s.store.Create(ctx, r); err != nil {
		return Reservation{}, err
	}
	s.log.Info("reservation created",
		zap.String("reservation_id", r.ID),
		zap.Stringer("date", r.Date),
		zap.Stringer("time", r.Time),
		zap.Int("party_size", r.PartySize),
	)
	s.publish(ctx, EventReservationCreated, r.ID, ReservationPayload{Reservation: r})
	return r, nil
}

func (s *Service) checkDuplicate(ctx context.Context, d Details) error {
	email := strings.TrimSpace(d.CustomerEmail)
	if email == "" {
		return nil
	}
	confirmed, err := s.store.Find(ctx, Query{Status: StatusConfirmed, On: d.Date, Email: email})
	if err != nil {
		return err
	}
	for _, r := range confirmed {
		if r.Time == *d.Time {
			return apperr.NewWithContext(apperr.ErrCodeDuplicateBooking,
				"Customer already has a confirmed reservation at this time",
				map[string]any{"reservation_id": r.ID})
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (Reservation, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	return s.store.Exists(ctx, id)
}

// List returns every reservation in schedule order.
func (s *Service) List(ctx context.Context) ([]Reservation, error) {
	return s.store.List(ctx)
}

// Update replaces every mutable field of an existing reservation. Status,
// ID and CreatedAt are kept.
func (s *Service) Update(ctx context.Context, id string, d Details) (res Reservation, err error) {
	defer func() { observe("update", err) }()

	r, err := s.store.Get(ctx, id)
	if err != nil {
		return Reservation{}, err
	}
	if err := Validate(d, s.today()); err != nil {
		return Reservation{}, err
	}

	r.apply(d)
	r.touch(s.now())
	if err := s.store.Update(ctx, r); err != nil {
		return Reservation{}, err
	}
	s.log.Info("reservation updated", zap.String("reservation_id", r.ID))
	s.publish(ctx, EventReservationUpdated, r.ID, ReservationPayload{Reservation: r})
	return r, nil
}

func (s *Service) Delete(ctx context.Context, id string) (err error) {
	defer func() { observe("delete", err) }()

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("reservation deleted", zap.String("reservation_id", id))
	s.publish(ctx, EventReservationDeleted, id, DeletedPayload{ReservationID: id})
	return nil
}

func (s *Service) Confirm(ctx context.Context, id string) (Reservation, error) {
	return s.setStatus(ctx, id, StatusConfirmed)
}

func (s *Service) Cancel(ctx context.Context, id string) (Reservation, error) {
	return s.setStatus(ctx, id, StatusCancelled)
}

func (s *Service) Complete(ctx context.Context, id string) (Reservation, error) {
	return s.setStatus(ctx, id, StatusCompleted)
}

func (s *Service) MarkNoShow(ctx context.Context, id string) (Reservation, error) {
	return s.setStatus(ctx, id, StatusNoShow)
}

// setStatus moves a reservation to st from whatever status it holds.
func (s *Service) setStatus(ctx context.Context, id string, st Status) (res Reservation, err error) {
	defer func() { observe(strings.ToLower(string(st)), err) }()

	r, err := s.store.Get(ctx, id)
	if err != nil {
		return Reservation{}, err
	}
	prev := r.Status
	r.Status = st
	r.touch(s.now())
	if err := s.store.Update(ctx, r); err != nil {
		return Reservation{}, err
	}
	s.log.Info("reservation status changed",
		zap.String("reservation_id", r.ID),
		zap.Stringer("from", prev),
		zap.Stringer("to", st),
	)
	s.publish(ctx, statusEvents[st], r.ID, ReservationPayload{Reservation: r})
	return r, nil
}

// ByDate lists reservations on date, earliest first.
func (s *Service) ByDate(ctx context.Context, date Date) ([]Reservation, error) {
	return s.store.Find(ctx, Query{On: &date, Sort: SortSchedule})
}

func (s *Service) ByStatus(ctx context.Context, st Status) ([]Reservation, error) {
	if !st.IsValid() {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "unknown reservation status: "+string(st))
	}
	return s.store.Find(ctx, Query{Status: st, Sort: SortSchedule})
}

// ByEmail matches the email case-insensitively, most recent date first.
func (s *Service) ByEmail(ctx context.Context, email string) ([]Reservation, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return []Reservation{}, nil
	}
	return s.store.Find(ctx, Query{Email: email, Sort: SortRecentFirst})
}

// SearchByName is a case-insensitive substring search, latest first.
func (s *Service) SearchByName(ctx context.Context, name string) ([]Reservation, error) {
	return s.store.Find(ctx, Query{NameContains: strings.TrimSpace(name), Sort: SortLatestFirst})
}

// Between lists reservations with from <= date <= to.
func (s *Service) Between(ctx context.Context, from, to Date) ([]Reservation, error) {
	if from.After(to) {
		return []Reservation{}, nil
	}
	return s.store.Find(ctx, Query{From: &from, To: &to, Sort: SortSchedule})
}

// Upcoming lists reservations dated today or later.
func (s *Service) Upcoming(ctx context.Context) ([]Reservation, error) {
	today := s.today()
	return s.store.Find(ctx, Query{From: &today, Sort: SortSchedule})
}

func (s *Service) Today(ctx context.Context) ([]Reservation, error) {
	return s.ByDate(ctx, s.today())
}

// ByMinPartySize lists reservations for at least minSize guests.
func (s *Service) ByMinPartySize(ctx context.Context, minSize int) ([]Reservation, error) {
	if minSize < 1 {
		minSize = 1
	}
	return s.store.Find(ctx, Query{MinPartySize: minSize, Sort: SortSchedule})
}

func (s *Service) Statistics(ctx context.Context) (Stats, error) {
	counts, err := s.store.CountByStatus(ctx)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{ByStatus: make(map[Status]int, len(statusLabels))}
	for _, status := range Statuses() {
		st.ByStatus[status] = counts[status]
		st.Total += counts[status]
	}
	return st, nil
}

func (s *Service) publish(ctx context.Context, eventType, reservationID string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		publishFailures.Inc()
		s.log.Error("encode event payload", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  EventVersion,
		OccurredAt:    s.now().UTC(),
		Producer:      s.producer,
		TraceID:       TraceIDFrom(ctx),
		CorrelationID: reservationID,
		Payload:       body,
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		publishFailures.Inc()
		s.log.Warn("publish event",
			zap.String("event_type", eventType),
			zap.String("reservation_id", reservationID),
			zap.Error(err),
		)
	}
}
