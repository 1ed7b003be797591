package reservation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nightfury12901/restaurant-temp/internal/domain"
	"github.com/nightfury12901/restaurant-temp/internal/events"
)

type Service struct {
	store    Store
	notifier Notifier
	events   EventPublisher
	logger   *zap.Logger
	now      func() time.Time
	loc      *time.Location

	// mu keeps the availability check and the insert that depends on it
	// atomic with respect to other mutations in this process.
	mu sync.Mutex
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the zone that defines "today" for the booking window and
// the daily stats.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func NewService(store Store, notifier Notifier, publisher EventPublisher, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	s := &Service{
		store:    store,
		notifier: notifier,
		events:   publisher,
		logger:   logger,
		now:      time.Now,
		loc:      time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Window() Window {
	return BookingWindow(s.now(), s.loc)
}

// Availability returns the slot table for date. Dates outside the booking
// window are still answered; only Book enforces the window.
func (s *Service) Availability(ctx context.Context, date string) (AvailabilityResponse, error) {
	if _, ok := parseDate(date, s.loc); !ok {
		return AvailabilityResponse{}, &ValidationError{Fields: map[string]string{"date": "Invalid date"}}
	}

	all, err := s.store.List(ctx)
	if err != nil {
		return AvailabilityResponse{}, err
	}
	return AvailabilityResponse{Date: date, Slots: ComputeAvailability(date, all)}, nil
}

func (s *Service) Book(ctx context.Context, req CreateReservationRequest) (domain.Reservation, error) {
	req = req.normalized()
	if verr := validateRequest(req); verr != nil {
		return domain.Reservation{}, verr
	}
	if !s.Window().Contains(req.Date) {
		return domain.Reservation{}, &ValidationError{Fields: map[string]string{"date": msgOutsideWindow}}
	}

	s.mu.Lock()
	all, err := s.store.List(ctx)
	if err != nil {
		s.mu.Unlock()
		return domain.Reservation{}, err
	}
	if !slotAvailable(ComputeAvailability(req.Date, all), req.Time) {
		s.mu.Unlock()
		return domain.Reservation{}, ErrSlotUnavailable
	}
	r, err := s.store.Create(ctx, req.toDomain())
	s.mu.Unlock()
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("create reservation: %w", err)
	}

	s.logger.Info("reservation created",
		zap.String("id", r.ID),
		zap.String("date", r.Date),
		zap.String("time", r.Time),
		zap.Int("party_size", r.PartySize),
	)
	s.publish(ctx, events.ReservationCreated, r)
	if s.notifier != nil {
		if err := s.notifier.ReservationReceived(ctx, r); err != nil {
			s.logger.Warn("reservation confirmation not delivered", zap.String("id", r.ID), zap.Error(err))
		}
	}
	return r, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Reservation, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return domain.Reservation{}, err
	}
	for _, r := range all {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Reservation{}, ErrNotFound
}

// List returns matching reservations, newest first.
func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.Reservation, error) {
	status := f.Status
	if status == "all" {
		status = ""
	}
	if status != "" && !domain.ReservationStatus(status).Valid() {
		return nil, ErrInvalidStatus
	}
	if f.Date != "" {
		if _, ok := parseDate(f.Date, s.loc); !ok {
			return nil, &ValidationError{Fields: map[string]string{"date": "Invalid date"}}
		}
	}

	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Reservation, 0, len(all))
	for _, r := range all {
		if status != "" && string(r.Status) != status {
			continue
		}
		if f.Date != "" && r.Date != f.Date {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return Stats{}, err
	}

	today := s.now().In(s.loc).Format(dateLayout)
	st := Stats{Total: len(all)}
	for _, r := range all {
		switch r.Status {
		case domain.ReservationPending:
			st.Pending++
		case domain.ReservationConfirmed:
			st.Confirmed++
		}
		if r.Date == today {
			st.Today++
		}
	}
	return st, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.ReservationStatus) (domain.Reservation, error) {
	if !status.Valid() {
		return domain.Reservation{}, ErrInvalidStatus
	}

	s.mu.Lock()
	current, err := s.Get(ctx, id)
	if err != nil {
		s.mu.Unlock()
		return domain.Reservation{}, err
	}
	if !canTransition(current.Status, status) {
		s.mu.Unlock()
		return domain.Reservation{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, status)
	}
	r, found, err := s.store.UpdateStatus(ctx, id, status)
	s.mu.Unlock()
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("update reservation status: %w", err)
	}
	if !found {
		return domain.Reservation{}, ErrNotFound
	}

	s.logger.Info("reservation status updated", zap.String("id", r.ID), zap.String("status", string(r.Status)))
	s.publish(ctx, events.ReservationStatusChanged, r)
	if s.notifier != nil {
		if err := s.notifier.ReservationStatusChanged(ctx, r); err != nil {
			s.logger.Warn("status notification not delivered", zap.String("id", r.ID), zap.Error(err))
		}
	}
	return r, nil
}

// canTransition reports whether a reservation may move from one status to
// another. Cancelled is terminal.
func canTransition(from, to domain.ReservationStatus) bool {
	return from == to || from != domain.ReservationCancelled
}

// Delete removes id and returns the remaining collection.
func (s *Service) Delete(ctx context.Context, id string) ([]domain.Reservation, error) {
	s.mu.Lock()
	target, err := s.Get(ctx, id)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	remaining, err := s.store.Delete(ctx, id)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("delete reservation: %w", err)
	}

	s.logger.Info("reservation deleted", zap.String("id", id))
	s.publish(ctx, events.ReservationDeleted, target)
	return remaining, nil
}

func (s *Service) publish(ctx context.Context, t events.Type, r domain.Reservation) {
	if err := s.events.Publish(ctx, events.New(t, r, s.now())); err != nil {
		s.logger.Warn("event not published", zap.String("type", string(t)), zap.String("id", r.ID), zap.Error(err))
	}
}
