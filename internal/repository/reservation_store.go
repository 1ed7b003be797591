package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nightfury12901/restaurant-temp/internal/domain"
	"github.com/nightfury12901/restaurant-temp/internal/pkg/refcode"
)

const DefaultReservationsKey = "restaurant_reservations"

var ErrInvalidStatus = errors.New("invalid reservation status")

// ReservationStore keeps every reservation as one JSON array under a single
// KV entry. Each mutation reads the array, changes it and writes it back in
// full; mu serializes that cycle within the process only.
type ReservationStore struct {
	kv     KV
	key    string
	ids    *refcode.Generator
	now    func() time.Time
	logger *zap.Logger

	mu sync.Mutex
}

type StoreOption func(*ReservationStore)

func WithKey(key string) StoreOption {
	return func(s *ReservationStore) {
		if key != "" {
			s.key = key
		}
	}
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *ReservationStore) { s.now = now }
}

func WithIDGenerator(g *refcode.Generator) StoreOption {
	return func(s *ReservationStore) { s.ids = g }
}

func NewReservationStore(kv KV, logger *zap.Logger, opts ...StoreOption) *ReservationStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ReservationStore{
		kv:     kv,
		key:    DefaultReservationsKey,
		ids:    refcode.New(),
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns all reservations in insertion order. A missing or unreadable
// entry yields an empty slice and no error.
func (s *ReservationStore) List(ctx context.Context) ([]domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *ReservationStore) ByDate(ctx context.Context, date string) ([]domain.Reservation, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Reservation, 0, len(all))
	for _, r := range all {
		if r.Date == date {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *ReservationStore) Create(ctx context.Context, in domain.NewReservation) (domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return domain.Reservation{}, err
	}

	now := s.stamp()
	id, err := s.ids.NextUnique(now, func(candidate string) bool {
		return indexOf(all, candidate) >= 0
	})
	if err != nil {
		return domain.Reservation{}, err
	}

	rec := domain.Reservation{
		ID:              id,
		Date:            in.Date,
		Time:            in.Time,
		PartySize:       in.PartySize,
		Name:            in.Name,
		Email:           in.Email,
		Phone:           in.Phone,
		SpecialRequests: in.SpecialRequests,
		Status:          domain.ReservationPending,
		CreatedAt:       now,
	}
	all = append(all, rec)

	if err := s.save(ctx, all); err != nil {
		return domain.Reservation{}, err
	}
	return rec, nil
}

// UpdateStatus reports false when no reservation has the given id; the
// stored collection is left untouched in that case.
func (s *ReservationStore) UpdateStatus(ctx context.Context, id string, status domain.ReservationStatus) (domain.Reservation, bool, error) {
	if !status.Valid() {
		return domain.Reservation{}, false, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return domain.Reservation{}, false, err
	}

	i := indexOf(all, id)
	if i < 0 {
		return domain.Reservation{}, false, nil
	}

	now := s.stamp()
	all[i].Status = status
	all[i].UpdatedAt = &now

	if err := s.save(ctx, all); err != nil {
		return domain.Reservation{}, false, err
	}
	return all[i], true, nil
}

// Delete removes the reservation with id, if any, and returns what remains.
func (s *ReservationStore) Delete(ctx context.Context, id string) ([]domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	kept := make([]domain.Reservation, 0, len(all))
	for _, r := range all {
		if r.ID != id {
			kept = append(kept, r)
		}
	}

	if err := s.save(ctx, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

func (s *ReservationStore) load(ctx context.Context) ([]domain.Reservation, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read reservations: %w", err)
	}
	if !ok || len(raw) == 0 {
		return []domain.Reservation{}, nil
	}

	var all []domain.Reservation
	if err := json.Unmarshal(raw, &all); err != nil {
		s.logger.Warn("stored reservations are unreadable, treating as empty",
			zap.String("key", s.key),
			zap.Error(err),
		)
		return []domain.Reservation{}, nil
	}
	if all == nil {
		all = []domain.Reservation{}
	}
	return all, nil
}

func (s *ReservationStore) save(ctx context.Context, all []domain.Reservation) error {
	raw, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode reservations: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("write reservations: %w", err)
	}
	return nil
}

// stamp matches the millisecond precision of ISO-8601 timestamps in the
// persisted layout.
func (s *ReservationStore) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func indexOf(all []domain.Reservation, id string) int {
	for i := range all {
		if all[i].ID == id {
			return i
		}
	}
	return -1
}
