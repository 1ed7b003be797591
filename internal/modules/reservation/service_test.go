package reservation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nightfury12901/restaurant-temp/internal/domain"
	"github.com/nightfury12901/restaurant-temp/internal/events"
	"github.com/nightfury12901/restaurant-temp/internal/repository"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) ReservationReceived(ctx context.Context, r domain.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockNotifier) ReservationStatusChanged(ctx context.Context, r domain.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, ev events.Event) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func ofType(t events.Type) interface{} {
	return mock.MatchedBy(func(ev events.Event) bool { return ev.Type == t })
}

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	svc      *Service
	notifier *MockNotifier
	events   *MockPublisher
	clock    *testClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &testClock{t: time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)}
	store := repository.NewReservationStore(repository.NewMemoryKV(), nil, repository.WithClock(clock.Now))

	n := new(MockNotifier)
	n.On("ReservationReceived", mock.Anything, mock.Anything).Return(nil).Maybe()
	n.On("ReservationStatusChanged", mock.Anything, mock.Anything).Return(nil).Maybe()
	p := new(MockPublisher)
	p.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()

	return &fixture{
		svc:      NewService(store, n, p, nil, WithClock(clock.Now)),
		notifier: n,
		events:   p,
		clock:    clock,
	}
}

func validRequest(date, slot, name string) CreateReservationRequest {
	return CreateReservationRequest{
		Date:      date,
		Time:      slot,
		PartySize: 2,
		Name:      name,
		Email:     "guest@example.com",
		Phone:     "+1 555 0100",
	}
}

func slotOpen(t *testing.T, svc *Service, date, slot string) bool {
	t.Helper()
	out, err := svc.Availability(context.Background(), date)
	require.NoError(t, err)
	return availableMap(out.Slots)[slot]
}

func TestService_Book(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := validRequest("2025-06-01", "19:00", "  Ada Lovelace ")
	req.SpecialRequests = " birthday "

	r, err := f.svc.Book(ctx, req)
	require.NoError(t, err)

	assert.Regexp(t, `^RES-[0-9A-Z]+-[0-9A-Z]{5}$`, r.ID)
	assert.Equal(t, "Ada Lovelace", r.Name)
	assert.Equal(t, "birthday", r.SpecialRequests)
	assert.Equal(t, domain.ReservationPending, r.Status)

	f.notifier.AssertCalled(t, "ReservationReceived", mock.Anything, r)
	f.events.AssertCalled(t, "Publish", mock.Anything, ofType(events.ReservationCreated))

	got, err := f.svc.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestService_BookValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(*CreateReservationRequest)
		field  string
		msg    string
	}{
		{"missing date", func(r *CreateReservationRequest) { r.Date = "" }, "date", "Please select a date"},
		{"bad date", func(r *CreateReservationRequest) { r.Date = "2025-13-01" }, "date", "Invalid date"},
		{"past date", func(r *CreateReservationRequest) { r.Date = "2025-05-19" }, "date", msgOutsideWindow},
		{"beyond window", func(r *CreateReservationRequest) { r.Date = "2025-08-21" }, "date", msgOutsideWindow},
		{"missing time", func(r *CreateReservationRequest) { r.Time = "" }, "time", "Please select a time"},
		{"unknown slot", func(r *CreateReservationRequest) { r.Time = "17:00" }, "time", "Invalid time slot"},
		{"party too small", func(r *CreateReservationRequest) { r.PartySize = 0 }, "partySize", "Party size must be between 1 and 6"},
		{"party too large", func(r *CreateReservationRequest) { r.PartySize = 7 }, "partySize", "Party size must be between 1 and 6"},
		{"blank name", func(r *CreateReservationRequest) { r.Name = "   " }, "name", "Name is required"},
		{"missing email", func(r *CreateReservationRequest) { r.Email = "" }, "email", "Email is required"},
		{"bad email", func(r *CreateReservationRequest) { r.Email = "guest@example" }, "email", "Invalid email"},
		{"missing phone", func(r *CreateReservationRequest) { r.Phone = "" }, "phone", "Phone is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest("2025-06-01", "19:00", "Ada")
			tt.mutate(&req)

			_, err := f.svc.Book(context.Background(), req)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)

			verr, ok := asValidation(err)
			require.True(t, ok)
			assert.Equal(t, tt.msg, verr.Fields[tt.field])
		})
	}

	all, err := f.svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestService_BookWindowEdges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Book(ctx, validRequest("2025-05-20", "18:00", "today"))
	assert.NoError(t, err)
	_, err = f.svc.Book(ctx, validRequest("2025-08-20", "18:00", "last day"))
	assert.NoError(t, err)
}

func TestService_DoubleBookingScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Book(ctx, validRequest("2025-06-01", "19:00", "one"))
	require.NoError(t, err)
	assert.True(t, slotOpen(t, f.svc, "2025-06-01", "19:00"))

	_, err = f.svc.Book(ctx, validRequest("2025-06-01", "19:00", "two"))
	require.NoError(t, err)
	assert.False(t, slotOpen(t, f.svc, "2025-06-01", "19:00"))
	assert.True(t, slotOpen(t, f.svc, "2025-06-01", "19:30"))

	_, err = f.svc.Book(ctx, validRequest("2025-06-01", "19:00", "three"))
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	_, err = f.svc.UpdateStatus(ctx, first.ID, domain.ReservationCancelled)
	require.NoError(t, err)
	assert.True(t, slotOpen(t, f.svc, "2025-06-01", "19:00"))

	_, err = f.svc.Book(ctx, validRequest("2025-06-01", "19:00", "three"))
	assert.NoError(t, err)
}

func TestService_AvailabilityRejectsBadDate(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Availability(context.Background(), "June 1st")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_Get_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Get(context.Background(), "RES-NOPE-00000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_ListFiltersAndSorts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Book(ctx, validRequest("2025-06-01", "18:00", "a"))
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	b, err := f.svc.Book(ctx, validRequest("2025-06-02", "18:00", "b"))
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	c, err := f.svc.Book(ctx, validRequest("2025-06-01", "20:00", "c"))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, b.ID, domain.ReservationConfirmed)
	require.NoError(t, err)

	all, err := f.svc.List(ctx, ListFilter{Status: "all"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{c.ID, b.ID, a.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	pending, err := f.svc.List(ctx, ListFilter{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, c.ID, pending[0].ID)

	day, err := f.svc.List(ctx, ListFilter{Date: "2025-06-02"})
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.Equal(t, b.ID, day[0].ID)

	_, err = f.svc.List(ctx, ListFilter{Status: "seated"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestService_Stats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	today, err := f.svc.Book(ctx, validRequest("2025-05-20", "18:00", "a"))
	require.NoError(t, err)
	_, err = f.svc.Book(ctx, validRequest("2025-06-01", "18:00", "b"))
	require.NoError(t, err)
	other, err := f.svc.Book(ctx, validRequest("2025-06-01", "18:30", "c"))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, today.ID, domain.ReservationConfirmed)
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, other.ID, domain.ReservationCancelled)
	require.NoError(t, err)

	st, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 3, Pending: 1, Confirmed: 1, Today: 1}, st)
}

func TestService_UpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.svc.Book(ctx, validRequest("2025-06-01", "18:00", "a"))
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	updated, err := f.svc.UpdateStatus(ctx, r.ID, domain.ReservationConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationConfirmed, updated.Status)
	require.NotNil(t, updated.UpdatedAt)
	assert.True(t, f.clock.Now().Equal(*updated.UpdatedAt))

	f.notifier.AssertCalled(t, "ReservationStatusChanged", mock.Anything, updated)
	f.events.AssertCalled(t, "Publish", mock.Anything, ofType(events.ReservationStatusChanged))

	_, err = f.svc.UpdateStatus(ctx, r.ID, "seated")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.svc.UpdateStatus(ctx, "RES-NOPE-00000", domain.ReservationCancelled)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_CancelledReservationCannotBeReopened(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Book(ctx, validRequest("2025-06-01", "19:00", "one"))
	require.NoError(t, err)
	_, err = f.svc.Book(ctx, validRequest("2025-06-01", "19:00", "two"))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, first.ID, domain.ReservationCancelled)
	require.NoError(t, err)
	_, err = f.svc.Book(ctx, validRequest("2025-06-01", "19:00", "three"))
	require.NoError(t, err)

	for _, status := range []domain.ReservationStatus{domain.ReservationPending, domain.ReservationConfirmed} {
		_, err = f.svc.UpdateStatus(ctx, first.ID, status)
		assert.ErrorIs(t, err, ErrInvalidTransition, status)
	}

	got, err := f.svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationCancelled, got.Status)

	active, err := f.svc.List(ctx, ListFilter{Date: "2025-06-01"})
	require.NoError(t, err)
	var booked int
	for _, r := range active {
		if r.Time == "19:00" && r.Status != domain.ReservationCancelled {
			booked++
		}
	}
	assert.Equal(t, SlotCapacity, booked)

	_, err = f.svc.UpdateStatus(ctx, first.ID, domain.ReservationCancelled)
	assert.NoError(t, err)
}

func TestService_StatusTransitions(t *testing.T) {
	tests := []struct {
		from, to domain.ReservationStatus
		ok       bool
	}{
		{domain.ReservationPending, domain.ReservationConfirmed, true},
		{domain.ReservationPending, domain.ReservationCancelled, true},
		{domain.ReservationConfirmed, domain.ReservationCancelled, true},
		{domain.ReservationConfirmed, domain.ReservationPending, true},
		{domain.ReservationCancelled, domain.ReservationCancelled, true},
		{domain.ReservationCancelled, domain.ReservationPending, false},
		{domain.ReservationCancelled, domain.ReservationConfirmed, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.ok, canTransition(tt.from, tt.to))
		})
	}
}

func TestService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Book(ctx, validRequest("2025-06-01", "18:00", "a"))
	require.NoError(t, err)
	b, err := f.svc.Book(ctx, validRequest("2025-06-01", "18:00", "b"))
	require.NoError(t, err)

	remaining, err := f.svc.Delete(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, b.ID, remaining[0].ID)
	f.events.AssertCalled(t, "Publish", mock.Anything, ofType(events.ReservationDeleted))

	_, err = f.svc.Delete(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.UpdateStatus(ctx, a.ID, domain.ReservationConfirmed)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_SideEffectFailuresDoNotFailBooking(t *testing.T) {
	clock := &testClock{t: time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)}
	store := repository.NewReservationStore(repository.NewMemoryKV(), nil, repository.WithClock(clock.Now))

	n := new(MockNotifier)
	n.On("ReservationReceived", mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	p := new(MockPublisher)
	p.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	svc := NewService(store, n, p, nil, WithClock(clock.Now))
	r, err := svc.Book(context.Background(), validRequest("2025-06-01", "18:00", "a"))
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)

	n.AssertExpectations(t)
	p.AssertExpectations(t)
}
