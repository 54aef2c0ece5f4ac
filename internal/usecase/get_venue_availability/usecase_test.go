package get_venue_availability

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SeatReservationService/internal/availability"
	"github.com/m04kA/SMC-SeatReservationService/internal/civiltime"
	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
	hoursResolver "github.com/m04kA/SMC-SeatReservationService/internal/hours"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeVenues struct {
	capacities map[int64]int
	err        error
}

func (f *fakeVenues) GetCapacities(_ context.Context, ids []int64) (map[int64]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[int64]int, len(ids))
	for _, id := range ids {
		if c, ok := f.capacities[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

type fakeReservations struct {
	mu       sync.Mutex
	slots    []domain.OccupiedSlot
	interval domain.Interval
}

func (f *fakeReservations) ListOccupied(_ context.Context, _ []int64, interval domain.Interval, _ time.Time) ([]domain.OccupiedSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interval = interval
	return f.slots, nil
}

type fakeHours struct {
	hours map[int64]domain.CanonicalHours
	calls [][]int64
}

func (f *fakeHours) BatchResolve(_ context.Context, ids []int64) (map[int64]domain.CanonicalHours, error) {
	f.calls = append(f.calls, ids)
	out := make(map[int64]domain.CanonicalHours, len(ids))
	for _, id := range ids {
		if h, ok := f.hours[id]; ok {
			out[id] = h
		}
	}
	return out, nil
}

// Monday 2025-02-10 10:00 AM in New York
var now = time.Date(2025, 2, 10, 15, 0, 0, 0, time.UTC)

func newUseCase(venues *fakeVenues, reservations *fakeReservations, hours *fakeHours) *UseCase {
	resolver := hoursResolver.NewResolver(civiltime.NewZones(civiltime.DefaultTimezone), nopLogger{})
	return NewUseCase(venues, reservations, hours, resolver, nopLogger{}).
		WithTimeProvider(fixedClock{t: now})
}

func ny(id int64, rules ...domain.WeeklyHourRule) domain.CanonicalHours {
	return domain.CanonicalHours{VenueID: id, Timezone: "America/New_York", WeeklyHours: rules}
}

func TestExecute_LabelsInRequestOrder(t *testing.T) {
	venues := &fakeVenues{capacities: map[int64]int{1: 4, 2: 4, 3: 2}}
	reservations := &fakeReservations{slots: []domain.OccupiedSlot{
		{VenueID: 2, StartAt: now, EndAt: now.Add(time.Hour), SeatCount: 4},
	}}
	hours := &fakeHours{hours: map[int64]domain.CanonicalHours{1: ny(1), 2: ny(2), 3: ny(3)}}

	resp, err := newUseCase(venues, reservations, hours).Execute(context.Background(), &Request{VenueIDs: []int64{2, 1, 3}})
	require.NoError(t, err)
	require.Len(t, resp.Items, 3)

	assert.Equal(t, int64(2), resp.Items[0].VenueID)
	assert.Equal(t, availability.KindNextAvailable, resp.Items[0].Kind)
	assert.Equal(t, "Next available at 11:00 AM", resp.Items[0].Text)
	require.NotNil(t, resp.Items[0].NextAvailableAt)
	assert.True(t, now.Add(time.Hour).Equal(*resp.Items[0].NextAvailableAt))

	assert.Equal(t, int64(1), resp.Items[1].VenueID)
	assert.Equal(t, availability.KindAvailableNow, resp.Items[1].Kind)
	assert.Equal(t, int64(3), resp.Items[2].VenueID)

	assert.Equal(t, availability.ScanRange(now), reservations.interval)
}

func TestExecute_RequiredSeatsAboveCapacityIsSoldOut(t *testing.T) {
	venues := &fakeVenues{capacities: map[int64]int{1: 2}}
	hours := &fakeHours{hours: map[int64]domain.CanonicalHours{1: ny(1)}}

	resp, err := newUseCase(venues, &fakeReservations{}, hours).Execute(context.Background(), &Request{VenueIDs: []int64{1}, RequiredSeats: 3})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, availability.KindSoldOut, resp.Items[0].Kind)
	assert.Equal(t, availability.TextSoldOut, resp.Items[0].Text)
}

func TestExecute_SkipsClosedHours(t *testing.T) {
	venues := &fakeVenues{capacities: map[int64]int{1: 4}}
	// opens at noon local on Monday
	hours := &fakeHours{hours: map[int64]domain.CanonicalHours{
		1: ny(1, domain.WeeklyHourRule{DayOfWeek: time.Monday, OpenTime: "12:00", CloseTime: "20:00"}),
	}}

	resp, err := newUseCase(venues, &fakeReservations{}, hours).Execute(context.Background(), &Request{VenueIDs: []int64{1}})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, availability.KindNextAvailable, resp.Items[0].Kind)
	assert.Equal(t, "Next available at 12:00 PM", resp.Items[0].Text)
}

func TestExecute_UnknownVenuesOmittedAndDuplicatesCollapsed(t *testing.T) {
	venues := &fakeVenues{capacities: map[int64]int{1: 4}}
	hours := &fakeHours{hours: map[int64]domain.CanonicalHours{1: ny(1)}}

	resp, err := newUseCase(venues, &fakeReservations{}, hours).Execute(context.Background(), &Request{VenueIDs: []int64{1, 99, 1}})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(1), resp.Items[0].VenueID)
	require.Len(t, hours.calls, 1)
	assert.Equal(t, []int64{1, 99}, hours.calls[0])
}

func TestExecute_Validation(t *testing.T) {
	tooMany := make([]int64, domain.MaxVenuesPerListing+1)
	for i := range tooMany {
		tooMany[i] = int64(i + 1)
	}

	tests := []struct {
		name string
		req  Request
	}{
		{"empty", Request{}},
		{"too many venues", Request{VenueIDs: tooMany}},
		{"non-positive id", Request{VenueIDs: []int64{1, 0}}},
		{"negative seats", Request{VenueIDs: []int64{1}, RequiredSeats: -1}},
	}

	uc := newUseCase(&fakeVenues{}, &fakeReservations{}, &fakeHours{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), &tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestExecute_RepositoryFailureIsInternal(t *testing.T) {
	venues := &fakeVenues{err: errors.New("connection reset")}
	hours := &fakeHours{hours: map[int64]domain.CanonicalHours{1: ny(1)}}

	_, err := newUseCase(venues, &fakeReservations{}, hours).Execute(context.Background(), &Request{VenueIDs: []int64{1}})
	assert.ErrorIs(t, err, ErrInternal)
}
