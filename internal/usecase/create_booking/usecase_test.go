package create_booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SeatReservationService/internal/civiltime"
	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
	"github.com/m04kA/SMC-SeatReservationService/internal/hours"
	"github.com/m04kA/SMC-SeatReservationService/internal/integrations/bookingpolicy"
	"github.com/m04kA/SMC-SeatReservationService/internal/pricing"
	"github.com/m04kA/SMC-SeatReservationService/pkg/ptr"
	"github.com/m04kA/SMC-SeatReservationService/pkg/txmanager"
	"github.com/m04kA/SMC-SeatReservationService/pkg/types"
)

// Monday 2025-02-10, 07:00 in New York
var now = time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC)

func at(hhmm string) time.Time {
	t, err := time.Parse("2006-01-02T15:04Z", "2025-02-10T"+hhmm+"Z")
	if err != nil {
		panic(err)
	}
	return t
}

func everyDay(open, close string) []domain.WeeklyHourRule {
	rules := make([]domain.WeeklyHourRule, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		rules = append(rules, domain.WeeklyHourRule{DayOfWeek: d, OpenTime: types.TimeString(open), CloseTime: types.TimeString(close)})
	}
	return rules
}

func newStore() *memStore {
	return &memStore{
		venues: map[int64]*domain.Venue{
			1: {ID: 1, Name: "Blue Room", Timezone: "America/New_York", ApprovalStatus: domain.ApprovalApproved, IsActive: true},
			2: {ID: 2, Name: "Pending Place", Timezone: "America/New_York", ApprovalStatus: domain.ApprovalPending, IsActive: true},
			3: {ID: 3, Name: "Other", Timezone: "America/New_York", ApprovalStatus: domain.ApprovalApproved, IsActive: true},
		},
		tables: map[int64]*domain.Table{
			10: {ID: 10, VenueID: 1, Name: "Bar", BookingMode: domain.ModeIndividual, SeatCount: 4, IsActive: true},
			11: {ID: 11, VenueID: 1, Name: "Booth", BookingMode: domain.ModeGroup, TablePricePerHourCents: 5000, SeatCount: 4, IsActive: true},
			12: {ID: 12, VenueID: 3, Name: "Elsewhere", BookingMode: domain.ModeIndividual, SeatCount: 2, IsActive: true},
			13: {ID: 13, VenueID: 1, Name: "Closed Booth", BookingMode: domain.ModeGroup, TablePricePerHourCents: 5000, SeatCount: 6, IsActive: false},
		},
		seats: map[int64]*domain.Seat{
			100: {ID: 100, TableID: 10, VenueID: 1, Label: "A1", PricePerHourCents: 1000, IsActive: true, TableName: "Bar", TableMode: domain.ModeIndividual, TableIsActive: true},
			101: {ID: 101, TableID: 10, VenueID: 1, Label: "A2", PricePerHourCents: 2000, IsActive: true, TableName: "Bar", TableMode: domain.ModeIndividual, TableIsActive: true},
			102: {ID: 102, TableID: 10, VenueID: 1, Label: "A3", PricePerHourCents: 1000, IsActive: false, TableName: "Bar", TableMode: domain.ModeIndividual, TableIsActive: true},
			103: {ID: 103, TableID: 12, VenueID: 3, Label: "B1", PricePerHourCents: 1000, IsActive: true, TableName: "Elsewhere", TableMode: domain.ModeIndividual, TableIsActive: true},
			104: {ID: 104, TableID: 10, VenueID: 1, Label: "A4", PricePerHourCents: 0, IsActive: true, TableName: "Bar", TableMode: domain.ModeIndividual, TableIsActive: true},
			105: {ID: 105, TableID: 11, VenueID: 1, Label: "Booth-1", PricePerHourCents: 0, IsActive: true, TableName: "Booth", TableMode: domain.ModeGroup, TableIsActive: true},
		},
	}
}

type fixture struct {
	uc      *UseCase
	store   *memStore
	tx      *serialTx
	metrics *recordingMetrics
}

func newFixture(t *testing.T, policy PolicyGuard) *fixture {
	t.Helper()

	policyCfg, err := pricing.NewPolicy(0.029, 30, 0.20)
	require.NoError(t, err)

	store := newStore()
	tx := &serialTx{}
	m := &recordingMetrics{}
	hoursByVenue := staticHours{
		1: {VenueID: 1, Timezone: "America/New_York", WeeklyHours: everyDay("09:00", "22:00")},
		2: {VenueID: 2, Timezone: "America/New_York"},
		3: {VenueID: 3, Timezone: "America/New_York"},
	}

	uc := NewUseCase(
		store, store, store,
		hoursByVenue,
		hours.NewResolver(civiltime.NewZones(civiltime.DefaultTimezone), nopLogger{}),
		policy,
		pricing.NewEngine(policyCfg),
		tx,
		m,
		Config{PendingTTL: 15 * time.Minute},
		nopLogger{},
	).WithTimeProvider(fixedClock{t: now})

	return &fixture{uc: uc, store: store, tx: tx, metrics: m}
}

func seatsRequest(start, end string, seatIDs ...int64) *Request {
	return &Request{UserID: 7, VenueID: 1, Mode: domain.ModeIndividual, SeatIDs: seatIDs, StartAt: at(start), EndAt: at(end)}
}

func tableRequest(start, end string, tableID int64, seatCount int) *Request {
	return &Request{UserID: 7, VenueID: 1, Mode: domain.ModeGroup, TableID: tableID, SeatCount: seatCount, StartAt: at(start), EndAt: at(end)}
}

func TestExecute_IndividualSeatsArePricedAndPending(t *testing.T) {
	f := newFixture(t, bookingpolicy.AllowAll{})

	resp, err := f.uc.Execute(context.Background(), seatsRequest("15:00", "16:00", 101, 100))
	require.NoError(t, err)

	assert.Equal(t, int64(3000), resp.Pricing.SubtotalCents)
	assert.Equal(t, resp.Pricing.SubtotalCents+resp.Pricing.ProcessingFeeCents, resp.Pricing.TotalChargeCents)
	assert.Equal(t, string(domain.StatusPending), resp.Status)
	require.NotNil(t, resp.ExpiresAt)
	assert.True(t, now.Add(15*time.Minute).Equal(*resp.ExpiresAt))
	assert.Equal(t, []int64{101, 100}, resp.SeatIDs)
	assert.Equal(t, []string{"A2", "A1"}, resp.SeatLabels)
	assert.Equal(t, 2, resp.SeatCount)
	assert.Equal(t, "Bar", resp.TableName)
	assert.Equal(t, "Blue Room", resp.VenueName)
	assert.Equal(t, "America/New_York", resp.Timezone)

	require.Equal(t, 1, f.store.reservationCount())
	stored := f.store.reservations[0]
	assert.Equal(t, int64(101), *stored.SeatID)
	assert.Equal(t, int64(10), *stored.TableID)

	// Paid bookings are confirmed after payment
	assert.Empty(t, f.store.notifications)
	assert.Equal(t, []string{"seats"}, f.store.locks)
	assert.Equal(t, 1, f.metrics.outcomes["individual/pending"])
}

func TestExecute_GroupPriceIgnoresSeatCount(t *testing.T) {
	for _, seatCount := range []int{1, 3, 4} {
		t.Run(fmt.Sprintf("seats=%d", seatCount), func(t *testing.T) {
			f := newFixture(t, bookingpolicy.AllowAll{})

			resp, err := f.uc.Execute(context.Background(), tableRequest("15:00", "17:00", 11, seatCount))
			require.NoError(t, err)
			assert.Equal(t, int64(10000), resp.Pricing.SubtotalCents)
			assert.Equal(t, seatCount, resp.SeatCount)
			assert.Equal(t, "Booth", resp.TableName)
			assert.Empty(t, resp.SeatIDs)

			stored := f.store.reservations[0]
			assert.Nil(t, stored.SeatID)
			assert.Equal(t, int64(11), *stored.TableID)
			assert.Equal(t, []string{"table"}, f.store.locks)
		})
	}
}

func TestExecute_FreeBookingIsActiveAndNotified(t *testing.T) {
	f := newFixture(t, bookingpolicy.AllowAll{})

	resp, err := f.uc.Execute(context.Background(), seatsRequest("15:00", "16:00", 104))
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusActive), resp.Status)
	assert.Nil(t, resp.ExpiresAt)
	assert.Equal(t, int64(0), resp.Pricing.TotalChargeCents)

	require.Len(t, f.store.notifications, 1)
	assert.Equal(t, domain.BookingConfirmationKey(resp.ID), f.store.notifications[0].DedupeKey)
	assert.Equal(t, 1, f.metrics.outcomes["individual/active"])
}

func TestExecute_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		req     *Request
		policy  PolicyGuard
		wantErr error
	}{
		{"end before start", seatsRequest("16:00", "15:00", 100), nil, ErrInvalidInput},
		{"empty interval", seatsRequest("15:00", "15:00", 100), nil, ErrInvalidInput},
		{"past start", seatsRequest("11:00", "13:00", 100), nil, ErrPastTime},
		{"no seats", seatsRequest("15:00", "16:00"), nil, ErrInvalidInput},
		{"duplicate seat", seatsRequest("15:00", "16:00", 100, 100), nil, ErrInvalidInput},
		{"unknown mode", &Request{UserID: 7, VenueID: 1, Mode: "vip", StartAt: at("15:00"), EndAt: at("16:00")}, nil, ErrInvalidInput},
		{"non-positive group seat count", tableRequest("15:00", "16:00", 11, 0), nil, ErrInvalidInput},
		{"group seat count above table", tableRequest("15:00", "16:00", 11, 5), nil, ErrInvalidInput},
		{"unknown venue", &Request{UserID: 7, VenueID: 99, Mode: domain.ModeIndividual, SeatIDs: []int64{100}, StartAt: at("15:00"), EndAt: at("16:00")}, nil, ErrNotFound},
		{"venue not approved", &Request{UserID: 7, VenueID: 2, Mode: domain.ModeIndividual, SeatIDs: []int64{100}, StartAt: at("15:00"), EndAt: at("16:00")}, nil, ErrVenueNotBookable},
		{"policy denied", seatsRequest("15:00", "16:00", 100), stubPolicy{decision: domain.Deny("daily limit")}, ErrPolicyDenied},
		{"policy failure", seatsRequest("15:00", "16:00", 100), stubPolicy{err: errors.New("db down")}, ErrInternal},
		{"before opening", seatsRequest("13:30", "15:00", 100), nil, ErrOutsideOperatingHours},
		{"after closing", &Request{UserID: 7, VenueID: 1, Mode: domain.ModeIndividual, SeatIDs: []int64{100},
			StartAt: time.Date(2025, 2, 11, 2, 30, 0, 0, time.UTC), EndAt: time.Date(2025, 2, 11, 3, 30, 0, 0, time.UTC)}, nil, ErrOutsideOperatingHours},
		{"unknown seat", seatsRequest("15:00", "16:00", 100, 999), nil, ErrNotFound},
		{"unknown table", tableRequest("15:00", "16:00", 999, 2), nil, ErrNotFound},
		{"seat at other venue", seatsRequest("15:00", "16:00", 103), nil, ErrCrossVenueMismatch},
		{"table at other venue", tableRequest("15:00", "16:00", 12, 1), nil, ErrCrossVenueMismatch},
		{"seat at group table", seatsRequest("15:00", "16:00", 105), nil, ErrInvalidInput},
		{"individual table booked as group", tableRequest("15:00", "16:00", 10, 1), nil, ErrInvalidInput},
		{"inactive seat", seatsRequest("15:00", "16:00", 100, 102), nil, ErrInactiveResource},
		{"inactive table", tableRequest("15:00", "16:00", 13, 2), nil, ErrInactiveResource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := tt.policy
			if policy == nil {
				policy = bookingpolicy.AllowAll{}
			}
			f := newFixture(t, policy)

			_, err := f.uc.Execute(context.Background(), tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, f.store.reservationCount(), "nothing is written on rejection")
		})
	}
}

func TestExecute_DegradedPolicyAllows(t *testing.T) {
	degraded := stubPolicy{decision: domain.Allow(), err: fmt.Errorf("%w: timeout", bookingpolicy.ErrServiceDegraded)}
	f := newFixture(t, degraded)

	_, err := f.uc.Execute(context.Background(), seatsRequest("15:00", "16:00", 100))
	assert.NoError(t, err)
}

func TestExecute_Overlap(t *testing.T) {
	expired := now.Add(-time.Minute)
	live := now.Add(10 * time.Minute)

	existing := func(status domain.ReservationStatus, expiresAt *time.Time, start, end string, seatIDs ...int64) *domain.Reservation {
		r := &domain.Reservation{ID: uuid.New(), VenueID: 1, Status: status, ExpiresAt: expiresAt, StartAt: at(start), EndAt: at(end), SeatCount: 1}
		if len(seatIDs) == 0 {
			r.TableID = ptr.Ptr(int64(11))
			return r
		}
		r.TableID = ptr.Ptr(int64(10))
		r.SeatID = ptr.Ptr(seatIDs[0])
		r.SeatIDs = seatIDs
		return r
	}

	tests := []struct {
		name     string
		existing *domain.Reservation
		req      *Request
		wantErr  error
	}{
		{"same seat overlapping", existing(domain.StatusActive, nil, "15:30", "16:30", 101), seatsRequest("15:00", "16:00", 100, 101), ErrConflict},
		{"second seat of multi-seat booking", existing(domain.StatusActive, nil, "15:30", "16:30", 100, 101), seatsRequest("15:00", "16:00", 101), ErrConflict},
		{"live pending blocks", existing(domain.StatusPending, &live, "15:00", "16:00", 100), seatsRequest("15:00", "16:00", 100), ErrConflict},
		{"group table overlapping", existing(domain.StatusActive, nil, "14:00", "15:30"), tableRequest("15:00", "16:00", 11, 2), ErrConflict},
		{"adjacent is fine", existing(domain.StatusActive, nil, "14:00", "15:00", 100), seatsRequest("15:00", "16:00", 100), nil},
		{"expired pending ignored", existing(domain.StatusPending, &expired, "15:00", "16:00", 100), seatsRequest("15:00", "16:00", 100), nil},
		{"cancelled ignored", existing(domain.StatusCancelled, nil, "15:00", "16:00", 100), seatsRequest("15:00", "16:00", 100), nil},
		{"other seat", existing(domain.StatusActive, nil, "15:00", "16:00", 101), seatsRequest("15:00", "16:00", 100), nil},
		{"seat booking does not block group table", existing(domain.StatusActive, nil, "15:00", "16:00", 100), tableRequest("15:00", "16:00", 11, 2), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, bookingpolicy.AllowAll{})
			f.store.reservations = append(f.store.reservations, tt.existing)

			_, err := f.uc.Execute(context.Background(), tt.req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 1, f.store.reservationCount())
		})
	}
}

func TestExecute_SerializationFailureIsConflict(t *testing.T) {
	f := newFixture(t, bookingpolicy.AllowAll{})
	f.tx.err = fmt.Errorf("%w: after 4 attempts", txmanager.ErrSerializationFailure)

	_, err := f.uc.Execute(context.Background(), seatsRequest("15:00", "16:00", 100))
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 1, f.metrics.outcomes["individual/conflict"])
}

func TestExecute_ConcurrentBookingsOfOneSeat(t *testing.T) {
	const rounds = 200

	for round := 0; round < rounds; round++ {
		f := newFixture(t, bookingpolicy.AllowAll{})

		// Both requests pass the optimistic pre-check before either writes
		f.store.preCheck = &sync.WaitGroup{}
		f.store.preCheck.Add(2)

		reqs := []*Request{
			seatsRequest("15:00", "16:00", 100),
			seatsRequest("15:30", "16:30", 101, 100),
		}

		errs := make([]error, len(reqs))
		var wg sync.WaitGroup
		for i := range reqs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = f.uc.Execute(context.Background(), reqs[i])
			}(i)
		}
		wg.Wait()

		succeeded, conflicted := 0, 0
		for _, err := range errs {
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrConflict):
				conflicted++
			default:
				t.Fatalf("round %d: unexpected error %v", round, err)
			}
		}

		require.Equal(t, 1, succeeded, "round %d", round)
		require.Equal(t, 1, conflicted, "round %d", round)
		require.Equal(t, 1, f.store.reservationCount(), "round %d", round)
	}
}

func TestQuote_DoesNotWrite(t *testing.T) {
	f := newFixture(t, bookingpolicy.AllowAll{})

	q, err := f.uc.Quote(context.Background(), tableRequest("15:00", "17:00", 11, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(10000), q.Pricing.SubtotalCents)
	assert.Equal(t, int64(5000), q.RatePerHourCents)
	assert.Equal(t, "America/New_York", q.Timezone)
	assert.Zero(t, f.store.reservationCount())
	assert.Empty(t, f.store.locks)

	_, err = f.uc.Quote(context.Background(), tableRequest("11:00", "13:00", 11, 2))
	assert.ErrorIs(t, err, ErrPastTime)
}

func TestExecute_WholeFallBackDay(t *testing.T) {
	f := newFixture(t, bookingpolicy.AllowAll{})
	f.uc.hoursProvider = staticHours{
		1: {VenueID: 1, Timezone: "America/New_York", WeeklyHours: everyDay("00:00", "24:00")},
	}

	// 2025-11-02 в New York длится 25 часов
	start := time.Date(2025, 11, 2, 4, 0, 0, 0, time.UTC)
	end := time.Date(2025, 11, 3, 5, 0, 0, 0, time.UTC)

	resp, err := f.uc.Execute(context.Background(), &Request{
		UserID: 7, VenueID: 1, Mode: domain.ModeIndividual, SeatIDs: []int64{104}, StartAt: start, EndAt: end,
	})
	require.NoError(t, err)
	assert.Equal(t, 25*time.Hour, resp.EndAt.Sub(resp.StartAt))
}

func TestExecute_DurationCapOnAlwaysOpenVenue(t *testing.T) {
	f := newFixture(t, bookingpolicy.AllowAll{})

	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	_, err := f.uc.Execute(context.Background(), &Request{
		UserID: 7, VenueID: 3, Mode: domain.ModeIndividual, SeatIDs: []int64{103},
		StartAt: start, EndAt: start.Add(25*time.Hour + 15*time.Minute),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
