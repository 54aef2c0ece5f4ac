package create_booking

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
	venueRepo "github.com/m04kA/SMC-SeatReservationService/internal/infra/storage/venue"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type txKey struct{}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// memStore is an in-memory store. Reads outside a transaction optionally wait on
// preCheck so that concurrent requests all pass the optimistic check before writing.
type memStore struct {
	mu            sync.Mutex
	venues        map[int64]*domain.Venue
	tables        map[int64]*domain.Table
	seats         map[int64]*domain.Seat
	reservations  []*domain.Reservation
	notifications []*domain.Notification
	preCheck      *sync.WaitGroup
	locks         []string
}

func (s *memStore) FindVenueByID(_ context.Context, id int64) (*domain.Venue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.venues[id]
	if !ok {
		return nil, venueRepo.ErrVenueNotFound
	}
	cp := *v
	return &cp, nil
}

func (s *memStore) FindTableByID(_ context.Context, id int64) (*domain.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[id]
	if !ok {
		return nil, venueRepo.ErrTableNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *memStore) FindSeatsByIDs(_ context.Context, ids []int64) ([]*domain.Seat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Seat, 0, len(ids))
	for _, id := range ids {
		if seat, ok := s.seats[id]; ok {
			cp := *seat
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memStore) LockSeats(context.Context, []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locks = append(s.locks, "seats")
	return nil
}

func (s *memStore) LockTable(context.Context, int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locks = append(s.locks, "table")
	return nil
}

func (s *memStore) FindOverlapping(ctx context.Context, sel domain.ResourceSelector, iv domain.Interval, now time.Time) ([]*domain.Reservation, error) {
	if !inTx(ctx) && s.preCheck != nil {
		s.preCheck.Done()
		s.preCheck.Wait()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[int64]struct{}, len(sel.SeatIDs))
	for _, id := range sel.SeatIDs {
		wanted[id] = struct{}{}
	}

	var out []*domain.Reservation
	for _, r := range s.reservations {
		if !r.BlocksAt(now) || !r.Interval().Overlaps(iv) {
			continue
		}
		if sel.IsTable() {
			if r.SeatID == nil && r.TableID != nil && *r.TableID == sel.TableID {
				out = append(out, r)
			}
			continue
		}
		for _, id := range r.SeatIDs {
			if _, ok := wanted[id]; ok {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

func (s *memStore) Create(_ context.Context, res *domain.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res.CreatedAt = time.Now()
	res.UpdatedAt = res.CreatedAt
	s.reservations = append(s.reservations, res)
	return nil
}

func (s *memStore) Enqueue(_ context.Context, n *domain.Notification) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.notifications {
		if existing.DedupeKey == n.DedupeKey {
			return false, nil
		}
	}
	s.notifications = append(s.notifications, n)
	return true, nil
}

func (s *memStore) reservationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reservations)
}

// serialTx runs transactions one at a time, which is what row locks give the real writer.
type serialTx struct {
	mu  sync.Mutex
	err error
}

func (m *serialTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	return fn(context.WithValue(ctx, txKey{}, true))
}

type staticHours map[int64]domain.CanonicalHours

func (h staticHours) Get(_ context.Context, venueID int64) (domain.CanonicalHours, error) {
	return h[venueID], nil
}

type stubPolicy struct {
	decision domain.PolicyDecision
	err      error
}

func (p stubPolicy) CheckAllowed(context.Context, int64, int64, domain.Interval) (domain.PolicyDecision, error) {
	return p.decision, p.err
}

type recordingMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (m *recordingMetrics) IncBooking(mode, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcomes == nil {
		m.outcomes = map[string]int{}
	}
	m.outcomes[mode+"/"+outcome]++
}
