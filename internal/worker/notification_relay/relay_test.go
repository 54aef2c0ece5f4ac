package notification_relay

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
	"github.com/m04kA/SMC-SeatReservationService/internal/integrations/rabbitmq"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type passTx struct{}

func (passTx) Do(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type memOutbox struct {
	mu        sync.Mutex
	rows      []*domain.Notification
	published map[uuid.UUID]time.Time
	failures  map[uuid.UUID]string
	fetchErr  error
}

func newOutbox(rows ...*domain.Notification) *memOutbox {
	return &memOutbox{rows: rows, published: map[uuid.UUID]time.Time{}, failures: map[uuid.UUID]string{}}
}

func (m *memOutbox) FetchPending(_ context.Context, limit, maxAttempts int) ([]*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	out := make([]*domain.Notification, 0, limit)
	for _, n := range m.rows {
		if len(out) == limit {
			break
		}
		if n.PublishedAt != nil || (maxAttempts > 0 && n.Attempts >= maxAttempts) {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memOutbox) find(id uuid.UUID) *domain.Notification {
	for _, n := range m.rows {
		if n.ID == id {
			return n
		}
	}
	return nil
}

func (m *memOutbox) MarkPublished(_ context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.find(id)
	n.Attempts++
	n.PublishedAt = &at
	m.published[id] = at
	return nil
}

func (m *memOutbox) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.find(id)
	n.Attempts++
	m.failures[id] = reason
	return nil
}

type fakePublisher struct {
	sent   []rabbitmq.Message
	failOn map[string]error
}

func (p *fakePublisher) Publish(_ context.Context, msg rabbitmq.Message) error {
	if err, ok := p.failOn[msg.MessageID]; ok {
		return err
	}
	p.sent = append(p.sent, msg)
	return nil
}

type countingMetrics struct{ byResult map[string]int }

func (m *countingMetrics) IncNotificationRelayed(result string) { m.byResult[result]++ }

var now = time.Date(2025, 2, 10, 15, 0, 0, 0, time.UTC)

func notification(key string) *domain.Notification {
	return &domain.Notification{
		ID:        uuid.New(),
		DedupeKey: key,
		EventType: domain.EventBookingConfirmation,
		Payload:   []byte(`{"reservationId":"` + key + `"}`),
		CreatedAt: now.Add(-time.Minute),
	}
}

func newRelay(outbox *memOutbox, pub *fakePublisher, metrics Metrics, cfg Config) *Relay {
	return NewRelay(outbox, pub, passTx{}, metrics, cfg, nopLogger{}).WithTimeProvider(fixedClock{t: now})
}

func TestRelayOnce_PublishesAndMarks(t *testing.T) {
	a, b := notification("a"), notification("b")
	outbox := newOutbox(a, b)
	pub := &fakePublisher{failOn: map[string]error{"b": errors.New("channel closed")}}
	metrics := &countingMetrics{byResult: map[string]int{}}

	relay := newRelay(outbox, pub, metrics, Config{
		BatchSize:   10,
		RoutingKeys: map[string]string{domain.EventBookingConfirmation: "booking.confirmation"},
	})

	stats, err := relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Published: 1, Failed: 1}, stats)

	require.Len(t, pub.sent, 1)
	assert.Equal(t, "a", pub.sent[0].MessageID)
	assert.Equal(t, "booking.confirmation", pub.sent[0].RoutingKey)
	assert.Equal(t, a.Payload, pub.sent[0].Body)

	assert.Equal(t, now, outbox.published[a.ID])
	assert.Equal(t, "channel closed", outbox.failures[b.ID])
	assert.Equal(t, map[string]int{"published": 1, "failed": 1}, metrics.byResult)

	// b is retried on the next pass once the broker recovers
	pub.failOn = nil
	stats, err = relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Published: 1}, stats)
	assert.Equal(t, "b", pub.sent[1].MessageID)
	assert.Equal(t, 2, outbox.find(b.ID).Attempts)
}

func TestRelayOnce_StopsRetryingAfterMaxAttempts(t *testing.T) {
	n := notification("poison")
	outbox := newOutbox(n)
	pub := &fakePublisher{failOn: map[string]error{"poison": errors.New("nack")}}
	relay := newRelay(outbox, pub, &countingMetrics{byResult: map[string]int{}}, Config{BatchSize: 10, MaxAttempts: 2})

	for i := 0; i < 3; i++ {
		_, err := relay.RelayOnce(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, 2, outbox.find(n.ID).Attempts)
}

func TestRelayOnce_RoutingKeyDefaultsToEventType(t *testing.T) {
	outbox := newOutbox(notification("a"))
	pub := &fakePublisher{}
	relay := newRelay(outbox, pub, nil, Config{BatchSize: 10})

	_, err := relay.RelayOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, pub.sent, 1)
	assert.Equal(t, domain.EventBookingConfirmation, pub.sent[0].RoutingKey)
}

func TestRelayOnce_FetchError(t *testing.T) {
	outbox := newOutbox()
	outbox.fetchErr = errors.New("connection refused")
	relay := newRelay(outbox, &fakePublisher{}, nil, Config{BatchSize: 10})

	_, err := relay.RelayOnce(context.Background())
	assert.ErrorIs(t, err, ErrRelay)
}

func TestRun_DrainsUntilCancelled(t *testing.T) {
	outbox := newOutbox(notification("a"), notification("b"), notification("c"))
	pub := &fakePublisher{}
	relay := newRelay(outbox, pub, nil, Config{Interval: 5 * time.Millisecond, BatchSize: 2})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		outbox.mu.Lock()
		defer outbox.mu.Unlock()
		return len(outbox.published) == 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestDrain_BrokerDownCostsOneAttemptPerTick(t *testing.T) {
	rows := make([]*domain.Notification, 0, 6)
	failOn := map[string]error{}
	for _, key := range []string{"a", "b", "c", "d", "e", "f"} {
		rows = append(rows, notification(key))
		failOn[key] = errors.New("connection refused")
	}
	outbox := newOutbox(rows...)
	relay := newRelay(outbox, &fakePublisher{failOn: failOn}, nil, Config{BatchSize: 4, MaxAttempts: 10})

	relay.drain(context.Background())

	// только первая пачка, по одной попытке
	for i, n := range rows {
		if i < 4 {
			assert.Equal(t, 1, n.Attempts, n.DedupeKey)
		} else {
			assert.Equal(t, 0, n.Attempts, n.DedupeKey)
		}
	}

	relay.drain(context.Background())
	assert.Equal(t, 2, rows[0].Attempts)
}

func TestDrain_ContinuesWhileFullBatchesPublish(t *testing.T) {
	outbox := newOutbox(notification("a"), notification("b"), notification("c"), notification("d"), notification("e"))
	pub := &fakePublisher{}
	relay := newRelay(outbox, pub, nil, Config{BatchSize: 2})

	relay.drain(context.Background())

	assert.Len(t, pub.sent, 5)
}
