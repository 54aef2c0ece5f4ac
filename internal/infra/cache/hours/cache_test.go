//go:build integration

package hours_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
	hoursCache "github.com/m04kA/SMC-SeatReservationService/internal/infra/cache/hours"
	"github.com/m04kA/SMC-SeatReservationService/pkg/types"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())

	return client
}

func blueRoomHours() domain.CanonicalHours {
	return domain.CanonicalHours{
		VenueID:  1,
		Timezone: "America/Chicago",
		WeeklyHours: []domain.WeeklyHourRule{
			{DayOfWeek: time.Monday, OpenTime: types.TimeString("08:00"), CloseTime: types.TimeString("18:30")},
			{DayOfWeek: time.Saturday, OpenTime: types.TimeString("00:00"), CloseTime: types.TimeString("24:00")},
		},
	}
}

func TestCache_RoundTripAndMisses(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	cache := hoursCache.NewCache(client, time.Minute)

	alwaysOpen := domain.CanonicalHours{VenueID: 2, Timezone: "America/New_York"}
	require.NoError(t, cache.SetMany(ctx, map[int64]domain.CanonicalHours{1: blueRoomHours(), 2: alwaysOpen}))

	found, missing, err := cache.GetMany(ctx, []int64{1, 3, 2})
	require.NoError(t, err)

	assert.Equal(t, []int64{3}, missing)
	require.Len(t, found, 2)
	assert.Equal(t, blueRoomHours(), found[1])
	assert.Equal(t, "America/New_York", found[2].Timezone)
	foundAlwaysOpen := found[2]
	assert.False(t, foundAlwaysOpen.HasRules())
}

func TestCache_EntriesExpire(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	cache := hoursCache.NewCache(client, 30*time.Second)

	require.NoError(t, cache.SetMany(ctx, map[int64]domain.CanonicalHours{1: blueRoomHours()}))

	ttl, err := client.TTL(ctx, "venue:hours:1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 30*time.Second)
}

func TestCache_CorruptValueIsAMiss(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	cache := hoursCache.NewCache(client, time.Minute)

	require.NoError(t, client.Set(ctx, "venue:hours:5", "{not json", time.Minute).Err())

	found, missing, err := cache.GetMany(ctx, []int64{5})
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Equal(t, []int64{5}, missing)

	// следующая запись перезаписывает битое значение
	require.NoError(t, cache.SetMany(ctx, map[int64]domain.CanonicalHours{5: blueRoomHours()}))
	found, missing, err = cache.GetMany(ctx, []int64{5})
	require.NoError(t, err)
	assert.Empty(t, missing)
	assert.Equal(t, "America/Chicago", found[5].Timezone)
}

func TestCache_ServerDownIsReadError(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	cache := hoursCache.NewCache(client, time.Minute)

	require.NoError(t, client.Close())

	found, missing, err := cache.GetMany(ctx, []int64{1, 2})
	assert.ErrorIs(t, err, hoursCache.ErrCacheRead)
	assert.Empty(t, found)
	assert.Equal(t, []int64{1, 2}, missing)

	assert.ErrorIs(t, cache.SetMany(ctx, map[int64]domain.CanonicalHours{1: blueRoomHours()}), hoursCache.ErrCacheWrite)
}
