package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newCachedService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewService(nil, client, time.Minute, zerolog.Nop()), mr
}

func TestDashboardServesCachedOverview(t *testing.T) {
	svc, mr := newCachedService(t)

	cached := Overview{
		OrdersByStatus: map[string]int{"PENDING": 3},
		OrdersToday:    3,
		RevenueTotal:   150000,
		GeneratedAt:    time.Now().UTC().Truncate(time.Second),
	}
	raw, err := json.Marshal(cached)
	require.NoError(t, err)
	require.NoError(t, mr.Set(cacheKey, string(raw)))

	// A nil pool proves the hit never reaches Postgres.
	got, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, got.OrdersToday)
	require.Equal(t, int64(150000), got.RevenueTotal)
	require.Equal(t, map[string]int{"PENDING": 3}, got.OrdersByStatus)
}

func TestInvalidateDropsCachedOverview(t *testing.T) {
	svc, mr := newCachedService(t)

	require.NoError(t, mr.Set(cacheKey, `{"ordersToday":1}`))
	svc.Invalidate(context.Background())
	require.False(t, mr.Exists(cacheKey))
}
