// Package analytics aggregates the counters shown on the back-office
// dashboard.
package analytics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const cacheKey = "dashboard:overview"

// Overview is the dashboard snapshot.
type Overview struct {
	OrdersByStatus   map[string]int `json:"ordersByStatus"`
	OrdersToday      int            `json:"ordersToday"`
	RevenueTotal     int64          `json:"revenueTotal"`
	RevenueThisMonth int64          `json:"revenueThisMonth"`
	OpenQuotes       int            `json:"openQuotes"`
	LowStockVariants int            `json:"lowStockVariants"`
	ActiveProducts   int            `json:"activeProducts"`
	Customers        int            `json:"customers"`
	GeneratedAt      time.Time      `json:"generatedAt"`
}

// Service computes and caches dashboard overviews.
type Service struct {
	pool   *pgxpool.Pool
	rdb    *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewService constructs a Service.
func NewService(pool *pgxpool.Pool, rdb *redis.Client, ttl time.Duration, logger zerolog.Logger) *Service {
	return &Service{pool: pool, rdb: rdb, ttl: ttl, logger: logger}
}

// Dashboard returns the overview, serving a cached copy when fresh enough.
func (s *Service) Dashboard(ctx context.Context) (Overview, error) {
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached Overview
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		}
	}

	overview, err := s.compute(ctx)
	if err != nil {
		return Overview{}, err
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(overview); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, raw, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("dashboard cache write failed")
			}
		}
	}
	return overview, nil
}

// Invalidate drops the cached overview. Called after order mutations.
func (s *Service) Invalidate(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("dashboard cache invalidation failed")
	}
}

func (s *Service) compute(ctx context.Context) (Overview, error) {
	overview := Overview{
		OrdersByStatus: map[string]int{},
		GeneratedAt:    time.Now().UTC(),
	}

	rows, err := s.pool.Query(ctx, `SELECT status, count(*) FROM orders GROUP BY status`)
	if err != nil {
		return Overview{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return Overview{}, err
		}
		overview.OrdersByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return Overview{}, err
	}

	err = s.pool.QueryRow(ctx, `
SELECT
  count(*) FILTER (WHERE created_at >= date_trunc('day', now())),
  COALESCE(sum(total_amount) FILTER (WHERE status = 'DELIVERED'), 0),
  COALESCE(sum(total_amount) FILTER (WHERE status = 'DELIVERED' AND created_at >= date_trunc('month', now())), 0)
FROM orders`).Scan(&overview.OrdersToday, &overview.RevenueTotal, &overview.RevenueThisMonth)
	if err != nil {
		return Overview{}, err
	}

	err = s.pool.QueryRow(ctx, `SELECT count(*) FROM quotes WHERE status = 'OPEN'`).Scan(&overview.OpenQuotes)
	if err != nil {
		return Overview{}, err
	}
	err = s.pool.QueryRow(ctx, `
SELECT count(*) FROM stock_levels WHERE quantity <= reorder_level`).Scan(&overview.LowStockVariants)
	if err != nil {
		return Overview{}, err
	}
	err = s.pool.QueryRow(ctx, `SELECT count(*) FROM products WHERE is_active`).Scan(&overview.ActiveProducts)
	if err != nil {
		return Overview{}, err
	}
	err = s.pool.QueryRow(ctx, `SELECT count(*) FROM customers`).Scan(&overview.Customers)
	if err != nil {
		return Overview{}, err
	}

	return overview, nil
}
