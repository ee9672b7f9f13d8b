// Package ratelimit throttles public storefront endpoints per client IP.
package ratelimit

import (
	"net/http"
	"strconv"

	"github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/nkg-services/backend-electro/internal/common"
)

// NewStore wires a rate limiter store backed by Redis.
func NewStore(rdb *redis.Client) (limiter.Store, error) {
	return limiterredis.NewStoreWithOptions(rdb, limiter.StoreOptions{
		Prefix: "ratelimit",
	})
}

// Limiter enforces a formatted rate ("10-H", "30-M") keyed by client IP.
type Limiter struct {
	Instance *limiter.Limiter
	OnError  func(error)
}

// New builds a Limiter from a formatted rate string.
func New(store limiter.Store, formatted string, onError func(error)) (*Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}
	return &Limiter{
		Instance: limiter.New(store, rate),
		OnError:  onError,
	}, nil
}

// Middleware rejects requests over the limit with HTTP 429.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l == nil || l.Instance == nil {
			next.ServeHTTP(w, r)
			return
		}
		key := common.ClientIP(r)
		ctx, err := l.Instance.Get(r.Context(), key)
		if err != nil {
			if l.OnError != nil {
				l.OnError(err)
			}
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.FormatInt(ctx.Limit, 10))
		headers.Set("X-RateLimit-Remaining", strconv.FormatInt(ctx.Remaining, 10))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(ctx.Reset, 10))

		if ctx.Reached {
			common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
