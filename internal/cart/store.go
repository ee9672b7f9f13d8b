// Package cart keeps session-scoped carts in Redis. Carts are ephemeral,
// totals are always recomputed from current prices on read.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Item is one stored cart line. Price is never stored, only the variant
// reference and quantity, so a price change is picked up on the next read.
type Item struct {
	VariantID            string `json:"variantId"`
	ProductName          string `json:"productName"`
	SKU                  string `json:"sku"`
	Quantity             int    `json:"quantity"`
	RequiresInstallation bool   `json:"requiresInstallation"`
}

// Cart is the persisted session state.
type Cart struct {
	SessionID string    `json:"sessionId"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store reads and writes carts with a sliding TTL.
type Store struct {
	R   *redis.Client
	TTL time.Duration
}

func cartKey(sessionID string) string { return "cart:" + sessionID }

// Get loads the cart for a session. A missing key yields an empty cart.
func (s Store) Get(ctx context.Context, sessionID string) (Cart, error) {
	raw, err := s.R.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Cart{SessionID: sessionID, Items: []Item{}}, nil
	}
	if err != nil {
		return Cart{}, err
	}
	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return Cart{SessionID: sessionID, Items: []Item{}}, nil
	}
	c.SessionID = sessionID
	if c.Items == nil {
		c.Items = []Item{}
	}
	return c, nil
}

// Save persists the cart and refreshes its TTL.
func (s Store) Save(ctx context.Context, c Cart) error {
	c.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.R.Set(ctx, cartKey(c.SessionID), raw, s.TTL).Err()
}

// Delete removes the cart for a session.
func (s Store) Delete(ctx context.Context, sessionID string) error {
	return s.R.Del(ctx, cartKey(sessionID)).Err()
}
