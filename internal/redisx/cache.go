package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-restaurant-reservations/internal/reservations"
	"github.com/redis/go-redis/v9"
)

// ReservationCache is a cache-aside copy of reservations plus the
// idempotency keys of create requests. The database stays the source of
// truth; a miss is never an error.
type ReservationCache struct {
	RDB redis.Cmdable
}

// Get returns the cached reservation and whether it was found.
func (c *ReservationCache) Get(ctx context.Context, id string) (reservations.Reservation, bool, error) {
	b, err := c.RDB.Get(ctx, fmt.Sprintf(KeyReservation, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return reservations.Reservation{}, false, nil
	}
	if err != nil {
		return reservations.Reservation{}, false, err
	}
	var r reservations.Reservation
	if err := json.Unmarshal(b, &r); err != nil {
		return reservations.Reservation{}, false, fmt.Errorf("decode cached reservation: %w", err)
	}
	return r, true, nil
}

func (c *ReservationCache) Set(ctx context.Context, r reservations.Reservation) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return c.RDB.Set(ctx, fmt.Sprintf(KeyReservation, r.ID), b, TTLReservationCache).Err()
}

func (c *ReservationCache) Evict(ctx context.Context, id string) error {
	return c.RDB.Del(ctx, fmt.Sprintf(KeyReservation, id)).Err()
}

// ClaimCreate atomically reserves an idempotency key for a create that is
// about to run. When the key is already held it reports the reservation id
// stored under it, or "" while the first create is still in flight.
func (c *ReservationCache) ClaimCreate(ctx context.Context, key string) (claimed bool, id string, err error) {
	k := fmt.Sprintf(KeyIdemReservationCreate, key)
	ok, err := c.RDB.SetNX(ctx, k, IdemPending, TTLIdempotencyPending).Result()
	if err != nil || ok {
		return ok, "", err
	}
	v, err := c.RDB.Get(ctx, k).Result()
	switch {
	case errors.Is(err, redis.Nil):
		// expired between SETNX and GET; the caller may retry
		return false, "", nil
	case err != nil:
		return false, "", err
	case v == IdemPending:
		return false, "", nil
	}
	return false, v, nil
}

// RememberCreate records that idempotency key produced reservation id.
func (c *ReservationCache) RememberCreate(ctx context.Context, key, id string) error {
	return c.RDB.Set(ctx, fmt.Sprintf(KeyIdemReservationCreate, key), id, TTLIdempotency).Err()
}

// ReleaseCreate drops a claim whose create failed.
func (c *ReservationCache) ReleaseCreate(ctx context.Context, key string) error {
	return c.RDB.Del(ctx, fmt.Sprintf(KeyIdemReservationCreate, key)).Err()
}

// Deduper remembers processed event ids for one consuming service.
type Deduper struct {
	RDB     redis.Cmdable
	Service string
}

// FirstSeen atomically marks id as processed and reports whether this call
// was the first to do so.
func (d *Deduper) FirstSeen(ctx context.Context, id string) (bool, error) {
	return d.RDB.SetNX(ctx, fmt.Sprintf(KeyDedup, d.Service, id), "1", TTLDedup).Result()
}

// Forget releases id so a redelivery is processed again.
func (d *Deduper) Forget(ctx context.Context, id string) error {
	return d.RDB.Del(ctx, fmt.Sprintf(KeyDedup, d.Service, id)).Err()
}
