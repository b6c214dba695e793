package redisx

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ariefcatur/go-room-bookings/internal/bookings"
	"github.com/ariefcatur/go-room-bookings/internal/logger"
	"github.com/redis/go-redis/v9"
)

// ListCache caches the booking list. Redis failures degrade to cache misses;
// the store stays the source of truth.
type ListCache struct {
	RDB *redis.Client
	Log *logger.Logger
}

var _ bookings.ListCache = (*ListCache)(nil)

func (c *ListCache) Get(ctx context.Context) ([]bookings.Booking, bool) {
	b, err := c.RDB.Get(ctx, KeyBookingList).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.warn("cache get", err)
		}
		return nil, false
	}
	var bs []bookings.Booking
	if err := json.Unmarshal(b, &bs); err != nil {
		c.warn("cache decode", err)
		return nil, false
	}
	return bs, true
}

func (c *ListCache) Put(ctx context.Context, bs []bookings.Booking) {
	b, err := json.Marshal(bs)
	if err != nil {
		c.warn("cache encode", err)
		return
	}
	if err := c.RDB.Set(ctx, KeyBookingList, b, TTLBookingList).Err(); err != nil {
		c.warn("cache put", err)
	}
}

func (c *ListCache) Invalidate(ctx context.Context) {
	if err := c.RDB.Del(ctx, KeyBookingList).Err(); err != nil {
		c.warn("cache invalidate", err)
	}
}

func (c *ListCache) warn(msg string, err error) {
	if c.Log != nil {
		c.Log.Warn(msg, logger.Error(err))
	}
}
