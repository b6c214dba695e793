package redisx

import "time"

const (
	// Cached GET /bookings body: bookings:list -> JSON array
	KeyBookingList = "bookings:list"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLBookingList = 30 * time.Second
	TTLDedup       = 48 * time.Hour
)
