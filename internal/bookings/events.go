package bookings

import (
	"encoding/json"
	"time"
)

const (
	EventBookingCreated = "BookingCreated"
	EventBookingDeleted = "BookingDeleted"
	EventBookingSplit   = "BookingSplit"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // one of the Event* consts
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"` // e.g. "booking-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // booking id
	Payload       json.RawMessage `json:"payload"`
}

// IsBookingEvent reports whether t is an event this service emits.
func IsBookingEvent(t string) bool {
	switch t {
	case EventBookingCreated, EventBookingDeleted, EventBookingSplit:
		return true
	}
	return false
}

type BookingCreatedPayload struct {
	Booking Booking `json:"booking"`
}

type BookingDeletedPayload struct {
	BookingID string `json:"booking_id"`
}

type BookingSplitPayload struct {
	Original     Booking   `json:"original"`
	DeletedDates []Date    `json:"deleted_dates"`
	Outcome      string    `json:"outcome"` // DELETE_ONLY | REPLACE_WITH_ONE | REPLACE_WITH_TWO
	Created      []Booking `json:"created,omitempty"`
}
