package audit

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ariefcatur/go-room-bookings/internal/bookings"
	kafkax "github.com/ariefcatur/go-room-bookings/internal/kafka"
	"github.com/ariefcatur/go-room-bookings/internal/logger"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	got []bookings.Envelope
	err error
}

func (r *fakeRecorder) Record(_ context.Context, env bookings.Envelope) error {
	if r.err != nil {
		return r.err
	}
	r.got = append(r.got, env)
	return nil
}

type fakeCache struct{ invalidated int }

func (*fakeCache) Get(context.Context) ([]bookings.Booking, bool) { return nil, false }
func (*fakeCache) Put(context.Context, []bookings.Booking)        {}
func (c *fakeCache) Invalidate(context.Context)                   { c.invalidated++ }

func payloadFor(eventType string) any {
	switch eventType {
	case bookings.EventBookingCreated:
		return bookings.BookingCreatedPayload{Booking: bookings.Booking{ID: "b1", RoomID: "r"}}
	case bookings.EventBookingSplit:
		return bookings.BookingSplitPayload{Original: bookings.Booking{ID: "b1", RoomID: "r"}, Outcome: "DELETE_ONLY"}
	}
	return bookings.BookingDeletedPayload{BookingID: "b1"}
}

func message(t *testing.T, eventType string) kafkago.Message {
	t.Helper()
	return messageWithPayload(t, eventType, kafkax.MustMarshal(payloadFor(eventType)))
}

func messageWithPayload(t *testing.T, eventType string, payload []byte) kafkago.Message {
	t.Helper()
	env := bookings.Envelope{
		EventID:       "ev-1",
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      "booking-api",
		CorrelationID: "b1",
		Payload:       payload,
	}
	return kafkago.Message{Key: bookings.PartitionKey("b1"), Value: kafkax.MustMarshal(env)}
}

func TestHandleBookingEventRecords(t *testing.T) {
	rec := &fakeRecorder{}
	cache := &fakeCache{}
	var logs bytes.Buffer
	svc := &Service{Recorder: rec, Cache: cache, Log: logger.NewWithWriter(&logs)}

	require.NoError(t, svc.HandleBookingEvent(context.Background(), message(t, bookings.EventBookingDeleted)))
	require.Len(t, rec.got, 1)
	assert.Equal(t, "ev-1", rec.got[0].EventID)
	assert.Equal(t, "b1", rec.got[0].CorrelationID)
	assert.Equal(t, 1, cache.invalidated)
	assert.Contains(t, logs.String(), "MESSAGE=event recorded EVENT=ev-1 ACTION=BookingDeleted BOOKING=b1")
}

func TestHandleBookingEventIgnoresOtherEvents(t *testing.T) {
	rec := &fakeRecorder{}
	svc := &Service{Recorder: rec}
	require.NoError(t, svc.HandleBookingEvent(context.Background(), message(t, "OrderCreated")))
	assert.Empty(t, rec.got)
}

func TestHandleBookingEventBadPayload(t *testing.T) {
	svc := &Service{Recorder: &fakeRecorder{}}
	err := svc.HandleBookingEvent(context.Background(), kafkago.Message{Value: []byte("not json")})
	assert.ErrorContains(t, err, "decode envelope")
}

func TestHandleBookingEventRecorderFailure(t *testing.T) {
	cache := &fakeCache{}
	svc := &Service{Recorder: &fakeRecorder{err: errors.New("db down")}, Cache: cache}
	err := svc.HandleBookingEvent(context.Background(), message(t, bookings.EventBookingSplit))
	assert.EqualError(t, err, "db down")
	assert.Zero(t, cache.invalidated)
}

func TestHandleBookingEventAcceptsEveryType(t *testing.T) {
	for _, typ := range []string{bookings.EventBookingCreated, bookings.EventBookingDeleted, bookings.EventBookingSplit} {
		rec := &fakeRecorder{}
		svc := &Service{Recorder: rec}
		require.NoError(t, svc.HandleBookingEvent(context.Background(), message(t, typ)), typ)
		assert.Len(t, rec.got, 1, typ)
	}
}

func TestHandleBookingEventRejectsMalformedPayload(t *testing.T) {
	tests := []struct {
		name      string
		eventType string
		payload   []byte
		wantErr   string
	}{
		{"not an object", bookings.EventBookingCreated, []byte(`[1,2]`), "decode payload"},
		{"bad date", bookings.EventBookingCreated, []byte(`{"booking":{"id":"b1","startDate":"yesterday"}}`), "decode payload"},
		{"no booking id", bookings.EventBookingDeleted, []byte(`{}`), "payload has no booking id"},
		{"split without outcome", bookings.EventBookingSplit, []byte(`{"original":{"id":"b1"}}`), "missing outcome"},
		{"id mismatch", bookings.EventBookingDeleted, []byte(`{"booking_id":"other"}`), "does not match b1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecorder{}
			cache := &fakeCache{}
			svc := &Service{Recorder: rec, Cache: cache}
			err := svc.HandleBookingEvent(context.Background(), messageWithPayload(t, tt.eventType, tt.payload))
			assert.ErrorContains(t, err, tt.wantErr)
			assert.Empty(t, rec.got)
			assert.Zero(t, cache.invalidated)
		})
	}
}
