package bookings

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AuditRepo struct{ DB *pgxpool.Pool }

// Record stores one event. Replays of the same event id are ignored.
func (r *AuditRepo) Record(ctx context.Context, env Envelope) error {
	payload := []byte(env.Payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO booking_audit(event_id, event_type, booking_id, producer, occurred_at, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id) DO NOTHING`,
		env.EventID, env.EventType, env.CorrelationID, env.Producer, env.OccurredAt, payload,
	)
	return WrapStorage("audit", err)
}

// AuditEntry is one recorded booking event.
type AuditEntry struct {
	EventID    string    `json:"eventId"`
	EventType  string    `json:"eventType"`
	BookingID  string    `json:"bookingId"`
	Producer   string    `json:"producer"`
	OccurredAt time.Time `json:"occurredAt"`
}

// ListForBooking returns the audit trail of one booking, oldest first. The trail
// outlives the booking, so an unknown id gives an empty list.
func (r *AuditRepo) ListForBooking(ctx context.Context, bookingID string) ([]AuditEntry, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT event_id, event_type, booking_id, producer, occurred_at FROM booking_audit
		WHERE booking_id=$1 ORDER BY occurred_at, recorded_at`, bookingID)
	if err != nil {
		return nil, WrapStorage("audit list", err)
	}
	defer rows.Close()

	out := []AuditEntry{}
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.EventID, &e.EventType, &e.BookingID, &e.Producer, &e.OccurredAt); err != nil {
			return nil, WrapStorage("audit list", err)
		}
		out = append(out, e)
	}
	return out, WrapStorage("audit list", rows.Err())
}
