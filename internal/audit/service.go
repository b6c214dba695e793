package audit

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-room-bookings/internal/bookings"
	kafkax "github.com/ariefcatur/go-room-bookings/internal/kafka"
	"github.com/ariefcatur/go-room-bookings/internal/logger"
	"github.com/ariefcatur/go-room-bookings/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// Recorder persists one booking event; *bookings.AuditRepo implements it.
type Recorder interface {
	Record(ctx context.Context, env bookings.Envelope) error
}

type Service struct {
	Recorder    Recorder
	Redis       *redis.Client      // optional, dedup by event id
	Cache       bookings.ListCache // optional, dropped after every write event
	Log         *logger.Logger
	ServiceName string
}

// HandleBookingEvent is the consumer handler for TopicBookingEvents.
func (s *Service) HandleBookingEvent(ctx context.Context, m kafkago.Message) error {
	var env bookings.Envelope
	if err := kafkax.UnmarshalEnvelope(m.Value, &env); err != nil {
		return err
	}
	if !bookings.IsBookingEvent(env.EventType) {
		return nil
	}
	if err := checkPayload(env); err != nil {
		s.log().Warn("malformed event", logger.Event(env.EventID), logger.Error(err))
		return err
	}

	if s.Redis != nil {
		first, err := redisx.MarkOnce(ctx, s.Redis, s.ServiceName, env.EventID)
		if err != nil {
			s.log().Warn("dedup unavailable", logger.Event(env.EventID), logger.Error(err))
		} else if !first {
			s.log().Debug("duplicate event skipped", logger.Event(env.EventID))
			return nil
		}
	}

	if err := s.Recorder.Record(ctx, env); err != nil {
		if s.Redis != nil {
			_ = redisx.Unmark(ctx, s.Redis, s.ServiceName, env.EventID)
		}
		return err
	}

	// another API replica may have served a stale list
	if s.Cache != nil {
		s.Cache.Invalidate(ctx)
	}
	s.log().Info("event recorded",
		logger.Event(env.EventID),
		logger.Action(env.EventType),
		logger.Booking(env.CorrelationID),
	)
	return nil
}

// checkPayload decodes the typed payload of env and checks that it names a booking.
func checkPayload(env bookings.Envelope) error {
	var bookingID string
	switch env.EventType {
	case bookings.EventBookingCreated:
		p, err := kafkax.UnwrapPayload[bookings.BookingCreatedPayload](env.Payload)
		if err != nil {
			return err
		}
		bookingID = p.Booking.ID
	case bookings.EventBookingDeleted:
		p, err := kafkax.UnwrapPayload[bookings.BookingDeletedPayload](env.Payload)
		if err != nil {
			return err
		}
		bookingID = p.BookingID
	case bookings.EventBookingSplit:
		p, err := kafkax.UnwrapPayload[bookings.BookingSplitPayload](env.Payload)
		if err != nil {
			return err
		}
		if p.Outcome == "" {
			return fmt.Errorf("%s %s: missing outcome", env.EventType, env.EventID)
		}
		bookingID = p.Original.ID
	}
	if bookingID == "" {
		return fmt.Errorf("%s %s: payload has no booking id", env.EventType, env.EventID)
	}
	if env.CorrelationID != "" && env.CorrelationID != bookingID {
		return fmt.Errorf("%s %s: payload booking %s does not match %s", env.EventType, env.EventID, bookingID, env.CorrelationID)
	}
	return nil
}

func (s *Service) log() *logger.Logger {
	if s.Log == nil {
		return logger.Discard()
	}
	return s.Log
}
