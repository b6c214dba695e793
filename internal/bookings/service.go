package bookings

import (
	"context"
	"sync/atomic"
	"time"

	kafkax "github.com/ariefcatur/go-room-bookings/internal/kafka"
	"github.com/ariefcatur/go-room-bookings/internal/logger"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// ListCache holds the result of List between writes.
type ListCache interface {
	Get(ctx context.Context) ([]Booking, bool)
	Put(ctx context.Context, bs []Booking)
	Invalidate(ctx context.Context)
}

// Service wires a Store to the optional cache and event producer.
type Service struct {
	Store       Store
	Producer    Publisher // nil disables events
	Cache       ListCache // nil disables caching
	Log         *logger.Logger
	ServiceName string

	writes atomic.Uint64 // bumped on every invalidate
}

type SplitResult struct {
	Outcome Outcome
	IDs     []string
}

func (s *Service) List(ctx context.Context) ([]Booking, error) {
	if s.Cache != nil {
		if bs, ok := s.Cache.Get(ctx); ok {
			return bs, nil
		}
	}
	gen := s.writes.Load()
	bs, err := s.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		s.Cache.Put(ctx, bs)
		// a write landed between the read and the Put; bs may already be stale
		if s.writes.Load() != gen {
			s.Cache.Invalidate(ctx)
		}
	}
	return bs, nil
}

func (s *Service) Get(ctx context.Context, id string) (Booking, error) {
	return s.Store.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, d Draft, traceID string) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}
	id, err := s.Store.Insert(ctx, d)
	if err != nil {
		return "", err
	}
	s.invalidate(ctx)
	s.publish(EventBookingCreated, id, traceID, BookingCreatedPayload{Booking: d.Booking(id)})
	s.logger().Info("booking created", logger.Action("create"), logger.Booking(id), logger.Room(d.RoomID))
	return id, nil
}

func (s *Service) Delete(ctx context.Context, id, traceID string) error {
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.publish(EventBookingDeleted, id, traceID, BookingDeletedPayload{BookingID: id})
	s.logger().Info("booking deleted", logger.Action("delete"), logger.Booking(id))
	return nil
}

// Split removes dates from booking id. A rejected split leaves the store untouched;
// an accepted one replaces the booking in a single transaction.
func (s *Service) Split(ctx context.Context, id string, dates []Date, traceID string) (SplitResult, error) {
	orig, err := s.Store.Get(ctx, id)
	if err != nil {
		return SplitResult{}, err
	}

	out, err := Split(orig, dates)
	if err != nil {
		s.logger().Info("split rejected", logger.Action("split"), logger.Booking(id), logger.Reason(err.Error()))
		return SplitResult{}, err
	}

	drafts := out.Drafts(orig)
	ids, err := s.Store.Replace(ctx, id, drafts)
	if err != nil {
		s.logger().Error("split apply failed", logger.Action("split"), logger.Booking(id), logger.Error(err))
		return SplitResult{}, err
	}
	s.invalidate(ctx)

	created := make([]Booking, 0, len(ids))
	for i, newID := range ids {
		created = append(created, drafts[i].Booking(newID))
	}
	s.publish(EventBookingSplit, id, traceID, BookingSplitPayload{
		Original:     orig,
		DeletedDates: sortedUnique(dates),
		Outcome:      out.Kind().String(),
		Created:      created,
	})
	s.logger().Info("booking split",
		logger.Action("split"),
		logger.Booking(id),
		logger.Outcome(out.Kind().String()),
		logger.Count(len(ids)),
	)
	return SplitResult{Outcome: out, IDs: ids}, nil
}

func (s *Service) invalidate(ctx context.Context) {
	s.writes.Add(1)
	if s.Cache != nil {
		s.Cache.Invalidate(ctx)
	}
}

func (s *Service) publish(eventType, bookingID, traceID string, payload any) {
	if s.Producer == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       traceID,
		CorrelationID: bookingID,
		Payload:       kafkax.MustMarshal(payload),
	}
	s.Producer.Publish(PartitionKey(bookingID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (s *Service) logger() *logger.Logger {
	if s.Log == nil {
		return logger.Discard()
	}
	return s.Log
}
