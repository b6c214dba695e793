// Package memstore keeps bookings in process memory. It backs STORE_DRIVER=memory
// and the handler tests.
package memstore

import (
	"context"
	"sync"

	"github.com/ariefcatur/go-room-bookings/internal/bookings"
	"github.com/google/uuid"
)

type Store struct {
	mu    sync.RWMutex
	rows  map[string]bookings.Booking
	order []string // insertion order
}

var _ bookings.Store = (*Store)(nil)

func New() *Store {
	return &Store{rows: map[string]bookings.Booking{}}
}

func (s *Store) List(_ context.Context) ([]bookings.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]bookings.Booking, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.rows[id])
	}
	return out, nil
}

func (s *Store) Get(_ context.Context, id string) (bookings.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.rows[id]
	if !ok {
		return bookings.Booking{}, bookings.ErrNotFound
	}
	return b, nil
}

func (s *Store) Insert(_ context.Context, d bookings.Draft) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(d), nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.deleteLocked(id) {
		return bookings.ErrNotFound
	}
	return nil
}

// Replace validates everything before touching the map, so it either applies fully or not at all.
func (s *Store) Replace(ctx context.Context, id string, drafts []bookings.Draft) ([]string, error) {
	if err := bookings.ValidateDrafts(drafts); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, bookings.WrapStorage("replace", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.deleteLocked(id) {
		return nil, bookings.ErrConflict
	}
	ids := make([]string, 0, len(drafts))
	for _, d := range drafts {
		ids = append(ids, s.insertLocked(d))
	}
	return ids, nil
}

func (s *Store) insertLocked(d bookings.Draft) string {
	id := uuid.NewString()
	s.rows[id] = d.Booking(id)
	s.order = append(s.order, id)
	return id
}

func (s *Store) deleteLocked(id string) bool {
	if _, ok := s.rows[id]; !ok {
		return false
	}
	delete(s.rows, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}
