package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ariefcatur/go-room-bookings/internal/bookings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func draft(t *testing.T, room, start, end string) bookings.Draft {
	t.Helper()
	s, err := bookings.ParseDate(start)
	require.NoError(t, err)
	e, err := bookings.ParseDate(end)
	require.NoError(t, err)
	return bookings.Draft{RoomID: room, Name: "Alice", StartDate: s, EndDate: e}
}

func TestOpenDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	s, err := Open(dir)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	_, err = os.Stat(filepath.Join(dir, "bookings.db"))
	assert.NoError(t, err)
}

func TestInsertAndGet(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	id, err := s.Insert(ctx, draft(t, "room-1", "2025-04-10", "2025-04-15"))
	require.NoError(t, err)

	b, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, b.ID)
	assert.Equal(t, "room-1", b.RoomID)
	assert.Equal(t, "Alice", b.Name)
	assert.Equal(t, "2025-04-10", b.StartDate.String())
	assert.Equal(t, "2025-04-15", b.EndDate.String())

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, bookings.ErrNotFound)
}

func TestListEmpty(t *testing.T) {
	all, err := openTemp(t).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	id, err := s.Insert(ctx, draft(t, "room-1", "2025-04-10", "2025-04-15"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, id))
	assert.ErrorIs(t, s.Delete(ctx, id), bookings.ErrNotFound)
}

func TestReplace(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	keep, err := s.Insert(ctx, draft(t, "room-2", "2025-06-01", "2025-06-03"))
	require.NoError(t, err)
	id, err := s.Insert(ctx, draft(t, "room-1", "2025-04-10", "2025-04-15"))
	require.NoError(t, err)

	ids, err := s.Replace(ctx, id, []bookings.Draft{
		draft(t, "room-1", "2025-04-10", "2025-04-11"),
		draft(t, "room-1", "2025-04-14", "2025-04-15"),
	})
	require.NoError(t, err)
	require.Len(t, ids, 2)

	all, err := s.List(ctx)
	require.NoError(t, err)
	got := make([]string, 0, len(all))
	for _, b := range all {
		got = append(got, b.ID)
	}
	assert.ElementsMatch(t, []string{keep, ids[0], ids[1]}, got)

	_, err = s.Replace(ctx, id, nil)
	assert.ErrorIs(t, err, bookings.ErrConflict)
}

func TestReplaceInvalidDraftKeepsOriginal(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	id, err := s.Insert(ctx, draft(t, "room-1", "2025-04-10", "2025-04-15"))
	require.NoError(t, err)

	_, err = s.Replace(ctx, id, []bookings.Draft{{RoomID: "room-1"}})
	assert.ErrorIs(t, err, bookings.ErrValidation)

	b, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "2025-04-10..2025-04-15", b.Range().String())
}

func TestReplaceToNothing(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	id, err := s.Insert(ctx, draft(t, "room-1", "2025-04-10", "2025-04-10"))
	require.NoError(t, err)

	ids, err := s.Replace(ctx, id, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestReopenKeepsRows(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.db")

	s, err := Open(path)
	require.NoError(t, err)
	id, err := s.Insert(ctx, draft(t, "room-1", "2025-04-10", "2025-04-12"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	b, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "room-1", b.RoomID)
}

func TestReplaceRollsBackWhenAnInsertFails(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	id, err := s.Insert(ctx, draft(t, "room-1", "2025-04-10", "2025-04-15"))
	require.NoError(t, err)

	_, err = s.db.ExecContext(ctx, `
		CREATE TRIGGER fail_second_half BEFORE INSERT ON bookings
		WHEN NEW.start_date = '2025-04-14'
		BEGIN SELECT RAISE(ABORT, 'boom'); END;`)
	require.NoError(t, err)

	_, err = s.Replace(ctx, id, []bookings.Draft{
		draft(t, "room-1", "2025-04-10", "2025-04-11"),
		draft(t, "room-1", "2025-04-14", "2025-04-15"),
	})
	var se *bookings.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "replace", se.Op)
	assert.Contains(t, err.Error(), "boom")

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, id, all[0].ID)
	assert.Equal(t, "2025-04-10..2025-04-15", all[0].Range().String())
}
