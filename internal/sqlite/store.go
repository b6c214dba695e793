package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ariefcatur/go-room-bookings/internal/bookings"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store keeps bookings in a single SQLite file.
type Store struct {
	db *sql.DB
}

var _ bookings.Store = (*Store)(nil)

func Open(path string) (*Store, error) {
	dbPath, err := resolveDBPath(path)
	if err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, errors.Join(err, cerr)
		}
		return nil, err
	}

	return &Store{db: db}, nil
}

// resolveDBPath accepts a *.db file or a directory, in which case bookings.db is used inside it.
func resolveDBPath(path string) (string, error) {
	abs := filepath.Clean(path)
	if strings.HasSuffix(abs, ".db") {
		if err := os.MkdirAll(filepath.Dir(abs), 0o750); err != nil {
			return "", err
		}
		return abs, nil
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return "", err
	}
	return filepath.Join(abs, "bookings.db"), nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bookings (
			id TEXT PRIMARY KEY,
			room_id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL,
			CHECK (start_date <= end_date)
		);`,
		"CREATE INDEX IF NOT EXISTS idx_bookings_room ON bookings(room_id, start_date);",
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const selectBookings = `SELECT id, room_id, name, start_date, end_date FROM bookings`

func (s *Store) List(ctx context.Context) ([]bookings.Booking, error) {
	rows, err := s.db.QueryContext(ctx, selectBookings)
	if err != nil {
		return nil, bookings.WrapStorage("list", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	out := []bookings.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, bookings.WrapStorage("list", err)
		}
		out = append(out, b)
	}
	return out, bookings.WrapStorage("list", rows.Err())
}

func (s *Store) Get(ctx context.Context, id string) (bookings.Booking, error) {
	b, err := scanBooking(s.db.QueryRowContext(ctx, selectBookings+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return bookings.Booking{}, bookings.ErrNotFound
	}
	return b, bookings.WrapStorage("get", err)
}

func (s *Store) Insert(ctx context.Context, d bookings.Draft) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	if err := insert(ctx, s.db, id, d); err != nil {
		return "", bookings.WrapStorage("insert", err)
	}
	return id, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return bookings.WrapStorage("delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return bookings.WrapStorage("delete", err)
	}
	if n == 0 {
		return bookings.ErrNotFound
	}
	return nil
}

func (s *Store) Replace(ctx context.Context, id string, drafts []bookings.Draft) ([]string, error) {
	if err := bookings.ValidateDrafts(drafts); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, bookings.WrapStorage("replace", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return nil, bookings.WrapStorage("replace", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, bookings.WrapStorage("replace", err)
	} else if n != 1 {
		return nil, bookings.ErrConflict
	}

	ids := make([]string, 0, len(drafts))
	for _, d := range drafts {
		newID := uuid.NewString()
		if err := insert(ctx, tx, newID, d); err != nil {
			return nil, bookings.WrapStorage("replace", err)
		}
		ids = append(ids, newID)
	}

	if err := tx.Commit(); err != nil {
		return nil, bookings.WrapStorage("replace", err)
	}
	return ids, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insert(ctx context.Context, db execer, id string, d bookings.Draft) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO bookings (id, room_id, name, start_date, end_date) VALUES (?, ?, ?, ?, ?)`,
		id, d.RoomID, d.Name, d.StartDate.String(), d.EndDate.String())
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(row scanner) (bookings.Booking, error) {
	var (
		b          bookings.Booking
		start, end string
	)
	if err := row.Scan(&b.ID, &b.RoomID, &b.Name, &start, &end); err != nil {
		return bookings.Booking{}, err
	}
	var err error
	if b.StartDate, err = bookings.ParseDate(start); err != nil {
		return bookings.Booking{}, fmt.Errorf("row %s: bad start_date %q", b.ID, start)
	}
	if b.EndDate, err = bookings.ParseDate(end); err != nil {
		return bookings.Booking{}, fmt.Errorf("row %s: bad end_date %q", b.ID, end)
	}
	return b, nil
}
