package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the postgres Store.
type Repo struct{ DB *pgxpool.Pool }

var _ Store = (*Repo)(nil)

const selectBookings = `SELECT id, room_id, name, start_date, end_date FROM bookings`

func (r *Repo) List(ctx context.Context) ([]Booking, error) {
	rows, err := r.DB.Query(ctx, selectBookings+` ORDER BY created_at, id`)
	if err != nil {
		return nil, WrapStorage("list", err)
	}
	defer rows.Close()

	out := []Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, WrapStorage("list", err)
		}
		out = append(out, b)
	}
	return out, WrapStorage("list", rows.Err())
}

func (r *Repo) Get(ctx context.Context, id string) (Booking, error) {
	b, err := scanBooking(r.DB.QueryRow(ctx, selectBookings+` WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Booking{}, ErrNotFound
	}
	return b, WrapStorage("get", err)
}

func (r *Repo) Insert(ctx context.Context, d Draft) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	if _, err := r.DB.Exec(ctx, `
		INSERT INTO bookings(id, room_id, name, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)`,
		id, d.RoomID, d.Name, d.StartDate.Time(), d.EndDate.Time(),
	); err != nil {
		return "", WrapStorage("insert", err)
	}
	return id, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, id)
	if err != nil {
		return WrapStorage("delete", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Replace: delete + insert(s) in one tx. Any error rolls back via defer.
func (r *Repo) Replace(ctx context.Context, id string, drafts []Draft) ([]string, error) {
	if err := ValidateDrafts(drafts); err != nil {
		return nil, err
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, WrapStorage("replace", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, id)
	if err != nil {
		return nil, WrapStorage("replace", err)
	}
	if ct.RowsAffected() != 1 {
		return nil, ErrConflict
	}

	ids := make([]string, 0, len(drafts))
	for _, d := range drafts {
		newID := uuid.NewString()
		if _, err := tx.Exec(ctx, `
			INSERT INTO bookings(id, room_id, name, start_date, end_date)
			VALUES ($1, $2, $3, $4, $5)`,
			newID, d.RoomID, d.Name, d.StartDate.Time(), d.EndDate.Time(),
		); err != nil {
			return nil, WrapStorage("replace", err)
		}
		ids = append(ids, newID)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, WrapStorage("replace", err)
	}
	return ids, nil
}

func scanBooking(row pgx.Row) (Booking, error) {
	var (
		b          Booking
		start, end time.Time
	)
	if err := row.Scan(&b.ID, &b.RoomID, &b.Name, &start, &end); err != nil {
		return Booking{}, err
	}
	b.StartDate, b.EndDate = DateOf(start), DateOf(end)
	return b, nil
}
