package bookings

import "context"

// Store is durable CRUD over bookings. Implementations: Repo (postgres),
// sqlite.Store and memstore.Store.
type Store interface {
	List(ctx context.Context) ([]Booking, error)
	Get(ctx context.Context, id string) (Booking, error)
	Insert(ctx context.Context, d Draft) (string, error)
	// Delete returns ErrNotFound when no row had the id.
	Delete(ctx context.Context, id string) error
	// Replace deletes id and inserts drafts in one transaction and returns the new ids.
	// If id no longer exists it returns ErrConflict and changes nothing.
	Replace(ctx context.Context, id string, drafts []Draft) ([]string, error)
}

// ValidateDrafts checks every draft before a store opens a transaction.
func ValidateDrafts(drafts []Draft) error {
	for _, d := range drafts {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}
