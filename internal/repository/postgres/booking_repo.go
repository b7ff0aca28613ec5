package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"eventbooking/internal/domain"
)

type bookingRepository struct {
	conn Connector
}

func NewBookingRepository(conn Connector) domain.BookingRepository {
	return &bookingRepository{
		conn: conn,
	}
}

// Create relies on the bookings (event_id, email) unique constraint; a violation
// is reported as domain.ErrAlreadyBooked, a missing event as domain.ErrNotFound.
func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	db, err := r.conn.Conn(ctx)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO bookings (event_id, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err = db.QueryRowContext(ctx, query, b.EventID, b.Email, b.CreatedAt, b.UpdatedAt).Scan(&b.ID)
	if err != nil {
		var perr *pq.Error
		if errors.As(err, &perr) {
			switch perr.Code {
			case uniqueViolation:
				return domain.ErrAlreadyBooked
			case foreignKeyViolation:
				return domain.ErrNotFound
			}
		}
		return storageErr("insert booking", err)
	}
	return nil
}

func (r *bookingRepository) CountByEventID(ctx context.Context, eventID uuid.UUID) (int, error) {
	db, err := r.conn.Conn(ctx)
	if err != nil {
		return 0, err
	}
	var count int
	query := `SELECT COUNT(*) FROM bookings WHERE event_id = $1`
	if err := db.QueryRowContext(ctx, query, eventID).Scan(&count); err != nil {
		return 0, storageErr("count bookings", err)
	}
	return count, nil
}
