package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gearshare/apiserver/types"
)

// BookingRepository handles persistence for bookings.
type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingSelect = `
	SELECT b.id, b.start_at, b.end_at, b.status, b.item_id, i.name, i.owner_id, b.booker_id
	FROM bookings b
	JOIN items i ON i.id = b.item_id`

func scanBooking(row interface{ Scan(...any) error }) (types.Booking, error) {
	var booking types.Booking
	err := row.Scan(
		&booking.ID,
		&booking.Start,
		&booking.End,
		&booking.Status,
		&booking.Item.ID,
		&booking.Item.Name,
		&booking.Item.OwnerID,
		&booking.Booker.ID,
	)
	return booking, err
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (types.Booking, error) {
	const query = bookingSelect + `
	WHERE b.id = $1`
	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Booking{}, ErrNotFound
		}
		return types.Booking{}, err
	}
	return booking, nil
}

func (r *BookingRepository) Create(ctx context.Context, booking types.Booking) (types.Booking, error) {
	const query = `
		INSERT INTO bookings (start_at, end_at, item_id, booker_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		booking.Start,
		booking.End,
		booking.Item.ID,
		booking.Booker.ID,
		booking.Status,
	).Scan(&booking.ID); err != nil {
		return types.Booking{}, err
	}
	return booking, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status types.BookingStatus) error {
	const query = `
		UPDATE bookings
		SET status = $1
		WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByBooker returns the booker's bookings in the given state bucket.
func (r *BookingRepository) ListByBooker(ctx context.Context, bookerID int64, state types.BookingState, now time.Time, offset, limit int) ([]types.Booking, error) {
	return r.list(ctx, "b.booker_id", bookerID, state, now, offset, limit)
}

// ListByOwner returns bookings on items owned by the user, in the given
// state bucket.
func (r *BookingRepository) ListByOwner(ctx context.Context, ownerID int64, state types.BookingState, now time.Time, offset, limit int) ([]types.Booking, error) {
	return r.list(ctx, "i.owner_id", ownerID, state, now, offset, limit)
}

func (r *BookingRepository) list(ctx context.Context, userColumn string, userID int64, state types.BookingState, now time.Time, offset, limit int) ([]types.Booking, error) {
	where := fmt.Sprintf("WHERE %s = $1", userColumn)
	order := "ORDER BY b.id"
	args := []any{userID}

	switch state {
	case types.StateAll:
		order = "ORDER BY b.start_at DESC"
	case types.StateCurrent:
		where += " AND b.start_at <= $2 AND b.end_at > $2"
		args = append(args, now)
	case types.StatePast:
		where += " AND b.end_at < $2"
		args = append(args, now)
	case types.StateFuture:
		where += " AND b.start_at > $2"
		args = append(args, now)
		order = "ORDER BY b.start_at DESC"
	case types.StateWaiting, types.StateRejected:
		where += " AND b.status = $2"
		args = append(args, types.BookingStatus(state))
	default:
		return nil, fmt.Errorf("unsupported booking state %q", state)
	}

	query := fmt.Sprintf("%s\n\t%s\n\t%s\n\tOFFSET $%d LIMIT $%d",
		bookingSelect, where, order, len(args)+1, len(args)+2)
	args = append(args, offset, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]types.Booking, 0, limit)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

// LastForItem finds the item's most recently finished booking.
func (r *BookingRepository) LastForItem(ctx context.Context, itemID int64, now time.Time) (types.BookingRef, error) {
	const query = `
		SELECT id, booker_id, start_at, end_at
		FROM bookings
		WHERE item_id = $1 AND end_at < $2
		ORDER BY end_at DESC
		LIMIT 1`
	return r.queryRef(ctx, query, itemID, now)
}

// NextForItem finds the item's nearest upcoming booking.
func (r *BookingRepository) NextForItem(ctx context.Context, itemID int64, now time.Time) (types.BookingRef, error) {
	const query = `
		SELECT id, booker_id, start_at, end_at
		FROM bookings
		WHERE item_id = $1 AND start_at > $2
		ORDER BY start_at
		LIMIT 1`
	return r.queryRef(ctx, query, itemID, now)
}

// ExistsFinished reports whether the user has a booking of the item whose
// end time is already in the past.
func (r *BookingRepository) ExistsFinished(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE booker_id = $1 AND item_id = $2 AND end_at < $3
		)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, bookerID, itemID, now).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *BookingRepository) queryRef(ctx context.Context, query string, args ...any) (types.BookingRef, error) {
	var ref types.BookingRef
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&ref.ID, &ref.BookerID, &ref.Start, &ref.End)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.BookingRef{}, ErrNotFound
		}
		return types.BookingRef{}, err
	}
	return ref, nil
}
