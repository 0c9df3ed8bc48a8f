package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"roomstay/internal/domain"
	"roomstay/internal/models"
)

const bookingColumns = `b.id, b.room_id, b.user_id, b.start_date, b.end_date, b.created_at, b.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner, extra ...any) (*models.Booking, error) {
	var b models.Booking
	dest := append([]any{
		&b.ID, &b.RoomID, &b.UserID, &b.StartDate, &b.EndDate, &b.CreatedAt, &b.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &b, nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = ?`
	b, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get booking %d: %w", id, translate(err))
	}
	return b, nil
}

func (db *DB) GetRoomBookings(ctx context.Context, roomID int64) ([]*models.Booking, error) {
	return queryRoomBookings(ctx, db.DB, roomID)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryRoomBookings(ctx context.Context, q querier, roomID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.room_id = ? ORDER BY b.start_date`
	rows, err := q.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("query room bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// GetRoomBookingsWithUsers returns the bookings of a room with their guests.
func (db *DB) GetRoomBookingsWithUsers(ctx context.Context, roomID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `, u.id, u.first_name, u.last_name
        FROM bookings b
        JOIN users u ON u.id = b.user_id
        WHERE b.room_id = ?
        ORDER BY b.start_date`

	rows, err := db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("query room bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		var u models.UserSummary
		b, err := scanBooking(rows, &u.ID, &u.FirstName, &u.LastName)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		b.User = &u
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// GetUserBookings returns the caller's bookings with a summary of each room.
func (db *DB) GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `,
            r.id, r.owner_id, r.address, r.city, r.state, r.country, r.lat, r.lng, r.name, r.price, r.preview_image
        FROM bookings b
        JOIN rooms r ON r.id = b.room_id
        WHERE b.user_id = ?
        ORDER BY b.start_date DESC`

	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query user bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		var r models.RoomSummary
		b, err := scanBooking(rows,
			&r.ID, &r.OwnerID, &r.Address, &r.City, &r.State, &r.Country, &r.Lat, &r.Lng, &r.Name, &r.Price, &r.PreviewImage)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		b.Room = &r
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// CreateBookingWithLock reads the room's bookings, runs guard and inserts
// booking in one immediate transaction. A guard error aborts the insert and
// is returned unchanged.
func (db *DB) CreateBookingWithLock(ctx context.Context, booking *models.Booking, guard domain.BookingGuard) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := queryRoomBookings(ctx, tx, booking.RoomID)
		if err != nil {
			return fmt.Errorf("failed to check availability in tx: %w", err)
		}
		if guard != nil {
			if err := guard(existing); err != nil {
				return err
			}
		}

		now := time.Now()
		result, err := tx.ExecContext(ctx,
			`INSERT INTO bookings (room_id, user_id, start_date, end_date, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, ?)`,
			booking.RoomID, booking.UserID, booking.StartDate, booking.EndDate, now, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert booking in tx: %w", translate(err))
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id in tx: %w", err)
		}
		booking.ID = id
		booking.CreatedAt = now
		booking.UpdatedAt = now
		return nil
	})
}

// UpdateBookingDatesWithLock moves booking to its new dates under the same
// transaction discipline as CreateBookingWithLock.
func (db *DB) UpdateBookingDatesWithLock(ctx context.Context, booking *models.Booking, guard domain.BookingGuard) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := queryRoomBookings(ctx, tx, booking.RoomID)
		if err != nil {
			return fmt.Errorf("failed to check availability in tx: %w", err)
		}
		if guard != nil {
			if err := guard(existing); err != nil {
				return err
			}
		}

		now := time.Now()
		result, err := tx.ExecContext(ctx,
			`UPDATE bookings SET start_date = ?, end_date = ?, updated_at = ? WHERE id = ?`,
			booking.StartDate, booking.EndDate, now, booking.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update booking in tx: %w", translate(err))
		}
		if n, err := result.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("update booking %d: %w", booking.ID, ErrNotFound)
		}
		booking.UpdatedAt = now
		return nil
	})
}

func (db *DB) DeleteBooking(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete booking %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete booking %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete booking %d: %w", id, ErrNotFound)
	}
	return nil
}

// IsNotFound reports whether err is a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
