package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"openhouse/internal/models"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// ListBookings returns every booking, oldest first.
func (db *DB) ListBookings(ctx context.Context) ([]models.Booking, error) {
	query := `SELECT id, slot_id, name, email, phone, notes, booked_at FROM bookings ORDER BY booked_at, id`

	rows, err := db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var booking models.Booking
		if err := rows.Scan(
			&booking.ID,
			&booking.SlotID,
			&booking.Name,
			&booking.Email,
			&booking.Phone,
			&booking.Notes,
			&booking.BookedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bookings: %w", err)
	}

	return bookings, nil
}

// InsertBooking creates a booking as one atomic operation. The slot must
// still exist, and the unique index on slot_id decides booking races: the
// loser gets models.ErrSlotTaken regardless of what its local mirror said.
func (db *DB) InsertBooking(ctx context.Context, booking *models.Booking) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM slots WHERE id = ?`, booking.SlotID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check slot: %w", err)
	}
	if exists == 0 {
		return models.ErrSlotNotFound
	}

	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.BookedAt.IsZero() {
		booking.BookedAt = time.Now()
	}

	query := `INSERT INTO bookings (id, slot_id, name, email, phone, notes, booked_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, query,
		booking.ID,
		booking.SlotID,
		booking.Name,
		booking.Email,
		booking.Phone,
		booking.Notes,
		booking.BookedAt,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return models.ErrSlotTaken
		}
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	return tx.Commit()
}

// DeleteBooking removes a booking, freeing its slot.
func (db *DB) DeleteBooking(ctx context.Context, id string) error {
	result, err := db.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count deleted bookings: %w", err)
	}
	if affected == 0 {
		return models.ErrBookingNotFound
	}

	return nil
}
