package database

import (
	"context"
	"fmt"
	"time"

	"openhouse/internal/models"

	"github.com/google/uuid"
)

// ListSlots returns every slot ordered by (date, time).
func (db *DB) ListSlots(ctx context.Context) ([]models.Slot, error) {
	query := `SELECT id, date, time, slot_length, created_at FROM slots ORDER BY date, time, id`

	rows, err := db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	defer rows.Close()

	var slots []models.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read slots: %w", err)
	}

	return slots, nil
}

// InsertSlots commits a batch of generator candidates, assigning each a
// fresh id. All inserts happen in one transaction so a confirmed preview is
// committed whole or not at all.
func (db *DB) InsertSlots(ctx context.Context, slots []models.Slot) ([]models.Slot, error) {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO slots (id, date, time, slot_length, created_at) VALUES (?, ?, ?, ?, ?)`
	now := time.Now()

	inserted := make([]models.Slot, 0, len(slots))
	for _, slot := range slots {
		slot.ID = uuid.NewString()
		slot.CreatedAt = now

		if _, err := tx.ExecContext(ctx, query,
			slot.ID,
			slot.Date,
			slot.Time.String(),
			slot.SlotLength,
			slot.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to insert slot: %w", err)
		}

		inserted = append(inserted, slot)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit slots: %w", err)
	}

	return inserted, nil
}

// DeleteSlot removes a slot and cascades to its bookings, reporting how many
// bookings went with it. A missing slot id is a no-op success: the end state
// the administrator asked for already holds.
func (db *DB) DeleteSlot(ctx context.Context, id string) (int, error) {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE slot_id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to cascade bookings: %w", err)
	}
	cascaded, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cascaded bookings: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM slots WHERE id = ?`, id); err != nil {
		return 0, fmt.Errorf("failed to delete slot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit slot delete: %w", err)
	}

	return int(cascaded), nil
}

// CountSlotsOnDate reports how many slots already exist for a date, so the
// administrator can be warned before committing duplicates.
func (db *DB) CountSlotsOnDate(ctx context.Context, date string) (int, error) {
	var count int
	err := db.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM slots WHERE date = ?`, date).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count slots on date: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSlot(row rowScanner) (models.Slot, error) {
	var (
		slot    models.Slot
		timeRaw string
	)
	if err := row.Scan(&slot.ID, &slot.Date, &timeRaw, &slot.SlotLength, &slot.CreatedAt); err != nil {
		return models.Slot{}, fmt.Errorf("failed to scan slot: %w", err)
	}

	parsed, err := models.ParseTimeOfDay(timeRaw)
	if err != nil {
		return models.Slot{}, fmt.Errorf("corrupt slot time %q: %w", timeRaw, err)
	}
	slot.Time = parsed

	return slot, nil
}
