package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/amante/clinic-booking-api/internal/model"
)

func (r *bookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (
			id, provider_id, patient_id,
			start_time, end_time, status, patient_notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		booking.ID,
		booking.ProviderID,
		booking.PatientID,
		booking.StartTime,
		booking.EndTime,
		booking.Status,
		booking.PatientNotes,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *bookingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `
		SELECT id, provider_id, patient_id,
			   start_time, end_time, status, patient_notes, rejection_reason,
			   created_at, updated_at
		FROM bookings
		WHERE id = $1
	`
	var booking model.Booking
	err := r.db.GetContext(ctx, &booking, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.BookingStatus, rejectionReason *string) (bool, error) {
	query := `
		UPDATE bookings
		SET status = $1,
		    rejection_reason = COALESCE($2, rejection_reason),
		    updated_at = $3
		WHERE id = $4 AND status = $5
	`
	result, err := r.db.ExecContext(ctx, query, to, rejectionReason, time.Now().UTC(), id, from)
	if err != nil {
		return false, fmt.Errorf("failed to update booking status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

func (r *bookingRepository) List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error) {
	query := `
		SELECT id, provider_id, patient_id,
			   start_time, end_time, status, patient_notes, rejection_reason,
			   created_at, updated_at
		FROM bookings
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters.ProviderID != uuid.Nil {
		query += fmt.Sprintf(" AND provider_id = $%d", argCount)
		args = append(args, filters.ProviderID)
		argCount++
	}

	if filters.PatientID != uuid.Nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, filters.PatientID)
		argCount++
	}

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	query += " ORDER BY start_time ASC"

	var bookings []*model.Booking
	err := r.db.SelectContext(ctx, &bookings, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) ListForProviderInterval(ctx context.Context, providerID uuid.UUID, start, end time.Time) ([]*model.Booking, error) {
	query := `
		SELECT id, provider_id, patient_id,
			   start_time, end_time, status, patient_notes, rejection_reason,
			   created_at, updated_at
		FROM bookings
		WHERE provider_id = $1
		AND start_time < $3
		AND end_time > $2
		AND status != 'CANCELLED'
		ORDER BY start_time ASC
	`
	var bookings []*model.Booking
	err := r.db.SelectContext(ctx, &bookings, query, providerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list provider bookings: %w", err)
	}
	return bookings, nil
}

// HasOverlap mirrors model.Overlaps: strict inequalities, so an interval
// starting exactly where another ends is not a conflict.
func (r *bookingRepository) HasOverlap(ctx context.Context, providerID uuid.UUID, start, end time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE provider_id = $1
			AND status != 'CANCELLED'
			AND start_time < $3
			AND end_time > $2
		)
	`
	var hasOverlap bool
	err := r.db.GetContext(ctx, &hasOverlap, query, providerID, start, end)
	if err != nil {
		return false, fmt.Errorf("failed to check booking overlap: %w", err)
	}
	return hasOverlap, nil
}
