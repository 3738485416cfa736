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

func (r *scheduleRepository) GetSettings(ctx context.Context, providerID uuid.UUID) (*model.ScheduleSettings, error) {
	query := `
		SELECT id, provider_id, slot_duration_minutes, buffer_minutes, timezone,
		       created_at, updated_at
		FROM provider_settings
		WHERE provider_id = $1
	`
	var settings model.ScheduleSettings
	err := r.db.GetContext(ctx, &settings, query, providerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &settings, nil
}

func (r *scheduleRepository) SaveSettings(ctx context.Context, settings *model.ScheduleSettings) error {
	query := `
		INSERT INTO provider_settings (
			id, provider_id, slot_duration_minutes, buffer_minutes, timezone,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (provider_id) DO UPDATE SET
			slot_duration_minutes = EXCLUDED.slot_duration_minutes,
			buffer_minutes = EXCLUDED.buffer_minutes,
			timezone = EXCLUDED.timezone,
			updated_at = EXCLUDED.updated_at
	`
	settings.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, query,
		settings.ID,
		settings.ProviderID,
		settings.SlotDurationMinutes,
		settings.BufferMinutes,
		settings.Timezone,
		settings.CreatedAt,
		settings.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func (r *scheduleRepository) ListWeekly(ctx context.Context, providerID uuid.UUID) ([]*model.WeeklyWindow, error) {
	query := `
		SELECT id, provider_id, day_of_week, is_available, start_time, end_time,
		       created_at, updated_at
		FROM weekly_schedules
		WHERE provider_id = $1
		ORDER BY day_of_week ASC
	`
	var windows []*model.WeeklyWindow
	err := r.db.SelectContext(ctx, &windows, query, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly schedule: %w", err)
	}
	return windows, nil
}

func (r *scheduleRepository) UpsertWeekly(ctx context.Context, window *model.WeeklyWindow) error {
	query := `
		INSERT INTO weekly_schedules (
			id, provider_id, day_of_week, is_available, start_time, end_time,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (provider_id, day_of_week) DO UPDATE SET
			is_available = EXCLUDED.is_available,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			updated_at = EXCLUDED.updated_at
	`
	window.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, query,
		window.ID,
		window.ProviderID,
		window.DayOfWeek,
		window.IsAvailable,
		window.StartTime,
		window.EndTime,
		window.CreatedAt,
		window.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert weekly window: %w", err)
	}
	return nil
}

func (r *scheduleRepository) ListBreaks(ctx context.Context, providerID uuid.UUID) ([]*model.BreakWindow, error) {
	query := `
		SELECT id, provider_id, day_of_week, name, start_time, end_time,
		       created_at, updated_at
		FROM provider_breaks
		WHERE provider_id = $1
		ORDER BY created_at ASC
	`
	var breaks []*model.BreakWindow
	err := r.db.SelectContext(ctx, &breaks, query, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list breaks: %w", err)
	}
	return breaks, nil
}

func (r *scheduleRepository) GetBreak(ctx context.Context, id uuid.UUID) (*model.BreakWindow, error) {
	query := `
		SELECT id, provider_id, day_of_week, name, start_time, end_time,
		       created_at, updated_at
		FROM provider_breaks
		WHERE id = $1
	`
	var brk model.BreakWindow
	err := r.db.GetContext(ctx, &brk, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get break: %w", err)
	}
	return &brk, nil
}

func (r *scheduleRepository) CreateBreak(ctx context.Context, brk *model.BreakWindow) error {
	query := `
		INSERT INTO provider_breaks (
			id, provider_id, day_of_week, name, start_time, end_time,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		brk.ID,
		brk.ProviderID,
		brk.DayOfWeek,
		brk.Name,
		brk.StartTime,
		brk.EndTime,
		brk.CreatedAt,
		brk.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create break: %w", err)
	}
	return nil
}

func (r *scheduleRepository) UpdateBreak(ctx context.Context, brk *model.BreakWindow) error {
	query := `
		UPDATE provider_breaks
		SET day_of_week = $1, name = $2, start_time = $3, end_time = $4, updated_at = $5
		WHERE id = $6
	`
	brk.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query,
		brk.DayOfWeek,
		brk.Name,
		brk.StartTime,
		brk.EndTime,
		brk.UpdatedAt,
		brk.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update break: %w", err)
	}
	return requireRow(result)
}

func (r *scheduleRepository) DeleteBreak(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM provider_breaks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete break: %w", err)
	}
	return requireRow(result)
}

func (r *scheduleRepository) ListDaysOff(ctx context.Context, providerID uuid.UUID) ([]*model.ExceptionPeriod, error) {
	query := `
		SELECT id, provider_id, start_date, end_date, reason, type,
		       is_recurring, recurring_day, created_at, updated_at
		FROM provider_days_off
		WHERE provider_id = $1
		ORDER BY start_date ASC
	`
	var daysOff []*model.ExceptionPeriod
	err := r.db.SelectContext(ctx, &daysOff, query, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list days off: %w", err)
	}
	return daysOff, nil
}

func (r *scheduleRepository) GetDayOff(ctx context.Context, id uuid.UUID) (*model.ExceptionPeriod, error) {
	query := `
		SELECT id, provider_id, start_date, end_date, reason, type,
		       is_recurring, recurring_day, created_at, updated_at
		FROM provider_days_off
		WHERE id = $1
	`
	var dayOff model.ExceptionPeriod
	err := r.db.GetContext(ctx, &dayOff, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get day off: %w", err)
	}
	return &dayOff, nil
}

func (r *scheduleRepository) CreateDayOff(ctx context.Context, dayOff *model.ExceptionPeriod) error {
	query := `
		INSERT INTO provider_days_off (
			id, provider_id, start_date, end_date, reason, type,
			is_recurring, recurring_day, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		dayOff.ID,
		dayOff.ProviderID,
		dayOff.StartDate,
		dayOff.EndDate,
		dayOff.Reason,
		dayOff.Type,
		dayOff.IsRecurring,
		dayOff.RecurringDay,
		dayOff.CreatedAt,
		dayOff.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create day off: %w", err)
	}
	return nil
}

func (r *scheduleRepository) UpdateDayOff(ctx context.Context, dayOff *model.ExceptionPeriod) error {
	query := `
		UPDATE provider_days_off
		SET start_date = $1, end_date = $2, reason = $3, type = $4,
		    is_recurring = $5, recurring_day = $6, updated_at = $7
		WHERE id = $8
	`
	dayOff.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query,
		dayOff.StartDate,
		dayOff.EndDate,
		dayOff.Reason,
		dayOff.Type,
		dayOff.IsRecurring,
		dayOff.RecurringDay,
		dayOff.UpdatedAt,
		dayOff.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update day off: %w", err)
	}
	return requireRow(result)
}

func (r *scheduleRepository) DeleteDayOff(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM provider_days_off WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete day off: %w", err)
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
