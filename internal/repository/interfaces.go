package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/amante/clinic-booking-api/internal/model"
)

// All repository interfaces in one file
type (
	UserRepository interface {
		CreateUser(ctx context.Context, user *model.User) error
		GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetUserByEmail(ctx context.Context, email string) (*model.User, error)

		CreateProvider(ctx context.Context, provider *model.Provider) error
		GetProvider(ctx context.Context, id uuid.UUID) (*model.Provider, error)
		GetProviderByUserID(ctx context.Context, userID uuid.UUID) (*model.Provider, error)
		UpdateProvider(ctx context.Context, provider *model.Provider) error
		ListProviders(ctx context.Context, filters *model.ProviderFilters) ([]*model.Provider, error)

		CreatePatient(ctx context.Context, patient *model.Patient) error
		GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		GetPatientByUserID(ctx context.Context, userID uuid.UUID) (*model.Patient, error)
	}

	// ScheduleRepository persists the provider-owned schedule configuration.
	ScheduleRepository interface {
		GetSettings(ctx context.Context, providerID uuid.UUID) (*model.ScheduleSettings, error)
		SaveSettings(ctx context.Context, settings *model.ScheduleSettings) error

		ListWeekly(ctx context.Context, providerID uuid.UUID) ([]*model.WeeklyWindow, error)
		UpsertWeekly(ctx context.Context, window *model.WeeklyWindow) error

		ListBreaks(ctx context.Context, providerID uuid.UUID) ([]*model.BreakWindow, error)
		GetBreak(ctx context.Context, id uuid.UUID) (*model.BreakWindow, error)
		CreateBreak(ctx context.Context, brk *model.BreakWindow) error
		UpdateBreak(ctx context.Context, brk *model.BreakWindow) error
		DeleteBreak(ctx context.Context, id uuid.UUID) error

		ListDaysOff(ctx context.Context, providerID uuid.UUID) ([]*model.ExceptionPeriod, error)
		GetDayOff(ctx context.Context, id uuid.UUID) (*model.ExceptionPeriod, error)
		CreateDayOff(ctx context.Context, dayOff *model.ExceptionPeriod) error
		UpdateDayOff(ctx context.Context, dayOff *model.ExceptionPeriod) error
		DeleteDayOff(ctx context.Context, id uuid.UUID) error
	}

	BookingRepository interface {
		Create(ctx context.Context, booking *model.Booking) error
		Get(ctx context.Context, id uuid.UUID) (*model.Booking, error)
		// UpdateStatus moves a booking from one status to another. The
		// current status is part of the WHERE clause so a row that moved
		// concurrently is not touched; the boolean reports whether the
		// update applied.
		UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.BookingStatus, rejectionReason *string) (bool, error)
		List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error)
		// ListForProviderInterval returns all non-cancelled bookings whose
		// interval intersects [start, end).
		ListForProviderInterval(ctx context.Context, providerID uuid.UUID, start, end time.Time) ([]*model.Booking, error)
		// HasOverlap reports whether any non-cancelled booking for the
		// provider overlaps [start, end) under half-open semantics.
		HasOverlap(ctx context.Context, providerID uuid.UUID, start, end time.Time) (bool, error)
	}
)
