package booking

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/amante/clinic-booking-api/internal/model"
	"github.com/amante/clinic-booking-api/internal/repository"
	"github.com/amante/clinic-booking-api/pkg/errors"
	"github.com/amante/clinic-booking-api/pkg/lock"
	"github.com/amante/clinic-booking-api/pkg/logger"
	"github.com/amante/clinic-booking-api/pkg/metrics"
)

// Notifier receives lifecycle events after they are committed. Delivery is
// fire-and-forget and must never block or fail the booking operation.
type Notifier interface {
	BookingEvent(eventType model.BookingEventType, booking *model.Booking)
}

// Service owns the booking lifecycle. Creation runs inside a per-provider
// critical section so the overlap check and the insert are atomic with
// respect to concurrent requests for the same provider.
type Service struct {
	bookings repository.BookingRepository
	users    repository.UserRepository
	locker   lock.Locker
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

func NewService(
	bookings repository.BookingRepository,
	users repository.UserRepository,
	locker lock.Locker,
	notifier Notifier,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	return &Service{
		bookings: bookings,
		users:    users,
		locker:   locker,
		notifier: notifier,
		metrics:  m,
		logger:   log,
	}
}

func lockKey(providerID uuid.UUID) string {
	return "lock:provider:" + providerID.String()
}

// Create books [start, end) for the patient behind userID. Two concurrent
// requests for overlapping intervals on the same provider resolve to exactly
// one PENDING booking and one conflict error.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *model.CreateBookingRequest) (*model.Booking, error) {
	if !req.StartTime.Before(req.EndTime) {
		return nil, errors.Validation("start time must be before end time", nil)
	}
	if req.StartTime.Before(time.Now()) {
		return nil, errors.Validation("booking must start in the future", nil)
	}

	patient, err := s.users.GetPatientByUserID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("patient profile", err)
		}
		return nil, errors.Internal(err)
	}

	provider, err := s.users.GetProvider(ctx, req.ProviderID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("provider", err)
		}
		return nil, errors.Internal(err)
	}

	now := time.Now().UTC()
	booking := &model.Booking{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ProviderID:   provider.ID,
		PatientID:    patient.ID,
		StartTime:    req.StartTime.UTC(),
		EndTime:      req.EndTime.UTC(),
		Status:       model.BookingStatusPending,
		PatientNotes: req.PatientNotes,
	}

	err = s.locker.WithLock(ctx, lockKey(provider.ID), func(ctx context.Context) error {
		overlap, err := s.bookings.HasOverlap(ctx, provider.ID, booking.StartTime, booking.EndTime)
		if err != nil {
			return errors.Internal(err)
		}
		if overlap {
			if s.metrics != nil {
				s.metrics.BookingConflicts.Inc()
			}
			s.logger.Warn("booking conflict",
				"provider_id", provider.ID.String(),
				"start_time", booking.StartTime)
			return errors.Conflict("requested time slot is no longer available")
		}
		if err := s.bookings.Create(ctx, booking); err != nil {
			return errors.Internal(err)
		}
		return nil
	})
	if err != nil {
		if stderrors.Is(err, lock.ErrNotAcquired) {
			s.logger.Warn("provider lock contended", "provider_id", provider.ID.String())
			return nil, errors.Conflict("provider calendar is busy, please retry")
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.BookingsCreated.Inc()
	}
	s.logger.Info("booking created",
		"booking_id", booking.ID.String(),
		"provider_id", provider.ID.String())
	s.notify(model.BookingEventCreated, booking)
	return booking, nil
}

// Get returns a booking visible to the caller. Only the owning patient or
// the booked provider may read it.
func (s *Service) Get(ctx context.Context, userID uuid.UUID, role model.Role, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, userID, role, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// ListForPatient returns the caller's bookings, newest first.
func (s *Service) ListForPatient(ctx context.Context, userID uuid.UUID, status model.BookingStatus) ([]*model.Booking, error) {
	patient, err := s.users.GetPatientByUserID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("patient profile", err)
		}
		return nil, errors.Internal(err)
	}
	list, err := s.bookings.List(ctx, &model.BookingFilters{PatientID: patient.ID, Status: status})
	if err != nil {
		return nil, errors.Internal(err)
	}
	return list, nil
}

// ListForProvider returns bookings on the caller's own calendar.
func (s *Service) ListForProvider(ctx context.Context, userID uuid.UUID, status model.BookingStatus) ([]*model.Booking, error) {
	provider, err := s.users.GetProviderByUserID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("provider profile", err)
		}
		return nil, errors.Internal(err)
	}
	list, err := s.bookings.List(ctx, &model.BookingFilters{ProviderID: provider.ID, Status: status})
	if err != nil {
		return nil, errors.Internal(err)
	}
	return list, nil
}

// Confirm moves a PENDING booking to CONFIRMED. Provider only.
func (s *Service) Confirm(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*model.Booking, error) {
	return s.providerTransition(ctx, userID, id, model.BookingStatusConfirmed, nil, model.BookingEventConfirmed)
}

// Reject moves a PENDING booking to REJECTED with a mandatory reason.
// Provider only.
func (s *Service) Reject(ctx context.Context, userID uuid.UUID, id uuid.UUID, reason string) (*model.Booking, error) {
	if err := validateRejectionReason(reason); err != nil {
		return nil, err
	}
	return s.providerTransition(ctx, userID, id, model.BookingStatusRejected, &reason, model.BookingEventRejected)
}

// Complete moves a CONFIRMED booking to COMPLETED. Provider only.
func (s *Service) Complete(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*model.Booking, error) {
	return s.providerTransition(ctx, userID, id, model.BookingStatusCompleted, nil, model.BookingEventCompleted)
}

// Cancel moves a booking to CANCELLED. Either side of the booking may
// cancel while the status still permits it.
func (s *Service) Cancel(ctx context.Context, userID uuid.UUID, role model.Role, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, userID, role, booking); err != nil {
		return nil, err
	}
	return s.apply(ctx, booking, model.BookingStatusCancelled, nil, model.BookingEventCancelled)
}

func (s *Service) providerTransition(
	ctx context.Context,
	userID uuid.UUID,
	id uuid.UUID,
	to model.BookingStatus,
	rejectionReason *string,
	eventType model.BookingEventType,
) (*model.Booking, error) {
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	provider, err := s.users.GetProviderByUserID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.Unauthorized("only the booked provider may perform this action")
		}
		return nil, errors.Internal(err)
	}
	if provider.ID != booking.ProviderID {
		return nil, errors.Unauthorized("only the booked provider may perform this action")
	}

	return s.apply(ctx, booking, to, rejectionReason, eventType)
}

// apply commits a transition with the current status in the WHERE clause, so
// a booking raced into another status is left untouched and the caller gets
// a conflict instead of a lost update.
func (s *Service) apply(
	ctx context.Context,
	booking *model.Booking,
	to model.BookingStatus,
	rejectionReason *string,
	eventType model.BookingEventType,
) (*model.Booking, error) {
	if !CanTransition(booking.Status, to) {
		return nil, transitionError(booking.Status, to)
	}

	applied, err := s.bookings.UpdateStatus(ctx, booking.ID, booking.Status, to, rejectionReason)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if !applied {
		s.logger.Warn("booking status moved concurrently",
			"booking_id", booking.ID.String(),
			"expected_status", string(booking.Status))
		return nil, errors.Conflict(fmt.Sprintf("booking status changed concurrently, no longer %s", booking.Status))
	}

	booking.Status = to
	if rejectionReason != nil {
		booking.RejectionReason = rejectionReason
	}
	booking.UpdatedAt = time.Now().UTC()

	if s.metrics != nil {
		s.metrics.BookingTransitions.WithLabelValues(string(to)).Inc()
	}
	s.notify(eventType, booking)
	return booking, nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookings.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("booking", err)
		}
		return nil, errors.Internal(err)
	}
	return booking, nil
}

func (s *Service) authorize(ctx context.Context, userID uuid.UUID, role model.Role, booking *model.Booking) error {
	switch role {
	case model.RoleProvider:
		provider, err := s.users.GetProviderByUserID(ctx, userID)
		if err != nil && !stderrors.Is(err, sql.ErrNoRows) {
			return errors.Internal(err)
		}
		if provider != nil && provider.ID == booking.ProviderID {
			return nil
		}
	case model.RolePatient:
		patient, err := s.users.GetPatientByUserID(ctx, userID)
		if err != nil && !stderrors.Is(err, sql.ErrNoRows) {
			return errors.Internal(err)
		}
		if patient != nil && patient.ID == booking.PatientID {
			return nil
		}
	}
	return errors.Unauthorized("booking belongs to another user")
}

func (s *Service) notify(eventType model.BookingEventType, booking *model.Booking) {
	if s.notifier == nil {
		return
	}
	s.notifier.BookingEvent(eventType, booking)
}
