package notification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/amante/clinic-booking-api/internal/model"
	"github.com/amante/clinic-booking-api/internal/repository"
	"github.com/amante/clinic-booking-api/pkg/logger"
	"github.com/amante/clinic-booking-api/pkg/messaging"
	"github.com/amante/clinic-booking-api/pkg/metrics"
)

// Channel is where booking lifecycle events are published for the worker.
const Channel = "booking_events"

const publishTimeout = 5 * time.Second

// Service publishes booking lifecycle events. Publication is asynchronous
// and at-most-once: a failed publish is logged and dropped, never retried,
// and never surfaces to the caller.
type Service struct {
	broker  messaging.Broker
	users   repository.UserRepository
	sched   repository.ScheduleRepository
	metrics *metrics.Metrics
	logger  *logger.Logger
}

func NewService(
	broker messaging.Broker,
	users repository.UserRepository,
	sched repository.ScheduleRepository,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	return &Service{broker: broker, users: users, sched: sched, metrics: m, logger: log}
}

// BookingEvent enriches the booking with both parties' contact details and
// publishes the snapshot in the background.
func (s *Service) BookingEvent(eventType model.BookingEventType, booking *model.Booking) {
	snapshot := *booking
	go s.publish(eventType, &snapshot)
}

func (s *Service) publish(eventType model.BookingEventType, booking *model.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	event := &model.BookingEvent{
		ID:         uuid.New(),
		Type:       eventType,
		Booking:    *booking,
		Timezone:   model.DefaultTimezone,
		OccurredAt: time.Now().UTC(),
	}
	s.enrich(ctx, event)

	if err := s.broker.Publish(ctx, Channel, event); err != nil {
		if s.metrics != nil {
			s.metrics.NotificationsFailed.WithLabelValues(string(eventType)).Inc()
		}
		s.logger.Error(err, "failed to publish booking event",
			"booking_id", booking.ID.String(), "event_type", string(eventType))
		return
	}

	if s.metrics != nil {
		s.metrics.NotificationsSent.WithLabelValues(string(eventType)).Inc()
	}
	s.logger.Debug("booking event published",
		"booking_id", booking.ID.String(), "event_type", string(eventType))
}

// enrich fills in names, emails and the provider timezone. Lookups that
// fail leave the corresponding field empty rather than failing the event.
func (s *Service) enrich(ctx context.Context, event *model.BookingEvent) {
	if provider, err := s.users.GetProvider(ctx, event.Booking.ProviderID); err == nil {
		event.ProviderName = provider.FirstName + " " + provider.LastName
		if user, err := s.users.GetUser(ctx, provider.UserID); err == nil {
			event.ProviderEmail = user.Email
		}
	}
	if patient, err := s.users.GetPatient(ctx, event.Booking.PatientID); err == nil {
		event.PatientName = patient.FirstName + " " + patient.LastName
		if user, err := s.users.GetUser(ctx, patient.UserID); err == nil {
			event.PatientEmail = user.Email
		}
	}
	if settings, err := s.sched.GetSettings(ctx, event.Booking.ProviderID); err == nil && settings != nil {
		event.Timezone = settings.Timezone
	}
}
