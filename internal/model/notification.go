package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingEventType string

const (
	BookingEventCreated   BookingEventType = "CREATED"
	BookingEventConfirmed BookingEventType = "CONFIRMED"
	BookingEventRejected  BookingEventType = "REJECTED"
	BookingEventCompleted BookingEventType = "COMPLETED"
	BookingEventCancelled BookingEventType = "CANCELLED"
)

// BookingEvent is the snapshot published on each successful lifecycle
// transition. Delivery is fire-and-forget: at most one attempt, failures are
// logged and discarded.
type BookingEvent struct {
	ID            uuid.UUID        `json:"id"`
	Type          BookingEventType `json:"type"`
	Booking       Booking          `json:"booking"`
	PatientName   string           `json:"patient_name"`
	PatientEmail  string           `json:"patient_email"`
	ProviderName  string           `json:"provider_name"`
	ProviderEmail string           `json:"provider_email"`
	Timezone      string           `json:"timezone"`
	OccurredAt    time.Time        `json:"occurred_at"`
}
