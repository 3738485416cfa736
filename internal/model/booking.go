package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusRejected  BookingStatus = "REJECTED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// Terminal reports whether no further transition can leave the status.
func (s BookingStatus) Terminal() bool {
	switch s {
	case BookingStatusRejected, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// Booking records one reserved interval for a provider. It references both
// owners by id only and is never deleted, only moved to a terminal status.
// For a fixed provider, all bookings with status != CANCELLED are pairwise
// non-overlapping.
type Booking struct {
	Base
	ProviderID      uuid.UUID     `db:"provider_id" json:"provider_id"`
	PatientID       uuid.UUID     `db:"patient_id" json:"patient_id"`
	StartTime       time.Time     `db:"start_time" json:"start_time"`
	EndTime         time.Time     `db:"end_time" json:"end_time"`
	Status          BookingStatus `db:"status" json:"status"`
	PatientNotes    string        `db:"patient_notes" json:"patient_notes,omitempty"`
	RejectionReason *string       `db:"rejection_reason" json:"rejection_reason,omitempty"`
}

type CreateBookingRequest struct {
	ProviderID   uuid.UUID `json:"provider_id" binding:"required"`
	StartTime    time.Time `json:"start_time" binding:"required"`
	EndTime      time.Time `json:"end_time" binding:"required"`
	PatientNotes string    `json:"patient_notes" binding:"max=500"`
}

type RejectBookingRequest struct {
	Reason string `json:"reason" binding:"required,min=10,max=500"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type BookingFilters struct {
	ProviderID uuid.UUID
	PatientID  uuid.UUID
	Status     BookingStatus
}
