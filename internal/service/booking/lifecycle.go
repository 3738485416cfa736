package booking

import (
	"fmt"

	"github.com/amante/clinic-booking-api/internal/model"
	"github.com/amante/clinic-booking-api/pkg/errors"
)

const (
	rejectionReasonMinLen = 10
	rejectionReasonMaxLen = 500
)

// transitions is the full lifecycle graph. Anything absent here is an
// invalid transition regardless of who asks for it.
var transitions = map[model.BookingStatus][]model.BookingStatus{
	model.BookingStatusPending: {
		model.BookingStatusConfirmed,
		model.BookingStatusRejected,
		model.BookingStatusCancelled,
	},
	model.BookingStatusConfirmed: {
		model.BookingStatusCompleted,
		model.BookingStatusCancelled,
	},
	model.BookingStatusRejected: {
		model.BookingStatusCancelled,
	},
}

// CanTransition reports whether the lifecycle permits moving from one
// status to another.
func CanTransition(from, to model.BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func transitionError(from, to model.BookingStatus) error {
	return errors.InvalidState(fmt.Sprintf("cannot transition booking from %s to %s", from, to))
}

func validateRejectionReason(reason string) error {
	if len(reason) < rejectionReasonMinLen || len(reason) > rejectionReasonMaxLen {
		return errors.Validation(
			fmt.Sprintf("rejection reason must be between %d and %d characters", rejectionReasonMinLen, rejectionReasonMaxLen),
			nil,
		)
	}
	return nil
}
