// Package availability computes bookable time slots for one provider and
// one calendar date. ComputeSlots is a pure function: identical inputs yield
// an identical slot sequence, so callers are free to run it concurrently or
// cache its output.
package availability

import (
	"fmt"
	"strings"
	"time"

	"github.com/amante/clinic-booking-api/internal/model"
	"github.com/amante/clinic-booking-api/pkg/errors"
)

// ReasonBooked marks a slot blocked by an existing booking; blocked breaks
// carry the upper-cased break name instead.
const ReasonBooked = "BOOKED"

// ComputeSlots walks the provider's weekly window for the date's weekday and
// emits fixed-duration slots, marking each against break windows first and
// existing bookings second.
//
// All wall-clock schedule times are anchored onto the target date in the
// provider's configured timezone; booking instants are converted into that
// same timezone before comparison, so every interval check compares absolute
// instants.
//
// cfg.Settings must be resolved (see schedule.ResolveSettingsOrDefault);
// bookings must hold the provider's non-cancelled bookings intersecting the
// date. The returned slots are in ascending start-time order. A trailing
// window remainder shorter than one slot is dropped, never clipped.
func ComputeSlots(cfg *model.ScheduleConfig, bookings []*model.Booking, date time.Time) ([]*model.TimeSlot, error) {
	if cfg.Settings == nil {
		return nil, errors.Validation("schedule settings not resolved", nil)
	}

	loc, err := time.LoadLocation(cfg.Settings.Timezone)
	if err != nil {
		return nil, errors.Validation(fmt.Sprintf("invalid timezone %q", cfg.Settings.Timezone), err)
	}

	// Exception periods suppress the whole day, regardless of the weekly
	// window.
	for _, dayOff := range cfg.DaysOff {
		if dayOff.Suppresses(date) {
			return []*model.TimeSlot{}, nil
		}
	}

	window := cfg.WindowFor(date.Weekday())
	if window == nil || !window.IsAvailable {
		return []*model.TimeSlot{}, nil
	}

	windowStart, err := window.StartTime.On(date, loc)
	if err != nil {
		return nil, errors.Validation("invalid weekly window start", err)
	}
	windowEnd, err := window.EndTime.On(date, loc)
	if err != nil {
		return nil, errors.Validation("invalid weekly window end", err)
	}

	breaks, err := materializeBreaks(cfg.Breaks, date, loc)
	if err != nil {
		return nil, err
	}

	slotDuration := time.Duration(cfg.Settings.SlotDurationMinutes) * time.Minute
	buffer := time.Duration(cfg.Settings.BufferMinutes) * time.Minute

	slots := []*model.TimeSlot{}
	for cursor := windowStart; cursor.Before(windowEnd); {
		slotEnd := cursor.Add(slotDuration)
		if slotEnd.After(windowEnd) {
			break
		}

		slot := &model.TimeSlot{
			StartTime: cursor,
			EndTime:   slotEnd,
			Available: true,
		}

		// Breaks win over bookings; first match in configured order wins.
		if reason, blocked := blockingBreak(breaks, cursor, slotEnd); blocked {
			slot.Available = false
			slot.Reason = &reason
		} else if bookingOverlaps(bookings, cursor, slotEnd, loc) {
			reason := ReasonBooked
			slot.Available = false
			slot.Reason = &reason
		}

		slots = append(slots, slot)
		cursor = slotEnd.Add(buffer)
	}

	return slots, nil
}

type breakInterval struct {
	name  string
	start time.Time
	end   time.Time
}

func materializeBreaks(breaks []*model.BreakWindow, date time.Time, loc *time.Location) ([]breakInterval, error) {
	day := date.Weekday()
	var intervals []breakInterval
	for _, b := range breaks {
		if !b.AppliesOn(day) {
			continue
		}
		start, err := b.StartTime.On(date, loc)
		if err != nil {
			return nil, errors.Validation(fmt.Sprintf("invalid break %q start", b.Name), err)
		}
		end, err := b.EndTime.On(date, loc)
		if err != nil {
			return nil, errors.Validation(fmt.Sprintf("invalid break %q end", b.Name), err)
		}
		intervals = append(intervals, breakInterval{
			name:  strings.ToUpper(b.Name),
			start: start,
			end:   end,
		})
	}
	return intervals, nil
}

func blockingBreak(breaks []breakInterval, start, end time.Time) (string, bool) {
	for _, b := range breaks {
		if model.Overlaps(start, end, b.start, b.end) {
			return b.name, true
		}
	}
	return "", false
}

func bookingOverlaps(bookings []*model.Booking, start, end time.Time, loc *time.Location) bool {
	for _, booking := range bookings {
		if booking.Status == model.BookingStatusCancelled {
			continue
		}
		if model.Overlaps(start, end, booking.StartTime.In(loc), booking.EndTime.In(loc)) {
			return true
		}
	}
	return false
}
