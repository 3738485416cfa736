package model

import (
	"time"

	"github.com/google/uuid"
)

// Defaults applied when a provider has never saved settings.
const (
	DefaultSlotDurationMinutes = 30
	DefaultBufferMinutes       = 0
	DefaultTimezone            = "UTC"

	MaxBufferMinutes = 30
)

// ValidSlotDurations are the only accepted slot lengths, in minutes.
var ValidSlotDurations = []int{15, 30, 45, 60}

// ScheduleSettings holds per-provider slot generation parameters.
type ScheduleSettings struct {
	Base
	ProviderID          uuid.UUID `db:"provider_id" json:"provider_id"`
	SlotDurationMinutes int       `db:"slot_duration_minutes" json:"slot_duration_minutes"`
	BufferMinutes       int       `db:"buffer_minutes" json:"buffer_minutes"`
	Timezone            string    `db:"timezone" json:"timezone"`
}

// WeeklyWindow is the recurring availability window for one weekday.
// At most one row exists per (provider, day_of_week).
type WeeklyWindow struct {
	Base
	ProviderID  uuid.UUID    `db:"provider_id" json:"provider_id"`
	DayOfWeek   time.Weekday `db:"day_of_week" json:"day_of_week"`
	IsAvailable bool         `db:"is_available" json:"is_available"`
	StartTime   TimeOfDay    `db:"start_time" json:"start_time"`
	EndTime     TimeOfDay    `db:"end_time" json:"end_time"`
}

// BreakWindow blocks slots within the weekly window. A nil DayOfWeek applies
// every day.
type BreakWindow struct {
	Base
	ProviderID uuid.UUID     `db:"provider_id" json:"provider_id"`
	DayOfWeek  *time.Weekday `db:"day_of_week" json:"day_of_week,omitempty"`
	Name       string        `db:"name" json:"name"`
	StartTime  TimeOfDay     `db:"start_time" json:"start_time"`
	EndTime    TimeOfDay     `db:"end_time" json:"end_time"`
}

// AppliesOn reports whether the break is active on the given weekday.
func (b *BreakWindow) AppliesOn(day time.Weekday) bool {
	return b.DayOfWeek == nil || *b.DayOfWeek == day
}

type ExceptionType string

const (
	ExceptionHoliday  ExceptionType = "HOLIDAY"
	ExceptionVacation ExceptionType = "VACATION"
	ExceptionPersonal ExceptionType = "PERSONAL"
	ExceptionSick     ExceptionType = "SICK"
)

// ExceptionPeriod removes whole days from the calendar, either as an
// inclusive date range or as a recurring weekday.
type ExceptionPeriod struct {
	Base
	ProviderID   uuid.UUID     `db:"provider_id" json:"provider_id"`
	StartDate    time.Time     `db:"start_date" json:"start_date"`
	EndDate      time.Time     `db:"end_date" json:"end_date"`
	Reason       string        `db:"reason" json:"reason,omitempty"`
	Type         ExceptionType `db:"type" json:"type"`
	IsRecurring  bool          `db:"is_recurring" json:"is_recurring"`
	RecurringDay *time.Weekday `db:"recurring_day" json:"recurring_day,omitempty"`
}

// Suppresses reports whether the exception removes the given calendar date.
// Recurring periods match by weekday only; specific periods match when the
// date falls inside [StartDate, EndDate] inclusive.
func (e *ExceptionPeriod) Suppresses(date time.Time) bool {
	if e.IsRecurring {
		return e.RecurringDay != nil && *e.RecurringDay == date.Weekday()
	}
	d := truncateToDay(date)
	return !d.Before(truncateToDay(e.StartDate)) && !d.After(truncateToDay(e.EndDate))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ScheduleConfig is the full read-only schedule input for the availability
// calculator. Settings must already be resolved (never nil).
type ScheduleConfig struct {
	Settings *ScheduleSettings  `json:"settings"`
	Weekly   []*WeeklyWindow    `json:"weekly_schedule"`
	Breaks   []*BreakWindow     `json:"breaks"`
	DaysOff  []*ExceptionPeriod `json:"days_off"`
}

// WindowFor returns the weekly window for the given weekday, or nil.
func (c *ScheduleConfig) WindowFor(day time.Weekday) *WeeklyWindow {
	for _, w := range c.Weekly {
		if w.DayOfWeek == day {
			return w
		}
	}
	return nil
}

// TimeSlot is a derived candidate interval; it is never persisted.
type TimeSlot struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Available bool      `json:"available"`
	Reason    *string   `json:"reason,omitempty"`
}

type UpdateSettingsRequest struct {
	SlotDurationMinutes int    `json:"slot_duration_minutes" binding:"required"`
	BufferMinutes       int    `json:"buffer_minutes" binding:"gte=0"`
	Timezone            string `json:"timezone" binding:"required"`
}

type DayScheduleRequest struct {
	IsAvailable bool      `json:"is_available"`
	StartTime   TimeOfDay `json:"start_time"`
	EndTime     TimeOfDay `json:"end_time"`
}

type UpdateWeeklyScheduleRequest struct {
	Schedule map[string]DayScheduleRequest `json:"schedule" binding:"required"`
}

type BreakRequest struct {
	DayOfWeek *time.Weekday `json:"day_of_week"`
	Name      string        `json:"name" binding:"required,max=100"`
	StartTime TimeOfDay     `json:"start_time" binding:"required"`
	EndTime   TimeOfDay     `json:"end_time" binding:"required"`
}

type DayOffRequest struct {
	StartDate    time.Time     `json:"start_date" binding:"required" time_format:"2006-01-02"`
	EndDate      time.Time     `json:"end_date" binding:"required" time_format:"2006-01-02"`
	Reason       string        `json:"reason" binding:"max=500"`
	Type         ExceptionType `json:"type" binding:"required,oneof=HOLIDAY VACATION PERSONAL SICK"`
	IsRecurring  bool          `json:"is_recurring"`
	RecurringDay *time.Weekday `json:"recurring_day"`
}
