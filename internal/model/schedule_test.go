package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreakWindowAppliesOn(t *testing.T) {
	monday := time.Monday
	specific := &BreakWindow{DayOfWeek: &monday}
	assert.True(t, specific.AppliesOn(time.Monday))
	assert.False(t, specific.AppliesOn(time.Tuesday))

	everyDay := &BreakWindow{}
	for d := time.Sunday; d <= time.Saturday; d++ {
		assert.True(t, everyDay.AppliesOn(d))
	}
}

func TestExceptionPeriodSuppresses(t *testing.T) {
	// 2026-03-02 is a Monday.
	date := time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)

	ranged := &ExceptionPeriod{
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
	}
	assert.True(t, ranged.Suppresses(date), "time of day must not matter")
	assert.True(t, ranged.Suppresses(ranged.StartDate))
	assert.True(t, ranged.Suppresses(ranged.EndDate), "range is inclusive")
	assert.False(t, ranged.Suppresses(ranged.EndDate.AddDate(0, 0, 1)))

	monday := time.Monday
	recurring := &ExceptionPeriod{IsRecurring: true, RecurringDay: &monday}
	assert.True(t, recurring.Suppresses(date))
	assert.False(t, recurring.Suppresses(date.AddDate(0, 0, 1)))

	malformed := &ExceptionPeriod{IsRecurring: true}
	assert.False(t, malformed.Suppresses(date))
}

func TestBookingStatusTerminal(t *testing.T) {
	assert.False(t, BookingStatusPending.Terminal())
	assert.False(t, BookingStatusConfirmed.Terminal())
	assert.True(t, BookingStatusRejected.Terminal())
	assert.True(t, BookingStatusCompleted.Terminal())
	assert.True(t, BookingStatusCancelled.Terminal())
}

func TestScheduleConfigWindowFor(t *testing.T) {
	cfg := &ScheduleConfig{
		Weekly: []*WeeklyWindow{
			{DayOfWeek: time.Monday, StartTime: "09:00", EndTime: "17:00"},
			{DayOfWeek: time.Friday, StartTime: "10:00", EndTime: "14:00"},
		},
	}

	w := cfg.WindowFor(time.Friday)
	assert.NotNil(t, w)
	assert.Equal(t, TimeOfDay("10:00"), w.StartTime)
	assert.Nil(t, cfg.WindowFor(time.Sunday))
}
