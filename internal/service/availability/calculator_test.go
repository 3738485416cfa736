package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amante/clinic-booking-api/internal/model"
)

// 2026-01-05 is a Monday.
var monday = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func settings(duration, buffer int, tz string) *model.ScheduleSettings {
	return &model.ScheduleSettings{
		SlotDurationMinutes: duration,
		BufferMinutes:       buffer,
		Timezone:            tz,
	}
}

func window(day time.Weekday, start, end model.TimeOfDay) *model.WeeklyWindow {
	return &model.WeeklyWindow{
		DayOfWeek:   day,
		IsAvailable: true,
		StartTime:   start,
		EndTime:     end,
	}
}

func utcBooking(start, end time.Time) *model.Booking {
	return &model.Booking{
		StartTime: start,
		EndTime:   end,
		Status:    model.BookingStatusPending,
	}
}

func TestComputeSlots_MondayWithTeaBreak(t *testing.T) {
	mondayDay := time.Monday
	cfg := &model.ScheduleConfig{
		Settings: settings(30, 0, "UTC"),
		Weekly:   []*model.WeeklyWindow{window(time.Monday, "09:00", "12:00")},
		Breaks: []*model.BreakWindow{
			{DayOfWeek: &mondayDay, Name: "Tea", StartTime: "10:00", EndTime: "10:15"},
		},
	}

	slots, err := ComputeSlots(cfg, nil, monday)
	require.NoError(t, err)
	require.Len(t, slots, 6)

	starts := []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30"}
	for i, slot := range slots {
		assert.Equal(t, starts[i], slot.StartTime.Format("15:04"))
		assert.Equal(t, 30*time.Minute, slot.EndTime.Sub(slot.StartTime))
	}

	assert.True(t, slots[0].Available)
	assert.True(t, slots[1].Available)
	assert.False(t, slots[2].Available)
	require.NotNil(t, slots[2].Reason)
	assert.Equal(t, "TEA", *slots[2].Reason)
	assert.True(t, slots[3].Available)
	assert.True(t, slots[4].Available)
	assert.True(t, slots[5].Available)
}

func TestComputeSlots_BufferSpacing(t *testing.T) {
	cfg := &model.ScheduleConfig{
		Settings: settings(30, 15, "UTC"),
		Weekly:   []*model.WeeklyWindow{window(time.Monday, "09:00", "12:00")},
	}

	slots, err := ComputeSlots(cfg, nil, monday)
	require.NoError(t, err)
	require.Len(t, slots, 4)

	for i, slot := range slots {
		assert.Equal(t, 30*time.Minute, slot.EndTime.Sub(slot.StartTime))
		if i > 0 {
			assert.Equal(t, 45*time.Minute, slot.StartTime.Sub(slots[i-1].StartTime),
				"consecutive starts must differ by duration + buffer")
		}
	}
}

func TestComputeSlots_TrailingPartialDropped(t *testing.T) {
	cfg := &model.ScheduleConfig{
		Settings: settings(30, 0, "UTC"),
		Weekly:   []*model.WeeklyWindow{window(time.Monday, "09:00", "10:45")},
	}

	slots, err := ComputeSlots(cfg, nil, monday)
	require.NoError(t, err)
	require.Len(t, slots, 3)

	last := slots[len(slots)-1]
	assert.Equal(t, "10:00", last.StartTime.Format("15:04"))
	assert.False(t, last.EndTime.After(monday.Add(10*time.Hour+45*time.Minute)))
}

func TestComputeSlots_NoWindowOrUnavailableDay(t *testing.T) {
	cfg := &model.ScheduleConfig{
		Settings: settings(30, 0, "UTC"),
		Weekly:   []*model.WeeklyWindow{window(time.Tuesday, "09:00", "12:00")},
	}
	slots, err := ComputeSlots(cfg, nil, monday)
	require.NoError(t, err)
	assert.Empty(t, slots)

	off := window(time.Monday, "09:00", "12:00")
	off.IsAvailable = false
	cfg.Weekly = []*model.WeeklyWindow{off}
	slots, err = ComputeSlots(cfg, nil, monday)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestComputeSlots_ExceptionPeriodSuppressesDay(t *testing.T) {
	mondayDay := time.Monday
	base := &model.ScheduleConfig{
		Settings: settings(30, 0, "UTC"),
		Weekly:   []*model.WeeklyWindow{window(time.Monday, "09:00", "12:00")},
	}

	tests := []struct {
		name     string
		dayOff   *model.ExceptionPeriod
		suppress bool
	}{
		{
			name: "specific range containing date",
			dayOff: &model.ExceptionPeriod{
				StartDate: monday.AddDate(0, 0, -1),
				EndDate:   monday.AddDate(0, 0, 2),
				Type:      model.ExceptionVacation,
			},
			suppress: true,
		},
		{
			name: "single day range on the date",
			dayOff: &model.ExceptionPeriod{
				StartDate: monday,
				EndDate:   monday,
				Type:      model.ExceptionSick,
			},
			suppress: true,
		},
		{
			name: "range ending the day before",
			dayOff: &model.ExceptionPeriod{
				StartDate: monday.AddDate(0, 0, -5),
				EndDate:   monday.AddDate(0, 0, -1),
				Type:      model.ExceptionHoliday,
			},
			suppress: false,
		},
		{
			name: "recurring on the date's weekday",
			dayOff: &model.ExceptionPeriod{
				IsRecurring:  true,
				RecurringDay: &mondayDay,
				Type:         model.ExceptionPersonal,
			},
			suppress: true,
		},
		{
			name: "recurring on another weekday",
			dayOff: &model.ExceptionPeriod{
				IsRecurring:  true,
				RecurringDay: weekdayPtr(time.Friday),
				Type:         model.ExceptionPersonal,
			},
			suppress: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *base
			cfg.DaysOff = []*model.ExceptionPeriod{tt.dayOff}

			slots, err := ComputeSlots(&cfg, nil, monday)
			require.NoError(t, err)
			if tt.suppress {
				assert.Empty(t, slots)
			} else {
				assert.NotEmpty(t, slots)
			}
		})
	}
}

func TestComputeSlots_BookingMarksSlot(t *testing.T) {
	cfg := &model.ScheduleConfig{
		Settings: settings(30, 0, "UTC"),
		Weekly:   []*model.WeeklyWindow{window(time.Monday, "09:00", "12:00")},
	}
	bookings := []*model.Booking{
		utcBooking(monday.Add(9*time.Hour+30*time.Minute), monday.Add(10*time.Hour)),
	}

	slots, err := ComputeSlots(cfg, bookings, monday)
	require.NoError(t, err)
	require.Len(t, slots, 6)

	assert.True(t, slots[0].Available)
	assert.False(t, slots[1].Available)
	require.NotNil(t, slots[1].Reason)
	assert.Equal(t, ReasonBooked, *slots[1].Reason)
	assert.True(t, slots[2].Available, "slot starting exactly at booking end must stay free")
}

func TestComputeSlots_CancelledBookingIgnored(t *testing.T) {
	cfg := &model.ScheduleConfig{
		Settings: settings(30, 0, "UTC"),
		Weekly:   []*model.WeeklyWindow{window(time.Monday, "09:00", "12:00")},
	}
	cancelled := utcBooking(monday.Add(9*time.Hour), monday.Add(9*time.Hour+30*time.Minute))
	cancelled.Status = model.BookingStatusCancelled

	slots, err := ComputeSlots(cfg, []*model.Booking{cancelled}, monday)
	require.NoError(t, err)
	assert.True(t, slots[0].Available)
}

func TestComputeSlots_EveryDayBreakApplies(t *testing.T) {
	cfg := &model.ScheduleConfig{
		Settings: settings(30, 0, "UTC"),
		Weekly:   []*model.WeeklyWindow{window(time.Monday, "09:00", "11:00")},
		Breaks: []*model.BreakWindow{
			{DayOfWeek: nil, Name: "Lunch", StartTime: "10:00", EndTime: "10:30"},
		},
	}

	slots, err := ComputeSlots(cfg, nil, monday)
	require.NoError(t, err)
	require.Len(t, slots, 4)
	assert.False(t, slots[2].Available)
	assert.Equal(t, "LUNCH", *slots[2].Reason)
}

func TestComputeSlots_BreakWinsOverBooking(t *testing.T) {
	mondayDay := time.Monday
	cfg := &model.ScheduleConfig{
		Settings: settings(30, 0, "UTC"),
		Weekly:   []*model.WeeklyWindow{window(time.Monday, "09:00", "11:00")},
		Breaks: []*model.BreakWindow{
			{DayOfWeek: &mondayDay, Name: "Rounds", StartTime: "09:00", EndTime: "09:30"},
		},
	}
	bookings := []*model.Booking{
		utcBooking(monday.Add(9*time.Hour), monday.Add(9*time.Hour+30*time.Minute)),
	}

	slots, err := ComputeSlots(cfg, bookings, monday)
	require.NoError(t, err)
	require.NotNil(t, slots[0].Reason)
	assert.Equal(t, "ROUNDS", *slots[0].Reason)
}

func TestComputeSlots_BookingInstantsConvertedToProviderZone(t *testing.T) {
	cfg := &model.ScheduleConfig{
		Settings: settings(30, 0, "America/New_York"),
		Weekly:   []*model.WeeklyWindow{window(time.Monday, "09:00", "12:00")},
	}
	// 14:00 UTC is 09:00 in New York during January.
	bookings := []*model.Booking{
		utcBooking(
			time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC),
			time.Date(2026, 1, 5, 14, 30, 0, 0, time.UTC),
		),
	}

	slots, err := ComputeSlots(cfg, bookings, monday)
	require.NoError(t, err)
	require.Len(t, slots, 6)
	assert.False(t, slots[0].Available)
	assert.Equal(t, ReasonBooked, *slots[0].Reason)
	assert.True(t, slots[1].Available)
}

func TestComputeSlots_Deterministic(t *testing.T) {
	mondayDay := time.Monday
	cfg := &model.ScheduleConfig{
		Settings: settings(15, 5, "UTC"),
		Weekly:   []*model.WeeklyWindow{window(time.Monday, "08:00", "13:00")},
		Breaks: []*model.BreakWindow{
			{DayOfWeek: &mondayDay, Name: "Tea", StartTime: "10:00", EndTime: "10:15"},
		},
	}
	bookings := []*model.Booking{
		utcBooking(monday.Add(8*time.Hour+40*time.Minute), monday.Add(9*time.Hour)),
	}

	first, err := ComputeSlots(cfg, bookings, monday)
	require.NoError(t, err)
	second, err := ComputeSlots(cfg, bookings, monday)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeSlots_InvalidTimezone(t *testing.T) {
	cfg := &model.ScheduleConfig{
		Settings: settings(30, 0, "Not/AZone"),
		Weekly:   []*model.WeeklyWindow{window(time.Monday, "09:00", "12:00")},
	}
	_, err := ComputeSlots(cfg, nil, monday)
	assert.Error(t, err)
}

func weekdayPtr(d time.Weekday) *time.Weekday {
	return &d
}
