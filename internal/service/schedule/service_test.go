package schedule

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amante/clinic-booking-api/internal/model"
	"github.com/amante/clinic-booking-api/pkg/errors"
	"github.com/amante/clinic-booking-api/pkg/logger"
)

type fakeScheduleRepo struct {
	settings map[uuid.UUID]*model.ScheduleSettings
	weekly   map[uuid.UUID]map[time.Weekday]*model.WeeklyWindow
	breaks   map[uuid.UUID]*model.BreakWindow
	daysOff  map[uuid.UUID]*model.ExceptionPeriod
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{
		settings: make(map[uuid.UUID]*model.ScheduleSettings),
		weekly:   make(map[uuid.UUID]map[time.Weekday]*model.WeeklyWindow),
		breaks:   make(map[uuid.UUID]*model.BreakWindow),
		daysOff:  make(map[uuid.UUID]*model.ExceptionPeriod),
	}
}

func (f *fakeScheduleRepo) GetSettings(ctx context.Context, providerID uuid.UUID) (*model.ScheduleSettings, error) {
	return f.settings[providerID], nil
}

func (f *fakeScheduleRepo) SaveSettings(ctx context.Context, settings *model.ScheduleSettings) error {
	f.settings[settings.ProviderID] = settings
	return nil
}

func (f *fakeScheduleRepo) ListWeekly(ctx context.Context, providerID uuid.UUID) ([]*model.WeeklyWindow, error) {
	var out []*model.WeeklyWindow
	for _, w := range f.weekly[providerID] {
		out = append(out, w)
	}
	return out, nil
}

func (f *fakeScheduleRepo) UpsertWeekly(ctx context.Context, window *model.WeeklyWindow) error {
	if f.weekly[window.ProviderID] == nil {
		f.weekly[window.ProviderID] = make(map[time.Weekday]*model.WeeklyWindow)
	}
	f.weekly[window.ProviderID][window.DayOfWeek] = window
	return nil
}

func (f *fakeScheduleRepo) ListBreaks(ctx context.Context, providerID uuid.UUID) ([]*model.BreakWindow, error) {
	var out []*model.BreakWindow
	for _, b := range f.breaks {
		if b.ProviderID == providerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeScheduleRepo) GetBreak(ctx context.Context, id uuid.UUID) (*model.BreakWindow, error) {
	if b, ok := f.breaks[id]; ok {
		return b, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeScheduleRepo) CreateBreak(ctx context.Context, brk *model.BreakWindow) error {
	f.breaks[brk.ID] = brk
	return nil
}

func (f *fakeScheduleRepo) UpdateBreak(ctx context.Context, brk *model.BreakWindow) error {
	if _, ok := f.breaks[brk.ID]; !ok {
		return sql.ErrNoRows
	}
	f.breaks[brk.ID] = brk
	return nil
}

func (f *fakeScheduleRepo) DeleteBreak(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.breaks[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.breaks, id)
	return nil
}

func (f *fakeScheduleRepo) ListDaysOff(ctx context.Context, providerID uuid.UUID) ([]*model.ExceptionPeriod, error) {
	var out []*model.ExceptionPeriod
	for _, d := range f.daysOff {
		if d.ProviderID == providerID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeScheduleRepo) GetDayOff(ctx context.Context, id uuid.UUID) (*model.ExceptionPeriod, error) {
	if d, ok := f.daysOff[id]; ok {
		return d, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeScheduleRepo) CreateDayOff(ctx context.Context, dayOff *model.ExceptionPeriod) error {
	f.daysOff[dayOff.ID] = dayOff
	return nil
}

func (f *fakeScheduleRepo) UpdateDayOff(ctx context.Context, dayOff *model.ExceptionPeriod) error {
	if _, ok := f.daysOff[dayOff.ID]; !ok {
		return sql.ErrNoRows
	}
	f.daysOff[dayOff.ID] = dayOff
	return nil
}

func (f *fakeScheduleRepo) DeleteDayOff(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.daysOff[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.daysOff, id)
	return nil
}

type fakeUserRepo struct {
	provider *model.Provider
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *model.User) error { return nil }
func (f *fakeUserRepo) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return nil, sql.ErrNoRows
}
func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, sql.ErrNoRows
}
func (f *fakeUserRepo) CreateProvider(ctx context.Context, provider *model.Provider) error {
	return nil
}
func (f *fakeUserRepo) GetProvider(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	if f.provider != nil && f.provider.ID == id {
		return f.provider, nil
	}
	return nil, sql.ErrNoRows
}
func (f *fakeUserRepo) GetProviderByUserID(ctx context.Context, userID uuid.UUID) (*model.Provider, error) {
	if f.provider != nil && f.provider.UserID == userID {
		return f.provider, nil
	}
	return nil, sql.ErrNoRows
}
func (f *fakeUserRepo) UpdateProvider(ctx context.Context, provider *model.Provider) error {
	return nil
}
func (f *fakeUserRepo) ListProviders(ctx context.Context, filters *model.ProviderFilters) ([]*model.Provider, error) {
	return nil, nil
}
func (f *fakeUserRepo) CreatePatient(ctx context.Context, patient *model.Patient) error { return nil }
func (f *fakeUserRepo) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return nil, sql.ErrNoRows
}
func (f *fakeUserRepo) GetPatientByUserID(ctx context.Context, userID uuid.UUID) (*model.Patient, error) {
	return nil, sql.ErrNoRows
}

type fakeBookingRepo struct {
	bookings []*model.Booking
}

func (f *fakeBookingRepo) Create(ctx context.Context, booking *model.Booking) error { return nil }
func (f *fakeBookingRepo) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return nil, sql.ErrNoRows
}
func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.BookingStatus, rejectionReason *string) (bool, error) {
	return false, nil
}
func (f *fakeBookingRepo) List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error) {
	return nil, nil
}
func (f *fakeBookingRepo) ListForProviderInterval(ctx context.Context, providerID uuid.UUID, start, end time.Time) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range f.bookings {
		if b.ProviderID != providerID || b.Status == model.BookingStatusCancelled {
			continue
		}
		if model.Overlaps(b.StartTime, b.EndTime, start, end) {
			out = append(out, b)
		}
	}
	return out, nil
}
func (f *fakeBookingRepo) HasOverlap(ctx context.Context, providerID uuid.UUID, start, end time.Time) (bool, error) {
	list, _ := f.ListForProviderInterval(ctx, providerID, start, end)
	return len(list) > 0, nil
}

type fixture struct {
	svc       *Service
	schedules *fakeScheduleRepo
	bookings  *fakeBookingRepo
	userID    uuid.UUID
	provider  *model.Provider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	userID := uuid.New()
	provider := &model.Provider{Base: model.Base{ID: uuid.New()}, UserID: userID}
	schedules := newFakeScheduleRepo()
	bookings := &fakeBookingRepo{}
	svc := NewService(schedules, bookings, &fakeUserRepo{provider: provider}, nil, logger.NewLogger(nil))
	return &fixture{svc: svc, schedules: schedules, bookings: bookings, userID: userID, provider: provider}
}

func TestResolveSettings_Defaults(t *testing.T) {
	f := newFixture(t)

	settings, err := f.svc.ResolveSettings(context.Background(), f.provider.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSlotDurationMinutes, settings.SlotDurationMinutes)
	assert.Equal(t, model.DefaultBufferMinutes, settings.BufferMinutes)
	assert.Equal(t, model.DefaultTimezone, settings.Timezone)
}

func TestUpdateSettings_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		req  *model.UpdateSettingsRequest
	}{
		{"duration not in allowed set", &model.UpdateSettingsRequest{SlotDurationMinutes: 20, Timezone: "UTC"}},
		{"buffer above cap", &model.UpdateSettingsRequest{SlotDurationMinutes: 30, BufferMinutes: 31, Timezone: "UTC"}},
		{"negative buffer", &model.UpdateSettingsRequest{SlotDurationMinutes: 30, BufferMinutes: -1, Timezone: "UTC"}},
		{"unknown timezone", &model.UpdateSettingsRequest{SlotDurationMinutes: 30, Timezone: "Mars/Olympus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.UpdateSettings(context.Background(), f.userID, tt.req)
			assert.True(t, errors.IsKind(err, errors.ErrValidation))
		})
	}
}

func TestUpdateSettings_SavesAndInvalidatesCache(t *testing.T) {
	f := newFixture(t)

	cfg, err := f.svc.Config(context.Background(), f.provider.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSlotDurationMinutes, cfg.Settings.SlotDurationMinutes)

	_, err = f.svc.UpdateSettings(context.Background(), f.userID, &model.UpdateSettingsRequest{
		SlotDurationMinutes: 45,
		BufferMinutes:       10,
		Timezone:            "Europe/Berlin",
	})
	require.NoError(t, err)

	cfg, err = f.svc.Config(context.Background(), f.provider.ID)
	require.NoError(t, err)
	assert.Equal(t, 45, cfg.Settings.SlotDurationMinutes)
	assert.Equal(t, 10, cfg.Settings.BufferMinutes)
	assert.Equal(t, "Europe/Berlin", cfg.Settings.Timezone)
}

func TestUpdateWeekly(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdateWeekly(context.Background(), f.userID, &model.UpdateWeeklyScheduleRequest{
		Schedule: map[string]model.DayScheduleRequest{
			"someday": {IsAvailable: true, StartTime: "09:00", EndTime: "17:00"},
		},
	})
	assert.True(t, errors.IsKind(err, errors.ErrValidation))

	_, err = f.svc.UpdateWeekly(context.Background(), f.userID, &model.UpdateWeeklyScheduleRequest{
		Schedule: map[string]model.DayScheduleRequest{
			"MONDAY": {IsAvailable: true, StartTime: "17:00", EndTime: "09:00"},
		},
	})
	assert.True(t, errors.IsKind(err, errors.ErrValidation))

	windows, err := f.svc.UpdateWeekly(context.Background(), f.userID, &model.UpdateWeeklyScheduleRequest{
		Schedule: map[string]model.DayScheduleRequest{
			"monday":  {IsAvailable: true, StartTime: "09:00", EndTime: "17:00"},
			"TUESDAY": {IsAvailable: false},
		},
	})
	require.NoError(t, err)
	assert.Len(t, windows, 2)
}

func TestAddBreak(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddBreak(context.Background(), f.userID, &model.BreakRequest{
		Name: "Lunch", StartTime: "13:00", EndTime: "12:00",
	})
	assert.True(t, errors.IsKind(err, errors.ErrValidation))

	day := time.Monday
	brk, err := f.svc.AddBreak(context.Background(), f.userID, &model.BreakRequest{
		DayOfWeek: &day, Name: "Lunch", StartTime: "12:00", EndTime: "13:00",
	})
	require.NoError(t, err)
	assert.Equal(t, f.provider.ID, brk.ProviderID)
	require.NotNil(t, brk.DayOfWeek)
	assert.Equal(t, time.Monday, *brk.DayOfWeek)
}

func TestDeleteBreak_OwnershipEnforced(t *testing.T) {
	f := newFixture(t)

	foreign := &model.BreakWindow{
		Base:       model.Base{ID: uuid.New()},
		ProviderID: uuid.New(),
		Name:       "Other",
		StartTime:  "10:00",
		EndTime:    "10:30",
	}
	require.NoError(t, f.schedules.CreateBreak(context.Background(), foreign))

	err := f.svc.DeleteBreak(context.Background(), f.userID, foreign.ID)
	assert.True(t, errors.IsKind(err, errors.ErrUnauthorized))

	err = f.svc.DeleteBreak(context.Background(), f.userID, uuid.New())
	assert.True(t, errors.IsKind(err, errors.ErrNotFound))
}

func TestAddDayOff_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddDayOff(context.Background(), f.userID, &model.DayOffRequest{
		IsRecurring: true,
		Type:        model.ExceptionPersonal,
	})
	assert.True(t, errors.IsKind(err, errors.ErrValidation))

	start := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	_, err = f.svc.AddDayOff(context.Background(), f.userID, &model.DayOffRequest{
		StartDate: start,
		EndDate:   start.AddDate(0, 0, -1),
		Type:      model.ExceptionVacation,
	})
	assert.True(t, errors.IsKind(err, errors.ErrValidation))

	dayOff, err := f.svc.AddDayOff(context.Background(), f.userID, &model.DayOffRequest{
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 4),
		Reason:    "annual leave",
		Type:      model.ExceptionVacation,
	})
	require.NoError(t, err)
	assert.Equal(t, f.provider.ID, dayOff.ProviderID)
}

func TestUpdateDayOff(t *testing.T) {
	f := newFixture(t)

	start := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	dayOff, err := f.svc.AddDayOff(context.Background(), f.userID, &model.DayOffRequest{
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 4),
		Reason:    "annual leave",
		Type:      model.ExceptionVacation,
	})
	require.NoError(t, err)

	updated, err := f.svc.UpdateDayOff(context.Background(), f.userID, dayOff.ID, &model.DayOffRequest{
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 1),
		Reason:    "shortened",
		Type:      model.ExceptionVacation,
	})
	require.NoError(t, err)
	assert.Equal(t, start.AddDate(0, 0, 1), updated.EndDate)
	assert.Equal(t, "shortened", updated.Reason)

	foreign := &model.ExceptionPeriod{
		Base:       model.Base{ID: uuid.New()},
		ProviderID: uuid.New(),
		StartDate:  start,
		EndDate:    start,
		Type:       model.ExceptionPersonal,
	}
	require.NoError(t, f.schedules.CreateDayOff(context.Background(), foreign))

	_, err = f.svc.UpdateDayOff(context.Background(), f.userID, foreign.ID, &model.DayOffRequest{
		StartDate: start,
		EndDate:   start,
		Type:      model.ExceptionPersonal,
	})
	assert.True(t, errors.IsKind(err, errors.ErrUnauthorized))
}

func TestAvailableSlots_EndToEnd(t *testing.T) {
	f := newFixture(t)

	// Next Monday at least a week out so the date is always in the future.
	date := time.Now().UTC().AddDate(0, 0, 7)
	for date.Weekday() != time.Monday {
		date = date.AddDate(0, 0, 1)
	}
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	_, err := f.svc.UpdateWeekly(context.Background(), f.userID, &model.UpdateWeeklyScheduleRequest{
		Schedule: map[string]model.DayScheduleRequest{
			"MONDAY": {IsAvailable: true, StartTime: "09:00", EndTime: "11:00"},
		},
	})
	require.NoError(t, err)

	f.bookings.bookings = []*model.Booking{{
		Base:       model.Base{ID: uuid.New()},
		ProviderID: f.provider.ID,
		StartTime:  date.Add(9 * time.Hour),
		EndTime:    date.Add(9*time.Hour + 30*time.Minute),
		Status:     model.BookingStatusConfirmed,
	}}

	slots, err := f.svc.AvailableSlots(context.Background(), f.provider.ID, date)
	require.NoError(t, err)
	require.Len(t, slots, 4)
	assert.False(t, slots[0].Available)
	assert.True(t, slots[1].Available)
}

func TestAvailableSlots_RejectsPastDate(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AvailableSlots(context.Background(), f.provider.ID, time.Now().UTC().AddDate(0, 0, -2))
	assert.True(t, errors.IsKind(err, errors.ErrValidation))
}

func TestAvailableSlots_UnknownProvider(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AvailableSlots(context.Background(), uuid.New(), time.Now().UTC().AddDate(0, 0, 1))
	assert.True(t, errors.IsKind(err, errors.ErrNotFound))
}
