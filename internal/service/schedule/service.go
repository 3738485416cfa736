package schedule

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/amante/clinic-booking-api/internal/model"
	"github.com/amante/clinic-booking-api/internal/repository"
	"github.com/amante/clinic-booking-api/internal/service/availability"
	"github.com/amante/clinic-booking-api/pkg/errors"
	"github.com/amante/clinic-booking-api/pkg/logger"
	"github.com/amante/clinic-booking-api/pkg/metrics"
)

const (
	configCacheTTL     = 5 * time.Minute
	configCachePurge   = 10 * time.Minute
	configCachePrefix  = "schedule:"
	maxBreaksPerDay    = 10
	maxLookaheadMonths = 6
)

var weekdayNames = map[string]time.Weekday{
	"SUNDAY":    time.Sunday,
	"MONDAY":    time.Monday,
	"TUESDAY":   time.Tuesday,
	"WEDNESDAY": time.Wednesday,
	"THURSDAY":  time.Thursday,
	"FRIDAY":    time.Friday,
	"SATURDAY":  time.Saturday,
}

// Service manages provider schedule configuration and serves availability
// queries. Resolved configurations are cached per provider and invalidated
// on every write.
type Service struct {
	schedules repository.ScheduleRepository
	bookings  repository.BookingRepository
	users     repository.UserRepository
	cache     *gocache.Cache
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

func NewService(
	schedules repository.ScheduleRepository,
	bookings repository.BookingRepository,
	users repository.UserRepository,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	return &Service{
		schedules: schedules,
		bookings:  bookings,
		users:     users,
		cache:     gocache.New(configCacheTTL, configCachePurge),
		metrics:   m,
		logger:    log,
	}
}

func cacheKey(providerID uuid.UUID) string {
	return configCachePrefix + providerID.String()
}

func (s *Service) invalidate(providerID uuid.UUID) {
	s.cache.Delete(cacheKey(providerID))
}

func (s *Service) resolveProvider(ctx context.Context, userID uuid.UUID) (*model.Provider, error) {
	provider, err := s.users.GetProviderByUserID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("provider profile", err)
		}
		return nil, errors.Internal(err)
	}
	return provider, nil
}

// ResolveSettings returns the provider's saved settings, or the defaults
// when none were ever saved.
func (s *Service) ResolveSettings(ctx context.Context, providerID uuid.UUID) (*model.ScheduleSettings, error) {
	settings, err := s.schedules.GetSettings(ctx, providerID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if settings == nil {
		settings = &model.ScheduleSettings{
			ProviderID:          providerID,
			SlotDurationMinutes: model.DefaultSlotDurationMinutes,
			BufferMinutes:       model.DefaultBufferMinutes,
			Timezone:            model.DefaultTimezone,
		}
	}
	return settings, nil
}

// UpdateSettings validates and saves the caller's slot generation settings.
func (s *Service) UpdateSettings(ctx context.Context, userID uuid.UUID, req *model.UpdateSettingsRequest) (*model.ScheduleSettings, error) {
	provider, err := s.resolveProvider(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !validSlotDuration(req.SlotDurationMinutes) {
		return nil, errors.Validation(
			fmt.Sprintf("slot duration must be one of %v minutes", model.ValidSlotDurations), nil)
	}
	if req.BufferMinutes < 0 || req.BufferMinutes > model.MaxBufferMinutes {
		return nil, errors.Validation(
			fmt.Sprintf("buffer must be between 0 and %d minutes", model.MaxBufferMinutes), nil)
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		return nil, errors.Validation("unknown timezone: "+req.Timezone, err)
	}

	now := time.Now().UTC()
	settings := &model.ScheduleSettings{
		Base:                model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		ProviderID:          provider.ID,
		SlotDurationMinutes: req.SlotDurationMinutes,
		BufferMinutes:       req.BufferMinutes,
		Timezone:            req.Timezone,
	}
	if err := s.schedules.SaveSettings(ctx, settings); err != nil {
		return nil, errors.Internal(err)
	}

	s.invalidate(provider.ID)
	return settings, nil
}

// UpdateWeekly replaces the windows for the weekdays named in the request.
// Days absent from the request keep their stored windows.
func (s *Service) UpdateWeekly(ctx context.Context, userID uuid.UUID, req *model.UpdateWeeklyScheduleRequest) ([]*model.WeeklyWindow, error) {
	provider, err := s.resolveProvider(ctx, userID)
	if err != nil {
		return nil, err
	}

	windows := make([]*model.WeeklyWindow, 0, len(req.Schedule))
	for name, day := range req.Schedule {
		weekday, ok := weekdayNames[strings.ToUpper(name)]
		if !ok {
			return nil, errors.Validation("unknown weekday: "+name, nil)
		}
		if day.IsAvailable {
			if err := validateWindow(day.StartTime, day.EndTime); err != nil {
				return nil, err
			}
		}
		now := time.Now().UTC()
		windows = append(windows, &model.WeeklyWindow{
			Base:        model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
			ProviderID:  provider.ID,
			DayOfWeek:   weekday,
			IsAvailable: day.IsAvailable,
			StartTime:   day.StartTime,
			EndTime:     day.EndTime,
		})
	}

	for _, w := range windows {
		if err := s.schedules.UpsertWeekly(ctx, w); err != nil {
			return nil, errors.Internal(err)
		}
	}

	s.invalidate(provider.ID)
	return s.listWeekly(ctx, provider.ID)
}

func (s *Service) listWeekly(ctx context.Context, providerID uuid.UUID) ([]*model.WeeklyWindow, error) {
	weekly, err := s.schedules.ListWeekly(ctx, providerID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return weekly, nil
}

// AddBreak creates a recurring break for the caller. A nil day applies the
// break every day of the week.
func (s *Service) AddBreak(ctx context.Context, userID uuid.UUID, req *model.BreakRequest) (*model.BreakWindow, error) {
	provider, err := s.resolveProvider(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := validateBreakRequest(req); err != nil {
		return nil, err
	}

	existing, err := s.schedules.ListBreaks(ctx, provider.ID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if len(existing) >= maxBreaksPerDay*7 {
		return nil, errors.Validation("too many breaks configured", nil)
	}

	now := time.Now().UTC()
	brk := &model.BreakWindow{
		Base:       model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		ProviderID: provider.ID,
		DayOfWeek:  req.DayOfWeek,
		Name:       req.Name,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	}
	if err := s.schedules.CreateBreak(ctx, brk); err != nil {
		return nil, errors.Internal(err)
	}

	s.invalidate(provider.ID)
	return brk, nil
}

// UpdateBreak rewrites one of the caller's breaks.
func (s *Service) UpdateBreak(ctx context.Context, userID uuid.UUID, id uuid.UUID, req *model.BreakRequest) (*model.BreakWindow, error) {
	provider, err := s.resolveProvider(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := validateBreakRequest(req); err != nil {
		return nil, err
	}

	brk, err := s.ownedBreak(ctx, provider.ID, id)
	if err != nil {
		return nil, err
	}

	brk.DayOfWeek = req.DayOfWeek
	brk.Name = req.Name
	brk.StartTime = req.StartTime
	brk.EndTime = req.EndTime
	brk.UpdatedAt = time.Now().UTC()
	if err := s.schedules.UpdateBreak(ctx, brk); err != nil {
		return nil, errors.Internal(err)
	}

	s.invalidate(provider.ID)
	return brk, nil
}

// DeleteBreak removes one of the caller's breaks.
func (s *Service) DeleteBreak(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	provider, err := s.resolveProvider(ctx, userID)
	if err != nil {
		return err
	}
	if _, err := s.ownedBreak(ctx, provider.ID, id); err != nil {
		return err
	}
	if err := s.schedules.DeleteBreak(ctx, id); err != nil {
		return errors.Internal(err)
	}
	s.invalidate(provider.ID)
	return nil
}

func (s *Service) ownedBreak(ctx context.Context, providerID, id uuid.UUID) (*model.BreakWindow, error) {
	brk, err := s.schedules.GetBreak(ctx, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("break", err)
		}
		return nil, errors.Internal(err)
	}
	if brk.ProviderID != providerID {
		return nil, errors.Unauthorized("break belongs to another provider")
	}
	return brk, nil
}

// AddDayOff records an exception period for the caller.
func (s *Service) AddDayOff(ctx context.Context, userID uuid.UUID, req *model.DayOffRequest) (*model.ExceptionPeriod, error) {
	provider, err := s.resolveProvider(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := validateDayOffRequest(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	dayOff := &model.ExceptionPeriod{
		Base:         model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		ProviderID:   provider.ID,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Reason:       req.Reason,
		Type:         req.Type,
		IsRecurring:  req.IsRecurring,
		RecurringDay: req.RecurringDay,
	}
	if err := s.schedules.CreateDayOff(ctx, dayOff); err != nil {
		return nil, errors.Internal(err)
	}

	s.invalidate(provider.ID)
	return dayOff, nil
}

// UpdateDayOff rewrites one of the caller's exception periods.
func (s *Service) UpdateDayOff(ctx context.Context, userID uuid.UUID, id uuid.UUID, req *model.DayOffRequest) (*model.ExceptionPeriod, error) {
	provider, err := s.resolveProvider(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := validateDayOffRequest(req); err != nil {
		return nil, err
	}

	dayOff, err := s.ownedDayOff(ctx, provider.ID, id)
	if err != nil {
		return nil, err
	}

	dayOff.StartDate = req.StartDate
	dayOff.EndDate = req.EndDate
	dayOff.Reason = req.Reason
	dayOff.Type = req.Type
	dayOff.IsRecurring = req.IsRecurring
	dayOff.RecurringDay = req.RecurringDay
	dayOff.UpdatedAt = time.Now().UTC()
	if err := s.schedules.UpdateDayOff(ctx, dayOff); err != nil {
		return nil, errors.Internal(err)
	}

	s.invalidate(provider.ID)
	return dayOff, nil
}

// DeleteDayOff removes one of the caller's exception periods.
func (s *Service) DeleteDayOff(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	provider, err := s.resolveProvider(ctx, userID)
	if err != nil {
		return err
	}

	if _, err := s.ownedDayOff(ctx, provider.ID, id); err != nil {
		return err
	}
	if err := s.schedules.DeleteDayOff(ctx, id); err != nil {
		return errors.Internal(err)
	}
	s.invalidate(provider.ID)
	return nil
}

func (s *Service) ownedDayOff(ctx context.Context, providerID, id uuid.UUID) (*model.ExceptionPeriod, error) {
	dayOff, err := s.schedules.GetDayOff(ctx, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("day off", err)
		}
		return nil, errors.Internal(err)
	}
	if dayOff.ProviderID != providerID {
		return nil, errors.Unauthorized("day off belongs to another provider")
	}
	return dayOff, nil
}

// Config assembles the full schedule configuration for a provider, serving
// from cache when fresh.
func (s *Service) Config(ctx context.Context, providerID uuid.UUID) (*model.ScheduleConfig, error) {
	if cached, ok := s.cache.Get(cacheKey(providerID)); ok {
		return cached.(*model.ScheduleConfig), nil
	}

	settings, err := s.ResolveSettings(ctx, providerID)
	if err != nil {
		return nil, err
	}
	weekly, err := s.schedules.ListWeekly(ctx, providerID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	breaks, err := s.schedules.ListBreaks(ctx, providerID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	daysOff, err := s.schedules.ListDaysOff(ctx, providerID)
	if err != nil {
		return nil, errors.Internal(err)
	}

	cfg := &model.ScheduleConfig{
		Settings: settings,
		Weekly:   weekly,
		Breaks:   breaks,
		DaysOff:  daysOff,
	}
	s.cache.SetDefault(cacheKey(providerID), cfg)
	return cfg, nil
}

// OwnConfig returns the schedule configuration for the calling provider.
func (s *Service) OwnConfig(ctx context.Context, userID uuid.UUID) (*model.ScheduleConfig, error) {
	provider, err := s.resolveProvider(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Config(ctx, provider.ID)
}

// AvailableSlots computes the slot list for one provider and calendar date.
// The result is derived on demand and never persisted.
func (s *Service) AvailableSlots(ctx context.Context, providerID uuid.UUID, date time.Time) ([]*model.TimeSlot, error) {
	if _, err := s.users.GetProvider(ctx, providerID); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("provider", err)
		}
		return nil, errors.Internal(err)
	}

	now := time.Now()
	if date.Before(truncateDay(now)) {
		return nil, errors.Validation("date must not be in the past", nil)
	}
	if date.After(now.AddDate(0, maxLookaheadMonths, 0)) {
		return nil, errors.Validation(
			fmt.Sprintf("date must be within %d months", maxLookaheadMonths), nil)
	}

	cfg, err := s.Config(ctx, providerID)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Settings.Timezone)
	if err != nil {
		return nil, errors.Internal(err)
	}
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	bookings, err := s.bookings.ListForProviderInterval(ctx, providerID, dayStart.UTC(), dayStart.Add(24*time.Hour).UTC())
	if err != nil {
		return nil, errors.Internal(err)
	}

	start := time.Now()
	slots, err := availability.ComputeSlots(cfg, bookings, date)
	if s.metrics != nil {
		s.metrics.SlotComputeLatency.Observe(time.Since(start).Seconds())
	}
	return slots, err
}

func validSlotDuration(minutes int) bool {
	for _, d := range model.ValidSlotDurations {
		if d == minutes {
			return true
		}
	}
	return false
}

func validateWindow(start, end model.TimeOfDay) error {
	if !start.Valid() || !end.Valid() {
		return errors.Validation("times must be in HH:MM format", nil)
	}
	if !start.Before(end) {
		return errors.Validation("start time must be before end time", nil)
	}
	return nil
}

func validateBreakRequest(req *model.BreakRequest) error {
	if req.DayOfWeek != nil && (*req.DayOfWeek < time.Sunday || *req.DayOfWeek > time.Saturday) {
		return errors.Validation("day of week must be between 0 and 6", nil)
	}
	return validateWindow(req.StartTime, req.EndTime)
}

func validateDayOffRequest(req *model.DayOffRequest) error {
	if req.IsRecurring {
		if req.RecurringDay == nil {
			return errors.Validation("recurring day off requires a weekday", nil)
		}
		if *req.RecurringDay < time.Sunday || *req.RecurringDay > time.Saturday {
			return errors.Validation("recurring day must be between 0 and 6", nil)
		}
		return nil
	}
	if req.EndDate.Before(req.StartDate) {
		return errors.Validation("end date must not be before start date", nil)
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
