package email

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amante/clinic-booking-api/internal/model"
)

func event(t model.BookingEventType) *model.BookingEvent {
	reason := "double booked that day, please choose another slot"
	return &model.BookingEvent{
		Type: t,
		Booking: model.Booking{
			StartTime:       time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC),
			EndTime:         time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC),
			RejectionReason: &reason,
		},
		PatientName:   "Ana Ruiz",
		PatientEmail:  "ana@example.com",
		ProviderName:  "Dr. Chen",
		ProviderEmail: "chen@example.com",
		Timezone:      "America/New_York",
	}
}

func TestCompose_Created_NotifiesBothParties(t *testing.T) {
	msgs := Compose(event(model.BookingEventCreated))
	require.Len(t, msgs, 2)
	assert.Equal(t, "chen@example.com", msgs[0].To)
	assert.Contains(t, msgs[0].Body, "Ana Ruiz")
	assert.Equal(t, "ana@example.com", msgs[1].To)
	assert.Contains(t, msgs[1].Body, "Dr. Chen")
}

func TestCompose_Rejected_IncludesReason(t *testing.T) {
	msgs := Compose(event(model.BookingEventRejected))
	require.Len(t, msgs, 1)
	assert.Equal(t, "ana@example.com", msgs[0].To)
	assert.Contains(t, msgs[0].Body, "double booked that day")
}

func TestCompose_ConvertsTimesToProviderZone(t *testing.T) {
	msgs := Compose(event(model.BookingEventConfirmed))
	require.Len(t, msgs, 1)
	// 14:00 UTC is 09:00 in New York in March before DST starts.
	assert.Contains(t, msgs[0].Body, "09:00")
	assert.Contains(t, msgs[0].Body, "America/New_York")
}

func TestCompose_SkipsUnknownRecipients(t *testing.T) {
	e := event(model.BookingEventCancelled)
	e.ProviderEmail = ""
	msgs := Compose(e)
	require.Len(t, msgs, 1)
	assert.Equal(t, "ana@example.com", msgs[0].To)
}
