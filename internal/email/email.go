package email

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/amante/clinic-booking-api/internal/model"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages over SMTP.
type Sender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSender(host string, port int, username, password, from string) *Sender {
	return &Sender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *Sender) Send(msg *Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}
	return nil
}

// Compose builds the messages for one booking event. Recipients without a
// known address are skipped.
func Compose(event *model.BookingEvent) []*Message {
	interval := formatInterval(event)

	var msgs []*Message
	add := func(to, subject, body string) {
		if to == "" {
			return
		}
		msgs = append(msgs, &Message{To: to, Subject: subject, Body: body})
	}

	switch event.Type {
	case model.BookingEventCreated:
		add(event.ProviderEmail,
			"New booking request",
			fmt.Sprintf("%s requested an appointment on %s. Please confirm or reject it.",
				displayName(event.PatientName), interval))
		add(event.PatientEmail,
			"Booking request received",
			fmt.Sprintf("Your appointment request with %s on %s is pending confirmation.",
				displayName(event.ProviderName), interval))
	case model.BookingEventConfirmed:
		add(event.PatientEmail,
			"Booking confirmed",
			fmt.Sprintf("%s confirmed your appointment on %s.",
				displayName(event.ProviderName), interval))
	case model.BookingEventRejected:
		reason := ""
		if event.Booking.RejectionReason != nil {
			reason = " Reason: " + *event.Booking.RejectionReason
		}
		add(event.PatientEmail,
			"Booking rejected",
			fmt.Sprintf("%s could not accept your appointment on %s.%s",
				displayName(event.ProviderName), interval, reason))
	case model.BookingEventCompleted:
		add(event.PatientEmail,
			"Appointment completed",
			fmt.Sprintf("Your appointment with %s on %s is complete. Thank you for your visit.",
				displayName(event.ProviderName), interval))
	case model.BookingEventCancelled:
		add(event.PatientEmail,
			"Booking cancelled",
			fmt.Sprintf("Your appointment with %s on %s was cancelled.",
				displayName(event.ProviderName), interval))
		add(event.ProviderEmail,
			"Booking cancelled",
			fmt.Sprintf("The appointment with %s on %s was cancelled.",
				displayName(event.PatientName), interval))
	}
	return msgs
}

func displayName(name string) string {
	if name == "" || name == " " {
		return "the other party"
	}
	return name
}

func formatInterval(event *model.BookingEvent) string {
	loc, err := time.LoadLocation(event.Timezone)
	if err != nil {
		loc = time.UTC
	}
	start := event.Booking.StartTime.In(loc)
	end := event.Booking.EndTime.In(loc)
	return fmt.Sprintf("%s from %s to %s (%s)",
		start.Format("Monday, 2 January 2006"),
		start.Format("15:04"),
		end.Format("15:04"),
		event.Timezone)
}
