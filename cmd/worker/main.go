package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/amante/clinic-booking-api/internal/email"
	"github.com/amante/clinic-booking-api/internal/model"
	"github.com/amante/clinic-booking-api/internal/service/notification"
	"github.com/amante/clinic-booking-api/pkg/logger"
	messagingRedis "github.com/amante/clinic-booking-api/pkg/messaging/redis"
)

var (
	eventsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_worker_events_received_total",
		Help: "Booking events received from the broker",
	}, []string{"event_type"})
	emailsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notification_worker_emails_sent_total",
		Help: "Emails delivered",
	})
	emailsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notification_worker_emails_failed_total",
		Help: "Emails that failed to deliver",
	})
)

type Config struct {
	RedisURL     string        `envconfig:"REDIS_URL" default:"redis://localhost:6379"`
	SMTPHost     string        `envconfig:"SMTP_HOST" required:"true"`
	SMTPPort     int           `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string        `envconfig:"SMTP_USERNAME"`
	SMTPPassword string        `envconfig:"SMTP_PASSWORD"`
	FromAddress  string        `envconfig:"SMTP_FROM" default:"no-reply@clinic-booking.local"`
	HealthPort   string        `envconfig:"HEALTH_PORT" default:"8081"`
	RetryBackoff time.Duration `envconfig:"REDIS_RETRY_BACKOFF" default:"100ms"`
}

func setupHealthCheck(appLogger *logger.Logger, port string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(":"+port, mux); err != nil {
			appLogger.Fatal(err, "health check server failed")
		}
	}()
}

func main() {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to load worker config")
	}

	appLogger := logger.NewLogger(nil)

	broker, err := messagingRedis.NewRedisBroker(messagingRedis.Config{
		URL:          cfg.RedisURL,
		MaxRetries:   3,
		RetryBackoff: cfg.RetryBackoff,
	}, appLogger.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	sender := email.NewSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.FromAddress)

	setupHealthCheck(appLogger, cfg.HealthPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("shutting down...")
		cancel()
	}()

	events, err := broker.Subscribe(ctx, notification.Channel)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to subscribe to booking events")
	}

	appLogger.Info("notification worker started", "channel", notification.Channel)
	run(ctx, appLogger, sender, events)
}

// run drains the event channel until the context ends. Each event gets one
// delivery attempt per recipient; failures are counted and dropped.
func run(ctx context.Context, appLogger *logger.Logger, sender *email.Sender, events <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			appLogger.Info("notification worker stopped")
			return
		case payload, ok := <-events:
			if !ok {
				appLogger.Info("event channel closed")
				return
			}
			handleEvent(appLogger, sender, payload)
		}
	}
}

func handleEvent(appLogger *logger.Logger, sender *email.Sender, payload []byte) {
	var event model.BookingEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		appLogger.Error(err, "failed to decode booking event")
		return
	}
	eventsReceived.WithLabelValues(string(event.Type)).Inc()

	for _, msg := range email.Compose(&event) {
		if err := sender.Send(msg); err != nil {
			emailsFailed.Inc()
			appLogger.Error(err, "failed to send notification email",
				"booking_id", event.Booking.ID.String(),
				"event_type", string(event.Type))
			continue
		}
		emailsSent.Inc()
		appLogger.Debug("notification email sent",
			"booking_id", event.Booking.ID.String(),
			"event_type", string(event.Type))
	}
}
